// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/hrdocs/docvault/internal/logger"
	"github.com/hrdocs/docvault/internal/store"
	"github.com/hrdocs/docvault/models"
	"golang.org/x/crypto/bcrypt"
)

const (
	// MaxPinAttempts is how many consecutive wrong PINs are tolerated before
	// the lockout arms.
	MaxPinAttempts = 5

	// PinLockoutDuration is how long verification stays blocked once the
	// attempt limit is reached.
	PinLockoutDuration = 15 * time.Minute
)

// pinFormat is the only accepted PIN shape: exactly four digits.
var pinFormat = regexp.MustCompile(`^\d{4}$`)

// pinService is the concrete implementation of PinService. PINs are stored
// as bcrypt hashes; the attempt counter and lockout live on the users table
// and are updated through a single guarded statement so concurrent wrong
// guesses cannot overshoot the limit.
type pinService struct {
	users  store.UserRepository
	logger *logger.Logger

	// now is stubbed in tests.
	now func() time.Time
}

// NewPinService constructs a PinService over the given user repository.
func NewPinService(users store.UserRepository, logger *logger.Logger) PinService {
	return &pinService{
		users:  users,
		logger: logger,
		now:    time.Now,
	}
}

// Status implements [PinService].
func (s *pinService) Status(ctx context.Context, userID int64) (models.PinStatus, error) {
	state, err := s.users.GetPinState(ctx, userID)
	if err != nil {
		return models.PinStatus{}, err
	}

	now := s.now()
	status := models.PinStatus{
		PinSet:         state.Set,
		Locked:         state.LockedAt(now),
		FailedAttempts: state.FailedAttempts,
	}
	if status.Locked {
		status.LockedUntil = state.LockedUntil
	}

	return status, nil
}

// Set implements [PinService]. Setting the first PIN needs nothing beyond the
// session; changing an existing one requires the current PIN. A wrong current
// PIN is rejected without touching the failure counter, since the caller
// already holds an authenticated session. An active lockout does not block a
// change: knowing the current PIN is proof enough, and the successful write
// clears the counter and the lock.
func (s *pinService) Set(ctx context.Context, userID int64, pin, currentPin string) error {
	log := logger.FromContext(ctx)

	if !pinFormat.MatchString(pin) {
		return ErrInvalidPinFormat
	}

	state, err := s.users.GetPinState(ctx, userID)
	if err != nil {
		return err
	}

	if state.Set {
		if currentPin == "" {
			return ErrWrongCurrentPin
		}
		if bcrypt.CompareHashAndPassword([]byte(state.Hash), []byte(currentPin)) != nil {
			return ErrWrongCurrentPin
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		log.Err(err).Str("func", "pinService.Set").Msg("hashing pin failed")
		return fmt.Errorf("hashing pin failed: %w", err)
	}

	return s.users.SetPin(ctx, userID, string(hash))
}

// Verify implements [PinService].
//
// Order of checks: the not-set guard, then the lockout (a locked account
// consumes no attempts), then the format guard and the hash comparison. A
// success clears the counter; a failure runs the guarded increment and
// reports how many attempts remain, or the lockout it just armed.
func (s *pinService) Verify(ctx context.Context, userID int64, pin string) error {
	log := logger.FromContext(ctx)

	state, err := s.users.GetPinState(ctx, userID)
	if err != nil {
		return err
	}

	now := s.now()
	if !state.Set {
		return ErrPinNotSet
	}
	if state.LockedAt(now) {
		return &PinLockedError{Until: *state.LockedUntil}
	}
	if !pinFormat.MatchString(pin) {
		return ErrInvalidPinFormat
	}

	if bcrypt.CompareHashAndPassword([]byte(state.Hash), []byte(pin)) == nil {
		if err := s.users.ClearPinFailures(ctx, userID); err != nil {
			log.Err(err).Str("func", "pinService.Verify").Msg("clearing pin failures after success failed")
		}
		return nil
	}

	updated, err := s.users.RegisterFailedPinAttempt(ctx, userID, MaxPinAttempts, now.Add(PinLockoutDuration), now)
	if err != nil {
		if errors.Is(err, store.ErrPinLockRaced) {
			// Another request armed the lockout between our read and write.
			return s.lockoutFromState(ctx, userID, now)
		}
		return err
	}

	if updated.LockedAt(now) {
		return &PinLockedError{Until: *updated.LockedUntil}
	}

	attemptsLeft := MaxPinAttempts - updated.FailedAttempts
	if attemptsLeft < 0 {
		attemptsLeft = 0
	}

	return &InvalidPinError{AttemptsLeft: attemptsLeft}
}

// Reset implements [PinService]. Only admins may bulk-reset PINs; the reset
// clears the hash, the counter, and any lockout in one statement.
func (s *pinService) Reset(ctx context.Context, principal models.Principal, userIDs []int64) (int64, error) {
	log := logger.FromContext(ctx)

	if !principal.IsAdmin() {
		return 0, ErrForbidden
	}
	if len(userIDs) == 0 {
		return 0, ErrInvalidDataProvided
	}

	affected, err := s.users.ResetPins(ctx, userIDs)
	if err != nil {
		return 0, err
	}
	log.Info().Int64("admin_id", principal.UserID).Int64("accounts", affected).Msg("pins reset")

	return affected, nil
}

// lockoutFromState re-reads the state after a raced lockout and reports it.
func (s *pinService) lockoutFromState(ctx context.Context, userID int64, now time.Time) error {
	state, err := s.users.GetPinState(ctx, userID)
	if err != nil {
		return err
	}
	if state.LockedAt(now) {
		return &PinLockedError{Until: *state.LockedUntil}
	}

	// The racing lockout already expired; treat as a plain failed attempt.
	return &InvalidPinError{AttemptsLeft: 0}
}
