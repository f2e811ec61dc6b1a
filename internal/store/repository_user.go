package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hrdocs/docvault/internal/logger"
	"github.com/hrdocs/docvault/models"
	"github.com/jackc/pgerrcode"
)

// userRepository is the SQL-backed implementation of [UserRepository].
// It handles account creation, lookup, and the document-PIN state machine
// against the "users" table.
//
// All methods obtain a context-scoped logger via [logger.FromContext] for
// structured, request-level tracing of database interactions.
type userRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewUserRepository constructs a [UserRepository] backed by the provided
// database connection and logger.
//
// A debug-level log message is emitted at construction time to aid
// application startup diagnostics.
func NewUserRepository(db *DB, logger *logger.Logger) UserRepository {
	logger.Debug().Msg("creating user repository")
	return &userRepository{
		db:     db,
		logger: logger,
	}
}

// CreateUser persists a new user record and returns the fully populated
// [models.User] with server-assigned fields (UserID, CreatedAt).
//
// Error handling:
//   - PostgreSQL unique_violation (23505) → [ErrLoginAlreadyExists].
//   - Any other driver-level error → wrapped as "unexpected DB error".
//   - Scan failure → returned directly.
func (r *userRepository) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	log := logger.FromContext(ctx)

	row := r.db.QueryRowContext(ctx, createUser, user.Login, user.PasswordHash, user.Name, user.Role)

	// create user in db
	if err := row.Err(); err != nil {
		log.Err(err).Str("func", "*userRepository.CreateUser").Msg("error: row is nil")

		switch postgresError(err) {
		case pgerrcode.UniqueViolation:
			return models.User{}, ErrLoginAlreadyExists
		default:
			return models.User{}, fmt.Errorf("unexpected DB error: %w", err)
		}
	}

	// scan saved user from db
	if err := row.Scan(&user.UserID, &user.Login, &user.PasswordHash, &user.Name, &user.Role, &user.CreatedAt); err != nil {
		if postgresError(err) == pgerrcode.UniqueViolation {
			return models.User{}, ErrLoginAlreadyExists
		}
		log.Err(err).Str("func", "*userRepository.CreateUser").Msg("error: scanning error")
		return models.User{}, err
	}

	return user, nil
}

// FindUserByLogin retrieves a user record whose Login matches the one
// provided in the input [models.User].
//
// Error handling:
//   - [sql.ErrNoRows] → [ErrNoUserWasFound].
//   - Any other driver-level error → wrapped as "unexpected DB error".
func (r *userRepository) FindUserByLogin(ctx context.Context, user models.User) (models.User, error) {
	log := logger.FromContext(ctx)

	var foundUser models.User
	row := r.db.QueryRowContext(ctx, findUserByLogin, user.Login)

	// find user by login
	if err := row.Err(); err != nil {
		log.Err(err).Str("func", "*userRepository.FindUserByLogin").Msg("error: row is nil")
		return models.User{}, fmt.Errorf("unexpected DB error: %w", err)
	}

	// scan found user from db
	if err := row.Scan(&foundUser.UserID, &foundUser.Login, &foundUser.PasswordHash, &foundUser.Name, &foundUser.Role, &foundUser.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrNoUserWasFound
		}
		log.Err(err).Str("func", "*userRepository.FindUserByLogin").Msg("error: scanning error")
		return models.User{}, err
	}

	return foundUser, nil
}

// GetPinState returns the PIN columns of a single user.
func (r *userRepository) GetPinState(ctx context.Context, userID int64) (models.PinState, error) {
	log := logger.FromContext(ctx)

	var (
		state       models.PinState
		lockedUntil sql.NullTime
	)
	row := r.db.QueryRowContext(ctx, getPinState, userID)
	if err := row.Scan(&state.Hash, &state.Set, &state.FailedAttempts, &lockedUntil); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.PinState{}, ErrNoUserWasFound
		}
		log.Err(err).Str("func", "*userRepository.GetPinState").Msg("error: scanning error")
		return models.PinState{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}
	if lockedUntil.Valid {
		state.LockedUntil = &lockedUntil.Time
	}

	return state, nil
}

// SetPin stores a new PIN hash and clears all failure state in one statement.
func (r *userRepository) SetPin(ctx context.Context, userID int64, pinHash string) error {
	log := logger.FromContext(ctx)

	result, err := r.db.ExecContext(ctx, setPin, pinHash, userID)
	if err != nil {
		log.Err(err).Str("func", "*userRepository.SetPin").Msg("error executing update")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	if affected == 0 {
		return ErrNoUserWasFound
	}

	return nil
}

// ClearPinFailures resets the failure counter and lockout after a successful
// verification.
func (r *userRepository) ClearPinFailures(ctx context.Context, userID int64) error {
	log := logger.FromContext(ctx)

	if _, err := r.db.ExecContext(ctx, clearPinFailures, userID); err != nil {
		log.Err(err).Str("func", "*userRepository.ClearPinFailures").Msg("error executing update")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

// RegisterFailedPinAttempt runs the guarded increment and returns the
// post-update state. When the guard matches no row the account was locked by
// a concurrent request, reported as [ErrPinLockRaced] so the caller can
// re-read the state and answer with the lockout instead of a stale counter.
func (r *userRepository) RegisterFailedPinAttempt(ctx context.Context, userID int64, maxAttempts int, lockUntil, now time.Time) (models.PinState, error) {
	log := logger.FromContext(ctx)

	var (
		state       models.PinState
		lockedUntil sql.NullTime
	)
	row := r.db.QueryRowContext(ctx, registerFailedPinAttempt, maxAttempts, lockUntil, userID, now)
	if err := row.Scan(&state.FailedAttempts, &lockedUntil); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.PinState{}, ErrPinLockRaced
		}
		log.Err(err).Str("func", "*userRepository.RegisterFailedPinAttempt").Msg("error: scanning error")
		return models.PinState{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}
	state.Set = true
	if lockedUntil.Valid {
		state.LockedUntil = &lockedUntil.Time
	}

	return state, nil
}

// ResetPins clears the PIN and failure state of every listed user and returns
// how many accounts were touched. An empty id list is a no-op.
func (r *userRepository) ResetPins(ctx context.Context, userIDs []int64) (int64, error) {
	log := logger.FromContext(ctx)

	if len(userIDs) == 0 {
		return 0, nil
	}

	query, args, err := buildResetPinsQuery(userIDs)
	if err != nil {
		log.Err(err).Str("func", "*userRepository.ResetPins").Msg("error building query")
		return 0, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*userRepository.ResetPins").Msg("error executing update")
		return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return affected, nil
}
