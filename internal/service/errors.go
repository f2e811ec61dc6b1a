package service

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidDataProvided = errors.New("invalid data provided")
	ErrWrongPassword       = errors.New("wrong password")

	ErrTokenCreationFailed     = errors.New("token creation failed")
	ErrTokenIsExpiredOrInvalid = errors.New("token is expired or invalid")

	// ErrForbidden is returned when the caller is authenticated but not
	// allowed to touch the requested resource.
	ErrForbidden = errors.New("access to the requested resource is forbidden")

	// ErrInvalidPinFormat is returned when a submitted PIN is not exactly
	// four digits.
	ErrInvalidPinFormat = errors.New("pin must be exactly 4 digits")

	// ErrPinNotSet is returned when verification is attempted before any PIN
	// was configured for the account.
	ErrPinNotSet = errors.New("pin is not set")

	// ErrWrongCurrentPin is returned when changing a PIN and the supplied
	// current PIN does not match. This path never touches the failure
	// counter: the caller already proved their identity with a session token.
	ErrWrongCurrentPin = errors.New("current pin does not match")
)

// PinLockedError reports that the account's PIN is locked out after too many
// failed attempts. Until is when the lockout expires.
type PinLockedError struct {
	Until time.Time
}

func (e *PinLockedError) Error() string {
	return fmt.Sprintf("pin is locked until %s", e.Until.Format(time.RFC3339))
}

// RetryAfter returns how long from now the caller must wait, never negative.
func (e *PinLockedError) RetryAfter(now time.Time) time.Duration {
	d := e.Until.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

// InvalidPinError reports a failed verification together with how many
// attempts remain before the lockout arms.
type InvalidPinError struct {
	AttemptsLeft int
}

func (e *InvalidPinError) Error() string {
	return fmt.Sprintf("invalid pin, %d attempts left", e.AttemptsLeft)
}
