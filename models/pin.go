package models

import "time"

// PinState holds the per-user document-PIN fields as stored on the users
// table. The invariant Set == (Hash != "") is maintained by the PIN gate:
// setting a PIN always writes both fields, resetting always clears both.
type PinState struct {
	// Hash is the bcrypt hash of the 4-digit PIN; empty when no PIN is set.
	Hash string

	// Set reports whether a PIN is currently configured.
	Set bool

	// FailedAttempts counts consecutive wrong verifications since the last
	// success, set, or reset.
	FailedAttempts int

	// LockedUntil, when non-nil and in the future, makes verification fail
	// unconditionally without consuming an attempt.
	LockedUntil *time.Time
}

// LockedAt reports whether the PIN gate is locked at the given instant.
func (s PinState) LockedAt(now time.Time) bool {
	return s.LockedUntil != nil && s.LockedUntil.After(now)
}

// PinStatus is the client-visible projection of PinState returned by the
// status endpoint. The UI uses it to decide which dialog to show (set PIN,
// enter PIN, or locked-out notice).
type PinStatus struct {
	PinSet         bool       `json:"pinSet"`
	Locked         bool       `json:"isLocked"`
	LockedUntil    *time.Time `json:"lockedUntil,omitempty"`
	FailedAttempts int        `json:"failedAttempts"`
}
