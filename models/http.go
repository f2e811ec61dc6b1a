package models

// Request and response shapes of the PIN endpoints. Field names mirror the
// JSON contract consumed by the portal UI.

// PinSetRequest is the body of POST /api/document-pin. CurrentPin is
// required only when a PIN is already set and is being changed.
type PinSetRequest struct {
	Pin        string `json:"pin"`
	CurrentPin string `json:"currentPin,omitempty"`
}

// PinVerifyRequest is the body of PATCH /api/document-pin.
type PinVerifyRequest struct {
	Pin string `json:"pin"`
}

// PinResetRequest is the body of the administrative POST
// /api/document-pin/reset. Either a single UserID or a UserIDs batch must
// be provided.
type PinResetRequest struct {
	UserID  int64   `json:"userId,omitempty"`
	UserIDs []int64 `json:"userIds,omitempty"`
}

// PinVerifyResponse reports the outcome of a verification attempt. On
// failure AttemptsLeft carries how many tries remain before lockout; when
// the gate is locked, Locked is true and LockedUntil holds the expiry.
type PinVerifyResponse struct {
	Success      bool   `json:"success,omitempty"`
	Message      string `json:"message,omitempty"`
	Error        string `json:"error,omitempty"`
	AttemptsLeft *int   `json:"attemptsLeft,omitempty"`
	Locked       bool   `json:"locked,omitempty"`
	LockedUntil  string `json:"lockedUntil,omitempty"`
}

// PinResetResponse reports how many users were affected by a bulk reset.
type PinResetResponse struct {
	Message string `json:"message"`
	Count   int64  `json:"count"`
}

// APIError is the generic JSON error body. Expected failures are mapped to
// specific statuses with a short message; internal detail stays in the logs.
type APIError struct {
	Error string `json:"error"`
}
