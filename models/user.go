// SPDX-License-Identifier: Apache-2.0

package models

import "time"

// Roles recognised by the authorization layer. Role is carried in the JWT
// and checked by handlers and services; there is no finer-grained ACL.
const (
	RoleAdmin    = "admin"
	RoleEmployee = "employee"
)

// User represents an account entity used for authentication and authorization.
// It contains identity attributes, credential data, and the document-PIN
// state fields. Sensitive fields must never be exposed outside trusted
// boundaries.
type User struct {
	// UserID is the internal unique identifier of the user.
	// It is not exposed via JSON and is used only at the persistence layer.
	UserID int64 `json:"-"`

	// Login is the unique user login identifier.
	// Typically used during authentication.
	Login string `json:"login"`

	// Name is the display name of the user.
	// It is non-sensitive and may be shown in UI.
	Name string `json:"name"`

	// Role is the authorization role of the account: RoleAdmin or
	// RoleEmployee. Admins may access any document and reset other
	// users' PINs.
	Role string `json:"role"`

	// Password carries the plaintext password only on inbound
	// register/login requests. It is never persisted as-is.
	Password string `json:"password,omitempty"`

	// PasswordHash stores the HMAC-SHA256 of the user's password.
	// Never exposed via JSON.
	PasswordHash string `json:"-"`

	// PinState holds the document-PIN secondary-authentication fields.
	// Mutated exclusively through the PIN gate operations.
	PinState PinState `json:"-"`

	// CreatedAt is the timestamp when the user account was created.
	// Used for auditing and lifecycle management.
	CreatedAt time.Time `json:"created_at"`
}

// IsAdmin reports whether the user holds the administrative role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// TableName returns the name of the database table
// associated with the User model.
func (u User) TableName() string {
	return "users"
}

// Principal identifies an authenticated caller: the user ID and role
// extracted from a verified JWT. Handlers build a Principal from the
// request context and pass it down to services for authorization checks.
type Principal struct {
	UserID int64
	Role   string
}

// IsAdmin reports whether the principal holds the administrative role.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}
