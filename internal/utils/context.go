// Package utils provides general-purpose helper utilities
// used across different parts of the application.
// Includes tools for working with context, type-safe keys, hashing,
// HTTP response writing, JWT token generation and validation, and other
// common operations.
package utils

import (
	"context"
	"errors"
)

// contextKey is a private type for context keys.
// Using a dedicated type instead of a plain string prevents key collisions
// with other packages that may use string-based keys in the context.
type contextKey string

// String returns the string representation of the context key.
// Implements the fmt.Stringer interface.
func (c contextKey) String() string {
	return string(c)
}

// UserIDCtxKey is the key used to store the authenticated user identifier
// in the context. Written by the auth middleware, read via
// GetUserIDFromContext.
var UserIDCtxKey = contextKey("userID")

// RoleCtxKey is the key used to store the authenticated user's role in the
// context. Written by the auth middleware alongside UserIDCtxKey.
var RoleCtxKey = contextKey("role")

// ErrNoUserIDInContext is returned when the context does not carry an
// authenticated user identifier. Hitting it in a handler behind the auth
// middleware indicates a wiring bug, not a client error.
var ErrNoUserIDInContext = errors.New("no user id in context")

// GetUserIDFromContext retrieves the user identifier stored under
// UserIDCtxKey. Returns ErrNoUserIDInContext if the value is absent or has
// an unexpected type.
func GetUserIDFromContext(ctx context.Context) (int64, error) {
	userID, ok := ctx.Value(UserIDCtxKey).(int64)
	if !ok {
		return 0, ErrNoUserIDInContext
	}

	return userID, nil
}

// GetRoleFromContext retrieves the role stored under RoleCtxKey. An absent
// role degrades to the empty string, which never satisfies an admin check.
func GetRoleFromContext(ctx context.Context) string {
	role, _ := ctx.Value(RoleCtxKey).(string)
	return role
}
