// Package storage provides read access to the platform's user roles, which
// back the rate limiter's privilege check. The platform owns the user table;
// gatekeeper only ever reads from it. Backends: postgres (production, shared
// with the platform database), sqlite (small deployments), memory (tests).
package storage

import (
	"context"
)

// RoleAdmin is the role granting elevated rate limit quotas.
const RoleAdmin = "admin"

// RoleStore defines the interface for user role lookups.
type RoleStore interface {
	// GetRole returns the stored role for the given user id.
	// Returns ErrUserNotFound when the user has no role record.
	GetRole(ctx context.Context, userID string) (string, error)

	// Close closes the storage connection and cleans up resources
	Close() error
}
