package ratelimit

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"gatekeeper/internal/storage"

	"github.com/stretchr/testify/assert"
)

// failingRoleStore simulates an unreachable platform database.
type failingRoleStore struct{}

func (failingRoleStore) GetRole(context.Context, string) (string, error) {
	return "", errors.New("dial tcp: connection refused")
}

func (failingRoleStore) Close() error { return nil }

func TestClientIP_Precedence(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/posts", nil)
	req.Header.Set("CF-Connecting-IP", "9.9.9.9")
	req.Header.Set("X-Real-IP", "8.8.8.8")
	req.Header.Set("X-Forwarded-For", "1.1.1.1, 2.2.2.2")

	assert.Equal(t, "9.9.9.9", ClientIP(req), "CDN header must win over everything")
}

func TestClientIP_RealIPBeforeForwardedFor(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/posts", nil)
	req.Header.Set("X-Real-IP", "8.8.8.8")
	req.Header.Set("X-Forwarded-For", "1.1.1.1, 2.2.2.2")

	assert.Equal(t, "8.8.8.8", ClientIP(req))
}

func TestClientIP_ForwardedForFirstEntry(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/posts", nil)
	req.Header.Set("X-Forwarded-For", " 1.1.1.1 , 2.2.2.2")

	assert.Equal(t, "1.1.1.1", ClientIP(req), "left-most entry, trimmed")
}

func TestClientIP_Fallback(t *testing.T) {
	req := httptest.NewRequest("GET", "/api/posts", nil)
	assert.Equal(t, "127.0.0.1", ClientIP(req))
}

func TestUserFromContext(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, UserFromContext(ctx))

	ctx = WithUser(ctx, "user-42")
	assert.Equal(t, "user-42", UserFromContext(ctx))
}

func TestResolver_Resolve_Anonymous(t *testing.T) {
	resolver := NewResolver(storage.NewMemoryStore(nil))

	req := httptest.NewRequest("GET", "/api/posts", nil)
	req.Header.Set("X-Real-IP", "203.0.113.5")

	id := resolver.Resolve(req)
	assert.Equal(t, "203.0.113.5", id.IP)
	assert.Empty(t, id.UserID)
	assert.False(t, id.Privileged)
}

func TestResolver_Resolve_AdminUser(t *testing.T) {
	roles := storage.NewMemoryStore(map[string]string{"user-1": storage.RoleAdmin})
	resolver := NewResolver(roles)

	req := httptest.NewRequest("GET", "/api/posts", nil)
	req = req.WithContext(WithUser(req.Context(), "user-1"))

	id := resolver.Resolve(req)
	assert.Equal(t, "user-1", id.UserID)
	assert.True(t, id.Privileged)
}

func TestResolver_Resolve_RegularUser(t *testing.T) {
	roles := storage.NewMemoryStore(map[string]string{"user-2": "author"})
	resolver := NewResolver(roles)

	req := httptest.NewRequest("GET", "/api/posts", nil)
	req = req.WithContext(WithUser(req.Context(), "user-2"))

	id := resolver.Resolve(req)
	assert.True(t, id.UserID == "user-2")
	assert.False(t, id.Privileged)
}

func TestResolver_Resolve_UnknownUserNotPrivileged(t *testing.T) {
	resolver := NewResolver(storage.NewMemoryStore(nil))

	req := httptest.NewRequest("GET", "/api/posts", nil)
	req = req.WithContext(WithUser(req.Context(), "ghost"))

	id := resolver.Resolve(req)
	assert.Equal(t, "ghost", id.UserID)
	assert.False(t, id.Privileged, "missing role record must not elevate")
}

func TestResolver_Resolve_RoleLookupFailureNotPrivileged(t *testing.T) {
	resolver := NewResolver(failingRoleStore{})

	req := httptest.NewRequest("GET", "/api/posts", nil)
	req = req.WithContext(WithUser(req.Context(), "user-1"))

	id := resolver.Resolve(req)
	assert.Equal(t, "user-1", id.UserID, "identity survives a failed role lookup")
	assert.False(t, id.Privileged, "privilege elevation is fail-closed")
}

func TestResolver_Resolve_NilRoleStore(t *testing.T) {
	resolver := NewResolver(nil)

	req := httptest.NewRequest("GET", "/api/posts", nil)
	req = req.WithContext(WithUser(req.Context(), "user-1"))

	id := resolver.Resolve(req)
	assert.False(t, id.Privileged)
}
