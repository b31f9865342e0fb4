package ratelimit

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"gatekeeper/internal/storage"
)

// IP extraction headers, most trustworthy first. The CDN's connecting-IP
// header wins because everything behind it (including X-Forwarded-For) can
// be set by the client when no CDN is in front to overwrite it.
const (
	headerCDNConnectingIP = "CF-Connecting-IP"
	headerRealIP          = "X-Real-IP"
	headerForwardedFor    = "X-Forwarded-For"
)

// fallbackIP is used when no proxy header is present at all.
const fallbackIP = "127.0.0.1"

type contextKey string

const userContextKey contextKey = "ratelimit_user"

// WithUser returns a context carrying the authenticated user id, which the
// resolver picks up for user-scoped limit classes.
func WithUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userContextKey, userID)
}

// UserFromContext returns the authenticated user id, or "" when anonymous.
func UserFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(userContextKey).(string); ok {
		return id
	}
	return ""
}

// Identity is what the limiter knows about a caller: the client IP, the
// authenticated user id (empty when anonymous), and whether the user holds
// the admin role.
type Identity struct {
	IP         string
	UserID     string
	Privileged bool
}

// Resolver derives rate limit identities from inbound requests. The role
// store may be nil, in which case no caller is ever privileged.
type Resolver struct {
	roles storage.RoleStore
}

// NewResolver creates a resolver backed by the given role store.
func NewResolver(roles storage.RoleStore) *Resolver {
	return &Resolver{roles: roles}
}

// Resolve extracts the caller's identity from the request. Identity failures
// are never errors: an unknown user degrades to anonymous, and a failed role
// lookup degrades to unprivileged so elevation is fail-closed.
func (r *Resolver) Resolve(req *http.Request) Identity {
	id := Identity{
		IP:     ClientIP(req),
		UserID: UserFromContext(req.Context()),
	}

	if id.UserID == "" || r.roles == nil {
		return id
	}

	role, err := r.roles.GetRole(req.Context(), id.UserID)
	if err != nil {
		// Unknown user or store failure both mean no elevated quota.
		slog.Debug("role lookup failed, treating caller as unprivileged",
			"user_id", id.UserID,
			"error", err,
		)
		return id
	}
	id.Privileged = role == storage.RoleAdmin

	return id
}

// ClientIP extracts the client IP from the request, checking proxy headers
// in trust order: CDN connecting IP, then X-Real-IP, then the left-most
// X-Forwarded-For entry, then the loopback fallback.
func ClientIP(r *http.Request) string {
	if ip := r.Header.Get(headerCDNConnectingIP); ip != "" {
		return ip
	}

	if ip := r.Header.Get(headerRealIP); ip != "" {
		return ip
	}

	if xff := r.Header.Get(headerForwardedFor); xff != "" {
		ips := strings.Split(xff, ",")
		if len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}

	return fallbackIP
}
