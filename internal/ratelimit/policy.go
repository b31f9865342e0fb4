package ratelimit

import (
	"fmt"
	"time"
)

// Class names a category of protected operation with its own quota
// configuration. Every call site references one of the constants below;
// the policy table treats anything else as a programming error.
type Class string

const (
	ClassPublic            Class = "public"
	ClassAuthLogin         Class = "auth-login"
	ClassAuthSignup        Class = "auth-signup"
	ClassAuthPasswordReset Class = "auth-password-reset"
	ClassAPIUser           Class = "api-user"
	ClassChat              Class = "chat"
	ClassBlogGeneration    Class = "blog-generation"
	ClassAdmin             Class = "admin"
)

// UserScoped reports whether the class tracks quotas per authenticated user.
// User-scoped classes silently degrade to the IP-scoped public class when
// the caller's identity is unknown.
func (c Class) UserScoped() bool {
	switch c {
	case ClassAPIUser, ClassChat, ClassBlogGeneration, ClassAdmin:
		return true
	}
	return false
}

// Window is one quota: at most Max requests inside a sliding Duration.
type Window struct {
	Max      int
	Duration time.Duration
}

// Policy is the immutable table mapping each limit class to its windows.
// Classes with two windows must satisfy both (AND semantics); the coarser
// window is listed first and is the one surfaced to callers on a combined
// failure. The table is built once at startup and is safe for concurrent
// reads.
type Policy struct {
	windows map[Class][]Window
}

// NewPolicy builds a policy table from the given class-to-window mapping.
// Every class must have one or two windows with positive limits.
func NewPolicy(windows map[Class][]Window) (*Policy, error) {
	table := make(map[Class][]Window, len(windows))
	for class, ws := range windows {
		if len(ws) < 1 || len(ws) > 2 {
			return nil, fmt.Errorf("class %q must have one or two windows, got %d", class, len(ws))
		}
		for _, w := range ws {
			if w.Max <= 0 || w.Duration <= 0 {
				return nil, fmt.Errorf("class %q has a non-positive window: %+v", class, w)
			}
		}
		table[class] = append([]Window(nil), ws...)
	}
	return &Policy{windows: table}, nil
}

// DefaultPolicy returns the standard quota table for the blogging platform.
func DefaultPolicy() *Policy {
	p, err := NewPolicy(map[Class][]Window{
		ClassPublic: {
			{Max: 100, Duration: time.Hour},
			{Max: 20, Duration: time.Minute},
		},
		ClassAuthLogin: {
			{Max: 10, Duration: 15 * time.Minute},
		},
		ClassAuthSignup: {
			{Max: 5, Duration: time.Hour},
		},
		ClassAuthPasswordReset: {
			{Max: 3, Duration: time.Hour},
		},
		ClassAPIUser: {
			{Max: 200, Duration: time.Hour},
			{Max: 50, Duration: time.Minute},
		},
		ClassChat: {
			{Max: 100, Duration: time.Hour},
			{Max: 10, Duration: time.Minute},
		},
		ClassBlogGeneration: {
			{Max: 20, Duration: time.Hour},
			{Max: 3, Duration: time.Minute},
		},
		ClassAdmin: {
			{Max: 1000, Duration: time.Hour},
		},
	})
	if err != nil {
		panic(err)
	}
	return p
}

// Windows returns the configured windows for the class. An unknown class is
// a bug in the caller, not a runtime condition, so it panics rather than
// returning an error.
func (p *Policy) Windows(class Class) []Window {
	ws, ok := p.windows[class]
	if !ok {
		panic(fmt.Sprintf("ratelimit: unknown limit class %q", class))
	}
	return ws
}
