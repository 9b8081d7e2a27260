package access

import (
	"context"
	"log/slog"
)

// State is the guard's position in its resolution lifecycle.
type State string

const (
	// StateResolving means session resolution is still pending.
	StateResolving State = "resolving"
	// StateDenied is terminal; the caller must redirect.
	StateDenied State = "denied"
	// StateGranted is terminal; the caller may render guarded content.
	StateGranted State = "granted"
)

// DenyReason explains why the guard refused access.
type DenyReason string

const (
	DenyLoginRequired DenyReason = "login_required"
	DenyForbidden     DenyReason = "forbidden"
	DenyLookupFailed  DenyReason = "lookup_failed"
)

// Redirect targets the caller should navigate to on denial.
const (
	LoginPath = "/login"
	HomePath  = "/"
)

// Decision is the typed result of an authorization check. The guard never
// performs navigation itself; the caller applies Redirect when State is
// StateDenied.
type Decision struct {
	State    State
	Reason   DenyReason
	Redirect string
	Notice   string
}

// Allowed reports whether guarded content may render.
func (d Decision) Allowed() bool {
	return d.State == StateGranted
}

// TypeLookup fetches the stored account type for a user. The session claim
// may be stale relative to the users table, so the guard re-reads it here.
type TypeLookup interface {
	UserType(ctx context.Context, userID string) (string, error)
}

// Guard decides whether the caller may reach admin-only surfaces.
type Guard struct {
	lookup TypeLookup
	logger *slog.Logger
}

// NewGuard constructs a Guard.
func NewGuard(lookup TypeLookup, logger *slog.Logger) *Guard {
	return &Guard{lookup: lookup, logger: logger}
}

// Authorize runs the guard state machine for one request.
func (g *Guard) Authorize(ctx context.Context, status SessionStatus, claims Claims) Decision {
	switch status {
	case StatusLoading:
		return Decision{State: StateResolving}
	case StatusUnauthenticated:
		return Decision{
			State:    StateDenied,
			Reason:   DenyLoginRequired,
			Redirect: LoginPath,
			Notice:   "Sign in to continue.",
		}
	}

	// Session already carries an admin claim: grant without a store lookup.
	if Classify(status, claims) == RoleAdmin {
		return Decision{State: StateGranted}
	}

	storedType, err := g.lookup.UserType(ctx, claims.UserID)
	if err != nil {
		if g.logger != nil {
			g.logger.Error("guard type lookup", slog.String("user_id", claims.UserID), slog.Any("error", err))
		}
		return Decision{
			State:    StateDenied,
			Reason:   DenyLookupFailed,
			Redirect: HomePath,
			Notice:   "Could not verify your account. Try again.",
		}
	}
	if storedType == string(RoleAdmin) {
		return Decision{State: StateGranted}
	}
	return Decision{
		State:    StateDenied,
		Reason:   DenyForbidden,
		Redirect: HomePath,
		Notice:   "Admin access required.",
	}
}
