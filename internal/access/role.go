// Package access implements role classification and the admin access guard.
package access

// SessionStatus describes where session resolution currently stands.
type SessionStatus string

const (
	// StatusLoading means the session has not been resolved yet.
	StatusLoading SessionStatus = "loading"
	// StatusUnauthenticated means no user is attached to the session.
	StatusUnauthenticated SessionStatus = "unauthenticated"
	// StatusAuthenticated means a user is attached to the session.
	StatusAuthenticated SessionStatus = "authenticated"
)

// Role is the closed set of viewer roles the permission system knows about.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleUser    Role = "user"
	RoleGuest   Role = "guest"
	RoleLoading Role = "loading"
)

// Claims carries the session attributes role classification depends on.
type Claims struct {
	UserID string
	Type   string
}

// Classify derives the viewer role from session status and claims. It is the
// only place a Role is produced from session state.
func Classify(status SessionStatus, claims Claims) Role {
	switch status {
	case StatusLoading:
		return RoleLoading
	case StatusAuthenticated:
		if claims.Type == string(RoleAdmin) {
			return RoleAdmin
		}
		return RoleUser
	default:
		return RoleGuest
	}
}
