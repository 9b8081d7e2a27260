package auth

import "time"

// User represents an authenticated user account. Type distinguishes admin
// accounts from regular learners.
type User struct {
	ID           int64
	Email        string
	Name         string
	PasswordHash string
	Type         string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
