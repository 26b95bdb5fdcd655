package domain

import "time"

// UserRole enumerates portal account roles.
type UserRole string

const (
	UserRoleClient UserRole = "user"
	UserRoleAdmin  UserRole = "admin"
)

// User is the persisted portal account. The identity provider keeps a
// parallel record under the same ID; the two can drift.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         UserRole
	IsAdmin      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
