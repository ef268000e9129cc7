package models

import "time"

// UserRole represents the two roles known to the mesh. The role is derived
// from the email local part at registration and never changes afterwards.
type UserRole string

const (
	RoleStudent UserRole = "student"
	RoleFaculty UserRole = "faculty"
)

// User represents an account stored in the users table.
type User struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         UserRole  `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
