package identity

import (
	"time"

	"github.com/google/uuid"
)

// Roles a registered user can hold.
const (
	RolePatient = "patient"
	RoleDoctor  = "doctor"
)

// ValidRole reports whether r is a known role.
func ValidRole(r string) bool {
	return r == RolePatient || r == RoleDoctor
}

// User maps to the app_user table. The password hash never leaves the server.
type User struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	Name         string     `db:"name" json:"name"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Role         string     `db:"role" json:"role"`
	Phone        string     `db:"phone" json:"phone"`
	DateOfBirth  *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`
	Gender       *string    `db:"gender" json:"gender,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// Profile is the caller-facing projection returned by the auth endpoints.
type Profile struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Role  string    `json:"role"`
	Phone string    `json:"phone,omitempty"`
}

func (u *User) Profile() Profile {
	return Profile{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Role:  u.Role,
		Phone: u.Phone,
	}
}
