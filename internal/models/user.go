package models

import "time"

// UserRole is the closed set of roles a platform user can hold.
type UserRole string

const (
	RoleStudent       UserRole = "student"
	RoleInstructor    UserRole = "instructor"
	RoleAdministrator UserRole = "administrator"
	RoleDataAnalyst   UserRole = "data_analyst"
)

// Valid reports whether r is one of the known roles.
func (r UserRole) Valid() bool {
	switch r {
	case RoleStudent, RoleInstructor, RoleAdministrator, RoleDataAnalyst:
		return true
	}
	return false
}

// User represents a platform account stored in the users table. The ID is
// the subject issued by the identity provider.
type User struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Role      UserRole  `db:"role" json:"role"`
	Approved  bool      `db:"approved" json:"approved"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Identity is the resolved caller for a single request.
type Identity struct {
	UserID   string   `db:"id" json:"user_id"`
	Role     UserRole `db:"role" json:"role"`
	Approved bool     `db:"approved" json:"approved"`
}

// Is reports whether the identity holds role.
func (i *Identity) Is(role UserRole) bool {
	return i != nil && i.Role == role
}

// RegisterRequest creates the local account for an identity-provider subject.
type RegisterRequest struct {
	UserID string   `json:"-" validate:"required"`
	Name   string   `json:"name" validate:"required,max=255"`
	Email  string   `json:"email" validate:"required,email"`
	Role   UserRole `json:"role" validate:"required,oneof=student instructor administrator data_analyst"`
}

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	Role     *UserRole
	Approved *bool
	Search   string
	Page     int
	PageSize int
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
