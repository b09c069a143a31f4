package dto

import (
	"time"

	"github.com/google/uuid"
)

type UserResponse struct {
	ID                 uuid.UUID  `json:"id"`
	Email              string     `json:"email"`
	FirstName          string     `json:"first_name"`
	LastName           string     `json:"last_name"`
	FullName           string     `json:"full_name"`
	Department         string     `json:"department,omitempty"`
	Position           string     `json:"position,omitempty"`
	Role               string     `json:"role"`
	IsActive           bool       `json:"is_active"`
	MustChangePassword bool       `json:"must_change_password,omitempty"`
	ProfileImagePath   string     `json:"profile_image_path,omitempty"`
	DateJoined         time.Time  `json:"date_joined"`
	LastLoginAt        *time.Time `json:"last_login_at,omitempty"`
}

type CreateUserRequest struct {
	Email      string `json:"email"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Department string `json:"department"`
	Position   string `json:"position"`
	Role       string `json:"role"`
}

// CreateUserResponse is returned once: the temporary password is never
// retrievable again.
type CreateUserResponse struct {
	User              UserResponse `json:"user"`
	TemporaryPassword string       `json:"temporary_password"`
}

// UpdateUserRequest uses pointers so "field absent" and "set to empty" stay
// distinguishable. A non-nil Role from a non-admin rejects the whole request.
type UpdateUserRequest struct {
	FirstName        *string `json:"first_name"`
	LastName         *string `json:"last_name"`
	Department       *string `json:"department"`
	Position         *string `json:"position"`
	ProfileImagePath *string `json:"profile_image_path"`
	Role             *string `json:"role"`
}

// EmployeeSummary is a user row with aggregate certificate counts, used by
// the employee directory and the certificate overview.
type EmployeeSummary struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Department   string    `json:"department,omitempty"`
	Position     string    `json:"position,omitempty"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"is_active"`
	TotalCerts   int64     `json:"total_certs"`
	ActiveCerts  int64     `json:"active_certs"`
	ExpiredCerts int64     `json:"expired_certs"`
}

type EmployeeListResponse struct {
	Employees      []EmployeeSummary `json:"employees"`
	TotalEmployees int64             `json:"total_employees"`
	TotalAdmins    int64             `json:"total_admins"`
	WithCerts      int64             `json:"employees_with_certs"`
}
