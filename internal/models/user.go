package models

import "time"

// Role controls what a user may do with coupon requests
type Role string

const (
	RoleSuperadmin Role = "superadmin" // May approve/reject/delete any request
	RoleAdmin      Role = "admin"      // May approve/reject requests referring to them
	RoleCashier    Role = "cashier"    // Creates and finalizes own requests
)

// ValidRole reports whether s is one of the known roles
func ValidRole(s string) bool {
	switch Role(s) {
	case RoleSuperadmin, RoleAdmin, RoleCashier:
		return true
	}
	return false
}

// User is a staff account
type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Mobile       string    `json:"mobile"` // Normalized +8801XXXXXXXXX, may be empty
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

// CreateUserRequest is used when a superadmin creates a staff account
type CreateUserRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Mobile   string `json:"mobile"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required"`
}

// LoginRequest carries the login form fields
type LoginRequest struct {
	Login    string `json:"login" validate:"required"` // Username or email
	Password string `json:"password" validate:"required"`
}
