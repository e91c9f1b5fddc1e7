package users

import (
	"time"

	"github.com/google/uuid"
)

// User roles
const (
	RoleCustomer = "customer"
	RoleProvider = "provider"
	RoleAdmin    = "admin"
)

// Document verification statuses; empty string means no document submitted
const (
	DocumentStatusPending  = "pending"
	DocumentStatusVerified = "verified"
	DocumentStatusRejected = "rejected"
)

// Document kinds subject to verification
const (
	DocumentLicense    = "license"
	DocumentNationalID = "national_id"
)

// User is an account record. Phone and national ID are globally unique.
type User struct {
	ID               uuid.UUID  `json:"id"`
	FullName         string     `json:"full_name"`
	Phone            string     `json:"phone"`
	NationalID       string     `json:"national_id"`
	PasswordHash     string     `json:"-"`
	Role             string     `json:"role"`
	ProfileImage     *string    `json:"profile_image,omitempty"`
	LicenseImage     *string    `json:"license_image,omitempty"`
	LicenseStatus    *string    `json:"license_status,omitempty"`
	NationalIDImage  *string    `json:"national_id_image,omitempty"`
	NationalIDStatus *string    `json:"national_id_status,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
	DeletedAt        *time.Time `json:"-"`
}

// SignupRequest is the registration payload
type SignupRequest struct {
	FullName   string `json:"full_name" binding:"required,min=2,max=100"`
	Phone      string `json:"phone" binding:"required,min=8,max=20"`
	NationalID string `json:"national_id" binding:"required,min=8,max=30"`
	Password   string `json:"password" binding:"required,min=8"`
	Role       string `json:"role" binding:"omitempty,oneof=customer provider"`
}

// LoginRequest is the login payload
type LoginRequest struct {
	Phone    string `json:"phone" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse carries the issued token and the account
type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// UpdateProfileRequest updates mutable profile fields
type UpdateProfileRequest struct {
	FullName        *string `json:"full_name" binding:"omitempty,min=2,max=100"`
	ProfileImage    *string `json:"profile_image" binding:"omitempty,url"`
	LicenseImage    *string `json:"license_image" binding:"omitempty,url"`
	NationalIDImage *string `json:"national_id_image" binding:"omitempty,url"`
}

// UpdateDocumentStatusRequest is the admin document-review payload
type UpdateDocumentStatusRequest struct {
	Document string `json:"document" binding:"required,oneof=license national_id"`
	Status   string `json:"status" binding:"required,oneof=pending verified rejected"`
}
