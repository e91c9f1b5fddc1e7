package users

import (
	"context"

	"github.com/google/uuid"
)

// RepositoryInterface defines the interface for user repository operations
type RepositoryInterface interface {
	CreateUser(ctx context.Context, user *User) error
	GetUserByPhone(ctx context.Context, phone string) (*User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, req *UpdateProfileRequest) (*User, error)
	SetRole(ctx context.Context, id uuid.UUID, role string) (*User, error)
	SetDocumentStatus(ctx context.Context, id uuid.UUID, document, status string) (*User, error)
}
