package users

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	pgx "github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/hasnaanagy/salik/pkg/common"
	"github.com/hasnaanagy/salik/pkg/middleware"
)

// Service handles account business logic
type Service struct {
	repo          RepositoryInterface
	jwtSecret     string
	jwtExpiration time.Duration
}

// NewService creates a new users service
func NewService(repo RepositoryInterface, jwtSecret string, jwtExpirationHours int) *Service {
	return &Service{
		repo:          repo,
		jwtSecret:     jwtSecret,
		jwtExpiration: time.Duration(jwtExpirationHours) * time.Hour,
	}
}

// Signup registers a new account and returns a signed token
func (s *Service) Signup(ctx context.Context, req *SignupRequest) (*AuthResponse, error) {
	role := req.Role
	if role == "" {
		role = RoleCustomer
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, common.NewInternalServerError("failed to hash password")
	}

	user := &User{
		ID:           uuid.New(),
		FullName:     req.FullName,
		Phone:        req.Phone,
		NationalID:   req.NationalID,
		PasswordHash: string(hash),
		Role:         role,
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return nil, common.NewConflictError("phone or national id already registered")
		}
		return nil, common.NewInternalServerError("failed to create user")
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, common.NewInternalServerError("failed to issue token")
	}

	return &AuthResponse{Token: token, User: user}, nil
}

// Login authenticates by phone and password and returns a signed token
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	user, err := s.repo.GetUserByPhone(ctx, req.Phone)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NewUnauthorizedError("invalid phone or password")
		}
		return nil, common.NewInternalServerError("failed to look up user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, common.NewUnauthorizedError("invalid phone or password")
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, common.NewInternalServerError("failed to issue token")
	}

	return &AuthResponse{Token: token, User: user}, nil
}

// GetProfile returns the account for the given user ID
func (s *Service) GetProfile(ctx context.Context, userID uuid.UUID) (*User, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NewNotFoundError("user not found", err)
		}
		return nil, common.NewInternalServerError("failed to get user")
	}
	return user, nil
}

// UpdateProfile updates the caller's own profile
func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, req *UpdateProfileRequest) (*User, error) {
	user, err := s.repo.UpdateProfile(ctx, userID, req)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NewNotFoundError("user not found", err)
		}
		return nil, common.NewInternalServerError("failed to update profile")
	}
	return user, nil
}

// SwitchRole toggles the caller between customer and provider.
// Admin accounts cannot switch.
func (s *Service) SwitchRole(ctx context.Context, userID uuid.UUID) (*User, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NewNotFoundError("user not found", err)
		}
		return nil, common.NewInternalServerError("failed to get user")
	}

	var next string
	switch user.Role {
	case RoleCustomer:
		next = RoleProvider
	case RoleProvider:
		next = RoleCustomer
	default:
		return nil, common.NewForbiddenError("admin accounts cannot switch roles")
	}

	updated, err := s.repo.SetRole(ctx, userID, next)
	if err != nil {
		return nil, common.NewInternalServerError("failed to switch role")
	}
	return updated, nil
}

// SetDocumentStatus records an admin's review decision for one document
func (s *Service) SetDocumentStatus(ctx context.Context, userID uuid.UUID, req *UpdateDocumentStatusRequest) (*User, error) {
	user, err := s.repo.SetDocumentStatus(ctx, userID, req.Document, req.Status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NewNotFoundError("user not found", err)
		}
		return nil, common.NewInternalServerError("failed to update document status")
	}
	return user, nil
}

func (s *Service) issueToken(user *User) (string, error) {
	now := time.Now()
	claims := &middleware.Claims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtExpiration)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}
