package users

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	pgx "github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/hasnaanagy/salik/pkg/common"
)

// MockRepository is an in-package mock for testing
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateUser(ctx context.Context, user *User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockRepository) GetUserByPhone(ctx context.Context, phone string) (*User, error) {
	args := m.Called(ctx, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) UpdateProfile(ctx context.Context, id uuid.UUID, req *UpdateProfileRequest) (*User, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) SetRole(ctx context.Context, id uuid.UUID, role string) (*User, error) {
	args := m.Called(ctx, id, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) SetDocumentStatus(ctx context.Context, id uuid.UUID, document, status string) (*User, error) {
	args := m.Called(ctx, id, document, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

const testSecret = "test-secret"

func newTestService(repo RepositoryInterface) *Service {
	return NewService(repo, testSecret, 24)
}

func TestSignup_Success(t *testing.T) {
	mockRepo := new(MockRepository)
	service := newTestService(mockRepo)
	ctx := context.Background()

	mockRepo.On("CreateUser", ctx, mock.AnythingOfType("*users.User")).Return(nil)

	resp, err := service.Signup(ctx, &SignupRequest{
		FullName:   "Hasnaa Nagy",
		Phone:      "+201001234567",
		NationalID: "29801011234567",
		Password:   "password123",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, RoleCustomer, resp.User.Role, "role defaults to customer")
	assert.NotEqual(t, "password123", resp.User.PasswordHash)
	mockRepo.AssertExpectations(t)
}

func TestSignup_ProviderRole(t *testing.T) {
	mockRepo := new(MockRepository)
	service := newTestService(mockRepo)
	ctx := context.Background()

	mockRepo.On("CreateUser", ctx, mock.MatchedBy(func(u *User) bool {
		return u.Role == RoleProvider
	})).Return(nil)

	resp, err := service.Signup(ctx, &SignupRequest{
		FullName:   "Provider One",
		Phone:      "+201009999999",
		NationalID: "29901011234567",
		Password:   "password123",
		Role:       RoleProvider,
	})

	require.NoError(t, err)
	assert.Equal(t, RoleProvider, resp.User.Role)
}

func TestSignup_DuplicatePhone(t *testing.T) {
	mockRepo := new(MockRepository)
	service := newTestService(mockRepo)
	ctx := context.Background()

	mockRepo.On("CreateUser", ctx, mock.AnythingOfType("*users.User")).Return(ErrDuplicate)

	resp, err := service.Signup(ctx, &SignupRequest{
		FullName:   "Hasnaa Nagy",
		Phone:      "+201001234567",
		NationalID: "29801011234567",
		Password:   "password123",
	})

	assert.Nil(t, resp)
	appErr, ok := err.(*common.AppError)
	require.True(t, ok)
	assert.Equal(t, common.CodeConflict, appErr.Code)
}

func TestLogin_Success(t *testing.T) {
	mockRepo := new(MockRepository)
	service := newTestService(mockRepo)
	ctx := context.Background()

	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	user := &User{
		ID:           uuid.New(),
		Phone:        "+201001234567",
		PasswordHash: string(hash),
		Role:         RoleCustomer,
	}

	mockRepo.On("GetUserByPhone", ctx, "+201001234567").Return(user, nil)

	resp, err := service.Login(ctx, &LoginRequest{Phone: "+201001234567", Password: "password123"})

	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, user.ID, resp.User.ID)
}

func TestLogin_WrongPassword(t *testing.T) {
	mockRepo := new(MockRepository)
	service := newTestService(mockRepo)
	ctx := context.Background()

	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	user := &User{ID: uuid.New(), Phone: "+201001234567", PasswordHash: string(hash)}

	mockRepo.On("GetUserByPhone", ctx, "+201001234567").Return(user, nil)

	resp, err := service.Login(ctx, &LoginRequest{Phone: "+201001234567", Password: "wrong"})

	assert.Nil(t, resp)
	appErr, ok := err.(*common.AppError)
	require.True(t, ok)
	assert.Equal(t, common.CodeUnauthorized, appErr.Code)
}

func TestLogin_UnknownPhone(t *testing.T) {
	mockRepo := new(MockRepository)
	service := newTestService(mockRepo)
	ctx := context.Background()

	mockRepo.On("GetUserByPhone", ctx, "+200000000000").Return(nil, pgx.ErrNoRows)

	resp, err := service.Login(ctx, &LoginRequest{Phone: "+200000000000", Password: "password123"})

	assert.Nil(t, resp)
	appErr, ok := err.(*common.AppError)
	require.True(t, ok)
	assert.Equal(t, common.CodeUnauthorized, appErr.Code)
}

func TestSwitchRole_TogglesBothWays(t *testing.T) {
	tests := []struct {
		name     string
		current  string
		expected string
	}{
		{"customer to provider", RoleCustomer, RoleProvider},
		{"provider to customer", RoleProvider, RoleCustomer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockRepository)
			service := newTestService(mockRepo)
			ctx := context.Background()
			userID := uuid.New()

			mockRepo.On("GetUserByID", ctx, userID).Return(&User{ID: userID, Role: tt.current}, nil)
			mockRepo.On("SetRole", ctx, userID, tt.expected).Return(&User{ID: userID, Role: tt.expected}, nil)

			user, err := service.SwitchRole(ctx, userID)

			require.NoError(t, err)
			assert.Equal(t, tt.expected, user.Role)
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestSwitchRole_AdminForbidden(t *testing.T) {
	mockRepo := new(MockRepository)
	service := newTestService(mockRepo)
	ctx := context.Background()
	userID := uuid.New()

	mockRepo.On("GetUserByID", ctx, userID).Return(&User{ID: userID, Role: RoleAdmin}, nil)

	user, err := service.SwitchRole(ctx, userID)

	assert.Nil(t, user)
	appErr, ok := err.(*common.AppError)
	require.True(t, ok)
	assert.Equal(t, common.CodeForbidden, appErr.Code)
}

func TestSetDocumentStatus(t *testing.T) {
	mockRepo := new(MockRepository)
	service := newTestService(mockRepo)
	ctx := context.Background()
	userID := uuid.New()

	verified := DocumentStatusVerified
	mockRepo.On("SetDocumentStatus", ctx, userID, DocumentLicense, DocumentStatusVerified).
		Return(&User{ID: userID, LicenseStatus: &verified}, nil)

	user, err := service.SetDocumentStatus(ctx, userID, &UpdateDocumentStatusRequest{
		Document: DocumentLicense,
		Status:   DocumentStatusVerified,
	})

	require.NoError(t, err)
	require.NotNil(t, user.LicenseStatus)
	assert.Equal(t, DocumentStatusVerified, *user.LicenseStatus)
}

func TestGetProfile_NotFound(t *testing.T) {
	mockRepo := new(MockRepository)
	service := newTestService(mockRepo)
	ctx := context.Background()
	userID := uuid.New()

	mockRepo.On("GetUserByID", ctx, userID).Return(nil, pgx.ErrNoRows)

	user, err := service.GetProfile(ctx, userID)

	assert.Nil(t, user)
	appErr, ok := err.(*common.AppError)
	require.True(t, ok)
	assert.Equal(t, common.CodeNotFound, appErr.Code)
	assert.True(t, errors.Is(appErr, pgx.ErrNoRows))
}
