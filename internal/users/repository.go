package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrDuplicate is returned when phone or national ID is already taken
var ErrDuplicate = errors.New("phone or national id already registered")

const uniqueViolation = "23505"

const userColumns = `
	id, full_name, phone, national_id, password_hash, role,
	profile_image, license_image, license_status,
	national_id_image, national_id_status,
	created_at, updated_at`

// Repository handles database operations for user accounts
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new users repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func scanUser(scan func(dest ...interface{}) error) (*User, error) {
	u := &User{}
	err := scan(
		&u.ID, &u.FullName, &u.Phone, &u.NationalID, &u.PasswordHash, &u.Role,
		&u.ProfileImage, &u.LicenseImage, &u.LicenseStatus,
		&u.NationalIDImage, &u.NationalIDStatus,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// CreateUser creates a new user
func (r *Repository) CreateUser(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (id, full_name, phone, national_id, password_hash, role)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		user.ID,
		user.FullName,
		user.Phone,
		user.NationalID,
		user.PasswordHash,
		user.Role,
	).Scan(&user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetUserByPhone retrieves a user by phone number
func (r *Repository) GetUserByPhone(ctx context.Context, phone string) (*User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE phone = $1 AND deleted_at IS NULL`, userColumns)
	return scanUser(func(dest ...interface{}) error {
		return r.db.QueryRow(ctx, query, phone).Scan(dest...)
	})
}

// GetUserByID retrieves a user by ID
func (r *Repository) GetUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1 AND deleted_at IS NULL`, userColumns)
	return scanUser(func(dest ...interface{}) error {
		return r.db.QueryRow(ctx, query, id).Scan(dest...)
	})
}

// UpdateProfile updates mutable profile fields; nil fields are left untouched.
// Submitting a document image resets its verification status to pending.
func (r *Repository) UpdateProfile(ctx context.Context, id uuid.UUID, req *UpdateProfileRequest) (*User, error) {
	query := fmt.Sprintf(`
		UPDATE users SET
			full_name = COALESCE($2, full_name),
			profile_image = COALESCE($3, profile_image),
			license_image = COALESCE($4, license_image),
			license_status = CASE WHEN $4::text IS NOT NULL THEN 'pending' ELSE license_status END,
			national_id_image = COALESCE($5, national_id_image),
			national_id_status = CASE WHEN $5::text IS NOT NULL THEN 'pending' ELSE national_id_status END,
			updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING %s`, userColumns)

	return scanUser(func(dest ...interface{}) error {
		return r.db.QueryRow(ctx, query, id,
			req.FullName, req.ProfileImage, req.LicenseImage, req.NationalIDImage,
		).Scan(dest...)
	})
}

// SetRole updates the user's role
func (r *Repository) SetRole(ctx context.Context, id uuid.UUID, role string) (*User, error) {
	query := fmt.Sprintf(`
		UPDATE users SET role = $2, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING %s`, userColumns)

	return scanUser(func(dest ...interface{}) error {
		return r.db.QueryRow(ctx, query, id, role).Scan(dest...)
	})
}

// SetDocumentStatus updates the verification status of one document
func (r *Repository) SetDocumentStatus(ctx context.Context, id uuid.UUID, document, status string) (*User, error) {
	var column string
	switch document {
	case DocumentLicense:
		column = "license_status"
	case DocumentNationalID:
		column = "national_id_status"
	default:
		return nil, fmt.Errorf("unknown document %q", document)
	}

	query := fmt.Sprintf(`
		UPDATE users SET %s = $2, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING %s`, column, userColumns)

	return scanUser(func(dest ...interface{}) error {
		return r.db.QueryRow(ctx, query, id, status).Scan(dest...)
	})
}
