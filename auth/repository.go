package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrUserNotFound signals that the account does not exist.
	ErrUserNotFound = errors.New("auth: user not found")
	// ErrDuplicateEmail signals that the email is already registered.
	ErrDuplicateEmail = errors.New("auth: email already exists")
)

// Repository handles data access for accounts.
type Repository interface {
	CreateUser(ctx context.Context, params CreateUserParams) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	GetUserByID(ctx context.Context, userID string) (User, error)
	MarkVerified(ctx context.Context, userID string, typ VerificationType) error
}

// CreateUserParams contains write parameters for creating accounts.
type CreateUserParams struct {
	ID                    string
	Name                  string
	Email                 string
	Phone                 string
	Role                  Role
	PasswordHash          string
	IsApproved            bool
	EmailVerificationCode *string
	PhoneVerificationCode *string
	CompanyName           *string
	CompanyDescription    *string
}

// PGRepository implements Repository backed by PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a PostgreSQL-backed auth repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const userColumns = `id, name, email, phone, role, password_hash, is_active,
	is_email_verified, is_phone_verified, is_approved,
	email_verification_code, phone_verification_code, banned_until,
	company_name, company_description, company_images, created_at, updated_at`

// CreateUser inserts a new account with hashed password.
func (r *PGRepository) CreateUser(ctx context.Context, params CreateUserParams) (User, error) {
	insertSQL := fmt.Sprintf(`
		INSERT INTO users (id, name, email, phone, role, password_hash, is_approved,
			email_verification_code, phone_verification_code, company_name, company_description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING %s
	`, userColumns)

	user, err := scanUser(r.pool.QueryRow(ctx, insertSQL,
		params.ID,
		params.Name,
		params.Email,
		params.Phone,
		params.Role,
		params.PasswordHash,
		params.IsApproved,
		params.EmailVerificationCode,
		params.PhoneVerificationCode,
		params.CompanyName,
		params.CompanyDescription,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return User{}, ErrDuplicateEmail
		}
		return User{}, fmt.Errorf("auth: create user: %w", err)
	}

	return user, nil
}

// GetUserByEmail retrieves an account by email address.
func (r *PGRepository) GetUserByEmail(ctx context.Context, email string) (User, error) {
	selectSQL := fmt.Sprintf(`SELECT %s FROM users WHERE email = $1`, userColumns)

	user, err := scanUser(r.pool.QueryRow(ctx, selectSQL, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, fmt.Errorf("auth: get user by email: %w", err)
	}

	return user, nil
}

// GetUserByID retrieves an account by ID.
func (r *PGRepository) GetUserByID(ctx context.Context, userID string) (User, error) {
	selectSQL := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns)

	user, err := scanUser(r.pool.QueryRow(ctx, selectSQL, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, fmt.Errorf("auth: get user by id: %w", err)
	}

	return user, nil
}

// MarkVerified flags the channel verified and discards its one-shot code.
func (r *PGRepository) MarkVerified(ctx context.Context, userID string, typ VerificationType) error {
	var updateSQL string
	switch typ {
	case VerifyEmail:
		updateSQL = `
			UPDATE users
			SET is_email_verified = TRUE, email_verification_code = NULL, updated_at = now()
			WHERE id = $1`
	case VerifyPhone:
		updateSQL = `
			UPDATE users
			SET is_phone_verified = TRUE, phone_verification_code = NULL, updated_at = now()
			WHERE id = $1`
	default:
		return ErrInvalidVerificationType
	}

	tag, err := r.pool.Exec(ctx, updateSQL, userID)
	if err != nil {
		return fmt.Errorf("auth: mark verified: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (User, error) {
	var user User
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Phone,
		&user.Role,
		&user.PasswordHash,
		&user.IsActive,
		&user.IsEmailVerified,
		&user.IsPhoneVerified,
		&user.IsApproved,
		&user.EmailVerificationCode,
		&user.PhoneVerificationCode,
		&user.BannedUntil,
		&user.CompanyName,
		&user.CompanyDescription,
		&user.CompanyImages,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return User{}, err
	}
	return user, nil
}
