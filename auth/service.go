package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials signals wrong email or password.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	// ErrWeakPassword signals password doesn't meet requirements.
	ErrWeakPassword = errors.New("auth: password must be at least 6 characters")
	// ErrMissingFields signals a registration without name, email or phone.
	ErrMissingFields = errors.New("auth: name, email and phone are required")
	// ErrInvalidRole signals a role outside the closed enumeration.
	ErrInvalidRole = errors.New("auth: invalid role")
	// ErrInvalidCode signals a verification code that does not match.
	ErrInvalidCode = errors.New("auth: invalid verification code")
	// ErrInvalidVerificationType signals a verification channel that is
	// neither email nor phone.
	ErrInvalidVerificationType = errors.New("auth: verification type must be email or phone")
	// ErrNotVerified signals the account has unverified email or phone.
	ErrNotVerified = errors.New("auth: email and phone must be verified")
	// ErrPendingApproval signals a mover account awaiting admin approval.
	ErrPendingApproval = errors.New("auth: account is pending admin approval")
	// ErrBanned signals the account has been deactivated by an admin.
	ErrBanned = errors.New("auth: account is banned")
)

const tokenTTL = 24 * time.Hour

// Service handles authentication business logic.
type Service struct {
	repo      Repository
	jwtSecret []byte
	idGen     func() string
	now       func() time.Time
}

// LoginResult bundles the token and domain user returned after a successful login.
type LoginResult struct {
	Token string
	User  User
}

// NewService creates a new authentication service.
func NewService(repo Repository, jwtSecret string) *Service {
	return &Service{
		repo:      repo,
		jwtSecret: []byte(jwtSecret),
		idGen:     func() string { return uuid.NewString() },
		now:       time.Now,
	}
}

func (s *Service) WithIDGenerator(gen func() string) *Service {
	s.idGen = gen
	return s
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Register creates a new account. Movers start unapproved and stay locked
// out of login until an admin approves them.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	if len(req.Password) < 6 {
		return nil, ErrWeakPassword
	}
	if req.Email == "" || req.Name == "" || req.Phone == "" {
		return nil, ErrMissingFields
	}

	role := Role(strings.TrimSpace(string(req.Role)))
	if role == "" {
		role = RoleCustomer
	}
	if !ValidRole(role) {
		return nil, fmt.Errorf("%w %q", ErrInvalidRole, role)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("auth: hash password: %w", err)
	}

	emailCode, err := verificationCode()
	if err != nil {
		return nil, err
	}
	phoneCode, err := verificationCode()
	if err != nil {
		return nil, err
	}

	user, err := s.repo.CreateUser(ctx, CreateUserParams{
		ID:                    s.idGen(),
		Name:                  req.Name,
		Email:                 strings.ToLower(req.Email),
		Phone:                 req.Phone,
		Role:                  role,
		PasswordHash:          string(passwordHash),
		IsApproved:            role != RoleMover,
		EmailVerificationCode: &emailCode,
		PhoneVerificationCode: &phoneCode,
		CompanyName:           req.CompanyName,
		CompanyDescription:    req.CompanyDescription,
	})
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// Verify consumes a 6-digit code issued at registration and marks the
// matching channel verified. Login stays refused until both channels are.
func (s *Service) Verify(ctx context.Context, req VerifyRequest) error {
	typ := VerificationType(strings.TrimSpace(string(req.Type)))
	if typ != VerifyEmail && typ != VerifyPhone {
		return ErrInvalidVerificationType
	}

	user, err := s.repo.GetUserByEmail(ctx, strings.ToLower(req.Email))
	if err != nil {
		return err
	}

	stored := user.EmailVerificationCode
	if typ == VerifyPhone {
		stored = user.PhoneVerificationCode
	}
	if req.Code == "" || stored == nil || *stored != req.Code {
		return ErrInvalidCode
	}

	return s.repo.MarkVerified(ctx, user.ID, typ)
}

// Login authenticates an account and returns a JWT token.
func (s *Service) Login(ctx context.Context, req LoginRequest) (LoginResult, error) {
	user, err := s.repo.GetUserByEmail(ctx, strings.ToLower(req.Email))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return LoginResult{}, ErrInvalidCredentials
	}
	if !user.IsEmailVerified || !user.IsPhoneVerified {
		return LoginResult{}, ErrNotVerified
	}
	if user.Role == RoleMover && !user.IsApproved {
		return LoginResult{}, ErrPendingApproval
	}
	if !user.IsActive {
		return LoginResult{}, ErrBanned
	}

	token, err := s.generateToken(user.ID, user.Role)
	if err != nil {
		return LoginResult{}, fmt.Errorf("auth: generate token: %w", err)
	}

	return LoginResult{Token: token, User: user}, nil
}

// GetUserByID retrieves account information by ID.
func (s *Service) GetUserByID(ctx context.Context, userID string) (*User, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// VerifyToken validates a JWT token and returns the caller's identity.
func (s *Service) VerifyToken(tokenString string) (Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return Identity{}, fmt.Errorf("auth: parse token: %w", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		userID, ok := claims["user_id"].(string)
		if !ok {
			return Identity{}, fmt.Errorf("auth: invalid user_id in token")
		}
		roleStr, ok := claims["role"].(string)
		if !ok {
			return Identity{}, fmt.Errorf("auth: invalid role in token")
		}
		role := Role(roleStr)
		if !ValidRole(role) {
			return Identity{}, fmt.Errorf("auth: invalid role %q in token", roleStr)
		}
		return Identity{UserID: userID, Role: role}, nil
	}

	return Identity{}, fmt.Errorf("auth: invalid token")
}

// generateToken creates a JWT token for the account.
func (s *Service) generateToken(userID string, role Role) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"role":    role,
		"exp":     s.now().Add(tokenTTL).Unix(),
		"iat":     s.now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// verificationCode returns a 6-digit code for email/phone verification.
func verificationCode() (string, error) {
	digits := make([]byte, 6)
	for i := range digits {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("auth: generate verification code: %w", err)
		}
		digits[i] = byte('0' + n.Int64())
	}
	return string(digits), nil
}
