package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestService_RegisterAndLogin(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, "test-secret")

	req := RegisterRequest{
		Name:     "Ayşe Customer",
		Email:    "ayse@example.com",
		Phone:    "+90 555 111 11 11",
		Role:     RoleCustomer,
		Password: "supersafe",
	}

	ctx := context.Background()
	user, err := svc.Register(ctx, req)
	if err != nil {
		t.Fatalf("register: unexpected error: %v", err)
	}

	if user.Email != req.Email {
		t.Fatalf("expected email %q got %q", req.Email, user.Email)
	}
	if user.Role != RoleCustomer {
		t.Fatalf("register: expected role %s got %s", RoleCustomer, user.Role)
	}
	if user.EmailVerificationCode == nil || len(*user.EmailVerificationCode) != 6 {
		t.Fatalf("register: expected 6-digit email verification code, got %v", user.EmailVerificationCode)
	}

	// Unverified accounts cannot log in.
	if _, err := svc.Login(ctx, LoginRequest{Email: req.Email, Password: req.Password}); !errors.Is(err, ErrNotVerified) {
		t.Fatalf("expected ErrNotVerified, got %v", err)
	}

	repo.markVerified(req.Email)

	resp, err := svc.Login(ctx, LoginRequest{Email: req.Email, Password: req.Password})
	if err != nil {
		t.Fatalf("login: unexpected error: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("login: expected token, got empty string")
	}
	if resp.User.ID != user.ID {
		t.Fatalf("login: expected user id %q got %q", user.ID, resp.User.ID)
	}

	identity, err := svc.VerifyToken(resp.Token)
	if err != nil {
		t.Fatalf("verify token: %v", err)
	}
	if identity.UserID != user.ID {
		t.Fatalf("verify token: expected %q got %q", user.ID, identity.UserID)
	}
	if identity.Role != RoleCustomer {
		t.Fatalf("verify token: expected role %s got %s", RoleCustomer, identity.Role)
	}
}

func TestService_MoverLoginGates(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, "test-secret")
	ctx := context.Background()

	company := "Hızlı Nakliyat"
	req := RegisterRequest{
		Name:        "Mehmet Mover",
		Email:       "mehmet@example.com",
		Phone:       "+90 555 222 22 22",
		Role:        RoleMover,
		Password:    "strongpassword",
		CompanyName: &company,
	}

	user, err := svc.Register(ctx, req)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.IsApproved {
		t.Fatal("register: movers must start unapproved")
	}

	repo.markVerified(req.Email)

	// Unapproved mover is locked out even with correct credentials.
	if _, err := svc.Login(ctx, LoginRequest{Email: req.Email, Password: req.Password}); !errors.Is(err, ErrPendingApproval) {
		t.Fatalf("expected ErrPendingApproval, got %v", err)
	}

	repo.approve(req.Email)
	if _, err := svc.Login(ctx, LoginRequest{Email: req.Email, Password: req.Password}); err != nil {
		t.Fatalf("approved mover login: %v", err)
	}

	// A ban blocks authentication; existing bids are untouched elsewhere.
	repo.deactivate(req.Email)
	if _, err := svc.Login(ctx, LoginRequest{Email: req.Email, Password: req.Password}); !errors.Is(err, ErrBanned) {
		t.Fatalf("expected ErrBanned, got %v", err)
	}
}

func TestService_RegisterValidation(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, "test-secret")

	_, err := svc.Register(context.Background(), RegisterRequest{
		Name:     "Short Password",
		Email:    "short@example.com",
		Phone:    "+90 555 000 00 01",
		Password: "abc",
	})
	if !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}

	if _, err := svc.Register(context.Background(), RegisterRequest{
		Email:    "",
		Password: "strongpassword",
		Name:     "",
	}); !errors.Is(err, ErrMissingFields) {
		t.Fatalf("expected ErrMissingFields, got %v", err)
	}

	if _, err := svc.Register(context.Background(), RegisterRequest{
		Name:     "Bad Role",
		Email:    "badrole@example.com",
		Phone:    "+90 555 000 00 02",
		Role:     Role("superuser"),
		Password: "strongpassword",
	}); !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
}

func TestService_VerifyFlow(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, "test-secret")
	ctx := context.Background()

	req := RegisterRequest{
		Name:     "Ayşe Customer",
		Email:    "ayse@example.com",
		Phone:    "+90 555 111 11 11",
		Password: "supersafe",
	}
	user, err := svc.Register(ctx, req)
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := svc.Verify(ctx, VerifyRequest{Email: req.Email, Code: "000000", Type: VerifyEmail}); !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("wrong code: expected ErrInvalidCode, got %v", err)
	}
	if err := svc.Verify(ctx, VerifyRequest{Email: req.Email, Code: *user.EmailVerificationCode, Type: "fax"}); !errors.Is(err, ErrInvalidVerificationType) {
		t.Fatalf("bad type: expected ErrInvalidVerificationType, got %v", err)
	}
	if err := svc.Verify(ctx, VerifyRequest{Email: "nobody@example.com", Code: "123456", Type: VerifyEmail}); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("unknown email: expected ErrUserNotFound, got %v", err)
	}

	if err := svc.Verify(ctx, VerifyRequest{Email: req.Email, Code: *user.EmailVerificationCode, Type: VerifyEmail}); err != nil {
		t.Fatalf("verify email: %v", err)
	}

	// One channel is not enough.
	if _, err := svc.Login(ctx, LoginRequest{Email: req.Email, Password: req.Password}); !errors.Is(err, ErrNotVerified) {
		t.Fatalf("expected ErrNotVerified with phone pending, got %v", err)
	}

	if err := svc.Verify(ctx, VerifyRequest{Email: req.Email, Code: *user.PhoneVerificationCode, Type: VerifyPhone}); err != nil {
		t.Fatalf("verify phone: %v", err)
	}
	if _, err := svc.Login(ctx, LoginRequest{Email: req.Email, Password: req.Password}); err != nil {
		t.Fatalf("login after verification: %v", err)
	}

	// Codes are one-shot; a replay no longer matches anything.
	if err := svc.Verify(ctx, VerifyRequest{Email: req.Email, Code: *user.EmailVerificationCode, Type: VerifyEmail}); !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("replayed code: expected ErrInvalidCode, got %v", err)
	}
}

func TestService_DuplicateEmail(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, "test-secret")

	req := RegisterRequest{
		Name:     "Ayşe Customer",
		Email:    "ayse@example.com",
		Phone:    "+90 555 111 11 11",
		Password: "strongpassword",
	}
	if _, err := svc.Register(context.Background(), req); err != nil {
		t.Fatalf("first register failed: %v", err)
	}

	if _, err := svc.Register(context.Background(), req); !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestService_LoginInvalidCredentials(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo, "test-secret")

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "unknown@example.com",
		Password: "irrelevant",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

type fakeRepository struct {
	usersByEmail map[string]*User
	usersByID    map[string]*User
	nextID       int
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		usersByEmail: make(map[string]*User),
		usersByID:    make(map[string]*User),
		nextID:       1,
	}
}

func (f *fakeRepository) CreateUser(ctx context.Context, params CreateUserParams) (User, error) {
	if _, exists := f.usersByEmail[strings.ToLower(params.Email)]; exists {
		return User{}, ErrDuplicateEmail
	}

	id := params.ID
	if id == "" {
		id = fmt.Sprintf("user-%d", f.nextID)
		f.nextID++
	}

	user := &User{
		ID:                    id,
		Name:                  params.Name,
		Email:                 params.Email,
		Phone:                 params.Phone,
		Role:                  params.Role,
		PasswordHash:          params.PasswordHash,
		IsActive:              true,
		IsApproved:            params.IsApproved,
		EmailVerificationCode: params.EmailVerificationCode,
		PhoneVerificationCode: params.PhoneVerificationCode,
		CompanyName:           params.CompanyName,
		CompanyDescription:    params.CompanyDescription,
		CompanyImages:         []string{},
		CreatedAt:             time.Now().UTC(),
		UpdatedAt:             time.Now().UTC(),
	}

	f.usersByEmail[strings.ToLower(user.Email)] = user
	f.usersByID[user.ID] = user

	return *user, nil
}

func (f *fakeRepository) GetUserByEmail(ctx context.Context, email string) (User, error) {
	user, ok := f.usersByEmail[strings.ToLower(email)]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return *user, nil
}

func (f *fakeRepository) GetUserByID(ctx context.Context, userID string) (User, error) {
	user, ok := f.usersByID[userID]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return *user, nil
}

func (f *fakeRepository) MarkVerified(ctx context.Context, userID string, typ VerificationType) error {
	u, ok := f.usersByID[userID]
	if !ok {
		return ErrUserNotFound
	}
	switch typ {
	case VerifyEmail:
		u.IsEmailVerified = true
		u.EmailVerificationCode = nil
	case VerifyPhone:
		u.IsPhoneVerified = true
		u.PhoneVerificationCode = nil
	}
	return nil
}

func (f *fakeRepository) markVerified(email string) {
	if u, ok := f.usersByEmail[strings.ToLower(email)]; ok {
		u.IsEmailVerified = true
		u.IsPhoneVerified = true
	}
}

func (f *fakeRepository) approve(email string) {
	if u, ok := f.usersByEmail[strings.ToLower(email)]; ok {
		u.IsApproved = true
	}
}

func (f *fakeRepository) deactivate(email string) {
	if u, ok := f.usersByEmail[strings.ToLower(email)]; ok {
		u.IsActive = false
	}
}
