package auth

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrForbidden signals the actor lacks the admin role.
var ErrForbidden = errors.New("auth: admin access required")

// AdminRepository defines the user-management writes reserved for admins.
type AdminRepository interface {
	ListUsers(ctx context.Context, limit int) ([]User, error)
	UpdateRoleByEmail(ctx context.Context, email string, role Role) error
	SetBanByEmail(ctx context.Context, email string, bannedUntil *time.Time) error
	ApproveMover(ctx context.Context, moverID string) error
}

// AdminService exposes admin-only operations on accounts: listing,
// role changes, bans and mover approval.
type AdminService struct {
	repo AdminRepository
	now  func() time.Time
}

func NewAdminService(repo AdminRepository) *AdminService {
	return &AdminService{repo: repo, now: time.Now}
}

func (s *AdminService) WithClock(now func() time.Time) *AdminService {
	s.now = now
	return s
}

func requireAdmin(actor Identity) error {
	if actor.Role != RoleAdmin {
		return ErrForbidden
	}
	return nil
}

// ListUsers returns every account, admin only.
func (s *AdminService) ListUsers(ctx context.Context, actor Identity) ([]User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.repo.ListUsers(ctx, 1000)
}

// UpdateRole changes an account's role by email address.
func (s *AdminService) UpdateRole(ctx context.Context, actor Identity, email string, role Role) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if !ValidRole(role) {
		return fmt.Errorf("auth: invalid role %q", role)
	}
	return s.repo.UpdateRoleByEmail(ctx, email, role)
}

// BanUser deactivates an account for the given number of days. In-flight
// bids placed by a banned mover stay in the ledger; the ban only blocks
// authentication.
func (s *AdminService) BanUser(ctx context.Context, actor Identity, email string, days int) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if days <= 0 {
		return fmt.Errorf("auth: ban days must be positive")
	}
	until := s.now().Add(time.Duration(days) * 24 * time.Hour)
	return s.repo.SetBanByEmail(ctx, email, &until)
}

// UnbanUser reactivates an account.
func (s *AdminService) UnbanUser(ctx context.Context, actor Identity, email string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	return s.repo.SetBanByEmail(ctx, email, nil)
}

// ApproveMover flips the approval flag on a mover account. Approval gates
// mover login, not the visibility of bids already in the ledger.
func (s *AdminService) ApproveMover(ctx context.Context, actor Identity, moverID string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	return s.repo.ApproveMover(ctx, moverID)
}

// ListUsers fetches up to limit accounts, newest first.
func (r *PGRepository) ListUsers(ctx context.Context, limit int) ([]User, error) {
	if limit <= 0 || limit > 1000 {
		limit = 1000
	}

	selectSQL := fmt.Sprintf(`SELECT %s FROM users ORDER BY created_at DESC LIMIT $1`, userColumns)
	rows, err := r.pool.Query(ctx, selectSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("auth: list users: %w", err)
	}
	defer rows.Close()

	users := make([]User, 0, 16)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("auth: scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("auth: iterate users: %w", err)
	}
	return users, nil
}

// UpdateRoleByEmail sets the role on the account with the given email.
func (r *PGRepository) UpdateRoleByEmail(ctx context.Context, email string, role Role) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users SET role = $2, updated_at = now() WHERE email = $1
	`, email, role)
	if err != nil {
		return fmt.Errorf("auth: update role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// SetBanByEmail deactivates the account until bannedUntil, or reactivates
// it when bannedUntil is nil.
func (r *PGRepository) SetBanByEmail(ctx context.Context, email string, bannedUntil *time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users
		SET is_active = $2, banned_until = $3, updated_at = now()
		WHERE email = $1
	`, email, bannedUntil == nil, bannedUntil)
	if err != nil {
		return fmt.Errorf("auth: set ban: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// ApproveMover marks a mover account as approved. Only rows with the
// mover role match, so approving a customer id reports not found.
func (r *PGRepository) ApproveMover(ctx context.Context, moverID string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users
		SET is_approved = TRUE, updated_at = now()
		WHERE id = $1 AND role = 'mover'
	`, moverID)
	if err != nil {
		return fmt.Errorf("auth: approve mover: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

var (
	_ AdminRepository = (*PGRepository)(nil)
	_ Repository      = (*PGRepository)(nil)
)
