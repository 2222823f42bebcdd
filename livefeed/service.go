package livefeed

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"movemarket/auth"
	"movemarket/policy"
)

// ErrForbidden signals a role mismatch.
var ErrForbidden = errors.New("livefeed: forbidden")

const listLimit = 100

// UserReader resolves the posting mover for the snapshot fields.
type UserReader interface {
	GetUserByID(ctx context.Context, userID string) (auth.User, error)
}

// Service moderates the live feed: mover-authored posts, public and full
// listings, admin deletion.
type Service struct {
	repo  Repository
	users UserReader
	idGen func() string
}

func NewService(repo Repository, users UserReader) *Service {
	return &Service{
		repo:  repo,
		users: users,
		idGen: func() string { return uuid.NewString() },
	}
}

func (s *Service) WithIDGenerator(gen func() string) *Service {
	s.idGen = gen
	return s
}

// Create publishes a post for the acting mover, snapshotting the mover's
// name, company and phone at post time.
func (s *Service) Create(ctx context.Context, actor auth.Identity, params CreateParams) (Post, error) {
	if !policy.CanPostLive(actor) {
		return Post{}, ErrForbidden
	}
	if params.Title == "" {
		return Post{}, fmt.Errorf("livefeed: title required")
	}

	mover, err := s.users.GetUserByID(ctx, actor.UserID)
	if err != nil {
		return Post{}, fmt.Errorf("livefeed: resolve mover: %w", err)
	}

	phone := mover.Phone
	return s.repo.Insert(ctx, Post{
		ID:           s.idGen(),
		MoverID:      mover.ID,
		MoverName:    mover.Name,
		CompanyName:  mover.CompanyName,
		Phone:        &phone,
		Title:        params.Title,
		FromLocation: params.FromLocation,
		ToLocation:   params.ToLocation,
		When:         params.When,
		Vehicle:      params.Vehicle,
		PriceNote:    params.PriceNote,
		Extra:        params.Extra,
	})
}

// ListPublic returns the feed with phone numbers stripped.
func (s *Service) ListPublic(ctx context.Context) ([]Post, error) {
	posts, err := s.repo.List(ctx, listLimit)
	if err != nil {
		return nil, err
	}
	redacted := make([]Post, len(posts))
	for i, post := range posts {
		redacted[i] = post.Redacted()
	}
	return redacted, nil
}

// ListFull returns the feed including phone numbers for movers and
// admins. Any other caller silently receives the public variant rather
// than an error.
func (s *Service) ListFull(ctx context.Context, actor auth.Identity) ([]Post, error) {
	if !policy.CanSeeContact(actor.Role) {
		return s.ListPublic(ctx)
	}
	return s.repo.List(ctx, listLimit)
}

// Delete hard-removes a post. Admin only; there is no edit operation.
func (s *Service) Delete(ctx context.Context, actor auth.Identity, id string) error {
	if !policy.IsAdmin(actor) {
		return ErrForbidden
	}
	return s.repo.Delete(ctx, id)
}
