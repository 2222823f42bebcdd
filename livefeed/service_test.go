package livefeed

import (
	"context"
	"errors"
	"testing"

	"movemarket/auth"
)

var (
	mover    = auth.Identity{UserID: "mover-1", Role: auth.RoleMover}
	customer = auth.Identity{UserID: "cust-1", Role: auth.RoleCustomer}
	admin    = auth.Identity{UserID: "admin-1", Role: auth.RoleAdmin}
)

func newTestService(repo *fakeRepo) *Service {
	company := "Hızlı Nakliyat"
	users := &fakeUsers{user: auth.User{
		ID:          "mover-1",
		Name:        "Mehmet Mover",
		Phone:       "+90 555 222 22 22",
		Role:        auth.RoleMover,
		CompanyName: &company,
	}}
	return NewService(repo, users)
}

func TestCreate_SnapshotsMoverProfile(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(repo)

	from := "İstanbul"
	post, err := svc.Create(context.Background(), mover, CreateParams{
		Title:        "Return trip with empty truck",
		FromLocation: &from,
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	if post.MoverID != "mover-1" || post.MoverName != "Mehmet Mover" {
		t.Errorf("expected mover snapshot, got %+v", post)
	}
	if post.Phone == nil || *post.Phone != "+90 555 222 22 22" {
		t.Errorf("expected phone snapshot, got %v", post.Phone)
	}
	if post.CompanyName == nil || *post.CompanyName != "Hızlı Nakliyat" {
		t.Errorf("expected company snapshot, got %v", post.CompanyName)
	}
}

func TestCreate_Gates(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(repo)
	ctx := context.Background()

	for _, actor := range []auth.Identity{customer, admin} {
		if _, err := svc.Create(ctx, actor, CreateParams{Title: "x"}); !errors.Is(err, ErrForbidden) {
			t.Fatalf("expected ErrForbidden for %s, got %v", actor.Role, err)
		}
	}
	if _, err := svc.Create(ctx, mover, CreateParams{}); err == nil {
		t.Fatal("expected error for empty title")
	}
	if len(repo.posts) != 0 {
		t.Fatal("expected no insert when validation fails")
	}
}

func TestListPublic_StripsPhones(t *testing.T) {
	phone := "+90 555 222 22 22"
	repo := &fakeRepo{posts: []Post{
		{ID: "post-1", Phone: &phone},
		{ID: "post-2", Phone: nil},
	}}
	svc := newTestService(repo)

	posts, err := svc.ListPublic(context.Background())
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	for _, post := range posts {
		if post.Phone != nil {
			t.Fatalf("expected redacted phone on %s, got %q", post.ID, *post.Phone)
		}
	}

	// The stored posts keep their phones; redaction is view-only.
	if repo.posts[0].Phone == nil {
		t.Fatal("redaction must not mutate stored posts")
	}
}

func TestListFull_Visibility(t *testing.T) {
	phone := "+90 555 222 22 22"
	repo := &fakeRepo{posts: []Post{{ID: "post-1", Phone: &phone}}}
	svc := newTestService(repo)
	ctx := context.Background()

	for _, actor := range []auth.Identity{mover, admin} {
		posts, err := svc.ListFull(ctx, actor)
		if err != nil {
			t.Fatalf("list as %s: %v", actor.Role, err)
		}
		if posts[0].Phone == nil {
			t.Fatalf("expected %s to see phone numbers", actor.Role)
		}
	}

	// Customers asking for the full feed quietly get the public one.
	posts, err := svc.ListFull(ctx, customer)
	if err != nil {
		t.Fatalf("list as customer: %v", err)
	}
	if posts[0].Phone != nil {
		t.Fatal("expected redacted feed for customer")
	}
}

func TestDelete(t *testing.T) {
	repo := &fakeRepo{posts: []Post{{ID: "post-1"}}}
	svc := newTestService(repo)
	ctx := context.Background()

	if err := svc.Delete(ctx, mover, "post-1"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for mover, got %v", err)
	}
	if err := svc.Delete(ctx, admin, "post-1"); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
	if err := svc.Delete(ctx, admin, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

type fakeUsers struct {
	user auth.User
	err  error
}

func (f *fakeUsers) GetUserByID(ctx context.Context, userID string) (auth.User, error) {
	if f.err != nil {
		return auth.User{}, f.err
	}
	return f.user, nil
}

type fakeRepo struct {
	posts []Post
}

func (f *fakeRepo) Insert(ctx context.Context, post Post) (Post, error) {
	f.posts = append(f.posts, post)
	return post, nil
}

func (f *fakeRepo) List(ctx context.Context, limit int) ([]Post, error) {
	out := make([]Post, len(f.posts))
	copy(out, f.posts)
	return out, nil
}

func (f *fakeRepo) Delete(ctx context.Context, id string) error {
	for i, post := range f.posts {
		if post.ID == id {
			f.posts = append(f.posts[:i], f.posts[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}
