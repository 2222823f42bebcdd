package bid

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"movemarket/auth"
	"movemarket/request"
)

var (
	mover    = auth.Identity{UserID: "mover-1", Role: auth.RoleMover}
	customer = auth.Identity{UserID: "cust-1", Role: auth.RoleCustomer}
)

func TestPlace_Success(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(repo)

	msg := "We can do Saturday morning"
	b, err := svc.Place(context.Background(), mover, PlaceParams{
		RequestID: "req-1",
		Price:     4500,
		Message:   &msg,
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	if b.Status != StatusPending {
		t.Errorf("expected pending status, got %s", b.Status)
	}
	if b.MoverID != mover.UserID {
		t.Errorf("expected mover id %q, got %q", mover.UserID, b.MoverID)
	}
	if b.MoverName != "Mehmet Mover" || b.CompanyName != "Hızlı Nakliyat" || b.Phone != "+90 555 222 22 22" {
		t.Errorf("expected mover profile snapshot on bid, got %+v", b)
	}
	if b.ID == "" {
		t.Error("expected generated bid id")
	}
}

func TestPlace_RoleAndPriceGates(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(repo)
	ctx := context.Background()

	if _, err := svc.Place(ctx, customer, PlaceParams{RequestID: "req-1", Price: 100}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for customer, got %v", err)
	}
	if _, err := svc.Place(ctx, mover, PlaceParams{RequestID: "req-1", Price: 0}); !errors.Is(err, ErrInvalidPrice) {
		t.Fatalf("expected ErrInvalidPrice for zero price, got %v", err)
	}
	if _, err := svc.Place(ctx, mover, PlaceParams{RequestID: "req-1", Price: -50}); !errors.Is(err, ErrInvalidPrice) {
		t.Fatalf("expected ErrInvalidPrice for negative price, got %v", err)
	}
	if repo.inserted {
		t.Fatal("expected no insert when validation fails")
	}
}

func TestPlace_UnknownRequest(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(repo)
	svc.requests = &fakeRequests{err: request.ErrNotFound}

	if _, err := svc.Place(context.Background(), mover, PlaceParams{RequestID: "missing", Price: 100}); !errors.Is(err, ErrRequestNotFound) {
		t.Fatalf("expected ErrRequestNotFound, got %v", err)
	}
}

func TestPlace_DuplicateMover(t *testing.T) {
	repo := &fakeRepo{insertErr: ErrAlreadyBid}
	svc := newTestService(repo)

	if _, err := svc.Place(context.Background(), mover, PlaceParams{RequestID: "req-1", Price: 100}); !errors.Is(err, ErrAlreadyBid) {
		t.Fatalf("expected ErrAlreadyBid, got %v", err)
	}
}

func TestListForRequest_Visibility(t *testing.T) {
	repo := &fakeRepo{bids: []Bid{{ID: "bid-1"}, {ID: "bid-2"}}}
	svc := newTestService(repo)
	ctx := context.Background()

	// The owning customer and any mover see the ledger.
	owner := auth.Identity{UserID: "cust-owner", Role: auth.RoleCustomer}
	for _, actor := range []auth.Identity{owner, mover} {
		bids, err := svc.ListForRequest(ctx, actor, "req-1")
		if err != nil {
			t.Fatalf("list as %s: %v", actor.Role, err)
		}
		if len(bids) != 2 {
			t.Fatalf("expected 2 bids, got %d", len(bids))
		}
	}

	// Another customer does not.
	if _, err := svc.ListForRequest(ctx, customer, "req-1"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestListForRequest_UnknownRequest(t *testing.T) {
	svc := newTestService(&fakeRepo{})
	svc.requests = &fakeRequests{err: request.ErrNotFound}

	if _, err := svc.ListForRequest(context.Background(), mover, "missing"); !errors.Is(err, ErrRequestNotFound) {
		t.Fatalf("expected ErrRequestNotFound, got %v", err)
	}
}

func TestAccept_Success(t *testing.T) {
	pool := &fakePool{}
	repo := &fakeRepo{
		bid: Bid{ID: "bid-1", RequestID: "req-1", MoverID: "mover-1"},
		acceptResult: AcceptResult{
			BidID:            "bid-1",
			RequestID:        "req-1",
			SelectedMoverID:  "mover-1",
			RejectedSiblings: 2,
		},
	}
	out := &fakeOutbox{}
	svc := newTestService(repo)
	svc.pool = pool
	svc.WithOutbox(out)

	owner := auth.Identity{UserID: "cust-owner", Role: auth.RoleCustomer}
	res, err := svc.Accept(context.Background(), owner, "bid-1")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	if !repo.accepted {
		t.Error("expected accept transaction to run")
	}
	if repo.acceptParams.CustomerID != owner.UserID {
		t.Errorf("expected accept params carry actor id, got %q", repo.acceptParams.CustomerID)
	}
	if res.RejectedSiblings != 2 {
		t.Errorf("expected 2 rejected siblings, got %d", res.RejectedSiblings)
	}
	if pool.tx == nil || !pool.tx.committed {
		t.Error("expected commit to be called")
	}
	if len(out.topics) != 1 {
		t.Fatalf("expected one enqueued notification, got %d", len(out.topics))
	}
}

func TestAccept_IdempotentReplay(t *testing.T) {
	pool := &fakePool{}
	repo := &fakeRepo{
		bid: Bid{ID: "bid-1", RequestID: "req-1", MoverID: "mover-1"},
		acceptResult: AcceptResult{
			BidID:           "bid-1",
			RequestID:       "req-1",
			SelectedMoverID: "mover-1",
			AlreadyAccepted: true,
		},
	}
	out := &fakeOutbox{}
	svc := newTestService(repo)
	svc.pool = pool
	svc.WithOutbox(out)

	owner := auth.Identity{UserID: "cust-owner", Role: auth.RoleCustomer}
	res, err := svc.Accept(context.Background(), owner, "bid-1")
	if err != nil {
		t.Fatalf("expected nil error on replay, got %v", err)
	}

	if !res.AlreadyAccepted {
		t.Error("expected AlreadyAccepted result")
	}
	if pool.tx.committed {
		t.Error("expected commit to be skipped on replay")
	}
	if !pool.tx.rolled {
		t.Error("expected rollback on replay")
	}
	if len(out.topics) != 0 {
		t.Error("expected no notification on replay")
	}
}

func TestAccept_Conflicts(t *testing.T) {
	owner := auth.Identity{UserID: "cust-owner", Role: auth.RoleCustomer}
	ctx := context.Background()

	tests := []struct {
		name    string
		repo    *fakeRepo
		wantErr error
	}{
		{
			name:    "unknown bid",
			repo:    &fakeRepo{getErr: ErrNotFound},
			wantErr: ErrNotFound,
		},
		{
			name: "closed request",
			repo: &fakeRepo{
				bid:       Bid{ID: "bid-2", RequestID: "req-1", MoverID: "mover-2"},
				acceptErr: ErrRequestClosed,
			},
			wantErr: ErrRequestClosed,
		},
		{
			name: "not the owner",
			repo: &fakeRepo{
				bid:       Bid{ID: "bid-1", RequestID: "req-1", MoverID: "mover-1"},
				acceptErr: ErrNotOwner,
			},
			wantErr: ErrNotOwner,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool := &fakePool{}
			svc := newTestService(tt.repo)
			svc.pool = pool

			if _, err := svc.Accept(ctx, owner, "bid-1"); !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if pool.tx != nil && pool.tx.committed {
				t.Error("expected commit to be skipped on error")
			}
		})
	}
}

func newTestService(repo *fakeRepo) *Service {
	company := "Hızlı Nakliyat"
	users := &fakeUsers{user: auth.User{
		ID:          "mover-1",
		Name:        "Mehmet Mover",
		Phone:       "+90 555 222 22 22",
		Role:        auth.RoleMover,
		CompanyName: &company,
	}}
	requests := &fakeRequests{req: request.MovingRequest{ID: "req-1", CustomerID: "cust-owner"}}
	return NewService(&fakePool{}, repo, requests, users)
}

type fakeRequests struct {
	req request.MovingRequest
	err error
}

func (f *fakeRequests) GetByID(ctx context.Context, id string) (request.MovingRequest, error) {
	if f.err != nil {
		return request.MovingRequest{}, f.err
	}
	return f.req, nil
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

type fakeOutbox struct {
	topics []string
}

func (f *fakeOutbox) Enqueue(ctx context.Context, tx pgx.Tx, topic string, payload map[string]any) error {
	f.topics = append(f.topics, topic)
	return nil
}

type fakeRepo struct {
	bid    Bid
	getErr error

	bids []Bid

	inserted  bool
	insertErr error

	accepted     bool
	acceptParams AcceptParams
	acceptResult AcceptResult
	acceptErr    error
}

func (f *fakeRepo) Insert(ctx context.Context, b Bid) (Bid, error) {
	if f.insertErr != nil {
		return Bid{}, f.insertErr
	}
	f.inserted = true
	return b, nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id string) (Bid, error) {
	if f.getErr != nil {
		return Bid{}, f.getErr
	}
	return f.bid, nil
}

func (f *fakeRepo) ListByRequest(ctx context.Context, requestID string) ([]Bid, error) {
	return f.bids, nil
}

func (f *fakeRepo) ExecuteAcceptTx(ctx context.Context, tx pgx.Tx, params AcceptParams) (AcceptResult, error) {
	if f.acceptErr != nil {
		return AcceptResult{}, f.acceptErr
	}
	f.accepted = true
	f.acceptParams = params
	return f.acceptResult, nil
}

type fakePool struct {
	tx *fakeTx
}

func (f *fakePool) Begin(ctx context.Context) (pgx.Tx, error) {
	f.tx = &fakeTx{}
	return f.tx, nil
}

type fakeTx struct {
	rolled    bool
	committed bool
}

func (f *fakeTx) Begin(context.Context) (pgx.Tx, error) {
	return nil, errors.New("fakeTx does not support nested transactions")
}

func (f *fakeTx) Commit(context.Context) error {
	f.committed = true
	return nil
}

func (f *fakeTx) Rollback(context.Context) error {
	f.rolled = true
	return nil
}

func (f *fakeTx) CopyFrom(context.Context, pgx.Identifier, []string, pgx.CopyFromSource) (int64, error) {
	panic("not implemented")
}

func (f *fakeTx) SendBatch(context.Context, *pgx.Batch) pgx.BatchResults {
	panic("not implemented")
}

func (f *fakeTx) LargeObjects() pgx.LargeObjects {
	panic("not implemented")
}

func (f *fakeTx) Prepare(context.Context, string, string) (*pgconn.StatementDescription, error) {
	panic("not implemented")
}

func (f *fakeTx) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	panic("not implemented")
}

func (f *fakeTx) Query(context.Context, string, ...any) (pgx.Rows, error) {
	panic("not implemented")
}

func (f *fakeTx) QueryRow(context.Context, string, ...any) pgx.Row {
	panic("not implemented")
}

func (f *fakeTx) Conn() *pgx.Conn {
	return nil
}
