package request

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"movemarket/auth"
	"movemarket/outbox"
	"movemarket/policy"
)

var (
	// ErrForbidden signals a role or ownership mismatch.
	ErrForbidden = errors.New("request: forbidden")
	// ErrInvalidTransition signals a status change the machine does not allow.
	ErrInvalidTransition = errors.New("request: invalid status transition")
)

// OutboxWriter is the delivery hook invoked inside the same transaction
// as the state change it announces.
type OutboxWriter interface {
	Enqueue(ctx context.Context, tx pgx.Tx, topic string, payload map[string]any) error
}

// TxBeginner abstracts pgxpool.Pool for testability.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Service owns the moving-request lifecycle.
type Service struct {
	pool  TxBeginner
	repo  Repository
	out   OutboxWriter
	idGen func() string
	now   func() time.Time
}

type CreateParams struct {
	FromLocation        string
	ToLocation          string
	FromFloor           int
	ToFloor             int
	HasElevatorFrom     bool
	HasElevatorTo       bool
	NeedsMobileElevator bool
	TruckDistance       string
	PackingService      bool
	MovingDate          time.Time
	Description         *string
}

func NewService(pool TxBeginner, repo Repository, out OutboxWriter) *Service {
	return &Service{
		pool:  pool,
		repo:  repo,
		out:   out,
		idGen: func() string { return uuid.NewString() },
		now:   time.Now,
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

// Create opens a new request for the acting customer. The customer name
// is snapshotted onto the request at creation.
func (s *Service) Create(ctx context.Context, actor auth.Identity, customerName string, params CreateParams) (MovingRequest, error) {
	if !policy.CanCreateRequest(actor) {
		return MovingRequest{}, ErrForbidden
	}
	if params.FromLocation == "" || params.ToLocation == "" {
		return MovingRequest{}, fmt.Errorf("request: from and to locations required")
	}
	if params.MovingDate.IsZero() {
		return MovingRequest{}, fmt.Errorf("request: moving date required")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return MovingRequest{}, fmt.Errorf("request: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	req := MovingRequest{
		ID:                  s.idGen(),
		CustomerID:          actor.UserID,
		CustomerName:        customerName,
		FromLocation:        params.FromLocation,
		ToLocation:          params.ToLocation,
		FromFloor:           params.FromFloor,
		ToFloor:             params.ToFloor,
		HasElevatorFrom:     params.HasElevatorFrom,
		HasElevatorTo:       params.HasElevatorTo,
		NeedsMobileElevator: params.NeedsMobileElevator,
		TruckDistance:       params.TruckDistance,
		PackingService:      params.PackingService,
		MovingDate:          params.MovingDate,
		Description:         params.Description,
		Status:              StatusPending,
	}

	created, err := s.repo.Create(ctx, tx, req)
	if err != nil {
		return MovingRequest{}, err
	}

	if s.out != nil {
		payload := map[string]any{
			"request_id":  created.ID,
			"customer_id": created.CustomerID,
			"from":        created.FromLocation,
			"to":          created.ToLocation,
		}
		if err := s.out.Enqueue(ctx, tx, outbox.TopicRequestCreated, payload); err != nil {
			return MovingRequest{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return MovingRequest{}, fmt.Errorf("request: commit tx: %w", err)
	}

	return created, nil
}

// List returns the requests the actor is allowed to see: customers their
// own, movers the pending market, admins everything.
func (s *Service) List(ctx context.Context, actor auth.Identity) ([]MovingRequest, error) {
	scope := policy.ScopeRequests(actor)
	if scope.Denied {
		return nil, ErrForbidden
	}

	filters := Filters{CustomerID: scope.CustomerID}
	if scope.PendingOnly {
		filters.Status = StatusPending
	}
	return s.repo.List(ctx, filters)
}

// Get returns one request by id.
func (s *Service) Get(ctx context.Context, id string) (MovingRequest, error) {
	return s.repo.GetByID(ctx, id)
}

// Transition drives the request status machine. pending→approved belongs
// to the bid ledger's accept transaction and is rejected here; the
// terminal transitions (completed, cancelled) are reachable through this
// hook even though no current endpoint calls them.
func (s *Service) Transition(ctx context.Context, id string, next Status) (MovingRequest, error) {
	if next == StatusApproved {
		return MovingRequest{}, ErrInvalidTransition
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return MovingRequest{}, fmt.Errorf("request: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	current, err := s.repo.GetForUpdate(ctx, tx, id)
	if err != nil {
		return MovingRequest{}, err
	}
	if !CanTransition(current.Status, next) {
		return MovingRequest{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, next)
	}

	updated, err := s.repo.UpdateStatus(ctx, tx, id, next, nil)
	if err != nil {
		return MovingRequest{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return MovingRequest{}, fmt.Errorf("request: commit transition: %w", err)
	}
	return updated, nil
}

// Delete removes a request and all of its bids. Admin only.
func (s *Service) Delete(ctx context.Context, actor auth.Identity, id string) error {
	if !policy.IsAdmin(actor) {
		return ErrForbidden
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("request: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	removedBids, err := s.repo.DeleteCascade(ctx, tx, id)
	if err != nil {
		return err
	}

	if s.out != nil {
		payload := map[string]any{
			"request_id":   id,
			"removed_bids": removedBids,
		}
		if err := s.out.Enqueue(ctx, tx, outbox.TopicRequestDeleted, payload); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("request: commit delete: %w", err)
	}
	return nil
}
