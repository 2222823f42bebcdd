package bid

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
	"movemarket/request"
)

var (
	// ErrForbidden signals a role or ownership mismatch.
	ErrForbidden = errors.New("bid: forbidden")
	// ErrInvalidPrice signals a non-positive bid price.
	ErrInvalidPrice = errors.New("bid: price must be positive")
)

// TxBeginner abstracts pgxpool.Pool for testability.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// RequestReader is the slice of the request repository the ledger needs.
type RequestReader interface {
	GetByID(ctx context.Context, id string) (request.MovingRequest, error)
}

// UserReader resolves the acting mover for the snapshot fields.
type UserReader interface {
	GetUserByID(ctx context.Context, userID string) (auth.User, error)
}

// OutboxWriter is the delivery hook invoked inside the accept transaction.
type OutboxWriter interface {
	Enqueue(ctx context.Context, tx pgx.Tx, topic string, payload map[string]any) error
}

// Service owns the bid ledger: placement, listing and acceptance.
type Service struct {
	pool     TxBeginner
	repo     Repository
	requests RequestReader
	users    UserReader
	out      OutboxWriter
	idGen    func() string
	now      func() time.Time
}

func NewService(pool TxBeginner, repo Repository, requests RequestReader, users UserReader) *Service {
	return &Service{
		pool:     pool,
		repo:     repo,
		requests: requests,
		users:    users,
		idGen:    func() string { return uuid.NewString() },
		now:      time.Now,
	}
}

func (s *Service) WithOutbox(out OutboxWriter) *Service {
	s.out = out
	return s
}

func (s *Service) WithIDGenerator(gen func() string) *Service {
	s.idGen = gen
	return s
}

// Place records a pending bid by the acting mover against a request.
// The mover's name, company and phone are copied onto the bid as a
// snapshot. A second bid from the same mover on the same request fails
// with ErrAlreadyBid. The parent request's status is not checked; the
// market stays open until the customer accepts.
func (s *Service) Place(ctx context.Context, actor auth.Identity, params PlaceParams) (Bid, error) {
	if !policy.CanPlaceBid(actor) {
		return Bid{}, ErrForbidden
	}
	if params.Price <= 0 {
		return Bid{}, ErrInvalidPrice
	}

	if _, err := s.requests.GetByID(ctx, params.RequestID); err != nil {
		if errors.Is(err, request.ErrNotFound) {
			return Bid{}, ErrRequestNotFound
		}
		return Bid{}, err
	}

	mover, err := s.users.GetUserByID(ctx, actor.UserID)
	if err != nil {
		return Bid{}, fmt.Errorf("bid: resolve mover: %w", err)
	}

	company := ""
	if mover.CompanyName != nil {
		company = *mover.CompanyName
	}

	return s.repo.Insert(ctx, Bid{
		ID:          s.idGen(),
		RequestID:   params.RequestID,
		MoverID:     actor.UserID,
		MoverName:   mover.Name,
		CompanyName: company,
		Phone:       mover.Phone,
		Price:       params.Price,
		Message:     params.Message,
		Status:      StatusPending,
	})
}

// ListForRequest returns every bid on a request. Movers and admins see
// the full ledger, competitors included; a customer only on their own
// request.
func (s *Service) ListForRequest(ctx context.Context, actor auth.Identity, requestID string) ([]Bid, error) {
	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, request.ErrNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}

	if !policy.CanViewRequestBids(actor, req.CustomerID) {
		return nil, ErrForbidden
	}

	return s.repo.ListByRequest(ctx, requestID)
}

// Accept finalizes one bid on behalf of the owning customer. The winning
// bid is accepted, the request approved with the mover recorded and every
// sibling rejected in a single transaction; a reader never observes a
// partially applied acceptance. Re-accepting the winning bid is idempotent.
func (s *Service) Accept(ctx context.Context, actor auth.Identity, bidID string) (AcceptResult, error) {
	b, err := s.repo.GetByID(ctx, bidID)
	if err != nil {
		return AcceptResult{}, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return AcceptResult{}, fmt.Errorf("bid: begin accept tx: %w", err)
	}
	defer tx.Rollback(ctx)

	res, err := s.repo.ExecuteAcceptTx(ctx, tx, AcceptParams{
		BidID:      b.ID,
		RequestID:  b.RequestID,
		MoverID:    b.MoverID,
		CustomerID: actor.UserID,
	})
	if err != nil {
		return AcceptResult{}, err
	}

	if res.AlreadyAccepted {
		// Nothing changed; skip the commit and the notification.
		return res, nil
	}

	if s.out != nil {
		payload := map[string]any{
			"bid_id":            res.BidID,
			"request_id":        res.RequestID,
			"selected_mover_id": res.SelectedMoverID,
			"rejected_siblings": res.RejectedSiblings,
		}
		if err := s.out.Enqueue(ctx, tx, outbox.TopicBidAccepted, payload); err != nil {
			return AcceptResult{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return AcceptResult{}, fmt.Errorf("bid: commit accept: %w", err)
	}

	return res, nil
}
