package bid

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"movemarket/request"
)

var (
	// ErrNotFound signals the referenced bid does not exist.
	ErrNotFound = errors.New("bid: not found")
	// ErrAlreadyBid signals a second bid from the same mover on the same request.
	ErrAlreadyBid = errors.New("bid: mover already bid on this request")
	// ErrRequestNotFound signals the parent request does not exist.
	ErrRequestNotFound = errors.New("bid: request not found")
	// ErrNotOwner signals the acting customer does not own the parent request.
	ErrNotOwner = errors.New("bid: request not owned by customer")
	// ErrRequestClosed signals the parent request already selected a different bid.
	ErrRequestClosed = errors.New("bid: request closed")
)

// Repository defines the data access required by the ledger.
type Repository interface {
	Insert(ctx context.Context, b Bid) (Bid, error)
	GetByID(ctx context.Context, id string) (Bid, error)
	ListByRequest(ctx context.Context, requestID string) ([]Bid, error)
	ExecuteAcceptTx(ctx context.Context, tx pgx.Tx, params AcceptParams) (AcceptResult, error)
}

// PGRepository implements Repository backed by PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const bidColumns = `id, request_id, mover_id, mover_name, company_name, phone,
	price, message, status, created_at`

// Insert writes a new pending bid. The unique index on
// (request_id, mover_id) settles the one-bid-per-mover race: two
// concurrent placements both passing an application read check cannot
// both commit.
func (r *PGRepository) Insert(ctx context.Context, b Bid) (Bid, error) {
	query := fmt.Sprintf(`
		INSERT INTO bids (id, request_id, mover_id, mover_name, company_name, phone, price, message, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING %s
	`, bidColumns)

	created, err := scanBid(r.pool.QueryRow(ctx, query,
		b.ID,
		b.RequestID,
		b.MoverID,
		b.MoverName,
		b.CompanyName,
		b.Phone,
		b.Price,
		b.Message,
		b.Status,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case pgerrcode.UniqueViolation:
				return Bid{}, ErrAlreadyBid
			case pgerrcode.ForeignKeyViolation:
				return Bid{}, ErrRequestNotFound
			}
		}
		return Bid{}, fmt.Errorf("bid: insert: %w", err)
	}
	return created, nil
}

func (r *PGRepository) GetByID(ctx context.Context, id string) (Bid, error) {
	query := fmt.Sprintf(`SELECT %s FROM bids WHERE id = $1`, bidColumns)

	b, err := scanBid(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Bid{}, ErrNotFound
		}
		return Bid{}, fmt.Errorf("bid: get by id: %w", err)
	}
	return b, nil
}

func (r *PGRepository) ListByRequest(ctx context.Context, requestID string) ([]Bid, error) {
	query := fmt.Sprintf(`SELECT %s FROM bids WHERE request_id = $1 ORDER BY created_at ASC`, bidColumns)

	rows, err := r.pool.Query(ctx, query, requestID)
	if err != nil {
		return nil, fmt.Errorf("bid: list by request: %w", err)
	}
	defer rows.Close()

	bids := make([]Bid, 0, 8)
	for rows.Next() {
		b, err := scanBid(rows)
		if err != nil {
			return nil, fmt.Errorf("bid: scan: %w", err)
		}
		bids = append(bids, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("bid: iterate: %w", err)
	}
	return bids, nil
}

// ExecuteAcceptTx performs the three-document accept write inside the
// caller's transaction: the winning bid flips to accepted, the parent
// request to approved with the winner recorded, and every sibling bid to
// rejected. The FOR UPDATE lock on the request row serializes concurrent
// accepts so at most one bid ends up accepted.
func (r *PGRepository) ExecuteAcceptTx(ctx context.Context, tx pgx.Tx, params AcceptParams) (AcceptResult, error) {
	var (
		ownerID       string
		currentStatus request.Status
		selectedMover *string
	)
	const requestSQL = `
SELECT customer_id, status, selected_mover_id
FROM moving_requests
WHERE id = $1
FOR UPDATE
`
	if err := tx.QueryRow(ctx, requestSQL, params.RequestID).Scan(&ownerID, &currentStatus, &selectedMover); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return AcceptResult{}, ErrRequestNotFound
		}
		return AcceptResult{}, fmt.Errorf("bid: lock request: %w", err)
	}

	if ownerID != params.CustomerID {
		return AcceptResult{}, ErrNotOwner
	}

	// Re-acceptance guard: accepting the already-selected bid again is a
	// no-op; accepting any other bid of a closed request is a conflict.
	if currentStatus != request.StatusPending {
		if currentStatus == request.StatusApproved && selectedMover != nil && *selectedMover == params.MoverID {
			return AcceptResult{
				BidID:           params.BidID,
				RequestID:       params.RequestID,
				SelectedMoverID: params.MoverID,
				AlreadyAccepted: true,
			}, nil
		}
		return AcceptResult{}, ErrRequestClosed
	}

	acceptTag, err := tx.Exec(ctx, `
		UPDATE bids SET status = 'accepted' WHERE id = $1 AND request_id = $2
	`, params.BidID, params.RequestID)
	if err != nil {
		return AcceptResult{}, fmt.Errorf("bid: mark accepted: %w", err)
	}
	if acceptTag.RowsAffected() == 0 {
		return AcceptResult{}, ErrNotFound
	}

	if _, err := tx.Exec(ctx, `
		UPDATE moving_requests SET status = 'approved', selected_mover_id = $2 WHERE id = $1
	`, params.RequestID, params.MoverID); err != nil {
		return AcceptResult{}, fmt.Errorf("bid: approve request: %w", err)
	}

	rejectTag, err := tx.Exec(ctx, `
		UPDATE bids SET status = 'rejected' WHERE request_id = $1 AND id <> $2
	`, params.RequestID, params.BidID)
	if err != nil {
		return AcceptResult{}, fmt.Errorf("bid: reject siblings: %w", err)
	}

	return AcceptResult{
		BidID:            params.BidID,
		RequestID:        params.RequestID,
		SelectedMoverID:  params.MoverID,
		RejectedSiblings: int(rejectTag.RowsAffected()),
	}, nil
}

func scanBid(row pgx.Row) (Bid, error) {
	var b Bid
	return b, row.Scan(
		&b.ID,
		&b.RequestID,
		&b.MoverID,
		&b.MoverName,
		&b.CompanyName,
		&b.Phone,
		&b.Price,
		&b.Message,
		&b.Status,
		&b.CreatedAt,
	)
}
