package request

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound signals the referenced request does not exist.
	ErrNotFound = errors.New("request: not found")
)

type Repository interface {
	Create(ctx context.Context, tx pgx.Tx, req MovingRequest) (MovingRequest, error)
	GetByID(ctx context.Context, id string) (MovingRequest, error)
	List(ctx context.Context, filters Filters) ([]MovingRequest, error)
	GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (MovingRequest, error)
	UpdateStatus(ctx context.Context, tx pgx.Tx, id string, status Status, selectedMoverID *string) (MovingRequest, error)
	DeleteCascade(ctx context.Context, tx pgx.Tx, id string) (int, error)
}

type PGRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const requestColumns = `id, customer_id, customer_name, from_location, to_location,
	from_floor, to_floor, has_elevator_from, has_elevator_to, needs_mobile_elevator,
	truck_distance, packing_service, moving_date, description, status,
	selected_mover_id, created_at`

func (r *PGRepository) Create(ctx context.Context, tx pgx.Tx, req MovingRequest) (MovingRequest, error) {
	query := fmt.Sprintf(`
		INSERT INTO moving_requests (id, customer_id, customer_name, from_location, to_location,
			from_floor, to_floor, has_elevator_from, has_elevator_to, needs_mobile_elevator,
			truck_distance, packing_service, moving_date, description, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING %s
	`, requestColumns)

	row := tx.QueryRow(ctx, query,
		req.ID,
		req.CustomerID,
		req.CustomerName,
		req.FromLocation,
		req.ToLocation,
		req.FromFloor,
		req.ToFloor,
		req.HasElevatorFrom,
		req.HasElevatorTo,
		req.NeedsMobileElevator,
		req.TruckDistance,
		req.PackingService,
		req.MovingDate,
		req.Description,
		req.Status,
	)

	created, err := scanRequest(row)
	if err != nil {
		return MovingRequest{}, fmt.Errorf("request: insert: %w", err)
	}
	return created, nil
}

func (r *PGRepository) GetByID(ctx context.Context, id string) (MovingRequest, error) {
	query := fmt.Sprintf(`SELECT %s FROM moving_requests WHERE id = $1`, requestColumns)

	req, err := scanRequest(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return MovingRequest{}, ErrNotFound
		}
		return MovingRequest{}, fmt.Errorf("request: get by id: %w", err)
	}
	return req, nil
}

func (r *PGRepository) List(ctx context.Context, filters Filters) ([]MovingRequest, error) {
	if filters.Limit <= 0 || filters.Limit > 500 {
		filters.Limit = 500
	}

	where := []string{"1=1"}
	args := []any{}

	if filters.CustomerID != "" {
		where = append(where, fmt.Sprintf("customer_id=$%d", len(args)+1))
		args = append(args, filters.CustomerID)
	}
	if filters.Status != "" {
		where = append(where, fmt.Sprintf("status=$%d", len(args)+1))
		args = append(args, filters.Status)
	}

	query := fmt.Sprintf(`SELECT %s FROM moving_requests WHERE %s ORDER BY created_at DESC LIMIT %d`,
		requestColumns, strings.Join(where, " AND "), filters.Limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("request: query list: %w", err)
	}
	defer rows.Close()

	list := []MovingRequest{}
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("request: scan: %w", err)
		}
		list = append(list, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("request: iterate list: %w", err)
	}
	return list, nil
}

func (r *PGRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (MovingRequest, error) {
	query := fmt.Sprintf(`SELECT %s FROM moving_requests WHERE id = $1 FOR UPDATE`, requestColumns)

	req, err := scanRequest(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return MovingRequest{}, ErrNotFound
		}
		return MovingRequest{}, fmt.Errorf("request: get for update: %w", err)
	}
	return req, nil
}

// UpdateStatus writes the new status. The selected mover travels with the
// approved and completed statuses and is cleared on any other one.
func (r *PGRepository) UpdateStatus(ctx context.Context, tx pgx.Tx, id string, status Status, selectedMoverID *string) (MovingRequest, error) {
	query := fmt.Sprintf(`
		UPDATE moving_requests
		SET status = $2,
		    selected_mover_id = CASE
		        WHEN $2 IN ('approved', 'completed') THEN COALESCE($3, selected_mover_id)
		        ELSE NULL
		    END
		WHERE id = $1
		RETURNING %s
	`, requestColumns)

	req, err := scanRequest(tx.QueryRow(ctx, query, id, status, selectedMoverID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return MovingRequest{}, ErrNotFound
		}
		return MovingRequest{}, fmt.Errorf("request: update status: %w", err)
	}
	return req, nil
}

// DeleteCascade removes the request and every bid placed against it in
// the surrounding transaction. Returns the number of bids removed.
func (r *PGRepository) DeleteCascade(ctx context.Context, tx pgx.Tx, id string) (int, error) {
	bidTag, err := tx.Exec(ctx, `DELETE FROM bids WHERE request_id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("request: cascade delete bids: %w", err)
	}

	reqTag, err := tx.Exec(ctx, `DELETE FROM moving_requests WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("request: delete: %w", err)
	}
	if reqTag.RowsAffected() == 0 {
		return 0, ErrNotFound
	}

	return int(bidTag.RowsAffected()), nil
}

func scanRequest(row pgx.Row) (MovingRequest, error) {
	var req MovingRequest
	return req, row.Scan(
		&req.ID,
		&req.CustomerID,
		&req.CustomerName,
		&req.FromLocation,
		&req.ToLocation,
		&req.FromFloor,
		&req.ToFloor,
		&req.HasElevatorFrom,
		&req.HasElevatorTo,
		&req.NeedsMobileElevator,
		&req.TruckDistance,
		&req.PackingService,
		&req.MovingDate,
		&req.Description,
		&req.Status,
		&req.SelectedMoverID,
		&req.CreatedAt,
	)
}
