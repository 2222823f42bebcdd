package actors

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// transient reports whether the error is a recoverable casualty of the
// chaos actor (killed backend, dropped connection, serialization abort)
// rather than a real bug.
func transient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "57P01" || pgErr.Code == "40001" || pgErr.Code == "40P01" || strings.HasPrefix(pgErr.Code, "08") {
			return true
		}
	}
	msg := err.Error()
	return strings.Contains(msg, "conn closed") ||
		strings.Contains(msg, "unexpected EOF") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "connection reset")
}

// Bidder keeps placing bids on random requests on behalf of a pool of
// movers. Duplicate (request_id, mover_id) pairs are expected under
// contention, as are bids landing on already-approved requests; the market
// stays open until the customer accepts.
func Bidder(ctx context.Context, pool *pgxpool.Pool, moverIDs []string, stop <-chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		default:
		}

		var requestID string
		err := pool.QueryRow(ctx, `SELECT id FROM moving_requests ORDER BY random() LIMIT 1`).Scan(&requestID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) || transient(err) {
				time.Sleep(20 * time.Millisecond)
				continue
			}
			return fmt.Errorf("bidder pick request: %w", err)
		}

		moverID := moverIDs[rand.Intn(len(moverIDs))]
		_, err = pool.Exec(ctx, `INSERT INTO bids (id, request_id, mover_id, mover_name, company_name, phone, price, message, status)
                                  VALUES ($1,$2,$3,$4,$5,$6,$7,NULL,'pending')`,
			uuid.NewString(), requestID, moverID,
			fmt.Sprintf("Mover %s", moverID[:8]), "Stress Movers", "+90 555 000 00 00",
			float64(1000+rand.Intn(9000)))
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && (pgErr.Code == "23505" || pgErr.Code == "23503") {
				// duplicate mover or request deleted underneath us
			} else if !transient(err) {
				return fmt.Errorf("bidder insert: %w", err)
			}
		}
		time.Sleep(time.Duration(10+rand.Intn(20)) * time.Millisecond)
	}
}

// Acceptor replays the customer's accept transaction against a random
// pending bid: lock the request, accept the bid, approve the request with
// the winner recorded, reject the siblings, enqueue the notification.
// Several acceptors racing on the same request must leave exactly one
// accepted bid behind.
func Acceptor(ctx context.Context, pool *pgxpool.Pool, customerID string, stop <-chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		default:
		}

		if err := acceptOnce(ctx, pool, customerID); err != nil && !transient(err) {
			return fmt.Errorf("acceptor: %w", err)
		}
		time.Sleep(time.Duration(20+rand.Intn(40)) * time.Millisecond)
	}
}

func acceptOnce(ctx context.Context, pool *pgxpool.Pool, customerID string) error {
	var requestID string
	err := pool.QueryRow(ctx, `SELECT id FROM moving_requests WHERE customer_id=$1 AND status='pending' ORDER BY random() LIMIT 1`, customerID).Scan(&requestID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return err
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var status string
	if err := tx.QueryRow(ctx, `SELECT status FROM moving_requests WHERE id=$1 FOR UPDATE`, requestID).Scan(&status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return err
	}
	if status != "pending" {
		// lost the race to another acceptor
		return nil
	}

	var bidID, moverID string
	if err := tx.QueryRow(ctx, `SELECT id, mover_id FROM bids WHERE request_id=$1 AND status='pending' ORDER BY random() LIMIT 1`, requestID).Scan(&bidID, &moverID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return err
	}

	if _, err := tx.Exec(ctx, `UPDATE bids SET status='accepted' WHERE id=$1`, bidID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `UPDATE moving_requests SET status='approved', selected_mover_id=$2 WHERE id=$1`, requestID, moverID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `UPDATE bids SET status='rejected' WHERE request_id=$1 AND id <> $2`, requestID, bidID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `INSERT INTO outbox (topic, payload) VALUES ('bid.accepted', jsonb_build_object('bid_id',$1::text,'request_id',$2::text))`, bidID, requestID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// RequestCreator feeds the open market with fresh pending requests.
func RequestCreator(ctx context.Context, pool *pgxpool.Pool, customerID string, stop <-chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		default:
		}

		_, err := pool.Exec(ctx, `INSERT INTO moving_requests (id, customer_id, customer_name, from_location, to_location, moving_date, status)
                                   VALUES ($1,$2,'Stress Customer',$3,$4,now() + interval '7 days','pending')`,
			uuid.NewString(), customerID,
			fmt.Sprintf("From %d", rand.Int63()), fmt.Sprintf("To %d", rand.Int63()))
		if err != nil && !transient(err) {
			return fmt.Errorf("request creator: %w", err)
		}
		time.Sleep(time.Duration(40+rand.Intn(60)) * time.Millisecond)
	}
}

// FeedPoster publishes live-feed posts and occasionally moderates one away.
func FeedPoster(ctx context.Context, pool *pgxpool.Pool, moverID string, stop <-chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		default:
		}

		_, err := pool.Exec(ctx, `INSERT INTO live_feed (id, mover_id, mover_name, company_name, phone, title)
                                   VALUES ($1,$2,'Stress Mover','Stress Movers','+90 555 000 00 00',$3)`,
			uuid.NewString(), moverID, fmt.Sprintf("Empty truck %d", rand.Int63()))
		if err != nil && !transient(err) {
			return fmt.Errorf("feed poster: %w", err)
		}

		if rand.Intn(4) == 0 {
			_, _ = pool.Exec(ctx, `DELETE FROM live_feed WHERE id IN (SELECT id FROM live_feed ORDER BY random() LIMIT 1)`)
		}
		time.Sleep(time.Duration(30+rand.Intn(50)) * time.Millisecond)
	}
}

// OutboxWorker consumes pending outbox messages with SKIP LOCKED and marks
// them processed, simulating occasional delivery failures.
func OutboxWorker(ctx context.Context, pool *pgxpool.Pool, stop <-chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		default:
		}

		tx, err := pool.Begin(ctx)
		if err != nil {
			if transient(err) {
				time.Sleep(50 * time.Millisecond)
				continue
			}
			return err
		}
		rows, err := tx.Query(ctx, `SELECT id FROM outbox WHERE status='pending' ORDER BY created_at FOR UPDATE SKIP LOCKED LIMIT 10`)
		if err != nil {
			_ = tx.Rollback(ctx)
			time.Sleep(50 * time.Millisecond)
			continue
		}
		ids := make([]int64, 0, 10)
		for rows.Next() {
			var id int64
			_ = rows.Scan(&id)
			ids = append(ids, id)
		}
		rows.Close()
		for _, id := range ids {
			if rand.Intn(10) == 0 {
				_, _ = tx.Exec(ctx, `UPDATE outbox SET attempts=attempts+1 WHERE id=$1`, id)
				continue
			}
			_, _ = tx.Exec(ctx, `UPDATE outbox SET status='processed' WHERE id=$1`, id)
		}
		_ = tx.Commit(ctx)
		time.Sleep(100 * time.Millisecond)
	}
}
