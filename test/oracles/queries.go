package oracles

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Oracle struct {
	Name string
	SQL  string
}

func All() []Oracle {
	return []Oracle{
		{
			Name: "O1_one_accepted_bid_per_request",
			SQL: `SELECT request_id, COUNT(*) FROM bids
                  WHERE status = 'accepted'
                  GROUP BY request_id HAVING COUNT(*) > 1`,
		},
		{
			Name: "O2_selected_mover_matches_status",
			SQL: `SELECT id, status, selected_mover_id FROM moving_requests
                  WHERE (selected_mover_id IS NOT NULL) <> (status IN ('approved','completed'))`,
		},
		{
			Name: "O3_accepted_bid_is_the_selected_mover",
			SQL: `SELECT b.id FROM bids b
                  JOIN moving_requests r ON r.id = b.request_id
                  WHERE b.status = 'accepted'
                    AND (r.selected_mover_id IS NULL OR r.selected_mover_id <> b.mover_id)`,
		},
		{
			Name: "O4_accepted_bid_implies_approved_request",
			SQL: `SELECT b.id FROM bids b
                  JOIN moving_requests r ON r.id = b.request_id
                  WHERE b.status = 'accepted' AND r.status NOT IN ('approved','completed')`,
		},
		{
			Name: "O5_approved_request_has_a_winner",
			SQL: `SELECT r.id FROM moving_requests r
                  WHERE r.status IN ('approved','completed')
                    AND NOT EXISTS (SELECT 1 FROM bids b WHERE b.request_id = r.id AND b.status = 'accepted')`,
		},
		{
			Name: "O6_one_bid_per_mover_per_request",
			SQL: `SELECT request_id, mover_id, COUNT(*) FROM bids
                  GROUP BY request_id, mover_id HAVING COUNT(*) > 1`,
		},
		{
			Name: "O7_no_orphan_bids",
			SQL: `SELECT b.id FROM bids b
                  LEFT JOIN moving_requests r ON r.id = b.request_id
                  WHERE r.id IS NULL`,
		},
		{
			Name: "O8_positive_prices",
			SQL:  `SELECT id, price FROM bids WHERE price <= 0`,
		},
		{
			Name: "O9_outbox_not_stuck",
			SQL: `SELECT id, topic FROM outbox
                  WHERE status = 'pending' AND now() - created_at > interval '5 minutes'`,
		},
	}
}

// Run executes all oracles and returns the first failure (name and sample row text) or empty name if all pass.
func Run(ctx context.Context, pool *pgxpool.Pool) (string, string, error) {
	for _, o := range All() {
		rows, err := pool.Query(ctx, o.SQL)
		if err != nil {
			return o.Name, "", fmt.Errorf("oracle %s: %w", o.Name, err)
		}
		has := rows.Next()
		if has {
			vals, err := rows.Values()
			rows.Close()
			if err != nil {
				return o.Name, "", err
			}
			return o.Name, fmt.Sprintf("%v", vals), nil
		}
		rows.Close()
	}
	return "", "", nil
}
