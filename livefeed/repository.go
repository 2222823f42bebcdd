package livefeed

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound signals the requested post does not exist.
var ErrNotFound = errors.New("livefeed: post not found")

// Repository provides access to live-feed posts.
type Repository interface {
	Insert(ctx context.Context, post Post) (Post, error)
	List(ctx context.Context, limit int) ([]Post, error)
	Delete(ctx context.Context, id string) error
}

// PGRepository implements Repository backed by PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository wires a pgxpool-backed repository implementation.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const postColumns = `id, mover_id, mover_name, company_name, phone, title,
	from_location, to_location, "when", vehicle, price_note, extra, created_at`

// Insert writes a new post.
func (r *PGRepository) Insert(ctx context.Context, post Post) (Post, error) {
	query := fmt.Sprintf(`
		INSERT INTO live_feed (id, mover_id, mover_name, company_name, phone, title,
			from_location, to_location, "when", vehicle, price_note, extra)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING %s
	`, postColumns)

	created, err := scanPost(r.pool.QueryRow(ctx, query,
		post.ID,
		post.MoverID,
		post.MoverName,
		post.CompanyName,
		post.Phone,
		post.Title,
		post.FromLocation,
		post.ToLocation,
		post.When,
		post.Vehicle,
		post.PriceNote,
		post.Extra,
	))
	if err != nil {
		return Post{}, fmt.Errorf("livefeed: insert: %w", err)
	}
	return created, nil
}

// List fetches up to limit posts, newest first.
func (r *PGRepository) List(ctx context.Context, limit int) ([]Post, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	query := fmt.Sprintf(`SELECT %s FROM live_feed ORDER BY created_at DESC LIMIT $1`, postColumns)

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("livefeed: list: %w", err)
	}
	defer rows.Close()

	posts := make([]Post, 0, limit)
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("livefeed: scan post: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("livefeed: iterate posts: %w", err)
	}

	return posts, nil
}

// Delete hard-removes a post by id.
func (r *PGRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM live_feed WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("livefeed: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanPost(row pgx.Row) (Post, error) {
	var post Post
	return post, row.Scan(
		&post.ID,
		&post.MoverID,
		&post.MoverName,
		&post.CompanyName,
		&post.Phone,
		&post.Title,
		&post.FromLocation,
		&post.ToLocation,
		&post.When,
		&post.Vehicle,
		&post.PriceNote,
		&post.Extra,
		&post.CreatedAt,
	)
}
