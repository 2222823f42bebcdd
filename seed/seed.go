// Package seed provisions the demo accounts and sample live-feed posts
// the original platform creates at startup. It is idempotent and only
// runs behind the SEED_DEMO configuration flag.
package seed

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

const (
	demoMoverEmail       = "demo@demo.com"
	demoCustomerEmail    = "demo.musteri@demo.com"
	demoPassword         = "123456**"
	demoMoverName        = "Demo Nakliyeci"
	demoMoverCompany     = "Demo Lojistik"
	demoCustomerName     = "Demo Müşteri"
	demoMoverPhone       = "+90 555 000 00 00"
	demoCustomerPhone    = "+90 531 000 00 00"
	demoFeedContactPhone = "+90 532 000 00 00"
)

// Run provisions the demo mover, demo customer and, when the feed is
// empty, a handful of sample live-feed posts.
func Run(ctx context.Context, pool *pgxpool.Pool) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(demoPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed: hash demo password: %w", err)
	}

	if err := upsertUser(ctx, pool, demoMoverName, demoMoverEmail, demoMoverPhone, "mover", string(hash), demoMoverCompany); err != nil {
		return err
	}
	if err := upsertUser(ctx, pool, demoCustomerName, demoCustomerEmail, demoCustomerPhone, "customer", string(hash), ""); err != nil {
		return err
	}

	return seedLiveFeedIfEmpty(ctx, pool)
}

func upsertUser(ctx context.Context, pool *pgxpool.Pool, name, email, phone, role, passwordHash, company string) error {
	var companyName *string
	if company != "" {
		companyName = &company
	}

	_, err := pool.Exec(ctx, `
		INSERT INTO users (id, name, email, phone, role, password_hash,
			is_active, is_email_verified, is_phone_verified, is_approved, company_name)
		VALUES ($1, $2, $3, $4, $5, $6, TRUE, TRUE, TRUE, TRUE, $7)
		ON CONFLICT (email) DO UPDATE SET
			name = EXCLUDED.name,
			phone = EXCLUDED.phone,
			role = EXCLUDED.role,
			password_hash = EXCLUDED.password_hash,
			is_active = TRUE,
			is_email_verified = TRUE,
			is_phone_verified = TRUE,
			is_approved = TRUE,
			company_name = EXCLUDED.company_name,
			updated_at = now()
	`, uuid.NewString(), name, email, phone, role, passwordHash, companyName)
	if err != nil {
		return fmt.Errorf("seed: upsert %s: %w", email, err)
	}
	return nil
}

type samplePost struct {
	title, from, to, when, vehicle, priceNote, extra string
}

func seedLiveFeedIfEmpty(ctx context.Context, pool *pgxpool.Pool) error {
	var count int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM live_feed`).Scan(&count); err != nil {
		return fmt.Errorf("seed: count live feed: %w", err)
	}
	if count > 0 {
		return nil
	}

	samples := []samplePost{
		{"2+1 Ev Taşıma", "Beşiktaş", "Kadıköy", "Yarın sabah", "3.5 Ton Kamyonet", "Asansör gerekebilir", "Paketleme kısmen hazır"},
		{"Parça Eşya (Beyaz Eşya)", "Şişli", "Ataşehir", "Bugün 17:00", "Panelvan", "Tek kat, kolay erişim", ""},
		{"Ofis Taşıma (4 oda)", "Maslak", "Kozyatağı", "Cuma", "7.5 Ton Kamyon", "Ambalaj dahil", "Kablolama hassas"},
		{"Piyano Taşıma", "Üsküdar", "Beylikdüzü", "Hafta sonu", "Özel ekip", "Sigortalı taşıma", ""},
		{"Stüdyo Daire", "Bakırköy", "Pendik", "Bugün", "Kamyonet", "Hızlı teslim", ""},
	}

	for _, s := range samples {
		s := s
		phone := demoFeedContactPhone
		company := demoMoverCompany
		_, err := pool.Exec(ctx, `
			INSERT INTO live_feed (id, mover_id, mover_name, company_name, phone, title,
				from_location, to_location, "when", vehicle, price_note, extra)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		`, uuid.NewString(), uuid.NewString(), demoMoverName, &company, &phone,
			s.title, &s.from, &s.to, &s.when, &s.vehicle, &s.priceNote, &s.extra)
		if err != nil {
			return fmt.Errorf("seed: insert live post: %w", err)
		}
	}

	return nil
}
