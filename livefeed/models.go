package livefeed

import "time"

// Post is a mover-authored promotional entry. Mover name, company and
// phone are snapshots of the posting account, not live references.
type Post struct {
	ID           string
	MoverID      string
	MoverName    string
	CompanyName  *string
	Phone        *string
	Title        string
	FromLocation *string
	ToLocation   *string
	When         *string
	Vehicle      *string
	PriceNote    *string
	Extra        *string
	CreatedAt    time.Time
}

// CreateParams contains the caller-supplied post fields.
type CreateParams struct {
	Title        string
	FromLocation *string
	ToLocation   *string
	When         *string
	Vehicle      *string
	PriceNote    *string
	Extra        *string
}

// Redacted returns a copy of the post with the phone stripped, the only
// field hidden from the public listing.
func (p Post) Redacted() Post {
	p.Phone = nil
	return p
}
