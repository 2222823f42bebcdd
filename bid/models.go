package bid

import "time"

type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

// Bid is a priced offer by a mover against a moving request. The mover
// name, company and phone are point-in-time snapshots taken when the bid
// is placed; later profile edits deliberately do not propagate.
type Bid struct {
	ID          string
	RequestID   string
	MoverID     string
	MoverName   string
	CompanyName string
	Phone       string
	Price       float64
	Message     *string
	Status      Status
	CreatedAt   time.Time
}

// PlaceParams enumerates the fields required to place a bid.
type PlaceParams struct {
	RequestID string
	Price     float64
	Message   *string
}

// AcceptParams carries the identifiers the accept transaction operates on.
type AcceptParams struct {
	BidID      string
	RequestID  string
	MoverID    string
	CustomerID string
}

// AcceptResult reports the outcome of an accept transaction.
type AcceptResult struct {
	BidID            string
	RequestID        string
	SelectedMoverID  string
	RejectedSiblings int
	AlreadyAccepted  bool
}
