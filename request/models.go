package request

import "time"

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// validTransitions is the request state machine. pending→approved is
// driven exclusively by the bid ledger's accept transaction; the terminal
// transitions are exposed through Service.Transition for future callers.
var validTransitions = map[Status][]Status{
	StatusPending:  {StatusApproved, StatusCancelled},
	StatusApproved: {StatusCompleted, StatusCancelled},
}

// CanTransition reports whether from→to is a legal status change.
func CanTransition(from, to Status) bool {
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// MovingRequest is the unit of work a customer posts. customer_name is a
// point-in-time snapshot taken from the actor at creation.
type MovingRequest struct {
	ID                  string
	CustomerID          string
	CustomerName        string
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
	Status              Status
	SelectedMoverID     *string
	CreatedAt           time.Time
}

// Filters narrows a listing query.
type Filters struct {
	CustomerID string
	Status     Status
	Limit      int
}
