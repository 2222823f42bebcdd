package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"movemarket/request"
)

type createRequestBody struct {
	FromLocation        string    `json:"from_location"`
	ToLocation          string    `json:"to_location"`
	FromFloor           int       `json:"from_floor"`
	ToFloor             int       `json:"to_floor"`
	HasElevatorFrom     bool      `json:"has_elevator_from"`
	HasElevatorTo       bool      `json:"has_elevator_to"`
	NeedsMobileElevator bool      `json:"needs_mobile_elevator"`
	TruckDistance       string    `json:"truck_distance"`
	PackingService      bool      `json:"packing_service"`
	MovingDate          time.Time `json:"moving_date"`
	Description         *string   `json:"description,omitempty"`
}

// CreateRequest opens a moving request for the acting customer.
func (h *Handler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOr401(w, r)
	if !ok {
		return
	}

	var body createRequestBody
	if err := decodeJSON(r, &body); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	if body.FromLocation == "" || body.ToLocation == "" || body.MovingDate.IsZero() {
		http.Error(w, "from_location, to_location and moving_date are required", http.StatusBadRequest)
		return
	}

	user, err := h.authSvc.GetUserByID(r.Context(), identity.UserID)
	if err != nil {
		h.respondError(w, err)
		return
	}

	created, err := h.requestSvc.Create(r.Context(), identity, user.Name, request.CreateParams{
		FromLocation:        body.FromLocation,
		ToLocation:          body.ToLocation,
		FromFloor:           body.FromFloor,
		ToFloor:             body.ToFloor,
		HasElevatorFrom:     body.HasElevatorFrom,
		HasElevatorTo:       body.HasElevatorTo,
		NeedsMobileElevator: body.NeedsMobileElevator,
		TruckDistance:       body.TruckDistance,
		PackingService:      body.PackingService,
		MovingDate:          body.MovingDate,
		Description:         body.Description,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, toRequestDTO(created))
}

// ListRequests returns the requests visible to the actor's role.
func (h *Handler) ListRequests(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOr401(w, r)
	if !ok {
		return
	}

	list, err := h.requestSvc.List(r.Context(), identity)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, toRequestDTOs(list))
}

// DeleteRequest removes a request and its bids. Admin only.
func (h *Handler) DeleteRequest(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOr401(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.requestSvc.Delete(r.Context(), identity, id); err != nil {
		h.respondError(w, err)
		return
	}

	h.writeMessage(w, http.StatusOK, "Request deleted")
}
