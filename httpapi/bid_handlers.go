package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"movemarket/bid"
)

type placeBidBody struct {
	Price   float64 `json:"price"`
	Message *string `json:"message,omitempty"`
}

// PlaceBid records a bid by the acting mover on a request.
func (h *Handler) PlaceBid(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOr401(w, r)
	if !ok {
		return
	}

	var body placeBidBody
	if err := decodeJSON(r, &body); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	placed, err := h.bidSvc.Place(r.Context(), identity, bid.PlaceParams{
		RequestID: chi.URLParam(r, "id"),
		Price:     body.Price,
		Message:   body.Message,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, toBidDTO(placed))
}

// ListBids returns the bid ledger for a request, subject to visibility.
func (h *Handler) ListBids(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOr401(w, r)
	if !ok {
		return
	}

	bids, err := h.bidSvc.ListForRequest(r.Context(), identity, chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, toBidDTOs(bids))
}

type acceptResponse struct {
	BidID            string `json:"bid_id"`
	RequestID        string `json:"request_id"`
	SelectedMoverID  string `json:"selected_mover_id"`
	RejectedSiblings int    `json:"rejected_siblings"`
	AlreadyAccepted  bool   `json:"already_accepted"`
}

// AcceptBid finalizes a bid on behalf of the owning customer.
func (h *Handler) AcceptBid(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOr401(w, r)
	if !ok {
		return
	}

	res, err := h.bidSvc.Accept(r.Context(), identity, chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, acceptResponse{
		BidID:            res.BidID,
		RequestID:        res.RequestID,
		SelectedMoverID:  res.SelectedMoverID,
		RejectedSiblings: res.RejectedSiblings,
		AlreadyAccepted:  res.AlreadyAccepted,
	})
}
