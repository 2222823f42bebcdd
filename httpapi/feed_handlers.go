package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"movemarket/livefeed"
)

type createPostBody struct {
	Title        string  `json:"title"`
	FromLocation *string `json:"from_location,omitempty"`
	ToLocation   *string `json:"to_location,omitempty"`
	When         *string `json:"when,omitempty"`
	Vehicle      *string `json:"vehicle,omitempty"`
	PriceNote    *string `json:"price_note,omitempty"`
	Extra        *string `json:"extra,omitempty"`
}

// CreateLivePost publishes a live-feed post for the acting mover.
func (h *Handler) CreateLivePost(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOr401(w, r)
	if !ok {
		return
	}

	var body createPostBody
	if err := decodeJSON(r, &body); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	if body.Title == "" {
		http.Error(w, "title is required", http.StatusBadRequest)
		return
	}

	post, err := h.feedSvc.Create(r.Context(), identity, livefeed.CreateParams{
		Title:        body.Title,
		FromLocation: body.FromLocation,
		ToLocation:   body.ToLocation,
		When:         body.When,
		Vehicle:      body.Vehicle,
		PriceNote:    body.PriceNote,
		Extra:        body.Extra,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, toPostDTO(post))
}

// PublicLiveFeed lists the feed with phone numbers stripped. No auth.
func (h *Handler) PublicLiveFeed(w http.ResponseWriter, r *http.Request) {
	posts, err := h.feedSvc.ListPublic(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, toPostDTOs(posts))
}

// FullLiveFeed lists the feed with contact details for movers and admins;
// everyone else receives the public view.
func (h *Handler) FullLiveFeed(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOr401(w, r)
	if !ok {
		return
	}

	posts, err := h.feedSvc.ListFull(r.Context(), identity)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, toPostDTOs(posts))
}

// DeleteLivePost removes a post. Admin only.
func (h *Handler) DeleteLivePost(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOr401(w, r)
	if !ok {
		return
	}

	if err := h.feedSvc.Delete(r.Context(), identity, chi.URLParam(r, "id")); err != nil {
		h.respondError(w, err)
		return
	}

	h.writeMessage(w, http.StatusOK, "Post deleted")
}
