package httpapi

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"movemarket/auth"
)

// AdminListUsers returns every account.
func (h *Handler) AdminListUsers(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOr401(w, r)
	if !ok {
		return
	}

	users, err := h.adminSvc.ListUsers(r.Context(), identity)
	if err != nil {
		h.respondError(w, err)
		return
	}

	out := make([]userDTO, len(users))
	for i, u := range users {
		out[i] = toUserDTO(u)
	}
	h.writeJSON(w, http.StatusOK, out)
}

type updateRoleBody struct {
	Role auth.Role `json:"role"`
}

// AdminUpdateRole changes an account's role by email.
func (h *Handler) AdminUpdateRole(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOr401(w, r)
	if !ok {
		return
	}

	var body updateRoleBody
	if err := decodeJSON(r, &body); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	if !auth.ValidRole(body.Role) {
		http.Error(w, "invalid role", http.StatusBadRequest)
		return
	}

	if err := h.adminSvc.UpdateRole(r.Context(), identity, chi.URLParam(r, "email"), body.Role); err != nil {
		h.respondError(w, err)
		return
	}

	h.writeMessage(w, http.StatusOK, "Role updated")
}

type banBody struct {
	BanDays int `json:"ban_days"`
}

// AdminBanUser deactivates an account for a number of days.
func (h *Handler) AdminBanUser(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOr401(w, r)
	if !ok {
		return
	}

	var body banBody
	if err := decodeJSON(r, &body); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	if body.BanDays <= 0 {
		http.Error(w, "ban_days must be positive", http.StatusBadRequest)
		return
	}

	if err := h.adminSvc.BanUser(r.Context(), identity, chi.URLParam(r, "email"), body.BanDays); err != nil {
		h.respondError(w, err)
		return
	}

	h.writeMessage(w, http.StatusOK, fmt.Sprintf("Banned %d days", body.BanDays))
}

// AdminUnbanUser reactivates an account.
func (h *Handler) AdminUnbanUser(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOr401(w, r)
	if !ok {
		return
	}

	if err := h.adminSvc.UnbanUser(r.Context(), identity, chi.URLParam(r, "email")); err != nil {
		h.respondError(w, err)
		return
	}

	h.writeMessage(w, http.StatusOK, "Unbanned")
}

// AdminApproveMover approves a mover account by id.
func (h *Handler) AdminApproveMover(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOr401(w, r)
	if !ok {
		return
	}

	if err := h.adminSvc.ApproveMover(r.Context(), identity, chi.URLParam(r, "id")); err != nil {
		h.respondError(w, err)
		return
	}

	h.writeMessage(w, http.StatusOK, "Mover approved")
}
