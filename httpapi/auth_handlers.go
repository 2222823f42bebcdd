package httpapi

import (
	"net/http"

	"movemarket/auth"
)

// Register creates a new account.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req auth.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if _, err := h.authSvc.Register(r.Context(), req); err != nil {
		h.respondError(w, err)
		return
	}

	h.writeMessage(w, http.StatusOK, "User registered successfully")
}

// Verify consumes an email or phone verification code.
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	var req auth.VerifyRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	if err := h.authSvc.Verify(r.Context(), req); err != nil {
		h.respondError(w, err)
		return
	}

	h.writeMessage(w, http.StatusOK, "Verification successful")
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Login authenticates an account and returns a bearer token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	result, err := h.authSvc.Login(r.Context(), req)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken: result.Token,
		TokenType:   "bearer",
	})
}

// Me returns the authenticated account.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityOr401(w, r)
	if !ok {
		return
	}

	user, err := h.authSvc.GetUserByID(r.Context(), identity.UserID)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, toUserDTO(*user))
}
