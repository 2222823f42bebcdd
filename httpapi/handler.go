// Package httpapi exposes the marketplace core over HTTP. It owns JSON
// shapes, status-code mapping and bearer-token authentication; all
// business rules live in the domain packages it fronts.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"movemarket/auth"
	"movemarket/bid"
	"movemarket/livefeed"
	"movemarket/request"
)

// AuthService is the identity-provider contract consumed by the handlers.
type AuthService interface {
	Register(ctx context.Context, req auth.RegisterRequest) (*auth.User, error)
	Verify(ctx context.Context, req auth.VerifyRequest) error
	Login(ctx context.Context, req auth.LoginRequest) (auth.LoginResult, error)
	GetUserByID(ctx context.Context, userID string) (*auth.User, error)
}

// AdminService groups the admin-only account operations.
type AdminService interface {
	ListUsers(ctx context.Context, actor auth.Identity) ([]auth.User, error)
	UpdateRole(ctx context.Context, actor auth.Identity, email string, role auth.Role) error
	BanUser(ctx context.Context, actor auth.Identity, email string, days int) error
	UnbanUser(ctx context.Context, actor auth.Identity, email string) error
	ApproveMover(ctx context.Context, actor auth.Identity, moverID string) error
}

// RequestService is the request-lifecycle contract consumed by the handlers.
type RequestService interface {
	Create(ctx context.Context, actor auth.Identity, customerName string, params request.CreateParams) (request.MovingRequest, error)
	List(ctx context.Context, actor auth.Identity) ([]request.MovingRequest, error)
	Delete(ctx context.Context, actor auth.Identity, id string) error
}

// BidService is the bid-ledger contract consumed by the handlers.
type BidService interface {
	Place(ctx context.Context, actor auth.Identity, params bid.PlaceParams) (bid.Bid, error)
	ListForRequest(ctx context.Context, actor auth.Identity, requestID string) ([]bid.Bid, error)
	Accept(ctx context.Context, actor auth.Identity, bidID string) (bid.AcceptResult, error)
}

// FeedService is the live-feed contract consumed by the handlers.
type FeedService interface {
	Create(ctx context.Context, actor auth.Identity, params livefeed.CreateParams) (livefeed.Post, error)
	ListPublic(ctx context.Context) ([]livefeed.Post, error)
	ListFull(ctx context.Context, actor auth.Identity) ([]livefeed.Post, error)
	Delete(ctx context.Context, actor auth.Identity, id string) error
}

// Handler implements the HTTP API.
type Handler struct {
	authSvc    AuthService
	adminSvc   AdminService
	requestSvc RequestService
	bidSvc     BidService
	feedSvc    FeedService
	logger     *zap.Logger
	authMw     *AuthMiddleware
}

func NewHandler(authSvc AuthService, adminSvc AdminService, requestSvc RequestService, bidSvc BidService, feedSvc FeedService, logger *zap.Logger, authMw *AuthMiddleware) *Handler {
	return &Handler{
		authSvc:    authSvc,
		adminSvc:   adminSvc,
		requestSvc: requestSvc,
		bidSvc:     bidSvc,
		feedSvc:    feedSvc,
		logger:     logger,
		authMw:     authMw,
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("encode response", zap.Error(err))
	}
}

func (h *Handler) writeMessage(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"message": message})
}

func decodeJSON(r *http.Request, dst any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dst)
}

func identityOr401(w http.ResponseWriter, r *http.Request) (auth.Identity, bool) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
	}
	return identity, ok
}
