package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// SetupRouter wires the HTTP routes. The public live feed is the only
// listing reachable without a bearer token.
func (h *Handler) SetupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(Logger(h.logger))

	r.Route("/api", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/verify", h.Verify)
		r.Post("/login", h.Login)
		r.Get("/live-feed", h.PublicLiveFeed)

		r.Group(func(r chi.Router) {
			r.Use(h.authMw.Middleware)

			r.Get("/me", h.Me)

			r.Post("/requests", h.CreateRequest)
			r.Get("/requests", h.ListRequests)
			r.Post("/requests/{id}/bids", h.PlaceBid)
			r.Get("/requests/{id}/bids", h.ListBids)
			r.Post("/bids/{id}/accept", h.AcceptBid)

			r.Post("/live-feed", h.CreateLivePost)
			r.Get("/live-feed/full", h.FullLiveFeed)

			r.Route("/admin", func(r chi.Router) {
				r.Get("/users", h.AdminListUsers)
				r.Post("/update-user-role/{email}", h.AdminUpdateRole)
				r.Post("/ban-user/{email}", h.AdminBanUser)
				r.Post("/unban-user/{email}", h.AdminUnbanUser)
				r.Post("/approve-mover/{id}", h.AdminApproveMover)
				r.Delete("/requests/{id}", h.DeleteRequest)
				r.Delete("/live-feed/{id}", h.DeleteLivePost)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})

	return r
}
