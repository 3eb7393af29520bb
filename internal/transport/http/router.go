package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"werewolf-arena/internal/app/arena"
)

func NewRouter(svc *arena.Service, healthy func() error) *chi.Mux {
	h := NewSessionHandlers(svc)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)

	r.With(APILogMiddleware()).Get("/healthz", healthHandler(healthy))

	r.Route("/api", func(r chi.Router) {
		r.Use(APILogMiddleware())
		r.Post("/sessions", h.Create())
		r.Post("/sessions/{session_id}/step", h.Step())
		r.Post("/sessions/{session_id}/seats/{seat_id}/actions", h.Action())
		r.Get("/sessions/{session_id}/state", h.State())
		r.Delete("/sessions/{session_id}", h.Delete())
	})
	return r
}

func healthHandler(healthy func() error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if healthy != nil {
			if err := healthy(); err != nil {
				writeError(w, http.StatusServiceUnavailable, "unhealthy")
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
