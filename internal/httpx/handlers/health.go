package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/hellogate/internal/httpx"
)

// HealthHandler expone healthz (vivo) y readyz (dependencias listas).
type HealthHandler struct {
	// Ping chequea el backend de usuarios; nil = siempre listo (driver memory).
	Ping func(ctx context.Context) error
}

func (h *HealthHandler) Register(r chi.Router) {
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", h.ready)
}

func (h *HealthHandler) ready(w http.ResponseWriter, r *http.Request) {
	if h.Ping != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.Ping(ctx); err != nil {
			httpx.WriteError(w, http.StatusServiceUnavailable, "not ready", err.Error())
			return
		}
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
