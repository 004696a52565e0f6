package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/hellogate/internal/rate"
)

// Registrable es el contrato de los handlers del paquete handlers.
type Registrable interface {
	Register(r chi.Router)
}

// RouterConfig arma el árbol de rutas con la cadena de middlewares.
type RouterConfig struct {
	CORSOrigins []string
	Limiter     rate.Limiter // aplicado solo a /auth/workos/callback
	Metrics     http.Handler // handler de /metrics; nil lo omite

	Auth   Registrable // callback
	Logout Registrable
	Hello  Registrable
	Health Registrable
}

// NewRouter monta rutas y middlewares en el orden del proceso:
// CORS → security headers → request id → recover → logging → metrics.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	if cfg.Health != nil {
		cfg.Health.Register(r)
	}
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}
	if cfg.Hello != nil {
		cfg.Hello.Register(r)
	}
	if cfg.Logout != nil {
		cfg.Logout.Register(r)
	}
	if cfg.Auth != nil {
		r.Group(func(gr chi.Router) {
			if cfg.Limiter != nil {
				gr.Use(func(next http.Handler) http.Handler {
					return WithRateLimit(next, cfg.Limiter)
				})
			}
			cfg.Auth.Register(gr)
		})
	}

	var h http.Handler = r
	h = WithMetrics(h)
	h = WithLogging(h)
	h = WithRecover(h)
	h = WithRequestID(h)
	h = WithSecurityHeaders(h)
	h = WithCORS(h, cfg.CORSOrigins)
	return h
}
