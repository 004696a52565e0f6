package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/hellogate/internal/httpx"
	"github.com/dropDatabas3/hellogate/internal/jwt"
)

// HelloHandler: endpoint de ejemplo protegido por bearer access token.
type HelloHandler struct {
	Issuer *jwt.Issuer

	// Now es inyectable para tests; nil usa time.Now.
	Now func() time.Time
}

func (h *HelloHandler) Register(r chi.Router) {
	r.Get("/hello", h.handle)
}

func (h *HelloHandler) handle(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.authorize(w, r)
	if !ok {
		return
	}
	now := time.Now
	if h.Now != nil {
		now = h.Now
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Hello %s! Time: %s", claims.Email, now().UTC().Format(time.RFC3339)),
	})
}

func (h *HelloHandler) authorize(w http.ResponseWriter, r *http.Request) (*jwt.AccessClaims, bool) {
	raw := bearerToken(r)
	if raw == "" {
		w.Header().Set("WWW-Authenticate", `Bearer realm="hellogate"`)
		httpx.WriteError(w, http.StatusUnauthorized, "Authentication required", "")
		return nil, false
	}
	claims, err := h.Issuer.ParseAccess(raw)
	if err != nil {
		w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
		httpx.WriteError(w, http.StatusUnauthorized, "Invalid or expired token", "")
		return nil, false
	}
	return claims, true
}

func bearerToken(r *http.Request) string {
	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(auth) > 7 && strings.EqualFold(auth[:7], "Bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}
