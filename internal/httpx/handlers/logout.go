package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/hellogate/internal/gateway"
	"github.com/dropDatabas3/hellogate/internal/httpx"
)

// LogoutHandler resuelve la URL de logout upstream y SIEMPRE borra la
// cookie de sesión sellada, pase lo que pase con el blob.
type LogoutHandler struct {
	GW *gateway.Gateway

	CookieName   string
	CookieDomain string
	SameSite     string
	Secure       bool
}

func (h *LogoutHandler) Register(r chi.Router) {
	r.Get("/logout", h.handle)
	r.Post("/logout", h.handle)
}

func (h *LogoutHandler) handle(w http.ResponseWriter, r *http.Request) {
	// el borrado no es condicional al resultado
	http.SetCookie(w, BuildDeletionCookie(h.CookieName, h.CookieDomain, h.SameSite, h.Secure))

	var value string
	present := false
	if ck, err := r.Cookie(h.CookieName); err == nil {
		value, present = ck.Value, true
	}

	res, err := h.GW.Logout(r.Context(), value, present)
	if err != nil {
		if errors.Is(err, gateway.ErrCookiePasswordMissing) {
			httpx.WriteError(w, http.StatusInternalServerError, "Logout failed", "WORKOS_COOKIE_PASSWORD not configured")
			return
		}
		httpx.WriteError(w, http.StatusInternalServerError, "Logout failed", err.Error())
		return
	}
	httpx.WriteJSON(w, http.StatusOK, res)
}
