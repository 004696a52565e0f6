package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/hellogate/internal/gateway"
	"github.com/dropDatabas3/hellogate/internal/httpx"
	"github.com/dropDatabas3/hellogate/internal/identity"
	"github.com/dropDatabas3/hellogate/internal/observability/logger"
	"github.com/dropDatabas3/hellogate/internal/workos"
)

/*
CallbackHandler atiende el retorno del Hosted AuthKit:

	GET  /auth/workos/callback?code=...        (redirect del IdP)
	POST /auth/workos/callback {"code": "..."} (SPA que recibió el code)

Respuesta 200: {user:{email,first_name,last_name,workos_id}, access, refresh}.
Todo error de flujo es 400 con {error, detail?}; los strings son contrato
con el frontend, no los cambies sin versionar.
*/
type CallbackHandler struct {
	GW *gateway.Gateway
}

func (h *CallbackHandler) Register(r chi.Router) {
	r.Get("/auth/workos/callback", h.handle)
	r.Post("/auth/workos/callback", h.handle)
}

type callbackBody struct {
	Code    string `json:"code"`
	IDToken string `json:"id_token"`
}

func (h *CallbackHandler) handle(w http.ResponseWriter, r *http.Request) {
	var code, idToken string
	if r.Method == http.MethodPost {
		var body callbackBody
		if !httpx.ReadJSON(w, r, &body) {
			return
		}
		code, idToken = body.Code, body.IDToken
	} else {
		q := r.URL.Query()
		code, idToken = q.Get("code"), q.Get("id_token")
	}

	res, err := h.GW.Callback(r.Context(), code, idToken)
	if err != nil {
		h.writeCallbackError(w, err)
		return
	}
	httpx.RecordIdPExchange("ok")
	httpx.WriteJSON(w, http.StatusOK, res)
}

func (h *CallbackHandler) writeCallbackError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, gateway.ErrMissingCredential):
		httpx.WriteError(w, http.StatusBadRequest, "Missing code or id_token", "")
	case errors.Is(err, gateway.ErrIDTokenNotImplemented):
		httpx.WriteError(w, http.StatusBadRequest, "ID token authentication not implemented", "")
	case errors.Is(err, identity.ErrMissingEmail):
		httpx.WriteError(w, http.StatusBadRequest, "No email returned from AuthKit", "")
	default:
		var exErr *workos.ExchangeError
		if errors.As(err, &exErr) && exErr.Status > 0 {
			httpx.RecordIdPExchange("denied")
			httpx.WriteError(w, http.StatusBadRequest, "WorkOS authentication failed", exErr.Body)
			return
		}
		// frontera: cualquier falla no anticipada sale mapeada, nunca como 500
		httpx.RecordIdPExchange("error")
		logger.Named("http.callback").Error("exchange_failed", logger.Err(err))
		httpx.WriteError(w, http.StatusBadRequest, "AuthKit exchange failed", err.Error())
	}
}
