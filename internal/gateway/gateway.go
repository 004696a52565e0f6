// Package gateway orquesta el intercambio AuthKit → identidad local →
// tokens propios. No guarda estado de sesión: los tokens emitidos son
// bearer puros y la cookie sellada de WorkOS solo se lee en logout.
package gateway

import (
	"context"

	"github.com/dropDatabas3/hellogate/internal/email"
	"github.com/dropDatabas3/hellogate/internal/identity"
	"github.com/dropDatabas3/hellogate/internal/jwt"
	"github.com/dropDatabas3/hellogate/internal/observability/logger"
	"github.com/dropDatabas3/hellogate/internal/security/sealedsession"
	"github.com/dropDatabas3/hellogate/internal/workos"
)

// IdPClient es lo que el gateway necesita del proveedor upstream.
// *workos.Client lo implementa; los tests usan un stub.
type IdPClient interface {
	ExchangeCode(ctx context.Context, code string) (*workos.Identity, error)
}

type Gateway struct {
	IdP        IdPClient
	Reconciler *identity.Reconciler
	Issuer     *jwt.Issuer

	// Logout
	CookiePassword string
	APIBase        string
	FallbackURL    string // a dónde mandar al usuario sin sesión upstream

	// Welcome mail (best effort, opcional)
	Mailer  email.Sender
	AppName string
}

// CallbackResult es la respuesta de un login exitoso.
type CallbackResult struct {
	User    CallbackUser `json:"user"`
	Access  string       `json:"access"`
	Refresh string       `json:"refresh"`
}

type CallbackUser struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	WorkOSID  string `json:"workos_id"`
}

// Callback ejecuta el flujo completo de login: valida credencial,
// intercambia el code contra WorkOS, reconcilia la identidad local y
// acuña el par de tokens. Los errores upstream se propagan sin envolver
// para que el handler distinga el taxon exacto.
func (g *Gateway) Callback(ctx context.Context, code, idToken string) (*CallbackResult, error) {
	if code == "" && idToken == "" {
		return nil, ErrMissingCredential
	}
	if code == "" {
		// id_token solo: no hay con qué hacer el exchange
		return nil, ErrIDTokenNotImplemented
	}

	id, err := g.IdP.ExchangeCode(ctx, code)
	if err != nil {
		return nil, err
	}

	user, created, err := g.Reconciler.Reconcile(ctx, id)
	if err != nil {
		return nil, err
	}

	pair, err := g.Issuer.MintPair(jwt.Subject{
		Key:       user.Key,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	})
	if err != nil {
		return nil, err
	}

	if created {
		g.sendWelcome(user.Email, user.FirstName)
	}

	return &CallbackResult{
		User: CallbackUser{
			Email:     user.Email,
			FirstName: user.FirstName,
			LastName:  user.LastName,
			WorkOSID:  id.ExternalID,
		},
		Access:  pair.Access,
		Refresh: pair.Refresh,
	}, nil
}

// LogoutResult siempre trae una URL navegable: la de WorkOS si pudimos
// abrir la sesión, la de login local si no.
type LogoutResult struct {
	LogoutURL string `json:"logout_url"`
	Message   string `json:"message"`
}

// Logout resuelve a dónde mandar al usuario. La única falla dura es la
// password de cookie ausente con cookie presente; cualquier problema con
// el blob en sí degrada a la URL de fallback (el logout local nunca se
// bloquea por un blob podrido).
func (g *Gateway) Logout(ctx context.Context, cookieValue string, present bool) (*LogoutResult, error) {
	if !present {
		return &LogoutResult{
			LogoutURL: g.FallbackURL,
			Message:   "No active session found",
		}, nil
	}
	if g.CookiePassword == "" {
		return nil, ErrCookiePasswordMissing
	}

	log := logger.Named("gateway")
	sess, err := sealedsession.Unseal(cookieValue, g.CookiePassword)
	if err != nil {
		log.Warn("logout_unseal_failed", logger.Err(err))
		return &LogoutResult{LogoutURL: g.FallbackURL, Message: "Logout successful"}, nil
	}

	url, err := sess.LogoutURL(g.APIBase)
	if err != nil {
		log.Warn("logout_sid_missing", logger.Err(err))
		return &LogoutResult{LogoutURL: g.FallbackURL, Message: "Logout successful"}, nil
	}
	return &LogoutResult{LogoutURL: url, Message: "Logout successful"}, nil
}

// sendWelcome despacha el mail de bienvenida en background. Nunca
// afecta la respuesta del callback.
func (g *Gateway) sendWelcome(to, firstName string) {
	if g.Mailer == nil || to == "" {
		return
	}
	go func() {
		htmlBody, textBody, err := email.RenderWelcome(email.WelcomeVars{
			FirstName: firstName,
			Email:     to,
			AppName:   g.AppName,
		})
		if err != nil {
			logger.Named("gateway").Error("welcome_render_err", logger.Err(err))
			return
		}
		if err := g.Mailer.Send(to, "Bienvenido a "+g.AppName, htmlBody, textBody); err != nil {
			logger.Named("gateway").Error("welcome_send_err", logger.Email(to), logger.Err(err))
		}
	}()
}
