package gateway

import (
	"context"
	"testing"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/hellogate/internal/identity"
	"github.com/dropDatabas3/hellogate/internal/jwt"
	"github.com/dropDatabas3/hellogate/internal/security/sealedsession"
	"github.com/dropDatabas3/hellogate/internal/store"
	"github.com/dropDatabas3/hellogate/internal/workos"
)

type stubIdP struct {
	identity *workos.Identity
	err      error
	calls    int
}

func (s *stubIdP) ExchangeCode(ctx context.Context, code string) (*workos.Identity, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.identity, nil
}

func newTestGateway(t *testing.T, idp IdPClient) *Gateway {
	t.Helper()
	iss, err := jwt.NewIssuer("hellogate", "hellogate-frontend", "", time.Hour, 168*time.Hour)
	require.NoError(t, err)
	return &Gateway{
		IdP:            idp,
		Reconciler:     identity.NewReconciler(store.NewMemory()),
		Issuer:         iss,
		CookiePassword: "test-cookie-password",
		APIBase:        "https://api.workos.com",
		FallbackURL:    "/login",
	}
}

func TestCallbackHappyPath(t *testing.T) {
	idp := &stubIdP{identity: &workos.Identity{
		Email:      "ada@example.com",
		FirstName:  "Ada",
		LastName:   "Lovelace",
		ExternalID: "user_01H",
	}}
	g := newTestGateway(t, idp)

	res, err := g.Callback(context.Background(), "authcode123", "")
	require.NoError(t, err)
	require.Equal(t, 1, idp.calls)
	require.Equal(t, "ada@example.com", res.User.Email)
	require.Equal(t, "Ada", res.User.FirstName)
	require.Equal(t, "user_01H", res.User.WorkOSID)
	require.NotEmpty(t, res.Access)
	require.NotEmpty(t, res.Refresh)

	// el access emitido tiene que validar contra el propio issuer
	claims, err := g.Issuer.ParseAccess(res.Access)
	require.NoError(t, err)
	require.Equal(t, "ada@example.com", claims.Subject)
}

func TestCallbackMissingCredential(t *testing.T) {
	idp := &stubIdP{}
	g := newTestGateway(t, idp)

	_, err := g.Callback(context.Background(), "", "")
	require.ErrorIs(t, err, ErrMissingCredential)
	require.Zero(t, idp.calls, "no debería llegar al IdP sin credencial")
}

func TestCallbackIDTokenOnly(t *testing.T) {
	idp := &stubIdP{}
	g := newTestGateway(t, idp)

	_, err := g.Callback(context.Background(), "", "eyJhbGciOi...")
	require.ErrorIs(t, err, ErrIDTokenNotImplemented)
	require.Zero(t, idp.calls)
}

func TestCallbackExchangeErrorPropagates(t *testing.T) {
	upstream := &workos.ExchangeError{Status: 401, Body: `{"error":"invalid_grant"}`}
	g := newTestGateway(t, &stubIdP{err: upstream})

	_, err := g.Callback(context.Background(), "badcode", "")
	var exErr *workos.ExchangeError
	require.ErrorAs(t, err, &exErr)
	require.Equal(t, 401, exErr.Status)
}

func TestCallbackMissingEmail(t *testing.T) {
	g := newTestGateway(t, &stubIdP{identity: &workos.Identity{ExternalID: "user_01H"}})

	_, err := g.Callback(context.Background(), "authcode123", "")
	require.ErrorIs(t, err, identity.ErrMissingEmail)
}

func TestLogoutNoCookie(t *testing.T) {
	g := newTestGateway(t, &stubIdP{})

	res, err := g.Logout(context.Background(), "", false)
	require.NoError(t, err)
	require.Equal(t, "/login", res.LogoutURL)
	require.Equal(t, "No active session found", res.Message)
}

func TestLogoutCookiePasswordMissing(t *testing.T) {
	g := newTestGateway(t, &stubIdP{})
	g.CookiePassword = ""

	_, err := g.Logout(context.Background(), "whatever", true)
	require.ErrorIs(t, err, ErrCookiePasswordMissing)
}

func TestLogoutBadBlobFallsBack(t *testing.T) {
	g := newTestGateway(t, &stubIdP{})

	res, err := g.Logout(context.Background(), "not-a-sealed-session", true)
	require.NoError(t, err)
	require.Equal(t, "/login", res.LogoutURL)
	require.Equal(t, "Logout successful", res.Message)
}

func TestLogoutSealedSession(t *testing.T) {
	g := newTestGateway(t, &stubIdP{})

	// access token de WorkOS con claim sid, sellado con la password del test
	access := mintWithSID(t, "session_01ABC")
	blob, err := sealedsession.Seal(&sealedsession.Session{AccessToken: access}, g.CookiePassword)
	require.NoError(t, err)

	res, err := g.Logout(context.Background(), blob, true)
	require.NoError(t, err)
	require.Equal(t,
		"https://api.workos.com/user_management/sessions/logout?session_id=session_01ABC",
		res.LogoutURL)
	require.Equal(t, "Logout successful", res.Message)
}

func TestLogoutSealedWithoutSIDFallsBack(t *testing.T) {
	g := newTestGateway(t, &stubIdP{})

	blob, err := sealedsession.Seal(&sealedsession.Session{AccessToken: "garbage"}, g.CookiePassword)
	require.NoError(t, err)

	res, err := g.Logout(context.Background(), blob, true)
	require.NoError(t, err)
	require.Equal(t, "/login", res.LogoutURL)
}

// mintWithSID arma un JWT mínimo con claim sid, como los access de WorkOS.
func mintWithSID(t *testing.T, sid string) string {
	t.Helper()
	claims := jwtv5.MapClaims{"sub": "user_01H", "iss": "https://api.workos.com", "sid": sid}
	tok, err := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims).SignedString([]byte("idp-key"))
	require.NoError(t, err)
	return tok
}
