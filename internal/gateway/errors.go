package gateway

import "errors"

// Errores de flujo del callback/logout. El handler HTTP los mapea a
// strings de respuesta estables; acá solo se clasifican.
var (
	// ErrMissingCredential: el callback llegó sin code ni id_token.
	ErrMissingCredential = errors.New("gateway: missing code or id_token")

	// ErrIDTokenNotImplemented: solo soportamos authorization code flow.
	ErrIDTokenNotImplemented = errors.New("gateway: id_token flow not implemented")

	// ErrCookiePasswordMissing: hay cookie de sesión pero el proceso no
	// tiene configurada la password para abrirla. Error de despliegue.
	ErrCookiePasswordMissing = errors.New("gateway: cookie password not configured")
)
