// Package sealedsession descifra (y para testing, cifra) el blob opaco que
// AuthKit guarda en la cookie de sesión.
//
// Formato del blob: base64(nonce) + "|" + base64(ciphertext), AES-256-GCM.
// La clave se deriva del cookie password con HKDF-SHA256; el password nunca
// se usa crudo como clave.
package sealedsession

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/url"
	"strings"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/hkdf"
)

const (
	nonceSizeGCM = 12  // AES-GCM nonce recomendado (96 bits)
	keyLength    = 32  // AES-256
	sep          = "|" // nonce|ciphertext (ambos en base64)

	hkdfSalt = "wos_session"
)

// ErrInvalidSession cubre cookie malformada, expirada, corrupta o password
// incorrecto. Los casos son indistinguibles para el caller a propósito.
var ErrInvalidSession = errors.New("sealedsession: invalid or unreadable session")

// Session es el contenido descifrado de la cookie. Vive solo durante el
// request de logout; nunca se persiste.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	User         struct {
		ID        string `json:"id"`
		Email     string `json:"email"`
		FirstName string `json:"first_name,omitempty"`
		LastName  string `json:"last_name,omitempty"`
	} `json:"user"`
}

// deriveKey estira el cookie password a 32 bytes con HKDF-SHA256.
func deriveKey(password string) ([]byte, error) {
	r := hkdf.New(sha256.New, []byte(password), []byte(hkdfSalt), nil)
	key := make([]byte, keyLength)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, err
	}
	return key, nil
}

// Seal cifra la sesión. El sellado en producción ocurre upstream (en el
// IdP); esto existe para tests y para el subcomando `hellogate seal`.
func Seal(s *Session, password string) (string, error) {
	if password == "" {
		return "", errors.New("sealedsession: empty cookie password")
	}
	key, err := deriveKey(password)
	if err != nil {
		return "", err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	plain, err := json.Marshal(s)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, nonceSizeGCM)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	ct := aesgcm.Seal(nil, nonce, plain, nil)

	return base64.StdEncoding.EncodeToString(nonce) + sep + base64.StdEncoding.EncodeToString(ct), nil
}

// Unseal descifra y valida el blob de la cookie. Cualquier fallo (formato,
// base64, autenticación GCM, JSON) colapsa en ErrInvalidSession.
func Unseal(value, password string) (*Session, error) {
	if strings.TrimSpace(value) == "" || password == "" {
		return nil, ErrInvalidSession
	}
	parts := strings.SplitN(value, sep, 2)
	if len(parts) != 2 {
		return nil, ErrInvalidSession
	}
	nonce, err := base64.StdEncoding.DecodeString(parts[0])
	if err != nil || len(nonce) != nonceSizeGCM {
		return nil, ErrInvalidSession
	}
	ct, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, ErrInvalidSession
	}

	key, err := deriveKey(password)
	if err != nil {
		return nil, ErrInvalidSession
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, ErrInvalidSession
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, ErrInvalidSession
	}

	plain, err := aesgcm.Open(nil, nonce, ct, nil)
	if err != nil {
		// password incorrecto o blob corrupto; mismo resultado.
		return nil, ErrInvalidSession
	}

	var s Session
	if err := json.Unmarshal(plain, &s); err != nil {
		return nil, ErrInvalidSession
	}
	return &s, nil
}

// LogoutURL deriva la URL de logout hosteada por el IdP, ligada a la sesión.
// El session id viaja como claim "sid" del access token de WorkOS; acá solo
// leemos claims (la firma pertenece al IdP, no la verificamos nosotros).
func (s *Session) LogoutURL(apiBase string) (string, error) {
	if s.AccessToken == "" {
		return "", ErrInvalidSession
	}
	claims := jwtv5.MapClaims{}
	parser := jwtv5.NewParser()
	if _, _, err := parser.ParseUnverified(s.AccessToken, claims); err != nil {
		return "", ErrInvalidSession
	}
	sid, _ := claims["sid"].(string)
	if sid == "" {
		return "", ErrInvalidSession
	}

	u, err := url.Parse(strings.TrimRight(apiBase, "/") + "/user_management/sessions/logout")
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("session_id", sid)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
