// Package jwt emite y verifica los tokens locales del gateway (EdDSA).
// Los tokens son bearer puros: nada se persiste ni se trackea por sesión.
package jwt

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenPair es el resultado de acuñar tokens para una identidad local.
type TokenPair struct {
	Access  string
	Refresh string
}

// Subject es lo mínimo que el Issuer necesita saber del usuario local.
type Subject struct {
	Key       string // sub
	Email     string
	FirstName string
	LastName  string
}

// Issuer firma tokens con una clave ed25519 fija del proceso.
// Un fallo de clave es un error fatal de configuración, no una condición
// recuperable por request: NewIssuer lo reporta en el arranque.
type Issuer struct {
	Iss        string
	Aud        string
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	kid  string
	priv ed25519.PrivateKey
	pub  ed25519.PublicKey
}

// NewIssuer construye el emisor desde un seed base64 de 32 bytes.
// Con seed vacío genera una clave efímera (solo dev: los tokens mueren con
// el proceso).
func NewIssuer(iss, aud, seedB64 string, accessTTL, refreshTTL time.Duration) (*Issuer, error) {
	var priv ed25519.PrivateKey
	if seedB64 == "" {
		_, p, err := ed25519.GenerateKey(rand.Reader)
		if err != nil {
			return nil, fmt.Errorf("jwt: generate ephemeral key: %w", err)
		}
		priv = p
	} else {
		seed, err := base64.StdEncoding.DecodeString(seedB64)
		if err != nil {
			return nil, fmt.Errorf("jwt: decode signing seed: %w", err)
		}
		if len(seed) != ed25519.SeedSize {
			return nil, fmt.Errorf("jwt: signing seed debe ser %d bytes, llegaron %d", ed25519.SeedSize, len(seed))
		}
		priv = ed25519.NewKeyFromSeed(seed)
	}

	pub := priv.Public().(ed25519.PublicKey)
	// kid determinístico desde la pubkey
	sum := sha256.Sum256(pub)
	kid := base64.RawURLEncoding.EncodeToString(sum[:8])

	return &Issuer{
		Iss:        iss,
		Aud:        aud,
		AccessTTL:  accessTTL,
		RefreshTTL: refreshTTL,
		kid:        kid,
		priv:       priv,
		pub:        pub,
	}, nil
}

// KID devuelve el key id activo.
func (i *Issuer) KID() string { return i.kid }

func (i *Issuer) sign(claims jwtv5.MapClaims) (string, error) {
	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodEdDSA, claims)
	tk.Header["kid"] = i.kid
	tk.Header["typ"] = "JWT"
	return tk.SignedString(i.priv)
}

// MintPair emite access + refresh para la identidad reconciliada.
func (i *Issuer) MintPair(s Subject) (TokenPair, error) {
	now := time.Now().UTC()

	access, err := i.sign(jwtv5.MapClaims{
		"iss":         i.Iss,
		"sub":         s.Key,
		"aud":         i.Aud,
		"iat":         now.Unix(),
		"nbf":         now.Unix(),
		"exp":         now.Add(i.AccessTTL).Unix(),
		"email":       s.Email,
		"given_name":  s.FirstName,
		"family_name": s.LastName,
	})
	if err != nil {
		return TokenPair{}, fmt.Errorf("jwt: sign access: %w", err)
	}

	refresh, err := i.sign(jwtv5.MapClaims{
		"iss": i.Iss,
		"sub": s.Key,
		"aud": i.Aud,
		"iat": now.Unix(),
		"nbf": now.Unix(),
		"exp": now.Add(i.RefreshTTL).Unix(),
		"typ": "refresh",
		"jti": uuid.NewString(),
	})
	if err != nil {
		return TokenPair{}, fmt.Errorf("jwt: sign refresh: %w", err)
	}

	return TokenPair{Access: access, Refresh: refresh}, nil
}

// Keyfunc para validar tokens emitidos por este proceso.
func (i *Issuer) Keyfunc() jwtv5.Keyfunc {
	return func(t *jwtv5.Token) (any, error) {
		if kid, _ := t.Header["kid"].(string); kid != "" && kid != i.kid {
			return nil, errors.New("kid desconocido")
		}
		return i.pub, nil
	}
}

// AccessClaims es el resultado de verificar un access token.
type AccessClaims struct {
	Subject string
	Email   string
}

// ParseAccess valida firma, iss, aud y exp de un access token local.
// Rechaza refresh tokens presentados como access ("typ" == "refresh").
func (i *Issuer) ParseAccess(raw string) (*AccessClaims, error) {
	tok, err := jwtv5.Parse(raw, i.Keyfunc(),
		jwtv5.WithValidMethods([]string{"EdDSA"}),
		jwtv5.WithIssuer(i.Iss),
		jwtv5.WithAudience(i.Aud),
	)
	if err != nil || !tok.Valid {
		return nil, errors.New("jwt: invalid access token")
	}
	claims, ok := tok.Claims.(jwtv5.MapClaims)
	if !ok {
		return nil, errors.New("jwt: bad claims type")
	}
	if typ, _ := claims["typ"].(string); typ == "refresh" {
		return nil, errors.New("jwt: refresh token usado como access")
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, errors.New("jwt: sub ausente")
	}
	email, _ := claims["email"].(string)
	return &AccessClaims{Subject: sub, Email: email}, nil
}
