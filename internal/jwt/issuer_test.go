package jwt_test

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"testing"
	"time"

	jwtx "github.com/dropDatabas3/hellogate/internal/jwt"
	jwtv5 "github.com/golang-jwt/jwt/v5"
)

func newTestIssuer(t *testing.T) *jwtx.Issuer {
	t.Helper()
	i, err := jwtx.NewIssuer("hellogate-test", "frontend", "", time.Hour, 7*24*time.Hour)
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}
	return i
}

func TestMintPair_AccessVerifies(t *testing.T) {
	iss := newTestIssuer(t)
	pair, err := iss.MintPair(jwtx.Subject{Key: "a@b.com", Email: "a@b.com", FirstName: "A", LastName: "B"})
	if err != nil {
		t.Fatalf("MintPair: %v", err)
	}
	if pair.Access == "" || pair.Refresh == "" {
		t.Fatal("par incompleto")
	}

	got, err := iss.ParseAccess(pair.Access)
	if err != nil {
		t.Fatalf("ParseAccess: %v", err)
	}
	if got.Subject != "a@b.com" || got.Email != "a@b.com" {
		t.Fatalf("claims: %+v", got)
	}
}

func TestParseAccess_RejectsRefreshToken(t *testing.T) {
	iss := newTestIssuer(t)
	pair, err := iss.MintPair(jwtx.Subject{Key: "a@b.com"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := iss.ParseAccess(pair.Refresh); err == nil {
		t.Fatal("un refresh no debería pasar como access")
	}
}

func TestParseAccess_RejectsForeignKey(t *testing.T) {
	iss := newTestIssuer(t)

	// token firmado por otra clave pero con los mismos claims
	_, otherPriv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	now := time.Now().UTC()
	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodEdDSA, jwtv5.MapClaims{
		"iss": "hellogate-test",
		"sub": "a@b.com",
		"aud": "frontend",
		"iat": now.Unix(),
		"exp": now.Add(time.Hour).Unix(),
	})
	tk.Header["kid"] = iss.KID()
	forged, err := tk.SignedString(otherPriv)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := iss.ParseAccess(forged); err == nil {
		t.Fatal("firma ajena aceptada")
	}
}

func TestParseAccess_RejectsExpired(t *testing.T) {
	iss, err := jwtx.NewIssuer("hellogate-test", "frontend", "", -time.Minute, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	pair, err := iss.MintPair(jwtx.Subject{Key: "a@b.com"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := iss.ParseAccess(pair.Access); err == nil {
		t.Fatal("token vencido aceptado")
	}
}

func TestNewIssuer_SeedValidation(t *testing.T) {
	if _, err := jwtx.NewIssuer("i", "a", "no-es-base64!!", time.Hour, time.Hour); err == nil {
		t.Fatal("seed inválido aceptado")
	}
	short := base64.StdEncoding.EncodeToString([]byte("corto"))
	if _, err := jwtx.NewIssuer("i", "a", short, time.Hour, time.Hour); err == nil {
		t.Fatal("seed corto aceptado")
	}
	seed := make([]byte, ed25519.SeedSize)
	ok := base64.StdEncoding.EncodeToString(seed)
	if _, err := jwtx.NewIssuer("i", "a", ok, time.Hour, time.Hour); err != nil {
		t.Fatalf("seed válido rechazado: %v", err)
	}
}
