package sealedsession

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

const password = "test-cookie-password-please-rotate"

func idpAccessToken(t *testing.T, sid string) string {
	t.Helper()
	claims := jwtv5.MapClaims{"sub": "user_01ABC", "iss": "https://api.workos.com"}
	if sid != "" {
		claims["sid"] = sid
	}
	// La firma es del IdP; para el test alcanza cualquier clave.
	tok, err := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims).SignedString([]byte("idp-key"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return tok
}

func TestSealUnseal_RoundTrip(t *testing.T) {
	s := &Session{AccessToken: idpAccessToken(t, "session_abc")}
	s.User.Email = "a@b.com"

	blob, err := Seal(s, password)
	if err != nil {
		t.Fatalf("Seal err: %v", err)
	}
	got, err := Unseal(blob, password)
	if err != nil {
		t.Fatalf("Unseal err: %v", err)
	}
	if got.User.Email != "a@b.com" {
		t.Fatalf("email mismatch: %q", got.User.Email)
	}
	if got.AccessToken != s.AccessToken {
		t.Fatal("access token mismatch")
	}
}

func TestUnseal_DetectsTamper(t *testing.T) {
	blob, err := Seal(&Session{AccessToken: idpAccessToken(t, "sid1")}, password)
	if err != nil {
		t.Fatalf("Seal err: %v", err)
	}
	parts := strings.Split(blob, "|")
	if len(parts) != 2 {
		t.Fatalf("unexpected blob format")
	}
	// corromper un byte del ciphertext (base64 -> bytes -> flip -> base64)
	bs, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		t.Fatal(err)
	}
	bs[0] ^= 0x01 // flip
	corrupted := parts[0] + "|" + base64.StdEncoding.EncodeToString(bs)

	if _, err := Unseal(corrupted, password); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("esperaba ErrInvalidSession, got %v", err)
	}
}

func TestUnseal_WrongPassword(t *testing.T) {
	blob, err := Seal(&Session{AccessToken: idpAccessToken(t, "sid1")}, password)
	if err != nil {
		t.Fatalf("Seal err: %v", err)
	}
	if _, err := Unseal(blob, "otra-password"); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("esperaba ErrInvalidSession, got %v", err)
	}
}

func TestUnseal_GarbageValues(t *testing.T) {
	for _, v := range []string{"", "   ", "no-separator", "a|b", "!!!|???"} {
		if _, err := Unseal(v, password); !errors.Is(err, ErrInvalidSession) {
			t.Errorf("Unseal(%q): esperaba ErrInvalidSession, got %v", v, err)
		}
	}
}

func TestLogoutURL_FromSIDClaim(t *testing.T) {
	s := &Session{AccessToken: idpAccessToken(t, "session_01XYZ")}
	u, err := s.LogoutURL("https://api.workos.com")
	if err != nil {
		t.Fatalf("LogoutURL err: %v", err)
	}
	want := "https://api.workos.com/user_management/sessions/logout?session_id=session_01XYZ"
	if u != want {
		t.Fatalf("url = %q, want %q", u, want)
	}
}

func TestLogoutURL_MissingSID(t *testing.T) {
	s := &Session{AccessToken: idpAccessToken(t, "")}
	if _, err := s.LogoutURL("https://api.workos.com"); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("esperaba ErrInvalidSession, got %v", err)
	}
}
