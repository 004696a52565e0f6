// Package workos implementa el cliente server-side hacia el IdP externo
// (WorkOS AuthKit): intercambio de authorization code por claims de identidad.
package workos

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Identity son los claims extraídos de un intercambio exitoso.
// Transitorio: nunca se persiste directamente.
type Identity struct {
	Email      string
	FirstName  string
	LastName   string
	ExternalID string // WorkOS user id
}

// ExchangeError es el rechazo del IdP (status != 200) o un fallo de
// transporte (Status == 0). No se reintenta: los codes son single-use y un
// retry devolvería lo mismo o canjearía un code viejo.
type ExchangeError struct {
	Status int
	Body   string
}

func (e *ExchangeError) Error() string {
	if e.Status == 0 {
		return "workos: exchange transport error: " + e.Body
	}
	return fmt.Sprintf("workos: exchange rejected: http %d: %s", e.Status, e.Body)
}

// Client habla con el endpoint de autenticación de WorkOS.
// No conoce nada de sesiones locales.
type Client struct {
	APIBase      string
	ClientID     string
	ClientSecret string // el API key de WorkOS actúa de client_secret

	http *http.Client
}

// New crea un cliente con deadline explícito. El timeout acota un IdP
// colgado para que no bloquee el worker indefinidamente.
func New(apiBase, clientID, clientSecret string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		APIBase:      strings.TrimRight(apiBase, "/"),
		ClientID:     clientID,
		ClientSecret: clientSecret,
		http:         &http.Client{Timeout: timeout},
	}
}

type authenticateRequest struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	GrantType    string `json:"grant_type"`
	Code         string `json:"code"`
}

type authenticateResponse struct {
	User struct {
		ID        string `json:"id"`
		Email     string `json:"email"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	} `json:"user"`
}

// ExchangeCode canjea el authorization code por la identidad del usuario.
// Precondición: code no vacío (la valida el caller, no acá).
func (c *Client) ExchangeCode(ctx context.Context, code string) (*Identity, error) {
	payload, _ := json.Marshal(authenticateRequest{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		GrantType:    "authorization_code",
		Code:         code,
	})

	url := c.APIBase + "/user_management/authenticate"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, &ExchangeError{Status: 0, Body: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &ExchangeError{Status: 0, Body: err.Error()}
	}
	defer resp.Body.Close()

	// WorkOS devuelve cuerpos chicos; 64KB alcanza para el detalle de error.
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode != http.StatusOK {
		return nil, &ExchangeError{Status: resp.StatusCode, Body: string(body)}
	}

	var ar authenticateResponse
	if err := json.Unmarshal(body, &ar); err != nil {
		return nil, &ExchangeError{Status: 0, Body: "decode response: " + err.Error()}
	}

	// Nombres ausentes quedan en "", no en null.
	return &Identity{
		Email:      ar.User.Email,
		FirstName:  ar.User.FirstName,
		LastName:   ar.User.LastName,
		ExternalID: ar.User.ID,
	}, nil
}
