package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// Bloque app (opcional en YAML). Si no está, queda vacío.
	App struct {
		// dev | staging | prod
		Env string `yaml:"app_env"`
		// debug | info | warn | error
		LogLevel string `yaml:"log_level"`
	} `yaml:"app"`

	Server struct {
		Addr               string   `yaml:"addr"`
		CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
	} `yaml:"server"`

	// WorkOS AuthKit (el IdP externo).
	WorkOS struct {
		APIBase        string `yaml:"api_base"`
		APIKey         string `yaml:"api_key"`
		ClientID       string `yaml:"client_id"`
		RedirectURI    string `yaml:"redirect_uri"`
		CookiePassword string `yaml:"cookie_password"`
		// Timeout del HTTP client hacia WorkOS. El deadline acota un IdP
		// colgado; es parte del contrato del cliente, no un detalle interno.
		Timeout string `yaml:"timeout"`
	} `yaml:"workos"`

	Auth struct {
		CookieName       string `yaml:"cookie_name"`
		CookieDomain     string `yaml:"cookie_domain"`
		SameSite         string `yaml:"samesite"`
		Secure           bool   `yaml:"secure"`
		FallbackLoginURL string `yaml:"fallback_login_url"`
	} `yaml:"auth"`

	JWT struct {
		Issuer      string `yaml:"issuer"`
		Audience    string `yaml:"audience"`
		SigningSeed string `yaml:"signing_seed"` // base64(seed ed25519 de 32 bytes); vacío => efímera (solo dev)
		AccessTTL   string `yaml:"access_ttl"`
		RefreshTTL  string `yaml:"refresh_ttl"`
	} `yaml:"jwt"`

	Storage struct {
		Driver string `yaml:"driver"` // pg | memory
		DSN    string `yaml:"dsn"`
		Postgres struct {
			MaxOpenConns    int    `yaml:"max_open_conns"`
			ConnMaxLifetime string `yaml:"conn_max_lifetime"`
		} `yaml:"postgres"`
	} `yaml:"storage"`

	Rate struct {
		Enabled     bool   `yaml:"enabled"`
		Window      string `yaml:"window"`
		MaxRequests int    `yaml:"max_requests"`
		Redis       struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix"`
		} `yaml:"redis"`
	} `yaml:"rate"`

	SMTP struct {
		Host               string `yaml:"host"`
		Port               int    `yaml:"port"`
		Username           string `yaml:"username"`
		Password           string `yaml:"password"`
		From               string `yaml:"from"`
		TLS                string `yaml:"tls"`                  // auto | starttls | ssl | none
		InsecureSkipVerify bool   `yaml:"insecure_skip_verify"` // sólo dev
	} `yaml:"smtp"`

	Email struct {
		WelcomeEnabled bool `yaml:"welcome_enabled"`
	} `yaml:"email"`

	Flags struct {
		Migrate bool `yaml:"migrate"`
	} `yaml:"flags"`
}

// Load lee el YAML (si path no está vacío), aplica overrides de entorno y
// defaults. El resultado es un struct explícito: el código de request nunca
// vuelve a leer el environment.
func Load(path string) (*Config, error) {
	var c Config
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, err
		}
	}

	c.applyEnv()
	c.applyDefaults()
	return &c, nil
}

// applyEnv superpone las variables de entorno del contrato operativo.
// ENV gana sobre YAML (deploys con secretos fuera del archivo).
func (c *Config) applyEnv() {
	setenv := func(dst *string, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	setenv(&c.App.Env, "APP_ENV")
	setenv(&c.Server.Addr, "SERVER_ADDR")
	setenv(&c.WorkOS.APIKey, "WORKOS_API_KEY")
	setenv(&c.WorkOS.ClientID, "WORKOS_CLIENT_ID")
	setenv(&c.WorkOS.RedirectURI, "WORKOS_REDIRECT_URI")
	setenv(&c.WorkOS.CookiePassword, "WORKOS_COOKIE_PASSWORD")
	setenv(&c.WorkOS.APIBase, "WORKOS_API_BASE")
	setenv(&c.JWT.SigningSeed, "JWT_SIGNING_SEED")
	setenv(&c.Storage.DSN, "STORAGE_DSN")
	setenv(&c.Rate.Redis.Addr, "REDIS_ADDR")
	setenv(&c.Rate.Redis.Password, "REDIS_PASSWORD")

	if v := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS")); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		c.Server.CORSAllowedOrigins = origins
	}
	if v := strings.TrimSpace(os.Getenv("STORAGE_DRIVER")); v != "" {
		c.Storage.Driver = v
	}
	if v := strings.TrimSpace(os.Getenv("MIGRATE")); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Flags.Migrate = b
		}
	}
}

func (c *Config) applyDefaults() {
	// sane defaults
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.WorkOS.APIBase == "" {
		c.WorkOS.APIBase = "https://api.workos.com"
	}
	if c.WorkOS.Timeout == "" {
		c.WorkOS.Timeout = "10s"
	}
	if c.Auth.CookieName == "" {
		c.Auth.CookieName = "wos_session"
	}
	if c.Auth.SameSite == "" {
		c.Auth.SameSite = "lax"
	}
	if c.Auth.FallbackLoginURL == "" {
		c.Auth.FallbackLoginURL = "/login"
	}
	if c.JWT.Issuer == "" {
		c.JWT.Issuer = "hellogate"
	}
	if c.JWT.Audience == "" {
		c.JWT.Audience = "hellogate-frontend"
	}
	if c.JWT.AccessTTL == "" {
		c.JWT.AccessTTL = "60m"
	}
	if c.JWT.RefreshTTL == "" {
		c.JWT.RefreshTTL = "168h" // 7d
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "memory"
	}
	if c.Rate.Window == "" {
		c.Rate.Window = "1m"
	}
	if c.Rate.MaxRequests == 0 {
		c.Rate.MaxRequests = 30
	}
	if c.Rate.Redis.Prefix == "" {
		c.Rate.Redis.Prefix = "hg:rl:"
	}
	if c.SMTP.TLS == "" {
		c.SMTP.TLS = "auto"
	}
}

// MustDuration parsea una duración tipo "60m"; def si está vacía o inválida.
func MustDuration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

// Validate verifica lo mínimo para poder servir el callback.
func (c *Config) Validate() error {
	if c.WorkOS.APIKey == "" {
		return fmt.Errorf("config: workos.api_key (WORKOS_API_KEY) requerido")
	}
	if c.WorkOS.ClientID == "" {
		return fmt.Errorf("config: workos.client_id (WORKOS_CLIENT_ID) requerido")
	}
	return nil
}
