package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if c.Server.Addr != ":8080" {
		t.Fatalf("addr default: %q", c.Server.Addr)
	}
	if c.WorkOS.APIBase != "https://api.workos.com" {
		t.Fatalf("api_base default: %q", c.WorkOS.APIBase)
	}
	if c.Auth.CookieName != "wos_session" {
		t.Fatalf("cookie_name default: %q", c.Auth.CookieName)
	}
	if got := MustDuration(c.JWT.AccessTTL, 0); got != time.Hour {
		t.Fatalf("access_ttl default: %v", got)
	}
	if got := MustDuration(c.JWT.RefreshTTL, 0); got != 168*time.Hour {
		t.Fatalf("refresh_ttl default: %v", got)
	}
	if c.Storage.Driver != "memory" {
		t.Fatalf("driver default: %q", c.Storage.Driver)
	}
}

func TestLoadYAMLAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
server:
  addr: ":9090"
workos:
  client_id: "client_yaml"
  api_key: "key_yaml"
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	// ENV gana sobre YAML
	t.Setenv("WORKOS_CLIENT_ID", "client_env")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if c.Server.Addr != ":9090" {
		t.Fatalf("addr yaml: %q", c.Server.Addr)
	}
	if c.WorkOS.ClientID != "client_env" {
		t.Fatalf("env no pisó yaml: %q", c.WorkOS.ClientID)
	}
	if c.WorkOS.APIKey != "key_yaml" {
		t.Fatalf("api_key yaml: %q", c.WorkOS.APIKey)
	}
	if len(c.Server.CORSAllowedOrigins) != 2 || c.Server.CORSAllowedOrigins[1] != "https://b.example" {
		t.Fatalf("cors origins: %v", c.Server.CORSAllowedOrigins)
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateRequiresWorkOSCreds(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Validate(); err == nil {
		t.Fatal("esperaba error con workos sin configurar")
	}
}

func TestMustDuration(t *testing.T) {
	if got := MustDuration("90s", time.Minute); got != 90*time.Second {
		t.Fatalf("parse: %v", got)
	}
	if got := MustDuration("", time.Minute); got != time.Minute {
		t.Fatalf("empty: %v", got)
	}
	if got := MustDuration("-5s", time.Minute); got != time.Minute {
		t.Fatalf("negative: %v", got)
	}
}
