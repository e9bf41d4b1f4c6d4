package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, k := range []string{
		"MSGDESK_AUTH_URL", "AUTH_BASE_URL",
		"MSGDESK_MESSAGE_URL", "MESSAGE_BASE_URL",
		"MSGDESK_DASHBOARD_URL", "DASHBOARD_BASE_URL",
		"MSGDESK_PHONEBOOK_URL", "PHONEBOOK_BASE_URL",
		"MSGDESK_AGENT_URL", "AGENT_BASE_URL",
		"MSGDESK_USER", "MSGDESK_MODEL", "MSGDESK_LOG",
		"MSGDESK_TIMEOUT", "MSGDESK_COST_PER_MESSAGE", "MSGDESK_DEBUG",
	} {
		t.Setenv(k, "")
	}
	return home
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load(Overrides{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.MessageURL != DefaultMessageURL {
		t.Errorf("MessageURL = %q, want %q", cfg.MessageURL, DefaultMessageURL)
	}
	if cfg.ChatModel != DefaultChatModel {
		t.Errorf("ChatModel = %q, want %q", cfg.ChatModel, DefaultChatModel)
	}
	if cfg.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", cfg.Timeout, DefaultTimeout)
	}
}

func TestLoad_Precedence(t *testing.T) {
	home := isolate(t)

	dir := filepath.Join(home, ".msgdesk")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	yaml := `services:
  messaging: http://file-msg:9000/
  dashboard: http://file-dash:9000
user: file@example.com
timeout: 3s
cost_per_message: 12.5
`
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("MSGDESK_DASHBOARD_URL", "http://env-dash:9000")
	t.Setenv("PHONEBOOK_BASE_URL", "http://legacy-phonebook:9000")

	cfg, err := Load(Overrides{UserEmail: "flag@example.com"})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	tests := []struct {
		name, got, want string
	}{
		{"file url trims slash", cfg.MessageURL, "http://file-msg:9000"},
		{"env beats file", cfg.DashboardURL, "http://env-dash:9000"},
		{"legacy env name", cfg.PhonebookURL, "http://legacy-phonebook:9000"},
		{"flag beats file", cfg.UserEmail, "flag@example.com"},
		{"default kept", cfg.AgentURL, DefaultAgentURL},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
	if cfg.Timeout != 3*time.Second {
		t.Errorf("Timeout = %v, want 3s", cfg.Timeout)
	}
	if cfg.CostPerMessage != 12.5 {
		t.Errorf("CostPerMessage = %v, want 12.5", cfg.CostPerMessage)
	}
}

func TestLoad_EnvFile(t *testing.T) {
	home := isolate(t)
	envPath := filepath.Join(home, "test.env")
	if err := os.WriteFile(envPath, []byte("MSGDESK_AGENT_URL=http://dotenv-agent:7000\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	// godotenv sets process env; make sure it is cleaned up afterwards.
	t.Cleanup(func() { os.Unsetenv("MSGDESK_AGENT_URL") })
	os.Unsetenv("MSGDESK_AGENT_URL")

	cfg, err := Load(Overrides{EnvFile: envPath})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.AgentURL != "http://dotenv-agent:7000" {
		t.Errorf("AgentURL = %q, want dotenv value", cfg.AgentURL)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	home := isolate(t)

	_, err := Load(Overrides{ConfigPath: filepath.Join(home, "nope.yaml")})
	if err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"relative url", func(c *Config) { c.MessageURL = "/api" }, "messaging url"},
		{"bad scheme", func(c *Config) { c.AgentURL = "ftp://host" }, "agent url"},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }, "timeout"},
		{"empty model", func(c *Config) { c.ChatModel = "" }, "chat model"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}
