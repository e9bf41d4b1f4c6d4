// Package config loads the collaborator endpoints and console settings.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultAuthURL      = "http://127.0.0.1:8081"
	DefaultMessageURL   = "http://127.0.0.1:8082"
	DefaultDashboardURL = "http://127.0.0.1:8083"
	DefaultPhonebookURL = "http://127.0.0.1:8084"
	DefaultAgentURL     = "http://127.0.0.1:8085"

	DefaultChatModel      = "gpt-4o-mini"
	DefaultTimeout        = 10 * time.Second
	DefaultCostPerMessage = 20.0
	DefaultLogPath        = "/tmp/msgdesk.log"
)

// Config holds the collaborator base URLs and console settings.
type Config struct {
	AuthURL      string
	MessageURL   string
	DashboardURL string
	PhonebookURL string
	AgentURL     string

	// UserEmail pre-fills the login form and is the identity used by CLI commands.
	UserEmail string
	ChatModel string
	Timeout   time.Duration
	// CostPerMessage is the multiplier applied to monthly totals on the dashboard.
	CostPerMessage float64

	LogPath string
	Debug   bool
}

// Overrides carries command-line values; empty fields leave the merged value alone.
type Overrides struct {
	ConfigPath   string
	EnvFile      string
	AuthURL      string
	MessageURL   string
	DashboardURL string
	PhonebookURL string
	AgentURL     string
	UserEmail    string
	ChatModel    string
	Timeout      time.Duration
	LogPath      string
	Debug        bool
}

// fileConfig mirrors ~/.msgdesk/config.yaml.
type fileConfig struct {
	Services struct {
		Auth      string `yaml:"auth"`
		Messaging string `yaml:"messaging"`
		Dashboard string `yaml:"dashboard"`
		Phonebook string `yaml:"phonebook"`
		Agent     string `yaml:"agent"`
	} `yaml:"services"`
	User           string  `yaml:"user"`
	Model          string  `yaml:"model"`
	Timeout        string  `yaml:"timeout"`
	CostPerMessage float64 `yaml:"cost_per_message"`
	LogPath        string  `yaml:"log_path"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		AuthURL:        DefaultAuthURL,
		MessageURL:     DefaultMessageURL,
		DashboardURL:   DefaultDashboardURL,
		PhonebookURL:   DefaultPhonebookURL,
		AgentURL:       DefaultAgentURL,
		ChatModel:      DefaultChatModel,
		Timeout:        DefaultTimeout,
		CostPerMessage: DefaultCostPerMessage,
		LogPath:        DefaultLogPath,
	}
}

// DefaultPath returns ~/.msgdesk/config.yaml, or "" when there is no home directory.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".msgdesk", "config.yaml")
}

// Load builds a Config by merging sources (lowest to highest priority):
//  1. built-in defaults
//  2. the YAML config file (~/.msgdesk/config.yaml unless overridden)
//  3. a .env file, which never replaces variables already set
//  4. MSGDESK_* environment variables, then the legacy *_BASE_URL names
//  5. explicit flag values
func Load(o Overrides) (Config, error) {
	cfg := Default()

	path := o.ConfigPath
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			if explicit || !errors.Is(err, os.ErrNotExist) {
				return Config{}, err
			}
		}
	}

	envFile := o.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && o.EnvFile != "" {
		return Config{}, fmt.Errorf("load env file %s: %w", envFile, err)
	}

	cfg.mergeEnv()
	cfg.mergeOverrides(o)

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	var f fileConfig
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	setURL(&c.AuthURL, f.Services.Auth)
	setURL(&c.MessageURL, f.Services.Messaging)
	setURL(&c.DashboardURL, f.Services.Dashboard)
	setURL(&c.PhonebookURL, f.Services.Phonebook)
	setURL(&c.AgentURL, f.Services.Agent)
	setString(&c.UserEmail, f.User)
	setString(&c.ChatModel, f.Model)
	setString(&c.LogPath, f.LogPath)
	if f.Timeout != "" {
		d, err := time.ParseDuration(f.Timeout)
		if err != nil {
			return fmt.Errorf("parse config %s: timeout: %w", path, err)
		}
		c.Timeout = d
	}
	if f.CostPerMessage > 0 {
		c.CostPerMessage = f.CostPerMessage
	}
	return nil
}

func (c *Config) mergeEnv() {
	setURL(&c.AuthURL, getEnv("MSGDESK_AUTH_URL", "AUTH_BASE_URL"))
	setURL(&c.MessageURL, getEnv("MSGDESK_MESSAGE_URL", "MESSAGE_BASE_URL"))
	setURL(&c.DashboardURL, getEnv("MSGDESK_DASHBOARD_URL", "DASHBOARD_BASE_URL"))
	setURL(&c.PhonebookURL, getEnv("MSGDESK_PHONEBOOK_URL", "PHONEBOOK_BASE_URL"))
	setURL(&c.AgentURL, getEnv("MSGDESK_AGENT_URL", "AGENT_BASE_URL"))
	setString(&c.UserEmail, getEnv("MSGDESK_USER"))
	setString(&c.ChatModel, getEnv("MSGDESK_MODEL"))
	setString(&c.LogPath, getEnv("MSGDESK_LOG"))
	if v := getEnv("MSGDESK_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Timeout = d
		}
	}
	if v := getEnv("MSGDESK_COST_PER_MESSAGE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			c.CostPerMessage = f
		}
	}
	if v := getEnv("MSGDESK_DEBUG"); v != "" {
		switch strings.ToLower(v) {
		case "1", "true", "yes", "on":
			c.Debug = true
		}
	}
}

func (c *Config) mergeOverrides(o Overrides) {
	setURL(&c.AuthURL, o.AuthURL)
	setURL(&c.MessageURL, o.MessageURL)
	setURL(&c.DashboardURL, o.DashboardURL)
	setURL(&c.PhonebookURL, o.PhonebookURL)
	setURL(&c.AgentURL, o.AgentURL)
	setString(&c.UserEmail, o.UserEmail)
	setString(&c.ChatModel, o.ChatModel)
	setString(&c.LogPath, o.LogPath)
	if o.Timeout > 0 {
		c.Timeout = o.Timeout
	}
	if o.Debug {
		c.Debug = true
	}
}

// Validate checks that every service URL is an absolute http(s) URL.
func (c *Config) Validate() error {
	urls := []struct{ name, value string }{
		{"auth", c.AuthURL},
		{"messaging", c.MessageURL},
		{"dashboard", c.DashboardURL},
		{"phonebook", c.PhonebookURL},
		{"agent", c.AgentURL},
	}
	for _, u := range urls {
		parsed, err := url.Parse(u.value)
		if err != nil {
			return fmt.Errorf("%s url: %w", u.name, err)
		}
		if parsed.Scheme != "http" && parsed.Scheme != "https" || parsed.Host == "" {
			return fmt.Errorf("%s url %q must be an absolute http(s) URL", u.name, u.value)
		}
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be > 0")
	}
	if c.ChatModel == "" {
		return fmt.Errorf("chat model cannot be empty")
	}
	return nil
}

// getEnv returns the first non-empty value among the given variables.
func getEnv(keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v
		}
	}
	return ""
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setURL(dst *string, v string) {
	if v != "" {
		*dst = strings.TrimRight(v, "/")
	}
}
