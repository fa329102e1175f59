package config

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/fleamarket/internal/client/credential"
	"github.com/dmitrijs2005/fleamarket/internal/flagx"
)

// Config holds runtime settings for the fleamarket CLI.
//
// Units: RequestTimeout, CredentialTTL and LogoutDelay are time.Duration.
// An empty MetricsAddr disables the metrics endpoint.
type Config struct {
	BaseURL        string
	RequestTimeout time.Duration
	DatabaseDSN    string
	CredentialTTL  time.Duration
	LogoutDelay    time.Duration
	LogLevel       string
	MetricsAddr    string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.BaseURL = "http://localhost:8080/api"
	c.RequestTimeout = 10 * time.Second
	c.DatabaseDSN = "fleamarket.db"
	c.CredentialTTL = credential.DefaultTTL
	c.LogoutDelay = 1500 * time.Millisecond
	c.LogLevel = "info"
	c.MetricsAddr = ""
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from a config file (if one is named in args) and from flags. Later
// sources take precedence over earlier ones. args excludes the program name.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if path := flagx.ConfigFile(args); path != "" {
		if err := parseFile(cfg, path); err != nil {
			return nil, err
		}
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("config: base url is empty")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("config: request timeout must be positive, got %s", c.RequestTimeout)
	}
	if c.LogoutDelay < 0 {
		return fmt.Errorf("config: logout delay must not be negative, got %s", c.LogoutDelay)
	}
	return nil
}
