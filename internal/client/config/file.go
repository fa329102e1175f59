package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/fleamarket/internal/timex"
	"gopkg.in/yaml.v3"
)

// fileConfig is a DTO used exclusively for config file decoding. Nil fields
// were absent from the file and leave the current value alone.
type fileConfig struct {
	BaseURL        *string         `json:"base_url" yaml:"base_url"`
	RequestTimeout *timex.Duration `json:"request_timeout" yaml:"request_timeout"`
	DatabaseDSN    *string         `json:"database_dsn" yaml:"database_dsn"`
	CredentialTTL  *timex.Duration `json:"credential_ttl" yaml:"credential_ttl"`
	LogoutDelay    *timex.Duration `json:"logout_delay" yaml:"logout_delay"`
	LogLevel       *string         `json:"log_level" yaml:"log_level"`
	MetricsAddr    *string         `json:"metrics_addr" yaml:"metrics_addr"`
}

// parseFile overlays cfg with the file at path. Files ending in .yaml or
// .yml are YAML, anything else is JSON.
func parseFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	fc.apply(cfg)
	return nil
}

func (fc fileConfig) apply(cfg *Config) {
	setString(&cfg.BaseURL, fc.BaseURL)
	setString(&cfg.DatabaseDSN, fc.DatabaseDSN)
	setString(&cfg.LogLevel, fc.LogLevel)
	setString(&cfg.MetricsAddr, fc.MetricsAddr)
	if fc.RequestTimeout != nil {
		cfg.RequestTimeout = fc.RequestTimeout.Duration
	}
	if fc.CredentialTTL != nil {
		cfg.CredentialTTL = fc.CredentialTTL.Duration
	}
	if fc.LogoutDelay != nil {
		cfg.LogoutDelay = fc.LogoutDelay.Duration
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
