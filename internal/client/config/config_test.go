package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaults() Config {
	var c Config
	c.LoadDefaults()
	return c
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	c := defaults()

	assert.Equal(t, "http://localhost:8080/api", c.BaseURL)
	assert.Equal(t, 10*time.Second, c.RequestTimeout)
	assert.Equal(t, "fleamarket.db", c.DatabaseDSN)
	assert.Equal(t, 7*24*time.Hour, c.CredentialTTL)
	assert.Equal(t, 1500*time.Millisecond, c.LogoutDelay)
	assert.Equal(t, "info", c.LogLevel)
	assert.Empty(t, c.MetricsAddr)
}

func TestLoadConfig_NoArgsGivesDefaults(t *testing.T) {
	cfg, err := LoadConfig(nil)
	require.NoError(t, err)
	if diff := cmp.Diff(defaults(), *cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		mutate  func(c *Config)
		wantErr bool
	}{
		{
			name: "all flags",
			args: []string{"-a", "https://market.example/api", "-t", "3", "-d", ":memory:", "-l", "debug", "-m", ":9464"},
			mutate: func(c *Config) {
				c.BaseURL = "https://market.example/api"
				c.RequestTimeout = 3 * time.Second
				c.DatabaseDSN = ":memory:"
				c.LogLevel = "debug"
				c.MetricsAddr = ":9464"
			},
		},
		{
			name:   "unknown flags are ignored",
			args:   []string{"-x", "1", "-l=warn", "--verbose"},
			mutate: func(c *Config) { c.LogLevel = "warn" },
		},
		{
			name:    "timeout must be a number",
			args:    []string{"-t", "abc"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaults()
			err := parseFlags(&cfg, tt.args)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)

			want := defaults()
			tt.mutate(&want)
			assert.Empty(t, cmp.Diff(want, cfg))
		})
	}
}

func TestLoadConfig_FilePrecedence(t *testing.T) {
	jsonPath := writeFile(t, "cfg.json", `{
		"base_url": "https://json.example/api",
		"request_timeout": "20s",
		"logout_delay": 0,
		"metrics_addr": ":9000"
	}`)
	yamlPath := writeFile(t, "cfg.yaml", "base_url: https://yaml.example/api\ncredential_ttl: 24h\nlog_level: error\n")

	t.Run("json file over defaults", func(t *testing.T) {
		cfg, err := LoadConfig([]string{"-config", jsonPath})
		require.NoError(t, err)

		want := defaults()
		want.BaseURL = "https://json.example/api"
		want.RequestTimeout = 20 * time.Second
		want.LogoutDelay = 0
		want.MetricsAddr = ":9000"
		assert.Empty(t, cmp.Diff(want, *cfg))
	})

	t.Run("yaml file", func(t *testing.T) {
		cfg, err := LoadConfig([]string{"-c", yamlPath})
		require.NoError(t, err)

		want := defaults()
		want.BaseURL = "https://yaml.example/api"
		want.CredentialTTL = 24 * time.Hour
		want.LogLevel = "error"
		assert.Empty(t, cmp.Diff(want, *cfg))
	})

	t.Run("flags override the file", func(t *testing.T) {
		cfg, err := LoadConfig([]string{"-c", jsonPath, "-a", "http://flag.example/api", "-t", "5"})
		require.NoError(t, err)
		assert.Equal(t, "http://flag.example/api", cfg.BaseURL)
		assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
		assert.Equal(t, ":9000", cfg.MetricsAddr)
	})
}

func TestLoadConfig_Errors(t *testing.T) {
	bad := writeFile(t, "bad.json", `{ this is not valid json`)
	badDuration := writeFile(t, "bad.yml", "request_timeout: soon\n")
	zeroTimeout := writeFile(t, "zero.json", `{"request_timeout": "0s"}`)

	for name, args := range map[string][]string{
		"missing file":   {"-c", filepath.Join(t.TempDir(), "absent.json")},
		"invalid json":   {"-c", bad},
		"bad duration":   {"-c", badDuration},
		"zero timeout":   {"-c", zeroTimeout},
		"negative delay": {"-c", writeFile(t, "neg.json", `{"logout_delay": "-1s"}`)},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := LoadConfig(args)
			assert.Error(t, err)
		})
	}
}
