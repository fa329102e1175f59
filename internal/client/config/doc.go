// Package config loads runtime configuration for the fleamarket CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file selected via -c or -config. Files ending in
//     .yaml or .yml are YAML, all others JSON.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   backend base URL (default http://localhost:8080/api)
//	-t int      request timeout (seconds)
//	-d string   local database DSN
//	-l string   log level
//	-m string   metrics listen address
//
// # File schema
//
// Durations use timex.Duration, so values can be either strings like "10s"
// or integer nanoseconds:
//
//	{
//	  "base_url": "https://market.example/api",
//	  "request_timeout": "10s",
//	  "database_dsn": "fleamarket.db",
//	  "credential_ttl": "168h",
//	  "logout_delay": "1.5s",
//	  "log_level": "info",
//	  "metrics_addr": ":9464"
//	}
//
// Keys missing from the file keep their previous value. This package does
// not read environment variables.
package config
