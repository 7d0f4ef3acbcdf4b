package config

import (
	"os"
	"strconv"
	"time"
)

// parseEnv overlays Config fields from environment variables.
//
// Recognized variables:
//
//	DATABASE_URL          PostgreSQL DSN
//	MOCKSERVER_URL        base URL of the mock server (client side)
//	MOCKSERVER_BIND_ADDR  bind address for the mock server binary
//	FIXTURES_TIMEOUT      network timeout in seconds
//
// Unset variables leave the current value untouched; a malformed
// FIXTURES_TIMEOUT is ignored rather than failing startup.
func parseEnv(config *Config) {
	if v, ok := os.LookupEnv("DATABASE_URL"); ok {
		config.DatabaseDSN = v
	}
	if v, ok := os.LookupEnv("MOCKSERVER_URL"); ok {
		config.MockServerURL = v
	}
	if v, ok := os.LookupEnv("MOCKSERVER_BIND_ADDR"); ok {
		config.MockServerBindAddr = v
	}
	if v, ok := os.LookupEnv("FIXTURES_TIMEOUT"); ok {
		if seconds, err := strconv.Atoi(v); err == nil && seconds > 0 {
			config.NetworkTimeout = time.Duration(seconds) * time.Second
		}
	}
}
