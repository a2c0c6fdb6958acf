package config

import (
	"os"
	"time"
)

// parseEnv overlays Config with values from environment variables. Empty or
// malformed values are ignored so a stray variable cannot blank out a
// default.
func parseEnv(cfg *Config) {
	if v := os.Getenv("MATRIX_SPREADSHEET_ID"); v != "" {
		cfg.SpreadsheetID = v
	}
	if v := os.Getenv("MATRIX_API_BASE_URL"); v != "" {
		cfg.APIBaseURL = v
	}
	if v := os.Getenv("MATRIX_TOKEN_URL"); v != "" {
		cfg.TokenURL = v
	}
	if v := os.Getenv("MATRIX_SCOPE"); v != "" {
		cfg.Scope = v
	}
	if v := os.Getenv("MATRIX_CREDENTIALS_FILE"); v != "" {
		cfg.CredentialsFile = v
	}
	if v := os.Getenv("MATRIX_SYNC_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.SyncInterval = d
		}
	}
}
