// Package config handles configuration for the sync engine, including
// defaults, JSON overlay, environment variables, and command-line flags.
package config

import "time"

// Config holds runtime settings for the matrix sync engine.
//
// Fields:
//   - SpreadsheetID: id of the remote spreadsheet holding the matrix sheets.
//   - APIBaseURL: base URL of the tabular-data API.
//   - TokenURL: OAuth2 token endpoint for the JWT-bearer grant.
//   - Scope: OAuth2 scope requested for the access token.
//   - CredentialsFile: path to the service-account credential JSON.
//   - SyncInterval: period of the background refresh from the remote store.
//   - TokenSafetyMargin: how long before expiry a cached token is refreshed.
type Config struct {
	SpreadsheetID     string
	APIBaseURL        string
	TokenURL          string
	Scope             string
	CredentialsFile   string
	SyncInterval      time.Duration
	TokenSafetyMargin time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "https://sheets.googleapis.com/v4/spreadsheets"
	c.TokenURL = "https://oauth2.googleapis.com/token"
	c.Scope = "https://www.googleapis.com/auth/spreadsheets"
	c.CredentialsFile = "service-account.json"
	c.SyncInterval = 30 * time.Second
	c.TokenSafetyMargin = time.Minute
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if present), environment variables, and command-line flags.
// Later sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
