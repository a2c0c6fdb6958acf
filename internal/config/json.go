package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/creativeops/matrixsync/internal/flagx"
	"github.com/creativeops/matrixsync/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can specify intervals either as strings like "30s"
// or as integer nanoseconds.
type JsonConfig struct {
	SpreadsheetID     string         `json:"spreadsheet_id"`
	APIBaseURL        string         `json:"api_base_url"`
	TokenURL          string         `json:"token_url"`
	Scope             string         `json:"scope"`
	CredentialsFile   string         `json:"credentials_file"`
	SyncInterval      timex.Duration `json:"sync_interval"`
	TokenSafetyMargin timex.Duration `json:"token_safety_margin"`
}

// parseJson overlays Config with values loaded from a JSON file resolved via
// the -c/-config flags. Only non-zero JSON values override the current
// Config. Panics on read or unmarshal errors (caller should recover if
// desired).
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.SpreadsheetID != "" {
		cfg.SpreadsheetID = jc.SpreadsheetID
	}
	if jc.APIBaseURL != "" {
		cfg.APIBaseURL = jc.APIBaseURL
	}
	if jc.TokenURL != "" {
		cfg.TokenURL = jc.TokenURL
	}
	if jc.Scope != "" {
		cfg.Scope = jc.Scope
	}
	if jc.CredentialsFile != "" {
		cfg.CredentialsFile = jc.CredentialsFile
	}
	if jc.SyncInterval.Duration != 0 {
		cfg.SyncInterval = time.Duration(jc.SyncInterval.Duration)
	}
	if jc.TokenSafetyMargin.Duration != 0 {
		cfg.TokenSafetyMargin = time.Duration(jc.TokenSafetyMargin.Duration)
	}
}
