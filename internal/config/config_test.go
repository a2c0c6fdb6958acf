package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func resetArgs(t *testing.T, args ...string) {
	t.Helper()
	orig := os.Args
	os.Args = append([]string{"matrixsync"}, args...)
	t.Cleanup(func() { os.Args = orig })
}

func TestLoadDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	require.Equal(t, "https://sheets.googleapis.com/v4/spreadsheets", cfg.APIBaseURL)
	require.Equal(t, "https://oauth2.googleapis.com/token", cfg.TokenURL)
	require.Equal(t, 30*time.Second, cfg.SyncInterval)
	require.Equal(t, time.Minute, cfg.TokenSafetyMargin)
	require.Empty(t, cfg.SpreadsheetID)
}

func TestLoadConfig_Flags(t *testing.T) {
	resetArgs(t, "-s", "sheet-42", "-i", "5", "-k", "cred.json")

	cfg := LoadConfig()

	require.Equal(t, "sheet-42", cfg.SpreadsheetID)
	require.Equal(t, 5*time.Second, cfg.SyncInterval)
	require.Equal(t, "cred.json", cfg.CredentialsFile)
}

func TestLoadConfig_Env(t *testing.T) {
	resetArgs(t)
	t.Setenv("MATRIX_SPREADSHEET_ID", "env-sheet")
	t.Setenv("MATRIX_SYNC_INTERVAL", "90s")

	cfg := LoadConfig()

	require.Equal(t, "env-sheet", cfg.SpreadsheetID)
	require.Equal(t, 90*time.Second, cfg.SyncInterval)
}

func TestLoadConfig_FlagOverridesEnv(t *testing.T) {
	resetArgs(t, "-s", "flag-sheet")
	t.Setenv("MATRIX_SPREADSHEET_ID", "env-sheet")

	cfg := LoadConfig()

	require.Equal(t, "flag-sheet", cfg.SpreadsheetID)
}
