package config

import (
	"flag"
	"os"
	"time"

	"github.com/creativeops/matrixsync/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-s string   spreadsheet id
//	-k string   path to the service-account credentials file
//	-i int      background sync interval in seconds
//
// The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-s", "-k", "-i"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.SpreadsheetID, "s", cfg.SpreadsheetID, "spreadsheet id")
	fs.StringVar(&cfg.CredentialsFile, "k", cfg.CredentialsFile, "path to service-account credentials file")
	syncInterval := fs.Int("i", int(cfg.SyncInterval.Seconds()), "background sync interval (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.SyncInterval = time.Duration(*syncInterval) * time.Second
}
