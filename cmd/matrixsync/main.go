package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-retry"

	"github.com/creativeops/matrixsync/internal/auth"
	"github.com/creativeops/matrixsync/internal/common"
	"github.com/creativeops/matrixsync/internal/config"
	"github.com/creativeops/matrixsync/internal/logging"
	"github.com/creativeops/matrixsync/internal/matrix/store"
	"github.com/creativeops/matrixsync/internal/sheets"
)

func main() {
	// A local .env can supply MATRIX_* variables during development.
	_ = godotenv.Load()

	cfg := config.LoadConfig()
	log := logging.NewDefault()

	if err := run(cfg, log); err != nil {
		log.Error(context.Background(), "fatal", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log logging.Logger) error {
	ctx := context.Background()

	if cfg.SpreadsheetID == "" {
		return common.ErrNotConfigured
	}

	cred, err := auth.LoadCredential(cfg.CredentialsFile)
	if err != nil {
		return err
	}

	issuer, err := auth.New(cred,
		auth.WithTokenURL(cfg.TokenURL),
		auth.WithScope(cfg.Scope),
		auth.WithSafetyMargin(cfg.TokenSafetyMargin),
	)
	if err != nil {
		return err
	}

	api := sheets.NewClient(cfg.APIBaseURL, cfg.SpreadsheetID, issuer)
	st := store.New(api, store.WithLogger(log))

	switch cmd := command(os.Args[1:]); cmd {
	case "sync":
		return st.SyncFromRemote(ctx)
	case "flush":
		return flushWithBackoff(ctx, st)
	case "watch":
		return watch(ctx, cfg, st, log)
	default:
		return fmt.Errorf("unknown command %q (want sync, flush, or watch)", cmd)
	}
}

// command returns the first non-flag argument, defaulting to "sync".
func command(args []string) string {
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		return args[0]
	}
	return "sync"
}

// flushWithBackoff drains the outbox with a few retries. The engine itself
// never retries; backoff policy lives with the caller.
func flushWithBackoff(ctx context.Context, st *store.Store) error {
	b := retry.WithMaxRetries(3, retry.NewExponential(time.Second))
	return retry.Do(ctx, b, func(ctx context.Context) error {
		res := st.Flush(ctx)
		if res.Success {
			return nil
		}
		return retry.RetryableError(errors.Join(res.Errors...))
	})
}

// watch performs an initial sync and then keeps the local state fresh on a
// fixed interval until interrupted.
func watch(ctx context.Context, cfg *config.Config, st *store.Store, log logging.Logger) error {
	if err := st.Ping(ctx); err != nil {
		return fmt.Errorf("connection check: %w", err)
	}
	if err := st.SyncFromRemote(ctx); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sched := store.NewScheduler(st, log)
	sched.Start(ctx, cfg.SyncInterval)
	defer sched.Stop()

	log.Info(ctx, "watching for remote changes", "interval", cfg.SyncInterval)
	<-ctx.Done()
	return nil
}
