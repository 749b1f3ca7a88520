package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/SscSPs/ledger_sync/internal/adapters/database/pgsql"
	"github.com/SscSPs/ledger_sync/internal/adapters/ledger/lunchmoney"
	"github.com/SscSPs/ledger_sync/internal/adapters/prompt"
	"github.com/SscSPs/ledger_sync/internal/adapters/source/csvfile"
	portsrepo "github.com/SscSPs/ledger_sync/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_sync/internal/core/ports/services"
	"github.com/SscSPs/ledger_sync/internal/core/services"
	"github.com/SscSPs/ledger_sync/internal/platform/config"
	"github.com/SscSPs/ledger_sync/internal/platform/logging"
	"github.com/SscSPs/ledger_sync/pkg/database"
	"github.com/spf13/cobra"
)

type globalOptions struct {
	verbose bool
}

// app is everything a command needs, built once per invocation.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	container *services.Container
	close     func()
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "ledger_sync",
		Short: "Import Money Forward and Revolut transactions into Lunch Money",
		Long: `ledger_sync reads the CSV exports of Money Forward and Revolut, asks you
how their accounts map onto your Lunch Money manual accounts, and inserts the
transactions. Re-running is safe: transactions already in Lunch Money are
recognised by their external id and skipped.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(
		newSyncCmd(opts),
		newAccountsCmd(opts),
		newWhoamiCmd(opts),
	)
	return root
}

// bootstrap loads config and wires the container. The database is only
// opened when withStore is set.
func bootstrap(ctx context.Context, opts *globalOptions, withStore bool) (*app, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	level := cfg.LogLevel
	if opts.verbose {
		level = "debug"
	}
	logger := logging.New(os.Stderr, level, cfg.LogFormat)
	slog.SetDefault(logger)

	clientOpts := []lunchmoney.ClientOption{lunchmoney.WithTimeout(cfg.LedgerTimeout)}
	if cfg.LedgerRateLimit != "" {
		limiter, err := lunchmoney.NewRateLimiter(cfg.LedgerRateLimit)
		if err != nil {
			return nil, err
		}
		clientOpts = append(clientOpts, lunchmoney.WithLimiter(limiter))
	}
	ledger := lunchmoney.NewClient(ctx, cfg.LunchMoneyBaseURL, cfg.LunchMoneyAPIKey, clientOpts...)

	a := &app{cfg: cfg, logger: logger, close: func() {}}
	var repos portsrepo.RepositoryProvider
	if withStore {
		if err := cfg.RequireDatabase(); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		if cfg.RunMigrations {
			logger.Info("Running database migrations...")
			if err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, logger); err != nil {
				return nil, err
			}
		}
		pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database pool: %w", err)
		}
		a.close = func() { database.ClosePgxPool(pool) }
		repos = pgsql.NewRepositoryProvider(pool)
	}

	encoding, err := csvfile.ParseEncoding(cfg.MoneyForwardEncoding)
	if err != nil {
		a.close()
		return nil, err
	}
	loaders := []portssvc.SourceLoader{
		&csvfile.MoneyForwardLoader{
			Dir:      cfg.MoneyForwardDir,
			Months:   cfg.MoneyForwardMonths,
			Encoding: encoding,
			Now:      time.Now,
		},
		&csvfile.RevolutLoader{Dir: cfg.RevolutDir},
	}

	a.container = services.NewContainer(cfg, repos, ledger, prompt.NewTerminal(), loaders)
	return a, nil
}
