package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/ledger_sync/internal/apperrors"
	"github.com/SscSPs/ledger_sync/internal/core/domain"
	"github.com/SscSPs/ledger_sync/internal/platform/logging"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

func newSyncCmd(opts *globalOptions) *cobra.Command {
	var integrations []string

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Reconcile accounts and import transactions",
		Long: `sync runs each selected integration in turn: load its CSV files, match
its accounts to Lunch Money accounts, then insert the cleared transactions in
batches. A failing integration does not stop the next one, but the command
exits non-zero.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			selected, err := parseIntegrations(integrations)
			if err != nil {
				return err
			}

			a, err := bootstrap(cmd.Context(), opts, true)
			if err != nil {
				return err
			}
			defer a.close()

			failed := 0
			for _, integration := range selected {
				ctx, _ := logging.WithRunLogger(cmd.Context(), a.logger, slog.String("integration", string(integration)))
				logger := logging.FromContext(ctx)
				logger.Info("Starting sync")

				report, err := a.container.Sync.Run(ctx, integration)
				if err != nil {
					failed++
					logSyncFailure(logger, err)
					if ctx.Err() != nil || errors.Is(err, promptui.ErrInterrupt) {
						return errSyncFailed
					}
					continue
				}
				logger.Info("Sync finished",
					slog.Int("loaded", report.Loaded),
					slog.Int("invalid_records", report.ValidationErrors),
					slog.Int("not_cleared", report.Filtered),
					slog.Int("mappings", report.Mappings),
					slog.Int("inserted", report.Import.Inserted),
					slog.Int("skipped_duplicates", report.Import.Skipped),
					slog.Int("unmapped", report.Import.Unmapped),
					slog.Int("batches", report.Import.Batches))
			}

			if failed > 0 {
				return errSyncFailed
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&integrations, "integration", "i", nil,
		"Integrations to sync (money-forward, revolut); defaults to all")
	return cmd
}

func logSyncFailure(logger *slog.Logger, err error) {
	var subErr *apperrors.SubmissionError
	if errors.As(err, &subErr) {
		attrs := []any{
			slog.String("error", err.Error()),
			slog.Int("batch", subErr.Batch),
			slog.Int("inserted_before_failure", subErr.Inserted),
			slog.Int("skipped_before_failure", subErr.Skipped),
		}
		if lerr, ok := apperrors.AsLedgerError(err); ok {
			attrs = append(attrs, slog.String("message", lerr.Message), slog.Any("errors", lerr.Errors))
		}
		logger.Error("Ledger rejected the import", attrs...)
		return
	}
	logger.Error("Sync failed", slog.String("error", err.Error()))
}

func parseIntegrations(names []string) ([]domain.IntegrationID, error) {
	if len(names) == 0 {
		return domain.Integrations, nil
	}
	ids := make([]domain.IntegrationID, 0, len(names))
	for _, name := range names {
		id := domain.IntegrationID(name)
		if !id.Valid() {
			return nil, fmt.Errorf("%w: unknown integration %q", apperrors.ErrValidation, name)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
