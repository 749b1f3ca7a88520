package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/ledger_sync/internal/apperrors"
	"github.com/SscSPs/ledger_sync/internal/core/domain"
	portssvc "github.com/SscSPs/ledger_sync/internal/core/ports/services"
	"github.com/SscSPs/ledger_sync/internal/dto"
)

// syncService implements the SyncSvc interface
type syncService struct {
	BaseService
	loaders   map[domain.IntegrationID]portssvc.SourceLoader
	reconcile portssvc.ReconcileSvc
	importer  portssvc.ImportSvc
}

// NewSyncService wires the per-integration pipeline: load, reconcile, import.
func NewSyncService(loaders []portssvc.SourceLoader, reconcile portssvc.ReconcileSvc, importer portssvc.ImportSvc) portssvc.SyncSvc {
	byID := make(map[domain.IntegrationID]portssvc.SourceLoader, len(loaders))
	for _, l := range loaders {
		byID[l.Integration()] = l
	}
	return &syncService{
		loaders:   byID,
		reconcile: reconcile,
		importer:  importer,
	}
}

var _ portssvc.SyncSvc = (*syncService)(nil)

func (s *syncService) Run(ctx context.Context, integration domain.IntegrationID) (*dto.SyncReport, error) {
	loader, ok := s.loaders[integration]
	if !ok {
		return nil, fmt.Errorf("%w: no source configured for integration %q", apperrors.ErrNotFound, integration)
	}
	report := &dto.SyncReport{Integration: string(integration)}

	batch, err := loader.Load(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to load source files", slog.String("integration", string(integration)))
		return report, err
	}
	report.Loaded = len(batch.Transactions)
	report.ValidationErrors = len(batch.Errors)
	for _, verr := range batch.Errors {
		s.LogWarn(ctx, "Invalid source record",
			slog.String("source", verr.Source),
			slog.Int("record", verr.RecordIndex),
			slog.String("field", verr.Field),
			slog.String("value", verr.RawValue),
			slog.String("reason", verr.Message))
	}
	s.LogInfo(ctx, "Source loaded",
		slog.String("integration", string(integration)),
		slog.Int("files_read", batch.FilesRead),
		slog.Int("files_missing", batch.FilesMissing),
		slog.Int("files_failed", batch.FilesFailed),
		slog.Int("transactions", report.Loaded),
		slog.Int("accounts", len(batch.Accounts)),
		slog.Int("invalid_records", report.ValidationErrors))

	cleared := make([]domain.ImportedTransaction, 0, len(batch.Transactions))
	for _, t := range batch.Transactions {
		if t.Status == domain.StatusCleared {
			cleared = append(cleared, t)
		}
	}
	report.Filtered = len(batch.Transactions) - len(cleared)
	if report.Filtered > 0 {
		s.LogInfo(ctx, "Ignoring transactions that have not cleared",
			slog.String("integration", string(integration)),
			slog.Int("count", report.Filtered))
	}

	mappings, err := s.reconcile.ReconcileAccounts(ctx, integration, batch.Accounts)
	if err != nil {
		return report, err
	}
	report.Mappings = len(mappings)

	result, err := s.importer.ImportTransactions(ctx, integration, cleared, domain.IndexMappings(mappings, loader.AccountKey()))
	if result != nil {
		report.Import = *result
	}
	return report, err
}
