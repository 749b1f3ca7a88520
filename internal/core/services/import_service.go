package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/SscSPs/ledger_sync/internal/apperrors"
	"github.com/SscSPs/ledger_sync/internal/core/domain"
	portssvc "github.com/SscSPs/ledger_sync/internal/core/ports/services"
	"github.com/SscSPs/ledger_sync/internal/dto"
)

// importService implements the ImportSvc interface
type importService struct {
	BaseService
	ledger    portssvc.LedgerTransactionSvc
	batchSize int
}

// ImportServiceOption configures the import service
type ImportServiceOption func(*importService)

// WithBatchSize overrides the number of transactions per insert request.
// Values outside 1..MaxTransactionsPerRequest are ignored.
func WithBatchSize(size int) ImportServiceOption {
	return func(s *importService) {
		if size > 0 && size <= dto.MaxTransactionsPerRequest {
			s.batchSize = size
		}
	}
}

// NewImportService creates an importer submitting to ledger
func NewImportService(ledger portssvc.LedgerTransactionSvc, options ...ImportServiceOption) portssvc.ImportSvc {
	s := &importService{
		ledger:    ledger,
		batchSize: dto.MaxTransactionsPerRequest,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

var _ portssvc.ImportSvc = (*importService)(nil)

// ImportTransactions submits txns in sequential batches. A ledger rejection
// stops the run and is returned as *apperrors.SubmissionError carrying the
// totals of the batches that did succeed.
func (s *importService) ImportTransactions(ctx context.Context, integration domain.IntegrationID, txns []domain.ImportedTransaction, accountIndex map[string]domain.LedgerAccountID) (*dto.ImportResult, error) {
	result := &dto.ImportResult{}

	drafts := make([]dto.InsertTransaction, 0, len(txns))
	unmappedRefs := make(map[string]int)
	for _, t := range txns {
		accountID, ok := accountIndex[t.ExternalAccountRef]
		if !ok {
			unmappedRefs[t.ExternalAccountRef]++
			continue
		}
		drafts = append(drafts, dto.ToInsertTransaction(domain.NewLedgerDraft(t, accountID)))
	}

	for ref, count := range unmappedRefs {
		result.Unmapped += count
		s.LogWarn(ctx, "Dropping transactions for unmapped account",
			slog.String("integration", string(integration)),
			slog.String("account", ref),
			slog.Int("count", count))
	}

	for start := 0; start < len(drafts); start += s.batchSize {
		end := min(start+s.batchSize, len(drafts))
		batch := result.Batches + 1

		resp, err := s.ledger.CreateTransactions(ctx, dto.CreateTransactionsRequest{
			Transactions:   drafts[start:end],
			SkipDuplicates: false,
			ApplyRules:     true,
		})
		if err != nil {
			var lerr *apperrors.LedgerError
			if errors.As(err, &lerr) {
				s.LogError(ctx, err, "Ledger rejected transaction batch",
					slog.String("integration", string(integration)),
					slog.Int("batch", batch),
					slog.Any("errors", lerr.Errors))
				return result, &apperrors.SubmissionError{
					Batch:    batch,
					Inserted: result.Inserted,
					Skipped:  result.Skipped,
					Err:      err,
				}
			}
			s.LogError(ctx, err, "Failed to submit transaction batch",
				slog.String("integration", string(integration)),
				slog.Int("batch", batch))
			return result, err
		}

		result.Batches = batch
		result.Inserted += len(resp.Transactions)
		result.Skipped += len(resp.SkippedDuplicates)
		s.LogInfo(ctx, "Submitted transaction batch",
			slog.String("integration", string(integration)),
			slog.Int("batch", batch),
			slog.Int("size", end-start),
			slog.Int("inserted", len(resp.Transactions)),
			slog.Int("skipped_duplicates", len(resp.SkippedDuplicates)))
	}

	s.LogInfo(ctx, "Import finished",
		slog.String("integration", string(integration)),
		slog.Int("inserted", result.Inserted),
		slog.Int("skipped_duplicates", result.Skipped),
		slog.Int("unmapped", result.Unmapped),
		slog.Int("batches", result.Batches))
	return result, nil
}
