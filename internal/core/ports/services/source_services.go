package services

import (
	"context"

	"github.com/SscSPs/ledger_sync/internal/core/domain"
)

// SourceBatch is everything one integration produced for a run, already normalized.
type SourceBatch struct {
	Transactions []domain.ImportedTransaction
	Accounts     []domain.ExternalAccountRef
	Errors       []domain.ValidationError
	FilesRead    int
	FilesMissing int
	FilesFailed  int
}

// SourceLoader discovers, reads and normalizes one integration's input files
type SourceLoader interface {
	Integration() domain.IntegrationID
	// AccountKey reports which side of a mapping the batch's transactions reference.
	AccountKey() domain.AccountKey
	Load(ctx context.Context) (*SourceBatch, error)
}
