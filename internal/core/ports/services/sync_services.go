package services

import (
	"context"

	"github.com/SscSPs/ledger_sync/internal/core/domain"
	"github.com/SscSPs/ledger_sync/internal/dto"
)

// ReconcileSvc maps every externally observed account to a ledger account
type ReconcileSvc interface {
	// ReconcileAccounts returns the complete mapping set for one integration,
	// prompting the user and creating ledger accounts as needed.
	ReconcileAccounts(ctx context.Context, integration domain.IntegrationID, external []domain.ExternalAccountRef) ([]domain.AccountMapping, error)

	// ListMappings returns the persisted mappings without prompting.
	ListMappings(ctx context.Context, integration domain.IntegrationID) ([]domain.AccountMapping, error)
}

// ImportSvc submits normalized transactions to the ledger
type ImportSvc interface {
	// ImportTransactions drops unmapped transactions, then submits the rest in
	// sequential fixed-size batches.
	ImportTransactions(ctx context.Context, integration domain.IntegrationID, txns []domain.ImportedTransaction, accountIndex map[string]domain.LedgerAccountID) (*dto.ImportResult, error)
}

// SyncSvc runs the whole pipeline for one integration
type SyncSvc interface {
	Run(ctx context.Context, integration domain.IntegrationID) (*dto.SyncReport, error)
}
