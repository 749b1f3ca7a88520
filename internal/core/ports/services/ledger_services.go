package services

import (
	"context"

	"github.com/SscSPs/ledger_sync/internal/core/domain"
	"github.com/SscSPs/ledger_sync/internal/dto"
)

// LedgerAccountSvc defines the manual account operations of the ledger service
type LedgerAccountSvc interface {
	// GetAllManualAccounts lists every manual account. Results are never cached.
	GetAllManualAccounts(ctx context.Context) ([]domain.LedgerAccount, error)

	// CreateManualAccount creates an account. Validation failures are returned as *apperrors.LedgerError.
	CreateManualAccount(ctx context.Context, req dto.CreateManualAccountRequest) (*domain.LedgerAccount, error)
}

// LedgerTransactionSvc defines the transaction operations of the ledger service
type LedgerTransactionSvc interface {
	// CreateTransactions inserts a batch. Transactions whose external_id already
	// exists are reported in SkippedDuplicates instead of failing the batch.
	CreateTransactions(ctx context.Context, req dto.CreateTransactionsRequest) (*dto.CreateTransactionsResponse, error)
}

// LedgerUserSvc exposes the account owner
type LedgerUserSvc interface {
	GetMe(ctx context.Context) (*domain.LedgerUser, error)
}

// LedgerClient is everything the sync pipeline needs from the ledger
type LedgerClient interface {
	LedgerAccountSvc
	LedgerTransactionSvc
	LedgerUserSvc
}
