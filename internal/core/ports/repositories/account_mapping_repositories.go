package repositories

import (
	"context"

	"github.com/SscSPs/ledger_sync/internal/core/domain"
)

// AccountMappingReader defines read operations for persisted account mappings
type AccountMappingReader interface {
	// ListMappings returns every mapping row for one integration.
	ListMappings(ctx context.Context, integration domain.IntegrationID) ([]domain.AccountMapping, error)
}

// AccountMappingWriter defines the single mutation supported on account mappings
type AccountMappingWriter interface {
	// ReplaceAll atomically discards every row for the integration and inserts
	// mappings in its place. A nil or empty slice clears the integration.
	ReplaceAll(ctx context.Context, integration domain.IntegrationID, mappings []domain.AccountMapping) error
}

// AccountMappingRepositoryFacade combines reader and writer
type AccountMappingRepositoryFacade interface {
	AccountMappingReader
	AccountMappingWriter
}

// AccountMappingRepositoryWithTx extends the facade with transaction capabilities
type AccountMappingRepositoryWithTx interface {
	AccountMappingRepositoryFacade
	TransactionManager
}
