package mapping

import (
	"github.com/SscSPs/ledger_sync/internal/core/domain"
	"github.com/SscSPs/ledger_sync/internal/models"
)

// ToModelAccountMapping converts a domain AccountMapping to a model AccountMapping
func ToModelAccountMapping(d domain.AccountMapping) models.AccountMapping {
	return models.AccountMapping{
		ID:          d.ID,
		Integration: string(d.Integration),
		LMID:        int64(d.LedgerAccountID),
		AccountID:   d.ExternalID,
		AccountName: d.ExternalName,
		CreatedAt:   d.CreatedAt,
	}
}

// ToDomainAccountMapping converts a model AccountMapping to a domain AccountMapping
func ToDomainAccountMapping(m models.AccountMapping) domain.AccountMapping {
	return domain.AccountMapping{
		ID:              m.ID,
		Integration:     domain.IntegrationID(m.Integration),
		LedgerAccountID: domain.LedgerAccountID(m.LMID),
		ExternalID:      m.AccountID,
		ExternalName:    m.AccountName,
		CreatedAt:       m.CreatedAt,
	}
}

// ToDomainAccountMappings converts a slice of model mappings
func ToDomainAccountMappings(ms []models.AccountMapping) []domain.AccountMapping {
	out := make([]domain.AccountMapping, len(ms))
	for i, m := range ms {
		out[i] = ToDomainAccountMapping(m)
	}
	return out
}
