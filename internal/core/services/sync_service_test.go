package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/ledger_sync/internal/apperrors"
	"github.com/SscSPs/ledger_sync/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_sync/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_sync/internal/core/ports/services"
	"github.com/SscSPs/ledger_sync/internal/core/services"
	"github.com/SscSPs/ledger_sync/internal/dto"
	"github.com/SscSPs/ledger_sync/internal/platform/config"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func txn(id, ref string, status domain.TransactionStatus) domain.ImportedTransaction {
	return domain.ImportedTransaction{
		SourceID:           id,
		Date:               time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		Description:        "Row " + id,
		Amount:             decimal.NewFromInt(10),
		ExternalAccountRef: ref,
		Status:             status,
	}
}

func newTestContainer(ledger *MockLedger, chooser *scriptedChooser, loaders ...portssvc.SourceLoader) *services.Container {
	return services.NewContainer(
		&config.Config{ImportBatchSize: 500},
		portsrepo.RepositoryProvider{AccountMappingRepo: newFakeMappingStore()},
		ledger,
		chooser,
		loaders,
	)
}

func TestSyncRun_RevolutImportsOnlyClearedRows(t *testing.T) {
	ctx := context.Background()
	ledger := new(MockLedger)
	chooser := &scriptedChooser{selects: []any{1}}
	loader := &stubLoader{
		integration: domain.Revolut,
		key:         domain.KeyByExternalID,
		batch: &portssvc.SourceBatch{
			Transactions: []domain.ImportedTransaction{
				txn("a", "EUR", domain.StatusCleared),
				txn("b", "EUR", domain.StatusPending),
				txn("c", "EUR", domain.StatusReverted),
			},
			Accounts:  []domain.ExternalAccountRef{eurRef},
			Errors:    []domain.ValidationError{{Source: "x.csv", RecordIndex: 4, Field: "Type", RawValue: "Bogus", Message: "unknown value"}},
			FilesRead: 1,
		},
	}
	ledger.On("GetAllManualAccounts", ctx).Return([]domain.LedgerAccount{wallet}, nil).Once()
	ledger.On("CreateTransactions", ctx, mock.MatchedBy(func(req dto.CreateTransactionsRequest) bool {
		return len(req.Transactions) == 1 && req.Transactions[0].ExternalID == "a" && req.Transactions[0].ManualAccountID == int64(wallet.ID)
	})).Return(responseWith(1, 0), nil).Once()

	report, err := newTestContainer(ledger, chooser, loader).Sync.Run(ctx, domain.Revolut)

	require.NoError(t, err)
	assert.Equal(t, "revolut", report.Integration)
	assert.Equal(t, 3, report.Loaded)
	assert.Equal(t, 1, report.ValidationErrors)
	assert.Equal(t, 2, report.Filtered)
	assert.Equal(t, 1, report.Mappings)
	assert.Equal(t, 1, report.Import.Inserted)
	ledger.AssertExpectations(t)
}

func TestSyncRun_MoneyForwardMatchesByInstitutionName(t *testing.T) {
	ctx := context.Background()
	ledger := new(MockLedger)
	chooser := &scriptedChooser{selects: []any{1}}
	loader := &stubLoader{
		integration: domain.MoneyForward,
		key:         domain.KeyByExternalName,
		batch: &portssvc.SourceBatch{
			Transactions: []domain.ImportedTransaction{txn("mf1", "Bank A", domain.StatusCleared)},
			Accounts:     []domain.ExternalAccountRef{{Integration: domain.MoneyForward, ExternalID: "m1", DisplayName: "Bank A"}},
		},
	}
	ledger.On("GetAllManualAccounts", ctx).Return([]domain.LedgerAccount{visa}, nil).Once()
	ledger.On("CreateTransactions", ctx, mock.MatchedBy(func(req dto.CreateTransactionsRequest) bool {
		return len(req.Transactions) == 1 && req.Transactions[0].ManualAccountID == int64(visa.ID)
	})).Return(responseWith(0, 1), nil).Once()

	report, err := newTestContainer(ledger, chooser, loader).Sync.Run(ctx, domain.MoneyForward)

	require.NoError(t, err)
	assert.Zero(t, report.Import.Unmapped)
	assert.Equal(t, 1, report.Import.Skipped)
	ledger.AssertExpectations(t)
}

func TestSyncRun_UnknownIntegration(t *testing.T) {
	_, err := newTestContainer(new(MockLedger), &scriptedChooser{}).Sync.Run(context.Background(), domain.Revolut)

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestSyncRun_LoadFailureStopsBeforeReconcile(t *testing.T) {
	ledger := new(MockLedger)
	loader := &stubLoader{integration: domain.Revolut, err: assert.AnError}

	_, err := newTestContainer(ledger, &scriptedChooser{}, loader).Sync.Run(context.Background(), domain.Revolut)

	assert.ErrorIs(t, err, assert.AnError)
	ledger.AssertNotCalled(t, "GetAllManualAccounts", mock.Anything)
}
