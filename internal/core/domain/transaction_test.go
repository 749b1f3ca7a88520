package domain_test

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/SscSPs/ledger_sync/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNewLedgerDraft(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		fee    string
		want   string
	}{
		{name: "debit with fee", amount: "42.50", fee: "1.00", want: "-43.50"},
		{name: "credit without fee", amount: "-100", fee: "0", want: "100"},
		{name: "refund with fee", amount: "-20", fee: "0.5", want: "19.5"},
		{name: "zero", amount: "0", fee: "0", want: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txn := domain.ImportedTransaction{
				SourceID:    "src-1",
				Date:        time.Date(2024, 2, 29, 23, 59, 0, 0, time.UTC),
				Description: "Shop",
				Amount:      decimal.RequireFromString(tt.amount),
				Fee:         decimal.RequireFromString(tt.fee),
			}

			draft := domain.NewLedgerDraft(txn, 12)

			assert.True(t, decimal.RequireFromString(tt.want).Equal(draft.Amount), "got %s", draft.Amount)
			assert.Equal(t, domain.LedgerAccountID(12), draft.AccountID)
			assert.Equal(t, "2024-02-29", draft.Date)
			assert.Equal(t, "src-1", draft.ExternalID)
		})
	}
}

func TestNewLedgerDraft_KeepsFullDescriptionInNotes(t *testing.T) {
	long := strings.Repeat("長", domain.MaxPayeeLength+10)

	draft := domain.NewLedgerDraft(domain.ImportedTransaction{Description: long}, 1)

	assert.Equal(t, domain.MaxPayeeLength, utf8.RuneCountInString(draft.Payee))
	assert.True(t, utf8.ValidString(draft.Payee))
	assert.Equal(t, long, draft.Notes)
}

func TestTruncatePayee(t *testing.T) {
	exact := strings.Repeat("a", domain.MaxPayeeLength)

	assert.Equal(t, "short", domain.TruncatePayee("short"))
	assert.Equal(t, exact, domain.TruncatePayee(exact))
	assert.Equal(t, exact, domain.TruncatePayee(exact+"b"))
}
