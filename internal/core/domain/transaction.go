package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ISODateLayout is the calendar date format the ledger accepts.
const ISODateLayout = "2006-01-02"

// MaxPayeeLength is the longest payee the ledger stores, in characters.
const MaxPayeeLength = 140

// TransactionStatus is the settlement state reported by the source.
type TransactionStatus string

const (
	StatusCleared  TransactionStatus = "cleared"
	StatusPending  TransactionStatus = "pending"
	StatusReverted TransactionStatus = "reverted"
)

// ImportedTransaction is a row from an external source after validation.
// SourceID is stable across re-imports, which makes submission idempotent.
type ImportedTransaction struct {
	SourceID           string
	Date               time.Time
	Description        string
	Amount             decimal.Decimal // debits are positive outflow
	Fee                decimal.Decimal
	ExternalAccountRef string
	Status             TransactionStatus
}

// LedgerTransactionDraft is a transaction ready for submission to the ledger.
// It is never persisted locally.
type LedgerTransactionDraft struct {
	AccountID  LedgerAccountID
	Date       string
	Amount     decimal.Decimal
	Payee      string
	Notes      string
	ExternalID string
}

// NewLedgerDraft converts an imported transaction into the ledger's sign
// convention: amount = -(amount) - fee.
func NewLedgerDraft(t ImportedTransaction, accountID LedgerAccountID) LedgerTransactionDraft {
	return LedgerTransactionDraft{
		AccountID:  accountID,
		Date:       t.Date.Format(ISODateLayout),
		Amount:     t.Amount.Neg().Sub(t.Fee),
		Payee:      TruncatePayee(t.Description),
		Notes:      t.Description,
		ExternalID: t.SourceID,
	}
}

// TruncatePayee cuts s to MaxPayeeLength characters without splitting a rune.
func TruncatePayee(s string) string {
	runes := []rune(s)
	if len(runes) <= MaxPayeeLength {
		return s
	}
	return string(runes[:MaxPayeeLength])
}
