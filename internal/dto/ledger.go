package dto

import (
	"encoding/json"

	"github.com/SscSPs/ledger_sync/internal/core/domain"
	"github.com/shopspring/decimal"
)

// MaxTransactionsPerRequest is the most transactions the ledger accepts in one insert call.
const MaxTransactionsPerRequest = 500

// CreateManualAccountRequest defines the data needed to create a ledger manual account.
type CreateManualAccountRequest struct {
	Name    string             `json:"name" validate:"required"`
	Type    domain.AccountType `json:"type" validate:"required,ledger_account_type"`
	Balance decimal.Decimal    `json:"balance"`
}

// ManualAccountResponse is a manual account as returned by the ledger.
type ManualAccountResponse struct {
	ID          int64              `json:"id"`
	Name        string             `json:"name"`
	DisplayName string             `json:"display_name,omitempty"`
	Type        domain.AccountType `json:"type"`
	Balance     decimal.Decimal    `json:"balance"`
	Currency    string             `json:"currency,omitempty"`
}

// ListManualAccountsResponse wraps GET /manual_accounts.
type ListManualAccountsResponse struct {
	ManualAccounts []ManualAccountResponse `json:"manual_accounts"`
}

// InsertTransaction is one transaction in a ledger insert request.
type InsertTransaction struct {
	ManualAccountID int64           `json:"manual_account_id" validate:"required"`
	Date            string          `json:"date" validate:"required,datetime=2006-01-02"`
	Amount          decimal.Decimal `json:"amount"`
	Payee           string          `json:"payee" validate:"max=140"`
	Notes           string          `json:"notes,omitempty"`
	ExternalID      string          `json:"external_id" validate:"required"`
}

// CreateTransactionsRequest defines a batch insert into the ledger.
type CreateTransactionsRequest struct {
	Transactions   []InsertTransaction `json:"transactions" validate:"required,min=1,max=500,dive"`
	SkipDuplicates bool                `json:"skip_duplicates"`
	ApplyRules     bool                `json:"apply_rules"`
}

// TransactionResponse is a transaction echoed back by the ledger.
type TransactionResponse struct {
	ID              int64           `json:"id"`
	ManualAccountID int64           `json:"manual_account_id,omitempty"`
	Date            string          `json:"date"`
	Amount          decimal.Decimal `json:"amount"`
	Payee           string          `json:"payee"`
	ExternalID      string          `json:"external_id,omitempty"`
}

// CreateTransactionsResponse reports which transactions were inserted and
// which were recognised as duplicates by external_id.
type CreateTransactionsResponse struct {
	Transactions      []TransactionResponse `json:"transactions"`
	SkippedDuplicates []TransactionResponse `json:"skipped_duplicates"`
}

// ErrorResponse is the body the ledger returns on a rejected request.
type ErrorResponse struct {
	Message string        `json:"message"`
	Errors  []ErrorDetail `json:"errors,omitempty"`
}

// ErrorDetail is one field-level problem inside an ErrorResponse.
type ErrorDetail struct {
	Message string `json:"message"`
}

// UnmarshalJSON accepts both {"message": "..."} objects and bare strings.
func (d *ErrorDetail) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		d.Message = s
		return nil
	}
	type plain ErrorDetail
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*d = ErrorDetail(p)
	return nil
}

// UserResponse wraps GET /me.
type UserResponse struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	BudgetName string `json:"budget_name,omitempty"`
}

// ToInsertTransaction converts a domain draft into its wire form.
func ToInsertTransaction(d domain.LedgerTransactionDraft) InsertTransaction {
	return InsertTransaction{
		ManualAccountID: int64(d.AccountID),
		Date:            d.Date,
		Amount:          d.Amount,
		Payee:           d.Payee,
		Notes:           d.Notes,
		ExternalID:      d.ExternalID,
	}
}

// ToLedgerAccount converts a wire manual account into the domain shape.
func ToLedgerAccount(r ManualAccountResponse) domain.LedgerAccount {
	return domain.LedgerAccount{
		ID:          domain.LedgerAccountID(r.ID),
		Name:        r.Name,
		DisplayName: r.DisplayName,
		Type:        r.Type,
	}
}
