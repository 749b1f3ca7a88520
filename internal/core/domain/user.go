package domain

// LedgerUser is the owner of the ledger API key.
type LedgerUser struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	BudgetName string `json:"budgetName,omitempty"`
}
