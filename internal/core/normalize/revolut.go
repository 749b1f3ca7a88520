package normalize

import (
	"github.com/SscSPs/ledger_sync/internal/core/domain"
)

// Revolut export columns.
const (
	revolutType          = "Type"
	revolutProduct       = "Product"
	revolutStartedDate   = "Started Date"
	revolutCompletedDate = "Completed Date"
	revolutDescription   = "Description"
	revolutAmount        = "Amount"
	revolutFee           = "Fee"
	revolutCurrency      = "Currency"
	revolutState         = "State"
	revolutBalance       = "Balance"
)

// RevolutTransactionTypes is the closed set of values of the Type column.
var RevolutTransactionTypes = []string{
	"Card Payment",
	"Card Refund",
	"Charge",
	"Exchange",
	"Refund",
	"Reward",
	"Topup",
	"Transfer",
}

// RevolutStates is the closed set of values of the State column.
var RevolutStates = []string{"COMPLETED", "PENDING", "REVERTED"}

var revolutStatus = map[string]domain.TransactionStatus{
	"COMPLETED": domain.StatusCleared,
	"PENDING":   domain.StatusPending,
	"REVERTED":  domain.StatusReverted,
}

var revolutDateLayouts = []string{"2006-01-02 15:04:05", "2006-01-02"}

// Revolut normalizes the rows of one Revolut CSV export. Each currency seen
// in a valid row becomes one external account, in first-seen order.
func Revolut(source string, rows []map[string]string) (Result, []domain.ValidationError) {
	var (
		result Result
		errs   []domain.ValidationError
		seen   = make(map[string]bool)
	)

	for i, row := range rows {
		txn, rowErrs := revolutRow(source, i+1, row)
		if len(rowErrs) > 0 {
			errs = append(errs, rowErrs...)
			continue
		}
		result.Transactions = append(result.Transactions, txn)
		if !seen[txn.ExternalAccountRef] {
			seen[txn.ExternalAccountRef] = true
			result.Accounts = append(result.Accounts, domain.ExternalAccountRef{
				Integration: domain.Revolut,
				ExternalID:  txn.ExternalAccountRef,
				DisplayName: txn.ExternalAccountRef,
			})
		}
	}
	return result, errs
}

func revolutRow(source string, index int, row map[string]string) (domain.ImportedTransaction, []domain.ValidationError) {
	c := newRowChecker(source, index)

	c.oneOf(revolutType, row[revolutType], RevolutTransactionTypes)
	state := c.oneOf(revolutState, row[revolutState], RevolutStates)
	amount := c.amount(revolutAmount, row[revolutAmount], true)
	fee := c.amount(revolutFee, row[revolutFee], true)
	c.amount(revolutBalance, row[revolutBalance], true)
	date := c.date(revolutStartedDate, row[revolutStartedDate], revolutDateLayouts...)
	currency := c.required(revolutCurrency, row[revolutCurrency])

	if !c.ok() {
		return domain.ImportedTransaction{}, c.errs
	}

	product := row[revolutProduct]
	description := row[revolutDescription]
	return domain.ImportedTransaction{
		SourceID:           ExternalID(product, description, row[revolutStartedDate], row[revolutCompletedDate]),
		Date:               date,
		Description:        description,
		Amount:             amount,
		Fee:                fee,
		ExternalAccountRef: currency,
		Status:             revolutStatus[state],
	}, nil
}
