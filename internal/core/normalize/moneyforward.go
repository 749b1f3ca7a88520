package normalize

import (
	"github.com/SscSPs/ledger_sync/internal/core/domain"
	"github.com/shopspring/decimal"
)

// Money Forward cash-flow export columns.
const (
	mfCalculated  = "計算対象"
	mfDate        = "日付"
	mfDescription = "内容"
	mfAmount      = "金額（円）"
	mfInstitution = "保有金融機関"
	mfTransfer    = "振替"
	mfID          = "ID"
)

// Money Forward account-status columns, as written by the scraper.
const (
	mfAccountID   = "mfId"
	mfAccountName = "name"
	mfAccountURL  = "url"
)

var mfFlags = []string{"0", "1"}

// MoneyForward normalizes the rows of one monthly cash-flow export. Transactions
// reference their account by institution name, and every row is settled.
func MoneyForward(source string, rows []map[string]string) (Result, []domain.ValidationError) {
	var (
		result Result
		errs   []domain.ValidationError
	)
	for i, row := range rows {
		c := newRowChecker(source, i+1)

		c.oneOf(mfCalculated, row[mfCalculated], mfFlags)
		c.oneOf(mfTransfer, row[mfTransfer], mfFlags)
		date := c.date(mfDate, row[mfDate], "2006/01/02", "2006-01-02")
		amount := c.groupedAmount(mfAmount, row[mfAmount])
		id := c.required(mfID, row[mfID])

		if !c.ok() {
			errs = append(errs, c.errs...)
			continue
		}

		result.Transactions = append(result.Transactions, domain.ImportedTransaction{
			SourceID:           id,
			Date:               date,
			Description:        row[mfDescription],
			Amount:             amount,
			Fee:                decimal.Zero,
			ExternalAccountRef: row[mfInstitution],
			Status:             domain.StatusCleared,
		})
	}
	return result, errs
}

// MoneyForwardAccounts normalizes the scraped account-status list. Repeated
// mfId rows are skipped, keeping the first.
func MoneyForwardAccounts(source string, rows []map[string]string) ([]domain.ExternalAccountRef, []domain.ValidationError) {
	var (
		accounts []domain.ExternalAccountRef
		errs     []domain.ValidationError
		seen     = make(map[string]bool)
	)
	for i, row := range rows {
		c := newRowChecker(source, i+1)
		id := c.required(mfAccountID, row[mfAccountID])
		name := c.required(mfAccountName, row[mfAccountName])
		if !c.ok() {
			errs = append(errs, c.errs...)
			continue
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		accounts = append(accounts, domain.ExternalAccountRef{
			Integration: domain.MoneyForward,
			ExternalID:  id,
			DisplayName: name,
			Detail:      row[mfAccountURL],
		})
	}
	return accounts, errs
}
