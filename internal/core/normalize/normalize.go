// Package normalize turns raw CSV rows from each integration into validated
// domain.ImportedTransaction and domain.ExternalAccountRef values.
//
// Every function here is pure. A row with any invalid field is dropped whole
// and each failing field is reported as one domain.ValidationError.
package normalize

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/SscSPs/ledger_sync/internal/core/domain"
	"github.com/shopspring/decimal"
)

// Result is the valid output of normalizing one batch of rows.
type Result struct {
	Transactions []domain.ImportedTransaction
	Accounts     []domain.ExternalAccountRef
}

// Append adds other's transactions and any accounts not already present.
func (r *Result) Append(other Result) {
	r.Transactions = append(r.Transactions, other.Transactions...)
	seen := make(map[string]bool, len(r.Accounts))
	for _, a := range r.Accounts {
		seen[a.ExternalID] = true
	}
	for _, a := range other.Accounts {
		if !seen[a.ExternalID] {
			seen[a.ExternalID] = true
			r.Accounts = append(r.Accounts, a)
		}
	}
}

// ExternalID derives a stable identifier for sources without a native one.
// The same inputs always produce the same ID, so the ledger can report
// re-submissions as duplicates.
func ExternalID(product, description, startedDate, completedDate string) string {
	data := product + "|" + description + "|" + startedDate + "|" + completedDate
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])
}

// rowChecker validates the fields of one row and records every failure.
type rowChecker struct {
	source string
	index  int
	errs   []domain.ValidationError
}

func newRowChecker(source string, index int) *rowChecker {
	return &rowChecker{source: source, index: index}
}

func (c *rowChecker) ok() bool {
	return len(c.errs) == 0
}

func (c *rowChecker) fail(field, raw, message string) {
	c.errs = append(c.errs, domain.ValidationError{
		Source:      c.source,
		RecordIndex: c.index,
		Field:       field,
		RawValue:    raw,
		Message:     message,
	})
}

func (c *rowChecker) required(field, raw string) string {
	v := strings.TrimSpace(raw)
	if v == "" {
		c.fail(field, raw, fmt.Sprintf("%s is required", field))
	}
	return v
}

func (c *rowChecker) oneOf(field, raw string, allowed []string) string {
	for _, a := range allowed {
		if raw == a {
			return raw
		}
	}
	c.fail(field, raw, fmt.Sprintf("Invalid %s. Expected one of: %s", strings.ToLower(field), strings.Join(allowed, ", ")))
	return ""
}

// groupedInteger matches an integer with well-formed thousands separators.
var groupedInteger = regexp.MustCompile(`^-?\d{1,3}(,\d{3})+$`)

// amount parses a finite decimal. An empty value is zero when emptyIsZero is set.
// Commas are never accepted here.
func (c *rowChecker) amount(field, raw string, emptyIsZero bool) decimal.Decimal {
	v := strings.TrimSpace(raw)
	if v == "" && emptyIsZero {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		c.fail(field, raw, fmt.Sprintf("%s must be a valid number", field))
		return decimal.Zero
	}
	return d
}

// groupedAmount is amount for whole-unit columns that may carry thousands
// separators, like "-1,280". Misplaced commas fail the field.
func (c *rowChecker) groupedAmount(field, raw string) decimal.Decimal {
	v := strings.TrimSpace(raw)
	if strings.Contains(v, ",") && groupedInteger.MatchString(v) {
		v = strings.ReplaceAll(v, ",", "")
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		c.fail(field, raw, fmt.Sprintf("%s must be a valid number", field))
		return decimal.Zero
	}
	return d
}

// date parses raw with the first matching layout and truncates it to a calendar date.
func (c *rowChecker) date(field, raw string, layouts ...string) time.Time {
	v := strings.TrimSpace(raw)
	for _, layout := range layouts {
		if t, err := time.Parse(layout, v); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		}
	}
	c.fail(field, raw, fmt.Sprintf("%s must be a date (%s)", field, strings.Join(layouts, " or ")))
	return time.Time{}
}
