package domain

import "time"

// AccountType is the closed set of manual account types the ledger accepts.
type AccountType string

const (
	AccountTypeCash                 AccountType = "cash"
	AccountTypeCredit               AccountType = "credit"
	AccountTypeCryptocurrency       AccountType = "cryptocurrency"
	AccountTypeEmployeeCompensation AccountType = "employee compensation"
	AccountTypeInvestment           AccountType = "investment"
	AccountTypeLoan                 AccountType = "loan"
	AccountTypeOtherLiability       AccountType = "other liability"
	AccountTypeOtherAsset           AccountType = "other asset"
	AccountTypeRealEstate           AccountType = "real estate"
	AccountTypeVehicle              AccountType = "vehicle"
)

// AccountTypes lists every AccountType in prompt order.
var AccountTypes = []AccountType{
	AccountTypeCash,
	AccountTypeCredit,
	AccountTypeCryptocurrency,
	AccountTypeEmployeeCompensation,
	AccountTypeInvestment,
	AccountTypeLoan,
	AccountTypeOtherLiability,
	AccountTypeOtherAsset,
	AccountTypeRealEstate,
	AccountTypeVehicle,
}

// Valid reports whether t is one of AccountTypes.
func (t AccountType) Valid() bool {
	for _, known := range AccountTypes {
		if t == known {
			return true
		}
	}
	return false
}

// LedgerAccountID identifies a manual account in the ledger service.
type LedgerAccountID int64

// LedgerAccount is a manual account owned by the ledger service. It is fetched
// fresh on every reconciliation run.
type LedgerAccount struct {
	ID          LedgerAccountID `json:"id"`
	Name        string          `json:"name"`
	DisplayName string          `json:"displayName,omitempty"`
	Type        AccountType     `json:"type"`
}

// Label is the name shown to users, preferring the display name.
func (a LedgerAccount) Label() string {
	if a.DisplayName != "" {
		return a.DisplayName
	}
	return a.Name
}

// ExternalAccountRef identifies one account as known to an external system.
type ExternalAccountRef struct {
	Integration IntegrationID
	ExternalID  string
	DisplayName string
	// Detail is optional context shown next to the name when prompting (e.g. a URL).
	Detail string
}

// AccountMapping is one confirmed pairing of an external account with a ledger account.
type AccountMapping struct {
	ID              int64
	Integration     IntegrationID
	LedgerAccountID LedgerAccountID
	ExternalID      string
	ExternalName    string
	CreatedAt       time.Time
}

// IndexMappings builds the lookup used by the importer, keyed by the side of
// the mapping that the integration's transactions reference.
func IndexMappings(mappings []AccountMapping, key AccountKey) map[string]LedgerAccountID {
	index := make(map[string]LedgerAccountID, len(mappings))
	for _, m := range mappings {
		k := m.ExternalID
		if key == KeyByExternalName {
			k = m.ExternalName
		}
		index[k] = m.LedgerAccountID
	}
	return index
}

// MissingName is shown in reports for a side of a mapping that no longer exists.
const MissingName = "<missing>"

// MappingReportRow describes one persisted mapping as it looks against the
// current ledger and external account lists.
type MappingReportRow struct {
	LedgerName   string
	ExternalName string
	Mapping      AccountMapping
}

// MappingReport is the informational diff shown before reconciliation.
type MappingReport struct {
	Rows     []MappingReportRow
	Unmapped []ExternalAccountRef
}

// BuildMappingReport diffs existing mappings against the live ledger accounts
// and the currently observed external accounts. Both sides are joined by ID.
func BuildMappingReport(existing []AccountMapping, ledgerAccounts []LedgerAccount, external []ExternalAccountRef) MappingReport {
	ledgerByID := make(map[LedgerAccountID]LedgerAccount, len(ledgerAccounts))
	for _, a := range ledgerAccounts {
		ledgerByID[a.ID] = a
	}
	externalByID := make(map[string]ExternalAccountRef, len(external))
	for _, e := range external {
		externalByID[e.ExternalID] = e
	}

	matched := make(map[string]bool, len(existing))
	report := MappingReport{Rows: make([]MappingReportRow, 0, len(existing))}
	for _, m := range existing {
		row := MappingReportRow{LedgerName: MissingName, ExternalName: MissingName, Mapping: m}
		if la, ok := ledgerByID[m.LedgerAccountID]; ok {
			row.LedgerName = la.Label()
		}
		if ea, ok := externalByID[m.ExternalID]; ok {
			row.ExternalName = ea.DisplayName
			matched[ea.ExternalID] = true
		}
		report.Rows = append(report.Rows, row)
	}

	for _, e := range external {
		if !matched[e.ExternalID] {
			report.Unmapped = append(report.Unmapped, e)
		}
	}
	return report
}
