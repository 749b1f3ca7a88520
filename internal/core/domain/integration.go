package domain

// IntegrationID names an external source system. It namespaces account
// mappings within the shared mapping table.
type IntegrationID string

const (
	MoneyForward IntegrationID = "money-forward"
	Revolut      IntegrationID = "revolut"
)

// Integrations lists every supported integration in the order a full sync runs them.
var Integrations = []IntegrationID{MoneyForward, Revolut}

// Valid reports whether id is a known integration.
func (id IntegrationID) Valid() bool {
	for _, known := range Integrations {
		if id == known {
			return true
		}
	}
	return false
}

// AccountKey selects which side of an AccountMapping a transaction's
// ExternalAccountRef is matched against.
type AccountKey string

const (
	KeyByExternalID   AccountKey = "external_id"
	KeyByExternalName AccountKey = "external_name"
)
