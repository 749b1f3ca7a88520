package dto

// ImportResult aggregates the outcome of submitting one integration's transactions.
type ImportResult struct {
	Inserted int
	Skipped  int
	// Unmapped counts transactions dropped because their account was skipped
	// or never mapped during reconciliation.
	Unmapped int
	Batches  int
}

// SyncReport summarises one integration run for the CLI.
type SyncReport struct {
	Integration      string
	Loaded           int
	ValidationErrors int
	Filtered         int
	Mappings         int
	Import           ImportResult
}
