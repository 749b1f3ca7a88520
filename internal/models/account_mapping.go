package models

import "time"

// AccountMapping is a row of the account_mappings table.
type AccountMapping struct {
	ID          int64     `db:"id"`
	Integration string    `db:"integration"`
	LMID        int64     `db:"lm_id"`
	AccountID   string    `db:"account_id"`
	AccountName string    `db:"account_name"`
	CreatedAt   time.Time `db:"created_at"`
}
