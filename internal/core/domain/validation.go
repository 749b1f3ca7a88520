package domain

import "fmt"

// ValidationError records one field of one input row that failed validation.
// RecordIndex is 1-based within Source.
type ValidationError struct {
	Source      string
	RecordIndex int
	Field       string
	RawValue    string
	Message     string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s:%d - %s: %s (value: %q)", e.Source, e.RecordIndex, e.Field, e.Message, e.RawValue)
}
