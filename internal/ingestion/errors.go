package ingestion

import "fmt"

// ValidationError reports an ingested record that cannot be accepted. Ingestion is aborted
// and nothing is returned when one occurs.
type ValidationError struct {
	// Record is the 1-based record (or CSV data row) number, 0 when the whole document is at fault.
	Record  int
	Field   string
	Message string
	Cause   error
}

func (e *ValidationError) Error() string {
	msg := e.Message
	if e.Field != "" {
		msg = e.Field + ": " + msg
	}
	if e.Record > 0 {
		msg = fmt.Sprintf("record %d: %s", e.Record, msg)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}
