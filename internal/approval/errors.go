package approval

import (
	"errors"
	"fmt"

	"github.com/avisanghavi/clout/internal/db"
)

// ValidationError represents an invalid review request
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func isNotFound(err error) bool {
	return errors.Is(err, db.ErrNotFound)
}
