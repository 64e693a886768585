package feature

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingSource marks a required raw log or feature file that is absent
// or unreadable. Surfaced before aggregation proceeds.
var ErrMissingSource = errors.New("missing source")

// SchemaError reports every required column absent from an input table, so
// the caller sees the full list in one message.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("CSV missing required columns: %s", strings.Join(e.Missing, ", "))
}
