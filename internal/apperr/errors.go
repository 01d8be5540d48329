package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrNoData = errors.New("no data available from any source")
	ErrFetch  = errors.New("fetch failed")
	ErrSchema = errors.New("schema mismatch")
	ErrParse  = errors.New("parse failed")
)

// FetchError reports a source that could not be retrieved. The pipeline
// degrades that source to an empty table and keeps going.
type FetchError struct {
	Source string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d: %v", e.Source, e.Status, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) Is(target error) bool { return target == ErrFetch }

// SchemaError reports a column that could not be resolved against the
// headers of a source.
type SchemaError struct {
	Source   string
	Column   string
	Required bool
}

func (e *SchemaError) Error() string {
	kind := "optional"
	if e.Required {
		kind = "required"
	}
	return fmt.Sprintf("%s: %s column %q not found", e.Source, kind, e.Column)
}

func (e *SchemaError) Is(target error) bool { return target == ErrSchema }

// ParseError reports a cell that failed coercion. It is recovered at cell
// granularity by substituting a sentinel value.
type ParseError struct {
	Source string
	Column string
	Row    int
	RowKey string
	Value  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: row %d (%s): cannot parse %q in column %q", e.Source, e.Row, e.RowKey, e.Value, e.Column)
}

func (e *ParseError) Is(target error) bool { return target == ErrParse }

// IsNoData reports whether err signals that neither source produced data.
func IsNoData(err error) bool {
	return errors.Is(err, ErrNoData)
}
