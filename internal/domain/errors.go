package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedArchive marks a raw table that matches no known header layout
	// or carries an unparseable row label.
	ErrMalformedArchive = errors.New("malformed archive")

	// ErrSchemaMismatch marks a yearly table missing a common-station column.
	ErrSchemaMismatch = errors.New("schema mismatch")

	// ErrYearNotFound is returned when an aggregate is asked for a year it does not hold.
	ErrYearNotFound = errors.New("year not found")
)

// MalformedArchiveError describes why a raw table could not be cleaned.
type MalformedArchiveError struct {
	Year   int
	Reason string
}

func (e *MalformedArchiveError) Error() string {
	return fmt.Sprintf("malformed archive for %d: %s", e.Year, e.Reason)
}

func (e *MalformedArchiveError) Unwrap() error { return ErrMalformedArchive }

// SchemaMismatchError names the year and station code that broke the merge.
type SchemaMismatchError struct {
	Year int
	Code string
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("schema mismatch: year %d has no column for station %q", e.Year, e.Code)
}

func (e *SchemaMismatchError) Unwrap() error { return ErrSchemaMismatch }
