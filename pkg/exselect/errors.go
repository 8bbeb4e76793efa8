package exselect

import (
	"errors"
	"fmt"
)

// ErrFileNotFound indicates the input file does not exist.
var ErrFileNotFound = errors.New("file not found")

// ErrInvalidFormat indicates the input file is not a valid xlsx format.
var ErrInvalidFormat = errors.New("invalid xlsx format")

// ErrMalformedInput indicates the sheet lacks a header row or any data rows.
var ErrMalformedInput = errors.New("spreadsheet needs a header row and at least one data row")

// ErrTooLarge indicates the uploaded payload exceeds the configured limit.
var ErrTooLarge = errors.New("spreadsheet exceeds size limit")

// ErrNothingSelected indicates an export was requested with an empty selection.
var ErrNothingSelected = errors.New("no rows selected")

// ErrNoValidRows indicates every selected index was stale.
var ErrNoValidRows = errors.New("no valid selected rows")

// ErrNoDataset indicates an operation that needs a loaded dataset ran without one.
var ErrNoDataset = errors.New("no dataset loaded")

// DecodeError represents an error while decoding an uploaded spreadsheet.
type DecodeError struct {
	Name  string
	Stage string // "read", "open", "rows"
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode error in %q (%s): %v", e.Name, e.Stage, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// NewDecodeError creates a new DecodeError.
func NewDecodeError(name, stage string, err error) *DecodeError {
	return &DecodeError{
		Name:  name,
		Stage: stage,
		Err:   err,
	}
}
