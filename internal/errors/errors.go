// Package errors defines the closed set of error types produced by an
// analysis run. Data-format problems are fatal to the run, per-group
// insufficiency is a warning-level condition the caller may inspect,
// and output failures affect the save step only.
package errors

import (
	"errors"
	"fmt"
)

// DataFormatError indicates the input file was missing, unreadable, or
// yielded zero usable rows after cleaning. It is fatal to the analysis
// run that encountered it.
type DataFormatError struct {
	Path   string
	Reason string
	Err    error
}

// Error implements the error interface
func (e *DataFormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("data format error in %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("data format error in %s: %s", e.Path, e.Reason)
}

// Unwrap returns the underlying cause, if any
func (e *DataFormatError) Unwrap() error {
	return e.Err
}

// NewDataFormatError creates a DataFormatError for the given file
func NewDataFormatError(path, reason string, err error) *DataFormatError {
	return &DataFormatError{Path: path, Reason: reason, Err: err}
}

// InsufficientDataError reports a temperature group that could not be
// fitted. It is never fatal: the group is skipped and the run continues.
type InsufficientDataError struct {
	Temperature      float64
	Points           int
	DistinctVoltages int
}

// Error implements the error interface
func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data for temperature %.0f K: %d points, %d distinct voltages",
		e.Temperature, e.Points, e.DistinctVoltages)
}

// OutputError indicates a failure writing plots, reports, or CSV files.
// Already-computed in-memory results remain valid.
type OutputError struct {
	Path string
	Op   string
	Err  error
}

// Error implements the error interface
func (e *OutputError) Error() string {
	return fmt.Sprintf("output %s failed for %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying cause
func (e *OutputError) Unwrap() error {
	return e.Err
}

// NewOutputError creates an OutputError for the given path and operation
func NewOutputError(path, op string, err error) *OutputError {
	return &OutputError{Path: path, Op: op, Err: err}
}

// IsDataFormat reports whether err is (or wraps) a DataFormatError
func IsDataFormat(err error) bool {
	var dfe *DataFormatError
	return errors.As(err, &dfe)
}

// IsInsufficientData reports whether err is (or wraps) an InsufficientDataError
func IsInsufficientData(err error) bool {
	var ide *InsufficientDataError
	return errors.As(err, &ide)
}

// IsOutput reports whether err is (or wraps) an OutputError
func IsOutput(err error) bool {
	var oe *OutputError
	return errors.As(err, &oe)
}
