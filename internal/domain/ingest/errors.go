package ingest

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel kinds for ingest errors. These allow errors.Is/As from callers.
var (
	ErrValidation = errors.New("validation failed")
)

// ValidationError reports why an input file was refused as a whole.
// Row-level problems that still leave valid rows are reported as warnings
// on the Result instead.
type ValidationError struct {
	Reason  string     // short human-readable cause
	Missing []string   // required columns absent from the header
	Issues  []RowIssue // row problems seen before the file was refused
}

func (e *ValidationError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("%s: missing required columns: %s", ErrValidation, strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("%s: %s", ErrValidation, e.Reason)
}

// Unwrap exposes ErrValidation to errors.Is.
func (e *ValidationError) Unwrap() error { return ErrValidation }

// RowIssue describes a problem with a single data row.
type RowIssue struct {
	Row      int    `json:"row"`    // 1-based data row, header excluded
	Column   string `json:"column"` // offending column, empty for whole-row issues
	Reason   string `json:"reason"`
	Rejected bool   `json:"rejected"` // true when the row was dropped
}

func (i RowIssue) String() string {
	action := "kept"
	if i.Rejected {
		action = "rejected"
	}
	if i.Column == "" {
		return fmt.Sprintf("row %d %s: %s", i.Row, action, i.Reason)
	}
	return fmt.Sprintf("row %d %s: %s %s", i.Row, action, i.Column, i.Reason)
}
