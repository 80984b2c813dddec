package importer

// validation.go checks parsed rows before they are offered for upload.
//
// The core check is presence: every required field must carry a non-blank
// value. Format checks (email shape, numeric ranges) are not built in;
// callers add them as RowCheck functions.

import (
	"fmt"
	"slices"
	"strings"
)

// headerRows is the offset between a 0-based data row index and the line
// number a user sees in a spreadsheet: one for the header, one for 1-based
// numbering.
const headerRows = 2

// ValidationError reports one problem with one field of one row.
type ValidationError struct {
	Row     int    `json:"row"`   // 1-based line number in the file, header included
	Field   string `json:"field"` // canonical field key
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("row %d: %s: %s", e.Row, e.Field, e.Message)
	}
	return fmt.Sprintf("row %d: %s", e.Row, e.Message)
}

// LineNumber converts a 0-based data row index to the line number shown to
// users.
func LineNumber(index int) int {
	return index + headerRows
}

// RowCheck is an extra per-row validation. line is the user-facing line
// number of the row.
type RowCheck func(line int, row Row) []ValidationError

// Validate reports every required field that is absent or blank, row by
// row, in required-field order.
func Validate(rows []Row, required []string) []ValidationError {
	return ValidateWith(rows, required)
}

// ValidateWith runs the required-field check followed by any extra checks.
func ValidateWith(rows []Row, required []string, checks ...RowCheck) []ValidationError {
	var errs []ValidationError
	for i, row := range rows {
		line := LineNumber(i)
		for _, field := range required {
			v, ok := row.Get(field)
			if !ok || strings.TrimSpace(v) == "" {
				errs = append(errs, ValidationError{
					Row:     line,
					Field:   field,
					Message: field + " is required",
				})
			}
		}
		for _, check := range checks {
			errs = append(errs, check(line, row)...)
		}
	}
	return errs
}

// OneOf returns a check that accepts blank values or one of allowed
// (case-insensitive) for field.
func OneOf(field string, allowed ...string) RowCheck {
	return func(line int, row Row) []ValidationError {
		v := strings.TrimSpace(row.Value(field))
		if v == "" {
			return nil
		}
		if slices.ContainsFunc(allowed, func(a string) bool { return strings.EqualFold(a, v) }) {
			return nil
		}
		return []ValidationError{{
			Row:     line,
			Field:   field,
			Message: fmt.Sprintf("%s must be one of: %s", field, strings.Join(allowed, ", ")),
		}}
	}
}
