package importer

// checks.go holds format checks for common field kinds. They accept blank
// values; presence is the required-field check's job.

import (
	"fmt"
	"net/mail"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)$`)

// TwoDigitYearPivot: two-digit years more than this many years in the
// future are read as the previous century.
const TwoDigitYearPivot = 20

var (
	fourDigitYearLayouts = []string{
		"2006-01-02", "2006/01/02", "02/01/2006", "2/1/2006", "02-01-2006",
		"02.01.2006", "2 Jan 2006", "02 Jan 2006", "Jan 2, 2006", "20060102",
	}
	twoDigitYearLayouts = []string{"02/01/06", "2/1/06", "02-01-06", "02.01.06"}
)

// ParseDate parses the date formats seen in member and claim exports.
// Slash and dash dates are day first.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range fourDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	pivot := time.Now().Year() + TwoDigitYearPivot
	for _, layout := range twoDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			if t.Year() > pivot {
				t = t.AddDate(-100, 0, 0)
			}
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseAmount parses a money value, tolerating a currency prefix,
// thousands separators and accounting negatives such as "(1,200.00)".
func ParseAmount(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	upper := strings.ToUpper(s)
	for _, sym := range []string{"KES", "KSH", "USD", "$", "€", "£"} {
		if strings.HasPrefix(upper, sym) {
			s = s[len(sym):]
			break
		}
	}
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))

	if !numericRegex.MatchString(s) {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if negative {
		v = -v
	}
	return v, true
}

// ParseBool accepts true/false, yes/no, t/f, y/n and 1/0.
func ParseBool(s string) (value, ok bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "t", "yes", "y", "1":
		return true, true
	case "false", "f", "no", "n", "0":
		return false, true
	default:
		return false, false
	}
}

// formatCheck builds a RowCheck that reports msg when valid rejects a
// non-blank value of field.
func formatCheck(field, msg string, valid func(string) bool) RowCheck {
	return func(line int, row Row) []ValidationError {
		v := strings.TrimSpace(row.Value(field))
		if v == "" || valid(v) {
			return nil
		}
		return []ValidationError{{
			Row:     line,
			Field:   field,
			Message: fmt.Sprintf("%s %s", field, msg),
		}}
	}
}

// DateField checks that field holds a recognisable date.
func DateField(field string) RowCheck {
	return formatCheck(field, "is not a valid date (use YYYY-MM-DD)", func(v string) bool {
		_, ok := ParseDate(v)
		return ok
	})
}

// AmountField checks that field holds a money value.
func AmountField(field string) RowCheck {
	return formatCheck(field, "is not a valid amount", func(v string) bool {
		_, ok := ParseAmount(v)
		return ok
	})
}

// BoolField checks that field holds a yes/no value.
func BoolField(field string) RowCheck {
	return formatCheck(field, "must be yes/no, true/false or 1/0", func(v string) bool {
		_, ok := ParseBool(v)
		return ok
	})
}

// EmailField checks that field holds a single email address.
func EmailField(field string) RowCheck {
	return formatCheck(field, "is not a valid email address", func(v string) bool {
		addr, err := mail.ParseAddress(v)
		return err == nil && addr.Address == v
	})
}
