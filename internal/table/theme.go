package table

import "strings"

// Theme holds presentation settings for rendered cells. It is passed to
// Build and Render explicitly.
type Theme struct {
	CurrencySymbol   string
	CurrencyDecimals int

	// DateLayout is the time layout used for RenderDate output.
	DateLayout string

	// StatusClasses maps a lowercased status value to a CSS class.
	StatusClasses      map[string]string
	DefaultStatusClass string

	// StatusColors maps a lowercased status value to a terminal colour.
	StatusColors map[string]string

	TrueLabel  string
	FalseLabel string

	// EmptyText is shown for missing values.
	EmptyText string

	CellClass string
	LinkClass string
}

// DefaultTheme returns the dashboard's standard theme.
func DefaultTheme() Theme {
	return Theme{
		CurrencySymbol:   "KES ",
		CurrencyDecimals: 2,
		DateLayout:       "02 Jan 2006",
		StatusClasses: map[string]string{
			"active":    "status-active",
			"approved":  "status-active",
			"paid":      "status-active",
			"pending":   "status-pending",
			"submitted": "status-pending",
			"inactive":  "status-inactive",
			"suspended": "status-inactive",
			"rejected":  "status-rejected",
			"expired":   "status-rejected",
		},
		DefaultStatusClass: "status-default",
		StatusColors: map[string]string{
			"active":    "#8BC34A",
			"approved":  "#8BC34A",
			"paid":      "#8BC34A",
			"pending":   "#F9A825",
			"submitted": "#F9A825",
			"inactive":  "#9E9E9E",
			"suspended": "#9E9E9E",
			"rejected":  "#E53935",
			"expired":   "#E53935",
		},
		TrueLabel:  "Yes",
		FalseLabel: "No",
		EmptyText:  "-",
		CellClass:  "cell",
		LinkClass:  "cell-link",
	}
}

// StatusClass returns the CSS class for a status value.
func (t Theme) StatusClass(status string) string {
	if c, ok := t.StatusClasses[strings.ToLower(strings.TrimSpace(status))]; ok {
		return c
	}
	return t.DefaultStatusClass
}

// StatusColor returns the terminal colour for a status value, or "".
func (t Theme) StatusColor(status string) string {
	return t.StatusColors[strings.ToLower(strings.TrimSpace(status))]
}
