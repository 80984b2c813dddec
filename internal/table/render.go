package table

import (
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// Cell is one rendered value.
type Cell struct {
	Text  string `json:"text"`
	Class string `json:"class,omitempty"`
	Href  string `json:"href,omitempty"`
	Align Align  `json:"align"`
	Empty bool   `json:"empty,omitempty"`
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006",
}

// Render displays one column of one record.
func Render(rec Record, col Column, theme Theme) Cell {
	v := rec.Lookup(col.Key)
	cell := Cell{Align: col.align(), Class: theme.CellClass}

	if !v.Exists() || v.Type == gjson.Null || (v.Type == gjson.String && v.Str == "") {
		cell.Text = theme.EmptyText
		cell.Empty = true
		return cell
	}

	switch col.Renderer {
	case RenderCurrency:
		cell.Text = formatCurrency(v, theme)
	case RenderStatus:
		cell.Text = v.String()
		cell.Class = joinClass(theme.CellClass, theme.StatusClass(cell.Text))
	case RenderLink:
		cell.Text = v.String()
		cell.Href = expandLink(col.LinkPattern, rec)
		cell.Class = joinClass(theme.CellClass, theme.LinkClass)
	case RenderDate:
		cell.Text = formatDate(v.String(), theme.DateLayout)
	case RenderBoolean:
		cell.Text = formatBool(v, theme)
	default:
		cell.Text = v.String()
	}
	return cell
}

// RowClass returns the class a row gets from its status field, or "" when
// no status field is configured.
func RowClass(rec Record, statusField string, theme Theme) string {
	if statusField == "" {
		return ""
	}
	return theme.StatusClass(rec.Text(statusField))
}

func joinClass(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + " " + b
	}
}

func formatCurrency(v gjson.Result, theme Theme) string {
	var f float64
	switch v.Type {
	case gjson.Number:
		f = v.Num
	case gjson.String:
		parsed, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(v.Str), ",", ""), 64)
		if err != nil {
			return v.Str
		}
		f = parsed
	default:
		return v.String()
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return v.String()
	}

	sign := ""
	if f < 0 {
		sign = "-"
		f = -f
	}
	return sign + theme.CurrencySymbol + groupThousands(strconv.FormatFloat(f, 'f', theme.CurrencyDecimals, 64))
}

// groupThousands inserts commas into the integer part of a formatted number.
func groupThousands(s string) string {
	intPart, frac, hasFrac := strings.Cut(s, ".")
	if len(intPart) <= 3 {
		return s
	}

	var b strings.Builder
	lead := len(intPart) % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
	}
	for i := lead; i < len(intPart); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(intPart[i : i+3])
	}
	if hasFrac {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return b.String()
}

func formatDate(s, layout string) string {
	if layout == "" {
		return s
	}
	for _, l := range dateLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t.Format(layout)
		}
	}
	return s
}

func formatBool(v gjson.Result, theme Theme) string {
	var b, ok bool
	switch v.Type {
	case gjson.True, gjson.False:
		b, ok = v.Bool(), true
	case gjson.Number:
		b, ok = v.Num != 0, true
	case gjson.String:
		switch strings.ToLower(strings.TrimSpace(v.Str)) {
		case "true", "yes", "y", "1":
			b, ok = true, true
		case "false", "no", "n", "0":
			b, ok = false, true
		}
	}
	if !ok {
		return v.String()
	}
	if b {
		return theme.TrueLabel
	}
	return theme.FalseLabel
}

var linkPlaceholder = regexp.MustCompile(`\{([^{}]+)\}`)

// expandLink fills {path} placeholders from the record. Values are path
// escaped.
func expandLink(pattern string, rec Record) string {
	if pattern == "" {
		return ""
	}
	return linkPlaceholder.ReplaceAllStringFunc(pattern, func(m string) string {
		return url.PathEscape(rec.Text(m[1 : len(m)-1]))
	})
}
