package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"

	"github.com/JonMunkholm/coverdesk/internal/table"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#9E9E9E"))
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#5C6BC0"))
)

// renderGrid draws a bordered table. style, when non-nil, decorates data
// cells; row is 0-based.
func renderGrid(headers []string, rows [][]string, style func(row, col int, s lipgloss.Style) lipgloss.Style) string {
	t := ltable.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == ltable.HeaderRow {
				return headerStyle
			}
			if style != nil {
				return style(row, col, cellStyle)
			}
			return cellStyle
		})
	return t.Render()
}

// renderView draws one page of an entity table with a summary line. The
// status column is coloured from the theme unless color is false.
func renderView(v table.View, statusField string, theme table.Theme, color bool) string {
	headers := make([]string, len(v.Headers))
	statusCol := -1
	for i, h := range v.Headers {
		label := h.Label
		switch h.Sorted {
		case table.Asc:
			label += " ▲"
		case table.Desc:
			label += " ▼"
		}
		headers[i] = label
		if h.Key == statusField && statusField != "" {
			statusCol = i
		}
	}

	rows := make([][]string, len(v.Rows))
	for i, r := range v.Rows {
		cells := make([]string, len(r.Cells))
		for j, c := range r.Cells {
			cells[j] = c.Text
		}
		rows[i] = cells
	}

	style := func(row, col int, s lipgloss.Style) lipgloss.Style {
		if row < 0 || row >= len(v.Rows) {
			return s
		}
		if col < len(v.Headers) && v.Headers[col].Align == table.AlignRight {
			s = s.Align(lipgloss.Right)
		}
		if col < len(v.Rows[row].Cells) && v.Rows[row].Cells[col].Empty {
			return s.Inherit(mutedStyle)
		}
		if color && col == statusCol {
			if c := theme.StatusColor(v.Rows[row].Status); c != "" {
				return s.Foreground(lipgloss.Color(c))
			}
		}
		return s
	}

	var sb strings.Builder
	if len(rows) == 0 {
		sb.WriteString(mutedStyle.Render("No records found"))
		sb.WriteString("\n")
	} else {
		sb.WriteString(renderGrid(headers, rows, style))
		sb.WriteString("\n")
	}
	sb.WriteString(summary(v))
	sb.WriteString("\n")
	return sb.String()
}

func summary(v table.View) string {
	if v.Filtered == 0 {
		if v.Total > 0 {
			return fmt.Sprintf("No matches (%d total)", v.Total)
		}
		return "No records"
	}
	s := fmt.Sprintf("Showing %d-%d of %d", v.FirstItem, v.LastItem, v.Filtered)
	if v.Filtered != v.Total {
		s += fmt.Sprintf(" (filtered from %d)", v.Total)
	}
	return s + fmt.Sprintf(", page %d of %d", v.Page, v.TotalPages)
}
