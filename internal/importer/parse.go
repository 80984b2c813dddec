package importer

import "strings"

// Parse turns delimited text into rows keyed by the raw header names.
// See [ParseTable] for the exact rules.
func Parse(text string) []Row {
	_, rows := ParseTable(text, nil)
	return rows
}

// ParseWithMapping parses text and rewrites headers through mapping.
func ParseWithMapping(text string, mapping FieldMapping) []Row {
	_, rows := ParseTable(text, mapping)
	return rows
}

// ParseTable parses text into the (mapped) header row and the data rows.
//
// Lines are split on "\n" with an optional preceding "\r"; lines that are
// blank after trimming are discarded. The first remaining line is the
// header. With fewer than two non-blank lines there is no data and rows is
// empty. Each data row gets one entry per header: missing trailing fields
// become "", extra fields are ignored. When two headers map to the same key
// the later column's value wins.
//
// Lines are split before quotes are considered, so quoted fields cannot
// span lines.
func ParseTable(text string, mapping FieldMapping) (headers []string, rows []Row) {
	lines := splitLines(text)
	if len(lines) == 0 {
		return nil, nil
	}

	headers = MapHeaders(SplitFields(lines[0]), mapping)
	if len(lines) < 2 {
		return headers, nil
	}

	rows = make([]Row, 0, len(lines)-1)
	for _, line := range lines[1:] {
		values := SplitFields(line)
		var row Row
		for i, h := range headers {
			v := ""
			if i < len(values) {
				v = values[i]
			}
			row.Set(h, v)
		}
		rows = append(rows, row)
	}
	return headers, rows
}

// splitLines returns the non-blank lines of text.
func splitLines(text string) []string {
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// SplitFields splits one line on commas that are outside double quotes.
// A quote toggles quoted state; a doubled quote inside a quoted field is a
// literal quote. Every field is trimmed of surrounding whitespace.
func SplitFields(line string) []string {
	var (
		fields   []string
		cur      strings.Builder
		inQuotes bool
	)

	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '"':
			if inQuotes && i+1 < len(line) && line[i+1] == '"' {
				cur.WriteByte('"')
				i++
				continue
			}
			inQuotes = !inQuotes
		case c == ',' && !inQuotes:
			fields = append(fields, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteByte(c)
		}
	}

	return append(fields, strings.TrimSpace(cur.String()))
}
