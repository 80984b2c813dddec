package table

import (
	"cmp"
	"slices"
	"strings"

	"github.com/tidwall/gjson"
)

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection returns Desc for "desc" (any case) and Asc otherwise.
func ParseDirection(s string) Direction {
	if strings.EqualFold(strings.TrimSpace(s), string(Desc)) {
		return Desc
	}
	return Asc
}

// SortKey is one field of a multi-key sort.
type SortKey struct {
	Field string
	Dir   Direction
}

// Filter keeps the records where any column's value contains term,
// ignoring case. An empty term returns records as is.
func Filter(records []Record, columns []Column, term string) []Record {
	if term == "" {
		return records
	}
	term = strings.ToLower(term)

	out := make([]Record, 0, len(records))
	for _, rec := range records {
		for _, col := range columns {
			if strings.Contains(strings.ToLower(rec.Text(col.Key)), term) {
				out = append(out, rec)
				break
			}
		}
	}
	return out
}

// Sort returns a stably sorted copy of records ordered by field.
// Missing and null values sort last in both directions.
func Sort(records []Record, field string, dir Direction) []Record {
	if field == "" {
		return slices.Clone(records)
	}
	return SortBy(records, SortKey{Field: field, Dir: dir})
}

// SortBy sorts a copy of records by several keys; later keys break ties
// left by earlier ones, and full ties keep input order.
func SortBy(records []Record, keys ...SortKey) []Record {
	type keyed struct {
		rec  Record
		vals []sortValue
	}

	items := make([]keyed, len(records))
	for i, rec := range records {
		vals := make([]sortValue, len(keys))
		for k, key := range keys {
			vals[k] = normalize(rec.Lookup(key.Field))
		}
		items[i] = keyed{rec: rec, vals: vals}
	}

	slices.SortStableFunc(items, func(a, b keyed) int {
		for k, key := range keys {
			if c := compareValues(a.vals[k], b.vals[k], key.Dir); c != 0 {
				return c
			}
		}
		return 0
	})

	out := make([]Record, len(items))
	for i, it := range items {
		out[i] = it.rec
	}
	return out
}

type valueKind int

const (
	kindNumber valueKind = iota
	kindString
	kindMissing
)

type sortValue struct {
	kind valueKind
	num  float64
	str  string
}

// normalize maps a JSON value to its sort form: numbers stay numeric,
// booleans become 0/1, strings and anything else compare lowercased.
func normalize(v gjson.Result) sortValue {
	switch v.Type {
	case gjson.Null:
		return sortValue{kind: kindMissing}
	case gjson.Number:
		return sortValue{kind: kindNumber, num: v.Num}
	case gjson.True:
		return sortValue{kind: kindNumber, num: 1}
	case gjson.False:
		return sortValue{kind: kindNumber, num: 0}
	case gjson.String:
		return sortValue{kind: kindString, str: strings.ToLower(v.Str)}
	default:
		return sortValue{kind: kindString, str: strings.ToLower(v.Raw)}
	}
}

func compareValues(a, b sortValue, dir Direction) int {
	// Missing is last regardless of direction.
	switch {
	case a.kind == kindMissing && b.kind == kindMissing:
		return 0
	case a.kind == kindMissing:
		return 1
	case b.kind == kindMissing:
		return -1
	}

	var c int
	switch {
	case a.kind != b.kind:
		c = cmp.Compare(a.kind, b.kind)
	case a.kind == kindNumber:
		c = cmp.Compare(a.num, b.num)
	default:
		c = strings.Compare(a.str, b.str)
	}
	if dir == Desc {
		return -c
	}
	return c
}

// Paginate returns the 1-based page of items: the half-open slice
// [(page-1)*size, page*size). Out of range pages and non-positive
// arguments give an empty slice. The page is not clamped.
func Paginate[T any](items []T, page, size int) []T {
	if page < 1 || size < 1 {
		return []T{}
	}
	if page-1 > (len(items)-1)/size || len(items) == 0 {
		return []T{}
	}
	start := (page - 1) * size
	end := min(start+size, len(items))
	return items[start:end:end]
}

// TotalPages is the number of pages needed for n items, at least 1.
func TotalPages(n, size int) int {
	if size < 1 || n <= 0 {
		return 1
	}
	return (n + size - 1) / size
}
