package table

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

var (
	// ErrInvalidJSON is returned when a payload is not valid JSON.
	ErrInvalidJSON = errors.New("invalid JSON payload")

	// ErrNotArray is returned when the records path does not hold an array.
	ErrNotArray = errors.New("records path is not an array")
)

// Record is one JSON object from a backend collection.
type Record struct {
	doc gjson.Result
}

// NewRecord wraps a raw JSON document.
func NewRecord(raw string) Record {
	return Record{doc: gjson.Parse(raw)}
}

// RecordsFromJSON extracts the records held at path. An empty path means
// the payload itself is the array. Paginated envelopes are usually read
// with path "results".
func RecordsFromJSON(data []byte, path string) ([]Record, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrInvalidJSON
	}

	res := gjson.ParseBytes(data)
	if path != "" {
		res = res.Get(path)
	}
	if !res.IsArray() {
		return nil, fmt.Errorf("%w: %q", ErrNotArray, path)
	}

	items := res.Array()
	out := make([]Record, len(items))
	for i, item := range items {
		out[i] = Record{doc: item}
	}
	return out, nil
}

// Lookup resolves a dotted path such as "company_detail.company_name".
// A missing segment anywhere along the path yields a result whose Exists
// reports false.
func (r Record) Lookup(path string) gjson.Result {
	return r.doc.Get(path)
}

// Text returns the value at path as a string; missing and null values are "".
func (r Record) Text(path string) string {
	v := r.Lookup(path)
	if !v.Exists() || v.Type == gjson.Null {
		return ""
	}
	return v.String()
}

// Raw returns the record's JSON text.
func (r Record) Raw() string {
	return r.doc.Raw
}

// MarshalJSON returns the record unchanged.
func (r Record) MarshalJSON() ([]byte, error) {
	if r.doc.Raw == "" {
		return []byte("null"), nil
	}
	return []byte(r.doc.Raw), nil
}
