package importer

import (
	"bytes"
	"encoding/json"
)

// Row is one parsed record: an ordered mapping from canonical field key to
// its string value. Column order follows the file header.
type Row struct {
	keys   []string
	values map[string]string
}

// NewRow builds a row from alternating key, value pairs.
// A trailing key without a value is stored as "".
func NewRow(kv ...string) Row {
	var r Row
	for i := 0; i < len(kv); i += 2 {
		v := ""
		if i+1 < len(kv) {
			v = kv[i+1]
		}
		r.Set(kv[i], v)
	}
	return r
}

// Set stores value under key. Setting an existing key overwrites its value
// but keeps the key at its original position.
func (r *Row) Set(key, value string) {
	if r.values == nil {
		r.values = make(map[string]string)
	}
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// Get returns the value for key and whether the key is present.
func (r Row) Get(key string) (string, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Value returns the value for key, or "" if absent.
func (r Row) Value(key string) string {
	return r.values[key]
}

// Keys returns the field keys in column order.
func (r Row) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Len returns the number of fields.
func (r Row) Len() int {
	return len(r.keys)
}

// Map returns a copy of the row as a plain map.
func (r Row) Map() map[string]string {
	m := make(map[string]string, len(r.values))
	for k, v := range r.values {
		m[k] = v
	}
	return m
}

// MarshalJSON encodes the row as a JSON object, preserving column order.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(r.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
