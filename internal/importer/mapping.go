package importer

// FieldMapping translates external column headers to canonical field keys.
// Several spellings may map to the same key.
type FieldMapping map[string]string

// MapHeaders returns the canonical key for each header, in order.
// Headers without an entry pass through unchanged. Collisions are not
// deduplicated.
func MapHeaders(headers []string, mapping FieldMapping) []string {
	out := make([]string, len(headers))
	for i, h := range headers {
		if key, ok := mapping[h]; ok {
			out[i] = key
			continue
		}
		out[i] = h
	}
	return out
}

// Merge returns a new mapping with the entries of other layered over m.
func (m FieldMapping) Merge(other FieldMapping) FieldMapping {
	out := make(FieldMapping, len(m)+len(other))
	for k, v := range m {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}
