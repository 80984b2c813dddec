package importer

import (
	"bytes"
	"encoding/csv"
)

// SampleCSV builds a template file for an import: a header row of the
// required fields and one placeholder row. Returns nil when there are no
// required fields.
func SampleCSV(required []string) []byte {
	if len(required) == 0 {
		return nil
	}

	placeholder := make([]string, len(required))
	for i, f := range required {
		placeholder[i] = "sample_" + f
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	// Writes to a bytes.Buffer cannot fail.
	_ = w.Write(required)
	_ = w.Write(placeholder)
	w.Flush()
	return buf.Bytes()
}
