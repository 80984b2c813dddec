package importer

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadText reads an uploaded file as text.
//
// A leading UTF-8 BOM (added by Excel and other Windows tools) is dropped
// and invalid UTF-8 sequences are replaced with '?'. When limit is positive,
// content longer than limit bytes fails with ErrFileTooLarge regardless of
// the size the client claimed.
func ReadText(r io.Reader, limit int64) (string, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		if _, err := br.Discard(len(utf8BOM)); err != nil {
			return "", fmt.Errorf("read file: %w", err)
		}
	}

	var src io.Reader = br
	if limit > 0 {
		src = io.LimitReader(br, limit+1)
	}

	data, err := io.ReadAll(src)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	if limit > 0 && int64(len(data)) > limit {
		return "", ErrFileTooLarge
	}

	return strings.ToValidUTF8(string(data), "?"), nil
}
