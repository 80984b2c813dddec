package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// APIError is returned for any non-2xx response.
type APIError struct {
	Status     int
	StatusText string

	// Message is a human-readable summary taken from the body when it has
	// one, else the status text.
	Message string

	// Details holds the body's "details" or "errors" member, if any.
	Details json.RawMessage

	// Response is the raw response body.
	Response []byte
}

func (e *APIError) Error() string {
	if e.Message != "" && e.Message != e.StatusText {
		return fmt.Sprintf("api: %d %s: %s", e.Status, e.StatusText, e.Message)
	}
	return fmt.Sprintf("api: %d %s", e.Status, e.StatusText)
}

// FieldErrors returns per-field messages from the body. Both shapes the
// backend uses are understood:
//
//	{"email": ["already exists"]}
//	{"details": {"email": "already exists"}}
func (e *APIError) FieldErrors() map[string][]string {
	src := gjson.ParseBytes(e.Response)
	if len(e.Details) > 0 {
		src = gjson.ParseBytes(e.Details)
	}
	if !src.IsObject() {
		return nil
	}

	out := make(map[string][]string)
	src.ForEach(func(key, value gjson.Result) bool {
		k := key.String()
		if isMessageKey(k) {
			return true
		}
		switch {
		case value.IsArray():
			for _, item := range value.Array() {
				if s := item.String(); s != "" {
					out[k] = append(out[k], s)
				}
			}
		case value.Type == gjson.String:
			out[k] = append(out[k], value.Str)
		}
		return true
	})
	if len(out) == 0 {
		return nil
	}
	return out
}

func isMessageKey(k string) bool {
	switch k {
	case "detail", "message", "error", "status", "code":
		return true
	}
	return false
}

// IsUnauthorized reports whether err is a 401 or 403 APIError.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) &&
		(apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden)
}

// IsNotFound reports whether err is a 404 APIError.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

func newAPIError(resp *http.Response, body []byte) *APIError {
	e := &APIError{
		Status:     resp.StatusCode,
		StatusText: statusText(resp),
		Response:   body,
	}

	if gjson.ValidBytes(body) {
		doc := gjson.ParseBytes(body)
		for _, p := range []string{"detail", "message", "error", "non_field_errors.0"} {
			if v := doc.Get(p); v.Type == gjson.String && v.Str != "" {
				e.Message = v.Str
				break
			}
		}
		for _, p := range []string{"details", "errors"} {
			if v := doc.Get(p); v.Exists() && v.Type != gjson.Null {
				e.Details = json.RawMessage(v.Raw)
				break
			}
		}
	} else if text := strings.TrimSpace(string(body)); text != "" && len(text) <= 200 {
		e.Message = text
	}

	if e.Message == "" {
		e.Message = e.StatusText
	}
	return e
}

func statusText(resp *http.Response) string {
	if text := strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)+" "); text != "" && text != resp.Status {
		return text
	}
	return http.StatusText(resp.StatusCode)
}
