package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/JonMunkholm/coverdesk/internal/logging"
)

// ResponseType selects how a response body is decoded.
type ResponseType int

const (
	// ResponseAuto picks a strategy from the Content-Type header.
	ResponseAuto ResponseType = iota
	ResponseJSON
	ResponseText
	ResponseBlob
)

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 32 << 20

// errUnexpectedType is recorded when the body cannot be stored in T.
var errUnexpectedType = errors.New("response body does not fit the requested type")

// RequestOptions tunes a single request.
type RequestOptions struct {
	// Query parameters. nil values, nil pointers and empty strings are
	// dropped; slices add one pair per element.
	Query map[string]any

	// Body is sent as-is for io.Reader, []byte and url.Values (as a form);
	// anything else is encoded as JSON.
	Body any

	Header http.Header

	ResponseType ResponseType
}

// Response wraps a decoded 2xx response.
type Response[T any] struct {
	Data       T
	Status     int
	StatusText string
	Header     http.Header

	// ParseErr is set when the body could not be decoded into T. Data then
	// holds the result of decoding an empty JSON object.
	ParseErr error
}

// Request performs an HTTP request against the backend and decodes the
// response into T. Non-2xx responses return an *APIError. A 401 or 403
// from anything but the login endpoint also clears the session and
// redirects to the login route.
func Request[T any](ctx context.Context, c *Client, method, endpoint string, opts *RequestOptions) (*Response[T], error) {
	if opts == nil {
		opts = &RequestOptions{}
	}
	method = strings.ToUpper(method)
	log := logging.FromContext(ctx)

	path, rawQuery, _ := strings.Cut(endpoint, "?")
	path = c.normalize(path)

	u := *c.base
	u.Path = strings.TrimRight(c.base.Path, "/") + path
	u.RawQuery = encodeQuery(rawQuery, opts.Query)

	body, contentType, err := encodeBody(opts.Body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for k, vs := range opts.Header {
		req.Header[http.CanonicalHeaderKey(k)] = vs
	}

	if needsCSRF(method) {
		tok, err := c.CSRFToken(ctx)
		if err != nil {
			return nil, fmt.Errorf("csrf token: %w", err)
		}
		req.Header.Set(c.cfg.CSRFHeader, tok)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		c.metrics.ObserveRequest(method, 0, elapsed)
		log.Error("api request failed", "method", method, "path", path, "error", err)
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	c.metrics.ObserveRequest(method, resp.StatusCode, elapsed)

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%s %s: read body: %w", method, path, err)
	}

	log.Debug("api request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration_ms", elapsed.Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := newAPIError(resp, data)
		if (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) &&
			path != c.normalize(c.cfg.LoginEndpoint) {
			log.Info("backend rejected session", "status", resp.StatusCode, "path", path)
			c.handleAuthFailure(ctx)
		}
		return nil, apiErr
	}

	out := &Response[T]{
		Status:     resp.StatusCode,
		StatusText: statusText(resp),
		Header:     resp.Header,
	}
	out.ParseErr = decode(data, resp.Header.Get("Content-Type"), opts.ResponseType, &out.Data)
	if out.ParseErr != nil {
		log.Warn("api response not decodable", "path", path, "error", out.ParseErr)
	}
	return out, nil
}

// Get issues a GET with optional query parameters.
func Get[T any](ctx context.Context, c *Client, endpoint string, query map[string]any) (*Response[T], error) {
	return Request[T](ctx, c, http.MethodGet, endpoint, &RequestOptions{Query: query})
}

// Post issues a POST with a JSON body.
func Post[T any](ctx context.Context, c *Client, endpoint string, body any) (*Response[T], error) {
	return Request[T](ctx, c, http.MethodPost, endpoint, &RequestOptions{Body: body})
}

// Put issues a PUT with a JSON body.
func Put[T any](ctx context.Context, c *Client, endpoint string, body any) (*Response[T], error) {
	return Request[T](ctx, c, http.MethodPut, endpoint, &RequestOptions{Body: body})
}

// Patch issues a PATCH with a JSON body.
func Patch[T any](ctx context.Context, c *Client, endpoint string, body any) (*Response[T], error) {
	return Request[T](ctx, c, http.MethodPatch, endpoint, &RequestOptions{Body: body})
}

// Delete issues a DELETE.
func Delete[T any](ctx context.Context, c *Client, endpoint string) (*Response[T], error) {
	return Request[T](ctx, c, http.MethodDelete, endpoint, nil)
}

func encodeBody(body any) (io.Reader, string, error) {
	switch b := body.(type) {
	case nil:
		return nil, "", nil
	case io.Reader:
		return b, "", nil
	case []byte:
		return bytes.NewReader(b), "application/json", nil
	case json.RawMessage:
		return bytes.NewReader(b), "application/json", nil
	case url.Values:
		return strings.NewReader(b.Encode()), "application/x-www-form-urlencoded", nil
	default:
		data, err := json.Marshal(body)
		if err != nil {
			return nil, "", fmt.Errorf("encode request body: %w", err)
		}
		return bytes.NewReader(data), "application/json", nil
	}
}

// encodeQuery merges params into an existing raw query.
func encodeQuery(rawQuery string, params map[string]any) string {
	vals, _ := url.ParseQuery(rawQuery)
	if vals == nil {
		vals = url.Values{}
	}
	for k, v := range params {
		addQueryValue(vals, k, v)
	}
	return vals.Encode()
}

func addQueryValue(vals url.Values, key string, v any) {
	if v == nil {
		return
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return
		}
		addQueryValue(vals, key, rv.Elem().Interface())
		return
	case reflect.Slice, reflect.Array:
		if _, ok := v.([]byte); !ok {
			for i := 0; i < rv.Len(); i++ {
				addQueryValue(vals, key, rv.Index(i).Interface())
			}
			return
		}
	}

	var s string
	switch x := v.(type) {
	case string:
		s = x
	case []byte:
		s = string(x)
	case bool:
		s = strconv.FormatBool(x)
	case fmt.Stringer:
		s = x.String()
	default:
		s = fmt.Sprint(x)
	}
	if s == "" {
		return
	}
	vals.Add(key, s)
}

// decode stores body in *dst following rt, or the Content-Type when rt is
// ResponseAuto. On failure *dst is decoded from "{}" and the error returned.
func decode[T any](body []byte, contentType string, rt ResponseType, dst *T) error {
	if rt == ResponseAuto {
		rt = responseTypeFor(contentType)
	}

	var err error
	switch rt {
	case ResponseJSON:
		if len(bytes.TrimSpace(body)) == 0 {
			// No content is not a contract violation.
			fallback(dst)
			return nil
		}
		if err = json.Unmarshal(body, dst); err == nil {
			return nil
		}
	case ResponseText:
		if assignBytes(dst, body, true) {
			return nil
		}
		err = errUnexpectedType
	default:
		if assignBytes(dst, body, false) {
			return nil
		}
		err = errUnexpectedType
	}

	fallback(dst)
	return err
}

func fallback[T any](dst *T) {
	var zero T
	*dst = zero
	_ = json.Unmarshal([]byte("{}"), dst)
}

// assignBytes stores raw body bytes in dst when its type can hold them.
func assignBytes[T any](dst *T, body []byte, text bool) bool {
	switch d := any(dst).(type) {
	case *string:
		*d = string(body)
	case *[]byte:
		*d = body
	case *json.RawMessage:
		if text {
			return false
		}
		*d = body
	case *any:
		if text {
			*d = string(body)
		} else {
			*d = body
		}
	default:
		return false
	}
	return true
}

func responseTypeFor(contentType string) ResponseType {
	if contentType == "" {
		return ResponseJSON
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ResponseJSON
	}
	switch {
	case mt == "application/json" || strings.HasSuffix(mt, "+json"):
		return ResponseJSON
	case strings.HasPrefix(mt, "text/"):
		return ResponseText
	default:
		return ResponseBlob
	}
}
