package core

// error_messages.go maps technical errors to messages an administrator can
// act on. Each message carries a code that can be quoted to support.
//
// Codes are grouped by family:
//
//	FILE001-FILE099  file acceptance and reading
//	VAL001-VAL099    row validation
//	API001-API099    backend responses (status-driven)
//	NET001-NET099    transport failures reaching the backend
//	UPL001-UPL099    upload session and concurrency
//	ENT001-ENT099    entity configuration
//	RATE001          dashboard rate limiting
//	ERR000           fallback
//
// Resolution order: sentinel errors (errors.Is), then backend status codes
// (errors.As on *apiclient.APIError), then case-insensitive substring
// patterns. The first pattern that matches wins, so specific patterns come
// before general ones.

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/JonMunkholm/coverdesk/internal/apiclient"
	"github.com/JonMunkholm/coverdesk/internal/importer"
)

// ErrSessionExpired reports that the backend ended the session while a
// request was being handled.
var ErrSessionExpired = errors.New("session expired")

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"` // What happened
	Action  string `json:"action"`  // What to do about it
	Code    string `json:"code"`    // Support reference
}

var (
	msgUnsupportedFile = UserMessage{"This file type is not supported", "Save the file as CSV and try again", "FILE001"}
	msgFileTooLarge    = UserMessage{"File exceeds the maximum upload size", "Split the file into smaller files", "FILE002"}
	msgEncoding        = UserMessage{"File contains invalid characters", "Save the file as UTF-8", "FILE003"}
	msgNoFile          = UserMessage{"No file was selected", "Choose a CSV file to import", "FILE004"}
	msgNoRows          = UserMessage{"The file has no data rows", "Add rows below the header line", "FILE005"}

	msgRequired   = UserMessage{"A required field is empty", "Fill in every required column", "VAL001"}
	msgNotAllowed = UserMessage{"A value is not in the allowed list", "Check the allowed values for this field", "VAL002"}
	msgRejected   = UserMessage{"Some rows failed validation", "Fix the listed rows and select the file again", "VAL003"}

	msgUnauthorized = UserMessage{"Your session has expired or lacks permission", "Sign in again", "API001"}
	msgBadRequest   = UserMessage{"The server rejected the data", "Review the listed errors and correct the file", "API002"}
	msgNotFound     = UserMessage{"The requested record was not found", "Refresh the page", "API003"}
	msgConflict     = UserMessage{"A record with these details already exists", "Remove duplicate rows and try again", "API004"}
	msgServerError  = UserMessage{"The server could not complete the request", "Try again in a few moments", "API005"}
	msgBackendLimit = UserMessage{"The server is receiving too many requests", "Wait a moment before trying again", "API006"}

	msgRefused  = UserMessage{"Unable to reach the server", "Check your connection and try again", "NET001"}
	msgTimeout  = UserMessage{"The request timed out", "Try again, or import a smaller file", "NET002"}
	msgNoHost   = UserMessage{"The server address could not be resolved", "Check the API_BASE_URL setting", "NET003"}
	msgCSRF     = UserMessage{"Could not obtain a security token", "Reload the page and try again", "NET004"}
	msgConnDrop = UserMessage{"The connection was interrupted", "Try again", "NET005"}

	msgInProgress = UserMessage{"An upload is already running", "Wait for it to finish", "UPL001"}
	msgBusy       = UserMessage{"Too many uploads are running", "Wait a moment and try again", "UPL002"}
	msgNothing    = UserMessage{"There is nothing to upload", "Select a valid file first", "UPL003"}
	msgCancelled  = UserMessage{"The request was cancelled", "Try again", "UPL004"}

	msgUnknownEntity = UserMessage{"This page does not exist", "Pick an entity from the dashboard", "ENT001"}
	msgNoImport      = UserMessage{"Bulk import is not available here", "Add records one at a time", "ENT002"}

	msgRateLimited = UserMessage{"Too many requests", "Wait a moment before trying again", "RATE001"}
)

// defaultMessage is returned when no specific mapping matches.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Try again or contact support",
	Code:    "ERR000",
}

var sentinelMessages = []struct {
	err error
	msg UserMessage
}{
	{importer.ErrUnsupportedFile, msgUnsupportedFile},
	{importer.ErrFileTooLarge, msgFileTooLarge},
	{importer.ErrUploadInProgress, msgInProgress},
	{importer.ErrTooManyUploads, msgBusy},
	{importer.ErrNotUploadable, msgNothing},
	{ErrSessionExpired, msgUnauthorized},
	{ErrUnknownEntity, msgUnknownEntity},
	{ErrImportUnsupported, msgNoImport},
	{context.DeadlineExceeded, msgTimeout},
	{context.Canceled, msgCancelled},
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	{"invalid utf-8", msgEncoding},
	{"encoding error", msgEncoding},
	{"no file provided", msgNoFile},
	{"no data rows", msgNoRows},

	{"is required", msgRequired},
	{"must be one of", msgNotAllowed},
	{"validation error", msgRejected},

	{"csrf", msgCSRF},
	{"connection refused", msgRefused},
	{"connection reset", msgConnDrop},
	{"eof", msgConnDrop},
	{"no such host", msgNoHost},
	{"timeout", msgTimeout},
	{"deadline exceeded", msgTimeout},

	{"rate limit", msgRateLimited},
}

// MapError converts a technical error to a user-friendly message.
// A nil error yields the zero UserMessage.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, s := range sentinelMessages {
		if errors.Is(err, s.err) {
			return s.msg
		}
	}

	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) {
		return statusMessage(apiErr.Status)
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

func statusMessage(status int) UserMessage {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return msgUnauthorized
	case status == http.StatusNotFound:
		return msgNotFound
	case status == http.StatusConflict:
		return msgConflict
	case status == http.StatusTooManyRequests:
		return msgBackendLimit
	case status >= 500:
		return msgServerError
	case status >= 400:
		return msgBadRequest
	default:
		return defaultMessage
	}
}

// FormatUserError renders err as "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to something more specific than
// the generic fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error (for logs) with its user message.
type UserError struct {
	Technical error
	User      UserMessage
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err and keeps it reachable through Unwrap.
// Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
