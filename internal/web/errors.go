package web

// errors.go turns handler errors into responses.
//
// The technical error is logged with the request id; the client gets the
// mapped user message as an htmx fragment, JSON, or plain text. When the
// backend rejected the session, the API client has already asked for a
// redirect to the login page and that takes precedence.

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/JonMunkholm/coverdesk/internal/apiclient"
	"github.com/JonMunkholm/coverdesk/internal/core"
	"github.com/JonMunkholm/coverdesk/internal/importer"
	"github.com/JonMunkholm/coverdesk/internal/logging"
	"github.com/JonMunkholm/coverdesk/internal/web/templates"
)

// ErrorResponse is the JSON body of an error.
type ErrorResponse struct {
	Error    string `json:"error"`
	Message  string `json:"message"`
	Action   string `json:"action,omitempty"`
	Code     string `json:"code"`
	Redirect string `json:"redirect,omitempty"`
}

// statusFor picks the HTTP status for an error from the domain layers.
func statusFor(err error) int {
	var apiErr *apiclient.APIError
	switch {
	case errors.Is(err, core.ErrUnknownEntity):
		return http.StatusNotFound
	case errors.Is(err, core.ErrImportUnsupported):
		return http.StatusNotFound
	case errors.Is(err, importer.ErrUnsupportedFile),
		errors.Is(err, importer.ErrFileTooLarge):
		return http.StatusBadRequest
	case errors.Is(err, importer.ErrUploadInProgress),
		errors.Is(err, importer.ErrNotUploadable):
		return http.StatusConflict
	case errors.Is(err, importer.ErrTooManyUploads):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &apiErr):
		if apiErr.Status >= 400 && apiErr.Status < 500 {
			return apiErr.Status
		}
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// respondError logs err and writes the user-facing response. A zero
// statusCode is derived from err.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	if statusCode == 0 {
		statusCode = statusFor(err)
	}
	userMsg := core.MapError(err)

	logger := logging.FromContext(r.Context())
	level := logger.Warn
	if statusCode >= http.StatusInternalServerError {
		level = logger.Error
	}
	level("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
	)

	if redirectPending(r.Context()) {
		s.redirect(w, r, navigationFrom(r.Context()).target, userMsg)
		return
	}

	switch {
	case isHTMX(r):
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(statusCode)
		renderComponent(r.Context(), w, templates.ErrorAlert(userMsg.Message, userMsg.Action, userMsg.Code))
	case wantsJSON(r):
		respondErrorJSON(w, userMsg, statusCode, "")
	default:
		http.Error(w, userMsg.Message+" ("+userMsg.Code+")", statusCode)
	}
}

// redirect sends the client to target after the backend ended the session.
func (s *Server) redirect(w http.ResponseWriter, r *http.Request, target string, msg core.UserMessage) {
	switch {
	case isHTMX(r):
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusUnauthorized)
	case wantsJSON(r):
		respondErrorJSON(w, msg, http.StatusUnauthorized, target)
	default:
		http.Redirect(w, r, target, http.StatusSeeOther)
	}
}

func respondErrorJSON(w http.ResponseWriter, msg core.UserMessage, statusCode int, redirect string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error:    msg.Message,
		Message:  msg.Message,
		Action:   msg.Action,
		Code:     msg.Code,
		Redirect: redirect,
	})
}

// writeError writes a plain JSON error for middleware that has no request
// context worth mapping.
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// wantsJSON reports whether the client expects JSON. API routes always do.
func wantsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		return true
	}
	return strings.HasPrefix(r.URL.Path, "/api/")
}
