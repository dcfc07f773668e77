package web

// errors.go provides unified error response handling for the web layer.
//
// The error flow:
//  1. Handler encounters an error
//  2. Calls respondError(w, r, err)
//  3. The status comes from the error's core.Kind
//  4. Technical error + context is logged with the request ID
//  5. core.MapError's user message is written as JSON or as an HTML page

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/JonMunkholm/sheetforms/internal/core"
	"github.com/JonMunkholm/sheetforms/internal/logging"
	"github.com/JonMunkholm/sheetforms/internal/web/templates"
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// statusFor maps an error to its HTTP status.
func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	switch core.KindOf(err) {
	case core.KindMissingParameter, core.KindValidation:
		return http.StatusBadRequest
	case core.KindNotFound:
		return http.StatusNotFound
	case core.KindConflict:
		return http.StatusConflict
	case core.KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs err and writes the client-safe message.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	userMsg := core.MapError(err)
	if status == http.StatusRequestEntityTooLarge {
		userMsg = core.UserMessage{
			Message: "Request body is too large",
			Action:  "Send a smaller payload",
			Code:    "REQ003",
		}
	}

	logger := logging.FromContext(r.Context())
	attrs := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", userMsg.Code,
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request error", attrs...)
	} else {
		logger.Warn("request error", attrs...)
	}

	if wantsHTML(r) {
		respondErrorHTML(w, r, userMsg, status)
		return
	}
	respondErrorJSON(w, userMsg, status)
}

// respondErrorJSON writes a JSON error response.
func respondErrorJSON(w http.ResponseWriter, msg core.UserMessage, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

// respondErrorHTML renders the error page.
func respondErrorHTML(w http.ResponseWriter, r *http.Request, msg core.UserMessage, statusCode int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	templates.ErrorPage(msg.Message, msg.Action, msg.Code).Render(r.Context(), w)
}

// wantsHTML reports whether the request came from a browser page rather
// than an API client. API routes always answer in JSON.
func wantsHTML(r *http.Request) bool {
	path := r.URL.Path
	if path != "/" && !strings.HasPrefix(path, "/form/") && !strings.HasPrefix(path, "/formdesign/") {
		return false
	}
	return !strings.Contains(r.Header.Get("Accept"), "application/json")
}

// writeJSON encodes v as JSON with the given status.
// Encoding errors are logged since headers are already sent.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.FromContext(r.Context()).Error("json encode error", "error", err)
	}
}

// badRequest builds a validation error for malformed input.
func badRequest(op, message string, err error) error {
	return &core.Error{Kind: core.KindValidation, Op: op, Message: message, Err: err}
}

// missingParam builds a missing parameter error.
func missingParam(op, name string) error {
	return &core.Error{Kind: core.KindMissingParameter, Op: op, Message: name + " is required"}
}
