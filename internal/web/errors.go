package web

// errors.go provides unified error response handling for the web layer.
//
// The error flow:
//  1. Handler encounters an error or a failed core.Result
//  2. Calls respondError(w, r, err, status) or writeResult(w, r, res)
//  3. Error is mapped via core.MapError to get user-friendly message
//  4. Technical error + context is logged with request ID for correlation
//  5. User message is rendered as JSON for /api routes, HTML otherwise

import (
	"log/slog"
	"net/http"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/JonMunkholm/schemaform/internal/core"
	"github.com/JonMunkholm/schemaform/internal/logging"
	"github.com/JonMunkholm/schemaform/internal/web/templates"
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// statusForCode picks the HTTP status for a user message code.
func statusForCode(code string) int {
	switch {
	case code == "REQ001":
		return http.StatusConflict
	case code == "REQ002":
		return http.StatusRequestTimeout
	case code == "REQ003":
		return http.StatusGatewayTimeout
	case code == "EXP001":
		return http.StatusNotFound
	case code == "STO004":
		return http.StatusForbidden
	case code == "SUG003", code == "STO003":
		return http.StatusBadGateway
	case code == "RATE001":
		return http.StatusTooManyRequests
	case code == "VAL001":
		return http.StatusUnprocessableEntity
	case strings.HasPrefix(code, "SCH"), strings.HasPrefix(code, "SUG"):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs the technical error server-side and answers with the
// mapped user message. status 0 derives the status from the message code.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, status int) {
	ue := core.NewUserError(err)
	if status == 0 {
		status = statusForCode(ue.User.Code)
	}

	logger := logging.FromContext(r.Context())
	logArgs := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", ue.Technical.Error(),
		"code", ue.User.Code,
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request error", logArgs...)
	} else {
		logger.Info("request rejected", logArgs...)
	}

	if wantsJSON(r) {
		respondErrorJSON(w, ue.User, status)
		return
	}
	respondErrorHTML(w, r, ue.User, status)
}

// respondErrorJSON writes a JSON error response.
func respondErrorJSON(w http.ResponseWriter, msg core.UserMessage, status int) {
	writeJSONStatus(w, status, ErrorResponse{
		Error:  msg.Message,
		Action: msg.Action,
		Code:   msg.Code,
	})
}

// respondErrorHTML renders the error alert inside the page layout.
func respondErrorHTML(w http.ResponseWriter, r *http.Request, msg core.UserMessage, status int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	page := templates.Layout("Error", "", templates.ErrorAlert(msg.Message, msg.Action, msg.Code))
	if err := page.Render(r.Context(), w); err != nil {
		slog.Warn("render error page failed", "error", err)
	}
}

// wantsJSON reports whether the client should get a JSON body.
func wantsJSON(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

// writeJSON encodes v as JSON with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

// writeJSONStatus encodes v as JSON. Encoding errors are logged since the
// headers are already sent.
func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("json encode error", "error", err)
	}
}

// resultStatus is 200 for a successful Result and the mapped status otherwise.
func resultStatus(res core.Result) int {
	if res.Success {
		return http.StatusOK
	}
	return statusForCode(res.Code)
}
