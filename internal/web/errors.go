package web

// errors.go turns errors into responses.
//
// The technical error is logged with the request ID. The client gets the
// mapped core.UserMessage, as JSON for API calls and as an HTML fragment for
// HTMX requests.

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/JonMunkholm/gridclip/internal/core"
	"github.com/JonMunkholm/gridclip/internal/logging"
)

// ErrorResponse is the JSON body of an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// errBadRequest marks malformed request input.
var errBadRequest = errors.New("invalid request")

// statusFor picks the HTTP status for an error returned by the service.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest), errors.Is(err, core.ErrUnknownOp):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrTableNotFound), errors.Is(err, core.ErrColumnNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrTooManyTransfers):
		return http.StatusTooManyRequests
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs err and writes the user-facing message.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	userMsg := core.MapError(err)

	logger := logging.FromContext(r.Context())
	log := logger.Warn
	if statusCode >= http.StatusInternalServerError {
		log = logger.Error
	}
	log("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
	)

	if statusCode == http.StatusTooManyRequests {
		w.Header().Set("Retry-After", "1")
	}

	if isHTMX(r) {
		renderErrorPartial(w, r, userMsg, statusCode)
		return
	}
	if wantsJSON(r) {
		writeJSON(w, statusCode, ErrorResponse{
			Error:   msgOrCode(userMsg),
			Message: userMsg.Message,
			Action:  userMsg.Action,
			Code:    userMsg.Code,
		})
		return
	}
	http.Error(w, userMsg.Message+" ("+userMsg.Code+")", statusCode)
}

// renderErrorPartial renders an HTMX-compatible error fragment.
func renderErrorPartial(w http.ResponseWriter, r *http.Request, msg core.UserMessage, statusCode int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	if err := ErrorAlert(msg).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render error alert", "error", err)
	}
}

func msgOrCode(msg core.UserMessage) string {
	if msg.Message != "" {
		return msg.Message
	}
	return msg.Code
}

// isHTMX checks if the request is an HTMX request.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// wantsJSON checks if the client prefers JSON response.
func wantsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		return true
	}
	// API routes default to JSON
	return strings.HasPrefix(r.URL.Path, "/api/")
}
