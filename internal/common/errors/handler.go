package errors

import (
	"encoding/json"
	"net/http"
)

// ErrorHandler turns errors into JSON HTTP responses. Server-side failures are
// logged with full detail and answered with an opaque message.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Response is the JSON error envelope.
type Response struct {
	Error   string       `json:"error"`
	Code    ErrorCode    `json:"code,omitempty"`
	Details []FieldError `json:"details,omitempty"`
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Handle writes err to w. fallback is the message used for 5xx responses.
func (h *ErrorHandler) Handle(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	stdErr := Normalize(err)
	status := stdErr.HTTPStatus()

	h.logError(r, stdErr, status)

	resp := Response{Error: fallback}
	if stdErr.ClientFacing() {
		resp = Response{
			Error:   stdErr.Message,
			Code:    stdErr.Code,
			Details: stdErr.Fields,
		}
	}
	WriteJSON(w, status, resp)
}

func (h *ErrorHandler) logError(r *http.Request, stdErr *StandardError, status int) {
	fields := map[string]interface{}{
		"method":    r.Method,
		"path":      r.URL.Path,
		"status":    status,
		"errorCode": string(stdErr.Code),
		"details":   stdErr.Details,
	}
	if len(stdErr.Fields) > 0 {
		names := make([]string, 0, len(stdErr.Fields))
		for _, f := range stdErr.Fields {
			names = append(names, f.Field)
		}
		fields["fields"] = names
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", fields)
		return
	}
	h.logger.Warn("request rejected", fields)
}

// WriteJSON encodes body with the given status.
func WriteJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
