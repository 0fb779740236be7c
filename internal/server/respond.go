package server

import (
	"encoding/json"
	"net/http"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/landscope/internal/insight"
	"github.com/sells-group/landscope/internal/remediation"
	"github.com/sells-group/landscope/internal/resilience"
)

// errorResponse is the JSON body of every failed request.
type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// fail maps err to a status code, logs it and writes the error body.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	fields := []zap.Field{
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.Error(err),
	}
	if status >= http.StatusInternalServerError {
		zap.L().Error("server: request failed", fields...)
	} else {
		zap.L().Debug("server: request rejected", fields...)
	}
	writeError(w, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case eris.Is(err, insight.ErrOutOfScope):
		return http.StatusUnprocessableEntity
	case eris.Is(err, insight.ErrUnavailable), eris.Is(err, resilience.ErrOpen):
		return http.StatusServiceUnavailable
	case eris.Is(err, insight.ErrNoInsight):
		return http.StatusBadGateway
	case eris.Is(err, remediation.ErrInvalidStep), eris.Is(err, remediation.ErrUnknownTotal):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
