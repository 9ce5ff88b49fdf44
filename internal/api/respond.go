package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const (
	validationMessage = "Request validation failed"
	internalMessage   = "An unexpected error occurred"
)

type envelope struct {
	Error any `json:"error"`
}

type body struct {
	Type       string `json:"type"`
	Message    string `json:"message"`
	StatusCode int    `json:"status_code"`
}

// validationBody always carries details, even when empty.
type validationBody struct {
	Type    string       `json:"type"`
	Message string       `json:"message"`
	Details []FieldError `json:"details"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Debug("response encode failed", zap.Error(err))
	}
}

// WriteError logs err at the level its class calls for and writes the
// matching envelope.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	e := classify(err)
	fields := []zap.Field{
		zap.String("path", r.URL.Path),
		zap.String("method", r.Method),
		zap.String("request_id", middleware.GetReqID(r.Context())),
	}

	switch e.Kind {
	case KindHTTP:
		zap.L().Warn("HTTP exception", append(fields,
			zap.Int("status_code", e.Status),
			zap.String("detail", e.Message),
		)...)
		JSON(w, e.Status, envelope{body{
			Type:       KindHTTP.String(),
			Message:    e.Message,
			StatusCode: e.Status,
		}})

	case KindValidation:
		zap.L().Warn("Validation error", append(fields,
			zap.Any("errors", e.Details),
		)...)
		details := e.Details
		if details == nil {
			details = []FieldError{}
		}
		JSON(w, http.StatusUnprocessableEntity, envelope{validationBody{
			Type:    KindValidation.String(),
			Message: validationMessage,
			Details: details,
		}})

	default:
		cause := e.Err
		if cause == nil {
			cause = e
		}
		zap.L().Error("Unexpected error", append(fields,
			zap.Error(cause),
			zap.String("error_type", fmt.Sprintf("%T", cause)),
		)...)
		JSON(w, http.StatusInternalServerError, envelope{body{
			Type:       KindInternal.String(),
			Message:    internalMessage,
			StatusCode: http.StatusInternalServerError,
		}})
	}
}

// HandlerFunc is an http handler that returns its failure instead of
// writing it.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

func (h HandlerFunc) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := h(w, r); err != nil {
		WriteError(w, r, err)
	}
}

// Recover turns a panic anywhere below it into an internal_error response.
// http.ErrAbortHandler is re-raised so net/http can drop the connection.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			zap.L().Error("panic recovered",
				zap.Any("panic", rec),
				zap.ByteString("stack", debug.Stack()),
			)
			WriteError(w, r, Internal(fmt.Errorf("panic: %v", rec)))
		}()
		next.ServeHTTP(w, r)
	})
}

// NotFound is the router fallback for unknown paths.
func NotFound(w http.ResponseWriter, r *http.Request) {
	WriteError(w, r, NotFoundError())
}

// MethodNotAllowed is the router fallback for a known path with the wrong
// method.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	WriteError(w, r, HTTPError(http.StatusMethodNotAllowed, ""))
}
