package web

// errors.go provides unified error response handling for the web layer.
//
// The error flow:
//  1. Handler encounters an error
//  2. Calls respondError(w, r, err, statusCode)
//  3. Error is mapped via core.MapError to a stable code and action
//  4. Technical error + context is logged with the request ID
//  5. ErrorResponse is written as JSON

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/salesprep/internal/core"
	"github.com/JonMunkholm/salesprep/internal/logging"
)

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	Code      string `json:"code"`
	Action    string `json:"action,omitempty"`
	RequestID string `json:"requestId,omitempty"`
	Details   string `json:"details,omitempty"`
}

// respondError logs err with request context and writes an ErrorResponse.
// Technical details are only exposed in development, and only for errors the
// catalogue does not already explain.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	userMsg := core.MapError(err)
	requestID := middleware.GetReqID(r.Context())

	logger := logging.FromContext(r.Context())
	if statusCode >= http.StatusInternalServerError {
		logger.Error("request error",
			"path", r.URL.Path,
			"method", r.Method,
			"status", statusCode,
			"error", err.Error(),
			"code", userMsg.Code,
		)
	} else {
		logger.Warn("request rejected",
			"path", r.URL.Path,
			"status", statusCode,
			"error", err.Error(),
			"code", userMsg.Code,
		)
	}

	resp := ErrorResponse{
		Success:   false,
		Error:     userMsg.Message,
		Code:      userMsg.Code,
		Action:    userMsg.Action,
		RequestID: requestID,
	}

	var de *core.DecodeError
	switch {
	case errors.As(err, &de):
		resp.Error = fmt.Sprintf("Invalid JSON format: %s", de.Reason())
	case statusCode >= http.StatusInternalServerError && s.cfg.Env.IsDevelopment() && !core.IsUserFacing(err):
		resp.Details = err.Error()
	}

	writeJSON(w, r, statusCode, resp)
}

// statusFor picks the HTTP status for a failed batch.
func statusFor(err error) int {
	var de *core.DecodeError
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &de), errors.As(err, &tooLarge):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrTooManyBatches):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// recoverer turns a handler panic into a logged 500 with the usual error body.
func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			s.respondError(w, r, fmt.Errorf("panic: %v", rec), http.StatusInternalServerError)
		}()
		next.ServeHTTP(w, r)
	})
}
