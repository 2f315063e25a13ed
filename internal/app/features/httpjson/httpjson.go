// internal/app/features/httpjson/httpjson.go
//
// Package httpjson holds the request/response helpers shared by every
// JSON feature package, including the single place where application
// errors are mapped to HTTP status codes.
package httpjson

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dalemusser/crewdeck/internal/app/system/apperror"
	"go.uber.org/zap"
)

// maxBodyBytes bounds request bodies so a hostile client cannot make
// the decoder buffer arbitrarily large payloads.
const maxBodyBytes = 1 << 20 // 1 MiB

// Respond writes v as JSON with the given status.
func Respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// Decode reads the request body into dst. Unknown fields and trailing
// garbage are rejected so malformed clients fail loudly.
func Decode(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperror.BadRequest(apperror.CodeValidation, "invalid JSON body")
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return apperror.BadRequest(apperror.CodeValidation, "request body must contain a single JSON object")
	}
	return nil
}

// errorBody is the wire shape for all error responses.
type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// Error maps an application error onto the HTTP response. The four
// error kinds map one-to-one onto statuses; anything unclassified is a
// 500 with a generic message so internals never leak to clients.
func Error(w http.ResponseWriter, log *zap.Logger, err error) {
	var ae *apperror.Error
	if errors.As(err, &ae) {
		Respond(w, statusFor(ae.Kind), errorBody{Error: ae.Message, Code: ae.Code})
		return
	}
	if log != nil {
		log.Error("internal error", zap.Error(err))
	}
	Respond(w, http.StatusInternalServerError, errorBody{Error: "internal server error"})
}

func statusFor(k apperror.Kind) int {
	switch k {
	case apperror.KindNotFound:
		return http.StatusNotFound
	case apperror.KindUnauthorized:
		return http.StatusUnauthorized
	case apperror.KindBadRequest:
		return http.StatusBadRequest
	case apperror.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
