package httpjson_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/crewdeck/internal/app/features/httpjson"
	"github.com/dalemusser/crewdeck/internal/app/system/apperror"
	"go.uber.org/zap"
)

func TestDecode(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"valid object", `{"name":"ok"}`, false},
		{"unknown field", `{"name":"ok","extra":true}`, true},
		{"trailing garbage", `{"name":"ok"}{"name":"again"}`, true},
		{"not json", `name=ok`, true},
		{"empty body", ``, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var dst payload
			err := httpjson.Decode(r, &dst)
			if tt.wantErr {
				if apperror.KindOf(err) != apperror.KindBadRequest {
					t.Fatalf("expected BadRequest, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if dst.Name != "ok" {
				t.Errorf("name = %q", dst.Name)
			}
		})
	}
}

func TestError_KindMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			"not found",
			apperror.NotFound(apperror.CodeResourceNotFound, "workspace not found"),
			http.StatusNotFound,
			apperror.CodeResourceNotFound,
		},
		{
			"unauthorized",
			apperror.Unauthorized(apperror.CodeNotAMember, "you are not a member of this workspace"),
			http.StatusUnauthorized,
			apperror.CodeNotAMember,
		},
		{
			"bad request",
			apperror.BadRequest(apperror.CodeValidation, "name is required"),
			http.StatusBadRequest,
			apperror.CodeValidation,
		},
		{
			"conflict",
			apperror.Conflict(apperror.CodeEmailAlreadyExists, "email already registered", nil),
			http.StatusConflict,
			apperror.CodeEmailAlreadyExists,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			httpjson.Error(rec, zap.NewNop(), tt.err)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var body struct {
				Error string `json:"error"`
				Code  string `json:"code"`
			}
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if body.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", body.Code, tt.wantCode)
			}
			if body.Error == "" {
				t.Error("error message missing")
			}
		})
	}
}

func TestError_WrappedError(t *testing.T) {
	wrapped := fmt.Errorf("loading project: %w",
		apperror.NotFound(apperror.CodeResourceNotFound, "project not found in this workspace"))

	rec := httptest.NewRecorder()
	httpjson.Error(rec, zap.NewNop(), wrapped)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestError_UnclassifiedIs500(t *testing.T) {
	rec := httptest.NewRecorder()
	httpjson.Error(rec, zap.NewNop(), errors.New("connection reset by peer"))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d", rec.Code)
	}
	// Internals never leak: the body carries only the generic message.
	if got := rec.Body.String(); strings.Contains(got, "connection reset") {
		t.Errorf("internal error leaked: %s", got)
	}
}

func TestRespond(t *testing.T) {
	rec := httptest.NewRecorder()
	httpjson.Respond(rec, http.StatusCreated, map[string]string{"id": "abc"})

	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}
}
