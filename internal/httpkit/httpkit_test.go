package httpkit

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"demoreel/internal/pkg/errors"
)

func TestPgCodes(t *testing.T) {
	if !IsUniqueViolation(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})) {
		t.Error("wrapped 23505 not detected")
	}
	if IsUniqueViolation(&pgconn.PgError{Code: "42P01"}) {
		t.Error("42P01 reported as unique violation")
	}
	if !IsUndefinedTable(&pgconn.PgError{Code: "42P01"}) {
		t.Error("42P01 not detected")
	}
	if IsUniqueViolation(fmt.Errorf("plain")) {
		t.Error("plain error detected")
	}
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) ErrorEnvelope {
	t.Helper()
	var env ErrorEnvelope
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return env
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{
			name:       "validation with field",
			err:        errors.ValidationField("source_url", "must be an absolute http(s) URL"),
			wantStatus: http.StatusBadRequest,
			wantCode:   string(errors.CodeValidation),
			wantMsg:    "must be an absolute http(s) URL",
		},
		{
			name:       "not found",
			err:        errors.NotFound("job", "job_1"),
			wantStatus: http.StatusNotFound,
			wantCode:   string(errors.CodeNotFound),
		},
		{
			name:       "plain error hides message",
			err:        fmt.Errorf("dial tcp: refused"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   string(errors.CodeInternal),
			wantMsg:    "internal server error",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(rec, tt.err)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			env := decodeEnvelope(t, rec)
			if env.Error.Code != tt.wantCode {
				t.Errorf("code = %s, want %s", env.Error.Code, tt.wantCode)
			}
			if tt.wantMsg != "" && env.Error.Message != tt.wantMsg {
				t.Errorf("message = %q, want %q", env.Error.Message, tt.wantMsg)
			}
		})
	}
}

func TestWriteErrorIncludesFields(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, errors.ValidationField("target_seconds", "must be positive"))

	env := decodeEnvelope(t, rec)
	if env.Error.Details["field"] != "target_seconds" {
		t.Errorf("details = %v", env.Error.Details)
	}
}

func TestDecodeJSON(t *testing.T) {
	var v struct {
		Name string `json:"name"`
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"demo"}`))
	if err := DecodeJSON(httptest.NewRecorder(), req, &v); err != nil || v.Name != "demo" {
		t.Fatalf("DecodeJSON() = %v, %+v", err, v)
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"demo","extra":1}`))
	if err := DecodeJSON(httptest.NewRecorder(), req, &v); !errors.IsCode(err, errors.CodeValidation) {
		t.Errorf("unknown field err = %v", err)
	}
}
