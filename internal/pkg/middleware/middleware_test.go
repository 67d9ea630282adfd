package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"demoreel/internal/pkg/errors"
	"demoreel/internal/pkg/logger"
)

func bufferLogger(buf *bytes.Buffer) *logger.Logger {
	return logger.New(logger.Config{Level: "debug", Format: "json", Output: buf})
}

func TestRequestID(t *testing.T) {
	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = r.Context().Value(logger.RequestIDKey).(string)
	}))

	t.Run("generates", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/jobs", nil))

		id := rec.Header().Get(RequestIDHeader)
		if len(id) != 32 {
			t.Errorf("request ID %q, want 32 hex chars", id)
		}
		if seen != id {
			t.Errorf("context ID %q != header %q", seen, id)
		}
	})

	t.Run("preserves caller ID", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/jobs", nil)
		req.Header.Set(RequestIDHeader, "req-abc")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if got := rec.Header().Get(RequestIDHeader); got != "req-abc" || seen != "req-abc" {
			t.Errorf("header %q, context %q", got, seen)
		}
	})
}

func TestLoggingLevels(t *testing.T) {
	tests := []struct {
		status int
		level  string
	}{
		{http.StatusOK, `"level":"INFO"`},
		{http.StatusFound, `"level":"INFO"`},
		{http.StatusNotFound, `"level":"WARN"`},
		{http.StatusServiceUnavailable, `"level":"ERROR"`},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			var buf bytes.Buffer
			handler := Logging(bufferLogger(&buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte("body"))
			}))
			handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/jobs", nil))

			out := buf.String()
			for _, want := range []string{tt.level, "request completed", `"path":"/jobs"`, `"size":4`, "duration_ms"} {
				if !strings.Contains(out, want) {
					t.Errorf("log missing %s: %s", want, out)
				}
			}
		})
	}
}

func TestRecovery(t *testing.T) {
	var buf bytes.Buffer
	handler := Recovery(bufferLogger(&buf))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("nil session")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), string(errors.CodeInternal)) {
		t.Errorf("body = %s", rec.Body.String())
	}
	if !strings.Contains(buf.String(), "nil session") {
		t.Errorf("panic not logged: %s", buf.String())
	}
}

func TestStatusRecorder(t *testing.T) {
	rw := newStatusRecorder(httptest.NewRecorder())
	_, _ = rw.Write([]byte("hello"))
	rw.WriteHeader(http.StatusTeapot)

	if rw.status != http.StatusOK {
		t.Errorf("status = %d, want implicit 200 kept", rw.status)
	}
	if rw.size != 5 {
		t.Errorf("size = %d", rw.size)
	}
	rw.Flush()
}

func TestWrapHandler(t *testing.T) {
	var buf bytes.Buffer
	log := bufferLogger(&buf)

	tests := []struct {
		name   string
		err    error
		status int
		level  string
	}{
		{"not found warns", errors.NotFound("job", "job_1"), http.StatusNotFound, `"level":"WARN"`},
		{"conflict warns", errors.New(errors.CodeConflict, "job already exists"), http.StatusConflict, `"level":"WARN"`},
		{"mux failure errors", errors.New(errors.CodeMux, "ffmpeg failed"), http.StatusInternalServerError, `"level":"ERROR"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			handler := WrapHandler(log, func(w http.ResponseWriter, r *http.Request) error { return tt.err })

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/jobs/job_1", nil))

			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			if !strings.Contains(rec.Body.String(), string(errors.GetCode(tt.err))) {
				t.Errorf("body = %s", rec.Body.String())
			}
			if !strings.Contains(buf.String(), tt.level) {
				t.Errorf("log = %s", buf.String())
			}
		})
	}

	t.Run("success untouched", func(t *testing.T) {
		handler := WrapHandler(log, func(w http.ResponseWriter, r *http.Request) error {
			w.WriteHeader(http.StatusAccepted)
			return nil
		})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusAccepted {
			t.Errorf("status = %d", rec.Code)
		}
	})
}

func TestGenerateRequestID(t *testing.T) {
	if a, b := generateRequestID(), generateRequestID(); a == b {
		t.Error("request IDs repeat")
	}
}
