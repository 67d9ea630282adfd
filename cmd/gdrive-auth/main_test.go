package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCallbackHandler(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		wantCode string
		wantErr  bool
	}{
		{"accepts code", "?state=s1&code=abc", "abc", false},
		{"bad state", "?state=other&code=abc", "", true},
		{"provider error", "?state=s1&error=access_denied", "", true},
		{"missing code", "?state=s1", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			codeCh := make(chan string, 1)
			errCh := make(chan error, 1)
			rec := httptest.NewRecorder()

			callbackHandler("s1", codeCh, errCh)(rec, httptest.NewRequest(http.MethodGet, "/callback"+tt.query, nil))

			if tt.wantErr {
				if rec.Code != http.StatusBadRequest || len(errCh) != 1 {
					t.Errorf("status %d, errors %d", rec.Code, len(errCh))
				}
				return
			}
			if got := <-codeCh; got != tt.wantCode {
				t.Errorf("code = %q", got)
			}
		})
	}
}

func TestRandomState(t *testing.T) {
	if a, b := randomState(), randomState(); a == b || len(a) != 24 {
		t.Errorf("states %q %q", a, b)
	}
}

func TestRequiresCredentials(t *testing.T) {
	t.Setenv("GDRIVE_CLIENT_ID", "")
	t.Setenv("GDRIVE_CLIENT_SECRET", "")
	cmd := newRootCmd()
	cmd.SetArgs(nil)
	if err := cmd.Execute(); err == nil {
		t.Error("expected error without client credentials")
	}
}
