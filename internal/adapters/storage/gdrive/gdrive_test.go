package gdrive

import (
	"fmt"
	"testing"

	"google.golang.org/api/googleapi"
)

func TestIsNotFound(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"404", &googleapi.Error{Code: 404}, true},
		{"wrapped 404", fmt.Errorf("get: %w", &googleapi.Error{Code: 404}), true},
		{"403", &googleapi.Error{Code: 403}, false},
		{"plain", fmt.Errorf("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isNotFound(tt.err); got != tt.want {
				t.Errorf("isNotFound() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProvider(t *testing.T) {
	if got := NewClient(nil, "folder").Provider(); got != "gdrive" {
		t.Errorf("Provider() = %s", got)
	}
}
