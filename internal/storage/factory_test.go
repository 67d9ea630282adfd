package storage

import (
	"context"
	"testing"

	"demoreel/internal/config"
	"demoreel/internal/pkg/errors"
)

func TestNewProvider(t *testing.T) {
	ctx := context.Background()

	p, err := NewProvider(ctx, config.Storage{Provider: "localfs", LocalRoot: t.TempDir()})
	if err != nil || p.Provider() != "localfs" {
		t.Fatalf("localfs: %v, %v", p, err)
	}

	tests := []struct {
		name string
		cfg  config.Storage
	}{
		{"localfs without root", config.Storage{Provider: "localfs"}},
		{"gdrive without credentials", config.Storage{Provider: "gdrive", GDriveClientID: "id"}},
		{"unknown", config.Storage{Provider: "s3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewProvider(ctx, tt.cfg); !errors.IsCode(err, errors.CodeValidation) {
				t.Errorf("err = %v, want validation", err)
			}
		})
	}
}

func TestOAuthConfig(t *testing.T) {
	c := OAuthConfig("id", "secret")
	if c.ClientID != "id" || c.ClientSecret != "secret" || len(c.Scopes) != 1 {
		t.Errorf("OAuthConfig() = %+v", c)
	}
}
