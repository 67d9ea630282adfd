package storage

import (
	"context"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"demoreel/internal/adapters/storage/gdrive"
	"demoreel/internal/adapters/storage/localfs"
	"demoreel/internal/config"
	"demoreel/internal/pkg/errors"
)

// NewProvider builds the provider cfg selects.
func NewProvider(ctx context.Context, cfg config.Storage) (Provider, error) {
	switch cfg.Provider {
	case "", "localfs":
		if cfg.LocalRoot == "" {
			return nil, errors.ValidationField("STORAGE_LOCAL_ROOT", "is required for localfs")
		}
		return localfs.New(cfg.LocalRoot), nil
	case "gdrive":
		return newGDriveProvider(ctx, cfg)
	default:
		return nil, errors.Validation("unknown storage provider: " + cfg.Provider)
	}
}

// OAuthConfig is the Drive client configuration shared with the token helper.
func OAuthConfig(clientID, clientSecret string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{drive.DriveFileScope},
	}
}

func newGDriveProvider(ctx context.Context, cfg config.Storage) (Provider, error) {
	for k, v := range map[string]string{
		"GDRIVE_CLIENT_ID":     cfg.GDriveClientID,
		"GDRIVE_CLIENT_SECRET": cfg.GDriveClientSecret,
		"GDRIVE_REFRESH_TOKEN": cfg.GDriveRefreshToken,
	} {
		if v == "" {
			return nil, errors.ValidationField(k, "is required for gdrive")
		}
	}

	tok := &oauth2.Token{RefreshToken: cfg.GDriveRefreshToken}
	httpClient := OAuthConfig(cfg.GDriveClientID, cfg.GDriveClientSecret).Client(ctx, tok)

	srv, err := drive.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeUnavailable, "storage.gdrive", "create drive service")
	}
	return gdrive.NewClient(srv, cfg.GDriveFolderID), nil
}
