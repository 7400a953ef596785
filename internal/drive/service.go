package drive

import (
	"context"
	"fmt"
	"io"

	"golang.org/x/oauth2/google"
	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/luminacare/assistant/internal/config"
)

// apiExporter adapts *drive.Service to the Exporter interface.
type apiExporter struct {
	svc *drive.Service
}

// NewExporter builds a Drive API client from service-account credentials.
func NewExporter(ctx context.Context, cfg config.DriveConfig) (Exporter, error) {
	creds, err := google.CredentialsFromJSON(ctx, []byte(cfg.CredentialsJSON), drive.DriveReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("parse drive credentials: %w", err)
	}

	svc, err := drive.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}

	return &apiExporter{svc: svc}, nil
}

func (e *apiExporter) Export(ctx context.Context, fileID, mimeType string) (io.ReadCloser, error) {
	resp, err := e.svc.Files.Export(fileID, mimeType).Context(ctx).Download()
	if err != nil {
		return nil, fmt.Errorf("export file: %w", err)
	}
	return resp.Body, nil
}

func (e *apiExporter) Download(ctx context.Context, fileID string) (io.ReadCloser, error) {
	resp, err := e.svc.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	return resp.Body, nil
}
