package drive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"audio-from-video/domain/audio"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// DriveService defines the interface for Google Drive API operations
// This allows mocking the Google Drive API in tests
type DriveService interface {
	GetFile(ctx context.Context, fileID string, fields string) (*drive.File, error)
	Download(ctx context.Context, fileID string) (io.ReadCloser, error)
}

// GoogleDriveService is the production implementation using the Google Drive API
type GoogleDriveService struct {
	service *drive.Service
}

// GetFile fetches metadata for a single file
func (s *GoogleDriveService) GetFile(ctx context.Context, fileID string, fields string) (*drive.File, error) {
	return s.service.Files.Get(fileID).
		Fields(googleapi.Field(fields)).
		SupportsAllDrives(true).
		Context(ctx).
		Do()
}

// Download opens the content stream of a file
func (s *GoogleDriveService) Download(ctx context.Context, fileID string) (io.ReadCloser, error) {
	resp, err := s.service.Files.Get(fileID).
		SupportsAllDrives(true).
		Context(ctx).
		Download()
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// FileInfo describes a downloaded Drive file
type FileInfo struct {
	ID       string
	Name     string
	MimeType string
	Size     int64
}

// Client downloads source videos stored in Google Drive
type Client struct {
	driveService DriveService
}

// ClientOption is a functional option for configuring Client
type ClientOption func(*Client)

// WithDriveService sets a custom drive service (for testing)
func WithDriveService(svc DriveService) ClientOption {
	return func(c *Client) {
		c.driveService = svc
	}
}

// NewClient creates a new Google Drive client using service account credentials
// If no options are provided, it initializes a real Google Drive service
func NewClient(ctx context.Context, credentialsPath string, opts ...ClientOption) (*Client, error) {
	c := &Client{}

	for _, opt := range opts {
		opt(c)
	}

	if c.driveService == nil {
		svc, err := newGoogleDriveService(ctx, credentialsPath)
		if err != nil {
			return nil, err
		}
		c.driveService = svc
	}

	return c, nil
}

// newGoogleDriveService creates a production Google Drive service
func newGoogleDriveService(ctx context.Context, credentialsPath string) (*GoogleDriveService, error) {
	b, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %w", err)
	}

	config, err := google.JWTConfigFromJSON(b, drive.DriveReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %w", err)
	}

	client := config.Client(ctx)
	srv, err := drive.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to create drive service: %w", err)
	}

	return &GoogleDriveService{service: srv}, nil
}

// DownloadFile streams the content of fileID into w
func (c *Client) DownloadFile(ctx context.Context, fileID string, w io.Writer) (*FileInfo, error) {
	if fileID == "" {
		return nil, fmt.Errorf("%w: drive file id is required", audio.ErrInvalidRequest)
	}

	f, err := c.driveService.GetFile(ctx, fileID, "id, name, mimeType, size")
	if err != nil {
		return nil, mapError(fileID, err)
	}

	body, err := c.driveService.Download(ctx, fileID)
	if err != nil {
		return nil, mapError(fileID, err)
	}
	defer body.Close()

	n, err := io.Copy(w, body)
	if err != nil {
		return nil, fmt.Errorf("failed to download drive file %s: %w", fileID, err)
	}

	return &FileInfo{
		ID:       f.Id,
		Name:     f.Name,
		MimeType: f.MimeType,
		Size:     n,
	}, nil
}

// mapError translates Drive API errors into the extraction error taxonomy
func mapError(fileID string, err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && (apiErr.Code == http.StatusNotFound || apiErr.Code == http.StatusForbidden) {
		return fmt.Errorf("%w: drive file %s (%d)", audio.ErrSourceNotFound, fileID, apiErr.Code)
	}
	return fmt.Errorf("failed to fetch drive file %s: %w", fileID, err)
}
