package drive

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"testing"

	"audio-from-video/domain/audio"

	"golang.org/x/oauth2"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
)

// mockDriveService is a mock implementation for testing
type mockDriveService struct {
	file        *drive.File
	content     string
	getErr      error
	downloadErr error
	requested   []string
}

func (m *mockDriveService) GetFile(ctx context.Context, fileID string, fields string) (*drive.File, error) {
	m.requested = append(m.requested, fileID)
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.file, nil
}

func (m *mockDriveService) Download(ctx context.Context, fileID string) (io.ReadCloser, error) {
	if m.downloadErr != nil {
		return nil, m.downloadErr
	}
	return io.NopCloser(strings.NewReader(m.content)), nil
}

func TestClient_DownloadFile(t *testing.T) {
	tests := []struct {
		name     string
		mock     *mockDriveService
		fileID   string
		wantErr  error
		wantBody string
	}{
		{
			name: "downloads file content",
			mock: &mockDriveService{
				file:    &drive.File{Id: "abc", Name: "lecture.mp4", MimeType: "video/mp4", Size: 11},
				content: "video-bytes",
			},
			fileID:   "abc",
			wantBody: "video-bytes",
		},
		{
			name:    "missing id",
			mock:    &mockDriveService{},
			fileID:  "",
			wantErr: audio.ErrInvalidRequest,
		},
		{
			name:    "not found maps to source not found",
			mock:    &mockDriveService{getErr: &googleapi.Error{Code: http.StatusNotFound, Message: "File not found"}},
			fileID:  "missing",
			wantErr: audio.ErrSourceNotFound,
		},
		{
			name: "forbidden maps to source not found",
			mock: &mockDriveService{
				file:        &drive.File{Id: "abc"},
				downloadErr: &googleapi.Error{Code: http.StatusForbidden},
			},
			fileID:  "abc",
			wantErr: audio.ErrSourceNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(context.Background(), "", WithDriveService(tt.mock))
			if err != nil {
				t.Fatalf("NewClient() error = %v", err)
			}

			var buf bytes.Buffer
			info, err := client.DownloadFile(context.Background(), tt.fileID, &buf)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("DownloadFile() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("DownloadFile() unexpected error: %v", err)
			}
			if buf.String() != tt.wantBody {
				t.Errorf("body = %q, want %q", buf.String(), tt.wantBody)
			}
			if info.Size != int64(len(tt.wantBody)) {
				t.Errorf("Size = %d, want %d", info.Size, len(tt.wantBody))
			}
			if info.MimeType != "video/mp4" || info.Name != "lecture.mp4" {
				t.Errorf("info = %+v", info)
			}
		})
	}
}

func TestClient_DownloadFile_OtherAPIError(t *testing.T) {
	mock := &mockDriveService{getErr: &googleapi.Error{Code: http.StatusInternalServerError}}
	client, _ := NewClient(context.Background(), "", WithDriveService(mock))

	_, err := client.DownloadFile(context.Background(), "abc", io.Discard)
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, audio.ErrSourceNotFound) {
		t.Errorf("server errors should not be reported as not found: %v", err)
	}
}

func TestNewClient_MissingCredentials(t *testing.T) {
	_, err := NewClient(context.Background(), filepath.Join(t.TempDir(), "nope.json"))
	if err == nil || !strings.Contains(err.Error(), "unable to read credentials file") {
		t.Errorf("NewClient() error = %v", err)
	}
}

func TestNewClientWithOAuth_MissingCredentials(t *testing.T) {
	_, err := NewClientWithOAuth(context.Background(), OAuthConfig{CredentialsFile: filepath.Join(t.TempDir(), "nope.json")})
	if err == nil || !strings.Contains(err.Error(), "unable to read OAuth credentials file") {
		t.Errorf("NewClientWithOAuth() error = %v", err)
	}
}

func TestTokenRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token.json")
	token := &oauth2.Token{AccessToken: "access", RefreshToken: "refresh", TokenType: "Bearer"}

	if err := SaveToken(path, token); err != nil {
		t.Fatalf("SaveToken() error = %v", err)
	}

	got, err := LoadToken(path)
	if err != nil {
		t.Fatalf("LoadToken() error = %v", err)
	}
	if got.AccessToken != "access" || got.RefreshToken != "refresh" {
		t.Errorf("LoadToken() = %+v", got)
	}
}
