package source

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"audio-from-video/domain/audio"
	"audio-from-video/infrastructure/drive"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLocator_Locate_Local(t *testing.T) {
	dir := t.TempDir()
	video := filepath.Join(dir, "clip.mp4")
	writeFile(t, video, "video")

	tests := []struct {
		name    string
		ref     string
		want    string
		wantErr error
	}{
		{name: "absolute path", ref: video, want: video},
		{name: "file url", ref: "file://" + video, want: video},
		{name: "surrounding whitespace", ref: "  " + video + "\n", want: video},
		{name: "missing file", ref: filepath.Join(dir, "missing.mp4"), wantErr: audio.ErrSourceNotFound},
		{name: "directory", ref: dir, wantErr: audio.ErrSourceNotFound},
		{name: "empty", ref: "   ", wantErr: audio.ErrInvalidRequest},
		{name: "unsupported scheme", ref: "ftp://example.com/clip.mp4", wantErr: audio.ErrInvalidRequest},
	}

	l := NewLocator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := l.Locate(context.Background(), tt.ref)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Locate() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Locate() unexpected error: %v", err)
			}
			if got.Path != tt.want {
				t.Errorf("Path = %q, want %q", got.Path, tt.want)
			}
			if err := got.Cleanup(); err != nil {
				t.Errorf("Cleanup() error = %v", err)
			}
			if _, err := os.Stat(video); err != nil {
				t.Error("cleanup must never remove a caller's local file")
			}
		})
	}
}

func TestLocator_Locate_HTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "video/webm")
		io.WriteString(w, "webm-bytes")
	}))
	defer srv.Close()

	tmp := t.TempDir()
	l := NewLocator(WithTempDir(tmp))

	got, err := l.Locate(context.Background(), srv.URL+"/download?id=1")
	if err != nil {
		t.Fatalf("Locate() unexpected error: %v", err)
	}

	if filepath.Dir(got.Path) != tmp {
		t.Errorf("Path = %q, want inside %q", got.Path, tmp)
	}
	if !strings.HasSuffix(got.Path, ".webm") {
		t.Errorf("Path = %q, want .webm extension", got.Path)
	}
	data, err := os.ReadFile(got.Path)
	if err != nil || string(data) != "webm-bytes" {
		t.Errorf("downloaded content = %q, %v", data, err)
	}

	if err := got.Cleanup(); err != nil {
		t.Fatalf("Cleanup() error = %v", err)
	}
	if _, err := os.Stat(got.Path); !os.IsNotExist(err) {
		t.Error("Cleanup() should remove the downloaded temp file")
	}
}

func TestLocator_Locate_HTTPRetriesServerErrors(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			io.WriteString(w, "partial garbage")
			return
		}
		io.WriteString(w, "ok")
	}))
	defer srv.Close()

	l := NewLocator(WithTempDir(t.TempDir()), WithMaxAttempts(3))

	got, err := l.Locate(context.Background(), srv.URL+"/clip.mov")
	if err != nil {
		t.Fatalf("Locate() unexpected error: %v", err)
	}
	defer got.Cleanup()

	if n := atomic.LoadInt32(&hits); n != 3 {
		t.Errorf("server hit %d times, want 3", n)
	}
	data, _ := os.ReadFile(got.Path)
	if string(data) != "ok" {
		t.Errorf("content = %q, want only the final attempt's body", data)
	}
	if !strings.HasSuffix(got.Path, ".mov") {
		t.Errorf("Path = %q, want extension from url path", got.Path)
	}
}

func TestLocator_Locate_HTTPClientErrorsArePermanent(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr error
	}{
		{name: "not found", status: http.StatusNotFound, wantErr: audio.ErrSourceNotFound},
		{name: "gone", status: http.StatusGone, wantErr: audio.ErrSourceNotFound},
		{name: "forbidden", status: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hits int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&hits, 1)
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			tmp := t.TempDir()
			l := NewLocator(WithTempDir(tmp), WithMaxAttempts(5))

			_, err := l.Locate(context.Background(), srv.URL+"/clip.mp4")
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Locate() error = %v, want %v", err, tt.wantErr)
			}
			if n := atomic.LoadInt32(&hits); n != 1 {
				t.Errorf("server hit %d times, want 1", n)
			}
			entries, _ := os.ReadDir(tmp)
			if len(entries) != 0 {
				t.Errorf("temp dir should be empty after failure, found %d entries", len(entries))
			}
		})
	}
}

func TestLocator_Locate_HTTPGivesUp(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	l := NewLocator(WithTempDir(t.TempDir()), WithMaxAttempts(2), WithDownloadTimeout(10*time.Second))

	_, err := l.Locate(context.Background(), srv.URL+"/clip.mp4")
	if err == nil || !strings.Contains(err.Error(), "status 502") {
		t.Fatalf("Locate() error = %v, want status 502", err)
	}
	if n := atomic.LoadInt32(&hits); n != 2 {
		t.Errorf("server hit %d times, want 2", n)
	}
}

type mockDrive struct {
	info    *drive.FileInfo
	content string
	err     error
}

func (m *mockDrive) DownloadFile(ctx context.Context, fileID string, w io.Writer) (*drive.FileInfo, error) {
	if m.err != nil {
		return nil, m.err
	}
	n, _ := io.Copy(w, bytes.NewBufferString(m.content))
	info := *m.info
	info.Size = n
	return &info, nil
}

func TestLocator_Locate_Drive(t *testing.T) {
	var built int
	m := &mockDrive{info: &drive.FileInfo{ID: "abc", Name: "service.mp4", MimeType: "video/mp4"}, content: "mp4"}
	l := NewLocator(WithTempDir(t.TempDir()), WithDriveFactory(func(ctx context.Context) (DriveDownloader, error) {
		built++
		return m, nil
	}))

	for i := 0; i < 2; i++ {
		got, err := l.Locate(context.Background(), "drive://abc")
		if err != nil {
			t.Fatalf("Locate() unexpected error: %v", err)
		}
		if !strings.HasSuffix(got.Path, ".mp4") {
			t.Errorf("Path = %q, want .mp4", got.Path)
		}
		if err := got.Cleanup(); err != nil {
			t.Errorf("Cleanup() error = %v", err)
		}
	}

	if built != 1 {
		t.Errorf("drive factory called %d times, want 1", built)
	}
}

func TestLocator_Locate_DriveErrors(t *testing.T) {
	l := NewLocator(WithTempDir(t.TempDir()))
	if _, err := l.Locate(context.Background(), "drive://abc"); !errors.Is(err, audio.ErrInvalidRequest) {
		t.Errorf("unconfigured drive error = %v, want ErrInvalidRequest", err)
	}

	m := &mockDrive{err: audio.ErrSourceNotFound}
	l = NewLocator(WithTempDir(t.TempDir()), WithDriveFactory(func(ctx context.Context) (DriveDownloader, error) {
		return m, nil
	}))
	if _, err := l.Locate(context.Background(), "drive://"); !errors.Is(err, audio.ErrInvalidRequest) {
		t.Errorf("empty id error = %v, want ErrInvalidRequest", err)
	}
	if _, err := l.Locate(context.Background(), "drive://missing"); !errors.Is(err, audio.ErrSourceNotFound) {
		t.Errorf("missing file error = %v, want ErrSourceNotFound", err)
	}
}

func TestExtensionFor(t *testing.T) {
	tests := []struct {
		mimeType string
		name     string
		want     string
	}{
		{"video/mp4", "", ".mp4"},
		{"video/webm; codecs=vp9", "", ".webm"},
		{"video/quicktime", "x.bin", ".mov"},
		{"application/octet-stream", "/path/clip.MKV", ".mkv"},
		{"", "lecture.mp4", ".mp4"},
		{"", "archive.zip", ".tmp"},
		{"text/html", "", ".tmp"},
	}

	for _, tt := range tests {
		if got := ExtensionFor(tt.mimeType, tt.name); got != tt.want {
			t.Errorf("ExtensionFor(%q, %q) = %q, want %q", tt.mimeType, tt.name, got, tt.want)
		}
	}
}
