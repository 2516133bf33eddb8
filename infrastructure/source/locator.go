package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"audio-from-video/domain/audio"
	"audio-from-video/infrastructure/drive"
	"audio-from-video/infrastructure/filesystem"
)

const (
	// DefaultDownloadTimeout bounds one remote download including retries
	DefaultDownloadTimeout = 2 * time.Minute
	// DefaultMaxAttempts is the number of tries for a remote download
	DefaultMaxAttempts = 3

	// DriveScheme prefixes Google Drive file IDs
	DriveScheme = "drive://"

	tempPattern = "afv_src_*"
)

// DriveDownloader streams a Drive file into w
type DriveDownloader interface {
	DownloadFile(ctx context.Context, fileID string, w io.Writer) (*drive.FileInfo, error)
}

// DriveFactory builds a DriveDownloader on first use so that local runs never authenticate
type DriveFactory func(ctx context.Context) (DriveDownloader, error)

// Locator resolves a source reference into a readable local path
type Locator struct {
	httpClient      *http.Client
	driveFactory    DriveFactory
	tempDir         string
	downloadTimeout time.Duration
	maxAttempts     int
	log             logrus.FieldLogger

	mu    sync.Mutex
	drive DriveDownloader
}

// Option is a functional option for configuring Locator
type Option func(*Locator)

// WithHTTPClient sets the client used for http(s) sources
func WithHTTPClient(c *http.Client) Option {
	return func(l *Locator) {
		if c != nil {
			l.httpClient = c
		}
	}
}

// WithDriveFactory enables drive:// sources
func WithDriveFactory(f DriveFactory) Option {
	return func(l *Locator) {
		l.driveFactory = f
	}
}

// WithTempDir sets where downloaded sources are written
func WithTempDir(dir string) Option {
	return func(l *Locator) {
		l.tempDir = dir
	}
}

// WithDownloadTimeout bounds each remote download
func WithDownloadTimeout(d time.Duration) Option {
	return func(l *Locator) {
		if d > 0 {
			l.downloadTimeout = d
		}
	}
}

// WithMaxAttempts sets how many times an http(s) download is tried
func WithMaxAttempts(n int) Option {
	return func(l *Locator) {
		if n > 0 {
			l.maxAttempts = n
		}
	}
}

// WithLogger sets the logger used for download retries
func WithLogger(log logrus.FieldLogger) Option {
	return func(l *Locator) {
		if log != nil {
			l.log = log
		}
	}
}

// NewLocator creates a new Locator
func NewLocator(opts ...Option) *Locator {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	l := &Locator{
		httpClient:      http.DefaultClient,
		downloadTimeout: DefaultDownloadTimeout,
		maxAttempts:     DefaultMaxAttempts,
		log:             discard,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Locate implements audio.SourceLocator
func (l *Locator) Locate(ctx context.Context, ref string) (*audio.LocatedSource, error) {
	ref = strings.TrimSpace(ref)
	lower := strings.ToLower(ref)

	switch {
	case ref == "":
		return nil, fmt.Errorf("%w: source path is required", audio.ErrInvalidRequest)
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
		return l.fetchHTTP(ctx, ref)
	case strings.HasPrefix(lower, DriveScheme):
		return l.fetchDrive(ctx, ref[len(DriveScheme):])
	case strings.HasPrefix(lower, "file://"):
		return localSource(filesystem.FromFileURL(ref))
	case hasScheme(ref):
		return nil, fmt.Errorf("%w: unsupported source scheme in %q", audio.ErrInvalidRequest, ref)
	default:
		return localSource(ref)
	}
}

func localSource(path string) (*audio.LocatedSource, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", audio.ErrSourceNotFound, path, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", audio.ErrSourceNotFound, abs)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", audio.ErrSourceNotFound, abs)
	}

	return &audio.LocatedSource{Path: abs, Cleanup: func() error { return nil }}, nil
}

func (l *Locator) fetchDrive(ctx context.Context, fileID string) (*audio.LocatedSource, error) {
	fileID = strings.Trim(fileID, "/")
	if fileID == "" {
		return nil, fmt.Errorf("%w: drive file id is required", audio.ErrInvalidRequest)
	}

	downloader, err := l.driveDownloader(ctx)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, l.downloadTimeout)
	defer cancel()

	tmp, err := l.createTemp("")
	if err != nil {
		return nil, err
	}

	info, err := downloader.DownloadFile(ctx, fileID, tmp)
	closeErr := tmp.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return nil, err
	}

	path, err := renameWithExtension(tmp.Name(), ExtensionFor(info.MimeType, info.Name))
	if err != nil {
		os.Remove(tmp.Name())
		return nil, err
	}

	l.log.WithFields(logrus.Fields{
		"drive_id": fileID,
		"bytes":    info.Size,
	}).Debug("drive source downloaded")

	return tempSource(path), nil
}

func (l *Locator) driveDownloader(ctx context.Context) (DriveDownloader, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.drive != nil {
		return l.drive, nil
	}
	if l.driveFactory == nil {
		return nil, fmt.Errorf("%w: google drive credentials are not configured", audio.ErrInvalidRequest)
	}

	d, err := l.driveFactory(ctx)
	if err != nil {
		return nil, fmt.Errorf("connecting to google drive: %w", err)
	}
	l.drive = d
	return d, nil
}

func (l *Locator) createTemp(ext string) (*os.File, error) {
	dir := l.tempDir
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create temp directory: %w", err)
		}
	}

	f, err := os.CreateTemp(dir, tempPattern+ext)
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	return f, nil
}

func tempSource(path string) *audio.LocatedSource {
	return &audio.LocatedSource{
		Path: path,
		Cleanup: func() error {
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				return err
			}
			return nil
		},
	}
}

func renameWithExtension(path, ext string) (string, error) {
	target := path + ext
	if err := os.Rename(path, target); err != nil {
		return "", fmt.Errorf("failed to name temp source: %w", err)
	}
	return target, nil
}

// hasScheme reports whether ref looks like scheme://...; drive letters are not schemes
func hasScheme(ref string) bool {
	i := strings.Index(ref, "://")
	return i > 1
}
