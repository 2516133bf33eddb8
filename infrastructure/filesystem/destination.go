package filesystem

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"audio-from-video/domain/audio"
)

// GeneratedPrefix starts every generated output filename
const GeneratedPrefix = "afv_"

// NameSource produces unique base names (without extension) for generated outputs
type NameSource interface {
	NextName() string
}

// ClockNameSource names files from a clock and a random suffix: afv_<unix>_<8 hex>
type ClockNameSource struct {
	Now func() time.Time
}

// NewClockNameSource creates a name source reading the wall clock
func NewClockNameSource() *ClockNameSource {
	return &ClockNameSource{Now: time.Now}
}

// NextName implements NameSource
func (s *ClockNameSource) NextName() string {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s%d_%s", GeneratedPrefix, now().Unix(), suffix)
}

// Destination implements audio.DestinationPreparer
type Destination struct {
	cacheDir string
	names    NameSource
	files    audio.FileStore
}

// NewDestination creates a preparer that generates names inside cacheDir
func NewDestination(cacheDir string, names NameSource, files audio.FileStore) *Destination {
	if names == nil {
		names = NewClockNameSource()
	}
	if files == nil {
		files = NewFiles()
	}
	return &Destination{
		cacheDir: cacheDir,
		names:    names,
		files:    files,
	}
}

// Prepare returns an absolute destination with nothing at it.
// An empty desired path yields <cacheDir>/<name>.m4a. Deleting a
// pre-existing file is best effort; the exporter overwrites regardless.
func (d *Destination) Prepare(desired string) (string, error) {
	desired = strings.TrimSpace(desired)

	var path string
	if desired == "" {
		if d.cacheDir == "" {
			return "", fmt.Errorf("no output path given and no cache directory configured")
		}
		path = filepath.Join(d.cacheDir, d.names.NextName()+"."+audio.Container)
	} else {
		path = FromFileURL(desired)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve output path %q: %w", path, err)
	}

	if err := os.MkdirAll(filepath.Dir(abs), 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	_ = d.files.Remove(abs)

	return abs, nil
}

// FromFileURL strips a file:// scheme, leaving other paths untouched
func FromFileURL(p string) string {
	if rest, ok := strings.CutPrefix(p, "file://"); ok {
		// file://localhost/path and file:///path both name /path
		rest = strings.TrimPrefix(rest, "localhost")
		return rest
	}
	return p
}

// DefaultCacheDir returns the per-user cache directory for generated outputs
func DefaultCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "audio-from-video")
	}
	return filepath.Join(os.TempDir(), "audio-from-video")
}

// Ensure Destination implements audio.DestinationPreparer
var _ audio.DestinationPreparer = (*Destination)(nil)
