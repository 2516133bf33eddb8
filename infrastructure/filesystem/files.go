package filesystem

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"audio-from-video/domain/audio"
)

// Files implements audio.FileStore using the os package
type Files struct{}

// NewFiles creates a new filesystem store
func NewFiles() *Files {
	return &Files{}
}

// Exists returns true if the file exists
func (f *Files) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Remove deletes the file at path; a missing file is not an error
func (f *Files) Remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Size returns the size in bytes of a regular file
func (f *Files) Size(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	if !info.Mode().IsRegular() {
		return 0, fmt.Errorf("%s is not a regular file", path)
	}
	return info.Size(), nil
}

// ReadFile returns the full contents of the file
func (f *Files) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Ensure Files implements audio.FileStore
var _ audio.FileStore = (*Files)(nil)
