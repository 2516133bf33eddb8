package extraction

import (
	"fmt"

	"audio-from-video/domain/audio"
)

// Packager builds the Result record for a successful export
type Packager struct {
	files audio.FileStore
}

// NewPackager creates a new Packager
func NewPackager(files audio.FileStore) *Packager {
	return &Packager{files: files}
}

// Package reads the output size and, when asked, inlines the file as a data URI.
// A file that cannot be read after a reported success is an error, never a zero size.
func (p *Packager) Package(path string, includeData bool) (*audio.Result, error) {
	size, err := p.files.Size(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading size of %s: %v", audio.ErrPostProcessing, path, err)
	}

	result := &audio.Result{
		Path:     path,
		FileSize: size,
		MimeType: audio.MimeType,
	}

	if !includeData {
		return result, nil
	}

	data, err := p.files.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", audio.ErrPostProcessing, path, err)
	}

	result.FileSize = int64(len(data))
	result.DataURL = audio.EncodeDataURL(audio.MimeType, data)

	return result, nil
}
