package audio

import (
	"fmt"
	"strings"
)

// ExtractionRequest is one call into the pipeline
type ExtractionRequest struct {
	Source      string // path or URL of the input video
	OutputPath  string // optional destination; generated in the cache directory when empty
	IncludeData bool   // return the file inline as a data URI
}

// NewExtractionRequest creates a new ExtractionRequest with validation
func NewExtractionRequest(source, outputPath string, includeData bool) (*ExtractionRequest, error) {
	req := &ExtractionRequest{
		Source:      strings.TrimSpace(source),
		OutputPath:  strings.TrimSpace(outputPath),
		IncludeData: includeData,
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}

	return req, nil
}

// Validate checks that the request can be processed
func (r *ExtractionRequest) Validate() error {
	if r.Source == "" {
		return fmt.Errorf("%w: source video path is required", ErrInvalidRequest)
	}
	return nil
}

// HasOutputPath returns true if the caller chose the destination
func (r *ExtractionRequest) HasOutputPath() bool {
	return r.OutputPath != ""
}
