package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"audio-from-video/application/extraction"
	"audio-from-video/domain/audio"
)

// Extractor runs one extraction
type Extractor interface {
	Extract(ctx context.Context, input extraction.Input) (*audio.Result, error)
}

// HealthChecker reports whether the encoder binaries are usable
type HealthChecker func(ctx context.Context) bool

// ExtractRequest is the body of POST /api/v1/extract-audio
type ExtractRequest struct {
	Path        string `json:"path"`
	OutputPath  string `json:"outputPath"`
	IncludeData bool   `json:"includeData"`
}

// ErrorResponse is returned for every failed request
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HealthResponse is returned by GET /health
type HealthResponse struct {
	Status string `json:"status"`
	FFmpeg bool   `json:"ffmpeg"`
}

// ExtractHandler handles extraction requests.
// Remote callers may only write below outputRoot.
type ExtractHandler struct {
	extractor  Extractor
	outputRoot string
}

// NewExtractHandler creates a new ExtractHandler confined to outputRoot
func NewExtractHandler(extractor Extractor, outputRoot string) *ExtractHandler {
	return &ExtractHandler{extractor: extractor, outputRoot: filepath.Clean(outputRoot)}
}

// HandleExtract handles POST /api/v1/extract-audio
func (h *ExtractHandler) HandleExtract(c *gin.Context) {
	var req ExtractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error(), Code: audio.KindInvalidRequest})
		return
	}

	outputPath, err := h.confine(req.OutputPath)
	if err != nil {
		c.JSON(StatusFor(err), ErrorResponse{Error: err.Error(), Code: audio.Kind(err)})
		return
	}

	result, err := h.extractor.Extract(c.Request.Context(), extraction.Input{
		Path:        req.Path,
		OutputPath:  outputPath,
		IncludeData: req.IncludeData,
	})
	if err != nil {
		c.JSON(StatusFor(err), ErrorResponse{Error: err.Error(), Code: audio.Kind(err)})
		return
	}

	c.JSON(http.StatusOK, result)
}

// confine resolves a caller-supplied output path against the output root.
// Relative paths are taken from the root; anything resolving outside it is rejected.
// An empty path is left for the destination preparer to generate.
func (h *ExtractHandler) confine(outputPath string) (string, error) {
	if outputPath == "" {
		return "", nil
	}

	p := outputPath
	if !filepath.IsAbs(p) {
		p = filepath.Join(h.outputRoot, p)
	}
	p = filepath.Clean(p)

	rel, err := filepath.Rel(h.outputRoot, p)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: output path %q is outside %s", audio.ErrInvalidRequest, outputPath, h.outputRoot)
	}
	return p, nil
}

// StatusFor maps an extraction error to its HTTP status
func StatusFor(err error) int {
	switch {
	case errors.Is(err, audio.ErrUnimplemented):
		return http.StatusNotImplemented
	case errors.Is(err, audio.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, audio.ErrSourceNotFound):
		return http.StatusNotFound
	case errors.Is(err, audio.ErrNoAudioTrack), errors.Is(err, audio.ErrComposition):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func healthHandler(health HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok := health != nil && health(c.Request.Context())
		c.JSON(http.StatusOK, HealthResponse{Status: "ok", FFmpeg: ok})
	}
}
