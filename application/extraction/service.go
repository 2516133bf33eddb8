package extraction

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"audio-from-video/domain/audio"
)

// Input represents one extraction call from a host application
type Input struct {
	Path        string // Source video location (path or URL)
	OutputPath  string // Optional destination; generated in the cache directory when empty
	IncludeData bool   // Return the audio inline as a data URI
}

// Service runs the extraction pipeline: resolve track, compose range,
// export with fallback, package the result. It keeps no state between calls.
type Service struct {
	locator     audio.SourceLocator
	prober      audio.TrackProber
	destination audio.DestinationPreparer
	files       audio.FileStore
	strategist  *Strategist
	packager    *Packager
	log         logrus.FieldLogger
}

// ServiceOption is a functional option for configuring Service
type ServiceOption func(*Service)

// WithLogger sets the logger used for pipeline stages
func WithLogger(log logrus.FieldLogger) ServiceOption {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// NewService creates a new extraction Service
func NewService(
	locator audio.SourceLocator,
	prober audio.TrackProber,
	exporter audio.Exporter,
	destination audio.DestinationPreparer,
	files audio.FileStore,
	opts ...ServiceOption,
) *Service {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	s := &Service{
		locator:     locator,
		prober:      prober,
		destination: destination,
		files:       files,
		log:         discard,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.strategist = NewStrategist(exporter, files, s.log)
	s.packager = NewPackager(files)

	return s
}

// Extract runs the pipeline for one request
func (s *Service) Extract(ctx context.Context, input Input) (*audio.Result, error) {
	started := time.Now()

	req, err := audio.NewExtractionRequest(input.Path, input.OutputPath, input.IncludeData)
	if err != nil {
		return nil, err
	}

	log := s.log.WithField("source", req.Source)

	src, err := s.locator.Locate(ctx, req.Source)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cleanupErr := src.Cleanup(); cleanupErr != nil {
			log.WithError(cleanupErr).Warn("failed to remove temporary source")
		}
	}()

	track, err := s.resolveTrack(ctx, src.Path)
	if err != nil {
		return nil, err
	}
	log.WithField("track", track.String()).Debug("audio track resolved")

	composition, err := audio.Compose(src.Path, track)
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"range":   composition.Range.String(),
		"clipped": composition.Clipped(),
	}).Debug("composition built")

	destination, err := s.destination.Prepare(req.OutputPath)
	if err != nil {
		return nil, fmt.Errorf("%w: output path: %v", audio.ErrInvalidRequest, err)
	}

	profile, err := s.strategist.Export(ctx, composition, destination)
	if err != nil {
		_ = s.files.Remove(destination)
		return nil, err
	}

	result, err := s.packager.Package(destination, req.IncludeData)
	if err != nil {
		_ = s.files.Remove(destination)
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"path":     result.Path,
		"size":     result.FileSize,
		"profile":  profile.String(),
		"duration": time.Since(started).Round(time.Millisecond).String(),
	}).Info("audio extracted")

	return result, nil
}

// resolveTrack probes the source and selects its first audio track
func (s *Service) resolveTrack(ctx context.Context, path string) (audio.Track, error) {
	probe, err := s.prober.Probe(ctx, path)
	if err != nil {
		return audio.Track{}, err
	}
	return probe.FirstAudioTrack()
}
