package extraction

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"audio-from-video/domain/audio"
)

// Strategist runs the two-tier export: passthrough when the exporter supports
// it for the composition, then a single re-encode fallback. No further retries.
type Strategist struct {
	exporter audio.Exporter
	files    audio.FileStore
	log      logrus.FieldLogger
}

// NewStrategist creates a new Strategist
func NewStrategist(exporter audio.Exporter, files audio.FileStore, log logrus.FieldLogger) *Strategist {
	return &Strategist{
		exporter: exporter,
		files:    files,
		log:      log,
	}
}

// Export writes c to destination and returns the profile that produced it
func (s *Strategist) Export(ctx context.Context, c *audio.Composition, destination string) (audio.ProfileKind, error) {
	supported, err := s.exporter.SupportedProfiles(ctx, c)
	if err != nil {
		return 0, err
	}

	log := s.log.WithFields(logrus.Fields{
		"track":       c.Track.String(),
		"range":       c.Range.String(),
		"destination": destination,
	})

	var passthroughErr error
	if audio.Supports(supported, audio.Passthrough) {
		passthroughErr = s.attempt(ctx, c, audio.Passthrough, destination)
		if passthroughErr == nil {
			log.WithField("profile", audio.Passthrough).Debug("export completed")
			return audio.Passthrough, nil
		}
		log.WithError(passthroughErr).Warn("passthrough export failed, re-encoding")
	} else {
		log.WithField("codec", c.Track.Codec).Info("passthrough unsupported, re-encoding")
	}

	fallbackErr := s.fallback(ctx, c, supported, destination)
	if fallbackErr == nil {
		log.WithField("profile", audio.ReEncodeM4A).Debug("export completed")
		return audio.ReEncodeM4A, nil
	}

	if passthroughErr != nil {
		return 0, fmt.Errorf("%w (passthrough attempt: %v)", fallbackErr, passthroughErr)
	}
	return 0, fallbackErr
}

func (s *Strategist) fallback(ctx context.Context, c *audio.Composition, supported []audio.ProfileKind, destination string) error {
	if !audio.Supports(supported, audio.ReEncodeM4A) {
		return fmt.Errorf("%w: %s for %s", audio.ErrExportSessionUnavailable, audio.ReEncodeM4A, c.Track)
	}
	return s.attempt(ctx, c, audio.ReEncodeM4A, destination)
}

// attempt clears the destination and runs one export
func (s *Strategist) attempt(ctx context.Context, c *audio.Composition, kind audio.ProfileKind, destination string) error {
	_ = s.files.Remove(destination)
	return s.exporter.Export(ctx, c, audio.NewExportProfile(kind, c.Range), destination)
}
