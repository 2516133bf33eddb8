package ffmpeg

import (
	"context"
	"fmt"

	"audio-from-video/domain/audio"
)

// Unavailable stands in for the media pipeline where ffmpeg cannot run.
// Every call fails with audio.ErrUnimplemented instead of hanging or returning empty data.
type Unavailable struct {
	Reason string
}

// NewUnavailable creates a stub that reports why the pipeline is missing
func NewUnavailable(reason string) *Unavailable {
	return &Unavailable{Reason: reason}
}

func (u *Unavailable) err() error {
	if u.Reason == "" {
		return audio.ErrUnimplemented
	}
	return fmt.Errorf("%w: %s", audio.ErrUnimplemented, u.Reason)
}

// Probe implements audio.TrackProber
func (u *Unavailable) Probe(ctx context.Context, source string) (*audio.Probe, error) {
	return nil, u.err()
}

// SupportedProfiles implements audio.Exporter
func (u *Unavailable) SupportedProfiles(ctx context.Context, c *audio.Composition) ([]audio.ProfileKind, error) {
	return nil, u.err()
}

// Export implements audio.Exporter
func (u *Unavailable) Export(ctx context.Context, c *audio.Composition, profile audio.ExportProfile, destination string) error {
	return u.err()
}

var (
	_ audio.TrackProber = (*Unavailable)(nil)
	_ audio.Exporter    = (*Unavailable)(nil)
)
