package audio

import "fmt"

// Composition is a request-scoped, audio-only timeline holding one track
// clipped to a time range. It is never persisted.
type Composition struct {
	Source string
	Track  Track
	Range  TimeRange
}

// Compose clips the track to [0, min(duration, MaxDuration)) and places it at
// timeline position zero. Tracks without a positive duration cannot be composed.
func Compose(source string, track Track) (*Composition, error) {
	if source == "" {
		return nil, fmt.Errorf("%w: source is required", ErrComposition)
	}
	if track.Duration <= 0 {
		return nil, fmt.Errorf("%w: %s has no readable duration", ErrComposition, track)
	}

	r := NewTimeRange(track.Duration)
	if r.IsEmpty() {
		return nil, fmt.Errorf("%w: empty time range for %s", ErrComposition, track)
	}

	return &Composition{
		Source: source,
		Track:  track,
		Range:  r,
	}, nil
}

// Clipped returns true when the range is shorter than the track itself
func (c *Composition) Clipped() bool {
	return c.Range.Duration < c.Track.Duration
}
