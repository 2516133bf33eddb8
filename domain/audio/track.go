package audio

import (
	"fmt"
	"time"
)

// Track is one decodable audio stream inside a source container
type Track struct {
	Index      int // stream index within the container
	Codec      string
	Channels   int
	SampleRate int
	Duration   time.Duration
}

// String returns a short description used in logs and errors
func (t Track) String() string {
	return fmt.Sprintf("stream #%d (%s, %s)", t.Index, t.Codec, t.Duration)
}

// Probe describes the streams found in a source container
type Probe struct {
	Source      string
	FormatName  string
	AudioTracks []Track
}

// FirstAudioTrack returns the first audio track of the probe.
// Additional audio tracks are ignored.
func (p *Probe) FirstAudioTrack() (Track, error) {
	if p == nil || len(p.AudioTracks) == 0 {
		return Track{}, ErrNoAudioTrack
	}
	return p.AudioTracks[0], nil
}
