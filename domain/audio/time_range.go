package audio

import (
	"fmt"
	"time"
)

// MaxDuration is the longest audio span the pipeline will emit
const MaxDuration = 300 * time.Second

// TimeRange is the half-open interval [Start, Start+Duration)
type TimeRange struct {
	Start    time.Duration
	Duration time.Duration
}

// NewTimeRange returns [0, min(trackDuration, MaxDuration)).
// A negative track duration collapses to an empty range.
func NewTimeRange(trackDuration time.Duration) TimeRange {
	d := trackDuration
	if d < 0 {
		d = 0
	}
	if d > MaxDuration {
		d = MaxDuration
	}
	return TimeRange{Start: 0, Duration: d}
}

// End returns the exclusive end of the range
func (r TimeRange) End() time.Duration {
	return r.Start + r.Duration
}

// IsEmpty returns true when the range covers no samples
func (r TimeRange) IsEmpty() bool {
	return r.Duration <= 0
}

// Seconds formats the duration for ffmpeg duration flags (millisecond precision)
func (r TimeRange) Seconds() string {
	return fmt.Sprintf("%.3f", r.Duration.Seconds())
}

func (r TimeRange) String() string {
	return fmt.Sprintf("[%s, %s)", r.Start, r.End())
}
