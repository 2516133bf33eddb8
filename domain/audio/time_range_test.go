package audio

import (
	"testing"
	"time"
)

func TestNewTimeRange(t *testing.T) {
	tests := []struct {
		name  string
		track time.Duration
		want  time.Duration
	}{
		{name: "short track keeps full length", track: 10 * time.Second, want: 10 * time.Second},
		{name: "exactly max duration", track: MaxDuration, want: MaxDuration},
		{name: "long track clipped", track: 600 * time.Second, want: MaxDuration},
		{name: "fractional length", track: 2500 * time.Millisecond, want: 2500 * time.Millisecond},
		{name: "zero length", track: 0, want: 0},
		{name: "negative length collapses", track: -5 * time.Second, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewTimeRange(tt.track)
			if got.Start != 0 {
				t.Errorf("NewTimeRange(%v).Start = %v, want 0", tt.track, got.Start)
			}
			if got.Duration != tt.want {
				t.Errorf("NewTimeRange(%v).Duration = %v, want %v", tt.track, got.Duration, tt.want)
			}
			if got.Duration < 0 {
				t.Errorf("NewTimeRange(%v) produced negative duration", tt.track)
			}
			if tt.track > 0 && got.Duration > tt.track {
				t.Errorf("NewTimeRange(%v) longer than the track", tt.track)
			}
		})
	}
}

func TestTimeRange_Seconds(t *testing.T) {
	tests := []struct {
		r    TimeRange
		want string
	}{
		{TimeRange{Duration: MaxDuration}, "300.000"},
		{TimeRange{Duration: 10 * time.Second}, "10.000"},
		{TimeRange{Duration: 1234 * time.Millisecond}, "1.234"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.r.Seconds(); got != tt.want {
				t.Errorf("TimeRange.Seconds() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTimeRange_End(t *testing.T) {
	r := TimeRange{Start: 0, Duration: 42 * time.Second}
	if r.End() != 42*time.Second {
		t.Errorf("TimeRange.End() = %v, want 42s", r.End())
	}
	if r.IsEmpty() {
		t.Error("expected non-empty range")
	}
	if !(TimeRange{}).IsEmpty() {
		t.Error("expected zero range to be empty")
	}
}
