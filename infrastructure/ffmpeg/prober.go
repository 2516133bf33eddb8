package ffmpeg

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"audio-from-video/domain/audio"
)

// probeResult contains the parts of ffprobe's JSON output the pipeline reads
type probeResult struct {
	Streams []probeStream `json:"streams"`
	Format  probeFormat   `json:"format"`
}

type probeStream struct {
	Index      int    `json:"index"`
	CodecName  string `json:"codec_name"` // aac
	CodecType  string `json:"codec_type"` // audio, video, subtitle, data
	SampleRate string `json:"sample_rate,omitempty"`
	Channels   int    `json:"channels,omitempty"`
	Duration   string `json:"duration,omitempty"` // seconds as float string; often absent in Matroska
}

type probeFormat struct {
	Filename   string `json:"filename"`
	FormatName string `json:"format_name"` // mov,mp4,m4a,3gp,3g2,mj2
	Duration   string `json:"duration,omitempty"`
}

// Prober implements audio.TrackProber using ffprobe
type Prober struct {
	ffprobePath string
	runner      CommandRunner
}

// ProberOption is a functional option for configuring Prober
type ProberOption func(*Prober)

// WithFFprobePath sets a custom ffprobe executable path
func WithFFprobePath(path string) ProberOption {
	return func(p *Prober) {
		if path != "" {
			p.ffprobePath = path
		}
	}
}

// WithProberCommandRunner sets a custom command runner (for testing)
func WithProberCommandRunner(runner CommandRunner) ProberOption {
	return func(p *Prober) {
		if runner != nil {
			p.runner = runner
		}
	}
}

// NewProber creates a new ffprobe-based track prober
func NewProber(opts ...ProberOption) *Prober {
	p := &Prober{
		ffprobePath: "ffprobe",
		runner:      &ExecCommandRunner{},
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Probe implements audio.TrackProber
func (p *Prober) Probe(ctx context.Context, source string) (*audio.Probe, error) {
	out, err := p.runner.Output(ctx, p.ffprobePath,
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		source,
	)
	if err != nil {
		return nil, fmt.Errorf("ffprobe failed for %s: %w", source, err)
	}

	var res probeResult
	if err := json.Unmarshal(out, &res); err != nil {
		return nil, fmt.Errorf("ffprobe returned invalid JSON for %s: %w", source, err)
	}

	return toProbe(source, &res), nil
}

// VerifyInstalled checks that ffprobe is available
func (p *Prober) VerifyInstalled(ctx context.Context) error {
	_, err := p.runner.Output(ctx, p.ffprobePath, "-version")
	if err != nil {
		return fmt.Errorf("ffprobe not found or not executable: %w", err)
	}
	return nil
}

func toProbe(source string, res *probeResult) *audio.Probe {
	probe := &audio.Probe{
		Source:     source,
		FormatName: res.Format.FormatName,
	}

	containerDuration := parseSeconds(res.Format.Duration)

	for _, s := range res.Streams {
		if s.CodecType != "audio" {
			continue
		}

		duration := parseSeconds(s.Duration)
		if duration <= 0 {
			duration = containerDuration
		}

		sampleRate, _ := strconv.Atoi(s.SampleRate)

		probe.AudioTracks = append(probe.AudioTracks, audio.Track{
			Index:      s.Index,
			Codec:      strings.ToLower(s.CodecName),
			Channels:   s.Channels,
			SampleRate: sampleRate,
			Duration:   duration,
		})
	}

	return probe
}

// parseSeconds converts ffprobe's "310.666667" into a duration; unknown values yield 0
func parseSeconds(s string) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" || s == "N/A" {
		return 0
	}
	secs, err := strconv.ParseFloat(s, 64)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs * float64(time.Second))
}

// Ensure Prober implements audio.TrackProber
var _ audio.TrackProber = (*Prober)(nil)
