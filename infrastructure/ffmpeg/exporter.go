package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"audio-from-video/domain/audio"
)

// DefaultReEncodeBitrate is the AAC bitrate used by the re-encode profile.
// 300 seconds at 192 kbps is about 7 MB, comfortably under the size ceiling.
const DefaultReEncodeBitrate = "192k"

// DefaultTimeout bounds a single export attempt
const DefaultTimeout = 5 * time.Minute

// DefaultPassthroughCodecs lists codecs the m4a muxer stores without re-encoding
var DefaultPassthroughCodecs = []string{"aac", "alac"}

// m4a files are written by ffmpeg's ipod muxer
const m4aMuxer = "ipod"

// Exporter implements audio.Exporter using ffmpeg
type Exporter struct {
	ffmpegPath        string
	bitrate           string
	passthroughCodecs map[string]bool
	timeout           time.Duration
	runner            CommandRunner

	encodersMu    sync.Mutex
	encodersKnown bool
	aacEncoder    bool
}

// ExporterOption is a functional option for configuring Exporter
type ExporterOption func(*Exporter)

// WithFFmpegPath sets a custom ffmpeg executable path
func WithFFmpegPath(path string) ExporterOption {
	return func(e *Exporter) {
		if path != "" {
			e.ffmpegPath = path
		}
	}
}

// WithReEncodeBitrate sets the AAC bitrate for the re-encode profile
func WithReEncodeBitrate(bitrate string) ExporterOption {
	return func(e *Exporter) {
		if bitrate != "" {
			e.bitrate = bitrate
		}
	}
}

// WithPassthroughCodecs sets the codecs eligible for stream copy into m4a
func WithPassthroughCodecs(codecs []string) ExporterOption {
	return func(e *Exporter) {
		if len(codecs) == 0 {
			return
		}
		e.passthroughCodecs = codecSet(codecs)
	}
}

// WithTimeout bounds each export attempt
func WithTimeout(d time.Duration) ExporterOption {
	return func(e *Exporter) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithCommandRunner sets a custom command runner (for testing)
func WithCommandRunner(runner CommandRunner) ExporterOption {
	return func(e *Exporter) {
		if runner != nil {
			e.runner = runner
		}
	}
}

// NewExporter creates a new FFmpeg-based exporter
func NewExporter(opts ...ExporterOption) *Exporter {
	e := &Exporter{
		ffmpegPath:        "ffmpeg",
		bitrate:           DefaultReEncodeBitrate,
		passthroughCodecs: codecSet(DefaultPassthroughCodecs),
		timeout:           DefaultTimeout,
		runner:            &ExecCommandRunner{},
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// SupportedProfiles implements audio.Exporter.
// Passthrough needs a codec the m4a muxer accepts as-is; re-encoding needs ffmpeg's aac encoder.
func (e *Exporter) SupportedProfiles(ctx context.Context, c *audio.Composition) ([]audio.ProfileKind, error) {
	var supported []audio.ProfileKind

	if e.passthroughCodecs[strings.ToLower(c.Track.Codec)] {
		supported = append(supported, audio.Passthrough)
	}
	if e.hasAACEncoder(ctx) {
		supported = append(supported, audio.ReEncodeM4A)
	}

	return supported, nil
}

// Export implements audio.Exporter
func (e *Exporter) Export(ctx context.Context, c *audio.Composition, profile audio.ExportProfile, destination string) error {
	args, err := e.exportArgs(c, profile, destination)
	if err != nil {
		return err
	}

	runCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	if err := e.runner.Run(runCtx, e.ffmpegPath, args...); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %s: %v", audio.ErrExportCancelled, profile.Kind, ctx.Err())
		}
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%w: %s timed out after %v", audio.ErrExportFailed, profile.Kind, e.timeout)
		}
		return fmt.Errorf("%w: %s: %w", audio.ErrExportFailed, profile.Kind, err)
	}

	return checkOutput(destination, profile)
}

// exportArgs builds the ffmpeg invocation for one attempt
func (e *Exporter) exportArgs(c *audio.Composition, profile audio.ExportProfile, destination string) ([]string, error) {
	args := []string{"-hide_banner", "-nostdin", "-v", "error"}

	args = append(args,
		"-i", c.Source,
		"-map", "0:"+strconv.Itoa(c.Track.Index),
		"-vn", "-sn", "-dn", // Audio only
		"-t", profile.Range.Seconds(),
	)

	switch profile.Kind {
	case audio.Passthrough:
		args = append(args, "-c:a", "copy")
	case audio.ReEncodeM4A:
		args = append(args, "-c:a", "aac", "-b:a", e.bitrate)
		if ch := c.Track.Channels; ch > 2 {
			args = append(args, "-ac", "2") // Downmix surround
		}
	default:
		return nil, fmt.Errorf("%w: unknown profile %s", audio.ErrExportSessionUnavailable, profile.Kind)
	}

	args = append(args,
		"-fs", strconv.FormatInt(profile.SizeCeiling, 10),
		"-f", m4aMuxer,
		"-y", // Overwrite output file if it exists
		destination,
	)

	return args, nil
}

// checkOutput rejects missing, empty or oversized files after ffmpeg reported success
func checkOutput(destination string, profile audio.ExportProfile) error {
	info, err := os.Stat(destination)
	if err != nil {
		return fmt.Errorf("%w: %s produced no output: %v", audio.ErrExportFailed, profile.Kind, err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("%w: %s produced an empty file", audio.ErrExportFailed, profile.Kind)
	}
	if info.Size() > profile.SizeCeiling {
		return fmt.Errorf("%w: %s output is %d bytes, size ceiling is %d", audio.ErrExportFailed, profile.Kind, info.Size(), profile.SizeCeiling)
	}
	return nil
}

// hasAACEncoder inspects `ffmpeg -encoders`. Only a successful listing is
// cached; a failed or cancelled query is retried on the next request.
func (e *Exporter) hasAACEncoder(ctx context.Context) bool {
	e.encodersMu.Lock()
	defer e.encodersMu.Unlock()

	if e.encodersKnown {
		return e.aacEncoder
	}

	out, err := e.runner.Output(ctx, e.ffmpegPath, "-hide_banner", "-encoders")
	if err != nil {
		return false
	}
	e.aacEncoder = listsAudioEncoder(string(out), "aac")
	e.encodersKnown = true
	return e.aacEncoder
}

// listsAudioEncoder scans lines such as " A....D aac   AAC (Advanced Audio Coding)"
func listsAudioEncoder(encoders, name string) bool {
	for _, line := range strings.Split(encoders, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		if strings.HasPrefix(fields[0], "A") && fields[1] == name {
			return true
		}
	}
	return false
}

// VerifyInstalled checks that ffmpeg is available
func (e *Exporter) VerifyInstalled(ctx context.Context) error {
	_, err := e.runner.Output(ctx, e.ffmpegPath, "-version")
	if err != nil {
		return fmt.Errorf("ffmpeg not found or not executable: %w", err)
	}
	return nil
}

func codecSet(codecs []string) map[string]bool {
	set := make(map[string]bool, len(codecs))
	for _, c := range codecs {
		set[strings.ToLower(strings.TrimSpace(c))] = true
	}
	return set
}

// Ensure Exporter implements audio.Exporter
var _ audio.Exporter = (*Exporter)(nil)
