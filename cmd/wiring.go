package cmd

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"audio-from-video/application/extraction"
	"audio-from-video/domain/audio"
	"audio-from-video/infrastructure/config"
	"audio-from-video/infrastructure/drive"
	"audio-from-video/infrastructure/ffmpeg"
	"audio-from-video/infrastructure/filesystem"
	"audio-from-video/infrastructure/logging"
	"audio-from-video/infrastructure/source"
)

// AudioExtractor runs one extraction (implemented by extraction.Service)
type AudioExtractor interface {
	Extract(ctx context.Context, input extraction.Input) (*audio.Result, error)
}

const verifyTimeout = 5 * time.Second

// NewExtractor wires the production pipeline. When ffmpeg cannot run on this host
// the returned extractor fails every call with audio.ErrUnimplemented.
func NewExtractor(ctx context.Context, c *config.Config, log *logging.Logger) (AudioExtractor, func(context.Context) bool) {
	prober, exporter := newMediaTools(c, nil)

	health := func(ctx context.Context) bool {
		return pipelineUnavailable(ctx, prober, exporter) == ""
	}

	if reason := pipelineUnavailable(ctx, prober, exporter); reason != "" {
		log.WithField("reason", reason).Warn("media pipeline unavailable")
		return &unavailableExtractor{stub: ffmpeg.NewUnavailable(reason)}, health
	}

	return BuildService(c, log, nil), health
}

// BuildService assembles the extraction service; a nil runner executes real binaries
func BuildService(c *config.Config, log *logging.Logger, runner ffmpeg.CommandRunner) *extraction.Service {
	prober, exporter := newMediaTools(c, runner)

	cacheDir := cacheDirFor(c)

	files := filesystem.NewFiles()
	destination := filesystem.NewDestination(cacheDir, filesystem.NewClockNameSource(), files)

	locatorOpts := []source.Option{
		source.WithDownloadTimeout(c.Source.DownloadTimeout),
		source.WithMaxAttempts(c.Source.MaxDownloadAttempts),
		source.WithLogger(log),
	}
	if c.Google.CredentialsFile != "" {
		locatorOpts = append(locatorOpts, source.WithDriveFactory(driveFactory(c.Google)))
	}

	return extraction.NewService(
		source.NewLocator(locatorOpts...),
		prober,
		exporter,
		destination,
		files,
		extraction.WithLogger(log),
	)
}

func newMediaTools(c *config.Config, runner ffmpeg.CommandRunner) (*ffmpeg.Prober, *ffmpeg.Exporter) {
	prober := ffmpeg.NewProber(
		ffmpeg.WithFFprobePath(c.FFmpeg.FFprobePath),
		ffmpeg.WithProberCommandRunner(runner),
	)
	exporter := ffmpeg.NewExporter(
		ffmpeg.WithFFmpegPath(c.FFmpeg.FFmpegPath),
		ffmpeg.WithReEncodeBitrate(c.FFmpeg.ReEncodeBitrate),
		ffmpeg.WithPassthroughCodecs(c.FFmpeg.PassthroughCodecs),
		ffmpeg.WithTimeout(c.FFmpeg.Timeout),
		ffmpeg.WithCommandRunner(runner),
	)
	return prober, exporter
}

// pipelineUnavailable returns why extraction cannot run here, or "" when it can
func pipelineUnavailable(ctx context.Context, prober *ffmpeg.Prober, exporter *ffmpeg.Exporter) string {
	if !ffmpeg.ProcessSupported {
		return fmt.Sprintf("process execution is not supported on %s/%s", runtime.GOOS, runtime.GOARCH)
	}

	verifyCtx, cancel := context.WithTimeout(ctx, verifyTimeout)
	defer cancel()

	if err := exporter.VerifyInstalled(verifyCtx); err != nil {
		return fmt.Sprintf("ffmpeg verification failed: %v", err)
	}
	if err := prober.VerifyInstalled(verifyCtx); err != nil {
		return fmt.Sprintf("ffprobe verification failed: %v", err)
	}
	return ""
}

// driveFactory authenticates lazily: OAuth user flow when a token file is configured,
// service account credentials otherwise
func driveFactory(g config.GoogleConfig) source.DriveFactory {
	return func(ctx context.Context) (source.DriveDownloader, error) {
		var (
			client *drive.Client
			err    error
		)
		if g.TokenFile == "" {
			client, err = drive.NewClient(ctx, g.CredentialsFile)
		} else {
			client, err = drive.NewClientWithOAuth(ctx, drive.OAuthConfig{
				CredentialsFile: g.CredentialsFile,
				TokenFile:       g.TokenFile,
				Prompt:          os.Stderr,
			})
		}
		if err != nil {
			return nil, err
		}
		return client, nil
	}
}

// unavailableExtractor reports the stub's error for every request
type unavailableExtractor struct {
	stub *ffmpeg.Unavailable
}

func (u *unavailableExtractor) Extract(ctx context.Context, input extraction.Input) (*audio.Result, error) {
	_, err := u.stub.Probe(ctx, input.Path)
	return nil, err
}

func cacheDirFor(c *config.Config) string {
	if c.Paths.CacheDirectory != "" {
		return c.Paths.CacheDirectory
	}
	return filesystem.DefaultCacheDir()
}

// outputRootFor is the directory HTTP callers may write into
func outputRootFor(c *config.Config) string {
	if c.Server.OutputRoot != "" {
		return c.Server.OutputRoot
	}
	return cacheDirFor(c)
}
