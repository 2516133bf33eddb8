//go:build integration

package steps

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"audio-from-video/application/extraction"
	"audio-from-video/cmd"
	"audio-from-video/domain/audio"
	"audio-from-video/infrastructure/config"
	"audio-from-video/infrastructure/logging"

	"github.com/cucumber/godog"
)

const fakeOutputSize = 4096

// scriptedRunner stands in for ffmpeg and ffprobe, writing fake m4a files
type scriptedRunner struct {
	probeJSON     string
	copyFails     bool
	reencodeFails bool
	exports       [][]string
}

func (r *scriptedRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	switch {
	case strings.Contains(name, "ffprobe"):
		return []byte(r.probeJSON), nil
	case contains(args, "-encoders"):
		return []byte(" A....D aac                  AAC (Advanced Audio Coding)\n"), nil
	default:
		return []byte("ffmpeg version 7.0"), nil
	}
}

func (r *scriptedRunner) Run(ctx context.Context, name string, args ...string) error {
	r.exports = append(r.exports, args)

	copying := contains(args, "copy")
	if copying && r.copyFails {
		return errors.New("exit status 1: Could not find tag for codec in stream #0")
	}
	if !copying && r.reencodeFails {
		return errors.New("exit status 1: encoder aac failed")
	}

	dest := args[len(args)-1]
	return os.WriteFile(dest, bytes.Repeat([]byte{0xAB}, fakeOutputSize), 0644)
}

func (r *scriptedRunner) lastExport() []string {
	if len(r.exports) == 0 {
		return nil
	}
	return r.exports[len(r.exports)-1]
}

func contains(args []string, want string) bool {
	for _, a := range args {
		if a == want {
			return true
		}
	}
	return false
}

func argAfter(args []string, flag string) string {
	for i, a := range args {
		if a == flag && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

// extractContext holds test state for extract scenarios
type extractContext struct {
	tempDir    string
	cacheDir   string
	sourcePath string
	outputPath string
	runner     *scriptedRunner
	output     *bytes.Buffer
	result     *audio.Result
	err        error
}

// SharedExtractContext is reset before each scenario via Before hook
var SharedExtractContext *extractContext

func getExtractContext() *extractContext {
	return SharedExtractContext
}

func InitializeExtractScenario(ctx *godog.ScenarioContext) {
	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		tempDir, err := os.MkdirTemp("", "extract-test-*")
		if err != nil {
			return c, err
		}
		SharedExtractContext = &extractContext{
			tempDir:  tempDir,
			cacheDir: filepath.Join(tempDir, "cache"),
			runner:   &scriptedRunner{},
			output:   &bytes.Buffer{},
		}
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if e := getExtractContext(); e != nil && e.tempDir != "" {
			os.RemoveAll(e.tempDir)
		}
		return c, nil
	})

	ctx.Step(`^a source video "([^"]*)" with an "([^"]*)" audio track of (\d+) seconds$`, aSourceVideoWithTrack)
	ctx.Step(`^a source video "([^"]*)" without audio$`, aSourceVideoWithoutAudio)
	ctx.Step(`^stream copy fails$`, streamCopyFails)
	ctx.Step(`^re-encoding fails$`, reencodingFails)
	ctx.Step(`^an old file already exists at "([^"]*)"$`, anOldFileAlreadyExistsAt)
	ctx.Step(`^I extract audio to "([^"]*)"$`, iExtractAudioTo)
	ctx.Step(`^I extract audio to "([^"]*)" with inline data$`, iExtractAudioToWithInlineData)
	ctx.Step(`^I extract audio to "([^"]*)" as JSON$`, iExtractAudioToAsJSON)
	ctx.Step(`^I extract audio from "([^"]*)" to "([^"]*)"$`, iExtractAudioFromTo)
	ctx.Step(`^I extract audio without an output path$`, iExtractAudioWithoutAnOutputPath)
	ctx.Step(`^the extraction should succeed$`, theExtractionShouldSucceed)
	ctx.Step(`^the extraction should fail with kind "([^"]*)"$`, theExtractionShouldFailWithKind)
	ctx.Step(`^the error should mention "([^"]*)"$`, theErrorShouldMention)
	ctx.Step(`^ffmpeg should have run (\d+) exports?$`, ffmpegShouldHaveRunExports)
	ctx.Step(`^the last export should use stream copy$`, theLastExportShouldUseStreamCopy)
	ctx.Step(`^the last export should re-encode to AAC at "([^"]*)"$`, theLastExportShouldReencodeAt)
	ctx.Step(`^the last export should be limited to "([^"]*)" seconds$`, theLastExportShouldBeLimitedTo)
	ctx.Step(`^the last export should be capped at (\d+) bytes$`, theLastExportShouldBeCappedAt)
	ctx.Step(`^the result mime type should be "([^"]*)"$`, theResultMimeTypeShouldBe)
	ctx.Step(`^the output file should exist$`, theOutputFileShouldExist)
	ctx.Step(`^no output file should exist$`, noOutputFileShouldExist)
	ctx.Step(`^the output file should not contain the old content$`, theOutputFileShouldNotContainTheOldContent)
	ctx.Step(`^the result path should be in the cache directory with prefix "([^"]*)"$`, theResultPathShouldBeInTheCacheDirectory)
	ctx.Step(`^the data URI should decode to the reported file size$`, theDataURIShouldDecodeToTheReportedFileSize)
	ctx.Step(`^the JSON output should have "([^"]*)" "([^"]*)"$`, theJSONOutputShouldHave)
}

func aSourceVideoWithTrack(name, codec string, seconds int) error {
	e := getExtractContext()
	e.sourcePath = filepath.Join(e.tempDir, name)
	e.runner.probeJSON = fmt.Sprintf(`{
  "streams": [
    {"index": 0, "codec_name": "h264", "codec_type": "video", "duration": "%d.000000"},
    {"index": 1, "codec_name": %q, "codec_type": "audio", "sample_rate": "48000", "channels": 2, "duration": "%d.000000"}
  ],
  "format": {"filename": %q, "format_name": "mov,mp4,m4a,3gp,3g2,mj2", "duration": "%d.000000"}
}`, seconds, codec, seconds, e.sourcePath, seconds)
	return os.WriteFile(e.sourcePath, []byte("not really a video"), 0644)
}

func aSourceVideoWithoutAudio(name string) error {
	e := getExtractContext()
	e.sourcePath = filepath.Join(e.tempDir, name)
	e.runner.probeJSON = `{"streams": [{"index": 0, "codec_name": "h264", "codec_type": "video", "duration": "30.0"}], "format": {"duration": "30.0"}}`
	return os.WriteFile(e.sourcePath, []byte("not really a video"), 0644)
}

func streamCopyFails() error {
	getExtractContext().runner.copyFails = true
	return nil
}

func reencodingFails() error {
	getExtractContext().runner.reencodeFails = true
	return nil
}

func anOldFileAlreadyExistsAt(name string) error {
	e := getExtractContext()
	return os.WriteFile(filepath.Join(e.tempDir, name), []byte("OLD-CONTENT"), 0644)
}

func (e *extractContext) run(input extraction.Input, asJSON bool) {
	cfg := config.Default()
	cfg.Paths.CacheDirectory = e.cacheDir

	service := cmd.BuildService(cfg, logging.Discard(), e.runner)
	recorder := &recordingExtractor{next: service}

	e.err = cmd.RunExtractAudioWithDependencies(context.Background(), recorder, input, asJSON, e.output)
	e.result = recorder.result
}

// recordingExtractor keeps the result so steps can inspect it
type recordingExtractor struct {
	next   cmd.AudioExtractor
	result *audio.Result
}

func (r *recordingExtractor) Extract(ctx context.Context, input extraction.Input) (*audio.Result, error) {
	res, err := r.next.Extract(ctx, input)
	r.result = res
	return res, err
}

func iExtractAudioTo(name string) error {
	e := getExtractContext()
	e.outputPath = filepath.Join(e.tempDir, name)
	e.run(extraction.Input{Path: e.sourcePath, OutputPath: e.outputPath}, false)
	return nil
}

func iExtractAudioToWithInlineData(name string) error {
	e := getExtractContext()
	e.outputPath = filepath.Join(e.tempDir, name)
	e.run(extraction.Input{Path: e.sourcePath, OutputPath: e.outputPath, IncludeData: true}, false)
	return nil
}

func iExtractAudioToAsJSON(name string) error {
	e := getExtractContext()
	e.outputPath = filepath.Join(e.tempDir, name)
	e.run(extraction.Input{Path: e.sourcePath, OutputPath: e.outputPath}, true)
	return nil
}

func iExtractAudioFromTo(source, name string) error {
	e := getExtractContext()
	e.outputPath = filepath.Join(e.tempDir, name)
	e.run(extraction.Input{Path: filepath.Join(e.tempDir, source), OutputPath: e.outputPath}, false)
	return nil
}

func iExtractAudioWithoutAnOutputPath() error {
	e := getExtractContext()
	e.run(extraction.Input{Path: e.sourcePath}, false)
	if e.result != nil {
		e.outputPath = e.result.Path
	}
	return nil
}

func theExtractionShouldSucceed() error {
	e := getExtractContext()
	if e.err != nil {
		return fmt.Errorf("expected success, got: %w", e.err)
	}
	if e.result == nil {
		return fmt.Errorf("expected a result record")
	}
	return nil
}

func theExtractionShouldFailWithKind(kind string) error {
	e := getExtractContext()
	if e.err == nil {
		return fmt.Errorf("expected failure of kind %s, got success", kind)
	}
	if got := audio.Kind(e.err); got != kind {
		return fmt.Errorf("expected kind %s, got %s (%v)", kind, got, e.err)
	}
	if e.result != nil {
		return fmt.Errorf("a failed extraction must not return a record")
	}
	return nil
}

func theErrorShouldMention(text string) error {
	e := getExtractContext()
	if e.err == nil || !strings.Contains(e.err.Error(), text) {
		return fmt.Errorf("expected error mentioning %q, got %v", text, e.err)
	}
	return nil
}

func ffmpegShouldHaveRunExports(n int) error {
	if got := len(getExtractContext().runner.exports); got != n {
		return fmt.Errorf("expected %d export(s), got %d", n, got)
	}
	return nil
}

func theLastExportShouldUseStreamCopy() error {
	args := getExtractContext().runner.lastExport()
	if argAfter(args, "-c:a") != "copy" {
		return fmt.Errorf("expected -c:a copy, got args %v", args)
	}
	return nil
}

func theLastExportShouldReencodeAt(bitrate string) error {
	args := getExtractContext().runner.lastExport()
	if argAfter(args, "-c:a") != "aac" {
		return fmt.Errorf("expected -c:a aac, got args %v", args)
	}
	if got := argAfter(args, "-b:a"); got != bitrate {
		return fmt.Errorf("expected bitrate %s, got %s", bitrate, got)
	}
	return nil
}

func theLastExportShouldBeLimitedTo(seconds string) error {
	args := getExtractContext().runner.lastExport()
	if got := argAfter(args, "-t"); got != seconds {
		return fmt.Errorf("expected -t %s, got %s", seconds, got)
	}
	return nil
}

func theLastExportShouldBeCappedAt(bytes int) error {
	args := getExtractContext().runner.lastExport()
	if got := argAfter(args, "-fs"); got != fmt.Sprint(bytes) {
		return fmt.Errorf("expected -fs %d, got %s", bytes, got)
	}
	return nil
}

func theResultMimeTypeShouldBe(mimeType string) error {
	e := getExtractContext()
	if e.result == nil || e.result.MimeType != mimeType {
		return fmt.Errorf("expected mime type %s, got %+v", mimeType, e.result)
	}
	return nil
}

func theOutputFileShouldExist() error {
	e := getExtractContext()
	info, err := os.Stat(e.outputPath)
	if err != nil {
		return fmt.Errorf("output file missing: %w", err)
	}
	if info.Size() != e.result.FileSize {
		return fmt.Errorf("file is %d bytes, record says %d", info.Size(), e.result.FileSize)
	}
	return nil
}

func noOutputFileShouldExist() error {
	e := getExtractContext()
	if _, err := os.Stat(e.outputPath); !os.IsNotExist(err) {
		return fmt.Errorf("expected no file at %s", e.outputPath)
	}
	return nil
}

func theOutputFileShouldNotContainTheOldContent() error {
	e := getExtractContext()
	data, err := os.ReadFile(e.outputPath)
	if err != nil {
		return err
	}
	if bytes.Contains(data, []byte("OLD-CONTENT")) {
		return fmt.Errorf("stale content survived the overwrite")
	}
	return nil
}

func theResultPathShouldBeInTheCacheDirectory(prefix string) error {
	e := getExtractContext()
	if filepath.Dir(e.result.Path) != e.cacheDir {
		return fmt.Errorf("expected %s to be inside %s", e.result.Path, e.cacheDir)
	}
	base := filepath.Base(e.result.Path)
	if !strings.HasPrefix(base, prefix) || filepath.Ext(base) != ".m4a" {
		return fmt.Errorf("unexpected generated name %s", base)
	}
	return nil
}

func theDataURIShouldDecodeToTheReportedFileSize() error {
	e := getExtractContext()
	mimeType, data, ok := audio.DecodeDataURL(e.result.DataURL)
	if !ok {
		return fmt.Errorf("invalid data URI %.40q", e.result.DataURL)
	}
	if mimeType != audio.MimeType {
		return fmt.Errorf("data URI mime type %s", mimeType)
	}
	if int64(len(data)) != e.result.FileSize {
		return fmt.Errorf("decoded %d bytes, record says %d", len(data), e.result.FileSize)
	}
	return nil
}

func theJSONOutputShouldHave(key, value string) error {
	var decoded map[string]interface{}
	if err := json.Unmarshal(getExtractContext().output.Bytes(), &decoded); err != nil {
		return fmt.Errorf("output is not JSON: %w", err)
	}
	if decoded[key] != value {
		return fmt.Errorf("expected %s=%q, got %v", key, value, decoded[key])
	}
	return nil
}
