package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"audio-from-video/application/extraction"
	"audio-from-video/domain/audio"

	"github.com/spf13/cobra"
)

var (
	extractSource      string
	extractOutput      string
	extractIncludeData bool
	extractJSON        bool
)

var extractAudioCmd = &cobra.Command{
	Use:   "extract-audio",
	Short: "Extract audio from a video file",
	Long: `Extract the first audio track of a video into an m4a file.

At most the first 300 seconds are kept and the file never exceeds 9.9 MiB.
The audio is stream-copied when its codec fits m4a and re-encoded to AAC otherwise.
Without --output the file is written to the cache directory with a unique name.

Example:
  audio-from-video extract-audio --source "/path/to/video.mp4"
  audio-from-video extract-audio --source "https://example.com/clip.webm" --output clip.m4a
  audio-from-video extract-audio --source "drive://1AbCdEf" --include-data --json`,
	RunE: runExtractAudio,
}

func init() {
	rootCmd.AddCommand(extractAudioCmd)
	extractAudioCmd.Flags().StringVar(&extractSource, "source", "", "Path or URL of the source video (required)")
	extractAudioCmd.Flags().StringVar(&extractOutput, "output", "", "Destination m4a path (default: generated in the cache directory)")
	extractAudioCmd.Flags().BoolVar(&extractIncludeData, "include-data", false, "Include the audio as a base64 data URI")
	extractAudioCmd.Flags().BoolVar(&extractJSON, "json", false, "Print the result as JSON")
	extractAudioCmd.MarkFlagRequired("source")
}

func runExtractAudio(cmd *cobra.Command, args []string) error {
	cfg, err := requireConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	extractor, _ := NewExtractor(ctx, cfg, newLogger(cfg))

	return RunExtractAudioWithDependencies(
		ctx,
		extractor,
		extraction.Input{
			Path:        extractSource,
			OutputPath:  extractOutput,
			IncludeData: extractIncludeData,
		},
		extractJSON,
		os.Stdout,
	)
}

// RunExtractAudioWithDependencies runs the extract-audio command with injected dependencies (for testing)
func RunExtractAudioWithDependencies(
	ctx context.Context,
	extractor AudioExtractor,
	input extraction.Input,
	asJSON bool,
	output OutputWriter,
) error {
	if !asJSON {
		fmt.Fprintf(output, "Extracting audio from %s...\n", input.Path)
	}

	result, err := extractor.Extract(ctx, input)
	if err != nil {
		if asJSON {
			writeJSON(output, map[string]string{"error": err.Error(), "code": audio.Kind(err)})
		}
		return err
	}

	if asJSON {
		return writeJSON(output, result)
	}

	fmt.Fprintf(output, "Successfully created: %s (%d bytes, %s)\n", result.Path, result.FileSize, result.MimeType)
	if result.DataURL != "" {
		fmt.Fprintln(output, result.DataURL)
	}
	return nil
}

func writeJSON(output OutputWriter, v interface{}) error {
	enc := json.NewEncoder(output)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
