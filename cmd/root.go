package cmd

import (
	"fmt"
	"os"

	"audio-from-video/infrastructure/config"
	"audio-from-video/infrastructure/logging"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	cfg     *config.Config
	cfgErr  error
)

var rootCmd = &cobra.Command{
	Use:   "audio-from-video",
	Short: "Extract a short m4a audio clip from a video",
	Long: `audio-from-video extracts the first audio track of a video into an m4a file:

  - At most the first 300 seconds of audio
  - Never larger than 9.9 MiB
  - Stream copy when the codec allows it, AAC re-encode otherwise
  - Local paths, file:// and http(s):// URLs, or drive://<fileID> sources

Example:
  audio-from-video extract-audio --source lecture.mp4 --output lecture.m4a`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./"+config.DefaultPath+")")
}

func initConfig() {
	if cfgFile == "" {
		cfgFile = config.DefaultPath
	}

	// A missing file yields defaults; only an unreadable or invalid file is an error
	cfg, cfgErr = config.Load(cfgFile)
}

// GetConfig returns the loaded configuration
func GetConfig() *config.Config {
	return cfg
}

func requireConfig() (*config.Config, error) {
	if cfgErr != nil {
		return nil, fmt.Errorf("configuration not loaded from %s: %w", cfgFile, cfgErr)
	}
	if cfg == nil {
		return config.Default(), nil
	}
	return cfg, nil
}

func newLogger(c *config.Config) *logging.Logger {
	return logging.New(logging.Options{
		Level:  c.Logging.Level,
		Format: c.Logging.Format,
	})
}

// OutputWriter allows capturing output in tests
type OutputWriter interface {
	Write(p []byte) (n int, err error)
}
