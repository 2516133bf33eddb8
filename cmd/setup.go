package cmd

import (
	"fmt"
	"os"

	"audio-from-video/infrastructure/config"
	"audio-from-video/infrastructure/filesystem"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
)

// Prompter interface for interactive prompts (allows mocking in tests)
type Prompter interface {
	Input(message string, defaultValue string) (string, error)
	Confirm(message string, defaultValue bool) (bool, error)
	Select(message string, options []string, defaultValue string) (string, error)
}

// SurveyPrompter implements Prompter using the survey library
type SurveyPrompter struct{}

func (p *SurveyPrompter) Input(message string, defaultValue string) (string, error) {
	result := ""
	prompt := &survey.Input{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return "", err
	}
	return result, nil
}

func (p *SurveyPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	result := defaultValue
	prompt := &survey.Confirm{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return false, err
	}
	return result, nil
}

func (p *SurveyPrompter) Select(message string, options []string, defaultValue string) (string, error) {
	result := defaultValue
	prompt := &survey.Select{
		Message: message,
		Options: options,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return "", err
	}
	return result, nil
}

// DefaultPrompter is the prompter used in production
var DefaultPrompter Prompter = &SurveyPrompter{}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create configuration file interactively",
	Long: `Prompts for configuration values and creates config.yaml.

This command guides you through the ffmpeg binaries, output cache directory,
optional Google Drive access and server settings.`,
	RunE: runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	return RunSetupWithPrompter(DefaultPrompter, cfgFile)
}

// RunSetupWithPrompter runs the setup with a given prompter (for testing)
func RunSetupWithPrompter(prompter Prompter, configPath string) error {
	if configPath == "" {
		configPath = config.DefaultPath
	}

	if _, err := os.Stat(configPath); err == nil {
		overwrite, err := prompter.Confirm("config.yaml already exists. Overwrite?", false)
		if err != nil {
			return fmt.Errorf("prompt cancelled")
		}
		if !overwrite {
			fmt.Fprintln(DefaultOutput, "Setup cancelled.")
			return nil
		}
	}

	fmt.Fprintln(DefaultOutput, "Welcome to audio-from-video setup!")
	fmt.Fprintln(DefaultOutput)

	cfg := config.Default()

	if err := promptFFmpeg(prompter, cfg); err != nil {
		return err
	}
	if err := promptPaths(prompter, cfg); err != nil {
		return err
	}
	if err := promptGoogle(prompter, cfg); err != nil {
		return err
	}
	if err := promptServer(prompter, cfg); err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := config.Save(cfg, configPath); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	fmt.Fprintln(DefaultOutput)
	fmt.Fprintf(DefaultOutput, "Configuration saved to %s\n", configPath)
	return nil
}

// ask returns the answer, or fallback when it is empty
func ask(prompter Prompter, message, fallback string) (string, error) {
	answer, err := prompter.Input(message, fallback)
	if err != nil {
		return "", fmt.Errorf("prompt cancelled")
	}
	if answer == "" {
		answer = fallback
	}
	return answer, nil
}

func promptFFmpeg(prompter Prompter, cfg *config.Config) error {
	var err error
	if cfg.FFmpeg.FFmpegPath, err = ask(prompter, "Path to the ffmpeg executable?", cfg.FFmpeg.FFmpegPath); err != nil {
		return err
	}
	if cfg.FFmpeg.FFprobePath, err = ask(prompter, "Path to the ffprobe executable?", cfg.FFmpeg.FFprobePath); err != nil {
		return err
	}
	if cfg.FFmpeg.ReEncodeBitrate, err = ask(prompter, "AAC bitrate when re-encoding?", cfg.FFmpeg.ReEncodeBitrate); err != nil {
		return err
	}
	return nil
}

func promptPaths(prompter Prompter, cfg *config.Config) error {
	defaultDir := filesystem.DefaultCacheDir()
	dir, err := ask(prompter, "Where should generated audio files go?", defaultDir)
	if err != nil {
		return err
	}
	if dir != defaultDir {
		cfg.Paths.CacheDirectory = dir
	}
	return nil
}

func promptGoogle(prompter Prompter, cfg *config.Config) error {
	enable, err := prompter.Confirm("Enable drive:// sources from Google Drive?", false)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if !enable {
		return nil
	}

	credentials, err := ask(prompter, "Path to Google credentials file?", "credentials.json")
	if err != nil {
		return err
	}
	cfg.Google.CredentialsFile = credentials

	oauth, err := prompter.Confirm("Sign in as a user (OAuth)? Choose no for a service account.", true)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if oauth {
		token, err := ask(prompter, "Where should the OAuth token be stored?", "token.json")
		if err != nil {
			return err
		}
		cfg.Google.TokenFile = token
	}
	return nil
}

func promptServer(prompter Prompter, cfg *config.Config) error {
	var err error
	if cfg.Server.Address, err = ask(prompter, "HTTP listen address for 'serve'?", cfg.Server.Address); err != nil {
		return err
	}

	level, err := prompter.Select("Log level?", []string{"debug", "info", "warn", "error"}, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	cfg.Logging.Level = level

	format, err := prompter.Select("Log format?", []string{"text", "json"}, cfg.Logging.Format)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	cfg.Logging.Format = format
	return nil
}
