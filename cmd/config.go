package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"audio-from-video/infrastructure/config"

	"github.com/spf13/cobra"
)

// DefaultOutput is the default output writer for config commands
var DefaultOutput OutputWriter = os.Stdout

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show and edit configuration",
	Long: `Show the effective configuration or edit entries in the configuration file.

Examples:
  audio-from-video config show
  audio-from-video config get ffmpeg.timeout
  audio-from-video config set ffmpeg.reencode_bitrate 160k
  audio-from-video config add codec mp3
  audio-from-video config remove codec alac`,
}

func init() {
	rootCmd.AddCommand(configCmd)

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configAddCmd)
	configCmd.AddCommand(configRemoveCmd)
}

// --- SHOW command ---

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long: `Show every setting after defaults, the config file and environment overrides are applied.

Example:
  audio-from-video config show`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := requireConfig()
		if err != nil {
			return err
		}
		return RunConfigShowWithDependencies(cfg, cfgFile, DefaultOutput)
	},
}

// RunConfigShowWithDependencies runs the show command with injected dependencies
func RunConfigShowWithDependencies(cfg *config.Config, configPath string, out OutputWriter) error {
	mgr := config.NewConfigManager(cfg, configPath)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	fmt.Fprintf(out, "Config file: %s\n\n", configPath)
	fmt.Fprintln(w, "KEY\tVALUE")
	for _, s := range mgr.List() {
		value := s.Value
		if value == "" {
			value = "-"
		}
		fmt.Fprintf(w, "%s\t%s\n", s.Key, value)
	}

	return w.Flush()
}

// --- GET command ---

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print one configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := requireConfig()
		if err != nil {
			return err
		}
		return RunConfigGetWithDependencies(cfg, cfgFile, args[0], DefaultOutput)
	},
}

// RunConfigGetWithDependencies runs the get command with injected dependencies
func RunConfigGetWithDependencies(cfg *config.Config, configPath, key string, out OutputWriter) error {
	value, err := config.NewConfigManager(cfg, configPath).Get(key)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, value)
	return nil
}

// --- SET command ---

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one configuration value",
	Long: `Change one value in the configuration file. Environment overrides are not written back.

Examples:
  audio-from-video config set ffmpeg.timeout 10m
  audio-from-video config set logging.format json
  audio-from-video config set ffmpeg.passthrough_codecs aac,alac,mp3`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunConfigSetWithDependencies(cfgFile, args[0], args[1], DefaultOutput)
	},
}

// RunConfigSetWithDependencies runs the set command with injected dependencies
func RunConfigSetWithDependencies(configPath, key, value string, out OutputWriter) error {
	fileCfg, err := config.LoadFile(configPath)
	if err != nil {
		return err
	}

	if err := config.NewConfigManager(fileCfg, configPath).Set(key, value); err != nil {
		return err
	}

	fmt.Fprintf(out, "Set %s = %s\n", key, value)
	return nil
}

// --- ADD / REMOVE codec commands ---

var configAddCmd = &cobra.Command{
	Use:   "add codec <name>",
	Short: "Allow stream copy for another codec",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunConfigCodecWithDependencies(cfgFile, "add", args[0], args[1], DefaultOutput)
	},
}

var configRemoveCmd = &cobra.Command{
	Use:   "remove codec <name>",
	Short: "Stop stream copy for a codec",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunConfigCodecWithDependencies(cfgFile, "remove", args[0], args[1], DefaultOutput)
	},
}

// RunConfigCodecWithDependencies edits the passthrough codec list
func RunConfigCodecWithDependencies(configPath, action, entityType, codec string, out OutputWriter) error {
	if entityType != "codec" {
		return fmt.Errorf("unknown entity type %q. Use codec", entityType)
	}

	fileCfg, err := config.LoadFile(configPath)
	if err != nil {
		return err
	}
	mgr := config.NewConfigManager(fileCfg, configPath)

	switch action {
	case "add":
		if err := mgr.AddPassthroughCodec(codec); err != nil {
			return err
		}
		fmt.Fprintf(out, "Added passthrough codec %q\n", codec)
	case "remove":
		if err := mgr.RemovePassthroughCodec(codec); err != nil {
			return err
		}
		fmt.Fprintf(out, "Removed passthrough codec %q\n", codec)
	default:
		return fmt.Errorf("unknown action %q", action)
	}
	return nil
}
