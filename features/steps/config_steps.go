//go:build integration

package steps

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"audio-from-video/cmd"
	"audio-from-video/infrastructure/config"

	"github.com/cucumber/godog"
)

type configContext struct {
	tempDir    string
	configPath string
	cfg        *config.Config
	output     *bytes.Buffer
	err        error
}

// SharedConfigContext is reset before each scenario via Before hook
var SharedConfigContext = &configContext{}

func InitializeConfigScenario(ctx *godog.ScenarioContext) {
	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		tempDir, err := os.MkdirTemp("", "config-test-*")
		if err != nil {
			return c, err
		}
		SharedConfigContext = &configContext{
			tempDir:    tempDir,
			configPath: filepath.Join(tempDir, "config", "config.yaml"),
			output:     &bytes.Buffer{},
		}
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if SharedConfigContext.tempDir != "" {
			os.RemoveAll(SharedConfigContext.tempDir)
		}
		return c, nil
	})

	ctx.Step(`^no configuration file exists$`, noConfigurationFileExists)
	ctx.Step(`^I load the configuration$`, iLoadTheConfiguration)
	ctx.Step(`^I set "([^"]*)" to "([^"]*)"$`, iSetTo)
	ctx.Step(`^I try to set "([^"]*)" to "([^"]*)"$`, iTryToSetTo)
	ctx.Step(`^I add passthrough codec "([^"]*)"$`, iAddPassthroughCodec)
	ctx.Step(`^I show the configuration$`, iShowTheConfiguration)
	ctx.Step(`^the ffmpeg path should be "([^"]*)"$`, theFFmpegPathShouldBe)
	ctx.Step(`^the re-encode bitrate should be "([^"]*)"$`, theReencodeBitrateShouldBe)
	ctx.Step(`^the server address should be "([^"]*)"$`, theServerAddressShouldBe)
	ctx.Step(`^the passthrough codecs should be "([^"]*)"$`, thePassthroughCodecsShouldBe)
	ctx.Step(`^the config command should fail with "([^"]*)"$`, theConfigCommandShouldFailWith)
	ctx.Step(`^the config output should contain "([^"]*)"$`, theConfigOutputShouldContain)
}

func noConfigurationFileExists() error {
	if _, err := os.Stat(SharedConfigContext.configPath); err == nil {
		return fmt.Errorf("config file unexpectedly exists")
	}
	return nil
}

func iLoadTheConfiguration() error {
	c := SharedConfigContext
	cfg, err := config.LoadFile(c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg
	return nil
}

func iSetTo(key, value string) error {
	c := SharedConfigContext
	return cmd.RunConfigSetWithDependencies(c.configPath, key, value, c.output)
}

func iTryToSetTo(key, value string) error {
	c := SharedConfigContext
	c.err = cmd.RunConfigSetWithDependencies(c.configPath, key, value, c.output)
	return nil
}

func iAddPassthroughCodec(codec string) error {
	c := SharedConfigContext
	return cmd.RunConfigCodecWithDependencies(c.configPath, "add", "codec", codec, c.output)
}

func iShowTheConfiguration() error {
	c := SharedConfigContext
	return cmd.RunConfigShowWithDependencies(config.Default(), c.configPath, c.output)
}

func theFFmpegPathShouldBe(expected string) error {
	if got := SharedConfigContext.cfg.FFmpeg.FFmpegPath; got != expected {
		return fmt.Errorf("expected ffmpeg path %q, got %q", expected, got)
	}
	return nil
}

func theReencodeBitrateShouldBe(expected string) error {
	if got := SharedConfigContext.cfg.FFmpeg.ReEncodeBitrate; got != expected {
		return fmt.Errorf("expected bitrate %q, got %q", expected, got)
	}
	return nil
}

func theServerAddressShouldBe(expected string) error {
	if got := SharedConfigContext.cfg.Server.Address; got != expected {
		return fmt.Errorf("expected server address %q, got %q", expected, got)
	}
	return nil
}

func thePassthroughCodecsShouldBe(expected string) error {
	if got := strings.Join(SharedConfigContext.cfg.FFmpeg.PassthroughCodecs, ","); got != expected {
		return fmt.Errorf("expected codecs %q, got %q", expected, got)
	}
	return nil
}

func theConfigCommandShouldFailWith(text string) error {
	err := SharedConfigContext.err
	if err == nil || !strings.Contains(err.Error(), text) {
		return fmt.Errorf("expected error containing %q, got %v", text, err)
	}
	return nil
}

func theConfigOutputShouldContain(text string) error {
	if out := SharedConfigContext.output.String(); !strings.Contains(out, text) {
		return fmt.Errorf("expected output to contain %q, got:\n%s", text, out)
	}
	return nil
}
