//go:build integration

package steps

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"audio-from-video/cmd"
	"audio-from-video/infrastructure/config"

	"github.com/cucumber/godog"
)

type setupContext struct {
	tempDir         string
	configPath      string
	setupCancelled  bool
	originalContent string
	err             error
}

var SharedSetupContext = &setupContext{}

// MockPrompter implements cmd.Prompter for testing
type MockPrompter struct {
	inputResponses   []string
	confirmResponses []bool
	selectResponses  []string
	inputIndex       int
	confirmIndex     int
	selectIndex      int
}

func NewMockPrompter(inputs []string, confirms []bool, selects []string) *MockPrompter {
	return &MockPrompter{
		inputResponses:   inputs,
		confirmResponses: confirms,
		selectResponses:  selects,
	}
}

func (m *MockPrompter) Input(message string, defaultValue string) (string, error) {
	if m.inputIndex >= len(m.inputResponses) {
		if defaultValue != "" {
			return defaultValue, nil
		}
		return "", fmt.Errorf("no more input responses available for message: %s", message)
	}
	response := m.inputResponses[m.inputIndex]
	m.inputIndex++
	return response, nil
}

func (m *MockPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	if m.confirmIndex >= len(m.confirmResponses) {
		return defaultValue, nil
	}
	response := m.confirmResponses[m.confirmIndex]
	m.confirmIndex++
	return response, nil
}

func (m *MockPrompter) Select(message string, options []string, defaultValue string) (string, error) {
	if m.selectIndex >= len(m.selectResponses) {
		return defaultValue, nil
	}
	response := m.selectResponses[m.selectIndex]
	m.selectIndex++
	for _, o := range options {
		if o == response {
			return response, nil
		}
	}
	return "", fmt.Errorf("%q is not one of %v", response, options)
}

func InitializeSetupScenario(ctx *godog.ScenarioContext) {
	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		tempDir, err := os.MkdirTemp("", "setup-test-*")
		if err != nil {
			return c, err
		}
		SharedSetupContext = &setupContext{
			tempDir:    tempDir,
			configPath: filepath.Join(tempDir, "config", "config.yaml"),
		}
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if SharedSetupContext.tempDir != "" {
			os.RemoveAll(SharedSetupContext.tempDir)
		}
		return c, nil
	})

	ctx.Step(`^no config file exists for setup$`, noConfigFileExistsForSetup)
	ctx.Step(`^a config file already exists for setup$`, aConfigFileAlreadyExistsForSetup)
	ctx.Step(`^I run the setup command with inputs:$`, iRunTheSetupCommandWithInputs)
	ctx.Step(`^I run the setup command with confirmation "([^"]*)"$`, iRunTheSetupCommandWithConfirmation)
	ctx.Step(`^a config file should exist$`, aConfigFileShouldExist)
	ctx.Step(`^the config should have ffmpeg_path "([^"]*)"$`, configShouldHave(func(c *config.Config) string { return c.FFmpeg.FFmpegPath }))
	ctx.Step(`^the config should have cache_directory "([^"]*)"$`, configShouldHave(func(c *config.Config) string { return c.Paths.CacheDirectory }))
	ctx.Step(`^the config should have credentials_file "([^"]*)"$`, configShouldHave(func(c *config.Config) string { return c.Google.CredentialsFile }))
	ctx.Step(`^the config should have token_file "([^"]*)"$`, configShouldHave(func(c *config.Config) string { return c.Google.TokenFile }))
	ctx.Step(`^the config should have log level "([^"]*)"$`, configShouldHave(func(c *config.Config) string { return c.Logging.Level }))
	ctx.Step(`^the setup should be cancelled$`, theSetupShouldBeCancelled)
	ctx.Step(`^the existing config should be unchanged$`, theExistingConfigShouldBeUnchanged)
}

func noConfigFileExistsForSetup() error {
	return os.MkdirAll(filepath.Dir(SharedSetupContext.configPath), 0755)
}

func aConfigFileAlreadyExistsForSetup() error {
	s := SharedSetupContext
	if err := os.MkdirAll(filepath.Dir(s.configPath), 0755); err != nil {
		return err
	}

	content := `ffmpeg:
  ffmpeg_path: "/original/ffmpeg"
paths:
  cache_directory: "/original/cache"
`
	s.originalContent = content
	return os.WriteFile(s.configPath, []byte(content), 0644)
}

func iRunTheSetupCommandWithInputs(table *godog.Table) error {
	s := SharedSetupContext
	inputs, confirms, selects := parseInputTable(table)

	s.err = cmd.RunSetupWithPrompter(NewMockPrompter(inputs, confirms, selects), s.configPath)
	if s.err != nil {
		return fmt.Errorf("setup command failed: %w", s.err)
	}
	return nil
}

func iRunTheSetupCommandWithConfirmation(confirmation string) error {
	s := SharedSetupContext
	confirm := strings.ToLower(confirmation) == "y"

	s.err = cmd.RunSetupWithPrompter(NewMockPrompter(nil, []bool{confirm}, nil), s.configPath)
	if !confirm {
		s.setupCancelled = true
	}
	return nil
}

// parseInputTable sorts answers by prompt kind, keeping their order
func parseInputTable(table *godog.Table) ([]string, []bool, []string) {
	var inputs, selects []string
	var confirms []bool

	for i, row := range table.Rows {
		if i == 0 {
			continue // Skip header row
		}
		prompt := strings.ToLower(row.Cells[0].Value)
		value := row.Cells[1].Value

		switch {
		case strings.HasPrefix(prompt, "enable"), strings.HasPrefix(prompt, "sign in"):
			confirms = append(confirms, strings.ToLower(value) == "y")
		case strings.HasPrefix(prompt, "log"):
			selects = append(selects, value)
		default:
			inputs = append(inputs, value)
		}
	}

	return inputs, confirms, selects
}

func aConfigFileShouldExist() error {
	if _, err := os.Stat(SharedSetupContext.configPath); os.IsNotExist(err) {
		return fmt.Errorf("config file does not exist at %s", SharedSetupContext.configPath)
	}
	return nil
}

func configShouldHave(get func(*config.Config) string) func(string) error {
	return func(expected string) error {
		cfg, err := config.LoadFile(SharedSetupContext.configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if got := get(cfg); got != expected {
			return fmt.Errorf("expected %q, got %q", expected, got)
		}
		return nil
	}
}

func theSetupShouldBeCancelled() error {
	s := SharedSetupContext
	if !s.setupCancelled {
		return fmt.Errorf("expected setup to be cancelled")
	}
	if s.err != nil {
		return fmt.Errorf("cancelled setup should not error: %w", s.err)
	}
	return nil
}

func theExistingConfigShouldBeUnchanged() error {
	s := SharedSetupContext
	data, err := os.ReadFile(s.configPath)
	if err != nil {
		return err
	}
	if string(data) != s.originalContent {
		return fmt.Errorf("config file was modified")
	}
	return nil
}
