package ffmpeg

import (
	"context"
	"os"
	"strings"
)

// mockRunner records calls and optionally writes an output file of the given size
type mockRunner struct {
	calls     [][]string
	runErr    error
	output    []byte
	outputErr error
	writeSize int64
	onRun     func(ctx context.Context, args []string) error
	onOutput  func(ctx context.Context, args []string) ([]byte, error)
}

func (m *mockRunner) Run(ctx context.Context, name string, args ...string) error {
	m.calls = append(m.calls, append([]string{name}, args...))
	if m.onRun != nil {
		return m.onRun(ctx, args)
	}
	if m.runErr != nil {
		return m.runErr
	}
	if m.writeSize > 0 {
		dest := args[len(args)-1]
		if err := os.WriteFile(dest, make([]byte, m.writeSize), 0644); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	m.calls = append(m.calls, append([]string{name}, args...))
	if m.onOutput != nil {
		return m.onOutput(ctx, args)
	}
	if m.outputErr != nil {
		return nil, m.outputErr
	}
	return m.output, nil
}

func (m *mockRunner) lastCall() string {
	if len(m.calls) == 0 {
		return ""
	}
	return strings.Join(m.calls[len(m.calls)-1], " ")
}
