package extraction

import (
	"context"
	"errors"
	"fmt"

	"audio-from-video/domain/audio"
)

// --- Mock implementations for testing ---

// memFiles implements audio.FileStore in memory
type memFiles struct {
	files   map[string][]byte
	removed []string
	sizeErr error
	readErr error
}

func newMemFiles() *memFiles {
	return &memFiles{files: make(map[string][]byte)}
}

func (m *memFiles) Exists(path string) bool {
	_, ok := m.files[path]
	return ok
}

func (m *memFiles) Remove(path string) error {
	m.removed = append(m.removed, path)
	delete(m.files, path)
	return nil
}

func (m *memFiles) Size(path string) (int64, error) {
	if m.sizeErr != nil {
		return 0, m.sizeErr
	}
	data, ok := m.files[path]
	if !ok {
		return 0, fmt.Errorf("stat %s: no such file", path)
	}
	return int64(len(data)), nil
}

func (m *memFiles) ReadFile(path string) ([]byte, error) {
	if m.readErr != nil {
		return nil, m.readErr
	}
	data, ok := m.files[path]
	if !ok {
		return nil, fmt.Errorf("open %s: no such file", path)
	}
	return data, nil
}

// mockLocator implements audio.SourceLocator
type mockLocator struct {
	err      error
	cleaned  int
	resolved string
}

func (m *mockLocator) Locate(ctx context.Context, ref string) (*audio.LocatedSource, error) {
	if m.err != nil {
		return nil, m.err
	}
	path := ref
	if m.resolved != "" {
		path = m.resolved
	}
	return &audio.LocatedSource{
		Path: path,
		Cleanup: func() error {
			m.cleaned++
			return nil
		},
	}, nil
}

// mockProber implements audio.TrackProber
type mockProber struct {
	probe  *audio.Probe
	err    error
	probed []string
}

func (m *mockProber) Probe(ctx context.Context, source string) (*audio.Probe, error) {
	m.probed = append(m.probed, source)
	if m.err != nil {
		return nil, m.err
	}
	return m.probe, nil
}

// exportAttempt records one call to Export
type exportAttempt struct {
	profile     audio.ExportProfile
	destination string
}

// mockExporter implements audio.Exporter, writing fake output into memFiles
type mockExporter struct {
	files        *memFiles
	supported    []audio.ProfileKind
	supportedErr error
	failures     map[audio.ProfileKind]error
	outputSize   map[audio.ProfileKind]int
	attempts     []exportAttempt
}

func (m *mockExporter) SupportedProfiles(ctx context.Context, c *audio.Composition) ([]audio.ProfileKind, error) {
	return m.supported, m.supportedErr
}

func (m *mockExporter) Export(ctx context.Context, c *audio.Composition, profile audio.ExportProfile, destination string) error {
	m.attempts = append(m.attempts, exportAttempt{profile: profile, destination: destination})
	if m.files.Exists(destination) {
		return errors.New("destination was not cleared before export")
	}
	if err := m.failures[profile.Kind]; err != nil {
		// Failed encoders may leave partial output behind
		m.files.files[destination] = []byte("partial")
		return err
	}
	size := 64
	if n, ok := m.outputSize[profile.Kind]; ok {
		size = n
	}
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i)
	}
	m.files.files[destination] = data
	return nil
}

func (m *mockExporter) kinds() []audio.ProfileKind {
	var kinds []audio.ProfileKind
	for _, a := range m.attempts {
		kinds = append(kinds, a.profile.Kind)
	}
	return kinds
}

// mockDestination implements audio.DestinationPreparer
type mockDestination struct {
	files     *memFiles
	generated string
	err       error
	prepared  []string
}

func (m *mockDestination) Prepare(desired string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	path := desired
	if path == "" {
		path = m.generated
	}
	m.prepared = append(m.prepared, path)
	_ = m.files.Remove(path)
	return path, nil
}
