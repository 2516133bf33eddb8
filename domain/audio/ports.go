package audio

import "context"

// TrackProber opens a source container and enumerates its audio streams.
// This is a port that can be implemented by different infrastructure adapters
type TrackProber interface {
	Probe(ctx context.Context, source string) (*Probe, error)
}

// Exporter writes a composition to a file using one export profile
type Exporter interface {
	// SupportedProfiles returns the profiles usable for this composition, in no particular order
	SupportedProfiles(ctx context.Context, c *Composition) ([]ProfileKind, error)

	// Export runs a single attempt and blocks until the encoder reports completion
	Export(ctx context.Context, c *Composition, profile ExportProfile, destination string) error
}

// FileStore abstracts the filesystem operations the pipeline performs
type FileStore interface {
	Exists(path string) bool
	Remove(path string) error
	Size(path string) (int64, error)
	ReadFile(path string) ([]byte, error)
}

// LocatedSource is a source reference resolved to a local readable path
type LocatedSource struct {
	Path    string
	Cleanup func() error // removes request-scoped copies; never nil
}

// SourceLocator resolves a Source Reference (path or URL) to a local path
type SourceLocator interface {
	Locate(ctx context.Context, ref string) (*LocatedSource, error)
}

// DestinationPreparer turns a desired output path into an absolute path with no file at it.
// An empty desired path yields a generated path.
type DestinationPreparer interface {
	Prepare(desired string) (string, error)
}
