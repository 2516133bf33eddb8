package audio

import "fmt"

// Container is the only output container the pipeline produces
const Container = "m4a"

// MimeType is the media type of every produced file
const MimeType = "audio/mp4"

// SizeCeiling is the byte limit for produced files: 9.9 MiB, which leaves
// headroom under 10 MiB for encoder overshoot.
const SizeCeiling int64 = 99 * 1024 * 1024 / 10

// ProfileKind identifies one way to produce the output file
type ProfileKind int

const (
	// Passthrough re-muxes source samples unchanged
	Passthrough ProfileKind = iota
	// ReEncodeM4A re-encodes samples to AAC in an m4a container
	ReEncodeM4A
)

// String returns the profile name
func (k ProfileKind) String() string {
	switch k {
	case Passthrough:
		return "passthrough"
	case ReEncodeM4A:
		return "reencode-m4a"
	default:
		return fmt.Sprintf("profile(%d)", int(k))
	}
}

// PreferenceOrder lists profiles from most to least preferred
var PreferenceOrder = []ProfileKind{Passthrough, ReEncodeM4A}

// ExportProfile carries everything an exporter needs for one attempt
type ExportProfile struct {
	Kind        ProfileKind
	Container   string
	SizeCeiling int64
	Range       TimeRange
}

// NewExportProfile builds a profile for the given kind and range
func NewExportProfile(kind ProfileKind, r TimeRange) ExportProfile {
	return ExportProfile{
		Kind:        kind,
		Container:   Container,
		SizeCeiling: SizeCeiling,
		Range:       r,
	}
}

// Supports reports whether kind is in the given set of supported profiles
func Supports(supported []ProfileKind, kind ProfileKind) bool {
	for _, k := range supported {
		if k == kind {
			return true
		}
	}
	return false
}
