package audio

import "errors"

var (
	// ErrInvalidRequest is returned when an extraction request is missing required fields
	ErrInvalidRequest = errors.New("invalid extraction request")

	// ErrSourceNotFound is returned when the source reference cannot be located
	ErrSourceNotFound = errors.New("source video not found")

	// ErrNoAudioTrack is returned when the source container has no audio stream
	ErrNoAudioTrack = errors.New("no audio track found in the video")

	// ErrComposition is returned when the track cannot be clipped into a composition
	ErrComposition = errors.New("unable to compose audio track")

	// ErrExportSessionUnavailable is returned when an export profile cannot be used for the input
	ErrExportSessionUnavailable = errors.New("export session not available")

	// ErrExportFailed is returned when the encoder reports a failure or overshoots the size ceiling
	ErrExportFailed = errors.New("audio export failed")

	// ErrExportCancelled is returned when an export attempt was cancelled before completing
	ErrExportCancelled = errors.New("audio export cancelled")

	// ErrPostProcessing is returned when a reportedly successful output cannot be read back
	ErrPostProcessing = errors.New("unable to read exported audio")

	// ErrUnimplemented is returned on platforms without a usable media pipeline
	ErrUnimplemented = errors.New("audio extraction is not implemented on this platform")
)

// Error kinds reported to callers
const (
	KindInvalidRequest           = "InvalidRequest"
	KindSourceNotFound           = "SourceNotFound"
	KindNoAudioTrack             = "NoAudioTrack"
	KindCompositionError         = "CompositionError"
	KindExportSessionUnavailable = "ExportSessionUnavailable"
	KindExportFailed             = "ExportFailed"
	KindExportCancelled          = "ExportCancelled"
	KindPostProcessingError      = "PostProcessingError"
	KindUnimplemented            = "Unimplemented"
	KindUnknown                  = "Unknown"
)

var kinds = []struct {
	err  error
	kind string
}{
	{ErrUnimplemented, KindUnimplemented},
	{ErrInvalidRequest, KindInvalidRequest},
	{ErrSourceNotFound, KindSourceNotFound},
	{ErrNoAudioTrack, KindNoAudioTrack},
	{ErrComposition, KindCompositionError},
	{ErrExportSessionUnavailable, KindExportSessionUnavailable},
	{ErrExportCancelled, KindExportCancelled},
	{ErrExportFailed, KindExportFailed},
	{ErrPostProcessing, KindPostProcessingError},
}

// Kind maps an error returned by the pipeline to its stable kind name
func Kind(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindUnknown
}
