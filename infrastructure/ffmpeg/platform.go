//go:build !js && !wasip1

package ffmpeg

// ProcessSupported reports whether this build can spawn ffmpeg processes
const ProcessSupported = true
