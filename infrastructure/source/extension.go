package source

import (
	"mime"
	"path"
	"strings"
)

var extensions = map[string]string{
	"video/mp4":        ".mp4",
	"video/quicktime":  ".mov",
	"video/webm":       ".webm",
	"video/x-matroska": ".mkv",
	"video/x-m4v":      ".m4v",
	"audio/mp4":        ".m4a",
}

// ExtensionFor picks a temp file extension from a MIME type, falling back to the
// extension of name, then ".tmp"
func ExtensionFor(mimeType, name string) string {
	if mt, _, err := mime.ParseMediaType(mimeType); err == nil {
		if ext, ok := extensions[strings.ToLower(mt)]; ok {
			return ext
		}
	}

	ext := strings.ToLower(path.Ext(name))
	for _, known := range extensions {
		if ext == known {
			return ext
		}
	}
	return ".tmp"
}
