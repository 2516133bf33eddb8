package audio

import (
	"encoding/base64"
	"strings"
)

// Result is the record returned to the caller for a successful extraction
type Result struct {
	Path     string `json:"path"`
	DataURL  string `json:"dataUrl,omitempty"`
	FileSize int64  `json:"fileSize"`
	MimeType string `json:"mimeType"`
}

const dataURLBase64Marker = ";base64,"

// EncodeDataURL wraps data as data:<mimeType>;base64,<payload>
func EncodeDataURL(mimeType string, data []byte) string {
	var b strings.Builder
	b.Grow(len("data:") + len(mimeType) + len(dataURLBase64Marker) + base64.StdEncoding.EncodedLen(len(data)))
	b.WriteString("data:")
	b.WriteString(mimeType)
	b.WriteString(dataURLBase64Marker)
	b.WriteString(base64.StdEncoding.EncodeToString(data))
	return b.String()
}

// DecodeDataURL splits a base64 data URI into its media type and payload
func DecodeDataURL(s string) (string, []byte, bool) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return "", nil, false
	}
	mimeType, payload, ok := strings.Cut(rest, dataURLBase64Marker)
	if !ok || mimeType == "" {
		return "", nil, false
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, false
	}
	return mimeType, data, true
}
