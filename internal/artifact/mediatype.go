package artifact

import (
	"mime"
	"path/filepath"
	"strings"
)

// DefaultMediaType is reported when the extension is unknown.
const DefaultMediaType = "application/octet-stream"

// Renderer outputs are pinned so results do not depend on the host mime database.
var knownMediaTypes = map[string]string{
	".html": "text/html",
	".htm":  "text/html",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".webp": "image/webp",
	".json": "application/json",
}

// MediaType infers the media type of a file from its name.
func MediaType(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		return DefaultMediaType
	}
	if known, ok := knownMediaTypes[ext]; ok {
		return known
	}
	if detected := mime.TypeByExtension(ext); detected != "" {
		if parsed, _, err := mime.ParseMediaType(detected); err == nil {
			return parsed
		}
	}
	return DefaultMediaType
}

// IsScreenshotExt reports whether the extension names a supported screenshot image.
func IsScreenshotExt(ext string) bool {
	switch strings.ToLower(ext) {
	case ".png", ".jpg", ".jpeg", ".webp":
		return true
	default:
		return false
	}
}
