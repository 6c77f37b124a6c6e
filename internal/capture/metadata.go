package capture

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"

	"permasnap/internal/artifact"
)

type metadata struct {
	Title *string `json:"title"`
}

func readTitle(dir string) (string, error) {
	raw, err := os.ReadFile(filepath.Join(dir, artifact.MetadataFileName))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", artifact.MetadataFileName, err)
	}
	var meta metadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return "", fmt.Errorf("parse %s: %w", artifact.MetadataFileName, err)
	}
	if meta.Title == nil {
		return "", errors.New(artifact.MetadataFileName + " has no title")
	}
	title := NormalizeTitle(*meta.Title)
	if title == "" {
		return "", errors.New(artifact.MetadataFileName + " has an empty title")
	}
	return title, nil
}

// NormalizeTitle collapses runs of whitespace and applies NFC normalization.
func NormalizeTitle(title string) string {
	return norm.NFC.String(strings.Join(strings.Fields(title), " "))
}
