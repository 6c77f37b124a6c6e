// Package manifest builds the path manifest that links a page snapshot and
// its screenshot into one addressable archive.
package manifest

import (
	"encoding/json"
	"strconv"
	"strings"

	"permasnap/internal/artifact"
	"permasnap/internal/services"
	"permasnap/internal/tags"
)

// Manifest format identifiers understood by the storage gateway.
const (
	Format      = "arweave/paths"
	Version     = "0.1.0"
	ContentType = "application/x.arweave-manifest+json"
	ArchiveType = "archive"
)

// Manifest is the serialized path manifest.
type Manifest struct {
	Manifest string          `json:"manifest"`
	Version  string          `json:"version"`
	Index    Index           `json:"index"`
	Paths    map[string]Path `json:"paths"`
}

// Index names the path served at the manifest root.
type Index struct {
	Path string `json:"path"`
}

// Path points at one published transaction.
type Path struct {
	ID string `json:"id"`
}

// ContentIDs holds the published identifiers for each manifest slot.
type ContentIDs struct {
	Page       string
	Screenshot string
}

// Set records id under the slot for role.
func (c *ContentIDs) Set(role artifact.Role, id string) {
	switch role {
	case artifact.RolePage:
		c.Page = id
	case artifact.RoleScreenshot:
		c.Screenshot = id
	}
}

// Complete reports whether both slots are filled.
func (c ContentIDs) Complete() bool {
	return strings.TrimSpace(c.Page) != "" && strings.TrimSpace(c.Screenshot) != ""
}

// Input carries everything Build needs.
type Input struct {
	CapturedAt int64
	Title      string
	SourceURL  string
	// Archiver is the caller's address; empty for anonymous archives.
	Archiver   string
	ContentIDs ContentIDs
}

// Build serializes the manifest and returns it with its tag set. It fails
// with services.ErrIncompleteManifest unless both slots hold identifiers.
func Build(in Input) ([]byte, tags.Set, error) {
	if !in.ContentIDs.Complete() {
		var missing []string
		if strings.TrimSpace(in.ContentIDs.Page) == "" {
			missing = append(missing, artifact.SlotPage)
		}
		if strings.TrimSpace(in.ContentIDs.Screenshot) == "" {
			missing = append(missing, artifact.SlotScreenshot)
		}
		return nil, nil, services.Wrap(services.ErrIncompleteManifest, "manifest", "build",
			"missing "+strings.Join(missing, ", "), nil)
	}

	doc := Manifest{
		Manifest: Format,
		Version:  Version,
		Index:    Index{Path: artifact.SlotPage},
		Paths: map[string]Path{
			artifact.SlotPage:       {ID: in.ContentIDs.Page},
			artifact.SlotScreenshot: {ID: in.ContentIDs.Screenshot},
		},
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, nil, services.Wrap(services.ErrIncompleteManifest, "manifest", "encode", "", err)
	}

	set := tags.Identity().
		Add(tags.NameContentType, ContentType).
		Add(tags.NameTitle, in.Title).
		Add(tags.NameType, ArchiveType).
		Add(tags.NameURL, in.SourceURL).
		Add(tags.NameTimestamp, strconv.FormatInt(in.CapturedAt, 10)).
		Add(tags.NameArchiver, in.Archiver)
	return data, set, nil
}
