package artifact_test

import (
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/zeebo/blake3"

	"permasnap/internal/artifact"
	"permasnap/internal/services"
	"permasnap/internal/tags"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestPreparePageBuildsOrderedTags(t *testing.T) {
	path := writeFile(t, t.TempDir(), "index.html", "hello")
	preparer, err := artifact.NewPreparer("")
	if err != nil {
		t.Fatalf("NewPreparer returned error: %v", err)
	}

	prepared, err := preparer.Prepare(path, "Example", "https://example.com", 1700000000, artifact.RolePage)
	if err != nil {
		t.Fatalf("Prepare returned error: %v", err)
	}
	const helloSHA256 = "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"
	if prepared.ContentHash != helloSHA256 {
		t.Fatalf("unexpected hash %s", prepared.ContentHash)
	}
	if prepared.MediaType != "text/html" {
		t.Fatalf("unexpected media type %q", prepared.MediaType)
	}
	if string(prepared.Data) != "hello" {
		t.Fatalf("unexpected data %q", prepared.Data)
	}

	want := tags.Set{
		{Name: "App-Name", Value: tags.AppName},
		{Name: "App-Version", Value: tags.AppVersion},
		{Name: "Content-Type", Value: "text/html"},
		{Name: "page:title", Value: "Example"},
		{Name: "page:url", Value: "https://example.com"},
		{Name: "page:timestamp", Value: "1700000000"},
		{Name: "File-Hash", Value: helloSHA256},
	}
	if !slices.Equal(prepared.Tags, want) {
		t.Fatalf("unexpected tags:\n got %v\nwant %v", prepared.Tags, want)
	}
}

func TestPrepareScreenshotUsesScreenshotPrefix(t *testing.T) {
	path := writeFile(t, t.TempDir(), "screenshot.png", "png-bytes")
	preparer, _ := artifact.NewPreparer(artifact.HashSHA256)

	prepared, err := preparer.Prepare(path, "T", "https://example.com", 5, artifact.RoleScreenshot)
	if err != nil {
		t.Fatalf("Prepare returned error: %v", err)
	}
	names := prepared.Tags.Names()
	want := []string{"App-Name", "App-Version", "Content-Type", "screenshot:title", "screenshot:url", "screenshot:timestamp", "File-Hash"}
	if !slices.Equal(names, want) {
		t.Fatalf("unexpected tag names %v", names)
	}
	if prepared.MediaType != "image/png" {
		t.Fatalf("unexpected media type %q", prepared.MediaType)
	}
}

func TestPrepareIsDeterministic(t *testing.T) {
	dir := t.TempDir()
	first := writeFile(t, dir, "a.png", "same bytes")
	second := writeFile(t, dir, "b.png", "same bytes")
	preparer, _ := artifact.NewPreparer("")

	a, err := preparer.Prepare(first, "T", "u", 1, artifact.RoleScreenshot)
	if err != nil {
		t.Fatal(err)
	}
	b, err := preparer.Prepare(second, "T", "u", 1, artifact.RoleScreenshot)
	if err != nil {
		t.Fatal(err)
	}
	if a.ContentHash != b.ContentHash {
		t.Fatalf("identical bytes produced different hashes: %s vs %s", a.ContentHash, b.ContentHash)
	}
	if len(a.ContentHash) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(a.ContentHash))
	}
}

func TestPrepareWithBLAKE3AddsAlgorithmTag(t *testing.T) {
	path := writeFile(t, t.TempDir(), "index.html", "hello")
	preparer, err := artifact.NewPreparer("BLAKE3")
	if err != nil {
		t.Fatalf("NewPreparer returned error: %v", err)
	}
	if preparer.Algorithm() != artifact.HashBLAKE3 {
		t.Fatalf("expected normalized algorithm, got %q", preparer.Algorithm())
	}
	prepared, err := preparer.Prepare(path, "T", "u", 1, artifact.RolePage)
	if err != nil {
		t.Fatalf("Prepare returned error: %v", err)
	}
	sum := blake3.Sum256([]byte("hello"))
	if prepared.ContentHash != hex.EncodeToString(sum[:]) {
		t.Fatalf("unexpected blake3 digest %s", prepared.ContentHash)
	}
	if v, ok := prepared.Tags.Get(tags.NameFileHashAlgorithm); !ok || v != artifact.HashBLAKE3 {
		t.Fatalf("expected algorithm tag, got %q %v", v, ok)
	}
}

func TestPrepareUnknownExtensionFallsBack(t *testing.T) {
	path := writeFile(t, t.TempDir(), "capture.zzunknown", "x")
	preparer, _ := artifact.NewPreparer("")
	prepared, err := preparer.Prepare(path, "T", "u", 1, artifact.RoleScreenshot)
	if err != nil {
		t.Fatalf("Prepare returned error: %v", err)
	}
	if prepared.MediaType != artifact.DefaultMediaType {
		t.Fatalf("expected fallback media type, got %q", prepared.MediaType)
	}
}

func TestPrepareMissingFileIsReadError(t *testing.T) {
	preparer, _ := artifact.NewPreparer("")
	_, err := preparer.Prepare(filepath.Join(t.TempDir(), "missing.html"), "T", "u", 1, artifact.RolePage)
	if !errors.Is(err, services.ErrRead) {
		t.Fatalf("expected ErrRead, got %v", err)
	}
}

func TestNewPreparerRejectsUnknownAlgorithm(t *testing.T) {
	if _, err := artifact.NewPreparer("md5"); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestMediaType(t *testing.T) {
	tests := map[string]string{
		"index.html":    "text/html",
		"shot.PNG":      "image/png",
		"shot.jpeg":     "image/jpeg",
		"shot.webp":     "image/webp",
		"noext":         artifact.DefaultMediaType,
		"metadata.json": "application/json",
	}
	for name, want := range tests {
		if got := artifact.MediaType(name); got != want {
			t.Errorf("MediaType(%q) = %q, want %q", name, got, want)
		}
	}
}
