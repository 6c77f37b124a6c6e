package testsupport

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"permasnap/internal/capture"
)

// FakeRenderer writes a canned page, screenshot, and metadata file into the
// requested output directory instead of launching a browser.
type FakeRenderer struct {
	Title      string
	Page       []byte
	Screenshot []byte
	// ScreenshotName defaults to screenshot.png.
	ScreenshotName string
	// Err, when set, is returned after the files are written.
	Err error
	// DanglingPage writes index.html as a symlink to a missing file, so the
	// capture succeeds but reading the page fails.
	DanglingPage bool

	mu       sync.Mutex
	requests []capture.RenderRequest
}

// NewFakeRenderer returns a renderer that produces a complete capture.
func NewFakeRenderer(title string) *FakeRenderer {
	return &FakeRenderer{
		Title:      title,
		Page:       []byte("<html><head><title>" + title + "</title></head></html>"),
		Screenshot: []byte{0x89, 'P', 'N', 'G'},
	}
}

// Render implements capture.Renderer.
func (f *FakeRenderer) Render(_ context.Context, req capture.RenderRequest) error {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	name := f.ScreenshotName
	if name == "" {
		name = "screenshot.png"
	}
	meta, err := json.Marshal(map[string]string{"title": f.Title})
	if err != nil {
		return err
	}
	files := map[string][]byte{
		"index.html":    f.Page,
		name:            f.Screenshot,
		"metadata.json": meta,
	}
	if f.DanglingPage {
		delete(files, "index.html")
		if err := os.Symlink(filepath.Join(req.OutputDir, "missing.html"), filepath.Join(req.OutputDir, "index.html")); err != nil {
			return err
		}
	}
	for file, data := range files {
		if err := os.WriteFile(filepath.Join(req.OutputDir, file), data, 0o644); err != nil {
			return err
		}
	}
	return f.Err
}

// Requests returns the render requests seen so far.
func (f *FakeRenderer) Requests() []capture.RenderRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]capture.RenderRequest(nil), f.requests...)
}
