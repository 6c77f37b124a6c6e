package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"permasnap/internal/archive"
	"permasnap/internal/staging"
	"permasnap/internal/testsupport"
)

func TestCLIArchivePrintsManifestID(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := env.run(t, "archive", "https://example.com", "--token", "id-token")
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	for _, want := range []string{"Archived https://example.com", "Example Domain", "tx-3"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output, got:\n%s", want, out)
		}
	}
	if got := len(env.renderer.Requests()); got != 1 {
		t.Fatalf("expected one render, got %d", got)
	}
	for _, ticket := range env.transport.Tickets() {
		if ticket.Credential.IDToken != "id-token" {
			t.Fatalf("credential not forwarded: %+v", ticket.Credential)
		}
	}
}

func TestCLIArchiveJSON(t *testing.T) {
	env := setupCLITestEnv(t)
	t.Setenv(tokenEnv, "env-token")

	out, _, err := env.run(t, "--json", "archive", "https://example.com/page")
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	var result archive.Result
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if result.ContentID != "tx-3" {
		t.Fatalf("unexpected manifest id %q", result.ContentID)
	}
	if result.Title != "Example Domain" {
		t.Fatalf("unexpected title %q", result.Title)
	}
	if !strings.HasSuffix(result.WebpageURL, "/tx-3") {
		t.Fatalf("unexpected webpage link %q", result.WebpageURL)
	}
}

func TestCLIArchiveRequiresToken(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := env.run(t, "archive", "https://example.com")
	if err == nil || !strings.Contains(err.Error(), "identity token required") {
		t.Fatalf("expected missing token error, got %v", err)
	}
	if got := len(env.renderer.Requests()); got != 0 {
		t.Fatalf("renderer should not run without a token, ran %d times", got)
	}
}

func TestCLIArchiveRejectsInvalidURL(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := env.run(t, "archive", "ftp://example.com", "--token", "t")
	if err == nil {
		t.Fatal("expected validation error")
	}
	if got := len(env.renderer.Requests()); got != 0 {
		t.Fatalf("renderer should not run for invalid URLs, ran %d times", got)
	}
}

func TestCLIHistoryListsArchives(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := env.run(t, "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(out, "No archives recorded in "+env.cfg.HistoryPath()) {
		t.Fatalf("expected empty history message, got:\n%s", out)
	}

	if _, _, err := env.run(t, "archive", "https://example.com", "--token", "t", "--address", "addr-1"); err != nil {
		t.Fatalf("archive: %v", err)
	}

	out, _, err = env.run(t, "--json", "history")
	if err != nil {
		t.Fatalf("history json: %v", err)
	}
	var payload struct {
		Archives []historyEntryJSON `json:"archives"`
	}
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode history: %v\n%s", err, out)
	}
	if len(payload.Archives) != 1 {
		t.Fatalf("expected one archive, got %d", len(payload.Archives))
	}
	entry := payload.Archives[0]
	if entry.ContentID != "tx-3" || entry.URL != "https://example.com" || entry.Archiver != "addr-1" {
		t.Fatalf("unexpected history entry %+v", entry)
	}

	out, _, err = env.run(t, "history")
	if err != nil {
		t.Fatalf("history table: %v", err)
	}
	if !strings.Contains(out, "Example Domain") || !strings.Contains(out, "tx-3") {
		t.Fatalf("expected table row, got:\n%s", out)
	}
}

func TestCLIStagingListAndClean(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := env.run(t, "staging", "list")
	if err != nil {
		t.Fatalf("staging list: %v", err)
	}
	if !strings.Contains(out, "No scratch directories found") {
		t.Fatalf("expected empty listing, got:\n%s", out)
	}

	root := env.cfg.Paths.ScratchDir
	if err := os.MkdirAll(root, 0o755); err != nil {
		t.Fatalf("mkdir scratch: %v", err)
	}
	stale, err := staging.Allocate(root)
	if err != nil {
		t.Fatalf("allocate stale: %v", err)
	}
	testsupport.WriteFile(t, filepath.Join(stale, "index.html"), 2048)
	old := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(stale, old, old); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	fresh, err := staging.Allocate(root)
	if err != nil {
		t.Fatalf("allocate fresh: %v", err)
	}

	out, _, err = env.run(t, "--json", "staging", "list")
	if err != nil {
		t.Fatalf("staging list json: %v", err)
	}
	var listing struct {
		ScratchDir string            `json:"scratch_dir"`
		Dirs       []staging.DirInfo `json:"directories"`
		TotalSize  int64             `json:"total_size_bytes"`
	}
	if err := json.Unmarshal([]byte(out), &listing); err != nil {
		t.Fatalf("decode listing: %v\n%s", err, out)
	}
	if len(listing.Dirs) != 2 || listing.TotalSize != 2048 {
		t.Fatalf("unexpected listing %+v", listing)
	}

	out, _, err = env.run(t, "staging", "clean")
	if err != nil {
		t.Fatalf("staging clean: %v", err)
	}
	if !strings.Contains(out, "Removed 1 scratch directories") {
		t.Fatalf("expected one stale removal, got:\n%s", out)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Fatalf("stale directory should be removed, stat err=%v", err)
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Fatalf("fresh directory should remain: %v", err)
	}

	out, _, err = env.run(t, "staging", "clean", "--all")
	if err != nil {
		t.Fatalf("staging clean --all: %v", err)
	}
	if !strings.Contains(out, "Removed 1 scratch directories") {
		t.Fatalf("expected fresh removal, got:\n%s", out)
	}
}

func TestResolveTokenPrecedence(t *testing.T) {
	t.Setenv(tokenEnv, "from-env")
	dir := t.TempDir()
	tokenFile := filepath.Join(dir, "token")
	if err := os.WriteFile(tokenFile, []byte("  from-file\n"), 0o600); err != nil {
		t.Fatalf("write token: %v", err)
	}
	emptyFile := filepath.Join(dir, "empty")
	if err := os.WriteFile(emptyFile, nil, 0o600); err != nil {
		t.Fatalf("write empty token: %v", err)
	}

	tests := []struct {
		name    string
		flag    string
		file    string
		want    string
		wantErr bool
	}{
		{name: "flag wins", flag: "from-flag", file: tokenFile, want: "from-flag"},
		{name: "file before env", file: tokenFile, want: "from-file"},
		{name: "env fallback", want: "from-env"},
		{name: "empty file", file: emptyFile, wantErr: true},
		{name: "missing file", file: filepath.Join(dir, "nope"), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveToken(tt.flag, tt.file)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("resolveToken: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %q want %q", got, tt.want)
			}
		})
	}
}

func TestCLILogsFiltersByRequest(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := env.run(t, "archive", "https://example.com", "--token", "t"); err != nil {
		t.Fatalf("archive: %v", err)
	}
	out, _, err := env.run(t, "--json", "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	var payload struct {
		Archives []historyEntryJSON `json:"archives"`
	}
	if err := json.Unmarshal([]byte(out), &payload); err != nil || len(payload.Archives) != 1 {
		t.Fatalf("decode history: %v\n%s", err, out)
	}
	requestID := payload.Archives[0].RequestID

	out, _, err = env.run(t, "logs", "--request", requestID)
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	if !strings.Contains(out, "archive published") {
		t.Fatalf("expected publish line in logs, got:\n%s", out)
	}
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if !strings.Contains(line, requestID) {
			t.Fatalf("line from another request leaked: %s", line)
		}
	}

	if _, _, err := env.run(t, "logs", "--level", "loud"); err == nil {
		t.Fatal("expected unknown level error")
	}
}
