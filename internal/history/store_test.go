package history_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	"permasnap/internal/history"
	"permasnap/internal/testsupport"
)

func sampleEntry(n string) history.Entry {
	return history.Entry{
		RequestID:    "req-" + n,
		SourceURL:    "https://example.com/" + n,
		Title:        "Example " + n,
		ContentID:    "manifest-" + n,
		PageID:       "page-" + n,
		ScreenshotID: "shot-" + n,
		CapturedAt:   1700000000,
	}
}

func TestRecordAndList(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)
	ctx := context.Background()

	for _, n := range []string{"a", "b", "c"} {
		id, err := store.Record(ctx, sampleEntry(n))
		if err != nil {
			t.Fatalf("Record(%s) failed: %v", n, err)
		}
		if id == 0 {
			t.Fatal("expected row id to be assigned")
		}
	}

	entries, err := store.List(ctx, 2)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].ContentID != "manifest-c" || entries[1].ContentID != "manifest-b" {
		t.Fatalf("expected newest first, got %s then %s", entries[0].ContentID, entries[1].ContentID)
	}
	if entries[0].CreatedAt.IsZero() {
		t.Fatal("expected created_at to round-trip")
	}

	count, err := store.Count(ctx)
	if err != nil || count != 3 {
		t.Fatalf("Count = %d, %v", count, err)
	}
}

func TestFindByContentID(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)
	ctx := context.Background()

	if _, err := store.Record(ctx, sampleEntry("x")); err != nil {
		t.Fatal(err)
	}
	found, err := store.FindByContentID(ctx, "manifest-x")
	if err != nil {
		t.Fatalf("FindByContentID failed: %v", err)
	}
	if found == nil || found.Title != "Example x" || found.CapturedTime().Unix() != 1700000000 {
		t.Fatalf("unexpected entry %#v", found)
	}
	missing, err := store.FindByContentID(ctx, "absent")
	if err != nil || missing != nil {
		t.Fatalf("expected nil for missing entry, got %#v %v", missing, err)
	}
}

func TestRecordRejectsIncompleteEntry(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)

	entry := sampleEntry("y")
	entry.ContentID = ""
	if _, err := store.Record(context.Background(), entry); err == nil {
		t.Fatal("expected error for missing content id")
	}
}

func TestOpenRejectsSchemaMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := history.OpenPath(path)
	if err != nil {
		t.Fatalf("OpenPath failed: %v", err)
	}
	_ = store.Close()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatal(err)
	}
	_ = db.Close()

	if _, err := history.OpenPath(path); !errors.Is(err, history.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}

func TestReopenKeepsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.db")
	store, err := history.OpenPath(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.Record(context.Background(), sampleEntry("z")); err != nil {
		t.Fatal(err)
	}
	_ = store.Close()

	reopened, err := history.OpenPath(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()
	count, _ := reopened.Count(context.Background())
	if count != 1 {
		t.Fatalf("expected 1 entry after reopen, got %d", count)
	}
}
