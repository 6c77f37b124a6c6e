package tags_test

import (
	"slices"
	"testing"

	"permasnap/internal/tags"
)

func TestIdentityLeadsSet(t *testing.T) {
	set := tags.Identity().Add(tags.NameContentType, "text/html")
	want := []string{tags.NameAppName, tags.NameAppVersion, tags.NameContentType}
	if got := set.Names(); !slices.Equal(got, want) {
		t.Fatalf("unexpected order: %v", got)
	}
	if v, ok := set.Get(tags.NameAppName); !ok || v != tags.AppName {
		t.Fatalf("unexpected app name: %q %v", v, ok)
	}
	if _, ok := set.Get("missing"); ok {
		t.Fatal("expected missing tag lookup to fail")
	}
}

func TestJSONPreservesOrderAndEmptyValues(t *testing.T) {
	set := tags.Set{{Name: "B", Value: "2"}, {Name: "A", Value: ""}}
	got, err := set.JSON()
	if err != nil {
		t.Fatalf("JSON returned error: %v", err)
	}
	want := `[{"name":"B","value":"2"},{"name":"A","value":""}]`
	if got != want {
		t.Fatalf("JSON = %s, want %s", got, want)
	}

	empty, err := tags.Set(nil).JSON()
	if err != nil || empty != "[]" {
		t.Fatalf("expected empty array, got %q (%v)", empty, err)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	original := tags.Identity()
	clone := original.Clone()
	clone[0].Value = "changed"
	if original[0].Value != tags.AppName {
		t.Fatal("clone mutated original")
	}
}
