package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestStatusBoardRows(t *testing.T) {
	var buf bytes.Buffer
	board := newStatusBoard(&buf)
	board.section("Services")
	board.row("Upload gateway", stateOK, "reachable")
	board.row("Redis", stateFail, "connection refused")
	board.section("Dependencies")
	board.row("Renderer", stateWarn, "")

	want := "Services\n" +
		"  Upload gateway     [OK]   reachable\n" +
		"  Redis              [FAIL] connection refused\n" +
		"\n" +
		"Dependencies\n" +
		"  Renderer           [WARN]\n"
	if buf.String() != want {
		t.Fatalf("unexpected board:\n%q\nwant:\n%q", buf.String(), want)
	}
	if board.color {
		t.Fatal("buffers are never terminals")
	}
}

func TestCLIStatusJSON(t *testing.T) {
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusMethodNotAllowed)
	}))
	defer gateway.Close()

	env := setupCLITestEnv(t)
	env.cfg.Publisher.UploadURL = gateway.URL
	env.cfg.Renderer.Binary = "permasnap-missing-renderer"
	writeTestConfig(t, env.configPath, env.cfg)

	out, _, err := env.run(t, "--json", "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	var payload struct {
		ConfigPath  string            `json:"config_path"`
		Remote      bool              `json:"remote"`
		Checks      []statusCheckJSON `json:"checks"`
		MissingDeps int               `json:"missing_deps"`
	}
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode status: %v\n%s", err, out)
	}
	if payload.ConfigPath != env.configPath || payload.Remote {
		t.Fatalf("unexpected header %+v", payload)
	}
	if payload.MissingDeps != 1 {
		t.Fatalf("expected the renderer to be missing, got %d", payload.MissingDeps)
	}
	for _, check := range payload.Checks {
		if check.Name != "Renderer" && !check.Passed {
			t.Fatalf("unexpected failed check %+v", check)
		}
	}

	out, _, err = env.run(t, "status")
	if err != nil {
		t.Fatalf("status text: %v", err)
	}
	if !strings.Contains(out, "[FAIL]") || !strings.Contains(out, "Capture mode") {
		t.Fatalf("unexpected status output:\n%s", out)
	}
}
