package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"permasnap/internal/config"
)

func TestLoadDefaultConfigExpandsPathsAndReadsEnv(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("BROWSERLESS_API_KEY", "remote-key")
	t.Setenv("OTHENT_API_ID", "api-123")
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantScratch := filepath.Join(tempHome, ".local", "share", "permasnap", "scratch")
	if cfg.Paths.ScratchDir != wantScratch {
		t.Fatalf("unexpected scratch dir: got %q want %q", cfg.Paths.ScratchDir, wantScratch)
	}
	if cfg.RemoteBrowser.APIKey != "remote-key" {
		t.Fatalf("expected remote key from env, got %q", cfg.RemoteBrowser.APIKey)
	}
	if !cfg.RemoteEnabled() {
		t.Fatal("expected remote browser to be enabled when api key is present")
	}
	if cfg.Publisher.APIID != "api-123" {
		t.Fatalf("expected api id from env, got %q", cfg.Publisher.APIID)
	}
	if cfg.Publisher.MaxAttempts != 0 {
		t.Fatalf("expected unlimited publish attempts by default, got %d", cfg.Publisher.MaxAttempts)
	}
	if cfg.Archive.HashAlgorithm != "sha256" {
		t.Fatalf("unexpected hash algorithm: %q", cfg.Archive.HashAlgorithm)
	}
	if cfg.HistoryPath() != filepath.Join(tempHome, ".local", "share", "permasnap", "history.db") {
		t.Fatalf("unexpected history path: %q", cfg.HistoryPath())
	}
}

func TestLoadCustomConfigOverridesDefaults(t *testing.T) {
	t.Setenv("BROWSERLESS_API_KEY", "")
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.toml")
	content := `
[paths]
scratch_dir = "` + filepath.Join(tempDir, "scratch") + `"

[renderer]
binary = "/opt/render/bin/render"
timeout_seconds = 30

[publisher]
max_attempts = 5
retry_base_delay_ms = 100
retry_max_delay_ms = 2000
gateway_url = "https://gateway.example/"

[archive]
hash_algorithm = "BLAKE3"

[logging]
format = "JSON"
`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected config at %q, got %q (exists=%v)", configPath, resolved, exists)
	}
	if cfg.Renderer.Binary != "/opt/render/bin/render" {
		t.Fatalf("unexpected renderer binary: %q", cfg.Renderer.Binary)
	}
	if cfg.RenderTimeout() != 30*time.Second {
		t.Fatalf("unexpected render timeout: %s", cfg.RenderTimeout())
	}
	if cfg.Publisher.MaxAttempts != 5 {
		t.Fatalf("unexpected max attempts: %d", cfg.Publisher.MaxAttempts)
	}
	if cfg.RetryBaseDelay() != 100*time.Millisecond || cfg.RetryMaxDelay() != 2*time.Second {
		t.Fatalf("unexpected retry delays: %s %s", cfg.RetryBaseDelay(), cfg.RetryMaxDelay())
	}
	if cfg.Publisher.GatewayURL != "https://gateway.example" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.Publisher.GatewayURL)
	}
	if cfg.Archive.HashAlgorithm != "blake3" {
		t.Fatalf("expected normalized hash algorithm, got %q", cfg.Archive.HashAlgorithm)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("expected normalized log format, got %q", cfg.Logging.Format)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(configPath, []byte("[renderer]\nbinray = \"x\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(configPath); err == nil {
		t.Fatal("expected unknown key to be rejected")
	}
}

func TestRenderTimeoutPrefersShorterRemoteDeadline(t *testing.T) {
	cfg := config.Default()
	cfg.Renderer.TimeoutSeconds = 120
	cfg.RemoteBrowser.APIKey = "key"
	cfg.RemoteBrowser.TimeoutSeconds = 60

	if got := cfg.RenderTimeout(); got != 75*time.Second {
		t.Fatalf("expected remote timeout plus grace, got %s", got)
	}

	cfg.RemoteBrowser.TimeoutSeconds = 600
	if got := cfg.RenderTimeout(); got != 120*time.Second {
		t.Fatalf("expected local timeout to win, got %s", got)
	}

	cfg.RemoteBrowser.APIKey = ""
	cfg.RemoteBrowser.TimeoutSeconds = 10
	if got := cfg.RenderTimeout(); got != 120*time.Second {
		t.Fatalf("remote timeout must be ignored without api key, got %s", got)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"hash", func(c *config.Config) { c.Archive.HashAlgorithm = "md5" }, "archive.hash_algorithm"},
		{"attempts", func(c *config.Config) { c.Publisher.MaxAttempts = -1 }, "publisher.max_attempts"},
		{"upload url", func(c *config.Config) { c.Publisher.UploadURL = "ftp://example" }, "publisher.upload_url"},
		{"delays", func(c *config.Config) {
			c.Publisher.RetryBaseDelayMS = 500
			c.Publisher.RetryMaxDelayMS = 100
		}, "retry_max_delay_ms"},
		{"rate window", func(c *config.Config) { c.Server.RateLimitWindowSeconds = 0 }, "rate_limit_window_seconds"},
		{"log format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"remote endpoint", func(c *config.Config) {
			c.RemoteBrowser.APIKey = "key"
			c.RemoteBrowser.Endpoint = "ftp://browser"
		}, "remote_browser.endpoint"},
		{"renderer timeout", func(c *config.Config) { c.Renderer.TimeoutSeconds = 0 }, "renderer.timeout_seconds"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected %q in error, got %v", tc.want, err)
			}
		})
	}
}

func TestSampleConfigParsesAndValidates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "permasnap.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	var decoded config.Config
	if err := toml.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("sample config is not valid TOML: %v", err)
	}
	if decoded.Renderer.Binary != "save-html-screenshot" {
		t.Fatalf("unexpected sample renderer binary: %q", decoded.Renderer.Binary)
	}
	if _, _, _, err := config.Load(path); err != nil {
		t.Fatalf("sample config failed to load: %v", err)
	}
}
