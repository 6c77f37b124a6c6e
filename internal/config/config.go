package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	ScratchDir string `toml:"scratch_dir"`
	DataDir    string `toml:"data_dir"`
	LogDir     string `toml:"log_dir"`
}

// Renderer contains configuration for the page rendering subprocess.
type Renderer struct {
	Binary         string   `toml:"binary"`
	UserAgent      string   `toml:"user_agent"`
	BrowserArgs    []string `toml:"browser_args"`
	TimeoutSeconds int      `toml:"timeout_seconds"`
}

// RemoteBrowser contains configuration for a hosted headless browser. The
// renderer connects to it instead of launching a local browser whenever an
// API key is present.
type RemoteBrowser struct {
	Endpoint          string   `toml:"endpoint"`
	APIKey            string   `toml:"api_key"`
	Proxy             string   `toml:"proxy"`
	BlockAds          *bool    `toml:"block_ads"`
	Stealth           *bool    `toml:"stealth"`
	UserDataDir       string   `toml:"user_data_dir"`
	KeepAliveSeconds  int      `toml:"keep_alive_seconds"`
	WindowSize        string   `toml:"window_size"`
	IgnoreDefaultArgs []string `toml:"ignore_default_args"`
	Headless          *bool    `toml:"headless"`
	UserAgent         string   `toml:"user_agent"`
	TimeoutSeconds    int      `toml:"timeout_seconds"`
}

// Publisher contains configuration for the permanent-storage upload gateway.
type Publisher struct {
	UploadURL             string `toml:"upload_url"`
	APIID                 string `toml:"api_id"`
	RequestTimeoutSeconds int    `toml:"request_timeout_seconds"`
	MaxAttempts           int    `toml:"max_attempts"`
	RetryBaseDelayMS      int    `toml:"retry_base_delay_ms"`
	RetryMaxDelayMS       int    `toml:"retry_max_delay_ms"`
	GatewayURL            string `toml:"gateway_url"`
}

// Archive contains pipeline behaviour switches.
type Archive struct {
	HashAlgorithm string `toml:"hash_algorithm"`
	RecordHistory bool   `toml:"record_history"`
}

// Server contains configuration for the HTTP surface.
type Server struct {
	Bind                   string `toml:"bind"`
	RequestTimeoutSeconds  int    `toml:"request_timeout_seconds"`
	RateLimitRequests      int    `toml:"rate_limit_requests"`
	RateLimitWindowSeconds int    `toml:"rate_limit_window_seconds"`
	RedisAddr              string `toml:"redis_addr"`
	RedisPassword          string `toml:"redis_password"`
	RedisDB                int    `toml:"redis_db"`
}

// Staging contains configuration for scratch directory housekeeping.
type Staging struct {
	StaleAfterHours int `toml:"stale_after_hours"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for Permasnap.
//
// Configuration sections by subsystem:
//   - Paths: scratch, data, and log directories
//   - Renderer: the capture subprocess and its local browser launch options
//   - RemoteBrowser: optional hosted browser the renderer connects to
//   - Publisher: upload gateway, credentials, and retry policy
//   - Archive: digest selection and history recording
//   - Server: HTTP bind address, deadlines, and rate limiting
//   - Staging: stale scratch directory cleanup
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Renderer      Renderer      `toml:"renderer"`
	RemoteBrowser RemoteBrowser `toml:"remote_browser"`
	Publisher     Publisher     `toml:"publisher"`
	Archive       Archive       `toml:"archive"`
	Server        Server        `toml:"server"`
	Staging       Staging       `toml:"staging"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("permasnap.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the scratch, data, and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.ScratchDir, c.Paths.DataDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// RemoteEnabled reports whether captures should use the hosted browser.
func (c *Config) RemoteEnabled() bool {
	return strings.TrimSpace(c.RemoteBrowser.APIKey) != ""
}

// RenderTimeout returns the deadline applied to one renderer invocation.
// A remote browser timeout plus a fixed grace period wins when it is shorter.
func (c *Config) RenderTimeout() time.Duration {
	timeout := time.Duration(c.Renderer.TimeoutSeconds) * time.Second
	if c.RemoteEnabled() && c.RemoteBrowser.TimeoutSeconds > 0 {
		remote := time.Duration(c.RemoteBrowser.TimeoutSeconds)*time.Second + remoteTimeoutGrace
		if timeout <= 0 || remote < timeout {
			timeout = remote
		}
	}
	return timeout
}

// PublishRequestTimeout returns the per-attempt HTTP timeout for uploads.
func (c *Config) PublishRequestTimeout() time.Duration {
	return time.Duration(c.Publisher.RequestTimeoutSeconds) * time.Second
}

// RetryBaseDelay returns the first publish retry delay.
func (c *Config) RetryBaseDelay() time.Duration {
	return time.Duration(c.Publisher.RetryBaseDelayMS) * time.Millisecond
}

// RetryMaxDelay returns the ceiling for publish retry delays.
func (c *Config) RetryMaxDelay() time.Duration {
	return time.Duration(c.Publisher.RetryMaxDelayMS) * time.Millisecond
}

// ServerRequestTimeout returns the deadline applied to one HTTP archive request.
func (c *Config) ServerRequestTimeout() time.Duration {
	return time.Duration(c.Server.RequestTimeoutSeconds) * time.Second
}

// RateLimitWindow returns the rate limiting window for the HTTP surface.
func (c *Config) RateLimitWindow() time.Duration {
	return time.Duration(c.Server.RateLimitWindowSeconds) * time.Second
}

// StaleAfter returns the age after which scratch directories count as abandoned.
func (c *Config) StaleAfter() time.Duration {
	return time.Duration(c.Staging.StaleAfterHours) * time.Hour
}

// HistoryPath returns the location of the archive history database.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.Paths.DataDir, "history.db")
}

// LockPath returns the location of the single-instance server lock.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.DataDir, "permasnap.lock")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
