package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateRenderer(); err != nil {
		return err
	}
	if err := c.validateRemoteBrowser(); err != nil {
		return err
	}
	if err := c.validatePublisher(); err != nil {
		return err
	}
	if err := c.validateArchive(); err != nil {
		return err
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateStaging(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateRenderer() error {
	if c.Renderer.TimeoutSeconds <= 0 {
		return errors.New("renderer.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateRemoteBrowser() error {
	if !c.RemoteEnabled() {
		return nil
	}
	parsed, err := url.Parse(c.RemoteBrowser.Endpoint)
	if err != nil || parsed.Host == "" {
		return fmt.Errorf("remote_browser.endpoint %q is not a valid URL", c.RemoteBrowser.Endpoint)
	}
	switch parsed.Scheme {
	case "ws", "wss", "http", "https":
	default:
		return fmt.Errorf("remote_browser.endpoint scheme %q is not supported", parsed.Scheme)
	}
	if c.RemoteBrowser.KeepAliveSeconds < 0 {
		return errors.New("remote_browser.keep_alive_seconds must be non-negative")
	}
	if c.RemoteBrowser.TimeoutSeconds < 0 {
		return errors.New("remote_browser.timeout_seconds must be non-negative")
	}
	return nil
}

func (c *Config) validatePublisher() error {
	parsed, err := url.Parse(c.Publisher.UploadURL)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return fmt.Errorf("publisher.upload_url %q must be an http(s) URL", c.Publisher.UploadURL)
	}
	if c.Publisher.MaxAttempts < 0 {
		return errors.New("publisher.max_attempts must be non-negative (0 retries without limit)")
	}
	if c.Publisher.RetryBaseDelayMS < 0 || c.Publisher.RetryMaxDelayMS < 0 {
		return errors.New("publisher retry delays must be non-negative")
	}
	if c.Publisher.RetryMaxDelayMS > 0 && c.Publisher.RetryMaxDelayMS < c.Publisher.RetryBaseDelayMS {
		return errors.New("publisher.retry_max_delay_ms must not be lower than publisher.retry_base_delay_ms")
	}
	return nil
}

func (c *Config) validateArchive() error {
	switch c.Archive.HashAlgorithm {
	case "sha256", "blake3":
		return nil
	default:
		return fmt.Errorf("archive.hash_algorithm %q is not supported (use sha256 or blake3)", c.Archive.HashAlgorithm)
	}
}

func (c *Config) validateServer() error {
	if c.Server.RequestTimeoutSeconds <= 0 {
		return errors.New("server.request_timeout_seconds must be positive")
	}
	if c.Server.RateLimitRequests < 0 {
		return errors.New("server.rate_limit_requests must be non-negative (0 disables limiting)")
	}
	if c.Server.RateLimitRequests > 0 && c.Server.RateLimitWindowSeconds <= 0 {
		return errors.New("server.rate_limit_window_seconds must be positive when rate limiting is enabled")
	}
	if c.Server.RedisDB < 0 {
		return errors.New("server.redis_db must be non-negative")
	}
	return nil
}

func (c *Config) validateStaging() error {
	if c.Staging.StaleAfterHours < 0 {
		return errors.New("staging.stale_after_hours must be non-negative")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format %q is not supported (use console or json)", c.Logging.Format)
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q is not supported", c.Logging.Level)
	}
	return nil
}
