package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeRenderer()
	c.normalizeRemoteBrowser()
	c.normalizePublisher()
	c.normalizeArchive()
	c.normalizeServer()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.ScratchDir) == "" {
		c.Paths.ScratchDir = defaultScratchDir
	}
	if c.Paths.ScratchDir, err = expandPath(c.Paths.ScratchDir); err != nil {
		return fmt.Errorf("paths.scratch_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeRenderer() {
	c.Renderer.Binary = strings.TrimSpace(c.Renderer.Binary)
	if c.Renderer.Binary == "" {
		c.Renderer.Binary = defaultRendererBinary
	}
	c.Renderer.UserAgent = strings.TrimSpace(c.Renderer.UserAgent)
	if c.Renderer.UserAgent == "" {
		c.Renderer.UserAgent = DefaultUserAgent
	}
	c.Renderer.BrowserArgs = trimList(c.Renderer.BrowserArgs)
}

func (c *Config) normalizeRemoteBrowser() {
	c.RemoteBrowser.APIKey = strings.TrimSpace(c.RemoteBrowser.APIKey)
	if c.RemoteBrowser.APIKey == "" {
		if value, ok := os.LookupEnv("BROWSERLESS_API_KEY"); ok {
			c.RemoteBrowser.APIKey = strings.TrimSpace(value)
		}
	}
	c.RemoteBrowser.Endpoint = strings.TrimSpace(c.RemoteBrowser.Endpoint)
	if c.RemoteBrowser.Endpoint == "" {
		c.RemoteBrowser.Endpoint = defaultRemoteEndpoint
	}
	c.RemoteBrowser.Proxy = strings.TrimSpace(c.RemoteBrowser.Proxy)
	c.RemoteBrowser.UserDataDir = strings.TrimSpace(c.RemoteBrowser.UserDataDir)
	c.RemoteBrowser.WindowSize = strings.TrimSpace(c.RemoteBrowser.WindowSize)
	c.RemoteBrowser.UserAgent = strings.TrimSpace(c.RemoteBrowser.UserAgent)
	c.RemoteBrowser.IgnoreDefaultArgs = trimList(c.RemoteBrowser.IgnoreDefaultArgs)
}

func (c *Config) normalizePublisher() {
	c.Publisher.UploadURL = strings.TrimSpace(c.Publisher.UploadURL)
	if c.Publisher.UploadURL == "" {
		c.Publisher.UploadURL = defaultUploadURL
	}
	c.Publisher.APIID = strings.TrimSpace(c.Publisher.APIID)
	if c.Publisher.APIID == "" {
		if value, ok := os.LookupEnv("OTHENT_API_ID"); ok {
			c.Publisher.APIID = strings.TrimSpace(value)
		}
	}
	c.Publisher.GatewayURL = strings.TrimRight(strings.TrimSpace(c.Publisher.GatewayURL), "/")
	if c.Publisher.GatewayURL == "" {
		c.Publisher.GatewayURL = defaultGatewayURL
	}
	if c.Publisher.RequestTimeoutSeconds <= 0 {
		c.Publisher.RequestTimeoutSeconds = defaultPublishTimeout
	}
}

func (c *Config) normalizeArchive() {
	c.Archive.HashAlgorithm = strings.ToLower(strings.TrimSpace(c.Archive.HashAlgorithm))
	if c.Archive.HashAlgorithm == "" {
		c.Archive.HashAlgorithm = defaultHashAlgorithm
	}
}

func (c *Config) normalizeServer() {
	c.Server.Bind = strings.TrimSpace(c.Server.Bind)
	if c.Server.Bind == "" {
		c.Server.Bind = defaultServerBind
	}
	c.Server.RedisAddr = strings.TrimSpace(c.Server.RedisAddr)
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func trimList(values []string) []string {
	if len(values) == 0 {
		return values
	}
	out := make([]string, 0, len(values))
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
