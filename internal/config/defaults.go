package config

import "time"

const (
	defaultConfigPath           = "~/.config/permasnap/config.toml"
	defaultScratchDir           = "~/.local/share/permasnap/scratch"
	defaultDataDir              = "~/.local/share/permasnap"
	defaultLogDir               = "~/.local/share/permasnap/logs"
	defaultRendererBinary       = "save-html-screenshot"
	defaultRendererTimeout      = 120
	defaultRemoteEndpoint       = "wss://chrome.browserless.io"
	defaultRemoteWindowSize     = "1920,1080"
	defaultRemoteTimeout        = 60
	defaultUploadURL            = "https://server.othent.io/upload-data-bundlr"
	defaultGatewayURL           = "https://arweave.net"
	defaultPublishTimeout       = 60
	defaultHashAlgorithm        = "sha256"
	defaultServerBind           = "127.0.0.1:7490"
	defaultServerRequestTimeout = 300
	defaultRateLimitRequests    = 10
	defaultRateLimitWindow      = 60
	defaultStaleAfterHours      = 24
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"

	remoteTimeoutGrace = 15 * time.Second
)

// DefaultUserAgent is the browser identity presented while rendering pages.
const DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/114.0.0.0 Safari/537.36"

// DefaultBrowserArgs are the launch arguments passed to a locally started browser.
var DefaultBrowserArgs = []string{
	"--no-sandbox",
	"--disable-setuid-sandbox",
	"--window-size=1920,1080",
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			ScratchDir: defaultScratchDir,
			DataDir:    defaultDataDir,
			LogDir:     defaultLogDir,
		},
		Renderer: Renderer{
			Binary:         defaultRendererBinary,
			UserAgent:      DefaultUserAgent,
			BrowserArgs:    append([]string(nil), DefaultBrowserArgs...),
			TimeoutSeconds: defaultRendererTimeout,
		},
		RemoteBrowser: RemoteBrowser{
			Endpoint:       defaultRemoteEndpoint,
			WindowSize:     defaultRemoteWindowSize,
			UserAgent:      DefaultUserAgent,
			TimeoutSeconds: defaultRemoteTimeout,
		},
		Publisher: Publisher{
			UploadURL:             defaultUploadURL,
			RequestTimeoutSeconds: defaultPublishTimeout,
			GatewayURL:            defaultGatewayURL,
		},
		Archive: Archive{
			HashAlgorithm: defaultHashAlgorithm,
			RecordHistory: true,
		},
		Server: Server{
			Bind:                   defaultServerBind,
			RequestTimeoutSeconds:  defaultServerRequestTimeout,
			RateLimitRequests:      defaultRateLimitRequests,
			RateLimitWindowSeconds: defaultRateLimitWindow,
		},
		Staging: Staging{
			StaleAfterHours: defaultStaleAfterHours,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
