package capture

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultBrowserEndpoint is the hosted browser used when none is configured.
const DefaultBrowserEndpoint = "wss://chrome.browserless.io"

// RemoteOptions are the hosted browser settings encoded into its endpoint.
// Zero values and nil pointers are omitted from the query string.
type RemoteOptions struct {
	APIKey            string
	Proxy             string
	BlockAds          *bool
	Stealth           *bool
	UserDataDir       string
	KeepAlive         time.Duration
	WindowSize        string
	IgnoreDefaultArgs []string
	Headless          *bool
	UserAgent         string
	Timeout           time.Duration
}

// BrowserEndpoint appends the supplied options to base as query parameters.
func BrowserEndpoint(base string, opts RemoteOptions) (string, error) {
	base = strings.TrimSpace(base)
	if base == "" {
		base = DefaultBrowserEndpoint
	}
	parsed, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse browser endpoint: %w", err)
	}

	var params []string
	add := func(key, value string) {
		params = append(params, url.QueryEscape(key)+"="+url.QueryEscape(value))
	}
	if opts.APIKey != "" {
		add("token", opts.APIKey)
	}
	if opts.Proxy != "" {
		add("proxy", opts.Proxy)
	}
	if opts.BlockAds != nil {
		add("blockAds", strconv.FormatBool(*opts.BlockAds))
	}
	if opts.Stealth != nil {
		add("stealth", strconv.FormatBool(*opts.Stealth))
	}
	if opts.UserDataDir != "" {
		add("--user-data-dir", opts.UserDataDir)
	}
	if opts.KeepAlive > 0 {
		add("keepalive", strconv.FormatInt(opts.KeepAlive.Milliseconds(), 10))
	}
	if opts.WindowSize != "" {
		add("--window-size", opts.WindowSize)
	}
	if len(opts.IgnoreDefaultArgs) > 0 {
		add("ignoreDefaultArgs", strings.Join(opts.IgnoreDefaultArgs, ","))
	}
	if opts.Headless != nil {
		add("headless", strconv.FormatBool(*opts.Headless))
	}
	if opts.UserAgent != "" {
		add("--user-agent", opts.UserAgent)
	}
	if opts.Timeout > 0 {
		add("timeout", strconv.FormatInt(opts.Timeout.Milliseconds(), 10))
	}

	if len(params) == 0 {
		return parsed.String(), nil
	}
	query := strings.Join(params, "&")
	if parsed.RawQuery != "" {
		query = parsed.RawQuery + "&" + query
	}
	parsed.RawQuery = query
	return parsed.String(), nil
}
