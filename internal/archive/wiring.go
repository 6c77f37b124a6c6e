package archive

import (
	"fmt"
	"log/slog"
	"time"

	"permasnap/internal/artifact"
	"permasnap/internal/capture"
	"permasnap/internal/config"
	"permasnap/internal/history"
	"permasnap/internal/publisher"
	"permasnap/internal/services"
)

// Dependencies overrides the production collaborators NewFromConfig builds.
// Nil fields fall back to the configured implementations.
type Dependencies struct {
	Renderer  capture.Renderer
	Transport publisher.Transport
	Sleeper   func(time.Duration)
}

// NewFromConfig wires an Archiver from configuration. The caller must Close
// it to release the history database.
func NewFromConfig(cfg *config.Config, logger *slog.Logger, deps Dependencies) (*Archiver, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "archive", "init", "config required", nil)
	}

	renderer := deps.Renderer
	if renderer == nil {
		commandRenderer, err := capture.NewCommandRenderer(cfg.Renderer.Binary)
		if err != nil {
			return nil, services.Wrap(services.ErrConfiguration, "archive", "renderer", "", err)
		}
		renderer = commandRenderer
	}
	captureOpts := []capture.Option{
		capture.WithLogger(logger),
		capture.WithTimeout(cfg.RenderTimeout()),
		capture.WithUserAgent(cfg.Renderer.UserAgent),
		capture.WithBrowserArgs(cfg.Renderer.BrowserArgs),
	}
	if cfg.RemoteEnabled() {
		endpoint, err := capture.BrowserEndpoint(cfg.RemoteBrowser.Endpoint, RemoteOptions(cfg))
		if err != nil {
			return nil, services.Wrap(services.ErrConfiguration, "archive", "remote browser", "", err)
		}
		captureOpts = append(captureOpts, capture.WithBrowserEndpoint(endpoint))
	}
	controller := capture.NewController(renderer, cfg.Paths.ScratchDir, captureOpts...)

	preparer, err := artifact.NewPreparer(cfg.Archive.HashAlgorithm)
	if err != nil {
		return nil, err
	}

	transport := deps.Transport
	if transport == nil {
		transport = publisher.NewHTTPTransport(publisher.HTTPConfig{
			UploadURL: cfg.Publisher.UploadURL,
			APIID:     cfg.Publisher.APIID,
			Timeout:   cfg.PublishRequestTimeout(),
		})
	}
	clientOpts := []publisher.Option{
		publisher.WithLogger(logger),
		publisher.WithMaxAttempts(cfg.Publisher.MaxAttempts),
		publisher.WithRetryBackoff(cfg.RetryBaseDelay(), cfg.RetryMaxDelay()),
	}
	if deps.Sleeper != nil {
		clientOpts = append(clientOpts, publisher.WithSleeper(deps.Sleeper))
	}
	client := publisher.NewClient(transport, clientOpts...)

	opts := []Option{
		WithLogger(logger),
		WithGatewayURL(cfg.Publisher.GatewayURL),
	}
	var store *history.Store
	if cfg.Archive.RecordHistory {
		store, err = history.Open(cfg)
		if err != nil {
			return nil, fmt.Errorf("open history: %w", err)
		}
		opts = append(opts, WithRecorder(store))
	}

	archiver := New(controller, preparer, client, opts...)
	if store != nil {
		archiver.closers = append(archiver.closers, store)
	}
	return archiver, nil
}

// RemoteOptions maps the remote browser configuration onto endpoint options.
func RemoteOptions(cfg *config.Config) capture.RemoteOptions {
	remote := cfg.RemoteBrowser
	return capture.RemoteOptions{
		APIKey:            remote.APIKey,
		Proxy:             remote.Proxy,
		BlockAds:          remote.BlockAds,
		Stealth:           remote.Stealth,
		UserDataDir:       remote.UserDataDir,
		KeepAlive:         time.Duration(remote.KeepAliveSeconds) * time.Second,
		WindowSize:        remote.WindowSize,
		IgnoreDefaultArgs: remote.IgnoreDefaultArgs,
		Headless:          remote.Headless,
		UserAgent:         remote.UserAgent,
		Timeout:           time.Duration(remote.TimeoutSeconds) * time.Second,
	}
}
