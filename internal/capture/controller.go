package capture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"permasnap/internal/artifact"
	"permasnap/internal/logging"
	"permasnap/internal/services"
	"permasnap/internal/staging"
)

// Status reports whether a capture produced usable output.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

// Result describes one capture. On success the caller owns ScratchPath and
// must remove it; on failure the directory has already been removed.
type Result struct {
	Status             Status
	ScratchPath        string
	PageFilePath       string
	ScreenshotFilePath string
	// Files lists the publishable files with their roles, page first.
	Files        []artifact.File
	Title        string
	CapturedAt   int64
	ErrorMessage string
}

// Option configures the controller.
type Option func(*Controller)

// WithClock overrides the capture timestamp source.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithTimeout bounds each renderer invocation.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Controller) {
		c.timeout = timeout
	}
}

// WithUserAgent sets the browser identity passed to the renderer.
func WithUserAgent(userAgent string) Option {
	return func(c *Controller) {
		c.userAgent = userAgent
	}
}

// WithBrowserArgs sets the local browser launch arguments.
func WithBrowserArgs(args []string) Option {
	return func(c *Controller) {
		c.browserArgs = append([]string(nil), args...)
	}
}

// WithBrowserEndpoint directs the renderer at a remote browser.
func WithBrowserEndpoint(endpoint string) Option {
	return func(c *Controller) {
		c.endpoint = endpoint
	}
}

// Controller drives the renderer and validates what it produced.
type Controller struct {
	renderer    Renderer
	scratchRoot string
	userAgent   string
	browserArgs []string
	endpoint    string
	timeout     time.Duration
	now         func() time.Time
	logger      *slog.Logger
}

// NewController constructs a controller that allocates scratch directories
// under scratchRoot.
func NewController(renderer Renderer, scratchRoot string, opts ...Option) *Controller {
	c := &Controller{
		renderer:    renderer,
		scratchRoot: scratchRoot,
		now:         time.Now,
		logger:      logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.NewComponentLogger(c.logger, "capture")
	return c
}

// Capture renders targetURL into a freshly allocated scratch directory.
func (c *Controller) Capture(ctx context.Context, targetURL string) (Result, error) {
	dir, err := staging.Allocate(c.scratchRoot)
	if err != nil {
		return failure("", err.Error()), services.Wrap(services.ErrCapture, "capture", "allocate scratch", "", err)
	}
	return c.CaptureInto(ctx, targetURL, dir)
}

// CaptureInto renders targetURL into dir, which the controller takes over:
// it is removed before returning on any failure.
func (c *Controller) CaptureInto(ctx context.Context, targetURL, dir string) (Result, error) {
	logger := logging.WithContext(ctx, c.logger)
	if c.renderer == nil {
		return c.fail(logger, dir, "render", "renderer unavailable", nil)
	}

	renderCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		renderCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	started := time.Now()
	err := c.renderer.Render(renderCtx, RenderRequest{
		URL:             targetURL,
		OutputDir:       dir,
		UserAgent:       c.userAgent,
		BrowserArgs:     c.browserArgs,
		BrowserEndpoint: c.endpoint,
	})
	if err != nil {
		if renderCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil {
			return c.fail(logger, dir, "render", fmt.Sprintf("renderer timed out after %s", c.timeout), err)
		}
		return c.fail(logger, dir, "render", "renderer failed", err)
	}

	title, err := readTitle(dir)
	if err != nil {
		return c.fail(logger, dir, "read metadata", "invalid renderer metadata", err)
	}
	capturedAt := c.now().Unix()

	files, err := artifact.Enumerate(dir)
	if err != nil {
		return c.fail(logger, dir, "validate output", "incomplete renderer output", err)
	}
	result := Result{
		Status:      StatusSuccess,
		ScratchPath: dir,
		Files:       files,
		Title:       title,
		CapturedAt:  capturedAt,
	}
	for _, file := range files {
		switch file.Role {
		case artifact.RolePage:
			result.PageFilePath = file.Path
		case artifact.RoleScreenshot:
			result.ScreenshotFilePath = file.Path
		}
	}

	logger.Info("page captured",
		logging.String("title", title),
		logging.Duration("render_duration", time.Since(started)),
		logging.String(logging.FieldEventType, "capture_complete"),
	)
	return result, nil
}

func (c *Controller) fail(logger *slog.Logger, dir, operation, message string, cause error) (Result, error) {
	_ = staging.Release(dir, logger)
	err := cause
	if !errors.Is(cause, services.ErrCapture) {
		err = services.Wrap(services.ErrCapture, "capture", operation, message, cause)
	}
	logger.Warn("capture failed",
		logging.Error(err),
		logging.String(logging.FieldEventType, "capture_failed"),
		logging.String(logging.FieldErrorHint, "check renderer binary, browser settings, and target URL"),
		logging.String(logging.FieldImpact, "page was not archived"),
	)
	return failure("", err.Error()), err
}

func failure(dir, message string) Result {
	return Result{Status: StatusFailure, ScratchPath: dir, ErrorMessage: message}
}
