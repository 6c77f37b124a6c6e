package archive

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"permasnap/internal/artifact"
	"permasnap/internal/capture"
	"permasnap/internal/history"
	"permasnap/internal/logging"
	"permasnap/internal/manifest"
	"permasnap/internal/publisher"
	"permasnap/internal/services"
	"permasnap/internal/staging"
	"permasnap/internal/tags"
)

// Capturer renders a page into a scratch directory it allocates.
type Capturer interface {
	Capture(ctx context.Context, targetURL string) (capture.Result, error)
}

// Publisher uploads one payload and returns its content identifier.
type Publisher interface {
	Publish(ctx context.Context, data []byte, set tags.Set, cred publisher.Credential) (string, error)
}

// Recorder stores completed archives.
type Recorder interface {
	Record(ctx context.Context, entry history.Entry) (int64, error)
}

// Request is one archive call.
type Request struct {
	URL        string
	Credential publisher.Credential
	// Address identifies the archiver in manifest tags; may be empty.
	Address string
}

// Result describes a published archive.
type Result struct {
	RequestID     string `json:"requestId"`
	ContentID     string `json:"txID"`
	Title         string `json:"title"`
	Timestamp     int64  `json:"timestamp"`
	PageID        string `json:"pageId"`
	ScreenshotID  string `json:"screenshotId"`
	URL           string `json:"url"`
	WebpageURL    string `json:"webpage,omitempty"`
	ScreenshotURL string `json:"screenshot,omitempty"`
}

// Option configures an Archiver.
type Option func(*Archiver)

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Archiver) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithRecorder enables history recording.
func WithRecorder(recorder Recorder) Option {
	return func(a *Archiver) {
		a.recorder = recorder
	}
}

// WithGatewayURL sets the base used to build viewing links.
func WithGatewayURL(gateway string) Option {
	return func(a *Archiver) {
		a.gateway = strings.TrimRight(strings.TrimSpace(gateway), "/")
	}
}

// WithRequestIDs overrides request id generation.
func WithRequestIDs(next func() string) Option {
	return func(a *Archiver) {
		if next != nil {
			a.newRequestID = next
		}
	}
}

// Archiver coordinates capture, publication, and cleanup.
type Archiver struct {
	capturer     Capturer
	preparer     *artifact.Preparer
	publisher    Publisher
	recorder     Recorder
	gateway      string
	logger       *slog.Logger
	newRequestID func() string
	closers      []io.Closer
}

// New constructs an Archiver from its collaborators.
func New(capturer Capturer, preparer *artifact.Preparer, pub Publisher, opts ...Option) *Archiver {
	a := &Archiver{
		capturer:     capturer,
		preparer:     preparer,
		publisher:    pub,
		logger:       logging.NewNop(),
		newRequestID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = logging.NewComponentLogger(a.logger, "archive")
	return a
}

// Close releases resources the Archiver opened itself.
func (a *Archiver) Close() error {
	var errs []error
	for _, closer := range a.closers {
		if err := closer.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// Archive captures req.URL and publishes it with a manifest. The scratch
// directory is gone by the time Archive returns, whatever the outcome.
func (a *Archiver) Archive(ctx context.Context, req Request) (Result, error) {
	requestID := a.newRequestID()
	ctx = services.WithRequestID(ctx, requestID)
	logger := logging.WithContext(ctx, a.logger)

	if a.capturer == nil || a.preparer == nil || a.publisher == nil {
		err := services.Wrap(services.ErrConfiguration, "archive", "init", "archiver is not fully configured", nil)
		a.logFailure(logger, err)
		return Result{}, err
	}

	target, err := ValidateURL(req.URL)
	if err != nil {
		a.logFailure(logger, err)
		return Result{}, err
	}
	ctx = services.WithTargetURL(ctx, target)
	logger = logging.WithContext(ctx, a.logger)
	started := time.Now()
	logger.Info("archive started", logging.String(logging.FieldEventType, "archive_started"))

	captured, err := a.capturer.Capture(services.WithStage(ctx, "capture"), target)
	if err != nil {
		a.logFailure(logger, err)
		return Result{}, err
	}

	result, err := a.publishCapture(ctx, logger, captured, target, req)
	if err != nil {
		a.logFailure(logger, err)
		return Result{}, err
	}
	result.RequestID = requestID

	logger.Info("archive published",
		logging.String("content_id", result.ContentID),
		logging.String("title", result.Title),
		logging.String("digest", a.preparer.Algorithm()),
		logging.Duration("duration", time.Since(started)),
		logging.String(logging.FieldEventType, "archive_complete"),
	)
	a.record(ctx, logger, requestID, req.Address, result)
	return result, nil
}

// publishCapture owns the scratch directory from a successful capture and
// releases it before returning.
func (a *Archiver) publishCapture(ctx context.Context, logger *slog.Logger, captured capture.Result, target string, req Request) (Result, error) {
	defer func() {
		_ = staging.Release(captured.ScratchPath, logger)
	}()

	files := captured.Files
	if len(files) == 0 {
		// Capturers other than capture.Controller may leave classification to us.
		var err error
		if files, err = artifact.Enumerate(captured.ScratchPath); err != nil {
			return Result{}, err
		}
	}

	ids, err := a.publishArtifacts(ctx, files, captured, target, req.Credential)
	if err != nil {
		return Result{}, err
	}

	manifestCtx := services.WithStage(ctx, "manifest")
	data, set, err := manifest.Build(manifest.Input{
		CapturedAt: captured.CapturedAt,
		Title:      captured.Title,
		SourceURL:  target,
		Archiver:   req.Address,
		ContentIDs: ids,
	})
	if err != nil {
		return Result{}, err
	}
	logging.WithContext(manifestCtx, a.logger).Debug("publishing manifest",
		logging.String("page_id", ids.Page),
		logging.String("screenshot_id", ids.Screenshot),
	)
	contentID, err := a.publisher.Publish(manifestCtx, data, set, req.Credential)
	if err != nil {
		return Result{}, err
	}

	return Result{
		ContentID:     contentID,
		Title:         captured.Title,
		Timestamp:     captured.CapturedAt,
		PageID:        ids.Page,
		ScreenshotID:  ids.Screenshot,
		URL:           target,
		WebpageURL:    a.link(contentID, ""),
		ScreenshotURL: a.link(contentID, artifact.SlotScreenshot),
	}, nil
}

// publishArtifacts prepares and publishes every file concurrently. The first
// failure cancels the others.
func (a *Archiver) publishArtifacts(ctx context.Context, files []artifact.File, captured capture.Result, target string, cred publisher.Credential) (manifest.ContentIDs, error) {
	ids := make([]string, len(files))
	group, groupCtx := errgroup.WithContext(ctx)
	for i, file := range files {
		group.Go(func() error {
			fileCtx := services.WithStage(groupCtx, "publish_"+file.Role.String())
			prepared, err := a.preparer.Prepare(file.Path, captured.Title, target, captured.CapturedAt, file.Role)
			if err != nil {
				return err
			}
			id, err := a.publisher.Publish(fileCtx, prepared.Data, prepared.Tags, cred)
			if err != nil {
				return err
			}
			logging.WithContext(fileCtx, a.logger).Info("artifact published",
				logging.String("content_id", id),
				logging.String("media_type", prepared.MediaType),
				logging.Int("bytes", len(prepared.Data)),
				logging.String(logging.FieldEventType, "artifact_published"),
			)
			ids[i] = id
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return manifest.ContentIDs{}, err
	}

	var out manifest.ContentIDs
	for i, file := range files {
		out.Set(file.Role, ids[i])
	}
	return out, nil
}

func (a *Archiver) link(contentID, suffix string) string {
	if a.gateway == "" || contentID == "" {
		return ""
	}
	if suffix == "" {
		return a.gateway + "/" + contentID
	}
	return a.gateway + "/" + contentID + "/" + suffix
}

func (a *Archiver) record(ctx context.Context, logger *slog.Logger, requestID, address string, result Result) {
	if a.recorder == nil {
		return
	}
	_, err := a.recorder.Record(ctx, history.Entry{
		RequestID:    requestID,
		SourceURL:    result.URL,
		Title:        result.Title,
		ContentID:    result.ContentID,
		PageID:       result.PageID,
		ScreenshotID: result.ScreenshotID,
		Archiver:     address,
		CapturedAt:   result.Timestamp,
	})
	if err != nil {
		logging.WarnWithContext(logger, "history record failed", "history_record_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the data directory is writable"),
			logging.String(logging.FieldImpact, "archive published but missing from local history"),
		)
	}
}

func (a *Archiver) logFailure(logger *slog.Logger, err error) {
	logging.ErrorWithContext(logger, "archive failed", "archive_failed",
		logging.Error(err),
		logging.String(logging.FieldErrorCategory, services.Category(err)),
	)
}
