package publisher

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"permasnap/internal/logging"
	"permasnap/internal/services"
	"permasnap/internal/tags"
)

// Client publishes payloads through a Transport, retrying rejected uploads.
// It holds no per-call state and is safe for concurrent use.
type Client struct {
	transport Transport
	logger    *slog.Logger

	maxAttempts    int
	retryBaseDelay time.Duration
	retryMaxDelay  time.Duration
	sleeper        func(time.Duration)
}

// Option customizes the client.
type Option func(*Client)

// WithMaxAttempts caps the number of upload attempts. Zero (the default)
// keeps retrying rejected uploads until one succeeds or ctx is done.
func WithMaxAttempts(attempts int) Option {
	return func(c *Client) {
		if attempts >= 0 {
			c.maxAttempts = attempts
		}
	}
}

// WithRetryBackoff enables exponential delays between rejected attempts,
// starting at baseDelay and never exceeding maxDelay (when positive).
func WithRetryBackoff(baseDelay, maxDelay time.Duration) Option {
	return func(c *Client) {
		c.retryBaseDelay = baseDelay
		c.retryMaxDelay = maxDelay
	}
}

// WithSleeper overrides how retry sleeps are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Client) {
		c.sleeper = sleeper
	}
}

// WithLogger attaches a logger for attempt diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient constructs a publisher over the supplied transport.
func NewClient(transport Transport, opts ...Option) *Client {
	client := &Client{
		transport: transport,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(client)
	}
	client.logger = logging.NewComponentLogger(client.logger, "publisher")
	return client
}

// Publish uploads data with its tags and returns the content identifier. A
// rejected upload is resent unchanged; transport failures return at once.
func (c *Client) Publish(ctx context.Context, data []byte, set tags.Set, cred Credential) (string, error) {
	if c == nil || c.transport == nil {
		return "", services.Wrap(services.ErrConfiguration, "publish", "init", "publisher transport unavailable", nil)
	}
	ticket := Ticket{Data: data, Tags: set, Credential: cred}
	logger := logging.WithContext(ctx, c.logger)

	var lastMessage string
	for attempt := 1; c.maxAttempts == 0 || attempt <= c.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", services.Wrap(services.ErrPublishRejected, "publish", "upload",
				fmt.Sprintf("cancelled after %d attempts", attempt-1), err)
		}

		resp, err := c.transport.Send(ctx, ticket)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return "", services.Wrap(services.ErrPublishRejected, "publish", "upload",
					fmt.Sprintf("cancelled after %d attempts", attempt), ctxErr)
			}
			return "", err
		}
		if resp.Success {
			id := strings.TrimSpace(resp.TransactionID)
			if id == "" {
				return "", services.Wrap(services.ErrTransport, "publish", "decode response",
					"gateway reported success without a transaction id", nil)
			}
			if attempt > 1 {
				logger.Info("upload accepted after retries",
					logging.Int("attempts", attempt),
					logging.String("content_id", id),
					logging.String(logging.FieldEventType, "publish_retry_recovered"),
				)
			}
			return id, nil
		}

		lastMessage = strings.TrimSpace(resp.Message)
		logger.Debug("upload rejected; retrying",
			logging.Int("attempt", attempt),
			logging.String("gateway_message", lastMessage),
			logging.String(logging.FieldEventType, "publish_rejected"),
		)
		if err := c.sleep(ctx, c.backoffDelay(attempt)); err != nil {
			return "", services.Wrap(services.ErrPublishRejected, "publish", "upload",
				fmt.Sprintf("cancelled after %d attempts", attempt), err)
		}
	}

	detail := fmt.Sprintf("rejected %d times", c.maxAttempts)
	if lastMessage != "" {
		detail += ": " + lastMessage
	}
	return "", services.Wrap(services.ErrPublishRejected, "publish", "upload", detail, nil)
}

func (c *Client) backoffDelay(attempt int) time.Duration {
	base := c.retryBaseDelay
	if base <= 0 {
		return 0
	}
	maxDelay := c.retryMaxDelay
	delay := base
	for i := 1; i < attempt; i++ {
		if maxDelay > 0 && delay > maxDelay/2 {
			return maxDelay
		}
		delay *= 2
	}
	if maxDelay > 0 && delay > maxDelay {
		return maxDelay
	}
	return delay
}

func (c *Client) sleep(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}
	if c.sleeper != nil {
		c.sleeper(delay)
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
