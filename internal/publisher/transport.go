package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"permasnap/internal/services"
	"permasnap/internal/tags"
)

const (
	defaultHTTPTimeout = 60 * time.Second
	maxResponseBytes   = 1 << 20
)

// Credential is the caller-supplied proof of identity forwarded with each
// upload. Only the identity token is used; it is never inspected.
type Credential struct {
	IDToken string `json:"id_token"`
}

// Ticket is one upload request: the payload, its tags, and the credential.
type Ticket struct {
	Data       []byte
	Tags       tags.Set
	Credential Credential
}

// Response is the decoded gateway reply for one attempt.
type Response struct {
	Success       bool   `json:"success"`
	TransactionID string `json:"transactionId"`
	Message       string `json:"message,omitempty"`
}

// Transport performs a single upload attempt. Errors returned by Send are
// transport failures and are never retried; an application-level rejection
// is reported as a Response with Success=false.
type Transport interface {
	Send(ctx context.Context, ticket Ticket) (Response, error)
}

// HTTPConfig captures the upload gateway settings.
type HTTPConfig struct {
	UploadURL string
	APIID     string
	Timeout   time.Duration
}

// HTTPTransport posts tickets to the upload gateway as multipart forms.
type HTTPTransport struct {
	cfg        HTTPConfig
	httpClient *http.Client
}

// HTTPOption customizes the HTTP transport.
type HTTPOption func(*HTTPTransport)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(t *HTTPTransport) {
		if client != nil {
			t.httpClient = client
		}
	}
}

// NewHTTPTransport constructs a transport for the configured gateway.
func NewHTTPTransport(cfg HTTPConfig, opts ...HTTPOption) *HTTPTransport {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	transport := &HTTPTransport{
		cfg: HTTPConfig{
			UploadURL: strings.TrimSpace(cfg.UploadURL),
			APIID:     strings.TrimSpace(cfg.APIID),
			Timeout:   timeout,
		},
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(transport)
	}
	return transport
}

// Send uploads the ticket once and decodes the gateway reply.
func (t *HTTPTransport) Send(ctx context.Context, ticket Ticket) (Response, error) {
	body, contentType, err := encodeForm(ticket, t.cfg.APIID)
	if err != nil {
		return Response{}, services.Wrap(services.ErrTransport, "publish", "encode upload", "", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.cfg.UploadURL, body)
	if err != nil {
		return Response{}, services.Wrap(services.ErrTransport, "publish", "new request", "", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return Response{}, services.Wrap(services.ErrTransport, "publish", "upload",
			fmt.Sprintf("http error (timeout=%s)", t.cfg.Timeout), err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Response{}, services.Wrap(services.ErrTransport, "publish", "read response", "", err)
	}
	var decoded Response
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return Response{}, services.Wrap(services.ErrTransport, "publish", "decode response",
			fmt.Sprintf("status %d: %s", resp.StatusCode, snippet(raw)), err)
	}
	return decoded, nil
}

func encodeForm(ticket Ticket, apiID string) (*bytes.Buffer, string, error) {
	encodedTags, err := ticket.Tags.JSON()
	if err != nil {
		return nil, "", fmt.Errorf("encode tags: %w", err)
	}
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "blob")
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(ticket.Data); err != nil {
		return nil, "", err
	}
	fields := []struct{ name, value string }{
		{"dataHashJWT", ticket.Credential.IDToken},
		{"API_ID", apiID},
		{"tags", encodedTags},
	}
	for _, field := range fields {
		if err := writer.WriteField(field.name, field.value); err != nil {
			return nil, "", err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return &buf, writer.FormDataContentType(), nil
}

func snippet(raw []byte) string {
	text := strings.TrimSpace(string(raw))
	if len(text) > 200 {
		text = text[:200] + "..."
	}
	if text == "" {
		return "(empty body)"
	}
	return text
}
