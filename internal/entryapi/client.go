// Package entryapi is the client for the external time-entry API.
//
// It has exactly one operation: CreateEntry posts a formatted entry string
// (e.g. "1h30m wrote the report") to {baseURL}/entries. There is no retry
// loop here; retrying is a user action at the store level.
package entryapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/zjrosen/tact/internal/log"
	"github.com/zjrosen/tact/internal/tracing"
)

// DefaultBaseURL is used when no base URL is configured.
const DefaultBaseURL = "http://localhost:2100"

// DefaultTimeout bounds a single submission round trip.
const DefaultTimeout = 10 * time.Second

// maxErrorBody caps how much of an error response body is kept.
const maxErrorBody = 4 << 10

// Client submits entries to the time-entry API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tracer     trace.Tracer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout on the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithTracer sets the tracer used for submission spans.
func WithTracer(t trace.Tracer) Option {
	return func(c *Client) {
		if t != nil {
			c.tracer = t
		}
	}
}

// New creates a client for baseURL, which is normalized first.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    NormalizeBaseURL(baseURL),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		tracer:     noop.NewTracerProvider().Tracer("entryapi"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NormalizeBaseURL trims whitespace and trailing slashes; empty input yields
// DefaultBaseURL.
func NormalizeBaseURL(raw string) string {
	u := strings.TrimSpace(raw)
	u = strings.TrimRight(u, "/")
	if u == "" {
		return DefaultBaseURL
	}
	return u
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// EntriesURL builds {baseURL}/entries, or ErrInvalidURL.
func (c *Client) EntriesURL() (string, error) {
	u, err := url.Parse(c.baseURL + "/entries")
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrInvalidURL, c.baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: %q: scheme must be http or https", ErrInvalidURL, c.baseURL)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: %q: missing host", ErrInvalidURL, c.baseURL)
	}
	return u.String(), nil
}

type createEntryRequest struct {
	UserInput string `json:"user_input"`
}

// CreateEntry posts {"user_input": text}. Any 2xx is success.
func (c *Client) CreateEntry(ctx context.Context, text string) (err error) {
	ctx, span := c.tracer.Start(ctx, tracing.SpanCreateEntry,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String(tracing.AttrEntryText, text)),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	endpoint, err := c.EntriesURL()
	if err != nil {
		log.ErrorErr(log.CatAPI, "Invalid base URL", err, "base_url", c.baseURL)
		return err
	}
	span.SetAttributes(attribute.String(tracing.AttrHTTPURL, endpoint))

	body, err := json.Marshal(createEntryRequest{UserInput: text})
	if err != nil {
		return fmt.Errorf("encoding entry: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	req.Header.Set("Content-Type", "application/json")

	log.Debug(log.CatAPI, "Submitting entry", "url", endpoint, "text", text)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.ErrorErr(log.CatAPI, "Submission transport failure", err, "url", endpoint)
		return &TransportError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	span.SetAttributes(attribute.Int(tracing.AttrHTTPStatusCode, resp.StatusCode))

	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		log.Info(log.CatAPI, "Entry created", "status", resp.StatusCode)
		return nil
	}

	serverErr := &ServerError{StatusCode: resp.StatusCode, Message: readMessage(resp.Body)}
	log.Warn(log.CatAPI, "Entry rejected", "status", serverErr.StatusCode, "message", serverErr.Message)
	return serverErr
}

// readMessage returns the body as text, or "Unknown error" when it is empty,
// unreadable, or not UTF-8.
func readMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil || len(data) == 0 || !utf8.Valid(data) {
		return "Unknown error"
	}
	return string(data)
}
