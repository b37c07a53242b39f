// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package backend is the HTTP client for the video-processing service.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/ManuGH/locflow/internal/resilience"
	"github.com/ManuGH/locflow/internal/telemetry"
)

// TokenSource supplies the bearer token per request. An empty token sends
// no Authorization header.
type TokenSource func(ctx context.Context) string

// Client talks to the video-processing backend.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	limiter       *rate.Limiter
	breaker       *resilience.CircuitBreaker
	maxRetries    int
	backoff       time.Duration
	maxBackoff    time.Duration
	timeout       time.Duration
	uploadTimeout time.Duration
	maxUpload     int64
	pollRetries   int
	pollInterval  time.Duration
	pollMax       time.Duration
	userAgent     string
	tokens        TokenSource
	rnd           *rand.Rand
	mu            sync.Mutex
}

// Options configures the client behavior.
type Options struct {
	Timeout        time.Duration
	UploadTimeout  time.Duration
	MaxUploadBytes int64
	MaxRetries     int
	Backoff        time.Duration
	MaxBackoff     time.Duration
	RateLimit      rate.Limit
	RateLimitBurst int
	UserAgent      string
	// Token is used when TokenSource is nil.
	Token       string
	TokenSource TokenSource

	PollRetries     int
	PollInterval    time.Duration
	PollMaxInterval time.Duration

	BreakerThreshold int
	BreakerReset     time.Duration
}

const (
	defaultTimeout        = 30 * time.Second
	defaultUploadTimeout  = 120 * time.Second
	defaultMaxUpload      = 500 << 20
	defaultRetries        = 2
	defaultBackoff        = 200 * time.Millisecond
	defaultMaxBackoff     = 2 * time.Second
	defaultRateLimit      = 10
	defaultRateLimitBurst = 20
	defaultPollRetries    = 20
	defaultPollInterval   = time.Second
	defaultPollMax        = 10 * time.Second
	maxBodyRead           = 4 << 10
)

// NewClient creates a client with default options.
func NewClient(baseURL string) *Client {
	return NewClientWithOptions(baseURL, Options{})
}

// NewClientWithOptions creates a client with explicit options.
func NewClientWithOptions(baseURL string, opts Options) *Client {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	nopts := normalizeOptions(opts)

	transport := &http.Transport{
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   20,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ResponseHeaderTimeout: nopts.UploadTimeout,
	}

	tokens := nopts.TokenSource
	if tokens == nil {
		static := nopts.Token
		tokens = func(context.Context) string { return static }
	}

	return &Client{
		BaseURL: trimmed,
		// Deadlines come from per-call contexts so uploads can outlive Timeout.
		HTTPClient:    &http.Client{Transport: transport},
		limiter:       rate.NewLimiter(nopts.RateLimit, nopts.RateLimitBurst),
		breaker:       resilience.NewCircuitBreaker("backend", nopts.BreakerThreshold, nopts.BreakerReset, resilience.WithFailureFilter(countsAgainstBreaker)),
		maxRetries:    nopts.MaxRetries,
		backoff:       nopts.Backoff,
		maxBackoff:    nopts.MaxBackoff,
		timeout:       nopts.Timeout,
		uploadTimeout: nopts.UploadTimeout,
		maxUpload:     nopts.MaxUploadBytes,
		pollRetries:   nopts.PollRetries,
		pollInterval:  nopts.PollInterval,
		pollMax:       nopts.PollMaxInterval,
		userAgent:     nopts.UserAgent,
		tokens:        tokens,
		rnd:           rand.New(rand.NewSource(time.Now().UnixNano())), // #nosec G404 -- jitter only
	}
}

func normalizeOptions(opts Options) Options {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.UploadTimeout <= 0 {
		opts.UploadTimeout = defaultUploadTimeout
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = defaultMaxUpload
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.MaxRetries == 0 {
		opts.MaxRetries = defaultRetries
	}
	if opts.Backoff <= 0 {
		opts.Backoff = defaultBackoff
	}
	if opts.MaxBackoff <= 0 {
		opts.MaxBackoff = defaultMaxBackoff
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = rate.Limit(defaultRateLimit)
	}
	if opts.RateLimitBurst <= 0 {
		opts.RateLimitBurst = defaultRateLimitBurst
	}
	if opts.PollRetries <= 0 {
		opts.PollRetries = defaultPollRetries
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}
	if opts.PollMaxInterval <= 0 {
		opts.PollMaxInterval = defaultPollMax
	}
	if strings.TrimSpace(opts.UserAgent) == "" {
		opts.UserAgent = "locflow"
	}
	return opts
}

// BreakerState exposes the circuit breaker state for health reporting.
func (c *Client) BreakerState() resilience.State {
	return c.breaker.State()
}

// request describes one logical backend call.
type request struct {
	method string
	path   string
	// endpoint is the metrics/trace route label; defaults to path.
	endpoint string
	query  url.Values
	// body is replayed on every attempt.
	body        []byte
	contentType string
	// stream is used instead of body for single-shot payloads.
	stream    func() (io.Reader, string)
	retryable bool
	timeout   time.Duration
}

func jsonRequest(method, path string, payload any, retryable bool) (request, error) {
	r := request{method: method, path: path, retryable: retryable}
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return r, fmt.Errorf("encode %s: %w", path, err)
		}
		r.body = b
		r.contentType = "application/json"
	}
	return r, nil
}

// call runs req through the breaker, checks the status and decodes the
// JSON response into out when out is non-nil.
func (c *Client) call(ctx context.Context, op string, req request, out any) error {
	timeout := req.timeout
	if timeout <= 0 {
		timeout = c.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := c.breaker.Execute(func() error {
		resp, err := c.do(ctx, req)
		if err != nil {
			return wrapError(op, err, 0, nil)
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodyRead))
			return wrapError(op, nil, resp.StatusCode, bytes.TrimSpace(body))
		}
		if out == nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			if isTimeout(err) {
				return wrapError(op, err, resp.StatusCode, nil)
			}
			return &APIError{Sentinel: ErrBadResponse, Operation: op, Status: resp.StatusCode, Err: err}
		}
		return nil
	})
	if errors.Is(err, resilience.ErrCircuitOpen) {
		return &APIError{Sentinel: ErrUnavailable, Operation: op, Err: err}
	}
	return err
}

func (c *Client) do(ctx context.Context, req request) (*http.Response, error) {
	rawURL, err := c.url(req.path, req.query)
	if err != nil {
		return nil, err
	}

	tracer := telemetry.Tracer("locflow.backend")
	route, urlLabel := traceLabels(rawURL)
	if req.endpoint != "" {
		route = req.endpoint
	}
	ctx, span := tracer.Start(ctx, "locflow.backend.request", trace.WithSpanKind(trace.SpanKindClient))
	span.SetAttributes(
		attribute.String("http.method", req.method),
		attribute.String("http.route", route),
		attribute.String("http.url", urlLabel),
	)
	defer span.End()

	maxAttempts := 1
	if req.retryable && req.stream == nil {
		maxAttempts = c.maxRetries + 1
	}

	var lastErr error
	var lastStatus int
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		attemptCtx, attemptSpan := tracer.Start(ctx, "locflow.backend.request.attempt", trace.WithSpanKind(trace.SpanKindClient))
		attemptSpan.SetAttributes(
			attribute.Int("attempt", attempt),
			attribute.Bool("retry", attempt > 1),
		)

		if err := c.limiter.Wait(attemptCtx); err != nil {
			endSpanWithError(attemptSpan, err)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}

		httpReq, err := c.newHTTPRequest(attemptCtx, req, rawURL)
		if err != nil {
			endSpanWithError(attemptSpan, err)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}

		start := time.Now()
		resp, err := c.HTTPClient.Do(httpReq)
		duration := time.Since(start)

		status := 0
		if resp != nil {
			status = resp.StatusCode
		}

		retry := attempt < maxAttempts && shouldRetry(resp, err) && ctx.Err() == nil
		recordAttemptMetrics(req.method, route, status, duration, err, retry)

		attemptSpan.SetAttributes(telemetry.HTTPAttributes(req.method, route, urlLabel, status)...)
		if err != nil {
			attemptSpan.RecordError(err)
		}
		if err != nil || status >= http.StatusBadRequest {
			statusText := http.StatusText(status)
			if statusText == "" {
				statusText = "request failed"
			}
			attemptSpan.SetStatus(codes.Error, statusText)
		} else {
			attemptSpan.SetStatus(codes.Ok, "")
		}
		attemptSpan.End()

		if err == nil && (status < http.StatusInternalServerError || !retry) {
			span.SetAttributes(telemetry.HTTPAttributes(req.method, route, urlLabel, status)...)
			if status >= http.StatusBadRequest {
				span.SetStatus(codes.Error, http.StatusText(status))
			} else {
				span.SetStatus(codes.Ok, "")
			}
			return resp, nil
		}

		if resp != nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()
		}
		lastErr = err
		lastStatus = status

		if !retry {
			break
		}
		if err := sleepWithContext(ctx, c.backoffFor(attempt-1)); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
	}

	if lastStatus > 0 {
		span.SetAttributes(telemetry.HTTPAttributes(req.method, route, urlLabel, lastStatus)...)
	}
	if lastErr != nil {
		span.RecordError(lastErr)
		span.SetStatus(codes.Error, lastErr.Error())
		return nil, lastErr
	}
	return nil, fmt.Errorf("request failed")
}

func (c *Client) newHTTPRequest(ctx context.Context, req request, rawURL string) (*http.Request, error) {
	var body io.Reader
	contentType := req.contentType
	switch {
	case req.stream != nil:
		body, contentType = req.stream()
	case req.body != nil:
		body = bytes.NewReader(req.body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, rawURL, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)
	if token := c.tokens(ctx); token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(httpReq.Header))
	return httpReq, nil
}

func (c *Client) url(path string, query url.Values) (string, error) {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}
	u.Path = strings.TrimRight(u.Path, "/") + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String(), nil
}

func endSpanWithError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.End()
}

func shouldRetry(resp *http.Response, err error) bool {
	if err != nil {
		return !errors.Is(err, context.Canceled)
	}
	if resp == nil {
		return true
	}
	return resp.StatusCode >= http.StatusInternalServerError
}

func (c *Client) backoffFor(attempt int) time.Duration {
	return c.capped(c.backoff, c.maxBackoff, attempt)
}

// capped returns base*2^attempt limited to maxWait, plus up to 20% jitter.
func (c *Client) capped(base, maxWait time.Duration, attempt int) time.Duration {
	if attempt > 30 {
		attempt = 30
	}
	wait := base * time.Duration(1<<attempt)
	if wait > maxWait || wait <= 0 {
		wait = maxWait
	}
	jitter := time.Duration(c.randInt63n(int64(wait/5 + 1)))
	return wait + jitter
}

func (c *Client) randInt63n(n int64) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rnd.Int63n(n)
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func traceLabels(rawURL string) (string, string) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL, rawURL
	}
	route := u.Path
	if route == "" {
		route = "/"
	}
	urlLabel := route
	if u.RawQuery != "" {
		urlLabel += "?"
	}
	return route, urlLabel
}
