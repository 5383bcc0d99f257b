// Package client provides the HTTP page fetcher for the YouTube Data API
// with structured errors, optional throttling and circuit breaking,
// metrics and tracing.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/ytdata-client/pkg/logging"
	"github.com/Sternrassler/ytdata-client/pkg/pagination"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the YouTube Data API v3 root.
	DefaultBaseURL = "https://www.googleapis.com/youtube/v3"

	// PageTokenParam is the query parameter carrying the page cursor.
	PageTokenParam = "pageToken"

	// APIKeyParam is the query parameter carrying a simple API key.
	APIKeyParam = "key"

	maxBodyBytes = 16 << 20
)

// Client is the YouTube Data API page fetcher.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
	tracer     trace.Tracer
	config     Config
	logger     zerolog.Logger
}

var _ pagination.PageFetcher = (*Client)(nil)

// Config holds the client configuration.
type Config struct {
	// BaseURL is prepended to every endpoint path.
	BaseURL string

	// Authentication: exactly one of APIKey or TokenSource is required.
	APIKey      string
	TokenSource oauth2.TokenSource

	// UserAgent header sent with every request.
	UserAgent string

	// Timeout per HTTP request.
	Timeout time.Duration

	// Throttle
	RateLimit float64 // Requests per second, 0 disables
	Burst     int

	// CircuitBreaker trips after BreakerFailures consecutive server or
	// network failures and rejects requests for BreakerCooldown.
	CircuitBreaker  bool
	BreakerFailures uint32
	BreakerCooldown time.Duration
}

// DefaultConfig returns a configuration using a simple API key.
func DefaultConfig(apiKey, userAgent string) Config {
	return Config{
		BaseURL:         DefaultBaseURL,
		APIKey:          apiKey,
		UserAgent:       userAgent,
		Timeout:         30 * time.Second,
		Burst:           1,
		BreakerFailures: 5,
		BreakerCooldown: 30 * time.Second,
	}
}

// New creates a new API client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}

	if cfg.APIKey == "" && cfg.TokenSource == nil {
		return nil, fmt.Errorf("api key or token source is required")
	}

	if cfg.APIKey != "" && cfg.TokenSource != nil {
		return nil, fmt.Errorf("api key and token source are mutually exclusive")
	}

	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}

	if cfg.RateLimit < 0 {
		return nil, fmt.Errorf("rate_limit must be >= 0 (got %v)", cfg.RateLimit)
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	logger := logging.NewLogger("ytdata-client")

	var transport http.RoundTripper = http.DefaultTransport
	if cfg.TokenSource != nil {
		transport = &oauth2.Transport{Source: cfg.TokenSource, Base: transport}
	}

	c := &Client{
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
		tracer: otel.Tracer("github.com/Sternrassler/ytdata-client/pkg/client"),
		config: cfg,
		logger: logger,
	}

	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	if cfg.CircuitBreaker {
		c.breaker = newBreaker(cfg, logger)
	}

	return c, nil
}

func newBreaker(cfg Config, logger zerolog.Logger) *gobreaker.CircuitBreaker {
	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 5
	}
	cooldown := cfg.BreakerCooldown
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "ytdata",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		// 4xx answers mean the API is up; only server and network failures count.
		IsSuccessful: func(err error) bool {
			return err == nil || IsClass(err, ErrorClassClient)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			breakerStateChanges.WithLabelValues(to.String()).Inc()
			logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state changed")
		},
	})
}

// FetchPage performs one GET for a listing endpoint and decodes the page
// envelope. A non-empty pageToken is sent as the page cursor.
func (c *Client) FetchPage(ctx context.Context, endpoint string, params pagination.Params, pageToken string) (*pagination.Page, error) {
	ctx, span := c.tracer.Start(ctx, "ytdata.fetch_page", trace.WithAttributes(
		attribute.String("ytdata.endpoint", endpoint),
		attribute.Bool("ytdata.has_page_token", pageToken != ""),
	))
	defer span.End()

	if pageToken != "" {
		params = params.With(PageTokenParam, pageToken)
	}

	body, err := c.GetJSON(ctx, endpoint, params)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		return nil, err
	}

	page, err := DecodePage(endpoint, body)
	if err != nil {
		decodeErrorsTotal.WithLabelValues(endpoint).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "decode failed")
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("ytdata.items", len(page.Items)),
		attribute.Bool("ytdata.has_next", page.HasNext()),
	)
	c.logger.Debug().
		Str("endpoint", endpoint).
		Int("items", len(page.Items)).
		Bool("has_next", page.HasNext()).
		Msg("Page decoded")

	return page, nil
}

// GetJSON performs a GET request and returns the raw body of a 2xx response.
func (c *Client) GetJSON(ctx context.Context, endpoint string, params pagination.Params) ([]byte, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}
	if c.config.APIKey != "" {
		params = params.With(APIKeyParam, c.config.APIKey)
	}

	query, err := params.Encode()
	if err != nil {
		return nil, fmt.Errorf("encode params: %w", err)
	}

	target := c.buildURL(endpoint)
	if query != "" {
		target += "?" + query
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	return c.Do(req, endpoint)
}

func (c *Client) buildURL(endpoint string) string {
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}
	return strings.TrimRight(c.config.BaseURL, "/") + endpoint
}

// Do executes a prepared request through the throttle and circuit breaker
// and returns the body of a 2xx response. Any other outcome is an *APIError.
func (c *Client) Do(req *http.Request, endpoint string) ([]byte, error) {
	ctx := req.Context()

	startTime := time.Now()
	defer func() {
		requestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	if c.limiter != nil {
		waitStart := time.Now()
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, c.networkError(endpoint, "throttle wait", err)
		}
		throttleWaitSeconds.Observe(time.Since(waitStart).Seconds())
	}

	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().
		Str("endpoint", endpoint).
		Str("method", req.Method).
		Msg("Executing API request")

	if c.breaker == nil {
		return c.roundTrip(req, endpoint)
	}

	out, err := c.breaker.Execute(func() (interface{}, error) {
		return c.roundTrip(req, endpoint)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		requestsTotal.WithLabelValues(endpoint, "circuit_open").Inc()
		return nil, c.networkError(endpoint, "circuit breaker open", fmt.Errorf("%w: %v", ErrCircuitOpen, err))
	}
	if err != nil {
		return nil, err
	}
	return out.([]byte), nil
}

func (c *Client) roundTrip(req *http.Request, endpoint string) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("endpoint", endpoint).Msg("HTTP request failed")
		requestsTotal.WithLabelValues(endpoint, "network_error").Inc()
		return nil, c.networkError(endpoint, "request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		requestsTotal.WithLabelValues(endpoint, "network_error").Inc()
		return nil, c.networkError(endpoint, "read response body", err)
	}

	requestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := c.statusError(endpoint, resp, body)
		errorsTotal.WithLabelValues(string(apiErr.ErrorClass)).Inc()
		c.logger.Warn().
			Str("endpoint", endpoint).
			Int("status", resp.StatusCode).
			Str("error_class", string(apiErr.ErrorClass)).
			Str("reason", apiErr.Reason).
			Msg("API request error")
		return nil, apiErr
	}

	return body, nil
}

func (c *Client) networkError(endpoint, message string, err error) *APIError {
	errorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
	return &APIError{
		Endpoint:   endpoint,
		ErrorClass: ErrorClassNetwork,
		Message:    message,
		Err:        err,
	}
}

func (c *Client) statusError(endpoint string, resp *http.Response, body []byte) *APIError {
	apiErr := &APIError{
		Endpoint:   endpoint,
		StatusCode: resp.StatusCode,
		ErrorClass: c.classifyError(resp, nil),
		Message:    resp.Status,
		Body:       body,
	}
	if msg, reason, ok := parseErrorBody(body); ok {
		apiErr.Message = msg
		apiErr.Reason = reason
	}
	return apiErr
}

// classifyError categorizes an error for observability and handling.
func (c *Client) classifyError(resp *http.Response, err error) ErrorClass {
	if err != nil || resp == nil {
		return ErrorClassNetwork
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return ErrorClassRateLimit
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return ErrorClassClient
	case resp.StatusCode >= 500:
		return ErrorClassServer
	default:
		return ""
	}
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}
