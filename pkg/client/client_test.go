package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/Sternrassler/ytdata-client/internal/testutil"
	"github.com/Sternrassler/ytdata-client/pkg/pagination"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

func newTestClient(t *testing.T, mock *testutil.MockAPI, mutate ...func(*Config)) *Client {
	t.Helper()

	cfg := DefaultConfig("test-key", "TestApp/1.0.0 (test@example.com)")
	cfg.BaseURL = mock.URL()
	for _, m := range mutate {
		m(&cfg)
	}

	client, err := New(cfg)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestNew_Validation(t *testing.T) {
	tokenSource := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "abc"})

	tests := []struct {
		name        string
		config      Config
		expectError bool
		errorMsg    string
	}{
		{
			name:   "valid api key config",
			config: DefaultConfig("key", "TestApp/1.0.0"),
		},
		{
			name: "valid oauth config",
			config: Config{
				BaseURL:     DefaultBaseURL,
				TokenSource: tokenSource,
				UserAgent:   "TestApp/1.0.0",
			},
		},
		{
			name: "missing base url",
			config: Config{
				APIKey:    "key",
				UserAgent: "TestApp/1.0.0",
			},
			expectError: true,
			errorMsg:    "base url is required",
		},
		{
			name: "no credentials",
			config: Config{
				BaseURL:   DefaultBaseURL,
				UserAgent: "TestApp/1.0.0",
			},
			expectError: true,
			errorMsg:    "api key or token source is required",
		},
		{
			name: "both credentials",
			config: Config{
				BaseURL:     DefaultBaseURL,
				APIKey:      "key",
				TokenSource: tokenSource,
				UserAgent:   "TestApp/1.0.0",
			},
			expectError: true,
			errorMsg:    "api key and token source are mutually exclusive",
		},
		{
			name:        "empty user agent",
			config:      DefaultConfig("key", ""),
			expectError: true,
			errorMsg:    "user-agent is required",
		},
		{
			name: "negative rate limit",
			config: func() Config {
				cfg := DefaultConfig("key", "TestApp/1.0.0")
				cfg.RateLimit = -1
				return cfg
			}(),
			expectError: true,
			errorMsg:    "rate_limit must be >= 0 (got -1)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := New(tt.config)

			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error but got nil")
					return
				}
				if tt.errorMsg != "" && err.Error() != tt.errorMsg {
					t.Errorf("Error message = %q, want %q", err.Error(), tt.errorMsg)
				}
			} else {
				if err != nil {
					t.Errorf("Unexpected error: %v", err)
					return
				}
				if client == nil {
					t.Error("Client is nil")
				}
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("key", "TestApp/1.0.0")

	if cfg.BaseURL != DefaultBaseURL {
		t.Errorf("BaseURL = %q, want %q", cfg.BaseURL, DefaultBaseURL)
	}
	if cfg.APIKey != "key" {
		t.Errorf("APIKey = %q, want %q", cfg.APIKey, "key")
	}
	if cfg.Timeout <= 0 {
		t.Errorf("Timeout = %v, should be > 0", cfg.Timeout)
	}
	if cfg.RateLimit != 0 {
		t.Errorf("RateLimit = %v, throttle should be off by default", cfg.RateLimit)
	}
	if cfg.CircuitBreaker {
		t.Error("CircuitBreaker should be off by default")
	}
}

func TestClassifyError(t *testing.T) {
	client := &Client{logger: zerolog.Nop()}

	tests := []struct {
		name       string
		statusCode int
		err        error
		expected   ErrorClass
	}{
		{"network error", 0, io.EOF, ErrorClassNetwork},
		{"client error 404", 404, nil, ErrorClassClient},
		{"client error 403", 403, nil, ErrorClassClient},
		{"rate limit 429", 429, nil, ErrorClassRateLimit},
		{"server error 500", 500, nil, ErrorClassServer},
		{"server error 503", 503, nil, ErrorClassServer},
		{"success 200", 200, nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var resp *http.Response
			if tt.statusCode > 0 {
				resp = &http.Response{StatusCode: tt.statusCode}
			}

			result := client.classifyError(resp, tt.err)
			if result != tt.expected {
				t.Errorf("classifyError() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestFetchPage_RequestShape(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetPages("/playlistItems", []string{`{"id":"a"}`}, []string{`{"id":"b"}`})

	client := newTestClient(t, mock)

	params := pagination.Params{
		"part":       []string{"snippet", "contentDetails"},
		"playlistId": "PL123",
		"q":          nil,
	}

	page, err := client.FetchPage(context.Background(), "/playlistItems", params, "page-1")
	if err != nil {
		t.Fatalf("FetchPage() failed: %v", err)
	}

	if len(page.Items) != 1 || string(page.Items[0]) != `{"id":"b"}` {
		t.Errorf("Items = %s, want the second page", page.Items)
	}
	if page.HasNext() {
		t.Error("Second page should be terminal")
	}

	reqs := mock.Requests()
	if len(reqs) != 1 {
		t.Fatalf("Request count = %d, want 1", len(reqs))
	}
	q := reqs[0].Query
	if got := q.Get("part"); got != "snippet,contentDetails" {
		t.Errorf("part = %q, want %q", got, "snippet,contentDetails")
	}
	if got := q.Get("pageToken"); got != "page-1" {
		t.Errorf("pageToken = %q, want %q", got, "page-1")
	}
	if got := q.Get("key"); got != "test-key" {
		t.Errorf("key = %q, want %q", got, "test-key")
	}
	if _, ok := q["q"]; ok {
		t.Error("nil-valued parameter must be omitted")
	}
	if got := reqs[0].Header.Get("User-Agent"); got != "TestApp/1.0.0 (test@example.com)" {
		t.Errorf("User-Agent = %q", got)
	}
}

func TestFetchPage_FirstPageHasNoToken(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetPages("/search", []string{`{"id":"a"}`, `{"id":"b"}`}, []string{`{"id":"c"}`})

	client := newTestClient(t, mock)

	page, err := client.FetchPage(context.Background(), "/search", nil, "")
	if err != nil {
		t.Fatalf("FetchPage() failed: %v", err)
	}

	if page.NextPageToken != "page-1" {
		t.Errorf("NextPageToken = %q, want %q", page.NextPageToken, "page-1")
	}
	if total, ok := page.TotalResults(); !ok || total != 3 {
		t.Errorf("TotalResults() = %d, %v; want 3, true", total, ok)
	}
	if _, ok := mock.Requests()[0].Query["pageToken"]; ok {
		t.Error("first page request must not carry a pageToken")
	}
}

func TestFetchPage_MissingItems(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetResponse("/members", testutil.MockResponse{
		StatusCode: http.StatusOK,
		Body:       `{"kind":"youtube#memberListResponse","nextPageToken":"tok"}`,
	})

	client := newTestClient(t, mock)

	page, err := client.FetchPage(context.Background(), "/members", nil, "")
	if err != nil {
		t.Fatalf("FetchPage() failed: %v", err)
	}
	if page.Items == nil || len(page.Items) != 0 {
		t.Errorf("Items = %v, want empty non-nil slice", page.Items)
	}
	if page.NextPageToken != "tok" {
		t.Errorf("NextPageToken = %q, want %q", page.NextPageToken, "tok")
	}
}

func TestFetchPage_Errors(t *testing.T) {
	tests := []struct {
		name       string
		resp       testutil.MockResponse
		wantStatus int
		wantClass  ErrorClass
		wantReason string
		wantDecode bool
	}{
		{
			name:       "quota exceeded",
			resp:       testutil.NewQuotaExceededResponse(),
			wantStatus: 403,
			wantClass:  ErrorClassClient,
			wantReason: "quotaExceeded",
		},
		{
			name:       "server error",
			resp:       testutil.NewServerErrorResponse(),
			wantStatus: 500,
			wantClass:  ErrorClassServer,
			wantReason: "backendError",
		},
		{
			name:       "too many requests",
			resp:       testutil.MockResponse{StatusCode: 429, Body: "slow down"},
			wantStatus: 429,
			wantClass:  ErrorClassRateLimit,
		},
		{
			name:       "malformed envelope",
			resp:       testutil.NewMalformedResponse(),
			wantDecode: true,
		},
		{
			name:       "array body",
			resp:       testutil.MockResponse{StatusCode: 200, Body: `[1,2,3]`},
			wantDecode: true,
		},
		{
			name:       "non-object item",
			resp:       testutil.MockResponse{StatusCode: 200, Body: `{"items":[{"id":"a"},42]}`},
			wantDecode: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := testutil.NewMockAPI()
			defer mock.Close()
			mock.SetResponse("/videos", tt.resp)

			client := newTestClient(t, mock)

			_, err := client.FetchPage(context.Background(), "/videos", nil, "")
			if err == nil {
				t.Fatal("Expected error but got nil")
			}

			if tt.wantDecode {
				var decodeErr *DecodeError
				if !errors.As(err, &decodeErr) {
					t.Errorf("err = %v, want *DecodeError", err)
				}
				return
			}

			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("err = %v, want *APIError", err)
			}
			if apiErr.StatusCode != tt.wantStatus {
				t.Errorf("StatusCode = %d, want %d", apiErr.StatusCode, tt.wantStatus)
			}
			if apiErr.ErrorClass != tt.wantClass {
				t.Errorf("ErrorClass = %q, want %q", apiErr.ErrorClass, tt.wantClass)
			}
			if apiErr.Reason != tt.wantReason {
				t.Errorf("Reason = %q, want %q", apiErr.Reason, tt.wantReason)
			}
			if len(apiErr.Body) == 0 {
				t.Error("Body should be preserved")
			}
			if mock.GetRequestCount() != 1 {
				t.Errorf("Request count = %d, want 1 (no retry)", mock.GetRequestCount())
			}
		})
	}
}

func TestFetchPage_NetworkError(t *testing.T) {
	mock := testutil.NewMockAPI()
	client := newTestClient(t, mock)
	mock.Close()

	_, err := client.FetchPage(context.Background(), "/videos", nil, "")

	if !IsClass(err, ErrorClassNetwork) {
		t.Errorf("err = %v, want network-class APIError", err)
	}
}

func TestFetchPage_OAuthBearer(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetPages("/channels", []string{`{"id":"UC1"}`})

	client := newTestClient(t, mock, func(cfg *Config) {
		cfg.APIKey = ""
		cfg.TokenSource = oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "secret", TokenType: "Bearer"})
	})

	if _, err := client.FetchPage(context.Background(), "/channels", pagination.Params{"mine": true}, ""); err != nil {
		t.Fatalf("FetchPage() failed: %v", err)
	}

	req := mock.Requests()[0]
	if got := req.Header.Get("Authorization"); got != "Bearer secret" {
		t.Errorf("Authorization = %q, want %q", got, "Bearer secret")
	}
	if _, ok := req.Query["key"]; ok {
		t.Error("key parameter must not be sent with OAuth")
	}
	if got := req.Query.Get("mine"); got != "true" {
		t.Errorf("mine = %q, want %q", got, "true")
	}
}

func TestDo_CircuitBreakerOpens(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetResponse("/videos", testutil.NewServerErrorResponse())

	client := newTestClient(t, mock, func(cfg *Config) {
		cfg.CircuitBreaker = true
		cfg.BreakerFailures = 2
		cfg.BreakerCooldown = time.Minute
	})

	for i := 0; i < 2; i++ {
		_, err := client.FetchPage(context.Background(), "/videos", nil, "")
		if !IsClass(err, ErrorClassServer) {
			t.Fatalf("attempt %d: err = %v, want server error", i, err)
		}
	}

	_, err := client.FetchPage(context.Background(), "/videos", nil, "")
	if !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("err = %v, want ErrCircuitOpen", err)
	}
	if mock.GetRequestCount() != 2 {
		t.Errorf("Request count = %d, want 2 (open breaker must not call out)", mock.GetRequestCount())
	}
}

func TestDo_CircuitBreakerIgnoresClientErrors(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetResponse("/videos", testutil.NewQuotaExceededResponse())

	client := newTestClient(t, mock, func(cfg *Config) {
		cfg.CircuitBreaker = true
		cfg.BreakerFailures = 1
	})

	for i := 0; i < 3; i++ {
		_, err := client.FetchPage(context.Background(), "/videos", nil, "")
		if !IsClass(err, ErrorClassClient) {
			t.Fatalf("attempt %d: err = %v, want client error", i, err)
		}
	}
}

func TestDo_Throttle(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetPages("/videos", []string{`{"id":"a"}`})

	client := newTestClient(t, mock, func(cfg *Config) {
		cfg.RateLimit = 20
		cfg.Burst = 1
	})

	start := time.Now()
	for i := 0; i < 3; i++ {
		if _, err := client.FetchPage(context.Background(), "/videos", nil, ""); err != nil {
			t.Fatalf("FetchPage() failed: %v", err)
		}
	}

	// 3 requests at 20/s with burst 1 need at least ~100ms.
	if elapsed := time.Since(start); elapsed < 80*time.Millisecond {
		t.Errorf("elapsed = %v, throttle not applied", elapsed)
	}
}

func TestDo_ThrottleRespectsContext(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetPages("/videos", []string{`{"id":"a"}`})

	client := newTestClient(t, mock, func(cfg *Config) {
		cfg.RateLimit = 0.001
		cfg.Burst = 1
	})

	if _, err := client.FetchPage(context.Background(), "/videos", nil, ""); err != nil {
		t.Fatalf("first FetchPage() failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.FetchPage(ctx, "/videos", nil, "")
	if !IsClass(err, ErrorClassNetwork) {
		t.Errorf("err = %v, want network-class error from throttle", err)
	}
}

func TestGetJSON_EndpointJoin(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetPages("/membershipsLevels", []string{`{"id":"lvl"}`})

	client := newTestClient(t, mock, func(cfg *Config) {
		cfg.BaseURL = mock.URL() + "/"
	})

	body, err := client.GetJSON(context.Background(), "membershipsLevels", nil)
	if err != nil {
		t.Fatalf("GetJSON() failed: %v", err)
	}
	if !strings.Contains(string(body), `"lvl"`) {
		t.Errorf("body = %s", body)
	}
}
