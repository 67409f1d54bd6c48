// Package inference talks to the remote model server that hosts the
// tokenizer and the aspect classification head.
package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"

	"github.com/pscheid92/reviewpulse/internal/adapter/metrics"
	"github.com/pscheid92/reviewpulse/internal/domain"
	"github.com/pscheid92/reviewpulse/internal/platform/correlation"
)

const (
	endpointTokenize = "tokenize"
	endpointPredict  = "predict"

	requestIDHeader = "X-Request-ID"

	// Error bodies are only read for log context.
	maxErrorBody = 4 << 10
)

type Config struct {
	BaseURL   string
	ModelName string
	Timeout   time.Duration
}

// Client implements domain.Tokenizer and domain.Model over HTTP. Calls are
// never retried; a circuit breaker stops hammering a model server that keeps failing.
type Client struct {
	http        *http.Client
	tokenizeURL string
	predictURL  string
	cb          *gobreaker.CircuitBreaker
	metrics     *metrics.InferenceMetrics
}

var (
	_ domain.Tokenizer = (*Client)(nil)
	_ domain.Model     = (*Client)(nil)
)

// NewClient builds a client with a breaker that opens when at least 5 of the
// last requests in a 10s window failed at a 60% rate, and admits one trial request after 30s.
func NewClient(cfg Config, m *metrics.InferenceMetrics) (*Client, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid model server URL: %w", err)
	}

	c := &Client{
		http:        &http.Client{Timeout: cfg.Timeout},
		tokenizeURL: base.JoinPath("v1", "tokenize").String(),
		predictURL:  base.JoinPath("v1", "models", cfg.ModelName+":predict").String(),
		metrics:     m,
	}
	c.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "model-server",
		MaxRequests: 1,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.Requests >= 5 && float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		IsSuccessful: countsAsSuccess,
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("Circuit breaker state changed", "component", name, "from", from.String(), "to", to.String())
			m.BreakerState.Set(float64(to))
		},
	})
	return c, nil
}

// State exposes the breaker state for readiness checks.
func (c *Client) State() gobreaker.State {
	return c.cb.State()
}

// Healthy fails while the breaker is open. Half-open counts as healthy since
// the next request is the trial that may close it.
func (c *Client) Healthy(context.Context) error {
	if c.cb.State() == gobreaker.StateOpen {
		return fmt.Errorf("model server circuit breaker open: %w", domain.ErrInferenceUnavailable)
	}
	return nil
}

type tokenizeRequest struct {
	Text       string `json:"text"`
	MaxLength  int    `json:"max_length"`
	Truncation bool   `json:"truncation"`
	Padding    bool   `json:"padding"`
}

func (c *Client) Tokenize(ctx context.Context, text string, opts domain.TokenizeOptions) (domain.Encoding, error) {
	req := tokenizeRequest{
		Text:       text,
		MaxLength:  opts.MaxLength,
		Truncation: opts.Truncation,
		Padding:    opts.Padding,
	}

	var enc domain.Encoding
	if err := c.post(ctx, endpointTokenize, c.tokenizeURL, req, &enc); err != nil {
		return domain.Encoding{}, err
	}
	if len(enc.InputIDs) == 0 {
		c.metrics.Failures.WithLabelValues(endpointTokenize, "empty").Inc()
		return domain.Encoding{}, errors.New("tokenizer returned no input ids")
	}
	return enc, nil
}

type predictResponse struct {
	Logits [][]float32 `json:"logits"`
}

func (c *Client) Infer(ctx context.Context, enc domain.Encoding) ([][]float32, error) {
	var resp predictResponse
	if err := c.post(ctx, endpointPredict, c.predictURL, enc, &resp); err != nil {
		return nil, err
	}
	return resp.Logits, nil
}

func (c *Client) post(ctx context.Context, endpoint, target string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to encode %s request: %w", endpoint, err)
	}

	start := time.Now()
	_, err = c.cb.Execute(func() (any, error) {
		return nil, c.do(ctx, endpoint, target, body, out)
	})
	c.metrics.RequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		c.metrics.Failures.WithLabelValues(endpoint, "breaker_open").Inc()
		return fmt.Errorf("%s: %w: %w", endpoint, domain.ErrInferenceUnavailable, err)
	}
	return err
}

func (c *Client) do(ctx context.Context, endpoint, target string, body []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", endpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(requestIDHeader, uuid.NewString())
	if id, ok := correlation.ID(ctx); ok {
		req.Header.Set(correlation.Header, id)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.Failures.WithLabelValues(endpoint, "transport").Inc()
		return fmt.Errorf("failed to execute %s request: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.metrics.Failures.WithLabelValues(endpoint, "status").Inc()
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{Endpoint: endpoint, Code: resp.StatusCode, Body: string(snippet)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.metrics.Failures.WithLabelValues(endpoint, "decode").Inc()
		return fmt.Errorf("failed to decode %s response: %w", endpoint, err)
	}
	return nil
}

// StatusError is returned when the model server answers with a non-200 status.
type StatusError struct {
	Endpoint string
	Code     int
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("model server %s returned status %d", e.Endpoint, e.Code)
}

// Cancelled requests and 4xx answers do not count against the breaker.
func countsAsSuccess(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return true
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code < http.StatusInternalServerError
	}
	return false
}
