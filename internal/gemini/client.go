package gemini

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/guonaihong/gout"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	DefaultBaseURL    = "https://generativelanguage.googleapis.com"
	DefaultModel      = "gemini-2.5-pro"
	DefaultTimeout    = 60 * time.Second
	DefaultMaxRetries = 5
	DefaultRetryDelay = time.Second

	// consecutive failed attempts before the breaker opens
	breakerTripAfter = 10
	maxErrorBody     = 512
)

// Config client settings, zero values fall back to the defaults above
type Config struct {
	BaseURL    string
	Model      string
	ApiKey     string
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
	// BreakerTimeout is how long the breaker stays open before probing again
	BreakerTimeout time.Duration
	HTTPClient     *http.Client
}

// Request a single structured generation
type Request struct {
	SystemPrompt string
	UserPrompt   string
	Schema       *Schema
}

// Client calls the generateContent endpoint and decodes the JSON document
// the model answers with.
type Client struct {
	cfg        Config
	httpClient *http.Client
	cb         *gobreaker.CircuitBreaker[string]
	wait       func(ctx context.Context, d time.Duration) error
}

// NewClient creates a new Gemini client
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	if cfg.BreakerTimeout <= 0 {
		cfg.BreakerTimeout = 30 * time.Second
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	cb := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        "gemini",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerTripAfter
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			zap.L().Warn("circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	return &Client{
		cfg:        cfg,
		httpClient: httpClient,
		cb:         cb,
		wait:       waitContext,
	}
}

// Model returns the configured model name
func (c *Client) Model() string {
	return c.cfg.Model
}

// Configured reports whether an API key is present
func (c *Client) Configured() bool {
	return c.cfg.ApiKey != ""
}

// GenerateJSON sends req and decodes the model's JSON answer into out.
// Transport errors, non-2xx statuses and malformed JSON are retried with
// exponential backoff; a document of the wrong shape is not.
func (c *Client) GenerateJSON(ctx context.Context, req Request, out interface{}) error {
	if !c.Configured() {
		return ErrNotConfigured
	}

	payload := generateRequest{
		Contents: []content{{Parts: []part{{Text: req.UserPrompt}}}},
		GenerationConfig: generationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   req.Schema,
		},
	}
	if req.SystemPrompt != "" {
		payload.SystemInstruction = &content{Parts: []part{{Text: req.SystemPrompt}}}
	}

	text, err := c.retry(ctx, func() (string, error) {
		return c.cb.Execute(func() (string, error) {
			return c.attempt(ctx, &payload)
		})
	})
	if err != nil {
		return err
	}

	if err := json.Unmarshal([]byte(text), out); err != nil {
		return errors.Wrap(err, "decode gemini document")
	}
	return nil
}

// retry runs fn up to MaxRetries times, doubling the delay after every
// failure. An open breaker or a finished context stops it early.
func (c *Client) retry(ctx context.Context, fn func() (string, error)) (string, error) {
	var lastErr error
	delay := c.cfg.RetryDelay

	for attempt := 0; attempt < c.cfg.MaxRetries; attempt++ {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		text, err := fn()
		if err == nil {
			return text, nil
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		lastErr = err

		zap.L().Warn("gemini call attempt failed",
			zap.Int("attempt", attempt+1),
			zap.Int("max_attempts", c.cfg.MaxRetries),
			zap.Error(err))

		if attempt+1 < c.cfg.MaxRetries {
			if werr := c.wait(ctx, delay); werr != nil {
				return "", werr
			}
			delay *= 2
		}
	}

	return "", fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, c.cfg.MaxRetries, lastErr)
}

// attempt performs one HTTP round trip and returns the validated JSON text
func (c *Client) attempt(ctx context.Context, payload *generateRequest) (string, error) {
	var (
		body string
		code int
	)
	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.cfg.BaseURL, c.cfg.Model)

	err := gout.New(c.httpClient).
		POST(url).
		WithContext(ctx).
		SetQuery(gout.H{"key": c.cfg.ApiKey}).
		SetJSON(payload).
		BindBody(&body).
		Code(&code).
		Do()
	if err != nil {
		return "", errors.Wrap(err, "gemini request")
	}

	if code < 200 || code > 299 {
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return "", &StatusError{Code: code, Body: body}
	}

	var resp generateResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		return "", errors.Wrap(err, "decode gemini response")
	}

	text := stripCodeFence(resp.firstText())
	if !json.Valid([]byte(text)) {
		return "", errors.Errorf("gemini answered with invalid JSON: %.80q", text)
	}
	return text, nil
}

// stripCodeFence removes a ```json ... ``` wrapper the model sometimes adds
func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[i+1:]
	} else {
		text = strings.TrimPrefix(text, "```")
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

func waitContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
