// Package llm talks to an OpenAI-compatible chat-completions endpoint and
// returns the model's JSON reply as raw bytes. Calls are never retried.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/hpungsan/lingo/internal/config"
	"github.com/hpungsan/lingo/internal/logger"
)

// APIKeyEnv names the environment variable holding the API key.
const APIKeyEnv = "OPENAI_API_KEY"

var (
	// ErrMissingAPIKey is returned by FromConfig when no key is configured.
	ErrMissingAPIKey = errors.New("missing " + APIKeyEnv)

	// ErrRequestLimit is returned once the per-process request cap is used up.
	ErrRequestLimit = errors.New("llm request limit reached")

	// ErrBadResponse wraps replies that carry no usable JSON content.
	ErrBadResponse = errors.New("unusable model response")
)

// Client generates a JSON object from a system and a user message.
type Client interface {
	GenerateJSON(ctx context.Context, system, user string) ([]byte, error)
}

// ClientFunc adapts a function to Client.
type ClientFunc func(ctx context.Context, system, user string) ([]byte, error)

func (f ClientFunc) GenerateJSON(ctx context.Context, system, user string) ([]byte, error) {
	return f(ctx, system, user)
}

// Options configures an HTTPClient.
type Options struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	Timeout     time.Duration

	// MaxRequests caps calls for the lifetime of the client. 0 means unlimited.
	MaxRequests int

	// HTTPClient overrides the transport; Timeout is ignored when set.
	HTTPClient *http.Client
}

// HTTPClient is the chat-completions implementation of Client.
type HTTPClient struct {
	log         *logger.Logger
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	maxRequests int
	httpClient  *http.Client

	requests atomic.Int64
}

// NewClient builds an HTTPClient. A logger is required.
func NewClient(log *logger.Logger, opts Options) (*HTTPClient, error) {
	if log == nil {
		return nil, errors.New("logger required")
	}
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}
	if strings.TrimSpace(opts.Model) == "" {
		return nil, errors.New("model required")
	}

	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &HTTPClient{
		log:         log.With("component", "llm"),
		baseURL:     baseURL,
		apiKey:      strings.TrimSpace(opts.APIKey),
		model:       strings.TrimSpace(opts.Model),
		temperature: opts.Temperature,
		maxRequests: opts.MaxRequests,
		httpClient:  httpClient,
	}, nil
}

// FromConfig builds a client from config, reading the key from OPENAI_API_KEY.
func FromConfig(log *logger.Logger, cfg config.LLMConfig) (*HTTPClient, error) {
	return NewClient(log, Options{
		BaseURL:     cfg.BaseURL,
		APIKey:      os.Getenv(APIKeyEnv),
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		Timeout:     time.Duration(cfg.TimeoutSeconds) * time.Second,
		MaxRequests: cfg.MaxRequests,
	})
}

// Requests returns how many calls this client has attempted.
func (c *HTTPClient) Requests() int {
	return int(c.requests.Load())
}

// MaxRequests returns the configured cap (0 = unlimited).
func (c *HTTPClient) MaxRequests() int {
	return c.maxRequests
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []message      `json:"messages"`
	Temperature    float64        `json:"temperature"`
	ResponseFormat responseFormat `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
			Refusal string `json:"refusal"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// HTTPError is a non-2xx reply from the endpoint.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("llm http %d: %s", e.StatusCode, e.Body)
}

// GenerateJSON sends one chat-completions request in JSON mode and returns the
// reply content. Refusals, truncated replies, and empty content are ErrBadResponse.
func (c *HTTPClient) GenerateJSON(ctx context.Context, system, user string) ([]byte, error) {
	n := c.requests.Add(1)
	if c.maxRequests > 0 && n > int64(c.maxRequests) {
		c.requests.Add(-1)
		return nil, ErrRequestLimit
	}

	req := chatRequest{
		Model: c.model,
		Messages: []message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature:    c.temperature,
		ResponseFormat: responseFormat{Type: "json_object"},
	}

	start := time.Now()
	raw, err := c.doOnce(ctx, http.MethodPost, "/v1/chat/completions", req)
	if err != nil {
		c.log.Warn("llm request failed", "model", c.model, "duration", time.Since(start).String(), "error", err.Error())
		return nil, err
	}
	c.log.Debug("llm request done", "model", c.model, "duration", time.Since(start).String(), "bytes", len(raw))

	var resp chatResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrBadResponse, err)
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("%w: %s", ErrBadResponse, resp.Error.Message)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices", ErrBadResponse)
	}

	choice := resp.Choices[0]
	if choice.Message.Refusal != "" {
		return nil, fmt.Errorf("%w: model refused: %s", ErrBadResponse, choice.Message.Refusal)
	}
	if choice.FinishReason == "length" {
		return nil, fmt.Errorf("%w: reply truncated", ErrBadResponse)
	}
	content := strings.TrimSpace(choice.Message.Content)
	if content == "" {
		return nil, fmt.Errorf("%w: empty content", ErrBadResponse)
	}
	return []byte(content), nil
}

func (c *HTTPClient) doOnce(ctx context.Context, method, path string, body any) ([]byte, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: truncate(string(raw), 512)}
	}
	return raw, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
