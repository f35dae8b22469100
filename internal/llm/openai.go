package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-4"
)

// Observer is notified after every upstream call.
type Observer func(kind, model string, elapsed time.Duration, err error)

// Client talks to an OpenAI-compatible API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	observe    Observer
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

func WithBaseURL(u string) Option {
	return func(cl *Client) {
		if u != "" {
			cl.baseURL = strings.TrimRight(u, "/")
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(cl *Client) {
		cl.logger = l
	}
}

func WithObserver(o Observer) Option {
	return func(cl *Client) {
		cl.observe = o
	}
}

func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured returns true if an API key is set.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Generate runs a chat completion and returns the first choice's content.
func (c *Client) Generate(ctx context.Context, p Prompt) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}
	if p.Model == "" {
		p.Model = DefaultModel
	}
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req := chatRequest{Model: p.Model, Temperature: p.Temperature, MaxTokens: p.MaxTokens}
	if p.System != "" {
		req.Messages = append(req.Messages, chatMessage{Role: "system", Content: p.System})
	}
	req.Messages = append(req.Messages, chatMessage{Role: "user", Content: p.User})
	if p.JSON && supportsJSONMode(p.Model) {
		req.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	start := time.Now()
	var out chatResponse
	err := c.post(ctx, "/chat/completions", req, &out)
	if err == nil && len(out.Choices) == 0 {
		err = &UpstreamFormatError{Reason: "no choices returned"}
	}
	c.done("chat", p.Model, start, err)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}

// supportsJSONMode reports whether the model accepts response_format
// json_object. The original gpt-4 rejects it.
func supportsJSONMode(model string) bool {
	for _, p := range []string{"gpt-4o", "gpt-4-turbo", "gpt-4.1", "gpt-3.5-turbo", "gpt-5"} {
		if strings.HasPrefix(model, p) {
			return true
		}
	}
	return false
}

type imageRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	N      int    `json:"n"`
	Size   string `json:"size"`
}

type imageResponse struct {
	Data []struct {
		URL string `json:"url"`
	} `json:"data"`
}

// GenerateImage creates one image and returns its URL.
func (c *Client) GenerateImage(ctx context.Context, r ImageRequest) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}
	if r.Model == "" {
		r.Model = "dall-e-3"
	}
	if r.Size == "" {
		r.Size = "1024x1024"
	}
	ctx, cancel := context.WithTimeout(ctx, DefaultTimeout)
	defer cancel()

	start := time.Now()
	var out imageResponse
	err := c.post(ctx, "/images/generations", imageRequest{Model: r.Model, Prompt: r.Prompt, N: 1, Size: r.Size}, &out)
	if err == nil && (len(out.Data) == 0 || out.Data[0].URL == "") {
		err = &UpstreamFormatError{Reason: "no image returned"}
	}
	c.done("image", r.Model, start, err)
	if err != nil {
		return "", err
	}
	return out.Data[0].URL, nil
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("llm request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("llm API error: status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &UpstreamFormatError{Reason: "decode API response", Err: err}
	}
	return nil
}

func (c *Client) done(kind, model string, start time.Time, err error) {
	elapsed := time.Since(start)
	if err != nil {
		c.logger.Warn("llm call failed", "kind", kind, "model", model, "duration", elapsed, "error", err)
	} else {
		c.logger.Debug("llm call", "kind", kind, "model", model, "duration", elapsed)
	}
	if c.observe != nil {
		c.observe(kind, model, elapsed, err)
	}
}
