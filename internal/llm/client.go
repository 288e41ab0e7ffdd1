package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"manualrag/internal/contextutil"
)

// Client is a client for an OpenAI-compatible chat completions API.
type Client struct {
	BaseURL     string
	Model       string
	Temperature float32
	MaxTries    uint

	api     *openai.Client
	limiter *rate.Limiter
}

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithRateLimit caps generation requests per second. Zero or negative disables the limit.
func WithRateLimit(perSecond float64) ClientOption {
	return func(c *Client) {
		if perSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

// WithTemperature sets the default sampling temperature.
func WithTemperature(t float32) ClientOption {
	return func(c *Client) { c.Temperature = t }
}

// WithMaxTries sets how many attempts a request gets before failing.
func WithMaxTries(n uint) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.MaxTries = n
		}
	}
}

// NewClient creates a new LLM client. baseURL is the server root, without /v1.
func NewClient(baseURL, apiKey, model string, opts ...ClientOption) *Client {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = strings.TrimRight(baseURL, "/") + "/v1"
	cfg.HTTPClient = newHTTPClient()

	c := &Client{
		BaseURL:     baseURL,
		Model:       model,
		Temperature: 0.7,
		MaxTries:    defaultMaxTries,
		api:         openai.NewClientWithConfig(cfg),
		limiter:     rate.NewLimiter(rate.Inf, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Chat sends a single user message and returns the reply.
func (c *Client) Chat(ctx context.Context, message string) (string, error) {
	return c.ChatWithMessages(ctx, []Message{{Role: openai.ChatMessageRoleUser, Content: message}}, ChatParams{})
}

// ChatWithMessages sends a chat completion request with the given messages.
func (c *Client) ChatWithMessages(ctx context.Context, messages []Message, params ChatParams) (string, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if len(messages) == 0 {
		return "", fmt.Errorf("no messages to send")
	}

	req := openai.ChatCompletionRequest{
		Model:       c.Model,
		Temperature: c.Temperature,
		Messages:    make([]openai.ChatCompletionMessage, len(messages)),
	}
	if params.Model != "" {
		req.Model = params.Model
	}
	if params.Temperature != 0 {
		req.Temperature = params.Temperature
	}
	if params.MaxTokens > 0 {
		req.MaxTokens = params.MaxTokens
	}
	for i, m := range messages {
		req.Messages[i] = openai.ChatCompletionMessage{Role: m.Role, Content: m.Content}
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	reply, err := withRetry(ctx, "chat", c.MaxTries, func() (string, error) {
		resp, err := c.api.CreateChatCompletion(ctx, req)
		if err != nil {
			return "", err
		}
		if len(resp.Choices) == 0 {
			return "", fmt.Errorf("no choices returned: %w", errBadResponse)
		}
		return resp.Choices[0].Message.Content, nil
	})
	if err != nil {
		logger.ErrorContext(ctx, "chat completion failed", "model", req.Model, "error", err)
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	logger.DebugContext(ctx, "chat completion done", "model", req.Model, "reply_length", len(reply))
	return reply, nil
}
