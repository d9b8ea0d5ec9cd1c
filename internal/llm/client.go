package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/papersum/papersum/internal/metrics"
)

// Message is one turn of a chat exchange with the text-generation service.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Chat roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Generator is the text-generation capability the pipeline depends on.
// Implementations must support independent concurrent invocation.
type Generator interface {
	// Generate runs a single system+user exchange and returns the text.
	Generate(ctx context.Context, system, user string) (string, error)
	// Chat runs a full message history and returns the next assistant turn.
	Chat(ctx context.Context, messages []Message) (string, error)
}

// Config holds the generation provider settings.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	Timeout     time.Duration
	Logger      *slog.Logger
}

// Client calls an OpenAI-compatible chat completion API.
type Client struct {
	client      *openai.Client
	model       string
	temperature float32
	timeout     time.Duration
	log         *slog.Logger

	// Stats tracks rolling-window call latencies for /api/stats/llm.
	Stats *Stats
}

func NewClient(cfg Config) *Client {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		timeout:     timeout,
		log:         cfg.Logger,
		Stats:       NewStats(time.Hour),
	}
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

// Generate implements Generator.
func (c *Client) Generate(ctx context.Context, system, user string) (string, error) {
	msgs := make([]Message, 0, 2)
	if system != "" {
		msgs = append(msgs, Message{Role: RoleSystem, Content: system})
	}
	msgs = append(msgs, Message{Role: RoleUser, Content: user})
	return c.Chat(ctx, msgs)
}

// Chat implements Generator with retry on transient upstream failures.
func (c *Client) Chat(ctx context.Context, messages []Message) (string, error) {
	var text string
	var lastErr error
	for attempt := 0; attempt < MaxRetries; attempt++ {
		text, lastErr = c.chatOnce(ctx, messages)
		if lastErr == nil || !IsRetryable(lastErr) {
			break
		}
		c.log.Warn("retryable generation error", "attempt", attempt, "error", lastErr)
		select {
		case <-time.After(Backoff(attempt)):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return text, lastErr
}

func (c *Client) chatOnce(ctx context.Context, messages []Message) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.temperature,
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(callCtx, req)
	duration := time.Since(start)

	if err != nil {
		metrics.GenerationRequestsTotal.WithLabelValues(c.model, "error").Inc()
		return "", classifyAPIError(err)
	}
	if len(resp.Choices) == 0 {
		metrics.GenerationRequestsTotal.WithLabelValues(c.model, "error").Inc()
		return "", fmt.Errorf("empty completion response from model %s", c.model)
	}

	metrics.GenerationRequestsTotal.WithLabelValues(c.model, "success").Inc()
	metrics.GenerationRequestDuration.WithLabelValues(c.model).Observe(duration.Seconds())
	if resp.Usage.TotalTokens > 0 {
		metrics.GenerationTokensTotal.WithLabelValues(c.model, "prompt").Add(float64(resp.Usage.PromptTokens))
		metrics.GenerationTokensTotal.WithLabelValues(c.model, "completion").Add(float64(resp.Usage.CompletionTokens))
	}
	c.Stats.Record(duration.Milliseconds())

	return resp.Choices[0].Message.Content, nil
}

// classifyAPIError maps rate limits and upstream 5xx to RetryableError so
// the retry loop can distinguish them from permanent failures.
func classifyAPIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == 429 || apiErr.HTTPStatusCode >= 500 {
			return &RetryableError{StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message}
		}
		return fmt.Errorf("generation API error %d: %s", apiErr.HTTPStatusCode, apiErr.Message)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if reqErr.HTTPStatusCode == 429 || reqErr.HTTPStatusCode >= 500 {
			return &RetryableError{StatusCode: reqErr.HTTPStatusCode, Message: string(reqErr.Body)}
		}
		return fmt.Errorf("generation API error %d: %s", reqErr.HTTPStatusCode, string(reqErr.Body))
	}
	return fmt.Errorf("generation request: %w", err)
}
