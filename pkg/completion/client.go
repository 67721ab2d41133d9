// Package completion wraps the remote chat-completion service: it sends a
// conversation, returns the generated text and token usage, and records
// every request/response pair in the debug log.
package completion

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/papercomputeco/intake/pkg/llm"
	"github.com/papercomputeco/intake/pkg/merkle"
	"github.com/papercomputeco/intake/pkg/spinner"
)

const (
	// DefaultMaxRetries is the retry budget for transient failures.
	DefaultMaxRetries = 7
	DefaultBackoff    = time.Second
	maxBackoff        = 30 * time.Second

	thinkingText = "Thinking..."
)

// ErrInvalidConversation is returned before any network call when the
// conversation is empty or malformed.
var ErrInvalidConversation = errors.New("invalid conversation")

// RemoteError is a failure of the remote service that survived the retry
// budget. It is fatal to an intake run. Cancellation of the caller's context
// is returned as the context error instead.
type RemoteError struct {
	Attempts int
	Err      error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("error communicating with completion service after %d attempt(s): %v", e.Attempts, e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// Config is the completion client configuration.
type Config struct {
	// APIKey authenticates against the completion service.
	APIKey string

	// BaseURL overrides the service endpoint (e.g., an OpenAI-compatible
	// gateway). Empty uses the OpenAI default.
	BaseURL string

	// MaxRetries is how many times a transient failure is retried.
	MaxRetries int

	// Backoff is the delay before the first retry; it doubles per attempt.
	Backoff time.Duration
}

// Client is a chat-completion client for a single process run.
type Client struct {
	api        *openai.Client
	maxRetries int
	backoff    time.Duration

	logger    *zap.Logger
	debug     *zap.Logger
	indicator spinner.Indicator
	runID     string

	chain       merkle.Chain
	lastRequest []llm.Message
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the operator-facing logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// WithDebugLogger sets the logger that receives full request and response
// payloads.
func WithDebugLogger(l *zap.Logger) Option {
	return func(c *Client) {
		c.debug = l
	}
}

// WithIndicator sets the progress indicator shown during calls.
func WithIndicator(ind spinner.Indicator) Option {
	return func(c *Client) {
		c.indicator = ind
	}
}

// WithRunID tags every debug record with the given run identifier.
func WithRunID(id string) Option {
	return func(c *Client) {
		c.runID = id
	}
}

// New creates a Client.
func New(config Config, opts ...Option) *Client {
	oc := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		oc.BaseURL = config.BaseURL
	}

	c := &Client{
		api:        openai.NewClientWithConfig(oc),
		maxRetries: config.MaxRetries,
		backoff:    config.Backoff,
		logger:     zap.NewNop(),
		debug:      zap.NewNop(),
		indicator:  spinner.Nop{},
		runID:      uuid.NewString(),
	}
	if c.maxRetries < 0 {
		c.maxRetries = 0
	}
	if c.backoff <= 0 {
		c.backoff = DefaultBackoff
	}

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Complete sends the conversation and returns the first choice's text and
// the reported token usage.
func (c *Client) Complete(ctx context.Context, messages []llm.Message, opts llm.Options) (*llm.Completion, error) {
	if err := llm.Validate(messages); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConversation, err)
	}

	req := openai.ChatCompletionRequest{
		Model:       opts.Model,
		Messages:    toChatMessages(messages),
		Temperature: temperature(opts.Temperature),
		MaxTokens:   opts.MaxTokens,
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.indicator.Start(thinkingText)
	resp, attempts, err := c.create(ctx, req)
	c.indicator.Stop()

	// Cancellation is reported as the context error, never as a RemoteError.
	if ctxErr := ctx.Err(); err != nil && ctxErr != nil {
		c.debug.Info("request cancelled",
			zap.String("run_id", c.runID),
			zap.Int("attempts", attempts),
		)
		return nil, ctxErr
	}

	if err != nil {
		c.debug.Error("request failed",
			zap.String("run_id", c.runID),
			zap.Int("attempts", attempts),
			zap.Error(err),
		)
		return nil, &RemoteError{Attempts: attempts, Err: err}
	}

	if len(resp.Choices) == 0 {
		err := errors.New("no response choices returned")
		c.debug.Error("empty response",
			zap.String("run_id", c.runID),
			zap.Any("response", resp),
		)
		return nil, &RemoteError{Attempts: attempts, Err: err}
	}

	completion := &llm.Completion{
		Text:             resp.Choices[0].Message.Content,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}

	node := c.record(messages, opts.Model, *completion)

	fields := []zap.Field{
		zap.String("run_id", c.runID),
		zap.String("turn_hash", node.Hash),
		zap.Any("response", resp),
		zap.String("text", completion.Text),
		zap.Int("total_tokens", completion.TotalTokens),
	}
	if node.ParentHash != nil {
		fields = append(fields, zap.String("parent_hash", *node.ParentHash))
	}
	c.debug.Debug("response", fields...)

	c.logger.Debug("completion received",
		zap.String("model", resp.Model),
		zap.Int("attempts", attempts),
		zap.Int("total_tokens", completion.TotalTokens),
	)

	return completion, nil
}

// create issues the request, retrying transient failures with exponential
// backoff. It returns the number of attempts made.
func (c *Client) create(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, int, error) {
	var lastErr error
	delay := c.backoff

	for attempt := 1; ; attempt++ {
		c.debug.Debug("request",
			zap.String("run_id", c.runID),
			zap.Int("attempt", attempt),
			zap.Any("request", req),
		)

		resp, err := c.api.CreateChatCompletion(ctx, req)
		if err == nil {
			return resp, attempt, nil
		}
		lastErr = err

		if attempt > c.maxRetries || !retryable(err) {
			return openai.ChatCompletionResponse{}, attempt, lastErr
		}

		c.logger.Warn("completion failed, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("backoff", delay),
			zap.Error(err),
		)

		select {
		case <-ctx.Done():
			return openai.ChatCompletionResponse{}, attempt, ctx.Err()
		case <-time.After(delay):
		}

		delay *= 2
		if delay > maxBackoff {
			delay = maxBackoff
		}
	}
}

// record hashes the turn into the chain. A request that extends the previous
// request continues the chain; anything else starts a new root.
func (c *Client) record(messages []llm.Message, model string, completion llm.Completion) *merkle.Node {
	if !extends(messages, c.lastRequest) {
		c.chain.Reset()
	}
	c.lastRequest = slices.Clone(messages)

	return c.chain.Append(llm.Turn{
		Model:    model,
		Request:  messages,
		Response: completion,
	})
}

func extends(messages, prev []llm.Message) bool {
	if len(prev) == 0 || len(messages) <= len(prev) {
		return false
	}
	return slices.Equal(messages[:len(prev)], prev)
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return transientStatus(apiErr.HTTPStatusCode)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == 0 || transientStatus(reqErr.HTTPStatusCode)
	}

	// Transport failures (DNS, refused connections, resets).
	return true
}

func transientStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func toChatMessages(messages []llm.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		out[i] = openai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		}
	}
	return out
}

// temperature maps 0 to the smallest positive float32: go-openai omits a
// zero temperature from the payload, which the service reads as 1.
func temperature(t float32) float32 {
	if t == 0 {
		return math.SmallestNonzeroFloat32
	}
	return t
}
