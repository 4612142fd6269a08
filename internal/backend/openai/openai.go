// Package openai implements backend.Completer for OpenAI's chat completions API.
package openai

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/ksteinfeldt/askbot/internal/backend"
)

// Pricing per million tokens (input, output) in USD.
var Pricing = map[string]struct{ Input, Output float64 }{
	"gpt-4o":        {2.50, 10.00},
	"gpt-4o-mini":   {0.15, 0.60},
	"gpt-4-turbo":   {10.00, 30.00},
	"gpt-4":         {30.00, 60.00},
	"gpt-3.5-turbo": {0.50, 1.50},
	"o1-mini":       {3.00, 12.00},
	"o1-preview":    {15.00, 60.00},
}

// ErrMissingAPIKey indicates the backend was created without credentials.
var ErrMissingAPIKey = errors.New("OpenAI API key not set")

const (
	defaultBaseURL     = "https://api.openai.com"
	defaultModel       = "gpt-4o-mini"
	defaultMaxTokens   = 2000
	defaultTemperature = 0.7
	defaultTimeout     = 2 * time.Minute
	defaultRPM         = 60
)

// Backend implements backend.Completer for OpenAI's API.
type Backend struct {
	apiKey  string
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
}

// Option configures the OpenAI backend.
type Option func(*Backend)

// WithBaseURL sets a custom base URL (for testing or proxies).
func WithBaseURL(url string) Option {
	return func(b *Backend) {
		b.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(b *Backend) {
		b.client = client
	}
}

// WithRateLimit sets the rate limit (requests per minute). Zero disables it.
func WithRateLimit(rpm int) Option {
	return func(b *Backend) {
		b.limiter = newLimiter(rpm)
	}
}

func newLimiter(rpm int) *rate.Limiter {
	if rpm <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Limit(float64(rpm)/60.0), rpm)
}

// New creates a new OpenAI backend.
func New(apiKey string, opts ...Option) (*Backend, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	b := &Backend{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: defaultTimeout},
		limiter: newLimiter(defaultRPM),
	}

	for _, opt := range opts {
		opt(b)
	}

	return b, nil
}

// Name returns the backend identifier.
func (b *Backend) Name() string {
	return "openai"
}

// DefaultModel returns the default model.
func (b *Backend) DefaultModel() string {
	return defaultModel
}

// apiRequest is the request body for the chat completions API.
type apiRequest struct {
	Model       string       `json:"model"`
	Messages    []apiMessage `json:"messages"`
	MaxTokens   int          `json:"max_completion_tokens,omitempty"`
	Temperature *float64     `json:"temperature,omitempty"`
}

// apiMessage is a message in the API request.
type apiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// apiResponse is the response from the chat completions API.
type apiResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index        int        `json:"index"`
		Message      apiMessage `json:"message"`
		FinishReason string     `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// apiError is an error response from the API.
type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

// Invoke sends a prompt and returns the response. Failures are returned as
// is; the caller decides whether to try again.
func (b *Backend) Invoke(ctx context.Context, messages []backend.Message, opts backend.InvokeOptions) (*backend.InvokeResult, error) {
	if err := b.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	model := opts.Model
	if model == "" {
		model = defaultModel
	}

	maxTokens := opts.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}

	temp := defaultTemperature
	if opts.Temperature != nil {
		temp = *opts.Temperature
	}

	apiMessages := make([]apiMessage, 0, len(messages))
	for _, msg := range messages {
		role := msg.Role
		// o1 models reject system messages; fold them into a user turn.
		if isReasoningModel(model) && role == backend.RoleSystem {
			role = backend.RoleUser
		}
		apiMessages = append(apiMessages, apiMessage{Role: role, Content: msg.Content})
	}

	reqBody := apiRequest{
		Model:     model,
		Messages:  apiMessages,
		MaxTokens: maxTokens,
	}

	// o1 models only accept the default temperature
	if !isReasoningModel(model) {
		reqBody.Temperature = &temp
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/v1/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+b.apiKey)

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
			return nil, &backend.ProviderError{StatusCode: resp.StatusCode, Type: apiErr.Error.Type, Message: apiErr.Error.Message}
		}
		return nil, &backend.ProviderError{StatusCode: resp.StatusCode, Message: string(body)}
	}

	var apiResp apiResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}

	if len(apiResp.Choices) == 0 {
		return nil, &backend.ProviderError{StatusCode: resp.StatusCode, Message: "response contained no choices"}
	}

	total := apiResp.Usage.TotalTokens
	if total == 0 {
		total = apiResp.Usage.PromptTokens + apiResp.Usage.CompletionTokens
	}

	return &backend.InvokeResult{
		Content:      apiResp.Choices[0].Message.Content,
		Model:        apiResp.Model,
		InputTokens:  apiResp.Usage.PromptTokens,
		OutputTokens: apiResp.Usage.CompletionTokens,
		TotalTokens:  total,
		FinishReason: apiResp.Choices[0].FinishReason,
	}, nil
}

// EstimateCost estimates the cost for given token counts.
func (b *Backend) EstimateCost(inputTokens, outputTokens int, model string) backend.CostEstimate {
	if model == "" {
		model = defaultModel
	}

	pricing, ok := Pricing[model]
	if !ok {
		// Default to GPT-4o-mini pricing for unknown models
		pricing = Pricing[defaultModel]
	}

	inputCost := float64(inputTokens) / 1_000_000 * pricing.Input
	outputCost := float64(outputTokens) / 1_000_000 * pricing.Output

	return backend.CostEstimate{
		InputCost:  inputCost,
		OutputCost: outputCost,
		TotalCost:  inputCost + outputCost,
		Currency:   "USD",
		Model:      model,
	}
}

// isReasoningModel checks if a model is an o1 reasoning model.
func isReasoningModel(model string) bool {
	return model == "o1" || model == "o1-mini" || model == "o1-preview"
}
