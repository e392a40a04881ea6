package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/thomas-vilte/aicommits/internal/ai"
	"github.com/thomas-vilte/aicommits/internal/config"
	domainErrors "github.com/thomas-vilte/aicommits/internal/errors"
	"github.com/thomas-vilte/aicommits/internal/httpclient"
	"github.com/thomas-vilte/aicommits/internal/logger"
	"github.com/thomas-vilte/aicommits/internal/models"
)

const (
	DefaultBaseURL = "https://api.openai.com/v1"
	providerName   = "OpenAI"

	// maxErrorBody bounds how much of a failed response is kept for the error message.
	maxErrorBody = 64 << 10
)

type (
	chatMessage struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}

	chatRequest struct {
		Model            string        `json:"model"`
		Messages         []chatMessage `json:"messages"`
		Temperature      float64       `json:"temperature"`
		TopP             float64       `json:"top_p"`
		FrequencyPenalty float64       `json:"frequency_penalty"`
		PresencePenalty  float64       `json:"presence_penalty"`
		MaxTokens        int           `json:"max_tokens"`
		Stream           bool          `json:"stream"`
		N                int           `json:"n"`
	}

	choiceMessage struct {
		Content *string `json:"content"`
	}

	chatChoice struct {
		Message *choiceMessage `json:"message"`
		Text    *string        `json:"text"`
	}

	chatResponse struct {
		Choices []chatChoice `json:"choices"`
	}
)

// Client talks to an OpenAI compatible chat completions endpoint.
type Client struct {
	apiKey  string
	model   string
	baseURL string
	timeout time.Duration
	proxy   *url.URL
}

var _ ai.Completer = (*Client)(nil)

type Option func(*Client)

// WithBaseURL points the client at a compatible gateway or a test server.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

func NewClient(cfg config.GenerationConfig, opts ...Option) *Client {
	c := &Client{
		apiKey:  cfg.APIKey,
		model:   string(cfg.Model),
		baseURL: DefaultBaseURL,
		timeout: cfg.Timeout,
		proxy:   cfg.Proxy,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Complete performs one chat completion request for req.Count choices and returns
// the raw text of each choice. The request is aborted once the configured timeout elapses.
func (c *Client) Complete(ctx context.Context, req models.CompletionRequest) ([]string, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}

	payload := chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: req.Prompt.SystemInstruction},
			{Role: "user", Content: req.Prompt.Diff},
		},
		Temperature:      0.7,
		TopP:             1,
		FrequencyPenalty: 0,
		PresencePenalty:  0,
		MaxTokens:        ai.CompletionTokenBudget(req.Prompt.SystemInstruction, req.MaxLength),
		Stream:           false,
		N:                req.Count,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("error encoding completion request: %w", err)
	}

	endpoint := c.baseURL + "/chat/completions"
	host := hostOf(endpoint)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("error building completion request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	logger.Debug(ctx, "requesting completions",
		"model", model,
		"count", req.Count,
		"tokens", payload.MaxTokens)

	client := httpclient.New(c.proxy)
	defer httpclient.CloseIdle(client)

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, httpclient.ClassifyError(ctx, err, host, c.timeout)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, domainErrors.NewUpstreamError(providerName, resp.StatusCode, http.StatusText(resp.StatusCode), strings.TrimSpace(string(errBody)))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, httpclient.ClassifyError(ctx, err, host, c.timeout)
	}

	return parseChoices(raw)
}

// parseChoices decodes a completion body. A body that is not JSON, has no choices
// field, or has a choice with neither message.content nor text is a contract
// violation, reported as a plain error.
func parseChoices(raw []byte) ([]string, error) {
	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("error decoding completion response: %w", err)
	}
	if parsed.Choices == nil {
		return nil, fmt.Errorf("completion response has no choices field: %s", truncate(string(raw), 200))
	}

	out := make([]string, 0, len(parsed.Choices))
	for i, choice := range parsed.Choices {
		switch {
		case choice.Message != nil && choice.Message.Content != nil:
			out = append(out, *choice.Message.Content)
		case choice.Text != nil:
			out = append(out, *choice.Text)
		default:
			return nil, fmt.Errorf("completion choice %d has neither message.content nor text: %s", i, truncate(string(raw), 200))
		}
	}
	return out, nil
}

func hostOf(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil {
		return endpoint
	}
	return u.Host
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
