package gemini

import (
	"context"
	"errors"
	"fmt"
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
	"google.golang.org/genai"
)

const (
	defaultHost  = "generativelanguage.googleapis.com"
	providerName = "Gemini"
)

// Client generates completions with the Gemini API.
type Client struct {
	apiKey  string
	model   string
	baseURL string
	timeout time.Duration
	proxy   *url.URL
}

var _ ai.Completer = (*Client)(nil)

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

func NewClient(cfg config.GenerationConfig, opts ...Option) *Client {
	c := &Client{
		apiKey:  cfg.APIKey,
		model:   string(cfg.Model),
		timeout: cfg.Timeout,
		proxy:   cfg.Proxy,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Complete(ctx context.Context, req models.CompletionRequest) ([]string, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpClient := httpclient.New(c.proxy)
	defer httpclient.CloseIdle(httpClient)

	clientCfg := &genai.ClientConfig{
		APIKey:     c.apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	if c.baseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: c.baseURL}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, domainErrors.ErrAPIKeyMissing.WithError(err).WithContext("provider", config.AIGemini)
	}

	logger.Debug(ctx, "requesting completions",
		"model", model,
		"count", req.Count)

	resp, err := client.Models.GenerateContent(ctx, model, genai.Text(req.Prompt.Diff), generateConfig(req))
	if err != nil {
		return nil, c.mapError(ctx, err)
	}

	return extractCandidates(resp), nil
}

func generateConfig(req models.CompletionRequest) *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(req.Prompt.SystemInstruction, genai.RoleUser),
		CandidateCount:    int32(req.Count),
		Temperature:       float32Ptr(0.7),
		TopP:              float32Ptr(1),
	}
}

// extractCandidates joins the text parts of each candidate, skipping thought parts.
func extractCandidates(resp *genai.GenerateContentResponse) []string {
	if resp == nil {
		return nil
	}
	out := make([]string, 0, len(resp.Candidates))
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		var text strings.Builder
		for _, part := range cand.Content.Parts {
			if part == nil || part.Thought {
				continue
			}
			text.WriteString(part.Text)
		}
		out = append(out, text.String())
	}
	return out
}

func (c *Client) mapError(ctx context.Context, err error) error {
	if apiErr, ok := apiErrorOf(err); ok {
		body := apiErr.Message
		if apiErr.Status != "" {
			body = fmt.Sprintf("%s: %s", apiErr.Status, apiErr.Message)
		}
		code := apiErr.Code
		// Gemini rejects bad keys with 400 INVALID_ARGUMENT rather than 401.
		if code == http.StatusBadRequest && strings.Contains(strings.ToLower(apiErr.Message), "api key") {
			code = http.StatusUnauthorized
		}
		return domainErrors.NewUpstreamError(providerName, code, http.StatusText(code), body)
	}

	host := defaultHost
	if c.baseURL != "" {
		if u, perr := url.Parse(c.baseURL); perr == nil && u.Host != "" {
			host = u.Host
		}
	}
	return httpclient.ClassifyError(ctx, err, host, c.timeout)
}

// apiErrorOf finds a genai.APIError in the chain, by value or by pointer.
func apiErrorOf(err error) (genai.APIError, bool) {
	for e := err; e != nil; e = errors.Unwrap(e) {
		switch v := any(e).(type) {
		case genai.APIError:
			return v, true
		case *genai.APIError:
			if v != nil {
				return *v, true
			}
		}
	}
	return genai.APIError{}, false
}

func float32Ptr(f float32) *float32 {
	return &f
}
