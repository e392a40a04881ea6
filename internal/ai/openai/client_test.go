package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thomas-vilte/aicommits/internal/ai"
	"github.com/thomas-vilte/aicommits/internal/config"
	domainErrors "github.com/thomas-vilte/aicommits/internal/errors"
	"github.com/thomas-vilte/aicommits/internal/models"
)

func newTestConfig() config.GenerationConfig {
	return config.GenerationConfig{
		Provider:     config.AIOpenAI,
		APIKey:       "sk-test",
		Model:        config.ModelGPTV4oMini,
		Locale:       "en",
		MessageCount: 2,
		MaxLength:    50,
		Timeout:      2 * time.Second,
	}
}

func newTestRequest() models.CompletionRequest {
	prompt := ai.BuildCommitPrompt("en", 50, config.CommitTypeNone)
	prompt.Diff = "diff --git a/a.go b/a.go\n+func A() {}"
	return models.CompletionRequest{Prompt: prompt, Count: 2, MaxLength: 50}
}

func TestClient_Complete(t *testing.T) {
	t.Run("should send the chat request and return every choice", func(t *testing.T) {
		// Arrange
		var got chatRequest
		var auth string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/chat/completions", r.URL.Path)
			assert.Equal(t, http.MethodPost, r.Method)
			auth = r.Header.Get("Authorization")
			body, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(body, &got)
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, `{"choices":[{"message":{"role":"assistant","content":"Add A function."}},{"text":"Add helper"}]}`)
		}))
		defer server.Close()
		client := NewClient(newTestConfig(), WithBaseURL(server.URL+"/v1/"))

		// Act
		out, err := client.Complete(context.Background(), newTestRequest())

		// Assert
		require.NoError(t, err)
		assert.Equal(t, []string{"Add A function.", "Add helper"}, out)
		assert.Equal(t, "Bearer sk-test", auth)
		assert.Equal(t, "gpt-4o-mini", got.Model)
		assert.Equal(t, 2, got.N)
		assert.Equal(t, 0.7, got.Temperature)
		assert.Equal(t, 1.0, got.TopP)
		assert.False(t, got.Stream)
		assert.Greater(t, got.MaxTokens, 0)
		require.Len(t, got.Messages, 2)
		assert.Equal(t, "system", got.Messages[0].Role)
		assert.Equal(t, "user", got.Messages[1].Role)
		assert.Contains(t, got.Messages[1].Content, "func A()")
	})

	t.Run("should return an empty list when there are no choices", func(t *testing.T) {
		// Arrange
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `{"choices":[]}`)
		}))
		defer server.Close()
		client := NewClient(newTestConfig(), WithBaseURL(server.URL))

		// Act
		out, err := client.Complete(context.Background(), newTestRequest())

		// Assert
		require.NoError(t, err)
		assert.Empty(t, out)
	})

	t.Run("should fail with a plain error when choices are missing", func(t *testing.T) {
		// Arrange
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `{"id":"x"}`)
		}))
		defer server.Close()
		client := NewClient(newTestConfig(), WithBaseURL(server.URL))

		// Act
		_, err := client.Complete(context.Background(), newTestRequest())

		// Assert
		require.Error(t, err)
		assert.False(t, domainErrors.IsKnown(err))
	})

	t.Run("should fail with a plain error on invalid JSON", func(t *testing.T) {
		// Arrange
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `<html>gateway</html>`)
		}))
		defer server.Close()
		client := NewClient(newTestConfig(), WithBaseURL(server.URL))

		// Act
		_, err := client.Complete(context.Background(), newTestRequest())

		// Assert
		require.Error(t, err)
		assert.False(t, domainErrors.IsKnown(err))
	})

	t.Run("should fail with a plain error when a choice has no content", func(t *testing.T) {
		bodies := map[string]string{
			"empty choice":       `{"choices":[{}]}`,
			"unknown fields":     `{"choices":[{"foo":1}]}`,
			"message no content": `{"choices":[{"message":{"role":"assistant"}}]}`,
			"second choice":      `{"choices":[{"text":"Add log"},{"index":1}]}`,
		}
		for name, body := range bodies {
			t.Run(name, func(t *testing.T) {
				// Arrange
				server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					_, _ = io.WriteString(w, body)
				}))
				defer server.Close()
				client := NewClient(newTestConfig(), WithBaseURL(server.URL))

				// Act
				out, err := client.Complete(context.Background(), newTestRequest())

				// Assert
				require.Error(t, err)
				assert.Nil(t, out)
				assert.False(t, domainErrors.IsKnown(err))
				assert.Contains(t, err.Error(), "neither message.content nor text")
			})
		}
	})

	t.Run("should keep an empty content that is present", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `{"choices":[{"message":{"content":""}},{"text":"Add log"}]}`)
		}))
		defer server.Close()
		client := NewClient(newTestConfig(), WithBaseURL(server.URL))

		out, err := client.Complete(context.Background(), newTestRequest())

		require.NoError(t, err)
		assert.Equal(t, []string{"", "Add log"}, out)
	})

	t.Run("should map 401 to an invalid credential error", func(t *testing.T) {
		// Arrange
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"error":{"message":"Incorrect API key provided"}}`)
		}))
		defer server.Close()
		client := NewClient(newTestConfig(), WithBaseURL(server.URL))

		// Act
		_, err := client.Complete(context.Background(), newTestRequest())

		// Assert
		assert.Equal(t, domainErrors.TypeInvalidCredential, domainErrors.TypeOf(err))
		assert.Contains(t, err.Error(), "Incorrect API key provided")
	})

	t.Run("should map 500 to an upstream error with the status page", func(t *testing.T) {
		// Arrange
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = io.WriteString(w, "upstream exploded")
		}))
		defer server.Close()
		client := NewClient(newTestConfig(), WithBaseURL(server.URL))

		// Act
		_, err := client.Complete(context.Background(), newTestRequest())

		// Assert
		var appErr *domainErrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, domainErrors.TypeUpstream, appErr.Type)
		assert.Equal(t, 500, appErr.Context["status"])
		assert.Equal(t, "upstream exploded", appErr.Context["body"])
		assert.Contains(t, appErr.Suggestion, "https://status.openai.com")
	})

	t.Run("should abort the request when the timeout elapses", func(t *testing.T) {
		// Arrange
		aborted := make(chan struct{})
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
				close(aborted)
			case <-time.After(5 * time.Second):
			}
		}))
		defer server.Close()
		cfg := newTestConfig()
		cfg.Timeout = 200 * time.Millisecond
		client := NewClient(cfg, WithBaseURL(server.URL))

		// Act
		start := time.Now()
		_, err := client.Complete(context.Background(), newTestRequest())
		elapsed := time.Since(start)

		// Assert
		assert.Equal(t, domainErrors.TypeTimeout, domainErrors.TypeOf(err))
		assert.Contains(t, err.Error(), "200ms")
		assert.Less(t, elapsed, 2*time.Second)
		select {
		case <-aborted:
		case <-time.After(2 * time.Second):
			t.Fatal("the server never saw the request being aborted")
		}
	})

	t.Run("should report connectivity errors naming the host", func(t *testing.T) {
		// Arrange
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		addr := server.URL
		server.Close()
		client := NewClient(newTestConfig(), WithBaseURL(addr))

		// Act
		_, err := client.Complete(context.Background(), newTestRequest())

		// Assert
		assert.Equal(t, domainErrors.TypeConnectivity, domainErrors.TypeOf(err))
		u, _ := url.Parse(addr)
		assert.Contains(t, err.Error(), u.Host)
	})

	t.Run("should route the request through the proxy", func(t *testing.T) {
		// Arrange
		var target string
		proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			target = r.URL.Host
			_, _ = io.WriteString(w, `{"choices":[{"message":{"content":"Fix typo"}}]}`)
		}))
		defer proxy.Close()
		cfg := newTestConfig()
		cfg.Proxy, _ = url.Parse(proxy.URL)
		client := NewClient(cfg, WithBaseURL("http://api.example.test/v1"))

		// Act
		out, err := client.Complete(context.Background(), newTestRequest())

		// Assert
		require.NoError(t, err)
		assert.Equal(t, []string{"Fix typo"}, out)
		assert.Equal(t, "api.example.test", target)
	})
}
