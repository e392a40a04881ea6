package ai

import (
	"errors"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// offlineTransport fails every request made through http.DefaultTransport and
// remembers its host, so a test can assert that counting stays local.
type offlineTransport struct {
	mu    sync.Mutex
	hosts []string
}

func (o *offlineTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.hosts = append(o.hosts, r.URL.Host)
	return nil, errors.New("network disabled in tests")
}

func (o *offlineTransport) Hosts() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.hosts...)
}

var outbound = &offlineTransport{}

func TestMain(m *testing.M) {
	http.DefaultTransport = outbound
	dir, err := os.MkdirTemp("", "tiktoken-cache-*")
	if err == nil {
		_ = os.Setenv("TIKTOKEN_CACHE_DIR", dir)
	}
	code := m.Run()
	if dir != "" {
		_ = os.RemoveAll(dir)
	}
	os.Exit(code)
}

func TestCountTokens(t *testing.T) {
	t.Run("empty text has no tokens", func(t *testing.T) {
		assert.Equal(t, 0, CountTokens(""))
	})

	t.Run("counts cl100k_base tokens", func(t *testing.T) {
		assert.Equal(t, 2, CountTokens("hello world"))
		assert.Equal(t, 6, CountTokens("tiktoken is great!"))
	})

	t.Run("loads the encoding without network access", func(t *testing.T) {
		// Act
		CountTokens("fix the login bug")

		// Assert
		assert.NoError(t, initTokenEncoder())
		assert.Empty(t, outbound.Hosts())
	})
}

func TestEstimateTokens(t *testing.T) {
	assert.Equal(t, 0, estimateTokens(""))
	assert.Equal(t, 1, estimateTokens("abc"))
	assert.Equal(t, 2, estimateTokens("abcde"))
}

func TestCompletionTokenBudget(t *testing.T) {
	instruction := BuildCommitPrompt("en", 50, "").SystemInstruction

	small := CompletionTokenBudget(instruction, 20)
	large := CompletionTokenBudget(instruction, 200)

	assert.Greater(t, small, CountTokens(instruction)-1)
	assert.Greater(t, large, small)
}
