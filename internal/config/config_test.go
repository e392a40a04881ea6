package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainErrors "github.com/thomas-vilte/aicommits/internal/errors"
)

// clearEnv isolates a test from the developer's own keys and proxies.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"OPENAI_KEY", "OPENAI_API_KEY", "GEMINI_API_KEY", "GITHUB_TOKEN",
		"HTTPS_PROXY", "https_proxy", "HTTP_PROXY", "http_proxy", "REQUEST_METHOD",
	} {
		t.Setenv(name, "")
	}
}

func TestLoadConfig(t *testing.T) {
	t.Run("should return an empty config when the file does not exist", func(t *testing.T) {
		// Arrange
		path := filepath.Join(t.TempDir(), "missing.toml")

		// Act
		cfg, err := LoadConfigFrom(path)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, path, cfg.PathFile)
		assert.Empty(t, cfg.APIKey)
	})

	t.Run("should honor AICOMMITS_CONFIG", func(t *testing.T) {
		// Arrange
		path := filepath.Join(t.TempDir(), "custom.toml")
		require.NoError(t, os.WriteFile(path, []byte("locale = \"es\"\ngenerate = 3\n"), 0600))
		t.Setenv(EnvConfigPath, path)

		// Act
		cfg, err := LoadConfig()

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "es", cfg.Locale)
		assert.Equal(t, 3, cfg.Generate)
	})

	t.Run("should fail on malformed TOML", func(t *testing.T) {
		// Arrange
		path := filepath.Join(t.TempDir(), "broken.toml")
		require.NoError(t, os.WriteFile(path, []byte("generate = = 3"), 0600))

		// Act
		_, err := LoadConfigFrom(path)

		// Assert
		assert.Error(t, err)
	})
}

func TestSaveConfig(t *testing.T) {
	t.Run("should round trip the stored keys", func(t *testing.T) {
		// Arrange
		path := filepath.Join(t.TempDir(), "nested", "config.toml")
		zero := 0
		cfg := &Config{
			PathFile:      path,
			APIKey:        "sk-test",
			Type:          CommitTypeConventional,
			TimeoutMs:     2000,
			MaxDiffTokens: &zero,
		}

		// Act
		err := SaveConfig(cfg)
		loaded, loadErr := LoadConfigFrom(path)

		// Assert
		require.NoError(t, err)
		require.NoError(t, loadErr)
		assert.Equal(t, "sk-test", loaded.APIKey)
		assert.Equal(t, CommitTypeConventional, loaded.Type)
		assert.Equal(t, 2000, loaded.TimeoutMs)
		require.NotNil(t, loaded.MaxDiffTokens)
		assert.Equal(t, 0, *loaded.MaxDiffTokens)

		info, statErr := os.Stat(path)
		require.NoError(t, statErr)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	})

	t.Run("should fail without a path", func(t *testing.T) {
		err := SaveConfig(&Config{})

		assert.Error(t, err)
	})
}

func TestConfigSet(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr bool
	}{
		{"generate within range", "generate", "5", false},
		{"generate above range", "generate", "6", true},
		{"generate below range", "generate", "0", false},
		{"generate not a number", "generate", "three", true},
		{"max_length at minimum", "max_length", "20", false},
		{"max_length too short", "max_length", "19", true},
		{"timeout at minimum", "timeout", "500", false},
		{"timeout too short", "timeout", "499", true},
		{"conventional type", "type", "conventional", false},
		{"gitmoji type", "type", "gitmoji", false},
		{"unknown type", "type", "angular", true},
		{"locale with region", "locale", "pt-BR", false},
		{"locale with digits", "locale", "en1", true},
		{"absolute proxy", "proxy", "http://proxy.local:8080", false},
		{"relative proxy", "proxy", "proxy.local", true},
		{"openai key", "api_key", "sk-abc", false},
		{"openai key without prefix", "api_key", "abc", true},
		{"unsupported provider", "provider", "anthropic", true},
		{"negative diff budget", "max_diff_tokens", "-1", true},
		{"disabled diff budget", "max_diff_tokens", "0", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			cfg := &Config{}

			// Act
			err := cfg.Set(tt.key, tt.value)

			// Assert
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, domainErrors.ErrInvalidConfigValue)
				assert.Contains(t, err.Error(), tt.key)
			} else {
				require.NoError(t, err)
				got, getErr := cfg.Get(tt.key)
				require.NoError(t, getErr)
				if tt.value == "0" {
					assert.Contains(t, []string{"", "0"}, got)
				} else {
					assert.Equal(t, tt.value, got)
				}
			}
		})
	}

	t.Run("should reject unknown keys", func(t *testing.T) {
		cfg := &Config{}

		errSet := cfg.Set("OPENAI_MODEL", "x")
		_, errGet := cfg.Get("OPENAI_MODEL")

		assert.ErrorIs(t, errSet, domainErrors.ErrInvalidConfigKey)
		assert.ErrorIs(t, errGet, domainErrors.ErrInvalidConfigKey)
	})

	t.Run("gemini keys are not checked for the openai prefix", func(t *testing.T) {
		cfg := &Config{Provider: AIGemini}

		err := cfg.Set("api_key", "AIza-test")

		assert.NoError(t, err)
	})
}

func TestConfigSetPairs(t *testing.T) {
	t.Run("should apply every assignment", func(t *testing.T) {
		cfg := &Config{}

		err := cfg.SetPairs([]string{"generate=2", "locale=es"})

		require.NoError(t, err)
		assert.Equal(t, 2, cfg.Generate)
		assert.Equal(t, "es", cfg.Locale)
	})

	t.Run("should reject a pair without a value separator", func(t *testing.T) {
		cfg := &Config{}

		err := cfg.SetPairs([]string{"generate"})

		assert.ErrorIs(t, err, domainErrors.ErrInvalidConfigValue)
	})
}

func TestGenerationConfig(t *testing.T) {
	t.Run("should apply defaults", func(t *testing.T) {
		// Arrange
		clearEnv(t)
		cfg := &Config{APIKey: "sk-file"}

		// Act
		gen, err := cfg.GenerationConfig(Overrides{})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, AIOpenAI, gen.Provider)
		assert.Equal(t, ModelGPTV4oMini, gen.Model)
		assert.Equal(t, "en", gen.Locale)
		assert.Equal(t, 1, gen.MessageCount)
		assert.Equal(t, 50, gen.MaxLength)
		assert.Equal(t, CommitTypeNone, gen.CommitType)
		assert.Equal(t, 10*time.Second, gen.Timeout)
		assert.Nil(t, gen.Proxy)
		assert.Equal(t, 32000, gen.MaxDiffTokens)
	})

	t.Run("should prefer flags over environment over file", func(t *testing.T) {
		// Arrange
		clearEnv(t)
		t.Setenv("OPENAI_API_KEY", "sk-env")
		t.Setenv("HTTPS_PROXY", "http://env-proxy:3128")
		cfg := &Config{
			APIKey:   "sk-file",
			Locale:   "fr",
			Generate: 2,
			Type:     CommitTypeGitmoji,
			Proxy:    "http://file-proxy:8080",
		}

		// Act
		gen, err := cfg.GenerationConfig(Overrides{Locale: "es", Generate: 4, Type: "conventional"})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "sk-env", gen.APIKey)
		assert.Equal(t, "es", gen.Locale)
		assert.Equal(t, 4, gen.MessageCount)
		assert.Equal(t, CommitTypeConventional, gen.CommitType)
		require.NotNil(t, gen.Proxy)
		assert.Equal(t, "env-proxy:3128", gen.Proxy.Host)
	})

	t.Run("should use the file proxy when the environment has none", func(t *testing.T) {
		clearEnv(t)
		cfg := &Config{APIKey: "sk-file", Proxy: "http://file-proxy:8080"}

		gen, err := cfg.GenerationConfig(Overrides{})

		require.NoError(t, err)
		require.NotNil(t, gen.Proxy)
		assert.Equal(t, "file-proxy:8080", gen.Proxy.Host)
	})

	t.Run("should report a missing key", func(t *testing.T) {
		clearEnv(t)
		cfg := &Config{}

		_, err := cfg.GenerationConfig(Overrides{})

		assert.ErrorIs(t, err, domainErrors.ErrAPIKeyMissing)
		assert.Equal(t, domainErrors.TypeConfiguration, domainErrors.TypeOf(err))
	})

	t.Run("should read the gemini key and default model", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("GEMINI_API_KEY", "gem-key")
		cfg := &Config{Provider: AIGemini}

		gen, err := cfg.GenerationConfig(Overrides{})

		require.NoError(t, err)
		assert.Equal(t, "gem-key", gen.APIKey)
		assert.Equal(t, ModelGeminiV25Flash, gen.Model)
	})

	t.Run("should reject invalid overrides", func(t *testing.T) {
		clearEnv(t)
		cfg := &Config{APIKey: "sk-file"}

		_, errCount := cfg.GenerationConfig(Overrides{Generate: 9})
		_, errType := cfg.GenerationConfig(Overrides{Type: "angular"})

		assert.ErrorIs(t, errCount, domainErrors.ErrInvalidConfigValue)
		assert.ErrorIs(t, errType, domainErrors.ErrInvalidConfigValue)
	})

	t.Run("should keep a disabled diff budget", func(t *testing.T) {
		clearEnv(t)
		zero := 0
		cfg := &Config{APIKey: "sk-file", MaxDiffTokens: &zero}

		gen, err := cfg.GenerationConfig(Overrides{})

		require.NoError(t, err)
		assert.Equal(t, 0, gen.MaxDiffTokens)
	})
}

func TestGitHubTokenResolved(t *testing.T) {
	clearEnv(t)
	cfg := &Config{GitHubToken: "file-token"}
	assert.Equal(t, "file-token", cfg.GitHubTokenResolved())

	t.Setenv("GITHUB_TOKEN", "env-token")
	assert.Equal(t, "env-token", cfg.GitHubTokenResolved())
}

func TestUILanguage(t *testing.T) {
	assert.Equal(t, LangES, UILanguage("es"))
	assert.Equal(t, LangES, UILanguage("es-AR"))
	assert.Equal(t, LangEN, UILanguage("pt-BR"))
	assert.Equal(t, LangEN, UILanguage(""))
}
