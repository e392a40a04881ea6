package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	domainErrors "github.com/thomas-vilte/aicommits/internal/errors"
	"golang.org/x/net/http/httpproxy"
)

// CommitType selects the message convention the model is asked to follow.
type CommitType string

const (
	CommitTypeNone         CommitType = ""
	CommitTypeConventional CommitType = "conventional"
	CommitTypeGitmoji      CommitType = "gitmoji"
)

func ParseCommitType(raw string) (CommitType, error) {
	switch CommitType(raw) {
	case CommitTypeNone, CommitTypeConventional, CommitTypeGitmoji:
		return CommitType(raw), nil
	default:
		return "", fmt.Errorf(`must be "", "conventional" or "gitmoji"`)
	}
}

// GenerationConfig is the resolved, validated configuration of one generation run.
// It is built once per invocation and never mutated afterwards.
type GenerationConfig struct {
	Provider      AI
	APIKey        string
	Model         Model
	Locale        string
	MessageCount  int
	MaxLength     int
	CommitType    CommitType
	Timeout       time.Duration
	Proxy         *url.URL
	MaxDiffTokens int
}

// Overrides carries command line values. Zero values leave the stored config in effect.
type Overrides struct {
	Locale   string
	Generate int
	Type     string
}

// GenerationConfig resolves the stored config, the environment and the command line
// into a GenerationConfig. Precedence is flags, then environment, then file, then defaults.
func (c *Config) GenerationConfig(o Overrides) (GenerationConfig, error) {
	provider := c.ProviderOrDefault()
	if !IsSupportedAI(provider) {
		return GenerationConfig{}, domainErrors.ErrProviderNotSupported.WithContext("provider", provider)
	}

	apiKey := c.APIKey
	for _, name := range APIKeyEnvVars(provider) {
		if v := os.Getenv(name); v != "" {
			apiKey = v
			break
		}
	}
	if apiKey == "" {
		return GenerationConfig{}, domainErrors.ErrAPIKeyMissing.WithContext("provider", provider)
	}
	if err := validateAPIKey(provider, apiKey); err != nil {
		return GenerationConfig{}, invalidValue("api_key", err)
	}

	model := c.Model
	if model == "" {
		model = DefaultModelForAI(provider)
	}

	locale := firstNonEmpty(o.Locale, c.Locale, defaultLocale)
	if err := validateLocale(locale); err != nil {
		return GenerationConfig{}, invalidValue("locale", err)
	}

	count := firstNonZero(o.Generate, c.Generate, defaultGenerate)
	if err := validateGenerate(count); err != nil {
		return GenerationConfig{}, invalidValue("generate", err)
	}

	maxLength := firstNonZero(c.MaxLength, defaultMaxLength)
	if err := validateMaxLength(maxLength); err != nil {
		return GenerationConfig{}, invalidValue("max_length", err)
	}

	commitType := c.Type
	if o.Type != "" {
		t, err := ParseCommitType(o.Type)
		if err != nil {
			return GenerationConfig{}, invalidValue("type", err)
		}
		commitType = t
	}

	timeoutMs := firstNonZero(c.TimeoutMs, defaultTimeoutMs)
	if err := validateTimeoutMs(timeoutMs); err != nil {
		return GenerationConfig{}, invalidValue("timeout", err)
	}

	proxy, err := resolveProxy(c.Proxy)
	if err != nil {
		return GenerationConfig{}, invalidValue("proxy", err)
	}

	maxDiffTokens := defaultMaxDiffTokens
	if c.MaxDiffTokens != nil {
		maxDiffTokens = *c.MaxDiffTokens
	}

	return GenerationConfig{
		Provider:      provider,
		APIKey:        apiKey,
		Model:         model,
		Locale:        locale,
		MessageCount:  count,
		MaxLength:     maxLength,
		CommitType:    commitType,
		Timeout:       time.Duration(timeoutMs) * time.Millisecond,
		Proxy:         proxy,
		MaxDiffTokens: maxDiffTokens,
	}, nil
}

// resolveProxy prefers the HTTPS proxy from the environment, then the HTTP one, then the file value.
func resolveProxy(fromFile string) (*url.URL, error) {
	env := httpproxy.FromEnvironment()
	raw := firstNonEmpty(env.HTTPSProxy, env.HTTPProxy, fromFile)
	if raw == "" {
		return nil, nil
	}
	return parseProxy(raw)
}

func invalidValue(key string, err error) error {
	return domainErrors.ErrInvalidConfigValue.
		WithError(fmt.Errorf("%s: %w", key, err)).
		WithContext("key", key)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstNonZero(values ...int) int {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}
