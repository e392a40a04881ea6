package config

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	domainErrors "github.com/thomas-vilte/aicommits/internal/errors"
)

type property struct {
	get func(c *Config) string
	set func(c *Config, raw string) error
}

var localePattern = regexp.MustCompile(`^[A-Za-z-]+$`)

// keys lists the settable properties in display order.
var keys = []string{
	"provider",
	"api_key",
	"model",
	"locale",
	"generate",
	"max_length",
	"type",
	"timeout",
	"proxy",
	"max_diff_tokens",
	"github_token",
}

var properties = map[string]property{
	"provider": {
		get: func(c *Config) string { return string(c.Provider) },
		set: func(c *Config, raw string) error {
			if raw != "" && !IsSupportedAI(AI(raw)) {
				return fmt.Errorf("must be one of %v", SupportedAIs())
			}
			c.Provider = AI(raw)
			return nil
		},
	},
	"api_key": {
		get: func(c *Config) string { return c.APIKey },
		set: func(c *Config, raw string) error {
			if err := validateAPIKey(c.ProviderOrDefault(), raw); err != nil {
				return err
			}
			c.APIKey = raw
			return nil
		},
	},
	"model": {
		get: func(c *Config) string { return string(c.Model) },
		set: func(c *Config, raw string) error {
			c.Model = Model(raw)
			return nil
		},
	},
	"locale": {
		get: func(c *Config) string { return c.Locale },
		set: func(c *Config, raw string) error {
			if raw != "" {
				if err := validateLocale(raw); err != nil {
					return err
				}
			}
			c.Locale = raw
			return nil
		},
	},
	"generate": {
		get: func(c *Config) string { return intOrEmpty(c.Generate) },
		set: func(c *Config, raw string) error {
			n, err := parseOptionalInt(raw)
			if err != nil {
				return err
			}
			if n != 0 {
				if err := validateGenerate(n); err != nil {
					return err
				}
			}
			c.Generate = n
			return nil
		},
	},
	"max_length": {
		get: func(c *Config) string { return intOrEmpty(c.MaxLength) },
		set: func(c *Config, raw string) error {
			n, err := parseOptionalInt(raw)
			if err != nil {
				return err
			}
			if n != 0 {
				if err := validateMaxLength(n); err != nil {
					return err
				}
			}
			c.MaxLength = n
			return nil
		},
	},
	"type": {
		get: func(c *Config) string { return string(c.Type) },
		set: func(c *Config, raw string) error {
			t, err := ParseCommitType(raw)
			if err != nil {
				return err
			}
			c.Type = t
			return nil
		},
	},
	"timeout": {
		get: func(c *Config) string { return intOrEmpty(c.TimeoutMs) },
		set: func(c *Config, raw string) error {
			n, err := parseOptionalInt(raw)
			if err != nil {
				return err
			}
			if n != 0 {
				if err := validateTimeoutMs(n); err != nil {
					return err
				}
			}
			c.TimeoutMs = n
			return nil
		},
	},
	"proxy": {
		get: func(c *Config) string { return c.Proxy },
		set: func(c *Config, raw string) error {
			if raw != "" {
				if _, err := parseProxy(raw); err != nil {
					return err
				}
			}
			c.Proxy = raw
			return nil
		},
	},
	"max_diff_tokens": {
		get: func(c *Config) string {
			if c.MaxDiffTokens == nil {
				return ""
			}
			return strconv.Itoa(*c.MaxDiffTokens)
		},
		set: func(c *Config, raw string) error {
			if raw == "" {
				c.MaxDiffTokens = nil
				return nil
			}
			n, err := strconv.Atoi(raw)
			if err != nil {
				return fmt.Errorf("must be an integer")
			}
			if n < 0 {
				return fmt.Errorf("must be 0 (disabled) or greater")
			}
			c.MaxDiffTokens = &n
			return nil
		},
	},
	"github_token": {
		get: func(c *Config) string { return c.GitHubToken },
		set: func(c *Config, raw string) error {
			c.GitHubToken = raw
			return nil
		},
	},
}

// Keys returns the names of all config properties.
func Keys() []string {
	out := make([]string, len(keys))
	copy(out, keys)
	return out
}

// Get returns the stored value of key, "" when unset.
func (c *Config) Get(key string) (string, error) {
	p, ok := properties[key]
	if !ok {
		return "", invalidKey(key)
	}
	return p.get(c), nil
}

// Set validates value and stores it under key. An empty value clears the key.
func (c *Config) Set(key, value string) error {
	p, ok := properties[key]
	if !ok {
		return invalidKey(key)
	}
	if err := p.set(c, strings.TrimSpace(value)); err != nil {
		return domainErrors.ErrInvalidConfigValue.
			WithError(fmt.Errorf("%s: %w", key, err)).
			WithContext("key", key)
	}
	return nil
}

// SetPairs applies "key=value" assignments in order, stopping at the first invalid one.
func (c *Config) SetPairs(pairs []string) error {
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found {
			return domainErrors.ErrInvalidConfigValue.
				WithError(fmt.Errorf("%q: expected key=value", pair)).
				WithContext("key", pair)
		}
		if err := c.Set(key, value); err != nil {
			return err
		}
	}
	return nil
}

func invalidKey(key string) error {
	return domainErrors.ErrInvalidConfigKey.
		WithError(fmt.Errorf("%s", key)).
		WithContext("key", key).
		WithSuggestion(fmt.Sprintf("Valid properties: %s", strings.Join(keys, ", ")))
}

func intOrEmpty(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}

func parseOptionalInt(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("must be an integer")
	}
	return n, nil
}

func validateAPIKey(provider AI, key string) error {
	if key == "" {
		return nil
	}
	if provider == AIOpenAI && !strings.HasPrefix(key, "sk-") {
		return fmt.Errorf(`must start with "sk-"`)
	}
	return nil
}

func validateLocale(locale string) error {
	if !localePattern.MatchString(locale) {
		return fmt.Errorf("must be a language code like en or pt-BR")
	}
	return nil
}

func validateGenerate(n int) error {
	if n < 1 || n > 5 {
		return fmt.Errorf("must be between 1 and 5")
	}
	return nil
}

func validateMaxLength(n int) error {
	if n < 20 {
		return fmt.Errorf("must be at least 20 characters")
	}
	return nil
}

func validateTimeoutMs(n int) error {
	if n < 500 {
		return fmt.Errorf("must be at least 500ms")
	}
	return nil
}

func parseProxy(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("must be an absolute URL like http://proxy:8080")
	}
	return u, nil
}
