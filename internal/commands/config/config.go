package config

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/thomas-vilte/aicommits/internal/config"
	domainErrors "github.com/thomas-vilte/aicommits/internal/errors"
	"github.com/thomas-vilte/aicommits/internal/i18n"
	"github.com/thomas-vilte/aicommits/internal/logger"
	"github.com/thomas-vilte/aicommits/internal/ui"
	"github.com/urfave/cli/v3"
)

// secretKeys are masked by list.
var secretKeys = map[string]bool{
	"api_key":      true,
	"github_token": true,
}

type ConfigCommandFactory struct {
	openEditor func(path string) error
}

func NewConfigCommandFactory() *ConfigCommandFactory {
	return &ConfigCommandFactory{openEditor: runEditor}
}

// WithEditor replaces how the edit subcommand opens the config file.
func (c *ConfigCommandFactory) WithEditor(fn func(path string) error) *ConfigCommandFactory {
	c.openEditor = fn
	return c
}

func (c *ConfigCommandFactory) CreateCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: t.GetMessage("config.usage", 0, nil),
		Commands: []*cli.Command{
			c.newGetCommand(t, cfg),
			c.newSetCommand(t, cfg),
			c.newListCommand(t, cfg),
			c.newEditCommand(t, cfg),
		},
	}
}

func (c *ConfigCommandFactory) newGetCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     t.GetMessage("config.get_usage", 0, nil),
		ArgsUsage: "<key...>",
		Action: func(ctx context.Context, command *cli.Command) error {
			keys := command.Args().Slice()
			if len(keys) == 0 {
				return domainErrors.NewAppError(domainErrors.TypeUserInput, t.GetMessage("config.keys_required", 0, nil), nil).
					WithSuggestion(fmt.Sprintf("Valid properties: %s", strings.Join(config.Keys(), ", ")))
			}

			out := command.Root().Writer
			for _, key := range keys {
				value, err := cfg.Get(key)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(out, "%s=%s\n", key, value)
			}
			return nil
		},
	}
}

func (c *ConfigCommandFactory) newSetCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "set",
		Usage:     t.GetMessage("config.set_usage", 0, nil),
		ArgsUsage: "<key=value...>",
		Action: func(ctx context.Context, command *cli.Command) error {
			pairs := command.Args().Slice()
			if len(pairs) == 0 {
				return domainErrors.NewAppError(domainErrors.TypeUserInput, t.GetMessage("config.pairs_required", 0, nil), nil)
			}

			if err := cfg.SetPairs(pairs); err != nil {
				return err
			}
			if err := config.SaveConfig(cfg); err != nil {
				return domainErrors.NewAppError(domainErrors.TypeConfiguration, "Failed to save the configuration", err).
					WithContext("path", cfg.PathFile)
			}

			logger.Debug(ctx, "config saved", "path", cfg.PathFile, "pairs", len(pairs))
			ui.PrintSuccess(command.Root().Writer, t.GetMessage("config.saved", 0, map[string]interface{}{"Path": cfg.PathFile}))
			return nil
		},
	}
}

func (c *ConfigCommandFactory) newListCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: t.GetMessage("config.list_usage", 0, nil),
		Action: func(ctx context.Context, command *cli.Command) error {
			out := command.Root().Writer
			for _, key := range config.Keys() {
				value, err := cfg.Get(key)
				if err != nil {
					return err
				}
				if value == "" {
					continue
				}
				if secretKeys[key] {
					value = mask(value)
				}
				ui.PrintKeyValue(out, key, value)
			}
			return nil
		},
	}
}

func (c *ConfigCommandFactory) newEditCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "edit",
		Usage: t.GetMessage("config.edit_usage", 0, nil),
		Action: func(ctx context.Context, command *cli.Command) error {
			if _, err := os.Stat(cfg.PathFile); os.IsNotExist(err) {
				if err := config.SaveConfig(cfg); err != nil {
					return domainErrors.NewAppError(domainErrors.TypeConfiguration, "Failed to save the configuration", err).
						WithContext("path", cfg.PathFile)
				}
			}

			if err := c.openEditor(cfg.PathFile); err != nil {
				return domainErrors.NewAppError(domainErrors.TypeInternal, t.GetMessage("config.edit_error", 0, nil), err).
					WithSuggestion("Set the EDITOR environment variable")
			}
			return nil
		},
	}
}

func runEditor(path string) error {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "nano"
		if _, err := exec.LookPath("nano"); err != nil {
			editor = "vi"
		}
	}

	parts := strings.Fields(editor)
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func mask(secret string) string {
	if len(secret) <= 8 {
		return strings.Repeat("*", len(secret))
	}
	return secret[:4] + strings.Repeat("*", len(secret)-8) + secret[len(secret)-4:]
}
