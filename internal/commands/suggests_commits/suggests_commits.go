package suggests_commits

import (
	"context"
	"time"

	"github.com/thomas-vilte/aicommits/internal/commands/completion_helper"
	"github.com/thomas-vilte/aicommits/internal/commands/handler"
	"github.com/thomas-vilte/aicommits/internal/config"
	domainErrors "github.com/thomas-vilte/aicommits/internal/errors"
	"github.com/thomas-vilte/aicommits/internal/i18n"
	"github.com/thomas-vilte/aicommits/internal/logger"
	"github.com/thomas-vilte/aicommits/internal/models"
	"github.com/thomas-vilte/aicommits/internal/ui"
	"github.com/urfave/cli/v3"
)

// commitService is a minimal interface for testing purposes
type commitService interface {
	Generate(ctx context.Context, diff string, cfg config.GenerationConfig) ([]string, error)
}

// gitService is a minimal interface for testing purposes
type gitService interface {
	AssertRepo(ctx context.Context) error
	StageTracked(ctx context.Context) error
	GetStagedDiff(ctx context.Context, excludes []string) (*models.StagedChange, error)
	CreateCommit(ctx context.Context, message string, extraArgs []string) error
}

type SuggestCommandFactory struct {
	commitService commitService
	gitService    gitService
	editor        handler.EditFunc
}

func NewSuggestCommandFactory(commitSvc commitService, gitSvc gitService) *SuggestCommandFactory {
	return &SuggestCommandFactory{
		commitService: commitSvc,
		gitService:    gitSvc,
		editor:        ui.EditMessage,
	}
}

// CreateCommand returns the commit flow. It is meant to be the root command: arguments
// after -- are passed to git commit.
func (f *SuggestCommandFactory) CreateCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:          "aicommits",
		Usage:         t.GetMessage("app_usage", 0, nil),
		Description:   t.GetMessage("app_description", 0, nil),
		ArgsUsage:     "[-- git commit flags]",
		Flags:         f.createFlags(t),
		ShellComplete: completion_helper.DefaultFlagComplete,
		Action:        f.createAction(cfg, t),
	}
}

func (f *SuggestCommandFactory) createFlags(t *i18n.Translations) []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:    "generate",
			Aliases: []string{"g"},
			Usage:   t.GetMessage("commit.flag_generate", 0, nil),
			Local:   true,
		},
		&cli.StringSliceFlag{
			Name:    "exclude",
			Aliases: []string{"x"},
			Usage:   t.GetMessage("commit.flag_exclude", 0, nil),
			Local:   true,
		},
		&cli.BoolFlag{
			Name:    "all",
			Aliases: []string{"a"},
			Usage:   t.GetMessage("commit.flag_all", 0, nil),
			Local:   true,
		},
		&cli.StringFlag{
			Name:    "type",
			Aliases: []string{"t"},
			Usage:   t.GetMessage("commit.flag_type", 0, nil),
			Local:   true,
		},
		&cli.StringFlag{
			Name:    "locale",
			Aliases: []string{"l"},
			Usage:   t.GetMessage("commit.flag_locale", 0, nil),
			Local:   true,
		},
		&cli.BoolFlag{
			Name:    "yes",
			Aliases: []string{"y"},
			Usage:   t.GetMessage("commit.flag_yes", 0, nil),
			Local:   true,
		},
	}
}

func (f *SuggestCommandFactory) createAction(cfg *config.Config, t *i18n.Translations) cli.ActionFunc {
	return func(ctx context.Context, command *cli.Command) error {
		log := logger.FromContext(ctx)
		out := command.Root().Writer

		genCfg, err := cfg.GenerationConfig(config.Overrides{
			Locale:   command.String("locale"),
			Generate: command.Int("generate"),
			Type:     command.String("type"),
		})
		if err != nil {
			return err
		}

		log.Info("executing commit command",
			"provider", genCfg.Provider,
			"model", genCfg.Model,
			"generate", genCfg.MessageCount,
			"type", genCfg.CommitType,
			"proxy", genCfg.Proxy)

		if err := f.gitService.AssertRepo(ctx); err != nil {
			return err
		}

		if command.Bool("all") {
			ui.PrintInfo(out, t.GetMessage("commit.staging", 0, nil))
			if err := f.gitService.StageTracked(ctx); err != nil {
				return err
			}
		}

		spinner := ui.NewSmartSpinner(out, t.GetMessage("commit.detecting_files", 0, nil))
		spinner.Start()
		staged, err := f.gitService.GetStagedDiff(ctx, command.StringSlice("exclude"))
		spinner.Stop()
		if err != nil {
			return err
		}
		if staged == nil {
			return domainErrors.ErrNoStagedChanges
		}

		count := len(staged.Files)
		ui.PrintFiles(out, t.GetMessage("commit.detected_files", count, map[string]interface{}{"Count": count}), staged.Files)

		spinner = ui.NewSmartSpinner(out, t.GetMessage("commit.generating", 0, nil))
		spinner.Start()
		start := time.Now()
		messages, err := f.commitService.Generate(ctx, staged.Diff, genCfg)
		duration := time.Since(start)
		if err != nil {
			log.Debug("generation failed", "duration_ms", duration.Milliseconds())
			spinner.Error(t.GetMessage("commit.analysis_failed", 0, nil))
			return err
		}
		spinner.Stop()
		ui.PrintDuration(out, t.GetMessage("commit.analyzed", 0, nil), duration)

		log.Info("messages generated",
			"count", len(messages),
			"duration_ms", duration.Milliseconds())

		h := handler.NewSuggestionHandler(f.gitService, ui.NewPrompter(command.Root().Reader, out), out, t).
			WithEditor(f.editor)
		return h.HandleSuggestions(ctx, messages, command.Bool("yes"), command.Args().Slice())
	}
}
