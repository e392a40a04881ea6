package pull_requests

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/thomas-vilte/aicommits/internal/commands/completion_helper"
	"github.com/thomas-vilte/aicommits/internal/config"
	"github.com/thomas-vilte/aicommits/internal/i18n"
	"github.com/thomas-vilte/aicommits/internal/logger"
	"github.com/thomas-vilte/aicommits/internal/models"
	"github.com/thomas-vilte/aicommits/internal/ui"
	"github.com/thomas-vilte/aicommits/internal/vcs"
	"github.com/urfave/cli/v3"
)

// prService is a minimal interface for testing purposes
type prService interface {
	CollectChanges(ctx context.Context, trunk string, excludes []string) (*models.BranchChange, error)
	GenerateDrafts(ctx context.Context, change *models.BranchChange, cfg config.GenerationConfig) ([]models.PRDraft, error)
	Open(ctx context.Context, client vcs.PullRequestCreator, change *models.BranchChange, draft models.PRDraft, asDraft bool) (*models.PullRequest, error)
}

// gitService is a minimal interface for testing purposes
type gitService interface {
	AssertRepo(ctx context.Context) error
}

// VCSClientProvider builds the hosting client on demand
type VCSClientProvider func(ctx context.Context, proxy *url.URL) (vcs.PullRequestCreator, error)

type PRCommandFactory struct {
	prService    prService
	gitService   gitService
	newVCSClient VCSClientProvider
}

func NewPRCommandFactory(prSvc prService, gitSvc gitService, newVCSClient VCSClientProvider) *PRCommandFactory {
	return &PRCommandFactory{
		prService:    prSvc,
		gitService:   gitSvc,
		newVCSClient: newVCSClient,
	}
}

func (f *PRCommandFactory) CreateCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "pr",
		Usage: t.GetMessage("pr.usage", 0, nil),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "trunk",
				Aliases: []string{"B"},
				Usage:   t.GetMessage("pr.flag_trunk", 0, nil),
				Value:   "main",
			},
			&cli.IntFlag{
				Name:    "generate",
				Aliases: []string{"g"},
				Usage:   t.GetMessage("pr.flag_generate", 0, nil),
			},
			&cli.StringSliceFlag{
				Name:    "exclude",
				Aliases: []string{"x"},
				Usage:   t.GetMessage("pr.flag_exclude", 0, nil),
			},
			&cli.BoolFlag{
				Name:  "draft",
				Usage: t.GetMessage("pr.flag_draft", 0, nil),
			},
		},
		ShellComplete: completion_helper.DefaultFlagComplete,
		Action:        f.createAction(cfg, t),
	}
}

func (f *PRCommandFactory) createAction(cfg *config.Config, t *i18n.Translations) cli.ActionFunc {
	return func(ctx context.Context, command *cli.Command) error {
		log := logger.FromContext(ctx)
		out := command.Root().Writer
		start := time.Now()
		trunk := command.String("trunk")

		genCfg, err := cfg.GenerationConfig(config.Overrides{Generate: command.Int("generate")})
		if err != nil {
			return err
		}

		log.Info("executing pr command",
			"trunk", trunk,
			"provider", genCfg.Provider,
			"generate", genCfg.MessageCount,
			"draft", command.Bool("draft"))

		if err := f.gitService.AssertRepo(ctx); err != nil {
			return err
		}

		// Fail on a missing token or a non GitHub remote before spending a completion.
		client, err := f.newVCSClient(ctx, genCfg.Proxy)
		if err != nil {
			return err
		}

		spinner := ui.NewSmartSpinner(out, t.GetMessage("pr.collecting", 0, map[string]interface{}{"Trunk": trunk}))
		spinner.Start()
		change, err := f.prService.CollectChanges(ctx, trunk, command.StringSlice("exclude"))
		spinner.Stop()
		if err != nil {
			return err
		}

		count := len(change.Files)
		ui.PrintFiles(out, t.GetMessage("pr.detected_files", count, map[string]interface{}{"Count": count, "Head": change.Head}), change.Files)

		spinner = ui.NewSmartSpinner(out, t.GetMessage("pr.generating", 0, nil))
		spinner.Start()
		drafts, err := f.prService.GenerateDrafts(ctx, change, genCfg)
		if err != nil {
			log.Error("failed to generate pull request",
				"error", err,
				"duration_ms", time.Since(start).Milliseconds())
			spinner.Error(t.GetMessage("pr.generation_failed", 0, nil))
			return err
		}
		spinner.Stop()
		ui.PrintDuration(out, t.GetMessage("pr.generated", 0, nil), time.Since(start))

		prompter := ui.NewPrompter(command.Root().Reader, out)
		draft, ok, err := selectDraft(prompter, out, t, drafts)
		if err != nil {
			return err
		}
		if !ok {
			ui.PrintWarning(out, t.GetMessage("pr.cancelled", 0, nil))
			return nil
		}

		spinner = ui.NewSmartSpinner(out, t.GetMessage("pr.creating", 0, nil))
		spinner.Start()
		pr, err := f.prService.Open(ctx, client, change, draft, command.Bool("draft"))
		if err != nil {
			spinner.Error(t.GetMessage("pr.create_failed", 0, nil))
			return err
		}
		spinner.Stop()

		log.Info("pull request opened",
			"number", pr.Number,
			"duration_ms", time.Since(start).Milliseconds())

		ui.PrintSuccess(out, t.GetMessage("pr.created", 0, map[string]interface{}{"Number": pr.Number, "URL": pr.URL}))
		return nil
	}
}

// selectDraft asks for confirmation of a single draft, or for a pick among several.
// ok is false when the user cancels.
func selectDraft(p *ui.Prompter, out io.Writer, t *i18n.Translations, drafts []models.PRDraft) (models.PRDraft, bool, error) {
	if len(drafts) == 1 {
		ui.PrintSectionBanner(out, drafts[0].Title)
		_, _ = fmt.Fprintf(out, "%s\n\n", drafts[0].Body)
		return drafts[0], p.AskConfirmation(t.GetMessage("pr.confirm", 0, nil)), nil
	}

	items := make([]string, len(drafts))
	for i, d := range drafts {
		items[i] = fmt.Sprintf("%s\n\n%s", d.Title, d.Body)
	}
	idx, err := p.SelectIndex(t.GetMessage("pr.select_title", 0, nil), t.GetMessage("pr.select_prompt", 0, nil), items)
	if err != nil {
		return models.PRDraft{}, false, err
	}
	if idx < 0 {
		return models.PRDraft{}, false, nil
	}
	return drafts[idx], true, nil
}
