package review

import (
	"context"
	"fmt"
	"time"

	"github.com/thomas-vilte/aicommits/internal/commands/completion_helper"
	"github.com/thomas-vilte/aicommits/internal/config"
	"github.com/thomas-vilte/aicommits/internal/i18n"
	"github.com/thomas-vilte/aicommits/internal/logger"
	"github.com/thomas-vilte/aicommits/internal/models"
	"github.com/thomas-vilte/aicommits/internal/ui"
	"github.com/urfave/cli/v3"
)

// reviewService is a minimal interface for testing purposes
type reviewService interface {
	CollectChanges(ctx context.Context, from, to string, excludes []string) (*models.BranchChange, error)
	GenerateReviews(ctx context.Context, change *models.BranchChange, cfg config.GenerationConfig) ([]string, error)
}

// gitService is a minimal interface for testing purposes
type gitService interface {
	AssertRepo(ctx context.Context) error
}

type ReviewCommandFactory struct {
	reviewService reviewService
	gitService    gitService
}

func NewReviewCommandFactory(reviewSvc reviewService, gitSvc gitService) *ReviewCommandFactory {
	return &ReviewCommandFactory{
		reviewService: reviewSvc,
		gitService:    gitSvc,
	}
}

func (f *ReviewCommandFactory) CreateCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "review",
		Usage: t.GetMessage("review.usage", 0, nil),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "frombranch",
				Usage: t.GetMessage("review.flag_from", 0, nil),
			},
			&cli.StringFlag{
				Name:  "tobranch",
				Usage: t.GetMessage("review.flag_to", 0, nil),
				Value: "main",
			},
			&cli.IntFlag{
				Name:    "generate",
				Aliases: []string{"g"},
				Usage:   t.GetMessage("review.flag_generate", 0, nil),
			},
			&cli.StringSliceFlag{
				Name:    "exclude",
				Aliases: []string{"x"},
				Usage:   t.GetMessage("review.flag_exclude", 0, nil),
			},
		},
		ShellComplete: completion_helper.DefaultFlagComplete,
		Action:        f.createAction(cfg, t),
	}
}

func (f *ReviewCommandFactory) createAction(cfg *config.Config, t *i18n.Translations) cli.ActionFunc {
	return func(ctx context.Context, command *cli.Command) error {
		log := logger.FromContext(ctx)
		out := command.Root().Writer
		start := time.Now()
		from := command.String("frombranch")
		to := command.String("tobranch")

		genCfg, err := cfg.GenerationConfig(config.Overrides{Generate: command.Int("generate")})
		if err != nil {
			return err
		}

		log.Info("executing review command",
			"from", from,
			"to", to,
			"provider", genCfg.Provider,
			"generate", genCfg.MessageCount)

		if err := f.gitService.AssertRepo(ctx); err != nil {
			return err
		}

		spinner := ui.NewSmartSpinner(out, t.GetMessage("review.collecting", 0, map[string]interface{}{"Trunk": to}))
		spinner.Start()
		change, err := f.reviewService.CollectChanges(ctx, from, to, command.StringSlice("exclude"))
		spinner.Stop()
		if err != nil {
			return err
		}

		count := len(change.Files)
		ui.PrintFiles(out, t.GetMessage("review.detected_files", count, map[string]interface{}{"Count": count, "Head": change.Head}), change.Files)

		spinner = ui.NewSmartSpinner(out, t.GetMessage("review.generating", 0, nil))
		spinner.Start()
		reviews, err := f.reviewService.GenerateReviews(ctx, change, genCfg)
		if err != nil {
			log.Error("failed to generate review",
				"error", err,
				"duration_ms", time.Since(start).Milliseconds())
			spinner.Error(t.GetMessage("review.generation_failed", 0, nil))
			return err
		}
		spinner.Stop()
		ui.PrintDuration(out, t.GetMessage("review.generated", 0, nil), time.Since(start))

		for i, r := range reviews {
			ui.PrintSectionBanner(out, t.GetMessage("review.title", 0, map[string]interface{}{"Index": i + 1, "Total": len(reviews)}))
			_, _ = fmt.Fprintf(out, "%s\n\n", r)
		}

		log.Info("review completed",
			"count", len(reviews),
			"duration_ms", time.Since(start).Milliseconds())

		ui.PrintSuccess(out, t.GetMessage("review.done", 0, nil))
		return nil
	}
}
