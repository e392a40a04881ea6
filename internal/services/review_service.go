package services

import (
	"context"

	"github.com/thomas-vilte/aicommits/internal/ai"
	"github.com/thomas-vilte/aicommits/internal/config"
	domainErrors "github.com/thomas-vilte/aicommits/internal/errors"
	"github.com/thomas-vilte/aicommits/internal/logger"
	"github.com/thomas-vilte/aicommits/internal/models"
)

// reviewMaxLength bounds the completion budget of a single review.
const reviewMaxLength = 8000

// rangeDiffSource is a minimal interface for testing purposes
type rangeDiffSource interface {
	branchDiffSource
	GetRangeDiff(ctx context.Context, base, head string, excludes []string) (*models.BranchChange, error)
}

type ReviewService struct {
	git          rangeDiffSource
	newCompleter CompleterFactory
}

func NewReviewService(git rangeDiffSource, newCompleter CompleterFactory) *ReviewService {
	return &ReviewService{
		git:          git,
		newCompleter: newCompleter,
	}
}

// CollectChanges returns the changes of from since it diverged from to. An empty from
// means the current branch. It fails with ErrNoBranchChanges when there is nothing to review.
func (s *ReviewService) CollectChanges(ctx context.Context, from, to string, excludes []string) (*models.BranchChange, error) {
	var (
		change *models.BranchChange
		err    error
	)
	if from == "" {
		change, err = s.git.GetBranchDiff(ctx, to, excludes)
	} else {
		change, err = s.git.GetRangeDiff(ctx, to, from, excludes)
	}
	if err != nil {
		return nil, err
	}
	if change == nil {
		return nil, domainErrors.ErrNoBranchChanges.WithContext("trunk", to)
	}
	return change, nil
}

// GenerateReviews asks for cfg.MessageCount reviews of change.
func (s *ReviewService) GenerateReviews(ctx context.Context, change *models.BranchChange, cfg config.GenerationConfig) ([]string, error) {
	if err := checkDiffBudget(ctx, change.Diff, cfg.MaxDiffTokens); err != nil {
		return nil, err
	}

	completer, err := s.newCompleter(cfg)
	if err != nil {
		return nil, err
	}

	prompt := ai.BuildReviewPrompt(cfg.Locale)
	prompt.Diff = change.Diff

	raw, err := completer.Complete(ctx, models.CompletionRequest{
		Prompt:    prompt,
		Count:     cfg.MessageCount,
		MaxLength: reviewMaxLength,
		Model:     string(cfg.Model),
	})
	if err != nil {
		return nil, err
	}

	reviews := ai.NormalizeMultiline(raw)
	logger.Debug(ctx, "reviews normalized", "candidates", len(raw), "count", len(reviews))

	if len(reviews) == 0 {
		return nil, domainErrors.ErrNoReviews
	}
	return reviews, nil
}
