package services

import (
	"context"

	"github.com/thomas-vilte/aicommits/internal/ai"
	"github.com/thomas-vilte/aicommits/internal/config"
	domainErrors "github.com/thomas-vilte/aicommits/internal/errors"
	"github.com/thomas-vilte/aicommits/internal/logger"
	"github.com/thomas-vilte/aicommits/internal/models"
)

// stagedDiffSource is a minimal interface for testing purposes
type stagedDiffSource interface {
	GetStagedDiff(ctx context.Context, excludes []string) (*models.StagedChange, error)
}

// CompleterFactory builds the completion backend for a resolved configuration.
type CompleterFactory func(cfg config.GenerationConfig) (ai.Completer, error)

type CommitService struct {
	git          stagedDiffSource
	newCompleter CompleterFactory
}

func NewCommitService(git stagedDiffSource, newCompleter CompleterFactory) *CommitService {
	return &CommitService{
		git:          git,
		newCompleter: newCompleter,
	}
}

// Generate asks the completion backend for commit messages describing diff.
// It makes one request and returns between 1 and cfg.MessageCount distinct messages.
// Errors from the backend are returned as they are.
func (s *CommitService) Generate(ctx context.Context, diff string, cfg config.GenerationConfig) ([]string, error) {
	if err := checkDiffBudget(ctx, diff, cfg.MaxDiffTokens); err != nil {
		return nil, err
	}

	completer, err := s.newCompleter(cfg)
	if err != nil {
		return nil, err
	}

	prompt := ai.BuildCommitPrompt(cfg.Locale, cfg.MaxLength, cfg.CommitType)
	prompt.Diff = diff

	raw, err := completer.Complete(ctx, models.CompletionRequest{
		Prompt:    prompt,
		Count:     cfg.MessageCount,
		MaxLength: cfg.MaxLength,
		Model:     string(cfg.Model),
	})
	if err != nil {
		return nil, err
	}

	messages := ai.NormalizeMessages(raw)
	logger.Debug(ctx, "completions normalized", "candidates", len(raw), "count", len(messages))
	if len(messages) == 0 {
		return nil, domainErrors.ErrNoMessages
	}
	return messages, nil
}

// GenerateForStaged reads the staged change and generates messages for it.
// The completer is never called when nothing is staged.
func (s *CommitService) GenerateForStaged(ctx context.Context, excludes []string, cfg config.GenerationConfig) (*models.StagedChange, []string, error) {
	change, err := s.git.GetStagedDiff(ctx, excludes)
	if err != nil {
		return nil, nil, err
	}
	if change == nil {
		return nil, nil, domainErrors.ErrNoStagedChanges
	}

	messages, err := s.Generate(ctx, change.Diff, cfg)
	if err != nil {
		return change, nil, err
	}
	return change, messages, nil
}

func checkDiffBudget(ctx context.Context, diff string, budget int) error {
	if budget <= 0 {
		return nil
	}
	tokens := ai.CountTokens(diff)
	logger.Debug(ctx, "diff measured", "tokens", tokens, "budget", budget)
	if tokens > budget {
		return domainErrors.ErrDiffTooLarge.
			WithContext("tokens", tokens).
			WithContext("budget", budget)
	}
	return nil
}
