package services

import (
	"context"
	"strings"

	"github.com/thomas-vilte/aicommits/internal/ai"
	"github.com/thomas-vilte/aicommits/internal/config"
	domainErrors "github.com/thomas-vilte/aicommits/internal/errors"
	"github.com/thomas-vilte/aicommits/internal/logger"
	"github.com/thomas-vilte/aicommits/internal/models"
	"github.com/thomas-vilte/aicommits/internal/vcs"
)

// prMaxLength bounds the completion budget of a pull request description.
const prMaxLength = 8000

// branchDiffSource is a minimal interface for testing purposes
type branchDiffSource interface {
	GetBranchDiff(ctx context.Context, trunk string, excludes []string) (*models.BranchChange, error)
}

type PRService struct {
	git          branchDiffSource
	newCompleter CompleterFactory
}

func NewPRService(git branchDiffSource, newCompleter CompleterFactory) *PRService {
	return &PRService{
		git:          git,
		newCompleter: newCompleter,
	}
}

// CollectChanges returns the branch diff against trunk, or ErrNoBranchChanges.
func (s *PRService) CollectChanges(ctx context.Context, trunk string, excludes []string) (*models.BranchChange, error) {
	change, err := s.git.GetBranchDiff(ctx, trunk, excludes)
	if err != nil {
		return nil, err
	}
	if change == nil {
		return nil, domainErrors.ErrNoBranchChanges.WithContext("trunk", trunk)
	}
	return change, nil
}

// GenerateDrafts asks for cfg.MessageCount pull request descriptions of change.
func (s *PRService) GenerateDrafts(ctx context.Context, change *models.BranchChange, cfg config.GenerationConfig) ([]models.PRDraft, error) {
	if err := checkDiffBudget(ctx, change.Diff, cfg.MaxDiffTokens); err != nil {
		return nil, err
	}

	completer, err := s.newCompleter(cfg)
	if err != nil {
		return nil, err
	}

	prompt := ai.BuildPullRequestPrompt(cfg.Locale)
	prompt.Diff = change.Diff

	raw, err := completer.Complete(ctx, models.CompletionRequest{
		Prompt:    prompt,
		Count:     cfg.MessageCount,
		MaxLength: prMaxLength,
		Model:     string(cfg.Model),
	})
	if err != nil {
		return nil, err
	}

	drafts := make([]models.PRDraft, 0, len(raw))
	for _, text := range ai.NormalizeMultiline(raw) {
		if draft, ok := ParsePRDraft(text); ok {
			drafts = append(drafts, draft)
		}
	}
	logger.Debug(ctx, "pull request drafts parsed", "candidates", len(raw), "count", len(drafts))

	if len(drafts) == 0 {
		return nil, domainErrors.ErrNoPullRequests
	}
	return drafts, nil
}

// Open creates the pull request from change.Head into change.Base.
func (s *PRService) Open(ctx context.Context, client vcs.PullRequestCreator, change *models.BranchChange, draft models.PRDraft, asDraft bool) (*models.PullRequest, error) {
	return client.CreatePullRequest(ctx, models.PullRequestInput{
		Head:  change.Head,
		Base:  change.Base,
		Title: draft.Title,
		Body:  draft.Body,
		Draft: asDraft,
	})
}

// ParsePRDraft splits a completion into title (first line) and body (the rest).
// Markdown heading marks on the title are dropped.
func ParsePRDraft(text string) (models.PRDraft, bool) {
	title, body, _ := strings.Cut(strings.TrimSpace(text), "\n")
	title = strings.TrimSpace(strings.TrimLeft(title, "# "))
	if title == "" {
		return models.PRDraft{}, false
	}
	return models.PRDraft{
		Title: ai.SanitizeMessage(title),
		Body:  strings.TrimSpace(body),
	}, true
}
