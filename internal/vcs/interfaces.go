package vcs

import (
	"context"

	"github.com/thomas-vilte/aicommits/internal/models"
)

// PullRequestCreator opens pull requests on a hosting service. Implementations are bound
// to one repository.
type PullRequestCreator interface {
	CreatePullRequest(ctx context.Context, input models.PullRequestInput) (*models.PullRequest, error)
}
