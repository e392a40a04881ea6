package providers

import (
	"context"
	"net/url"

	"github.com/thomas-vilte/aicommits/internal/config"
	domainErrors "github.com/thomas-vilte/aicommits/internal/errors"
	"github.com/thomas-vilte/aicommits/internal/vcs"
	"github.com/thomas-vilte/aicommits/internal/vcs/github"
)

// repoInfoSource is a minimal interface for testing purposes
type repoInfoSource interface {
	GetRepoInfo(ctx context.Context) (string, string, string, error)
}

// NewVCSClient creates the pull request client for the origin remote of the repository.
func NewVCSClient(ctx context.Context, git repoInfoSource, cfg *config.Config, proxy *url.URL, opts ...github.Option) (vcs.PullRequestCreator, error) {
	owner, repo, provider, err := git.GetRepoInfo(ctx)
	if err != nil {
		return nil, err
	}

	if provider != "github" {
		return nil, domainErrors.ErrRepositoryNotGitHub.WithContext("provider", provider)
	}

	token := cfg.GitHubTokenResolved()
	if token == "" {
		return nil, domainErrors.ErrTokenMissing
	}

	return github.NewGitHubClient(owner, repo, token, append([]github.Option{github.WithProxy(proxy)}, opts...)...)
}
