package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v80/github"
	domainErrors "github.com/thomas-vilte/aicommits/internal/errors"
	"github.com/thomas-vilte/aicommits/internal/httpclient"
	"github.com/thomas-vilte/aicommits/internal/logger"
	"github.com/thomas-vilte/aicommits/internal/models"
	"github.com/thomas-vilte/aicommits/internal/vcs"
	"golang.org/x/oauth2"
)

var _ vcs.PullRequestCreator = (*GitHubClient)(nil)

type PullRequestsService interface {
	Create(ctx context.Context, owner, repo string, pull *github.NewPullRequest) (*github.PullRequest, *github.Response, error)
	List(ctx context.Context, owner, repo string, opts *github.PullRequestListOptions) ([]*github.PullRequest, *github.Response, error)
}

type GitHubClient struct {
	prService PullRequestsService
	owner     string
	repo      string
}

type options struct {
	proxy   *url.URL
	baseURL string
}

type Option func(*options)

// WithProxy routes API calls through proxy.
func WithProxy(proxy *url.URL) Option {
	return func(o *options) {
		o.proxy = proxy
	}
}

// WithBaseURL points the client at a GitHub Enterprise or test server.
func WithBaseURL(baseURL string) Option {
	return func(o *options) {
		o.baseURL = baseURL
	}
}

func NewGitHubClient(owner, repo, token string, opts ...Option) (*GitHubClient, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	httpClient := httpclient.New(o.proxy)
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, httpClient)
		httpClient = oauth2.NewClient(ctx, ts)
	}

	client := github.NewClient(httpClient)
	if o.baseURL != "" {
		base, err := url.Parse(strings.TrimSuffix(o.baseURL, "/") + "/")
		if err != nil {
			return nil, domainErrors.ErrCreatePullRequest.WithError(err)
		}
		client.BaseURL = base
	}

	return NewGitHubClientWithServices(client.PullRequests, owner, repo), nil
}

func NewGitHubClientWithServices(prService PullRequestsService, owner, repo string) *GitHubClient {
	return &GitHubClient{
		prService: prService,
		owner:     owner,
		repo:      repo,
	}
}

// CreatePullRequest opens a pull request. If one is already open for the same head and
// base, that one is returned instead.
func (ghc *GitHubClient) CreatePullRequest(ctx context.Context, input models.PullRequestInput) (*models.PullRequest, error) {
	pr, resp, err := ghc.prService.Create(ctx, ghc.owner, ghc.repo, &github.NewPullRequest{
		Title: github.Ptr(input.Title),
		Head:  github.Ptr(input.Head),
		Base:  github.Ptr(input.Base),
		Body:  github.Ptr(input.Body),
		Draft: github.Ptr(input.Draft),
	})
	if err != nil {
		if statusOf(resp, err) == http.StatusUnprocessableEntity && alreadyExists(err) {
			if existing, findErr := ghc.findOpen(ctx, input.Head, input.Base); findErr == nil && existing != nil {
				logger.Debug(ctx, "pull request already open", "number", existing.Number)
				return existing, nil
			}
		}
		return nil, ghc.wrapError(resp, err)
	}

	return &models.PullRequest{
		Number: pr.GetNumber(),
		URL:    pr.GetHTMLURL(),
	}, nil
}

func (ghc *GitHubClient) findOpen(ctx context.Context, head, base string) (*models.PullRequest, error) {
	prs, _, err := ghc.prService.List(ctx, ghc.owner, ghc.repo, &github.PullRequestListOptions{
		State: "open",
		Head:  ghc.owner + ":" + head,
		Base:  base,
	})
	if err != nil {
		return nil, err
	}
	if len(prs) == 0 {
		return nil, nil
	}
	return &models.PullRequest{Number: prs[0].GetNumber(), URL: prs[0].GetHTMLURL()}, nil
}

func (ghc *GitHubClient) wrapError(resp *github.Response, err error) error {
	status := statusOf(resp, err)
	appErr := domainErrors.ErrCreatePullRequest.
		WithError(err).
		WithContext("repository", fmt.Sprintf("%s/%s", ghc.owner, ghc.repo))
	if status != 0 {
		appErr = appErr.WithContext("status", status)
	}

	switch status {
	case http.StatusUnauthorized:
		return appErr.WithSuggestion("Check your GitHub token: aicommits config set github_token=<token> or export GITHUB_TOKEN")
	case http.StatusForbidden, http.StatusNotFound:
		return appErr.WithSuggestion("Make sure the token can create pull requests in " + ghc.owner + "/" + ghc.repo)
	case http.StatusUnprocessableEntity:
		return appErr.WithSuggestion("Push the branch to origin before opening the pull request")
	}
	return appErr
}

func statusOf(resp *github.Response, err error) int {
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		return ghErr.Response.StatusCode
	}
	if resp != nil && resp.Response != nil {
		return resp.StatusCode
	}
	return 0
}

func alreadyExists(err error) bool {
	var ghErr *github.ErrorResponse
	if !errors.As(err, &ghErr) {
		return false
	}
	for _, e := range ghErr.Errors {
		if strings.Contains(strings.ToLower(e.Message), "already exists") {
			return true
		}
	}
	return strings.Contains(strings.ToLower(ghErr.Message), "already exists")
}
