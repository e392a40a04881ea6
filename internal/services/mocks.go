package services

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/thomas-vilte/aicommits/internal/models"
)

type (
	MockGitService struct {
		mock.Mock
	}

	MockCompleter struct {
		mock.Mock
	}

	MockVCSClient struct {
		mock.Mock
	}
)

func (m *MockGitService) GetStagedDiff(ctx context.Context, excludes []string) (*models.StagedChange, error) {
	args := m.Called(ctx, excludes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StagedChange), args.Error(1)
}

func (m *MockGitService) GetBranchDiff(ctx context.Context, trunk string, excludes []string) (*models.BranchChange, error) {
	args := m.Called(ctx, trunk, excludes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BranchChange), args.Error(1)
}

func (m *MockGitService) GetRangeDiff(ctx context.Context, base, head string, excludes []string) (*models.BranchChange, error) {
	args := m.Called(ctx, base, head, excludes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BranchChange), args.Error(1)
}

func (m *MockCompleter) Complete(ctx context.Context, req models.CompletionRequest) ([]string, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockVCSClient) CreatePullRequest(ctx context.Context, input models.PullRequestInput) (*models.PullRequest, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PullRequest), args.Error(1)
}
