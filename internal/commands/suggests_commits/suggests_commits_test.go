package suggests_commits

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/thomas-vilte/aicommits/internal/config"
	domainErrors "github.com/thomas-vilte/aicommits/internal/errors"
	"github.com/thomas-vilte/aicommits/internal/i18n"
	"github.com/thomas-vilte/aicommits/internal/models"
	"github.com/urfave/cli/v3"
)

type MockCommitService struct {
	mock.Mock
}

func (m *MockCommitService) Generate(ctx context.Context, diff string, cfg config.GenerationConfig) ([]string, error) {
	args := m.Called(ctx, diff, cfg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockGitService struct {
	mock.Mock
}

func (m *MockGitService) AssertRepo(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockGitService) StageTracked(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockGitService) GetStagedDiff(ctx context.Context, excludes []string) (*models.StagedChange, error) {
	args := m.Called(ctx, excludes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.StagedChange), args.Error(1)
}

func (m *MockGitService) CreateCommit(ctx context.Context, message string, extraArgs []string) error {
	return m.Called(ctx, message, extraArgs).Error(0)
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{"OPENAI_KEY", "OPENAI_API_KEY", "GEMINI_API_KEY", "HTTPS_PROXY", "https_proxy", "HTTP_PROXY", "http_proxy"} {
		t.Setenv(name, "")
	}
}

func newCommand(t *testing.T, commitSvc *MockCommitService, gitSvc *MockGitService, cfg *config.Config, input string) (*cli.Command, *bytes.Buffer) {
	t.Helper()
	clearEnv(t)
	trans, err := i18n.NewTranslations("en")
	require.NoError(t, err)

	out := &bytes.Buffer{}
	cmd := NewSuggestCommandFactory(commitSvc, gitSvc).CreateCommand(trans, cfg)
	cmd.Writer = out
	cmd.ErrWriter = out
	cmd.Reader = strings.NewReader(input)
	return cmd, out
}

func TestSuggestCommand(t *testing.T) {
	t.Run("should generate and commit the picked message", func(t *testing.T) {
		// Arrange
		commitSvc := new(MockCommitService)
		gitSvc := new(MockGitService)
		staged := &models.StagedChange{Files: []string{"login.go", "login_test.go"}, Diff: "+package login"}
		gitSvc.On("AssertRepo", mock.Anything).Return(nil)
		gitSvc.On("GetStagedDiff", mock.Anything, []string{"*.md"}).Return(staged, nil)
		commitSvc.On("Generate", mock.Anything, "+package login", mock.MatchedBy(func(c config.GenerationConfig) bool {
			return c.MessageCount == 2 && c.CommitType == config.CommitTypeConventional && c.Locale == "es"
		})).Return([]string{"feat: add login", "test: cover login"}, nil)
		gitSvc.On("CreateCommit", mock.Anything, "test: cover login", []string{"--no-verify"}).Return(nil)
		cmd, out := newCommand(t, commitSvc, gitSvc, &config.Config{APIKey: "sk-test"}, "2\n")

		// Act
		err := cmd.Run(context.Background(), []string{"aicommits", "-g", "2", "-t", "conventional", "-l", "es", "-x", "*.md", "--", "--no-verify"})

		// Assert
		require.NoError(t, err)
		assert.Contains(t, out.String(), "Detected 2 staged files")
		assert.Contains(t, out.String(), "Successfully committed!")
		commitSvc.AssertExpectations(t)
		gitSvc.AssertExpectations(t)
	})

	t.Run("should stage tracked files with --all and commit without asking with --yes", func(t *testing.T) {
		// Arrange
		commitSvc := new(MockCommitService)
		gitSvc := new(MockGitService)
		gitSvc.On("AssertRepo", mock.Anything).Return(nil)
		gitSvc.On("StageTracked", mock.Anything).Return(nil)
		gitSvc.On("GetStagedDiff", mock.Anything, mock.Anything).
			Return(&models.StagedChange{Files: []string{"a.go"}, Diff: "diff"}, nil)
		commitSvc.On("Generate", mock.Anything, "diff", mock.Anything).Return([]string{"Update a"}, nil)
		gitSvc.On("CreateCommit", mock.Anything, "Update a", mock.Anything).Return(nil)
		cmd, out := newCommand(t, commitSvc, gitSvc, &config.Config{APIKey: "sk-test"}, "")

		// Act
		err := cmd.Run(context.Background(), []string{"aicommits", "--all", "--yes"})

		// Assert
		require.NoError(t, err)
		assert.Contains(t, out.String(), "Detected 1 staged file:")
		gitSvc.AssertExpectations(t)
	})

	t.Run("should stop when nothing is staged", func(t *testing.T) {
		commitSvc := new(MockCommitService)
		gitSvc := new(MockGitService)
		gitSvc.On("AssertRepo", mock.Anything).Return(nil)
		gitSvc.On("GetStagedDiff", mock.Anything, mock.Anything).Return(nil, nil)
		cmd, _ := newCommand(t, commitSvc, gitSvc, &config.Config{APIKey: "sk-test"}, "")

		err := cmd.Run(context.Background(), []string{"aicommits"})

		assert.ErrorIs(t, err, domainErrors.ErrNoStagedChanges)
		commitSvc.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("should fail before touching git when the API key is missing", func(t *testing.T) {
		commitSvc := new(MockCommitService)
		gitSvc := new(MockGitService)
		cmd, _ := newCommand(t, commitSvc, gitSvc, &config.Config{}, "")

		err := cmd.Run(context.Background(), []string{"aicommits"})

		assert.ErrorIs(t, err, domainErrors.ErrAPIKeyMissing)
		gitSvc.AssertNotCalled(t, "AssertRepo", mock.Anything)
	})

	t.Run("should return generation errors", func(t *testing.T) {
		// Arrange
		commitSvc := new(MockCommitService)
		gitSvc := new(MockGitService)
		gitSvc.On("AssertRepo", mock.Anything).Return(nil)
		gitSvc.On("GetStagedDiff", mock.Anything, mock.Anything).
			Return(&models.StagedChange{Files: []string{"a.go"}, Diff: "diff"}, nil)
		upstream := domainErrors.NewUpstreamError("OpenAI", 500, "Internal Server Error", "{}")
		commitSvc.On("Generate", mock.Anything, mock.Anything, mock.Anything).Return(nil, upstream)
		cmd, out := newCommand(t, commitSvc, gitSvc, &config.Config{APIKey: "sk-test"}, "")

		// Act
		err := cmd.Run(context.Background(), []string{"aicommits"})

		// Assert
		assert.Same(t, upstream, err)
		assert.Contains(t, out.String(), "Could not analyze your changes")
		gitSvc.AssertNotCalled(t, "CreateCommit", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("should reject an invalid --type", func(t *testing.T) {
		cmd, _ := newCommand(t, new(MockCommitService), new(MockGitService), &config.Config{APIKey: "sk-test"}, "")

		err := cmd.Run(context.Background(), []string{"aicommits", "--type", "angular"})

		assert.ErrorIs(t, err, domainErrors.ErrInvalidConfigValue)
	})
}
