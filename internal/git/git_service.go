package git

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/thomas-vilte/aicommits/internal/errors"
	"github.com/thomas-vilte/aicommits/internal/logger"
	"github.com/thomas-vilte/aicommits/internal/models"
)

// defaultExcludes are lockfiles that make diffs huge and say nothing about intent.
var defaultExcludes = []string{
	"package-lock.json",
	"pnpm-lock.yaml",
	"*.lock",
}

var (
	sshRemote   = regexp.MustCompile(`^(?:ssh://)?git@([^:/]+)[:/]([^/]+)/(.+?)(?:\.git)?/?$`)
	httpsRemote = regexp.MustCompile(`^https?://(?:[^@/]+@)?([^/]+)/([^/]+)/(.+?)(?:\.git)?/?$`)
)

// GitService runs git in dir, or in the process working directory when dir is empty.
type GitService struct {
	dir string
}

func NewGitService() *GitService {
	return &GitService{}
}

// NewGitServiceIn returns a GitService bound to a repository directory.
func NewGitServiceIn(dir string) *GitService {
	return &GitService{dir: dir}
}

// AssertRepo fails with ErrNotInGitRepo unless the working directory is inside a work tree.
func (s *GitService) AssertRepo(ctx context.Context) error {
	out, err := s.run(ctx, errors.ErrNotInGitRepo, "rev-parse", "--is-inside-work-tree")
	if err != nil || strings.TrimSpace(out) != "true" {
		return errors.ErrNotInGitRepo
	}
	return nil
}

// StageTracked stages modifications and deletions of tracked files, like `git commit --all`.
func (s *GitService) StageTracked(ctx context.Context) error {
	_, err := s.run(ctx, errors.ErrStageChanges, "add", "--update")
	return err
}

// GetStagedDiff returns the staged files and diff, minus lockfiles and the given
// exclude globs. It returns nil, nil when nothing is staged after exclusion.
func (s *GitService) GetStagedDiff(ctx context.Context, excludes []string) (*models.StagedChange, error) {
	pathspecs := excludePathspecs(excludes)

	files, err := s.listFiles(ctx, append([]string{"diff", "--cached", "--name-only", "--"}, pathspecs...))
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		logger.Debug(ctx, "nothing staged", "excludes", strings.Join(excludes, ","))
		return nil, nil
	}

	diff, err := s.run(ctx, errors.ErrGetDiff, append([]string{"diff", "--cached", "--diff-algorithm=minimal", "--"}, pathspecs...)...)
	if err != nil {
		return nil, err
	}

	logger.Debug(ctx, "staged diff collected", "files", len(files), "size", len(diff))
	return &models.StagedChange{Files: files, Diff: diff}, nil
}

// GetBranchDiff returns the changes of HEAD since it diverged from trunk, with the same
// exclusions as GetStagedDiff. It returns nil, nil when the branch has no changes.
func (s *GitService) GetBranchDiff(ctx context.Context, trunk string, excludes []string) (*models.BranchChange, error) {
	head, err := s.GetCurrentBranch(ctx)
	if err != nil {
		return nil, err
	}

	change, err := s.GetRangeDiff(ctx, trunk, "HEAD", excludes)
	if change != nil {
		change.Head = head
	}
	return change, err
}

// GetRangeDiff returns the changes of head since it diverged from base. Both are any
// revision git accepts. It returns nil, nil when the range is empty.
func (s *GitService) GetRangeDiff(ctx context.Context, base, head string, excludes []string) (*models.BranchChange, error) {
	rng := base + "..." + head
	pathspecs := excludePathspecs(excludes)

	files, err := s.listFiles(ctx, append([]string{"diff", "--name-only", rng, "--"}, pathspecs...))
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		logger.Debug(ctx, "empty range", "range", rng)
		return nil, nil
	}

	diff, err := s.run(ctx, errors.ErrGetDiff, append([]string{"diff", "--diff-algorithm=minimal", rng, "--"}, pathspecs...)...)
	if err != nil {
		return nil, err
	}

	return &models.BranchChange{Head: head, Base: base, Files: files, Diff: diff}, nil
}

// CreateCommit commits the staged changes with message. extraArgs are passed to git commit as is.
func (s *GitService) CreateCommit(ctx context.Context, message string, extraArgs []string) error {
	args := append([]string{"commit", "-m", message}, extraArgs...)
	_, err := s.run(ctx, errors.ErrCreateCommit, args...)
	return err
}

func (s *GitService) GetCurrentBranch(ctx context.Context) (string, error) {
	out, err := s.run(ctx, errors.ErrGetBranch, "branch", "--show-current")
	if err != nil {
		return "", err
	}

	branchName := strings.TrimSpace(out)
	if branchName == "" {
		return "", errors.ErrNoBranch
	}

	return branchName, nil
}

// GetRepoInfo returns owner, repository and hosting provider of the origin remote.
func (s *GitService) GetRepoInfo(ctx context.Context) (string, string, string, error) {
	out, err := s.run(ctx, errors.ErrGetRepoURL, "remote", "get-url", "origin")
	if err != nil {
		return "", "", "", err
	}

	return parseRepoURL(strings.TrimSpace(out))
}

// HooksDir returns the absolute path of the hooks directory, honoring core.hooksPath.
func (s *GitService) HooksDir(ctx context.Context) (string, error) {
	out, err := s.run(ctx, errors.ErrGetHooksDir, "rev-parse", "--git-path", "hooks")
	if err != nil {
		return "", err
	}

	dir := strings.TrimSpace(out)
	if !filepath.IsAbs(dir) {
		base := s.dir
		if base == "" {
			base = "."
		}
		abs, err := filepath.Abs(filepath.Join(base, dir))
		if err != nil {
			return "", errors.ErrGetHooksDir.WithError(err)
		}
		dir = abs
	}
	return dir, nil
}

func (s *GitService) listFiles(ctx context.Context, args []string) ([]string, error) {
	out, err := s.run(ctx, errors.ErrGetDiff, args...)
	if err != nil {
		return nil, err
	}

	files := make([]string, 0)
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			files = append(files, line)
		}
	}
	return files, nil
}

// run executes git and wraps a failure in onErr, keeping stderr as context.
func (s *GitService) run(ctx context.Context, onErr *errors.AppError, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = s.dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		return "", onErr.WithError(err).
			WithContext("args", strings.Join(args, " ")).
			WithContext("stderr", strings.TrimSpace(stderr.String()))
	}
	return string(out), nil
}

func excludePathspecs(excludes []string) []string {
	specs := make([]string, 0, len(defaultExcludes)+len(excludes))
	for _, p := range defaultExcludes {
		specs = append(specs, ":(exclude)"+p)
	}
	for _, p := range excludes {
		if p = strings.TrimSpace(p); p != "" {
			specs = append(specs, ":(exclude)"+p)
		}
	}
	return specs
}

func parseRepoURL(url string) (string, string, string, error) {
	var matches []string
	if m := sshRemote.FindStringSubmatch(url); m != nil {
		matches = m
	} else if m := httpsRemote.FindStringSubmatch(url); m != nil {
		matches = m
	}

	if len(matches) >= 4 {
		return matches[2], matches[3], detectProvider(matches[1]), nil
	}

	return "", "", "", errors.ErrGetRepoURL.WithError(fmt.Errorf("unrecognized remote URL %q", url))
}

func detectProvider(host string) string {
	if strings.Contains(host, "github") {
		return "github"
	}
	if strings.Contains(host, "gitlab") {
		return "gitlab"
	}
	return "unknown"
}
