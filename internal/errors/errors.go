package errors

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrorType defines the category of the error
type ErrorType string

const (
	TypeUserInput         ErrorType = "USER_INPUT"
	TypeConnectivity      ErrorType = "CONNECTIVITY"
	TypeTimeout           ErrorType = "TIMEOUT"
	TypeUpstream          ErrorType = "UPSTREAM"
	TypeInvalidCredential ErrorType = "INVALID_CREDENTIAL"
	TypeEmptyResult       ErrorType = "EMPTY_RESULT"
	TypeConfiguration     ErrorType = "CONFIGURATION"
	TypeGit               ErrorType = "GIT"
	TypeVCS               ErrorType = "VCS"
	TypeInternal          ErrorType = "INTERNAL"
)

// AppError represents a known, well-formed error that is safe to show to the user verbatim.
// Values are never mutated after construction: every With* method returns a copy.
type AppError struct {
	Type       ErrorType
	Message    string
	Context    map[string]interface{}
	Err        error
	Suggestion string
}

func (e *AppError) Error() string {
	var msg string
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %s (%v)", e.Type, e.Message, e.Err)
	} else {
		msg = fmt.Sprintf("%s: %s", e.Type, e.Message)
	}

	if e.Context != nil {
		if stderr, ok := e.Context["stderr"].(string); ok && stderr != "" {
			msg += fmt.Sprintf(" - %s", stderr)
		}
		if body, ok := e.Context["body"].(string); ok && body != "" {
			msg += fmt.Sprintf("\n\n%s", body)
		}
	}

	return msg
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is reports whether target is an AppError of the same type and message, so that
// errors.Is(err, ErrNoStagedChanges) matches copies built with With*.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Message == t.Message
}

// WithError creates a new AppError with an underlying error
func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Type:       e.Type,
		Message:    e.Message,
		Context:    e.Context,
		Err:        err,
		Suggestion: e.Suggestion,
	}
}

// WithContext creates a new AppError with additional context
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	ctx := make(map[string]interface{})
	for k, v := range e.Context {
		ctx[k] = v
	}
	ctx[key] = value
	return &AppError{
		Type:       e.Type,
		Message:    e.Message,
		Context:    ctx,
		Err:        e.Err,
		Suggestion: e.Suggestion,
	}
}

func (e *AppError) WithSuggestion(suggestion string) *AppError {
	return &AppError{
		Type:       e.Type,
		Message:    e.Message,
		Context:    e.Context,
		Err:        e.Err,
		Suggestion: suggestion,
	}
}

// NewAppError creates a new AppError
func NewAppError(t ErrorType, msg string, err error) *AppError {
	return &AppError{
		Type:    t,
		Message: msg,
		Err:     err,
	}
}

// IsKnown reports whether err carries an AppError anywhere in its chain.
// Anything else is an unexpected failure (parse errors, bugs) and deserves diagnostics.
func IsKnown(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// TypeOf returns the ErrorType of the first AppError in the chain, or "" if there is none.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ""
}

// User input errors
var (
	ErrNoStagedChanges = NewAppError(TypeUserInput, "No staged changes found", nil).
				WithSuggestion("Stage your changes manually, or automatically stage all changes with the `--all` flag")

	ErrNoBranchChanges = NewAppError(TypeUserInput, "No changes found against the trunk branch", nil).
				WithSuggestion("Commit your work on a feature branch first")

	ErrDiffTooLarge = NewAppError(TypeUserInput, "The diff is too large to write a commit message", nil).
			WithSuggestion("Exclude generated files with --exclude, or raise max_diff_tokens: aicommits config set max_diff_tokens=<n>")

	ErrInvalidSelection = NewAppError(TypeUserInput, "Invalid selection", nil)
)

// Generation errors
var (
	ErrNoMessages = NewAppError(TypeEmptyResult, "No commit messages were generated", nil).
			WithSuggestion("Try again")

	ErrNoPullRequests = NewAppError(TypeEmptyResult, "A pull request description was not generated", nil).
				WithSuggestion("Try again")

	ErrNoReviews = NewAppError(TypeEmptyResult, "No code review was generated", nil).
			WithSuggestion("Try again")
)

// Upstream errors carry per-call details, so the completion clients build them with these helpers.

// NewConnectivityError reports that host could not be reached at all.
func NewConnectivityError(host string, err error) *AppError {
	return NewAppError(TypeConnectivity, fmt.Sprintf("Error connecting to %s", host), err).
		WithContext("host", host).
		WithSuggestion("Are you connected to the internet? Check your network and proxy settings")
}

// NewTimeoutError reports that the request was aborted after timeout.
func NewTimeoutError(timeout time.Duration, err error) *AppError {
	return NewAppError(TypeTimeout, fmt.Sprintf("Time out error: request took over %dms", timeout.Milliseconds()), err).
		WithContext("timeout_ms", timeout.Milliseconds()).
		WithSuggestion("Try increasing the `timeout` config: aicommits config set timeout=<ms>")
}

// NewUpstreamError reports a non-success reply. A 401 becomes an invalid credential error.
func NewUpstreamError(provider string, status int, statusText, body string) *AppError {
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return NewAppError(TypeInvalidCredential, fmt.Sprintf("%s API Error: %d - %s", provider, status, statusText), nil).
			WithContext("status", status).
			WithContext("body", body).
			WithSuggestion("Set a valid key: aicommits config set api_key=<key>")
	}

	appErr := NewAppError(TypeUpstream, fmt.Sprintf("%s API Error: %d - %s", provider, status, statusText), nil).
		WithContext("status", status).
		WithContext("body", body)
	if status == http.StatusInternalServerError {
		appErr = appErr.WithSuggestion(fmt.Sprintf("Check the API status: %s", statusPage(provider)))
	}
	return appErr
}

func statusPage(provider string) string {
	switch provider {
	case "Gemini":
		return "https://aistudio.google.com/status"
	default:
		return "https://status.openai.com"
	}
}

// Git errors
var (
	ErrNotInGitRepo = NewAppError(TypeGit, "The current directory must be a Git repository", nil).
			WithSuggestion("Initialize a git repository: git init")

	ErrGetDiff = NewAppError(TypeGit, "Failed to get diff", nil).
			WithSuggestion("Check if you have staged changes: git status")

	ErrStageChanges = NewAppError(TypeGit, "Failed to stage tracked changes", nil)

	ErrCreateCommit = NewAppError(TypeGit, "Failed to create commit", nil).
			WithSuggestion("Ensure git user is configured:\n   git config --global user.name \"Your Name\"\n   git config --global user.email \"your@email.com\"")

	ErrGetBranch = NewAppError(TypeGit, "Failed to get current branch", nil).
			WithSuggestion("Make sure you are in a git repository: git status")

	ErrNoBranch = NewAppError(TypeGit, "No branch detected", nil).
			WithSuggestion("Create a branch first: git checkout -b <branch-name>")

	ErrGetRepoURL = NewAppError(TypeGit, "Failed to get repository URL", nil).
			WithSuggestion("Add a remote: git remote add origin <url>")

	ErrGetHooksDir = NewAppError(TypeGit, "Failed to locate the git hooks directory", nil)
)

// Hook errors
var (
	ErrHookConflict = NewAppError(TypeUserInput, "A different prepare-commit-msg hook seems to be installed", nil).
			WithSuggestion("Please remove it before installing aicommits")

	ErrHookMessageFile = NewAppError(TypeUserInput, "Commit message file path is missing", nil).
				WithSuggestion("This mode should be called from the \"prepare-commit-msg\" git hook")
)

// Configuration errors
var (
	ErrAPIKeyMissing = NewAppError(TypeConfiguration, "API key is missing", nil).
				WithSuggestion("Run: aicommits config set api_key=<key>")

	ErrInvalidConfigKey = NewAppError(TypeConfiguration, "Invalid config property", nil)

	ErrInvalidConfigValue = NewAppError(TypeConfiguration, "Invalid config value", nil)

	ErrProviderNotSupported = NewAppError(TypeConfiguration, "AI provider not supported", nil).
				WithSuggestion("Supported providers: openai, gemini")

	ErrTokenMissing = NewAppError(TypeConfiguration, "GitHub token is missing", nil).
			WithSuggestion("Run: aicommits config set github_token=<token> or export GITHUB_TOKEN")
)

// VCS errors
var (
	ErrRepositoryNotGitHub = NewAppError(TypeVCS, "The origin remote is not a GitHub repository", nil)

	ErrCreatePullRequest = NewAppError(TypeVCS, "Failed to create pull request", nil).
				WithSuggestion("Check your GitHub token has 'repo' permissions and the branch is pushed")
)
