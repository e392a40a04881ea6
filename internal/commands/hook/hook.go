package hook

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/thomas-vilte/aicommits/internal/config"
	domainErrors "github.com/thomas-vilte/aicommits/internal/errors"
	"github.com/thomas-vilte/aicommits/internal/i18n"
	"github.com/thomas-vilte/aicommits/internal/logger"
	"github.com/thomas-vilte/aicommits/internal/models"
	"github.com/thomas-vilte/aicommits/internal/ui"
	"github.com/urfave/cli/v3"
)

const hookName = "prepare-commit-msg"

// gitService is a minimal interface for testing purposes
type gitService interface {
	AssertRepo(ctx context.Context) error
	HooksDir(ctx context.Context) (string, error)
}

// commitService is a minimal interface for testing purposes
type commitService interface {
	GenerateForStaged(ctx context.Context, excludes []string, cfg config.GenerationConfig) (*models.StagedChange, []string, error)
}

type HookCommandFactory struct {
	gitService    gitService
	commitService commitService
	executable    func() (string, error)
}

func NewHookCommandFactory(gitSvc gitService, commitSvc commitService) *HookCommandFactory {
	return &HookCommandFactory{
		gitService:    gitSvc,
		commitService: commitSvc,
		executable:    os.Executable,
	}
}

// WithExecutable replaces the lookup of the path the hook links to.
func (f *HookCommandFactory) WithExecutable(fn func() (string, error)) *HookCommandFactory {
	f.executable = fn
	return f
}

// IsCalledFromHook reports whether argv0 is the installed hook symlink.
func IsCalledFromHook(argv0 string) bool {
	return strings.HasSuffix(filepath.ToSlash(argv0), "hooks/"+hookName)
}

func (f *HookCommandFactory) CreateCommand(t *i18n.Translations, _ *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "hook",
		Usage: t.GetMessage("hook.usage", 0, nil),
		Commands: []*cli.Command{
			{
				Name:   "install",
				Usage:  t.GetMessage("hook.install_usage", 0, nil),
				Action: f.installAction(t),
			},
			{
				Name:   "uninstall",
				Usage:  t.GetMessage("hook.uninstall_usage", 0, nil),
				Action: f.uninstallAction(t),
			},
		},
	}
}

func (f *HookCommandFactory) installAction(t *i18n.Translations) cli.ActionFunc {
	return func(ctx context.Context, command *cli.Command) error {
		out := command.Root().Writer

		hookPath, target, err := f.paths(ctx)
		if err != nil {
			return err
		}

		if _, err := os.Lstat(hookPath); err == nil {
			if f.isOurs(hookPath, target) {
				ui.PrintWarning(out, t.GetMessage("hook.already_installed", 0, nil))
				return nil
			}
			return domainErrors.ErrHookConflict.WithContext("path", hookPath)
		}

		if err := os.MkdirAll(filepath.Dir(hookPath), 0755); err != nil {
			return domainErrors.NewAppError(domainErrors.TypeInternal, "Failed to create the hooks directory", err)
		}
		if err := os.Symlink(target, hookPath); err != nil {
			return domainErrors.NewAppError(domainErrors.TypeInternal, "Failed to install the hook", err)
		}

		logger.Debug(ctx, "hook installed", "path", hookPath, "target", target)
		ui.PrintSuccess(out, t.GetMessage("hook.installed", 0, nil))
		return nil
	}
}

func (f *HookCommandFactory) uninstallAction(t *i18n.Translations) cli.ActionFunc {
	return func(ctx context.Context, command *cli.Command) error {
		out := command.Root().Writer

		hookPath, target, err := f.paths(ctx)
		if err != nil {
			return err
		}

		if _, err := os.Lstat(hookPath); err != nil || !f.isOurs(hookPath, target) {
			ui.PrintWarning(out, t.GetMessage("hook.not_installed", 0, nil))
			return nil
		}

		if err := os.Remove(hookPath); err != nil {
			return domainErrors.NewAppError(domainErrors.TypeInternal, "Failed to remove the hook", err)
		}

		ui.PrintSuccess(out, t.GetMessage("hook.uninstalled", 0, nil))
		return nil
	}
}

// paths returns the hook location and the resolved executable it should link to.
func (f *HookCommandFactory) paths(ctx context.Context) (string, string, error) {
	if err := f.gitService.AssertRepo(ctx); err != nil {
		return "", "", err
	}

	hooksDir, err := f.gitService.HooksDir(ctx)
	if err != nil {
		return "", "", err
	}

	exe, err := f.executable()
	if err != nil {
		return "", "", domainErrors.NewAppError(domainErrors.TypeInternal, "Failed to locate the aicommits executable", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}

	return filepath.Join(hooksDir, hookName), exe, nil
}

func (f *HookCommandFactory) isOurs(hookPath, target string) bool {
	resolved, err := filepath.EvalSymlinks(hookPath)
	return err == nil && resolved == target
}

// RunHook is the prepare-commit-msg entry point. args are the ones git passes to the hook:
// the message file and, optionally, the source of the message.
func (f *HookCommandFactory) RunHook(ctx context.Context, t *i18n.Translations, cfg *config.Config, args []string, out io.Writer) error {
	if len(args) == 0 || args[0] == "" {
		return domainErrors.ErrHookMessageFile
	}
	messageFile := args[0]

	// A message given with -m, a template, a merge or an amend is left alone.
	if len(args) > 1 && args[1] != "" {
		logger.Debug(ctx, "hook skipped", "source", args[1])
		return nil
	}

	genCfg, err := cfg.GenerationConfig(config.Overrides{})
	if err != nil {
		return err
	}

	spinner := ui.NewSmartSpinner(out, t.GetMessage("commit.generating", 0, nil))
	spinner.Start()
	_, messages, err := f.commitService.GenerateForStaged(ctx, nil, genCfg)
	if errors.Is(err, domainErrors.ErrNoStagedChanges) {
		spinner.Stop()
		return nil
	}
	if err != nil {
		spinner.Error(t.GetMessage("commit.analysis_failed", 0, nil))
		return err
	}
	spinner.Success(t.GetMessage("commit.analyzed", 0, nil))

	file, err := os.OpenFile(messageFile, os.O_APPEND|os.O_WRONLY|os.O_CREATE, fs.FileMode(0644))
	if err != nil {
		return domainErrors.ErrHookMessageFile.WithError(err).WithContext("path", messageFile)
	}
	defer func() {
		_ = file.Close()
	}()

	if _, err := io.WriteString(file, Instructions(t, messages)); err != nil {
		return domainErrors.ErrHookMessageFile.WithError(err).WithContext("path", messageFile)
	}

	ui.PrintSuccess(out, t.GetMessage("hook.saved", 0, nil))
	return nil
}

// Instructions renders the block appended to the commit message file. A single message is
// left uncommented; several are commented out for the user to pick from.
func Instructions(t *i18n.Translations, messages []string) string {
	var b strings.Builder
	if len(messages) > 1 {
		b.WriteString(t.GetMessage("hook.header_multiple", 0, nil) + "\n")
		b.WriteString(t.GetMessage("hook.instructions_multiple", 0, nil) + "\n\n")
		for i, m := range messages {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString(fmt.Sprintf("# %s", m))
		}
		return b.String()
	}

	b.WriteString(t.GetMessage("hook.header_single", 0, nil) + "\n")
	b.WriteString(t.GetMessage("hook.instructions_single", 0, nil) + "\n\n")
	if len(messages) == 1 {
		b.WriteString(messages[0] + "\n")
	}
	return b.String()
}
