package main

import (
	"context"
	"fmt"
	"net/url"
	"os"

	"github.com/thomas-vilte/aicommits/internal/commands/config"
	"github.com/thomas-vilte/aicommits/internal/commands/hook"
	"github.com/thomas-vilte/aicommits/internal/commands/pull_requests"
	"github.com/thomas-vilte/aicommits/internal/commands/registry"
	"github.com/thomas-vilte/aicommits/internal/commands/review"
	"github.com/thomas-vilte/aicommits/internal/commands/suggests_commits"
	cfg "github.com/thomas-vilte/aicommits/internal/config"
	"github.com/thomas-vilte/aicommits/internal/git"
	"github.com/thomas-vilte/aicommits/internal/i18n"
	"github.com/thomas-vilte/aicommits/internal/logger"
	"github.com/thomas-vilte/aicommits/internal/providers"
	"github.com/thomas-vilte/aicommits/internal/services"
	"github.com/thomas-vilte/aicommits/internal/ui"
	"github.com/thomas-vilte/aicommits/internal/vcs"
	"github.com/thomas-vilte/aicommits/internal/version"
	"github.com/urfave/cli/v3"
)

func main() {
	ctx := context.Background()

	cfgApp, err := cfg.LoadConfig()
	if err != nil {
		ui.HandleAppError(os.Stderr, err)
		os.Exit(1)
	}

	translations, err := i18n.NewTranslations(cfg.UILanguage(cfgApp.Locale))
	if err != nil {
		ui.HandleAppError(os.Stderr, err)
		os.Exit(1)
	}

	gitService := git.NewGitService()
	commitService := services.NewCommitService(gitService, providers.NewCompleter)
	hookFactory := hook.NewHookCommandFactory(gitService, commitService)

	if hook.IsCalledFromHook(os.Args[0]) {
		ctx = logger.WithLogger(ctx, logger.Initialize(false, false))
		if err := hookFactory.RunHook(ctx, translations, cfgApp, os.Args[1:], os.Stdout); err != nil {
			ui.HandleAppError(os.Stderr, err, translations)
			os.Exit(1)
		}
		return
	}

	app, err := initializeApp(cfgApp, translations, gitService, commitService, hookFactory)
	if err != nil {
		ui.HandleAppError(os.Stderr, err, translations)
		os.Exit(1)
	}

	if err := app.Run(ctx, os.Args); err != nil {
		ui.HandleAppError(os.Stderr, err, translations)
		os.Exit(1)
	}
}

func initializeApp(cfgApp *cfg.Config, translations *i18n.Translations, gitService *git.GitService, commitService *services.CommitService, hookFactory *hook.HookCommandFactory) (*cli.Command, error) {
	prService := services.NewPRService(gitService, providers.NewCompleter)
	reviewService := services.NewReviewService(gitService, providers.NewCompleter)
	vcsProvider := func(ctx context.Context, proxy *url.URL) (vcs.PullRequestCreator, error) {
		return providers.NewVCSClient(ctx, gitService, cfgApp, proxy)
	}

	registerCommand := registry.NewRegistry(cfgApp, translations)

	if err := registerCommand.Register("config", config.NewConfigCommandFactory()); err != nil {
		return nil, fmt.Errorf("error registering the 'config' command: %w", err)
	}

	if err := registerCommand.Register("hook", hookFactory); err != nil {
		return nil, fmt.Errorf("error registering the 'hook' command: %w", err)
	}

	if err := registerCommand.Register("pr", pull_requests.NewPRCommandFactory(prService, gitService, vcsProvider)); err != nil {
		return nil, fmt.Errorf("error registering the 'pr' command: %w", err)
	}

	if err := registerCommand.Register("review", review.NewReviewCommandFactory(reviewService, gitService)); err != nil {
		return nil, fmt.Errorf("error registering the 'review' command: %w", err)
	}

	app := suggests_commits.NewSuggestCommandFactory(commitService, gitService).CreateCommand(translations, cfgApp)
	app.Version = version.Version
	app.Commands = registerCommand.CreateCommands()
	app.EnableShellCompletion = true
	app.Flags = append(app.Flags,
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: translations.GetMessage("flag_verbose", 0, nil),
		},
		&cli.BoolFlag{
			Name:  "debug",
			Usage: translations.GetMessage("flag_debug", 0, nil),
		},
	)
	app.Before = func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
		l := logger.Initialize(cmd.Bool("debug"), cmd.Bool("verbose"))
		l.Debug("starting aicommits", "version", version.FullVersion(), "config", cfgApp.PathFile)
		return logger.WithLogger(ctx, l), nil
	}

	return app, nil
}
