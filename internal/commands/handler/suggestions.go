package handler

import (
	"context"
	"fmt"
	"io"

	"github.com/thomas-vilte/aicommits/internal/i18n"
	"github.com/thomas-vilte/aicommits/internal/logger"
	"github.com/thomas-vilte/aicommits/internal/ui"
)

// committer is a minimal interface for testing purposes
type committer interface {
	CreateCommit(ctx context.Context, message string, extraArgs []string) error
}

// EditFunc opens the message in an editor and returns the result.
type EditFunc func(initial, errorMsg string) (string, error)

// SuggestionHandler lets the user pick one of the generated messages and commits it.
type SuggestionHandler struct {
	git      committer
	prompter *ui.Prompter
	out      io.Writer
	t        *i18n.Translations
	edit     EditFunc
}

func NewSuggestionHandler(git committer, prompter *ui.Prompter, out io.Writer, t *i18n.Translations) *SuggestionHandler {
	return &SuggestionHandler{
		git:      git,
		prompter: prompter,
		out:      out,
		t:        t,
		edit:     ui.EditMessage,
	}
}

// WithEditor replaces the $EDITOR based editing step.
func (h *SuggestionHandler) WithEditor(edit EditFunc) *SuggestionHandler {
	h.edit = edit
	return h
}

// HandleSuggestions commits one of messages. With autoConfirm the first message is
// committed without asking. A cancelled selection is not an error.
func (h *SuggestionHandler) HandleSuggestions(ctx context.Context, messages []string, autoConfirm bool, extraArgs []string) error {
	message, ok, err := h.pick(messages, autoConfirm)
	if err != nil {
		return err
	}
	if !ok {
		ui.PrintWarning(h.out, h.t.GetMessage("commit.cancelled", 0, nil))
		return nil
	}

	logger.Debug(ctx, "committing", "extra_args", len(extraArgs))
	if err := h.git.CreateCommit(ctx, message, extraArgs); err != nil {
		return err
	}

	ui.PrintSuccess(h.out, h.t.GetMessage("commit.success", 0, nil))
	return nil
}

func (h *SuggestionHandler) pick(messages []string, autoConfirm bool) (string, bool, error) {
	if len(messages) == 0 {
		return "", false, nil
	}
	if autoConfirm {
		return messages[0], true, nil
	}

	if len(messages) == 1 {
		return h.confirmSingle(messages[0])
	}

	idx, err := h.prompter.SelectIndex(
		h.t.GetMessage("commit.select_title", 0, nil),
		h.t.GetMessage("commit.select_prompt", 0, nil),
		messages,
	)
	if err != nil {
		return "", false, err
	}
	if idx < 0 {
		return "", false, nil
	}
	return messages[idx], true, nil
}

func (h *SuggestionHandler) confirmSingle(message string) (string, bool, error) {
	_, _ = fmt.Fprintf(h.out, "\n   %s\n", ui.Accent.Sprint(message))

	choice, err := h.prompter.Choose(h.t.GetMessage("commit.single_header", 0, nil), []ui.Option{
		{Key: "y", Label: h.t.GetMessage("commit.option_commit", 0, nil)},
		{Key: "e", Label: h.t.GetMessage("commit.option_edit", 0, nil)},
		{Key: "n", Label: h.t.GetMessage("commit.option_cancel", 0, nil)},
	})
	if err != nil {
		return "", false, err
	}

	switch choice {
	case "y":
		return message, true, nil
	case "e":
		edited, err := h.edit(message, h.t.GetMessage("commit.edit_error", 0, nil))
		if err != nil {
			return "", false, err
		}
		return edited, true, nil
	default:
		return "", false, nil
	}
}
