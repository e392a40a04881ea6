package ui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	domainErrors "github.com/thomas-vilte/aicommits/internal/errors"
	"github.com/thomas-vilte/aicommits/internal/i18n"
	"github.com/thomas-vilte/aicommits/internal/version"
)

var (
	// Colors for different message types
	Success = color.New(color.FgGreen, color.Bold)
	Error   = color.New(color.FgRed, color.Bold)
	Warning = color.New(color.FgYellow, color.Bold)
	Info    = color.New(color.FgCyan, color.Bold)
	Accent  = color.New(color.FgMagenta, color.Bold)
	Dim     = color.New(color.FgHiBlack)

	RobotEmoji   = "🤖"
	SuccessEmoji = Success.Sprint("✔")
	WarningEmoji = Warning.Sprint("⚠️")
	InfoEmoji    = Info.Sprint("ℹ️")
)

// SmartSpinner is a terminal spinner that also prints the outcome of the step it tracks.
// It stays silent when w is not a terminal.
type SmartSpinner struct {
	spinner *spinner.Spinner
	w       io.Writer
}

// NewSmartSpinner creates a new spinner with an initial message
func NewSmartSpinner(w io.Writer, initialMessage string) *SmartSpinner {
	s := spinner.New(
		spinner.CharSets[14],
		100*time.Millisecond,
		spinner.WithColor("cyan"),
		spinner.WithSuffix(" "+initialMessage),
		spinner.WithWriter(w),
	)
	return &SmartSpinner{spinner: s, w: w}
}

func (s *SmartSpinner) Start() {
	s.spinner.Start()
}

func (s *SmartSpinner) Stop() {
	s.spinner.Stop()
}

func (s *SmartSpinner) UpdateMessage(msg string) {
	s.spinner.Suffix = " " + msg
}

func (s *SmartSpinner) Success(msg string) {
	s.Stop()
	PrintSuccess(s.w, msg)
}

func (s *SmartSpinner) Error(msg string) {
	s.Stop()
	PrintError(s.w, msg)
}

func PrintSuccess(w io.Writer, msg string) {
	_, _ = fmt.Fprintf(w, "%s %s\n", SuccessEmoji, Success.Sprint(msg))
}

func PrintError(w io.Writer, msg string) {
	_, _ = fmt.Fprintf(w, "%s %s\n", Error.Sprint("✖"), Error.Sprint(msg))
}

func PrintWarning(w io.Writer, msg string) {
	_, _ = fmt.Fprintf(w, "%s %s\n", WarningEmoji, Warning.Sprint(msg))
}

func PrintInfo(w io.Writer, msg string) {
	_, _ = fmt.Fprintf(w, "%s %s\n", InfoEmoji, Info.Sprint(msg))
}

func PrintSectionBanner(w io.Writer, title string) {
	_, _ = fmt.Fprintf(w, "\n%s %s\n\n", RobotEmoji, Accent.Sprint(title))
}

func PrintDuration(w io.Writer, msg string, duration time.Duration) {
	durationStr := Dim.Sprintf("(%s)", duration.Round(10*time.Millisecond))
	_, _ = fmt.Fprintf(w, "%s %s %s\n", SuccessEmoji, Success.Sprint(msg), durationStr)
}

func PrintKeyValue(w io.Writer, key, value string) {
	keyColored := Dim.Sprint(key + ":")
	valueColored := color.New(color.FgWhite, color.Bold).Sprint(value)
	_, _ = fmt.Fprintf(w, "   %s %s\n", keyColored, valueColored)
}

// PrintFiles prints a header followed by one indented line per file.
func PrintFiles(w io.Writer, header string, files []string) {
	_, _ = fmt.Fprintf(w, "%s %s:\n", SuccessEmoji, Success.Sprint(header))
	for _, f := range files {
		_, _ = fmt.Fprintf(w, "     %s\n", f)
	}
}

// HandleAppError prints err for the user. Known errors show their message and suggestion.
// Anything else is unexpected and gets diagnostic details and a bug report hint.
// If translations is nil, it will use English defaults.
func HandleAppError(w io.Writer, err error, translations ...*i18n.Translations) {
	if err == nil {
		return
	}

	var t *i18n.Translations
	if len(translations) > 0 && translations[0] != nil {
		t = translations[0]
	}
	msg := func(id, fallback string, data map[string]interface{}) string {
		if t == nil {
			return fallback
		}
		return t.GetMessage(id, 0, data)
	}

	var appErr *domainErrors.AppError
	if errors.As(err, &appErr) {
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintf(w, "%s %s\n", Error.Sprint("✖"), Error.Sprint(appErr.Message))

		if appErr.Err != nil {
			_, _ = Dim.Fprintf(w, "   %s %v\n", msg("ui_error.details", "Details:", nil), appErr.Err)
		}
		if body, ok := appErr.Context["body"].(string); ok && body != "" {
			_, _ = Dim.Fprintf(w, "\n%s\n", body)
		}
		if stderr, ok := appErr.Context["stderr"].(string); ok && stderr != "" {
			_, _ = Dim.Fprintf(w, "   %s\n", stderr)
		}

		if appErr.Suggestion != "" {
			_, _ = fmt.Fprintln(w)
			_, _ = Info.Fprint(w, msg("ui_error.try_suggestion", "💡 Try: ", nil))
			for i, line := range strings.Split(appErr.Suggestion, "\n") {
				if i == 0 {
					_, _ = fmt.Fprintln(w, line)
				} else {
					_, _ = fmt.Fprintf(w, "       %s\n", line)
				}
			}
		}
		_, _ = fmt.Fprintln(w)
		return
	}

	PrintError(w, err.Error())
	_, _ = fmt.Fprintln(w)
	_, _ = Dim.Fprintf(w, "%s\n", msg("ui_error.diagnostics", "Diagnostics:", nil))
	_, _ = Dim.Fprintf(w, "   aicommits %s (%s/%s, %s)\n", version.Version, runtime.GOOS, runtime.GOARCH, runtime.Version())
	_, _ = Dim.Fprintf(w, "   %T\n", err)
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, msg("ui_error.report_bug",
		"This looks like a bug. Please open an issue at https://github.com/thomas-vilte/aicommits/issues with the output above.", nil))
}

// Prompter reads answers from the user. Streams are injectable so flows can be tested.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

func (p *Prompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// AskConfirmation asks a yes/no question. Anything but yes (y, yes, s, si) is a no.
func (p *Prompter) AskConfirmation(question string) bool {
	_, _ = fmt.Fprintf(p.out, "\n%s (y/n): ", Info.Sprint(question))
	response, err := p.readLine()
	if err != nil {
		return false
	}
	response = strings.ToLower(response)
	return response == "y" || response == "yes" || response == "s" || response == "si"
}

// Choose shows a menu of single letter options and returns the letter picked.
// An empty answer picks the first option.
func (p *Prompter) Choose(question string, options []Option) (string, error) {
	_, _ = fmt.Fprintf(p.out, "\n%s\n", Info.Sprint(question))
	for _, o := range options {
		_, _ = fmt.Fprintf(p.out, "  %s %s\n", Accent.Sprintf("[%s]", o.Key), o.Label)
	}
	for {
		_, _ = fmt.Fprint(p.out, "> ")
		answer, err := p.readLine()
		if err != nil {
			return "", err
		}
		answer = strings.ToLower(answer)
		if answer == "" && len(options) > 0 {
			return options[0].Key, nil
		}
		for _, o := range options {
			if answer == o.Key {
				return o.Key, nil
			}
		}
	}
}

// Option is one entry of a Choose menu.
type Option struct {
	Key   string
	Label string
}

// SelectIndex shows a numbered list and returns the zero based index of the pick,
// or -1 when the user enters 0 to cancel.
func (p *Prompter) SelectIndex(title, prompt string, items []string) (int, error) {
	_, _ = fmt.Fprintf(p.out, "\n%s\n", Info.Sprint(title))
	for i, item := range items {
		lines := strings.Split(item, "\n")
		_, _ = fmt.Fprintf(p.out, "  %s %s\n", Accent.Sprintf("%d)", i+1), lines[0])
		for _, l := range lines[1:] {
			_, _ = fmt.Fprintf(p.out, "     %s\n", Dim.Sprint(l))
		}
	}
	for {
		_, _ = fmt.Fprintf(p.out, "%s ", prompt)
		answer, err := p.readLine()
		if err != nil {
			return -1, err
		}
		n, convErr := strconv.Atoi(answer)
		if convErr != nil || n < 0 || n > len(items) {
			continue
		}
		return n - 1, nil
	}
}

// EditMessage opens $EDITOR on the message and returns the edited text.
func EditMessage(initialMessage string, editorErrorMsg string) (string, error) {
	tmpFile, err := os.CreateTemp("", "COMMIT_EDITMSG-*.txt")
	if err != nil {
		return "", fmt.Errorf("%s: %w", editorErrorMsg, err)
	}
	defer func() {
		_ = os.Remove(tmpFile.Name())
	}()

	if _, err := tmpFile.WriteString(initialMessage); err != nil {
		return "", fmt.Errorf("%s: %w", editorErrorMsg, err)
	}
	_ = tmpFile.Close()

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "nano"
		if _, err := exec.LookPath("nano"); err != nil {
			editor = "vi"
		}
	}

	parts := strings.Fields(editor)
	cmd := exec.Command(parts[0], append(parts[1:], tmpFile.Name())...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%s: %w", editorErrorMsg, err)
	}

	content, err := os.ReadFile(tmpFile.Name())
	if err != nil {
		return "", fmt.Errorf("%s: %w", editorErrorMsg, err)
	}

	editedMessage := strings.TrimSpace(string(content))
	if editedMessage == "" {
		return "", fmt.Errorf("%s", editorErrorMsg)
	}

	return editedMessage, nil
}
