package ai

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/thomas-vilte/aicommits/internal/config"
	"github.com/thomas-vilte/aicommits/internal/models"
)

// catalogEntry keeps the catalog order stable; maps alone would lose it.
type catalogEntry struct {
	Code        string
	Description string
}

// feat and fix go last with terse descriptions so the model does not pick them by default.
var conventionalCatalog = []catalogEntry{
	{"docs", "Documentation only changes"},
	{"style", "Changes that do not affect the meaning of the code (white-space, formatting, missing semi-colons, etc)"},
	{"refactor", "A code change that neither fixes a bug nor adds a feature"},
	{"perf", "A code change that improves performance"},
	{"test", "Adding missing tests or correcting existing tests"},
	{"build", "Changes that affect the build system or external dependencies"},
	{"ci", "Changes to our CI configuration files and scripts"},
	{"chore", "Other changes that don't modify src or test files"},
	{"revert", "Reverts a previous commit"},
	{"feat", "A new feature"},
	{"fix", "A bug fix"},
}

var gitmojiCatalog = []catalogEntry{
	{":art:", "Improve structure / format of the code."},
	{":zap:", "Improve performance."},
	{":fire:", "Remove code or files."},
	{":bug:", "Fix a bug."},
	{":ambulance:", "Critical hotfix."},
	{":sparkles:", "Introduce new features."},
	{":memo:", "Add or update documentation."},
	{":lipstick:", "Add or update the UI and style files."},
	{":white_check_mark:", "Add, update, or pass tests."},
	{":lock:", "Fix security or privacy issues."},
	{":rotating_light:", "Fix compiler / linter warnings."},
	{":green_heart:", "Fix CI Build."},
	{":arrow_down:", "Downgrade dependencies."},
	{":arrow_up:", "Upgrade dependencies."},
	{":construction_worker:", "Add or update CI build system."},
	{":recycle:", "Refactor code."},
	{":heavy_plus_sign:", "Add a dependency."},
	{":heavy_minus_sign:", "Remove a dependency."},
	{":wrench:", "Add or update configuration files."},
	{":globe_with_meridians:", "Internationalization and localization."},
	{":pencil2:", "Fix typos."},
	{":rewind:", "Revert changes."},
	{":truck:", "Move or rename resources (e.g.: files, paths, routes)."},
	{":boom:", "Introduce breaking changes."},
	{":label:", "Add or update types."},
	{":goal_net:", "Catch errors."},
	{":coffin:", "Remove dead code."},
	{":safety_vest:", "Add or update code related to validation."},
}

var commitFormats = map[config.CommitType]string{
	config.CommitTypeNone:         "<commit message>",
	config.CommitTypeConventional: "<type>(<optional scope>): <commit message>",
	config.CommitTypeGitmoji:      "<emoji>(<optional scope>) <commit message>",
}

const commitPromptTemplate = `Generate a concise git commit message written in present tense for the code diff that will be provided next. Write a single paragraph and do not preface the message with anything: your entire response will be passed directly into git commit.
Message language: {{.Locale}}
Commit message must be a maximum of {{.MaxLength}} characters.
Exclude anything unnecessary such as translation or explanations.
{{- if .Catalog}}
Choose a type from the type-to-description JSON below that best describes the git diff:
{{.Catalog}}
{{- end}}
The output response must be in format:
{{.Format}}`

const prPromptTemplate = `Generate a pull request title and description for the branch diff that will be provided next. Do not preface the response with anything: your entire response will be used as the pull request as is.
Message language: {{.Locale}}
The first line is the title: present tense, a maximum of 72 characters, no trailing period.
Leave one blank line after the title, then write the description in markdown: a short summary of what changed and why, followed by a bullet list of the notable changes.
Only describe changes that are present in the diff.`

const reviewPromptTemplate = `Review the code changes in the diff that will be provided next, as a senior engineer reviewing a pull request. Do not preface the response with anything.
Message language: {{.Locale}}
Write the review in markdown. Start with a one paragraph summary of the change.
Then list the findings as bullets, most important first. Each finding names the file, explains the problem (bugs, missing error handling, security issues, unclear naming, missing tests) and suggests a fix.
Only comment on lines that are present in the diff. If there is nothing worth changing, say so in one sentence.`

// promptData holds the parameters for template rendering
type promptData struct {
	Locale    string
	MaxLength int
	Catalog   string
	Format    string
}

// RenderPrompt renders a prompt template with the provided data
func RenderPrompt(name, tmplStr string, data interface{}) (string, error) {
	tmpl, err := template.New(name).Parse(tmplStr)
	if err != nil {
		return "", fmt.Errorf("error parsing template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("error executing template %s: %w", name, err)
	}

	return buf.String(), nil
}

// BuildCommitPrompt returns the instruction for a commit message. It is pure: the same
// arguments always produce the same text. The diff is attached by the caller.
func BuildCommitPrompt(locale string, maxLength int, commitType config.CommitType) models.Prompt {
	catalog := catalogFor(commitType)

	data := promptData{
		Locale:    locale,
		MaxLength: maxLength,
		Format:    commitFormats[commitType],
	}
	if catalog != nil {
		data.Catalog = renderCatalog(catalog)
	}

	// The templates are constants, a failure here is a programming error.
	instruction, err := RenderPrompt("commit", commitPromptTemplate, data)
	if err != nil {
		panic(err)
	}

	return models.Prompt{
		SystemInstruction: instruction,
		TypeCatalog:       catalogMap(catalog),
	}
}

// BuildPullRequestPrompt returns the instruction for a pull request title and body.
func BuildPullRequestPrompt(locale string) models.Prompt {
	instruction, err := RenderPrompt("pull_request", prPromptTemplate, promptData{Locale: locale})
	if err != nil {
		panic(err)
	}
	return models.Prompt{SystemInstruction: instruction}
}

// BuildReviewPrompt returns the instruction for a code review of a branch diff.
func BuildReviewPrompt(locale string) models.Prompt {
	instruction, err := RenderPrompt("review", reviewPromptTemplate, promptData{Locale: locale})
	if err != nil {
		panic(err)
	}
	return models.Prompt{SystemInstruction: instruction}
}

func catalogFor(commitType config.CommitType) []catalogEntry {
	switch commitType {
	case config.CommitTypeConventional:
		return conventionalCatalog
	case config.CommitTypeGitmoji:
		return gitmojiCatalog
	default:
		return nil
	}
}

func catalogMap(entries []catalogEntry) map[string]string {
	if entries == nil {
		return nil
	}
	m := make(map[string]string, len(entries))
	for _, e := range entries {
		m[e.Code] = e.Description
	}
	return m
}

// renderCatalog writes the catalog as an indented JSON object, keeping entry order.
func renderCatalog(entries []catalogEntry) string {
	var b strings.Builder
	b.WriteString("{\n")
	for i, e := range entries {
		code, _ := json.Marshal(e.Code)
		desc, _ := json.Marshal(e.Description)
		b.WriteString("  ")
		b.Write(code)
		b.WriteString(": ")
		b.Write(desc)
		if i < len(entries)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString("}")
	return b.String()
}
