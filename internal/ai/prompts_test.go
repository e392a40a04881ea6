package ai

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thomas-vilte/aicommits/internal/config"
)

func TestBuildCommitPrompt(t *testing.T) {
	t.Run("plain commits have the three clauses in order and no catalog", func(t *testing.T) {
		// Act
		prompt := BuildCommitPrompt("en", 50, config.CommitTypeNone)

		// Assert
		lines := strings.Split(prompt.SystemInstruction, "\n")
		require.GreaterOrEqual(t, len(lines), 3)
		assert.Contains(t, lines[0], "present tense")
		assert.Contains(t, lines[0], "do not preface")
		assert.Equal(t, "Message language: en", lines[1])
		assert.Equal(t, "Commit message must be a maximum of 50 characters.", lines[2])
		assert.NotContains(t, prompt.SystemInstruction, "type-to-description")
		assert.True(t, strings.HasSuffix(prompt.SystemInstruction, "The output response must be in format:\n<commit message>"))
		assert.Nil(t, prompt.TypeCatalog)
		assert.Empty(t, prompt.Diff)
	})

	t.Run("conventional commits carry the catalog and template", func(t *testing.T) {
		// Act
		prompt := BuildCommitPrompt("es", 72, config.CommitTypeConventional)

		// Assert
		assert.Contains(t, prompt.SystemInstruction, "Message language: es")
		assert.Contains(t, prompt.SystemInstruction, "<type>(<optional scope>): <commit message>")
		assert.Contains(t, prompt.SystemInstruction, `"refactor": "A code change that neither fixes a bug nor adds a feature"`)
		assert.Len(t, prompt.TypeCatalog, 11)
		assert.Equal(t, "A new feature", prompt.TypeCatalog["feat"])

		docs := strings.Index(prompt.SystemInstruction, `"docs"`)
		feat := strings.Index(prompt.SystemInstruction, `"feat"`)
		assert.Less(t, docs, feat, "feat should be listed after the specific types")
	})

	t.Run("gitmoji commits use the emoji catalog", func(t *testing.T) {
		// Act
		prompt := BuildCommitPrompt("en", 50, config.CommitTypeGitmoji)

		// Assert
		assert.Contains(t, prompt.SystemInstruction, "<emoji>(<optional scope>) <commit message>")
		assert.Equal(t, "Fix a bug.", prompt.TypeCatalog[":bug:"])
		assert.NotContains(t, prompt.SystemInstruction, `"chore"`)
	})

	t.Run("the rendered catalog is valid JSON", func(t *testing.T) {
		// Act
		rendered := renderCatalog(conventionalCatalog)

		// Assert
		var decoded map[string]string
		require.NoError(t, json.Unmarshal([]byte(rendered), &decoded))
		assert.Equal(t, catalogMap(conventionalCatalog), decoded)
	})

	t.Run("is deterministic", func(t *testing.T) {
		first := BuildCommitPrompt("en", 50, config.CommitTypeConventional)
		second := BuildCommitPrompt("en", 50, config.CommitTypeConventional)

		assert.Equal(t, first.SystemInstruction, second.SystemInstruction)
	})
}

func TestBuildPullRequestPrompt(t *testing.T) {
	prompt := BuildPullRequestPrompt("pt-BR")

	assert.Contains(t, prompt.SystemInstruction, "Message language: pt-BR")
	assert.Contains(t, prompt.SystemInstruction, "first line is the title")
	assert.Nil(t, prompt.TypeCatalog)
}

func TestBuildReviewPrompt(t *testing.T) {
	prompt := BuildReviewPrompt("es")

	assert.Contains(t, prompt.SystemInstruction, "Message language: es")
	assert.Contains(t, prompt.SystemInstruction, "Only comment on lines that are present in the diff")
	assert.NotContains(t, prompt.SystemInstruction, "{{")
	assert.Nil(t, prompt.TypeCatalog)
	assert.Equal(t, prompt, BuildReviewPrompt("es"))
}

func TestRenderPrompt(t *testing.T) {
	t.Run("renders data", func(t *testing.T) {
		out, err := RenderPrompt("t", "Hello {{.Locale}}", promptData{Locale: "fr"})

		require.NoError(t, err)
		assert.Equal(t, "Hello fr", out)
	})

	t.Run("reports parse errors", func(t *testing.T) {
		_, err := RenderPrompt("broken", "{{.Locale", promptData{})

		assert.Error(t, err)
	})
}
