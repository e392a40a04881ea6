package models

type (
	// StagedChange is a snapshot of the staging area taken for one generation run.
	// A nil *StagedChange means there is nothing to commit.
	StagedChange struct {
		Files []string
		Diff  string
	}

	// Prompt is what gets sent to the completion service.
	// TypeCatalog is nil when no commit type convention is requested.
	Prompt struct {
		SystemInstruction string
		TypeCatalog       map[string]string
		Diff              string
	}

	// CompletionRequest asks a completion backend for Count candidates.
	CompletionRequest struct {
		Prompt    Prompt
		Count     int
		MaxLength int
		Model     string
	}
)
