package models

type (
	// BranchChange is the diff of a feature branch against its trunk.
	BranchChange struct {
		Head  string
		Base  string
		Files []string
		Diff  string
	}

	// PRDraft is a generated pull request title and body.
	PRDraft struct {
		Title string
		Body  string
	}

	// PullRequestInput is what the hosting service needs to open a pull request.
	PullRequestInput struct {
		Head  string
		Base  string
		Title string
		Body  string
		Draft bool
	}

	// PullRequest is a pull request as created on the hosting service.
	PullRequest struct {
		Number int
		URL    string
	}
)
