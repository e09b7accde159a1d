// Package prompts produces the textual descriptions fed to the video model:
// a transition prompt bridging two frames, and a looping preview prompt for a
// single frame. Three interchangeable sources implement the same contract.
package prompts

import (
	"context"
	"fmt"
)

// TransitionRequest identifies one slide pair. Indices are the slides' own
// 1-based numbering, never batch-local counters.
type TransitionRequest struct {
	FromIndex int
	ToIndex   int
	StartPath string
	EndPath   string
	Context   string // optional free-form content context
}

// Source generates video prompts for transition and preview jobs. The
// scheduler is indifferent to which variant is active.
type Source interface {
	TransitionPrompt(ctx context.Context, req TransitionRequest) (string, error)

	// PreviewPrompt describes a subtle seamless-loop animation of one frame.
	PreviewPrompt(ctx context.Context, framePath string) (string, error)
}

// KeyNotFoundError means a file-backed source has no prompt for a pair key.
// This is an upstream data-completeness problem, not a provider fault, and is
// reported as its own kind.
type KeyNotFoundError struct {
	Key  string
	File string
}

func (e *KeyNotFoundError) Error() string {
	return fmt.Sprintf("no transition prompt for key %q in %s", e.Key, e.File)
}
