package prompts

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"ppt-video-pipeline/types"
)

// File serves prompts from a pre-computed JSON file, typically produced by a
// vision model analyzing the rendered slides ahead of time. Two layouts are
// accepted:
//
//	{"preview": "...", "transitions": {"1-2": "...", "2-3": "..."}}
//
// or a flat map of pair keys:
//
//	{"1-2": "...", "2-3": "..."}
type File struct {
	path        string
	preview     string
	transitions map[string]string
}

type promptsFile struct {
	Preview     string            `json:"preview"`
	Transitions map[string]string `json:"transitions"`
}

// NewFile loads and validates a prompts JSON file.
func NewFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prompts file: %w", err)
	}

	var structured promptsFile
	if err := json.Unmarshal(data, &structured); err == nil && len(structured.Transitions) > 0 {
		log.Printf("[prompts] Loaded %d transition prompt(s) from %s", len(structured.Transitions), path)
		return &File{path: path, preview: structured.Preview, transitions: structured.Transitions}, nil
	}

	var flat map[string]string
	if err := json.Unmarshal(data, &flat); err != nil {
		return nil, fmt.Errorf("parse prompts file %s: %w", path, err)
	}
	preview := flat["preview"]
	delete(flat, "preview")
	if len(flat) == 0 {
		return nil, fmt.Errorf("prompts file %s contains no transition prompts", path)
	}

	log.Printf("[prompts] Loaded %d transition prompt(s) from %s", len(flat), path)
	return &File{path: path, preview: preview, transitions: flat}, nil
}

func (f *File) TransitionPrompt(_ context.Context, req TransitionRequest) (string, error) {
	key := types.PairKey(req.FromIndex, req.ToIndex)
	prompt, ok := f.transitions[key]
	if !ok {
		return "", &KeyNotFoundError{Key: key, File: f.path}
	}
	return prompt, nil
}

// PreviewPrompt returns the file's preview entry, falling back to the generic
// template when the file has none.
func (f *File) PreviewPrompt(ctx context.Context, framePath string) (string, error) {
	if f.preview != "" {
		return f.preview, nil
	}
	return NewStatic().PreviewPrompt(ctx, framePath)
}
