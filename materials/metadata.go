package materials

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"ppt-video-pipeline/types"
)

const MetadataFile = "video_metadata.json"

// SaveMetadata persists the batch aggregate next to the generated clips.
// The composer depends on this file, not on in-process state.
func SaveMetadata(outputDir string, result *types.MaterialsResult) (string, error) {
	path := filepath.Join(outputDir, MetadataFile)

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal metadata: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("save metadata: %w", err)
	}

	log.Printf("[materials] Metadata saved: %s", path)
	return path, nil
}

// LoadMetadata reads a previously saved batch aggregate.
func LoadMetadata(path string) (*types.MaterialsResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read metadata: %w", err)
	}

	var result types.MaterialsResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("parse metadata %s: %w", path, err)
	}
	if result.Transitions == nil {
		result.Transitions = map[string]*types.TransitionResult{}
	}
	return &result, nil
}
