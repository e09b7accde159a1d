package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ppt-video-pipeline/compose"
	"ppt-video-pipeline/prompts"
)

func TestExitStatus_CompositionFailureDeferredToEnd(t *testing.T) {
	assert.Equal(t, 0, exitStatus(nil))
	assert.Equal(t, 1, exitStatus(&compose.ToolError{Stage: "concat 5 clips (normalized)", Message: "exit status 1"}))
}

func TestBuildPromptSource(t *testing.T) {
	src, err := buildPromptSource("", "")
	require.NoError(t, err)
	assert.IsType(t, &prompts.Static{}, src)

	_, err = buildPromptSource(filepath.Join(t.TempDir(), "absent.json"), "")
	assert.Error(t, err)
}
