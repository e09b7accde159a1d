package prompts

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePrompts(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prompts.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestNewFile_StructuredLayout(t *testing.T) {
	path := writePrompts(t, `{
		"preview": "cover shimmer",
		"transitions": {"1-2": "glass split", "2-3": "aurora sweep"}
	}`)

	src, err := NewFile(path)
	require.NoError(t, err)

	prompt, err := src.TransitionPrompt(context.Background(), TransitionRequest{FromIndex: 1, ToIndex: 2})
	require.NoError(t, err)
	assert.Equal(t, "glass split", prompt)

	preview, err := src.PreviewPrompt(context.Background(), "slide-01.png")
	require.NoError(t, err)
	assert.Equal(t, "cover shimmer", preview)
}

func TestNewFile_FlatLayout(t *testing.T) {
	path := writePrompts(t, `{"1-2": "dissolve", "preview": "slow drift"}`)

	src, err := NewFile(path)
	require.NoError(t, err)

	prompt, err := src.TransitionPrompt(context.Background(), TransitionRequest{FromIndex: 1, ToIndex: 2})
	require.NoError(t, err)
	assert.Equal(t, "dissolve", prompt)

	// "preview" is lifted out of the flat map, not treated as a pair key
	_, err = src.TransitionPrompt(context.Background(), TransitionRequest{FromIndex: 2, ToIndex: 3})
	var notFound *KeyNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "2-3", notFound.Key)

	preview, err := src.PreviewPrompt(context.Background(), "slide-01.png")
	require.NoError(t, err)
	assert.Equal(t, "slow drift", preview)
}

func TestNewFile_MissingKey(t *testing.T) {
	path := writePrompts(t, `{"transitions": {"1-2": "x"}}`)

	src, err := NewFile(path)
	require.NoError(t, err)

	_, err = src.TransitionPrompt(context.Background(), TransitionRequest{FromIndex: 3, ToIndex: 4})
	var notFound *KeyNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "3-4", notFound.Key)
	assert.Contains(t, notFound.Error(), path)
}

func TestNewFile_PreviewFallsBackToGeneric(t *testing.T) {
	path := writePrompts(t, `{"transitions": {"1-2": "x"}}`)

	src, err := NewFile(path)
	require.NoError(t, err)

	preview, err := src.PreviewPrompt(context.Background(), "slide-01.png")
	require.NoError(t, err)
	assert.Equal(t, defaultPreviewPrompt, preview)
}

func TestNewFile_Invalid(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := NewFile(filepath.Join(t.TempDir(), "absent.json"))
		assert.Error(t, err)
	})

	t.Run("malformed json", func(t *testing.T) {
		_, err := NewFile(writePrompts(t, `{"transitions": [1,2]`))
		assert.Error(t, err)
	})

	t.Run("no transitions", func(t *testing.T) {
		_, err := NewFile(writePrompts(t, `{"preview": "only"}`))
		assert.Error(t, err)
	})
}

func TestStatic_SamePromptForEveryPair(t *testing.T) {
	src := NewStatic()

	a, err := src.TransitionPrompt(context.Background(), TransitionRequest{FromIndex: 1, ToIndex: 2, StartPath: "slide-01.png", EndPath: "slide-02.png"})
	require.NoError(t, err)
	b, err := src.TransitionPrompt(context.Background(), TransitionRequest{FromIndex: 7, ToIndex: 8, StartPath: "slide-07.png", EndPath: "slide-08.png"})
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Contains(t, a, "text content remaining absolutely clear and stable")
}
