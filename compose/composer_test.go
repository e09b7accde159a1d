package compose

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRunFFmpeg_ParentCancellationKeepsIdentity(t *testing.T) {
	c := &Composer{ffmpegPath: "ffmpeg-not-on-this-system", timeout: time.Second}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.runFFmpeg(ctx, "concat 2 clips (normalized)", "-version")
	assert.ErrorIs(t, err, context.Canceled,
		"interruption must not be repackaged as a tool failure")
}

func TestRunFFmpeg_MissingBinaryIsToolError(t *testing.T) {
	c := &Composer{ffmpegPath: "ffmpeg-not-on-this-system", timeout: time.Second}

	err := c.runFFmpeg(context.Background(), "static clip", "-version")
	var toolErr *ToolError
	assert.ErrorAs(t, err, &toolErr)
	assert.Equal(t, "static clip", toolErr.Stage)
	assert.NotEmpty(t, toolErr.Message)
}
