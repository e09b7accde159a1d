// Package compose turns stills and whichever transition clips succeeded into
// one concatenated video via ffmpeg. Missing transitions are soft gaps; any
// tool failure is a hard abort with the temp working space cleaned up.
package compose

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"ppt-video-pipeline/types"
)

const (
	DefaultResolution    = "1920x1080"
	DefaultFPS           = 24
	DefaultSlideDuration = 5
	DefaultTimeout       = 300 * time.Second
)

// ToolError reports a failed ffmpeg invocation (missing binary, non-zero
// exit, or timeout) and which composition stage it happened in.
type ToolError struct {
	Stage   string
	Message string
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("ffmpeg: %s: %s", e.Stage, e.Message)
}

// Composer drives ffmpeg sequentially; only the materials scheduler is
// parallel, one transcode runs at a time here.
type Composer struct {
	ffmpegPath string
	timeout    time.Duration
}

// New verifies the ffmpeg binary is runnable before any composition starts.
func New(ffmpegPath string, timeout time.Duration) (*Composer, error) {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := &Composer{ffmpegPath: ffmpegPath, timeout: timeout}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	out, err := exec.CommandContext(ctx, ffmpegPath, "-version").Output()
	if err != nil {
		return nil, &ToolError{Stage: "verify", Message: "ffmpeg not found or not runnable: " + err.Error()}
	}
	if first, _, ok := strings.Cut(string(out), "\n"); ok {
		log.Printf("[compose] FFmpeg ready: %s", first)
	}
	return c, nil
}

func (c *Composer) runFFmpeg(ctx context.Context, stage string, args ...string) error {
	runCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, c.ffmpegPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctx.Err() != nil {
		// The caller was interrupted; that is not an ffmpeg fault.
		return ctx.Err()
	}
	if runCtx.Err() == context.DeadlineExceeded {
		return &ToolError{Stage: stage, Message: fmt.Sprintf("timed out after %s", c.timeout)}
	}
	if err != nil {
		msg := tail(stderr.String(), 200)
		if msg == "" {
			msg = err.Error()
		}
		return &ToolError{Stage: stage, Message: msg}
	}
	return nil
}

// CreateStaticVideo loops one still image into a fixed-duration clip,
// letterboxed to the target resolution.
func (c *Composer) CreateStaticVideo(ctx context.Context, imagePath string, durationSec int, outputPath, resolution string, fps int) error {
	if _, err := os.Stat(imagePath); err != nil {
		return fmt.Errorf("source image not found: %s", imagePath)
	}

	width, height, err := splitResolution(resolution)
	if err != nil {
		return err
	}

	args := []string{
		"-y",
		"-loop", "1",
		"-i", imagePath,
		"-c:v", "libx264",
		"-t", fmt.Sprintf("%d", durationSec),
		"-pix_fmt", "yuv420p",
		"-vf", normalizeFilter(width, height),
		"-r", fmt.Sprintf("%d", fps),
		outputPath,
	}

	stage := fmt.Sprintf("static clip (%s, %ds)", filepath.Base(imagePath), durationSec)
	return c.runFFmpeg(ctx, stage, args...)
}

// ConcatVideos joins clips in order. With normalize every input is rescaled,
// padded, and retimed to one parameter set before the concat; the fast
// demuxer path is only valid when all inputs already match.
func (c *Composer) ConcatVideos(ctx context.Context, videos []string, outputPath string, normalize bool, resolution string, fps int) error {
	if len(videos) == 0 {
		return fmt.Errorf("empty video list")
	}
	for _, v := range videos {
		if _, err := os.Stat(v); err != nil {
			return fmt.Errorf("clip not found: %s", v)
		}
	}

	if normalize {
		return c.concatWithFilter(ctx, videos, outputPath, resolution, fps)
	}
	return c.concatWithDemuxer(ctx, videos, outputPath)
}

func (c *Composer) concatWithDemuxer(ctx context.Context, videos []string, outputPath string) error {
	listFile, err := os.CreateTemp("", "concat-*.txt")
	if err != nil {
		return err
	}
	defer os.Remove(listFile.Name())

	var lines []string
	for _, v := range videos {
		abs, err := filepath.Abs(v)
		if err != nil {
			return err
		}
		lines = append(lines, fmt.Sprintf("file '%s'", abs))
	}
	if _, err := listFile.WriteString(strings.Join(lines, "\n")); err != nil {
		listFile.Close()
		return err
	}
	if err := listFile.Close(); err != nil {
		return err
	}

	return c.runFFmpeg(ctx, fmt.Sprintf("concat %d clips (fast)", len(videos)),
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listFile.Name(),
		"-c", "copy",
		outputPath,
	)
}

func (c *Composer) concatWithFilter(ctx context.Context, videos []string, outputPath, resolution string, fps int) error {
	width, height, err := splitResolution(resolution)
	if err != nil {
		return err
	}

	var args []string
	args = append(args, "-y")
	for _, v := range videos {
		args = append(args, "-i", v)
	}

	var filterParts []string
	for i := range videos {
		filterParts = append(filterParts, fmt.Sprintf("[%d:v]%s,fps=%d[v%d]", i, normalizeFilter(width, height), fps, i))
	}

	var concatInputs strings.Builder
	for i := range videos {
		fmt.Fprintf(&concatInputs, "[v%d]", i)
	}
	filterComplex := strings.Join(filterParts, ";") + ";" +
		fmt.Sprintf("%sconcat=n=%d:v=1:a=0[outv]", concatInputs.String(), len(videos))

	args = append(args,
		"-filter_complex", filterComplex,
		"-map", "[outv]",
		"-c:v", "libx264",
		"-preset", "medium",
		"-crf", "23",
		"-pix_fmt", "yuv420p",
		outputPath,
	)

	return c.runFFmpeg(ctx, fmt.Sprintf("concat %d clips (normalized)", len(videos)), args...)
}

// ComposeOptions tune one full composition.
type ComposeOptions struct {
	SlideDurationSec int
	Resolution       string
	FPS              int
	IncludePreview   bool
	PreviewPath      string
	// MaxMissingTransitions aborts composition when more transitions are
	// absent than the threshold allows. Negative disables the check
	// (best-effort composition, the historical behavior).
	MaxMissingTransitions int
}

func (o *ComposeOptions) normalize() {
	if o.SlideDurationSec <= 0 {
		o.SlideDurationSec = DefaultSlideDuration
	}
	if o.Resolution == "" {
		o.Resolution = DefaultResolution
	}
	if o.FPS <= 0 {
		o.FPS = DefaultFPS
	}
}

// ComposeFullVideo builds the final presentation video:
//
//	[preview?] transition(1-2) static(2) transition(2-3) static(3) ...
//
// transitions maps pair keys to successful clip paths; gaps are skipped with
// a log line. Static clips are rendered into a temp dir owned by this call
// and removed on every exit path.
func (c *Composer) ComposeFullVideo(ctx context.Context, slides []types.Slide, transitions map[string]string, outputPath string, opts ComposeOptions) error {
	opts.normalize()

	if len(slides) < 2 {
		return fmt.Errorf("compose: need at least 2 slides, got %d", len(slides))
	}

	log.Printf("[compose] Composing full video: %d slides, %d transition clip(s), %ds per slide",
		len(slides), len(transitions), opts.SlideDurationSec)

	tempDir, err := os.MkdirTemp("", "ppt_video_")
	if err != nil {
		return fmt.Errorf("create temp dir: %w", err)
	}
	defer func() {
		os.RemoveAll(tempDir)
	}()

	// Static clip for every arrival slide, whether or not its incoming
	// transition succeeded.
	statics := make(map[int]string, len(slides)-1)
	for _, slide := range slides[1:] {
		staticPath := filepath.Join(tempDir, fmt.Sprintf("slide-%02d-static.mp4", slide.Index))
		if err := c.CreateStaticVideo(ctx, slide.ImagePath, opts.SlideDurationSec, staticPath, opts.Resolution, opts.FPS); err != nil {
			return fmt.Errorf("static clip for slide %d: %w", slide.Index, err)
		}
		statics[slide.Index] = staticPath
	}
	log.Printf("[compose] Generated %d static clip(s)", len(statics))

	// Drop transition entries whose artifact vanished from disk.
	available := make(map[string]string, len(transitions))
	for key, path := range transitions {
		if _, err := os.Stat(path); err != nil {
			log.Printf("[compose] ⚠️  Transition %s clip missing on disk, skipping: %s", key, path)
			continue
		}
		available[key] = path
	}

	missing := 0
	for i := 0; i < len(slides)-1; i++ {
		key := types.PairKey(slides[i].Index, slides[i+1].Index)
		if _, ok := available[key]; !ok {
			log.Printf("[compose] ⚠️  No transition for %s, slides will cut directly", key)
			missing++
		}
	}
	if opts.MaxMissingTransitions >= 0 && missing > opts.MaxMissingTransitions {
		return fmt.Errorf("compose: %d transition(s) missing exceeds threshold %d", missing, opts.MaxMissingTransitions)
	}

	previewPath := ""
	if opts.IncludePreview && opts.PreviewPath != "" {
		if _, err := os.Stat(opts.PreviewPath); err == nil {
			previewPath = opts.PreviewPath
		} else {
			log.Printf("[compose] ⚠️  Preview clip missing, skipping: %s", opts.PreviewPath)
		}
	}

	plan := BuildSequence(slides, available, statics, previewPath)
	if len(plan) == 0 {
		return fmt.Errorf("compose: no clips to concatenate")
	}
	log.Printf("[compose] Render plan: %d clip(s)", len(plan))

	videos := make([]string, len(plan))
	for i, clip := range plan {
		videos[i] = clip.Path
	}

	// Transition clips and static clips come from different generators, so
	// the default path always normalizes before concatenation.
	if err := c.ConcatVideos(ctx, videos, outputPath, true, opts.Resolution, opts.FPS); err != nil {
		return err
	}

	if info, err := os.Stat(outputPath); err == nil {
		log.Printf("[compose] ✅ Full video ready: %s (%.2f MB, %d clips)",
			outputPath, float64(info.Size())/(1024*1024), len(plan))
	}
	return nil
}

func normalizeFilter(width, height string) string {
	return fmt.Sprintf(
		"scale=%s:%s:force_original_aspect_ratio=decrease,pad=%s:%s:(ow-iw)/2:(oh-ih)/2,setsar=1",
		width, height, width, height)
}

func splitResolution(resolution string) (width, height string, err error) {
	w, h, ok := strings.Cut(resolution, "x")
	if !ok || w == "" || h == "" {
		return "", "", fmt.Errorf("invalid resolution %q, expected WxH", resolution)
	}
	return w, h, nil
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}
