// Package materials drives the video generation batch: one optional looping
// preview plus N-1 slide transitions, fanned out under a bounded worker pool.
// Individual job failures are recorded, never propagated; only structural
// precondition violations abort a batch.
package materials

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"ppt-video-pipeline/kling"
	"ppt-video-pipeline/prompts"
	"ppt-video-pipeline/types"
)

const DefaultMaxConcurrent = 3

// Error kinds recorded on failed transition results.
const (
	KindConfig       = "config"
	KindPromptLookup = "prompt_lookup"
	KindRequest      = "request"
	KindTask         = "task"
	KindTimeout      = "timeout"
	KindOther        = "other"
)

// VideoClient is the slice of the video API the scheduler needs. Tests
// substitute a double that returns canned artifacts.
type VideoClient interface {
	GenerateAndDownload(ctx context.Context, req kling.TaskRequest, outputPath string) (string, error)
}

// Options tune one batch.
type Options struct {
	Model         string
	Duration      string // "5" | "10"
	Mode          string // std | pro
	MaxConcurrent int
	SkipPreview   bool
}

func (o *Options) normalize() {
	if o.Model == "" {
		o.Model = kling.DefaultModel
	}
	if o.Duration == "" {
		o.Duration = kling.DefaultDuration
	}
	if o.Mode == "" {
		o.Mode = "pro"
	}
	if o.MaxConcurrent <= 0 {
		o.MaxConcurrent = DefaultMaxConcurrent
	}
}

// Generator produces all video materials for one presentation.
type Generator struct {
	client  VideoClient
	prompts prompts.Source
}

func New(client VideoClient, source prompts.Source) (*Generator, error) {
	if client == nil {
		return nil, fmt.Errorf("materials: video client is required")
	}
	if source == nil {
		return nil, fmt.Errorf("materials: prompt source is required")
	}
	return &Generator{client: client, prompts: source}, nil
}

type transitionTask struct {
	from       types.Slide
	to         types.Slide
	outputPath string
	context    string
}

// GeneratePreview creates the looping preview video for the first slide
// (same start and end frame).
func (g *Generator) GeneratePreview(ctx context.Context, first types.Slide, outputDir string, opts Options) (*types.PreviewResult, error) {
	opts.normalize()

	log.Println("[materials] Generating preview video...")

	prompt, err := g.prompts.PreviewPrompt(ctx, first.ImagePath)
	if err != nil {
		return nil, fmt.Errorf("preview prompt: %w", err)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, err
	}
	outputPath := filepath.Join(outputDir, "preview.mp4")

	start := time.Now()
	_, err = g.client.GenerateAndDownload(ctx, kling.TaskRequest{
		Model:      opts.Model,
		ImageStart: first.ImagePath,
		ImageEnd:   first.ImagePath, // same frame so the clip loops
		Prompt:     prompt,
		Duration:   opts.Duration,
		Mode:       opts.Mode,
	}, outputPath)
	if err != nil {
		return nil, err
	}

	elapsed := int(time.Since(start).Seconds())
	log.Printf("[materials] ✅ Preview video ready (%ds): %s", elapsed, outputPath)

	return &types.PreviewResult{
		VideoPath: outputPath,
		Prompt:    prompt,
		Duration:  elapsed,
	}, nil
}

// GenerateTransitions runs all N-1 transition jobs under the concurrency
// ceiling and returns one terminal result per pair key. Completion order is
// non-deterministic; the map is keyed by pair identity.
func (g *Generator) GenerateTransitions(ctx context.Context, slides []types.Slide, outputDir string, opts Options) (map[string]*types.TransitionResult, error) {
	opts.normalize()

	if len(slides) < 2 {
		return nil, fmt.Errorf("materials: need at least 2 slides, got %d", len(slides))
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, err
	}

	tasks := make([]transitionTask, 0, len(slides)-1)
	for i := 0; i < len(slides)-1; i++ {
		from, to := slides[i], slides[i+1]
		tasks = append(tasks, transitionTask{
			from:       from,
			to:         to,
			outputPath: filepath.Join(outputDir, fmt.Sprintf("transition_%02d_to_%02d.mp4", from.Index, to.Index)),
			context:    fmt.Sprintf("Transition from slide %d to slide %d", from.Index, to.Index),
		})
	}

	estMin := len(tasks) * 100 / opts.MaxConcurrent
	estMax := len(tasks) * 120 / opts.MaxConcurrent
	log.Printf("[materials] %d transition(s), max concurrent %d, estimated %d-%ds",
		len(tasks), opts.MaxConcurrent, estMin, estMax)

	// Each worker writes exactly one result for its own key; results flow
	// through a channel into a single collector instead of a shared map.
	results := make(map[string]*types.TransitionResult, len(tasks))
	resultCh := make(chan *types.TransitionResult)
	collectorDone := make(chan struct{})

	start := time.Now()
	failed := 0

	go func() {
		defer close(collectorDone)
		completed := 0
		for r := range resultCh {
			results[r.FromTo] = r
			completed++
			if r.Success {
				log.Printf("[materials]   [%d/%d] transition %s complete (%ds)",
					completed, len(tasks), r.FromTo, r.Duration)
			} else {
				failed++
				log.Printf("[materials]   [%d/%d] transition %s failed: %s",
					completed, len(tasks), r.FromTo, r.Error)
			}
		}
	}()

	var pool errgroup.Group
	pool.SetLimit(opts.MaxConcurrent)
	for _, task := range tasks {
		task := task
		pool.Go(func() error {
			resultCh <- g.runTransition(ctx, task, opts)
			return nil
		})
	}
	_ = pool.Wait()
	close(resultCh)
	<-collectorDone

	// Interruption is not a per-job outcome; whatever was recorded so far is
	// discarded and the cancellation surfaces to the caller.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	elapsed := int(time.Since(start).Seconds())
	log.Printf("[materials] Transitions done in %ds: %d success, %d failed",
		elapsed, len(tasks)-failed, failed)

	return results, nil
}

// runTransition executes one full job: prompt → submit → poll → download.
// All failures fold into a terminal failed result with a captured message.
func (g *Generator) runTransition(ctx context.Context, task transitionTask, opts Options) *types.TransitionResult {
	key := types.PairKey(task.from.Index, task.to.Index)

	prompt, err := g.prompts.TransitionPrompt(ctx, prompts.TransitionRequest{
		FromIndex: task.from.Index,
		ToIndex:   task.to.Index,
		StartPath: task.from.ImagePath,
		EndPath:   task.to.ImagePath,
		Context:   task.context,
	})
	if err != nil {
		return &types.TransitionResult{
			FromTo:    key,
			VideoPath: task.outputPath,
			Error:     err.Error(),
			ErrorKind: errorKind(err),
		}
	}

	start := time.Now()
	_, err = g.client.GenerateAndDownload(ctx, kling.TaskRequest{
		Model:      opts.Model,
		ImageStart: task.from.ImagePath,
		ImageEnd:   task.to.ImagePath,
		Prompt:     prompt,
		Duration:   opts.Duration,
		Mode:       opts.Mode,
	}, task.outputPath)
	if err != nil {
		return &types.TransitionResult{
			FromTo:    key,
			VideoPath: task.outputPath,
			Prompt:    prompt,
			Error:     err.Error(),
			ErrorKind: errorKind(err),
		}
	}

	return &types.TransitionResult{
		FromTo:    key,
		VideoPath: task.outputPath,
		Prompt:    prompt,
		Duration:  int(time.Since(start).Seconds()),
		Success:   true,
	}
}

// GenerateAll produces the complete materials batch: preview first (failure
// recorded, not fatal), then all transitions, then the persisted aggregate.
func (g *Generator) GenerateAll(ctx context.Context, slides []types.Slide, outputDir string, opts Options) (*types.MaterialsResult, error) {
	opts.normalize()

	if len(slides) < 2 {
		return nil, fmt.Errorf("materials: need at least 2 slides, got %d", len(slides))
	}

	log.Printf("[materials] Generating all materials: %d slides, %d transitions",
		len(slides), len(slides)-1)

	totalStart := time.Now()
	result := &types.MaterialsResult{
		Transitions: map[string]*types.TransitionResult{},
	}

	if opts.SkipPreview {
		log.Println("[materials] Skipping preview video")
	} else {
		preview, err := g.GeneratePreview(ctx, slides[0], outputDir, opts)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil, err
			}
			log.Printf("[materials] ⚠️  Preview generation failed, continuing: %v", err)
			result.FailedCount++
		} else {
			result.Preview = preview
			result.SuccessCount++
		}
	}

	transitions, err := g.GenerateTransitions(ctx, slides, outputDir, opts)
	if err != nil {
		return nil, err
	}
	result.Transitions = transitions

	for _, r := range transitions {
		if r.Success {
			result.SuccessCount++
		} else {
			result.FailedCount++
		}
	}
	result.TotalDuration = int(time.Since(totalStart).Seconds())

	if _, err := SaveMetadata(outputDir, result); err != nil {
		log.Printf("[materials] ⚠️  Could not save metadata: %v", err)
	}

	log.Printf("[materials] ✅ Batch complete in %ds: %d success, %d failed",
		result.TotalDuration, result.SuccessCount, result.FailedCount)

	return result, nil
}

// errorKind maps an error to the taxonomy recorded in metadata. A prompt
// lookup miss is distinguished from provider faults: it means the prompts
// file is incomplete upstream.
func errorKind(err error) string {
	var (
		configErr  *kling.ConfigError
		lookupErr  *prompts.KeyNotFoundError
		reqErr     *kling.RequestError
		taskErr    *kling.TaskError
		timeoutErr *kling.TimeoutError
	)
	switch {
	case errors.As(err, &configErr):
		return KindConfig
	case errors.As(err, &lookupErr):
		return KindPromptLookup
	case errors.As(err, &reqErr):
		return KindRequest
	case errors.As(err, &taskErr):
		return KindTask
	case errors.As(err, &timeoutErr):
		return KindTimeout
	default:
		return KindOther
	}
}
