package materials

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ppt-video-pipeline/kling"
	"ppt-video-pipeline/prompts"
	"ppt-video-pipeline/types"
)

// fakeClient is a canned video provider. Behavior is keyed by the start
// frame path so individual jobs can be made to fail.
type fakeClient struct {
	mu        sync.Mutex
	calls     map[string]int // start frame path -> call count
	failFor   map[string]error
	delay     time.Duration
	inflight  atomic.Int32
	maxSeen   atomic.Int32
	writeFile bool
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		calls:   map[string]int{},
		failFor: map[string]error{},
	}
}

func (f *fakeClient) GenerateAndDownload(ctx context.Context, req kling.TaskRequest, outputPath string) (string, error) {
	n := f.inflight.Add(1)
	for {
		seen := f.maxSeen.Load()
		if n <= seen || f.maxSeen.CompareAndSwap(seen, n) {
			break
		}
	}
	defer f.inflight.Add(-1)

	f.mu.Lock()
	f.calls[req.ImageStart]++
	err := f.failFor[req.ImageStart]
	f.mu.Unlock()

	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if err != nil {
		return "", err
	}
	if f.writeFile {
		if err := os.WriteFile(outputPath, []byte("video"), 0644); err != nil {
			return "", err
		}
	}
	return outputPath, nil
}

func (f *fakeClient) callCount(startPath string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[startPath]
}

func testSlides(t *testing.T, n int) []types.Slide {
	t.Helper()
	dir := t.TempDir()
	slides := make([]types.Slide, n)
	for i := range slides {
		path := filepath.Join(dir, fmt.Sprintf("slide-%02d.png", i+1))
		require.NoError(t, os.WriteFile(path, []byte("png"), 0644))
		slides[i] = types.Slide{Index: i + 1, ImagePath: path}
	}
	return slides
}

func TestGenerateTransitions_OneResultPerPair(t *testing.T) {
	client := newFakeClient()
	gen, err := New(client, prompts.NewStatic())
	require.NoError(t, err)

	slides := testSlides(t, 5)
	results, err := gen.GenerateTransitions(context.Background(), slides, t.TempDir(), Options{})
	require.NoError(t, err)

	require.Len(t, results, 4)
	for _, key := range []string{"1-2", "2-3", "3-4", "4-5"} {
		r, ok := results[key]
		require.True(t, ok, "missing key %s", key)
		assert.Equal(t, key, r.FromTo)
		assert.True(t, r.Success)
		assert.NotEmpty(t, r.Prompt)
	}
}

func TestGenerateTransitions_ConcurrencyCeiling(t *testing.T) {
	client := newFakeClient()
	client.delay = 20 * time.Millisecond

	gen, err := New(client, prompts.NewStatic())
	require.NoError(t, err)

	slides := testSlides(t, 10)
	results, err := gen.GenerateTransitions(context.Background(), slides, t.TempDir(), Options{MaxConcurrent: 3})
	require.NoError(t, err)

	assert.Len(t, results, 9)
	assert.LessOrEqual(t, client.maxSeen.Load(), int32(3),
		"more than max_concurrent jobs held a provider task at once")
}

func TestGenerateTransitions_PartialFailure(t *testing.T) {
	slides := testSlides(t, 4)

	client := newFakeClient()
	client.failFor[slides[1].ImagePath] = &kling.TaskError{TaskID: "t-23", Message: "provider exploded"}

	gen, err := New(client, prompts.NewStatic())
	require.NoError(t, err)

	results, err := gen.GenerateTransitions(context.Background(), slides, t.TempDir(), Options{})
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.True(t, results["1-2"].Success)
	assert.True(t, results["3-4"].Success)

	failed := results["2-3"]
	assert.False(t, failed.Success)
	assert.Contains(t, failed.Error, "provider exploded")
	assert.Equal(t, KindTask, failed.ErrorKind)
}

func TestGenerateTransitions_TimeoutKind(t *testing.T) {
	slides := testSlides(t, 2)

	client := newFakeClient()
	client.failFor[slides[0].ImagePath] = &kling.TimeoutError{TaskID: "t-12", Elapsed: 300 * time.Second}

	gen, err := New(client, prompts.NewStatic())
	require.NoError(t, err)

	results, err := gen.GenerateTransitions(context.Background(), slides, t.TempDir(), Options{})
	require.NoError(t, err)

	r := results["1-2"]
	require.False(t, r.Success)
	assert.Equal(t, KindTimeout, r.ErrorKind)
}

func TestGenerateTransitions_MissingPromptKeySkipsProvider(t *testing.T) {
	slides := testSlides(t, 4)

	// Prompts file covers 1-2 and 3-4 but not 2-3.
	promptsPath := filepath.Join(t.TempDir(), "transition_prompts.json")
	require.NoError(t, os.WriteFile(promptsPath,
		[]byte(`{"transitions": {"1-2": "fade", "3-4": "dissolve"}}`), 0644))
	source, err := prompts.NewFile(promptsPath)
	require.NoError(t, err)

	client := newFakeClient()
	gen, err := New(client, source)
	require.NoError(t, err)

	results, err := gen.GenerateTransitions(context.Background(), slides, t.TempDir(), Options{})
	require.NoError(t, err)

	r := results["2-3"]
	require.False(t, r.Success)
	assert.Equal(t, KindPromptLookup, r.ErrorKind)
	assert.Contains(t, r.Error, "2-3")

	// The lookup failure must be recorded before any provider call for
	// that pair is attempted.
	assert.Zero(t, client.callCount(slides[1].ImagePath))
	assert.Equal(t, 1, client.callCount(slides[0].ImagePath))
}

func TestGenerateAll_PreviewFailureDoesNotAbort(t *testing.T) {
	slides := testSlides(t, 3)

	client := newFakeClient()
	// The preview job starts from the first slide with itself as end frame.
	client.failFor[slides[0].ImagePath] = &kling.RequestError{Action: "create task", HTTPStatus: 500, Message: "boom"}

	gen, err := New(client, prompts.NewStatic())
	require.NoError(t, err)

	result, err := gen.GenerateAll(context.Background(), slides, t.TempDir(), Options{})
	require.NoError(t, err)

	assert.Nil(t, result.Preview)
	require.Len(t, result.Transitions, 2)
	// Transition 1-2 shares the first slide's start frame, so it fails too;
	// transition 2-3 is unaffected.
	assert.False(t, result.Transitions["1-2"].Success)
	assert.True(t, result.Transitions["2-3"].Success)
	assert.Equal(t, 1, result.SuccessCount)
	assert.Equal(t, 2, result.FailedCount)
}

func TestGenerateAll_SkipPreview(t *testing.T) {
	slides := testSlides(t, 2)
	client := newFakeClient()

	gen, err := New(client, prompts.NewStatic())
	require.NoError(t, err)

	result, err := gen.GenerateAll(context.Background(), slides, t.TempDir(), Options{SkipPreview: true})
	require.NoError(t, err)

	assert.Nil(t, result.Preview)
	assert.Equal(t, 1, result.SuccessCount)
	assert.Zero(t, result.FailedCount)
}

func TestGenerateAll_CanceledContextPropagates(t *testing.T) {
	slides := testSlides(t, 3)

	gen, err := New(newFakeClient(), prompts.NewStatic())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := gen.GenerateAll(ctx, slides, t.TempDir(), Options{})
	assert.ErrorIs(t, err, context.Canceled,
		"interruption must surface to the caller, not fold into job results")
	assert.Nil(t, result)
}

func TestGenerateTransitions_CanceledMidBatch(t *testing.T) {
	slides := testSlides(t, 4)

	client := newFakeClient()
	client.delay = 20 * time.Millisecond

	gen, err := New(client, prompts.NewStatic())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(5 * time.Millisecond)
		cancel()
	}()

	_, err = gen.GenerateTransitions(ctx, slides, t.TempDir(), Options{MaxConcurrent: 1})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGenerateAll_RejectsTooFewSlides(t *testing.T) {
	gen, err := New(newFakeClient(), prompts.NewStatic())
	require.NoError(t, err)

	_, err = gen.GenerateAll(context.Background(), testSlides(t, 1), t.TempDir(), Options{})
	assert.Error(t, err)
}

func TestNew_RequiresClientAndSource(t *testing.T) {
	if _, err := New(nil, prompts.NewStatic()); err == nil {
		t.Fatal("expected error for nil client")
	}
	if _, err := New(newFakeClient(), nil); err == nil {
		t.Fatal("expected error for nil prompt source")
	}
}

func TestMetadataRoundTrip(t *testing.T) {
	dir := t.TempDir()
	original := &types.MaterialsResult{
		Preview: &types.PreviewResult{VideoPath: "videos/preview.mp4", Prompt: "loop", Duration: 90},
		Transitions: map[string]*types.TransitionResult{
			"1-2": {FromTo: "1-2", VideoPath: "videos/transition_01_to_02.mp4", Prompt: "fade", Duration: 100, Success: true},
			"2-3": {FromTo: "2-3", VideoPath: "videos/transition_02_to_03.mp4", Error: "timed out", ErrorKind: KindTimeout},
		},
		TotalDuration: 210,
		SuccessCount:  2,
		FailedCount:   1,
	}

	path, err := SaveMetadata(dir, original)
	require.NoError(t, err)

	loaded, err := LoadMetadata(path)
	require.NoError(t, err)
	assert.Equal(t, original, loaded)
}
