package compose

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ppt-video-pipeline/types"
)

func fourSlides() []types.Slide {
	return []types.Slide{
		{Index: 1, ImagePath: "images/slide-01.png"},
		{Index: 2, ImagePath: "images/slide-02.png"},
		{Index: 3, ImagePath: "images/slide-03.png"},
		{Index: 4, ImagePath: "images/slide-04.png"},
	}
}

func staticsFor(slides []types.Slide) map[int]string {
	statics := map[int]string{}
	for _, s := range slides[1:] {
		statics[s.Index] = "tmp/static-" + s.ImagePath
	}
	return statics
}

func describe(plan []Clip) []string {
	out := make([]string, len(plan))
	for i, c := range plan {
		if c.Key == "" {
			out[i] = c.Kind
		} else {
			out[i] = c.Kind + "(" + c.Key + ")"
		}
	}
	return out
}

func TestBuildSequence_AllTransitionsWithPreview(t *testing.T) {
	slides := fourSlides()
	transitions := map[string]string{
		"1-2": "videos/t12.mp4",
		"2-3": "videos/t23.mp4",
		"3-4": "videos/t34.mp4",
	}

	plan := BuildSequence(slides, transitions, staticsFor(slides), "videos/preview.mp4")

	assert.Equal(t, []string{
		"preview",
		"transition(1-2)", "static(2)",
		"transition(2-3)", "static(3)",
		"transition(3-4)", "static(4)",
	}, describe(plan))
}

func TestBuildSequence_MissingTransitionKeepsArrivalStatic(t *testing.T) {
	slides := fourSlides()
	transitions := map[string]string{
		"1-2": "videos/t12.mp4",
		"3-4": "videos/t34.mp4",
	}

	plan := BuildSequence(slides, transitions, staticsFor(slides), "videos/preview.mp4")

	// transition(2-3) is omitted, static(3) keeps its position
	assert.Equal(t, []string{
		"preview",
		"transition(1-2)", "static(2)",
		"static(3)",
		"transition(3-4)", "static(4)",
	}, describe(plan))
}

func TestBuildSequence_NoPreview(t *testing.T) {
	slides := fourSlides()
	plan := BuildSequence(slides, map[string]string{}, staticsFor(slides), "")

	assert.Equal(t, []string{"static(2)", "static(3)", "static(4)"}, describe(plan))
}

func TestBuildSequence_ClipCountInvariant(t *testing.T) {
	slides := fourSlides()
	transitions := map[string]string{"1-2": "a", "2-3": "b"}
	plan := BuildSequence(slides, transitions, staticsFor(slides), "")

	// one static per arrival slide plus one clip per successful transition
	assert.Len(t, plan, (len(slides)-1)+len(transitions))
}

func TestSplitResolution(t *testing.T) {
	w, h, err := splitResolution("1920x1080")
	assert.NoError(t, err)
	assert.Equal(t, "1920", w)
	assert.Equal(t, "1080", h)

	_, _, err = splitResolution("1080p")
	assert.Error(t, err)
}
