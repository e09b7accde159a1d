package compose

import (
	"strconv"

	"ppt-video-pipeline/types"
)

// Clip kinds in a render plan.
const (
	ClipPreview    = "preview"
	ClipTransition = "transition"
	ClipStatic     = "static"
)

// Clip is one entry in the final render plan.
type Clip struct {
	Kind string
	Key  string // pair key for transitions, slide index for statics
	Path string
}

// BuildSequence deterministically linearizes the render plan: optional
// preview, then for each slide pair in index order the transition clip (when
// one succeeded) followed by the arrival slide's static clip. A missing
// transition is omitted without shifting the arrival slide's position.
func BuildSequence(slides []types.Slide, transitions map[string]string, statics map[int]string, previewPath string) []Clip {
	var plan []Clip

	if previewPath != "" {
		plan = append(plan, Clip{Kind: ClipPreview, Path: previewPath})
	}

	for i := 0; i < len(slides)-1; i++ {
		from, to := slides[i], slides[i+1]
		key := types.PairKey(from.Index, to.Index)

		if path, ok := transitions[key]; ok {
			plan = append(plan, Clip{Kind: ClipTransition, Key: key, Path: path})
		}

		if path, ok := statics[to.Index]; ok {
			plan = append(plan, Clip{Kind: ClipStatic, Key: strconv.Itoa(to.Index), Path: path})
		}
	}

	return plan
}
