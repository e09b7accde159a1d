package types

import "fmt"

// Page types for slide prompt composition
const (
	PageCover   = "cover"
	PageContent = "content"
	PageData    = "data"
)

// Slide is one ordered presentation slide. Index is 1-based and carried
// explicitly through the pipeline; filenames like slide-02.png are an
// export/import concern only.
type Slide struct {
	Index     int    `json:"index"`
	ImagePath string `json:"image_path"`
	PageType  string `json:"page_type"` // cover | content | data
	Content   string `json:"content"`
}

// PairKey names the transition between two slides, e.g. "2-3".
func PairKey(from, to int) string {
	return fmt.Sprintf("%d-%d", from, to)
}

// PlanSlide is one entry in the slide plan JSON produced by the planning stage.
type PlanSlide struct {
	SlideNumber int    `json:"slide_number"`
	PageType    string `json:"page_type"`
	Content     string `json:"content"`
}

// SlidePlan is the input to the image stage.
type SlidePlan struct {
	Title  string      `json:"title"`
	Slides []PlanSlide `json:"slides"`
}

// SlidePrompt records the prompt used for one generated slide image.
type SlidePrompt struct {
	SlideNumber int    `json:"slide_number"`
	PageType    string `json:"page_type"`
	Content     string `json:"content"`
	Prompt      string `json:"prompt"`
	ImagePath   string `json:"image_path"`
}

// PromptsMetadata describes one image-generation run.
type PromptsMetadata struct {
	Title       string `json:"title"`
	TotalSlides int    `json:"total_slides"`
	Resolution  string `json:"resolution"`
	Style       string `json:"style"`
	GeneratedAt string `json:"generated_at"`
}

// PromptsData is persisted as prompts.json alongside the generated images.
type PromptsData struct {
	Metadata PromptsMetadata `json:"metadata"`
	Slides   []SlidePrompt   `json:"slides"`
}

// TransitionResult is the terminal outcome of one transition video job.
// Exactly one worker writes each result; identity is the pair key.
type TransitionResult struct {
	FromTo    string `json:"from_to"`
	VideoPath string `json:"video_path"`
	Prompt    string `json:"prompt"`
	Duration  int    `json:"duration"` // elapsed seconds for this job
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
	ErrorKind string `json:"error_kind,omitempty"` // config | prompt_lookup | request | task | timeout | other
}

// PreviewResult is the outcome of the optional looping preview job.
type PreviewResult struct {
	VideoPath string `json:"video_path"`
	Prompt    string `json:"prompt"`
	Duration  int    `json:"duration"`
}

// MaterialsResult aggregates one whole materials batch. It is the sole input
// the composer depends on and is persisted as video_metadata.json.
type MaterialsResult struct {
	Preview       *PreviewResult               `json:"preview"`
	Transitions   map[string]*TransitionResult `json:"transitions"`
	TotalDuration int                          `json:"total_duration"` // wall-clock seconds for the batch
	SuccessCount  int                          `json:"success_count"`
	FailedCount   int                          `json:"failed_count"`
}

// SuccessfulTransitions returns the sparse key -> clip path map the composer
// consumes. Failed jobs are simply absent.
func (m *MaterialsResult) SuccessfulTransitions() map[string]string {
	out := make(map[string]string, len(m.Transitions))
	for key, r := range m.Transitions {
		if r.Success {
			out[key] = r.VideoPath
		}
	}
	return out
}
