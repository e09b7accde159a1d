package slides

import (
	"encoding/json"
	"fmt"
	"os"

	"ppt-video-pipeline/types"
)

// LoadPlan reads and validates a slide plan JSON file. Slide numbers must be
// contiguous and 1-based; page_type defaults to content.
func LoadPlan(path string) (*types.SlidePlan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read slide plan: %w", err)
	}

	var plan types.SlidePlan
	if err := json.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("parse slide plan %s: %w", path, err)
	}
	if err := ValidatePlan(&plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

// ValidatePlan enforces the plan invariants before any generation starts.
func ValidatePlan(plan *types.SlidePlan) error {
	if len(plan.Slides) == 0 {
		return fmt.Errorf("slide plan contains no slides")
	}
	for i := range plan.Slides {
		s := &plan.Slides[i]
		if s.SlideNumber != i+1 {
			return fmt.Errorf("slide numbers must be contiguous from 1: position %d has number %d", i+1, s.SlideNumber)
		}
		if s.Content == "" {
			return fmt.Errorf("slide %d has no content", s.SlideNumber)
		}
		switch s.PageType {
		case types.PageCover, types.PageContent, types.PageData:
		case "":
			s.PageType = types.PageContent
		default:
			return fmt.Errorf("slide %d has unknown page_type %q", s.SlideNumber, s.PageType)
		}
	}
	return nil
}
