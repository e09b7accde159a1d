package slides

import (
	"fmt"
	"log"
	"os"
	"strings"

	"ppt-video-pipeline/types"
)

// LoadStyleTemplate reads a style markdown file and extracts the base prompt
// template: the body of its first "## " section. Files without section
// headers are used whole.
func LoadStyleTemplate(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read style template: %w", err)
	}
	content := string(data)

	start := strings.Index(content, "## ")
	if start == -1 {
		log.Println("[slides] ⚠️  Style template has no sections, using full content")
		return strings.TrimSpace(content), nil
	}
	body := content[start+len("## "):]
	if end := strings.Index(body, "## "); end != -1 {
		body = body[:end]
	}
	return strings.TrimSpace(body), nil
}

// BuildPrompt composes the image prompt for one slide. The first slide is
// always treated as a cover and the last as a data/summary page regardless of
// declared type.
func BuildPrompt(styleTemplate string, slide types.PlanSlide, totalSlides int) string {
	var sb strings.Builder
	sb.WriteString(styleTemplate)
	sb.WriteString("\n\n")

	isCover := slide.PageType == types.PageCover || slide.SlideNumber == 1
	isData := slide.PageType == types.PageData || slide.SlideNumber == totalSlides

	switch {
	case isCover:
		fmt.Fprintf(&sb, `Please generate a cover page based on visual balance aesthetics.
Place a large complex 3D glass object in the center, overlaid with bold text:

%s

Background with extended aurora waves.`, slide.Content)
	case isData:
		fmt.Fprintf(&sb, `Please generate a data/summary page using split-screen design.
Left side: typeset the following text.
Right side: floating large glowing 3D data visualization:

%s`, slide.Content)
	default:
		fmt.Fprintf(&sb, `Please generate a content page using Bento grid layout.
Organize the following content in modular rounded rectangle containers.
Container material must be frosted glass with blur effect:

%s`, slide.Content)
	}

	return sb.String()
}
