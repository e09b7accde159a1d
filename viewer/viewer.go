// Package viewer emits the static HTML players by substituting JSON data into
// placeholder markers in the shipped templates. Presentation is out of the
// pipeline's concern; a missing template is a warn-and-skip.
package viewer

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"ppt-video-pipeline/types"
)

const (
	imageListPlaceholder   = "/* IMAGE_LIST_PLACEHOLDER */"
	slidesDataPlaceholder  = "/* SLIDES_DATA_PLACEHOLDER */"
	transitionsPlaceholder = "/* TRANSITIONS_DATA_PLACEHOLDER */"
	previewPlaceholder     = "/* PREVIEW_DATA_PLACEHOLDER */"
)

// GenerateSlidesViewer writes index.html listing the generated slide images.
func GenerateSlidesViewer(outputDir string, slideCount int, templatePath string) (string, error) {
	template, ok := readTemplate(templatePath)
	if !ok {
		return "", nil
	}

	entries := make([]string, 0, slideCount)
	for i := 1; i <= slideCount; i++ {
		entries = append(entries, fmt.Sprintf("'images/slide-%02d.png'", i))
	}

	html := strings.Replace(template, imageListPlaceholder, strings.Join(entries, ",\n            "), 1)

	outPath := filepath.Join(outputDir, "index.html")
	if err := os.WriteFile(outPath, []byte(html), 0644); err != nil {
		return "", fmt.Errorf("write viewer: %w", err)
	}
	log.Printf("[viewer] Slides viewer generated: %s", outPath)
	return outPath, nil
}

// GenerateVideoViewer writes video_index.html wiring stills, successful
// transition clips, and the preview clip into the player template. All paths
// are emitted relative to the output directory.
func GenerateVideoViewer(outputDir string, slides []types.Slide, result *types.MaterialsResult, templatePath string) (string, error) {
	template, ok := readTemplate(templatePath)
	if !ok {
		return "", nil
	}

	slidePaths := make([]string, 0, len(slides))
	for _, s := range slides {
		slidePaths = append(slidePaths, relTo(outputDir, s.ImagePath))
	}

	transitions := map[string]string{}
	for key, r := range result.Transitions {
		if r.Success {
			transitions[key] = relTo(outputDir, r.VideoPath)
		}
	}

	previewJSON := "null"
	if result.Preview != nil {
		previewJSON = mustJSON(relTo(outputDir, result.Preview.VideoPath))
	}

	html := template
	html = strings.Replace(html, slidesDataPlaceholder, mustJSON(slidePaths), 1)
	html = strings.Replace(html, transitionsPlaceholder, mustJSON(transitions), 1)
	html = strings.Replace(html, previewPlaceholder, previewJSON, 1)

	outPath := filepath.Join(outputDir, "video_index.html")
	if err := os.WriteFile(outPath, []byte(html), 0644); err != nil {
		return "", fmt.Errorf("write video viewer: %w", err)
	}
	log.Printf("[viewer] Video viewer generated: %s", outPath)
	return outPath, nil
}

func readTemplate(path string) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("[viewer] ⚠️  Template not found: %s, skipping viewer", path)
		return "", false
	}
	return string(data), true
}

func relTo(baseDir, path string) string {
	rel, err := filepath.Rel(baseDir, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}

func mustJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(data)
}
