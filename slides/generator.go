// Package slides covers the image stage: turn a slide plan into slide-NN.png
// stills via the image provider, recording every prompt in prompts.json.
package slides

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"ppt-video-pipeline/types"
)

// ImageGenerator is the slice of the image provider this stage needs.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt, resolution string) ([]byte, error)
}

// Generator renders all slides of one plan.
type Generator struct {
	client     ImageGenerator
	style      string
	resolution string
	styleName  string
}

func NewGenerator(client ImageGenerator, styleTemplate, styleName, resolution string) *Generator {
	return &Generator{
		client:     client,
		style:      styleTemplate,
		styleName:  styleName,
		resolution: resolution,
	}
}

// Run generates every slide image. A slide whose generation fails is recorded
// with an empty image path and reported; it does not abort the rest.
func (g *Generator) Run(ctx context.Context, plan *types.SlidePlan, outputDir string) (*types.PromptsData, error) {
	imagesDir := filepath.Join(outputDir, "images")
	if err := os.MkdirAll(imagesDir, 0755); err != nil {
		return nil, fmt.Errorf("create images dir: %w", err)
	}

	total := len(plan.Slides)
	log.Printf("[slides] Generating %d slide image(s) at %s...", total, g.resolution)

	data := &types.PromptsData{
		Metadata: types.PromptsMetadata{
			Title:       plan.Title,
			TotalSlides: total,
			Resolution:  g.resolution,
			Style:       g.styleName,
			GeneratedAt: time.Now().Format(time.RFC3339),
		},
	}

	failed := 0
	for _, slide := range plan.Slides {
		prompt := BuildPrompt(g.style, slide, total)
		imagePath := filepath.Join(imagesDir, ImageFileName(slide.SlideNumber))

		log.Printf("[slides] Generating slide %d/%d...", slide.SlideNumber, total)
		imageBytes, err := g.client.GenerateImage(ctx, prompt, g.resolution)
		if err != nil {
			log.Printf("[slides] ⚠️  Slide %d failed: %v", slide.SlideNumber, err)
			failed++
			imagePath = ""
		} else if err := os.WriteFile(imagePath, imageBytes, 0644); err != nil {
			return nil, fmt.Errorf("save slide %d: %w", slide.SlideNumber, err)
		} else {
			log.Printf("[slides]   Slide %d saved: %s", slide.SlideNumber, imagePath)
		}

		data.Slides = append(data.Slides, types.SlidePrompt{
			SlideNumber: slide.SlideNumber,
			PageType:    slide.PageType,
			Content:     slide.Content,
			Prompt:      prompt,
			ImagePath:   imagePath,
		})
	}

	if err := SavePrompts(outputDir, data); err != nil {
		return nil, err
	}

	if failed > 0 {
		log.Printf("[slides] ⚠️  %d/%d slide(s) failed to generate", failed, total)
	} else {
		log.Printf("[slides] ✅ All %d slide image(s) generated", total)
	}
	return data, nil
}

// ImageFileName formats the export name for one slide, e.g. slide-02.png.
func ImageFileName(index int) string {
	return fmt.Sprintf("slide-%02d.png", index)
}

// SavePrompts writes prompts.json alongside the images.
func SavePrompts(outputDir string, data *types.PromptsData) error {
	path := filepath.Join(outputDir, "prompts.json")
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal prompts: %w", err)
	}
	if err := os.WriteFile(path, raw, 0644); err != nil {
		return fmt.Errorf("save prompts: %w", err)
	}
	log.Printf("[slides] Prompts saved: %s", path)
	return nil
}
