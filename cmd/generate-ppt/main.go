// Command generate-ppt renders a slide plan into still images plus an HTML
// viewer using the image provider.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"

	"ppt-video-pipeline/config"
	"ppt-video-pipeline/gemini"
	"ppt-video-pipeline/slides"
	"ppt-video-pipeline/viewer"
)

func main() {
	planPath := flag.String("plan", "", "path to slide plan JSON (required)")
	stylePath := flag.String("style", "", "path to style template markdown (required)")
	resolution := flag.String("resolution", "", "image resolution: 2K or 4K")
	outputDir := flag.String("output", "", "output directory (default: outputs/<run-id>)")
	templatePath := flag.String("template", "", "HTML viewer template path")
	configPath := flag.String("config", "config.yaml", "pipeline config file")
	flag.Parse()

	config.LoadEnv()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fatalf("load config: %v", err)
	}
	if *resolution == "" {
		*resolution = cfg.Image.Resolution
	}
	if *resolution != "2K" && *resolution != "4K" {
		fatalf("invalid --resolution %q (expected 2K or 4K)", *resolution)
	}
	if *templatePath == "" {
		*templatePath = filepath.Join(cfg.Paths.Templates, "viewer.html")
	}
	if *planPath == "" || *stylePath == "" {
		flag.Usage()
		os.Exit(1)
	}

	plan, err := slides.LoadPlan(*planPath)
	if err != nil {
		fatalf("%v", err)
	}
	styleTemplate, err := slides.LoadStyleTemplate(*stylePath)
	if err != nil {
		fatalf("%v", err)
	}

	client, err := gemini.NewFromEnv(cfg.Image.Model)
	if err != nil {
		fatalf("%v", err)
	}

	if *outputDir == "" {
		runID := time.Now().Format("20060102_150405") + "_" + uuid.NewString()[:8]
		*outputDir = filepath.Join(cfg.Paths.OutputBase, runID)
	}

	log.Println("🎨 PPT image generation starting")
	log.Printf("  Plan: %s (%d slides)", *planPath, len(plan.Slides))
	log.Printf("  Style: %s", *stylePath)
	log.Printf("  Resolution: %s", *resolution)
	log.Printf("  Output: %s", *outputDir)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	generator := slides.NewGenerator(client, styleTemplate, *stylePath, *resolution)
	data, err := generator.Run(ctx, plan, *outputDir)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			log.Println("Operation cancelled by user")
			os.Exit(130)
		}
		fatalf("generation failed: %v", err)
	}

	if _, err := viewer.GenerateSlidesViewer(*outputDir, len(plan.Slides), *templatePath); err != nil {
		log.Printf("⚠️  Viewer generation failed: %v", err)
	}

	generated := 0
	for _, s := range data.Slides {
		if s.ImagePath != "" {
			generated++
		}
	}

	log.Println("✅ Generation complete")
	log.Printf("  Slides: %d/%d generated", generated, len(plan.Slides))
	log.Printf("  Output directory: %s", *outputDir)
	log.Printf("  Prompts: %s", filepath.Join(*outputDir, "prompts.json"))
	log.Printf("  Viewer: %s", filepath.Join(*outputDir, "index.html"))
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
