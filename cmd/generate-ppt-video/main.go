// Command generate-ppt-video turns a directory of slide stills into a full
// presentation video: AI-generated transition clips between consecutive
// slides, an optional looping preview, and an ffmpeg-composed final cut.
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

	"ppt-video-pipeline/compose"
	"ppt-video-pipeline/config"
	"ppt-video-pipeline/kling"
	"ppt-video-pipeline/materials"
	"ppt-video-pipeline/prompts"
	"ppt-video-pipeline/slides"
	"ppt-video-pipeline/types"
	"ppt-video-pipeline/viewer"
)

func main() {
	slidesDir := flag.String("slides-dir", "", "directory with slide-NN.png images (required)")
	outputDir := flag.String("output-dir", "", "output directory (required)")
	videoMode := flag.String("video-mode", "both", "output mode: both, local, or web")
	videoDuration := flag.String("video-duration", "", "transition clip duration: 5 or 10 seconds")
	slideDuration := flag.Int("slide-duration", 0, "seconds each slide is held in the final video")
	videoQuality := flag.String("video-quality", "", "generation quality: std or pro")
	maxConcurrent := flag.Int("max-concurrent", 0, "max concurrent generation tasks")
	skipPreview := flag.Bool("skip-preview", false, "skip the looping preview video")
	promptsFile := flag.String("prompts-file", "", "transition prompts JSON file")
	visionTemplate := flag.String("vision-template", "", "style template for vision-analyzed prompts")
	configPath := flag.String("config", "config.yaml", "pipeline config file")
	flag.Parse()

	config.LoadEnv()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fatalf("load config: %v", err)
	}
	applyDefaults(cfg, videoDuration, slideDuration, videoQuality, maxConcurrent)

	if *slidesDir == "" || *outputDir == "" {
		flag.Usage()
		os.Exit(1)
	}
	switch *videoMode {
	case "both", "local", "web":
	default:
		fatalf("invalid --video-mode %q (expected both, local, or web)", *videoMode)
	}
	if *videoDuration != "5" && *videoDuration != "10" {
		fatalf("invalid --video-duration %q (expected 5 or 10)", *videoDuration)
	}
	if *videoQuality != "std" && *videoQuality != "pro" {
		fatalf("invalid --video-quality %q (expected std or pro)", *videoQuality)
	}
	if *promptsFile != "" && *visionTemplate != "" {
		fatalf("--prompts-file and --vision-template are mutually exclusive")
	}

	slideList, err := slides.ScanImages(*slidesDir)
	if err != nil {
		fatalf("%v", err)
	}
	log.Printf("Found %d slide(s) in %s", len(slideList), *slidesDir)

	source, err := buildPromptSource(*promptsFile, *visionTemplate)
	if err != nil {
		fatalf("%v", err)
	}

	client, err := kling.NewFromEnv()
	if err != nil {
		fatalf("%v", err)
	}
	client.PollInterval = time.Duration(cfg.Video.PollIntervalSec) * time.Second
	client.Timeout = time.Duration(cfg.Video.TimeoutSec) * time.Second

	generator, err := materials.New(client, source)
	if err != nil {
		fatalf("%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	videosDir := filepath.Join(*outputDir, "videos")
	result, err := generator.GenerateAll(ctx, slideList, videosDir, materials.Options{
		Model:         cfg.Video.Model,
		Duration:      *videoDuration,
		Mode:          *videoQuality,
		MaxConcurrent: *maxConcurrent,
		SkipPreview:   *skipPreview,
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			log.Println("Operation cancelled by user")
			os.Exit(130)
		}
		fatalf("materials generation failed: %v", err)
	}

	if result.FailedCount > 0 {
		log.Printf("⚠️  %d video(s) failed; continuing, final video may be incomplete", result.FailedCount)
	}

	// Composition failure is fatal to this stage only: the web viewer and the
	// summary still run, and the failure surfaces through the exit code.
	var composeErr error
	fullVideoPath := filepath.Join(*outputDir, "full_ppt_video.mp4")
	if *videoMode == "both" || *videoMode == "local" {
		composeErr = composeVideo(ctx, cfg, slideList, result, fullVideoPath, *slideDuration)
		if errors.Is(composeErr, context.Canceled) {
			log.Println("Operation cancelled by user")
			os.Exit(130)
		}
		if composeErr != nil {
			log.Printf("⚠️  Full video composition failed: %v", composeErr)
		}
	}

	if *videoMode == "both" || *videoMode == "web" {
		templatePath := filepath.Join(cfg.Paths.Templates, "video_viewer.html")
		if _, err := viewer.GenerateVideoViewer(*outputDir, slideList, result, templatePath); err != nil {
			log.Printf("⚠️  Video viewer generation failed: %v", err)
		}
	}

	if composeErr == nil {
		log.Println("✅ PPT video generation complete")
	} else {
		log.Println("⚠️  PPT video generation finished with errors")
	}
	log.Printf("  Slides: %d", len(slideList))
	log.Printf("  Videos: %d success, %d failed", result.SuccessCount, result.FailedCount)
	log.Printf("  Total time: %ds (%.1fm)", result.TotalDuration, float64(result.TotalDuration)/60)
	if (*videoMode == "both" || *videoMode == "local") && composeErr == nil {
		log.Printf("  Full video: %s", fullVideoPath)
	}
	if *videoMode == "both" || *videoMode == "web" {
		log.Printf("  Web viewer: %s", filepath.Join(*outputDir, "video_index.html"))
	}
	log.Printf("  Metadata: %s", filepath.Join(videosDir, materials.MetadataFile))

	os.Exit(exitStatus(composeErr))
}

func composeVideo(ctx context.Context, cfg *config.Config, slideList []types.Slide, result *types.MaterialsResult, outputPath string, slideDuration int) error {
	composer, err := compose.New(cfg.Compose.FFmpegPath, time.Duration(cfg.Compose.FFmpegTimeoutSec)*time.Second)
	if err != nil {
		return err
	}
	return composer.ComposeFullVideo(ctx, slideList, result.SuccessfulTransitions(), outputPath, compose.ComposeOptions{
		SlideDurationSec:      slideDuration,
		Resolution:            cfg.Compose.Resolution,
		FPS:                   cfg.Compose.FPS,
		MaxMissingTransitions: cfg.Compose.MaxFailedTransitions,
	})
}

// exitStatus is decided once every phase has had its chance to run.
func exitStatus(composeErr error) int {
	if composeErr != nil {
		return 1
	}
	return 0
}

func applyDefaults(cfg *config.Config, videoDuration *string, slideDuration *int, videoQuality *string, maxConcurrent *int) {
	if *videoDuration == "" {
		*videoDuration = cfg.Video.Duration
	}
	if *slideDuration <= 0 {
		*slideDuration = cfg.Compose.SlideDurationSec
	}
	if *videoQuality == "" {
		*videoQuality = cfg.Video.Mode
	}
	if *maxConcurrent <= 0 {
		*maxConcurrent = cfg.Video.MaxConcurrent
	}
}

// buildPromptSource picks the prompt variant: a pre-computed prompts file, a
// vision model with a style template, or the generic static templates.
func buildPromptSource(promptsFile, visionTemplate string) (prompts.Source, error) {
	switch {
	case promptsFile != "":
		return prompts.NewFile(promptsFile)
	case visionTemplate != "":
		return prompts.NewVision(visionTemplate)
	default:
		log.Println("⚠️  No prompts file or vision template given, using generic transition templates")
		return prompts.NewStatic(), nil
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
