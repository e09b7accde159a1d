package prompts

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	anthropicURL     = "https://api.anthropic.com/v1/messages"
	anthropicVersion = "2023-06-01"

	visionModel       = "claude-sonnet-4-5-20250929"
	visionMaxTokens   = 2000
	previewMaxTokens  = 1000
	visionTemperature = 0.7
)

// textStabilityRules is appended to every transition prompt request. Video
// models garble moving text, so generated descriptions must keep on-screen
// text static: fade in/out only, never transform, move, or rotate.
const textStabilityRules = `

**Important - Text Handling Rules**:
1. Video models have issues with text (blur, distortion, garbled). Avoid text changes.
2. If there is text in the frame, explicitly state "text content remains clear and stable"
3. Prioritize transitions through background, decorations, lighting, and color changes
4. If text areas are involved, use fade in/out instead of transformation or movement
5. Avoid descriptions like "text gradually changes", "text moves", "text rotates"
6. Recommended: "text transitions via fade in/out", "text remains clear and stable"

Now, based on the provided [Start Frame] (Image A) and [End Frame] (Image B), generate your transition description.
`

const previewInstruction = `Please generate a subtle animation prompt for this PPT cover image, for a looping preview video.

Requirements:
1. First and last frames are the same image, video should loop seamlessly
2. Animation should be subtle and elegant, not exaggerated
3. Suggested animation types:
   - Light flow (aurora-like light slowly moving)
   - Glass surface breathing effect (subtle reflection changes)
   - Subtle background gradient color changes
   - Slow rotation of 3D objects (if present)
   - Particle effects (floating light dots)
4. **Important**: Text content must remain clear and stable, no changes, distortion or blur
5. Overall atmosphere should be serene, breathing, waiting to be clicked

Please describe this subtle animation in one paragraph (150-250 words).`

var mediaTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// Vision captions slide pairs with a vision-capable language model and turns
// the result into a transition description.
type Vision struct {
	apiKey     string
	template   string
	model      string
	httpClient *http.Client
}

// NewVision loads the style template and prepares the API client.
// ANTHROPIC_API_KEY must be set.
func NewVision(templatePath string) (*Vision, error) {
	template, err := os.ReadFile(templatePath)
	if err != nil {
		return nil, fmt.Errorf("transition template not found: %s: %w", templatePath, err)
	}

	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY not set; vision prompt source unavailable")
	}

	log.Printf("[prompts] Transition template loaded: %s", templatePath)
	return &Vision{
		apiKey:     apiKey,
		template:   string(template),
		model:      visionModel,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}, nil
}

type visionRequest struct {
	Model       string          `json:"model"`
	MaxTokens   int             `json:"max_tokens"`
	Temperature float64         `json:"temperature"`
	Messages    []visionMessage `json:"messages"`
}

type visionMessage struct {
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
}

type contentBlock struct {
	Type   string       `json:"type"`
	Text   string       `json:"text,omitempty"`
	Source *imageSource `json:"source,omitempty"`
}

type imageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type visionResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (v *Vision) TransitionPrompt(ctx context.Context, req TransitionRequest) (string, error) {
	log.Printf("[prompts] Analyzing transition: %s → %s",
		filepath.Base(req.StartPath), filepath.Base(req.EndPath))

	startBlock, err := encodeImageBlock(req.StartPath)
	if err != nil {
		return "", err
	}
	endBlock, err := encodeImageBlock(req.EndPath)
	if err != nil {
		return "", err
	}

	instruction := v.template + textStabilityRules
	if req.Context != "" {
		instruction += fmt.Sprintf("\n**Content Context**: %s\n", req.Context)
	}
	instruction += "\nPlease generate the transition description."

	content := []contentBlock{
		startBlock,
		{Type: "text", Text: "This is the [Start Frame] (Image A)"},
		endBlock,
		{Type: "text", Text: "This is the [End Frame] (Image B)"},
		{Type: "text", Text: instruction},
	}

	return v.call(ctx, content, visionMaxTokens)
}

func (v *Vision) PreviewPrompt(ctx context.Context, framePath string) (string, error) {
	log.Printf("[prompts] Generating preview prompt: %s", filepath.Base(framePath))

	block, err := encodeImageBlock(framePath)
	if err != nil {
		return "", err
	}

	content := []contentBlock{
		block,
		{Type: "text", Text: previewInstruction},
	}

	return v.call(ctx, content, previewMaxTokens)
}

func (v *Vision) call(ctx context.Context, content []contentBlock, maxTokens int) (string, error) {
	reqBody := visionRequest{
		Model:       v.model,
		MaxTokens:   maxTokens,
		Temperature: visionTemperature,
		Messages:    []visionMessage{{Role: "user", Content: content}},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal vision request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, anthropicURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", err
	}
	req.Header.Set("x-api-key", v.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("vision request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var parsed visionResponse
	if err := json.Unmarshal(respBytes, &parsed); err != nil {
		return "", fmt.Errorf("parse vision response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("vision API error: %s", parsed.Error.Message)
	}
	for _, block := range parsed.Content {
		if block.Type == "text" && block.Text != "" {
			return strings.TrimSpace(block.Text), nil
		}
	}
	return "", fmt.Errorf("vision API returned no text content")
}

func encodeImageBlock(path string) (contentBlock, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return contentBlock{}, fmt.Errorf("read frame image: %w", err)
	}

	mediaType, ok := mediaTypes[strings.ToLower(filepath.Ext(path))]
	if !ok {
		mediaType = "image/jpeg"
	}

	return contentBlock{
		Type: "image",
		Source: &imageSource{
			Type:      "base64",
			MediaType: mediaType,
			Data:      base64.StdEncoding.EncodeToString(data),
		},
	}, nil
}
