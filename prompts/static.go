package prompts

import (
	"context"
	"log"
	"path/filepath"
)

// Generic aurora/glass transition used when no captioning is available.
const defaultTransitionPrompt = `The camera starts from the initial page, with background aurora waves flowing slowly from left to right. Neon purple, electric blue, and coral orange gradients shift gently against the dark background. The 3D glass object in the center begins to deconstruct, splitting into multiple transparent glass fragments that elegantly rotate and float in the air, reflecting the surrounding neon lights.

During deconstruction, the main elements of the starting page gradually disappear through fade-out, while new elements of the target page slowly emerge from transparency. If there are frosted glass rounded rectangle cards, they slide in from the edge or expand from the center, with subtle blur effects and reflections on their surfaces.

On the right side or other areas, glass fragments reassemble and weave into new 3D glass structures or data visualization graphics. These new elements are progressively assembled, each part maintaining the glass-morphic texture. If there are data labels or text information, they appear through simple fade-in, with text content remaining absolutely clear and stable throughout, without any distortion, blur, or shaking.

The aurora waves continue flowing throughout the transition, colors smoothly transitioning from the starting page's main tones to the target page's color scheme. Deep blue, purple, and coral gradients remain soft and coherent, creating a smooth, premium, tech-forward visual atmosphere. At the end, all elements stabilize in their final state, text is clear and readable, and glass objects are fully rendered.`

const defaultPreviewPrompt = `The PPT cover composition remains static, with background aurora waves flowing extremely slowly from left to right. Neon purple, electric blue, and coral orange gradients breathe with subtle changes, completing a gentle brightness cycle over 5 seconds.

The central 3D glass object maintains its main form, but its surface reflections flow slowly, with glass material highlights shimmering like water waves, creating a subtle breathing sensation. If there are frosted glass cards, their edge glow intensity fluctuates subtly between 0.8 and 1.0.

Deep in the background, a few small light points may slowly drift in the darkness, like cosmic stardust. The overall brightness varies extremely subtly between 95% and 105% of normal value. All text content remains absolutely clear and stable, without any movement, distortion, or blur, always clearly readable.

This is a seamlessly looping subtle animation, where the last frame and first frame connect perfectly. The flow of light effects and color changes form a natural loop, giving a sense of serenity, premium quality, and waiting for interaction.`

// Static returns the same generic template for every pair. Useful for testing
// or when no vision model is configured.
type Static struct{}

func NewStatic() *Static {
	return &Static{}
}

func (s *Static) TransitionPrompt(_ context.Context, req TransitionRequest) (string, error) {
	log.Printf("[prompts] Generic transition template: %s → %s",
		filepath.Base(req.StartPath), filepath.Base(req.EndPath))
	return defaultTransitionPrompt, nil
}

func (s *Static) PreviewPrompt(_ context.Context, framePath string) (string, error) {
	log.Printf("[prompts] Generic preview template: %s", filepath.Base(framePath))
	return defaultPreviewPrompt, nil
}
