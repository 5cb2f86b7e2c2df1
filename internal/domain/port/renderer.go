package port

import "context"

// RenderResult is the synthesis service's reply for one scene.
type RenderResult struct {
	RequestID string
	VideoURL  string
}

// VideoRenderer invokes the external synthesis service, one route per scene
// type.
type VideoRenderer interface {
	RenderHumanScene(ctx context.Context, imageURL, audioURL string, extra map[string]any) (*RenderResult, error)
	RenderAnimatedScene(ctx context.Context, prompt, imageURL string, extra map[string]any) (*RenderResult, error)
}
