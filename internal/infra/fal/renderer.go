package fal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/neuro-publico/conversation-engine/internal/domain/port"
)

const (
	klingRoute     = "/fal-ai/kling-video/v1.6/standard/image-to-video"
	omnihumanRoute = "/fal-ai/bytedance/omnihuman"
)

// Renderer calls the FAL synthesis API: kling image-to-video for animated
// scenes, bytedance omnihuman for human avatar scenes.
type Renderer struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewRenderer(baseURL, apiKey string) *Renderer {
	return &Renderer{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

func (r *Renderer) RenderHumanScene(ctx context.Context, imageURL, audioURL string, extra map[string]any) (*port.RenderResult, error) {
	payload := map[string]any{
		"image_url": imageURL,
		"audio_url": audioURL,
	}
	for k, v := range extra {
		payload[k] = v
	}
	return r.submit(ctx, omnihumanRoute, payload)
}

func (r *Renderer) RenderAnimatedScene(ctx context.Context, prompt, imageURL string, extra map[string]any) (*port.RenderResult, error) {
	payload := map[string]any{
		"prompt":    prompt,
		"image_url": imageURL,
	}
	for k, v := range extra {
		payload[k] = v
	}
	return r.submit(ctx, klingRoute, payload)
}

type submitResponse struct {
	RequestID string `json:"request_id"`
	Video     struct {
		URL string `json:"url"`
	} `json:"video"`
}

func (r *Renderer) submit(ctx context.Context, route string, payload map[string]any) (*port.RenderResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+route, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Key "+r.apiKey)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call render api: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read render response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("render api returned status %d: %s", resp.StatusCode, raw)
	}

	var out submitResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode render response: %w", err)
	}

	return &port.RenderResult{
		RequestID: out.RequestID,
		VideoURL:  out.Video.URL,
	}, nil
}
