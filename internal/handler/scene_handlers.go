package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/neuro-publico/conversation-engine/internal/domain/entity"
	"github.com/neuro-publico/conversation-engine/internal/domain/port"
)

// Deps are the collaborators shared by both scene handlers. Renderer calls
// the external synthesis API; media archives the rendered clip; repo records
// the outcome on the job when the message carried an id.
type Deps struct {
	Renderer port.VideoRenderer
	Media    port.MediaStore
	Repo     port.AdVideoRepository
	Logger   *zap.Logger
}

// HumanSceneHandler renders human avatar scenes (image + speech audio).
type HumanSceneHandler struct {
	deps Deps
}

func NewHumanSceneHandler(deps Deps) *HumanSceneHandler {
	return &HumanSceneHandler{deps: deps}
}

func (h *HumanSceneHandler) Handle(ctx context.Context, body map[string]any) error {
	scene := parseSceneBody(body)
	content := scene.content

	imageURL := stringField(content, "image_url", "image")
	audioURL := stringField(content, "audio_url", "audio")
	if imageURL == "" || audioURL == "" {
		return recordFailure(ctx, h.deps, scene,
			fmt.Errorf("human_scene content requires image_url and audio_url"))
	}

	result, err := h.deps.Renderer.RenderHumanScene(ctx, imageURL, audioURL, nil)
	if err != nil {
		return recordFailure(ctx, h.deps, scene, err)
	}
	return recordResult(ctx, h.deps, scene, result)
}

// AnimatedSceneHandler renders animated image-to-video scenes.
type AnimatedSceneHandler struct {
	deps Deps
}

func NewAnimatedSceneHandler(deps Deps) *AnimatedSceneHandler {
	return &AnimatedSceneHandler{deps: deps}
}

func (h *AnimatedSceneHandler) Handle(ctx context.Context, body map[string]any) error {
	scene := parseSceneBody(body)
	content := scene.content

	prompt := stringField(content, "prompt")
	imageURL := stringField(content, "image_url", "image")
	if prompt == "" || imageURL == "" {
		return recordFailure(ctx, h.deps, scene,
			fmt.Errorf("animated_scene content requires prompt and image_url"))
	}

	result, err := h.deps.Renderer.RenderAnimatedScene(ctx, prompt, imageURL, nil)
	if err != nil {
		return recordFailure(ctx, h.deps, scene, err)
	}
	return recordResult(ctx, h.deps, scene, result)
}

type sceneBody struct {
	adVideoID int64
	sort      int
	content   map[string]any
}

func parseSceneBody(body map[string]any) sceneBody {
	s := sceneBody{content: map[string]any{}}
	if id, ok := body["ad_video_id"].(float64); ok {
		s.adVideoID = int64(id)
	}
	if sort, ok := body["sort"].(float64); ok {
		s.sort = int(sort)
	}
	if content, ok := body["content"].(map[string]any); ok {
		s.content = content
	}
	return s
}

func stringField(m map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := m[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// recordResult archives the rendered clip into the media store and writes the
// resulting URL onto the job. Archival problems fail the handler but never
// the listener.
func recordResult(ctx context.Context, deps Deps, scene sceneBody, result *port.RenderResult) error {
	if result.VideoURL == "" {
		// Webhook-style render: nothing to archive yet, the synthesis
		// service reports completion out of band.
		deps.Logger.Info("render accepted without immediate media",
			zap.String("request_id", result.RequestID),
			zap.Int64("ad_video_id", scene.adVideoID),
		)
		return nil
	}

	url, err := archiveClip(ctx, deps.Media, scene, result.VideoURL)
	if err != nil {
		return recordFailure(ctx, deps, scene, err)
	}

	if scene.adVideoID != 0 {
		if _, err := deps.Repo.Update(ctx, scene.adVideoID, updateResult(url)); err != nil {
			deps.Logger.Warn("failed to record scene result",
				zap.Int64("ad_video_id", scene.adVideoID),
				zap.Error(err),
			)
		}
	}

	deps.Logger.Info("scene rendered",
		zap.Int64("ad_video_id", scene.adVideoID),
		zap.Int("sort", scene.sort),
		zap.String("result_url", url),
	)
	return nil
}

func recordFailure(ctx context.Context, deps Deps, scene sceneBody, cause error) error {
	if scene.adVideoID != 0 {
		msg := cause.Error()
		if _, err := deps.Repo.Update(ctx, scene.adVideoID, updateError(msg)); err != nil {
			deps.Logger.Warn("failed to record scene error",
				zap.Int64("ad_video_id", scene.adVideoID),
				zap.Error(err),
			)
		}
	}
	return cause
}

func updateResult(url string) entity.UpdateFields {
	return entity.UpdateFields{ResultURL: &url}
}

func updateError(msg string) entity.UpdateFields {
	return entity.UpdateFields{Error: &msg}
}

var fetchClient = &http.Client{Timeout: 180 * time.Second}

func archiveClip(ctx context.Context, media port.MediaStore, scene sceneBody, sourceURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return "", fmt.Errorf("build clip request: %w", err)
	}

	resp, err := fetchClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch rendered clip: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch rendered clip: status %d", resp.StatusCode)
	}

	key := fmt.Sprintf("ad_videos/%d/scene_%d.mp4", scene.adVideoID, scene.sort)
	url, err := media.UploadMedia(ctx, key, "video/mp4", resp.Body, resp.ContentLength)
	if err != nil {
		return "", err
	}
	return url, nil
}
