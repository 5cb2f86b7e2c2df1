package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/neuro-publico/conversation-engine/internal/domain/entity"
)

const planPrompt = `You are an ad video director. Split the ad copy below into an ordered list of scenes.
Respond with a JSON array only, no prose. Each element must be:
{"sort": <int>, "type": "human_scene"|"animated_scene", "content": {"dialogue": "...", "image": "...", "prompt": "..."}}

Ad copy:
`

// ScenePlanner asks a chat-completions endpoint to decompose ad copy into
// scene descriptors.
type ScenePlanner struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
	logger  *zap.Logger
}

func NewScenePlanner(baseURL, apiKey, model string, logger *zap.Logger) *ScenePlanner {
	return &ScenePlanner{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: 60 * time.Second},
		logger:  logger,
	}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (p *ScenePlanner) PlanScenes(ctx context.Context, adText string) ([]entity.Scene, error) {
	payload, err := json.Marshal(chatRequest{
		Model: p.model,
		Messages: []chatMessage{
			{Role: "user", Content: planPrompt + adText},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call planner: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read planner response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("planner returned status %d: %s", resp.StatusCode, raw)
	}

	var chat chatResponse
	if err := json.Unmarshal(raw, &chat); err != nil {
		return nil, fmt.Errorf("decode planner response: %w", err)
	}
	if len(chat.Choices) == 0 {
		return nil, fmt.Errorf("planner returned no choices")
	}

	scenes, err := ParseScenePlan(chat.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	p.logger.Debug("scene plan generated", zap.Int("scene_count", len(scenes)))
	return scenes, nil
}

// ParseScenePlan decodes the model reply into an ordered scene list. The
// reply must be a JSON array of scene descriptors; scenes come back sorted
// by their sort key.
func ParseScenePlan(reply string) ([]entity.Scene, error) {
	var scenes []entity.Scene
	if err := json.Unmarshal([]byte(reply), &scenes); err != nil {
		return nil, fmt.Errorf("malformed scene plan: %w", err)
	}

	sort.SliceStable(scenes, func(i, j int) bool { return scenes[i].Sort < scenes[j].Sort })
	return scenes, nil
}
