package port

import (
	"context"

	"github.com/neuro-publico/conversation-engine/internal/domain/entity"
)

// ScenePlanner decomposes ad copy into an ordered scene list. External
// collaborator; the pipeline only consumes it.
type ScenePlanner interface {
	PlanScenes(ctx context.Context, adText string) ([]entity.Scene, error)
}
