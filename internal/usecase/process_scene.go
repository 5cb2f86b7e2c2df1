package usecase

import (
	"context"
	"encoding/json"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/neuro-publico/conversation-engine/internal/domain/entity"
	"github.com/neuro-publico/conversation-engine/internal/domain/port"
	"github.com/neuro-publico/conversation-engine/internal/infra/metrics"
)

// ProcessSceneUseCase holds the consumer-side message semantics: parse the
// envelope, mark the job in progress, dispatch to the type's handler. It
// never fails the delivery; the listener deletes the message regardless.
type ProcessSceneUseCase struct {
	repo     port.AdVideoRepository
	handlers map[entity.SceneType]port.SceneHandler
	logger   *zap.Logger
}

func NewProcessSceneUseCase(
	repo port.AdVideoRepository,
	handlers map[entity.SceneType]port.SceneHandler,
	logger *zap.Logger,
) *ProcessSceneUseCase {
	return &ProcessSceneUseCase{
		repo:     repo,
		handlers: handlers,
		logger:   logger,
	}
}

// Execute consumes one message received from a scene queue. defaultType is
// the queue's scene type, used when the type attribute is absent.
func (uc *ProcessSceneUseCase) Execute(ctx context.Context, msg port.Message, defaultType entity.SceneType) {
	tracer := otel.Tracer("usecase")
	ctx, span := tracer.Start(ctx, "ProcessSceneUseCase.Execute")
	defer span.End()

	body := parseBody(msg.Body)
	adVideoID, hasID := parseAdVideoID(msg.Attributes[entity.AttrAdVideoID])
	if !hasID {
		// The attribute is authoritative but older producers only set the
		// body field.
		adVideoID, hasID = bodyAdVideoID(body)
	}

	sceneType := entity.SceneType(msg.Attributes[entity.AttrSceneType])
	if sceneType == "" {
		sceneType = defaultType
	}
	span.SetAttributes(attribute.String("scene.type", string(sceneType)))

	log := uc.logger.With(zap.String("scene_type", string(sceneType)))
	if hasID {
		log = log.With(zap.Int64("ad_video_id", adVideoID))
		span.SetAttributes(attribute.Int64("job.id", adVideoID))

		// Best effort: a failed status update never blocks dispatch.
		status := entity.AdVideoStatusInProgress
		progress := 10
		if _, err := uc.repo.Update(ctx, adVideoID, entity.UpdateFields{
			Status:   &status,
			Progress: &progress,
		}); err != nil {
			log.Warn("failed to mark job in progress", zap.Error(err))
		}
	}

	handler, ok := uc.handlers[sceneType]
	if !ok {
		log.Warn("no handler for scene type, dropping message")
		return
	}

	if err := handler.Handle(ctx, body); err != nil {
		derr := &port.DispatchError{SceneType: string(sceneType), Err: err}
		log.Error("scene handler failed", zap.Error(derr))
		metrics.DispatchFailuresTotal.WithLabelValues(string(sceneType)).Inc()
	}
}

func bodyAdVideoID(body map[string]any) (int64, bool) {
	if v, ok := body["ad_video_id"].(float64); ok {
		return int64(v), true
	}
	return 0, false
}

func parseAdVideoID(raw string) (int64, bool) {
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// parseBody decodes the message body as JSON, falling back to {"raw": body}
// so malformed payloads still reach the handler boundary.
func parseBody(body string) map[string]any {
	parsed := map[string]any{}
	if err := json.Unmarshal([]byte(body), &parsed); err != nil {
		return map[string]any{"raw": body}
	}
	return parsed
}
