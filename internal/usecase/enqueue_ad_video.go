package usecase

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/neuro-publico/conversation-engine/internal/domain/entity"
	"github.com/neuro-publico/conversation-engine/internal/domain/port"
	"github.com/neuro-publico/conversation-engine/internal/infra/metrics"
)

// ScenePublisher is the slice of the publisher the orchestrator needs.
type ScenePublisher interface {
	Publish(ctx context.Context, queueName string, adVideoID int64, scene entity.Scene) error
}

// Enqueued is the acknowledgment returned to the HTTP caller.
type Enqueued struct {
	Status string         `json:"status"`
	JobID  int64          `json:"jobId"`
	Scenes []entity.Scene `json:"scenes"`
}

// EnqueueAdVideoUseCase turns ad copy into a persisted job and one queue
// message per routable scene.
type EnqueueAdVideoUseCase struct {
	planner   port.ScenePlanner
	repo      port.AdVideoRepository
	publisher ScenePublisher
	logger    *zap.Logger
}

func NewEnqueueAdVideoUseCase(
	planner port.ScenePlanner,
	repo port.AdVideoRepository,
	publisher ScenePublisher,
	logger *zap.Logger,
) *EnqueueAdVideoUseCase {
	return &EnqueueAdVideoUseCase{
		planner:   planner,
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

func (uc *EnqueueAdVideoUseCase) Execute(ctx context.Context, adText, ownerID, funnelID string) (*Enqueued, error) {
	tracer := otel.Tracer("usecase")
	ctx, span := tracer.Start(ctx, "EnqueueAdVideoUseCase.Execute")
	defer span.End()

	start := time.Now()

	scenes, err := uc.planner.PlanScenes(ctx, adText)
	if err != nil {
		metrics.AdVideosEnqueuedTotal.WithLabelValues("planning_error").Inc()
		return nil, &port.PlanningError{Err: err}
	}
	if len(scenes) == 0 {
		metrics.AdVideosEnqueuedTotal.WithLabelValues("planning_error").Inc()
		return nil, &port.PlanningError{Err: fmt.Errorf("planner returned no scenes")}
	}

	job, err := uc.repo.Create(ctx, entity.NewAdVideo(ownerID, funnelID, scenes))
	if err != nil {
		metrics.AdVideosEnqueuedTotal.WithLabelValues("persistence_error").Inc()
		return nil, err
	}

	span.SetAttributes(
		attribute.Int64("job.id", job.ID),
		attribute.Int("job.scene_count", len(scenes)),
	)
	log := uc.logger.With(zap.Int64("job_id", job.ID), zap.String("owner_id", ownerID))

	// All-or-nothing per job: the first publish failure aborts the rest of
	// the batch and the job stays PENDING.
	for _, scene := range scenes {
		queueName, ok := entity.QueueForSceneType(scene.Type)
		if !ok {
			// Unroutable types stay on the stored job but are never
			// published.
			log.Warn("skipping scene with unroutable type",
				zap.String("scene_type", string(scene.Type)),
				zap.Int("sort", scene.Sort),
			)
			metrics.ScenesSkippedTotal.Inc()
			continue
		}

		if err := uc.publisher.Publish(ctx, queueName, job.ID, scene); err != nil {
			log.Error("scene publish failed, aborting batch",
				zap.String("queue", queueName),
				zap.Int("sort", scene.Sort),
				zap.Error(err),
			)
			metrics.AdVideosEnqueuedTotal.WithLabelValues("publish_error").Inc()
			return nil, err
		}
	}

	metrics.AdVideosEnqueuedTotal.WithLabelValues("enqueued").Inc()
	metrics.EnqueueDuration.Observe(time.Since(start).Seconds())
	log.Info("ad video job enqueued", zap.Int("scene_count", len(scenes)))

	return &Enqueued{Status: "ENQUEUED", JobID: job.ID, Scenes: job.Scenes}, nil
}
