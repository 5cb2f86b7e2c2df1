package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/neuro-publico/conversation-engine/internal/domain/entity"
	"github.com/neuro-publico/conversation-engine/internal/domain/port"
)

func TestEnqueuePublishesOneMessagePerScene(t *testing.T) {
	planner := &stubPlanner{scenes: []entity.Scene{
		{Sort: 0, Type: entity.SceneTypeHuman, Content: map[string]any{"dialogue": "Buy now!"}},
		{Sort: 1, Type: entity.SceneTypeAnimated, Content: map[string]any{"prompt": "product shot"}},
	}}
	repo := newMemoryRepo()
	pub := &recordingPublisher{}
	uc := NewEnqueueAdVideoUseCase(planner, repo, pub, zap.NewNop())

	result, err := uc.Execute(context.Background(), "Buy now!", "u1", "f1")
	require.NoError(t, err)

	assert.Equal(t, "ENQUEUED", result.Status)
	assert.Len(t, result.Scenes, 2)

	job, err := repo.FindByID(context.Background(), result.JobID)
	require.NoError(t, err)
	assert.Equal(t, entity.AdVideoStatusPending, job.Status)
	assert.Equal(t, "u1", job.OwnerID)
	assert.Equal(t, "f1", job.FunnelID)
	assert.Len(t, job.Scenes, 2)

	require.Len(t, pub.calls, 2)
	assert.Equal(t, entity.QueueHumanVideo, pub.calls[0].Queue)
	assert.Equal(t, 0, pub.calls[0].Scene.Sort)
	assert.Equal(t, entity.QueueAnimatedVideo, pub.calls[1].Queue)
	assert.Equal(t, 1, pub.calls[1].Scene.Sort)
	assert.Equal(t, result.JobID, pub.calls[0].AdVideoID)
}

func TestEnqueuePlannerFailureCreatesNoJob(t *testing.T) {
	planner := &stubPlanner{err: errors.New("model unavailable")}
	repo := newMemoryRepo()
	pub := &recordingPublisher{}
	uc := NewEnqueueAdVideoUseCase(planner, repo, pub, zap.NewNop())

	_, err := uc.Execute(context.Background(), "Buy now!", "u1", "")
	require.Error(t, err)

	var planErr *port.PlanningError
	assert.True(t, errors.As(err, &planErr))
	assert.Empty(t, repo.jobs)
	assert.Empty(t, pub.calls)
}

func TestEnqueueEmptyPlanIsPlanningError(t *testing.T) {
	planner := &stubPlanner{scenes: nil}
	repo := newMemoryRepo()
	uc := NewEnqueueAdVideoUseCase(planner, repo, &recordingPublisher{}, zap.NewNop())

	_, err := uc.Execute(context.Background(), "Buy now!", "u1", "")

	var planErr *port.PlanningError
	assert.True(t, errors.As(err, &planErr))
	assert.Empty(t, repo.jobs)
}

func TestEnqueueSkipsUnknownSceneTypes(t *testing.T) {
	planner := &stubPlanner{scenes: []entity.Scene{
		{Sort: 0, Type: "unknown_type", Content: map[string]any{}},
		{Sort: 1, Type: entity.SceneTypeHuman, Content: map[string]any{}},
	}}
	repo := newMemoryRepo()
	pub := &recordingPublisher{}
	uc := NewEnqueueAdVideoUseCase(planner, repo, pub, zap.NewNop())

	result, err := uc.Execute(context.Background(), "Buy now!", "u1", "")
	require.NoError(t, err)

	// The unroutable scene stays on the stored job but is never published.
	job, err := repo.FindByID(context.Background(), result.JobID)
	require.NoError(t, err)
	assert.Len(t, job.Scenes, 2)

	require.Len(t, pub.calls, 1)
	assert.Equal(t, 1, pub.calls[0].Scene.Sort)
}

func TestEnqueuePublishFailureAbortsBatch(t *testing.T) {
	planner := &stubPlanner{scenes: []entity.Scene{
		{Sort: 0, Type: entity.SceneTypeHuman},
		{Sort: 1, Type: entity.SceneTypeAnimated},
		{Sort: 2, Type: entity.SceneTypeHuman},
	}}
	repo := newMemoryRepo()
	pub := &recordingPublisher{failAt: 1, failErr: &port.PublishError{Queue: entity.QueueAnimatedVideo, Err: errors.New("send rejected")}}
	uc := NewEnqueueAdVideoUseCase(planner, repo, pub, zap.NewNop())

	result, err := uc.Execute(context.Background(), "Buy now!", "u1", "")
	require.Error(t, err)
	assert.Nil(t, result)

	var pubErr *port.PublishError
	assert.True(t, errors.As(err, &pubErr))

	// Only the first scene got out; the job stays PENDING for external
	// reconciliation.
	assert.Len(t, pub.calls, 1)
	jobs, _ := repo.List(context.Background(), "")
	require.Len(t, jobs, 1)
	assert.Equal(t, entity.AdVideoStatusPending, jobs[0].Status)
}

func TestEnqueuePersistenceFailureIsFatal(t *testing.T) {
	planner := &stubPlanner{scenes: []entity.Scene{{Sort: 0, Type: entity.SceneTypeHuman}}}
	repo := newMemoryRepo()
	repo.failOps = true
	pub := &recordingPublisher{}
	uc := NewEnqueueAdVideoUseCase(planner, repo, pub, zap.NewNop())

	_, err := uc.Execute(context.Background(), "Buy now!", "u1", "")
	require.Error(t, err)

	var perErr *port.PersistenceError
	assert.True(t, errors.As(err, &perErr))
	assert.Empty(t, pub.calls)
}
