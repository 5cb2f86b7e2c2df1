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

func seededRepo(t *testing.T, id int64) *memoryRepo {
	t.Helper()
	repo := newMemoryRepo()
	repo.nextID = id
	_, err := repo.Create(context.Background(), entity.NewAdVideo("u1", "", nil))
	require.NoError(t, err)
	return repo
}

func TestProcessSceneMarksJobInProgress(t *testing.T) {
	repo := seededRepo(t, 42)
	human := &recordingHandler{}
	uc := NewProcessSceneUseCase(repo, map[entity.SceneType]port.SceneHandler{
		entity.SceneTypeHuman: human,
	}, zap.NewNop())

	// No attributes: the id comes from the body, the type from the queue.
	msg := port.Message{Body: `{"ad_video_id": 42, "sort": 0, "type": "human_scene", "content": {}}`}
	uc.Execute(context.Background(), msg, entity.SceneTypeHuman)

	job, err := repo.FindByID(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, entity.AdVideoStatusInProgress, job.Status)
	assert.Equal(t, 10, job.Progress)

	require.Len(t, human.bodies, 1)
	assert.Equal(t, map[string]any{}, human.bodies[0]["content"])
}

func TestProcessSceneAttributeTypeWins(t *testing.T) {
	repo := seededRepo(t, 7)
	human := &recordingHandler{}
	animated := &recordingHandler{}
	uc := NewProcessSceneUseCase(repo, map[entity.SceneType]port.SceneHandler{
		entity.SceneTypeHuman:    human,
		entity.SceneTypeAnimated: animated,
	}, zap.NewNop())

	msg := port.Message{
		Body: `{"ad_video_id": 7, "content": {}}`,
		Attributes: map[string]string{
			entity.AttrSceneType: "animated_scene",
			entity.AttrAdVideoID: "7",
		},
	}
	uc.Execute(context.Background(), msg, entity.SceneTypeHuman)

	assert.Empty(t, human.bodies)
	assert.Len(t, animated.bodies, 1)
}

func TestProcessSceneMalformedBodyStillDispatches(t *testing.T) {
	repo := newMemoryRepo()
	human := &recordingHandler{}
	uc := NewProcessSceneUseCase(repo, map[entity.SceneType]port.SceneHandler{
		entity.SceneTypeHuman: human,
	}, zap.NewNop())

	msg := port.Message{Body: `not json`}
	uc.Execute(context.Background(), msg, entity.SceneTypeHuman)

	// No job update happened and the handler still got the raw fallback.
	assert.Empty(t, repo.jobs)
	require.Len(t, human.bodies, 1)
	assert.Equal(t, map[string]any{"raw": "not json"}, human.bodies[0])
}

func TestProcessSceneUnknownTypeIsDropped(t *testing.T) {
	repo := seededRepo(t, 3)
	human := &recordingHandler{}
	uc := NewProcessSceneUseCase(repo, map[entity.SceneType]port.SceneHandler{
		entity.SceneTypeHuman: human,
	}, zap.NewNop())

	msg := port.Message{
		Body:       `{"ad_video_id": 3, "content": {}}`,
		Attributes: map[string]string{entity.AttrSceneType: "hologram_scene"},
	}
	uc.Execute(context.Background(), msg, entity.SceneTypeHuman)

	// The status update still happened; dispatch was dropped.
	job, err := repo.FindByID(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, entity.AdVideoStatusInProgress, job.Status)
	assert.Empty(t, human.bodies)
}

func TestProcessSceneHandlerErrorIsSwallowed(t *testing.T) {
	repo := seededRepo(t, 5)
	human := &recordingHandler{err: errors.New("render failed")}
	uc := NewProcessSceneUseCase(repo, map[entity.SceneType]port.SceneHandler{
		entity.SceneTypeHuman: human,
	}, zap.NewNop())

	msg := port.Message{Body: `{"ad_video_id": 5, "content": {}}`}

	assert.NotPanics(t, func() {
		uc.Execute(context.Background(), msg, entity.SceneTypeHuman)
	})
	assert.Len(t, human.bodies, 1)
}

func TestProcessSceneMissingJobDoesNotBlockDispatch(t *testing.T) {
	repo := newMemoryRepo()
	human := &recordingHandler{}
	uc := NewProcessSceneUseCase(repo, map[entity.SceneType]port.SceneHandler{
		entity.SceneTypeHuman: human,
	}, zap.NewNop())

	msg := port.Message{
		Body:       `{"ad_video_id": 999, "content": {}}`,
		Attributes: map[string]string{entity.AttrAdVideoID: "999"},
	}
	uc.Execute(context.Background(), msg, entity.SceneTypeHuman)

	assert.Len(t, human.bodies, 1)
}
