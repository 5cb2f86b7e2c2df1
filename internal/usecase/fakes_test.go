package usecase

import (
	"context"
	"errors"
	"sync"

	"github.com/neuro-publico/conversation-engine/internal/domain/entity"
	"github.com/neuro-publico/conversation-engine/internal/domain/port"
)

type stubPlanner struct {
	scenes []entity.Scene
	err    error
}

func (p *stubPlanner) PlanScenes(_ context.Context, _ string) ([]entity.Scene, error) {
	return p.scenes, p.err
}

type memoryRepo struct {
	mu      sync.Mutex
	nextID  int64
	jobs    map[int64]*entity.AdVideo
	failOps bool
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{nextID: 1, jobs: map[int64]*entity.AdVideo{}}
}

func (r *memoryRepo) Create(_ context.Context, job *entity.AdVideo) (*entity.AdVideo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failOps {
		return nil, &port.PersistenceError{Op: "create", Err: errors.New("db down")}
	}
	job.ID = r.nextID
	r.nextID++
	copied := *job
	r.jobs[job.ID] = &copied
	return job, nil
}

func (r *memoryRepo) FindByID(_ context.Context, id int64) (*entity.AdVideo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return nil, port.ErrJobNotFound
	}
	copied := *job
	return &copied, nil
}

func (r *memoryRepo) List(_ context.Context, ownerID string) ([]*entity.AdVideo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.AdVideo
	for _, job := range r.jobs {
		if ownerID == "" || job.OwnerID == ownerID {
			copied := *job
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *memoryRepo) Update(_ context.Context, id int64, fields entity.UpdateFields) (*entity.AdVideo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failOps {
		return nil, &port.PersistenceError{Op: "update", Err: errors.New("db down")}
	}
	job, ok := r.jobs[id]
	if !ok {
		return nil, port.ErrJobNotFound
	}
	fields.ApplyTo(job)
	copied := *job
	return &copied, nil
}

type publishCall struct {
	Queue     string
	AdVideoID int64
	Scene     entity.Scene
}

type recordingPublisher struct {
	mu      sync.Mutex
	calls   []publishCall
	failAt  int
	failErr error
}

func (p *recordingPublisher) Publish(_ context.Context, queueName string, adVideoID int64, scene entity.Scene) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failErr != nil && len(p.calls) == p.failAt {
		return p.failErr
	}
	p.calls = append(p.calls, publishCall{Queue: queueName, AdVideoID: adVideoID, Scene: scene})
	return nil
}

type recordingHandler struct {
	mu     sync.Mutex
	bodies []map[string]any
	err    error
}

func (h *recordingHandler) Handle(_ context.Context, body map[string]any) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.bodies = append(h.bodies, body)
	return h.err
}
