package port

import (
	"context"

	"github.com/neuro-publico/conversation-engine/internal/domain/entity"
)

type AdVideoRepository interface {
	Create(ctx context.Context, job *entity.AdVideo) (*entity.AdVideo, error)
	FindByID(ctx context.Context, id int64) (*entity.AdVideo, error)
	// List returns all jobs, filtered by owner when ownerID is non-empty.
	List(ctx context.Context, ownerID string) ([]*entity.AdVideo, error)
	// Update applies the non-nil fields inside a single transaction and
	// returns the stored record. Returns ErrJobNotFound when the job is gone.
	Update(ctx context.Context, id int64, fields entity.UpdateFields) (*entity.AdVideo, error)
}
