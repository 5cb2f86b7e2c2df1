package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/neuro-publico/conversation-engine/internal/domain/entity"
	"github.com/neuro-publico/conversation-engine/internal/domain/port"
)

type AdVideoRepository struct {
	pool *pgxpool.Pool
}

func NewAdVideoRepository(pool *pgxpool.Pool) *AdVideoRepository {
	return &AdVideoRepository{pool: pool}
}

const adVideoColumns = `id, owner_id, funnel_id, status, scenes, progress, result_url, error, created_at, updated_at`

func (r *AdVideoRepository) Create(ctx context.Context, job *entity.AdVideo) (*entity.AdVideo, error) {
	scenes, err := json.Marshal(job.Scenes)
	if err != nil {
		return nil, &port.PersistenceError{Op: "create", Err: fmt.Errorf("marshal scenes: %w", err)}
	}

	query := `
		INSERT INTO ad_videos (owner_id, funnel_id, status, scenes, progress, result_url, error, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING id`

	err = r.pool.QueryRow(ctx, query,
		job.OwnerID, job.FunnelID, string(job.Status), scenes,
		job.Progress, job.ResultURL, job.Error, job.CreatedAt, job.UpdatedAt,
	).Scan(&job.ID)
	if err != nil {
		return nil, &port.PersistenceError{Op: "create", Err: err}
	}
	return job, nil
}

func (r *AdVideoRepository) FindByID(ctx context.Context, id int64) (*entity.AdVideo, error) {
	query := `SELECT ` + adVideoColumns + ` FROM ad_videos WHERE id=$1`

	job, err := scanAdVideo(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, port.ErrJobNotFound
		}
		return nil, &port.PersistenceError{Op: "find", Err: err}
	}
	return job, nil
}

func (r *AdVideoRepository) List(ctx context.Context, ownerID string) ([]*entity.AdVideo, error) {
	query := `SELECT ` + adVideoColumns + ` FROM ad_videos`
	args := []any{}
	if ownerID != "" {
		query += ` WHERE owner_id=$1`
		args = append(args, ownerID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, &port.PersistenceError{Op: "list", Err: err}
	}
	defer rows.Close()

	var jobs []*entity.AdVideo
	for rows.Next() {
		job, err := scanAdVideo(rows)
		if err != nil {
			return nil, &port.PersistenceError{Op: "list", Err: err}
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, &port.PersistenceError{Op: "list", Err: err}
	}
	return jobs, nil
}

// Update applies the non-nil fields via read-modify-write inside a single
// transaction, so concurrent listeners touching the same job id do not lose
// updates. Returns ErrJobNotFound when the row does not exist.
func (r *AdVideoRepository) Update(ctx context.Context, id int64, fields entity.UpdateFields) (*entity.AdVideo, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, &port.PersistenceError{Op: "update", Err: err}
	}
	defer tx.Rollback(ctx)

	query := `SELECT ` + adVideoColumns + ` FROM ad_videos WHERE id=$1 FOR UPDATE`
	job, err := scanAdVideo(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, port.ErrJobNotFound
		}
		return nil, &port.PersistenceError{Op: "update", Err: err}
	}

	fields.ApplyTo(job)

	_, err = tx.Exec(ctx, `
		UPDATE ad_videos SET
			status=$2, progress=$3, result_url=$4, error=$5, updated_at=$6
		WHERE id=$1`,
		job.ID, string(job.Status), job.Progress, job.ResultURL, job.Error, job.UpdatedAt,
	)
	if err != nil {
		return nil, &port.PersistenceError{Op: "update", Err: err}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, &port.PersistenceError{Op: "update", Err: err}
	}
	return job, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAdVideo(row rowScanner) (*entity.AdVideo, error) {
	job := &entity.AdVideo{}
	var status string
	var scenes []byte
	err := row.Scan(
		&job.ID, &job.OwnerID, &job.FunnelID, &status, &scenes,
		&job.Progress, &job.ResultURL, &job.Error,
		&job.CreatedAt, &job.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	job.Status = entity.AdVideoStatus(status)
	if len(scenes) > 0 {
		if err := json.Unmarshal(scenes, &job.Scenes); err != nil {
			return nil, fmt.Errorf("unmarshal scenes: %w", err)
		}
	}
	return job, nil
}
