package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS ad_videos (
	id         BIGSERIAL PRIMARY KEY,
	owner_id   VARCHAR(64) NOT NULL DEFAULT '',
	funnel_id  VARCHAR(64) NOT NULL DEFAULT '',
	status     VARCHAR(32) NOT NULL DEFAULT 'PENDING',
	scenes     JSONB,
	progress   INTEGER NOT NULL DEFAULT 0,
	result_url TEXT NOT NULL DEFAULT '',
	error      TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_ad_videos_owner_id ON ad_videos (owner_id);
`

// RunMigrations applies the schema. Idempotent.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
