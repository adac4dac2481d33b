package cache

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
create extension if not exists vector;

create table if not exists video_cache (
    id              uuid primary key,
    topic           text not null unique,
    embedding       vector(1536) not null,
    artifact_bucket text not null,
    artifact_key    text not null,
    artifact_url    text not null,
    metadata        jsonb not null default '{}'::jsonb,
    created_at      timestamptz not null default now()
);

create index if not exists video_cache_embedding_idx
    on video_cache using hnsw (embedding vector_cosine_ops);
`

// EnsureSchema creates the cache table and its vector index if absent.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("cache: ensure schema: %w", err)
	}
	return nil
}
