// Package cache provides the semantic cache in front of the generation
// pipeline: a pgvector-backed similarity index plus the generative-model
// judge that decides whether a candidate actually answers the topic.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"videogen/internal/domain"
)

// SimilarityIndex stores embedding vectors with metadata and supports
// nearest-neighbor lookup. Records are only ever inserted, never mutated.
type SimilarityIndex interface {
	Query(ctx context.Context, vector []float32, topK int) ([]domain.CacheCandidate, error)
	Upsert(ctx context.Context, rec domain.CacheRecord) error
}

const queryNearest = `
select id, topic, artifact_bucket, artifact_key, artifact_url, metadata,
       1 - (embedding <=> $1::vector) as score
from video_cache
order by embedding <=> $1::vector
limit $2;
`

const insertRecord = `
insert into video_cache (id, topic, embedding, artifact_bucket, artifact_key, artifact_url, metadata, created_at)
values ($1, $2, $3::vector, $4, $5, $6, $7::jsonb, now())
on conflict (topic) do nothing;
`

// querier is the slice of pgxpool.Pool the index uses. Tests substitute a
// fake row source to exercise the scanning without a database.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PgVectorIndex implements SimilarityIndex on Postgres with the pgvector
// extension.
type PgVectorIndex struct {
	db querier
}

// NewPgVectorIndex constructs an index over the given pool.
func NewPgVectorIndex(pool *pgxpool.Pool) *PgVectorIndex {
	return &PgVectorIndex{db: pool}
}

// Query returns the topK nearest records by cosine distance, best first.
func (x *PgVectorIndex) Query(ctx context.Context, vector []float32, topK int) ([]domain.CacheCandidate, error) {
	if topK <= 0 {
		topK = 1
	}

	rows, err := x.db.Query(ctx, queryNearest, vectorLiteral(vector), topK)
	if err != nil {
		return nil, fmt.Errorf("cache: query index: %w", err)
	}
	defer rows.Close()

	var candidates []domain.CacheCandidate
	for rows.Next() {
		var (
			c        domain.CacheCandidate
			topic    string
			metaJSON []byte
		)
		if err := rows.Scan(&c.ID, &topic, &c.Artifact.Bucket, &c.Artifact.Key, &c.Artifact.URL, &metaJSON, &c.Score); err != nil {
			return nil, fmt.Errorf("cache: scan candidate: %w", err)
		}
		c.Metadata = map[string]string{"topic": topic}
		if len(metaJSON) > 0 {
			var meta map[string]string
			if err := json.Unmarshal(metaJSON, &meta); err == nil {
				for k, v := range meta {
					c.Metadata[k] = v
				}
			}
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("cache: iterate candidates: %w", err)
	}
	return candidates, nil
}

// Upsert inserts a new record keyed by topic. An existing record for the same
// topic wins; records are never overwritten.
func (x *PgVectorIndex) Upsert(ctx context.Context, rec domain.CacheRecord) error {
	id := rec.ID
	if id == "" {
		id = uuid.NewString()
	}

	metaJSON, err := json.Marshal(rec.Metadata)
	if err != nil {
		return fmt.Errorf("cache: marshal metadata: %w", err)
	}

	_, err = x.db.Exec(ctx, insertRecord,
		id, rec.Topic, vectorLiteral(rec.Embedding),
		rec.Artifact.Bucket, rec.Artifact.Key, rec.Artifact.URL, metaJSON)
	if err != nil {
		return fmt.Errorf("cache: insert record: %w", err)
	}
	return nil
}

// vectorLiteral renders a vector in pgvector's input syntax.
func vectorLiteral(vector []float32) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, v := range vector {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(v), 'g', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}
