// Package storage provides durable object storage for final deliverables.
package storage

import "context"

// ArtifactStore is the durable home of finished streaming packages. Callers
// upload files by path and resolve a playable URL for a stored object.
type ArtifactStore interface {
	PutFile(ctx context.Context, bucket, key, path, contentType string) error
	ObjectURL(ctx context.Context, bucket, key string) (string, error)
}
