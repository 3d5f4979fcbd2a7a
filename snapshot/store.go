package snapshot

import "context"

// Store persists one encoded snapshot per key. Keys are actor
// addresses rendered as "kind/id".
//
// Load returns (nil, nil) when no snapshot exists for the key; an
// absent snapshot is not an error, the actor simply starts from its
// default state.
type Store interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
	Close() error
}
