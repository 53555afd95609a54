package contract

import "context"

// SyncStateRepository is the durable key/value store behind resumable
// sync cursors. Every write is an upsert on key; once SetState returns,
// a restarted process reading the same key observes the new value.
type SyncStateRepository interface {
	// GetNumber reads a numeric cursor, returning fallback when the
	// key is absent or not a number >= 1.
	GetNumber(ctx context.Context, key string, fallback int) (int, error)

	SetState(ctx context.Context, key, value string) error

	// GetLastSync reads a watermark value; nil means never synced.
	GetLastSync(ctx context.Context, key string) (*string, error)

	SetLastSync(ctx context.Context, key, value string) error
}
