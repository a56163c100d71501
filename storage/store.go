package storage

import "context"

// Store is the key-value mapping shared by every connection. Implementations
// synchronise internally, callers never lock.
type Store interface {
	// Set inserts or overwrites key.
	Set(ctx context.Context, key, value string) error

	// Get returns the value of key, and false if key was never set.
	Get(ctx context.Context, key string) (string, bool, error)

	Len() int

	// Backup returns a point-in-time copy of every key as a JSON object.
	Backup() ([]byte, error)

	// ListenToUpdates returns a channel that receives every subsequent Set,
	// and a func that stops delivery and releases the channel.
	ListenToUpdates() (<-chan *Update, func())

	Close() error
}

// Update describes one Set.
type Update struct {
	Key   string
	Value string
}
