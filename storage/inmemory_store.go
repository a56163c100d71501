package storage

import (
	"context"
	"encoding/json"
	"hash/fnv"
	"sync"
)

const (
	// UpdateBufferSize is the capacity of each update listener channel. Updates
	// to a full listener are dropped.
	UpdateBufferSize = 255

	shardCount = 64
)

type InmemoryStore struct {
	shards [shardCount]*shard

	mu        sync.Mutex
	listeners map[chan *Update]struct{}

	// stop will be closed when Close() is called
	stop      chan struct{}
	closeOnce sync.Once
}

type shard struct {
	sync.RWMutex
	values map[string]string
}

func NewInmemoryStore() *InmemoryStore {
	i := &InmemoryStore{
		listeners: make(map[chan *Update]struct{}),
		stop:      make(chan struct{}),
	}

	for n := range i.shards {
		i.shards[n] = &shard{values: make(map[string]string)}
	}

	return i
}

func (i *InmemoryStore) Close() error {
	i.closeOnce.Do(func() {
		close(i.stop)

		i.mu.Lock()
		defer i.mu.Unlock()

		for updateChan := range i.listeners {
			close(updateChan)
			delete(i.listeners, updateChan)
		}
	})

	return nil
}

func (i *InmemoryStore) Set(ctx context.Context, key, value string) error {
	s := i.shardFor(key)

	s.Lock()
	defer s.Unlock()

	s.values[key] = value

	// Publishing under the shard lock keeps updates to one key in the same
	// order as the writes.
	i.publish(&Update{Key: key, Value: value})

	return nil
}

func (i *InmemoryStore) Get(ctx context.Context, key string) (string, bool, error) {
	s := i.shardFor(key)

	s.RLock()
	value, ok := s.values[key]
	s.RUnlock()

	return value, ok, nil
}

func (i *InmemoryStore) Len() int {
	n := 0

	for _, s := range i.shards {
		s.RLock()
		n += len(s.values)
		s.RUnlock()
	}

	return n
}

func (i *InmemoryStore) Backup() ([]byte, error) {
	values := make(map[string]string, i.Len())

	// Hold every shard so the copy is consistent across keys
	for _, s := range i.shards {
		s.RLock()
		defer s.RUnlock()
	}

	for _, s := range i.shards {
		for key, value := range s.values {
			values[key] = value
		}
	}

	return json.Marshal(values)
}

func (i *InmemoryStore) ListenToUpdates() (<-chan *Update, func()) {
	updateChan := make(chan *Update, UpdateBufferSize)

	i.mu.Lock()
	defer i.mu.Unlock()

	if !i.isRunning() {
		close(updateChan)
		return updateChan, func() {}
	}

	i.listeners[updateChan] = struct{}{}

	stop := func() {
		i.mu.Lock()
		defer i.mu.Unlock()

		if _, ok := i.listeners[updateChan]; ok {
			close(updateChan)
			delete(i.listeners, updateChan)
		}
	}

	return updateChan, stop
}

func (i *InmemoryStore) publish(update *Update) {
	i.mu.Lock()
	defer i.mu.Unlock()

	for updateChan := range i.listeners {
		select {
		case updateChan <- update:
		default:
			// Listener is full, drop the update
		}
	}
}

func (i *InmemoryStore) shardFor(key string) *shard {
	h := fnv.New32a()
	h.Write([]byte(key))
	return i.shards[h.Sum32()%shardCount]
}

// isRunning returns true if Close has not been called
func (i *InmemoryStore) isRunning() bool {
	select {
	case <-i.stop:
		return false

	default:
		return true
	}
}

var _ Store = (*InmemoryStore)(nil)
