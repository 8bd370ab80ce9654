// Package dedupe tracks transaction identities already ingested so that a
// client retrying a POST does not double count cash flow.
package dedupe

import (
	"container/list"
	"context"
	"sync"
)

// Deduper records seen transaction keys.
type Deduper interface {
	// SeenAndRecord reports whether key was already recorded and records it
	// if not. The check and the write happen under one lock.
	SeenAndRecord(ctx context.Context, key string) bool

	// Unrecord forgets key. Used when the ledger append that followed a
	// successful SeenAndRecord failed, so the client can retry.
	Unrecord(ctx context.Context, key string)

	Size() int64
}

// Key builds the dedupe key for a user's transaction.
func Key(userID, transactionID string) string {
	return userID + "\x00" + transactionID
}

// memoryDeduper keeps keys in insertion order and evicts the oldest once
// maxSize is reached. maxSize <= 0 disables eviction.
type memoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]*list.Element
	order   *list.List
	maxSize int
}

const defaultMaxSize = 50000

// NewInMemoryDeduper creates a Deduper backed by process memory.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &memoryDeduper{
		seen:    make(map[string]*list.Element),
		order:   list.New(),
		maxSize: defaultMaxSize,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *memoryDeduper) SeenAndRecord(_ context.Context, key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[key]; ok {
		return true
	}
	if d.maxSize > 0 && d.order.Len() >= d.maxSize {
		if oldest := d.order.Front(); oldest != nil {
			delete(d.seen, oldest.Value.(string))
			d.order.Remove(oldest)
		}
	}
	d.seen[key] = d.order.PushBack(key)
	return false
}

func (d *memoryDeduper) Unrecord(_ context.Context, key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if el, ok := d.seen[key]; ok {
		d.order.Remove(el)
		delete(d.seen, key)
	}
}

func (d *memoryDeduper) Size() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int64(d.order.Len())
}
