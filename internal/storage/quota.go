// internal/storage/quota.go
package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Quota caps the combined size of all blobs written through it, the way a
// browser caps local storage per origin.
type Quota struct {
	Store
	limit int64

	mu    sync.Mutex
	sizes map[string]int64
}

// NewQuota wraps inner with a byte limit. The current size of each key in keys
// is read up front so the first write is measured against existing data.
func NewQuota(ctx context.Context, inner Store, limit int64, keys ...string) (*Quota, error) {
	q := &Quota{Store: inner, limit: limit, sizes: make(map[string]int64, len(keys))}
	for _, key := range keys {
		blob, err := inner.Load(ctx, key)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("measure %s: %w", key, err)
		}
		q.sizes[key] = int64(len(blob))
	}
	return q, nil
}

func (q *Quota) Save(ctx context.Context, key string, blob []byte) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	var used int64
	for k, n := range q.sizes {
		if k != key {
			used += n
		}
	}
	if q.limit > 0 && used+int64(len(blob)) > q.limit {
		return fmt.Errorf("%w: writing %d bytes to %s with %d of %d bytes in use", ErrQuotaExceeded, len(blob), key, used, q.limit)
	}

	if err := q.Store.Save(ctx, key, blob); err != nil {
		return err
	}
	q.sizes[key] = int64(len(blob))
	return nil
}

// Used returns the bytes currently accounted for.
func (q *Quota) Used() int64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	var used int64
	for _, n := range q.sizes {
		used += n
	}
	return used
}
