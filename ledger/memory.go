package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// MemoryStore keeps the ledger in process memory. Writers hold an exclusive
// lock for the whole update and stage their writes until fn returns nil.
type MemoryStore struct {
	mu     sync.RWMutex
	height uint64
	data   map[string]map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]map[string][]byte)}
}

func (s *MemoryStore) Update(ctx context.Context, fn func(tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memTx{store: s, height: s.height + 1, writes: make(map[string]map[string][]byte)}
	if err := fn(tx); err != nil {
		return err
	}
	for ns, kv := range tx.writes {
		dst, ok := s.data[ns]
		if !ok {
			dst = make(map[string][]byte, len(kv))
			s.data[ns] = dst
		}
		for k, v := range kv {
			dst[k] = v
		}
	}
	s.height = tx.height
	return nil
}

func (s *MemoryStore) View(ctx context.Context, fn func(tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(&memTx{store: s, height: s.height, readOnly: true})
}

func (s *MemoryStore) Height(ctx context.Context) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.height, nil
}

type memTx struct {
	store    *MemoryStore
	height   uint64
	readOnly bool
	writes   map[string]map[string][]byte
}

func (tx *memTx) Height() uint64 { return tx.height }

func (tx *memTx) Get(ns, key string, dst any) (bool, error) {
	raw, ok := tx.writes[ns][key]
	if !ok {
		raw, ok = tx.store.data[ns][key]
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return true, fmt.Errorf("ledger: decode %s/%s: %w", ns, key, err)
	}
	return true, nil
}

func (tx *memTx) Put(ns, key string, v any) error {
	if tx.readOnly {
		return ErrReadOnly
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("ledger: encode %s/%s: %w", ns, key, err)
	}
	kv, ok := tx.writes[ns]
	if !ok {
		kv = make(map[string][]byte)
		tx.writes[ns] = kv
	}
	kv[key] = raw
	return nil
}

func (tx *memTx) Keys(ns, prefix string) ([]string, error) {
	seen := make(map[string]struct{})
	for k := range tx.store.data[ns] {
		if strings.HasPrefix(k, prefix) {
			seen[k] = struct{}{}
		}
	}
	for k := range tx.writes[ns] {
		if strings.HasPrefix(k, prefix) {
			seen[k] = struct{}{}
		}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}
