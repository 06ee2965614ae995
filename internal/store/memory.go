package store

import (
	"context"
	"sort"
	"sync"
)

// Memory is an in-process Medium. A positive quota caps the total size of
// keys plus values, the way a browser caps localStorage.
type Memory struct {
	mu        sync.Mutex
	data      map[string][]byte
	revisions map[string]int64
	quota     int
	closed    bool
}

// NewMemory creates an empty memory medium. quota <= 0 means unlimited.
func NewMemory(quota int) *Memory {
	return &Memory{
		data:      make(map[string][]byte),
		revisions: make(map[string]int64),
		quota:     quota,
	}
}

// Get returns a copy of the stored bytes.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, false, ErrClosed
	}
	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

// Apply checks the quota against the post-batch size before touching anything.
func (m *Memory) Apply(ctx context.Context, muts []Mutation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}

	if m.quota > 0 {
		size := m.sizeLocked()
		pending := make(map[string]int)
		for _, mut := range muts {
			old, ok := pending[mut.Key]
			if !ok {
				if v, exists := m.data[mut.Key]; exists {
					old = len(mut.Key) + len(v)
				}
			}
			next := 0
			if !mut.Delete {
				next = len(mut.Key) + len(mut.Value)
			}
			size += next - old
			pending[mut.Key] = next
		}
		if size > m.quota {
			return ErrQuotaExceeded
		}
	}

	for _, mut := range muts {
		if mut.Delete {
			delete(m.data, mut.Key)
			continue
		}
		m.data[mut.Key] = append([]byte(nil), mut.Value...)
		m.revisions[mut.Key]++
	}
	return nil
}

// Keys lists stored keys in ascending order.
func (m *Memory) Keys(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Revision returns how many times key has been written.
func (m *Memory) Revision(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, ErrClosed
	}
	return m.revisions[key], nil
}

// Size returns the bytes currently counted against the quota.
func (m *Memory) Size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sizeLocked()
}

func (m *Memory) sizeLocked() int {
	n := 0
	for k, v := range m.data {
		n += len(k) + len(v)
	}
	return n
}

// Close marks the medium closed. Further calls fail with ErrClosed.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
