package blob

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// Memory is an in-process Store.
type Memory struct {
	mu   sync.RWMutex
	objs map[string]memObj
}

type memObj struct {
	data []byte
	mod  time.Time
}

// NewMemory creates an empty memory store.
func NewMemory() *Memory {
	return &Memory{objs: make(map[string]memObj)}
}

func (m *Memory) Driver() Driver { return DriverMemory }

func (m *Memory) Put(_ context.Context, key string, data []byte) (Info, error) {
	if err := validateKey(key); err != nil {
		return Info{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	obj := memObj{data: append([]byte(nil), data...), mod: time.Now().UTC()}
	m.objs[key] = obj
	return Info{Key: key, Size: int64(len(data)), LastModified: obj.mod}, nil
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objs[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), obj.data...), nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objs, key)
	return nil
}

func (m *Memory) List(_ context.Context, prefix string) ([]Info, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Info
	for k, obj := range m.objs {
		if strings.HasPrefix(k, prefix) {
			out = append(out, Info{Key: k, Size: int64(len(obj.data)), LastModified: obj.mod})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}
