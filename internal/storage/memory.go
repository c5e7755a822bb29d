package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"maps"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryStore keeps objects in process memory. Tests use it in place of
// the S3 store.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]memoryObject
	now     func() time.Time
}

type memoryObject struct {
	data     []byte
	modified time.Time
	metadata map[string]string
}

func (o memoryObject) info(key string) ObjectInfo {
	return ObjectInfo{Key: key, Size: int64(len(o.data)), LastModified: o.modified, Metadata: o.metadata}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		objects: map[string]memoryObject{},
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (m *MemoryStore) Put(_ context.Context, key string, body io.Reader, _ int64, opts PutOptions) (ObjectInfo, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("read object body: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	object := memoryObject{data: data, modified: m.now(), metadata: maps.Clone(opts.Metadata)}
	m.objects[key] = object
	return object.info(key), nil
}

func (m *MemoryStore) Get(_ context.Context, key string) (io.ReadCloser, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	object, ok := m.objects[key]
	if !ok {
		return nil, ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(object.data)), nil
}

func (m *MemoryStore) List(_ context.Context, prefix string) ([]ObjectInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	infos := make([]ObjectInfo, 0)
	for key, object := range m.objects {
		if strings.HasPrefix(key, prefix) {
			infos = append(infos, object.info(key))
		}
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })
	return infos, nil
}
