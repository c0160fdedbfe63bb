package kvstore

import (
	"context"
	"sync"
)

// Memory はプロセス内だけで保持するストアです。テストと一時利用向け。
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemory は空の Memory を作成します。
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

// Get は保持している値のコピーを返します。
func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

// Set は値のコピーを保持します。
func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}
