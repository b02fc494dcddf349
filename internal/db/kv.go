package db

import (
	"context"
	"fmt"
	"sync"

	"cheers/internal/config"
)

// KV is a string-keyed persistent store. Get reports ok=false for an
// absent key.
type KV interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// MemoryKV keeps values in process memory.
type MemoryKV struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{values: make(map[string]string)}
}

func (m *MemoryKV) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryKV) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

// Open builds the backend named by cfg.Backend.
func Open(ctx context.Context, cfg *config.Config) (KV, error) {
	switch cfg.Backend {
	case "memory":
		return NewMemoryKV(), nil
	case "file":
		return NewFileKV(cfg.DataDir), nil
	case "redis":
		return DialRedis(ctx, cfg.RedisAddr, cfg.RedisPrefix)
	case "pocketbase":
		return InitManager(cfg.PBURL, cfg.PBEmail, cfg.PBPassword)
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}
