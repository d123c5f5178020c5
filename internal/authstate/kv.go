package authstate

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

// KV is the durable key-value sink the store writes through to. It is read
// only once, at hydration.
type KV interface {
	Load(ctx context.Context, keys []string) (map[string]string, error)
	// Store sets values and removes keys in a single unit.
	Store(ctx context.Context, values map[string]string, remove []string) error
	Clear(ctx context.Context, keys []string) error
}

// RedisKV persists the record in Redis under a profile-scoped prefix.
type RedisKV struct {
	client *redis.Client
	prefix string
}

// NewRedisKV constructs a RedisKV scoped to the device/browser profile.
func NewRedisKV(client *redis.Client, profile string) *RedisKV {
	return &RedisKV{client: client, prefix: "console:" + profile + ":"}
}

func (r *RedisKV) key(k string) string {
	return r.prefix + k
}

// Load reads the given keys; missing keys are omitted from the result.
func (r *RedisKV) Load(ctx context.Context, keys []string) (map[string]string, error) {
	scoped := make([]string, len(keys))
	for i, k := range keys {
		scoped[i] = r.key(k)
	}
	vals, err := r.client.MGet(ctx, scoped...).Result()
	if err != nil {
		return nil, fmt.Errorf("authstate: redis load: %w", err)
	}
	out := make(map[string]string, len(keys))
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}
		out[keys[i]] = s
	}
	return out, nil
}

// Store writes values and deletions in one MULTI/EXEC transaction.
func (r *RedisKV) Store(ctx context.Context, values map[string]string, remove []string) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for k, v := range values {
			pipe.Set(ctx, r.key(k), v, 0)
		}
		if len(remove) > 0 {
			scoped := make([]string, len(remove))
			for i, k := range remove {
				scoped[i] = r.key(k)
			}
			pipe.Del(ctx, scoped...)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("authstate: redis store: %w", err)
	}
	return nil
}

// Clear deletes keys.
func (r *RedisKV) Clear(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	scoped := make([]string, len(keys))
	for i, k := range keys {
		scoped[i] = r.key(k)
	}
	if err := r.client.Del(ctx, scoped...).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("authstate: redis clear: %w", err)
	}
	return nil
}

// MemoryKV keeps the record in process memory.
type MemoryKV struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemoryKV constructs an empty MemoryKV.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{values: make(map[string]string)}
}

// Load satisfies KV.
func (m *MemoryKV) Load(_ context.Context, keys []string) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		if v, ok := m.values[k]; ok {
			out[k] = v
		}
	}
	return out, nil
}

// Store satisfies KV.
func (m *MemoryKV) Store(_ context.Context, values map[string]string, remove []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range values {
		m.values[k] = v
	}
	for _, k := range remove {
		delete(m.values, k)
	}
	return nil
}

// Clear satisfies KV.
func (m *MemoryKV) Clear(_ context.Context, keys []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.values, k)
	}
	return nil
}

// Len reports how many keys are stored.
func (m *MemoryKV) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.values)
}
