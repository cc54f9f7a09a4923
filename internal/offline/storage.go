package offline

import (
	"context"
	"strings"
	"sync"

	"github.com/aurix-store/internal/cache"
)

const slotKeyPrefix = "offline:"

// Storage 离线队列的持久化槽位，按会话隔离
// 启动时经 Load 恢复未送达的加购意图，使其跨进程重启存活。
type Storage interface {
	Load(ctx context.Context, sessionID string) ([]Entry, error)
	Save(ctx context.Context, sessionID string, entries []Entry) error
	Clear(ctx context.Context, sessionID string) error
	Sessions(ctx context.Context) ([]string, error)
}

// MemoryStorage 进程内实现，Redis 未启用时的降级选择，也用于测试
type MemoryStorage struct {
	mu    sync.Mutex
	slots map[string][]Entry
}

// NewMemoryStorage 创建进程内存储
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{slots: make(map[string][]Entry)}
}

// Load 读取会话槽位
func (m *MemoryStorage) Load(_ context.Context, sessionID string) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entries := m.slots[sessionID]
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out, nil
}

// Save 覆盖写入会话槽位
func (m *MemoryStorage) Save(_ context.Context, sessionID string, entries []Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(entries) == 0 {
		delete(m.slots, sessionID)
		return nil
	}
	stored := make([]Entry, len(entries))
	copy(stored, entries)
	m.slots[sessionID] = stored
	return nil
}

// Clear 清空会话槽位
func (m *MemoryStorage) Clear(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.slots, sessionID)
	return nil
}

// Sessions 列出存在未送达条目的会话
func (m *MemoryStorage) Sessions(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.slots))
	for sessionID := range m.slots {
		out = append(out, sessionID)
	}
	return out, nil
}

// RedisStorage 基于 Redis 的持久化实现
type RedisStorage struct{}

// NewRedisStorage 创建 Redis 存储；要求 cache.InitRedis 已完成
func NewRedisStorage() *RedisStorage {
	return &RedisStorage{}
}

// Load 读取会话槽位
func (r *RedisStorage) Load(ctx context.Context, sessionID string) ([]Entry, error) {
	var entries []Entry
	found, err := cache.GetJSON(ctx, slotKeyPrefix+sessionID, &entries)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return entries, nil
}

// Save 覆盖写入会话槽位
func (r *RedisStorage) Save(ctx context.Context, sessionID string, entries []Entry) error {
	if len(entries) == 0 {
		return cache.Del(ctx, slotKeyPrefix+sessionID)
	}
	return cache.SetJSON(ctx, slotKeyPrefix+sessionID, entries, 0)
}

// Clear 清空会话槽位
func (r *RedisStorage) Clear(ctx context.Context, sessionID string) error {
	return cache.Del(ctx, slotKeyPrefix+sessionID)
}

// Sessions 列出存在未送达条目的会话
func (r *RedisStorage) Sessions(ctx context.Context) ([]string, error) {
	keys, err := cache.ScanKeys(ctx, slotKeyPrefix+"*")
	if err != nil {
		return nil, err
	}
	sessions := make([]string, 0, len(keys))
	for _, key := range keys {
		sessions = append(sessions, strings.TrimPrefix(key, slotKeyPrefix))
	}
	return sessions, nil
}
