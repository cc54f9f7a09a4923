package session

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/aurix-store/internal/cart"
	"github.com/aurix-store/internal/offline"
	"github.com/aurix-store/internal/remote"
)

// ErrSessionIDRequired 会话标识缺失
var ErrSessionIDRequired = errors.New("session id required")

// Session 单个购物会话：本地购物车及其离线队列
type Session struct {
	ID    string
	Store *cart.Store
	Queue *offline.Queue
}

// Manager 会话注册表
// 会话标识由外部认证方签发，这里只做不透明键使用；
// 首次访问时惰性建会话，离线槽位里的未送达条目随之恢复。
type Manager struct {
	syncer  remote.CartSyncer
	storage offline.Storage

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager 创建会话注册表
func NewManager(syncer remote.CartSyncer, storage offline.Storage) *Manager {
	return &Manager{
		syncer:   syncer,
		storage:  storage,
		sessions: make(map[string]*Session),
	}
}

// Get 取会话，不存在则创建
func (m *Manager) Get(ctx context.Context, sessionID string) (*Session, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, ErrSessionIDRequired
	}

	m.mu.Lock()
	if s, ok := m.sessions[sessionID]; ok {
		m.mu.Unlock()
		return s, nil
	}
	m.mu.Unlock()

	// 构建放在锁外：恢复槽位要走存储
	store := cart.NewStore()
	queue, err := offline.NewQueue(ctx, sessionID, store, m.syncer, m.storage)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[sessionID]; ok {
		// 并发首访以先登记者为准
		return s, nil
	}
	s := &Session{ID: sessionID, Store: store, Queue: queue}
	m.sessions[sessionID] = s
	return s, nil
}

// DirtySessions 列出持有未送达条目的会话
// 合并内存态与持久化槽位，进程重启后仍能找到需要重放的会话。
func (m *Manager) DirtySessions(ctx context.Context) ([]string, error) {
	seen := make(map[string]bool)
	var out []string

	m.mu.Lock()
	for id, s := range m.sessions {
		if s.Queue.Pending() > 0 {
			seen[id] = true
			out = append(out, id)
		}
	}
	m.mu.Unlock()

	persisted, err := m.storage.Sessions(ctx)
	if err != nil {
		return out, err
	}
	for _, id := range persisted {
		if !seen[id] {
			out = append(out, id)
		}
	}
	return out, nil
}
