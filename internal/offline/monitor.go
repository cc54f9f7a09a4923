package offline

import (
	"context"
	"sync"
	"time"

	"github.com/aurix-store/internal/logger"
	"github.com/aurix-store/internal/remote"
)

// Monitor 周期探测远端健康端点，维护在线/离线判定
// 从离线切回在线时触发已注册的恢复回调（典型动作：为各脏会话投递重放任务）。
// 启动时视为离线，首次探测成功即计一次恢复，重启前遗留的待送达条目随之重放。
type Monitor struct {
	syncer   remote.CartSyncer
	interval time.Duration

	mu        sync.Mutex
	online    bool
	callbacks []func(ctx context.Context)

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewMonitor 创建连通性监视器，interval<=0 时取 15 秒
func NewMonitor(syncer remote.CartSyncer, interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &Monitor{
		syncer:   syncer,
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// OnRestore 注册恢复回调；须在 Start 前调用
func (m *Monitor) OnRestore(fn func(ctx context.Context)) {
	if fn == nil {
		return
	}
	m.mu.Lock()
	m.callbacks = append(m.callbacks, fn)
	m.mu.Unlock()
}

// Online 返回最近一次探测的连通性判定
func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// Name 服务名
func (m *Monitor) Name() string {
	return "connectivity-monitor"
}

// Start 启动探测循环，阻塞直至 Stop 或 ctx 取消
func (m *Monitor) Start(ctx context.Context) error {
	defer close(m.doneCh)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.probe(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-m.stopCh:
			return nil
		case <-ticker.C:
			m.probe(ctx)
		}
	}
}

// Stop 停止探测循环
func (m *Monitor) Stop(ctx context.Context) error {
	m.stopOnce.Do(func() {
		close(m.stopCh)
	})
	select {
	case <-m.doneCh:
	case <-ctx.Done():
	}
	return nil
}

func (m *Monitor) probe(ctx context.Context) {
	err := m.syncer.Health(ctx)
	now := err == nil

	m.mu.Lock()
	was := m.online
	m.online = now
	callbacks := m.callbacks
	m.mu.Unlock()

	switch {
	case was && !now:
		logger.Warnw("remote_offline", "error", err)
	case !was && now:
		logger.Infow("remote_restored")
		for _, fn := range callbacks {
			fn(ctx)
		}
	}
}
