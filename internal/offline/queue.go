package offline

import (
	"context"
	"errors"
	"sync"

	"github.com/aurix-store/internal/cart"
	"github.com/aurix-store/internal/constants"
	"github.com/aurix-store/internal/logger"
	"github.com/aurix-store/internal/models"
	"github.com/aurix-store/internal/remote"
)

// Queue 为单个会话的购物车提供离线韧性装饰
// 加购先落本地 Store，远端确认失败（不可达）时记入持久化槽位，
// 网络恢复后按入队顺序（FIFO）重放。
type Queue struct {
	sessionID string
	store     *cart.Store
	syncer    remote.CartSyncer
	storage   Storage

	mu          sync.Mutex
	entries     []Entry
	corrections []Correction

	replayMu sync.Mutex
}

// NewQueue 创建离线队列并从持久化槽位恢复未送达条目
func NewQueue(ctx context.Context, sessionID string, store *cart.Store, syncer remote.CartSyncer, storage Storage) (*Queue, error) {
	q := &Queue{
		sessionID: sessionID,
		store:     store,
		syncer:    syncer,
		storage:   storage,
	}
	entries, err := storage.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	// 进程崩溃可能把条目留在 replaying 状态，恢复时一律回到 pending
	for i := range entries {
		entries[i].Status = constants.EntryStatusPending
	}
	q.entries = entries
	return q, nil
}

// Store 返回被装饰的购物车
func (q *Queue) Store() *cart.Store {
	return q.store
}

// SubmitAdd 提交一次加购：先乐观更新本地购物车，再尝试远端确认
// 返回值 queued=true 表示远端不可达、意图已入队等待重放（调用方展示“已离线保存”）。
// 校验失败在本地直接拒绝，不触达网络。
func (q *Queue) SubmitAdd(ctx context.Context, productID uint, name string, unitPrice models.Money, quantity int, variant models.Variant) (cart.Snapshot, bool, error) {
	prev := q.store.Quantity(productID, variant)
	snap, err := q.store.AddItem(productID, name, unitPrice, quantity, variant)
	if err != nil {
		return snap, false, err
	}

	_, err = q.syncer.SyncAdd(ctx, remote.AddRequest{
		SessionID: q.sessionID,
		ProductID: productID,
		Quantity:  quantity,
		Variant:   variant,
	})
	if err == nil {
		return snap, false, nil
	}

	var stockErr *remote.StockError
	switch {
	case errors.Is(err, remote.ErrRemoteUnreachable) || errors.Is(err, context.DeadlineExceeded):
		entry := newEntry(q.sessionID, productID, name, unitPrice, quantity, variant)
		q.mu.Lock()
		q.entries = append(q.entries, entry)
		q.mu.Unlock()
		q.persist(ctx)
		logger.Infow("offline_add_queued",
			"session", q.sessionID,
			"product_id", productID,
			"quantity", quantity,
		)
		return snap, true, nil
	case errors.As(err, &stockErr):
		// 同步路径上就拿到了库存拒绝，立即收敛本地数量
		snap = q.clamp(productID, name, variant, stockErr.Available)
		return snap, false, stockErr
	default:
		// 远端明确拒绝（非库存原因），回滚本次增量
		snap = q.store.ForceQuantity(productID, variant, prev)
		return snap, false, err
	}
}

// Replay 按 FIFO 顺序重放未送达条目；由连通性恢复信号触发
// 重放途中再次断网时剩余条目回到 pending，等待下一次恢复信号，不限重试次数。
func (q *Queue) Replay(ctx context.Context) error {
	q.replayMu.Lock()
	defer q.replayMu.Unlock()

	for {
		q.mu.Lock()
		if len(q.entries) == 0 {
			q.mu.Unlock()
			return nil
		}
		q.entries[0].Status = constants.EntryStatusReplaying
		entry := q.entries[0]
		q.mu.Unlock()

		_, err := q.syncer.SyncAdd(ctx, remote.AddRequest{
			SessionID: entry.SessionID,
			ProductID: entry.ProductID,
			Quantity:  entry.Quantity,
			Variant:   entry.Variant,
		})

		var stockErr *remote.StockError
		switch {
		case err == nil:
			q.finishHead(ctx, constants.EntryStatusConfirmed)
			logger.Debugw("offline_replay_confirmed", "session", q.sessionID, "entry", entry.ID)
		case errors.Is(err, remote.ErrRemoteUnreachable) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
			q.mu.Lock()
			if len(q.entries) > 0 {
				q.entries[0].Status = constants.EntryStatusPending
			}
			q.mu.Unlock()
			q.persist(ctx)
			logger.Warnw("offline_replay_interrupted", "session", q.sessionID, "pending", q.Pending())
			return nil
		case errors.As(err, &stockErr):
			q.finishHead(ctx, constants.EntryStatusFailed)
			q.clamp(entry.ProductID, entry.Name, entry.Variant, stockErr.Available)
			logger.Warnw("offline_replay_stock_rejected",
				"session", q.sessionID,
				"product_id", entry.ProductID,
				"available", stockErr.Available,
			)
		default:
			q.finishHead(ctx, constants.EntryStatusFailed)
			logger.Warnw("offline_replay_rejected", "session", q.sessionID, "entry", entry.ID, "error", err)
		}
	}
}

// Pending 未送达条目数
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// Corrections 取走并清空累积的库存修正通知
func (q *Queue) Corrections() []Correction {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.corrections
	q.corrections = nil
	return out
}

// clamp 把本地数量钉到远端确认的可售量，并记录修正通知
func (q *Queue) clamp(productID uint, name string, variant models.Variant, available int) cart.Snapshot {
	requested := q.store.Quantity(productID, variant)
	if available >= requested {
		return q.store.Snapshot()
	}
	snap := q.store.ForceQuantity(productID, variant, available)
	q.mu.Lock()
	q.corrections = append(q.corrections, Correction{
		ProductID: productID,
		Name:      name,
		Variant:   variant.Clone(),
		Requested: requested,
		Confirmed: available,
	})
	q.mu.Unlock()
	return snap
}

// finishHead 弹出队首条目（终态 confirmed/failed 均丢弃）并持久化剩余
func (q *Queue) finishHead(ctx context.Context, status string) {
	q.mu.Lock()
	if len(q.entries) > 0 {
		q.entries[0].Status = status
		q.entries = q.entries[1:]
	}
	q.mu.Unlock()
	q.persist(ctx)
}

func (q *Queue) persist(ctx context.Context) {
	q.mu.Lock()
	entries := make([]Entry, len(q.entries))
	copy(entries, q.entries)
	q.mu.Unlock()
	// 持久化时统一落 pending，崩溃恢复后可安全重放
	for i := range entries {
		entries[i].Status = constants.EntryStatusPending
	}
	if err := q.storage.Save(ctx, q.sessionID, entries); err != nil {
		logger.Errorw("offline_slot_persist_failed", "session", q.sessionID, "error", err)
	}
}
