package worker

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/aurix-store/internal/logger"
	"github.com/aurix-store/internal/provider"
	"github.com/aurix-store/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskCartReplay, c.handleCartReplay)
}

func (c *Consumer) handleCartReplay(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_cart_replay_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.CartReplayPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_cart_replay_unmarshal_failed", "error", err)
		return err
	}
	sessionID := strings.TrimSpace(payload.SessionID)
	if sessionID == "" {
		logger.Debugw("worker_cart_replay_skip_empty_session")
		return nil
	}

	sess, err := c.Sessions.Get(ctx, sessionID)
	if err != nil {
		logger.Warnw("worker_cart_replay_session_failed", "session", sessionID, "error", err)
		return err
	}
	if err := sess.Queue.Replay(ctx); err != nil {
		logger.Warnw("worker_cart_replay_failed", "session", sessionID, "error", err)
		return err
	}
	logger.Infow("worker_cart_replay_done", "session", sessionID, "pending", sess.Queue.Pending())
	return nil
}
