package app

import (
	"context"
	"errors"

	"github.com/aurix-store/internal/config"
	"github.com/aurix-store/internal/logger"
	"github.com/aurix-store/internal/provider"
	"github.com/aurix-store/internal/queue"
	"github.com/aurix-store/internal/router"
	"github.com/aurix-store/internal/worker"
)

// BuildRunner 构建服务运行器
func BuildRunner(cfg *config.Config, mode string) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	container := provider.NewContainer(cfg)

	var services []Service

	// 连通性恢复时为各脏会话派发重放
	container.Monitor.OnRestore(func(ctx context.Context) {
		dispatchReplays(ctx, container)
	})
	services = append(services, container.Monitor)

	if mode == ModeAll || mode == ModeAPI {
		engine := router.SetupRouter(cfg, container)
		services = append(services, NewHTTPService(cfg.Addr(), engine))
	}

	if mode == ModeAll || mode == ModeWorker {
		if cfg.Queue.Enabled {
			consumer := worker.NewConsumer(container)
			workerService, err := worker.NewService(&cfg.Queue, consumer)
			if err != nil {
				return nil, err
			}
			services = append(services, workerService)
		} else if mode == ModeWorker {
			return nil, errors.New("worker mode requires queue enabled")
		}
	}

	if len(services) == 0 {
		return nil, errors.New("no services initialized (check mode and config)")
	}

	return NewRunner(services...), nil
}

// dispatchReplays 为每个持有未送达条目的会话派发一次重放
// 队列可用时走 asynq 任务均摊到 worker；否则就地重放。
func dispatchReplays(ctx context.Context, c *provider.Container) {
	sessionIDs, err := c.Sessions.DirtySessions(ctx)
	if err != nil {
		logger.Warnw("replay_dispatch_list_failed", "error", err)
	}
	for _, sessionID := range sessionIDs {
		if c.QueueClient.Enabled() {
			err := c.QueueClient.EnqueueCartReplay(queue.CartReplayPayload{SessionID: sessionID})
			if err == nil {
				continue
			}
			logger.Warnw("replay_enqueue_failed", "session", sessionID, "error", err)
		}
		sess, err := c.Sessions.Get(ctx, sessionID)
		if err != nil {
			logger.Warnw("replay_session_failed", "session", sessionID, "error", err)
			continue
		}
		go func(sessionID string) {
			if err := sess.Queue.Replay(context.Background()); err != nil {
				logger.Warnw("replay_failed", "session", sessionID, "error", err)
			}
		}(sessionID)
	}
	if len(sessionIDs) > 0 {
		logger.Infow("replay_dispatched", "sessions", len(sessionIDs))
	}
}

// Run 应用启动入口
func Run(opts Options) error {
	opts = normalizeOptions(opts)
	if opts.Config == nil {
		return errors.New("config is nil")
	}

	runner, err := BuildRunner(opts.Config, opts.Mode)
	if err != nil {
		return err
	}

	opts.Logger.Infow("app_start", "addr", opts.Config.Addr(), "mode", opts.Mode)
	return RunWithOptions(runner, opts)
}
