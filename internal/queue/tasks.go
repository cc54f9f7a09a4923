package queue

import (
	"encoding/json"

	"github.com/aurix-store/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskCartReplay 会话离线队列重放任务
	TaskCartReplay = constants.TaskCartReplay
)

// CartReplayPayload 重放任务载荷
type CartReplayPayload struct {
	SessionID string `json:"session_id"`
}

// NewCartReplayTask 创建重放任务
func NewCartReplayTask(payload CartReplayPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCartReplay, body), nil
}
