package worker

import (
	"context"
	"testing"

	"github.com/aurix-store/internal/models"
	"github.com/aurix-store/internal/offline"
	"github.com/aurix-store/internal/provider"
	"github.com/aurix-store/internal/queue"
	"github.com/aurix-store/internal/remote"
	"github.com/aurix-store/internal/session"

	"github.com/hibiken/asynq"
)

type recordingSyncer struct {
	unreachable bool
	calls       int
}

func (r *recordingSyncer) SyncAdd(_ context.Context, _ remote.AddRequest) (*remote.Totals, error) {
	r.calls++
	if r.unreachable {
		return nil, remote.ErrRemoteUnreachable
	}
	return &remote.Totals{}, nil
}

func (r *recordingSyncer) Health(_ context.Context) error {
	if r.unreachable {
		return remote.ErrRemoteUnreachable
	}
	return nil
}

func TestHandleCartReplayDrainsSession(t *testing.T) {
	syncer := &recordingSyncer{unreachable: true}
	sessions := session.NewManager(syncer, offline.NewMemoryStorage())
	consumer := NewConsumer(&provider.Container{Sessions: sessions})

	ctx := context.Background()
	sess, err := sessions.Get(ctx, "sess-1")
	if err != nil {
		t.Fatalf("session Get: %v", err)
	}
	if _, _, err := sess.Queue.SubmitAdd(ctx, 1, "Tee", models.NewMoneyFromFloat(29.99), 2, nil); err != nil {
		t.Fatalf("SubmitAdd: %v", err)
	}
	if sess.Queue.Pending() != 1 {
		t.Fatalf("pending = %d, want 1", sess.Queue.Pending())
	}

	syncer.unreachable = false
	task, err := queue.NewCartReplayTask(queue.CartReplayPayload{SessionID: "sess-1"})
	if err != nil {
		t.Fatalf("NewCartReplayTask: %v", err)
	}
	if err := consumer.handleCartReplay(ctx, task); err != nil {
		t.Fatalf("handleCartReplay: %v", err)
	}
	if sess.Queue.Pending() != 0 {
		t.Fatalf("pending = %d after replay, want 0", sess.Queue.Pending())
	}
}

func TestHandleCartReplayIgnoresEmptySession(t *testing.T) {
	consumer := NewConsumer(&provider.Container{})
	task := asynq.NewTask(queue.TaskCartReplay, []byte(`{"session_id":""}`))
	if err := consumer.handleCartReplay(context.Background(), task); err != nil {
		t.Fatalf("empty session must be skipped, got %v", err)
	}
}
