package app

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

// blockingService 阻塞到 ctx 取消或被注入退出错误
type blockingService struct {
	name    string
	exitErr error
	started atomic.Bool
	stopped atomic.Bool
}

func (s *blockingService) Name() string { return s.name }

func (s *blockingService) Start(ctx context.Context) error {
	s.started.Store(true)
	if s.exitErr != nil {
		return s.exitErr
	}
	<-ctx.Done()
	return nil
}

func (s *blockingService) Stop(_ context.Context) error {
	s.stopped.Store(true)
	return nil
}

func TestRunnerStopsAllWhenOneServiceFails(t *testing.T) {
	bad := &blockingService{name: "bad", exitErr: errors.New("listen failed")}
	good := &blockingService{name: "good"}

	err := NewRunner(good, bad).Run(context.Background(), time.Second, nil)
	if err == nil || err.Error() != "listen failed" {
		t.Fatalf("run err = %v, want the failing service's error", err)
	}
	if !good.started.Load() || !bad.started.Load() {
		t.Fatal("all services must be started")
	}
	if !good.stopped.Load() || !bad.stopped.Load() {
		t.Fatal("all services must be stopped after convergence")
	}
}

func TestRunnerContextCancelIsCleanExit(t *testing.T) {
	svc := &blockingService{name: "svc"}
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	if err := NewRunner(svc).Run(ctx, time.Second, nil); err != nil {
		t.Fatalf("canceled run should exit clean, got %v", err)
	}
	if !svc.stopped.Load() {
		t.Fatal("service must be stopped on cancel")
	}
}

func TestRunnerDropsNilServices(t *testing.T) {
	r := NewRunner(nil, nil)
	if err := r.Run(context.Background(), time.Second, nil); err == nil {
		t.Fatal("runner with no usable services must refuse to run")
	}
}
