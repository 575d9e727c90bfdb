package cancel

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

type flagChecker struct {
	cancelled atomic.Bool
}

func (f *flagChecker) IsJobCancelled(ctx context.Context, jobID string) bool {
	return f.cancelled.Load()
}

// TestWatchJobCancelsOnFlag - 플래그가 서면 ctx 취소, 원인은 ErrUserCancelled
func TestWatchJobCancelsOnFlag(t *testing.T) {
	checker := &flagChecker{}
	ctx, stop := WatchJob(context.Background(), checker, "job-1", time.Millisecond)
	defer stop()

	checker.cancelled.Store(true)

	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("context was not cancelled after flag was set")
	}
	if !WasCancelled(ctx) {
		t.Fatalf("WasCancelled() = false, cause = %v", context.Cause(ctx))
	}
}

// TestWatchJobStop - stop 호출은 사용자 취소가 아님
func TestWatchJobStop(t *testing.T) {
	ctx, stop := WatchJob(context.Background(), &flagChecker{}, "job-2", time.Millisecond)
	stop()

	<-ctx.Done()
	if WasCancelled(ctx) {
		t.Fatal("WasCancelled() = true after stop")
	}
}

// TestCheckBeforeStart - 시작 전 확인
func TestCheckBeforeStart(t *testing.T) {
	checker := &flagChecker{}
	if CheckBeforeStart(context.Background(), checker, "job-3") {
		t.Fatal("CheckBeforeStart() = true without flag")
	}
	checker.cancelled.Store(true)
	if !CheckBeforeStart(context.Background(), checker, "job-3") {
		t.Fatal("CheckBeforeStart() = false with flag")
	}
}
