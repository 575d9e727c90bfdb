package cancel

import (
	"context"
	"errors"
	"log"
	"time"
)

// ErrUserCancelled - 사용자가 취소 플래그를 세움
var ErrUserCancelled = errors.New("job cancelled by user")

// DefaultCheckInterval - 취소 플래그 확인 주기
const DefaultCheckInterval = 2 * time.Second

// Checker - 취소 여부 조회 (redis.JobStore가 구현)
type Checker interface {
	IsJobCancelled(ctx context.Context, jobID string) bool
}

// WatchJob - 취소 플래그가 서면 취소되는 컨텍스트
// 반환된 cancel은 반드시 호출해야 감시 고루틴이 종료됨
func WatchJob(parent context.Context, checker Checker, jobID string, interval time.Duration) (context.Context, context.CancelFunc) {
	if interval <= 0 {
		interval = DefaultCheckInterval
	}

	ctx, cancel := context.WithCancelCause(parent)

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if checker.IsJobCancelled(ctx, jobID) {
					log.Printf("🛑 Job %s cancelled, stopping generation", jobID)
					cancel(ErrUserCancelled)
					return
				}
			}
		}
	}()

	return ctx, func() { cancel(context.Canceled) }
}

// WasCancelled - ctx가 사용자 취소로 끝났는지
func WasCancelled(ctx context.Context) bool {
	return errors.Is(context.Cause(ctx), ErrUserCancelled)
}

// CheckBeforeStart - 작업 시작 전 취소 확인
func CheckBeforeStart(ctx context.Context, checker Checker, jobID string) bool {
	if checker.IsJobCancelled(ctx, jobID) {
		log.Printf("🛑 Job %s cancelled before start, skipping", jobID)
		return true
	}
	return false
}
