package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"emotion-video-server/modules/common/model"
)

const (
	// TalkQueue - 영상 생성 작업 큐
	TalkQueue = "jobs:talk"

	CancelTTL   = time.Hour
	ProgressTTL = 24 * time.Hour
)

// CancelKey - job 취소 플래그 키
func CancelKey(jobID string) string {
	return "job:cancel:" + jobID
}

// ProgressKey - job 진행 상황 캐시 키
func ProgressKey(jobID string) string {
	return "job:progress:" + jobID
}

// Progress - 캐시되는 진행 상황
type Progress struct {
	JobID     string                 `json:"jobId"`
	Status    string                 `json:"status"`
	Steps     []model.ProcessingStep `json:"steps"`
	VideoURL  string                 `json:"videoUrl,omitempty"`
	Error     string                 `json:"error,omitempty"`
	UpdatedAt time.Time              `json:"updatedAt"`
}

// JobStore - 큐/취소 플래그/진행 캐시
type JobStore struct {
	rdb *redis.Client
}

// NewJobStore - JobStore 생성
func NewJobStore(rdb *redis.Client) *JobStore {
	return &JobStore{rdb: rdb}
}

// Enqueue - LPUSH 후 대기열 길이 반환
func (s *JobStore) Enqueue(ctx context.Context, jobID string) (int64, error) {
	length, err := s.rdb.LPush(ctx, TalkQueue, jobID).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to enqueue job: %w", err)
	}
	return length, nil
}

// Dequeue - BRPOP (timeout 동안 비어 있으면 "" 반환)
func (s *JobStore) Dequeue(ctx context.Context, timeout time.Duration) (string, error) {
	result, err := s.rdb.BRPop(ctx, timeout, TalkQueue).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	// [key, value]
	if len(result) < 2 {
		return "", fmt.Errorf("unexpected BRPOP result: %v", result)
	}
	return result[1], nil
}

// SetJobCancelled - 취소 플래그 설정 (1시간 유지)
func (s *JobStore) SetJobCancelled(ctx context.Context, jobID string) error {
	return s.rdb.Set(ctx, CancelKey(jobID), "1", CancelTTL).Err()
}

// IsJobCancelled - 취소 플래그 확인 (Redis 에러는 취소 아님으로 처리)
func (s *JobStore) IsJobCancelled(ctx context.Context, jobID string) bool {
	val, err := s.rdb.Get(ctx, CancelKey(jobID)).Result()
	if err != nil {
		return false
	}
	return val == "1"
}

// SaveProgress - 진행 상황 캐시
func (s *JobStore) SaveProgress(ctx context.Context, progress *Progress) error {
	progress.UpdatedAt = time.Now().UTC()
	payload, err := json.Marshal(progress)
	if err != nil {
		return fmt.Errorf("failed to marshal progress: %w", err)
	}
	return s.rdb.Set(ctx, ProgressKey(progress.JobID), payload, ProgressTTL).Err()
}

// LoadProgress - 캐시된 진행 상황 (없으면 nil, nil)
func (s *JobStore) LoadProgress(ctx context.Context, jobID string) (*Progress, error) {
	payload, err := s.rdb.Get(ctx, ProgressKey(jobID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var progress Progress
	if err := json.Unmarshal(payload, &progress); err != nil {
		return nil, fmt.Errorf("failed to parse progress: %w", err)
	}
	return &progress, nil
}
