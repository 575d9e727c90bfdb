package database

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/supabase-community/supabase-go"

	"emotion-video-server/modules/common/config"
	"emotion-video-server/modules/common/model"
)

// JobsTable - 영상 생성 작업 테이블
const JobsTable = "emotion_video_jobs"

type Client struct {
	supabase *supabase.Client
}

// NewClient - Database 클라이언트 생성
func NewClient(cfg *config.Config) *Client {
	if !cfg.SupabaseEnabled() {
		log.Println("⚠️  Supabase not configured, job persistence disabled")
		return nil
	}

	supabaseClient, err := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseServiceKey, &supabase.ClientOptions{})
	if err != nil {
		log.Printf("❌ Failed to create Supabase client: %v", err)
		return nil
	}

	return &Client{
		supabase: supabaseClient,
	}
}

// Supabase - 스토리지/크레딧에서 같은 클라이언트를 공유
func (c *Client) Supabase() *supabase.Client {
	return c.supabase
}

// CreateJob - 작업 행 생성 (pending)
func (c *Client) CreateJob(ctx context.Context, jobID string, userID *string, input map[string]interface{}) error {
	log.Printf("💾 Creating job row: %s", jobID)

	insertData := map[string]interface{}{
		"job_id":         jobID,
		"job_status":     model.StatusPending,
		"job_input_data": input,
	}
	if userID != nil {
		insertData["user_id"] = *userID
	}

	_, _, err := c.supabase.From(JobsTable).
		Insert(insertData, false, "", "", "").
		Execute()
	if err != nil {
		return fmt.Errorf("failed to insert job: %w", err)
	}

	log.Printf("✅ Job row created: %s", jobID)
	return nil
}

// FetchJob - Supabase에서 Job 데이터 조회
func (c *Client) FetchJob(ctx context.Context, jobID string) (*model.GenerationJob, error) {
	log.Printf("🔍 Fetching job from Supabase: %s", jobID)

	var jobs []model.GenerationJob

	data, _, err := c.supabase.From(JobsTable).
		Select("*", "exact", false).
		Eq("job_id", jobID).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to query Supabase: %w", err)
	}

	if err := json.Unmarshal(data, &jobs); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if len(jobs) == 0 {
		return nil, fmt.Errorf("job not found: %s", jobID)
	}

	job := &jobs[0]
	log.Printf("✅ Job fetched successfully: %s (status: %s)", job.JobID, job.JobStatus)
	return job, nil
}

// UpdateJobStatus - Job 상태 업데이트
func (c *Client) UpdateJobStatus(ctx context.Context, jobID string, status string) error {
	log.Printf("📝 Updating job %s status to: %s", jobID, status)

	updateData := map[string]interface{}{
		"job_status": status,
		"updated_at": "now()",
	}

	switch status {
	case model.StatusProcessing:
		updateData["started_at"] = "now()"
	case model.StatusCompleted, model.StatusFailed, model.StatusUserCancelled:
		updateData["completed_at"] = "now()"
	}

	return c.update(jobID, updateData)
}

// UpdateJobSteps - 단계 스냅샷 저장
func (c *Client) UpdateJobSteps(ctx context.Context, jobID string, steps []model.ProcessingStep) error {
	return c.update(jobID, map[string]interface{}{
		"processing_steps": steps,
		"updated_at":       "now()",
	})
}

// UpdateJobCompleted - 결과 URL과 함께 완료 처리
func (c *Client) UpdateJobCompleted(ctx context.Context, jobID string, result *model.GenerationResult) error {
	log.Printf("📝 Marking job %s completed", jobID)

	updateData := map[string]interface{}{
		"job_status":   model.StatusCompleted,
		"talk_id":      result.TalkID,
		"video_url":    result.VideoURL,
		"audio_url":    result.AudioURL,
		"completed_at": "now()",
		"updated_at":   "now()",
	}
	if result.ThumbnailURL != "" {
		updateData["thumbnail_url"] = result.ThumbnailURL
	}

	return c.update(jobID, updateData)
}

// UpdateJobFailed - 에러 메시지와 함께 실패 처리
func (c *Client) UpdateJobFailed(ctx context.Context, jobID string, message string) error {
	log.Printf("📝 Marking job %s failed: %s", jobID, message)

	return c.update(jobID, map[string]interface{}{
		"job_status":    model.StatusFailed,
		"error_message": message,
		"completed_at":  "now()",
		"updated_at":    "now()",
	})
}

func (c *Client) update(jobID string, updateData map[string]interface{}) error {
	_, _, err := c.supabase.From(JobsTable).
		Update(updateData, "", "").
		Eq("job_id", jobID).
		Execute()
	if err != nil {
		return fmt.Errorf("failed to update job %s: %w", jobID, err)
	}
	return nil
}
