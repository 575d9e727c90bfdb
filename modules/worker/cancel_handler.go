package worker

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"emotion-video-server/modules/common/model"
	redisClient "emotion-video-server/modules/common/redis"
)

// JobTracker - 취소 플래그/진행 캐시 (redis.JobStore가 구현)
type JobTracker interface {
	SetJobCancelled(ctx context.Context, jobID string) error
	LoadProgress(ctx context.Context, jobID string) (*redisClient.Progress, error)
}

// JobFetcher - 작업 행 조회 (database.Client가 구현)
type JobFetcher interface {
	FetchJob(ctx context.Context, jobID string) (*model.GenerationJob, error)
}

// CancelHandler - Job 취소/조회 API 핸들러
type CancelHandler struct {
	tracker JobTracker
	jobs    JobFetcher
}

// NewCancelHandler - 핸들러 생성
func NewCancelHandler(tracker JobTracker, jobs JobFetcher) *CancelHandler {
	return &CancelHandler{
		tracker: tracker,
		jobs:    jobs,
	}
}

// RegisterRoutes - 라우트 등록
func (h *CancelHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/jobs/{jobId}/cancel", h.CancelJob).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/jobs/{jobId}", h.GetJob).Methods("GET", "OPTIONS")
	log.Println("✅ [CancelHandler] Routes registered: POST /api/jobs/{jobId}/cancel, GET /api/jobs/{jobId}")
}

func isTerminal(status string) bool {
	switch status {
	case model.StatusCompleted, model.StatusFailed, model.StatusUserCancelled:
		return true
	}
	return false
}

// CancelJob - Job 취소 처리
func (h *CancelHandler) CancelJob(w http.ResponseWriter, r *http.Request) {
	setCORS(w)

	// CORS preflight
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	jobID := mux.Vars(r)["jobId"]
	if jobID == "" {
		http.Error(w, `{"error": "jobId is required"}`, http.StatusBadRequest)
		return
	}

	log.Printf("🛑 [CancelHandler] Cancel requested for job: %s", jobID)

	// 1. DB에서 현재 job 상태 조회
	job, err := h.jobs.FetchJob(r.Context(), jobID)
	if err != nil {
		log.Printf("❌ [CancelHandler] Job not found: %s", jobID)
		http.Error(w, `{"error": "Job not found"}`, http.StatusNotFound)
		return
	}

	// 이미 끝난 job은 취소 불가
	if isTerminal(job.JobStatus) {
		log.Printf("⚠️ [CancelHandler] Job already %s: %s", job.JobStatus, jobID)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":    false,
			"message":    "Job already " + job.JobStatus,
			"job_id":     jobID,
			"job_status": job.JobStatus,
		})
		return
	}

	// 2. Redis에 취소 플래그 설정 (워커가 폴링 중 감지)
	if err := h.tracker.SetJobCancelled(r.Context(), jobID); err != nil {
		log.Printf("❌ [CancelHandler] Failed to set cancel flag: %v", err)
		http.Error(w, `{"error": "Failed to set cancel flag"}`, http.StatusInternalServerError)
		return
	}

	log.Printf("✅ [CancelHandler] Cancel flag set for job: %s (current status: %s)", jobID, job.JobStatus)

	json.NewEncoder(w).Encode(map[string]interface{}{
		"success":        true,
		"message":        "Cancel request sent. Job will stop at the next status check.",
		"job_id":         jobID,
		"current_status": job.JobStatus,
	})
}

// GetJob - 진행 캐시 우선, 없으면 DB
func (h *CancelHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	setCORS(w)

	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	jobID := mux.Vars(r)["jobId"]

	progress, err := h.tracker.LoadProgress(r.Context(), jobID)
	if err != nil {
		log.Printf("⚠️ [CancelHandler] Progress cache read failed for %s: %v", jobID, err)
	}
	if progress != nil {
		json.NewEncoder(w).Encode(progress)
		return
	}

	job, err := h.jobs.FetchJob(r.Context(), jobID)
	if err != nil {
		http.Error(w, `{"error": "Job not found"}`, http.StatusNotFound)
		return
	}

	out := redisClient.Progress{
		JobID:     job.JobID,
		Status:    job.JobStatus,
		Steps:     job.ProcessingSteps,
		UpdatedAt: job.UpdatedAt,
	}
	if job.VideoURL != nil {
		out.VideoURL = *job.VideoURL
	}
	if job.ErrorMessage != nil {
		out.Error = *job.ErrorMessage
	}
	json.NewEncoder(w).Encode(out)
}
