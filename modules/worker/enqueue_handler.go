package worker

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	redisClient "emotion-video-server/modules/common/redis"
	"emotion-video-server/modules/validation"
)

// Enqueuer - 큐 적재 (redis.JobStore가 구현)
type Enqueuer interface {
	Enqueue(ctx context.Context, jobID string) (int64, error)
}

// JobCreator - 작업 행 생성 (database.Client가 구현)
type JobCreator interface {
	CreateJob(ctx context.Context, jobID string, userID *string, input map[string]interface{}) error
}

// EnqueueHandler - Redis Queue Enqueue Handler
type EnqueueHandler struct {
	queue       Enqueuer
	jobs        JobCreator
	bannedWords []string
}

// EnqueueRequest - 기존 작업 행을 큐에 넣을 때
type EnqueueRequest struct {
	JobID string `json:"job_id"`
}

// EnqueueTalkRequest - 새 영상 작업 생성 요청
type EnqueueTalkRequest struct {
	TalkInput
	UserID string `json:"user_id,omitempty"`
}

// EnqueueResponse - Enqueue 응답
type EnqueueResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message,omitempty"`
	Error         string `json:"error,omitempty"`
	JobID         string `json:"job_id,omitempty"`
	Queue         string `json:"queue,omitempty"`
	QueuePosition int64  `json:"queuePosition,omitempty"`
}

// NewEnqueueHandler - EnqueueHandler 생성
func NewEnqueueHandler(queue Enqueuer, jobs JobCreator, bannedWords []string) *EnqueueHandler {
	log.Println("✅ [Enqueue] Handler initialized with Redis connection")
	return &EnqueueHandler{
		queue:       queue,
		jobs:        jobs,
		bannedWords: bannedWords,
	}
}

// RegisterRoutes - 라우트 등록
func (h *EnqueueHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/enqueue", h.HandleEnqueue).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/enqueue-talk", h.HandleEnqueueTalk).Methods("POST", "OPTIONS")
	log.Println("✅ Enqueue routes registered: /api/enqueue, /api/enqueue-talk")
}

func writeEnqueue(w http.ResponseWriter, status int, resp EnqueueResponse) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

func setCORS(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

// HandleEnqueue - POST /api/enqueue (이미 생성된 job_id)
func (h *EnqueueHandler) HandleEnqueue(w http.ResponseWriter, r *http.Request) {
	setCORS(w)

	// OPTIONS 요청 처리
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	var req EnqueueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("❌ [Enqueue] Invalid request: %v", err)
		writeEnqueue(w, http.StatusBadRequest, EnqueueResponse{Error: "Invalid request body"})
		return
	}
	if req.JobID == "" {
		writeEnqueue(w, http.StatusBadRequest, EnqueueResponse{Error: "job_id is required"})
		return
	}

	log.Printf("📥 [Enqueue] Received job_id: %s", req.JobID)
	h.push(w, r.Context(), req.JobID)
}

// HandleEnqueueTalk - POST /api/enqueue-talk (작업 행 생성 후 큐 적재)
func (h *EnqueueHandler) HandleEnqueueTalk(w http.ResponseWriter, r *http.Request) {
	setCORS(w)

	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	var req EnqueueTalkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("❌ [Enqueue] Invalid request: %v", err)
		writeEnqueue(w, http.StatusBadRequest, EnqueueResponse{Error: "Invalid request body"})
		return
	}

	if err := req.Validate(h.bannedWords); err != nil {
		var vErr *validation.ValidationError
		status := http.StatusInternalServerError
		if errors.As(err, &vErr) {
			status = http.StatusBadRequest
		}
		writeEnqueue(w, status, EnqueueResponse{Error: err.Error()})
		return
	}

	jobID := uuid.New().String()
	var userID *string
	if req.UserID != "" {
		userID = &req.UserID
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := h.jobs.CreateJob(ctx, jobID, userID, req.TalkInput.ToMap()); err != nil {
		log.Printf("❌ [Enqueue] Failed to create job row: %v", err)
		writeEnqueue(w, http.StatusInternalServerError, EnqueueResponse{Error: err.Error()})
		return
	}

	h.push(w, ctx, jobID)
}

// push - LPUSH 후 대기열 위치 응답
func (h *EnqueueHandler) push(w http.ResponseWriter, ctx context.Context, jobID string) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	queueLen, err := h.queue.Enqueue(ctx, jobID)
	if err != nil {
		log.Printf("❌ [Enqueue] Redis LPUSH failed: %v", err)
		writeEnqueue(w, http.StatusInternalServerError, EnqueueResponse{Error: err.Error(), JobID: jobID})
		return
	}

	log.Printf("✅ [Enqueue] Job %s enqueued successfully (position: %d)", jobID, queueLen)

	writeEnqueue(w, http.StatusOK, EnqueueResponse{
		Success:       true,
		Message:       "Job enqueued successfully",
		JobID:         jobID,
		Queue:         redisClient.TalkQueue,
		QueuePosition: queueLen,
	})
}
