package worker

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"emotion-video-server/modules/common/cancel"
	"emotion-video-server/modules/common/model"
	redisClient "emotion-video-server/modules/common/redis"
	"emotion-video-server/modules/enhance"
	"emotion-video-server/modules/generation"
)

// dequeueTimeout - BRPOP 대기 (종료 신호 확인 주기)
const dequeueTimeout = 5 * time.Second

// Queue - 작업 큐/취소 플래그/진행 캐시 (redis.JobStore가 구현)
type Queue interface {
	Dequeue(ctx context.Context, timeout time.Duration) (string, error)
	IsJobCancelled(ctx context.Context, jobID string) bool
	SaveProgress(ctx context.Context, progress *redisClient.Progress) error
}

// JobRepository - 작업 행 조회/갱신 (database.Client가 구현)
type JobRepository interface {
	FetchJob(ctx context.Context, jobID string) (*model.GenerationJob, error)
	UpdateJobStatus(ctx context.Context, jobID string, status string) error
	UpdateJobSteps(ctx context.Context, jobID string, steps []model.ProcessingStep) error
	UpdateJobCompleted(ctx context.Context, jobID string, result *model.GenerationResult) error
	UpdateJobFailed(ctx context.Context, jobID string, message string) error
}

// CreditCharger - 완료 영상 크레딧 차감 (credit.Client가 구현)
type CreditCharger interface {
	DeductForVideo(ctx context.Context, userID, jobID, talkID string) error
}

// Generator - 파이프라인 실행
type Generator interface {
	Run(ctx context.Context, req *model.GenerationRequest, onProgress generation.ProgressFunc) (*model.GenerationResult, error)
}

// Worker - Redis Queue Worker
type Worker struct {
	queue       Queue
	jobs        JobRepository
	generator   Generator
	enhancer    enhance.Enhancer
	credits     CreditCharger
	bannedWords []string
	httpClient  *http.Client

	checkInterval time.Duration
}

// NewWorker - credits가 nil이면 차감 생략
func NewWorker(queue Queue, jobs JobRepository, generator Generator, enhancer enhance.Enhancer, credits CreditCharger, bannedWords []string) *Worker {
	return &Worker{
		queue:         queue,
		jobs:          jobs,
		generator:     generator,
		enhancer:      enhancer,
		credits:       credits,
		bannedWords:   bannedWords,
		httpClient:    &http.Client{Timeout: 30 * time.Second},
		checkInterval: cancel.DefaultCheckInterval,
	}
}

// Start - ctx가 끝날 때까지 큐 감시
func (w *Worker) Start(ctx context.Context) {
	log.Println("🔄 Redis Queue Worker starting...")
	log.Printf("👀 Watching queue: %s", redisClient.TalkQueue)

	for {
		if ctx.Err() != nil {
			log.Println("🛑 Worker stopped")
			return
		}

		// Job 받기 (BRPOP - Blocking Right Pop)
		jobID, err := w.queue.Dequeue(ctx, dequeueTimeout)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			log.Printf("❌ Redis BRPOP error: %v", err)
			select {
			case <-ctx.Done():
			case <-time.After(5 * time.Second):
			}
			continue
		}
		if jobID == "" {
			continue
		}

		log.Printf("🎯 Received new job: %s", jobID)

		// Job 처리 (goroutine으로 비동기)
		go w.ProcessJob(ctx, jobID)
	}
}

// ProcessJob - 작업 한 개 처리
func (w *Worker) ProcessJob(ctx context.Context, jobID string) {
	log.Printf("🚀 Processing job: %s", jobID)

	if cancel.CheckBeforeStart(ctx, w.queue, jobID) {
		w.markCancelled(ctx, jobID, nil)
		return
	}

	job, err := w.jobs.FetchJob(ctx, jobID)
	if err != nil {
		log.Printf("❌ Failed to fetch job %s: %v", jobID, err)
		return
	}
	if job.JobStatus != model.StatusPending {
		log.Printf("⚠️  Job %s is %s, skipping", jobID, job.JobStatus)
		return
	}

	if err := w.jobs.UpdateJobStatus(ctx, jobID, model.StatusProcessing); err != nil {
		log.Printf("⚠️  Failed to mark job %s processing: %v", jobID, err)
	}

	runCtx, stop := cancel.WatchJob(ctx, w.queue, jobID, w.checkInterval)
	defer stop()

	input := ParseInput(job.JobInputData)
	req, err := BuildRequest(runCtx, w.httpClient, input, w.bannedWords)
	if err != nil {
		w.finish(ctx, runCtx, job, nil, nil, err)
		return
	}

	if input.Enhance && req.EnhancedScript == "" {
		req.EnhancedScript = w.enhancer.EnhanceScript(runCtx, req.Script, req.Emotion)
	}
	req.VoiceSettings = w.voiceSettings(runCtx, input, req)

	var lastSteps []model.ProcessingStep
	result, err := w.generator.Run(runCtx, req, func(steps []model.ProcessingStep) {
		lastSteps = steps
		w.saveProgress(ctx, jobID, model.StatusProcessing, steps, "", "")
		if err := w.jobs.UpdateJobSteps(ctx, jobID, steps); err != nil {
			log.Printf("⚠️  Failed to store steps for %s: %v", jobID, err)
		}
	})

	w.finish(ctx, runCtx, job, lastSteps, result, err)
}

// voiceSettings - 요청에 없으면 향상 서비스가 제안 (음성/언어 선택은 항상 반영)
func (w *Worker) voiceSettings(ctx context.Context, input TalkInput, req *model.GenerationRequest) *model.VoiceSettings {
	var settings model.VoiceSettings
	if input.VoiceSettings != nil {
		settings = *input.VoiceSettings
	} else {
		settings = w.enhancer.VoiceSettings(ctx, req.Emotion, req.JobScript())
	}
	if input.VoiceID != "" {
		settings.VoiceID = input.VoiceID
	}
	language := req.Language
	settings.Language = &language
	return &settings
}

// finish - 결과에 따라 completed / failed / user_cancelled 기록
func (w *Worker) finish(ctx, runCtx context.Context, job *model.GenerationJob, steps []model.ProcessingStep, result *model.GenerationResult, err error) {
	jobID := job.JobID

	if err != nil {
		if cancel.WasCancelled(runCtx) {
			w.markCancelled(ctx, jobID, steps)
			return
		}
		if ctx.Err() != nil {
			// 서버 종료 중: 상태는 processing으로 남김
			log.Printf("⚠️  Job %s interrupted by shutdown", jobID)
			return
		}

		log.Printf("❌ Job %s failed: %v", jobID, err)
		w.saveProgress(ctx, jobID, model.StatusFailed, steps, "", err.Error())
		if dbErr := w.jobs.UpdateJobFailed(ctx, jobID, err.Error()); dbErr != nil {
			log.Printf("❌ Failed to mark job %s failed: %v", jobID, dbErr)
		}
		return
	}

	w.saveProgress(ctx, jobID, model.StatusCompleted, steps, result.VideoURL, "")
	if dbErr := w.jobs.UpdateJobCompleted(ctx, jobID, result); dbErr != nil {
		log.Printf("❌ Failed to mark job %s completed: %v", jobID, dbErr)
	}

	if w.credits != nil && job.UserID != nil && *job.UserID != "" {
		if err := w.credits.DeductForVideo(ctx, *job.UserID, jobID, result.TalkID); err != nil {
			log.Printf("⚠️  Failed to deduct credits for job %s: %v", jobID, err)
		}
	}

	log.Printf("✅ Job %s processing completed: %s", jobID, result.VideoURL)
}

func (w *Worker) markCancelled(ctx context.Context, jobID string, steps []model.ProcessingStep) {
	log.Printf("🛑 Job %s cancelled by user", jobID)
	w.saveProgress(ctx, jobID, model.StatusUserCancelled, steps, "", cancel.ErrUserCancelled.Error())
	if err := w.jobs.UpdateJobStatus(ctx, jobID, model.StatusUserCancelled); err != nil {
		log.Printf("❌ Failed to mark job %s cancelled: %v", jobID, err)
	}
}

func (w *Worker) saveProgress(ctx context.Context, jobID, status string, steps []model.ProcessingStep, videoURL, message string) {
	err := w.queue.SaveProgress(ctx, &redisClient.Progress{
		JobID:    jobID,
		Status:   status,
		Steps:    steps,
		VideoURL: videoURL,
		Error:    message,
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("⚠️  Failed to cache progress for %s: %v", jobID, err)
	}
}
