package generation

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"emotion-video-server/modules/common/config"
	"emotion-video-server/modules/common/events"
	"emotion-video-server/modules/common/model"
	"emotion-video-server/modules/did"
)

// 파이프라인 단계 ID
const (
	StepUploadImage   = "upload-image"
	StepProcessScript = "process-script"
	StepGenerateVideo = "generate-video"
	StepFinalize      = "finalize"
)

const (
	DefaultPollInterval    = 5 * time.Second
	DefaultMaxPollAttempts = 60

	pollProgressCap   = 95
	pollProgressFloor = 20
)

// Provider - 영상 생성 프로바이더 (did.Service가 구현)
type Provider interface {
	PrepareImage(ctx context.Context, data []byte, contentType string) did.ImageSource
	SubmitJob(ctx context.Context, source did.ImageSource, req *model.GenerationRequest) (string, error)
	PollJob(ctx context.Context, talkID string) (*did.JobStatus, error)
}

// Finalizer - 결과 영상 보관/썸네일 (실패해도 파이프라인은 성공)
type Finalizer interface {
	Finalize(ctx context.Context, talkID, videoURL string) (*model.ArchivedVideo, error)
}

// Publisher - 단계 변경 이벤트 발행
type Publisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// ProgressFunc - 단계 스냅샷 콜백 (복사본이므로 보관해도 안전)
type ProgressFunc func(steps []model.ProcessingStep)

// Options - 폴링/키 설정
type Options struct {
	APIKey          string
	PollInterval    time.Duration
	MaxPollAttempts int
}

// OptionsFromConfig - 전역 설정에서 Options 구성
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		APIKey:          cfg.DIDAPIKey,
		PollInterval:    cfg.DIDPollInterval,
		MaxPollAttempts: cfg.DIDMaxPollAttempts,
	}
}

// Option - 선택 의존성 주입
type Option func(*Orchestrator)

// WithFinalizer - 결과 보관 훅
func WithFinalizer(f Finalizer) Option {
	return func(o *Orchestrator) { o.finalizer = f }
}

// WithPublisher - 이벤트 발행 훅
func WithPublisher(p Publisher) Option {
	return func(o *Orchestrator) { o.publisher = p }
}

// WithSleep - 폴링 대기 함수 교체 (테스트용 가짜 시계)
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(o *Orchestrator) { o.sleep = sleep }
}

// WithClock - 처리 시간 측정용 시계 교체
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// Orchestrator - 업로드 → 스크립트 → 생성/폴링 → 마무리
type Orchestrator struct {
	provider     Provider
	apiKey       string
	pollInterval time.Duration
	maxAttempts  int

	finalizer Finalizer
	publisher Publisher
	sleep     func(ctx context.Context, d time.Duration) error
	now       func() time.Time
}

// NewOrchestrator - Orchestrator 생성
func NewOrchestrator(provider Provider, opts Options, options ...Option) *Orchestrator {
	o := &Orchestrator{
		provider:     provider,
		apiKey:       opts.APIKey,
		pollInterval: opts.PollInterval,
		maxAttempts:  opts.MaxPollAttempts,
		sleep:        sleepContext,
		now:          time.Now,
	}
	if o.pollInterval <= 0 {
		o.pollInterval = DefaultPollInterval
	}
	if o.maxAttempts <= 0 {
		o.maxAttempts = DefaultMaxPollAttempts
	}
	for _, opt := range options {
		opt(o)
	}
	return o
}

// MaxPollAttempts - 폴링 최대 횟수
func (o *Orchestrator) MaxPollAttempts() int {
	return o.maxAttempts
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// InitialSteps - 네 단계 모두 pending/0
func InitialSteps() []model.ProcessingStep {
	return []model.ProcessingStep{
		{ID: StepUploadImage, Name: "Uploading Image", Status: model.StepPending},
		{ID: StepProcessScript, Name: "Processing Script", Status: model.StepPending},
		{ID: StepGenerateVideo, Name: "Generating Talking Video", Status: model.StepPending},
		{ID: StepFinalize, Name: "Finalizing Video", Status: model.StepPending},
	}
}

// run - 한 번의 실행 상태
type run struct {
	o          *Orchestrator
	id         string
	req        *model.GenerationRequest
	steps      []model.ProcessingStep
	onProgress ProgressFunc
	talkID     string
}

func (r *run) emit(ctx context.Context) {
	snapshot := model.CopySteps(r.steps)
	if r.onProgress != nil {
		r.onProgress(snapshot)
	}
	r.publish(ctx, events.Event{Type: events.TypeStep, Steps: snapshot})
}

func (r *run) publish(ctx context.Context, event events.Event) {
	if r.o.publisher == nil {
		return
	}
	event.RunID = r.id
	event.TalkID = r.talkID
	event.Emotion = r.req.Emotion.ID
	// 취소된 실행의 실패 이벤트도 보내야 하므로 부모 취소와 분리
	if err := r.o.publisher.Publish(context.WithoutCancel(ctx), event); err != nil {
		log.Printf("⚠️ [Generation] Event publish failed (%s): %v", event.Type, err)
	}
}

func (r *run) start(ctx context.Context, index, progress int, message string) {
	r.steps[index].Status = model.StepProcessing
	r.steps[index].Progress = progress
	r.steps[index].Message = message
	r.emit(ctx)
}

func (r *run) update(ctx context.Context, index, progress int, message string) {
	r.steps[index].Progress = progress
	r.steps[index].Message = message
	r.emit(ctx)
}

func (r *run) complete(ctx context.Context, index int, message string) {
	r.steps[index].Status = model.StepCompleted
	r.steps[index].Progress = 100
	r.steps[index].Message = message
	r.emit(ctx)
}

func (r *run) fail(ctx context.Context, index int, err error) error {
	r.steps[index].Status = model.StepError
	r.steps[index].Message = err.Error()
	r.emit(ctx)
	r.publish(ctx, events.Event{Type: events.TypeFailed, Error: err.Error()})
	log.Printf("❌ [Generation] Run %s failed at %s: %v", r.id, r.steps[index].ID, err)
	return err
}

// Run - 파이프라인 실행
// 실패 시 해당 단계를 error로 표시하고 마지막 스냅샷을 보낸 뒤 에러 반환
func (o *Orchestrator) Run(ctx context.Context, req *model.GenerationRequest, onProgress ProgressFunc) (*model.GenerationResult, error) {
	if o.apiKey == "" || o.apiKey == config.PlaceholderDIDKey {
		return nil, &ConfigurationError{Message: "D-ID API key is not configured. Please set DID_API_KEY in your environment."}
	}

	startTime := o.now()
	r := &run{
		o:          o,
		id:         uuid.New().String(),
		req:        req,
		steps:      InitialSteps(),
		onProgress: onProgress,
	}

	log.Printf("🎬 [Generation] Run %s started - emotion: %s, language: %s", r.id, req.Emotion.ID, req.Language)
	r.publish(ctx, events.Event{Type: events.TypeStarted})

	// 1. 이미지 업로드
	r.start(ctx, 0, 25, "Preparing your photo...")
	if err := ctx.Err(); err != nil {
		return nil, r.fail(ctx, 0, err)
	}
	source := o.provider.PrepareImage(ctx, req.Image, req.ImageType)
	if err := ctx.Err(); err != nil {
		return nil, r.fail(ctx, 0, err)
	}
	r.complete(ctx, 0, "Photo uploaded successfully")

	// 2. 스크립트 확정 (향상본 우선)
	r.start(ctx, 1, 50, "Processing your script...")
	if req.JobScript() == "" {
		return nil, r.fail(ctx, 1, fmt.Errorf("script is empty"))
	}
	r.complete(ctx, 1, "Script ready")

	// 3. 생성 요청 + 폴링
	r.start(ctx, 2, 10, "Creating your talking avatar...")
	talkID, err := o.provider.SubmitJob(ctx, source, req)
	if err != nil {
		return nil, r.fail(ctx, 2, err)
	}
	r.talkID = talkID

	status, err := o.poll(ctx, r, talkID)
	if err != nil {
		return nil, r.fail(ctx, 2, err)
	}
	r.complete(ctx, 2, "Video generated!")

	// 4. 마무리
	r.start(ctx, 3, 90, "Finalizing...")
	result := &model.GenerationResult{
		VideoURL: status.ResultURL,
		AudioURL: status.AudioURL,
		Status:   model.ResultCompleted,
		TalkID:   talkID,
	}
	if o.finalizer != nil {
		archived, err := o.finalizer.Finalize(ctx, talkID, status.ResultURL)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, r.fail(ctx, 3, ctxErr)
		}
		if err != nil {
			log.Printf("⚠️ [Generation] Finalize failed, keeping provider URL: %v", err)
		} else if archived != nil {
			if archived.VideoURL != "" {
				result.VideoURL = archived.VideoURL
			}
			result.ThumbnailURL = archived.ThumbnailURL
		}
	}
	result.ProcessingTime = o.now().Sub(startTime)
	r.complete(ctx, 3, "Complete!")

	r.publish(ctx, events.Event{Type: events.TypeCompleted, VideoURL: result.VideoURL})
	log.Printf("✅ [Generation] Run %s completed in %s - talk: %s", r.id, result.ProcessingTime.Round(time.Millisecond), talkID)
	return result, nil
}

// poll - 종료 상태까지 주기적으로 조회
// 조회 에러는 횟수 안에서 재시도하고, 마지막 시도까지 실패하면 그 에러를 반환
func (o *Orchestrator) poll(ctx context.Context, r *run, talkID string) (*did.JobStatus, error) {
	var lastErr error

	for attempt := 1; attempt <= o.maxAttempts; attempt++ {
		status, err := o.provider.PollJob(ctx, talkID)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}

		if err != nil {
			lastErr = err
			log.Printf("⚠️ [Generation] Poll %d/%d for %s failed: %v", attempt, o.maxAttempts, talkID, err)
		} else {
			lastErr = nil

			switch {
			case status.Status == did.TalkDone:
				if status.ResultURL == "" {
					return nil, &ProviderError{Message: "Video generation finished without a result URL"}
				}
				return status, nil
			case status.Status.IsFailure():
				detail := status.ErrorDetail
				if detail == "" {
					detail = "unknown error"
				}
				return nil, &ProviderError{Message: "Video generation failed: " + detail}
			}

			r.update(ctx, 2, pollProgress(attempt, o.maxAttempts, status.Status), "Generating video...")
		}

		if attempt < o.maxAttempts {
			if err := o.sleep(ctx, o.pollInterval); err != nil {
				return nil, err
			}
		}
	}

	if lastErr != nil {
		return nil, lastErr
	}
	return nil, &TimeoutError{Attempts: o.maxAttempts}
}

// pollProgress - 종료 전까지 95% 미만, created/started 동안은 최소 20%
func pollProgress(attempt, maxAttempts int, status did.TalkStatus) int {
	progress := attempt * 100 / maxAttempts
	if progress > pollProgressCap {
		progress = pollProgressCap
	}
	if (status == did.TalkCreated || status == did.TalkStarted) && progress < pollProgressFloor {
		progress = pollProgressFloor
	}
	return progress
}
