package studio

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"sync"
	"testing"
	"time"

	"emotion-video-server/modules/common/model"
	"emotion-video-server/modules/generation"
	"emotion-video-server/modules/validation"
)

// fakeEnhancer - 고정 응답
type fakeEnhancer struct {
	enhanced string
	settings model.VoiceSettings
}

func (f *fakeEnhancer) EnhanceScript(ctx context.Context, script string, emotion model.Emotion) string {
	return f.enhanced
}

func (f *fakeEnhancer) VoiceSettings(ctx context.Context, emotion model.Emotion, script string) model.VoiceSettings {
	return f.settings
}

func (f *fakeEnhancer) VideoDescription(ctx context.Context, script string, emotion model.Emotion) string {
	return ""
}

// fakeGenerator - run 함수로 동작 지정
type fakeGenerator struct {
	mu  sync.Mutex
	req *model.GenerationRequest
	run func(ctx context.Context, onProgress generation.ProgressFunc) (*model.GenerationResult, error)
}

func (f *fakeGenerator) Run(ctx context.Context, req *model.GenerationRequest, onProgress generation.ProgressFunc) (*model.GenerationResult, error) {
	f.mu.Lock()
	f.req = req
	f.mu.Unlock()
	return f.run(ctx, onProgress)
}

func (f *fakeGenerator) lastRequest() *model.GenerationRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.req
}

func succeed(ctx context.Context, onProgress generation.ProgressFunc) (*model.GenerationResult, error) {
	steps := generation.InitialSteps()
	steps[0].Status = model.StepCompleted
	onProgress(steps)
	return &model.GenerationResult{VideoURL: "https://cdn/v.mp4", Status: model.ResultCompleted}, nil
}

func portraitPNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 300, 400))); err != nil {
		t.Fatalf("png.Encode() error = %v", err)
	}
	return buf.Bytes()
}

const validScript = "Hello everyone, welcome to the show!"

func newTestSession(t *testing.T, gen *fakeGenerator) (*Session, *[]State) {
	t.Helper()
	var mu sync.Mutex
	var published []State
	session := NewSession("s1", &fakeEnhancer{enhanced: "Hello everyone! [pause]", settings: model.VoiceSettings{Pitch: 1, Speed: 1, Gender: model.GenderFemale}},
		gen, validation.DefaultBannedWords, func(s State) {
			mu.Lock()
			published = append(published, s)
			mu.Unlock()
		})
	return session, &published
}

func readySession(t *testing.T, gen *fakeGenerator) *Session {
	t.Helper()
	session, _ := newTestSession(t, gen)
	if _, err := session.SetImage(portraitPNG(t), "image/png"); err != nil {
		t.Fatalf("SetImage() error = %v", err)
	}
	if err := session.SelectEmotion("happy"); err != nil {
		t.Fatalf("SelectEmotion() error = %v", err)
	}
	if err := session.SetScript(validScript); err != nil {
		t.Fatalf("SetScript() error = %v", err)
	}
	return session
}

// TestNextRequiresPhoto - 사진 없이 다음 단계 불가
func TestNextRequiresPhoto(t *testing.T) {
	session, _ := newTestSession(t, &fakeGenerator{run: succeed})

	err := session.Next()
	var vErr *validation.ValidationError
	if !errors.As(err, &vErr) || vErr.Message != MsgNeedPhoto {
		t.Fatalf("Next() = %v, want %q", err, MsgNeedPhoto)
	}
	state := session.State()
	if state.Step != StepUpload || state.Error != MsgNeedPhoto {
		t.Fatalf("state = step %d error %q", state.Step, state.Error)
	}
}

// TestWizardTransitions - 업로드 → 감정 → 스크립트 → 뒤로
func TestWizardTransitions(t *testing.T) {
	session, published := newTestSession(t, &fakeGenerator{run: succeed})

	if _, err := session.SetImage(portraitPNG(t), "image/png"); err != nil {
		t.Fatalf("SetImage() error = %v", err)
	}
	if err := session.Next(); err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if err := session.Next(); err == nil || err.Error() != MsgNeedEmotion {
		t.Fatalf("Next() without emotion = %v", err)
	}
	if err := session.SelectEmotion("nope"); err == nil || err.Error() != MsgUnknownEmotion {
		t.Fatalf("SelectEmotion(nope) = %v", err)
	}
	if err := session.SelectEmotion("calm"); err != nil {
		t.Fatalf("SelectEmotion() error = %v", err)
	}
	if err := session.Next(); err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if err := session.Next(); err == nil || err.Error() != validation.MsgScriptEmpty {
		t.Fatalf("Next() with empty script = %v", err)
	}
	if err := session.Back(); err != nil {
		t.Fatalf("Back() error = %v", err)
	}

	state := session.State()
	if state.Step != StepEmotion || state.Emotion.ID != "calm" || !state.HasImage {
		t.Fatalf("state = %+v", state)
	}
	if len(*published) == 0 {
		t.Fatal("no state published")
	}
}

// TestBackStopsAtUpload - 0 단계에서 뒤로 가도 0
func TestBackStopsAtUpload(t *testing.T) {
	session, _ := newTestSession(t, &fakeGenerator{run: succeed})
	if err := session.Back(); err != nil {
		t.Fatalf("Back() error = %v", err)
	}
	if step := session.State().Step; step != StepUpload {
		t.Fatalf("Step = %d, want %d", step, StepUpload)
	}
}

// TestSetScriptClearsEnhanced - 스크립트가 바뀌면 향상본 초기화
func TestSetScriptClearsEnhanced(t *testing.T) {
	session := readySession(t, &fakeGenerator{run: succeed})

	enhanced, err := session.Enhance(context.Background())
	if err != nil || enhanced != "Hello everyone! [pause]" {
		t.Fatalf("Enhance() = %q, %v", enhanced, err)
	}
	if session.State().EnhancedScript == "" {
		t.Fatal("EnhancedScript not stored")
	}
	if err := session.SetScript(validScript + " Again."); err != nil {
		t.Fatalf("SetScript() error = %v", err)
	}
	if got := session.State().EnhancedScript; got != "" {
		t.Fatalf("EnhancedScript = %q, want empty", got)
	}
}

// TestSelectVoice - 알 수 없는 음성 거부, auto 허용
func TestSelectVoice(t *testing.T) {
	session, _ := newTestSession(t, &fakeGenerator{run: succeed})
	if err := session.SelectVoice("xx-Unknown"); err == nil || err.Error() != MsgUnknownVoice {
		t.Fatalf("SelectVoice(unknown) = %v", err)
	}
	if err := session.SelectVoice("en-US-GuyNeural"); err != nil {
		t.Fatalf("SelectVoice() error = %v", err)
	}
	if err := session.SelectVoice(""); err != nil || session.State().SelectedVoice != AutoVoice {
		t.Fatalf("SelectVoice(\"\") = %v, voice %q", err, session.State().SelectedVoice)
	}
}

// TestGenerateIncomplete - 입력이 부족하면 실행하지 않음
func TestGenerateIncomplete(t *testing.T) {
	gen := &fakeGenerator{run: succeed}
	session, _ := newTestSession(t, gen)

	err := session.Generate(context.Background())
	if err == nil || err.Error() != MsgIncomplete {
		t.Fatalf("Generate() = %v, want %q", err, MsgIncomplete)
	}
	if gen.lastRequest() != nil {
		t.Fatal("generator called for incomplete session")
	}
}

// TestGenerateSuccess - 결과 저장, 결과 단계로 이동, 음성 설정 전달
func TestGenerateSuccess(t *testing.T) {
	gen := &fakeGenerator{run: succeed}
	session := readySession(t, gen)
	if err := session.SetLanguage(model.LanguageTamil); err != nil {
		t.Fatalf("SetLanguage() error = %v", err)
	}
	if err := session.SelectVoice("en-US-GuyNeural"); err != nil {
		t.Fatalf("SelectVoice() error = %v", err)
	}

	if err := session.Generate(context.Background()); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	state := session.State()
	if state.Step != StepResult || state.Processing || state.Result == nil || state.Result.VideoURL != "https://cdn/v.mp4" {
		t.Fatalf("state = %+v", state)
	}
	if len(state.Steps) != 4 || state.Steps[0].Status != model.StepCompleted {
		t.Fatalf("Steps = %+v", state.Steps)
	}

	req := gen.lastRequest()
	if req.VoiceSettings == nil || req.VoiceSettings.VoiceID != "en-US-GuyNeural" {
		t.Fatalf("VoiceSettings = %+v", req.VoiceSettings)
	}
	if req.VoiceSettings.Language == nil || *req.VoiceSettings.Language != model.LanguageTamil {
		t.Fatalf("VoiceSettings.Language = %v", req.VoiceSettings.Language)
	}
	if req.Emotion.ID != "happy" || req.Script != validScript {
		t.Fatalf("request = %+v", req)
	}
}

// TestGenerateFailure - 실패 메시지 저장, 단계 유지
func TestGenerateFailure(t *testing.T) {
	gen := &fakeGenerator{run: func(ctx context.Context, onProgress generation.ProgressFunc) (*model.GenerationResult, error) {
		return nil, errors.New("D-ID API failed (402): no credits")
	}}
	session := readySession(t, gen)

	if err := session.Generate(context.Background()); err == nil {
		t.Fatal("Generate() error = nil")
	}
	state := session.State()
	if state.Processing || state.Result != nil || state.Error != "D-ID API failed (402): no credits" {
		t.Fatalf("state = %+v", state)
	}
}

// TestGenerateBusyAndCancel - 생성 중 입력 변경 불가, 취소 시 종료
func TestGenerateBusyAndCancel(t *testing.T) {
	started := make(chan struct{})
	gen := &fakeGenerator{run: func(ctx context.Context, onProgress generation.ProgressFunc) (*model.GenerationResult, error) {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	session := readySession(t, gen)

	done := make(chan error, 1)
	go func() { done <- session.Generate(context.Background()) }()
	<-started

	if err := session.SetScript("Another script entirely."); !errors.Is(err, ErrBusy) {
		t.Fatalf("SetScript() while processing = %v, want ErrBusy", err)
	}
	if err := session.Generate(context.Background()); !errors.Is(err, ErrBusy) {
		t.Fatalf("Generate() while processing = %v, want ErrBusy", err)
	}
	if err := session.Cancel(); err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Generate() = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Generate() did not return after Cancel()")
	}
	if err := session.Cancel(); err == nil || err.Error() != MsgNothingToCancel {
		t.Fatalf("Cancel() after finish = %v", err)
	}
}

// TestRegenerateAndReset - 재생성은 스크립트 단계, 리셋은 초기 상태
func TestRegenerateAndReset(t *testing.T) {
	session := readySession(t, &fakeGenerator{run: succeed})
	if err := session.Generate(context.Background()); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if err := session.Regenerate(); err != nil {
		t.Fatalf("Regenerate() error = %v", err)
	}
	state := session.State()
	if state.Step != StepScript || state.Result != nil || state.Script != validScript {
		t.Fatalf("after Regenerate state = %+v", state)
	}

	if err := session.Reset(); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	state = session.State()
	if state.Step != StepUpload || state.HasImage || state.Emotion != nil || state.Script != "" || state.SelectedVoice != AutoVoice {
		t.Fatalf("after Reset state = %+v", state)
	}
}

// TestManagerCleanupIdle - 유휴 세션 정리
func TestManagerCleanupIdle(t *testing.T) {
	manager := NewManager(&fakeEnhancer{}, &fakeGenerator{run: succeed}, nil, nil)
	session := manager.Create()

	if _, ok := manager.Get(session.ID()); !ok {
		t.Fatal("Get() did not find created session")
	}
	if cleaned := manager.CleanupIdle(time.Hour); cleaned != 0 {
		t.Fatalf("CleanupIdle(1h) = %d, want 0", cleaned)
	}
	if cleaned := manager.CleanupIdle(-time.Second); cleaned != 1 {
		t.Fatalf("CleanupIdle(-1s) = %d, want 1", cleaned)
	}
	if _, ok := manager.Get(session.ID()); ok {
		t.Fatal("session still present after cleanup")
	}
}

// TestStartGenerationMarksProcessing - 시작 즉시 processing, 실행 전 두 번째 시작은 ErrBusy
func TestStartGenerationMarksProcessing(t *testing.T) {
	session := readySession(t, &fakeGenerator{run: succeed})

	run, err := session.StartGeneration(context.Background())
	if err != nil {
		t.Fatalf("StartGeneration() error = %v", err)
	}
	if !session.State().Processing {
		t.Fatal("Processing = false after StartGeneration()")
	}
	if _, err := session.StartGeneration(context.Background()); !errors.Is(err, ErrBusy) {
		t.Fatalf("second StartGeneration() = %v, want ErrBusy", err)
	}

	if err := run.Run(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if state := session.State(); state.Processing || state.Result == nil {
		t.Fatalf("state after Run() = %+v", state)
	}
}
