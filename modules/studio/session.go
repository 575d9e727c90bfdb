package studio

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"emotion-video-server/modules/common/model"
	"emotion-video-server/modules/enhance"
	"emotion-video-server/modules/generation"
	"emotion-video-server/modules/media"
	"emotion-video-server/modules/validation"
)

// 위저드 단계
const (
	StepUpload  = 0
	StepEmotion = 1
	StepScript  = 2
	StepResult  = 3
)

// AutoVoice - 음성 자동 선택
const AutoVoice = "auto"

const (
	MsgNeedPhoto       = "Please upload a photo first"
	MsgNeedEmotion     = "Please select an emotion"
	MsgIncomplete      = "Please complete all steps before generating the video"
	MsgAlreadyRunning  = "A video is already being generated"
	MsgUnknownEmotion  = "Unknown emotion"
	MsgUnknownVoice    = "Unknown voice"
	MsgNothingToCancel = "No generation in progress"
)

// ErrBusy - 생성 중에는 입력 변경 불가
var ErrBusy = errors.New(MsgAlreadyRunning)

// Generator - 파이프라인 실행 (generation.Orchestrator가 구현)
type Generator interface {
	Run(ctx context.Context, req *model.GenerationRequest, onProgress generation.ProgressFunc) (*model.GenerationResult, error)
}

// State - 클라이언트에 내려주는 세션 스냅샷
type State struct {
	SessionID      string                  `json:"sessionId"`
	Step           int                     `json:"step"`
	HasImage       bool                    `json:"hasImage"`
	Image          *media.Prepared         `json:"image,omitempty"`
	Emotion        *model.Emotion          `json:"emotion,omitempty"`
	Script         string                  `json:"script"`
	EnhancedScript string                  `json:"enhancedScript,omitempty"`
	Language       model.Language          `json:"language"`
	SelectedVoice  string                  `json:"selectedVoice"`
	Steps          []model.ProcessingStep  `json:"steps,omitempty"`
	Result         *model.GenerationResult `json:"result,omitempty"`
	Processing     bool                    `json:"processing"`
	Error          string                  `json:"error,omitempty"`
}

// Session - 사용자 한 명의 위저드 상태
type Session struct {
	id          string
	enhancer    enhance.Enhancer
	generator   Generator
	bannedWords []string
	notify      func(State)

	mu             sync.Mutex
	step           int
	image          []byte
	imageInfo      *media.Prepared
	emotion        *model.Emotion
	script         string
	enhancedScript string
	language       model.Language
	selectedVoice  string
	steps          []model.ProcessingStep
	result         *model.GenerationResult
	processing     bool
	errMessage     string
	cancel         context.CancelFunc
	createdAt      time.Time
	lastActivity   time.Time
}

// NewSession - 빈 세션 생성
func NewSession(id string, enhancer enhance.Enhancer, generator Generator, bannedWords []string, notify func(State)) *Session {
	now := time.Now()
	return &Session{
		id:            id,
		enhancer:      enhancer,
		generator:     generator,
		bannedWords:   bannedWords,
		notify:        notify,
		language:      model.LanguageEnglish,
		selectedVoice: AutoVoice,
		createdAt:     now,
		lastActivity:  now,
	}
}

// ID - 세션 ID
func (s *Session) ID() string {
	return s.id
}

// State - 현재 상태 복사본
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Session) stateLocked() State {
	state := State{
		SessionID:      s.id,
		Step:           s.step,
		HasImage:       len(s.image) > 0,
		Image:          s.imageInfo,
		Script:         s.script,
		EnhancedScript: s.enhancedScript,
		Language:       s.language,
		SelectedVoice:  s.selectedVoice,
		Processing:     s.processing,
		Error:          s.errMessage,
	}
	if s.emotion != nil {
		emotion := *s.emotion
		state.Emotion = &emotion
	}
	if s.steps != nil {
		state.Steps = model.CopySteps(s.steps)
	}
	if s.result != nil {
		result := *s.result
		state.Result = &result
	}
	return state
}

// touch - 변경 후 호출 (lock 보유 상태)
func (s *Session) touch() State {
	s.lastActivity = time.Now()
	return s.stateLocked()
}

func (s *Session) publish(state State) {
	if s.notify != nil {
		s.notify(state)
	}
}

// mutate - 생성 중이 아니면 fn 실행 후 알림
func (s *Session) mutate(fn func() error) error {
	s.mu.Lock()
	if s.processing {
		s.mu.Unlock()
		return ErrBusy
	}
	err := fn()
	if err != nil {
		s.errMessage = err.Error()
	}
	state := s.touch()
	s.mu.Unlock()

	s.publish(state)
	return err
}

// SetImage - 검증/리사이즈 후 저장 (얼굴 휴리스틱 결과 포함)
func (s *Session) SetImage(data []byte, contentType string) (*media.Prepared, error) {
	prepared, err := media.Prepare(data, contentType)
	if err != nil {
		return nil, s.mutate(func() error { return err })
	}

	err = s.mutate(func() error {
		s.image = prepared.Data
		s.imageInfo = prepared
		s.errMessage = ""
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !prepared.HasFace {
		log.Printf("⚠️ [Studio] Session %s: no face detected in uploaded image", s.id)
	}
	return prepared, nil
}

// SelectEmotion - 감정 선택
func (s *Session) SelectEmotion(id string) error {
	emotion, ok := model.FindEmotion(id)
	return s.mutate(func() error {
		if !ok {
			return &validation.ValidationError{Field: "emotion", Message: MsgUnknownEmotion}
		}
		s.emotion = &emotion
		s.errMessage = ""
		return nil
	})
}

// SetLanguage - 음성 언어 선택
func (s *Session) SetLanguage(language model.Language) error {
	return s.mutate(func() error {
		s.language = language
		return nil
	})
}

// SelectVoice - 음성 직접 선택 ("auto"면 자동)
func (s *Session) SelectVoice(voiceID string) error {
	voiceID = strings.TrimSpace(voiceID)
	return s.mutate(func() error {
		if voiceID == "" || voiceID == AutoVoice {
			s.selectedVoice = AutoVoice
			return nil
		}
		if _, ok := model.FindVoice(voiceID); !ok {
			return &validation.ValidationError{Field: "voice", Message: MsgUnknownVoice}
		}
		s.selectedVoice = voiceID
		return nil
	})
}

// SetScript - 스크립트 변경 (향상본은 초기화)
func (s *Session) SetScript(script string) error {
	return s.mutate(func() error {
		if script != s.script {
			s.enhancedScript = ""
		}
		s.script = script
		s.errMessage = ""
		return nil
	})
}

// Next - 현재 단계 입력 확인 후 다음 단계로
func (s *Session) Next() error {
	return s.mutate(func() error {
		switch s.step {
		case StepUpload:
			if len(s.image) == 0 {
				return &validation.ValidationError{Field: "image", Message: MsgNeedPhoto}
			}
		case StepEmotion:
			if s.emotion == nil {
				return &validation.ValidationError{Field: "emotion", Message: MsgNeedEmotion}
			}
		case StepScript:
			if err := validation.ValidateScriptWith(s.script, s.bannedWords).Err(); err != nil {
				return err
			}
		default:
			return nil
		}
		s.step++
		s.errMessage = ""
		return nil
	})
}

// Back - 이전 단계 (0 아래로 내려가지 않음)
func (s *Session) Back() error {
	return s.mutate(func() error {
		if s.step > 0 {
			s.step--
		}
		s.errMessage = ""
		return nil
	})
}

// Enhance - 스크립트 향상본 생성
func (s *Session) Enhance(ctx context.Context) (string, error) {
	s.mu.Lock()
	if s.processing {
		s.mu.Unlock()
		return "", ErrBusy
	}
	script := s.script
	emotion := s.emotion
	s.mu.Unlock()

	if emotion == nil {
		return "", s.mutate(func() error {
			return &validation.ValidationError{Field: "emotion", Message: MsgNeedEmotion}
		})
	}
	if err := validation.ValidateScriptWith(script, s.bannedWords).Err(); err != nil {
		return "", s.mutate(func() error { return err })
	}

	enhanced := s.enhancer.EnhanceScript(ctx, script, *emotion)

	err := s.mutate(func() error {
		// 향상 중에 스크립트가 바뀌었으면 버림
		if s.script == script {
			s.enhancedScript = enhanced
		}
		return nil
	})
	return enhanced, err
}

// GenerationRun - StartGeneration이 예약한 실행 (Run 호출 전까지 세션은 processing)
type GenerationRun struct {
	session       *Session
	ctx           context.Context
	cancel        context.CancelFunc
	req           *model.GenerationRequest
	selectedVoice string
}

// Generate - 파이프라인 실행 (완료까지 블록)
func (s *Session) Generate(ctx context.Context) error {
	run, err := s.StartGeneration(ctx)
	if err != nil {
		return err
	}
	return run.Run()
}

// StartGeneration - 입력 검증 후 processing 표시까지 한 번의 잠금 안에서 처리
// 이미 생성 중이면 ErrBusy, 입력이 부족하면 ValidationError
func (s *Session) StartGeneration(ctx context.Context) (*GenerationRun, error) {
	s.mu.Lock()
	if s.processing {
		s.mu.Unlock()
		return nil, ErrBusy
	}
	if len(s.image) == 0 || s.emotion == nil || strings.TrimSpace(s.script) == "" {
		s.errMessage = MsgIncomplete
		state := s.touch()
		s.mu.Unlock()
		s.publish(state)
		return nil, &validation.ValidationError{Message: MsgIncomplete}
	}
	if err := validation.ValidateScriptWith(s.script, s.bannedWords).Err(); err != nil {
		s.errMessage = err.Error()
		state := s.touch()
		s.mu.Unlock()
		s.publish(state)
		return nil, err
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.processing = true
	s.cancel = cancel
	s.errMessage = ""
	s.result = nil
	s.steps = generation.InitialSteps()

	run := &GenerationRun{
		session: s,
		ctx:     runCtx,
		cancel:  cancel,
		req: &model.GenerationRequest{
			Image:          s.image,
			ImageType:      s.imageInfo.ContentType,
			Emotion:        *s.emotion,
			Script:         s.script,
			EnhancedScript: s.enhancedScript,
			Language:       s.language,
		},
		selectedVoice: s.selectedVoice,
	}
	state := s.touch()
	s.mu.Unlock()
	s.publish(state)
	return run, nil
}

// Run - 음성 설정 후 오케스트레이터 실행, 결과를 세션에 기록
func (r *GenerationRun) Run() error {
	s := r.session
	req := r.req
	defer r.cancel()

	settings := s.enhancer.VoiceSettings(r.ctx, req.Emotion, req.JobScript())
	if r.selectedVoice != "" && r.selectedVoice != AutoVoice {
		settings.VoiceID = r.selectedVoice
	}
	language := req.Language
	settings.Language = &language
	req.VoiceSettings = &settings

	result, err := s.generator.Run(r.ctx, req, func(steps []model.ProcessingStep) {
		s.mu.Lock()
		s.steps = steps
		state := s.touch()
		s.mu.Unlock()
		s.publish(state)
	})

	s.mu.Lock()
	s.processing = false
	s.cancel = nil
	if err != nil {
		s.errMessage = err.Error()
		if errors.Is(err, context.Canceled) {
			s.errMessage = "Video generation was cancelled"
		}
	} else {
		s.result = result
		s.step = StepResult
	}
	state := s.touch()
	s.mu.Unlock()
	s.publish(state)

	if err != nil {
		log.Printf("❌ [Studio] Session %s generation failed: %v", s.id, err)
	} else {
		log.Printf("✅ [Studio] Session %s generation completed: %s", s.id, result.VideoURL)
	}
	return err
}

// Cancel - 진행 중인 생성 취소
func (s *Session) Cancel() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.processing || s.cancel == nil {
		return errors.New(MsgNothingToCancel)
	}
	s.cancel()
	log.Printf("🛑 [Studio] Session %s generation cancel requested", s.id)
	return nil
}

// Regenerate - 결과를 지우고 스크립트 단계로
func (s *Session) Regenerate() error {
	return s.mutate(func() error {
		s.result = nil
		s.steps = nil
		s.errMessage = ""
		s.step = StepScript
		return nil
	})
}

// Reset - 처음 상태로
func (s *Session) Reset() error {
	return s.mutate(func() error {
		s.step = StepUpload
		s.image = nil
		s.imageInfo = nil
		s.emotion = nil
		s.script = ""
		s.enhancedScript = ""
		s.language = model.LanguageEnglish
		s.selectedVoice = AutoVoice
		s.steps = nil
		s.result = nil
		s.errMessage = ""
		return nil
	})
}

// idleSince - 마지막 활동 이후 경과 시간
func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.processing {
		return 0
	}
	return now.Sub(s.lastActivity)
}
