package model

import (
	"strings"
	"time"
)

// Language - 지원 언어
type Language string

const (
	LanguageEnglish Language = "english"
	LanguageTamil   Language = "tamil"
)

// ParseLanguage - 알 수 없는 값은 english
func ParseLanguage(raw string) Language {
	if Language(strings.ToLower(strings.TrimSpace(raw))) == LanguageTamil {
		return LanguageTamil
	}
	return LanguageEnglish
}

// Gender - 음성 성별
type Gender string

const (
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
	GenderNeutral Gender = "neutral"
)

// ParseGender - 알 수 없는 값은 neutral
func ParseGender(raw string) Gender {
	switch Gender(strings.ToLower(strings.TrimSpace(raw))) {
	case GenderMale:
		return GenderMale
	case GenderFemale:
		return GenderFemale
	default:
		return GenderNeutral
	}
}

// Emotion - 감정 카탈로그 항목
type Emotion struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
	Icon        string `json:"icon"`
}

// Voice - 선택 가능한 음성
type Voice struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Gender      Gender   `json:"gender"`
	Language    Language `json:"language"`
	Description string   `json:"description"`
	Accent      string   `json:"accent,omitempty"`
}

// VoiceSettings - 향상 서비스가 제안하거나 기본값으로 채워지는 음성 설정
type VoiceSettings struct {
	Pitch    float64   `json:"pitch"`
	Speed    float64   `json:"speed"`
	Emotion  string    `json:"emotion"`
	Gender   Gender    `json:"gender"`
	Language *Language `json:"language,omitempty"`
	VoiceID  string    `json:"voiceId,omitempty"`
}

const (
	MinVoiceScale = 0.5
	MaxVoiceScale = 2.0
)

// Clamp - pitch/speed를 [0.5, 2.0] 범위로 고정
func (v VoiceSettings) Clamp() VoiceSettings {
	v.Pitch = clampScale(v.Pitch)
	v.Speed = clampScale(v.Speed)
	return v
}

func clampScale(value float64) float64 {
	if value == 0 {
		return 1.0
	}
	if value < MinVoiceScale {
		return MinVoiceScale
	}
	if value > MaxVoiceScale {
		return MaxVoiceScale
	}
	return value
}

// GenerationRequest - 한 번의 영상 생성 요청 (생성 후 변경하지 않음)
type GenerationRequest struct {
	Image          []byte         `json:"-"`
	ImageType      string         `json:"imageType"`
	Emotion        Emotion        `json:"emotion"`
	Script         string         `json:"script"`
	EnhancedScript string         `json:"enhancedScript,omitempty"`
	VoiceSettings  *VoiceSettings `json:"voiceSettings,omitempty"`
	Language       Language       `json:"language"`
}

// JobScript - 프로바이더에 보낼 스크립트 (향상본 우선)
func (r *GenerationRequest) JobScript() string {
	if r.EnhancedScript != "" {
		return r.EnhancedScript
	}
	return r.Script
}

// StepStatus - 파이프라인 단계 상태
type StepStatus string

const (
	StepPending    StepStatus = "pending"
	StepProcessing StepStatus = "processing"
	StepCompleted  StepStatus = "completed"
	StepError      StepStatus = "error"
)

// ProcessingStep - 파이프라인 한 단계의 상태
type ProcessingStep struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Status   StepStatus `json:"status"`
	Progress int        `json:"progress"`
	Message  string     `json:"message,omitempty"`
}

// CopySteps - 콜백에 넘길 스냅샷 복사본
func CopySteps(steps []ProcessingStep) []ProcessingStep {
	out := make([]ProcessingStep, len(steps))
	copy(out, steps)
	return out
}

// ResultStatus - 생성 결과 상태
type ResultStatus string

const (
	ResultProcessing ResultStatus = "processing"
	ResultCompleted  ResultStatus = "completed"
	ResultError      ResultStatus = "error"
)

// GenerationResult - 파이프라인 완료 시 한 번 만들어지는 결과
type GenerationResult struct {
	VideoURL       string        `json:"videoUrl"`
	AudioURL       string        `json:"audioUrl"`
	Status         ResultStatus  `json:"status"`
	ProcessingTime time.Duration `json:"processingTime"`
	ThumbnailURL   string        `json:"thumbnailUrl,omitempty"`
	TalkID         string        `json:"talkId,omitempty"`
}

// ArchivedVideo - 보관 스토리지로 옮긴 결과물
type ArchivedVideo struct {
	VideoURL     string `json:"videoUrl"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
}

// GenerationJob - emotion_video_jobs 테이블 구조
type GenerationJob struct {
	JobID           string                 `json:"job_id"`
	UserID          *string                `json:"user_id"`
	JobStatus       string                 `json:"job_status"`
	JobInputData    map[string]interface{} `json:"job_input_data"`
	ProcessingSteps []ProcessingStep       `json:"processing_steps"`
	TalkID          *string                `json:"talk_id"`
	VideoURL        *string                `json:"video_url"`
	AudioURL        *string                `json:"audio_url"`
	ThumbnailURL    *string                `json:"thumbnail_url"`
	ErrorMessage    *string                `json:"error_message"`
	CreatedAt       time.Time              `json:"created_at"`
	StartedAt       *time.Time             `json:"started_at"`
	CompletedAt     *time.Time             `json:"completed_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

// Job 상태
const (
	StatusPending       = "pending"
	StatusProcessing    = "processing"
	StatusCompleted     = "completed"
	StatusFailed        = "failed"
	StatusUserCancelled = "user_cancelled"
)
