package enhance

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"emotion-video-server/modules/common/config"
	"emotion-video-server/modules/common/model"
)

// Enhancer - 스크립트 향상/음성 설정/영상 설명 생성
type Enhancer interface {
	EnhanceScript(ctx context.Context, script string, emotion model.Emotion) string
	VoiceSettings(ctx context.Context, emotion model.Emotion, script string) model.VoiceSettings
	VideoDescription(ctx context.Context, script string, emotion model.Emotion) string
}

// completer - 프롬프트 하나를 보내고 텍스트를 받는 LLM 백엔드
type completer interface {
	Complete(ctx context.Context, prompt string, jsonMode bool) (string, error)
	Name() string
}

// Service - LLM 백엔드가 없거나 실패하면 규칙 기반으로 대체
type Service struct {
	backend completer
}

// NewEnhancer - ENHANCER_PROVIDER(gemini | openai | vertex)에 따라 백엔드 선택
func NewEnhancer(cfg *config.Config) *Service {
	var backend completer

	switch strings.ToLower(cfg.EnhancerProvider) {
	case "openai":
		if cfg.OpenAIAPIKey != "" {
			backend = newOpenAIBackend(cfg.OpenAIAPIKey, cfg.OpenAIModel)
		}
	case "vertex":
		if cfg.VertexProject != "" {
			backend = newVertexBackend(cfg.VertexProject, cfg.VertexLocation, cfg.GeminiModel)
		}
	default:
		if len(cfg.GeminiAPIKeys) > 0 {
			backend = newGeminiBackend(cfg.GeminiAPIKeys, cfg.GeminiModel)
		}
	}

	if backend == nil {
		log.Println("⚠️ [Enhance] No API key configured - using basic enhancement")
	} else {
		log.Printf("🤖 [Enhance] %s backend initialized", backend.Name())
	}

	return &Service{backend: backend}
}

// Enabled - LLM 백엔드가 설정되어 있는지
func (s *Service) Enabled() bool {
	return s.backend != nil
}

// EnhanceScript - 감정 표현을 강화한 스크립트 (키가 없으면 원본 그대로)
func (s *Service) EnhanceScript(ctx context.Context, script string, emotion model.Emotion) string {
	if s.backend == nil {
		log.Println("ℹ️ [Enhance] API key not configured, returning original script")
		return script
	}

	enhanced, err := s.backend.Complete(ctx, enhanceScriptPrompt(script, emotion), false)
	if err != nil || strings.TrimSpace(enhanced) == "" {
		log.Printf("⚠️ [Enhance] Script enhancement failed, using basic enhancement: %v", err)
		return BasicEnhancement(script, emotion.ID)
	}

	log.Printf("✅ [Enhance] Script enhanced (%d → %d chars)", len(script), len(enhanced))
	return strings.TrimSpace(enhanced)
}

// VoiceSettings - LLM이 제안한 음성 설정 (실패하면 감정별 기본값)
func (s *Service) VoiceSettings(ctx context.Context, emotion model.Emotion, script string) model.VoiceSettings {
	if s.backend == nil {
		return DefaultVoiceSettings(emotion.ID)
	}

	raw, err := s.backend.Complete(ctx, voiceSettingsPrompt(script, emotion), true)
	if err != nil {
		log.Printf("⚠️ [Enhance] Voice settings failed, using defaults: %v", err)
		return DefaultVoiceSettings(emotion.ID)
	}

	settings, err := parseVoiceSettings(raw, emotion)
	if err != nil {
		log.Printf("⚠️ [Enhance] Voice settings unparseable, using defaults: %v", err)
		return DefaultVoiceSettings(emotion.ID)
	}

	log.Printf("🎙️ [Enhance] Voice settings: pitch=%.2f speed=%.2f gender=%s", settings.Pitch, settings.Speed, settings.Gender)
	return settings
}

// VideoDescription - 2-3문장 영상 설명
func (s *Service) VideoDescription(ctx context.Context, script string, emotion model.Emotion) string {
	if s.backend != nil {
		description, err := s.backend.Complete(ctx, videoDescriptionPrompt(script, emotion), false)
		if err == nil && strings.TrimSpace(description) != "" {
			return strings.TrimSpace(description)
		}
		log.Printf("⚠️ [Enhance] Video description failed: %v", err)
	}
	return FallbackDescription(emotion)
}

type voiceSettingsAnswer struct {
	Pitch   float64 `json:"pitch"`
	Speed   float64 `json:"speed"`
	Emotion string  `json:"emotion"`
	Gender  string  `json:"gender"`
}

// parseVoiceSettings - JSON 응답 파싱 (코드펜스 허용) 후 [0.5, 2.0] 고정
func parseVoiceSettings(raw string, emotion model.Emotion) (model.VoiceSettings, error) {
	text := strings.TrimSpace(raw)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	var answer voiceSettingsAnswer
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &answer); err != nil {
		return model.VoiceSettings{}, fmt.Errorf("invalid voice settings JSON: %w", err)
	}

	settings := model.VoiceSettings{
		Pitch:   answer.Pitch,
		Speed:   answer.Speed,
		Emotion: answer.Emotion,
		Gender:  model.ParseGender(answer.Gender),
	}
	if settings.Emotion == "" {
		settings.Emotion = strings.ToLower(emotion.Name)
	}
	return settings.Clamp(), nil
}
