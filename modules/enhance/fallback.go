package enhance

import (
	"fmt"
	"strings"

	"emotion-video-server/modules/common/model"
)

// BasicEnhancement - LLM 실패 시 구두점 기반 감정 표시
func BasicEnhancement(script, emotionID string) string {
	switch emotionID {
	case "happy":
		return strings.NewReplacer(".", "! ", "?", "?! ").Replace(script)
	case "sad", "romantic":
		return strings.ReplaceAll(script, ".", "... ")
	case "motivational", "angry":
		return strings.ReplaceAll(strings.ToUpper(script), ".", "! ")
	case "calm":
		return strings.ReplaceAll(script, ".", ". [pause] ")
	case "excited":
		return strings.NewReplacer(".", "!! ", "?", "?! ").Replace(script)
	default:
		return script
	}
}

var defaultVoiceSettings = map[string]model.VoiceSettings{
	"happy":        {Pitch: 1.2, Speed: 1.1, Emotion: "happy"},
	"sad":          {Pitch: 0.8, Speed: 0.9, Emotion: "sad"},
	"motivational": {Pitch: 1.1, Speed: 1.0, Emotion: "motivational"},
	"calm":         {Pitch: 1.0, Speed: 0.95, Emotion: "calm"},
	"angry":        {Pitch: 1.3, Speed: 1.2, Emotion: "angry"},
	"excited":      {Pitch: 1.4, Speed: 1.3, Emotion: "excited"},
	"professional": {Pitch: 1.0, Speed: 1.0, Emotion: "professional"},
	"romantic":     {Pitch: 0.9, Speed: 0.9, Emotion: "romantic"},
}

// DefaultVoiceSettings - 감정별 기본 음성 설정 (성별은 항상 neutral)
func DefaultVoiceSettings(emotionID string) model.VoiceSettings {
	settings, ok := defaultVoiceSettings[emotionID]
	if !ok {
		settings = model.VoiceSettings{Pitch: 1.0, Speed: 1.0, Emotion: "neutral"}
	}
	settings.Gender = model.GenderNeutral
	return settings
}

// FallbackDescription - 설명 생성 실패 시 고정 문구
func FallbackDescription(emotion model.Emotion) string {
	return fmt.Sprintf("A %s talking video delivering your message with authentic emotional expression.", strings.ToLower(emotion.Name))
}
