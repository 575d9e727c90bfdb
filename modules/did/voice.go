package did

import (
	"emotion-video-server/modules/common/model"
)

type voiceRow struct {
	Male    string
	Female  string
	Neutral string
}

func (r voiceRow) pick(gender model.Gender) string {
	switch gender {
	case model.GenderMale:
		return r.Male
	case model.GenderFemale:
		return r.Female
	default:
		return r.Neutral
	}
}

// 알 수 없는 감정은 calm 행으로
const fallbackEmotion = "calm"

var englishVoices = map[string]voiceRow{
	"happy":        {"en-US-JasonNeural", "en-US-JennyNeural", "en-US-AriaNeural"},
	"sad":          {"en-US-GuyNeural", "en-US-SaraNeural", "en-US-DavisNeural"},
	"motivational": {"en-US-TonyNeural", "en-US-NancyNeural", "en-US-JasonNeural"},
	"calm":         {"en-US-BrandonNeural", "en-US-MonicaNeural", "en-US-AriaNeural"},
	"angry":        {"en-US-ChristopherNeural", "en-US-MichelleNeural", "en-US-EricNeural"},
	"excited":      {"en-US-JasonNeural", "en-US-JennyNeural", "en-US-AriaNeural"},
	"professional": {"en-US-BrianNeural", "en-US-EmmaNeural", "en-US-DavisNeural"},
	"romantic":     {"en-US-RyanNeural", "en-US-SaraNeural", "en-US-AriaNeural"},
}

const (
	tamilMale   = "ta-IN-ValluvarNeural"
	tamilFemale = "ta-IN-PallaviNeural"
)

var tamilVoices = map[string]voiceRow{
	"happy":        {tamilMale, tamilFemale, tamilFemale},
	"sad":          {tamilMale, tamilFemale, tamilFemale},
	"motivational": {tamilMale, tamilFemale, tamilMale},
	"calm":         {tamilMale, tamilFemale, tamilFemale},
	"angry":        {tamilMale, tamilFemale, tamilMale},
	"excited":      {tamilMale, tamilFemale, tamilFemale},
	"professional": {tamilMale, tamilFemale, tamilMale},
	"romantic":     {tamilMale, tamilFemale, tamilFemale},
}

const defaultVoiceStyle = "friendly"

var voiceStyles = map[string]string{
	"happy":        "cheerful",
	"sad":          "sad",
	"motivational": "excited",
	"calm":         "calm",
	"angry":        "angry",
	"excited":      "excited",
	"professional": "newscast",
	"romantic":     "gentle",
}

// SelectVoice - 감정/성별/언어로 음성 선택 (override가 있으면 그대로 사용)
func SelectVoice(emotionID string, gender model.Gender, language model.Language, override string) string {
	if override != "" {
		return override
	}

	table := englishVoices
	if language == model.LanguageTamil {
		table = tamilVoices
	}

	row, ok := table[emotionID]
	if !ok {
		row = table[fallbackEmotion]
	}
	return row.pick(gender)
}

// VoiceStyle - 감정 → 말투 스타일
func VoiceStyle(emotionID string) string {
	if style, ok := voiceStyles[emotionID]; ok {
		return style
	}
	return defaultVoiceStyle
}

// VoiceRate - 속도 배수 → slow/medium/fast
func VoiceRate(speed float64) string {
	switch {
	case speed == 0:
		return "medium"
	case speed < 0.8:
		return "slow"
	case speed > 1.2:
		return "fast"
	default:
		return "medium"
	}
}

// VoicePitch - 피치 배수 → low/medium/high
func VoicePitch(pitch float64) string {
	switch {
	case pitch == 0:
		return "medium"
	case pitch < 0.9:
		return "low"
	case pitch > 1.1:
		return "high"
	default:
		return "medium"
	}
}

// DetectTamil - 타밀 문자(U+0B80–U+0BFF)가 하나라도 있으면 true
func DetectTamil(text string) bool {
	for _, r := range text {
		if r >= 0x0B80 && r <= 0x0BFF {
			return true
		}
	}
	return false
}

// ResolveLanguage - 스크립트 문자 또는 요청 언어 중 하나라도 타밀이면 타밀
func ResolveLanguage(script string, requested model.Language) model.Language {
	if requested == model.LanguageTamil || DetectTamil(script) {
		return model.LanguageTamil
	}
	return model.LanguageEnglish
}

// BuildVoiceProvider - 요청 설정으로 provider 블록 구성
func BuildVoiceProvider(emotionID, script string, settings *model.VoiceSettings, language model.Language) VoiceProvider {
	var (
		gender   = model.GenderNeutral
		override string
		speed    float64
		pitch    float64
	)
	if settings != nil {
		if settings.Gender != "" {
			gender = settings.Gender
		}
		if settings.Language != nil && *settings.Language == model.LanguageTamil {
			language = model.LanguageTamil
		}
		override = settings.VoiceID
		speed = settings.Speed
		pitch = settings.Pitch
	}

	language = ResolveLanguage(script, language)

	return VoiceProvider{
		Type:    "microsoft",
		VoiceID: SelectVoice(emotionID, gender, language, override),
		VoiceConfig: VoiceConfig{
			Style: VoiceStyle(emotionID),
			Rate:  VoiceRate(speed),
			Pitch: VoicePitch(pitch),
		},
	}
}
