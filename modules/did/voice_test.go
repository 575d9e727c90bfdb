package did

import (
	"testing"

	"emotion-video-server/modules/common/model"
)

// TestSelectVoiceEnglish - 감정/성별 조합
func TestSelectVoiceEnglish(t *testing.T) {
	tests := []struct {
		emotion string
		gender  model.Gender
		want    string
	}{
		{"happy", model.GenderFemale, "en-US-JennyNeural"},
		{"sad", model.GenderMale, "en-US-GuyNeural"},
		{"motivational", model.GenderNeutral, "en-US-JasonNeural"},
		{"angry", model.GenderMale, "en-US-ChristopherNeural"},
		{"professional", model.GenderFemale, "en-US-EmmaNeural"},
		{"romantic", model.GenderMale, "en-US-RyanNeural"},
		{"unknown", model.GenderMale, "en-US-BrandonNeural"},
		{"happy", model.Gender("robot"), "en-US-AriaNeural"},
	}
	for _, tt := range tests {
		if got := SelectVoice(tt.emotion, tt.gender, model.LanguageEnglish, ""); got != tt.want {
			t.Fatalf("SelectVoice(%s, %s) = %q, want %q", tt.emotion, tt.gender, got, tt.want)
		}
	}
}

// TestSelectVoiceTamil - 타밀 중성 음성 분기
func TestSelectVoiceTamil(t *testing.T) {
	if got := SelectVoice("angry", model.GenderNeutral, model.LanguageTamil, ""); got != tamilMale {
		t.Fatalf("tamil neutral angry = %q, want %q", got, tamilMale)
	}
	if got := SelectVoice("happy", model.GenderNeutral, model.LanguageTamil, ""); got != tamilFemale {
		t.Fatalf("tamil neutral happy = %q, want %q", got, tamilFemale)
	}
	if got := SelectVoice("calm", model.GenderMale, model.LanguageTamil, ""); got != tamilMale {
		t.Fatalf("tamil male = %q, want %q", got, tamilMale)
	}
}

// TestSelectVoiceOverride - 명시한 voice id가 항상 우선
func TestSelectVoiceOverride(t *testing.T) {
	if got := SelectVoice("happy", model.GenderMale, model.LanguageTamil, "en-GB-SoniaNeural"); got != "en-GB-SoniaNeural" {
		t.Fatalf("override = %q", got)
	}
}

// TestVoiceStyleRatePitch - 범주 변환
func TestVoiceStyleRatePitch(t *testing.T) {
	if got := VoiceStyle("professional"); got != "newscast" {
		t.Fatalf("VoiceStyle(professional) = %q, want newscast", got)
	}
	if got := VoiceStyle("bored"); got != "friendly" {
		t.Fatalf("VoiceStyle(bored) = %q, want friendly", got)
	}

	rates := map[float64]string{0: "medium", 0.7: "slow", 0.8: "medium", 1.2: "medium", 1.3: "fast"}
	for speed, want := range rates {
		if got := VoiceRate(speed); got != want {
			t.Fatalf("VoiceRate(%v) = %q, want %q", speed, got, want)
		}
	}

	pitches := map[float64]string{0: "medium", 0.8: "low", 0.9: "medium", 1.1: "medium", 1.4: "high"}
	for pitch, want := range pitches {
		if got := VoicePitch(pitch); got != want {
			t.Fatalf("VoicePitch(%v) = %q, want %q", pitch, got, want)
		}
	}
}

// TestResolveLanguage - 문자 감지 또는 요청 언어
func TestResolveLanguage(t *testing.T) {
	if got := ResolveLanguage("வணக்கம் நண்பர்களே", model.LanguageEnglish); got != model.LanguageTamil {
		t.Fatalf("tamil script = %q, want tamil", got)
	}
	if got := ResolveLanguage("Hello there friends", model.LanguageTamil); got != model.LanguageTamil {
		t.Fatalf("requested tamil = %q, want tamil", got)
	}
	if got := ResolveLanguage("Hello there friends", model.LanguageEnglish); got != model.LanguageEnglish {
		t.Fatalf("english = %q, want english", got)
	}
}

// TestBuildVoiceProvider - 설정이 없으면 중성/medium
func TestBuildVoiceProvider(t *testing.T) {
	provider := BuildVoiceProvider("excited", "Let's go everyone!", nil, model.LanguageEnglish)
	if provider.Type != "microsoft" || provider.VoiceID != "en-US-AriaNeural" {
		t.Fatalf("provider = %+v", provider)
	}
	if provider.VoiceConfig != (VoiceConfig{Style: "excited", Rate: "medium", Pitch: "medium"}) {
		t.Fatalf("voice config = %+v", provider.VoiceConfig)
	}

	tamil := model.LanguageTamil
	provider = BuildVoiceProvider("sad", "Hello world again", &model.VoiceSettings{
		Pitch:    0.8,
		Speed:    1.3,
		Gender:   model.GenderFemale,
		Language: &tamil,
	}, model.LanguageEnglish)
	if provider.VoiceID != tamilFemale {
		t.Fatalf("VoiceID = %q, want %q", provider.VoiceID, tamilFemale)
	}
	if provider.VoiceConfig.Rate != "fast" || provider.VoiceConfig.Pitch != "low" {
		t.Fatalf("voice config = %+v", provider.VoiceConfig)
	}
}
