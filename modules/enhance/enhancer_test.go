package enhance

import (
	"context"
	"errors"
	"strings"
	"testing"

	"emotion-video-server/modules/common/config"
	"emotion-video-server/modules/common/model"
)

// fakeBackend - 고정 응답 백엔드
type fakeBackend struct {
	complete func(prompt string, jsonMode bool) (string, error)
}

func (f *fakeBackend) Name() string { return "fake" }

func (f *fakeBackend) Complete(ctx context.Context, prompt string, jsonMode bool) (string, error) {
	return f.complete(prompt, jsonMode)
}

var happy = model.Emotion{ID: "happy", Name: "Happy", Description: "Joyful and upbeat"}

// TestEnhanceScriptWithoutKey - 키가 없으면 원본 그대로
func TestEnhanceScriptWithoutKey(t *testing.T) {
	svc := NewEnhancer(&config.Config{})
	if svc.Enabled() {
		t.Fatal("Enabled() = true without keys")
	}
	if got := svc.EnhanceScript(context.Background(), "Hello there.", happy); got != "Hello there." {
		t.Fatalf("EnhanceScript() = %q, want original", got)
	}
}

// TestEnhanceScriptFallsBackOnError - 백엔드 실패 시 규칙 기반
func TestEnhanceScriptFallsBackOnError(t *testing.T) {
	svc := &Service{backend: &fakeBackend{complete: func(string, bool) (string, error) {
		return "", errors.New("503")
	}}}
	if got := svc.EnhanceScript(context.Background(), "Hi. Ready?", happy); got != "Hi!  Ready?! " {
		t.Fatalf("EnhanceScript() = %q", got)
	}
}

// TestEnhanceScriptUsesBackend - 응답은 trim 후 반환
func TestEnhanceScriptUsesBackend(t *testing.T) {
	svc := &Service{backend: &fakeBackend{complete: func(prompt string, jsonMode bool) (string, error) {
		if jsonMode || !strings.Contains(prompt, "Target emotion: Happy") {
			t.Errorf("unexpected prompt (json=%v): %s", jsonMode, prompt)
		}
		return "  Hello there! [pause]\n", nil
	}}}
	if got := svc.EnhanceScript(context.Background(), "Hello there.", happy); got != "Hello there! [pause]" {
		t.Fatalf("EnhanceScript() = %q", got)
	}
}

// TestBasicEnhancement - 감정별 규칙
func TestBasicEnhancement(t *testing.T) {
	tests := []struct {
		emotion string
		want    string
	}{
		{"happy", "Go!  Now?! "},
		{"sad", "Go...  Now?"},
		{"motivational", "GO!  NOW?"},
		{"calm", "Go. [pause]  Now?"},
		{"angry", "GO!  NOW?"},
		{"excited", "Go!!  Now?! "},
		{"professional", "Go. Now?"},
		{"romantic", "Go...  Now?"},
		{"unknown", "Go. Now?"},
	}
	for _, tt := range tests {
		if got := BasicEnhancement("Go. Now?", tt.emotion); got != tt.want {
			t.Fatalf("BasicEnhancement(%s) = %q, want %q", tt.emotion, got, tt.want)
		}
	}
}

// TestVoiceSettingsClamped - JSON 응답은 [0.5, 2.0]으로 고정
func TestVoiceSettingsClamped(t *testing.T) {
	svc := &Service{backend: &fakeBackend{complete: func(prompt string, jsonMode bool) (string, error) {
		if !jsonMode {
			t.Error("voice settings should request JSON")
		}
		return "```json\n{\"pitch\": 3.5, \"speed\": 0.1, \"emotion\": \"happy\", \"gender\": \"female\"}\n```", nil
	}}}

	got := svc.VoiceSettings(context.Background(), happy, "Hello there everyone")
	if got.Pitch != 2.0 || got.Speed != 0.5 || got.Gender != model.GenderFemale || got.Emotion != "happy" {
		t.Fatalf("VoiceSettings() = %+v", got)
	}
}

// TestVoiceSettingsDefaults - 실패/키 없음 → 감정별 기본값
func TestVoiceSettingsDefaults(t *testing.T) {
	svc := &Service{backend: &fakeBackend{complete: func(string, bool) (string, error) {
		return "not json", nil
	}}}
	got := svc.VoiceSettings(context.Background(), model.Emotion{ID: "excited", Name: "Excited"}, "Wow")
	want := model.VoiceSettings{Pitch: 1.4, Speed: 1.3, Emotion: "excited", Gender: model.GenderNeutral}
	if got.Pitch != want.Pitch || got.Speed != want.Speed || got.Emotion != want.Emotion || got.Gender != want.Gender {
		t.Fatalf("VoiceSettings() = %+v, want %+v", got, want)
	}

	other := (&Service{}).VoiceSettings(context.Background(), model.Emotion{ID: "bored"}, "x")
	if other.Pitch != 1.0 || other.Speed != 1.0 || other.Emotion != "neutral" || other.Gender != model.GenderNeutral {
		t.Fatalf("VoiceSettings(unknown) = %+v", other)
	}
}

// TestVideoDescriptionFallback - 실패 시 고정 문구
func TestVideoDescriptionFallback(t *testing.T) {
	svc := &Service{backend: &fakeBackend{complete: func(string, bool) (string, error) {
		return "", errors.New("boom")
	}}}
	want := "A happy talking video delivering your message with authentic emotional expression."
	if got := svc.VideoDescription(context.Background(), "Hi", happy); got != want {
		t.Fatalf("VideoDescription() = %q, want %q", got, want)
	}
}

// TestNewEnhancerSelectsBackend - ENHANCER_PROVIDER 분기
func TestNewEnhancerSelectsBackend(t *testing.T) {
	svc := NewEnhancer(&config.Config{EnhancerProvider: "openai", OpenAIAPIKey: "sk-test"})
	if _, ok := svc.backend.(*openAIBackend); !ok {
		t.Fatalf("backend = %T, want *openAIBackend", svc.backend)
	}

	svc = NewEnhancer(&config.Config{GeminiAPIKeys: []string{"k1"}, GeminiModel: "gemini-2.5-flash"})
	if _, ok := svc.backend.(*geminiBackend); !ok {
		t.Fatalf("backend = %T, want *geminiBackend", svc.backend)
	}

	svc = NewEnhancer(&config.Config{EnhancerProvider: "vertex", VertexProject: "p1", VertexLocation: "us-central1", GeminiModel: "gemini-2.5-flash"})
	vertex, ok := svc.backend.(*vertexBackend)
	if !ok {
		t.Fatalf("backend = %T, want *vertexBackend", svc.backend)
	}
	if vertex.Name() != "VertexAI(gemini-2.5-flash)" {
		t.Fatalf("Name() = %q", vertex.Name())
	}
}
