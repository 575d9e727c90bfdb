package worker

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"emotion-video-server/modules/common/fallback"
	"emotion-video-server/modules/common/model"
	"emotion-video-server/modules/common/utils"
	"emotion-video-server/modules/media"
	"emotion-video-server/modules/validation"
)

// TalkInput - job_input_data 구조 (enqueue 요청 본문과 동일)
type TalkInput struct {
	Image          string               `json:"image,omitempty"`    // data URL 또는 base64
	ImageURL       string               `json:"imageUrl,omitempty"` // Image가 없을 때 다운로드
	Emotion        string               `json:"emotion"`
	Script         string               `json:"script"`
	EnhancedScript string               `json:"enhancedScript,omitempty"`
	Language       string               `json:"language,omitempty"`
	VoiceID        string               `json:"voiceId,omitempty"`
	VoiceSettings  *model.VoiceSettings `json:"voiceSettings,omitempty"`
	Enhance        bool                 `json:"enhance,omitempty"`
}

// ToMap - Supabase jsonb 저장용
func (in TalkInput) ToMap() map[string]interface{} {
	out := map[string]interface{}{
		"emotion": in.Emotion,
		"script":  in.Script,
	}
	if in.Image != "" {
		out["image"] = in.Image
	}
	if in.ImageURL != "" {
		out["imageUrl"] = in.ImageURL
	}
	if in.EnhancedScript != "" {
		out["enhancedScript"] = in.EnhancedScript
	}
	if in.Language != "" {
		out["language"] = in.Language
	}
	if in.VoiceID != "" {
		out["voiceId"] = in.VoiceID
	}
	if in.VoiceSettings != nil {
		settings := map[string]interface{}{
			"pitch":  in.VoiceSettings.Pitch,
			"speed":  in.VoiceSettings.Speed,
			"gender": string(in.VoiceSettings.Gender),
		}
		if in.VoiceSettings.Emotion != "" {
			settings["emotion"] = in.VoiceSettings.Emotion
		}
		if in.VoiceSettings.VoiceID != "" {
			settings["voiceId"] = in.VoiceSettings.VoiceID
		}
		if in.VoiceSettings.Language != nil {
			settings["language"] = string(*in.VoiceSettings.Language)
		}
		out["voiceSettings"] = settings
	}
	if in.Enhance {
		out["enhance"] = true
	}
	return out
}

// ParseInput - jsonb map을 TalkInput으로 (타입이 틀린 값은 기본값)
func ParseInput(data map[string]interface{}) TalkInput {
	in := TalkInput{
		Image:          fallback.SafeString(data["image"], ""),
		ImageURL:       fallback.SafeString(data["imageUrl"], ""),
		Emotion:        fallback.SafeString(data["emotion"], ""),
		Script:         fallback.SafeString(data["script"], ""),
		EnhancedScript: fallback.SafeString(data["enhancedScript"], ""),
		Language:       fallback.SafeString(data["language"], ""),
		VoiceID:        fallback.SafeString(data["voiceId"], ""),
	}
	if enhance, ok := data["enhance"].(bool); ok {
		in.Enhance = enhance
	}

	if settings := fallback.SafeMap(data["voiceSettings"]); settings != nil {
		parsed := model.VoiceSettings{
			Pitch:   fallback.SafeFloat(settings["pitch"], 1.0),
			Speed:   fallback.SafeFloat(settings["speed"], 1.0),
			Emotion: fallback.SafeString(settings["emotion"], ""),
			Gender:  model.ParseGender(fallback.SafeString(settings["gender"], "")),
			VoiceID: strings.TrimSpace(fallback.SafeString(settings["voiceId"], "")),
		}.Clamp()
		if raw := fallback.SafeString(settings["language"], ""); raw != "" {
			language := model.ParseLanguage(raw)
			parsed.Language = &language
		}
		in.VoiceSettings = &parsed
	}
	return in
}

// Validate - 필수 값 검사 (이미지 디코딩 전 단계)
func (in TalkInput) Validate(bannedWords []string) error {
	if in.Image == "" && in.ImageURL == "" {
		return &validation.ValidationError{Field: "image", Message: "image or imageUrl is required"}
	}
	if _, ok := model.FindEmotion(in.Emotion); !ok {
		return &validation.ValidationError{Field: "emotion", Message: fmt.Sprintf("unknown emotion: %q", in.Emotion)}
	}
	for _, voiceID := range []string{in.VoiceID, in.settingsVoiceID()} {
		if voiceID == "" {
			continue
		}
		if _, ok := model.FindVoice(voiceID); !ok {
			return &validation.ValidationError{Field: "voice", Message: fmt.Sprintf("unknown voice: %q", voiceID)}
		}
	}
	return validation.ValidateScriptWith(in.Script, bannedWords).Err()
}

func (in TalkInput) settingsVoiceID() string {
	if in.VoiceSettings == nil {
		return ""
	}
	return in.VoiceSettings.VoiceID
}

// language - 최상위 language 우선, 없으면 voiceSettings.language
func (in TalkInput) language() model.Language {
	if in.Language == "" && in.VoiceSettings != nil && in.VoiceSettings.Language != nil {
		return *in.VoiceSettings.Language
	}
	return model.ParseLanguage(in.Language)
}

// loadImage - data URL 디코딩 또는 URL 다운로드
func loadImage(ctx context.Context, httpClient *http.Client, in TalkInput) ([]byte, string, error) {
	if in.Image != "" {
		data, mimeType, err := utils.ParseDataURL(in.Image)
		if err != nil {
			return nil, "", &validation.ValidationError{Field: "image", Message: err.Error()}
		}
		return data, mimeType, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, in.ImageURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create image request: %w", err)
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("image download failed with status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, media.MaxImageSize+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read image: %w", err)
	}
	return data, resp.Header.Get("Content-Type"), nil
}

// BuildRequest - 입력 검증, 이미지 준비 후 GenerationRequest 생성 (음성 설정은 호출자가 채움)
func BuildRequest(ctx context.Context, httpClient *http.Client, in TalkInput, bannedWords []string) (*model.GenerationRequest, error) {
	if err := in.Validate(bannedWords); err != nil {
		return nil, err
	}

	data, contentType, err := loadImage(ctx, httpClient, in)
	if err != nil {
		return nil, err
	}

	prepared, err := media.Prepare(data, contentType)
	if err != nil {
		return nil, err
	}

	emotion, _ := model.FindEmotion(in.Emotion)
	return &model.GenerationRequest{
		Image:          prepared.Data,
		ImageType:      prepared.ContentType,
		Emotion:        emotion,
		Script:         in.Script,
		EnhancedScript: strings.TrimSpace(in.EnhancedScript),
		Language:       in.language(),
	}, nil
}
