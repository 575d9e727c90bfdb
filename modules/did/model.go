package did

import (
	"encoding/json"
	"fmt"
	"strings"
)

// TalkRequest - POST /talks 요청 바디
type TalkRequest struct {
	Script    TalkScript `json:"script"`
	Config    TalkConfig `json:"config"`
	SourceURL string     `json:"source_url"`
}

// TalkScript - 읽을 텍스트와 음성 설정
type TalkScript struct {
	Type      string        `json:"type"` // text
	Subtitles bool          `json:"subtitles"`
	Provider  VoiceProvider `json:"provider"`
	SSML      bool          `json:"ssml"`
	Input     string        `json:"input"`
}

// VoiceProvider - TTS 프로바이더 (microsoft)
type VoiceProvider struct {
	Type        string      `json:"type"`
	VoiceID     string      `json:"voice_id"`
	VoiceConfig VoiceConfig `json:"voice_config"`
}

// VoiceConfig - 프로바이더가 받는 범주형 값
type VoiceConfig struct {
	Style string `json:"style"`
	Rate  string `json:"rate"`  // slow, medium, fast
	Pitch string `json:"pitch"` // low, medium, high
}

// TalkConfig - 출력 설정
type TalkConfig struct {
	Fluent       bool    `json:"fluent"`
	PadAudio     float64 `json:"pad_audio"`
	Stitch       bool    `json:"stitch"`
	ResultFormat string  `json:"result_format"`
}

// CreateTalkResponse - POST /talks 응답
type CreateTalkResponse struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

// UploadImageResponse - POST /images 응답 (url 또는 id)
type UploadImageResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// TalkStatusResponse - GET /talks/{id} 응답
type TalkStatusResponse struct {
	ID        string          `json:"id"`
	Status    string          `json:"status"`
	ResultURL string          `json:"result_url"`
	AudioURL  string          `json:"audio_url"`
	Error     json.RawMessage `json:"error,omitempty"`
}

// Credits - GET /credits 응답
type Credits struct {
	Remaining int `json:"remaining"`
	Total     int `json:"total"`
}

// TalkStatus - D-ID 작업 상태
type TalkStatus string

const (
	TalkCreated  TalkStatus = "created"
	TalkStarted  TalkStatus = "started"
	TalkDone     TalkStatus = "done"
	TalkError    TalkStatus = "error"
	TalkRejected TalkStatus = "rejected"
)

// IsTerminal - 폴링을 멈춰야 하는 상태
func (s TalkStatus) IsTerminal() bool {
	return s == TalkDone || s == TalkError || s == TalkRejected
}

// IsFailure - 실패로 끝난 상태
func (s TalkStatus) IsFailure() bool {
	return s == TalkError || s == TalkRejected
}

// JobStatus - 폴링 결과
type JobStatus struct {
	Status      TalkStatus `json:"status"`
	ResultURL   string     `json:"resultUrl,omitempty"`
	AudioURL    string     `json:"audioUrl,omitempty"`
	ErrorDetail string     `json:"errorDetail,omitempty"`
}

// ImageKind - 이미지 전달 방식
type ImageKind int

const (
	ImageUploaded ImageKind = iota // /images 업로드 성공
	ImageInlined                   // 업로드 실패 → data URL로 직접 첨부
)

// ImageSource - 업로드 참조 또는 인라인 payload
type ImageSource struct {
	Kind ImageKind
	Ref  string
}

// Uploaded - 업로드된 이미지 참조
func Uploaded(ref string) ImageSource {
	return ImageSource{Kind: ImageUploaded, Ref: ref}
}

// Inlined - data URL payload
func Inlined(dataURL string) ImageSource {
	return ImageSource{Kind: ImageInlined, Ref: dataURL}
}

// SourceURL - talks 요청의 source_url 값
func (s ImageSource) SourceURL() string {
	return s.Ref
}

func (s ImageSource) String() string {
	if s.Kind == ImageInlined {
		return fmt.Sprintf("inlined(%d chars)", len(s.Ref))
	}
	return "uploaded(" + s.Ref + ")"
}

// ProviderError - HTTP 실패 또는 작업 실패
type ProviderError struct {
	StatusCode int
	Body       string
	Message    string
}

func (e *ProviderError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("D-ID API failed (%d): %s", e.StatusCode, e.Body)
}

// parseErrorDetail - error 필드는 문자열이거나 {description} 객체
func parseErrorDetail(raw json.RawMessage) string {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return ""
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text
	}

	var detail struct {
		Kind        string `json:"kind"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal(raw, &detail); err == nil {
		if detail.Description != "" {
			return detail.Description
		}
		if detail.Kind != "" {
			return detail.Kind
		}
	}

	return trimmed
}
