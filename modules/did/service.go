package did

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"emotion-video-server/modules/common/model"
	"emotion-video-server/modules/common/utils"
)

// Service - D-ID API 서비스
type Service struct {
	config     *Config
	httpClient *http.Client
}

// NewService - Service 생성
func NewService(cfg *Config) *Service {
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &Service{
		config: cfg,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// HasCredential - 호출 가능한 키가 설정되어 있는지
func (s *Service) HasCredential() bool {
	return s.config.HasCredential()
}

func (s *Service) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	url := strings.TrimRight(s.config.APIURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Basic "+s.config.APIKey)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// do - 요청 실행 후 2xx가 아니면 ProviderError
func (s *Service) do(req *http.Request) ([]byte, error) {
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &ProviderError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

// UploadImage - POST /images (multipart "image")
func (s *Service) UploadImage(ctx context.Context, data []byte, contentType string) (string, error) {
	if contentType == "" {
		contentType = "image/jpeg"
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename="%s"`, uploadFilename(contentType)))
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return "", fmt.Errorf("failed to create form part: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := s.newRequest(ctx, http.MethodPost, "/images", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	log.Printf("📤 [DID] Uploading image (%s)...", utils.FormatFileSize(int64(len(data))))

	body, err := s.do(req)
	if err != nil {
		return "", err
	}

	var result UploadImageResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}

	ref := result.URL
	if ref == "" {
		ref = result.ID
	}
	if ref == "" {
		return "", fmt.Errorf("upload response has neither url nor id")
	}

	log.Printf("✅ [DID] Image uploaded: %s", ref)
	return ref, nil
}

func uploadFilename(contentType string) string {
	switch contentType {
	case "image/png":
		return "photo.png"
	case "image/webp":
		return "photo.webp"
	default:
		return "photo.jpg"
	}
}

// PrepareImage - 업로드 시도, 실패하면 data URL로 인라인
func (s *Service) PrepareImage(ctx context.Context, data []byte, contentType string) ImageSource {
	ref, err := s.UploadImage(ctx, data, contentType)
	if err == nil {
		return Uploaded(ref)
	}

	log.Printf("⚠️ [DID] Image upload failed, falling back to inline data URL: %v", err)
	return Inlined(utils.ToDataURL(data, contentType))
}

// BuildTalkRequest - talks 요청 바디 구성
func BuildTalkRequest(source ImageSource, req *model.GenerationRequest) TalkRequest {
	script := req.JobScript()

	return TalkRequest{
		Script: TalkScript{
			Type:      "text",
			Subtitles: false,
			Provider:  BuildVoiceProvider(req.Emotion.ID, script, req.VoiceSettings, req.Language),
			SSML:      false,
			Input:     script,
		},
		Config: TalkConfig{
			Fluent:       true,
			PadAudio:     0.0,
			Stitch:       true,
			ResultFormat: "mp4",
		},
		SourceURL: source.SourceURL(),
	}
}

// SubmitJob - POST /talks, talk id 반환
func (s *Service) SubmitJob(ctx context.Context, source ImageSource, req *model.GenerationRequest) (string, error) {
	talk := BuildTalkRequest(source, req)

	reqBody, err := json.Marshal(talk)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := s.newRequest(ctx, http.MethodPost, "/talks", bytes.NewReader(reqBody))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	log.Printf("🚀 [DID] Creating talk - emotion: %s, voice: %s, source: %s",
		req.Emotion.ID, talk.Script.Provider.VoiceID, source)

	body, err := s.do(httpReq)
	if err != nil {
		return "", err
	}

	var result CreateTalkResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if result.ID == "" {
		return "", &ProviderError{StatusCode: http.StatusOK, Body: string(body), Message: "D-ID response missing talk id"}
	}

	log.Printf("✅ [DID] Talk created: %s", result.ID)
	return result.ID, nil
}

// PollJob - GET /talks/{id}
func (s *Service) PollJob(ctx context.Context, talkID string) (*JobStatus, error) {
	req, err := s.newRequest(ctx, http.MethodGet, "/talks/"+talkID, nil)
	if err != nil {
		return nil, err
	}

	body, err := s.do(req)
	if err != nil {
		return nil, err
	}

	var result TalkStatusResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	status := &JobStatus{
		Status:      TalkStatus(result.Status),
		ResultURL:   result.ResultURL,
		AudioURL:    result.AudioURL,
		ErrorDetail: parseErrorDetail(result.Error),
	}

	log.Printf("📊 [DID] Talk %s status: %s", talkID, status.Status)
	return status, nil
}

// ValidateAPIKey - GET /talks 가 401이 아니면 유효
func (s *Service) ValidateAPIKey(ctx context.Context) bool {
	if !s.HasCredential() {
		return false
	}

	req, err := s.newRequest(ctx, http.MethodGet, "/talks", nil)
	if err != nil {
		return false
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		log.Printf("⚠️ [DID] API key check failed: %v", err)
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode != http.StatusUnauthorized
}

// GetCredits - GET /credits
func (s *Service) GetCredits(ctx context.Context) (*Credits, error) {
	req, err := s.newRequest(ctx, http.MethodGet, "/credits", nil)
	if err != nil {
		return nil, err
	}

	body, err := s.do(req)
	if err != nil {
		return nil, err
	}

	var credits Credits
	if err := json.Unmarshal(body, &credits); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	log.Printf("💰 [DID] Credits: %d/%d", credits.Remaining, credits.Total)
	return &credits, nil
}
