package wizard

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"time"

	"emotion-video-server/modules/common/model"
	"emotion-video-server/modules/studio"
)

// Client - 위저드 HTTP API 클라이언트
type Client struct {
	baseURL string
	client  *http.Client
}

// envelope - studio.Response 디코딩용
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// NewClient - Client 생성
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

func (c *Client) call(method, path, contentType string, body io.Reader, out interface{}) error {
	req, err := http.NewRequest(method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(raw))
	}
	if resp.StatusCode >= 300 || !env.Success {
		if env.Error != "" {
			return fmt.Errorf("%s", env.Error)
		}
		return fmt.Errorf("server returned %d", resp.StatusCode)
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) state(method, path string, body interface{}) (*studio.State, error) {
	var reader io.Reader
	contentType := ""
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(payload)
		contentType = "application/json"
	}

	var state studio.State
	if err := c.call(method, path, contentType, reader, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func sessionPath(id, action string) string {
	if action == "" {
		return "/api/studio/sessions/" + id
	}
	return "/api/studio/sessions/" + id + "/" + action
}

// CreateSession - 새 세션
func (c *Client) CreateSession() (*studio.State, error) {
	return c.state(http.MethodPost, "/api/studio/sessions", nil)
}

// GetSession - 현재 상태
func (c *Client) GetSession(id string) (*studio.State, error) {
	return c.state(http.MethodGet, sessionPath(id, ""), nil)
}

// UploadImage - 로컬 파일 업로드
func (c *Client) UploadImage(id, path string) (*studio.State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, filepath.Base(path)))
	header.Set("Content-Type", http.DetectContentType(data))
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(data); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	var state studio.State
	if err := c.call(http.MethodPost, sessionPath(id, "image"), writer.FormDataContentType(), &body, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// SelectEmotion - 감정 선택
func (c *Client) SelectEmotion(id, emotion string) (*studio.State, error) {
	return c.state(http.MethodPost, sessionPath(id, "emotion"), map[string]string{"emotion": emotion})
}

// SetLanguage - 음성 언어
func (c *Client) SetLanguage(id string, language model.Language) (*studio.State, error) {
	return c.state(http.MethodPost, sessionPath(id, "language"), map[string]string{"language": string(language)})
}

// SelectVoice - 음성 직접 선택
func (c *Client) SelectVoice(id, voiceID string) (*studio.State, error) {
	return c.state(http.MethodPost, sessionPath(id, "voice"), map[string]string{"voiceId": voiceID})
}

// SetScript - 스크립트 저장
func (c *Client) SetScript(id, script string) (*studio.State, error) {
	return c.state(http.MethodPost, sessionPath(id, "script"), map[string]string{"script": script})
}

// Action - 본문 없는 세션 동작 (next, back, enhance, generate, regenerate, reset)
func (c *Client) Action(id, action string) (*studio.State, error) {
	return c.state(http.MethodPost, sessionPath(id, action), nil)
}

// Cancel - 진행 중인 생성 취소
func (c *Client) Cancel(id string) error {
	return c.call(http.MethodPost, sessionPath(id, "cancel"), "", nil, nil)
}

// Emotions - 감정 목록
func (c *Client) Emotions() ([]model.Emotion, error) {
	var emotions []model.Emotion
	if err := c.call(http.MethodGet, "/api/emotions", "", nil, &emotions); err != nil {
		return nil, err
	}
	return emotions, nil
}
