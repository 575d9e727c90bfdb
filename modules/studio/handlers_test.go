package studio

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"emotion-video-server/modules/common/model"
	"emotion-video-server/modules/did"
	"emotion-video-server/modules/generation"
	"emotion-video-server/modules/validation"
)

// fakeProvider - 크레딧/키 조회 고정값
type fakeProvider struct {
	credits *did.Credits
	err     error
	valid   bool
}

func (f *fakeProvider) GetCredits(ctx context.Context) (*did.Credits, error) {
	return f.credits, f.err
}

func (f *fakeProvider) ValidateAPIKey(ctx context.Context) bool {
	return f.valid
}

func newTestRouter(t *testing.T, provider ProviderInfo) (*mux.Router, *Manager) {
	t.Helper()
	hub := NewHub()
	manager := NewManager(&fakeEnhancer{enhanced: "Enhanced!"}, &fakeGenerator{run: succeed}, validation.DefaultBannedWords, hub)
	handler := NewHandler(context.Background(), manager, hub, provider, validation.DefaultBannedWords)
	r := mux.NewRouter()
	handler.RegisterRoutes(r)
	return r, manager
}

func doJSON(t *testing.T, r http.Handler, method, path string, body interface{}) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var resp Response
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	return rec, resp
}

// TestCreateAndGetSession - 생성 후 조회
func TestCreateAndGetSession(t *testing.T) {
	r, manager := newTestRouter(t, &fakeProvider{})

	rec, resp := doJSON(t, r, http.MethodPost, "/api/studio/sessions", nil)
	if rec.Code != http.StatusCreated || !resp.Success {
		t.Fatalf("create status = %d, body = %s", rec.Code, rec.Body.String())
	}
	data := resp.Data.(map[string]interface{})
	id := data["sessionId"].(string)
	if _, ok := manager.Get(id); !ok {
		t.Fatalf("session %q not registered", id)
	}

	rec, _ = doJSON(t, r, http.MethodGet, "/api/studio/sessions/"+id, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}
	rec, _ = doJSON(t, r, http.MethodGet, "/api/studio/sessions/missing", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get missing status = %d, want 404", rec.Code)
	}
}

// TestNextWithoutPhotoIs400 - 입력 오류는 400
func TestNextWithoutPhotoIs400(t *testing.T) {
	r, manager := newTestRouter(t, &fakeProvider{})
	session := manager.Create()

	rec, resp := doJSON(t, r, http.MethodPost, "/api/studio/sessions/"+session.ID()+"/next", nil)
	if rec.Code != http.StatusBadRequest || resp.Error != MsgNeedPhoto {
		t.Fatalf("next = %d %q, want 400 %q", rec.Code, resp.Error, MsgNeedPhoto)
	}
}

// TestImageUpload - multipart 업로드
func TestImageUpload(t *testing.T) {
	r, manager := newTestRouter(t, &fakeProvider{})
	session := manager.Create()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="image"; filename="me.png"`)
	header.Set("Content-Type", "image/png")
	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatalf("CreatePart() error = %v", err)
	}
	part.Write(portraitPNG(t))
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/studio/sessions/"+session.ID()+"/image", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("upload status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if !session.State().HasImage {
		t.Fatal("HasImage = false after upload")
	}
}

// TestEmotionAndScriptRoutes - 감정/스크립트 설정
func TestEmotionAndScriptRoutes(t *testing.T) {
	r, manager := newTestRouter(t, &fakeProvider{})
	session := manager.Create()
	base := "/api/studio/sessions/" + session.ID()

	rec, _ := doJSON(t, r, http.MethodPost, base+"/emotion", map[string]string{"emotion": "sad"})
	if rec.Code != http.StatusOK {
		t.Fatalf("emotion status = %d", rec.Code)
	}
	rec, resp := doJSON(t, r, http.MethodPost, base+"/emotion", map[string]string{"emotion": "bored"})
	if rec.Code != http.StatusBadRequest || resp.Error != MsgUnknownEmotion {
		t.Fatalf("unknown emotion = %d %q", rec.Code, resp.Error)
	}
	rec, _ = doJSON(t, r, http.MethodPost, base+"/script", map[string]string{"script": validScript})
	if rec.Code != http.StatusOK {
		t.Fatalf("script status = %d", rec.Code)
	}

	state := session.State()
	if state.Emotion == nil || state.Emotion.ID != "sad" || state.Script != validScript {
		t.Fatalf("state = %+v", state)
	}
}

// TestGenerateIncompleteIs400 - 입력 부족 시 생성 거부
func TestGenerateIncompleteIs400(t *testing.T) {
	r, manager := newTestRouter(t, &fakeProvider{})
	session := manager.Create()

	rec, resp := doJSON(t, r, http.MethodPost, "/api/studio/sessions/"+session.ID()+"/generate", nil)
	if rec.Code != http.StatusBadRequest || resp.Error != MsgIncomplete {
		t.Fatalf("generate = %d %q, want 400 %q", rec.Code, resp.Error, MsgIncomplete)
	}
}

// TestCancelWithoutRunIs409 - 진행 중 생성이 없으면 409
func TestCancelWithoutRunIs409(t *testing.T) {
	r, manager := newTestRouter(t, &fakeProvider{})
	session := manager.Create()

	rec, resp := doJSON(t, r, http.MethodPost, "/api/studio/sessions/"+session.ID()+"/cancel", nil)
	if rec.Code != http.StatusConflict || resp.Error != MsgNothingToCancel {
		t.Fatalf("cancel = %d %q", rec.Code, resp.Error)
	}
}

// TestValidateScriptRoute - 검증 결과 반환
func TestValidateScriptRoute(t *testing.T) {
	r, _ := newTestRouter(t, &fakeProvider{})

	_, resp := doJSON(t, r, http.MethodPost, "/api/script/validate", map[string]string{"script": "short"})
	data := resp.Data.(map[string]interface{})
	if data["isValid"] != false || data["error"] != validation.MsgScriptTooShort {
		t.Fatalf("validate = %+v", data)
	}
}

// TestVoicesFilter - 언어 필터
func TestVoicesFilter(t *testing.T) {
	r, _ := newTestRouter(t, &fakeProvider{})

	_, resp := doJSON(t, r, http.MethodGet, "/api/voices?language=tamil", nil)
	voices := resp.Data.([]interface{})
	if len(voices) == 0 {
		t.Fatal("no tamil voices")
	}
	for _, v := range voices {
		if v.(map[string]interface{})["language"] != "tamil" {
			t.Fatalf("voice %v is not tamil", v)
		}
	}
}

// TestProviderRoutes - 크레딧 조회 성공/실패, 키 검증
func TestProviderRoutes(t *testing.T) {
	r, _ := newTestRouter(t, &fakeProvider{credits: &did.Credits{Remaining: 7, Total: 20}, valid: true})

	rec, resp := doJSON(t, r, http.MethodGet, "/api/provider/credits", nil)
	if rec.Code != http.StatusOK || resp.Data.(map[string]interface{})["remaining"] != float64(7) {
		t.Fatalf("credits = %d %s", rec.Code, rec.Body.String())
	}
	_, resp = doJSON(t, r, http.MethodGet, "/api/provider/validate", nil)
	if resp.Data.(map[string]interface{})["valid"] != true {
		t.Fatalf("validate = %+v", resp.Data)
	}

	r, _ = newTestRouter(t, &fakeProvider{err: errors.New("D-ID API failed (401): unauthorized")})
	rec, _ = doJSON(t, r, http.MethodGet, "/api/provider/credits", nil)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("credits error status = %d, want 502", rec.Code)
	}
}

// TestGenerateTwiceIs409 - 연속 생성 요청은 202 다음 409
func TestGenerateTwiceIs409(t *testing.T) {
	release := make(chan struct{})
	finished := make(chan struct{})
	gen := &fakeGenerator{run: func(ctx context.Context, onProgress generation.ProgressFunc) (*model.GenerationResult, error) {
		defer close(finished)
		select {
		case <-release:
			return nil, errors.New("provider unavailable")
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}}

	hub := NewHub()
	manager := NewManager(&fakeEnhancer{}, gen, validation.DefaultBannedWords, hub)
	r := mux.NewRouter()
	NewHandler(context.Background(), manager, hub, &fakeProvider{}, validation.DefaultBannedWords).RegisterRoutes(r)

	session := manager.Create()
	if _, err := session.SetImage(portraitPNG(t), "image/png"); err != nil {
		t.Fatalf("SetImage() error = %v", err)
	}
	if err := session.SelectEmotion("calm"); err != nil {
		t.Fatalf("SelectEmotion() error = %v", err)
	}
	if err := session.SetScript(validScript); err != nil {
		t.Fatalf("SetScript() error = %v", err)
	}

	path := "/api/studio/sessions/" + session.ID() + "/generate"
	rec, resp := doJSON(t, r, http.MethodPost, path, nil)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("first generate = %d, want 202", rec.Code)
	}
	if data, ok := resp.Data.(map[string]interface{}); !ok || data["processing"] != true {
		t.Fatalf("first generate data = %+v, want processing true", resp.Data)
	}

	rec, resp = doJSON(t, r, http.MethodPost, path, nil)
	if rec.Code != http.StatusConflict || resp.Success {
		t.Fatalf("second generate = %d %+v, want 409", rec.Code, resp)
	}

	close(release)
	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("background generation did not finish")
	}
}
