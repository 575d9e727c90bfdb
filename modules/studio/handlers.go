package studio

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"emotion-video-server/modules/common/model"
	"emotion-video-server/modules/did"
	"emotion-video-server/modules/media"
	"emotion-video-server/modules/validation"
)

// ProviderInfo - 프로바이더 계정 조회 (did.Service가 구현)
type ProviderInfo interface {
	GetCredits(ctx context.Context) (*did.Credits, error)
	ValidateAPIKey(ctx context.Context) bool
}

// Handler - 위저드 HTTP API
type Handler struct {
	manager     *Manager
	hub         *Hub
	provider    ProviderInfo
	bannedWords []string
	baseCtx     context.Context
}

// Response - 공통 응답
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Error   string      `json:"error,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// NewHandler - baseCtx는 백그라운드 생성 작업의 부모 (서버 종료 시 취소)
func NewHandler(baseCtx context.Context, manager *Manager, hub *Hub, provider ProviderInfo, bannedWords []string) *Handler {
	return &Handler{
		manager:     manager,
		hub:         hub,
		provider:    provider,
		bannedWords: bannedWords,
		baseCtx:     baseCtx,
	}
}

// RegisterRoutes - 라우트 등록
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/studio/sessions", h.HandleCreateSession).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/studio/sessions/{id}", h.HandleGetSession).Methods("GET", "OPTIONS")
	r.HandleFunc("/api/studio/sessions/{id}", h.HandleDeleteSession).Methods("DELETE")
	r.HandleFunc("/api/studio/sessions/{id}/image", h.HandleImage).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/studio/sessions/{id}/emotion", h.HandleEmotion).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/studio/sessions/{id}/language", h.HandleLanguage).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/studio/sessions/{id}/voice", h.HandleVoice).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/studio/sessions/{id}/script", h.HandleScript).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/studio/sessions/{id}/enhance", h.HandleEnhance).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/studio/sessions/{id}/next", h.HandleNext).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/studio/sessions/{id}/back", h.HandleBack).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/studio/sessions/{id}/generate", h.HandleGenerate).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/studio/sessions/{id}/cancel", h.HandleCancel).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/studio/sessions/{id}/regenerate", h.HandleRegenerate).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/studio/sessions/{id}/reset", h.HandleReset).Methods("POST", "OPTIONS")

	r.HandleFunc("/api/emotions", h.HandleEmotions).Methods("GET", "OPTIONS")
	r.HandleFunc("/api/voices", h.HandleVoices).Methods("GET", "OPTIONS")
	r.HandleFunc("/api/script/validate", h.HandleValidateScript).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/provider/credits", h.HandleCredits).Methods("GET", "OPTIONS")
	r.HandleFunc("/api/provider/validate", h.HandleValidateKey).Methods("GET", "OPTIONS")

	r.HandleFunc("/ws", h.HandleWebSocket)

	log.Println("✅ Studio routes registered: /api/studio/sessions, /api/emotions, /api/voices, /ws")
}

func writeJSON(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

// writeError - 입력 오류 400, 생성 중 409, 나머지 500
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var validationErr *validation.ValidationError
	switch {
	case errors.As(err, &validationErr):
		status = http.StatusBadRequest
	case errors.Is(err, ErrBusy):
		status = http.StatusConflict
	}
	writeJSON(w, status, Response{Success: false, Error: err.Error()})
}

func preflight(w http.ResponseWriter, r *http.Request) bool {
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return true
	}
	return false
}

// session - URL의 {id}로 세션 조회 (없으면 404 응답)
func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	id := mux.Vars(r)["id"]
	session, ok := h.manager.Get(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, Response{Success: false, Error: "Session not found"})
		return nil, false
	}
	return session, true
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		log.Printf("❌ [Studio] Invalid request: %v", err)
		writeJSON(w, http.StatusBadRequest, Response{Success: false, Error: "Invalid request body"})
		return false
	}
	return true
}

// respondState - 오류면 오류, 아니면 현재 상태
func respondState(w http.ResponseWriter, session *Session, err error) {
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Data: session.State()})
}

// HandleCreateSession - POST /api/studio/sessions
func (h *Handler) HandleCreateSession(w http.ResponseWriter, r *http.Request) {
	if preflight(w, r) {
		return
	}
	session := h.manager.Create()
	writeJSON(w, http.StatusCreated, Response{Success: true, Data: session.State()})
}

// HandleGetSession - GET /api/studio/sessions/{id}
func (h *Handler) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	if preflight(w, r) {
		return
	}
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Data: session.State()})
}

// HandleDeleteSession - DELETE /api/studio/sessions/{id}
func (h *Handler) HandleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if !h.manager.Remove(mux.Vars(r)["id"]) {
		writeJSON(w, http.StatusNotFound, Response{Success: false, Error: "Session not found"})
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Message: "Session removed"})
}

// HandleImage - POST multipart "image"
func (h *Handler) HandleImage(w http.ResponseWriter, r *http.Request) {
	if preflight(w, r) {
		return
	}
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, media.MaxImageSize+1024*1024)
	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, &validation.ValidationError{Field: "image", Message: media.MsgInvalidImageType})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, &validation.ValidationError{Field: "image", Message: media.MsgImageTooLarge})
		return
	}

	_, err = session.SetImage(data, header.Header.Get("Content-Type"))
	respondState(w, session, err)
}

// HandleEmotion - {"emotion": "happy"}
func (h *Handler) HandleEmotion(w http.ResponseWriter, r *http.Request) {
	if preflight(w, r) {
		return
	}
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	var req struct {
		Emotion string `json:"emotion"`
	}
	if !decode(w, r, &req) {
		return
	}
	respondState(w, session, session.SelectEmotion(req.Emotion))
}

// HandleLanguage - {"language": "tamil"}
func (h *Handler) HandleLanguage(w http.ResponseWriter, r *http.Request) {
	if preflight(w, r) {
		return
	}
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	var req struct {
		Language string `json:"language"`
	}
	if !decode(w, r, &req) {
		return
	}
	respondState(w, session, session.SetLanguage(model.ParseLanguage(req.Language)))
}

// HandleVoice - {"voiceId": "en-US-JennyNeural"} 또는 "auto"
func (h *Handler) HandleVoice(w http.ResponseWriter, r *http.Request) {
	if preflight(w, r) {
		return
	}
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	var req struct {
		VoiceID string `json:"voiceId"`
	}
	if !decode(w, r, &req) {
		return
	}
	respondState(w, session, session.SelectVoice(req.VoiceID))
}

// HandleScript - {"script": "..."}
func (h *Handler) HandleScript(w http.ResponseWriter, r *http.Request) {
	if preflight(w, r) {
		return
	}
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	var req struct {
		Script string `json:"script"`
	}
	if !decode(w, r, &req) {
		return
	}
	respondState(w, session, session.SetScript(req.Script))
}

// HandleEnhance - 스크립트 향상 (동기)
func (h *Handler) HandleEnhance(w http.ResponseWriter, r *http.Request) {
	if preflight(w, r) {
		return
	}
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	_, err := session.Enhance(r.Context())
	respondState(w, session, err)
}

// HandleNext - 다음 단계
func (h *Handler) HandleNext(w http.ResponseWriter, r *http.Request) {
	if preflight(w, r) {
		return
	}
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	respondState(w, session, session.Next())
}

// HandleBack - 이전 단계
func (h *Handler) HandleBack(w http.ResponseWriter, r *http.Request) {
	if preflight(w, r) {
		return
	}
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	respondState(w, session, session.Back())
}

// HandleGenerate - 백그라운드로 생성 시작 후 202 (진행 상황은 /ws 또는 GET으로 확인)
func (h *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	if preflight(w, r) {
		return
	}
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	run, err := session.StartGeneration(h.baseCtx)
	if err != nil {
		writeError(w, err)
		return
	}
	state := session.State()

	go func() {
		if err := run.Run(); err != nil {
			log.Printf("⚠️ [Studio] Background generation ended with error: %v", err)
		}
	}()

	writeJSON(w, http.StatusAccepted, Response{
		Success: true,
		Message: "Video generation started",
		Data:    state,
	})
}

// HandleCancel - 진행 중인 생성 취소
func (h *Handler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	if preflight(w, r) {
		return
	}
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := session.Cancel(); err != nil {
		writeJSON(w, http.StatusConflict, Response{Success: false, Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Message: "Cancellation requested"})
}

// HandleRegenerate - 결과 지우고 스크립트 단계로
func (h *Handler) HandleRegenerate(w http.ResponseWriter, r *http.Request) {
	if preflight(w, r) {
		return
	}
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	respondState(w, session, session.Regenerate())
}

// HandleReset - 처음부터
func (h *Handler) HandleReset(w http.ResponseWriter, r *http.Request) {
	if preflight(w, r) {
		return
	}
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	respondState(w, session, session.Reset())
}

// HandleEmotions - GET /api/emotions
func (h *Handler) HandleEmotions(w http.ResponseWriter, r *http.Request) {
	if preflight(w, r) {
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Data: model.Emotions})
}

// HandleVoices - GET /api/voices?language=tamil&gender=female
func (h *Handler) HandleVoices(w http.ResponseWriter, r *http.Request) {
	if preflight(w, r) {
		return
	}
	query := r.URL.Query()

	var language model.Language
	if raw := query.Get("language"); raw != "" {
		language = model.ParseLanguage(raw)
	}
	var gender model.Gender
	if raw := query.Get("gender"); raw != "" {
		gender = model.ParseGender(raw)
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Data: model.VoicesFor(language, gender)})
}

// HandleValidateScript - {"script": "..."} -> {isValid, error}
func (h *Handler) HandleValidateScript(w http.ResponseWriter, r *http.Request) {
	if preflight(w, r) {
		return
	}
	var req struct {
		Script string `json:"script"`
	}
	if !decode(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Data: validation.ValidateScriptWith(req.Script, h.bannedWords)})
}

// HandleCredits - GET /api/provider/credits
func (h *Handler) HandleCredits(w http.ResponseWriter, r *http.Request) {
	if preflight(w, r) {
		return
	}
	credits, err := h.provider.GetCredits(r.Context())
	if err != nil {
		log.Printf("❌ [Studio] Failed to fetch credits: %v", err)
		writeJSON(w, http.StatusBadGateway, Response{Success: false, Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, Response{Success: true, Data: credits})
}

// HandleValidateKey - GET /api/provider/validate
func (h *Handler) HandleValidateKey(w http.ResponseWriter, r *http.Request) {
	if preflight(w, r) {
		return
	}
	valid := h.provider.ValidateAPIKey(r.Context())
	writeJSON(w, http.StatusOK, Response{Success: true, Data: map[string]bool{"valid": valid}})
}

// HandleWebSocket - /ws?session={id}
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	session, ok := h.manager.Get(sessionID)
	if !ok {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}
	h.hub.Serve(w, r, session.State())
}
