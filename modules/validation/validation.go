package validation

import (
	"strings"
	"unicode/utf8"
)

const (
	MinScriptLength = 10
	MaxScriptLength = 2000
)

// 사용자에게 그대로 보여주는 메시지
const (
	MsgScriptEmpty         = "Please enter a script for your video"
	MsgScriptTooShort      = "Script must be at least 10 characters long"
	MsgScriptTooLong       = "Script must be less than 2000 characters"
	MsgScriptInappropriate = "Please use appropriate language in your script"
)

// DefaultBannedWords - BANNED_WORDS 미설정 시 사용
var DefaultBannedWords = []string{"explicit_word1", "explicit_word2"}

// ValidationError - 이미지/스크립트 입력 오류 (재시도 없음, 사용자에게 노출)
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Result - 스크립트 검증 결과
type Result struct {
	Valid bool   `json:"isValid"`
	Error string `json:"error,omitempty"`
}

// Err - 실패 결과를 ValidationError로 변환
func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	return &ValidationError{Field: "script", Message: r.Error}
}

// ValidateScript - 기본 금칙어로 스크립트 검증
func ValidateScript(script string) Result {
	return ValidateScriptWith(script, DefaultBannedWords)
}

// ValidateScriptWith - 길이(10~2000자)와 금칙어 검사
func ValidateScriptWith(script string, bannedWords []string) Result {
	if strings.TrimSpace(script) == "" {
		return Result{Error: MsgScriptEmpty}
	}

	length := utf8.RuneCountInString(script)
	if length < MinScriptLength {
		return Result{Error: MsgScriptTooShort}
	}
	if length > MaxScriptLength {
		return Result{Error: MsgScriptTooLong}
	}

	lower := strings.ToLower(script)
	for _, word := range bannedWords {
		if word == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(word)) {
			return Result{Error: MsgScriptInappropriate}
		}
	}

	return Result{Valid: true}
}

// ValidateAPIKey - Gemini API 키 형식 검사
func ValidateAPIKey(apiKey string) bool {
	return len(apiKey) > 20 && strings.HasPrefix(apiKey, "AI")
}
