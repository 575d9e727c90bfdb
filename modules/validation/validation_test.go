package validation

import (
	"errors"
	"strings"
	"testing"
)

// TestValidateScriptBounds - 길이 경계 확인
func TestValidateScriptBounds(t *testing.T) {
	tests := []struct {
		name   string
		script string
		want   Result
	}{
		{"empty", "   ", Result{Error: MsgScriptEmpty}},
		{"too short", "123456789", Result{Error: MsgScriptTooShort}},
		{"min length", "1234567890", Result{Valid: true}},
		{"max length", strings.Repeat("a", 2000), Result{Valid: true}},
		{"too long", strings.Repeat("a", 2001), Result{Error: MsgScriptTooLong}},
		{"tamil runes", strings.Repeat("வ", 10), Result{Valid: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidateScript(tt.script); got != tt.want {
				t.Fatalf("ValidateScript() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

// TestValidateScriptAllLengthsInRange - 10~2000 사이의 모든 길이는 통과
func TestValidateScriptAllLengthsInRange(t *testing.T) {
	for n := MinScriptLength; n <= MaxScriptLength; n += 97 {
		if got := ValidateScript(strings.Repeat("b", n)); !got.Valid {
			t.Fatalf("length %d: ValidateScript() = %+v, want valid", n, got)
		}
	}
}

// TestValidateScriptBannedWords - 대소문자 무시 부분 문자열 매칭
func TestValidateScriptBannedWords(t *testing.T) {
	got := ValidateScriptWith("This contains a BadWord inside it", []string{"badword"})
	if got.Valid || got.Error != MsgScriptInappropriate {
		t.Fatalf("ValidateScriptWith() = %+v, want inappropriate", got)
	}

	got = ValidateScriptWith("A perfectly clean script", []string{"", "badword"})
	if !got.Valid {
		t.Fatalf("ValidateScriptWith() = %+v, want valid", got)
	}
}

// TestResultErr - 실패 결과는 ValidationError
func TestResultErr(t *testing.T) {
	if err := (Result{Valid: true}).Err(); err != nil {
		t.Fatalf("Err() = %v, want nil", err)
	}
	err := ValidateScript("short").Err()
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("Err() = %T, want *ValidationError", err)
	}
	if vErr.Message != MsgScriptTooShort {
		t.Fatalf("message = %q, want %q", vErr.Message, MsgScriptTooShort)
	}
}

// TestValidateAPIKey - Gemini 키 형식
func TestValidateAPIKey(t *testing.T) {
	if ValidateAPIKey("AIshort") {
		t.Fatal("short key accepted")
	}
	if ValidateAPIKey("XX" + strings.Repeat("k", 30)) {
		t.Fatal("wrong prefix accepted")
	}
	if !ValidateAPIKey("AI" + strings.Repeat("k", 30)) {
		t.Fatal("valid key rejected")
	}
}
