package gemini

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"google.golang.org/genai"
)

const maxRetriesPerKey = 3

// retryDelay - 429 후 같은 키로 다시 시도하기 전 대기
var retryDelay = 2 * time.Second

// callFunc - API 키 하나로 한 번 호출
type callFunc func(ctx context.Context, apiKey string) (string, error)

// GenerateText - 429 에러 시 여러 API 키로 재시도하며 텍스트 응답 반환
// jsonMode가 true면 application/json 응답을 요청
func GenerateText(ctx context.Context, apiKeys []string, model, prompt string, temperature float32, jsonMode bool) (string, error) {
	return withKeyRotation(ctx, apiKeys, func(ctx context.Context, apiKey string) (string, error) {
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  apiKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return "", fmt.Errorf("failed to create client: %w", err)
		}

		return Generate(ctx, client, model, prompt, temperature, jsonMode)
	})
}

// Generate - 이미 만든 클라이언트로 한 번 호출 (Vertex AI 백엔드와 공유)
func Generate(ctx context.Context, client *genai.Client, model, prompt string, temperature float32, jsonMode bool) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(temperature),
	}
	if jsonMode {
		config.ResponseMIMEType = "application/json"
	}

	result, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt), config)
	if err != nil {
		return "", err
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		return "", fmt.Errorf("empty response from %s", model)
	}
	return text, nil
}

// withKeyRotation - 키마다 최대 3번, 429가 아닌 에러는 즉시 반환
func withKeyRotation(ctx context.Context, apiKeys []string, call callFunc) (string, error) {
	if len(apiKeys) == 0 {
		return "", fmt.Errorf("no API keys provided")
	}

	var lastErr error

	for keyIndex, apiKey := range apiKeys {
		log.Printf("🔑 [Gemini Retry] Trying API key #%d/%d", keyIndex+1, len(apiKeys))

		for attempt := 1; attempt <= maxRetriesPerKey; attempt++ {
			result, err := call(ctx, apiKey)
			if err == nil {
				log.Printf("✅ [Gemini Retry] Success with API key #%d (attempt %d/%d)", keyIndex+1, attempt, maxRetriesPerKey)
				return result, nil
			}
			lastErr = err

			if !is429Error(err) {
				log.Printf("❌ [Gemini Retry] Key #%d failed with non-429 error: %v", keyIndex+1, err)
				return "", err
			}

			log.Printf("⚠️  [Gemini Retry] Key #%d hit rate limit (429) on attempt %d/%d", keyIndex+1, attempt, maxRetriesPerKey)

			if attempt < maxRetriesPerKey {
				select {
				case <-ctx.Done():
					return "", ctx.Err()
				case <-time.After(retryDelay):
				}
			}
		}

		log.Printf("⚠️  [Gemini Retry] Key #%d exhausted all %d attempts, trying next key...", keyIndex+1, maxRetriesPerKey)
	}

	return "", fmt.Errorf("all %d API keys exhausted (%d attempts each), last error: %w", len(apiKeys), maxRetriesPerKey, lastErr)
}

// is429Error - 429 Rate Limit 에러인지 확인
func is429Error(err error) bool {
	if err == nil {
		return false
	}

	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "quota")
}
