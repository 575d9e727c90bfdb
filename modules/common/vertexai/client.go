package vertexai

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"cloud.google.com/go/auth/credentials"
	"google.golang.org/genai"
)

const cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

// DetectOptions - 자격 증명 탐색 순서: VERTEXAI_CREDENTIALS_JSON → VERTEXAI_CREDENTIALS_PATH → ADC
func DetectOptions() (*credentials.DetectOptions, error) {
	opts := &credentials.DetectOptions{Scopes: []string{cloudPlatformScope}}

	// 1. 환경 변수 VERTEXAI_CREDENTIALS_JSON 확인 (배포용)
	if credsJSON := os.Getenv("VERTEXAI_CREDENTIALS_JSON"); credsJSON != "" {
		log.Println("✅ [VertexAI] Using VERTEXAI_CREDENTIALS_JSON from environment")
		opts.CredentialsJSON = []byte(credsJSON)
		return opts, nil
	}

	// 2. 환경 변수 VERTEXAI_CREDENTIALS_PATH 확인 (로컬 테스트용)
	if credsPath := os.Getenv("VERTEXAI_CREDENTIALS_PATH"); credsPath != "" {
		log.Printf("✅ [VertexAI] Using credentials from file: %s\n", credsPath)
		credsData, err := os.ReadFile(credsPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read credentials file: %w", err)
		}
		// JSON 유효성 검사
		var creds map[string]interface{}
		if err := json.Unmarshal(credsData, &creds); err != nil {
			return nil, fmt.Errorf("invalid JSON credentials: %w", err)
		}
		opts.CredentialsJSON = credsData
		return opts, nil
	}

	// 3. Application Default Credentials (ADC) 사용
	log.Println("⚠️  [VertexAI] No explicit credentials found, using Application Default Credentials")
	return opts, nil
}

// NewClient - Vertex AI 백엔드 genai 클라이언트 생성
func NewClient(ctx context.Context, project, location string) (*genai.Client, error) {
	opts, err := DetectOptions()
	if err != nil {
		return nil, err
	}

	creds, err := credentials.DetectDefault(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to detect Vertex AI credentials: %w", err)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Backend:     genai.BackendVertexAI,
		Project:     project,
		Location:    location,
		Credentials: creds,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Vertex AI client: %w", err)
	}

	log.Printf("✅ [VertexAI] Client initialized for project=%s, location=%s\n", project, location)
	return client, nil
}
