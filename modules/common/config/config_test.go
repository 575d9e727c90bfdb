package config

import (
	"testing"
	"time"
)

// TestLoadConfigDefaults - 환경변수가 없을 때 기본값 확인
func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DID_API_KEY", "")
	t.Setenv("STORAGE_BACKEND", "")
	t.Setenv("ENHANCER_PROVIDER", "")
	for _, key := range []string{"DID_API_URL", "DID_POLL_INTERVAL_SECONDS", "DID_MAX_POLL_ATTEMPTS", "PORT"} {
		t.Setenv(key, "")
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.DIDAPIURL != "https://api.d-id.com" {
		t.Fatalf("DIDAPIURL = %q, want https://api.d-id.com", cfg.DIDAPIURL)
	}
	if cfg.DIDPollInterval != 5*time.Second {
		t.Fatalf("DIDPollInterval = %v, want 5s", cfg.DIDPollInterval)
	}
	if cfg.DIDMaxPollAttempts != 60 {
		t.Fatalf("DIDMaxPollAttempts = %d, want 60", cfg.DIDMaxPollAttempts)
	}
	if cfg.HasDIDKey() {
		t.Fatal("HasDIDKey() = true with empty key")
	}
	if cfg.Port != "8080" {
		t.Fatalf("Port = %q, want 8080", cfg.Port)
	}
}

// TestHasDIDKeyRejectsPlaceholder - placeholder 키는 미설정으로 취급
func TestHasDIDKeyRejectsPlaceholder(t *testing.T) {
	cfg := &Config{DIDAPIKey: PlaceholderDIDKey}
	if cfg.HasDIDKey() {
		t.Fatal("HasDIDKey() = true for placeholder key")
	}
	cfg.DIDAPIKey = "real-key"
	if !cfg.HasDIDKey() {
		t.Fatal("HasDIDKey() = false for real key")
	}
}

// TestLoadConfigRejectsS3WithoutBucket - s3 백엔드는 버킷 필수
func TestLoadConfigRejectsS3WithoutBucket(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "s3")
	t.Setenv("S3_BUCKET", "")
	t.Setenv("ENHANCER_PROVIDER", "")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("LoadConfig() error = nil, want S3_BUCKET error")
	}
}

// TestSplitList - 콤마 목록 파싱
func TestSplitList(t *testing.T) {
	got := splitList(" key1, ,key2,")
	if len(got) != 2 || got[0] != "key1" || got[1] != "key2" {
		t.Fatalf("splitList() = %v, want [key1 key2]", got)
	}
	if splitList("") != nil {
		t.Fatal("splitList(\"\") should be nil")
	}
}

// TestLoadConfigVertexRequiresProject - vertex 백엔드는 프로젝트 필수
func TestLoadConfigVertexRequiresProject(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "")
	t.Setenv("ENHANCER_PROVIDER", "vertex")
	t.Setenv("VERTEXAI_PROJECT", "")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("LoadConfig() error = nil, want VERTEXAI_PROJECT error")
	}

	t.Setenv("VERTEXAI_PROJECT", "my-project")
	t.Setenv("VERTEXAI_LOCATION", "")
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.VertexLocation != "us-central1" {
		t.Fatalf("VertexLocation = %q, want us-central1", cfg.VertexLocation)
	}
}

// TestGetConfigAfterLoad - LoadConfig 결과가 전역으로 남음
func TestGetConfigAfterLoad(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "")
	t.Setenv("ENHANCER_PROVIDER", "")
	t.Setenv("PORT", "9090")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if GetConfig() != cfg || GetConfig().Port != "9090" {
		t.Fatalf("GetConfig() = %+v, want loaded config", GetConfig())
	}
}
