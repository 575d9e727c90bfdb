package storage

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/supabase-community/supabase-go"

	"emotion-video-server/modules/common/config"
)

// Archiver - 결과물을 보관 스토리지에 올리고 접근 URL 반환
type Archiver interface {
	Upload(ctx context.Context, key, contentType string, data []byte) (string, error)
	Name() string
}

// NewArchiver - STORAGE_BACKEND에 따라 선택 (none이면 nil)
func NewArchiver(ctx context.Context, cfg *config.Config, supabaseClient *supabase.Client) (Archiver, error) {
	switch cfg.StorageBackend {
	case "supabase":
		if supabaseClient == nil {
			return nil, fmt.Errorf("supabase client is required for STORAGE_BACKEND=supabase")
		}
		log.Printf("✅ Archive storage: Supabase bucket %s", cfg.SupabaseStorageBucket)
		return NewSupabaseArchiver(supabaseClient, cfg.SupabaseStorageBucket), nil
	case "s3":
		archiver, err := NewS3Archiver(ctx, cfg.S3Region, cfg.S3Bucket, cfg.S3Prefix, cfg.S3PresignTTL)
		if err != nil {
			return nil, err
		}
		log.Printf("✅ Archive storage: S3 bucket %s", cfg.S3Bucket)
		return archiver, nil
	default:
		log.Println("ℹ️  Archive storage disabled, provider URLs are returned as-is")
		return nil, nil
	}
}

// maxVideoSize - 다운로드 허용 최대 크기 (200MB)
const maxVideoSize = 200 << 20

// DownloadVideo - 프로바이더 결과 URL에서 영상 다운로드
func DownloadVideo(ctx context.Context, httpClient *http.Client, videoURL string) ([]byte, error) {
	log.Printf("📥 Downloading video from: %s", videoURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, videoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create download request: %w", err)
	}

	if httpClient == nil {
		httpClient = &http.Client{Timeout: 2 * time.Minute}
	}

	httpResp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download video: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(httpResp.Body, 1024))
		return nil, fmt.Errorf("failed to download video: status %d, body: %s", httpResp.StatusCode, string(body))
	}

	data, err := io.ReadAll(io.LimitReader(httpResp.Body, maxVideoSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read video data: %w", err)
	}
	if len(data) > maxVideoSize {
		return nil, fmt.Errorf("video exceeds %d bytes", maxVideoSize)
	}

	log.Printf("✅ Video downloaded successfully: %d bytes", len(data))
	return data, nil
}
