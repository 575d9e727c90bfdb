package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"

	storage_go "github.com/supabase-community/storage-go"
	"github.com/supabase-community/supabase-go"
)

// objectUploader - storage_go.Client에서 쓰는 부분
type objectUploader interface {
	UploadFile(bucketId string, relativePath string, data io.Reader, fileOptions ...storage_go.FileOptions) (storage_go.FileUploadResponse, error)
	GetPublicUrl(bucketId string, filePath string, urlOptions ...storage_go.UrlOptions) storage_go.SignedUrlResponse
}

// SupabaseArchiver - Supabase Storage 버킷에 업로드
type SupabaseArchiver struct {
	storage objectUploader
	bucket  string
}

// NewSupabaseArchiver - supabase 클라이언트의 Storage 사용
func NewSupabaseArchiver(client *supabase.Client, bucket string) *SupabaseArchiver {
	return &SupabaseArchiver{storage: client.Storage, bucket: bucket}
}

func (a *SupabaseArchiver) Name() string {
	return "supabase"
}

// Upload - 업로드 후 public URL 반환
func (a *SupabaseArchiver) Upload(ctx context.Context, key, contentType string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	log.Printf("📤 Uploading to Supabase storage: %s/%s (%d bytes)", a.bucket, key, len(data))

	cacheControl := "3600"
	upsert := true
	_, err := a.storage.UploadFile(a.bucket, key, bytes.NewReader(data), storage_go.FileOptions{
		ContentType:  &contentType,
		CacheControl: &cacheControl,
		Upsert:       &upsert,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}

	publicURL := a.storage.GetPublicUrl(a.bucket, key).SignedURL
	log.Printf("✅ Uploaded successfully: %s", publicURL)
	return publicURL, nil
}
