package storage

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"emotion-video-server/modules/common/model"
)

// ThumbnailFunc - 영상 URL에서 썸네일(WebP) 추출
type ThumbnailFunc func(ctx context.Context, videoURL string) ([]byte, error)

// VideoFinalizer - 결과 영상을 보관 스토리지로 복사하고 썸네일 생성
type VideoFinalizer struct {
	archiver   Archiver
	thumbnail  ThumbnailFunc
	httpClient *http.Client
	now        func() time.Time
}

// NewVideoFinalizer - thumbnail이 nil이면 썸네일 생략
func NewVideoFinalizer(archiver Archiver, thumbnail ThumbnailFunc) *VideoFinalizer {
	return &VideoFinalizer{
		archiver:   archiver,
		thumbnail:  thumbnail,
		httpClient: &http.Client{Timeout: 2 * time.Minute},
		now:        time.Now,
	}
}

// VideoKey - talking-videos/2024/01/02/{talkID}.mp4
func VideoKey(talkID string, at time.Time, ext string) string {
	return fmt.Sprintf("talking-videos/%s/%s%s", at.UTC().Format("2006/01/02"), talkID, ext)
}

// Finalize - 영상 업로드 (썸네일 실패는 무시)
func (f *VideoFinalizer) Finalize(ctx context.Context, talkID, videoURL string) (*model.ArchivedVideo, error) {
	if f.archiver == nil {
		return &model.ArchivedVideo{VideoURL: videoURL}, nil
	}

	video, err := DownloadVideo(ctx, f.httpClient, videoURL)
	if err != nil {
		return nil, err
	}

	at := f.now()
	archivedURL, err := f.archiver.Upload(ctx, VideoKey(talkID, at, ".mp4"), "video/mp4", video)
	if err != nil {
		return nil, err
	}

	archived := &model.ArchivedVideo{VideoURL: archivedURL}

	if f.thumbnail != nil {
		thumb, err := f.thumbnail(ctx, videoURL)
		if err != nil {
			log.Printf("⚠️  Thumbnail extraction failed for %s: %v", talkID, err)
			return archived, nil
		}
		thumbURL, err := f.archiver.Upload(ctx, VideoKey(talkID, at, ".webp"), "image/webp", thumb)
		if err != nil {
			log.Printf("⚠️  Thumbnail upload failed for %s: %v", talkID, err)
			return archived, nil
		}
		archived.ThumbnailURL = thumbURL
	}

	log.Printf("✅ [%s] Video archived: %s", f.archiver.Name(), talkID)
	return archived, nil
}
