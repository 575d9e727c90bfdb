package storage

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Archiver - S3 업로드 후 presigned GET URL 반환
type S3Archiver struct {
	client    *s3.Client
	presigner *s3.PresignClient
	bucket    string
	prefix    string
	ttl       time.Duration
}

// NewS3Archiver - 기본 AWS credential chain 사용
func NewS3Archiver(ctx context.Context, region, bucket, prefix string, ttl time.Duration) (*S3Archiver, error) {
	var loadOpts []func(*config.LoadOptions) error
	if region != "" {
		loadOpts = append(loadOpts, config.WithRegion(region))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	client := s3.NewFromConfig(awsCfg)
	return &S3Archiver{
		client:    client,
		presigner: s3.NewPresignClient(client),
		bucket:    bucket,
		prefix:    prefix,
		ttl:       ttl,
	}, nil
}

func (a *S3Archiver) Name() string {
	return "s3"
}

// ObjectKey - prefix 아래 키
func ObjectKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return path.Join(prefix, key)
}

// Upload - PutObject 후 presign
func (a *S3Archiver) Upload(ctx context.Context, key, contentType string, data []byte) (string, error) {
	objectKey := ObjectKey(a.prefix, key)
	log.Printf("📤 Uploading to S3: s3://%s/%s (%d bytes)", a.bucket, objectKey, len(data))

	in := &s3.PutObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(objectKey),
		Body:   bytes.NewReader(data),
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}

	if _, err := a.client.PutObject(ctx, in); err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", objectKey, err)
	}

	presigned, err := a.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(objectKey),
	}, s3.WithPresignExpires(a.ttl))
	if err != nil {
		return "", fmt.Errorf("failed to presign %s: %w", objectKey, err)
	}

	log.Printf("✅ Uploaded successfully: s3://%s/%s", a.bucket, objectKey)
	return presigned.URL, nil
}
