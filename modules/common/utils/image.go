package utils

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg" // JPEG 디코더 등록 + 인코딩
	"image/png"
	"log"
	"math"
	"strings"

	_ "github.com/gen2brain/webp" // WebP 디코더 등록
	"github.com/kolesa-team/go-webp/encoder"
	"github.com/kolesa-team/go-webp/webp"
)

// ConvertImageToBase64 - 이미지 바이너리를 base64로 변환
func ConvertImageToBase64(imageData []byte) string {
	return base64.StdEncoding.EncodeToString(imageData)
}

// ToDataURL - data:<mime>;base64,<payload> 형식으로 변환
func ToDataURL(imageData []byte, mimeType string) string {
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	return "data:" + mimeType + ";base64," + ConvertImageToBase64(imageData)
}

// ParseDataURL - data URL 또는 순수 base64 문자열을 디코딩
func ParseDataURL(raw string) ([]byte, string, error) {
	mimeType := ""
	payload := raw
	if strings.HasPrefix(raw, "data:") {
		comma := strings.Index(raw, ",")
		if comma < 0 {
			return nil, "", fmt.Errorf("malformed data URL")
		}
		header := raw[len("data:"):comma]
		mimeType = strings.TrimSuffix(header, ";base64")
		payload = raw[comma+1:]
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode base64 image: %w", err)
	}
	return data, mimeType, nil
}

// DecodeImage - JPEG/PNG/WebP 자동 감지 디코딩
func DecodeImage(imageData []byte) (image.Image, string, error) {
	img, format, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}
	return img, format, nil
}

// DecodeImageConfig - 픽셀 디코딩 없이 크기만 조회
func DecodeImageConfig(imageData []byte) (image.Config, string, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(imageData))
	if err != nil {
		return image.Config{}, "", fmt.Errorf("failed to read image header: %w", err)
	}
	return cfg, format, nil
}

// FitSize - 비율 유지하며 maxW x maxH 안에 들어가는 크기 (작은 이미지는 그대로)
func FitSize(width, height, maxWidth, maxHeight int) (int, int) {
	if width <= maxWidth && height <= maxHeight {
		return width, height
	}
	ratio := math.Min(float64(maxWidth)/float64(width), float64(maxHeight)/float64(height))
	newWidth := int(math.Round(float64(width) * ratio))
	newHeight := int(math.Round(float64(height) * ratio))
	if newWidth < 1 {
		newWidth = 1
	}
	if newHeight < 1 {
		newHeight = 1
	}
	return newWidth, newHeight
}

// ResizeImage - 지정 크기로 리사이즈 (Nearest Neighbor)
func ResizeImage(src image.Image, targetWidth, targetHeight int) image.Image {
	srcBounds := src.Bounds()
	if srcBounds.Dx() == targetWidth && srcBounds.Dy() == targetHeight {
		return src
	}

	scaleX := float64(srcBounds.Dx()) / float64(targetWidth)
	scaleY := float64(srcBounds.Dy()) / float64(targetHeight)

	dst := image.NewRGBA(image.Rect(0, 0, targetWidth, targetHeight))
	for y := 0; y < targetHeight; y++ {
		srcY := srcBounds.Min.Y + int(float64(y)*scaleY)
		for x := 0; x < targetWidth; x++ {
			srcX := srcBounds.Min.X + int(float64(x)*scaleX)
			dst.Set(x, y, src.At(srcX, srcY))
		}
	}

	return dst
}

// EncodeImage - 원본 포맷 유지하며 인코딩 (quality: 1~100, PNG는 무시)
func EncodeImage(img image.Image, format string, quality int) ([]byte, string, error) {
	var buf bytes.Buffer

	switch format {
	case "png":
		if err := png.Encode(&buf, img); err != nil {
			return nil, "", fmt.Errorf("failed to encode PNG: %w", err)
		}
		return buf.Bytes(), "image/png", nil
	case "webp":
		data, err := ConvertToWebP(img, float32(quality))
		if err != nil {
			return nil, "", err
		}
		return data, "image/webp", nil
	default:
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, "", fmt.Errorf("failed to encode JPEG: %w", err)
		}
		return buf.Bytes(), "image/jpeg", nil
	}
}

// ConvertToWebP - 디코딩된 이미지를 WebP로 인코딩
func ConvertToWebP(img image.Image, quality float32) ([]byte, error) {
	options, err := encoder.NewLossyEncoderOptions(encoder.PresetDefault, quality)
	if err != nil {
		return nil, fmt.Errorf("failed to create WebP encoder options: %w", err)
	}

	var webpBuffer bytes.Buffer
	if err := webp.Encode(&webpBuffer, img, options); err != nil {
		return nil, fmt.Errorf("failed to encode WebP: %w", err)
	}

	log.Printf("🔄 Encoded WebP: %dx%d → %d bytes (quality: %.0f)",
		img.Bounds().Dx(), img.Bounds().Dy(), webpBuffer.Len(), quality)
	return webpBuffer.Bytes(), nil
}
