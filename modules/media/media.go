package media

import (
	"log"
	"net/http"
	"strings"

	"emotion-video-server/modules/common/utils"
	"emotion-video-server/modules/validation"
)

const (
	// MaxImageSize - 업로드 허용 최대 크기 (10MB)
	MaxImageSize = 10 * 1024 * 1024

	// MaxImagePixels - 디코딩 허용 최대 픽셀 수 (40MP)
	MaxImagePixels = 40_000_000

	DefaultMaxWidth  = 1024
	DefaultMaxHeight = 1024
	resizeQuality    = 90

	minFaceSide   = 200
	minFaceAspect = 0.5
	maxFaceAspect = 2.0
)

const (
	MsgInvalidImageType = "Please upload a valid image file (JPEG, PNG, or WebP)"
	MsgImageTooLarge    = "Image file size must be less than 10MB"
	MsgImageTooManyPx   = "Image dimensions are too large (max 40 megapixels)"
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/webp": true,
}

// Prepared - 검증/리사이즈가 끝난 업로드 이미지
type Prepared struct {
	Data        []byte `json:"-"`
	ContentType string `json:"contentType"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Size        string `json:"size"`
	HasFace     bool   `json:"hasFace"`
}

// DetectContentType - 헤더가 비었거나 octet-stream이면 내용으로 판별
func DetectContentType(data []byte, declared string) string {
	declared = strings.ToLower(strings.TrimSpace(declared))
	if i := strings.Index(declared, ";"); i >= 0 {
		declared = strings.TrimSpace(declared[:i])
	}
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	return http.DetectContentType(data)
}

// ValidateImage - 타입(JPEG/PNG/WebP)과 크기(10MB) 검사
func ValidateImage(data []byte, contentType string) error {
	if !allowedImageTypes[DetectContentType(data, contentType)] {
		return &validation.ValidationError{Field: "image", Message: MsgInvalidImageType}
	}
	if len(data) > MaxImageSize {
		return &validation.ValidationError{Field: "image", Message: MsgImageTooLarge}
	}
	return nil
}

// ResizeImage - maxW x maxH 안으로 축소 (실패하면 원본 그대로 반환)
func ResizeImage(data []byte, contentType string, maxWidth, maxHeight int) ([]byte, string) {
	contentType = DetectContentType(data, contentType)

	cfg, _, err := utils.DecodeImageConfig(data)
	if err != nil {
		log.Printf("⚠️ [Media] Resize skipped, unreadable header: %v", err)
		return data, contentType
	}

	width, height := utils.FitSize(cfg.Width, cfg.Height, maxWidth, maxHeight)
	if width == cfg.Width && height == cfg.Height {
		return data, contentType
	}
	if tooManyPixels(cfg.Width, cfg.Height) {
		log.Printf("⚠️ [Media] Resize skipped, %dx%d exceeds pixel limit", cfg.Width, cfg.Height)
		return data, contentType
	}

	img, format, err := utils.DecodeImage(data)
	if err != nil {
		log.Printf("⚠️ [Media] Resize skipped: %v", err)
		return data, contentType
	}

	resized, resizedType, err := utils.EncodeImage(utils.ResizeImage(img, width, height), format, resizeQuality)
	if err != nil {
		log.Printf("⚠️ [Media] Resize encode failed, keeping original: %v", err)
		return data, contentType
	}

	log.Printf("📐 [Media] Resized %dx%d → %dx%d (%s → %s)",
		cfg.Width, cfg.Height, width, height,
		utils.FormatFileSize(int64(len(data))), utils.FormatFileSize(int64(len(resized))))
	return resized, resizedType
}

// HasFace - 크기/비율 기반 간이 판별 (실제 얼굴 인식 아님)
func HasFace(data []byte) bool {
	cfg, _, err := utils.DecodeImageConfig(data)
	if err != nil {
		return false
	}
	return looksLikePortrait(cfg.Width, cfg.Height)
}

func tooManyPixels(width, height int) bool {
	return int64(width)*int64(height) > MaxImagePixels
}

func looksLikePortrait(width, height int) bool {
	if width < minFaceSide || height < minFaceSide {
		return false
	}
	aspect := float64(width) / float64(height)
	return aspect >= minFaceAspect && aspect <= maxFaceAspect
}

// Prepare - 검증 → 픽셀 수 확인 → 리사이즈 → 얼굴 휴리스틱
func Prepare(data []byte, contentType string) (*Prepared, error) {
	if err := ValidateImage(data, contentType); err != nil {
		return nil, err
	}

	if header, _, err := utils.DecodeImageConfig(data); err == nil && tooManyPixels(header.Width, header.Height) {
		log.Printf("❌ [Media] Rejected %dx%d image before decoding", header.Width, header.Height)
		return nil, &validation.ValidationError{Field: "image", Message: MsgImageTooManyPx}
	}

	resized, resizedType := ResizeImage(data, contentType, DefaultMaxWidth, DefaultMaxHeight)

	cfg, _, err := utils.DecodeImageConfig(resized)
	if err != nil {
		log.Printf("❌ [Media] Unreadable image: %v", err)
		return nil, &validation.ValidationError{Field: "image", Message: MsgInvalidImageType}
	}

	return &Prepared{
		Data:        resized,
		ContentType: resizedType,
		Width:       cfg.Width,
		Height:      cfg.Height,
		Size:        utils.FormatFileSize(int64(len(resized))),
		HasFace:     looksLikePortrait(cfg.Width, cfg.Height),
	}, nil
}
