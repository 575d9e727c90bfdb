package media

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/jpeg"
	"image/png"
	"os/exec"
	"testing"
	"time"

	"emotion-video-server/modules/common/utils"
	"emotion-video-server/modules/validation"
)

func mustJPEG(t *testing.T, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, width, height)), nil); err != nil {
		t.Fatalf("jpeg.Encode() error = %v", err)
	}
	return buf.Bytes()
}

func mustPNG(t *testing.T, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, width, height))); err != nil {
		t.Fatalf("png.Encode() error = %v", err)
	}
	return buf.Bytes()
}

// TestValidateImageType - 허용되지 않은 타입 거부
func TestValidateImageType(t *testing.T) {
	err := ValidateImage([]byte("GIF89a..."), "image/gif")
	var vErr *validation.ValidationError
	if !errors.As(err, &vErr) || vErr.Message != MsgInvalidImageType {
		t.Fatalf("ValidateImage(gif) = %v, want %q", err, MsgInvalidImageType)
	}

	if err := ValidateImage(mustJPEG(t, 10, 10), "image/jpg"); err != nil {
		t.Fatalf("ValidateImage(image/jpg) = %v, want nil", err)
	}
	if err := ValidateImage(mustPNG(t, 10, 10), ""); err != nil {
		t.Fatalf("ValidateImage(sniffed png) = %v, want nil", err)
	}
}

// TestValidateImageSize - 10MB 초과 거부
func TestValidateImageSize(t *testing.T) {
	big := make([]byte, MaxImageSize+1)
	err := ValidateImage(big, "image/png")
	var vErr *validation.ValidationError
	if !errors.As(err, &vErr) || vErr.Message != MsgImageTooLarge {
		t.Fatalf("ValidateImage(big) = %v, want %q", err, MsgImageTooLarge)
	}
}

// TestHasFaceHeuristic - 크기/비율 경계
func TestHasFaceHeuristic(t *testing.T) {
	tests := []struct {
		width, height int
		want          bool
	}{
		{200, 200, true},
		{199, 300, false},
		{400, 200, true},
		{401, 200, false},
		{200, 400, true},
		{200, 401, false},
	}
	for _, tt := range tests {
		if got := HasFace(mustPNG(t, tt.width, tt.height)); got != tt.want {
			t.Fatalf("HasFace(%dx%d) = %v, want %v", tt.width, tt.height, got, tt.want)
		}
	}
	if HasFace([]byte("not an image")) {
		t.Fatal("HasFace(garbage) = true")
	}
}

// TestResizeImageKeepsRatio - 큰 이미지는 비율 유지 축소
func TestResizeImageKeepsRatio(t *testing.T) {
	data, contentType := ResizeImage(mustJPEG(t, 2048, 1024), "image/jpeg", 1024, 1024)
	if contentType != "image/jpeg" {
		t.Fatalf("contentType = %q, want image/jpeg", contentType)
	}
	cfg, _, err := utils.DecodeImageConfig(data)
	if err != nil {
		t.Fatalf("DecodeImageConfig() error = %v", err)
	}
	if cfg.Width != 1024 || cfg.Height != 512 {
		t.Fatalf("resized = %dx%d, want 1024x512", cfg.Width, cfg.Height)
	}
}

// TestResizeImageReturnsOriginal - 작은 이미지나 깨진 이미지는 원본 반환
func TestResizeImageReturnsOriginal(t *testing.T) {
	small := mustPNG(t, 300, 300)
	data, _ := ResizeImage(small, "image/png", 1024, 1024)
	if !bytes.Equal(data, small) {
		t.Fatal("small image was re-encoded")
	}

	garbage := []byte("definitely not pixels")
	data, _ = ResizeImage(garbage, "image/png", 1024, 1024)
	if !bytes.Equal(data, garbage) {
		t.Fatal("garbage input was not returned as-is")
	}
}

// TestPrepare - 전체 준비 흐름
func TestPrepare(t *testing.T) {
	prepared, err := Prepare(mustPNG(t, 1600, 1200), "image/png")
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if prepared.Width != 1024 || prepared.Height != 768 {
		t.Fatalf("prepared = %dx%d, want 1024x768", prepared.Width, prepared.Height)
	}
	if prepared.ContentType != "image/png" || !prepared.HasFace {
		t.Fatalf("prepared = %+v", prepared)
	}

	if _, err := Prepare([]byte("\x89PNG\r\n\x1a\nbroken"), "image/png"); err == nil {
		t.Fatal("Prepare(broken png) error = nil")
	}
}

// pngHeader - IHDR만 있는 PNG (헤더상 크기만 크고 실제 픽셀 데이터는 없음)
func pngHeader(width, height uint32) []byte {
	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], width)
	binary.BigEndian.PutUint32(ihdr[4:8], height)
	ihdr[8] = 8 // bit depth
	ihdr[9] = 6 // RGBA

	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")
	binary.Write(&buf, binary.BigEndian, uint32(len(ihdr)))
	chunk := append([]byte("IHDR"), ihdr...)
	buf.Write(chunk)
	binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(chunk))
	return buf.Bytes()
}

// TestPrepareRejectsHugeDimensions - 40MP 넘는 헤더는 디코딩 전에 거절
func TestPrepareRejectsHugeDimensions(t *testing.T) {
	data := pngHeader(30000, 30000)

	cfg, _, err := utils.DecodeImageConfig(data)
	if err != nil || cfg.Width != 30000 {
		t.Fatalf("DecodeImageConfig() = %+v, %v", cfg, err)
	}

	_, err = Prepare(data, "image/png")
	var vErr *validation.ValidationError
	if !errors.As(err, &vErr) || vErr.Message != MsgImageTooManyPx {
		t.Fatalf("Prepare() error = %v, want %q", err, MsgImageTooManyPx)
	}

	if got, _ := ResizeImage(data, "image/png", DefaultMaxWidth, DefaultMaxHeight); !bytes.Equal(got, data) {
		t.Fatal("ResizeImage() decoded an oversized image, want original bytes")
	}
}

// TestRunCommandKillsOnCancel - 취소되면 자식 프로세스를 끝내고 바로 반환
func TestRunCommandKillsOnCancel(t *testing.T) {
	if _, err := exec.LookPath("sleep"); err != nil {
		t.Skip("sleep binary not available")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	cmd := exec.Command("sleep", "10")
	start := time.Now()
	err := runCommand(ctx, cmd)

	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("runCommand() = %v, want context.DeadlineExceeded", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("runCommand() took %v after cancel", elapsed)
	}
	if cmd.ProcessState == nil {
		t.Fatal("child process was not reaped")
	}
}
