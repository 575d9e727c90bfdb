package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"os/exec"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"emotion-video-server/modules/common/utils"
)

const thumbnailQuality = 80

// ExtractThumbnail - 영상 1초 지점 프레임을 잘라 WebP로 반환
func ExtractThumbnail(ctx context.Context, videoURL string) ([]byte, error) {
	log.Printf("🖼️ [Media] Extracting thumbnail from: %s", videoURL)

	buf := bytes.NewBuffer(nil)
	cmd := ffmpeg.Input(videoURL, ffmpeg.KwArgs{"ss": "1"}).
		Output("pipe:", ffmpeg.KwArgs{"vframes": 1, "format": "image2", "vcodec": "mjpeg"}).
		WithOutput(buf, io.Discard).
		Compile()

	if err := runCommand(ctx, cmd); err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		return nil, fmt.Errorf("ffmpeg frame grab failed: %w", err)
	}

	frame := buf.Bytes()
	if len(frame) == 0 {
		return nil, fmt.Errorf("ffmpeg produced no frame")
	}

	img, _, err := utils.DecodeImage(frame)
	if err != nil {
		return nil, err
	}

	return utils.ConvertToWebP(img, thumbnailQuality)
}

// runCommand - ctx가 끝나면 자식 프로세스를 종료하고 회수까지 기다림
func runCommand(ctx context.Context, cmd *exec.Cmd) error {
	if err := cmd.Start(); err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		if err := cmd.Process.Kill(); err != nil {
			log.Printf("⚠️ [Media] Failed to kill ffmpeg (pid %d): %v", cmd.Process.Pid, err)
		}
		<-done
		log.Printf("🛑 [Media] ffmpeg stopped: %v", ctx.Err())
		return ctx.Err()
	}
}
