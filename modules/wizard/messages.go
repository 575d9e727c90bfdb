package wizard

import (
	"time"

	"emotion-video-server/modules/common/model"
	"emotion-video-server/modules/studio"
)

// StateMsg - 서버 세션 상태 수신
type StateMsg struct {
	State *studio.State
	Err   error
}

// EmotionsMsg - 감정 목록 수신
type EmotionsMsg struct {
	Emotions []model.Emotion
	Err      error
}

// TickMsg - 폴링 주기
type TickMsg struct {
	Time time.Time
}
