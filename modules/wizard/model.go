package wizard

import (
	tea "github.com/charmbracelet/bubbletea"

	"emotion-video-server/modules/common/model"
	"emotion-video-server/modules/studio"
)

// Model - 위저드 TUI 상태 (서버 세션의 얇은 클라이언트)
type Model struct {
	Client    *Client
	ImagePath string

	SessionID string
	State     *studio.State
	Emotions  []model.Emotion
	Cursor    int
	Script    string // 스크립트 단계 입력 버퍼
	Busy      bool   // 요청 대기 중
	Err       error
	Connected bool
}

// NewModel - imagePath/script는 선택 (비어 있으면 TUI에서 입력)
func NewModel(serverURL, imagePath, script string) Model {
	return Model{
		Client:    NewClient(serverURL),
		ImagePath: imagePath,
		Script:    script,
		Busy:      true,
	}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		startSession(m.Client, m.ImagePath, m.Script),
		loadEmotions(m.Client),
		tickCmd(),
	)
}

func (m Model) step() int {
	if m.State == nil {
		return studio.StepUpload
	}
	return m.State.Step
}

func (m Model) processing() bool {
	return m.State != nil && m.State.Processing
}
