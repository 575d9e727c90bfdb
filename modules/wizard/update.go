package wizard

import (
	tea "github.com/charmbracelet/bubbletea"

	"emotion-video-server/modules/studio"
)

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case StateMsg:
		return m.handleState(msg)
	case EmotionsMsg:
		if msg.Err != nil {
			m.Err = msg.Err
			return m, nil
		}
		m.Emotions = msg.Emotions
		return m, nil
	case TickMsg:
		if m.SessionID != "" && !m.Busy {
			return m, tea.Batch(pollSession(m.Client, m.SessionID), tickCmd())
		}
		return m, tickCmd()
	}
	return m, nil
}

func (m Model) handleState(msg StateMsg) (tea.Model, tea.Cmd) {
	m.Busy = false
	if msg.Err != nil {
		m.Err = msg.Err
		return m, nil
	}

	m.Connected = true
	m.Err = nil
	m.State = msg.State
	m.SessionID = msg.State.SessionID
	if m.Script == "" && msg.State.Script != "" {
		m.Script = msg.State.Script
	}
	return m, nil
}

// run - 요청 하나만 진행
func (m Model) run(cmd tea.Cmd) (tea.Model, tea.Cmd) {
	if m.Busy || m.SessionID == "" {
		return m, nil
	}
	m.Busy = true
	m.Err = nil
	return m, cmd
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.step() {
	case studio.StepUpload:
		return m.handleUploadKeys(msg)
	case studio.StepEmotion:
		return m.handleEmotionKeys(msg)
	case studio.StepScript:
		return m.handleScriptKeys(msg)
	default:
		return m.handleResultKeys(msg)
	}
}

func (m Model) handleUploadKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "enter":
		return m.run(sessionAction(m.Client, m.SessionID, "next"))
	}
	return m, nil
}

func (m Model) handleEmotionKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < len(m.Emotions)-1 {
			m.Cursor++
		}
	case "esc":
		return m.run(sessionAction(m.Client, m.SessionID, "back"))
	case "enter":
		if len(m.Emotions) == 0 {
			return m, nil
		}
		return m.run(chooseEmotion(m.Client, m.SessionID, m.Emotions[m.Cursor].ID))
	}
	return m, nil
}

// handleScriptKeys - 문자 입력은 버퍼에, 단축키는 서버 요청
func (m Model) handleScriptKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		return m.run(sessionAction(m.Client, m.SessionID, "back"))
	case tea.KeyEnter:
		return m.run(saveAndGenerate(m.Client, m.SessionID, m.Script))
	case tea.KeyCtrlE:
		return m.run(saveAndEnhance(m.Client, m.SessionID, m.Script))
	case tea.KeyCtrlL:
		if m.State != nil {
			return m.run(toggleLanguage(m.Client, m.SessionID, m.State.Language))
		}
	case tea.KeyBackspace:
		if runes := []rune(m.Script); len(runes) > 0 {
			m.Script = string(runes[:len(runes)-1])
		}
	case tea.KeySpace:
		m.Script += " "
	case tea.KeyRunes:
		m.Script += string(msg.Runes)
	}
	return m, nil
}

func (m Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.processing() {
		switch msg.String() {
		case "c":
			return m.run(cancelGeneration(m.Client, m.SessionID))
		case "q":
			return m, tea.Quit
		}
		return m, nil
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "r":
		return m.run(sessionAction(m.Client, m.SessionID, "regenerate"))
	case "g":
		return m.run(sessionAction(m.Client, m.SessionID, "generate"))
	case "n":
		m.Script = ""
		m.Cursor = 0
		return m.run(sessionAction(m.Client, m.SessionID, "reset"))
	}
	return m, nil
}
