package wizard

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"emotion-video-server/modules/common/model"
	"emotion-video-server/modules/studio"
)

// pollInterval - 세션 상태 폴링 주기
const pollInterval = 500 * time.Millisecond

func stateCmd(fn func() (*studio.State, error)) tea.Cmd {
	return func() tea.Msg {
		state, err := fn()
		return StateMsg{State: state, Err: err}
	}
}

// startSession - 세션 생성 후 이미지/스크립트가 주어졌으면 미리 채움
func startSession(client *Client, imagePath, script string) tea.Cmd {
	return stateCmd(func() (*studio.State, error) {
		state, err := client.CreateSession()
		if err != nil {
			return nil, err
		}
		if imagePath != "" {
			if state, err = client.UploadImage(state.SessionID, imagePath); err != nil {
				return nil, err
			}
		}
		if script != "" {
			if state, err = client.SetScript(state.SessionID, script); err != nil {
				return nil, err
			}
		}
		return state, nil
	})
}

func loadEmotions(client *Client) tea.Cmd {
	return func() tea.Msg {
		emotions, err := client.Emotions()
		return EmotionsMsg{Emotions: emotions, Err: err}
	}
}

func pollSession(client *Client, id string) tea.Cmd {
	return stateCmd(func() (*studio.State, error) { return client.GetSession(id) })
}

func sessionAction(client *Client, id, action string) tea.Cmd {
	return stateCmd(func() (*studio.State, error) { return client.Action(id, action) })
}

func chooseEmotion(client *Client, id, emotion string) tea.Cmd {
	return stateCmd(func() (*studio.State, error) {
		if _, err := client.SelectEmotion(id, emotion); err != nil {
			return nil, err
		}
		return client.Action(id, "next")
	})
}

func toggleLanguage(client *Client, id string, current model.Language) tea.Cmd {
	next := model.LanguageTamil
	if current == model.LanguageTamil {
		next = model.LanguageEnglish
	}
	return stateCmd(func() (*studio.State, error) { return client.SetLanguage(id, next) })
}

func saveAndEnhance(client *Client, id, script string) tea.Cmd {
	return stateCmd(func() (*studio.State, error) {
		if _, err := client.SetScript(id, script); err != nil {
			return nil, err
		}
		return client.Action(id, "enhance")
	})
}

// saveAndGenerate - 스크립트 저장 → 다음 단계 → 생성 시작
func saveAndGenerate(client *Client, id, script string) tea.Cmd {
	return stateCmd(func() (*studio.State, error) {
		if _, err := client.SetScript(id, script); err != nil {
			return nil, err
		}
		if _, err := client.Action(id, "next"); err != nil {
			return nil, err
		}
		return client.Action(id, "generate")
	})
}

func cancelGeneration(client *Client, id string) tea.Cmd {
	return stateCmd(func() (*studio.State, error) {
		if err := client.Cancel(id); err != nil {
			return nil, err
		}
		return client.GetSession(id)
	})
}

func tickCmd() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}
