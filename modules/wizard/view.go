package wizard

import (
	"fmt"
	"strings"

	"emotion-video-server/modules/common/model"
	"emotion-video-server/modules/studio"
)

var stepTitles = []string{"Upload", "Emotion", "Script", "Result"}

const progressWidth = 20

// View implements tea.Model
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("🎬 Emotion Video Studio"))
	b.WriteString("\n")

	if !m.Connected {
		if m.Err != nil {
			b.WriteString(ErrorStyle.Render(fmt.Sprintf("❌ Not connected: %v", m.Err)))
		} else {
			b.WriteString(StatusStyle.Render("⏳ Connecting..."))
		}
		b.WriteString("\n\n")
		b.WriteString(InfoStyle.Render("Press Ctrl+C to quit"))
		return b.String()
	}

	b.WriteString(m.stepIndicator())
	b.WriteString("\n\n")

	switch m.step() {
	case studio.StepUpload:
		b.WriteString(m.uploadView())
	case studio.StepEmotion:
		b.WriteString(m.emotionView())
	case studio.StepScript:
		b.WriteString(m.scriptView())
	default:
		b.WriteString(m.resultView())
	}
	b.WriteString("\n")

	if m.Err != nil {
		b.WriteString(ErrorStyle.Render("❌ " + m.Err.Error()))
		b.WriteString("\n")
	} else if m.State != nil && m.State.Error != "" {
		b.WriteString(ErrorStyle.Render("⚠️  " + m.State.Error))
		b.WriteString("\n")
	}
	if m.Busy {
		b.WriteString(InfoStyle.Render("…"))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(InfoStyle.Render(m.helpText()))
	return b.String()
}

func (m Model) stepIndicator() string {
	parts := make([]string, len(stepTitles))
	for i, title := range stepTitles {
		label := fmt.Sprintf("%d. %s", i+1, title)
		if i == m.step() {
			parts[i] = HighlightStyle.Render(label)
		} else {
			parts[i] = InfoStyle.Render(label)
		}
	}
	return strings.Join(parts, "  ")
}

func (m Model) uploadView() string {
	if m.State == nil || m.State.Image == nil {
		return InfoStyle.Render("No photo uploaded. Restart with -image <path>.")
	}
	img := m.State.Image
	line := fmt.Sprintf("📷 %s %dx%d (%s)", img.ContentType, img.Width, img.Height, img.Size)
	if !img.HasFace {
		line += "\n" + ErrorStyle.Render("No face detected, results may be poor")
	}
	return StatusStyle.Render(line)
}

func (m Model) emotionView() string {
	var b strings.Builder
	for i, emotion := range m.Emotions {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▶ "
		}
		line := fmt.Sprintf("%s%s %s", cursor, emotion.Icon, emotion.Name)
		if m.State != nil && m.State.Emotion != nil && m.State.Emotion.ID == emotion.ID {
			line = HighlightStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString(InfoStyle.Render("  " + emotion.Description))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) scriptView() string {
	var b strings.Builder
	language := model.LanguageEnglish
	if m.State != nil {
		language = m.State.Language
		if m.State.Emotion != nil {
			b.WriteString(fmt.Sprintf("Emotion: %s %s   ", m.State.Emotion.Icon, m.State.Emotion.Name))
		}
	}
	b.WriteString(fmt.Sprintf("Language: %s\n\n", language))
	b.WriteString(BoxStyle.Render(m.Script + "█"))
	b.WriteString("\n")
	b.WriteString(InfoStyle.Render(fmt.Sprintf("%d/2000 characters", len([]rune(m.Script)))))
	if m.State != nil && m.State.EnhancedScript != "" {
		b.WriteString("\n\n")
		b.WriteString(StatusStyle.Render("✨ Enhanced:"))
		b.WriteString("\n")
		b.WriteString(m.State.EnhancedScript)
	}
	return b.String()
}

func progressBar(percent int) string {
	filled := percent * progressWidth / 100
	if filled > progressWidth {
		filled = progressWidth
	}
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", progressWidth-filled) + "]"
}

func stepIcon(status model.StepStatus) string {
	switch status {
	case model.StepCompleted:
		return "✅"
	case model.StepProcessing:
		return "⏳"
	case model.StepError:
		return "❌"
	default:
		return "○"
	}
}

func (m Model) resultView() string {
	var b strings.Builder
	if m.State == nil {
		return ""
	}

	for _, step := range m.State.Steps {
		b.WriteString(fmt.Sprintf("%s %-16s %s %3d%%", stepIcon(step.Status), step.Name, progressBar(step.Progress), step.Progress))
		if step.Message != "" {
			b.WriteString(InfoStyle.Render("  " + step.Message))
		}
		b.WriteString("\n")
	}

	if result := m.State.Result; result != nil {
		var box strings.Builder
		box.WriteString(HighlightStyle.Render("Video ready"))
		box.WriteString("\n\n")
		box.WriteString(fmt.Sprintf("Video: %s\n", result.VideoURL))
		if result.AudioURL != "" {
			box.WriteString(fmt.Sprintf("Audio: %s\n", result.AudioURL))
		}
		if result.ThumbnailURL != "" {
			box.WriteString(fmt.Sprintf("Thumbnail: %s\n", result.ThumbnailURL))
		}
		box.WriteString(fmt.Sprintf("Processing time: %s", result.ProcessingTime))
		b.WriteString("\n")
		b.WriteString(BoxStyle.Render(box.String()))
	}
	return b.String()
}

func (m Model) helpText() string {
	switch m.step() {
	case studio.StepUpload:
		return "enter: next | q: quit"
	case studio.StepEmotion:
		return "↑/↓: choose | enter: select | esc: back | q: quit"
	case studio.StepScript:
		return "type to edit | ctrl+e: enhance | ctrl+l: toggle language | enter: generate | esc: back"
	default:
		if m.processing() {
			return "c: cancel | q: quit"
		}
		return "g: generate again | r: edit script | n: new video | q: quit"
	}
}
