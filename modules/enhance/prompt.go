package enhance

import (
	"fmt"
	"strings"

	"emotion-video-server/modules/common/model"
)

func enhanceScriptPrompt(script string, emotion model.Emotion) string {
	return fmt.Sprintf(`You are an expert script writer specializing in emotional expression for realistic talking videos.

Original script: "%s"
Target emotion: %s (%s)

Please enhance this script to make it more emotionally expressive for a %s delivery.

Guidelines:
- Maintain the core message but enhance emotional impact
- Add appropriate pauses, emphasis, and emotional inflection markers
- Keep it natural and realistic for human speech
- Add subtle emotional cues that work well with facial animation
- Length should be similar to original (don't make it much longer)
- Use punctuation and capitalization to indicate emphasis
- Add [pause] markers where natural pauses would enhance emotion

Return only the enhanced script, nothing else.`,
		script, emotion.Name, emotion.Description, strings.ToLower(emotion.Name))
}

func voiceSettingsPrompt(script string, emotion model.Emotion) string {
	return fmt.Sprintf(`Based on the emotion "%s" and the script content, suggest optimal voice settings for text-to-speech.

Emotion: %s (%s)
Script: "%s"

Return voice settings in this exact JSON format:
{
  "pitch": <number between 0.5 and 2.0, where 1.0 is normal>,
  "speed": <number between 0.5 and 2.0, where 1.0 is normal>,
  "emotion": "%s",
  "gender": "<male/female/neutral based on what works best for this emotion>"
}

Guidelines:
- Happy/Excited: higher pitch, faster speed
- Sad: lower pitch, slower speed
- Motivational: confident pitch, dynamic speed
- Calm: steady pitch, moderate speed
- Angry: intense pitch, varied speed
- Professional: clear pitch, measured speed
- Romantic: warm pitch, gentle speed

Return only the JSON object, nothing else.`,
		emotion.Name, emotion.Name, emotion.Description, script, strings.ToLower(emotion.Name))
}

func videoDescriptionPrompt(script string, emotion model.Emotion) string {
	return fmt.Sprintf(`Create a concise description for a realistic talking video with the following details:

Script: "%s"
Emotion: %s (%s)

Generate a brief, professional description (2-3 sentences) that describes what viewers will see in this talking video.
Focus on the emotional tone and message delivery style.`,
		script, emotion.Name, emotion.Description)
}
