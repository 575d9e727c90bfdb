package enhance

import (
	"context"
	"fmt"
	"sync"

	"github.com/sashabaranov/go-openai"
	"google.golang.org/genai"

	"emotion-video-server/modules/common/gemini"
	"emotion-video-server/modules/common/vertexai"
)

const (
	scriptTemperature = 0.7
	systemPrompt      = "You help produce emotionally expressive talking-avatar videos. Follow the requested output format exactly."
)

// geminiBackend - 여러 키 순환 (429 재시도)
type geminiBackend struct {
	apiKeys []string
	model   string
}

func newGeminiBackend(apiKeys []string, model string) *geminiBackend {
	return &geminiBackend{apiKeys: apiKeys, model: model}
}

func (g *geminiBackend) Name() string {
	return "Gemini(" + g.model + ")"
}

func (g *geminiBackend) Complete(ctx context.Context, prompt string, jsonMode bool) (string, error) {
	return gemini.GenerateText(ctx, g.apiKeys, g.model, prompt, scriptTemperature, jsonMode)
}

// vertexBackend - 서비스 계정으로 Vertex AI의 Gemini 호출 (클라이언트는 첫 호출 때 생성)
type vertexBackend struct {
	project  string
	location string
	model    string

	once      sync.Once
	client    *genai.Client
	clientErr error
}

func newVertexBackend(project, location, model string) *vertexBackend {
	return &vertexBackend{project: project, location: location, model: model}
}

func (v *vertexBackend) Name() string {
	return "VertexAI(" + v.model + ")"
}

func (v *vertexBackend) Complete(ctx context.Context, prompt string, jsonMode bool) (string, error) {
	v.once.Do(func() {
		v.client, v.clientErr = vertexai.NewClient(context.WithoutCancel(ctx), v.project, v.location)
	})
	if v.clientErr != nil {
		return "", v.clientErr
	}
	return gemini.Generate(ctx, v.client, v.model, prompt, scriptTemperature, jsonMode)
}

// openAIBackend - chat completion
type openAIBackend struct {
	client *openai.Client
	model  string
}

func newOpenAIBackend(apiKey, model string) *openAIBackend {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &openAIBackend{client: openai.NewClient(apiKey), model: model}
}

func (o *openAIBackend) Name() string {
	return "OpenAI(" + o.model + ")"
}

func (o *openAIBackend) Complete(ctx context.Context, prompt string, jsonMode bool) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		Temperature: scriptTemperature,
	}
	if jsonMode {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("OpenAI returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
