// Package agent holds the AI provider clients behind the consumer-side
// interfaces declared in internal/triage.
package agent

import (
	"bytes"
	"context"
	"errors"
	"os"

	openai "github.com/sashabaranov/go-openai"

	"github.com/carebow/triage-engine/internal/triage"
)

// OpenAIClient backs both the chat-completion and transcription
// collaborators. API key and model names come from the environment.
type OpenAIClient struct {
	client    *openai.Client
	chatModel string
}

func NewOpenAIClient() *OpenAIClient {
	apiKey := os.Getenv("OPENAI_API_KEY")

	chatModel := os.Getenv("OPENAI_MODEL_CHAT")
	if chatModel == "" {
		chatModel = "gpt-4o-mini"
	}

	return &OpenAIClient{
		client:    openai.NewClient(apiKey),
		chatModel: chatModel,
	}
}

// Chat sends the message history to the chat completion API and returns the
// assistant's reply.
func (c *OpenAIClient) Chat(ctx context.Context, messages []triage.Message) (string, error) {
	if c.client == nil {
		return "", errors.New("openai client not initialized")
	}

	oaMsgs := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		role := m.Role
		if role != openai.ChatMessageRoleSystem && role != openai.ChatMessageRoleUser && role != openai.ChatMessageRoleAssistant {
			role = openai.ChatMessageRoleUser
		}
		oaMsgs = append(oaMsgs, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.chatModel,
		Messages:    oaMsgs,
		Temperature: 0.3,
		MaxTokens:   1500,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

// Transcribe runs Whisper speech-to-text over the uploaded audio bytes.
func (c *OpenAIClient) Transcribe(ctx context.Context, audioData []byte) (string, error) {
	if c.client == nil {
		return "", errors.New("openai client not initialized")
	}

	resp, err := c.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: "audio.wav",
		Reader:   bytes.NewReader(audioData),
	})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}
