package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/washb22/gunghabnote/internal/completion"
)

const defaultModel = goopenai.GPT4

type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, request goopenai.ChatCompletionRequest) (goopenai.ChatCompletionResponse, error)
}

// Options tune the OpenAI client. Zero values use the public API defaults.
type Options struct {
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

// Client is a completion.Completer backed by the chat completions endpoint.
type Client struct {
	chat      chatCompleter
	modelName string
}

// NewClient builds a chat completions client for the given API key.
func NewClient(apiKey string, opts Options) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("openai api key is required")
	}

	cfg := goopenai.DefaultConfig(apiKey)
	if base := strings.TrimSpace(opts.BaseURL); base != "" {
		cfg.BaseURL = strings.TrimRight(base, "/")
	}
	if opts.HTTPClient != nil {
		cfg.HTTPClient = opts.HTTPClient
	}

	return newClient(goopenai.NewClientWithConfig(cfg), opts.Model), nil
}

func newClient(chat chatCompleter, model string) *Client {
	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}
	return &Client{chat: chat, modelName: model}
}

// Complete sends one system and one user message and returns the first choice.
func (c *Client) Complete(ctx context.Context, prompt completion.Prompt) (string, error) {
	if c == nil || c.chat == nil {
		return "", errors.New("openai client is not initialized")
	}

	user := strings.TrimSpace(prompt.User)
	if user == "" {
		return "", errors.New("prompt must not be empty")
	}

	messages := make([]goopenai.ChatCompletionMessage, 0, 2)
	if system := strings.TrimSpace(prompt.System); system != "" {
		messages = append(messages, goopenai.ChatCompletionMessage{Role: goopenai.ChatMessageRoleSystem, Content: system})
	}
	messages = append(messages, goopenai.ChatCompletionMessage{Role: goopenai.ChatMessageRoleUser, Content: user})

	resp, err := c.chat.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model:       c.modelName,
		Messages:    messages,
		MaxTokens:   prompt.MaxTokens,
		Temperature: prompt.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("create chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: no choices: %w", completion.ErrEmptyResponse)
	}

	output := strings.TrimSpace(resp.Choices[0].Message.Content)
	if output == "" {
		return "", fmt.Errorf("openai: %w", completion.ErrEmptyResponse)
	}

	return output, nil
}

func (c *Client) Model() string {
	if c == nil {
		return ""
	}
	return c.modelName
}
