package openai

import (
	"context"
	"fmt"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/contractlens/ragcheck/internal/llm"
)

type Client struct {
	Client  *goopenai.Client
	ModelID string
}

func NewClient(apiKey string, model string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	if model == "" {
		return nil, fmt.Errorf("OpenAI model ID is required")
	}

	return &Client{
		Client:  goopenai.NewClient(apiKey),
		ModelID: model,
	}, nil
}

func (c *Client) InvokeModel(ctx context.Context, request llm.Request) (*llm.Response, error) {
	resp, err := c.Client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: c.ModelID,
		Messages: []goopenai.ChatCompletionMessage{
			{
				Role:    goopenai.ChatMessageRoleUser,
				Content: request.Prompt,
			},
		},
		MaxTokens:   request.MaxTokens,
		Temperature: float32(request.Temperature),
	})
	if err != nil {
		return nil, fmt.Errorf("unable to invoke openai model: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}

	choice := resp.Choices[0]
	return &llm.Response{
		Content:    choice.Message.Content,
		StopReason: string(choice.FinishReason),
	}, nil
}

// InvokeModelWithRetry relies on the SDK's built-in retry behavior.
func (c *Client) InvokeModelWithRetry(ctx context.Context, request llm.Request) (*llm.Response, error) {
	return c.InvokeModel(ctx, request)
}
