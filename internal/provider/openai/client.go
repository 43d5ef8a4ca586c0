package openai

import (
	"context"
	"slices"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/ssestream"

	"github.com/austiecodes/vera/internal/client"
	"github.com/austiecodes/vera/internal/types"
)

// FromMessages converts provider-neutral messages, keeping their order.
func FromMessages(msgs []types.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case types.RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case types.RoleAssistant:
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}

// StreamResponse embeds OpenAI stream and implements client.StreamResponse
type StreamResponse struct {
	stream  *ssestream.Stream[openai.ChatCompletionChunk]
	current openai.ChatCompletionChunk
}

var _ client.StreamResponse = (*StreamResponse)(nil)

// Next advances to the next chunk
func (s *StreamResponse) Next() bool {
	if s.stream.Next() {
		s.current = s.stream.Current()
		return true
	}
	return false
}

// GetChunk returns the content of the current chunk
func (s *StreamResponse) GetChunk() string {
	if len(s.current.Choices) > 0 {
		return s.current.Choices[0].Delta.Content
	}
	return ""
}

func (s *StreamResponse) Err() error {
	return s.stream.Err()
}

func (s *StreamResponse) Close() error {
	return s.stream.Close()
}

// Client is an OpenAI API client. baseURL points it at any compatible server.
type Client struct {
	client openai.Client
}

func NewClient(apiKey, baseURL string) *Client {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &Client{client: openai.NewClient(opts...)}
}

// ChatStream calls the Chat Completions API in streaming mode.
func (c *Client) ChatStream(ctx context.Context, modelID string, msgs []types.Message) client.StreamResponse {
	stream := c.client.Chat.Completions.NewStreaming(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(modelID),
		Messages: FromMessages(msgs),
	})
	return &StreamResponse{stream: stream}
}

// ListModels fetches available models from the OpenAI API
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	page, err := c.client.Models.List(ctx)
	if err != nil {
		return nil, err
	}

	var models []string
	for _, model := range page.Data {
		models = append(models, model.ID)
	}

	slices.Sort(models)
	return models, nil
}
