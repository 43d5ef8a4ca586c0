package anthropic

import (
	"context"
	"slices"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/ssestream"

	"github.com/austiecodes/vera/internal/client"
	"github.com/austiecodes/vera/internal/types"
)

const defaultMaxTokens = 1024

// SplitSystem separates system messages from the conversational turns.
// Anthropic takes the system prompt as a request parameter, so every system
// message is joined, in order, into that single prompt.
func SplitSystem(msgs []types.Message) (string, []anthropic.MessageParam) {
	var system []string
	turns := make([]anthropic.MessageParam, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case types.RoleSystem:
			system = append(system, m.Content)
		case types.RoleAssistant:
			turns = append(turns, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		default:
			turns = append(turns, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}
	return strings.Join(system, "\n\n"), turns
}

// newParams builds a Messages request for an ordered message list.
func newParams(modelID string, msgs []types.Message) anthropic.MessageNewParams {
	system, turns := SplitSystem(msgs)
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(modelID),
		MaxTokens: defaultMaxTokens,
		Messages:  turns,
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}
	return params
}

// StreamResponse embeds Anthropic stream and implements client.StreamResponse
type StreamResponse struct {
	stream  *ssestream.Stream[anthropic.MessageStreamEventUnion]
	current anthropic.MessageStreamEventUnion
}

var _ client.StreamResponse = (*StreamResponse)(nil)

func (s *StreamResponse) Next() bool {
	if s.stream.Next() {
		s.current = s.stream.Current()
		return true
	}
	return false
}

// GetChunk returns the text delta of the current event, if any.
func (s *StreamResponse) GetChunk() string {
	if s.current.Type == "content_block_delta" {
		return s.current.AsContentBlockDelta().Delta.Text
	}
	return ""
}

func (s *StreamResponse) Err() error {
	return s.stream.Err()
}

func (s *StreamResponse) Close() error {
	return s.stream.Close()
}

// Client is an Anthropic API client
type Client struct {
	client *anthropic.Client
}

// NewClient creates a new Anthropic client
func NewClient(apiKey, baseURL string) *Client {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	c := anthropic.NewClient(opts...)
	return &Client{client: &c}
}

// ChatStream calls the Anthropic Messages API in streaming mode.
func (c *Client) ChatStream(ctx context.Context, params anthropic.MessageNewParams) client.StreamResponse {
	return &StreamResponse{stream: c.client.Messages.NewStreaming(ctx, params)}
}

// ListModels fetches available models from the Anthropic API
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	page, err := c.client.Models.List(ctx, anthropic.ModelListParams{})
	if err != nil {
		return nil, err
	}

	var models []string
	for _, m := range page.Data {
		models = append(models, m.ID)
	}
	slices.Sort(models)
	return models, nil
}
