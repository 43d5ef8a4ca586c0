package google

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"

	"google.golang.org/genai"

	"github.com/austiecodes/vera/internal/client"
	"github.com/austiecodes/vera/internal/types"
)

var errNotInitialized = errors.New("google client not initialized")

func textContent(role, text string) *genai.Content {
	return &genai.Content{Role: role, Parts: []*genai.Part{{Text: text}}}
}

// FromMessages converts provider-neutral messages to Gemini contents. System
// messages are folded, in order, into a single system instruction, which is
// nil when there are none.
func FromMessages(msgs []types.Message) ([]*genai.Content, *genai.Content) {
	var contents []*genai.Content
	var systemInstruction *genai.Content

	for _, m := range msgs {
		switch m.Role {
		case types.RoleSystem:
			if systemInstruction == nil {
				systemInstruction = &genai.Content{}
			}
			systemInstruction.Parts = append(systemInstruction.Parts, &genai.Part{Text: m.Content})
		case types.RoleAssistant:
			contents = append(contents, textContent("model", m.Content))
		default:
			contents = append(contents, textContent("user", m.Content))
		}
	}
	return contents, systemInstruction
}

// StreamResponse implements client.StreamResponse
type StreamResponse struct {
	next    func() (*genai.GenerateContentResponse, error, bool)
	stop    func()
	current *genai.GenerateContentResponse
	err     error
}

var _ client.StreamResponse = (*StreamResponse)(nil)

func (s *StreamResponse) Next() bool {
	resp, err, ok := s.next()
	if !ok {
		return false
	}
	if err != nil {
		s.err = err
		return false
	}
	s.current = resp
	return true
}

func (s *StreamResponse) GetChunk() string {
	if s.current != nil && len(s.current.Candidates) > 0 && s.current.Candidates[0].Content != nil && len(s.current.Candidates[0].Content.Parts) > 0 {
		return s.current.Candidates[0].Content.Parts[0].Text
	}
	return ""
}

func (s *StreamResponse) Err() error {
	return s.err
}

func (s *StreamResponse) Close() error {
	if s.stop != nil {
		s.stop()
	}
	return nil
}

type Client struct {
	client *genai.Client
	err    error
}

// NewClient builds a Gemini API client. Construction errors are kept and
// reported by the first call that needs the client.
func NewClient(apiKey, baseURL string) *Client {
	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	c, err := genai.NewClient(context.Background(), cfg)
	if err != nil {
		return &Client{err: fmt.Errorf("%w: %v", errNotInitialized, err)}
	}
	return &Client{client: c}
}

func (c *Client) ready() error {
	if c == nil || c.client == nil {
		if c != nil && c.err != nil {
			return c.err
		}
		return errNotInitialized
	}
	return nil
}

// ChatStream streams a reply for an ordered message list.
func (c *Client) ChatStream(ctx context.Context, modelID string, msgs []types.Message) (client.StreamResponse, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}

	contents, systemInstruction := FromMessages(msgs)
	config := &genai.GenerateContentConfig{SystemInstruction: systemInstruction}

	stream := c.client.Models.GenerateContentStream(ctx, modelID, contents, config)
	next, stop := iter.Pull2(stream)

	return &StreamResponse{
		next: next,
		stop: stop,
	}, nil
}

func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}

	page, err := c.client.Models.List(ctx, nil)
	if err != nil {
		return nil, err
	}
	var models []string
	for _, m := range page.Items {
		models = append(models, strings.TrimPrefix(m.Name, "models/"))
	}
	return models, nil
}
