package ollama

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"time"

	ollama "github.com/ollama/ollama/api"

	"github.com/austiecodes/vera/internal/client"
	"github.com/austiecodes/vera/internal/consts"
	"github.com/austiecodes/vera/internal/types"
)

// FromMessages converts provider-neutral messages. Ollama accepts system
// messages anywhere in the list, so roles map one to one.
func FromMessages(msgs []types.Message) []ollama.Message {
	out := make([]ollama.Message, len(msgs))
	for i, m := range msgs {
		out[i] = ollama.Message{Role: string(m.Role), Content: m.Content}
	}
	return out
}

// StreamResponse adapts Ollama's callback streaming to client.StreamResponse.
type StreamResponse struct {
	chunks  chan string
	cancel  context.CancelFunc
	current string
	err     error
}

func (s *StreamResponse) Next() bool {
	chunk, ok := <-s.chunks
	if !ok {
		return false
	}
	s.current = chunk
	return true
}

func (s *StreamResponse) GetChunk() string {
	return s.current
}

// Err is only meaningful once Next has returned false.
func (s *StreamResponse) Err() error {
	return s.err
}

func (s *StreamResponse) Close() error {
	s.cancel()
	for range s.chunks {
	}
	return nil
}

// Client is an Ollama API client.
type Client struct {
	client *ollama.Client
}

// NewClient creates a client for the Ollama server at host.
func NewClient(host string) (*Client, error) {
	if host == "" {
		host = consts.DefaultOllamaHost
	}
	u, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("invalid ollama host %q: %w", host, err)
	}
	httpClient := &http.Client{Timeout: 5 * time.Minute}
	return &Client{client: ollama.NewClient(u, httpClient)}, nil
}

// ChatStream starts a streaming chat call. Chunks are delivered in order;
// the producing goroutine exits when the reply completes or Close is called.
func (c *Client) ChatStream(ctx context.Context, model string, msgs []ollama.Message) (client.StreamResponse, error) {
	ctx, cancel := context.WithCancel(ctx)
	s := &StreamResponse{chunks: make(chan string), cancel: cancel}
	req := &ollama.ChatRequest{Model: model, Messages: msgs}

	go func() {
		defer close(s.chunks)
		s.err = c.client.Chat(ctx, req, func(resp ollama.ChatResponse) error {
			if resp.Message.Content == "" {
				return nil
			}
			select {
			case s.chunks <- resp.Message.Content:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
	}()

	return s, nil
}

// ListModels returns the locally available model names.
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	resp, err := c.client.List(ctx)
	if err != nil {
		return nil, err
	}
	models := make([]string, 0, len(resp.Models))
	for _, m := range resp.Models {
		models = append(models, m.Name)
	}
	slices.Sort(models)
	return models, nil
}
