package ollama

import (
	"context"

	"github.com/austiecodes/vera/internal/client"
	"github.com/austiecodes/vera/internal/types"
)

type QueryClient struct {
	c *Client
}

var _ client.QueryClient = (*QueryClient)(nil)

func NewQueryClient(host string) (*QueryClient, error) {
	c, err := NewClient(host)
	if err != nil {
		return nil, err
	}
	return &QueryClient{c: c}, nil
}

func (q *QueryClient) ChatStreamMessages(ctx context.Context, model types.Model, msgs []types.Message) (client.StreamResponse, error) {
	return q.c.ChatStream(ctx, model.ModelID, FromMessages(msgs))
}

func (q *QueryClient) ListModels(ctx context.Context) ([]string, error) {
	return q.c.ListModels(ctx)
}
