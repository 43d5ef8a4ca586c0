package openai

import (
	"context"

	"github.com/austiecodes/vera/internal/client"
	"github.com/austiecodes/vera/internal/types"
)

type QueryClient struct {
	c *Client
}

var _ client.QueryClient = (*QueryClient)(nil)

func NewQueryClient(apiKey, baseURL string) *QueryClient {
	return &QueryClient{c: NewClient(apiKey, baseURL)}
}

func (q *QueryClient) ChatStreamMessages(ctx context.Context, model types.Model, msgs []types.Message) (client.StreamResponse, error) {
	return q.c.ChatStream(ctx, model.ModelID, msgs), nil
}

func (q *QueryClient) ListModels(ctx context.Context) ([]string, error) {
	return q.c.ListModels(ctx)
}
