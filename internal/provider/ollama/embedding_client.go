package ollama

import (
	"context"
	"fmt"

	ollama "github.com/ollama/ollama/api"

	"github.com/austiecodes/vera/internal/client"
	"github.com/austiecodes/vera/internal/types"
)

// EmbeddingClient embeds text with a local Ollama embedding model.
type EmbeddingClient struct {
	c *Client
}

var _ client.EmbeddingClient = (*EmbeddingClient)(nil)

func NewEmbeddingClient(host string) (*EmbeddingClient, error) {
	c, err := NewClient(host)
	if err != nil {
		return nil, err
	}
	return &EmbeddingClient{c: c}, nil
}

func (e *EmbeddingClient) Embed(ctx context.Context, model types.Model, text string) ([]float32, error) {
	res, err := e.c.client.Embed(ctx, &ollama.EmbedRequest{
		Model: model.ModelID,
		Input: text,
	})
	if err != nil {
		return nil, fmt.Errorf("ollama embedding failed: %w", err)
	}
	if res == nil || len(res.Embeddings) == 0 || len(res.Embeddings[0]) == 0 {
		return nil, fmt.Errorf("ollama returned empty embedding data")
	}
	return res.Embeddings[0], nil
}

func (e *EmbeddingClient) EmbedBatch(ctx context.Context, model types.Model, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	res, err := e.c.client.Embed(ctx, &ollama.EmbedRequest{
		Model: model.ModelID,
		Input: texts,
	})
	if err != nil {
		return nil, fmt.Errorf("ollama batch embedding failed: %w", err)
	}
	if res == nil || len(res.Embeddings) != len(texts) {
		got := 0
		if res != nil {
			got = len(res.Embeddings)
		}
		return nil, fmt.Errorf("ollama returned %d embeddings, expected %d", got, len(texts))
	}
	return res.Embeddings, nil
}

func (e *EmbeddingClient) Dimensions(model types.Model) int {
	switch model.ModelID {
	case "mxbai-embed-large":
		return 1024
	case "all-minilm":
		return 384
	default:
		return 768
	}
}
