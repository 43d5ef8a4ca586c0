package client

import (
	"context"
	"strings"

	"github.com/austiecodes/vera/internal/types"
)

// QueryClient is a high-level client interface for "messages in, stream out" workflows.
// It keeps the engine and retrieval code free of provider-specific request types.
type QueryClient interface {
	// ChatStreamMessages streams the response for an ordered message list.
	// Providers must preserve message order and roles.
	ChatStreamMessages(ctx context.Context, model types.Model, msgs []types.Message) (StreamResponse, error)
	// ListModels lists models available to this client/provider.
	ListModels(ctx context.Context) ([]string, error)
}

// StreamResponse is the interface for streaming chat responses
type StreamResponse interface {
	// Next advances to the next chunk, returns true if there is more data
	Next() bool
	// GetChunk returns the content of the current chunk
	GetChunk() string
	// Err returns any error encountered during iteration
	Err() error
	// Close closes the stream and releases resources
	Close() error
}

// CollectStream drains the stream and returns the concatenated text.
// The stream is always closed. Partial text is discarded on error.
func CollectStream(stream StreamResponse) (string, error) {
	defer stream.Close()

	var sb strings.Builder
	for stream.Next() {
		sb.WriteString(stream.GetChunk())
	}
	if err := stream.Err(); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// Generate sends msgs to the model and returns the complete reply.
func Generate(ctx context.Context, qc QueryClient, model types.Model, msgs []types.Message) (string, error) {
	stream, err := qc.ChatStreamMessages(ctx, model, msgs)
	if err != nil {
		return "", err
	}
	return CollectStream(stream)
}
