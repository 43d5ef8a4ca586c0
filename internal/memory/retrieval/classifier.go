package retrieval

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/austiecodes/vera/internal/client"
	"github.com/austiecodes/vera/internal/types"
)

// Classifier judges whether a recalled chunk answers a search query.
type Classifier interface {
	IsRelevant(ctx context.Context, query, candidate string) bool
}

// RelevanceClassifier asks the tool model for a yes/no verdict.
type RelevanceClassifier struct {
	queryClient client.QueryClient
	model       types.Model
	timeout     time.Duration
}

var _ Classifier = (*RelevanceClassifier)(nil)

// NewRelevanceClassifier creates a classifier that asks model whether a
// candidate memory answers the query.
func NewRelevanceClassifier(queryClient client.QueryClient, model types.Model, timeout time.Duration) *RelevanceClassifier {
	return &RelevanceClassifier{queryClient: queryClient, model: model, timeout: timeout}
}

// IsRelevant reports true only when the reply contains "yes". A failed
// call counts as not relevant.
func (c *RelevanceClassifier) IsRelevant(ctx context.Context, query, candidate string) bool {
	if c.queryClient == nil {
		return false
	}

	ctx, cancel := withTimeout(ctx, c.timeout)
	defer cancel()

	reply, err := client.Generate(ctx, c.queryClient, c.model, classificationMessages(query, candidate))
	if err != nil {
		slog.Debug("relevance classification failed, treating as irrelevant", "error", err)
		return false
	}
	return strings.Contains(strings.ToLower(strings.TrimSpace(reply)), "yes")
}
