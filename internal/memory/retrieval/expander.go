package retrieval

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/austiecodes/vera/internal/client"
	"github.com/austiecodes/vera/internal/types"
)

// Expander turns a prompt into search queries.
type Expander interface {
	Expand(ctx context.Context, prompt string) []string
}

// QueryExpander asks the tool model for a list of search queries.
type QueryExpander struct {
	queryClient client.QueryClient
	model       types.Model
	timeout     time.Duration
}

var _ Expander = (*QueryExpander)(nil)

// NewQueryExpander creates an expander. A zero timeout leaves the call
// bounded only by ctx.
func NewQueryExpander(queryClient client.QueryClient, model types.Model, timeout time.Duration) *QueryExpander {
	return &QueryExpander{queryClient: queryClient, model: model, timeout: timeout}
}

// Expand returns at least one query. Any failure, including an unparsable
// reply, yields exactly [prompt].
func (e *QueryExpander) Expand(ctx context.Context, prompt string) []string {
	if e.queryClient == nil {
		return []string{prompt}
	}

	ctx, cancel := withTimeout(ctx, e.timeout)
	defer cancel()

	reply, err := client.Generate(ctx, e.queryClient, e.model, expansionMessages(prompt))
	if err != nil {
		slog.Debug("query expansion failed, using prompt verbatim", "error", err)
		return []string{prompt}
	}

	queries, ok := ParseQueryList(reply)
	if !ok {
		slog.Debug("query expansion reply not a list, using prompt verbatim", "reply", reply)
		return []string{prompt}
	}

	slog.Debug("search queries", "queries", queries)
	return queries
}

// ParseQueryList extracts a list of strings from a model reply. It accepts
// a JSON array, the first bracketed span inside surrounding prose, or a
// Python-style list with single-quoted strings. Blank entries are dropped
// and exact duplicates collapsed. ok is false when nothing usable remains.
func ParseQueryList(reply string) ([]string, bool) {
	reply = strings.TrimSpace(reply)

	candidates := []string{reply}
	if start := strings.Index(reply, "["); start >= 0 {
		if end := strings.LastIndex(reply, "]"); end > start {
			if span := reply[start : end+1]; span != reply {
				candidates = append(candidates, span)
			}
		}
	}

	for _, c := range candidates {
		var items []string
		if err := json.Unmarshal([]byte(c), &items); err == nil {
			return cleanQueries(items)
		}
		if items, ok := parsePythonStringList(c); ok {
			return cleanQueries(items)
		}
	}
	return nil, false
}

func cleanQueries(items []string) ([]string, bool) {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, q := range items {
		q = strings.TrimSpace(q)
		if q == "" {
			continue
		}
		if _, dup := seen[q]; dup {
			continue
		}
		seen[q] = struct{}{}
		out = append(out, q)
	}
	return out, len(out) > 0
}

// parsePythonStringList parses a list literal whose elements are single- or
// double-quoted strings, such as ['a', "b's"]. A trailing comma is allowed.
func parsePythonStringList(s string) ([]string, bool) {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != '[' || s[len(s)-1] != ']' {
		return nil, false
	}
	body := s[1 : len(s)-1]

	var out []string
	i := 0
	skipSpace := func() {
		for i < len(body) && strings.ContainsRune(" \t\r\n", rune(body[i])) {
			i++
		}
	}

	for {
		skipSpace()
		if i >= len(body) {
			return out, true
		}
		quote := body[i]
		if quote != '\'' && quote != '"' {
			return nil, false
		}
		i++

		var sb strings.Builder
		closed := false
		for i < len(body) {
			c := body[i]
			if c == '\\' && i+1 < len(body) {
				sb.WriteByte(unescape(body[i+1]))
				i += 2
				continue
			}
			i++
			if c == quote {
				closed = true
				break
			}
			sb.WriteByte(c)
		}
		if !closed {
			return nil, false
		}
		out = append(out, sb.String())

		skipSpace()
		if i >= len(body) {
			return out, true
		}
		if body[i] != ',' {
			return nil, false
		}
		i++
	}
}

func unescape(c byte) byte {
	switch c {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	default:
		return c
	}
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
