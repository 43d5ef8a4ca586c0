package engine

import (
	"time"

	"github.com/austiecodes/vera/internal/consts"
)

// DefaultSystemPrompt seeds every conversation window.
const DefaultSystemPrompt = "You are Vera, an AI assistant with memory of past conversations with this user. " +
	"Always focus on the current user prompt. " +
	"Use past conversation context only if it is directly relevant. " +
	"Do not mention or explain that you are recalling past conversations. " +
	"Do not repeat past conversations verbatim. " +
	"Respond naturally, clearly, and helpfully, using any relevant past information only when it is truly useful."

// DefaultRebuildBackoff is the base delay between embedding retries while
// the memory index is built.
const DefaultRebuildBackoff = 2 * time.Second

type options struct {
	systemPrompt    string
	forgetCommand   string
	callTimeout     time.Duration
	resultsPerQuery int
	corpusK         int
	rebuildRetries  int
	rebuildBackoff  time.Duration
	onRecall        func(memories, references int)
}

func defaultOptions() options {
	return options{
		systemPrompt:    DefaultSystemPrompt,
		forgetCommand:   consts.ForgetCommand,
		callTimeout:     60 * time.Second,
		resultsPerQuery: 2,
		corpusK:         5,
		rebuildRetries:  2,
		rebuildBackoff:  DefaultRebuildBackoff,
	}
}

// Option configures an Engine.
type Option func(*options)

// WithSystemPrompt replaces the persona message that seeds the window.
func WithSystemPrompt(prompt string) Option {
	return func(o *options) { o.systemPrompt = prompt }
}

// WithForgetCommand sets the prefix that triggers forgetting the last exchange.
func WithForgetCommand(cmd string) Option {
	return func(o *options) {
		if cmd != "" {
			o.forgetCommand = cmd
		}
	}
}

// WithCallTimeout bounds every external call. Zero disables the bound.
func WithCallTimeout(d time.Duration) Option {
	return func(o *options) { o.callTimeout = d }
}

// WithResultsPerQuery sets k for each memory search.
func WithResultsPerQuery(k int) Option {
	return func(o *options) {
		if k > 0 {
			o.resultsPerQuery = k
		}
	}
}

// WithCorpusK sets how many reference passages are fetched per prompt.
func WithCorpusK(k int) Option {
	return func(o *options) { o.corpusK = k }
}

// WithRebuildRetries sets how often a failed embedding is retried while
// building the memory index, and the base backoff between attempts.
func WithRebuildRetries(n int, backoff time.Duration) Option {
	return func(o *options) {
		o.rebuildRetries = n
		o.rebuildBackoff = backoff
	}
}

// WithRecallObserver is called after every recall with the number of
// memories and reference passages injected.
func WithRecallObserver(fn func(memories, references int)) Option {
	return func(o *options) { o.onRecall = fn }
}
