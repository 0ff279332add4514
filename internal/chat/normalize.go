package chat

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/abelbrown/newschat/internal/gateway"
	"github.com/abelbrown/newschat/internal/logging"
	"github.com/abelbrown/newschat/internal/store"
)

// Gateway is the slice of the service client the chat layer needs.
type Gateway interface {
	Query(ctx context.Context, message string, history []store.Turn) (gateway.QueryResult, error)
}

// CleanupPolicy decides whether a raw service reply is display-ready or needs
// to be rewritten into a short acknowledgement. It is a value, not inline
// conditionals, so the heuristic can be swapped without touching the
// orchestration.
type CleanupPolicy struct {
	MaxChars int

	urlRe  *regexp.Regexp
	listRe *regexp.Regexp
}

// DefaultCleanupPolicy flags replies that embed URLs, run past maxChars, or
// contain a numbered list. Each is a sign the model dumped article details
// into the narrative instead of acknowledging the search.
func DefaultCleanupPolicy(maxChars int) CleanupPolicy {
	if maxChars <= 0 {
		maxChars = 200
	}
	return CleanupPolicy{
		MaxChars: maxChars,
		urlRe:    regexp.MustCompile(`https?://`),
		listRe:   regexp.MustCompile(`\d+\. `),
	}
}

// NeedsCleanup reports whether msg should be regenerated before display.
func (p CleanupPolicy) NeedsCleanup(msg string) bool {
	return p.urlRe.MatchString(msg) || len(msg) > p.MaxChars || p.listRe.MatchString(msg)
}

// Normalizer reconciles raw service replies into clean display messages.
type Normalizer struct {
	gateway Gateway
	policy  CleanupPolicy
}

// NewNormalizer creates a Normalizer that uses gw for cleanup calls.
func NewNormalizer(gw Gateway, policy CleanupPolicy) *Normalizer {
	return &Normalizer{gateway: gw, policy: policy}
}

// Normalize returns the user-visible assistant text for a raw reply.
//
// With no articles there is nothing to summarize display-wise, so the raw
// message passes through untouched. Otherwise a flagged message triggers a
// secondary stateless query for a short acknowledgement; if that call fails
// too, a deterministic local template keeps the reply coherent. The cleanup
// call is never recorded as a conversation turn.
func (n *Normalizer) Normalize(ctx context.Context, raw string, articles []store.Article, userInput string) string {
	if len(articles) == 0 {
		return raw
	}

	if !n.policy.NeedsCleanup(raw) {
		return raw
	}

	logging.Debug("reply flagged for cleanup", "len", len(raw), "articles", len(articles))

	// Empty history keeps the full conversation out of a meta-instruction
	// prompt.
	prompt := fmt.Sprintf(
		"Generate a brief, clean response (max 50 words) for someone who asked: %q. "+
			"I found %d articles. Don't list article details, just acknowledge the search "+
			"and mention the articles are displayed below.",
		userInput, len(articles),
	)

	result, err := n.gateway.Query(ctx, prompt, nil)
	if err != nil {
		logging.Warn("cleanup call failed, using local template", "error", err)
		return FallbackMessage(userInput, len(articles))
	}

	return result.Message
}

// topicBuckets maps input substrings to coarse display topics.
var topicBuckets = []struct {
	substr string
	topic  string
}{
	{"tech", "technology"},
	{"sport", "sports"},
	{"climate", "climate"},
}

// FallbackMessage synthesizes the local acknowledgement used when the cleanup
// call fails.
//
// Known approximation carried over from the original behavior: the topic is
// inferred from the user's input while the count comes from the primary
// response, so if the service returned articles about something else the
// message can name the wrong topic.
func FallbackMessage(userInput string, count int) string {
	topic := "your topic"
	lower := strings.ToLower(userInput)
	for _, b := range topicBuckets {
		if strings.Contains(lower, b.substr) {
			topic = b.topic
			break
		}
	}

	return fmt.Sprintf(
		"I found %d recent articles about %s. You can browse through them below and click on any article for an AI summary.",
		count, topic,
	)
}
