// Package chat implements the conversation orchestration: classifying user
// intent, sequencing calls to the remote service, reconciling replies into
// clean display messages, and keeping the append-only transcript consistent.
package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/abelbrown/newschat/internal/gateway"
	"github.com/abelbrown/newschat/internal/logging"
	"github.com/abelbrown/newschat/internal/store"
)

// apologyMessage is appended as the assistant turn when the primary query
// fails for any reason. A submitted user turn is never left without a
// response.
const apologyMessage = "Sorry, I'm having trouble connecting to the news service. Please try again."

// state is the conversation's submission state machine. Modeling the guard
// as explicit states (rather than an ad-hoc bool) keeps double-submit bugs
// unit-testable.
type state int

const (
	stateIdle state = iota
	statePending
)

// Submission is an accepted submit, captured between the synchronous phase
// (user turn appended, guard taken) and Resolve.
type Submission struct {
	Input    string
	Intent   Intent
	UserTurn store.Turn

	history []store.Turn
}

// Conversation owns the transcript and the single-in-flight-query guard.
type Conversation struct {
	mu    sync.Mutex
	state state

	store      *store.Store
	gateway    Gateway
	normalizer *Normalizer
	ids        IDSource
	clock      func() time.Time

	historyLimit int
}

// Option configures a Conversation.
type Option func(*Conversation)

// WithClock overrides the timestamp source (tests).
func WithClock(clock func() time.Time) Option {
	return func(c *Conversation) { c.clock = clock }
}

// WithHistoryLimit bounds the turns of context sent with each query.
func WithHistoryLimit(limit int) Option {
	return func(c *Conversation) {
		if limit > 0 {
			c.historyLimit = limit
		}
	}
}

// New creates a Conversation backed by st, querying through gw.
func New(st *store.Store, gw Gateway, normalizer *Normalizer, ids IDSource, opts ...Option) *Conversation {
	c := &Conversation{
		store:        st,
		gateway:      gw,
		normalizer:   normalizer,
		ids:          ids,
		clock:        time.Now,
		historyLimit: 10,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Pending reports whether a query is outstanding.
func (c *Conversation) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == statePending
}

// Turns returns the transcript, oldest-first.
func (c *Conversation) Turns() []store.Turn {
	turns, err := c.store.Turns()
	if err != nil {
		logging.Error("failed to read transcript", "error", err)
		return nil
	}
	return turns
}

// Submit is the synchronous half of a submission: it validates the input,
// takes the pending guard, classifies the intent, and appends the user turn.
// It returns false, with no state change, while a query is already pending
// or when the input is blank.
//
// An accepted Submission must be passed to Resolve, which releases the guard.
func (c *Conversation) Submit(input string) (Submission, bool) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return Submission{}, false
	}

	c.mu.Lock()
	if c.state == statePending {
		c.mu.Unlock()
		logging.Debug("submit rejected, query pending")
		return Submission{}, false
	}
	c.state = statePending
	c.mu.Unlock()

	// Context for the query excludes the turn being submitted; the service
	// receives the new message separately.
	history, err := c.store.RecentTurns(c.historyLimit)
	if err != nil {
		logging.Error("failed to read history", "error", err)
		history = nil
	}

	priorArticles, err := c.store.ArticleCount()
	if err != nil {
		logging.Error("failed to count articles", "error", err)
	}

	intent := Classify(trimmed, priorArticles > 0)
	logging.Info("submission accepted", "intent", intent, "prior_articles", priorArticles)

	userTurn := store.Turn{
		ID:        c.ids.NextID(),
		Role:      store.RoleUser,
		Text:      trimmed,
		Intent:    string(intent),
		CreatedAt: c.clock(),
	}
	if err := c.store.AppendTurn(userTurn); err != nil {
		logging.Error("failed to append user turn", "error", err)
	}

	return Submission{
		Input:    trimmed,
		Intent:   intent,
		UserTurn: userTurn,
		history:  history,
	}, true
}

// Resolve runs the query pipeline for an accepted submission and appends
// exactly one assistant turn, then releases the pending guard. Failures of
// the primary query become the fixed apology turn; Resolve itself never
// fails.
func (c *Conversation) Resolve(ctx context.Context, sub Submission) store.Turn {
	text := apologyMessage
	var articles []store.Article

	result, err := c.gateway.Query(ctx, sub.Input, sub.history)
	if err != nil {
		var transport *gateway.TransportError
		var malformed *gateway.MalformedResponseError
		switch {
		case errors.As(err, &transport):
			logging.Error("primary query transport failure", "error", err)
		case errors.As(err, &malformed):
			logging.Error("primary query malformed response", "error", err)
		default:
			logging.Error("primary query failed", "error", err)
		}
	} else {
		text = c.normalizer.Normalize(ctx, result.Message, result.Articles, sub.Input)
		articles = result.Articles
	}

	assistantTurn := store.Turn{
		ID:        c.ids.NextID(),
		Role:      store.RoleAssistant,
		Text:      text,
		CreatedAt: c.clock(),
		Articles:  articles,
	}
	if err := c.store.AppendTurn(assistantTurn); err != nil {
		logging.Error("failed to append assistant turn", "error", err)
	}

	c.mu.Lock()
	c.state = stateIdle
	c.mu.Unlock()

	return assistantTurn
}
