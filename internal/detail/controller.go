// Package detail drives the article detail panel: which article is open,
// whether its AI summary is loading, ready, or failed, and how stale
// summary results are reconciled when the user moves on.
package detail

import (
	"context"
	"sync"

	"github.com/abelbrown/newschat/internal/logging"
	"github.com/abelbrown/newschat/internal/store"
)

// summaryApology is shown in place of a summary when generation fails. The
// panel stays usable; the user can dismiss it and reopen to retry.
const summaryApology = "Sorry, I couldn't generate a summary for this article right now."

// Phase is the detail panel's lifecycle.
type Phase int

const (
	// Closed means no article is selected.
	Closed Phase = iota

	// Loading means an article is open and its summary request is in flight.
	Loading

	// Ready means the open article has a summary to show.
	Ready

	// Errored means the summary request failed; the apology text is shown.
	Errored
)

func (p Phase) String() string {
	switch p {
	case Closed:
		return "closed"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Errored:
		return "errored"
	default:
		return "unknown"
	}
}

// Summarizer is the slice of the service client the detail panel needs.
type Summarizer interface {
	Summarize(ctx context.Context, article store.Article) (string, error)
}

// Update is the outcome of a summary request. Applied reports whether the
// panel state changed; a request that finished after the user dismissed the
// panel or opened another article still records its summary but leaves the
// view alone.
type Update struct {
	ArticleID string
	Summary   string
	Gen       int
	Failed    bool
	Applied   bool
}

// Controller owns the detail panel state. A generation counter ties each
// in-flight summary request to the selection that started it, so late
// responses for a stale selection never clobber the current view.
type Controller struct {
	mu sync.Mutex

	store      *store.Store
	summarizer Summarizer

	phase    Phase
	selected store.Article
	summary  string
	gen      int
}

// NewController creates a Controller persisting summaries into st.
func NewController(st *store.Store, summarizer Summarizer) *Controller {
	return &Controller{store: st, summarizer: summarizer}
}

// Phase returns the panel's current phase.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Selected returns the open article and the summary text to display. The
// second value is meaningful only in the Ready and Errored phases.
func (c *Controller) Selected() (store.Article, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selected, c.summary
}

// Select opens the panel on article and returns the generation the caller
// must pass to Summarize. If the article already has a persisted summary the
// panel goes straight to Ready and no request is needed; that case is
// signaled by a negative generation.
func (c *Controller) Select(article store.Article) int {
	if stored, ok, err := c.lookupSummary(article.ID); err == nil && ok {
		c.mu.Lock()
		c.gen++
		c.phase = Ready
		c.selected = article
		c.summary = stored
		c.mu.Unlock()
		logging.Debug("detail opened with cached summary", "article", article.ID)
		return -1
	}

	c.mu.Lock()
	c.gen++
	gen := c.gen
	c.phase = Loading
	c.selected = article
	c.summary = ""
	c.mu.Unlock()

	logging.Info("detail opened", "article", article.ID, "gen", gen)
	return gen
}

// Summarize requests a summary for article and reconciles the result against
// the panel state. Successful summaries are persisted regardless of whether
// the panel still shows this article; write-once semantics in the store keep
// a stale response from overwriting a newer summary.
func (c *Controller) Summarize(ctx context.Context, article store.Article, gen int) Update {
	update := Update{ArticleID: article.ID, Gen: gen}

	summary, err := c.summarizer.Summarize(ctx, article)
	if err != nil {
		logging.Error("summary request failed", "article", article.ID, "error", err)
		update.Failed = true
		update.Summary = summaryApology
	} else {
		update.Summary = summary
		if err := c.store.SetSummary(article.ID, summary); err != nil {
			logging.Warn("failed to persist summary", "article", article.ID, "error", err)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen || c.phase != Loading {
		logging.Debug("stale summary result dropped", "article", article.ID, "gen", gen)
		return update
	}

	if update.Failed {
		c.phase = Errored
	} else {
		c.phase = Ready
	}
	c.summary = update.Summary
	update.Applied = true
	return update
}

// Dismiss closes the panel. Any in-flight request becomes stale and will not
// reopen it.
func (c *Controller) Dismiss() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.phase = Closed
	c.selected = store.Article{}
	c.summary = ""
}

func (c *Controller) lookupSummary(id string) (string, bool, error) {
	article, ok, err := c.store.GetArticle(id)
	if err != nil || !ok || article.AISummary == "" {
		return "", false, err
	}
	return article.AISummary, true, nil
}
