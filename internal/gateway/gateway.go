// Package gateway is the HTTP client for the remote news-chat service.
//
// It exposes the two operations the orchestration layer depends on, a
// conversational query and a per-article summarization, plus a startup
// health probe. The gateway does not retry: callers substitute local
// fallback messages instead.
package gateway

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/abelbrown/newschat/internal/logging"
	"github.com/abelbrown/newschat/internal/store"
)

// QueryResult is the reconciled outcome of a conversational query.
type QueryResult struct {
	Message  string
	Articles []store.Article
}

// Client talks to the news-chat service.
type Client struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
}

// New creates a Client for the service at baseURL. requestsPerMinute throttles
// outgoing calls client-side; the backend rides a metered news API quota.
func New(baseURL string, timeout time.Duration, requestsPerMinute int) *Client {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 30
	}
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), 1),
	}
}

// SetLimiter replaces the rate limiter (tests use rate.Inf).
func (c *Client) SetLimiter(l *rate.Limiter) { c.limiter = l }

// wireTurn is the conversation_history entry shape the service expects.
type wireTurn struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"` // "user" or "ai"
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// wireArticle is the article shape on both query responses and summarize
// requests.
type wireArticle struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Source      string `json:"source"`
	PublishedAt string `json:"publishedAt"`
	AISummary   string `json:"aiSummary,omitempty"`
}

type queryRequest struct {
	Message             string     `json:"message"`
	ConversationHistory []wireTurn `json:"conversation_history"`
}

type queryResponse struct {
	Message  *string       `json:"message"`
	Articles []wireArticle `json:"articles"`
}

type summarizeRequest struct {
	Article wireArticle `json:"article"`
}

type summarizeResponse struct {
	Summary *string `json:"summary"`
}

// Query sends a conversational message with bounded history and returns the
// service's narrative reply plus any retrieved articles.
func (c *Client) Query(ctx context.Context, message string, history []store.Turn) (QueryResult, error) {
	reqBody := queryRequest{
		Message:             message,
		ConversationHistory: toWireTurns(history),
	}

	body, err := c.post(ctx, "query", "/api/chat", reqBody)
	if err != nil {
		return QueryResult{}, err
	}

	var resp queryResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return QueryResult{}, &MalformedResponseError{Op: "query", Err: err}
	}
	if resp.Message == nil {
		return QueryResult{}, &MalformedResponseError{Op: "query", Field: "message"}
	}

	articles := make([]store.Article, 0, len(resp.Articles))
	for _, wa := range resp.Articles {
		articles = append(articles, fromWireArticle(wa))
	}

	logging.Debug("query resolved", "message_len", len(*resp.Message), "articles", len(articles))
	return QueryResult{Message: *resp.Message, Articles: articles}, nil
}

// Summarize requests an on-demand AI summary for a single article.
func (c *Client) Summarize(ctx context.Context, article store.Article) (string, error) {
	reqBody := summarizeRequest{Article: toWireArticle(article)}

	body, err := c.post(ctx, "summarize", "/api/summarize", reqBody)
	if err != nil {
		return "", err
	}

	var resp summarizeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", &MalformedResponseError{Op: "summarize", Err: err}
	}
	if resp.Summary == nil {
		return "", &MalformedResponseError{Op: "summarize", Field: "summary"}
	}

	logging.Debug("summarize resolved", "article", article.ID, "summary_len", len(*resp.Summary))
	return *resp.Summary, nil
}

// Health probes the service's health endpoint. Used at startup for a log
// line only; the app runs degraded rather than refusing to start.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("gateway: failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return &TransportError{Op: "health", Err: err}
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return &TransportError{Op: "health", Status: resp.StatusCode}
	}
	return nil
}

// post marshals reqBody, issues the request through the rate limiter, and
// returns the response body for 2xx statuses.
func (c *Client) post(ctx context.Context, op, path string, reqBody any) ([]byte, error) {
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("gateway: failed to marshal request: %w", err)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("gateway: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		logging.Error("request failed", "op", op, "error", err)
		return nil, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logging.Error("service error", "op", op, "status", resp.StatusCode, "body_len", len(body))
		return nil, &TransportError{Op: op, Status: resp.StatusCode}
	}

	return body, nil
}

func toWireTurns(history []store.Turn) []wireTurn {
	wire := make([]wireTurn, 0, len(history))
	for _, t := range history {
		typ := "user"
		if t.Role == store.RoleAssistant {
			typ = "ai"
		}
		wire = append(wire, wireTurn{
			ID:        t.ID,
			Type:      typ,
			Content:   t.Text,
			Timestamp: t.CreatedAt,
		})
	}
	return wire
}

func toWireArticle(a store.Article) wireArticle {
	return wireArticle{
		ID:          a.ID,
		Title:       a.Title,
		Description: a.Description,
		URL:         a.URL,
		Source:      a.SourceName,
		PublishedAt: a.PublishedAt.Format(time.RFC3339),
		AISummary:   a.AISummary,
	}
}

// fromWireArticle converts a payload article, stripping any HTML the upstream
// news API left in the description and backfilling a stable id when the
// service omits one.
func fromWireArticle(wa wireArticle) store.Article {
	published, err := time.Parse(time.RFC3339, wa.PublishedAt)
	if err != nil {
		published = time.Now()
	}

	id := wa.ID
	if id == "" {
		id = deriveID(wa.URL, wa.Title)
	}

	return store.Article{
		ID:          id,
		Title:       stripHTML(wa.Title),
		Description: stripHTML(wa.Description),
		SourceName:  wa.Source,
		URL:         wa.URL,
		PublishedAt: published,
	}
}

// deriveID generates a deterministic id from the article's URL and title, so
// the same article maps to the same owned record across queries.
func deriveID(url, title string) string {
	h := sha256.Sum256([]byte(url + "|" + title))
	return hex.EncodeToString(h[:8])
}
