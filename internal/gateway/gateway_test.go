package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/abelbrown/newschat/internal/store"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := New(server.URL, 5*time.Second, 30)
	client.SetLimiter(rate.NewLimiter(rate.Inf, 1))
	return client, server
}

func TestQueryRoundTrip(t *testing.T) {
	var gotReq queryRequest
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("path = %q, want /api/chat", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("method = %q, want POST", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}

		json.NewEncoder(w).Encode(map[string]any{
			"message": "Here are some articles.",
			"articles": []map[string]any{
				{
					"id":          "a1",
					"title":       "Big Story",
					"description": "Something happened.",
					"url":         "https://example.com/big",
					"source":      "Example Wire",
					"publishedAt": "2025-06-01T10:00:00Z",
				},
			},
		})
	})

	history := []store.Turn{
		{ID: "t1", Role: store.RoleUser, Text: "hi", CreatedAt: time.Now()},
		{ID: "t2", Role: store.RoleAssistant, Text: "hello", CreatedAt: time.Now()},
	}

	result, err := client.Query(context.Background(), "tech news", history)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}

	if result.Message != "Here are some articles." {
		t.Errorf("message = %q", result.Message)
	}
	if len(result.Articles) != 1 {
		t.Fatalf("articles = %d, want 1", len(result.Articles))
	}
	a := result.Articles[0]
	if a.ID != "a1" || a.SourceName != "Example Wire" {
		t.Errorf("article mapped wrong: %+v", a)
	}
	if !a.PublishedAt.Equal(time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("publishedAt = %v", a.PublishedAt)
	}

	// Wire request carries the history with role mapped to type
	if gotReq.Message != "tech news" {
		t.Errorf("request message = %q", gotReq.Message)
	}
	if len(gotReq.ConversationHistory) != 2 {
		t.Fatalf("history length = %d", len(gotReq.ConversationHistory))
	}
	if gotReq.ConversationHistory[0].Type != "user" || gotReq.ConversationHistory[1].Type != "ai" {
		t.Errorf("history types = %q, %q",
			gotReq.ConversationHistory[0].Type, gotReq.ConversationHistory[1].Type)
	}
}

func TestQueryServerError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	_, err := client.Query(context.Background(), "tech news", nil)
	var transport *TransportError
	if !errors.As(err, &transport) {
		t.Fatalf("want TransportError, got %T: %v", err, err)
	}
	if transport.Status != http.StatusInternalServerError {
		t.Errorf("status = %d", transport.Status)
	}
}

func TestQueryMissingMessage(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"articles": []}`))
	})

	_, err := client.Query(context.Background(), "tech news", nil)
	var malformed *MalformedResponseError
	if !errors.As(err, &malformed) {
		t.Fatalf("want MalformedResponseError, got %T: %v", err, err)
	}
	if malformed.Field != "message" {
		t.Errorf("field = %q", malformed.Field)
	}
}

func TestQueryInvalidJSON(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`))
	})

	_, err := client.Query(context.Background(), "tech news", nil)
	var malformed *MalformedResponseError
	if !errors.As(err, &malformed) {
		t.Fatalf("want MalformedResponseError, got %T: %v", err, err)
	}
}

func TestQueryConnectionRefused(t *testing.T) {
	client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	server.Close()

	_, err := client.Query(context.Background(), "tech news", nil)
	var transport *TransportError
	if !errors.As(err, &transport) {
		t.Fatalf("want TransportError, got %T: %v", err, err)
	}
}

func TestSummarizeRoundTrip(t *testing.T) {
	var gotReq summarizeRequest
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/summarize" {
			t.Errorf("path = %q, want /api/summarize", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]string{"summary": "A concise summary."})
	})

	article := store.Article{
		ID:          "a1",
		Title:       "Big Story",
		URL:         "https://example.com/big",
		SourceName:  "Example Wire",
		PublishedAt: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
	}

	summary, err := client.Summarize(context.Background(), article)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if summary != "A concise summary." {
		t.Errorf("summary = %q", summary)
	}
	if gotReq.Article.ID != "a1" || gotReq.Article.Source != "Example Wire" {
		t.Errorf("request article mapped wrong: %+v", gotReq.Article)
	}
}

func TestSummarizeMissingSummary(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})

	_, err := client.Summarize(context.Background(), store.Article{ID: "a1"})
	var malformed *MalformedResponseError
	if !errors.As(err, &malformed) {
		t.Fatalf("want MalformedResponseError, got %T: %v", err, err)
	}
	if malformed.Field != "summary" {
		t.Errorf("field = %q", malformed.Field)
	}
}

func TestHealth(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Errorf("path = %q, want /health", r.URL.Path)
		}
		w.Write([]byte(`{"status":"ok"}`))
	})

	if err := client.Health(context.Background()); err != nil {
		t.Errorf("Health: %v", err)
	}
}

func TestHealthDown(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	err := client.Health(context.Background())
	var transport *TransportError
	if !errors.As(err, &transport) {
		t.Fatalf("want TransportError, got %T: %v", err, err)
	}
}

func TestFromWireArticleDerivesID(t *testing.T) {
	a := fromWireArticle(wireArticle{
		Title: "No ID Story",
		URL:   "https://example.com/no-id",
	})
	if a.ID == "" {
		t.Fatal("missing id should be derived")
	}

	b := fromWireArticle(wireArticle{
		Title: "No ID Story",
		URL:   "https://example.com/no-id",
	})
	if a.ID != b.ID {
		t.Errorf("derived id should be stable: %q vs %q", a.ID, b.ID)
	}
}

func TestFromWireArticleBadDate(t *testing.T) {
	a := fromWireArticle(wireArticle{ID: "a1", Title: "T", PublishedAt: "yesterday-ish"})
	if a.PublishedAt.IsZero() {
		t.Error("unparseable date should fall back to a usable timestamp")
	}
}
