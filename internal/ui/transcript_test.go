package ui

import (
	"strings"
	"testing"

	"github.com/abelbrown/newschat/internal/store"
)

func TestRenderTranscriptEmpty(t *testing.T) {
	out := RenderTranscript(nil, -1, 80)
	if !strings.Contains(out, "Welcome to newschat") {
		t.Error("empty transcript should show the welcome banner")
	}
}

func TestRenderTranscriptTurns(t *testing.T) {
	turns := []store.Turn{
		{ID: "t1", Role: store.RoleUser, Text: "tech news"},
		{ID: "t2", Role: store.RoleAssistant, Text: "Here you go.", Articles: []store.Article{
			{ID: "a1", Title: "First Story", SourceName: "Example Wire", URL: "https://example.com/1"},
			{ID: "a2", Title: "Second Story"},
		}},
	}

	out := RenderTranscript(turns, -1, 80)

	for _, want := range []string{"You", "Assistant", "tech news", "Here you go.", "Found 2 articles", "First Story", "Example Wire", "https://example.com/1"} {
		if !strings.Contains(out, want) {
			t.Errorf("transcript missing %q", want)
		}
	}
}

func TestLatestArticles(t *testing.T) {
	turns := []store.Turn{
		{ID: "t1", Role: store.RoleAssistant, Articles: []store.Article{{ID: "old"}}},
		{ID: "t2", Role: store.RoleUser},
		{ID: "t3", Role: store.RoleAssistant, Articles: []store.Article{{ID: "new1"}, {ID: "new2"}}},
		{ID: "t4", Role: store.RoleAssistant},
	}

	articles := LatestArticles(turns)
	if len(articles) != 2 || articles[0].ID != "new1" {
		t.Errorf("LatestArticles should return the newest batch, got %+v", articles)
	}

	if got := LatestArticles(nil); got != nil {
		t.Errorf("no turns should yield no articles, got %+v", got)
	}
}

func TestRenderStatusBar(t *testing.T) {
	pending := RenderStatusBar(80, true, 0)
	if !strings.Contains(pending, "Thinking...") {
		t.Error("pending status bar should show Thinking...")
	}

	idle := RenderStatusBar(80, false, 3)
	if !strings.Contains(idle, "3 articles") {
		t.Error("idle status bar should show the article count")
	}
}

func TestWrapText(t *testing.T) {
	out := wrapText("one two three four five", 9)
	for _, line := range strings.Split(out, "\n") {
		if len(line) > 9 {
			t.Errorf("line %q exceeds width", line)
		}
	}

	if got := wrapText("short", 80); got != "short" {
		t.Errorf("wrapText(short) = %q", got)
	}
}
