package chat

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/abelbrown/newschat/internal/gateway"
	"github.com/abelbrown/newschat/internal/store"
)

// seqIDs issues deterministic ids for tests.
type seqIDs struct{ n int }

func (s *seqIDs) NextID() string {
	s.n++
	return fmt.Sprintf("t%d", s.n)
}

func newTestConversation(t *testing.T, gw Gateway, opts ...Option) (*Conversation, *store.Store) {
	t.Helper()
	st, err := store.Open("")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	clock := func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	norm := NewNormalizer(gw, DefaultCleanupPolicy(200))
	opts = append([]Option{WithClock(clock)}, opts...)
	return New(st, gw, norm, &seqIDs{}, opts...), st
}

func TestSubmitBlankRejected(t *testing.T) {
	conv, _ := newTestConversation(t, &fakeGateway{})

	for _, input := range []string{"", "   ", "\n\t"} {
		if _, ok := conv.Submit(input); ok {
			t.Errorf("Submit(%q) should be rejected", input)
		}
	}
	if conv.Pending() {
		t.Error("rejected submit must not take the pending guard")
	}
}

func TestSubmitWhilePendingRejected(t *testing.T) {
	conv, _ := newTestConversation(t, &fakeGateway{})

	sub, ok := conv.Submit("tech news")
	if !ok {
		t.Fatal("first submit should be accepted")
	}
	if !conv.Pending() {
		t.Fatal("accepted submit should set pending")
	}

	if _, ok := conv.Submit("more news"); ok {
		t.Error("submit while pending should be rejected")
	}

	conv.Resolve(context.Background(), sub)
	if conv.Pending() {
		t.Error("Resolve should release the pending guard")
	}

	if _, ok := conv.Submit("more news"); !ok {
		t.Error("submit after resolve should be accepted")
	}
}

func TestResolveSuccess(t *testing.T) {
	gw := &fakeGateway{result: gateway.QueryResult{
		Message: "Here you go.",
		Articles: []store.Article{
			{ID: "a1", Title: "First", URL: "https://example.com/1"},
		},
	}}
	conv, _ := newTestConversation(t, gw)

	sub, ok := conv.Submit("tech news")
	if !ok {
		t.Fatal("submit should be accepted")
	}

	turn := conv.Resolve(context.Background(), sub)
	if turn.Role != store.RoleAssistant {
		t.Errorf("resolved turn role = %q, want assistant", turn.Role)
	}
	if turn.Text != "Here you go." {
		t.Errorf("resolved text = %q", turn.Text)
	}
	if len(turn.Articles) != 1 {
		t.Fatalf("resolved turn should carry 1 article, got %d", len(turn.Articles))
	}

	turns := conv.Turns()
	if len(turns) != 2 {
		t.Fatalf("transcript should have 2 turns, got %d", len(turns))
	}
	if turns[0].Role != store.RoleUser || turns[1].Role != store.RoleAssistant {
		t.Errorf("transcript order wrong: %v, %v", turns[0].Role, turns[1].Role)
	}
}

func TestResolveFailureAppendsApology(t *testing.T) {
	gw := &fakeGateway{err: errors.New("connection refused")}
	conv, _ := newTestConversation(t, gw)

	sub, _ := conv.Submit("tech news")
	turn := conv.Resolve(context.Background(), sub)

	if turn.Text != apologyMessage {
		t.Errorf("failure should produce the apology, got %q", turn.Text)
	}
	if len(turn.Articles) != 0 {
		t.Errorf("apology turn must not carry articles")
	}

	// Exactly one assistant turn, even on failure
	assistant := 0
	for _, tn := range conv.Turns() {
		if tn.Role == store.RoleAssistant {
			assistant++
		}
	}
	if assistant != 1 {
		t.Errorf("want exactly 1 assistant turn, got %d", assistant)
	}

	if conv.Pending() {
		t.Error("guard should be released after a failed resolve")
	}
}

func TestSubmitHistoryExcludesCurrentInput(t *testing.T) {
	gw := &fakeGateway{result: gateway.QueryResult{Message: "ok"}}
	conv, _ := newTestConversation(t, gw)

	sub1, _ := conv.Submit("first question")
	if len(sub1.history) != 0 {
		t.Errorf("first submission should carry empty history, got %d turns", len(sub1.history))
	}
	conv.Resolve(context.Background(), sub1)

	sub2, _ := conv.Submit("second question")
	if len(sub2.history) != 2 {
		t.Fatalf("second submission should carry 2 history turns, got %d", len(sub2.history))
	}
	for _, tn := range sub2.history {
		if tn.Text == "second question" {
			t.Error("history must not include the input being submitted")
		}
	}
	if sub2.history[0].Text != "first question" {
		t.Errorf("history should be oldest-first, got %q first", sub2.history[0].Text)
	}
}

func TestSubmitHistoryLimit(t *testing.T) {
	gw := &fakeGateway{result: gateway.QueryResult{Message: "ok"}}
	conv, _ := newTestConversation(t, gw, WithHistoryLimit(4))

	for i := 0; i < 5; i++ {
		sub, ok := conv.Submit(fmt.Sprintf("question %d", i))
		if !ok {
			t.Fatalf("submit %d rejected", i)
		}
		conv.Resolve(context.Background(), sub)
	}

	sub, _ := conv.Submit("final question")
	if len(sub.history) != 4 {
		t.Fatalf("history should be capped at 4 turns, got %d", len(sub.history))
	}
	// The most recent turns survive the cap
	last := sub.history[len(sub.history)-1]
	if last.Role != store.RoleAssistant {
		t.Errorf("newest history turn should be the last assistant reply, got role %q", last.Role)
	}
}

func TestSubmitRecordsIntent(t *testing.T) {
	gw := &fakeGateway{result: gateway.QueryResult{
		Message:  "Here you go.",
		Articles: []store.Article{{ID: "a1", Title: "First"}},
	}}
	conv, _ := newTestConversation(t, gw)

	sub1, _ := conv.Submit("why is the sky blue")
	if sub1.Intent != FetchResults {
		t.Errorf("first submission is always a fetch, got %v", sub1.Intent)
	}
	conv.Resolve(context.Background(), sub1)

	sub2, _ := conv.Submit("why did that happen")
	if sub2.Intent != AnswerFromContext {
		t.Errorf("question after results should answer from context, got %v", sub2.Intent)
	}
	if sub2.UserTurn.Intent != string(AnswerFromContext) {
		t.Errorf("intent should be recorded on the user turn, got %q", sub2.UserTurn.Intent)
	}
}
