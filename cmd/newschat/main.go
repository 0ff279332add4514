package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/abelbrown/newschat/internal/chat"
	"github.com/abelbrown/newschat/internal/config"
	"github.com/abelbrown/newschat/internal/detail"
	"github.com/abelbrown/newschat/internal/gateway"
	"github.com/abelbrown/newschat/internal/logging"
	"github.com/abelbrown/newschat/internal/store"
	"github.com/abelbrown/newschat/internal/ui"
)

func main() {
	// Optional .env for local development
	_ = godotenv.Load()

	if err := logging.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logging: %v\n", err)
		os.Exit(1)
	}
	defer logging.Close()

	cfg, err := config.Load()
	if err != nil {
		logging.Error("failed to load config", "error", err)
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	st, err := store.Open(cfg.TranscriptPath)
	if err != nil {
		logging.Error("failed to open store", "error", err)
		fmt.Fprintf(os.Stderr, "Failed to open store: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	gw := gateway.New(
		cfg.Service.URL,
		time.Duration(cfg.Service.TimeoutSeconds)*time.Second,
		cfg.Service.RequestsPerMinute,
	)

	normalizer := chat.NewNormalizer(gw, chat.DefaultCleanupPolicy(cfg.Conversation.MaxNarrativeChars))
	conv := chat.New(st, gw, normalizer, chat.NewIDSource(),
		chat.WithHistoryLimit(cfg.Conversation.HistoryLimit))
	ctrl := detail.NewController(st, gw)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	submit := func(input string) (store.Turn, tea.Cmd) {
		sub, ok := conv.Submit(input)
		if !ok {
			return store.Turn{}, nil
		}
		return sub.UserTurn, func() tea.Msg {
			return ui.QueryResolved{Turn: conv.Resolve(ctx, sub)}
		}
	}

	openDetail := func(article store.Article) (string, tea.Cmd) {
		gen := ctrl.Select(article)
		if gen < 0 {
			_, summary := ctrl.Selected()
			return summary, nil
		}
		return "", func() tea.Msg {
			return ui.SummaryResolved{Update: ctrl.Summarize(ctx, article, gen)}
		}
	}

	checkHealth := func() tea.Cmd {
		return func() tea.Msg {
			err := gw.Health(ctx)
			if err != nil {
				logging.Warn("health probe failed", "error", err)
			}
			return ui.HealthChecked{Err: err}
		}
	}

	app := ui.NewApp(submit, openDetail, ctrl.Dismiss, checkHealth)

	// Resume a persisted transcript, if any
	if cfg.TranscriptPath != "" {
		if turns, err := st.Turns(); err == nil && len(turns) > 0 {
			app.SetTurns(turns)
		}
	}

	logging.Info("newschat starting", "service", cfg.Service.URL)

	program := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		logging.Error("program exited with error", "error", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
