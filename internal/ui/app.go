package ui

import (
	"strings"

	"github.com/abelbrown/newschat/internal/store"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// App is the root Bubble Tea model.
// IMPORTANT: App does NOT hold the store or the service client. It receives
// results via messages from injected command functions.
type App struct {
	submit        func(input string) (store.Turn, tea.Cmd)
	openDetail    func(article store.Article) (string, tea.Cmd)
	dismissDetail func()
	checkHealth   func() tea.Cmd

	input   textinput.Model
	vp      viewport.Model
	overlay Overlay

	turns         []store.Turn
	articleCursor int
	pending       bool
	healthNotice  string
	width         int
	height        int
	ready         bool
}

// NewApp creates a new App with the given command functions.
// submit: appends the user turn synchronously and returns a Cmd resolving the query;
// a nil Cmd means the submission was rejected (blank input or query pending).
// openDetail: opens the detail panel; a non-empty string is a cached summary,
// otherwise the Cmd fetches one.
// dismissDetail: closes the detail panel.
// checkHealth: probes the service once at startup.
func NewApp(
	submit func(input string) (store.Turn, tea.Cmd),
	openDetail func(article store.Article) (string, tea.Cmd),
	dismissDetail func(),
	checkHealth func() tea.Cmd,
) App {
	input := textinput.New()
	input.Placeholder = "Ask for news on any topic..."
	input.Prompt = "> "
	input.PromptStyle = InputPrompt
	input.CharLimit = 500
	input.Focus()

	return App{
		submit:        submit,
		openDetail:    openDetail,
		dismissDetail: dismissDetail,
		checkHealth:   checkHealth,
		input:         input,
		overlay:       NewOverlay(),
		articleCursor: -1,
	}
}

// Init starts the cursor blink and the health probe.
func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	if a.checkHealth != nil {
		cmds = append(cmds, a.checkHealth())
	}
	return tea.Batch(cmds...)
}

// Update handles messages and returns the updated model and any commands.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		contentHeight := msg.Height - 3
		if a.healthNotice != "" {
			contentHeight--
		}
		if contentHeight < 3 {
			contentHeight = 3
		}
		first := !a.ready
		if first {
			a.vp = viewport.New(msg.Width, contentHeight)
			a.ready = true
		} else {
			a.vp.Width = msg.Width
			a.vp.Height = contentHeight
		}
		a.overlay.SetSize(msg.Width, contentHeight)
		a.input.Width = msg.Width - 4
		a.refreshContent(first)
		return a, nil

	case spinner.TickMsg:
		if !a.overlay.IsLoading() {
			return a, nil
		}
		s, cmd := a.overlay.Spinner().Update(msg)
		a.overlay.UpdateSpinner(s)
		return a, cmd

	case QueryResolved:
		a.pending = false
		a.turns = append(a.turns, msg.Turn)
		a.articleCursor = -1
		a.input.Focus()
		a.refreshContent(true)
		return a, textinput.Blink

	case SummaryResolved:
		if msg.Update.Applied && a.overlay.ArticleID() == msg.Update.ArticleID {
			a.overlay.Finish(msg.Update.Summary, msg.Update.Failed)
		}
		return a, nil

	case HealthChecked:
		if msg.Err != nil {
			a.healthNotice = "News service unreachable. Responses may fail until it recovers."
			if a.ready {
				a.vp.Height--
			}
		}
		return a, nil
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

// handleKeyMsg processes keyboard input.
func (a App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return a, tea.Quit

	case "esc":
		switch {
		case a.overlay.IsVisible():
			if a.dismissDetail != nil {
				a.dismissDetail()
			}
			a.overlay.Clear()
		case a.articleCursor >= 0:
			a.articleCursor = -1
			a.refreshContent(false)
		default:
			a.input.SetValue("")
		}
		return a, nil

	case "tab", "shift+tab":
		articles := LatestArticles(a.turns)
		if len(articles) == 0 || a.overlay.IsVisible() {
			return a, nil
		}
		if msg.String() == "tab" {
			a.articleCursor++
			if a.articleCursor >= len(articles) {
				a.articleCursor = 0
			}
		} else {
			a.articleCursor--
			if a.articleCursor < 0 {
				a.articleCursor = len(articles) - 1
			}
		}
		a.refreshContent(false)
		return a, nil

	case "enter":
		if a.overlay.IsVisible() {
			return a, nil
		}
		if strings.TrimSpace(a.input.Value()) != "" {
			return a.handleSubmit()
		}
		return a.handleOpenArticle()

	case "up":
		a.vp.LineUp(1)
		return a, nil

	case "down":
		a.vp.LineDown(1)
		return a, nil

	case "pgup":
		a.vp.LineUp(a.vp.Height)
		return a, nil

	case "pgdown":
		a.vp.LineDown(a.vp.Height)
		return a, nil
	}

	if a.pending {
		// Input stays frozen while a query is in flight.
		return a, nil
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a App) handleSubmit() (tea.Model, tea.Cmd) {
	if a.submit == nil || a.pending {
		return a, nil
	}

	userTurn, cmd := a.submit(a.input.Value())
	if cmd == nil {
		return a, nil
	}

	a.pending = true
	a.input.SetValue("")
	a.input.Blur()
	a.turns = append(a.turns, userTurn)
	a.articleCursor = -1
	a.refreshContent(true)
	return a, cmd
}

func (a App) handleOpenArticle() (tea.Model, tea.Cmd) {
	articles := LatestArticles(a.turns)
	if a.openDetail == nil || a.articleCursor < 0 || a.articleCursor >= len(articles) {
		return a, nil
	}

	article := articles[a.articleCursor]
	cached, cmd := a.openDetail(article)
	if cached != "" {
		a.overlay.ShowCached(article, cached)
		return a, nil
	}

	a.overlay.SetLoading(article)
	return a, tea.Batch(cmd, a.overlay.Spinner().Tick)
}

// refreshContent re-renders the transcript into the viewport.
func (a *App) refreshContent(toBottom bool) {
	if !a.ready {
		return
	}
	a.vp.SetContent(RenderTranscript(a.turns, a.articleCursor, a.width))
	if toBottom {
		a.vp.GotoBottom()
	}
}

// SetTurns seeds the transcript, e.g. when resuming a saved session.
func (a *App) SetTurns(turns []store.Turn) {
	a.turns = turns
	a.refreshContent(true)
}

// View renders the UI.
func (a App) View() string {
	if !a.ready {
		return "Loading..."
	}

	content := a.vp.View()
	if a.overlay.IsVisible() {
		content = lipgloss.Place(a.width, a.vp.Height, lipgloss.Center, lipgloss.Center, a.overlay.View())
	}

	sections := []string{content}
	if a.healthNotice != "" {
		sections = append(sections, WarnStyle.Width(a.width).Render(a.healthNotice))
	}
	sections = append(sections,
		a.input.View(),
		RenderStatusBar(a.width, a.pending, len(LatestArticles(a.turns))),
	)

	return strings.Join(sections, "\n")
}

// Turns returns the displayed transcript (for testing).
func (a App) Turns() []store.Turn {
	return a.turns
}

// ArticleCursor returns the current article selection (for testing).
func (a App) ArticleCursor() int {
	return a.articleCursor
}

// Pending reports whether a query is in flight (for testing).
func (a App) Pending() bool {
	return a.pending
}
