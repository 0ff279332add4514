package ui

import (
	"strings"

	"github.com/abelbrown/newschat/internal/store"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
)

// Overlay is the article summary panel shown over the transcript.
type Overlay struct {
	article store.Article
	summary string
	loading bool
	failed  bool
	visible bool
	width   int
	height  int
	spinner spinner.Model
}

// NewOverlay creates the summary panel.
func NewOverlay() Overlay {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#58a6ff"))
	return Overlay{spinner: s}
}

// SetSize updates the panel dimensions.
func (o *Overlay) SetSize(width, height int) {
	o.width = width
	o.height = height
}

// SetLoading opens the panel in its loading state.
func (o *Overlay) SetLoading(article store.Article) {
	o.article = article
	o.summary = ""
	o.loading = true
	o.failed = false
	o.visible = true
}

// Finish replaces the loading state with the finished summary for the open
// article. failed marks it as the apology text.
func (o *Overlay) Finish(summary string, failed bool) {
	o.summary = summary
	o.loading = false
	o.failed = failed
}

// ShowCached opens the panel directly on a previously generated summary.
func (o *Overlay) ShowCached(article store.Article, summary string) {
	o.article = article
	o.summary = summary
	o.loading = false
	o.failed = false
	o.visible = true
}

// Clear closes the panel.
func (o *Overlay) Clear() {
	o.article = store.Article{}
	o.summary = ""
	o.loading = false
	o.failed = false
	o.visible = false
}

// IsVisible returns whether the panel is showing.
func (o Overlay) IsVisible() bool {
	return o.visible
}

// IsLoading returns whether a summary request is in flight.
func (o Overlay) IsLoading() bool {
	return o.visible && o.loading
}

// ArticleID returns the id of the open article, or the empty string.
func (o Overlay) ArticleID() string {
	if !o.visible {
		return ""
	}
	return o.article.ID
}

// Spinner returns the spinner model.
func (o Overlay) Spinner() spinner.Model {
	return o.spinner
}

// UpdateSpinner updates the spinner.
func (o *Overlay) UpdateSpinner(s spinner.Model) {
	o.spinner = s
}

// View renders the summary panel.
func (o Overlay) View() string {
	if !o.visible {
		return ""
	}

	containerStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#30363d")).
		Padding(0, 1).
		Width(o.width - 4).
		MaxHeight(o.height)

	titleStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#58a6ff")).
		Bold(true)

	contentStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#c9d1d9"))

	mutedStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#8b949e")).
		Italic(true)

	errorStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#f85149"))

	header := titleStyle.Render("AI Summary")

	innerWidth := o.width - 10
	if innerWidth < 20 {
		innerWidth = 20
	}

	displayTitle := o.article.Title
	if len(displayTitle) > innerWidth {
		displayTitle = displayTitle[:innerWidth-3] + "..."
	}
	itemHeader := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#c9d1d9")).
		Bold(true).
		Render(displayTitle)

	meta := o.article.SourceName
	if !o.article.PublishedAt.IsZero() {
		if meta != "" {
			meta += " · "
		}
		meta += o.article.PublishedAt.Format("Jan 2, 2006")
	}

	dividerWidth := o.width - 8
	if dividerWidth < 0 {
		dividerWidth = 0
	}
	divider := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#30363d")).
		Render(strings.Repeat("─", dividerWidth))

	var content string
	switch {
	case o.loading:
		content = mutedStyle.Render(o.spinner.View() + " Generating summary...")
	case o.failed:
		content = errorStyle.Render(o.summary)
	case o.summary == "":
		content = mutedStyle.Render("No summary available.")
	default:
		content = contentStyle.Render(wrapText(o.summary, innerWidth))
	}

	sections := []string{header, itemHeader}
	if meta != "" {
		sections = append(sections, ArticleMeta.Render(meta))
	}
	sections = append(sections, divider, content)

	if !o.loading && o.article.Description != "" {
		sections = append(sections,
			divider,
			mutedStyle.Render(wrapText(o.article.Description, innerWidth)),
		)
	}
	if !o.loading && o.article.URL != "" {
		sections = append(sections, ArticleURL.Render(o.article.URL))
	}

	body := lipgloss.JoinVertical(lipgloss.Left, sections...)
	return containerStyle.Render(body)
}
