package ui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/abelbrown/newschat/internal/store"
	"github.com/charmbracelet/lipgloss"
)

const welcomeBanner = `Welcome to newschat.

Ask for news on any topic ("show me the latest tech news") and browse
the results below. Open an article for an AI summary.`

// RenderTranscript renders the conversation, oldest turn first. The article
// cursor highlights a card in the most recent batch of results; pass -1 for
// no selection.
func RenderTranscript(turns []store.Turn, cursor int, width int) string {
	if len(turns) == 0 {
		return WelcomeStyle.Render(welcomeBanner)
	}

	latest := latestArticleTurn(turns)

	var b strings.Builder
	for i, turn := range turns {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(renderTurn(turn, width))

		if len(turn.Articles) == 0 {
			continue
		}

		b.WriteString("\n")
		b.WriteString(Caption.Render(fmt.Sprintf("Found %d articles", len(turn.Articles))))
		b.WriteString("\n")

		for j, article := range turn.Articles {
			selected := turn.ID == latest && j == cursor
			b.WriteString(renderArticleCard(article, selected, width))
			b.WriteString("\n")
		}
	}

	return b.String()
}

// latestArticleTurn returns the ID of the newest turn carrying articles, or
// the empty string.
func latestArticleTurn(turns []store.Turn) string {
	for i := len(turns) - 1; i >= 0; i-- {
		if len(turns[i].Articles) > 0 {
			return turns[i].ID
		}
	}
	return ""
}

// LatestArticles returns the article batch the cursor cycles over.
func LatestArticles(turns []store.Turn) []store.Article {
	for i := len(turns) - 1; i >= 0; i-- {
		if len(turns[i].Articles) > 0 {
			return turns[i].Articles
		}
	}
	return nil
}

func renderTurn(turn store.Turn, width int) string {
	label := AssistantLabel.Render("Assistant")
	if turn.Role == store.RoleUser {
		label = UserLabel.Render("You")
	}

	text := wrapText(turn.Text, contentWidth(width))
	return label + "\n" + TurnText.Render(text) + "\n"
}

func renderArticleCard(article store.Article, selected bool, width int) string {
	card := ArticleCard
	if selected {
		card = SelectedArticleCard
	}

	inner := contentWidth(width) - 4
	if inner < 20 {
		inner = 20
	}

	title := article.Title
	if utf8.RuneCountInString(title) > inner {
		runes := []rune(title)
		title = string(runes[:inner-3]) + "..."
	}

	meta := article.SourceName
	if !article.PublishedAt.IsZero() {
		if meta != "" {
			meta += " · "
		}
		meta += article.PublishedAt.Format("Jan 2, 2006")
	}

	lines := []string{ArticleTitle.Render(title)}
	if meta != "" {
		lines = append(lines, ArticleMeta.Render(meta))
	}
	if article.Description != "" {
		lines = append(lines, TurnText.Render(wrapText(article.Description, inner)))
	}
	if article.URL != "" {
		url := article.URL
		if utf8.RuneCountInString(url) > inner {
			runes := []rune(url)
			url = string(runes[:inner-3]) + "..."
		}
		lines = append(lines, ArticleURL.Render(url))
	}

	return card.Width(contentWidth(width)).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func contentWidth(width int) int {
	w := width - 2
	if w < 24 {
		w = 24
	}
	return w
}

// RenderStatusBar renders the bottom status bar with key hints.
func RenderStatusBar(width int, pending bool, articles int) string {
	var left string
	if pending {
		left = " Thinking... "
	} else if articles > 0 {
		left = fmt.Sprintf(" %d articles ", articles)
	} else {
		left = " Ready "
	}

	keys := []string{
		StatusBarKey.Render("Enter") + StatusBarText.Render(":send/open"),
		StatusBarKey.Render("Tab") + StatusBarText.Render(":articles"),
		StatusBarKey.Render("Esc") + StatusBarText.Render(":back"),
		StatusBarKey.Render("↑/↓") + StatusBarText.Render(":scroll"),
		StatusBarKey.Render("Ctrl+C") + StatusBarText.Render(":quit"),
	}
	keyHints := strings.Join(keys, " ")

	leftWidth := lipgloss.Width(left)
	rightWidth := lipgloss.Width(keyHints)
	padding := width - leftWidth - rightWidth
	if padding < 0 {
		padding = 0
	}

	bar := left + strings.Repeat(" ", padding) + keyHints
	return StatusBar.Width(width).Render(bar)
}

// wrapText wraps text to a given width, preserving paragraph breaks.
func wrapText(text string, width int) string {
	if width <= 0 {
		return text
	}

	paragraphs := strings.Split(text, "\n\n")
	var wrappedParagraphs []string

	for _, para := range paragraphs {
		para = strings.ReplaceAll(para, "\n", " ")
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}

		var lines []string
		currentLine := ""
		for _, word := range strings.Fields(para) {
			switch {
			case currentLine == "":
				currentLine = word
			case len(currentLine)+1+len(word) <= width:
				currentLine += " " + word
			default:
				lines = append(lines, currentLine)
				currentLine = word
			}
		}
		if currentLine != "" {
			lines = append(lines, currentLine)
		}

		wrappedParagraphs = append(wrappedParagraphs, strings.Join(lines, "\n"))
	}

	return strings.Join(wrappedParagraphs, "\n\n")
}
