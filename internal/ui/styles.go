package ui

import "github.com/charmbracelet/lipgloss"

// Colors used in the application.
var (
	colorPrimary   = lipgloss.Color("62")  // Purple
	colorSecondary = lipgloss.Color("241") // Gray
	colorMuted     = lipgloss.Color("240") // Darker gray
	colorHighlight = lipgloss.Color("212") // Pink
	colorWarn      = lipgloss.Color("214") // Orange
)

// UserLabel style for the "You" speaker label.
var UserLabel = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorHighlight)

// AssistantLabel style for the assistant speaker label.
var AssistantLabel = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorPrimary)

// TurnText style for message bodies.
var TurnText = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255"))

// Caption style for the "Found N articles" line.
var Caption = lipgloss.NewStyle().
	Foreground(colorSecondary).
	Italic(true)

// ArticleCard style for unselected article cards.
var ArticleCard = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorMuted).
	Padding(0, 1)

// SelectedArticleCard style for the highlighted article card.
var SelectedArticleCard = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorHighlight).
	Padding(0, 1)

// ArticleTitle style for article titles inside cards.
var ArticleTitle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("255"))

// ArticleMeta style for source name and publication date.
var ArticleMeta = lipgloss.NewStyle().
	Foreground(colorSecondary)

// ArticleURL style for the article link line.
var ArticleURL = lipgloss.NewStyle().
	Foreground(lipgloss.Color("39")).
	Underline(true)

// WelcomeStyle for the empty-transcript banner.
var WelcomeStyle = lipgloss.NewStyle().
	Foreground(colorSecondary).
	Padding(1, 2)

// StatusBar style for the bottom status bar.
var StatusBar = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Background(lipgloss.Color("236")).
	Padding(0, 1)

// StatusBarKey style for key hints in status bar.
var StatusBarKey = lipgloss.NewStyle().
	Foreground(colorHighlight).
	Bold(true)

// StatusBarText style for descriptive text in status bar.
var StatusBarText = lipgloss.NewStyle().
	Foreground(colorSecondary)

// WarnStyle for the degraded-service notice.
var WarnStyle = lipgloss.NewStyle().
	Foreground(colorWarn).
	Padding(0, 1)

// InputPrompt style for the input line prompt.
var InputPrompt = lipgloss.NewStyle().
	Foreground(colorHighlight).
	Bold(true)
