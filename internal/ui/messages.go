// Package ui provides the Bubble Tea TUI for newschat.
package ui

import (
	"github.com/abelbrown/newschat/internal/detail"
	"github.com/abelbrown/newschat/internal/store"
)

// QueryResolved is sent when a submitted query has produced its assistant
// turn (real reply or apology, the conversation layer decides).
type QueryResolved struct {
	Turn store.Turn
}

// SummaryResolved is sent when an article summary request finishes.
type SummaryResolved struct {
	Update detail.Update
}

// HealthChecked is sent with the result of the startup health probe.
type HealthChecked struct {
	Err error
}
