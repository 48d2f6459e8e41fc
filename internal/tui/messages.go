package tui

import (
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/dkrish/proctor/internal/resume"
)

// initDoneMsg is sent when session initialization has resolved.
type initDoneMsg struct {
	Outcome resume.Outcome
	Err     error
}

// tickMsg is sent every second while the countdown runs.
type tickMsg time.Time

// tickCmd schedules the next countdown tick.
func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}
