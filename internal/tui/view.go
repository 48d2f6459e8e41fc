package tui

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/dkrish/proctor/internal/assessment"
)

// Muted exam-room palette.
var (
	accent  = lipgloss.Color("#0EA5E9") // Sky
	warn    = lipgloss.Color("#F59E0B") // Amber
	danger  = lipgloss.Color("#F43F5E") // Rose
	ok      = lipgloss.Color("#22C55E") // Green
	text    = lipgloss.Color("#F8FAFC") // White
	textDim = lipgloss.Color("#94A3B8") // Slate
	border  = lipgloss.Color("#334155") // Slate
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(accent)
	dimStyle      = lipgloss.NewStyle().Foreground(textDim)
	questionStyle = lipgloss.NewStyle().Bold(true).Foreground(text)
	errStyle      = lipgloss.NewStyle().Foreground(danger)
	okStyle       = lipgloss.NewStyle().Foreground(ok)
	hintStyle     = lipgloss.NewStyle().Foreground(textDim).Italic(true)
)

func (m Model) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true
	if m.width == 0 {
		return v
	}

	var body string
	switch m.view {
	case viewLoading:
		body = dimStyle.Render("\n  Preparing your assessment...")
	case viewConflict:
		body = m.renderConflict()
	case viewUnresumable:
		body = m.renderUnresumable()
	case viewReady:
		body = m.renderReady()
	case viewTesting:
		body = m.renderQuestion()
	case viewDone:
		body = m.renderDone()
	case viewError:
		body = m.renderError()
	}

	v.SetContent(m.renderHeader() + "\n" + body)
	return v
}

func (m Model) renderHeader() string {
	name := "Assessment"
	if s := m.ctrl.Session(); s != nil && s.QuestionSetName != "" {
		name = s.QuestionSetName
	} else if s != nil {
		name = s.Schema.Name
	}

	left := titleStyle.Render("  " + name)
	right := ""
	if m.view == viewTesting {
		right = m.renderCountdown() + "  "
	}

	pad := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if pad < 1 {
		pad = 1
	}
	line := left + strings.Repeat(" ", pad) + right
	rule := lipgloss.NewStyle().Foreground(border).Render(strings.Repeat("─", max(0, m.width-2)))
	return line + "\n" + rule
}

func (m Model) renderCountdown() string {
	secs := m.ctrl.SecondsRemaining()
	s := fmt.Sprintf("%d:%02d", secs/60, secs%60)
	if secs <= 60 {
		return errStyle.Render(s)
	}
	if secs <= 300 {
		return lipgloss.NewStyle().Foreground(warn).Render(s)
	}
	return dimStyle.Render(s)
}

func (m Model) renderConflict() string {
	var b strings.Builder
	b.WriteString("\n  " + questionStyle.Render("This assessment is already in progress on another device.") + "\n\n")
	b.WriteString(dimStyle.Render("  Your answers and remaining time live only on the device that started it.\n"))
	b.WriteString(dimStyle.Render("  Continuing here restarts the same test with no answers and a full time budget.\n\n"))
	b.WriteString("  " + okStyle.Render("[r]") + " restart the test here\n")
	b.WriteString("  " + okStyle.Render("[n]") + " abandon it and start a new session\n")
	return b.String()
}

func (m Model) renderUnresumable() string {
	reason := "Your previous session can no longer be resumed."
	if m.ctrl.Outcome().Reason != nil {
		reason = m.ctrl.Outcome().Reason.Error()
	}
	return "\n  " + questionStyle.Render(reason) + "\n\n" +
		hintStyle.Render("  Press Enter to start fresh.")
}

func (m Model) renderReady() string {
	s := m.ctrl.Session()
	if s == nil {
		return dimStyle.Render("\n  Preparing...")
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("\n  %s\n\n", questionStyle.Render(s.Schema.Name+" assessment")))
	b.WriteString(dimStyle.Render(fmt.Sprintf("  %d questions, %s on the clock.\n", len(s.Questions), formatDuration(m.ctrl.SecondsRemaining()))))
	if m.ctrl.CountAnswered() > 0 {
		b.WriteString(okStyle.Render(fmt.Sprintf("  Resumed: %d answers already recorded.\n", m.ctrl.CountAnswered())))
	}
	b.WriteString("\n" + hintStyle.Render("  Press Enter to begin. The countdown starts immediately."))
	return b.String()
}

func (m Model) renderQuestion() string {
	q := m.ctrl.CurrentQuestion()
	s := m.ctrl.Session()
	if q == nil || s == nil {
		return dimStyle.Render("\n  Submitting...")
	}

	var b strings.Builder
	b.WriteString(dimStyle.Render(fmt.Sprintf("\n  Question %d of %d\n\n", s.CurrentIndex+1, len(s.Questions))))
	b.WriteString("  " + questionStyle.Render(q.Text) + "\n\n")

	if s.Schema.Kind == assessment.KindChoice {
		for i, choice := range q.Choices {
			if i >= len(assessment.ChoiceLetters) {
				break
			}
			letter := string(assessment.ChoiceLetters[i])
			line := fmt.Sprintf("  %s) %s", letter, choice)
			if i == m.selected {
				line = okStyle.Render("> " + line[2:])
			}
			b.WriteString(line + "\n")
		}
		b.WriteString("\n" + hintStyle.Render("  Pick A-E, then Enter to confirm."))
	} else {
		b.WriteString(fmt.Sprintf("  Score (%d-%d): %s\n", s.Schema.ScaleMin, s.Schema.ScaleMax, m.input.View()))
		b.WriteString("\n" + hintStyle.Render("  Type a score, then Enter to confirm."))
	}

	if m.errMsg != "" {
		b.WriteString("\n\n  " + errStyle.Render(m.errMsg))
	}
	return b.String()
}

func (m Model) renderDone() string {
	var b strings.Builder
	if m.ctrl.Expired() {
		// Expiry is an expected outcome, not a fault.
		b.WriteString("\n  " + lipgloss.NewStyle().Foreground(warn).Bold(true).Render("Time's up.") + "\n\n")
		b.WriteString(dimStyle.Render("  The answers you confirmed were submitted.\n"))
	} else {
		b.WriteString("\n  " + okStyle.Render("Assessment submitted.") + "\n\n")
	}
	if ack := m.ctrl.Ack(); ack != nil && ack.ResultID != "" {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  Result reference: %s\n", ack.ResultID)))
	}
	b.WriteString("\n" + hintStyle.Render("  Press Enter to exit."))
	return b.String()
}

func (m Model) renderError() string {
	var b strings.Builder
	b.WriteString("\n  " + errStyle.Render("Something went wrong.") + "\n\n")
	if m.errMsg != "" {
		b.WriteString(dimStyle.Render("  " + m.errMsg + "\n"))
	}
	b.WriteString("\n  " + okStyle.Render("[r]") + " try again from scratch\n")
	b.WriteString("  " + okStyle.Render("[q]") + " exit\n")
	return b.String()
}

func formatDuration(secs int) string {
	if secs >= 3600 {
		return fmt.Sprintf("%dh%02dm", secs/3600, (secs%3600)/60)
	}
	return fmt.Sprintf("%dm%02ds", secs/60, secs%60)
}
