package tui

import (
	"context"
	"fmt"
	"os"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"

	"github.com/dkrish/proctor/internal/assessment"
	"github.com/dkrish/proctor/internal/resume"
	"github.com/dkrish/proctor/internal/session"
)

// view tags what the model is currently showing. It follows the
// controller's step, plus the two prompts that keep the controller in
// loading until the user chooses.
type view int

const (
	viewLoading view = iota
	viewConflict
	viewUnresumable
	viewReady
	viewTesting
	viewDone
	viewError
)

// Model is the Bubble Tea host driving one assessment session. The
// controller is only ever mutated from this model's event loop, so
// clock ticks, key events, and provider responses interleave but never
// run in parallel.
type Model struct {
	ctrl    *session.Controller
	newCtrl func() *session.Controller

	resumeTarget string
	view         view
	errMsg       string

	input    textinput.Model
	selected int // staged choice index for A-E questions

	width  int
	height int
}

// New creates the host model. newCtrl builds a fresh controller, used
// both initially and for the "try again" recovery action.
func New(newCtrl func() *session.Controller, resumeTarget string) Model {
	ti := textinput.New()
	ti.Placeholder = "1-5"
	ti.CharLimit = 1

	return Model{
		ctrl:         newCtrl(),
		newCtrl:      newCtrl,
		resumeTarget: resumeTarget,
		input:        ti,
		selected:     -1,
	}
}

func (m Model) Init() tea.Cmd {
	return m.initCmd()
}

// initCmd resolves resume state and readies the session off the event
// loop; nothing else touches the controller until the message lands.
func (m Model) initCmd() tea.Cmd {
	ctrl, target := m.ctrl, m.resumeTarget
	return func() tea.Msg {
		outcome, err := ctrl.Initialize(context.Background(), target)
		return initDoneMsg{Outcome: outcome, Err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case initDoneMsg:
		return m.handleInit(msg)

	case tickMsg:
		return m.handleTick()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.view == viewTesting && m.schema().Kind == assessment.KindScale {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		m.stagePending()
		return m, cmd
	}
	return m, nil
}

func (m Model) handleInit(msg initDoneMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.view = viewError
		m.errMsg = msg.Err.Error()
		return m, nil
	}

	switch msg.Outcome.Decision {
	case resume.CrossDeviceConflict:
		m.view = viewConflict
	case resume.Unresumable:
		m.view = viewUnresumable
	default:
		m.view = viewReady
	}
	return m, nil
}

func (m Model) handleTick() (tea.Model, tea.Cmd) {
	if m.ctrl.Step() != session.StepTesting {
		return m, nil
	}
	if err := m.ctrl.Tick(context.Background()); err != nil {
		return m.afterTransition(), nil
	}
	if m.ctrl.Step() == session.StepTesting {
		return m, tickCmd()
	}
	// The tick that reached zero submitted synchronously.
	return m.afterTransition(), nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.view {
	case viewConflict:
		return m.handleConflictKey(key)

	case viewUnresumable:
		if key == "enter" {
			return m.startFresh()
		}

	case viewReady:
		if key == "enter" {
			if err := m.ctrl.Start(context.Background()); err != nil {
				return m.afterTransition(), nil
			}
			if m.ctrl.Step() != session.StepTesting {
				// A restored session with nothing left to answer
				// submitted during Start.
				return m.afterTransition(), nil
			}
			m.view = viewTesting
			m.resetInput()
			return m, tea.Batch(m.input.Focus(), tickCmd())
		}

	case viewTesting:
		return m.handleTestingKey(msg, key)

	case viewDone, viewError:
		switch key {
		case "q", "enter", "esc":
			return m, tea.Quit
		case "r":
			if m.view == viewError {
				// Try again: re-run initialization from scratch.
				m.ctrl = m.newCtrl()
				m.view = viewLoading
				m.errMsg = ""
				return m, m.initCmd()
			}
		}
	}
	return m, nil
}

func (m Model) handleConflictKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "r", "R":
		// Continue the same test here: provider question order, empty
		// answers, fresh full time budget.
		if err := m.ctrl.RestartSameTest(context.Background()); err != nil {
			return m.afterTransition(), nil
		}
		m.view = viewReady
	case "n", "N":
		return m.startFresh()
	}
	return m, nil
}

func (m Model) handleTestingKey(msg tea.KeyMsg, key string) (tea.Model, tea.Cmd) {
	q := m.ctrl.CurrentQuestion()
	if q == nil {
		return m, nil
	}

	if key == "enter" {
		pending := m.ctrl.Pending()
		if pending == nil {
			return m, nil
		}
		if err := m.ctrl.Answer(context.Background(), pending.QuestionID, pending.Value); err != nil {
			m.errMsg = err.Error()
			return m, nil
		}
		m.errMsg = ""
		m.resetInput()
		if m.ctrl.Step() != session.StepTesting {
			return m.afterTransition(), nil
		}
		return m, nil
	}

	if m.schema().Kind == assessment.KindChoice {
		upper := strings.ToUpper(key)
		if len(upper) == 1 && strings.Contains(assessment.ChoiceLetters, upper) {
			m.selected = strings.Index(assessment.ChoiceLetters, upper)
			_ = m.ctrl.Select(upper)
		}
		return m, nil
	}

	// Scale questions type into the text input.
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.stagePending()
	return m, cmd
}

// stagePending stages the typed value so expiry can capture it even if
// the user never confirms.
func (m *Model) stagePending() {
	if v := strings.TrimSpace(m.input.Value()); v != "" {
		_ = m.ctrl.Select(v)
	}
}

func (m Model) startFresh() (tea.Model, tea.Cmd) {
	if err := m.ctrl.StartFresh(context.Background()); err != nil {
		return m.afterTransition(), nil
	}
	m.view = viewReady
	return m, nil
}

// afterTransition re-reads the controller step after a transition out
// of the normal flow and picks the matching view.
func (m Model) afterTransition() Model {
	switch m.ctrl.Step() {
	case session.StepCompleted:
		m.view = viewDone
	case session.StepError:
		m.view = viewError
		if err := m.ctrl.Err(); err != nil {
			m.errMsg = err.Error()
		}
	}
	return m
}

func (m *Model) resetInput() {
	m.input = textinput.New()
	m.input.Placeholder = fmt.Sprintf("%d-%d", m.schema().ScaleMin, m.schema().ScaleMax)
	m.input.CharLimit = 2
	m.selected = -1
}

func (m Model) schema() assessment.Schema {
	if s := m.ctrl.Session(); s != nil {
		return s.Schema
	}
	return assessment.Schema{}
}

// Run starts the Bubble Tea program for one assessment sitting.
func Run(newCtrl func() *session.Controller, resumeTarget string) error {
	p := tea.NewProgram(New(newCtrl, resumeTarget))
	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
