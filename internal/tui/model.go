package tui

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"recast/internal/job"
)

// Model renders a running job. It drains the job events until the stream closes.
type Model struct {
	events  <-chan job.Event
	cancel  func() error
	started time.Time
	width   int

	percent    int
	status     string
	notice     string
	cancelling bool
	completed  *job.Event
	quitting   bool
}

type doneMsg struct{}

type eventMsg job.Event

type cancelMsg struct{ err error }

// NewModel creates a model fed by events. cancel is called when the user asks to
// stop, usually Handle.Cancel.
func NewModel(events <-chan job.Event, cancel func() error) Model {
	return Model{events: events, cancel: cancel, started: time.Now()}
}

// Completed returns the terminal event once it was received.
func (m Model) Completed() (job.Event, bool) {
	if m.completed == nil {
		return job.Event{}, false
	}
	return *m.completed, true
}

func (m Model) Init() tea.Cmd {
	return listenForEvents(m.events)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		switch msg.Kind {
		case job.EventProgress:
			m.percent = msg.Percent
		case job.EventStatus:
			m.status = msg.Status
		case job.EventCancelRejected:
			m.notice = msg.Status
		case job.EventCompleted:
			ev := job.Event(msg)
			m.completed = &ev
		}
		return m, listenForEvents(m.events)
	case cancelMsg:
		switch {
		case msg.err == nil:
			m.cancelling = true
			m.notice = "Cancelling..."
		case errors.Is(msg.err, job.ErrNotCancellable):
			m.notice = job.CancelRejectedStatus
		default:
			m.notice = msg.err.Error()
		}
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "c", "esc", "ctrl+c":
			if m.cancelling || m.completed != nil {
				return m, nil
			}
			return m, requestCancel(m.cancel)
		}
		return m, nil
	case doneMsg:
		m.quitting = true
		return m, tea.Quit
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	default:
		return m, nil
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	barWidth := 40
	if m.width > 0 {
		barWidth = int(math.Min(60, float64(m.width-16)))
		if barWidth < 20 {
			barWidth = 20
		}
	}

	bar := renderBar(barWidth, float64(m.percent)/100)
	elapsed := time.Since(m.started).Round(time.Second)

	lines := []string{
		titleStyle.Render("recast"),
		barStyle.Render(bar) + labelStyle.Render(fmt.Sprintf(" %3d%%", m.percent)),
		labelStyle.Render(m.status),
	}
	if m.notice != "" {
		lines = append(lines, warnStyle.Render(m.notice))
	}
	lines = append(lines, dimStyle.Render(fmt.Sprintf("Elapsed: %s  ·  c/esc: cancel", elapsed)))

	return strings.Join(lines, "\n")
}

func listenForEvents(events <-chan job.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func requestCancel(cancel func() error) tea.Cmd {
	return func() tea.Msg {
		if cancel == nil {
			return cancelMsg{err: job.ErrNotCancellable}
		}
		return cancelMsg{err: cancel()}
	}
}

func renderBar(width int, ratio float64) string {
	filled := int(math.Round(ratio * float64(width)))
	filled = min(max(filled, 0), width)
	return "[" + strings.Repeat("=", filled) + strings.Repeat(" ", width-filled) + "]"
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
	labelStyle = lipgloss.NewStyle().Foreground(ColorInk)
	barStyle   = lipgloss.NewStyle().Foreground(ColorAccentAlt)
	dimStyle   = lipgloss.NewStyle().Foreground(ColorDim)
	warnStyle  = lipgloss.NewStyle().Foreground(ColorWarn)
)
