// Package tui renders a live progress view for batch experiment runs.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"pathprobe/internal/runner"
)

const maxLogLines = 10

// EventMsg wraps a runner progress event.
type EventMsg runner.Event

// DoneMsg signals the end of the run.
type DoneMsg struct {
	Stats *runner.Stats
	Err   error
}

// Model is the batch-progress BubbleTea model.
type Model struct {
	spinner  spinner.Model
	progress progress.Model

	phase   string
	current int
	total   int
	lines   []string

	stats *runner.Stats
	err   error
	done  bool
	width int
}

// NewModel creates the progress model.
func NewModel() Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = phaseStyle
	return Model{
		spinner:  s,
		progress: progress.New(progress.WithDefaultGradient()),
		phase:    "starting",
		width:    80,
	}
}

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.done || msg.String() == "q" || msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.progress.Width = msg.Width - 10
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case EventMsg:
		m.apply(runner.Event(msg))
		return m, nil

	case DoneMsg:
		m.stats = msg.Stats
		m.err = msg.Err
		m.done = true
		return m, nil
	}
	return m, nil
}

func (m *Model) apply(e runner.Event) {
	m.current, m.total = e.Current, e.Total

	switch e.Phase {
	case runner.PhaseLoad:
		m.phase = "loading addresses"
	case runner.PhasePing:
		m.phase = "pinging"
	case runner.PhaseTrace:
		m.phase = "tracing"
	case runner.PhaseWrite:
		m.phase = "writing results"
	case runner.PhasePlot:
		m.phase = "rendering charts"
	}

	line := m.formatEvent(e)
	if line != "" {
		m.lines = append(m.lines, line)
		if len(m.lines) > maxLogLines {
			m.lines = m.lines[len(m.lines)-maxLogLines:]
		}
	}
}

func (m *Model) formatEvent(e runner.Event) string {
	switch {
	case e.Err != nil && e.Destination != "":
		return failStyle.Render("✗ ") + e.Destination + dimStyle.Render(" "+e.Err.Error())
	case e.Err != nil:
		return failStyle.Render("✗ ") + e.Message + dimStyle.Render(" "+e.Err.Error())
	case e.Destination != "":
		msg := e.Destination
		if e.Message != "" {
			msg += dimStyle.Render(" " + e.Message)
		}
		return okStyle.Render("✓ ") + msg
	case e.Message != "":
		return dimStyle.Render(e.Message)
	}
	return ""
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("pathprobe"))
	b.WriteString("\n")

	if m.done {
		if m.err != nil {
			b.WriteString(failStyle.Render("Run failed: " + m.err.Error()))
		} else if m.stats != nil {
			b.WriteString(okStyle.Render("Run complete") + "\n")
			b.WriteString(fmt.Sprintf("  addresses: %d\n", m.stats.TotalAddresses))
			b.WriteString(fmt.Sprintf("  ping:      %d ok, %d failed\n", m.stats.PingSuccess, m.stats.PingFailed))
			b.WriteString(fmt.Sprintf("  trace:     %d/%d succeeded\n", m.stats.TraceSuccess, m.stats.TraceTargets))
			b.WriteString(fmt.Sprintf("  charts:    %d rendered\n", len(m.stats.Plots)))
			b.WriteString(fmt.Sprintf("  duration:  %s\n", m.stats.Duration.Round(time.Second)))
		}
		b.WriteString(helpStyle.Render("press any key to exit"))
		return b.String()
	}

	b.WriteString(m.spinner.View() + phaseStyle.Render(m.phase))
	if m.total > 0 {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  %d/%d", m.current, m.total)))
		b.WriteString("\n" + m.progress.ViewAs(float64(m.current)/float64(m.total)))
	}
	b.WriteString("\n\n")

	for _, line := range m.lines {
		b.WriteString(line + "\n")
	}

	b.WriteString(helpStyle.Render("q: quit"))
	return b.String()
}
