package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"grip/internal/stress"
)

type workerItem struct {
	name string
	done int
	goal int
}

type tickMsg stress.Tick
type doneMsg struct{}

// progressModel renders per-worker progress for a stress run.
type progressModel struct {
	title   string
	ticks   <-chan stress.Tick
	spinner spinner.Model
	prog    progress.Model
	items   []workerItem
	width   int
	done    bool
}

// NewProgressModel returns a Bubble Tea model that renders stress progress.
// The ticks channel must be closed when the run finishes.
func NewProgressModel(title string, workers, opsPerWorker int, ticks <-chan stress.Tick) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 76

	items := make([]workerItem, workers)
	for i := range items {
		items[i] = workerItem{name: fmt.Sprintf("worker %02d", i), goal: opsPerWorker}
	}
	return &progressModel{
		title:   title,
		ticks:   ticks,
		spinner: sp,
		prog:    prog,
		items:   items,
		width:   80,
	}
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForTick())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		cmd := m.applyTick(stress.Tick(msg))
		return m, tea.Batch(cmd, m.listenForTick())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.prog.Width = msg.Width - 4
		}
		return m, nil
	case progress.FrameMsg:
		progressModel, cmd := m.prog.Update(msg)
		m.prog = progressModel.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) View() string {
	if len(m.items) == 0 {
		return ""
	}
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	header := m.title
	if m.done {
		header = fmt.Sprintf("done: %s", header)
	} else {
		header = fmt.Sprintf("%s %s", m.spinner.View(), header)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	statusWidth := 14
	nameWidth := m.width - statusWidth - 4
	if nameWidth < 12 {
		nameWidth = 12
	}

	percentStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	for _, item := range m.items {
		name := truncate(item.name, nameWidth)
		status := fmt.Sprintf("%d/%d", item.done, item.goal)
		if item.done >= item.goal {
			status = "done"
		}
		b.WriteString(fmt.Sprintf("  %s %s\n", percentStyle.Render(fmt.Sprintf("%12s", status)), name))
	}

	b.WriteString("\n")
	if m.done {
		b.WriteString(m.prog.ViewAs(1.0))
	} else {
		b.WriteString(m.prog.View())
	}
	b.WriteString("\n")

	return b.String()
}

func (m *progressModel) listenForTick() tea.Cmd {
	return func() tea.Msg {
		tick, ok := <-m.ticks
		if !ok {
			return doneMsg{}
		}
		return tickMsg(tick)
	}
}

func (m *progressModel) applyTick(tick stress.Tick) tea.Cmd {
	if tick.Worker < 0 || tick.Worker >= len(m.items) {
		return nil
	}
	m.items[tick.Worker].done = tick.Done
	if tick.Total > 0 {
		m.items[tick.Worker].goal = tick.Total
	}

	total := 0.0
	for _, item := range m.items {
		if item.goal > 0 {
			total += float64(item.done) / float64(item.goal)
		}
	}
	return m.prog.SetPercent(total / float64(len(m.items)))
}

func truncate(value string, width int) string {
	if width <= 0 {
		return value
	}
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}
