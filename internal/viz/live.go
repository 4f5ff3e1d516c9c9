package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"genodyn/internal/dynamics"
)

const (
	chartWidth      = 70
	chartHeight     = 14
	historyCapacity = 600

	// settleDelta is the per-generation change under which the delta
	// readout flips to the settled color.
	settleDelta = 1e-9
)

type TickMsg time.Time

// LiveModel steps the generation map on a timer and draws the running
// shares, so parameter regimes can be eyeballed before committing to a
// solver run.
type LiveModel struct {
	sys dynamics.System
	p   dynamics.Params
	x0  dynamics.State

	state    dynamics.State
	history  [][]float64
	gen      int
	delta    float64
	speed    int
	running  bool
	diverged bool
	showHelp bool
}

func NewLive(sys dynamics.System, p dynamics.Params, x0 dynamics.State) LiveModel {
	m := LiveModel{
		sys:     sys,
		p:       p,
		x0:      x0.Clone(),
		state:   x0.Clone(),
		history: make([][]float64, dynamics.Dim),
		delta:   math.NaN(),
		speed:   1,
		running: true,
	}
	m.record()
	return m
}

func (m LiveModel) Init() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m LiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			if !m.diverged {
				m.running = !m.running
			}
		case "r":
			m.reset()
		case "+", "=":
			if m.speed < 64 {
				m.speed *= 2
			}
		case "-", "_":
			if m.speed > 1 {
				m.speed /= 2
			}
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running {
			m.step()
		}
		return m, tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
	}
	return m, nil
}

func (m *LiveModel) step() {
	for i := 0; i < m.speed; i++ {
		next := m.sys.Motion(m.state, m.p)
		if !next.IsValid() {
			m.running = false
			m.diverged = true
			return
		}
		m.delta = next.MaxAbsDiff(m.state)
		m.state = next
		m.gen++
	}
	m.record()
}

func (m *LiveModel) reset() {
	m.state = m.x0.Clone()
	m.history = make([][]float64, dynamics.Dim)
	m.gen = 0
	m.delta = math.NaN()
	m.running = true
	m.diverged = false
	m.record()
}

func (m *LiveModel) record() {
	for i := range m.history {
		m.history[i] = append(m.history[i], m.state[i])
		if len(m.history[i]) > historyCapacity {
			m.history[i] = m.history[i][1:]
		}
	}
}

func (m LiveModel) View() string {
	var b strings.Builder

	b.WriteString(HeaderStyle.Render("genodyn live"))
	b.WriteString("\n")

	if len(m.history[0]) >= 2 {
		chart := plotSeries(m.history, chartWidth, chartHeight, "genotype shares")
		b.WriteString(ChartStyle.Render(chart))
		b.WriteString("\n")
	}

	deltaStyle := ValueStyle
	if m.delta <= settleDelta {
		deltaStyle = StableStyle
	}

	male, female := m.state.Sums()
	rows := []struct {
		label string
		value string
		style lipgloss.Style
	}{
		{"generation", fmt.Sprintf("%d", m.gen), ValueStyle},
		{"delta", fmt.Sprintf("%.3e", m.delta), deltaStyle},
		{"male sum", fmt.Sprintf("%.9f", male), ValueStyle},
		{"female sum", fmt.Sprintf("%.9f", female), ValueStyle},
		{"speed", fmt.Sprintf("%d gen/tick", m.speed), ValueStyle},
	}
	for _, r := range rows {
		b.WriteString(LabelStyle.Render(r.label))
		b.WriteString(r.style.Render(r.value))
		b.WriteString("\n")
	}

	for i, g := range dynamics.GenotypeNames {
		b.WriteString(LabelStyle.Render("m/f " + g))
		b.WriteString(ValueStyle.Render(fmt.Sprintf("%.6f  %.6f", m.state[i], m.state[dynamics.NGenotypes+i])))
		b.WriteString("\n")
	}

	switch {
	case m.diverged:
		b.WriteString(UnstableStyle.Render("DIVERGED"))
	case m.running:
		b.WriteString(StatusRunning.Render("RUNNING"))
	default:
		b.WriteString(StatusPaused.Render("PAUSED"))
	}
	b.WriteString("\n")

	if m.showHelp {
		b.WriteString(HelpStyle.Render("[space] pause  [r] reset  [+/-] speed  [?] help  [q] quit"))
	} else {
		b.WriteString(HelpStyle.Render("[?] help"))
	}
	b.WriteString("\n")

	return b.String()
}
