package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/partsim/internal/constraint"
	"github.com/san-kum/partsim/internal/dynamo"
	"github.com/san-kum/partsim/internal/particle"
	"github.com/san-kum/partsim/internal/system"
	"github.com/san-kum/partsim/internal/vecmath"
)

const (
	defaultWidth    = 60
	defaultHeight   = 22
	statsWidth      = 46
	historyCapacity = 600
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Builder constructs a fresh system. The live view calls it again on reset.
type Builder func() (*system.System, error)

// Model steps a system once per frame and draws it.
type Model struct {
	title     string
	dt        float64
	build     Builder
	sys       *system.System
	canvas    *Canvas
	camera    *Camera
	theme     Theme
	styles    Styles
	showHelp  bool
	energy    []float64
	violation []float64
	last      dynamo.Snapshot
	e0        float64
	err       error
}

func NewModel(title string, dt float64, build Builder) (Model, error) {
	m := Model{
		title:  title,
		dt:     dt,
		build:  build,
		canvas: NewCanvas(defaultWidth, defaultHeight),
		camera: NewCamera(),
		theme:  Themes[0],
	}
	m.styles = NewStyles(m.theme)
	if err := m.reset(); err != nil {
		return Model{}, err
	}
	return m, nil
}

// reset rebuilds the system and clears history.
func (m *Model) reset() error {
	sys, err := m.build()
	if err != nil {
		return err
	}
	m.sys = sys
	m.sys.Resume()
	m.camera.Fit(sys.Bounds())
	m.energy = m.energy[:0]
	m.violation = m.violation[:0]
	m.last = sys.Diagnostics()
	m.e0 = m.last.Energy()
	m.err = nil
	return nil
}

func (m Model) Init() tea.Cmd { return tick() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		w := max(20, msg.Width-statsWidth-8)
		h := max(8, msg.Height-6)
		m.canvas = NewCanvas(w, h)
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			if m.sys.Running() {
				m.sys.Pause()
			} else if m.err == nil {
				m.sys.Resume()
			}
		case ".":
			if !m.sys.Running() && m.err == nil {
				m.sys.Resume()
				m.step()
				m.sys.Pause()
			}
		case "r":
			if err := m.reset(); err != nil {
				m.err = err
			}
		case "f":
			m.camera.Fit(m.sys.Bounds())
		case "0":
			m.camera.Reset()
		case "+", "=":
			m.camera.ZoomIn()
		case "-", "_":
			m.camera.ZoomOut()
		case "left", "h":
			m.camera.RotateY(-0.1)
		case "right", "l":
			m.camera.RotateY(0.1)
		case "up", "k":
			m.camera.RotateX(-0.1)
		case "down", "j":
			m.camera.RotateX(0.1)
		case "t":
			m.theme = NextTheme(m.theme.Name)
			m.styles = NewStyles(m.theme)
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.sys.Running() {
			m.step()
		}
		return m, tick()
	}
	return m, nil
}

func (m *Model) step() {
	m.sys.StepForward(m.dt)
	snap := m.sys.Diagnostics()
	if !vecmath.Finite(snap.KineticEnergy, snap.PotentialEnergy) {
		m.err = fmt.Errorf("t=%.3f: %w", snap.Time, dynamo.ErrNonFinite)
		m.sys.Pause()
		return
	}
	m.last = snap
	m.energy = appendCapped(m.energy, snap.Energy())
	m.violation = appendCapped(m.violation, snap.MaxViolation)
}

func appendCapped(xs []float64, v float64) []float64 {
	xs = append(xs, v)
	if len(xs) > historyCapacity {
		xs = xs[1:]
	}
	return xs
}

// draw renders particles as circles and two-particle constraints as lines.
func (m *Model) draw() {
	m.canvas.Clear()
	pw, ph := m.canvas.Pixels()
	scale := m.camera.Scale(pw, ph)

	for _, c := range m.sys.Constraints() {
		x, ok := c.(*constraint.XPBD)
		if !ok || x.Broken() || len(x.Particles()) != 2 {
			continue
		}
		refs := x.Particles()
		a, errA := m.sys.Particle(refs[0])
		b, errB := m.sys.Particle(refs[1])
		if errA != nil || errB != nil {
			continue
		}
		x0, y0 := m.camera.Project(a.Pos, pw, ph)
		x1, y1 := m.camera.Project(b.Pos, pw, ph)
		m.canvas.DrawLine(x0, y0, x1, y1)
	}

	m.sys.Each(func(p *particle.Particle) {
		x, y := m.camera.Project(p.Pos, pw, ph)
		m.canvas.DrawCircle(x, y, int(p.Radius*scale))
	})
}

func (m Model) View() string {
	m.draw()
	st := m.styles

	status := st.Running.Render("RUNNING")
	switch {
	case m.err != nil:
		status = st.Failed.Render("FAILED")
	case !m.sys.Running():
		status = st.Paused.Render("PAUSED")
	}

	row := func(label, format string, args ...any) string {
		return st.Label.Render(label) + st.Value.Render(fmt.Sprintf(format, args...)) + "\n"
	}

	var stats strings.Builder
	stats.WriteString(status + "\n\n")
	stats.WriteString(row("time", "%.3f", m.last.Time))
	stats.WriteString(row("particles", "%d", m.last.Particles))
	stats.WriteString(row("kinetic", "%.4g", m.last.KineticEnergy))
	stats.WriteString(row("potential", "%.4g", m.last.PotentialEnergy))
	stats.WriteString(row("energy", "%.4g", m.last.Energy()))
	if m.e0 != 0 {
		stats.WriteString(row("drift", "%.2e", math.Abs(m.last.Energy()-m.e0)/math.Abs(m.e0)))
	}
	stats.WriteString(row("|momentum|", "%.4g", m.last.Momentum.Len()))
	stats.WriteString(row("broken", "%d", m.last.BrokenConstraints))
	stats.WriteString(row("violation", "%.3g", m.last.MaxViolation))
	stats.WriteString(st.Label.Render("") + st.Graph.Render(Sparkline(m.violation, 30)) + "\n")

	if len(m.energy) > 1 {
		graph := asciigraph.Plot(m.energy,
			asciigraph.Height(8),
			asciigraph.Width(statsWidth-12),
			asciigraph.Caption("energy"))
		stats.WriteString("\n" + st.Graph.Render(graph) + "\n")
	}
	if m.err != nil {
		stats.WriteString("\n" + st.Failed.Render(m.err.Error()) + "\n")
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		st.Panel.Render(m.canvas.String()),
		st.Panel.Width(statsWidth).Render(stats.String()))

	help := "space pause  . step  r reset  ? help  q quit"
	if m.showHelp {
		help = "space pause/resume  . single step  r rebuild  f refit\n" +
			"arrows/hjkl rotate  +/- zoom  0 reset view  t theme (" + m.theme.Name + ")  q quit"
	}
	return st.Title.Render(strings.ToUpper(m.title)) + "\n" + body + "\n" + st.KeyHint.Render(help)
}

// Run shows the live view until the user quits.
func Run(m Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
