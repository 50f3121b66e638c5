package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/partsim/internal/config"
	"github.com/san-kum/partsim/internal/experiment"
	"github.com/san-kum/partsim/internal/system"
)

type menuEntry struct {
	scenario, preset string
	desc             string
}

// Menu lists every scenario and preset and opens the chosen one in a live
// view. esc returns to the list.
type Menu struct {
	reg           *experiment.Registry
	opts          system.Options
	entries       []menuEntry
	cursor        int
	live          *Model
	err           error
	styles        Styles
	width, height int
}

func NewMenu(reg *experiment.Registry, opts system.Options) Menu {
	m := Menu{reg: reg, opts: opts, styles: NewStyles(Themes[0])}
	for _, name := range reg.List() {
		s, _ := reg.Get(name)
		m.entries = append(m.entries, menuEntry{scenario: name, desc: s.Description})
		for _, p := range config.ListPresets(name) {
			m.entries = append(m.entries, menuEntry{scenario: name, preset: p})
		}
	}
	return m
}

func (m Menu) config(e menuEntry) *config.Config {
	if e.preset != "" {
		if cfg := config.GetPreset(e.scenario, e.preset); cfg != nil {
			return cfg
		}
	}
	cfg := config.DefaultConfig()
	cfg.Scenario = e.scenario
	return cfg
}

func (m Menu) Init() tea.Cmd { return nil }

func (m Menu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		m.width, m.height = size.Width, size.Height
	}

	if m.live != nil {
		if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" {
			m.live = nil
			return m, nil
		}
		next, cmd := m.live.Update(msg)
		live := next.(Model)
		m.live = &live
		return m, cmd
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.entries)-1 {
			m.cursor++
		}
	case "enter", " ":
		return m.open(m.entries[m.cursor])
	}
	return m, nil
}

func (m Menu) open(e menuEntry) (tea.Model, tea.Cmd) {
	cfg := m.config(e)
	title := e.scenario
	if e.preset != "" {
		title += "/" + e.preset
	}
	live, err := NewModel(title, cfg.Dt, func() (*system.System, error) {
		return m.reg.Build(cfg, m.opts)
	})
	if err != nil {
		m.err = err
		return m, nil
	}
	m.err = nil
	if m.width > 0 {
		next, _ := live.Update(tea.WindowSizeMsg{Width: m.width, Height: m.height})
		live = next.(Model)
	}
	m.live = &live
	return m, live.Init()
}

func (m Menu) View() string {
	if m.live != nil {
		return m.live.View()
	}
	st := m.styles
	var b strings.Builder
	b.WriteString("\n  " + st.Title.Render("PARTSIM") + "\n  " + st.KeyHint.Render("constrained particle dynamics") + "\n\n")
	for i, e := range m.entries {
		label := e.scenario
		if e.preset != "" {
			label = "  " + e.preset
		}
		line := fmt.Sprintf("%-16s %s", label, e.desc)
		if i == m.cursor {
			b.WriteString("  " + st.Cursor.Render("▸ "+line) + "\n")
		} else {
			b.WriteString("    " + st.Value.Render(line) + "\n")
		}
	}
	if m.err != nil {
		b.WriteString("\n  " + st.Failed.Render(m.err.Error()) + "\n")
	}
	b.WriteString("\n  " + st.KeyHint.Render("j/k navigate  enter open  esc back  q quit") + "\n")
	return b.String()
}

// RunMenu shows the scenario menu until the user quits.
func RunMenu(reg *experiment.Registry, opts system.Options) error {
	_, err := tea.NewProgram(NewMenu(reg, opts), tea.WithAltScreen()).Run()
	return err
}
