package viz

import (
	"math"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/partsim/internal/config"
	"github.com/san-kum/partsim/internal/experiment"
	"github.com/san-kum/partsim/internal/system"
	"github.com/san-kum/partsim/internal/vecmath"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func key(s string) tea.KeyMsg {
	switch s {
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestCanvasDots(t *testing.T) {
	c := NewCanvas(3, 2)
	w, h := c.Pixels()
	assert.Equal(t, 6, w)
	assert.Equal(t, 8, h)

	c.Set(1, 3)
	assert.True(t, c.IsSet(1, 3))
	assert.Equal(t, rune(blank|0x80), c.Grid[0][0])
	c.Set(-1, 2)
	c.Set(100, 2)
	c.Unset(1, 3)
	assert.False(t, c.IsSet(1, 3))
	assert.Equal(t, strings.Repeat(string(rune(blank)), 3)+"\n"+strings.Repeat(string(rune(blank)), 3)+"\n", c.String())
}

func TestCanvasShapes(t *testing.T) {
	c := NewCanvas(20, 10)
	c.DrawLine(0, 0, 5, 5)
	for i := 0; i <= 5; i++ {
		assert.True(t, c.IsSet(i, i))
	}

	c.Clear()
	c.DrawCircle(20, 20, 6)
	for _, p := range [][2]int{{26, 20}, {14, 20}, {20, 26}, {20, 14}} {
		assert.True(t, c.IsSet(p[0], p[1]), "%v", p)
	}
	assert.False(t, c.IsSet(20, 20))

	c.Clear()
	c.DrawCircle(3, 3, 0)
	assert.True(t, c.IsSet(3, 3))
}

func TestCameraProjection(t *testing.T) {
	cam := NewCamera()
	cam.Fit(vecmath.Vec3{-10, -10, 0}, vecmath.Vec3{10, 10, 0})

	x, y := cam.Project(vecmath.Vec3{}, 100, 80)
	assert.Equal(t, 50, x)
	assert.Equal(t, 40, y)

	x, y = cam.Project(vecmath.Vec3{10, 10, 0}, 100, 80)
	assert.Greater(t, x, 50)
	assert.Less(t, y, 40)
	assert.True(t, cam.Contains(vecmath.Vec3{10, 10, 0}))
	assert.False(t, cam.Contains(vecmath.Vec3{20, 0, 0}))

	cam.RotateY(math.Pi)
	x, _ = cam.Project(vecmath.Vec3{10, 0, 0}, 100, 80)
	assert.Less(t, x, 50)

	cam.ZoomIn()
	assert.Greater(t, cam.Zoom, 1.0)
	cam.Reset()
	assert.Equal(t, 1.0, cam.Zoom)
	assert.Equal(t, 0.0, cam.RotY)
}

func TestThemes(t *testing.T) {
	assert.Equal(t, "retro", NextTheme("cyberpunk").Name)
	assert.Equal(t, "cyberpunk", NextTheme(Themes[len(Themes)-1].Name).Name)
	assert.Equal(t, "cyberpunk", GetTheme("missing").Name)
}

func TestSparkline(t *testing.T) {
	assert.Equal(t, "───", Sparkline(nil, 3))
	assert.Equal(t, "▁█", Sparkline([]float64{5, 0, 1}, 2))
}

func pendulumModel(t *testing.T) Model {
	cfg := config.GetPreset("pendulum", "classic")
	reg := experiment.NewRegistry()
	m, err := NewModel("pendulum", cfg.Dt, func() (*system.System, error) {
		return reg.Build(cfg, system.Options{})
	})
	require.NoError(t, err)
	return m
}

func TestModelSteps(t *testing.T) {
	m := pendulumModel(t)
	assert.NotNil(t, m.Init())

	next, cmd := m.Update(TickMsg(time.Now()))
	m = next.(Model)
	assert.NotNil(t, cmd)
	assert.InDelta(t, 1.0/60, m.sys.Time(), 1e-12)
	assert.Len(t, m.energy, 1)

	next, _ = m.Update(key(" "))
	m = next.(Model)
	assert.False(t, m.sys.Running())
	next, _ = m.Update(TickMsg(time.Now()))
	m = next.(Model)
	assert.InDelta(t, 1.0/60, m.sys.Time(), 1e-12)

	next, _ = m.Update(key("."))
	m = next.(Model)
	assert.InDelta(t, 2.0/60, m.sys.Time(), 1e-12)
	assert.False(t, m.sys.Running())

	next, _ = m.Update(key("r"))
	m = next.(Model)
	assert.Equal(t, 0.0, m.sys.Time())
	assert.True(t, m.sys.Running())
	assert.Empty(t, m.energy)

	view := m.View()
	assert.Contains(t, view, "PENDULUM")
	assert.Contains(t, view, "particles")
}

func TestModelResizeAndTheme(t *testing.T) {
	m := pendulumModel(t)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 140, Height: 40})
	m = next.(Model)
	assert.Equal(t, 140-statsWidth-8, m.canvas.Width)
	assert.Equal(t, 34, m.canvas.Height)

	next, _ = m.Update(key("t"))
	m = next.(Model)
	assert.Equal(t, "retro", m.theme.Name)

	_, cmd := m.Update(key("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestMenu(t *testing.T) {
	reg := experiment.NewRegistry()
	m := NewMenu(reg, system.Options{})

	presets := 0
	for _, ps := range config.Presets {
		presets += len(ps)
	}
	assert.Len(t, m.entries, len(reg.List())+presets)
	assert.Equal(t, "block", m.entries[0].scenario)
	assert.Empty(t, m.entries[0].preset)

	next, _ := m.Update(key("k"))
	m = next.(Menu)
	assert.Equal(t, 0, m.cursor)
	next, _ = m.Update(key("j"))
	m = next.(Menu)
	assert.Equal(t, 1, m.cursor)

	next, cmd := m.Update(key("enter"))
	m = next.(Menu)
	require.NotNil(t, m.live)
	assert.NotNil(t, cmd)
	assert.Contains(t, m.View(), "BLOCK/")

	next, _ = m.Update(key("esc"))
	m = next.(Menu)
	assert.Nil(t, m.live)
	assert.Contains(t, m.View(), "PARTSIM")
}
