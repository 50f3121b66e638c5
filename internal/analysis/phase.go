package analysis

import (
	"fmt"
	"strings"

	"github.com/san-kum/partsim/internal/dynamo"
	"github.com/san-kum/partsim/internal/particle"
	"github.com/san-kum/partsim/internal/system"
)

type Point struct{ X, Y float64 }

// PhasePortrait holds position against velocity along one axis.
type PhasePortrait struct {
	Axis   int
	Points []Point
}

// PhaseRecorder samples one particle's phase-space point after every step.
// It is a dynamo.Observer.
type PhaseRecorder struct {
	sys      *system.System
	ref      particle.Ref
	portrait PhasePortrait
	err      error
}

func TrackParticle(sys *system.System, ref particle.Ref, axis int) (*PhaseRecorder, error) {
	if axis < 0 || axis > 2 {
		return nil, fmt.Errorf("axis %d out of range: %w", axis, dynamo.ErrInvalidParameter)
	}
	if _, err := sys.Particle(ref); err != nil {
		return nil, err
	}
	return &PhaseRecorder{sys: sys, ref: ref, portrait: PhasePortrait{Axis: axis}}, nil
}

func (r *PhaseRecorder) OnStep(dynamo.Snapshot) {
	if r.err != nil {
		return
	}
	p, err := r.sys.Particle(r.ref)
	if err != nil {
		r.err = err
		return
	}
	a := r.portrait.Axis
	r.portrait.Points = append(r.portrait.Points, Point{X: p.Pos[a], Y: p.Vel[a]})
}

// Err reports why recording stopped early, if it did.
func (r *PhaseRecorder) Err() error { return r.err }

func (r *PhaseRecorder) Portrait() *PhasePortrait { return &r.portrait }

// Section returns the velocities at upward crossings of position threshold,
// linearly interpolated between samples.
func (pp *PhasePortrait) Section(threshold float64) []Point {
	var out []Point
	for i := 1; i < len(pp.Points); i++ {
		a, b := pp.Points[i-1], pp.Points[i]
		if a.X < threshold && b.X >= threshold {
			frac := (threshold - a.X) / (b.X - a.X)
			out = append(out, Point{X: threshold, Y: a.Y + frac*(b.Y-a.Y)})
		}
	}
	return out
}

// ToASCII plots the portrait on a width x height character grid.
func (pp *PhasePortrait) ToASCII(width, height int) string {
	if pp == nil || len(pp.Points) == 0 || width < 2 || height < 2 {
		return ""
	}

	minX, maxX := pp.Points[0].X, pp.Points[0].X
	minY, maxY := pp.Points[0].Y, pp.Points[0].Y
	for _, p := range pp.Points {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}

	rangeX, rangeY := maxX-minX, maxY-minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	minY -= rangeY * 0.1
	rangeX *= 1.2
	rangeY *= 1.2

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", width))
	}

	col := func(x float64) int { return int((x - minX) / rangeX * float64(width-1)) }
	row := func(y float64) int { return height - 1 - int((y-minY)/rangeY*float64(height-1)) }

	if minX <= 0 && minX+rangeX >= 0 {
		c := col(0)
		for r := range grid {
			grid[r][c] = '│'
		}
	}
	if minY <= 0 && minY+rangeY >= 0 {
		r := row(0)
		for c := range grid[r] {
			grid[r][c] = '─'
		}
	}
	for _, p := range pp.Points {
		r, c := row(p.Y), col(p.X)
		if r >= 0 && r < height && c >= 0 && c < width {
			grid[r][c] = '•'
		}
	}

	var sb strings.Builder
	for _, line := range grid {
		sb.WriteString(string(line))
		sb.WriteByte('\n')
	}
	return sb.String()
}
