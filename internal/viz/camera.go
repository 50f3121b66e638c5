package viz

import (
	"math"

	"github.com/san-kum/partsim/internal/vecmath"
)

// Camera is an orthographic view of a world box, rotated about the box
// center.
type Camera struct {
	RotX, RotY float64
	Zoom       float64

	center vecmath.Vec3
	extent float64
}

func NewCamera() *Camera {
	return &Camera{Zoom: 1, extent: 1}
}

func (c *Camera) RotateX(a float64) { c.RotX += a }
func (c *Camera) RotateY(a float64) { c.RotY += a }
func (c *Camera) ZoomIn()           { c.Zoom = math.Min(10, c.Zoom*1.2) }
func (c *Camera) ZoomOut()          { c.Zoom = math.Max(0.1, c.Zoom/1.2) }

func (c *Camera) Reset() {
	c.RotX, c.RotY, c.Zoom = 0, 0, 1
}

// Fit frames the box [lo, hi] with a small margin.
func (c *Camera) Fit(lo, hi vecmath.Vec3) {
	c.center = lo.Add(hi).Mul(0.5)
	size := hi.Sub(lo)
	c.extent = 1.1 * math.Max(size[0], math.Max(size[1], size[2]))
	if c.extent < vecmath.Epsilon {
		c.extent = 1
	}
}

// Contains reports whether p lies inside the framed region at zoom 1.
func (c *Camera) Contains(p vecmath.Vec3) bool {
	d := p.Sub(c.center)
	h := c.extent / 2
	return math.Abs(d[0]) <= h && math.Abs(d[1]) <= h && math.Abs(d[2]) <= h
}

func (c *Camera) rotation() vecmath.Mat3 {
	return vecmath.Rotation(vecmath.YHat, c.RotY).Mul3(vecmath.Rotation(vecmath.XHat, c.RotX))
}

// Scale converts a world length to dots for a screen of sw x sh dots.
func (c *Camera) Scale(sw, sh int) float64 {
	return float64(min(sw, sh)) / c.extent * c.Zoom
}

// Project maps a world point to dot coordinates, y pointing down.
func (c *Camera) Project(p vecmath.Vec3, sw, sh int) (int, int) {
	q := c.rotation().Mul3x1(p.Sub(c.center))
	s := c.Scale(sw, sh)
	return sw/2 + int(math.Round(q[0]*s)), sh/2 - int(math.Round(q[1]*s))
}
