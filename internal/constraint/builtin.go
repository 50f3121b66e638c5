package constraint

import (
	"fmt"

	"github.com/san-kum/partsim/internal/dynamo"
	"github.com/san-kum/partsim/internal/particle"
	"github.com/san-kum/partsim/internal/vecmath"
)

// separation returns the unit vector from ps[0] to ps[1] and the distance.
func separation(ps []*particle.Particle) (vecmath.Vec3, float64, error) {
	r := ps[1].Pos.Sub(ps[0].Pos)
	d := r.Len()
	n, ok := vecmath.Unit(r)
	if !ok {
		return n, d, fmt.Errorf("particles %d and %d coincide: %w", ps[0].ID, ps[1].ID, dynamo.ErrDegenerateGeometry)
	}
	return n, d, nil
}

func pairGradient(ps []*particle.Particle, grads []vecmath.Vec3) error {
	n, _, err := separation(ps)
	if err != nil {
		return err
	}
	grads[0] = n.Mul(-1)
	grads[1] = n
	return nil
}

type distance struct {
	length float64
}

func (d distance) Value(ps []*particle.Particle) float64 {
	return ps[1].Pos.Sub(ps[0].Pos).Len() - d.length
}

func (d distance) Gradient(ps []*particle.Particle, grads []vecmath.Vec3) error {
	return pairGradient(ps, grads)
}

// NewDistance holds a and b at the given separation.
func NewDistance(a, b particle.Ref, length float64, opts Options) (*XPBD, error) {
	if length < 0 {
		return nil, fmt.Errorf("distance %g: %w", length, dynamo.ErrInvalidParameter)
	}
	return New("distance", distance{length: length}, Equation, opts, a, b)
}

type nonPenetrate struct {
	min float64
}

func (n nonPenetrate) limit(ps []*particle.Particle) float64 {
	if n.min > 0 {
		return n.min
	}
	return ps[0].Radius + ps[1].Radius
}

func (n nonPenetrate) Value(ps []*particle.Particle) float64 {
	return ps[1].Pos.Sub(ps[0].Pos).Len() - n.limit(ps)
}

func (n nonPenetrate) Gradient(ps []*particle.Particle, grads []vecmath.Vec3) error {
	return pairGradient(ps, grads)
}

// NewNonPenetrate keeps a and b at least minDist apart. minDist 0 uses the
// summed radii at evaluation time.
func NewNonPenetrate(a, b particle.Ref, minDist float64, opts Options) (*XPBD, error) {
	if minDist < 0 {
		return nil, fmt.Errorf("minimum distance %g: %w", minDist, dynamo.ErrInvalidParameter)
	}
	return New("non_penetrate", nonPenetrate{min: minDist}, Inequality, opts, a, b)
}

type contactPlane struct {
	point  vecmath.Vec3
	normal vecmath.Vec3
	offset float64
}

func (c contactPlane) Value(ps []*particle.Particle) float64 {
	return ps[0].Pos.Sub(c.point).Dot(c.normal) - c.offset
}

func (c contactPlane) Gradient(ps []*particle.Particle, grads []vecmath.Vec3) error {
	grads[0] = c.normal
	return nil
}

// NewContactPlane keeps ref on the normal side of the plane through point,
// at least offset away from it (typically the particle radius).
func NewContactPlane(ref particle.Ref, point, normal vecmath.Vec3, offset float64, opts Options) (*XPBD, error) {
	n, ok := vecmath.Unit(normal)
	if !ok {
		return nil, fmt.Errorf("plane normal %v: %w", normal, dynamo.ErrDegenerateGeometry)
	}
	return New("contact_plane", contactPlane{point: point, normal: n, offset: offset}, Inequality, opts, ref)
}

// NonPenetrateAll couples every unordered pair of refs with a NonPenetrate
// constraint using summed radii.
func NonPenetrateAll(refs []particle.Ref, opts Options) ([]*XPBD, error) {
	out := make([]*XPBD, 0, len(refs)*(len(refs)-1)/2)
	for i := range refs {
		for j := i + 1; j < len(refs); j++ {
			c, err := NewNonPenetrate(refs[i], refs[j], 0, opts)
			if err != nil {
				return nil, err
			}
			out = append(out, c)
		}
	}
	return out, nil
}
