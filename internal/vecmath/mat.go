package vecmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// CrossMatrix returns K such that K*x == v.Cross(x).
func CrossMatrix(v Vec3) Mat3 {
	x, y, z := v[0], v[1], v[2]
	// columns: (0, z, -y), (-z, 0, x), (y, -x, 0)
	return Mat3{
		0, z, -y,
		-z, 0, x,
		y, -x, 0,
	}
}

// Rotation builds the rotation by angle (radians, right-handed) about axis
// using Rodrigues' formula I + sin(a)K + (1-cos(a))K^2. A zero axis yields
// the identity.
func Rotation(axis Vec3, angle float64) Mat3 {
	n, ok := Unit(axis)
	if !ok {
		return mgl64.Ident3()
	}
	k := CrossMatrix(n)
	s, c := math.Sincos(angle)
	return mgl64.Ident3().Add(k.Mul(s)).Add(k.Mul3(k).Mul(1 - c))
}

// Rotate applies Rotation(axis, angle) to v.
func Rotate(v, axis Vec3, angle float64) Vec3 {
	return Rotation(axis, angle).Mul3x1(v)
}
