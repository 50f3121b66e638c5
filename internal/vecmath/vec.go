package vecmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

type (
	Vec3 = mgl64.Vec3
	Mat3 = mgl64.Mat3
)

// Epsilon is the length below which a vector is treated as zero.
const Epsilon = 1e-12

var (
	XHat = Vec3{1, 0, 0}
	YHat = Vec3{0, 1, 0}
	ZHat = Vec3{0, 0, 1}
)

// Polar returns a vector of length r in the xy-plane at the given angle.
func Polar(r, angle float64) Vec3 {
	return Vec3{r * math.Cos(angle), r * math.Sin(angle), 0}
}

// Spherical uses theta as the polar angle from +z and phi as the azimuth.
func Spherical(r, theta, phi float64) Vec3 {
	st := math.Sin(theta)
	return Vec3{r * st * math.Cos(phi), r * st * math.Sin(phi), r * math.Cos(theta)}
}

// Unit returns v scaled to length one. ok is false when |v| < Epsilon, in
// which case the zero vector is returned.
func Unit(v Vec3) (u Vec3, ok bool) {
	l := v.Len()
	if l < Epsilon || math.IsNaN(l) {
		return Vec3{}, false
	}
	return v.Mul(1 / l), true
}

func IsFinite(v Vec3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Finite reports whether every value is neither NaN nor infinite.
func Finite(vals ...float64) bool {
	for _, x := range vals {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}
