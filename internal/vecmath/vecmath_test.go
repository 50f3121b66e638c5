package vecmath

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
)

func TestUnit(t *testing.T) {
	u, ok := Unit(Vec3{3, 0, 4})
	assert.True(t, ok)
	assert.InDelta(t, 0.6, u[0], 1e-12)
	assert.InDelta(t, 0.8, u[2], 1e-12)

	u, ok = Unit(Vec3{})
	assert.False(t, ok)
	assert.Equal(t, Vec3{}, u)

	_, ok = Unit(Vec3{1e-14, 0, 0})
	assert.False(t, ok, "sub-epsilon vector must be rejected")
}

func TestIsFinite(t *testing.T) {
	tests := []struct {
		name string
		v    Vec3
		want bool
	}{
		{"zero", Vec3{}, true},
		{"regular", Vec3{1, -2, 3}, true},
		{"nan", Vec3{math.NaN(), 0, 0}, false},
		{"inf", Vec3{0, math.Inf(-1), 0}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsFinite(tt.v); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
	assert.False(t, Finite(1, math.NaN()))
	assert.True(t, Finite(1, 2))
}

func TestCrossMatrix(t *testing.T) {
	a := Vec3{1, 2, 3}
	b := Vec3{-4, 0.5, 7}
	got := CrossMatrix(a).Mul3x1(b)
	want := a.Cross(b)
	if !got.ApproxEqualThreshold(want, 1e-12) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestRotation(t *testing.T) {
	got := Rotate(XHat, ZHat, math.Pi/2)
	if !got.ApproxEqualThreshold(YHat, 1e-12) {
		t.Errorf("expected %v, got %v", YHat, got)
	}

	axis := Vec3{1, 1, 0.5}
	angle := 0.7
	v := Vec3{0.3, -2, 5}
	want := mgl64.QuatRotate(angle, axis.Normalize()).Rotate(v)
	got = Rotate(v, axis, angle)
	if !got.ApproxEqualThreshold(want, 1e-9) {
		t.Errorf("expected %v, got %v", want, got)
	}

	assert.InDelta(t, v.Len(), got.Len(), 1e-9, "rotation must preserve length")
	assert.Equal(t, mgl64.Ident3(), Rotation(Vec3{}, 1.0))
}

func TestPolarSpherical(t *testing.T) {
	p := Polar(2, math.Pi)
	assert.InDelta(t, -2, p[0], 1e-12)
	assert.InDelta(t, 0, p[1], 1e-12)

	s := Spherical(3, math.Pi/2, 0)
	assert.InDelta(t, 3, s[0], 1e-12)
	assert.InDelta(t, 0, s[2], 1e-12)
	assert.InDelta(t, 3, Spherical(3, 1.1, 2.3).Len(), 1e-12)
}
