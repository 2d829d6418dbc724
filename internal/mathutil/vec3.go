package mathutil

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Vec3 is a 3-component vector. It converts to mgl64.Vec3 for free.
type Vec3 [3]float64

func (a Vec3) Add(b Vec3) Vec3 { return Vec3(mgl64.Vec3(a).Add(mgl64.Vec3(b))) }

func (a Vec3) Sub(b Vec3) Vec3 { return Vec3(mgl64.Vec3(a).Sub(mgl64.Vec3(b))) }

func (v Vec3) Scale(s float64) Vec3 { return Vec3(mgl64.Vec3(v).Mul(s)) }

func (a Vec3) Dot(b Vec3) float64 { return mgl64.Vec3(a).Dot(mgl64.Vec3(b)) }

func (a Vec3) Cross(b Vec3) Vec3 { return Vec3(mgl64.Vec3(a).Cross(mgl64.Vec3(b))) }

func (v Vec3) Len() float64 { return mgl64.Vec3(v).Len() }

// Normalize returns the unit vector, or zero for a (near) zero vector.
func (v Vec3) Normalize() Vec3 {
	l := v.Len()
	if l < 1e-12 {
		return Vec3{}
	}
	return v.Scale(1 / l)
}

// Lerp returns a + (b-a)*t. t is not clamped.
func (a Vec3) Lerp(b Vec3, t float64) Vec3 {
	return a.Add(b.Sub(a).Scale(t))
}

// ApproxEqual reports whether every component differs by at most eps.
func (a Vec3) ApproxEqual(b Vec3, eps float64) bool {
	for i := 0; i < 3; i++ {
		if math.Abs(a[i]-b[i]) > eps {
			return false
		}
	}
	return true
}
