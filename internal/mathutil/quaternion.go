package mathutil

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Quat represents a quaternion (x, y, z, w).
type Quat [4]float64

// QuatIdentity returns the no-rotation quaternion.
func QuatIdentity() Quat {
	return Quat{0, 0, 0, 1}
}

// EulerToQuat converts Euler XYZ (radians) to a quaternion.
// Matches MU Online's bmdAngleToQuaternion function.
func EulerToQuat(rx, ry, rz float64) Quat {
	cx, sx := math.Cos(rx*0.5), math.Sin(rx*0.5)
	cy, sy := math.Cos(ry*0.5), math.Sin(ry*0.5)
	cz, sz := math.Cos(rz*0.5), math.Sin(rz*0.5)

	return Quat{
		sx*cy*cz - cx*sy*sz, // x
		cx*sy*cz + sx*cy*sz, // y
		cx*cy*sz - sx*sy*cz, // z
		cx*cy*cz + sx*sy*sz, // w
	}
}

// QuatToMat3 converts a quaternion to a 3×3 rotation matrix (column-vector form).
func QuatToMat3(q Quat) Mat3 {
	x, y, z, w := q[0], q[1], q[2], q[3]
	xx, yy, zz := x*x, y*y, z*z
	xy, xz, yz := x*y, x*z, y*z
	wx, wy, wz := w*x, w*y, w*z

	return Mat3{
		1 - 2*(yy+zz), 2 * (xy - wz), 2 * (xz + wy),
		2 * (xy + wz), 1 - 2*(xx+zz), 2 * (yz - wx),
		2 * (xz - wy), 2 * (yz + wx), 1 - 2*(xx+yy),
	}
}

func (q Quat) Dot(r Quat) float64 {
	return q[0]*r[0] + q[1]*r[1] + q[2]*r[2] + q[3]*r[3]
}

// Normalize returns q scaled to unit length; a zero quaternion becomes identity.
func (q Quat) Normalize() Quat {
	return fromMgl(q.mgl().Normalize())
}

// ApproxEqual compares components within eps after flipping r onto q's
// hemisphere, so q and -q count as the same rotation.
func (q Quat) ApproxEqual(r Quat, eps float64) bool {
	if q.Dot(r) < 0 {
		r = Quat{-r[0], -r[1], -r[2], -r[3]}
	}
	for i := range q {
		if math.Abs(q[i]-r[i]) > eps {
			return false
		}
	}
	return true
}

// Slerp spherically interpolates along the shorter arc between q and r.
// t is not clamped.
func (q Quat) Slerp(r Quat, t float64) Quat {
	if q.Dot(r) < 0 {
		r = Quat{-r[0], -r[1], -r[2], -r[3]}
	}
	return fromMgl(mgl64.QuatSlerp(q.mgl(), r.mgl(), t))
}

func (q Quat) mgl() mgl64.Quat {
	return mgl64.Quat{W: q[3], V: mgl64.Vec3{q[0], q[1], q[2]}}
}

func fromMgl(m mgl64.Quat) Quat {
	return Quat{m.V[0], m.V[1], m.V[2], m.W}
}
