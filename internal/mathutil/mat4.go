package mathutil

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Mat4 is a 4×4 matrix stored row-major. Bone matrices follow the row-vector
// convention (v' = v × M): translation lives in the last row and a child's
// world matrix is local × parentWorld.
type Mat4 [16]float64

func Mat4Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Mat4Mul returns a × b.
func Mat4Mul(a, b Mat4) Mat4 {
	var m Mat4
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			m[r*4+c] = a[r*4+0]*b[0*4+c] + a[r*4+1]*b[1*4+c] +
				a[r*4+2]*b[2*4+c] + a[r*4+3]*b[3*4+c]
		}
	}
	return m
}

// Mat4Scale returns a diagonal scale matrix.
func Mat4Scale(s Vec3) Mat4 {
	return Mat4{
		s[0], 0, 0, 0,
		0, s[1], 0, 0,
		0, 0, s[2], 0,
		0, 0, 0, 1,
	}
}

// Mat4FromQuat returns the row-vector rotation matrix of q.
func Mat4FromQuat(q Quat) Mat4 {
	r := QuatToMat3(q).Transpose()
	return Mat4{
		r[0], r[1], r[2], 0,
		r[3], r[4], r[5], 0,
		r[6], r[7], r[8], 0,
		0, 0, 0, 1,
	}
}

// Mat4Lerp blends a and b element-wise. t is not clamped.
func Mat4Lerp(a, b Mat4, t float64) Mat4 {
	var m Mat4
	for i := range m {
		m[i] = a[i] + (b[i]-a[i])*t
	}
	return m
}

// WithTranslation returns m with its translation row replaced by t.
func (m Mat4) WithTranslation(t Vec3) Mat4 {
	m[12], m[13], m[14] = t[0], t[1], t[2]
	return m
}

// Translation returns the translation row.
func (m Mat4) Translation() Vec3 {
	return Vec3{m[12], m[13], m[14]}
}

// MulPoint transforms a 3D point (w=1) as a row vector.
func (m Mat4) MulPoint(v Vec3) Vec3 {
	return Vec3{
		v[0]*m[0] + v[1]*m[4] + v[2]*m[8] + m[12],
		v[0]*m[1] + v[1]*m[5] + v[2]*m[9] + m[13],
		v[0]*m[2] + v[1]*m[6] + v[2]*m[10] + m[14],
	}
}

// MulDir transforms a direction (w=0) as a row vector.
func (m Mat4) MulDir(v Vec3) Vec3 {
	return Vec3{
		v[0]*m[0] + v[1]*m[4] + v[2]*m[8],
		v[0]*m[1] + v[1]*m[5] + v[2]*m[9],
		v[0]*m[2] + v[1]*m[6] + v[2]*m[10],
	}
}

// Inverse returns the inverse of m, or the zero matrix if m is singular.
func (m Mat4) Inverse() Mat4 {
	// Row-major M read as column-major is Mᵀ, and inv(Mᵀ) = inv(M)ᵀ,
	// so the round trip through mgl64 needs no explicit transposes.
	return Mat4(mgl64.Mat4(m).Inv())
}

// ApproxEqual reports whether every element differs by at most eps.
func (m Mat4) ApproxEqual(o Mat4, eps float64) bool {
	for i := range m {
		if math.Abs(m[i]-o[i]) > eps {
			return false
		}
	}
	return true
}

// IsIdentity checks if the matrix is approximately identity.
func (m Mat4) IsIdentity() bool {
	return m.ApproxEqual(Mat4Identity(), 1e-8)
}
