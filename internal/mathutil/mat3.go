package mathutil

import "github.com/go-gl/mathgl/mgl64"

// Mat3 is a 3×3 matrix stored row-major and applied to column vectors
// (M × v). mgl64 stores column-major, so a Mat3 read as mgl64.Mat3 is the
// transpose.
type Mat3 [9]float64

func Mat3Identity() Mat3 {
	return Mat3(mgl64.Ident3())
}

func Mat3Diag(x, y, z float64) Mat3 {
	return Mat3(mgl64.Diag3(mgl64.Vec3{x, y, z}))
}

func fromColumnMajor(m mgl64.Mat3) Mat3 {
	return Mat3(m.Transpose())
}

// Mat3Mul returns a × b. In mgl64 terms that is (bᵀ aᵀ)ᵀ, which is already
// the row-major layout.
func Mat3Mul(a, b Mat3) Mat3 {
	return Mat3(mgl64.Mat3(b).Mul3(mgl64.Mat3(a)))
}

// MulVec3 returns M × v.
func (m Mat3) MulVec3(v Vec3) Vec3 {
	return Vec3(mgl64.Mat3(m).Transpose().Mul3x1(mgl64.Vec3(v)))
}

func (m Mat3) Transpose() Mat3 {
	return Mat3(mgl64.Mat3(m).Transpose())
}

// RotX returns a rotation about the X axis. Angle in radians.
func RotX(a float64) Mat3 { return fromColumnMajor(mgl64.Rotate3DX(a)) }

// RotY returns a rotation about the Y axis.
func RotY(a float64) Mat3 { return fromColumnMajor(mgl64.Rotate3DY(a)) }

// RotZ returns a rotation about the Z axis.
func RotZ(a float64) Mat3 { return fromColumnMajor(mgl64.Rotate3DZ(a)) }

func Deg2Rad(d float64) float64 { return mgl64.DegToRad(d) }
