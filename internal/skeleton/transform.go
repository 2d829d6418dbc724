package skeleton

import "skelanim/internal/mathutil"

// Transform is a scale/rotation/translation triple.
type Transform struct {
	Scale       mathutil.Vec3
	Rotation    mathutil.Quat
	Translation mathutil.Vec3
}

// IdentityTransform returns unit scale, no rotation and no translation.
func IdentityTransform() Transform {
	return Transform{
		Scale:    mathutil.Vec3{1, 1, 1},
		Rotation: mathutil.QuatIdentity(),
	}
}

// ToWorldMatrix returns Scale × Rotation with the translation row set.
func (tr Transform) ToWorldMatrix() mathutil.Mat4 {
	m := mathutil.Mat4Mul(mathutil.Mat4Scale(tr.Scale), mathutil.Mat4FromQuat(tr.Rotation))
	return m.WithTranslation(tr.Translation)
}

// InterpolateTransform lerps scale and translation and slerps rotation.
// t is not clamped; values outside [0,1] extrapolate.
func InterpolateTransform(lhs, rhs Transform, t float64) Transform {
	return Transform{
		Scale:       lhs.Scale.Lerp(rhs.Scale, t),
		Rotation:    lhs.Rotation.Slerp(rhs.Rotation, t),
		Translation: lhs.Translation.Lerp(rhs.Translation, t),
	}
}

// ApproxEqual compares two transforms component-wise within eps.
func (tr Transform) ApproxEqual(o Transform, eps float64) bool {
	return tr.Scale.ApproxEqual(o.Scale, eps) &&
		tr.Rotation.ApproxEqual(o.Rotation, eps) &&
		tr.Translation.ApproxEqual(o.Translation, eps)
}
