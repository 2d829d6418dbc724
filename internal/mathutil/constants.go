package mathutil

import "math"

// Epsilon guards denominators that may legitimately reach zero, such as the
// time between two keyframes sharing a timestamp.
const Epsilon = 1e-6

// Precomputed camera matrices for skeleton previews.
var (
	// ModelFlip converts Z-up (DirectX) to Y-up (OpenGL): Rx(-90°)
	ModelFlip = RotX(math.Pi / -2)

	// MirrorX converts left-handed to right-handed: diag(-1, 1, 1)
	MirrorX = Mat3Diag(-1, 1, 1)

	// PreviewView looks at a Z-up model from slightly above and to the side.
	// MIRROR_X @ Rx(-15°) @ Ry(30°) @ MODEL_FLIP
	PreviewView = Mat3Mul(Mat3Mul(Mat3Mul(MirrorX, RotX(Deg2Rad(-15))), RotY(Deg2Rad(30))), ModelFlip)
)
