// Package filter tells glow, aura and other effect overlays apart from the
// solid geometry of a model.
package filter

import (
	"path/filepath"
	"regexp"
	"strings"

	"skelanim/internal/model"
)

var gradientEffectRE = regexp.MustCompile(`^(?:mini_|hangul)?gra(?:\d|_|$)`)

var effectPatterns = []string{
	"glow", "flare", "chrome", "effect",
	"aura", "shiny", "spark", "fire", "blur",
	"elec_light", "arrowlight", "lighting_mega", "pin_star",
	"lightmarks", "light_blue", "light_red",
	"energy", "plasma", "shine", "halo", "trail",
	"gradation", "sdblight", "alpha_line", "4x4", "damage",
	"ground_wind", "ground_star", "line_of_big",
	"force", "runeset",
	"shockwave", "swordeff",
}

// effectPrefixPatterns must match at the START of the texture stem only.
// "flame" is prefix-only to avoid false positives like "requitalbox_flame_wood".
var effectPrefixPatterns = []string{"flame"}

// TextureStem lowercases a texture reference and strips its directory and
// extension.
func TextureStem(texPath string) string {
	tex := strings.ToLower(strings.ReplaceAll(texPath, "\\", "/"))
	return strings.TrimSuffix(filepath.Base(tex), filepath.Ext(tex))
}

// IsEffectMesh reports whether the mesh's texture name marks it as an
// effect overlay.
func IsEffectMesh(m *model.Mesh) bool {
	stem := TextureStem(m.Name)

	if gradientEffectRE.MatchString(stem) {
		return true
	}
	for _, p := range effectPatterns {
		if strings.Contains(stem, p) {
			return true
		}
	}
	for _, p := range effectPrefixPatterns {
		if strings.HasPrefix(stem, p) {
			return true
		}
	}
	return false
}

// Solid returns the meshes that are not effect overlays.
func Solid(meshes []model.Mesh) []model.Mesh {
	out := make([]model.Mesh, 0, len(meshes))
	for i := range meshes {
		if !IsEffectMesh(&meshes[i]) {
			out = append(out, meshes[i])
		}
	}
	return out
}
