package filter

import (
	"testing"

	"skelanim/internal/model"
)

func TestIsEffectMesh(t *testing.T) {
	tests := []struct {
		tex  string
		want bool
	}{
		{"Player/ArmorMale01.jpg", false},
		{`Player\HQskinClass313.OZJ`, false},
		{"Effect/glow01.jpg", true},
		{"gra_01.jpg", true},
		{"mini_gra2.tga", true},
		{"grass01.jpg", false},
		{"flame_wing.jpg", true},
		{"requitalbox_flame_wood.jpg", false},
		{"AuraBlue.tga", true},
	}
	for _, tt := range tests {
		t.Run(tt.tex, func(t *testing.T) {
			m := model.Mesh{Name: tt.tex}
			if got := IsEffectMesh(&m); got != tt.want {
				t.Errorf("Expected %v for %q, got %v", tt.want, tt.tex, got)
			}
		})
	}
}

func TestSolid(t *testing.T) {
	meshes := []model.Mesh{{Name: "body.jpg"}, {Name: "glow.jpg"}, {Name: "head.jpg"}}
	got := Solid(meshes)
	if len(got) != 2 || got[0].Name != "body.jpg" || got[1].Name != "head.jpg" {
		t.Errorf("Expected body and head, got %+v", got)
	}
}
