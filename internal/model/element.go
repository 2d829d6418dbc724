package model

import "strings"

// Element is a set of per-model feature flags.
type Element uint32

const (
	ElementShadow Element = 1 << iota
	ElementCollider
	ElementSkinned
	ElementRaycastTarget

	ElementNone Element = 0
)

var elementNames = []struct {
	flag Element
	name string
}{
	{ElementShadow, "shadow"},
	{ElementCollider, "collider"},
	{ElementSkinned, "skinned"},
	{ElementRaycastTarget, "raycast"},
}

// Has reports whether every flag in f is set.
func (e Element) Has(f Element) bool { return e&f == f }

func (e Element) Add(f Element) Element { return e | f }

func (e Element) Remove(f Element) Element { return e &^ f }

func (e Element) String() string {
	if e == ElementNone {
		return "none"
	}
	var parts []string
	for _, n := range elementNames {
		if e.Has(n.flag) {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}
