// Package collision answers ray queries against static triangle soups,
// mainly ground and terrain height checks.
package collision

import (
	"math"

	"skelanim/internal/mathutil"
)

// CullMode selects which winding counts as front-facing for a whole group.
type CullMode int

const (
	// CullBack treats A→B→C as the front face.
	CullBack CullMode = iota
	// CullFront treats A→C→B as the front face.
	CullFront
)

func (c CullMode) String() string {
	switch c {
	case CullBack:
		return "back"
	case CullFront:
		return "front"
	}
	return "unknown"
}

// Polygon is one triangle.
type Polygon struct {
	Vertices [3]mathutil.Vec3
}

// PolygonGroup is a read-only triangle soup sharing one cull convention.
type PolygonGroup struct {
	Polygons []Polygon
	Cull     CullMode
}

// Hit describes the nearest intersection found by a raycast.
type Hit struct {
	Index        int // polygon index within the group
	Distance     float64
	Intersection mathutil.Vec3
	Normal       mathutil.Vec3 // unit length
	Triangle     [3]mathutil.Vec3
}

func NewPolygonGroup(cull CullMode, polygons ...Polygon) *PolygonGroup {
	return &PolygonGroup{Polygons: polygons, Cull: cull}
}

// ordered returns the triangle's vertices in front-face order for the
// group's cull mode.
func (g *PolygonGroup) ordered(p *Polygon) [3]mathutil.Vec3 {
	v := p.Vertices
	if g.Cull == CullFront {
		return [3]mathutil.Vec3{v[0], v[2], v[1]}
	}
	return v
}

func edges(v [3]mathutil.Vec3) [3]mathutil.Vec3 {
	return [3]mathutil.Vec3{v[1].Sub(v[0]), v[2].Sub(v[1]), v[0].Sub(v[2])}
}

// Raycast finds the nearest front-facing triangle hit by the ray starting at
// from and pointing toward to. The ray is not limited to the segment length.
// With onlyIsIntersect the first hit found is returned instead of the nearest.
func (g *PolygonGroup) Raycast(from, to mathutil.Vec3, onlyIsIntersect bool) (Hit, bool) {
	dir := to.Sub(from).Normalize()
	if dir == (mathutil.Vec3{}) {
		return Hit{}, false
	}

	best := Hit{Distance: math.Inf(1)}
	found := false

	for i := range g.Polygons {
		v := g.ordered(&g.Polygons[i])
		e := edges(v)
		n := e[0].Cross(e[1])

		// Back-facing or parallel to the ray.
		denom := n.Dot(dir)
		if denom > -mathutil.Epsilon {
			continue
		}

		dist := n.Dot(v[0].Sub(from)) / denom
		if dist < 0 || dist >= best.Distance {
			continue
		}

		p := from.Add(dir.Scale(dist))
		if !inside(p, v, e, n) {
			continue
		}

		best = Hit{
			Index:        i,
			Distance:     dist,
			Intersection: p,
			Normal:       n.Normalize(),
			Triangle:     g.Polygons[i].Vertices,
		}
		found = true
		if onlyIsIntersect {
			break
		}
	}

	if !found {
		return Hit{}, false
	}
	return best, true
}

func inside(p mathutil.Vec3, v, e [3]mathutil.Vec3, n mathutil.Vec3) bool {
	for k := 0; k < 3; k++ {
		if v[k].Sub(p).Cross(e[k]).Dot(n) < 0 {
			return false
		}
	}
	return true
}

// RaycastWorld runs Raycast for a group placed in the world by world
// (row-vector convention). The ray is given and the hit is returned in world
// space.
func (g *PolygonGroup) RaycastWorld(from, to mathutil.Vec3, world mathutil.Mat4, onlyIsIntersect bool) (Hit, bool) {
	inv := world.Inverse()
	hit, ok := g.Raycast(inv.MulPoint(from), inv.MulPoint(to), onlyIsIntersect)
	if !ok {
		return Hit{}, false
	}

	for k := range hit.Triangle {
		hit.Triangle[k] = world.MulPoint(hit.Triangle[k])
	}
	hit.Intersection = world.MulPoint(hit.Intersection)

	wv := g.ordered(&Polygon{Vertices: hit.Triangle})
	we := edges(wv)
	hit.Normal = we[0].Cross(we[1]).Normalize()
	hit.Distance = hit.Intersection.Sub(from).Len()
	return hit, true
}

// Intersects reports whether the ray hits any front-facing triangle.
func (g *PolygonGroup) Intersects(from, to mathutil.Vec3) bool {
	_, ok := g.Raycast(from, to, true)
	return ok
}
