package geometry

import (
	"math"

	"github.com/hxa7241/minilight-go/pkg/core"
)

// Tolerance is the geometric slack used when enclosing triangles in bounds
// and when testing hit points against octree cell bounds.
const Tolerance = 1.0 / 1024.0 // 2^-10

// epsilon is the threshold on the Moller-Trumbore determinant below which a
// ray is treated as parallel to the triangle's plane.
const epsilon = 1.0 / 1048576.0 // 2^-20

// Triangle is an immutable geometric primitive: three vertices plus
// reflectivity and emissivity. It is constructed once from the scene
// description and never mutated afterward.
type Triangle struct {
	V0, V1, V2   core.Vec3
	e0, e3       core.Vec3 // e0 = V1-V0, e3 = V2-V0
	Reflectivity core.Vec3
	Emissivity   core.Vec3
	tangent      core.Vec3
	normal       core.Vec3
	area         float64
	bound        AABB
}

// NewTriangle builds a Triangle, clamping reflectivity to [0,1-eps] and
// emissivity to >= 0, and precomputing edges, tangent, normal, area and
// bound.
func NewTriangle(v0, v1, v2 core.Vec3, reflectivity, emissivity core.Vec3) *Triangle {
	e0 := v1.Sub(v0)
	e3 := v2.Sub(v0)
	crossEdge := e0.Cross(v2.Sub(v1))

	t := &Triangle{
		V0:           v0,
		V1:           v1,
		V2:           v2,
		e0:           e0,
		e3:           e3,
		Reflectivity: reflectivity.Clamp01(),
		Emissivity:   emissivity.ClampMin(core.Zero),
		tangent:      e0.Unitize(),
		normal:       crossEdge.Unitize(),
		area:         0.5 * crossEdge.Length(),
	}
	t.bound = NewAABBFromPoints(v0, v1, v2).Expand(Tolerance)
	return t
}

// Normal returns the triangle's unit normal.
func (t *Triangle) Normal() core.Vec3 { return t.normal }

// Tangent returns the triangle's unit tangent (= unitize(e0)).
func (t *Triangle) Tangent() core.Vec3 { return t.tangent }

// Area returns the triangle's area.
func (t *Triangle) Area() float64 { return t.area }

// Bound returns the triangle's axis-aligned bound, expanded by Tolerance.
func (t *Triangle) Bound() AABB { return t.bound }

// Hit performs a Moller-Trumbore intersection test. It returns the
// intersection distance and true on a hit at distance >= 0, or (0, false)
// on a miss.
func (t *Triangle) Hit(origin, direction core.Vec3) (float64, bool) {
	p := direction.Cross(t.e3)
	det := t.e0.Dot(p)
	if det > -epsilon && det < epsilon {
		return 0, false
	}
	invDet := 1 / det

	tv := origin.Sub(t.V0)
	u := tv.Dot(p) * invDet
	if u < 0 || u > 1 {
		return 0, false
	}

	q := tv.Cross(t.e0)
	v := direction.Dot(q) * invDet
	if v < 0 || u+v > 1 {
		return 0, false
	}

	dist := t.e3.Dot(q) * invDet
	if dist < 0 {
		return 0, false
	}
	return dist, true
}

// SamplePoint returns a uniformly distributed point on the triangle's
// surface given two uniform draws in [0,1).
func (t *Triangle) SamplePoint(r1, r2 float64) core.Vec3 {
	s := math.Sqrt(r1)
	a := 1 - s
	b := (1 - r2) * s
	return t.V0.Add(t.e0.Scale(a)).Add(t.e3.Scale(b))
}

// IsEmitter reports whether the triangle has non-zero emissivity and
// positive area.
func (t *Triangle) IsEmitter() bool {
	return !t.Emissivity.IsZero() && t.area > 0
}
