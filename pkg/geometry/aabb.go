package geometry

import (
	"math"

	"github.com/hxa7241/minilight-go/pkg/core"
)

// AABB is an axis-aligned bounding box.
type AABB struct {
	Lower, Upper core.Vec3
}

// NewAABBFromPoints returns the box enclosing every given point.
func NewAABBFromPoints(points ...core.Vec3) AABB {
	lower, upper := points[0], points[0]
	for _, p := range points[1:] {
		lower = lower.ClampMax(p)
		upper = upper.ClampMin(p)
	}
	return AABB{Lower: lower, Upper: upper}
}

// Expand returns the box grown by amount on every face.
func (b AABB) Expand(amount float64) AABB {
	d := core.Splat(amount)
	return AABB{Lower: b.Lower.Sub(d), Upper: b.Upper.Add(d)}
}

// Union returns the box enclosing both b and o.
func (b AABB) Union(o AABB) AABB {
	return AABB{Lower: b.Lower.ClampMax(o.Lower), Upper: b.Upper.ClampMin(o.Upper)}
}

// UnionPoint returns the box enclosing b and p.
func (b AABB) UnionPoint(p core.Vec3) AABB {
	return AABB{Lower: b.Lower.ClampMax(p), Upper: b.Upper.ClampMin(p)}
}

// Center returns the midpoint of the box.
func (b AABB) Center() core.Vec3 {
	return b.Lower.Add(b.Upper).Scale(0.5)
}

// Size returns the extent of the box along each axis.
func (b AABB) Size() core.Vec3 {
	return b.Upper.Sub(b.Lower)
}

// LargestExtent returns the largest of the box's three axial extents.
func (b AABB) LargestExtent() float64 {
	s := b.Size()
	return math.Max(s.X, math.Max(s.Y, s.Z))
}

// AsCube returns b with its upper corner pushed out so every axis has the
// same extent as the box's largest axis, keeping the lower corner fixed.
func (b AABB) AsCube() AABB {
	edge := b.LargestExtent()
	return AABB{Lower: b.Lower, Upper: b.Lower.Add(core.Splat(edge))}
}

// Contains reports whether p lies within the box (inclusive of the bounds).
func (b AABB) Contains(p core.Vec3) bool {
	return p.X >= b.Lower.X && p.X <= b.Upper.X &&
		p.Y >= b.Lower.Y && p.Y <= b.Upper.Y &&
		p.Z >= b.Lower.Z && p.Z <= b.Upper.Z
}

// Overlaps reports whether b and o overlap on all three axes, using >= on
// the lower side and < on the upper side (the convention the octree build
// uses to place a triangle into every overlapping child).
func (b AABB) Overlaps(o AABB) bool {
	return b.Upper.X >= o.Lower.X && b.Lower.X < o.Upper.X &&
		b.Upper.Y >= o.Lower.Y && b.Lower.Y < o.Upper.Y &&
		b.Upper.Z >= o.Lower.Z && b.Lower.Z < o.Upper.Z
}
