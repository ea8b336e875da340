// Package spatial implements the octree spatial index used to accelerate
// nearest ray/triangle intersection queries over a static triangle set.
package spatial

import (
	"math"

	"github.com/hxa7241/minilight-go/pkg/core"
	"github.com/hxa7241/minilight-go/pkg/geometry"
)

const (
	// maxLevels bounds octree depth; beyond it a node is forced to be a leaf
	// regardless of how many triangles it holds.
	maxLevels = 44
	// maxItems is the triangle count above which a node subdivides (unless
	// maxLevels has been reached).
	maxItems = 8
)

// node is the tagged union of octree node kinds: branchNode and leafNode
// both satisfy it.
type node interface {
	hit(origin, direction core.Vec3, lastHit *geometry.Triangle, start core.Vec3) (*geometry.Triangle, core.Vec3, bool)
	bound() geometry.AABB
}

// branchNode splits its cubical bound into eight octants at the midpoint.
// Octant index bit i selects the low (0) or high (1) half on axis i.
type branchNode struct {
	boundBox geometry.AABB
	mid      core.Vec3
	children [8]node
}

func (b *branchNode) bound() geometry.AABB { return b.boundBox }

// leafNode stores the (small) set of triangles that reached this cell.
type leafNode struct {
	boundBox  geometry.AABB
	triangles []*geometry.Triangle
}

func (l *leafNode) bound() geometry.AABB { return l.boundBox }

// Index is an octree built once over a static triangle set and queried
// read-only thereafter.
type Index struct {
	root node
}

// Build constructs the octree over triangles, with the root bound expanded
// to also enclose eyePosition (so ray traversal always starts inside the
// root) and squared into a cube.
func Build(eyePosition core.Vec3, triangles []*geometry.Triangle) *Index {
	var boundBox geometry.AABB
	if len(triangles) == 0 {
		boundBox = geometry.AABB{Lower: eyePosition, Upper: eyePosition}
	} else {
		boundBox = triangles[0].Bound()
		for _, t := range triangles[1:] {
			boundBox = boundBox.Union(t.Bound())
		}
		boundBox = boundBox.UnionPoint(eyePosition)
	}
	boundBox = boundBox.AsCube()
	return &Index{root: build(triangles, boundBox, 0)}
}

// Bound returns the root node's bound.
func (idx *Index) Bound() geometry.AABB { return idx.root.bound() }

// Nearest returns the closest triangle (and world-space hit point) struck by
// the ray from origin in direction, ignoring lastHit (used to avoid
// self-intersection on a ray leaving a surface). direction must be unit
// length. Returns ok=false if nothing is hit.
func (idx *Index) Nearest(origin, direction core.Vec3, lastHit *geometry.Triangle) (tri *geometry.Triangle, point core.Vec3, ok bool) {
	return idx.root.hit(origin, direction, lastHit, origin)
}

func build(triangles []*geometry.Triangle, boundBox geometry.AABB, depth int) node {
	if len(triangles) <= maxItems || depth >= maxLevels-1 {
		return &leafNode{boundBox: boundBox, triangles: triangles}
	}

	mid := boundBox.Center()
	var childBounds [8]geometry.AABB
	var childTriangles [8][]*geometry.Triangle
	for i := 0; i < 8; i++ {
		childBounds[i] = octantBound(boundBox, mid, i)
	}
	for _, tri := range triangles {
		tb := tri.Bound()
		for i := 0; i < 8; i++ {
			if tb.Overlaps(childBounds[i]) {
				childTriangles[i] = append(childTriangles[i], tri)
			}
		}
	}

	// Degenerate-subdivision guard (spec.md §4.4 step 6): more than one
	// child replicating the parent's full set, or a child edge collapsing
	// below 4*Tolerance, forces immediate leaves — otherwise a huge
	// triangle spanning every octant would recurse to maxLevels for no
	// benefit, or subdivision would never bottom out.
	fullCount := 0
	smallEdge := false
	for i := 0; i < 8; i++ {
		if len(childTriangles[i]) == len(triangles) {
			fullCount++
		}
		if childBounds[i].LargestExtent() < 4*geometry.Tolerance {
			smallEdge = true
		}
	}
	childDepth := depth + 1
	if fullCount > 1 || smallEdge {
		childDepth = maxLevels
	}

	b := &branchNode{boundBox: boundBox, mid: mid}
	for i := 0; i < 8; i++ {
		if len(childTriangles[i]) == 0 {
			continue
		}
		b.children[i] = build(childTriangles[i], childBounds[i], childDepth)
	}
	return b
}

// octantBound splits parent at mid, keeping the low half of an axis when
// octant's bit for that axis is 0, the high half when it is 1.
func octantBound(parent geometry.AABB, mid core.Vec3, octant int) geometry.AABB {
	lo := [3]float64{parent.Lower.X, parent.Lower.Y, parent.Lower.Z}
	hi := [3]float64{parent.Upper.X, parent.Upper.Y, parent.Upper.Z}
	m := [3]float64{mid.X, mid.Y, mid.Z}
	for axis := 0; axis < 3; axis++ {
		if (octant>>uint(axis))&1 == 0 {
			hi[axis] = m[axis]
		} else {
			lo[axis] = m[axis]
		}
	}
	return geometry.AABB{
		Lower: core.NewVec3(lo[0], lo[1], lo[2]),
		Upper: core.NewVec3(hi[0], hi[1], hi[2]),
	}
}

// octantOf returns the octant index of p relative to mid: bit i is set when
// p's component on axis i is on the high side.
func octantOf(p, mid core.Vec3) int {
	idx := 0
	if p.X >= mid.X {
		idx |= 1
	}
	if p.Y >= mid.Y {
		idx |= 2
	}
	if p.Z >= mid.Z {
		idx |= 4
	}
	return idx
}

func (l *leafNode) hit(origin, direction core.Vec3, lastHit *geometry.Triangle, start core.Vec3) (*geometry.Triangle, core.Vec3, bool) {
	expanded := l.boundBox.Expand(geometry.Tolerance)
	var bestTri *geometry.Triangle
	var bestPoint core.Vec3
	bestDist := math.Inf(1)

	for _, tri := range l.triangles {
		if tri == lastHit {
			continue
		}
		dist, ok := tri.Hit(origin, direction)
		if !ok || dist < 0 || dist >= bestDist {
			continue
		}
		point := origin.Add(direction.Scale(dist))
		if !expanded.Contains(point) {
			continue
		}
		bestTri, bestPoint, bestDist = tri, point, dist
	}
	return bestTri, bestPoint, bestTri != nil
}

func (b *branchNode) hit(origin, direction core.Vec3, lastHit *geometry.Triangle, start core.Vec3) (*geometry.Triangle, core.Vec3, bool) {
	bits := [3]int{0, 0, 0}
	oct := octantOf(start, b.mid)
	for axis := 0; axis < 3; axis++ {
		bits[axis] = (oct >> uint(axis)) & 1
	}

	lower := [3]float64{b.boundBox.Lower.X, b.boundBox.Lower.Y, b.boundBox.Lower.Z}
	upper := [3]float64{b.boundBox.Upper.X, b.boundBox.Upper.Y, b.boundBox.Upper.Z}
	mid := [3]float64{b.mid.X, b.mid.Y, b.mid.Z}
	originArr := [3]float64{origin.X, origin.Y, origin.Z}
	dirArr := [3]float64{direction.X, direction.Y, direction.Z}

	for {
		idx := bits[0] | bits[1]<<1 | bits[2]<<2
		if child := b.children[idx]; child != nil {
			if tri, point, ok := child.hit(origin, direction, lastHit, start); ok {
				return tri, point, true
			}
		}

		bestAxis := -1
		bestT := math.Inf(1)
		bestExits := false
		for axis := 0; axis < 3; axis++ {
			d := dirArr[axis]
			if d == 0 {
				continue
			}
			var face float64
			var exits bool
			movingHigh := d > 0
			if (movingHigh && bits[axis] == 1) || (!movingHigh && bits[axis] == 0) {
				if bits[axis] == 1 {
					face = upper[axis]
				} else {
					face = lower[axis]
				}
				exits = true
			} else {
				face = mid[axis]
				exits = false
			}
			t := (face - originArr[axis]) / d
			if t < bestT {
				bestT, bestAxis, bestExits = t, axis, exits
			}
		}

		if bestAxis == -1 || bestExits {
			return nil, core.Zero, false
		}

		bits[bestAxis] ^= 1
		start = core.NewVec3(
			originArr[0]+dirArr[0]*bestT,
			originArr[1]+dirArr[1]*bestT,
			originArr[2]+dirArr[2]*bestT,
		)
	}
}
