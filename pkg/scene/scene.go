// Package scene owns the static triangle set, the emitter sublist, and the
// default (sky/ground) background radiance, and answers nearest-hit queries
// through a spatial.Index.
package scene

import (
	"github.com/hxa7241/minilight-go/pkg/core"
	"github.com/hxa7241/minilight-go/pkg/geometry"
	"github.com/hxa7241/minilight-go/pkg/prng"
	"github.com/hxa7241/minilight-go/pkg/spatial"
)

// Scene is the static, read-only scene description: triangles, the
// sublist of those that emit light, sky/ground background radiance, and
// the spatial index used to answer ray queries.
type Scene struct {
	triangles []*geometry.Triangle
	emitters  []*geometry.Triangle
	sky       core.Vec3
	ground    core.Vec3
	index     *spatial.Index
}

// New builds a Scene from its triangles, eye position (used to size the
// spatial index's root bound), sky emission, and ground reflectivity.
// Ground radiance is sky scaled by groundReflectivity, per spec.md §4.6.
func New(eyePosition core.Vec3, triangles []*geometry.Triangle, sky core.Vec3, groundReflectivity core.Vec3) *Scene {
	emitters := make([]*geometry.Triangle, 0)
	for _, tri := range triangles {
		if tri.IsEmitter() {
			emitters = append(emitters, tri)
		}
	}
	return &Scene{
		triangles: triangles,
		emitters:  emitters,
		sky:       sky,
		ground:    sky.Mul(groundReflectivity),
		index:     spatial.Build(eyePosition, triangles),
	}
}

// Triangles returns every triangle in the scene.
func (s *Scene) Triangles() []*geometry.Triangle { return s.triangles }

// Emitters returns the sublist of emitting triangles.
func (s *Scene) Emitters() []*geometry.Triangle { return s.emitters }

// Intersect returns the nearest triangle hit by the ray from origin in
// direction, ignoring lastHit.
func (s *Scene) Intersect(origin, direction core.Vec3, lastHit *geometry.Triangle) (*geometry.Triangle, core.Vec3, bool) {
	return s.index.Nearest(origin, direction, lastHit)
}

// EmitterCount reports how many triangles emit light.
func (s *Scene) EmitterCount() int { return len(s.emitters) }

// SampleEmitter picks one emitter uniformly using a single random draw,
// returning nil if the scene has none. The selection is
// min(int(u*n), n-1) rather than a plain truncation, so that u=1 (which
// Random.Float64 never produces, but which would otherwise index past the
// end) is still handled safely.
func (s *Scene) SampleEmitter(random *prng.Random) *geometry.Triangle {
	u := random.Float64()
	n := len(s.emitters)
	if n == 0 {
		return nil
	}
	i := int(u * float64(n))
	if i >= n {
		i = n - 1
	}
	return s.emitters[i]
}

// DefaultEmission returns the background radiance for a ray leaving the
// scene; backDirection points back along the ray (the negation of its
// direction of travel). It is sky if the ray points upward (away from the
// ground plane, backDirection.Y < 0), sky*groundReflectivity otherwise.
func (s *Scene) DefaultEmission(backDirection core.Vec3) core.Vec3 {
	if backDirection.Y < 0 {
		return s.sky
	}
	return s.ground
}
