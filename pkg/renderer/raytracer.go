// Package renderer implements the path-tracing radiance estimator and the
// camera that drives it across an image's pixels.
package renderer

import (
	"github.com/hxa7241/minilight-go/pkg/core"
	"github.com/hxa7241/minilight-go/pkg/geometry"
	"github.com/hxa7241/minilight-go/pkg/prng"
	"github.com/hxa7241/minilight-go/pkg/scene"
	"github.com/hxa7241/minilight-go/pkg/surface"
)

// maxDepth is a safety cap on path recursion. Russian roulette terminates
// every path in expectation; this only guards against a pathological scene
// (e.g. reflectivity pinned near 1 everywhere) exhausting the stack.
const maxDepth = 200

// RayTracer estimates radiance along a ray via Monte-Carlo path tracing
// with next-event (emitter) sampling and Russian-roulette termination.
type RayTracer struct {
	scene *scene.Scene
}

// NewRayTracer builds a RayTracer over scene s.
func NewRayTracer(s *scene.Scene) *RayTracer {
	return &RayTracer{scene: s}
}

// Radiance estimates the radiance arriving at origin from direction
// (unit length). lastHit is the triangle the ray is leaving (nil for a
// primary camera ray), excluded from the nearest-hit query to avoid
// self-intersection.
func (rt *RayTracer) Radiance(origin, direction core.Vec3, random *prng.Random, lastHit *geometry.Triangle) core.Vec3 {
	return rt.radiance(origin, direction, random, lastHit, 0)
}

func (rt *RayTracer) radiance(origin, direction core.Vec3, random *prng.Random, lastHit *geometry.Triangle, depth int) core.Vec3 {
	tri, point, hit := rt.scene.Intersect(origin, direction, lastHit)
	if !hit {
		return rt.scene.DefaultEmission(direction.Negate())
	}
	sp := surface.New(tri, point)

	var localEmission core.Vec3
	if lastHit == nil {
		// Emitters otherwise contribute only via next-event sampling below;
		// a directly-visible emitter on the primary ray needs this term.
		localEmission = sp.Emission(origin, direction.Negate(), false)
	}

	illumination := rt.sampleEmitter(sp, direction, random)

	var reflected core.Vec3
	if depth < maxDepth {
		if color, nextDir, ok := sp.NextDirection(random, direction.Negate()); ok {
			reflected = color.Mul(rt.radiance(point, nextDir, random, tri, depth+1))
		}
	}

	return reflected.Add(illumination).Add(localEmission)
}

// sampleEmitter performs next-event estimation: picks one emitter, traces a
// shadow ray to a sampled point on it, and if unobstructed folds its
// contribution through the surface BRDF. inDirection is the direction of
// travel of the ray that hit sp (used only to orient the outgoing side of
// the reflection).
func (rt *RayTracer) sampleEmitter(sp surface.Point, inDirection core.Vec3, random *prng.Random) core.Vec3 {
	emitter := rt.scene.SampleEmitter(random)
	if emitter == nil {
		return core.Zero
	}

	r1 := random.Float64()
	r2 := random.Float64()
	emitterPosition := emitter.SamplePoint(r1, r2)

	toEmitter := emitterPosition.Sub(sp.Position)
	distance := toEmitter.Length()
	if distance == 0 {
		return core.Zero
	}
	shadowDirection := toEmitter.Scale(1 / distance)

	hitTri, _, hit := rt.scene.Intersect(sp.Position, shadowDirection, sp.Triangle)
	if hit && hitTri != emitter {
		return core.Zero
	}

	arrivalDirection := shadowDirection.Negate()
	emitterSurface := surface.New(emitter, emitterPosition)
	arrivingRadiance := emitterSurface.Emission(sp.Position, arrivalDirection, true).
		Scale(float64(rt.scene.EmitterCount()))

	return sp.Reflection(shadowDirection, arrivingRadiance, inDirection.Negate())
}
