// Package surface implements the local surface-interaction model: emission,
// the Lambertian reflection BRDF, and Russian-roulette next-direction
// sampling, all evaluated at a single point on a triangle.
package surface

import (
	"math"

	"github.com/hxa7241/minilight-go/pkg/core"
	"github.com/hxa7241/minilight-go/pkg/geometry"
	"github.com/hxa7241/minilight-go/pkg/prng"
)

// distance2Floor clamps the squared-distance term in the solid-angle
// conversion so a sample arbitrarily close to an emitter cannot blow up to
// infinite radiance.
const distance2Floor = 1e-6

// Point is a non-owning reference to a Triangle plus a position on it.
// It is ephemeral: constructed fresh at every ray/triangle hit.
type Point struct {
	Triangle *geometry.Triangle
	Position core.Vec3
}

// New builds a Point for a hit on triangle at position.
func New(triangle *geometry.Triangle, position core.Vec3) Point {
	return Point{Triangle: triangle, Position: position}
}

// Emission returns the radiance this point emits toward toPosition, as seen
// along outDirection (the unit direction from this point toward
// toPosition). If isSolidAngle, the emissivity is converted from areal to
// solid-angle terms via cosArea / max(distance^2, distance2Floor);
// otherwise it is returned unscaled (used for a directly-visible emitter on
// the primary ray, where no solid-angle conversion applies).
func (p Point) Emission(toPosition, outDirection core.Vec3, isSolidAngle bool) core.Vec3 {
	ray := toPosition.Sub(p.Position)
	cosArea := outDirection.Dot(p.Triangle.Normal()) * p.Triangle.Area()
	if cosArea <= 0 {
		return core.Zero
	}
	solidAngle := 1.0
	if isSolidAngle {
		distance2 := ray.Dot(ray)
		solidAngle = cosArea / math.Max(distance2, distance2Floor)
	}
	return p.Triangle.Emissivity.Scale(solidAngle)
}

// Reflection evaluates the ideal Lambertian BRDF: inRadiance arriving along
// inDirection is reflected toward outDirection, scaled by reflectivity,
// |inDir.normal| and 1/pi. Returns zero if inDirection and outDirection
// fall on opposite sides of the normal.
func (p Point) Reflection(inDirection, inRadiance, outDirection core.Vec3) core.Vec3 {
	normal := p.Triangle.Normal()
	inDot := inDirection.Dot(normal)
	outDot := outDirection.Dot(normal)
	if (inDot < 0) != (outDot < 0) {
		return core.Zero
	}
	return inRadiance.Mul(p.Triangle.Reflectivity).Scale(math.Abs(inDot) / math.Pi)
}

// NextDirection draws a continuation direction for the path via Russian
// roulette on the mean reflectivity: with probability 1-meanReflectivity
// the path terminates (ok=false). Otherwise it returns a cosine-weighted
// hemisphere sample oriented to inDirection's side of the normal, along
// with the color weight reflectivity/meanReflectivity (the Russian-roulette
// rescaling that keeps the estimator unbiased).
func (p Point) NextDirection(random *prng.Random, inDirection core.Vec3) (color core.Vec3, direction core.Vec3, ok bool) {
	reflectivity := p.Triangle.Reflectivity
	meanReflectivity := (reflectivity.X + reflectivity.Y + reflectivity.Z) / 3.0

	if random.Float64() >= meanReflectivity {
		return core.Zero, core.Zero, false
	}

	normal := p.Triangle.Normal()
	if normal.Dot(inDirection) < 0 {
		normal = normal.Negate()
	}
	tangent := p.Triangle.Tangent()
	binormal := normal.Cross(tangent)

	r1 := random.Float64()
	r2 := random.Float64()
	phi := 2 * math.Pi * r1
	s := math.Sqrt(r2)
	lx := math.Cos(phi) * s
	ly := math.Sin(phi) * s
	lz := math.Sqrt(1 - r2)

	direction = tangent.Scale(lx).Add(binormal.Scale(ly)).Add(normal.Scale(lz))
	color = reflectivity.Scale(1.0 / meanReflectivity)
	return color, direction, true
}
