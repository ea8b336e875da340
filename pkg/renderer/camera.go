package renderer

import (
	"math"

	"github.com/hxa7241/minilight-go/pkg/core"
	"github.com/hxa7241/minilight-go/pkg/image"
	"github.com/hxa7241/minilight-go/pkg/prng"
)

const (
	minViewAngleDegrees = 10.0
	maxViewAngleDegrees = 160.0
)

// Camera holds the view frame (position, direction, right, up) and view
// angle, and drives one pass of per-pixel ray generation and accumulation
// into an Image.
type Camera struct {
	position     core.Vec3
	direction    core.Vec3
	right        core.Vec3
	up           core.Vec3
	tanHalfAngle float64
}

// NewCamera builds a Camera from a view position, a (not necessarily unit)
// view direction, and a view angle in degrees. A zero direction falls back
// to (0,0,1). The right/up frame is built so (right, up, direction) is
// right-handed, with a fallback when direction is vertical.
func NewCamera(position, direction core.Vec3, angleDegrees float64) *Camera {
	d := direction.Unitize()
	if d.IsZero() {
		d = core.NewVec3(0, 0, 1)
	}

	up0 := core.NewVec3(0, 1, 0)
	right := up0.Cross(d).Unitize()
	if right.IsZero() {
		upY := -1.0
		if d.Y < 0 {
			upY = 1.0
		}
		up0 = core.NewVec3(0, 0, upY)
		right = up0.Cross(d).Unitize()
	}
	up := d.Cross(right).Unitize()

	angle := angleDegrees
	if angle < minViewAngleDegrees {
		angle = minViewAngleDegrees
	} else if angle > maxViewAngleDegrees {
		angle = maxViewAngleDegrees
	}
	angleRadians := angle * math.Pi / 180.0

	return &Camera{
		position:     position,
		direction:    d,
		right:        right,
		up:           up,
		tanHalfAngle: math.Tan(angleRadians / 2),
	}
}

// Position returns the camera's view position (the path-tracing origin for
// every primary ray, and the point a spatial index's root bound must
// enclose).
func (c *Camera) Position() core.Vec3 { return c.position }

// RenderFrame traces one path per pixel of img, row-major y outer and x
// inner, consuming each pixel's two jitter draws before tracing its ray
// (the ordering the reference output depends on).
func (c *Camera) RenderFrame(tracer *RayTracer, random *prng.Random, img *image.Image) {
	w, h := img.Width(), img.Height()
	aspect := float64(h) / float64(w)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			jx := random.Float64()
			jy := random.Float64()

			xc := 2*(float64(x)+jx)/float64(w) - 1
			yc := 2*(float64(y)+jy)/float64(h) - 1

			offset := c.right.Scale(xc).Add(c.up.Scale(yc * aspect))
			sampleDirection := c.direction.Add(offset.Scale(c.tanHalfAngle)).Unitize()

			radiance := tracer.Radiance(c.position, sampleDirection, random, nil)
			img.AddToPixel(x, y, radiance)
		}
	}
}
