package geometry

import (
	"math"
	"testing"

	"github.com/hxa7241/minilight-go/pkg/core"
)

func axisAlignedTriangle() *Triangle {
	return NewTriangle(
		core.NewVec3(-1, -1, 0),
		core.NewVec3(1, -1, 0),
		core.NewVec3(0, 1, 0),
		core.NewVec3(0.5, 0.5, 0.5),
		core.Zero,
	)
}

func TestTriangle_HitCentroidNormal(t *testing.T) {
	tri := axisAlignedTriangle()
	centroid := tri.V0.Add(tri.V1).Add(tri.V2).Scale(1.0 / 3.0)
	origin := centroid.Add(core.NewVec3(0, 0, 5))
	dir := core.NewVec3(0, 0, -1)

	dist, hit := tri.Hit(origin, dir)
	if !hit {
		t.Fatal("expected a hit")
	}
	if math.Abs(dist-5) > 1e-9 {
		t.Errorf("distance = %v, want 5", dist)
	}
}

func TestTriangle_HitParallelMisses(t *testing.T) {
	tri := axisAlignedTriangle()
	origin := core.NewVec3(0, 0, 1)
	dir := core.NewVec3(1, 0, 0) // parallel to the triangle's plane (z=0)

	if _, hit := tri.Hit(origin, dir); hit {
		t.Error("expected a miss for a ray parallel to the triangle plane")
	}
}

func TestTriangle_HitBackFaceValid(t *testing.T) {
	tri := axisAlignedTriangle()
	centroid := tri.V0.Add(tri.V1).Add(tri.V2).Scale(1.0 / 3.0)
	origin := centroid.Sub(core.NewVec3(0, 0, 5))
	dir := core.NewVec3(0, 0, 1)

	dist, hit := tri.Hit(origin, dir)
	if !hit {
		t.Fatal("expected a hit on the back face")
	}
	if math.Abs(dist-5) > 1e-9 {
		t.Errorf("distance = %v, want 5", dist)
	}
}

func TestTriangle_SamplePointBarycentricsInRange(t *testing.T) {
	tri := axisAlignedTriangle() // V0 = (-1,-1,0), e0 = (2,0,0), e3 = (1,2,0)
	for _, r1 := range []float64{0, 0.25, 0.5, 0.75, 0.999} {
		for _, r2 := range []float64{0, 0.25, 0.5, 0.75, 0.999} {
			// Recover the barycentrics from p = V0 + a*e0 + b*e3.
			p := tri.SamplePoint(r1, r2)
			b := (p.Y + 1) / 2
			a := (p.X + 1 - b) / 2
			if a < -1e-12 || b < -1e-12 || a+b > 1+1e-12 {
				t.Errorf("r1=%v r2=%v -> a=%v b=%v out of range", r1, r2, a, b)
			}
		}
	}
}

func TestTriangle_NormalAndTangentAreUnit(t *testing.T) {
	tri := axisAlignedTriangle()
	if math.Abs(tri.Normal().Length()-1) > 1e-12 {
		t.Errorf("normal length = %v, want 1", tri.Normal().Length())
	}
	if math.Abs(tri.Tangent().Length()-1) > 1e-12 {
		t.Errorf("tangent length = %v, want 1", tri.Tangent().Length())
	}
}

func TestTriangle_AreaPositive(t *testing.T) {
	tri := axisAlignedTriangle()
	if tri.Area() <= 0 {
		t.Errorf("area = %v, want > 0", tri.Area())
	}
}

func TestTriangle_ReflectivityClamped(t *testing.T) {
	tri := NewTriangle(core.Zero, core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0),
		core.NewVec3(1.5, -0.5, 0.9999999), core.NewVec3(-1, 2, 0))
	if tri.Reflectivity.X >= 1 || tri.Reflectivity.Y < 0 {
		t.Errorf("reflectivity not clamped: %v", tri.Reflectivity)
	}
	if tri.Emissivity.X < 0 {
		t.Errorf("emissivity not clamped to >= 0: %v", tri.Emissivity)
	}
}

func TestTriangle_IsEmitter(t *testing.T) {
	nonEmitter := axisAlignedTriangle()
	if nonEmitter.IsEmitter() {
		t.Error("triangle with zero emissivity reported as emitter")
	}
	emitter := NewTriangle(core.Zero, core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0),
		core.Zero, core.NewVec3(1, 1, 1))
	if !emitter.IsEmitter() {
		t.Error("triangle with positive emissivity and area not reported as emitter")
	}
}
