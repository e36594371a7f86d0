package cubesim

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

func testParticle(id BodyID, pos mgl32.Vec3) *Particle {
	return NewParticle(id, 1.0, 1.0, pos)
}

func approxVec(a, b mgl32.Vec3, tol float32) bool {
	return math32.Abs(a.X()-b.X()) < tol &&
		math32.Abs(a.Y()-b.Y()) < tol &&
		math32.Abs(a.Z()-b.Z()) < tol
}

func TestSATSeparatedCubes(t *testing.T) {
	a := testParticle(1, mgl32.Vec3{0, 0, 0})
	b := testParticle(2, mgl32.Vec3{3, 0, 0})

	if _, ok := TestBodies(a, b); ok {
		t.Errorf("cubes 3 units apart should not collide")
	}
}

func TestSATOverlappingCubes(t *testing.T) {
	a := testParticle(1, mgl32.Vec3{0, 0, 0})
	b := testParticle(2, mgl32.Vec3{0.8, 0, 0})

	m, ok := TestBodies(a, b)
	if !ok {
		t.Fatalf("cubes 0.8 units apart should collide")
	}
	if math32.Abs(m.Depth-0.2) > 1e-5 {
		t.Errorf("expected penetration depth 0.2, got %f", m.Depth)
	}
	if !approxVec(m.Normal, mgl32.Vec3{1, 0, 0}, 1e-5) {
		t.Errorf("expected normal (1,0,0), got %v", m.Normal)
	}
	if !approxVec(m.Point, mgl32.Vec3{0.4, 0, 0}, 1e-5) {
		t.Errorf("expected midpoint contact (0.4,0,0), got %v", m.Point)
	}
}

func TestSATTouchingAtBoundary(t *testing.T) {
	// Exactly touching faces: no separation exists, depth is zero.
	a := testParticle(1, mgl32.Vec3{0, 0, 0})
	b := testParticle(2, mgl32.Vec3{1, 0, 0})

	m, ok := TestBodies(a, b)
	if !ok {
		t.Fatalf("touching cubes should report contact")
	}
	if m.Depth > 1e-5 {
		t.Errorf("expected zero depth, got %f", m.Depth)
	}
}

func TestSATSymmetry(t *testing.T) {
	a := testParticle(1, mgl32.Vec3{0, 0, 0})
	b := testParticle(2, mgl32.Vec3{0.7, 0.3, 0.2})
	b.SetPose(b.Center(), mgl32.QuatRotate(0.6, mgl32.Vec3{0.3, 1, 0.2}.Normalize()))

	mAB, okAB := TestBodies(a, b)
	mBA, okBA := TestBodies(b, a)

	if okAB != okBA {
		t.Fatalf("verdicts disagree: %v vs %v", okAB, okBA)
	}
	if !okAB {
		t.Fatalf("rotated cubes at this offset should overlap")
	}
	if math32.Abs(mAB.Depth-mBA.Depth) > 1e-4 {
		t.Errorf("depths disagree: %f vs %f", mAB.Depth, mBA.Depth)
	}
	if !approxVec(mAB.Normal, mBA.Normal.Mul(-1), 1e-4) {
		t.Errorf("normals should be exact opposites: %v vs %v", mAB.Normal, mBA.Normal)
	}
}

func TestSATRotatedSeparation(t *testing.T) {
	// A 45-degree rotation about z widens the projection on x to sqrt(2)/2,
	// so the cubes still collide at a center distance that would separate
	// axis-aligned boxes.
	a := testParticle(1, mgl32.Vec3{0, 0, 0})
	b := testParticle(2, mgl32.Vec3{1.1, 0, 0})
	b.SetPose(b.Center(), mgl32.QuatRotate(math32.Pi/4, mgl32.Vec3{0, 0, 1}))

	if _, ok := TestBodies(a, b); !ok {
		t.Errorf("rotated cube should reach the axis-aligned one at distance 1.1")
	}

	b2 := testParticle(3, mgl32.Vec3{1.3, 0, 0})
	b2.SetPose(b2.Center(), mgl32.QuatRotate(math32.Pi/4, mgl32.Vec3{0, 0, 1}))
	if _, ok := TestBodies(a, b2); ok {
		t.Errorf("rotated cube at distance 1.3 should be separated")
	}
}

func TestOBBBoundingBoxRotated(t *testing.T) {
	p := testParticle(1, mgl32.Vec3{0, 0, 0})
	p.SetPose(p.Center(), mgl32.QuatRotate(math32.Pi/4, mgl32.Vec3{0, 0, 1}))

	ext := p.BoundingBox().Extents()
	want := math32.Sqrt(2)
	if math32.Abs(ext.X()-want) > 1e-4 || math32.Abs(ext.Y()-want) > 1e-4 {
		t.Errorf("45-degree cube should have sqrt(2) extents on x/y, got %v", ext)
	}
	if math32.Abs(ext.Z()-1) > 1e-4 {
		t.Errorf("z extent should stay 1, got %v", ext)
	}
}
