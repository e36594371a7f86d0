package cubesim

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

func TestResolveHeadOnElastic(t *testing.T) {
	params := DefaultParameters()
	params.Restitution = 1.0

	a := testParticle(1, mgl32.Vec3{0, 0, 0})
	a.SetVelocity(mgl32.Vec3{1, 0, 0})
	b := testParticle(2, mgl32.Vec3{0.9, 0, 0})
	b.SetVelocity(mgl32.Vec3{-1, 0, 0})

	m, ok := TestBodies(a, b)
	if !ok {
		t.Fatalf("expected contact")
	}
	ResolveCollision(m, params)

	// Equal masses, perfectly elastic, head on through the centers:
	// velocities swap.
	if !approxVec(a.Velocity(), mgl32.Vec3{-1, 0, 0}, 1e-5) {
		t.Errorf("expected A velocity (-1,0,0), got %v", a.Velocity())
	}
	if !approxVec(b.Velocity(), mgl32.Vec3{1, 0, 0}, 1e-5) {
		t.Errorf("expected B velocity (1,0,0), got %v", b.Velocity())
	}
}

func TestResolveSeparatingContactSkipsImpulse(t *testing.T) {
	params := DefaultParameters()

	a := testParticle(1, mgl32.Vec3{0, 0, 0})
	a.SetVelocity(mgl32.Vec3{-1, 0, 0})
	b := testParticle(2, mgl32.Vec3{0.8, 0, 0})
	b.SetVelocity(mgl32.Vec3{1, 0, 0})

	m, ok := TestBodies(a, b)
	if !ok {
		t.Fatalf("expected contact")
	}
	ResolveCollision(m, params)

	// Already moving apart: no velocity change at all.
	if !approxVec(a.Velocity(), mgl32.Vec3{-1, 0, 0}, 1e-6) {
		t.Errorf("separating body A velocity changed: %v", a.Velocity())
	}
	if !approxVec(b.Velocity(), mgl32.Vec3{1, 0, 0}, 1e-6) {
		t.Errorf("separating body B velocity changed: %v", b.Velocity())
	}

	// The positional correction still pushes them apart, split evenly for
	// equal masses.
	if !approxVec(a.Center(), mgl32.Vec3{-0.1, 0, 0}, 1e-5) {
		t.Errorf("expected A pushed to (-0.1,0,0), got %v", a.Center())
	}
	if !approxVec(b.Center(), mgl32.Vec3{0.9, 0, 0}, 1e-5) {
		t.Errorf("expected B pushed to (0.9,0,0), got %v", b.Center())
	}
}

func TestResolvePositionalCorrectionMassWeighted(t *testing.T) {
	params := DefaultParameters()

	a := NewParticle(1, 1.0, 1.0, mgl32.Vec3{0, 0, 0})
	b := NewParticle(2, 1.0, 3.0, mgl32.Vec3{0.8, 0, 0})

	m, ok := TestBodies(a, b)
	if !ok {
		t.Fatalf("expected contact")
	}
	ResolveCollision(m, params)

	// Depth 0.2 split 3:1, the heavier body moves less.
	if !approxVec(a.Center(), mgl32.Vec3{-0.15, 0, 0}, 1e-5) {
		t.Errorf("expected light body at (-0.15,0,0), got %v", a.Center())
	}
	if !approxVec(b.Center(), mgl32.Vec3{0.85, 0, 0}, 1e-5) {
		t.Errorf("expected heavy body at (0.85,0,0), got %v", b.Center())
	}
}

func TestResolveConservesLinearMomentum(t *testing.T) {
	params := DefaultParameters()
	params.Restitution = 0.8

	a := NewParticle(1, 1.0, 2.0, mgl32.Vec3{0, 0, 0})
	a.SetVelocity(mgl32.Vec3{1, 0.5, 0})
	a.SetSpin(Spin{Axis: mgl32.Vec3{0, 0, 1}, Speed: 0.7})
	b := NewParticle(2, 1.0, 1.0, mgl32.Vec3{0.7, 0.4, 0})
	b.SetVelocity(mgl32.Vec3{-0.5, 0, 0})

	m, ok := TestBodies(a, b)
	if !ok {
		t.Fatalf("expected contact")
	}

	before := a.Velocity().Mul(a.Mass()).Add(b.Velocity().Mul(b.Mass()))
	ResolveCollision(m, params)
	after := a.Velocity().Mul(a.Mass()).Add(b.Velocity().Mul(b.Mass()))

	if !approxVec(before, after, 1e-4) {
		t.Errorf("linear momentum not conserved: %v -> %v", before, after)
	}
}

func TestResolveOffCenterContactSpinsLeaf(t *testing.T) {
	params := DefaultParameters()
	params.Restitution = 1.0

	a := testParticle(1, mgl32.Vec3{0, 0, 0})
	a.SetVelocity(mgl32.Vec3{1, 0, 0})
	b := testParticle(2, mgl32.Vec3{0.8, 0.45, 0})
	b.SetVelocity(mgl32.Vec3{0, 0, 0})

	m, ok := TestBodies(a, b)
	if !ok {
		t.Fatalf("expected contact")
	}
	ResolveCollision(m, params)

	if b.Spin().Speed <= 0 {
		t.Errorf("off-center impulse should set the struck leaf spinning")
	}
	if math32.Abs(b.Spin().Axis.Len()-1) > 1e-5 {
		t.Errorf("spin axis should stay unit length, got %v", b.Spin().Axis)
	}
}

func TestSlerpAxisEndpoints(t *testing.T) {
	from := mgl32.Vec3{1, 0, 0}
	to := mgl32.Vec3{0, 1, 0}

	if !approxVec(slerpAxis(from, to, 0), from, 1e-6) {
		t.Errorf("t=0 should return the start axis")
	}
	if !approxVec(slerpAxis(from, to, 1), to, 1e-6) {
		t.Errorf("t=1 should return the end axis")
	}
	mid := slerpAxis(from, to, 0.5)
	if math32.Abs(mid.Len()-1) > 1e-5 {
		t.Errorf("interpolated axis should be unit length, got %v", mid)
	}
}
