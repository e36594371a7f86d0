package cubesim

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// sphereInertia is the solid-sphere moment of inertia used for every body,
// composites included. It systematically overestimates inertia for composite
// shapes; that is the accepted approximation, not a defect.
func sphereInertia(mass, size float32) float32 {
	r := size / 2
	return 0.4 * mass * r * r
}

// ResolveCollision mutates both bodies of a manifold in place: positional
// correction first, then an impulse exchange unless the bodies are already
// separating.
//
// Sign convention, fixed and tested: the normal points from A toward B and
// relVel = velA - velB, so relVel·normal > 0 means the bodies are closing.
// A non-positive normal component means they are separating and the impulse
// step is skipped entirely; the positional correction above still applies.
func ResolveCollision(m CollisionManifold, params PhysicsParameters) {
	a, b := m.A, m.B
	massA, massB := a.Mass(), b.Mass()
	total := massA + massB

	// Push apart along the normal, heavier body moves less.
	a.Translate(m.Normal.Mul(-m.Depth * massB / total))
	b.Translate(m.Normal.Mul(m.Depth * massA / total))

	rA := m.Point.Sub(a.Center())
	rB := m.Point.Sub(b.Center())

	contactVelA := a.Velocity().Add(a.Spin().Vector().Cross(rA))
	contactVelB := b.Velocity().Add(b.Spin().Vector().Cross(rB))
	vn := contactVelA.Sub(contactVelB).Dot(m.Normal)
	if vn <= 0 {
		return
	}

	inertiaA := sphereInertia(massA, a.Size())
	inertiaB := sphereInertia(massB, b.Size())
	rAxN := rA.Cross(m.Normal)
	rBxN := rB.Cross(m.Normal)

	k := 1/massA + 1/massB + rAxN.Dot(rAxN)/inertiaA + rBxN.Dot(rBxN)/inertiaB
	j := -(1 + params.Restitution) * vn / k
	impulse := m.Normal.Mul(j)

	a.SetVelocity(a.Velocity().Add(impulse.Mul(1 / massA)))
	b.SetVelocity(b.Velocity().Sub(impulse.Mul(1 / massB)))

	applySpinImpulse(a, rA.Cross(impulse).Mul(1/inertiaA), massB/total, params)
	applySpinImpulse(b, rB.Cross(impulse).Mul(-1/inertiaB), massA/total, params)
}

// applySpinImpulse folds an angular velocity delta into the body's spin.
// A leaf takes the new state directly. An aggregate blends toward it,
// weighted by the other body's mass fraction and a fixed blend factor, which
// damps rotational transfer into large composites and keeps them stable.
func applySpinImpulse(body Body, deltaOmega mgl32.Vec3, massShare float32, params PhysicsParameters) {
	current := body.Spin()
	next := spinFromVector(current.Vector().Add(deltaOmega), current.Axis)

	if agg, ok := body.(*Aggregate); ok {
		t := params.AggregateBlend * massShare
		agg.SetSpin(Spin{
			Axis:  slerpAxis(current.Axis, next.Axis, t),
			Speed: current.Speed + (next.Speed-current.Speed)*t,
		})
		return
	}
	body.SetSpin(next)
}

// slerpAxis interpolates between two unit vectors along the great circle.
// Falls back to a normalized lerp when the vectors are nearly parallel or
// nearly opposite.
func slerpAxis(from, to mgl32.Vec3, t float32) mgl32.Vec3 {
	dot := mgl32.Clamp(from.Dot(to), -1, 1)
	theta := math32.Acos(dot)
	sinTheta := math32.Sin(theta)
	if sinTheta < angularEpsilon {
		blended := from.Mul(1 - t).Add(to.Mul(t))
		if blended.Len() < angularEpsilon {
			return from
		}
		return blended.Normalize()
	}
	return from.Mul(math32.Sin((1-t)*theta) / sinTheta).
		Add(to.Mul(math32.Sin(t*theta) / sinTheta))
}
