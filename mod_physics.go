package cubesim

import (
	"github.com/go-gl/mathgl/mgl32"
)

// ContactEvent is what the engine hands the driving layer once per tick for
// every resolved contact, in the deterministic pair order.
type ContactEvent struct {
	A, B     BodyID
	Point    mgl32.Vec3
	Normal   mgl32.Vec3
	Depth    float32
	Sticking bool
}

// ContactEvents is rebuilt every tick; the previous tick's events are
// cleared in Prelude.
type ContactEvents struct {
	Events []ContactEvent
}

// PhysicsModule installs the parameter set, the world, the event buffer, and
// the integrate/collide systems. Within a tick:
//
//	Prelude:   clear events
//	PreUpdate: integrate all free particles and aggregates
//	PreUpdate: rebuild the broad-phase index (BroadPhaseModule, installed after)
//	Update:    narrow phase, impulse resolution, face classification, fusing
type PhysicsModule struct {
	Params PhysicsParameters
}

func (m PhysicsModule) Install(app *App, cmd *Commands) {
	params := m.Params
	if params.CubeSize <= 0 {
		params = DefaultParameters()
	}
	world := NewWorld()
	cmd.AddResources(&params, world, &ContactEvents{})

	cmd.UseSystem(System(clearEventsSystem).InStage(Prelude))
	cmd.UseSystem(System(integrateSystem).InStage(PreUpdate))
	cmd.UseSystem(System(collisionSystem).InStage(Update))

	app.Logger().Infof("physics world %s ready", world.RunID)
}

func clearEventsSystem(events *ContactEvents) {
	events.Events = events.Events[:0]
}

// integrateSystem advances every free particle and every aggregate by one
// timestep and applies the volume bounds and damping. Owned particles are
// skipped; the aggregate moves them.
func integrateSystem(world *World, params *PhysicsParameters) {
	for _, p := range world.Particles() {
		if p.owner != nil {
			continue
		}
		p.integrate(params.Dt)
		applyBounds(p, *params)
		applyDamping(p, *params)
	}
	for _, g := range world.Aggregates() {
		g.Update(*params)
	}
}

// collisionSystem walks the broad-phase candidates in canonical order, runs
// the exact SAT test, resolves confirmed contacts, and fuses matching-face
// contacts into aggregates. Fusing is visible immediately: a body absorbed
// by pair k is skipped when pair k+1 comes up.
func collisionSystem(cmd *Commands, clock *Clock, world *World, index *BroadPhaseIndex, params *PhysicsParameters, events *ContactEvents) {
	log := cmd.Logger()

	for _, pair := range index.Pairs() {
		if !world.isActive(pair.A) || !world.isActive(pair.B) {
			continue
		}

		manifold, ok := TestBodies(pair.A, pair.B)
		if !ok {
			continue
		}
		// Classify on the poses at contact, before positional correction
		// moves the corners apart.
		manifold.MatchingFaces = MatchingFaceContact(pair.A, pair.B)

		ResolveCollision(manifold, *params)

		sticking := params.FormAggregates && manifold.MatchingFaces
		if sticking {
			world.fuse(pair.A, pair.B, log)
		}

		events.Events = append(events.Events, ContactEvent{
			A:        pair.A.ID(),
			B:        pair.B.ID(),
			Point:    manifold.Point,
			Normal:   manifold.Normal,
			Depth:    manifold.Depth,
			Sticking: sticking,
		})
		log.Debugf("tick %d: contact %d/%d depth=%.4f sticking=%v", clock.Tick, pair.A.ID(), pair.B.ID(), manifold.Depth, sticking)
	}
}
