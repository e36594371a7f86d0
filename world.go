package cubesim

import (
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// World owns the body tables: every particle ever spawned and the active
// aggregates. It is mutated only by the tick loop; external callers read
// poses between ticks.
type World struct {
	RunID uuid.UUID

	nextID     BodyID
	particles  []*Particle
	aggregates []*Aggregate
}

func NewWorld() *World {
	return &World{
		RunID:  uuid.New(),
		nextID: 1,
	}
}

func (w *World) allocID() BodyID {
	id := w.nextID
	w.nextID++
	return id
}

func (w *World) SpawnParticle(params PhysicsParameters, position, velocity mgl32.Vec3, spin Spin) *Particle {
	p := NewParticle(w.allocID(), params.CubeSize, params.CubeMass, position)
	p.velocity = velocity
	p.spin = spin
	w.particles = append(w.particles, p)
	return p
}

func (w *World) Particles() []*Particle {
	return w.particles
}

// Aggregates returns the active aggregates; retired ones are dropped the
// moment a merge absorbs them.
func (w *World) Aggregates() []*Aggregate {
	return w.aggregates
}

// ActiveBodies returns every top-level body in spawn order: free particles
// first, then aggregates. Owned particles are excluded; their motion belongs
// to their aggregate.
func (w *World) ActiveBodies() []Body {
	bodies := make([]Body, 0, len(w.particles)+len(w.aggregates))
	for _, p := range w.particles {
		if p.owner == nil {
			bodies = append(bodies, p)
		}
	}
	for _, g := range w.aggregates {
		bodies = append(bodies, g)
	}
	return bodies
}

// isActive reports whether a body is still a top-level simulation body.
// Checked freshly before each pair is resolved: a particle absorbed while
// processing an earlier pair in the same tick must not act independently in
// a later one.
func (w *World) isActive(b Body) bool {
	switch body := b.(type) {
	case *Particle:
		return body.owner == nil
	case *Aggregate:
		return !body.retired
	}
	return false
}

// fuse is the sticking-contact handler: it creates or grows an aggregate
// from the two contacting bodies. Both bodies are known to be active.
func (w *World) fuse(a, b Body, log Logger) {
	pa, aIsLeaf := a.(*Particle)
	pb, bIsLeaf := b.(*Particle)

	switch {
	case aIsLeaf && bIsLeaf:
		agg := newAggregate(w.allocID(), pa, pb)
		w.aggregates = append(w.aggregates, agg)
		log.Infof("aggregate %d formed from particles %d and %d", agg.id, pa.id, pb.id)
	case aIsLeaf:
		b.(*Aggregate).AddBody(pa)
		log.Debugf("aggregate %d absorbed particle %d", b.ID(), pa.id)
	case bIsLeaf:
		a.(*Aggregate).AddBody(pb)
		log.Debugf("aggregate %d absorbed particle %d", a.ID(), pb.id)
	default:
		ga := a.(*Aggregate)
		gb := b.(*Aggregate)
		if ga == gb {
			return
		}
		ga.AddAggregate(gb)
		w.dropAggregate(gb)
		log.Infof("aggregate %d absorbed aggregate %d (%d members)", ga.id, gb.id, len(ga.members))
	}
}

func (w *World) dropAggregate(g *Aggregate) {
	for i, other := range w.aggregates {
		if other == g {
			w.aggregates = append(w.aggregates[:i], w.aggregates[i+1:]...)
			return
		}
	}
}

// Reset discards all bodies and aggregates. The run identity and the ID
// sequence restart; the caller reseeds from scenario configuration.
func (w *World) Reset() {
	w.RunID = uuid.New()
	w.nextID = 1
	w.particles = nil
	w.aggregates = nil
}

// SeedScenario fills the world with randomly placed particles. The rand
// source is seeded from the scenario, so a given scenario always produces
// the same starting state.
func SeedScenario(w *World, cfg ScenarioConfig) {
	params := cfg.Parameters()
	rng := rand.New(rand.NewSource(cfg.Seed))

	span := params.VolumeHalfExtent - params.CubeSize
	for i := 0; i < cfg.Particles; i++ {
		position := mgl32.Vec3{
			(rng.Float32()*2 - 1) * span,
			(rng.Float32()*2 - 1) * span,
			(rng.Float32()*2 - 1) * span,
		}
		velocity := mgl32.Vec3{
			(rng.Float32()*2 - 1) * cfg.MaxStartSpeed,
			(rng.Float32()*2 - 1) * cfg.MaxStartSpeed,
			(rng.Float32()*2 - 1) * cfg.MaxStartSpeed,
		}
		axis := mgl32.Vec3{
			rng.Float32()*2 - 1,
			rng.Float32()*2 - 1,
			rng.Float32()*2 - 1,
		}
		if axis.Len() < angularEpsilon {
			axis = upAxis
		} else {
			axis = axis.Normalize()
		}
		w.SpawnParticle(params, position, velocity, Spin{
			Axis:  axis,
			Speed: rng.Float32() * cfg.MaxStartSpin,
		})
	}
}
