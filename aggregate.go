package cubesim

import (
	"github.com/go-gl/mathgl/mgl32"
)

// memberFrame is a member's pose relative to the aggregate's pivot frame.
// World pose is composed on demand; members are never mutated while owned.
type memberFrame struct {
	position mgl32.Vec3
	rotation mgl32.Quat
}

// Aggregate is a composite rigid body formed by fusing particles. It owns a
// flattened member list, a pivot frame anchored at the members' mass
// centroid, and its own motion state. Member motion is fully delegated: an
// owned particle's velocity and spin stay zero.
//
// An aggregate is never destroyed within a run, but a merge retires the
// absorbed aggregate; updating a retired aggregate is a programmer error.
type Aggregate struct {
	id       BodyID
	members  []*Particle
	frames   []memberFrame
	mass     float32
	position mgl32.Vec3
	rotation mgl32.Quat
	velocity mgl32.Vec3
	spin     Spin
	retired  bool

	bbox      AABB
	bboxValid bool
}

// newAggregate fuses two free particles. Linear momentum is conserved
// exactly; angular momentum is blended mass-weighted, ignoring parallel-axis
// contributions.
func newAggregate(id BodyID, a, b *Particle) *Aggregate {
	total := a.mass + b.mass
	agg := &Aggregate{
		id:       id,
		mass:     total,
		position: a.position.Mul(a.mass).Add(b.position.Mul(b.mass)).Mul(1 / total),
		rotation: mgl32.QuatIdent(),
		velocity: a.velocity.Mul(a.mass).Add(b.velocity.Mul(b.mass)).Mul(1 / total),
	}
	omega := a.spin.Vector().Mul(a.mass).Add(b.spin.Vector().Mul(b.mass)).Mul(1 / total)
	agg.spin = spinFromVector(omega, upAxis)

	agg.adopt(a)
	agg.adopt(b)
	agg.recenter()
	return agg
}

func (g *Aggregate) ID() BodyID              { return g.id }
func (g *Aggregate) Mass() float32           { return g.mass }
func (g *Aggregate) Center() mgl32.Vec3      { return g.position }
func (g *Aggregate) Orientation() mgl32.Quat { return g.rotation }
func (g *Aggregate) Velocity() mgl32.Vec3    { return g.velocity }
func (g *Aggregate) Spin() Spin              { return g.spin }
func (g *Aggregate) Retired() bool           { return g.retired }
func (g *Aggregate) Members() []*Particle    { return g.members }

func (g *Aggregate) SetVelocity(v mgl32.Vec3) { g.velocity = v }
func (g *Aggregate) SetSpin(s Spin)           { g.spin = s }

func (g *Aggregate) Translate(delta mgl32.Vec3) {
	g.position = g.position.Add(delta)
	g.markDirty()
}

// Size is the characteristic size: the average bounding-box extent. The
// narrow phase treats the aggregate as a cube of this size, which is the
// documented approximation.
func (g *Aggregate) Size() float32 {
	ext := g.BoundingBox().Extents()
	return (ext.X() + ext.Y() + ext.Z()) / 3
}

func (g *Aggregate) markDirty() {
	g.bboxValid = false
}

func (g *Aggregate) BoundingBox() AABB {
	if !g.bboxValid {
		g.refreshBoundingBox()
	}
	return g.bbox
}

func (g *Aggregate) refreshBoundingBox() {
	if g.bboxValid {
		panic("cubesim: refreshing an aggregate bounding box that is not dirty")
	}
	box := g.memberOBB(0).aabb()
	for i := 1; i < len(g.members); i++ {
		box = box.Union(g.memberOBB(i).aabb())
	}
	g.bbox = box
	g.bboxValid = true
}

// MemberWorldPose composes the pivot frame with a member's local frame.
func (g *Aggregate) MemberWorldPose(i int) (mgl32.Vec3, mgl32.Quat) {
	frame := g.frames[i]
	return g.position.Add(g.rotation.Rotate(frame.position)),
		g.rotation.Mul(frame.rotation).Normalize()
}

func (g *Aggregate) memberOBB(i int) obb {
	pos, rot := g.MemberWorldPose(i)
	return obb{
		center: pos,
		axes: [3]mgl32.Vec3{
			rot.Rotate(mgl32.Vec3{1, 0, 0}),
			rot.Rotate(mgl32.Vec3{0, 1, 0}),
			rot.Rotate(mgl32.Vec3{0, 0, 1}),
		},
		half: g.members[i].size / 2,
	}
}

// adopt reparents a particle into the pivot frame, preserving its world
// pose, and zeroes its independent motion.
func (g *Aggregate) adopt(p *Particle) {
	inv := g.rotation.Conjugate()
	g.members = append(g.members, p)
	g.frames = append(g.frames, memberFrame{
		position: inv.Rotate(p.position.Sub(g.position)),
		rotation: inv.Mul(p.rotation).Normalize(),
	})
	p.velocity = mgl32.Vec3{}
	p.spin.Speed = 0
	p.owner = g
	g.markDirty()
}

// recenter moves the pivot anchor to the members' mass centroid while
// holding every member's world pose fixed.
func (g *Aggregate) recenter() {
	var centroid mgl32.Vec3
	for i := range g.members {
		pos, _ := g.MemberWorldPose(i)
		centroid = centroid.Add(pos.Mul(g.members[i].mass))
	}
	centroid = centroid.Mul(1 / g.mass)

	localDelta := g.rotation.Conjugate().Rotate(centroid.Sub(g.position))
	for i := range g.frames {
		g.frames[i].position = g.frames[i].position.Sub(localDelta)
	}
	g.position = centroid
	g.markDirty()
}

// AddBody absorbs one free particle, conserving linear momentum against the
// aggregate's current total mass.
func (g *Aggregate) AddBody(p *Particle) {
	if g.retired {
		panic("cubesim: AddBody on a retired aggregate")
	}
	total := g.mass + p.mass
	g.velocity = g.velocity.Mul(g.mass).Add(p.velocity.Mul(p.mass)).Mul(1 / total)
	omega := g.spin.Vector().Mul(g.mass).Add(p.spin.Vector().Mul(p.mass)).Mul(1 / total)
	g.spin = spinFromVector(omega, g.spin.Axis)
	g.mass = total

	g.adopt(p)
	g.recenter()
}

// AddAggregate absorbs another whole aggregate: momentum is conserved across
// the two totals, the other's members are flattened into this one at their
// current world poses, and the other is permanently retired.
func (g *Aggregate) AddAggregate(other *Aggregate) {
	if g.retired {
		panic("cubesim: AddAggregate on a retired aggregate")
	}
	if other.retired {
		panic("cubesim: absorbing an already retired aggregate")
	}

	total := g.mass + other.mass
	g.velocity = g.velocity.Mul(g.mass).Add(other.velocity.Mul(other.mass)).Mul(1 / total)
	omega := g.spin.Vector().Mul(g.mass).Add(other.spin.Vector().Mul(other.mass)).Mul(1 / total)
	g.spin = spinFromVector(omega, g.spin.Axis)
	g.mass = total

	for i, p := range other.members {
		pos, rot := other.MemberWorldPose(i)
		p.SetPose(pos, rot)
		g.adopt(p)
	}
	other.members = nil
	other.frames = nil
	other.retired = true

	g.recenter()
}

// Update runs the aggregate's per-tick motion: recenter the pivot anchor,
// integrate, then bounce off the volume walls, leash back toward the origin,
// and damp runaway speeds.
func (g *Aggregate) Update(params PhysicsParameters) {
	if g.retired {
		panic("cubesim: Update on a retired aggregate")
	}
	g.recenter()
	g.position = g.position.Add(g.velocity.Mul(params.Dt))
	if g.spin.Speed > 0 {
		g.rotation = mgl32.QuatRotate(g.spin.Speed*params.Dt, g.spin.Axis).Mul(g.rotation).Normalize()
	}
	g.markDirty()

	applyBounds(g, params)
	applyDamping(g, params)
}
