package cubesim

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// BodyID is a stable integer key, unique across the simulation's lifetime.
// Particles and aggregates draw from the same sequence.
type BodyID uint32

const angularEpsilon = 1e-6

var upAxis = mgl32.Vec3{0, 1, 0}

// Spin is an angular velocity stored as a unit axis plus a scalar speed in
// radians per second.
type Spin struct {
	Axis  mgl32.Vec3
	Speed float32
}

func (s Spin) Vector() mgl32.Vec3 {
	return s.Axis.Mul(s.Speed)
}

// spinFromVector decomposes an angular velocity vector back into axis+speed.
// A near-zero vector keeps the fallback axis with zero speed so the axis
// never degenerates.
func spinFromVector(w mgl32.Vec3, fallback mgl32.Vec3) Spin {
	speed := w.Len()
	if speed < angularEpsilon {
		return Spin{Axis: fallback, Speed: 0}
	}
	return Spin{Axis: w.Mul(1 / speed), Speed: speed}
}

// AABB is an axis-aligned bounding box, used only by the broad phase.
type AABB struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

func (b AABB) Overlaps(o AABB) bool {
	return b.Min.X() <= o.Max.X() && o.Min.X() <= b.Max.X() &&
		b.Min.Y() <= o.Max.Y() && o.Min.Y() <= b.Max.Y() &&
		b.Min.Z() <= o.Max.Z() && o.Min.Z() <= b.Max.Z()
}

func (b AABB) Union(o AABB) AABB {
	return AABB{
		Min: mgl32.Vec3{
			math32.Min(b.Min.X(), o.Min.X()),
			math32.Min(b.Min.Y(), o.Min.Y()),
			math32.Min(b.Min.Z(), o.Min.Z()),
		},
		Max: mgl32.Vec3{
			math32.Max(b.Max.X(), o.Max.X()),
			math32.Max(b.Max.Y(), o.Max.Y()),
			math32.Max(b.Max.Z(), o.Max.Z()),
		},
	}
}

func (b AABB) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Extents returns the full (not half) extent on each axis.
func (b AABB) Extents() mgl32.Vec3 {
	return b.Max.Sub(b.Min)
}

// Body is the capability set shared by leaf particles and composite
// aggregates. The collision pipeline only ever talks to this interface;
// the one place behavior differs per variant (angular impulse blending)
// dispatches on the concrete type.
type Body interface {
	ID() BodyID
	Mass() float32
	// Size is the cube edge length for a particle and the derived
	// characteristic size (average bounding-box extent) for an aggregate.
	Size() float32
	Center() mgl32.Vec3
	Orientation() mgl32.Quat
	Velocity() mgl32.Vec3
	SetVelocity(v mgl32.Vec3)
	Spin() Spin
	SetSpin(s Spin)
	Translate(delta mgl32.Vec3)
	BoundingBox() AABB
}

// Particle is a leaf rigid body: a cube of fixed edge length and mass.
type Particle struct {
	id       BodyID
	size     float32
	mass     float32
	position mgl32.Vec3
	rotation mgl32.Quat
	velocity mgl32.Vec3
	spin     Spin
	owner    *Aggregate

	bbox      AABB
	bboxValid bool
}

func NewParticle(id BodyID, size, mass float32, position mgl32.Vec3) *Particle {
	return &Particle{
		id:       id,
		size:     size,
		mass:     mass,
		position: position,
		rotation: mgl32.QuatIdent(),
		spin:     Spin{Axis: upAxis},
	}
}

func (p *Particle) ID() BodyID              { return p.id }
func (p *Particle) Mass() float32           { return p.mass }
func (p *Particle) Size() float32           { return p.size }
func (p *Particle) Center() mgl32.Vec3      { return p.position }
func (p *Particle) Orientation() mgl32.Quat { return p.rotation }
func (p *Particle) Velocity() mgl32.Vec3    { return p.velocity }
func (p *Particle) Spin() Spin              { return p.spin }

// Owner reports the aggregate this particle belongs to, or nil while free.
func (p *Particle) Owner() *Aggregate { return p.owner }

func (p *Particle) SetVelocity(v mgl32.Vec3) { p.velocity = v }
func (p *Particle) SetSpin(s Spin)           { p.spin = s }

func (p *Particle) Translate(delta mgl32.Vec3) {
	p.position = p.position.Add(delta)
	p.markDirty()
}

func (p *Particle) SetPose(position mgl32.Vec3, rotation mgl32.Quat) {
	p.position = position
	p.rotation = rotation
	p.markDirty()
}

func (p *Particle) markDirty() {
	p.bboxValid = false
}

// BoundingBox returns the cached box, recomputing it only when a pose
// mutation marked it dirty. Repeated queries without mutation are free.
func (p *Particle) BoundingBox() AABB {
	if !p.bboxValid {
		p.refreshBoundingBox()
	}
	return p.bbox
}

func (p *Particle) refreshBoundingBox() {
	if p.bboxValid {
		panic("cubesim: refreshing a particle bounding box that is not dirty")
	}
	p.bbox = bodyOBB(p).aabb()
	p.bboxValid = true
}

// integrate advances the pose by one timestep. Owned particles are never
// integrated; their motion belongs to the aggregate.
func (p *Particle) integrate(dt float32) {
	p.position = p.position.Add(p.velocity.Mul(dt))
	if p.spin.Speed > 0 {
		p.rotation = mgl32.QuatRotate(p.spin.Speed*dt, p.spin.Axis).Mul(p.rotation).Normalize()
	}
	p.markDirty()
}

// applyBounds reflects a body off the simulation volume walls and applies a
// leash impulse back toward the origin once the center has escaped the
// volume. Reflection only fires while the body is still heading outward, so
// a body straddling a wall is not flipped back and forth.
func applyBounds(b Body, params PhysicsParameters) {
	box := b.BoundingBox()
	vel := b.Velocity()
	h := params.VolumeHalfExtent
	changed := false

	for axis := 0; axis < 3; axis++ {
		if box.Max[axis] > h && vel[axis] > 0 {
			vel[axis] = -vel[axis]
			changed = true
		} else if box.Min[axis] < -h && vel[axis] < 0 {
			vel[axis] = -vel[axis]
			changed = true
		}
	}

	center := b.Center()
	if center.Len() > h {
		vel = vel.Sub(center.Normalize().Mul(params.LeashStrength))
		changed = true
	}

	if changed {
		b.SetVelocity(vel)
	}
}

// applyDamping bleeds off linear and angular speed once they pass the
// stability thresholds.
func applyDamping(b Body, params PhysicsParameters) {
	vel := b.Velocity()
	if vel.Len() > params.LinearSpeedLimit {
		b.SetVelocity(vel.Mul(params.LinearDamping))
	}
	spin := b.Spin()
	if spin.Speed > params.AngularSpeedLimit {
		spin.Speed *= params.AngularDamping
		b.SetSpin(spin)
	}
}
