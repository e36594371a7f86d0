package cubesim

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// crossAxisEpsilon filters the degenerate cross-product axes that show up
// when two boxes have near-parallel edges. Such axes must not be normalized
// or tested.
const crossAxisEpsilon = 1e-6

// CollisionManifold describes one confirmed contact. The normal is a unit
// vector oriented from A toward B and the contact point is the midpoint of
// the two centers, which is an approximation, not a closest-surface point.
type CollisionManifold struct {
	A, B          Body
	Point         mgl32.Vec3
	Normal        mgl32.Vec3
	Depth         float32
	MatchingFaces bool
}

// obb is the oriented-box view of a body used by the narrow phase: world
// center, three orthonormal world axes, and a uniform half extent. For an
// aggregate the half extent comes from its characteristic size, which is an
// accepted approximation.
type obb struct {
	center mgl32.Vec3
	axes   [3]mgl32.Vec3
	half   float32
}

func bodyOBB(b Body) obb {
	q := b.Orientation()
	return obb{
		center: b.Center(),
		axes: [3]mgl32.Vec3{
			q.Rotate(mgl32.Vec3{1, 0, 0}),
			q.Rotate(mgl32.Vec3{0, 1, 0}),
			q.Rotate(mgl32.Vec3{0, 0, 1}),
		},
		half: b.Size() / 2,
	}
}

// aabb bounds the oriented box: the projection radius on each world axis is
// the sum of the local axes' components there.
func (o obb) aabb() AABB {
	var r mgl32.Vec3
	for k := 0; k < 3; k++ {
		r[k] = (math32.Abs(o.axes[0][k]) + math32.Abs(o.axes[1][k]) + math32.Abs(o.axes[2][k])) * o.half
	}
	return AABB{Min: o.center.Sub(r), Max: o.center.Add(r)}
}

// project returns the interval covered by the box on the given unit axis.
func (o obb) project(axis mgl32.Vec3) (min, max float32) {
	c := o.center.Dot(axis)
	r := (math32.Abs(o.axes[0].Dot(axis)) +
		math32.Abs(o.axes[1].Dot(axis)) +
		math32.Abs(o.axes[2].Dot(axis))) * o.half
	return c - r, c + r
}

// TestBodies runs the separating axis test on the oriented boxes of two
// bodies. It returns false as soon as any of the up-to-15 axes separates the
// boxes; a positive result requires surviving every axis. The reported
// normal is the axis of minimum overlap, oriented from A toward B, and the
// depth is that minimum overlap.
func TestBodies(a, b Body) (CollisionManifold, bool) {
	boxA := bodyOBB(a)
	boxB := bodyOBB(b)

	axes := make([]mgl32.Vec3, 0, 15)
	axes = append(axes, boxA.axes[0], boxA.axes[1], boxA.axes[2])
	axes = append(axes, boxB.axes[0], boxB.axes[1], boxB.axes[2])
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			cross := boxA.axes[i].Cross(boxB.axes[j])
			if cross.Len() < crossAxisEpsilon {
				// Near-parallel edge pair: not an error, just not a usable axis.
				continue
			}
			axes = append(axes, cross.Normalize())
		}
	}

	bestDepth := float32(math32.MaxFloat32)
	var bestAxis mgl32.Vec3

	for _, axis := range axes {
		minA, maxA := boxA.project(axis)
		minB, maxB := boxB.project(axis)
		if maxA < minB || maxB < minA {
			return CollisionManifold{}, false
		}
		overlap := math32.Min(maxA-minB, maxB-minA)
		if overlap < bestDepth {
			bestDepth = overlap
			bestAxis = axis
		}
	}

	if boxB.center.Sub(boxA.center).Dot(bestAxis) < 0 {
		bestAxis = bestAxis.Mul(-1)
	}

	return CollisionManifold{
		A:      a,
		B:      b,
		Point:  boxA.center.Add(boxB.center).Mul(0.5),
		Normal: bestAxis,
		Depth:  bestDepth,
	}, true
}
