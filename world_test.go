package cubesim

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorldIDsAreUnique(t *testing.T) {
	w := NewWorld()
	params := DefaultParameters()

	seen := map[BodyID]bool{}
	for i := 0; i < 10; i++ {
		p := w.SpawnParticle(params, mgl32.Vec3{float32(i) * 3, 0, 0}, mgl32.Vec3{}, Spin{Axis: upAxis})
		assert.False(t, seen[p.ID()], "duplicate body id %d", p.ID())
		seen[p.ID()] = true
	}
}

func TestWorldFuseLeafLeaf(t *testing.T) {
	w := NewWorld()
	params := DefaultParameters()
	a := w.SpawnParticle(params, mgl32.Vec3{0, 0, 0}, mgl32.Vec3{}, Spin{Axis: upAxis})
	b := w.SpawnParticle(params, mgl32.Vec3{0.9, 0, 0}, mgl32.Vec3{}, Spin{Axis: upAxis})

	w.fuse(a, b, NewNopLogger())

	require.Len(t, w.Aggregates(), 1)
	agg := w.Aggregates()[0]
	assert.Same(t, agg, a.Owner())
	assert.Same(t, agg, b.Owner())
	assert.NotEqual(t, a.ID(), agg.ID(), "the aggregate draws a fresh id")
	assert.NotEqual(t, b.ID(), agg.ID())

	// Both leaves stop being top-level bodies; the aggregate replaces them.
	assert.Len(t, w.ActiveBodies(), 1)
	assert.False(t, w.isActive(a))
	assert.False(t, w.isActive(b))
	assert.True(t, w.isActive(agg))
}

func TestWorldFuseLeafIntoAggregate(t *testing.T) {
	w := NewWorld()
	params := DefaultParameters()
	a := w.SpawnParticle(params, mgl32.Vec3{0, 0, 0}, mgl32.Vec3{}, Spin{Axis: upAxis})
	b := w.SpawnParticle(params, mgl32.Vec3{0.9, 0, 0}, mgl32.Vec3{}, Spin{Axis: upAxis})
	c := w.SpawnParticle(params, mgl32.Vec3{1.8, 0, 0}, mgl32.Vec3{}, Spin{Axis: upAxis})

	w.fuse(a, b, NewNopLogger())
	agg := w.Aggregates()[0]
	w.fuse(c, agg, NewNopLogger())

	assert.Len(t, w.Aggregates(), 1, "leaf absorption must not create a second aggregate")
	assert.Len(t, agg.Members(), 3)
	assert.Same(t, agg, c.Owner())
}

func TestWorldFuseAggregateAggregate(t *testing.T) {
	w := NewWorld()
	params := DefaultParameters()
	a := w.SpawnParticle(params, mgl32.Vec3{0, 0, 0}, mgl32.Vec3{}, Spin{Axis: upAxis})
	b := w.SpawnParticle(params, mgl32.Vec3{0.9, 0, 0}, mgl32.Vec3{}, Spin{Axis: upAxis})
	c := w.SpawnParticle(params, mgl32.Vec3{3, 0, 0}, mgl32.Vec3{}, Spin{Axis: upAxis})
	d := w.SpawnParticle(params, mgl32.Vec3{3.9, 0, 0}, mgl32.Vec3{}, Spin{Axis: upAxis})

	w.fuse(a, b, NewNopLogger())
	w.fuse(c, d, NewNopLogger())
	require.Len(t, w.Aggregates(), 2)

	first, second := w.Aggregates()[0], w.Aggregates()[1]
	w.fuse(first, second, NewNopLogger())

	require.Len(t, w.Aggregates(), 1, "the absorbed aggregate leaves the world")
	assert.Same(t, first, w.Aggregates()[0])
	assert.True(t, second.Retired())
	assert.Len(t, first.Members(), 4)

	// Fusing an aggregate with itself is a no-op.
	w.fuse(first, first, NewNopLogger())
	assert.Len(t, first.Members(), 4)
}

func TestWorldReset(t *testing.T) {
	w := NewWorld()
	params := DefaultParameters()
	w.SpawnParticle(params, mgl32.Vec3{}, mgl32.Vec3{}, Spin{Axis: upAxis})
	oldRun := w.RunID

	w.Reset()

	assert.Empty(t, w.Particles())
	assert.Empty(t, w.Aggregates())
	assert.NotEqual(t, oldRun, w.RunID, "a reset starts a new run identity")
	p := w.SpawnParticle(params, mgl32.Vec3{}, mgl32.Vec3{}, Spin{Axis: upAxis})
	assert.Equal(t, BodyID(1), p.ID(), "the id sequence restarts")
}
