package cubesim

import (
	"sort"

	"github.com/chewxy/math32"
)

const (
	BroadPhaseGrid  = "grid"
	BroadPhaseSweep = "sweep"
)

// CandidatePair is an unordered pair of distinct bodies whose AABBs might
// overlap. Pairs are stored canonically with the smaller ID first.
type CandidatePair struct {
	A, B Body
}

func makePair(a, b Body) CandidatePair {
	if b.ID() < a.ID() {
		a, b = b, a
	}
	return CandidatePair{A: a, B: b}
}

func (p CandidatePair) key() uint64 {
	return uint64(p.A.ID())<<32 | uint64(p.B.ID())
}

// sameAggregate suppresses self-collision between members of one composite.
// Membership is read from the bodies, never inferred from geometry.
func sameAggregate(a, b Body) bool {
	pa, okA := a.(*Particle)
	pb, okB := b.(*Particle)
	return okA && okB && pa.owner != nil && pa.owner == pb.owner
}

// BroadPhase produces candidate pairs with no false negatives: every pair
// whose AABBs truly overlap is in the result. False positives are fine; the
// narrow phase rejects them.
type BroadPhase interface {
	Rebuild(bodies []Body)
	// Pairs returns the candidate set sorted by canonical pair key, so the
	// resolve order is deterministic across runs.
	Pairs() []CandidatePair
}

// BroadPhaseIndex wraps the configured strategy as an app resource.
type BroadPhaseIndex struct {
	BroadPhase
}

// SweepAndPrune keeps three per-axis lists sorted by (min, max) extent and
// sweeps each: a body overlaps a forward neighbor on the axis while the
// neighbor's min does not pass the body's max, and because mins are sorted
// the scan stops at the first neighbor beyond it. The final candidate set is
// the intersection of the three per-axis sets.
type SweepAndPrune struct {
	pairs []CandidatePair
}

func NewSweepAndPrune() *SweepAndPrune {
	return &SweepAndPrune{}
}

type sweepEntry struct {
	body     Body
	min, max float32
}

func (s *SweepAndPrune) Rebuild(bodies []Body) {
	s.pairs = s.pairs[:0]
	if len(bodies) < 2 {
		return
	}

	axisSets := [3]map[uint64]CandidatePair{}
	for axis := 0; axis < 3; axis++ {
		entries := make([]sweepEntry, 0, len(bodies))
		for _, b := range bodies {
			box := b.BoundingBox()
			entries = append(entries, sweepEntry{body: b, min: box.Min[axis], max: box.Max[axis]})
		}
		sort.Slice(entries, func(i, j int) bool {
			if entries[i].min != entries[j].min {
				return entries[i].min < entries[j].min
			}
			return entries[i].max < entries[j].max
		})

		set := make(map[uint64]CandidatePair)
		for i := range entries {
			for j := i + 1; j < len(entries); j++ {
				if entries[j].min > entries[i].max {
					break
				}
				a, b := entries[i].body, entries[j].body
				if a.ID() == b.ID() || sameAggregate(a, b) {
					continue
				}
				pair := makePair(a, b)
				set[pair.key()] = pair
			}
		}
		axisSets[axis] = set
	}

	for key, pair := range axisSets[0] {
		if _, ok := axisSets[1][key]; !ok {
			continue
		}
		if _, ok := axisSets[2][key]; !ok {
			continue
		}
		s.pairs = append(s.pairs, pair)
	}
	sort.Slice(s.pairs, func(i, j int) bool { return s.pairs[i].key() < s.pairs[j].key() })
}

func (s *SweepAndPrune) Pairs() []CandidatePair {
	return s.pairs
}

// UniformGrid buckets each body into the hashed cell of its center, with the
// cell size taken from the largest body extent at rebuild time, and draws
// candidates from the 3x3x3 neighborhood around each body's cell. Cell
// coordinates are clamped to the simulation volume so escapees land in the
// boundary cells instead of growing the table without bound.
type UniformGrid struct {
	halfExtent float32
	cellSize   float32
	cells      map[uint64][]Body
	pairs      []CandidatePair
}

func NewUniformGrid(volumeHalfExtent float32) *UniformGrid {
	return &UniformGrid{
		halfExtent: volumeHalfExtent,
		cells:      make(map[uint64][]Body),
	}
}

// Prime-mix hash for 3D cell coordinates.
func gridKey(x, y, z int) uint64 {
	const p1 = 73856093
	const p2 = 19349663
	const p3 = 83492791
	return uint64(x*p1 ^ y*p2 ^ z*p3)
}

func (g *UniformGrid) cellCoord(v float32) int {
	c := int(math32.Floor(v / g.cellSize))
	limit := int(g.halfExtent/g.cellSize) + 1
	if c > limit {
		c = limit
	} else if c < -limit {
		c = -limit
	}
	return c
}

func (g *UniformGrid) Rebuild(bodies []Body) {
	g.pairs = g.pairs[:0]
	for k := range g.cells {
		delete(g.cells, k)
	}
	if len(bodies) < 2 {
		return
	}

	// The cell must cover the largest body so that any overlapping pair sits
	// in adjacent cells.
	g.cellSize = 1
	for _, b := range bodies {
		ext := b.BoundingBox().Extents()
		g.cellSize = math32.Max(g.cellSize, math32.Max(ext.X(), math32.Max(ext.Y(), ext.Z())))
	}

	// Bucket by AABB center, not body center: an aggregate's mass centroid
	// can sit far from the middle of its box.
	for _, b := range bodies {
		c := b.BoundingBox().Center()
		key := gridKey(g.cellCoord(c.X()), g.cellCoord(c.Y()), g.cellCoord(c.Z()))
		g.cells[key] = append(g.cells[key], b)
	}

	seen := make(map[uint64]struct{})
	for _, b := range bodies {
		c := b.BoundingBox().Center()
		cx, cy, cz := g.cellCoord(c.X()), g.cellCoord(c.Y()), g.cellCoord(c.Z())
		for dx := -1; dx <= 1; dx++ {
			for dy := -1; dy <= 1; dy++ {
				for dz := -1; dz <= 1; dz++ {
					for _, other := range g.cells[gridKey(cx+dx, cy+dy, cz+dz)] {
						if other.ID() == b.ID() || sameAggregate(b, other) {
							continue
						}
						pair := makePair(b, other)
						if _, ok := seen[pair.key()]; ok {
							continue
						}
						seen[pair.key()] = struct{}{}
						g.pairs = append(g.pairs, pair)
					}
				}
			}
		}
	}
	sort.Slice(g.pairs, func(i, j int) bool { return g.pairs[i].key() < g.pairs[j].key() })
}

func (g *UniformGrid) Pairs() []CandidatePair {
	return g.pairs
}

// BroadPhaseModule installs the configured strategy and the per-tick rebuild
// system. Install it after PhysicsModule so the index is rebuilt after
// integration has moved everything.
type BroadPhaseModule struct {
	Strategy         string
	VolumeHalfExtent float32
}

func (m BroadPhaseModule) Install(app *App, cmd *Commands) {
	var strategy BroadPhase
	switch m.Strategy {
	case BroadPhaseSweep:
		strategy = NewSweepAndPrune()
	default:
		strategy = NewUniformGrid(m.VolumeHalfExtent)
	}
	cmd.AddResources(&BroadPhaseIndex{BroadPhase: strategy})
	cmd.UseSystem(System(broadPhaseSystem).InStage(PreUpdate))
}

// broadPhaseSystem rebuilds the index from scratch every tick; nothing is
// persisted across ticks.
func broadPhaseSystem(world *World, index *BroadPhaseIndex) {
	index.Rebuild(world.ActiveBodies())
}
