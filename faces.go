package cubesim

import (
	"sort"

	"github.com/go-gl/mathgl/mgl32"
)

// Face labels as bits of a 6-bit set, so face-set intersection is a mask AND.
type faceMask uint8

const (
	faceRight faceMask = 1 << iota // +x
	faceLeft                       // -x
	faceTop                        // +y
	faceBottom                     // -y
	faceFront                      // +z
	faceBack                       // -z
)

// cornerOffsets are the unit-cube corners; bit k of the index selects the
// sign on axis k.
var cornerOffsets = [8]mgl32.Vec3{
	{-0.5, -0.5, -0.5},
	{0.5, -0.5, -0.5},
	{-0.5, 0.5, -0.5},
	{0.5, 0.5, -0.5},
	{-0.5, -0.5, 0.5},
	{0.5, -0.5, 0.5},
	{-0.5, 0.5, 0.5},
	{0.5, 0.5, 0.5},
}

// cornerFaces maps a corner index to its three incident faces.
var cornerFaces = [8]faceMask{}

func init() {
	for i := range cornerFaces {
		m := faceLeft
		if i&1 != 0 {
			m = faceRight
		}
		if i&2 != 0 {
			m |= faceTop
		} else {
			m |= faceBottom
		}
		if i&4 != 0 {
			m |= faceFront
		} else {
			m |= faceBack
		}
		cornerFaces[i] = m
	}
}

// bodyCorners returns the eight world-space corners of the body's cube.
func bodyCorners(b Body) [8]mgl32.Vec3 {
	box := bodyOBB(b)
	var corners [8]mgl32.Vec3
	for i, off := range cornerOffsets {
		corners[i] = box.center.
			Add(box.axes[0].Mul(off.X() * 2 * box.half)).
			Add(box.axes[1].Mul(off.Y() * 2 * box.half)).
			Add(box.axes[2].Mul(off.Z() * 2 * box.half))
	}
	return corners
}

// MatchingFaceContact decides whether a confirmed contact happened on
// matching faces, the gate for letting two bodies bond. It ranks all 64
// corner pairs by distance, takes the three closest, and intersects the
// face sets the paired corners are incident to. A non-empty intersection
// across all three pairs classifies the contact as face-on. This is a
// heuristic, not polygon clipping; near-edge and near-corner contacts can
// misclassify.
func MatchingFaceContact(a, b Body) bool {
	cornersA := bodyCorners(a)
	cornersB := bodyCorners(b)

	type cornerPair struct {
		distSq float32
		ai, bi int
	}
	pairs := make([]cornerPair, 0, 64)
	for i := 0; i < 8; i++ {
		for j := 0; j < 8; j++ {
			d := cornersA[i].Sub(cornersB[j])
			pairs = append(pairs, cornerPair{distSq: d.Dot(d), ai: i, bi: j})
		}
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].distSq < pairs[j].distSq })

	shared := faceMask(0x3f)
	for _, p := range pairs[:3] {
		shared &= cornerFaces[p.ai] & cornerFaces[p.bi]
	}
	return shared != 0
}
