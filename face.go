package quickhull

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// noFace marks an unset neighbor handle.
const noFace = -1

// conflictPoint is one entry of a face's conflict list: a point currently
// known to lie strictly outside that face (or exactly on its plane, when
// coplanar points are kept), along with its distance from the face plane.
// The distance is only used to order the farthest-point selection; all
// side-of-plane decisions go through the predicate package.
type conflictPoint struct {
	index int
	dist  float64
}

// face is one triangle of the live polytope.
//
// verts are indices into the builder's working point slice, wound so the
// normal points away from the hull interior. neighbors[i] is the arena
// handle of the face across the edge verts[i] -> verts[(i+1)%3]; a live
// polytope always has all three neighbors set and reciprocal.
type face struct {
	verts     [3]int
	neighbors [3]int
	normal    mgl64.Vec3
	offset    float64
	conflicts []conflictPoint
	alive     bool
	queued    bool
}

// distanceTo returns the signed distance from the face plane to p. Positive
// is outside. Floating-point only; used for selection order, not for
// classification.
func (f *face) distanceTo(p mgl64.Vec3) float64 {
	return f.normal.Dot(p) - f.offset
}

// edgeIndex returns which edge of f is the undirected edge {u, v}, or -1.
func (f *face) edgeIndex(u, v int) int {
	for i := 0; i < 3; i++ {
		a, b := f.verts[i], f.verts[(i+1)%3]
		if (a == u && b == v) || (a == v && b == u) {
			return i
		}
	}
	return -1
}

// farthestConflict returns the position of the farthest conflict point.
// Ties by distance are broken toward the lowest point index, which is also
// the lowest original input index since deduplication preserves input order.
// Returns -1 for an empty list.
func (f *face) farthestConflict() int {
	best := -1
	for i, cp := range f.conflicts {
		if best < 0 {
			best = i
			continue
		}
		b := f.conflicts[best]
		if cp.dist > b.dist || (cp.dist == b.dist && cp.index < b.index) {
			best = i
		}
	}
	return best
}

// faceArena is the index-addressed store for faces. Neighbor references are
// arena handles rather than pointers, which keeps the cyclic adjacency
// structure free of ownership cycles and lets absorbed faces be recycled.
type faceArena struct {
	faces []face
	free  []int
	live  int
}

// alloc returns a handle to a zeroed face marked alive.
func (a *faceArena) alloc() int {
	a.live++
	if n := len(a.free); n > 0 {
		h := a.free[n-1]
		a.free = a.free[:n-1]
		f := &a.faces[h]
		*f = face{conflicts: f.conflicts[:0]}
		f.alive = true
		return h
	}
	a.faces = append(a.faces, face{alive: true})
	return len(a.faces) - 1
}

// release recycles a face absorbed by an expansion step.
func (a *faceArena) release(h int) {
	f := &a.faces[h]
	f.alive = false
	f.conflicts = f.conflicts[:0]
	a.live--
	a.free = append(a.free, h)
}

func (a *faceArena) face(h int) *face { return &a.faces[h] }

// liveHandles appends all live face handles to dst in handle order, which
// keeps every walk over the polytope deterministic.
func (a *faceArena) liveHandles(dst []int) []int {
	for h := range a.faces {
		if a.faces[h].alive {
			dst = append(dst, h)
		}
	}
	return dst
}

// link records that fa and fb share the undirected edge {u, v}, setting the
// neighbor handle on both sides.
func (a *faceArena) link(fa, fb, u, v int) error {
	ea := a.faces[fa].edgeIndex(u, v)
	eb := a.faces[fb].edgeIndex(u, v)
	if ea < 0 || eb < 0 {
		return &InvariantViolationError{Stage: "stitching", Detail: "linked faces do not share the edge"}
	}
	a.faces[fa].neighbors[ea] = fb
	a.faces[fb].neighbors[eb] = fa
	return nil
}

// validate checks invariant 1: the live faces form a closed 2-manifold.
// Every neighbor link must be reciprocal and every undirected edge shared by
// exactly two live faces. A failure is an implementation defect.
func (a *faceArena) validate(stage string) error {
	for h := range a.faces {
		f := &a.faces[h]
		if !f.alive {
			continue
		}
		if f.verts[0] == f.verts[1] || f.verts[1] == f.verts[2] || f.verts[0] == f.verts[2] {
			return &InvariantViolationError{Stage: stage, Detail: "face with repeated vertex"}
		}
		for i := 0; i < 3; i++ {
			nh := f.neighbors[i]
			if nh == noFace || !a.faces[nh].alive {
				return &InvariantViolationError{Stage: stage, Detail: "face with missing or dead neighbor"}
			}
			u, v := f.verts[i], f.verts[(i+1)%3]
			n := &a.faces[nh]
			ei := n.edgeIndex(u, v)
			if ei < 0 || n.neighbors[ei] != h {
				return &InvariantViolationError{Stage: stage, Detail: "non-reciprocal neighbor link"}
			}
			// The shared edge must run in opposite directions on the two
			// faces, otherwise their windings disagree.
			if n.verts[ei] != v || n.verts[(ei+1)%3] != u {
				return &InvariantViolationError{Stage: stage, Detail: "neighboring faces wound in the same direction"}
			}
		}
	}
	return nil
}

// trianglePlane computes the unit normal and plane offset of the triangle
// (a, b, c) with right-handed winding. ok is false for a zero-area triangle.
func trianglePlane(a, b, c mgl64.Vec3) (normal mgl64.Vec3, offset float64, ok bool) {
	n := b.Sub(a).Cross(c.Sub(a))
	length := math.Sqrt(n.Dot(n))
	if length == 0 {
		return mgl64.Vec3{}, 0, false
	}
	n = n.Mul(1.0 / length)
	return n, n.Dot(a), true
}

// horizonEdge is one directed edge of the horizon ring: the edge (u, v) as
// wound on the visible face that owns it, together with the retained face on
// the far side. Edges are transient; they live only between horizon
// computation and stitching.
type horizonEdge struct {
	u, v     int
	retained int
}

// orderHorizon chains directed horizon edges head-to-tail into closed loops.
// Every vertex of the horizon has exactly one outgoing and one incoming edge,
// so the chain always closes; edges left over after all loops are closed
// mean the visible region's boundary was not a union of simple loops, which
// is a defect. Each loop starts at its lexicographically smallest (u, v)
// edge so the result is deterministic.
func orderHorizon(edges []horizonEdge) ([][]horizonEdge, error) {
	next := make(map[int]horizonEdge, len(edges))
	for _, e := range edges {
		if _, dup := next[e.u]; dup {
			return nil, &InvariantViolationError{Stage: "horizon", Detail: "vertex with two outgoing horizon edges"}
		}
		next[e.u] = e
	}

	used := 0
	var loops [][]horizonEdge
	for used < len(edges) {
		start := horizonEdge{u: -1}
		for _, e := range edges {
			if _, ok := next[e.u]; !ok {
				continue
			}
			if start.u < 0 || e.u < start.u || (e.u == start.u && e.v < start.v) {
				start = e
			}
		}

		var loop []horizonEdge
		for at := start.u; ; {
			e, ok := next[at]
			if !ok {
				return nil, &InvariantViolationError{Stage: "horizon", Detail: "horizon chain does not close"}
			}
			delete(next, at)
			loop = append(loop, e)
			used++
			at = e.v
			if at == start.u {
				break
			}
		}
		if len(loop) < 3 {
			return nil, &InvariantViolationError{Stage: "horizon", Detail: "horizon loop with fewer than 3 edges"}
		}
		loops = append(loops, loop)
	}
	return loops, nil
}
