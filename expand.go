package quickhull

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/meshkit/quickhull/predicate"
)

// hullBuilder holds all state of one hull construction: the deduplicated
// working points, the face arena, the interior reference point, and the
// queue of faces with pending conflicts. Nothing here is shared between
// invocations.
//
// Conflict bookkeeping: the per-face conflict lists are the sole source of
// truth. A point is inserted into exactly one list (the first face it is
// outside of, in a deterministic face order) and only moves during
// redistribution, where all lists of the absorbed faces are drained into a
// pool and reassigned in a single pass.
type hullBuilder struct {
	cfg      Config
	pts      []mgl64.Vec3
	orig     []int
	arena    faceArena
	interior mgl64.Vec3

	// FIFO queue of face handles that may still hold conflicts. Selection
	// order affects performance only, never the result's vertex set.
	queue []int

	// Scratch buffers reused across iterations.
	visible     []int
	visibleMark []bool
	horizon     []horizonEdge
	pool        []conflictPoint
}

// sideOf classifies point pi against face h's plane via the predicate layer.
func (b *hullBuilder) sideOf(h int, pi int) predicate.Sign {
	f := b.arena.face(h)
	return predicate.Orient3D(b.cfg.Exactness,
		b.pts[f.verts[0]], b.pts[f.verts[1]], b.pts[f.verts[2]], b.pts[pi])
}

// counts reports whether a predicate result claims the point for a conflict
// list. Zero (exactly coplanar) counts only when coplanar points are kept;
// this is the single documented rule for the coplanar case, applied
// uniformly to seeding, visibility, and redistribution.
func (b *hullBuilder) counts(s predicate.Sign) bool {
	return s == predicate.Positive || (s == predicate.Zero && b.cfg.KeepCoplanarPoints)
}

// claimIfOutside assigns point pi to face h's conflict list if h's plane
// sees it, and reports whether it did.
func (b *hullBuilder) claimIfOutside(h int, pi int) bool {
	if !b.counts(b.sideOf(h, pi)) {
		return false
	}
	f := b.arena.face(h)
	f.conflicts = append(f.conflicts, conflictPoint{index: pi, dist: f.distanceTo(b.pts[pi])})
	return true
}

// enqueue schedules a face for expansion if it has pending conflicts.
func (b *hullBuilder) enqueue(h int) {
	f := b.arena.face(h)
	if f.queued || len(f.conflicts) == 0 {
		return
	}
	f.queued = true
	b.queue = append(b.queue, h)
}

// newFace allocates a face over the triangle (v0, v1, v2), flipping the
// winding if needed so the normal points away from inside. The reference must
// lie strictly off the triangle's plane: initial simplex faces use the
// omitted simplex vertex, cone faces the simplex centroid, which stays
// strictly interior as the polytope only grows.
func (b *hullBuilder) newFace(v0, v1, v2 int, inside mgl64.Vec3) (int, error) {
	normal, offset, ok := trianglePlane(b.pts[v0], b.pts[v1], b.pts[v2])
	if !ok {
		return noFace, &InvariantViolationError{Stage: "face creation", Detail: "zero-area face"}
	}
	switch predicate.Orient3D(b.cfg.Exactness, b.pts[v0], b.pts[v1], b.pts[v2], inside) {
	case predicate.Positive:
		v0, v1 = v1, v0
		normal = normal.Mul(-1)
		offset = -offset
	case predicate.Zero:
		return noFace, &InvariantViolationError{Stage: "face creation", Detail: "inside reference lies on a face plane"}
	}

	h := b.arena.alloc()
	f := b.arena.face(h)
	f.verts = [3]int{v0, v1, v2}
	f.neighbors = [3]int{noFace, noFace, noFace}
	f.normal = normal
	f.offset = offset
	return h, nil
}

// build runs the expansion loop to completion (or until MaxIterations): pick
// a pending face, attach its farthest conflict point to the hull, and repeat
// until no face holds a conflict. Termination is guaranteed because each
// iteration permanently resolves the chosen point: it leaves every conflict
// list and is never reinserted.
func (b *hullBuilder) build() error {
	iterations := 0
	for len(b.queue) > 0 {
		h := b.queue[0]
		b.queue = b.queue[1:]

		f := b.arena.face(h)
		f.queued = false
		if !f.alive || len(f.conflicts) == 0 {
			continue
		}
		if b.cfg.MaxIterations > 0 && iterations >= b.cfg.MaxIterations {
			break
		}
		iterations++

		apex := f.conflicts[f.farthestConflict()].index
		if err := b.attach(h, apex); err != nil {
			return err
		}
	}
	return b.arena.validate("finalization")
}

// attach performs one expansion step: computes the region of faces visible
// from apex, removes it, and stitches a cone of new faces from the horizon
// ring to apex.
func (b *hullBuilder) attach(seed int, apex int) error {
	b.findVisible(seed, apex)

	// Horizon: edges where a visible face borders a retained one, directed
	// as wound on the visible side so the ring chains deterministically.
	b.horizon = b.horizon[:0]
	for _, vh := range b.visible {
		f := b.arena.face(vh)
		for i := 0; i < 3; i++ {
			if b.visibleMark[f.neighbors[i]] {
				continue
			}
			b.horizon = append(b.horizon, horizonEdge{
				u:        f.verts[i],
				v:        f.verts[(i+1)%3],
				retained: f.neighbors[i],
			})
		}
	}
	loops, err := orderHorizon(b.horizon)
	if err != nil {
		return err
	}

	// Pool the conflicts of the doomed faces. The apex is dropped here: it
	// becomes a hull vertex and never re-enters a conflict list.
	b.pool = b.pool[:0]
	for _, vh := range b.visible {
		for _, cp := range b.arena.face(vh).conflicts {
			if cp.index != apex {
				b.pool = append(b.pool, cp)
			}
		}
	}

	for _, vh := range b.visible {
		b.visibleMark[vh] = false
		b.arena.release(vh)
	}

	// Stitch one cone of new faces per horizon loop. Each new face spans a
	// horizon edge (u, v) and the apex; it neighbors the retained face
	// across (u, v) and its two ring neighbors across the apex edges.
	var created []int
	for _, loop := range loops {
		loopStart := len(created)
		for _, e := range loop {
			nh, err := b.newFace(e.u, e.v, apex, b.interior)
			if err != nil {
				return err
			}
			created = append(created, nh)
		}
		for i, e := range loop {
			nh := created[loopStart+i]
			if err := b.arena.link(nh, e.retained, e.u, e.v); err != nil {
				return err
			}
			next := created[loopStart+(i+1)%len(loop)]
			if err := b.arena.link(nh, next, e.v, apex); err != nil {
				return err
			}
		}
	}

	// Redistribute the pooled points: first new face that sees a point keeps
	// it; points no new face sees are inside-or-on the hull for good.
	for _, cp := range b.pool {
		for _, nh := range created {
			if b.claimIfOutside(nh, cp.index) {
				break
			}
		}
	}
	for _, nh := range created {
		b.enqueue(nh)
	}
	return nil
}

// findVisible fills b.visible with the handles of all live faces from which
// apex is visible, by depth-first traversal of face adjacency outward from
// seed. The region is connected by construction: only faces reachable
// through other visible faces are tested.
func (b *hullBuilder) findVisible(seed int, apex int) {
	if len(b.visibleMark) < len(b.arena.faces) {
		b.visibleMark = append(b.visibleMark, make([]bool, len(b.arena.faces)-len(b.visibleMark))...)
	}
	b.visible = b.visible[:0]
	b.visible = append(b.visible, seed)
	b.visibleMark[seed] = true

	for scan := 0; scan < len(b.visible); scan++ {
		f := b.arena.face(b.visible[scan])
		for i := 0; i < 3; i++ {
			nh := f.neighbors[i]
			if b.visibleMark[nh] {
				continue
			}
			if b.counts(b.sideOf(nh, apex)) {
				b.visibleMark[nh] = true
				b.visible = append(b.visible, nh)
			}
		}
	}
}
