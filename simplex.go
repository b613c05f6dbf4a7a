package quickhull

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/meshkit/quickhull/predicate"
)

// validatePoints rejects non-finite coordinates before any geometric
// computation runs.
func validatePoints(points []mgl64.Vec3) error {
	for i, p := range points {
		for axis := 0; axis < 3; axis++ {
			if math.IsNaN(p[axis]) || math.IsInf(p[axis], 0) {
				return &InputError{Reason: "coordinate is NaN or infinite", Index: i}
			}
		}
	}
	return nil
}

// dedupPoints collapses exact coordinate duplicates, keeping the first
// occurrence. The returned orig slice maps each working index back to its
// original input index; it is increasing, so lower working index always
// means lower original index.
func dedupPoints(points []mgl64.Vec3) (work []mgl64.Vec3, orig []int) {
	seen := make(map[mgl64.Vec3]struct{}, len(points))
	work = make([]mgl64.Vec3, 0, len(points))
	orig = make([]int, 0, len(points))
	for i, p := range points {
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		work = append(work, p)
		orig = append(orig, i)
	}
	return work, orig
}

// computeExtremes returns, per coordinate axis, the indices of the minimum
// and maximum points. The first point seeds both, matching the scan order
// used for AABB construction.
func computeExtremes(points []mgl64.Vec3) (minIdx, maxIdx [3]int) {
	min := points[0]
	max := points[0]
	for i := 1; i < len(points); i++ {
		p := points[i]
		for axis := 0; axis < 3; axis++ {
			if p[axis] < min[axis] {
				min[axis] = p[axis]
				minIdx[axis] = i
			} else if p[axis] > max[axis] {
				max[axis] = p[axis]
				maxIdx[axis] = i
			}
		}
	}
	return minIdx, maxIdx
}

// pickSimplex selects four points spanning a tetrahedron with as much
// numerical margin as the input allows:
//
//  1. the two extreme points along the widest coordinate axis,
//  2. the point farthest from the line through them,
//  3. the point farthest from the plane through the first three.
//
// degenerate reports, when ok is false, whether the input collapsed to a
// point, a line, or a plane. Candidate selection runs in plain floating
// point (it only affects conditioning, not correctness); the final
// non-coplanarity decision goes through the orientation predicate so that a
// numerically flat but genuinely 3D input is still accepted in Exact mode,
// and a genuinely flat one is never mistaken for 3D.
func pickSimplex(points []mgl64.Vec3, mode predicate.Mode) (simplex [4]int, degenerate Degeneracy, ok bool) {
	minIdx, maxIdx := computeExtremes(points)

	widest := 0
	maxExtent := 0.0
	for axis := 0; axis < 3; axis++ {
		extent := points[maxIdx[axis]][axis] - points[minIdx[axis]][axis]
		if extent > maxExtent {
			maxExtent = extent
			widest = axis
		}
	}
	if maxExtent == 0 {
		return simplex, DegeneracyCoincident, false
	}
	simplex[0] = minIdx[widest]
	simplex[1] = maxIdx[widest]

	// Farthest from the line through the first two, by squared cross-product
	// magnitude.
	lineDir := points[simplex[1]].Sub(points[simplex[0]]).Normalize()
	bestCross := 0.0
	simplex[2] = -1
	for i := range points {
		if i == simplex[0] || i == simplex[1] {
			continue
		}
		diff := points[i].Sub(points[simplex[0]])
		cross := lineDir.Cross(diff)
		if d := cross.Dot(cross); d > bestCross {
			bestCross = d
			simplex[2] = i
		}
	}
	if simplex[2] < 0 {
		return simplex, DegeneracyCollinear, false
	}

	// Farthest from the base triangle's plane.
	normal, offset, planeOK := trianglePlane(points[simplex[0]], points[simplex[1]], points[simplex[2]])
	if !planeOK {
		return simplex, DegeneracyCollinear, false
	}
	bestDist := 0.0
	simplex[3] = -1
	for i := range points {
		if i == simplex[0] || i == simplex[1] || i == simplex[2] {
			continue
		}
		if d := math.Abs(normal.Dot(points[i]) - offset); d > bestDist {
			bestDist = d
			simplex[3] = i
		}
	}
	if simplex[3] < 0 {
		return simplex, DegeneracyCoplanar, false
	}

	// The float selection can pick an apex whose distance is pure rounding
	// noise; the predicate has the final word.
	sign := predicate.Orient3D(mode,
		points[simplex[0]], points[simplex[1]], points[simplex[2]], points[simplex[3]])
	if sign == predicate.Zero {
		return simplex, DegeneracyCoplanar, false
	}

	return simplex, 0, true
}

// initSimplex creates the four outward-oriented faces of the initial
// tetrahedron, links their adjacency, and distributes every remaining point
// into the conflict list of the first face it lies outside of.
func (b *hullBuilder) initSimplex(simplex [4]int) error {
	centroid := mgl64.Vec3{}
	for _, idx := range simplex {
		centroid = centroid.Add(b.pts[idx])
	}
	b.interior = centroid.Mul(1.0 / 4.0)

	// One face per omitted simplex vertex. The omitted vertex orients the
	// face: it is strictly off the face's plane whenever the simplex spans a
	// tetrahedron, unlike the centroid, whose rounded coordinates can land
	// exactly on a plane for ulp-scale input.
	var handles [4]int
	for omit := 0; omit < 4; omit++ {
		var tri [3]int
		n := 0
		for j, idx := range simplex {
			if j != omit {
				tri[n] = idx
				n++
			}
		}
		h, err := b.newFace(tri[0], tri[1], tri[2], b.pts[simplex[omit]])
		if err != nil {
			return err
		}
		handles[omit] = h
	}

	for i := 0; i < 4; i++ {
		for j := i + 1; j < 4; j++ {
			u, v := sharedEdge(b.arena.face(handles[i]), b.arena.face(handles[j]))
			if err := b.arena.link(handles[i], handles[j], u, v); err != nil {
				return err
			}
		}
	}
	if err := b.arena.validate("initial simplex"); err != nil {
		return err
	}

	inSimplex := map[int]struct{}{
		simplex[0]: {}, simplex[1]: {}, simplex[2]: {}, simplex[3]: {},
	}
	for i := range b.pts {
		if _, used := inSimplex[i]; used {
			continue
		}
		for _, h := range handles {
			if b.claimIfOutside(h, i) {
				break
			}
		}
	}
	for _, h := range handles {
		b.enqueue(h)
	}
	return nil
}

// sharedEdge returns the two vertices common to both faces. Simplex faces
// always share exactly two.
func sharedEdge(fa, fb *face) (u, v int) {
	u, v = -1, -1
	for _, a := range fa.verts {
		for _, c := range fb.verts {
			if a == c {
				if u < 0 {
					u = a
				} else {
					v = a
				}
			}
		}
	}
	return u, v
}
