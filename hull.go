package quickhull

import (
	"sort"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/meshkit/quickhull/predicate"
)

// Hull is the result of one hull computation. All index fields reference the
// original input slice passed to ComputeHull. A Hull is immutable once
// returned.
type Hull struct {
	// Dimension of the result: 3 for a full polytope, 2 for a planar
	// polygon, 1 for a segment, 0 for a single point. Anything below 3 only
	// occurs with Config.AllowDegenerate.
	Dimension int

	// Vertices holds the original indices of the points on the hull
	// boundary, in ascending order.
	Vertices []int

	// Faces holds the hull triangles, wound counterclockwise as seen from
	// outside. Empty unless Dimension == 3.
	Faces [][3]int

	// Loop holds the boundary polygon of a planar hull, wound
	// counterclockwise around the plane normal. Empty unless Dimension == 2.
	Loop []int

	// Polygons holds the coplanar-merged faces, each a counterclockwise
	// boundary loop. Populated only with Config.MergeCoplanarFaces.
	Polygons [][]int

	// positions is parallel to Vertices.
	positions []mgl64.Vec3
}

// VertexCount returns the number of distinct hull vertices.
func (h *Hull) VertexCount() int { return len(h.Vertices) }

// Position returns the coordinates of the hull vertex with the given
// original index. ok is false if that index is not a hull vertex.
func (h *Hull) Position(origIndex int) (pos mgl64.Vec3, ok bool) {
	i := sort.SearchInts(h.Vertices, origIndex)
	if i >= len(h.Vertices) || h.Vertices[i] != origIndex {
		return mgl64.Vec3{}, false
	}
	return h.positions[i], true
}

// Volume returns the enclosed volume, summing tetrahedron volumes from an
// arbitrary hull vertex to every face. Zero for lower-dimensional hulls;
// extremely small hulls may round to zero.
func (h *Hull) Volume() float64 {
	if len(h.Faces) == 0 {
		return 0
	}
	ref, _ := h.Position(h.Faces[0][0])
	refCol := ref.Vec4(1)

	volume := 0.0
	for _, f := range h.Faces {
		a, _ := h.Position(f[0])
		b, _ := h.Position(f[1])
		c, _ := h.Position(f[2])
		det := mgl64.Mat4FromCols(a.Vec4(1), b.Vec4(1), c.Vec4(1), refCol).Det()
		if det > 0 {
			volume += det
		}
	}
	return volume / 6.0
}

// SupportPoint returns the hull vertex farthest in the given direction. Ties
// keep the lowest original index.
func (h *Hull) SupportPoint(direction mgl64.Vec3) mgl64.Vec3 {
	best := h.positions[0]
	bestDot := best.Dot(direction)
	for _, p := range h.positions[1:] {
		if d := p.Dot(direction); d > bestDot {
			bestDot = d
			best = p
		}
	}
	return best
}

// pointHull and segmentHull build the 0- and 1-dimensional degenerate
// results.
func pointHull(origIndex int, pos mgl64.Vec3) *Hull {
	return &Hull{Dimension: 0, Vertices: []int{origIndex}, positions: []mgl64.Vec3{pos}}
}

func segmentHull(aOrig, bOrig int, aPos, bPos mgl64.Vec3) *Hull {
	if bOrig < aOrig {
		aOrig, bOrig = bOrig, aOrig
		aPos, bPos = bPos, aPos
	}
	return &Hull{
		Dimension: 1,
		Vertices:  []int{aOrig, bOrig},
		positions: []mgl64.Vec3{aPos, bPos},
	}
}

// extract converts the final face set into the returned Hull, remapping the
// deduplicated working indices back to original input indices.
func (b *hullBuilder) extract() (*Hull, error) {
	live := b.arena.liveHandles(nil)

	used := map[int]struct{}{}
	faces := make([][3]int, 0, len(live))
	for _, h := range live {
		f := b.arena.face(h)
		faces = append(faces, [3]int{
			b.orig[f.verts[0]],
			b.orig[f.verts[1]],
			b.orig[f.verts[2]],
		})
		for _, v := range f.verts {
			used[v] = struct{}{}
		}
	}

	workVerts := make([]int, 0, len(used))
	for v := range used {
		workVerts = append(workVerts, v)
	}
	sort.Ints(workVerts)

	hull := &Hull{
		Dimension: 3,
		Faces:     faces,
		Vertices:  make([]int, len(workVerts)),
		positions: make([]mgl64.Vec3, len(workVerts)),
	}
	// orig is increasing, so the remapped vertex list stays sorted.
	for i, v := range workVerts {
		hull.Vertices[i] = b.orig[v]
		hull.positions[i] = b.pts[v]
	}

	if b.cfg.MergeCoplanarFaces {
		polygons, err := b.mergeCoplanar(live)
		if err != nil {
			return nil, err
		}
		hull.Polygons = polygons
	}
	return hull, nil
}

// mergeCoplanar groups adjacent exactly-coplanar triangles and emits each
// group's boundary loop as a polygon. Grouping walks face adjacency; two
// neighbors belong together when the predicate reports the neighbor's
// opposite vertex exactly on the face's plane.
func (b *hullBuilder) mergeCoplanar(live []int) ([][]int, error) {
	group := make(map[int]int, len(live))
	for _, h := range live {
		group[h] = -1
	}

	coplanarNeighbors := func(h, nh int) bool {
		f := b.arena.face(h)
		n := b.arena.face(nh)
		shared := f.edgeIndex(n.verts[0], n.verts[1])
		opposite := n.verts[2]
		if shared < 0 {
			if f.edgeIndex(n.verts[1], n.verts[2]) >= 0 {
				opposite = n.verts[0]
			} else {
				opposite = n.verts[1]
			}
		}
		return predicate.Orient3D(b.cfg.Exactness,
			b.pts[f.verts[0]], b.pts[f.verts[1]], b.pts[f.verts[2]], b.pts[opposite]) == predicate.Zero
	}

	var polygons [][]int
	groups := 0
	for _, start := range live {
		if group[start] >= 0 {
			continue
		}
		id := groups
		groups++

		members := []int{start}
		group[start] = id
		for scan := 0; scan < len(members); scan++ {
			f := b.arena.face(members[scan])
			for i := 0; i < 3; i++ {
				nh := f.neighbors[i]
				if group[nh] != -1 || !coplanarNeighbors(members[scan], nh) {
					continue
				}
				group[nh] = id
				members = append(members, nh)
			}
		}

		// The group's boundary: directed edges whose neighbor is outside the
		// group, chained into a loop.
		var boundary []horizonEdge
		for _, mh := range members {
			f := b.arena.face(mh)
			for i := 0; i < 3; i++ {
				if group[f.neighbors[i]] == id {
					continue
				}
				boundary = append(boundary, horizonEdge{u: f.verts[i], v: f.verts[(i+1)%3]})
			}
		}
		loops, err := orderHorizon(boundary)
		if err != nil {
			return nil, err
		}
		if len(loops) != 1 {
			return nil, &InvariantViolationError{Stage: "face merging", Detail: "coplanar face group is not a disk"}
		}

		polygon := make([]int, 0, len(loops[0]))
		for _, e := range loops[0] {
			polygon = append(polygon, b.orig[e.u])
		}
		polygons = append(polygons, polygon)
	}
	return polygons, nil
}
