package quickhull

import (
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/quasilyte/gmath"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/bigxy"
	"github.com/twpayne/go-geom/xy/orientation"
)

// planarHull computes the 2D convex polygon of a coplanar point set by
// projecting onto the plane spanned by the three non-collinear points
// (i0, i1, i2) and running a Graham scan. Orientation tests use exact
// arithmetic, so collinear runs on the boundary are resolved correctly and
// only true corner points survive.
//
// The returned hull has Dimension 2 and its Loop wound counterclockwise
// around the plane normal (i1-i0) x (i2-i0).
func planarHull(points []mgl64.Vec3, orig []int, i0, i1, i2 int) (*Hull, error) {
	base := points[i0]
	u := points[i1].Sub(base).Normalize()
	normal := u.Cross(points[i2].Sub(base)).Normalize()
	v := normal.Cross(u)

	projected := make([]gmath.Vec, len(points))
	for i, p := range points {
		d := p.Sub(base)
		projected[i] = gmath.Vec{X: d.Dot(u), Y: d.Dot(v)}
	}

	loop := grahamScan(projected)
	if len(loop) < 3 {
		return nil, &InvariantViolationError{Stage: "planar fallback", Detail: "planar scan returned fewer than 3 corners"}
	}

	hull := &Hull{
		Dimension: 2,
		Loop:      make([]int, len(loop)),
		Vertices:  make([]int, len(loop)),
		positions: make([]mgl64.Vec3, len(loop)),
	}
	for i, w := range loop {
		hull.Loop[i] = orig[w]
	}
	workVerts := append([]int(nil), loop...)
	sort.Ints(workVerts)
	for i, w := range workVerts {
		hull.Vertices[i] = orig[w]
		hull.positions[i] = points[w]
	}
	return hull, nil
}

// grahamScan returns the indices of the convex polygon enclosing the given
// distinct 2D points, counterclockwise starting from the pivot. The pivot is
// the lowest point (smallest Y, then smallest X); the rest are sorted by
// polar angle around it, collinear candidates nearest-first, and the scan
// keeps only strict counterclockwise turns so collinear midpoints never
// survive.
func grahamScan(points []gmath.Vec) []int {
	pivot := 0
	for i := 1; i < len(points); i++ {
		p, q := points[i], points[pivot]
		if p.Y < q.Y || (p.Y == q.Y && p.X < q.X) {
			pivot = i
		}
	}

	rest := make([]int, 0, len(points)-1)
	for i := range points {
		if i != pivot {
			rest = append(rest, i)
		}
	}
	sort.SliceStable(rest, func(a, b int) bool {
		switch orientationOf(points[pivot], points[rest[a]], points[rest[b]]) {
		case orientation.CounterClockwise:
			return true
		case orientation.Clockwise:
			return false
		default:
			return squaredDistance(points[pivot], points[rest[a]]) < squaredDistance(points[pivot], points[rest[b]])
		}
	})

	stack := []int{pivot, rest[0]}
	for _, idx := range rest[1:] {
		for len(stack) >= 2 &&
			orientationOf(points[stack[len(stack)-2]], points[stack[len(stack)-1]], points[idx]) != orientation.CounterClockwise {
			stack = stack[:len(stack)-1]
		}
		stack = append(stack, idx)
	}
	// The last kept points may still be collinear with the pivot across the
	// closing edge.
	for len(stack) >= 3 &&
		orientationOf(points[stack[len(stack)-2]], points[stack[len(stack)-1]], points[stack[0]]) != orientation.CounterClockwise {
		stack = stack[:len(stack)-1]
	}
	return stack
}

// orientationOf is the exact 2D orientation of the turn a -> b -> c.
func orientationOf(a, b, c gmath.Vec) orientation.Type {
	return bigxy.OrientationIndex(geom.Coord{a.X, a.Y}, geom.Coord{b.X, b.Y}, geom.Coord{c.X, c.Y})
}

func squaredDistance(a, b gmath.Vec) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	return dx*dx + dy*dy
}
