package quickhull

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshkit/quickhull/predicate"
)

// checkWatertight asserts the face mesh is a closed 2-manifold: every
// directed edge appears exactly once, its reverse exactly once, and the
// Euler characteristic is 2.
func checkWatertight(t *testing.T, hull *Hull) {
	t.Helper()
	require.Equal(t, 3, hull.Dimension)

	type edge struct{ u, v int }
	directed := map[edge]int{}
	for _, f := range hull.Faces {
		for i := 0; i < 3; i++ {
			directed[edge{f[i], f[(i+1)%3]}]++
		}
	}
	for e, n := range directed {
		assert.Equal(t, 1, n, "directed edge %v appears %d times", e, n)
		assert.Equal(t, 1, directed[edge{e.v, e.u}], "edge %v has no twin", e)
	}

	v := hull.VertexCount()
	e := len(directed) / 2
	f := len(hull.Faces)
	assert.Equal(t, 2, v-e+f, "Euler characteristic: V=%d E=%d F=%d", v, e, f)
}

// checkConvex asserts, with exact predicates, that no input point lies
// strictly outside any face plane. Faces are wound counterclockwise from
// outside, so outside is the Positive side.
func checkConvex(t *testing.T, hull *Hull, points []mgl64.Vec3) {
	t.Helper()
	for fi, f := range hull.Faces {
		a, ok := hull.Position(f[0])
		require.True(t, ok)
		b, ok := hull.Position(f[1])
		require.True(t, ok)
		c, ok := hull.Position(f[2])
		require.True(t, ok)
		for pi, p := range points {
			sign := predicate.Orient3D(predicate.Exact, a, b, c, p)
			assert.NotEqual(t, predicate.Positive, sign,
				"point %d is outside face %d (%v)", pi, fi, f)
		}
	}
}

func cubePoints() []mgl64.Vec3 {
	var pts []mgl64.Vec3
	for _, x := range []float64{0, 2} {
		for _, y := range []float64{0, 2} {
			for _, z := range []float64{0, 2} {
				pts = append(pts, mgl64.Vec3{x, y, z})
			}
		}
	}
	return pts
}

func octahedronPoints(center mgl64.Vec3) []mgl64.Vec3 {
	return []mgl64.Vec3{
		center.Add(mgl64.Vec3{1, 0, 0}),
		center.Add(mgl64.Vec3{-1, 0, 0}),
		center.Add(mgl64.Vec3{0, 1, 0}),
		center.Add(mgl64.Vec3{0, -1, 0}),
		center.Add(mgl64.Vec3{0, 0, 1}),
		center.Add(mgl64.Vec3{0, 0, -1}),
	}
}

// spherePoints distributes n points over the unit sphere on a golden-angle
// spiral. The spiral has no symmetry, so no four points are coplanar and
// every point is a strict hull vertex.
func spherePoints(n int) []mgl64.Vec3 {
	pts := make([]mgl64.Vec3, 0, n)
	for i := 0; i < n; i++ {
		polar := math.Acos(1 - 2*(float64(i)+0.5)/float64(n))
		azimuth := math.Pi * (1 + math.Sqrt(5)) * float64(i)
		pts = append(pts, mgl64.Vec3{
			math.Sin(polar) * math.Cos(azimuth),
			math.Cos(polar),
			math.Sin(polar) * math.Sin(azimuth),
		})
	}
	return pts
}

func TestComputeHullInputErrors(t *testing.T) {
	tests := []struct {
		name   string
		points []mgl64.Vec3
	}{
		{name: "empty input"},
		{
			name:   "NaN coordinate",
			points: []mgl64.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, math.NaN(), 1}},
		},
		{
			name:   "infinite coordinate",
			points: []mgl64.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, math.Inf(1)}},
		},
		{
			name:   "too few points",
			points: []mgl64.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hull, err := ComputeHull(tt.points, Config{})
			assert.Nil(t, hull)
			var inputErr *InputError
			assert.True(t, errors.As(err, &inputErr), "err = %v", err)
		})
	}
}

func TestComputeHullDegeneracyErrors(t *testing.T) {
	tests := []struct {
		name     string
		points   []mgl64.Vec3
		expected Degeneracy
	}{
		{
			name:     "coincident",
			points:   []mgl64.Vec3{{3, 3, 3}, {3, 3, 3}, {3, 3, 3}, {3, 3, 3}},
			expected: DegeneracyCoincident,
		},
		{
			name:     "collinear",
			points:   []mgl64.Vec3{{0, 0, 0}, {1, 1, 1}, {2, 2, 2}, {3, 3, 3}},
			expected: DegeneracyCollinear,
		},
		{
			name:     "coplanar",
			points:   []mgl64.Vec3{{0, 0, 5}, {1, 0, 5}, {0, 1, 5}, {1, 1, 5}},
			expected: DegeneracyCoplanar,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hull, err := ComputeHull(tt.points, Config{})
			assert.Nil(t, hull)
			var degErr *DegeneracyError
			require.True(t, errors.As(err, &degErr), "err = %v", err)
			assert.Equal(t, tt.expected, degErr.Kind)
		})
	}
}

func TestComputeHullDegenerateFallbacks(t *testing.T) {
	cfg := Config{AllowDegenerate: true}

	t.Run("single point", func(t *testing.T) {
		hull, err := ComputeHull([]mgl64.Vec3{{1, 2, 3}}, cfg)
		require.NoError(t, err)
		assert.Equal(t, 0, hull.Dimension)
		assert.Equal(t, []int{0}, hull.Vertices)
	})

	t.Run("coincident points collapse to one", func(t *testing.T) {
		hull, err := ComputeHull([]mgl64.Vec3{{1, 1, 1}, {1, 1, 1}, {1, 1, 1}}, cfg)
		require.NoError(t, err)
		assert.Equal(t, 0, hull.Dimension)
		assert.Equal(t, []int{0}, hull.Vertices)
	})

	t.Run("collinear points become a segment", func(t *testing.T) {
		hull, err := ComputeHull([]mgl64.Vec3{
			{2, 2, 2}, {0, 0, 0}, {3, 3, 3}, {1, 1, 1},
		}, cfg)
		require.NoError(t, err)
		assert.Equal(t, 1, hull.Dimension)
		// The segment spans the extreme points only.
		assert.Equal(t, []int{1, 2}, hull.Vertices)
	})

	t.Run("coplanar points become a polygon", func(t *testing.T) {
		hull, err := ComputeHull([]mgl64.Vec3{
			{0, 0, 5}, {2, 0, 5}, {2, 2, 5}, {0, 2, 5}, {1, 1, 5},
		}, cfg)
		require.NoError(t, err)
		assert.Equal(t, 2, hull.Dimension)
		assert.Equal(t, []int{0, 1, 2, 3}, hull.Vertices)
		assert.Len(t, hull.Loop, 4)
		assert.NotContains(t, hull.Loop, 4)
	})
}

func TestComputeHullCube(t *testing.T) {
	points := cubePoints()
	// Interior points must not survive.
	points = append(points, mgl64.Vec3{1, 1, 1}, mgl64.Vec3{0.5, 1.5, 0.3})

	hull, err := ComputeHull(points, Config{})
	require.NoError(t, err)

	assert.Equal(t, 8, hull.VertexCount())
	assert.Len(t, hull.Faces, 12)
	assert.InDelta(t, 8.0, hull.Volume(), 1e-12)
	checkWatertight(t, hull)
	checkConvex(t, hull, points)

	for _, origIdx := range hull.Vertices {
		assert.Less(t, origIdx, 8, "interior point %d on the hull", origIdx)
	}
}

func TestComputeHullOctahedron(t *testing.T) {
	for _, center := range []mgl64.Vec3{{0, 0, 0}, {10, -10, 10}} {
		points := octahedronPoints(center)
		points = append(points, center) // interior

		hull, err := ComputeHull(points, Config{})
		require.NoError(t, err)

		assert.Equal(t, 6, hull.VertexCount())
		assert.Len(t, hull.Faces, 8)
		assert.InDelta(t, 4.0/3.0, hull.Volume(), 1e-12)
		checkWatertight(t, hull)
		checkConvex(t, hull, points)
	}
}

func TestComputeHullSphereVolume(t *testing.T) {
	points := spherePoints(400)
	hull, err := ComputeHull(points, Config{})
	require.NoError(t, err)

	checkWatertight(t, hull)
	checkConvex(t, hull, points)

	ball := 4.0 / 3.0 * math.Pi
	volume := hull.Volume()
	assert.Less(t, volume, ball, "inscribed hull cannot exceed the ball")
	assert.Greater(t, volume, 0.95*ball, "hull volume %f too far below %f", volume, ball)
}

// TestComputeHullSpikes buries a dense cloud inside a ball and adds six far
// spikes; only the spikes may survive on the hull.
func TestComputeHullSpikes(t *testing.T) {
	var points []mgl64.Vec3
	for _, p := range spherePoints(150) {
		points = append(points, p.Mul(0.5))
	}
	spikeStart := len(points)
	points = append(points, octahedronPoints(mgl64.Vec3{})...)
	for i := spikeStart; i < len(points); i++ {
		points[i] = points[i].Mul(10)
	}

	hull, err := ComputeHull(points, Config{})
	require.NoError(t, err)

	assert.Equal(t, 6, hull.VertexCount())
	for _, origIdx := range hull.Vertices {
		assert.GreaterOrEqual(t, origIdx, spikeStart)
	}
	checkWatertight(t, hull)
	checkConvex(t, hull, points)
}

func TestComputeHullIdempotent(t *testing.T) {
	points := spherePoints(100)
	first, err := ComputeHull(points, Config{})
	require.NoError(t, err)

	boundary := make([]mgl64.Vec3, 0, first.VertexCount())
	for _, origIdx := range first.Vertices {
		pos, ok := first.Position(origIdx)
		require.True(t, ok)
		boundary = append(boundary, pos)
	}

	second, err := ComputeHull(boundary, Config{})
	require.NoError(t, err)
	assert.Equal(t, first.VertexCount(), second.VertexCount())
	assert.Len(t, second.Faces, len(first.Faces))
	assert.InDelta(t, first.Volume(), second.Volume(), 1e-9)
}

func TestComputeHullOrderInvariant(t *testing.T) {
	points := cubePoints()
	points = append(points, mgl64.Vec3{1, 1, 1})

	forward, err := ComputeHull(points, Config{})
	require.NoError(t, err)

	reversed := make([]mgl64.Vec3, len(points))
	for i, p := range points {
		reversed[len(points)-1-i] = p
	}
	backward, err := ComputeHull(reversed, Config{})
	require.NoError(t, err)

	positionsOf := func(h *Hull) map[mgl64.Vec3]bool {
		set := map[mgl64.Vec3]bool{}
		for _, origIdx := range h.Vertices {
			pos, ok := h.Position(origIdx)
			require.True(t, ok)
			set[pos] = true
		}
		return set
	}
	assert.Equal(t, positionsOf(forward), positionsOf(backward))
	assert.InDelta(t, forward.Volume(), backward.Volume(), 1e-12)
}

func TestComputeHullKeepCoplanarPoints(t *testing.T) {
	points := cubePoints()
	points = append(points, mgl64.Vec3{1, 1, 0}) // center of the z=0 face

	dropped, err := ComputeHull(points, Config{})
	require.NoError(t, err)
	assert.Equal(t, 8, dropped.VertexCount())

	kept, err := ComputeHull(points, Config{KeepCoplanarPoints: true})
	require.NoError(t, err)
	assert.Equal(t, 9, kept.VertexCount())
	assert.Contains(t, kept.Vertices, 8)
	checkWatertight(t, kept)
	checkConvex(t, kept, points)

	// Coplanar vertices add no volume.
	assert.InDelta(t, dropped.Volume(), kept.Volume(), 1e-12)
}

func TestComputeHullDuplicateInput(t *testing.T) {
	points := cubePoints()
	points = append(points, points...)

	hull, err := ComputeHull(points, Config{})
	require.NoError(t, err)
	assert.Equal(t, 8, hull.VertexCount())
	// Indices refer to the first occurrence of each duplicate.
	for _, origIdx := range hull.Vertices {
		assert.Less(t, origIdx, 8)
	}
	checkWatertight(t, hull)
}

func TestComputeHullMaxIterations(t *testing.T) {
	points := spherePoints(200)

	full, err := ComputeHull(points, Config{})
	require.NoError(t, err)

	truncated, err := ComputeHull(points, Config{MaxIterations: 3})
	require.NoError(t, err)

	// Truncation still yields a closed mesh, just a coarser one.
	checkWatertight(t, truncated)
	assert.Less(t, truncated.VertexCount(), full.VertexCount())
	assert.GreaterOrEqual(t, truncated.VertexCount(), 4)
}

// TestComputeHullNearDegenerate mirrors the ulp-perturbation inputs: a few
// points almost on a common plane must either fail cleanly or build a valid
// tiny hull, never a broken mesh.
func TestComputeHullNearDegenerate(t *testing.T) {
	eps := math.Nextafter(1, 2) - 1

	t.Run("tiny tetrahedron", func(t *testing.T) {
		points := []mgl64.Vec3{
			{1 + 3*eps, 1, 1},
			{1, 1 + 3*eps, 1},
			{1, 1, 1 + 3*eps},
			{1, 1, 1},
		}
		hull, err := ComputeHull(points, Config{})
		require.NoError(t, err)
		assert.Equal(t, 4, hull.VertexCount())
		checkWatertight(t, hull)
	})

	t.Run("one ulp collinear", func(t *testing.T) {
		points := []mgl64.Vec3{
			{1 + eps, 1, 1},
			{1, 1, 1},
			{1, 1, 1},
			{1, 1, 1},
		}
		_, err := ComputeHull(points, Config{})
		var degErr *DegeneracyError
		require.True(t, errors.As(err, &degErr), "err = %v", err)
		assert.Equal(t, DegeneracyCollinear, degErr.Kind)
	})
}

func TestComputeHullFastMode(t *testing.T) {
	points := cubePoints()
	points = append(points, mgl64.Vec3{1, 1, 1})

	hull, err := ComputeHull(points, Config{Exactness: predicate.FastApproximate})
	require.NoError(t, err)
	assert.Equal(t, 8, hull.VertexCount())
	assert.Len(t, hull.Faces, 12)
	checkWatertight(t, hull)
}
