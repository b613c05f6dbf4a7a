package quickhull

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHullPosition(t *testing.T) {
	points := cubePoints()
	points = append(points, mgl64.Vec3{1, 1, 1})

	hull, err := ComputeHull(points, Config{})
	require.NoError(t, err)

	for _, origIdx := range hull.Vertices {
		pos, ok := hull.Position(origIdx)
		assert.True(t, ok)
		assert.Equal(t, points[origIdx], pos)
	}

	// The interior point and out-of-range indices are not hull vertices.
	for _, origIdx := range []int{8, -1, 99} {
		_, ok := hull.Position(origIdx)
		assert.False(t, ok, "Position(%d) reported a hull vertex", origIdx)
	}
}

func TestHullSupportPoint(t *testing.T) {
	hull, err := ComputeHull(cubePoints(), Config{})
	require.NoError(t, err)

	tests := []struct {
		name      string
		direction mgl64.Vec3
		expected  mgl64.Vec3
	}{
		{name: "diagonal", direction: mgl64.Vec3{1, 1, 1}, expected: mgl64.Vec3{2, 2, 2}},
		{name: "negative diagonal", direction: mgl64.Vec3{-1, -1, -1}, expected: mgl64.Vec3{0, 0, 0}},
		{name: "mixed axes", direction: mgl64.Vec3{1, -1, 1}, expected: mgl64.Vec3{2, 0, 2}},
		{name: "unnormalized", direction: mgl64.Vec3{0, 0, 100}, expected: mgl64.Vec3{0, 0, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := hull.SupportPoint(tt.direction)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestHullVolume(t *testing.T) {
	t.Run("unit tetrahedron", func(t *testing.T) {
		hull, err := ComputeHull([]mgl64.Vec3{
			{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1},
		}, Config{})
		require.NoError(t, err)
		assert.InDelta(t, 1.0/6.0, hull.Volume(), 1e-15)
	})

	t.Run("translated cube", func(t *testing.T) {
		points := cubePoints()
		for i := range points {
			points[i] = points[i].Add(mgl64.Vec3{-100, 50, 7})
		}
		hull, err := ComputeHull(points, Config{})
		require.NoError(t, err)
		assert.InDelta(t, 8.0, hull.Volume(), 1e-9)
	})

	t.Run("degenerate results have zero volume", func(t *testing.T) {
		hull, err := ComputeHull([]mgl64.Vec3{
			{0, 0, 5}, {2, 0, 5}, {0, 2, 5},
		}, Config{AllowDegenerate: true})
		require.NoError(t, err)
		assert.Equal(t, 0.0, hull.Volume())
	})
}

func TestHullMergeCoplanarFaces(t *testing.T) {
	hull, err := ComputeHull(cubePoints(), Config{MergeCoplanarFaces: true})
	require.NoError(t, err)

	// Triangles are untouched; polygons come on top.
	assert.Len(t, hull.Faces, 12)
	require.Len(t, hull.Polygons, 6)

	for _, polygon := range hull.Polygons {
		require.Len(t, polygon, 4, "cube side merged into %v", polygon)

		// All four corners of a side share one fixed coordinate.
		sharedAxis := -1
		for axis := 0; axis < 3; axis++ {
			first, _ := hull.Position(polygon[0])
			same := true
			for _, origIdx := range polygon[1:] {
				pos, ok := hull.Position(origIdx)
				require.True(t, ok)
				if pos[axis] != first[axis] {
					same = false
					break
				}
			}
			if same {
				sharedAxis = axis
				break
			}
		}
		assert.NotEqual(t, -1, sharedAxis, "polygon %v is not an axis-aligned side", polygon)

		seen := map[int]bool{}
		for _, origIdx := range polygon {
			assert.False(t, seen[origIdx], "polygon %v repeats a vertex", polygon)
			seen[origIdx] = true
		}
	}
}

func TestHullMergeCoplanarKeepsCurvedFacesApart(t *testing.T) {
	// No two octahedron faces are coplanar, so merging must yield one
	// triangle polygon per face.
	hull, err := ComputeHull(octahedronPoints(mgl64.Vec3{}), Config{MergeCoplanarFaces: true})
	require.NoError(t, err)

	require.Len(t, hull.Polygons, 8)
	for _, polygon := range hull.Polygons {
		assert.Len(t, polygon, 3)
	}
}
