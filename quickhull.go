// Package quickhull computes convex hulls of 3D point sets.
//
// The construction is the quickhull algorithm: seed a tetrahedron from
// extreme points, keep a conflict list of not-yet-enclosed points per face,
// and repeatedly attach the farthest outside point to the hull, replacing
// the faces it can see with a cone of new faces over the horizon ring. Side
// of-plane decisions go through adaptive exact orientation predicates, so
// the resulting topology is correct even for adversarially flat input.
//
// Lower-dimensional inputs (coincident, collinear, coplanar) either fail
// with a DegeneracyError or degrade to point/segment/polygon results,
// depending on configuration.
//
// References:
//   - C. Bradford Barber et al.: "The Quickhull Algorithm for Convex Hulls"
//     (1996)
//   - Dirk Gregorius, GDC 2014: "Physics for Game Programmers: Implementing
//     Quickhull"
package quickhull

import (
	"github.com/go-gl/mathgl/mgl64"
)

// minFullDimensionalPoints is the smallest input that can span a
// tetrahedron. Smaller inputs are rejected up front unless degenerate
// results are permitted.
const minFullDimensionalPoints = 4

// ComputeHull computes the convex hull of the given points.
//
// The input slice is only read, never retained or modified; all indices in
// the returned Hull refer to it. Invalid input (empty, or any NaN/infinite
// coordinate) fails with an InputError before any geometric computation.
// Input that does not span three dimensions fails with a DegeneracyError,
// or degrades to a lower-dimensional result when cfg.AllowDegenerate is
// set. The caller always receives either a fully valid hull or an error,
// never a partial mesh.
//
// Distinct calls are independent; it is safe to run them concurrently.
func ComputeHull(points []mgl64.Vec3, cfg Config) (*Hull, error) {
	if len(points) == 0 {
		return nil, &InputError{Reason: "no points", Index: -1}
	}
	if err := validatePoints(points); err != nil {
		return nil, err
	}
	if !cfg.AllowDegenerate && len(points) < minFullDimensionalPoints {
		return nil, &InputError{Reason: "a 3D hull needs at least 4 points", Index: -1}
	}

	work, orig := dedupPoints(points)

	simplex, kind, ok := pickSimplex(work, cfg.Exactness)
	if !ok {
		if !cfg.AllowDegenerate {
			return nil, &DegeneracyError{Kind: kind}
		}
		switch kind {
		case DegeneracyCoincident:
			return pointHull(orig[0], work[0]), nil
		case DegeneracyCollinear:
			a, b := simplex[0], simplex[1]
			return segmentHull(orig[a], orig[b], work[a], work[b]), nil
		default:
			return planarHull(work, orig, simplex[0], simplex[1], simplex[2])
		}
	}

	builder := &hullBuilder{cfg: cfg, pts: work, orig: orig}
	if err := builder.initSimplex(simplex); err != nil {
		return nil, err
	}
	if err := builder.build(); err != nil {
		return nil, err
	}
	return builder.extract()
}
