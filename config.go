package quickhull

import "github.com/meshkit/quickhull/predicate"

// Config controls one hull computation. It is passed explicitly through the
// whole call chain; the package keeps no process-wide state, so distinct
// computations with distinct configs are independent and may run
// concurrently.
type Config struct {
	// Exactness selects the orientation-predicate mode. predicate.Exact
	// (the zero value) guarantees correctly-signed tests for any finite
	// input; predicate.FastApproximate trades that guarantee for speed.
	Exactness predicate.Mode

	// KeepCoplanarPoints includes points that lie exactly on a hull face's
	// plane as hull-boundary vertices. When false (the default) such points
	// are dropped as interior.
	KeepCoplanarPoints bool

	// AllowDegenerate permits lower-dimensional results instead of a
	// DegeneracyError: a single vertex for coincident input, a segment for
	// collinear input, and a planar polygon for coplanar input.
	AllowDegenerate bool

	// MergeCoplanarFaces makes the extractor coalesce adjacent exactly
	// coplanar triangles into polygons, populating Hull.Polygons. Triangles
	// in Hull.Faces are emitted either way.
	MergeCoplanarFaces bool

	// MaxIterations truncates the expansion loop after this many point
	// insertions. Zero means unbounded. A truncated hull still satisfies the
	// topology invariants but may not enclose every input point; intended
	// for profiling and stress harnesses, not production use.
	MaxIterations int
}
