package quickhull

import "fmt"

// Degeneracy classifies how an input point set fails to span three
// dimensions.
type Degeneracy int

const (
	// DegeneracyCoincident means all points are the same point.
	DegeneracyCoincident Degeneracy = iota
	// DegeneracyCollinear means all points lie on a single line.
	DegeneracyCollinear
	// DegeneracyCoplanar means all points lie on a single plane.
	DegeneracyCoplanar
)

func (d Degeneracy) String() string {
	switch d {
	case DegeneracyCoincident:
		return "coincident"
	case DegeneracyCollinear:
		return "collinear"
	case DegeneracyCoplanar:
		return "coplanar"
	default:
		return fmt.Sprintf("Degeneracy(%d)", int(d))
	}
}

// InputError reports malformed input: an empty or too-small point set, or a
// non-finite coordinate. It is raised before any geometric computation
// begins and never accompanies a partial result.
type InputError struct {
	Reason string
	// Index is the offending point's position in the input, or -1 when the
	// error concerns the input as a whole.
	Index int
}

func (e *InputError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("quickhull: invalid input at point %d: %s", e.Index, e.Reason)
	}
	return "quickhull: invalid input: " + e.Reason
}

// DegeneracyError reports that the input is valid but does not span three
// dimensions, and Config.AllowDegenerate did not permit a lower-dimensional
// result. Kind tells the caller which fallback would apply.
type DegeneracyError struct {
	Kind Degeneracy
}

func (e *DegeneracyError) Error() string {
	return "quickhull: degenerate input: all points are " + e.Kind.String()
}

// InvariantViolationError reports a broken internal topology invariant. It
// indicates a defect in the construction, not a recoverable condition of the
// input; the computation aborts rather than return a corrupted mesh.
type InvariantViolationError struct {
	Stage  string
	Detail string
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("quickhull: internal invariant violated during %s: %s", e.Stage, e.Detail)
}
