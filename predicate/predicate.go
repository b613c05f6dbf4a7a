// Package predicate provides correctly-signed orientation tests for hull
// construction.
//
// The central query is Orient3D: the sign of the signed volume of the
// tetrahedron (a, b, c, d). Plain floating-point evaluation can report the
// wrong sign when the true volume is near zero, which corrupts visibility
// decisions and ultimately the hull topology. In Exact mode the determinant
// is evaluated in floating point first and accepted only when its magnitude
// exceeds a conservative error bound; uncertain cases are re-evaluated with
// arbitrary-precision arithmetic, so the returned sign always matches the
// true geometric answer.
//
// References:
//   - Shewchuk: "Adaptive Precision Floating-Point Arithmetic and Fast
//     Robust Geometric Predicates" (1997)
package predicate

import (
	"math/big"

	"github.com/go-gl/mathgl/mgl64"
)

// Sign is the result of an orientation test.
type Sign int

// The three possible orientation results. For Orient3D, Positive means d
// lies on the positive side of the plane through a, b, c (the side the
// right-handed normal (b-a)x(c-a) points into), Negative the opposite side,
// and Zero means d is exactly coplanar.
const (
	Negative Sign = -1
	Zero     Sign = 0
	Positive Sign = 1
)

// Mode selects how much precision an orientation test is allowed to spend.
type Mode int

const (
	// Exact guarantees a correctly-signed result: a floating-point filter
	// handles the easy cases and an arbitrary-precision fallback decides the
	// rest. This is the default and the only mode under which the hull
	// invariants are guaranteed to hold for adversarial input.
	Exact Mode = iota

	// FastApproximate returns the sign of the plain floating-point
	// determinant. Faster, but near-coplanar configurations may be
	// misclassified. Suitable for well-separated point clouds only.
	FastApproximate
)

const (
	// epsilon is the largest power of two such that 1.0 + epsilon rounds to
	// 1.0, i.e. 2^-53 for IEEE double. This is the unit used by the error
	// bound below (Shewchuk's machine epsilon, half the C DBL_EPSILON).
	epsilon = 1.1102230246251565e-16

	// orient3DErrBound scales the "permanent" of the determinant (the same
	// expression with every subtraction replaced by an addition of absolute
	// values) to bound the rounding error of the floating-point evaluation.
	// If |det| exceeds orient3DErrBound * permanent, the sign of det is
	// certain. This is Shewchuk's static bound A for orient3d.
	orient3DErrBound = (7.0 + 56.0*epsilon) * epsilon
)

// Orient3D returns the sign of the determinant
//
//	| b.x-a.x  b.y-a.y  b.z-a.z |
//	| c.x-a.x  c.y-a.y  c.z-a.z |
//	| d.x-a.x  d.y-a.y  d.z-a.z |
//
// which is six times the signed volume of the tetrahedron (a, b, c, d).
func Orient3D(mode Mode, a, b, c, d mgl64.Vec3) Sign {
	adx := a[0] - d[0]
	ady := a[1] - d[1]
	adz := a[2] - d[2]
	bdx := b[0] - d[0]
	bdy := b[1] - d[1]
	bdz := b[2] - d[2]
	cdx := c[0] - d[0]
	cdy := c[1] - d[1]
	cdz := c[2] - d[2]

	bdxcdy := bdx * cdy
	cdxbdy := cdx * bdy
	cdxady := cdx * ady
	adxcdy := adx * cdy
	adxbdy := adx * bdy
	bdxady := bdx * ady

	// The determinant expanded about the bottom row. With this expansion the
	// sign convention is: positive when d sees (a, b, c) in counterclockwise
	// order, i.e. when d is on the negative side of the right-handed normal.
	// We negate at the end so that Positive corresponds to d lying on the
	// side the normal (b-a)x(c-a) points into.
	det := adz*(bdxcdy-cdxbdy) + bdz*(cdxady-adxcdy) + cdz*(adxbdy-bdxady)

	if mode == FastApproximate {
		return floatSign(-det)
	}

	permanent := (abs(bdxcdy)+abs(cdxbdy))*abs(adz) +
		(abs(cdxady)+abs(adxcdy))*abs(bdz) +
		(abs(adxbdy)+abs(bdxady))*abs(cdz)
	errBound := orient3DErrBound * permanent

	if det > errBound || -det > errBound {
		return floatSign(-det)
	}

	return exactOrient3D(a, b, c, d)
}

// exactOrient3D evaluates the same determinant with big.Float arithmetic.
// Every input coordinate converts to a big.Float exactly, and at maximum
// precision none of the subtractions, products, or sums below round, so the
// resulting sign is exact.
func exactOrient3D(a, b, c, d mgl64.Vec3) Sign {
	adx := bigSub(a[0], d[0])
	ady := bigSub(a[1], d[1])
	adz := bigSub(a[2], d[2])
	bdx := bigSub(b[0], d[0])
	bdy := bigSub(b[1], d[1])
	bdz := bigSub(b[2], d[2])
	cdx := bigSub(c[0], d[0])
	cdy := bigSub(c[1], d[1])
	cdz := bigSub(c[2], d[2])

	minor1 := newBigFloat().Sub(newBigFloat().Mul(bdx, cdy), newBigFloat().Mul(cdx, bdy))
	minor2 := newBigFloat().Sub(newBigFloat().Mul(cdx, ady), newBigFloat().Mul(adx, cdy))
	minor3 := newBigFloat().Sub(newBigFloat().Mul(adx, bdy), newBigFloat().Mul(bdx, ady))

	det := newBigFloat().Add(
		newBigFloat().Add(newBigFloat().Mul(adz, minor1), newBigFloat().Mul(bdz, minor2)),
		newBigFloat().Mul(cdz, minor3),
	)

	// Same negation as the float path.
	switch det.Sign() {
	case 1:
		return Negative
	case -1:
		return Positive
	}
	return Zero
}

// newBigFloat constructs a big.Float with maximum precision.
func newBigFloat() *big.Float { return new(big.Float).SetPrec(big.MaxPrec) }

func bigSub(x, y float64) *big.Float {
	return newBigFloat().Sub(new(big.Float).SetFloat64(x), new(big.Float).SetFloat64(y))
}

func floatSign(v float64) Sign {
	switch {
	case v > 0:
		return Positive
	case v < 0:
		return Negative
	default:
		return Zero
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
