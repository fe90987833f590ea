package shamy

import (
	"fmt"
	"io"
)

// Curve defines the group operations the threshold scheme is built on.
// Implementations are stateless and safe for concurrent use.
type Curve interface {
	// Metadata
	Name() string
	ScalarSize() int
	PointSize() int

	// Scalar construction
	ScalarFromBytes([]byte) (Scalar, error)
	ScalarFromUniformBytes([]byte) (Scalar, error)
	ScalarFromUint64(uint64) Scalar
	ScalarRandom(rng io.Reader) (Scalar, error)
	ScalarZero() Scalar
	ScalarOne() Scalar

	// Point construction
	PointFromBytes([]byte) (Point, error)
	BasePoint() Point
	PointIdentity() Point
}

// Scalar is an element of the curve's scalar field. Arithmetic methods
// never modify the receiver; they return a fresh value.
type Scalar interface {
	// Bytes returns the fixed-width big-endian encoding.
	Bytes() []byte
	String() string

	Add(Scalar) Scalar
	Sub(Scalar) Scalar
	Mul(Scalar) Scalar
	Negate() Scalar
	Invert() (Scalar, error)

	Equal(Scalar) bool
	IsZero() bool

	// Zeroize clears the value in place.
	Zeroize()
}

// Point is an element of the prime-order group.
type Point interface {
	// Bytes returns the encoding fed into the challenge hash.
	Bytes() []byte
	// CompressedBytes returns the display and storage encoding.
	CompressedBytes() []byte
	String() string

	Add(Point) Point
	Sub(Point) Point
	Mul(Scalar) Point
	Negate() Point

	Equal(Point) bool
	IsIdentity() bool
}

// CurveType names a supported curve
type CurveType string

const (
	Secp256k1  CurveType = "secp256k1"
	Ed25519    CurveType = "ed25519"
	BabyJubjub CurveType = "babyjubjub"
)

// SupportedCurves lists every CurveType accepted by NewCurve.
var SupportedCurves = []CurveType{Secp256k1, Ed25519, BabyJubjub}

// NewCurve creates a new curve instance
func NewCurve(curveType CurveType) (Curve, error) {
	switch curveType {
	case Secp256k1:
		return NewSecp256k1Curve(), nil
	case Ed25519:
		return NewEd25519Curve(), nil
	case BabyJubjub:
		return NewBabyJubjubCurve(), nil
	default:
		return nil, ErrUnsupportedCurve.WithContext("curve", string(curveType)).
			WithDetails(fmt.Sprintf("supported: %v", SupportedCurves))
	}
}

// readRandom fills buf from rng, mapping short reads to ErrRandomnessGeneration.
func readRandom(rng io.Reader, buf []byte) error {
	if rng == nil {
		return ErrRandomnessGeneration.WithDetails("nil randomness source")
	}
	if _, err := io.ReadFull(rng, buf); err != nil {
		return ErrRandomnessGeneration.WithCause(err)
	}
	return nil
}

// reverseBytes returns a reversed copy of b.
func reverseBytes(b []byte) []byte {
	out := make([]byte, len(b))
	for i := range b {
		out[len(b)-1-i] = b[i]
	}
	return out
}
