package shamy

import (
	"encoding/binary"
	"encoding/hex"
	"io"

	"filippo.io/edwards25519"
)

const ed25519Size = 32

// Ed25519Curve implements the Curve interface for Ed25519. Scalars are
// exchanged big-endian like every other curve here; edwards25519 itself
// works little-endian, so encodings are reversed at the boundary.
type Ed25519Curve struct{}

// NewEd25519Curve returns the edwards25519 group.
func NewEd25519Curve() *Ed25519Curve {
	return &Ed25519Curve{}
}

func (c *Ed25519Curve) Name() string    { return string(Ed25519) }
func (c *Ed25519Curve) ScalarSize() int { return ed25519Size }
func (c *Ed25519Curve) PointSize() int  { return ed25519Size }

func (c *Ed25519Curve) ScalarFromBytes(data []byte) (Scalar, error) {
	if len(data) != ed25519Size {
		return nil, ErrInvalidScalarLength.WithContext("length", len(data))
	}

	scalar, err := edwards25519.NewScalar().SetCanonicalBytes(reverseBytes(data))
	if err != nil {
		return nil, ErrInvalidScalarEncoding.WithCause(err)
	}
	return &Ed25519Scalar{inner: scalar}, nil
}

// ScalarFromUniformBytes interprets up to 64 big-endian bytes as an integer
// and reduces it modulo the group order.
func (c *Ed25519Curve) ScalarFromUniformBytes(data []byte) (Scalar, error) {
	if len(data) < ed25519Size || len(data) > 64 {
		return nil, ErrInvalidScalarLength.WithContext("length", len(data))
	}

	wide := make([]byte, 64)
	copy(wide, reverseBytes(data))
	defer ZeroizeBytes(wide)

	scalar, err := edwards25519.NewScalar().SetUniformBytes(wide)
	if err != nil {
		return nil, ErrInvalidScalarEncoding.WithCause(err)
	}
	return &Ed25519Scalar{inner: scalar}, nil
}

func (c *Ed25519Curve) ScalarFromUint64(v uint64) Scalar {
	le := make([]byte, ed25519Size)
	binary.LittleEndian.PutUint64(le, v)
	scalar, err := edwards25519.NewScalar().SetCanonicalBytes(le)
	if err != nil {
		// any 64-bit value is below the group order
		panic(err)
	}
	return &Ed25519Scalar{inner: scalar}
}

func (c *Ed25519Curve) ScalarRandom(rng io.Reader) (Scalar, error) {
	wide := make([]byte, 64) // Use 64 bytes for uniform distribution
	defer ZeroizeBytes(wide)

	for {
		if err := readRandom(rng, wide); err != nil {
			return nil, err
		}

		scalar, err := edwards25519.NewScalar().SetUniformBytes(wide)
		if err != nil {
			return nil, ErrRandomnessGeneration.WithCause(err)
		}
		s := &Ed25519Scalar{inner: scalar}
		if !s.IsZero() {
			return s, nil
		}
	}
}

func (c *Ed25519Curve) ScalarZero() Scalar {
	return &Ed25519Scalar{inner: edwards25519.NewScalar()}
}

func (c *Ed25519Curve) ScalarOne() Scalar {
	return c.ScalarFromUint64(1)
}

// PointFromBytes decodes a canonical point of the prime-order subgroup.
func (c *Ed25519Curve) PointFromBytes(data []byte) (Point, error) {
	if len(data) != ed25519Size {
		return nil, ErrInvalidPointEncoding.WithContext("length", len(data))
	}

	point, err := new(edwards25519.Point).SetBytes(data)
	if err != nil {
		return nil, ErrInvalidPointEncoding.WithCause(err)
	}

	p := &Ed25519Point{inner: point}
	if p.IsIdentity() {
		return nil, ErrInvalidPointEncoding.WithDetails("identity point")
	}
	if !p.inPrimeOrderSubgroup() {
		return nil, ErrInvalidPointEncoding.WithDetails("point has a torsion component")
	}
	return p, nil
}

func (c *Ed25519Curve) BasePoint() Point {
	return &Ed25519Point{inner: edwards25519.NewGeneratorPoint()}
}

func (c *Ed25519Curve) PointIdentity() Point {
	return &Ed25519Point{inner: edwards25519.NewIdentityPoint()}
}

// Ed25519Scalar is an integer modulo the edwards25519 group order.
type Ed25519Scalar struct {
	inner *edwards25519.Scalar
}

func (s *Ed25519Scalar) Bytes() []byte {
	return reverseBytes(s.inner.Bytes())
}

func (s *Ed25519Scalar) String() string {
	return hex.EncodeToString(s.Bytes())
}

func (s *Ed25519Scalar) Add(other Scalar) Scalar {
	return &Ed25519Scalar{inner: edwards25519.NewScalar().Add(s.inner, other.(*Ed25519Scalar).inner)}
}

func (s *Ed25519Scalar) Sub(other Scalar) Scalar {
	return &Ed25519Scalar{inner: edwards25519.NewScalar().Subtract(s.inner, other.(*Ed25519Scalar).inner)}
}

func (s *Ed25519Scalar) Mul(other Scalar) Scalar {
	return &Ed25519Scalar{inner: edwards25519.NewScalar().Multiply(s.inner, other.(*Ed25519Scalar).inner)}
}

func (s *Ed25519Scalar) Negate() Scalar {
	return &Ed25519Scalar{inner: edwards25519.NewScalar().Negate(s.inner)}
}

func (s *Ed25519Scalar) Invert() (Scalar, error) {
	if s.IsZero() {
		return nil, ErrScalarZero
	}
	return &Ed25519Scalar{inner: edwards25519.NewScalar().Invert(s.inner)}, nil
}

func (s *Ed25519Scalar) Equal(other Scalar) bool {
	o, ok := other.(*Ed25519Scalar)
	return ok && s.inner.Equal(o.inner) == 1
}

func (s *Ed25519Scalar) IsZero() bool {
	return s.inner.Equal(edwards25519.NewScalar()) == 1
}

func (s *Ed25519Scalar) Zeroize() {
	s.inner.Set(edwards25519.NewScalar())
}

// Ed25519Point is an element of the prime-order edwards25519 subgroup.
type Ed25519Point struct {
	inner *edwards25519.Point
}

func (p *Ed25519Point) Bytes() []byte {
	return p.inner.Bytes()
}

func (p *Ed25519Point) CompressedBytes() []byte {
	return p.Bytes()
}

func (p *Ed25519Point) String() string {
	return hex.EncodeToString(p.Bytes())
}

func (p *Ed25519Point) Add(other Point) Point {
	return &Ed25519Point{inner: edwards25519.NewIdentityPoint().Add(p.inner, other.(*Ed25519Point).inner)}
}

func (p *Ed25519Point) Sub(other Point) Point {
	return &Ed25519Point{inner: edwards25519.NewIdentityPoint().Subtract(p.inner, other.(*Ed25519Point).inner)}
}

func (p *Ed25519Point) Mul(scalar Scalar) Point {
	return &Ed25519Point{inner: edwards25519.NewIdentityPoint().ScalarMult(scalar.(*Ed25519Scalar).inner, p.inner)}
}

func (p *Ed25519Point) Negate() Point {
	return &Ed25519Point{inner: edwards25519.NewIdentityPoint().Negate(p.inner)}
}

func (p *Ed25519Point) Equal(other Point) bool {
	o, ok := other.(*Ed25519Point)
	return ok && p.inner.Equal(o.inner) == 1
}

func (p *Ed25519Point) IsIdentity() bool {
	return p.inner.Equal(edwards25519.NewIdentityPoint()) == 1
}

// inPrimeOrderSubgroup checks [8^-1]([8]P) == P, which only holds when P
// has no small-order component.
func (p *Ed25519Point) inPrimeOrderSubgroup() bool {
	eight := NewEd25519Curve().ScalarFromUint64(8)
	inv, err := eight.Invert()
	if err != nil {
		return false
	}

	cleared := edwards25519.NewIdentityPoint().MultByCofactor(p.inner)
	back := edwards25519.NewIdentityPoint().ScalarMult(inv.(*Ed25519Scalar).inner, cleared)
	return back.Equal(p.inner) == 1
}
