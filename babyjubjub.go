package shamy

import (
	"bytes"
	"encoding/hex"
	"io"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/twistededwards"
)

const babyJubjubSize = 32

// babyJubjubOrder is the prime subgroup order, distinct from the BN254 Fr modulus.
var babyJubjubOrder = func() *big.Int {
	params := twistededwards.GetEdwardsCurve()
	return new(big.Int).Set(&params.Order)
}()

// BabyJubjubCurve implements the Curve interface for Baby Jubjub, the
// twisted Edwards curve embedded in BN254's scalar field.
type BabyJubjubCurve struct{}

// NewBabyJubjubCurve creates a new Baby Jubjub curve instance
func NewBabyJubjubCurve() *BabyJubjubCurve {
	return &BabyJubjubCurve{}
}

func (c *BabyJubjubCurve) Name() string    { return string(BabyJubjub) }
func (c *BabyJubjubCurve) ScalarSize() int { return babyJubjubSize }
func (c *BabyJubjubCurve) PointSize() int  { return babyJubjubSize }

func (c *BabyJubjubCurve) ScalarFromBytes(data []byte) (Scalar, error) {
	if len(data) != babyJubjubSize {
		return nil, ErrInvalidScalarLength.WithContext("length", len(data))
	}

	v := new(big.Int).SetBytes(data)
	if v.Cmp(babyJubjubOrder) >= 0 {
		return nil, ErrInvalidScalarEncoding.WithDetails("value is not below the group order")
	}
	return &BabyJubjubScalar{inner: v}, nil
}

func (c *BabyJubjubCurve) ScalarFromUniformBytes(data []byte) (Scalar, error) {
	if len(data) < babyJubjubSize {
		return nil, ErrInvalidScalarLength.WithContext("length", len(data))
	}
	return newBabyJubjubScalar(new(big.Int).SetBytes(data)), nil
}

func (c *BabyJubjubCurve) ScalarFromUint64(v uint64) Scalar {
	return newBabyJubjubScalar(new(big.Int).SetUint64(v))
}

// ScalarRandom reduces 48 random bytes, leaving a bias below 2^-128.
func (c *BabyJubjubCurve) ScalarRandom(rng io.Reader) (Scalar, error) {
	buf := make([]byte, 48)
	defer ZeroizeBytes(buf)

	for {
		if err := readRandom(rng, buf); err != nil {
			return nil, err
		}
		s := newBabyJubjubScalar(new(big.Int).SetBytes(buf))
		if !s.IsZero() {
			return s, nil
		}
	}
}

func (c *BabyJubjubCurve) ScalarZero() Scalar {
	return &BabyJubjubScalar{inner: new(big.Int)}
}

func (c *BabyJubjubCurve) ScalarOne() Scalar {
	return &BabyJubjubScalar{inner: big.NewInt(1)}
}

// PointFromBytes decodes a compressed point, rejecting non-canonical
// encodings and points outside the prime-order subgroup.
func (c *BabyJubjubCurve) PointFromBytes(data []byte) (Point, error) {
	if len(data) != babyJubjubSize {
		return nil, ErrInvalidPointEncoding.WithContext("length", len(data))
	}

	p := &BabyJubjubPoint{}
	if err := p.inner.Unmarshal(data); err != nil {
		return nil, ErrInvalidPointEncoding.WithCause(err)
	}
	if !p.inner.IsOnCurve() {
		return nil, ErrInvalidPointEncoding.WithDetails("point not on curve")
	}
	if encoded := p.inner.Bytes(); !bytes.Equal(encoded[:], data) {
		return nil, ErrInvalidPointEncoding.WithDetails("non-canonical encoding")
	}
	if p.IsIdentity() {
		return nil, ErrInvalidPointEncoding.WithDetails("identity point")
	}

	var check twistededwards.PointAffine
	check.ScalarMultiplication(&p.inner, babyJubjubOrder)
	if !check.IsZero() {
		return nil, ErrInvalidPointEncoding.WithDetails("point outside prime-order subgroup")
	}
	return p, nil
}

func (c *BabyJubjubCurve) BasePoint() Point {
	p := &BabyJubjubPoint{}
	p.inner = twistededwards.GetEdwardsCurve().Base
	return p
}

func (c *BabyJubjubCurve) PointIdentity() Point {
	p := &BabyJubjubPoint{}
	p.inner.X.SetZero()
	p.inner.Y.SetOne()
	return p
}

// BabyJubjubScalar implements the Scalar interface over big.Int mod order.
type BabyJubjubScalar struct {
	inner *big.Int
}

func newBabyJubjubScalar(v *big.Int) *BabyJubjubScalar {
	return &BabyJubjubScalar{inner: v.Mod(v, babyJubjubOrder)}
}

func (s *BabyJubjubScalar) Bytes() []byte {
	out := make([]byte, babyJubjubSize)
	return s.inner.FillBytes(out)
}

func (s *BabyJubjubScalar) String() string {
	return hex.EncodeToString(s.Bytes())
}

func (s *BabyJubjubScalar) Add(other Scalar) Scalar {
	return newBabyJubjubScalar(new(big.Int).Add(s.inner, other.(*BabyJubjubScalar).inner))
}

func (s *BabyJubjubScalar) Sub(other Scalar) Scalar {
	return newBabyJubjubScalar(new(big.Int).Sub(s.inner, other.(*BabyJubjubScalar).inner))
}

func (s *BabyJubjubScalar) Mul(other Scalar) Scalar {
	return newBabyJubjubScalar(new(big.Int).Mul(s.inner, other.(*BabyJubjubScalar).inner))
}

func (s *BabyJubjubScalar) Negate() Scalar {
	return newBabyJubjubScalar(new(big.Int).Neg(s.inner))
}

func (s *BabyJubjubScalar) Invert() (Scalar, error) {
	if s.IsZero() {
		return nil, ErrScalarZero
	}
	return &BabyJubjubScalar{inner: new(big.Int).ModInverse(s.inner, babyJubjubOrder)}, nil
}

func (s *BabyJubjubScalar) Equal(other Scalar) bool {
	o, ok := other.(*BabyJubjubScalar)
	return ok && s.inner.Cmp(o.inner) == 0
}

func (s *BabyJubjubScalar) IsZero() bool {
	return s.inner.Sign() == 0
}

func (s *BabyJubjubScalar) Zeroize() {
	words := s.inner.Bits()
	for i := range words {
		words[i] = 0
	}
	s.inner.SetInt64(0)
}

// BabyJubjubPoint implements the Point interface in affine coordinates.
// The identity is (0, 1).
type BabyJubjubPoint struct {
	inner twistededwards.PointAffine
}

func (p *BabyJubjubPoint) Bytes() []byte {
	b := p.inner.Bytes()
	return b[:]
}

func (p *BabyJubjubPoint) CompressedBytes() []byte {
	return p.Bytes()
}

func (p *BabyJubjubPoint) String() string {
	return hex.EncodeToString(p.Bytes())
}

func (p *BabyJubjubPoint) Add(other Point) Point {
	r := &BabyJubjubPoint{}
	r.inner.Add(&p.inner, &other.(*BabyJubjubPoint).inner)
	return r
}

func (p *BabyJubjubPoint) Sub(other Point) Point {
	return p.Add(other.Negate())
}

func (p *BabyJubjubPoint) Mul(scalar Scalar) Point {
	r := &BabyJubjubPoint{}
	r.inner.ScalarMultiplication(&p.inner, scalar.(*BabyJubjubScalar).inner)
	return r
}

func (p *BabyJubjubPoint) Negate() Point {
	r := &BabyJubjubPoint{}
	r.inner.Neg(&p.inner)
	return r
}

func (p *BabyJubjubPoint) Equal(other Point) bool {
	o, ok := other.(*BabyJubjubPoint)
	return ok && p.inner.Equal(&o.inner)
}

func (p *BabyJubjubPoint) IsIdentity() bool {
	return p.inner.IsZero()
}
