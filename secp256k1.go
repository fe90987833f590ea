package shamy

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

const (
	secp256k1ScalarSize      = 32
	secp256k1CompressedSize  = 33
	secp256k1UncompressedLen = 65
)

// Secp256k1Curve implements the Curve interface for secp256k1
type Secp256k1Curve struct{}

// NewSecp256k1Curve returns the secp256k1 group.
func NewSecp256k1Curve() *Secp256k1Curve {
	return &Secp256k1Curve{}
}

func (c *Secp256k1Curve) Name() string    { return string(Secp256k1) }
func (c *Secp256k1Curve) ScalarSize() int { return secp256k1ScalarSize }
func (c *Secp256k1Curve) PointSize() int  { return secp256k1CompressedSize }

// ScalarFromBytes decodes a canonical big-endian scalar. Values >= n are rejected.
func (c *Secp256k1Curve) ScalarFromBytes(data []byte) (Scalar, error) {
	if len(data) != secp256k1ScalarSize {
		return nil, ErrInvalidScalarLength.WithContext("length", len(data))
	}

	s := &Secp256k1Scalar{}
	if overflow := s.inner.SetBytes((*[32]byte)(data)); overflow != 0 {
		return nil, ErrInvalidScalarEncoding.WithDetails("value is not below the group order")
	}
	return s, nil
}

// ScalarFromUniformBytes reduces the first 32 bytes modulo n.
func (c *Secp256k1Curve) ScalarFromUniformBytes(data []byte) (Scalar, error) {
	if len(data) < secp256k1ScalarSize {
		return nil, ErrInvalidScalarLength.WithDetails(
			fmt.Sprintf("need at least %d bytes, got %d", secp256k1ScalarSize, len(data)))
	}

	s := &Secp256k1Scalar{}
	s.inner.SetBytes((*[32]byte)(data[:secp256k1ScalarSize]))
	return s, nil
}

func (c *Secp256k1Curve) ScalarFromUint64(v uint64) Scalar {
	var buf [32]byte
	binary.BigEndian.PutUint64(buf[24:], v)
	s := &Secp256k1Scalar{}
	s.inner.SetBytes(&buf)
	return s
}

// ScalarRandom draws a uniform non-zero scalar by rejection sampling.
func (c *Secp256k1Curve) ScalarRandom(rng io.Reader) (Scalar, error) {
	var buf [32]byte
	defer ZeroizeBytes(buf[:])

	for {
		if err := readRandom(rng, buf[:]); err != nil {
			return nil, err
		}

		s := &Secp256k1Scalar{}
		if overflow := s.inner.SetBytes(&buf); overflow == 0 && !s.inner.IsZero() {
			return s, nil
		}
	}
}

func (c *Secp256k1Curve) ScalarZero() Scalar {
	return &Secp256k1Scalar{}
}

func (c *Secp256k1Curve) ScalarOne() Scalar {
	s := &Secp256k1Scalar{}
	s.inner.SetInt(1)
	return s
}

// PointFromBytes parses a SEC1 compressed or uncompressed point.
func (c *Secp256k1Curve) PointFromBytes(data []byte) (Point, error) {
	if len(data) != secp256k1CompressedSize && len(data) != secp256k1UncompressedLen {
		return nil, ErrInvalidPointEncoding.WithContext("length", len(data))
	}

	pubKey, err := btcec.ParsePubKey(data)
	if err != nil {
		return nil, ErrInvalidPointEncoding.WithCause(err).WithDetails(secp256k1ErrorDetail(err))
	}

	p := &Secp256k1Point{}
	pubKey.AsJacobian(&p.inner)
	return p, nil
}

func (c *Secp256k1Curve) BasePoint() Point {
	one := new(btcec.ModNScalar).SetInt(1)
	p := &Secp256k1Point{}
	btcec.ScalarBaseMultNonConst(one, &p.inner)
	p.inner.ToAffine()
	return p
}

func (c *Secp256k1Curve) PointIdentity() Point {
	return &Secp256k1Point{}
}

// secp256k1ErrorDetail maps parse failures to a short reason.
func secp256k1ErrorDetail(err error) string {
	switch {
	case errors.Is(err, secp256k1.ErrPubKeyInvalidLen):
		return "invalid length"
	case errors.Is(err, secp256k1.ErrPubKeyInvalidFormat):
		return "unknown format prefix"
	case errors.Is(err, secp256k1.ErrPubKeyXTooBig), errors.Is(err, secp256k1.ErrPubKeyYTooBig):
		return "coordinate exceeds field prime"
	case errors.Is(err, secp256k1.ErrPubKeyNotOnCurve):
		return "point not on curve"
	case errors.Is(err, secp256k1.ErrPubKeyMismatchedOddness):
		return "mismatched y oddness"
	default:
		return err.Error()
	}
}

// Secp256k1Scalar is an integer modulo the secp256k1 group order n.
type Secp256k1Scalar struct {
	inner btcec.ModNScalar
}

func (s *Secp256k1Scalar) Bytes() []byte {
	b := s.inner.Bytes()
	return b[:]
}

func (s *Secp256k1Scalar) String() string {
	return hex.EncodeToString(s.Bytes())
}

func (s *Secp256k1Scalar) Add(other Scalar) Scalar {
	r := &Secp256k1Scalar{}
	r.inner.Add2(&s.inner, &other.(*Secp256k1Scalar).inner)
	return r
}

func (s *Secp256k1Scalar) Sub(other Scalar) Scalar {
	r := &Secp256k1Scalar{}
	r.inner.NegateVal(&other.(*Secp256k1Scalar).inner).Add(&s.inner)
	return r
}

func (s *Secp256k1Scalar) Mul(other Scalar) Scalar {
	r := &Secp256k1Scalar{}
	r.inner.Mul2(&s.inner, &other.(*Secp256k1Scalar).inner)
	return r
}

func (s *Secp256k1Scalar) Negate() Scalar {
	r := &Secp256k1Scalar{}
	r.inner.NegateVal(&s.inner)
	return r
}

func (s *Secp256k1Scalar) Invert() (Scalar, error) {
	if s.IsZero() {
		return nil, ErrScalarZero
	}

	// btcec has no constant-time inversion; inputs here are public ids.
	r := &Secp256k1Scalar{}
	r.inner.InverseValNonConst(&s.inner)
	return r, nil
}

func (s *Secp256k1Scalar) Equal(other Scalar) bool {
	o, ok := other.(*Secp256k1Scalar)
	return ok && s.inner.Equals(&o.inner)
}

func (s *Secp256k1Scalar) IsZero() bool {
	return s.inner.IsZero()
}

func (s *Secp256k1Scalar) Zeroize() {
	s.inner.Zero()
}

// Secp256k1Point implements the Point interface. The inner point is kept in
// affine form (Z = 1); the identity is X = Y = 0.
type Secp256k1Point struct {
	inner btcec.JacobianPoint
}

func (p *Secp256k1Point) Bytes() []byte {
	if p.IsIdentity() {
		return []byte{0x00}
	}
	return btcec.NewPublicKey(&p.inner.X, &p.inner.Y).SerializeUncompressed()
}

func (p *Secp256k1Point) CompressedBytes() []byte {
	if p.IsIdentity() {
		return []byte{0x00}
	}
	return btcec.NewPublicKey(&p.inner.X, &p.inner.Y).SerializeCompressed()
}

func (p *Secp256k1Point) String() string {
	return hex.EncodeToString(p.CompressedBytes())
}

func (p *Secp256k1Point) Add(other Point) Point {
	o := other.(*Secp256k1Point)
	if p.IsIdentity() {
		return o.clone()
	}
	if o.IsIdentity() {
		return p.clone()
	}

	r := &Secp256k1Point{}
	btcec.AddNonConst(&p.inner, &o.inner, &r.inner)
	r.inner.ToAffine()
	return r
}

func (p *Secp256k1Point) Sub(other Point) Point {
	return p.Add(other.Negate())
}

func (p *Secp256k1Point) Mul(scalar Scalar) Point {
	k := &scalar.(*Secp256k1Scalar).inner
	if p.IsIdentity() || k.IsZero() {
		return &Secp256k1Point{}
	}

	r := &Secp256k1Point{}
	btcec.ScalarMultNonConst(k, &p.inner, &r.inner)
	r.inner.ToAffine()
	return r
}

func (p *Secp256k1Point) Negate() Point {
	if p.IsIdentity() {
		return &Secp256k1Point{}
	}

	r := p.clone()
	r.inner.Y.Negate(1).Normalize()
	return r
}

func (p *Secp256k1Point) Equal(other Point) bool {
	o, ok := other.(*Secp256k1Point)
	if !ok {
		return false
	}
	return p.inner.X.Equals(&o.inner.X) && p.inner.Y.Equals(&o.inner.Y)
}

func (p *Secp256k1Point) IsIdentity() bool {
	return p.inner.X.IsZero() && p.inner.Y.IsZero()
}

func (p *Secp256k1Point) clone() *Secp256k1Point {
	r := &Secp256k1Point{}
	r.inner.Set(&p.inner)
	return r
}
