package shamy

import (
	"crypto/sha256"
	"fmt"
	"io"
)

// Signature is a Schnorr signature (R, s) verified by G·s == R + c·X.
type Signature struct {
	R Point
	S Scalar
}

// GenerateNonce draws a uniformly random nonce scalar from rng.
func GenerateNonce(curve Curve, rng io.Reader) (Scalar, error) {
	r, err := curve.ScalarRandom(rng)
	if err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return r, nil
}

// ComputeNoncePoint returns R = G·r.
func ComputeNoncePoint(curve Curve, r Scalar) Point {
	return curve.BasePoint().Mul(r)
}

// ComputeChallenge derives the Fiat-Shamir challenge
//
//	c = SHA-256(enc(R) || enc(X) || msg)
//
// where enc is the curve's hash encoding (Point.Bytes). The digest is read
// as a big-endian integer and reduced modulo the group order.
func ComputeChallenge(curve Curve, R, X Point, msg []byte) (Scalar, error) {
	hasher := sha256.New()
	hasher.Write(R.Bytes())
	hasher.Write(X.Bytes())
	hasher.Write(msg)

	challenge, err := curve.ScalarFromUniformBytes(hasher.Sum(nil))
	if err != nil {
		return nil, fmt.Errorf("failed to convert challenge bytes to scalar: %w", err)
	}
	return challenge, nil
}

// Verify reports whether sig is a valid signature on msg under X.
// A rejected signature is not an error.
func (sig *Signature) Verify(curve Curve, msg []byte, X Point) bool {
	if sig == nil || sig.R == nil || sig.S == nil || X == nil {
		return false
	}

	c, err := ComputeChallenge(curve, sig.R, X, msg)
	if err != nil {
		return false
	}

	lhs := curve.BasePoint().Mul(sig.S)
	rhs := sig.R.Add(X.Mul(c))
	return lhs.Equal(rhs)
}

// Sign produces a single-party signature s = r + c·x with a fresh nonce.
func Sign(curve Curve, rng io.Reader, x Scalar, msg []byte) (*Signature, error) {
	r, err := GenerateNonce(curve, rng)
	if err != nil {
		return nil, err
	}
	defer r.Zeroize()

	R := ComputeNoncePoint(curve, r)
	X := curve.BasePoint().Mul(x)

	c, err := ComputeChallenge(curve, R, X, msg)
	if err != nil {
		return nil, err
	}

	return &Signature{
		R: R,
		S: r.Add(c.Mul(x)),
	}, nil
}
