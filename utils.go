package shamy

import (
	"crypto/subtle"
	"fmt"
	"strconv"
	"strings"
)

// ParticipantID identifies a shareholder. It is also the x-coordinate at
// which the sharing polynomial is evaluated, so 0 is never a valid id.
type ParticipantID uint64

// ToScalar converts the id to its scalar representation.
func (id ParticipantID) ToScalar(curve Curve) Scalar {
	return curve.ScalarFromUint64(uint64(id))
}

func (id ParticipantID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// ParseParticipantID parses a decimal participant id. Zero is rejected.
func ParseParticipantID(text string) (ParticipantID, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(text), 10, 64)
	if err != nil {
		return 0, ErrDegenerateParticipantSet.WithDetails(fmt.Sprintf("invalid id %q", text)).WithCause(err)
	}
	if v == 0 {
		return 0, ErrDegenerateParticipantSet.WithDetails("participant id 0 is reserved")
	}
	return ParticipantID(v), nil
}

// SecureCompare performs constant-time comparison of byte slices
func SecureCompare(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}

// ZeroizeBytes securely clears a byte slice
func ZeroizeBytes(data []byte) {
	for i := range data {
		data[i] = 0
	}
}

// ZeroizeScalarSlice securely clears a slice of scalars
func ZeroizeScalarSlice(scalars []Scalar) {
	for _, scalar := range scalars {
		if scalar != nil {
			scalar.Zeroize()
		}
	}
}

// BatchInvert inverts every scalar with a single field inversion
// (Montgomery's trick). Any zero input fails with ErrScalarZero.
func BatchInvert(scalars []Scalar) ([]Scalar, error) {
	n := len(scalars)
	if n == 0 {
		return nil, nil
	}

	for i, scalar := range scalars {
		if scalar == nil || scalar.IsZero() {
			return nil, ErrScalarZero.WithContext("index", i)
		}
	}

	// prefix[i] = s_0 * ... * s_i
	prefix := make([]Scalar, n)
	prefix[0] = scalars[0]
	for i := 1; i < n; i++ {
		prefix[i] = prefix[i-1].Mul(scalars[i])
	}

	acc, err := prefix[n-1].Invert()
	if err != nil {
		return nil, err
	}

	inverses := make([]Scalar, n)
	for i := n - 1; i > 0; i-- {
		inverses[i] = acc.Mul(prefix[i-1])
		acc = acc.Mul(scalars[i])
	}
	inverses[0] = acc

	return inverses, nil
}
