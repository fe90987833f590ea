package shamy

import (
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

// testRNG returns a reproducible randomness source unique to the test.
func testRNG(t testing.TB) io.Reader {
	t.Helper()
	return NewDeterministicReader([]byte("shamy test seed"), []byte(t.Name()))
}

// forEachCurve runs fn as a subtest against every supported curve.
func forEachCurve(t *testing.T, fn func(t *testing.T, curve Curve)) {
	t.Helper()
	for _, curveType := range SupportedCurves {
		curve, err := NewCurve(curveType)
		require.NoError(t, err)

		t.Run(string(curveType), func(t *testing.T) {
			fn(t, curve)
		})
	}
}

// signWithSubset runs the raw protocol primitives for the given signers,
// aggregating nonces over nonceIDs and finalizing over the partials of
// finalIDs.
func signWithSubset(
	t *testing.T,
	curve Curve,
	rng io.Reader,
	out *KeygenOutput,
	msg []byte,
	nonceIDs []ParticipantID,
	finalIDs []ParticipantID,
) *Signature {
	t.Helper()

	nonces := make(map[ParticipantID]Scalar, len(nonceIDs))
	points := make([]PublicShare, 0, len(nonceIDs))
	for _, id := range nonceIDs {
		r, err := GenerateNonce(curve, rng)
		require.NoError(t, err)
		nonces[id] = r
		points = append(points, PublicShare{ID: id, Point: ComputeNoncePoint(curve, r)})
	}

	R, err := AggregateNonce(curve, points, nonceIDs)
	require.NoError(t, err)

	c, err := ComputeChallenge(curve, R, out.PublicKey, msg)
	require.NoError(t, err)

	partials := make([]*PartialSignature, 0, len(finalIDs))
	for _, id := range finalIDs {
		p, ok := out.Participant(id)
		require.True(t, ok)
		r, ok := nonces[id]
		require.True(t, ok, "no nonce for participant %d", id)
		partials = append(partials, PartialSign(p, r, c))
	}

	sig, err := FinalizeSignatureLagrange(curve, partials, R)
	require.NoError(t, err)
	return sig
}

// subsets returns every k-element subset of ids in lexicographic order.
func subsets(ids []ParticipantID, k int) [][]ParticipantID {
	var result [][]ParticipantID
	var walk func(start int, current []ParticipantID)
	walk = func(start int, current []ParticipantID) {
		if len(current) == k {
			result = append(result, append([]ParticipantID(nil), current...))
			return
		}
		for i := start; i < len(ids); i++ {
			walk(i+1, append(current, ids[i]))
		}
	}
	walk(0, nil)
	return result
}

func participantIDs(n int) []ParticipantID {
	ids := make([]ParticipantID, n)
	for i := range ids {
		ids[i] = ParticipantID(i + 1)
	}
	return ids
}
