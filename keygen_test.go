package shamy

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPolynomialEvaluate(t *testing.T) {
	curve := NewSecp256k1Curve()

	// f(x) = 5 + 3x + 2x^2
	secret := curve.ScalarFromUint64(5)
	poly := &Polynomial{
		curve: curve,
		coefficients: []Scalar{
			secret,
			curve.ScalarFromUint64(3),
			curve.ScalarFromUint64(2),
		},
	}

	require.Equal(t, 2, poly.Degree())
	require.True(t, poly.Evaluate(1).Equal(curve.ScalarFromUint64(10)))
	require.True(t, poly.Evaluate(2).Equal(curve.ScalarFromUint64(19)))
	require.True(t, poly.Evaluate(3).Equal(curve.ScalarFromUint64(32)))
	require.True(t, poly.EvaluateAt(curve.ScalarZero()).Equal(secret))

	poly.Zeroize()
	require.True(t, secret.IsZero())
}

func TestNewRandomPolynomial(t *testing.T) {
	curve := NewEd25519Curve()
	rng := testRNG(t)

	secret, err := curve.ScalarRandom(rng)
	require.NoError(t, err)

	poly, err := NewRandomPolynomial(curve, rng, secret, 4)
	require.NoError(t, err)
	require.Equal(t, 3, poly.Degree())
	require.True(t, poly.EvaluateAt(curve.ScalarZero()).Equal(secret))
	require.Len(t, poly.Commitments(), 4)

	_, err = NewRandomPolynomial(curve, rng, secret, 0)
	require.ErrorIs(t, err, ErrInvalidThresholdParameters)
}

func TestShamirKeygen(t *testing.T) {
	forEachCurve(t, func(t *testing.T, curve Curve) {
		out, err := ShamirKeygen(curve, testRNG(t), 5, 3)
		require.NoError(t, err)

		require.Len(t, out.Participants, 5)
		require.Len(t, out.Commitments, 3)
		require.Equal(t, 3, out.Threshold)
		require.True(t, out.Commitments[0].Equal(out.PublicKey), "C_0 commits to the secret")

		for i, p := range out.Participants {
			require.Equal(t, ParticipantID(i+1), p.ID)
			require.True(t, p.PublicShare.Equal(curve.BasePoint().Mul(p.Share)))
		}

		shares := out.PublicShares()
		require.Len(t, shares, 5)
		X, err := AggregatePublicKey(curve, shares[1:4])
		require.NoError(t, err)
		require.True(t, X.Equal(out.PublicKey))

		secret, err := ReconstructSecret(curve, SharesFromParticipants(out.Participants), out.Threshold)
		require.NoError(t, err)
		require.True(t, curve.BasePoint().Mul(secret).Equal(out.PublicKey))

		out.Zeroize()
		for _, p := range out.Participants {
			require.True(t, p.Share.IsZero())
		}
	})
}

func TestShamirKeygenInvalidParameters(t *testing.T) {
	curve := NewSecp256k1Curve()

	cases := []struct {
		name string
		n, t int
	}{
		{"threshold one", 3, 1},
		{"threshold zero", 3, 0},
		{"threshold above n", 3, 4},
		{"negative", -1, -2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := ShamirKeygen(curve, testRNG(t), tc.n, tc.t)
			require.Nil(t, out)
			require.ErrorIs(t, err, ErrInvalidThresholdParameters)
		})
	}
}

func TestShamirKeygenDeterministic(t *testing.T) {
	curve := NewSecp256k1Curve()
	seed := []byte("replayable dealer entropy")

	a, err := ShamirKeygen(curve, NewDeterministicReader(seed, nil), 3, 2)
	require.NoError(t, err)
	b, err := ShamirKeygen(curve, NewDeterministicReader(seed, nil), 3, 2)
	require.NoError(t, err)
	require.True(t, a.PublicKey.Equal(b.PublicKey))

	c, err := ShamirKeygen(curve, NewDeterministicReader(seed, []byte("other")), 3, 2)
	require.NoError(t, err)
	require.False(t, a.PublicKey.Equal(c.PublicKey))
}

func TestGenerateParticipant(t *testing.T) {
	forEachCurve(t, func(t *testing.T, curve Curve) {
		rng := testRNG(t)
		p, err := GenerateParticipant(curve, rng, 7)
		require.NoError(t, err)
		require.Equal(t, ParticipantID(7), p.ID)
		require.True(t, p.PublicShare.Equal(curve.BasePoint().Mul(p.Share)))

		// a standalone key signs on its own
		msg := []byte("standalone")
		sig, err := Sign(curve, rng, p.Share, msg)
		require.NoError(t, err)
		require.True(t, sig.Verify(curve, msg, p.PublicShare))
	})
}

func TestVerifyShare(t *testing.T) {
	forEachCurve(t, func(t *testing.T, curve Curve) {
		rng := testRNG(t)
		out, err := ShamirKeygen(curve, rng, 4, 3)
		require.NoError(t, err)

		for _, p := range out.Participants {
			require.True(t, VerifyShare(curve, p.ID, p.Share, out.Commitments))
			require.True(t, VerifyParticipant(curve, p, out.Commitments))
			require.True(t, DerivePublicShare(curve, p.ID, out.Commitments).Equal(p.PublicShare))
		}

		p := out.Participants[1]

		t.Run("spoofed id", func(t *testing.T) {
			require.False(t, VerifyShare(curve, p.ID+1, p.Share, out.Commitments))
			require.False(t, VerifyShare(curve, 0, p.Share, out.Commitments))
		})

		t.Run("tampered share", func(t *testing.T) {
			tampered := p.Share.Add(curve.ScalarOne())
			require.False(t, VerifyShare(curve, p.ID, tampered, out.Commitments))
		})

		t.Run("tampered commitment", func(t *testing.T) {
			for j := range out.Commitments {
				commitments := append([]Point(nil), out.Commitments...)
				commitments[j] = commitments[j].Add(curve.BasePoint())
				require.False(t, VerifyShare(curve, p.ID, p.Share, commitments), "commitment %d", j)
			}
		})

		t.Run("malformed input", func(t *testing.T) {
			require.False(t, VerifyShare(curve, p.ID, nil, out.Commitments))
			require.False(t, VerifyShare(curve, p.ID, p.Share, nil))
			require.False(t, VerifyShare(curve, p.ID, p.Share, []Point{nil}))
			require.False(t, VerifyParticipant(curve, nil, out.Commitments))
		})

		t.Run("inconsistent public share", func(t *testing.T) {
			forged := &Participant{ID: p.ID, Share: p.Share, PublicShare: curve.BasePoint()}
			require.False(t, VerifyParticipant(curve, forged, out.Commitments))
		})
	})
}

func TestCalculateCommitment(t *testing.T) {
	curve := NewSecp256k1Curve()
	c := CalculateCommitment(curve, curve.ScalarOne())
	require.True(t, c.Equal(curve.BasePoint()))
}
