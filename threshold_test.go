package shamy

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLagrangeCoefficient(t *testing.T) {
	curve := NewSecp256k1Curve()

	// ids {1,2}: λ1 = 2/(2-1) = 2, λ2 = 1/(1-2) = -1
	ids := []ParticipantID{1, 2}
	l1, err := LagrangeCoefficient(curve, 1, ids)
	require.NoError(t, err)
	require.True(t, l1.Equal(curve.ScalarFromUint64(2)))

	l2, err := LagrangeCoefficient(curve, 2, ids)
	require.NoError(t, err)
	require.True(t, l2.Equal(curve.ScalarOne().Negate()))

	batch, err := LagrangeCoefficients(curve, []ParticipantID{1, 3, 4, 9})
	require.NoError(t, err)
	sum := curve.ScalarZero()
	for i, id := range []ParticipantID{1, 3, 4, 9} {
		single, err := LagrangeCoefficient(curve, id, []ParticipantID{1, 3, 4, 9})
		require.NoError(t, err)
		require.True(t, single.Equal(batch[i]))
		sum = sum.Add(single)
	}
	// interpolating the constant polynomial 1 yields 1
	require.True(t, sum.Equal(curve.ScalarOne()))
}

func TestLagrangeCoefficientDegenerate(t *testing.T) {
	curve := NewSecp256k1Curve()

	cases := []struct {
		name string
		id   ParticipantID
		ids  []ParticipantID
	}{
		{"duplicate of self", 1, []ParticipantID{1, 1, 2}},
		{"duplicate of other", 1, []ParticipantID{1, 2, 2}},
		{"zero id", 1, []ParticipantID{0, 1}},
		{"not a member", 3, []ParticipantID{1, 2}},
		{"empty", 1, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LagrangeCoefficient(curve, tc.id, tc.ids)
			require.ErrorIs(t, err, ErrDegenerateParticipantSet)
		})
	}

	_, err := LagrangeCoefficients(curve, []ParticipantID{2, 5, 2})
	require.ErrorIs(t, err, ErrDegenerateParticipantSet)
}

// Property: weighted summation reconstructs f(0) from any >= t distinct points.
func TestInterpolateAtZeroRandomPolynomials(t *testing.T) {
	forEachCurve(t, func(t *testing.T, curve Curve) {
		rng := testRNG(t)
		for degree := 1; degree <= 5; degree++ {
			secret, err := curve.ScalarRandom(rng)
			require.NoError(t, err)
			poly, err := NewRandomPolynomial(curve, rng, secret, degree+1)
			require.NoError(t, err)

			ids := []ParticipantID{2, 5, 7, 11, 13, 17, 19}[:degree+2]
			shares := make([]Share, len(ids))
			for i, id := range ids {
				shares[i] = Share{ID: id, Value: poly.Evaluate(id)}
			}

			for k := degree + 1; k <= len(shares); k++ {
				got, err := InterpolateAtZero(curve, shares[len(shares)-k:])
				require.NoError(t, err)
				require.True(t, got.Equal(secret), "degree %d with %d points", degree, k)
			}

			// one point short of t reconstructs something else
			short, err := InterpolateAtZero(curve, shares[:degree])
			require.NoError(t, err)
			require.False(t, short.Equal(secret))
		}
	})
}

func TestReconstructSecretInsufficient(t *testing.T) {
	curve := NewSecp256k1Curve()
	out, err := ShamirKeygen(curve, testRNG(t), 3, 3)
	require.NoError(t, err)

	_, err = ReconstructSecret(curve, SharesFromParticipants(out.Participants[:2]), 3)
	require.ErrorIs(t, err, ErrInsufficientSigners)
}

// Property: every t-subset that uses one id-set throughout produces a valid signature.
func TestThresholdSignAllSubsets(t *testing.T) {
	params := []struct{ n, t int }{{2, 2}, {3, 2}, {4, 3}, {5, 3}}

	forEachCurve(t, func(t *testing.T, curve Curve) {
		for _, p := range params {
			t.Run(fmt.Sprintf("%d-of-%d", p.t, p.n), func(t *testing.T) {
				rng := testRNG(t)
				out, err := ShamirKeygen(curve, rng, p.n, p.t)
				require.NoError(t, err)

				msg := []byte("threshold message")
				for _, ids := range subsets(participantIDs(p.n), p.t) {
					sig := signWithSubset(t, curve, rng, out, msg, ids, ids)
					require.True(t, sig.Verify(curve, msg, out.PublicKey), "subset %v", ids)
				}
			})
		}
	})
}

// Property: fewer than t signers or mismatched id-sets never verify.
func TestThresholdSignNoFalseAccept(t *testing.T) {
	forEachCurve(t, func(t *testing.T, curve Curve) {
		rng := testRNG(t)
		out, err := ShamirKeygen(curve, rng, 5, 3)
		require.NoError(t, err)
		msg := []byte("threshold message")

		t.Run("below threshold", func(t *testing.T) {
			for _, ids := range subsets(participantIDs(5), 2) {
				sig := signWithSubset(t, curve, rng, out, msg, ids, ids)
				require.False(t, sig.Verify(curve, msg, out.PublicKey), "subset %v", ids)
			}
		})

		t.Run("mismatched id-sets", func(t *testing.T) {
			nonceIDs := []ParticipantID{1, 2, 3, 4}
			sig := signWithSubset(t, curve, rng, out, msg, nonceIDs, []ParticipantID{1, 2, 3})
			require.False(t, sig.Verify(curve, msg, out.PublicKey))

			sig = signWithSubset(t, curve, rng, out, msg, []ParticipantID{1, 2, 3}, []ParticipantID{1, 2})
			require.False(t, sig.Verify(curve, msg, out.PublicKey))
		})
	})
}

// Property: a signature for one message fails for any other.
func TestThresholdSignMessageBinding(t *testing.T) {
	forEachCurve(t, func(t *testing.T, curve Curve) {
		rng := testRNG(t)
		out, err := ShamirKeygen(curve, rng, 3, 2)
		require.NoError(t, err)

		ids := []ParticipantID{1, 3}
		sig := signWithSubset(t, curve, rng, out, []byte("M"), ids, ids)
		require.True(t, sig.Verify(curve, []byte("M"), out.PublicKey))
		for _, other := range []string{"", "m", "M ", "MM"} {
			require.False(t, sig.Verify(curve, []byte(other), out.PublicKey), "message %q", other)
		}
	})
}

// Property: independent sessions over different subsets differ but both verify.
func TestThresholdSignIndependentSessions(t *testing.T) {
	forEachCurve(t, func(t *testing.T, curve Curve) {
		rng := testRNG(t)
		out, err := ShamirKeygen(curve, rng, 4, 2)
		require.NoError(t, err)
		msg := []byte("same message")

		a := signWithSubset(t, curve, rng, out, msg, []ParticipantID{1, 2}, []ParticipantID{1, 2})
		b := signWithSubset(t, curve, rng, out, msg, []ParticipantID{3, 4}, []ParticipantID{3, 4})

		require.False(t, a.R.Equal(b.R))
		require.False(t, a.S.Equal(b.S))
		require.True(t, a.Verify(curve, msg, out.PublicKey))
		require.True(t, b.Verify(curve, msg, out.PublicKey))
	})
}

// Scenario: n=3, t=2, participants {1,2} sign "test message".
func TestTwoOfThreeScenario(t *testing.T) {
	forEachCurve(t, func(t *testing.T, curve Curve) {
		rng := testRNG(t)
		out, err := ShamirKeygen(curve, rng, 3, 2)
		require.NoError(t, err)

		for _, p := range out.Participants {
			require.True(t, VerifyShare(curve, p.ID, p.Share, out.Commitments))
		}

		msg := []byte("test message")
		ids := []ParticipantID{1, 2}
		sig := signWithSubset(t, curve, rng, out, msg, ids, ids)
		require.True(t, sig.Verify(curve, msg, out.PublicKey))

		for _, single := range [][]ParticipantID{{1}, {2}, {3}} {
			lone := signWithSubset(t, curve, rng, out, msg, single, single)
			require.False(t, lone.Verify(curve, msg, out.PublicKey), "id-set %v", single)
		}
	})
}

func TestAggregateNonceErrors(t *testing.T) {
	curve := NewSecp256k1Curve()
	G := curve.BasePoint()

	_, err := AggregateNonce(curve, []PublicShare{{ID: 1, Point: G}}, []ParticipantID{1, 2})
	require.ErrorIs(t, err, ErrDegenerateParticipantSet)

	_, err = AggregateNonce(curve, []PublicShare{{ID: 1, Point: G}, {ID: 3, Point: G}}, []ParticipantID{1, 2})
	require.ErrorIs(t, err, ErrParticipantNotFound)

	_, err = AggregateNonce(curve, []PublicShare{{ID: 1, Point: G}, {ID: 1, Point: G}}, []ParticipantID{1, 2})
	require.ErrorIs(t, err, ErrDuplicateParticipants)

	_, err = AggregateNonce(curve, []PublicShare{{ID: 1, Point: G}, {ID: 2, Point: nil}}, []ParticipantID{1, 2})
	require.ErrorIs(t, err, ErrInvalidPointEncoding)

	// order of the supplied points does not matter
	R1, err := AggregateNonce(curve, []PublicShare{{ID: 1, Point: G}, {ID: 2, Point: G.Add(G)}}, []ParticipantID{1, 2})
	require.NoError(t, err)
	R2, err := AggregateNonce(curve, []PublicShare{{ID: 2, Point: G.Add(G)}, {ID: 1, Point: G}}, []ParticipantID{1, 2})
	require.NoError(t, err)
	require.True(t, R1.Equal(R2))
}

func TestVerifyPartial(t *testing.T) {
	forEachCurve(t, func(t *testing.T, curve Curve) {
		rng := testRNG(t)
		out, err := ShamirKeygen(curve, rng, 3, 2)
		require.NoError(t, err)
		p, _ := out.Participant(2)

		r, err := GenerateNonce(curve, rng)
		require.NoError(t, err)
		Ri := ComputeNoncePoint(curve, r)
		c, err := ComputeChallenge(curve, Ri, out.PublicKey, []byte("m"))
		require.NoError(t, err)

		partial := PartialSign(p, r, c)
		require.True(t, VerifyPartial(curve, partial, Ri, p.PublicShare, c))

		other, _ := out.Participant(3)
		require.False(t, VerifyPartial(curve, partial, Ri, other.PublicShare, c))

		tampered := &PartialSignature{ID: 2, S: partial.S.Add(curve.ScalarOne())}
		require.False(t, VerifyPartial(curve, tampered, Ri, p.PublicShare, c))

		require.False(t, VerifyPartial(curve, nil, Ri, p.PublicShare, c))
		require.False(t, VerifyPartial(curve, partial, nil, p.PublicShare, c))
	})
}

func TestFinalizeSignatureErrors(t *testing.T) {
	curve := NewSecp256k1Curve()
	one := curve.ScalarOne()

	_, err := FinalizeSignatureLagrange(curve, []*PartialSignature{{ID: 1, S: one}}, nil)
	require.ErrorIs(t, err, ErrInvalidPointEncoding)

	_, err = FinalizeSignatureLagrange(curve, []*PartialSignature{{ID: 1, S: one}, nil}, curve.BasePoint())
	require.ErrorIs(t, err, ErrInvalidScalarEncoding)

	_, err = FinalizeSignatureLagrange(curve, []*PartialSignature{{ID: 1, S: one}, {ID: 1, S: one}}, curve.BasePoint())
	require.ErrorIs(t, err, ErrDegenerateParticipantSet)
}

func TestBatchInvert(t *testing.T) {
	curve := NewEd25519Curve()
	rng := testRNG(t)

	scalars := make([]Scalar, 6)
	for i := range scalars {
		s, err := curve.ScalarRandom(rng)
		require.NoError(t, err)
		scalars[i] = s
	}

	inverses, err := BatchInvert(scalars)
	require.NoError(t, err)
	for i := range scalars {
		require.True(t, scalars[i].Mul(inverses[i]).Equal(curve.ScalarOne()), "index %d", i)
	}

	scalars[3] = curve.ScalarZero()
	_, err = BatchInvert(scalars)
	require.ErrorIs(t, err, ErrScalarZero)

	empty, err := BatchInvert(nil)
	require.NoError(t, err)
	require.Nil(t, empty)
}
