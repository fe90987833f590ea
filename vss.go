package shamy

// CalculateCommitment returns the Feldman commitment G·coefficient.
func CalculateCommitment(curve Curve, coefficient Scalar) Point {
	return curve.BasePoint().Mul(coefficient)
}

// DerivePublicShare computes Σ C_j·id^j, which equals G·f(id) when the
// commitments belong to the polynomial f.
func DerivePublicShare(curve Curve, id ParticipantID, commitments []Point) Point {
	x := id.ToScalar(curve)
	xPower := curve.ScalarOne()

	expected := curve.PointIdentity()
	for _, commitment := range commitments {
		expected = expected.Add(commitment.Mul(xPower))
		xPower = xPower.Mul(x)
	}
	return expected
}

// VerifyShare checks a share against the dealer's broadcast commitments:
//
//	G·x_i == C_0 + C_1·i + ... + C_{t-1}·i^{t-1}
//
// It never fails; malformed input simply does not verify.
func VerifyShare(curve Curve, id ParticipantID, share Scalar, commitments []Point) bool {
	if id == 0 || share == nil || len(commitments) == 0 {
		return false
	}
	for _, c := range commitments {
		if c == nil {
			return false
		}
	}

	lhs := curve.BasePoint().Mul(share)
	return lhs.Equal(DerivePublicShare(curve, id, commitments))
}

// VerifyParticipant runs VerifyShare on the participant's share and also
// checks the stored public share against the commitments.
func VerifyParticipant(curve Curve, p *Participant, commitments []Point) bool {
	if p == nil || p.PublicShare == nil || !VerifyShare(curve, p.ID, p.Share, commitments) {
		return false
	}
	return p.PublicShare.Equal(DerivePublicShare(curve, p.ID, commitments))
}
