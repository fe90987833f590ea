package shamy

import (
	"fmt"
)

// PublicShare pairs a participant id with a public point: X_i = G·x_i for
// key shares or R_i = G·r_i for nonce commitments.
type PublicShare struct {
	ID    ParticipantID
	Point Point
}

// PartialSignature is one signer's s_i = r_i + c·x_i.
type PartialSignature struct {
	ID ParticipantID
	S  Scalar
}

// Share is a raw evaluation (id, f(id)) of a sharing polynomial.
type Share struct {
	ID    ParticipantID
	Value Scalar
}

// LagrangeCoefficient computes the weight of id when interpolating at zero
// over ids:
//
//	λ_i = Π_{j≠i} id_j · (Π_{j≠i} (id_j − id_i))^{-1}
//
// Duplicate ids, id 0, an id outside ids, or a zero denominator fail with
// ErrDegenerateParticipantSet.
func LagrangeCoefficient(curve Curve, id ParticipantID, ids []ParticipantID) (Scalar, error) {
	if err := ValidateParticipantSet(ids); err != nil {
		return nil, err
	}
	if !containsID(ids, id) {
		return nil, ErrDegenerateParticipantSet.
			WithContext("participant", uint64(id)).
			WithCause(ErrParticipantNotFound)
	}

	numerator, denominator := lagrangeTerms(curve, id, ids)
	if denominator.IsZero() {
		return nil, ErrDegenerateParticipantSet.WithContext("participant", uint64(id))
	}

	inv, err := denominator.Invert()
	if err != nil {
		return nil, ErrDegenerateParticipantSet.WithCause(err)
	}
	return numerator.Mul(inv), nil
}

// LagrangeCoefficients computes λ_i for every id in ids, in order, sharing
// one field inversion across the whole set.
func LagrangeCoefficients(curve Curve, ids []ParticipantID) ([]Scalar, error) {
	if err := ValidateParticipantSet(ids); err != nil {
		return nil, err
	}

	numerators := make([]Scalar, len(ids))
	denominators := make([]Scalar, len(ids))
	for i, id := range ids {
		numerators[i], denominators[i] = lagrangeTerms(curve, id, ids)
	}

	inverses, err := BatchInvert(denominators)
	if err != nil {
		return nil, ErrDegenerateParticipantSet.WithCause(err)
	}

	coefficients := make([]Scalar, len(ids))
	for i := range ids {
		coefficients[i] = numerators[i].Mul(inverses[i])
	}
	return coefficients, nil
}

// lagrangeTerms returns the running numerator and denominator products for
// id over ids, skipping id itself.
func lagrangeTerms(curve Curve, id ParticipantID, ids []ParticipantID) (Scalar, Scalar) {
	xi := id.ToScalar(curve)
	numerator := curve.ScalarOne()
	denominator := curve.ScalarOne()

	for _, other := range ids {
		if other == id {
			continue
		}
		xj := other.ToScalar(curve)
		numerator = numerator.Mul(xj)
		denominator = denominator.Mul(xj.Sub(xi))
	}
	return numerator, denominator
}

// interpolatePoints computes Σ λ_i·P_i over the ids of shares.
func interpolatePoints(curve Curve, shares []PublicShare) (Point, error) {
	ids := make([]ParticipantID, len(shares))
	for i, share := range shares {
		if share.Point == nil {
			return nil, ErrInvalidPointEncoding.WithContext("participant", uint64(share.ID))
		}
		ids[i] = share.ID
	}

	lambdas, err := LagrangeCoefficients(curve, ids)
	if err != nil {
		return nil, err
	}

	result := curve.PointIdentity()
	for i, share := range shares {
		result = result.Add(share.Point.Mul(lambdas[i]))
	}
	return result, nil
}

// AggregatePublicKey reconstructs X = Σ λ_i·X_i from public shares. The
// caller is responsible for supplying at least t genuine shares; VerifyShare
// is the recommended prior check.
func AggregatePublicKey(curve Curve, shares []PublicShare) (Point, error) {
	return interpolatePoints(curve, shares)
}

// AggregateNonce computes R = Σ λ_i·R_i with weights over ids. Every id must
// contribute exactly one nonce point.
func AggregateNonce(curve Curve, nonces []PublicShare, ids []ParticipantID) (Point, error) {
	if err := ValidateParticipantSet(ids); err != nil {
		return nil, err
	}
	if len(nonces) != len(ids) {
		return nil, ErrDegenerateParticipantSet.WithDetails(
			fmt.Sprintf("got %d nonce points for %d participants", len(nonces), len(ids)))
	}

	byID := make(map[ParticipantID]Point, len(nonces))
	for _, nonce := range nonces {
		if !containsID(ids, nonce.ID) {
			return nil, ErrParticipantNotFound.WithContext("participant", uint64(nonce.ID))
		}
		byID[nonce.ID] = nonce.Point
	}

	ordered := make([]PublicShare, len(ids))
	for i, id := range ids {
		p, ok := byID[id]
		if !ok {
			return nil, ErrDuplicateParticipants.WithContext("participant", uint64(id))
		}
		ordered[i] = PublicShare{ID: id, Point: p}
	}
	return interpolatePoints(curve, ordered)
}

// PartialSign computes s_i = r_i + c·x_i. It is pure; the caller must
// never reuse r for a different challenge. NonceState.Sign enforces that.
func PartialSign(participant *Participant, r, c Scalar) *PartialSignature {
	return &PartialSignature{
		ID: participant.ID,
		S:  r.Add(c.Mul(participant.Share)),
	}
}

// VerifyPartial checks G·s_i == R_i + c·X_i, catching a bad partial before
// it is interpolated into a signature that would fail verification.
func VerifyPartial(curve Curve, partial *PartialSignature, nonce, publicShare Point, c Scalar) bool {
	if partial == nil || partial.S == nil || nonce == nil || publicShare == nil || c == nil {
		return false
	}
	left := curve.BasePoint().Mul(partial.S)
	right := nonce.Add(publicShare.Mul(c))
	return left.Equal(right)
}

// FinalizeSignatureLagrange interpolates s = Σ λ_i·s_i over the ids of
// partials. The partial set must be the one used to aggregate R.
func FinalizeSignatureLagrange(curve Curve, partials []*PartialSignature, R Point) (*Signature, error) {
	if R == nil {
		return nil, ErrInvalidPointEncoding.WithDetails("nil aggregated nonce")
	}

	shares := make([]Share, len(partials))
	for i, p := range partials {
		if p == nil || p.S == nil {
			return nil, ErrInvalidScalarEncoding.WithContext("index", i)
		}
		shares[i] = Share{ID: p.ID, Value: p.S}
	}

	s, err := InterpolateAtZero(curve, shares)
	if err != nil {
		return nil, err
	}
	return &Signature{R: R, S: s}, nil
}

// InterpolateAtZero computes f(0) = Σ λ_i·f(id_i) over the ids of shares.
func InterpolateAtZero(curve Curve, shares []Share) (Scalar, error) {
	ids := make([]ParticipantID, len(shares))
	for i, share := range shares {
		ids[i] = share.ID
	}

	lambdas, err := LagrangeCoefficients(curve, ids)
	if err != nil {
		return nil, err
	}

	result := curve.ScalarZero()
	for i, share := range shares {
		result = result.Add(share.Value.Mul(lambdas[i]))
	}
	return result, nil
}

// ReconstructSecret recovers the dealer secret from the first threshold
// shares. Signing never needs this; it exists for audits and recovery.
func ReconstructSecret(curve Curve, shares []Share, threshold int) (Scalar, error) {
	if len(shares) < threshold {
		return nil, ErrInsufficientSigners.
			WithContext("threshold", threshold).
			WithContext("shares", len(shares))
	}
	return InterpolateAtZero(curve, shares[:threshold])
}

// SharesFromParticipants extracts the raw (id, x_i) shares.
func SharesFromParticipants(participants []*Participant) []Share {
	shares := make([]Share, len(participants))
	for i, p := range participants {
		shares[i] = Share{ID: p.ID, Value: p.Share}
	}
	return shares
}

func containsID(ids []ParticipantID, id ParticipantID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
