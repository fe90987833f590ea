package shamy

import (
	"fmt"
	"io"
)

// Participant is one holder of a Shamir share. PublicShare always equals
// G·Share; construct participants with NewParticipant so the two cannot
// drift apart.
type Participant struct {
	ID          ParticipantID
	Share       Scalar
	PublicShare Point
}

// NewParticipant derives the public share from share.
func NewParticipant(curve Curve, id ParticipantID, share Scalar) *Participant {
	return &Participant{
		ID:          id,
		Share:       share,
		PublicShare: curve.BasePoint().Mul(share),
	}
}

// GenerateParticipant creates a participant holding an independent random
// key instead of a Shamir share.
func GenerateParticipant(curve Curve, rng io.Reader, id ParticipantID) (*Participant, error) {
	share, err := curve.ScalarRandom(rng)
	if err != nil {
		return nil, err
	}
	return NewParticipant(curve, id, share), nil
}

// Public returns the (id, X_i) pair for this participant.
func (p *Participant) Public() PublicShare {
	return PublicShare{ID: p.ID, Point: p.PublicShare}
}

// Zeroize securely clears the secret share
func (p *Participant) Zeroize() {
	if p.Share != nil {
		p.Share.Zeroize()
	}
}

// KeygenOutput is the result of a dealer key generation.
type KeygenOutput struct {
	Participants []*Participant
	PublicKey    Point
	Commitments  []Point
	Threshold    int
}

// PublicShares returns every participant's (id, X_i) pair.
func (k *KeygenOutput) PublicShares() []PublicShare {
	shares := make([]PublicShare, len(k.Participants))
	for i, p := range k.Participants {
		shares[i] = p.Public()
	}
	return shares
}

// Participant looks up a participant by id.
func (k *KeygenOutput) Participant(id ParticipantID) (*Participant, bool) {
	for _, p := range k.Participants {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

// Zeroize clears every participant's share.
func (k *KeygenOutput) Zeroize() {
	for _, p := range k.Participants {
		p.Zeroize()
	}
}

// ShamirKeygen splits a fresh random secret into n shares with threshold t
// and publishes Feldman commitments to the sharing polynomial. The secret
// and polynomial are zeroized before returning.
func ShamirKeygen(curve Curve, rng io.Reader, n, t int) (*KeygenOutput, error) {
	if err := ValidateThresholdParameters(n, t); err != nil {
		return nil, err
	}

	secret, err := curve.ScalarRandom(rng)
	if err != nil {
		return nil, fmt.Errorf("failed to generate secret: %w", err)
	}

	polynomial, err := NewRandomPolynomial(curve, rng, secret, t)
	if err != nil {
		secret.Zeroize()
		return nil, fmt.Errorf("failed to create polynomial: %w", err)
	}
	defer polynomial.Zeroize()

	publicKey := curve.BasePoint().Mul(secret)
	commitments := polynomial.Commitments()

	participants := make([]*Participant, n)
	for i := 0; i < n; i++ {
		id := ParticipantID(i + 1)
		participants[i] = NewParticipant(curve, id, polynomial.Evaluate(id))
	}

	return &KeygenOutput{
		Participants: participants,
		PublicKey:    publicKey,
		Commitments:  commitments,
		Threshold:    t,
	}, nil
}
