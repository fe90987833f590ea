package shamy

import (
	"io"
	"sync"
	"sync/atomic"
)

// NonceState holds one signer's secret nonce r and its public point R.
// The scalar is consumed by exactly one partial signature and zeroized
// immediately afterwards.
type NonceState struct {
	curve Curve
	point Point

	used atomic.Bool
	mu   sync.Mutex
	r    Scalar
}

// NewNonce draws a fresh nonce from rng.
func NewNonce(curve Curve, rng io.Reader) (*NonceState, error) {
	r, err := GenerateNonce(curve, rng)
	if err != nil {
		return nil, err
	}
	return &NonceState{
		curve: curve,
		point: ComputeNoncePoint(curve, r),
		r:     r,
	}, nil
}

// Point returns R = G·r. It remains available after the nonce is used.
func (n *NonceState) Point() Point {
	return n.point
}

// Used reports whether the nonce has already produced a partial signature.
func (n *NonceState) Used() bool {
	return n.used.Load()
}

// Sign computes the partial signature for challenge c and erases r. Any
// later call, concurrent or not, fails with ErrNonceReused.
func (n *NonceState) Sign(participant *Participant, c Scalar) (*PartialSignature, error) {
	if !n.used.CompareAndSwap(false, true) {
		return nil, ErrNonceReused.WithContext("participant", uint64(participant.ID))
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	partial := PartialSign(participant, n.r, c)
	n.r.Zeroize()
	n.r = nil
	return partial, nil
}

// Discard erases an unused nonce, e.g. when a session is abandoned.
func (n *NonceState) Discard() {
	if !n.used.CompareAndSwap(false, true) {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.r.Zeroize()
	n.r = nil
}
