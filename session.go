package shamy

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/sync/errgroup"
)

// SessionState is a step of the two-round signing protocol.
type SessionState string

const (
	StateInit              SessionState = "INIT"
	StateNoncesGenerated   SessionState = "NONCES_GENERATED"
	StateNonceAggregated   SessionState = "NONCE_AGGREGATED"
	StateChallengeComputed SessionState = "CHALLENGE_COMPUTED"
	StatePartialsCollected SessionState = "PARTIALS_COLLECTED"
	StateFinalized         SessionState = "FINALIZED"
	StateVerified          SessionState = "VERIFIED"
	StateRejected          SessionState = "REJECTED"
)

func (s SessionState) String() string {
	return string(s)
}

// Terminal reports whether no further transitions are possible.
func (s SessionState) Terminal() bool {
	return s == StateVerified || s == StateRejected
}

type coordinatorOption struct {
	logger       *zap.Logger
	audit        AuditEventHandler
	publicShares map[ParticipantID]Point
}

func (o *coordinatorOption) fillDefault() {
	o.logger = zap.NewNop()
	o.audit = &NullAuditHandler{}
}

// CoordinatorOption configures a Coordinator
type CoordinatorOption func(*coordinatorOption) error

// WithLogger sets the logger. Only public values are ever logged.
func WithLogger(logger *zap.Logger) CoordinatorOption {
	return func(opt *coordinatorOption) error {
		if logger == nil {
			return fmt.Errorf("logger should not be nil")
		}
		opt.logger = logger
		return nil
	}
}

// WithAuditHandler sets the audit event handler
func WithAuditHandler(handler AuditEventHandler) CoordinatorOption {
	return func(opt *coordinatorOption) error {
		if handler == nil {
			return fmt.Errorf("audit handler should not be nil")
		}
		opt.audit = handler
		return nil
	}
}

// WithPublicShares makes AddPartial check every partial against the
// signer's public share X_i, so a bad partial names its sender.
func WithPublicShares(shares []PublicShare) CoordinatorOption {
	return func(opt *coordinatorOption) error {
		opt.publicShares = make(map[ParticipantID]Point, len(shares))
		for _, share := range shares {
			if share.Point == nil {
				return fmt.Errorf("public share of participant %s should not be nil", share.ID)
			}
			opt.publicShares[share.ID] = share.Point
		}
		return nil
	}
}

// Coordinator drives one signing session through its state machine. The
// id-set is pinned at construction and used both to aggregate the nonce
// and to finalize, so the two can never disagree. It is safe for
// concurrent use.
type Coordinator struct {
	curve     Curve
	publicKey Point
	message   []byte
	ids       []ParticipantID
	threshold int
	sessionID string
	started   time.Time

	logger       *zap.Logger
	audit        AuditEventHandler
	publicShares map[ParticipantID]Point

	mu        sync.Mutex
	state     SessionState
	nonces    map[ParticipantID]Point
	nonce     Point
	challenge Scalar
	partials  map[ParticipantID]*PartialSignature
	signature *Signature
}

// NewCoordinator creates a session for msg under publicKey, signed by
// exactly the participants in ids.
func NewCoordinator(
	curve Curve,
	publicKey Point,
	msg []byte,
	ids []ParticipantID,
	threshold int,
	opts ...CoordinatorOption,
) (*Coordinator, error) {
	opt := new(coordinatorOption)
	opt.fillDefault()
	for _, optf := range opts {
		if err := optf(opt); err != nil {
			return nil, err
		}
	}

	if publicKey == nil || publicKey.IsIdentity() {
		return nil, ErrInvalidPointEncoding.WithDetails("invalid group public key")
	}

	sessionID := SessionID(curve, ids, msg)
	fail := func(validationType string, err error) error {
		opt.audit.OnValidationFailure(
			NewAuditEventBuilder(AuditEventValidationFailure, ReasonValidationError).
				WithCurve(curve.Name()).
				WithSession(sessionID).
				WithThreshold(threshold).
				WithParticipants(ids).
				WithError(err).
				BuildValidationFailure(validationType, err.Error(), map[string]interface{}{
					"signers":   len(ids),
					"threshold": threshold,
				}))
		return err
	}

	if threshold < MinThreshold {
		return nil, fail("threshold", ErrInvalidThresholdParameters.WithContext("threshold", threshold))
	}
	if err := ValidateParticipantSet(ids); err != nil {
		return nil, fail("participant", err)
	}
	if len(ids) < threshold {
		return nil, fail("participant", ErrInsufficientSigners.
			WithContext("threshold", threshold).
			WithContext("signers", len(ids)))
	}

	c := &Coordinator{
		curve:     curve,
		publicKey: publicKey,
		message:   append([]byte(nil), msg...),
		ids:       append([]ParticipantID(nil), ids...),
		threshold: threshold,
		sessionID: sessionID,
		started:   time.Now(),
		logger: opt.logger.With(
			zap.String("session_id", sessionID),
			zap.String("curve", curve.Name()),
		),
		audit:        opt.audit,
		publicShares: opt.publicShares,
		state:        StateInit,
		nonces:       make(map[ParticipantID]Point, len(ids)),
		partials:     make(map[ParticipantID]*PartialSignature, len(ids)),
	}

	c.audit.OnSessionStarted(
		NewAuditEventBuilder(AuditEventSessionStarted, ReasonSigningRequest).
			WithCurve(curve.Name()).
			WithSession(sessionID).
			WithThreshold(threshold).
			WithParticipants(ids).
			Build())
	c.logger.Debug("session created", zap.Int("signers", len(ids)), zap.Int("threshold", threshold))
	return c, nil
}

// SessionID returns the hex blake2b-256 digest of curve, ids and msg. It is
// public and only used to correlate logs and audit events.
func SessionID(curve Curve, ids []ParticipantID, msg []byte) string {
	h, _ := blake2b.New256(nil)
	h.Write([]byte(curve.Name()))

	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(len(ids)))
	h.Write(buf)
	for _, id := range ids {
		binary.BigEndian.PutUint64(buf, uint64(id))
		h.Write(buf)
	}
	h.Write(msg)
	return hex.EncodeToString(h.Sum(nil))
}

// ID returns the session id
func (c *Coordinator) ID() string {
	return c.sessionID
}

// Participants returns a copy of the pinned id-set
func (c *Coordinator) Participants() []ParticipantID {
	return append([]ParticipantID(nil), c.ids...)
}

// State returns the current state
func (c *Coordinator) State() SessionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// expect must be called with mu held.
func (c *Coordinator) expect(op string, states ...SessionState) error {
	for _, s := range states {
		if c.state == s {
			return nil
		}
	}
	err := ErrInvalidState.
		WithContext("operation", op).
		WithContext("state", string(c.state))
	c.audit.OnValidationFailure(c.event(AuditEventValidationFailure, ReasonProtocolError).
		WithError(err).
		BuildValidationFailure("state", err.Error(), map[string]interface{}{"operation": op}))
	return err
}

func (c *Coordinator) event(eventType AuditEventType, reason AuditEventReason) *AuditEventBuilder {
	return NewAuditEventBuilder(eventType, reason).
		WithCurve(c.curve.Name()).
		WithSession(c.sessionID).
		WithThreshold(c.threshold).
		WithParticipants(c.ids)
}

// transition must be called with mu held.
func (c *Coordinator) transition(next SessionState) {
	c.logger.Debug("session state changed",
		zap.Stringer("from", c.state),
		zap.Stringer("to", next))
	c.state = next
}

// AddNoncePoint records R_i for id. The session moves to NONCES_GENERATED
// once every pinned participant has contributed.
func (c *Coordinator) AddNoncePoint(id ParticipantID, R Point) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.expect("add nonce point", StateInit); err != nil {
		return err
	}
	if !containsID(c.ids, id) {
		return ErrParticipantNotFound.WithContext("participant", uint64(id))
	}
	if _, ok := c.nonces[id]; ok {
		return ErrDuplicateParticipants.WithContext("participant", uint64(id))
	}
	if R == nil || R.IsIdentity() {
		return ErrInvalidPointEncoding.WithContext("participant", uint64(id)).
			WithDetails("nonce point must not be the identity")
	}

	c.nonces[id] = R
	c.logger.Debug("nonce point received", zap.Stringer("participant", id))

	if len(c.nonces) == len(c.ids) {
		c.transition(StateNoncesGenerated)
	}
	return nil
}

// AggregateNonce computes R = Σ λ_i·R_i over the pinned id-set.
func (c *Coordinator) AggregateNonce() (Point, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.expect("aggregate nonce", StateNoncesGenerated); err != nil {
		return nil, err
	}

	nonces := make([]PublicShare, 0, len(c.ids))
	for _, id := range c.ids {
		nonces = append(nonces, PublicShare{ID: id, Point: c.nonces[id]})
	}

	R, err := AggregateNonce(c.curve, nonces, c.ids)
	if err != nil {
		return nil, err
	}

	c.nonce = R
	c.transition(StateNonceAggregated)
	return R, nil
}

// ComputeChallenge computes c = H(R || X || msg) for the aggregated nonce.
func (c *Coordinator) ComputeChallenge() (Scalar, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.expect("compute challenge", StateNonceAggregated); err != nil {
		return nil, err
	}

	challenge, err := ComputeChallenge(c.curve, c.nonce, c.publicKey, c.message)
	if err != nil {
		return nil, err
	}

	c.challenge = challenge
	c.transition(StateChallengeComputed)
	return challenge, nil
}

// Challenge returns the challenge once computed.
func (c *Coordinator) Challenge() (Scalar, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.challenge == nil {
		return nil, ErrInvalidState.WithContext("state", string(c.state))
	}
	return c.challenge, nil
}

// AddPartial records a partial signature. The session moves to
// PARTIALS_COLLECTED once every pinned participant has contributed.
func (c *Coordinator) AddPartial(p *PartialSignature) error {
	if p == nil || p.S == nil {
		return ErrInvalidScalarEncoding.WithDetails("nil partial signature")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.expect("add partial", StateChallengeComputed); err != nil {
		return err
	}
	if !containsID(c.ids, p.ID) {
		return ErrParticipantNotFound.WithContext("participant", uint64(p.ID))
	}
	if _, ok := c.partials[p.ID]; ok {
		return ErrDuplicateParticipants.WithContext("participant", uint64(p.ID))
	}
	if X, ok := c.publicShares[p.ID]; ok && !VerifyPartial(c.curve, p, c.nonces[p.ID], X, c.challenge) {
		err := ErrInvalidPartialSignature.WithContext("participant", uint64(p.ID))
		c.audit.OnValidationFailure(c.event(AuditEventValidationFailure, ReasonProtocolError).
			WithError(err).
			BuildValidationFailure("partial", err.Error(), map[string]interface{}{"participant": uint64(p.ID)}))
		c.logger.Warn("partial signature rejected", zap.Stringer("participant", p.ID))
		return err
	}

	c.partials[p.ID] = p
	c.logger.Debug("partial signature received", zap.Stringer("participant", p.ID))

	if len(c.partials) == len(c.ids) {
		c.transition(StatePartialsCollected)
	}
	return nil
}

// CollectPartials consumes partials from ch until every pinned participant
// has contributed. It returns early on ctx cancellation, on an invalid
// partial, or with ErrInsufficientSigners if ch closes first.
func (c *Coordinator) CollectPartials(ctx context.Context, ch <-chan *PartialSignature) error {
	for {
		if c.State() == StatePartialsCollected {
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("collect partials: %w", ctx.Err())
		case p, ok := <-ch:
			if !ok {
				c.mu.Lock()
				got := len(c.partials)
				c.mu.Unlock()
				return ErrInsufficientSigners.
					WithContext("expected", len(c.ids)).
					WithContext("received", got)
			}
			if err := c.AddPartial(p); err != nil {
				return err
			}
		}
	}
}

// Finalize interpolates the collected partials into the final signature
// and verifies it. A rejected signature is reported through verified, not
// as an error; either way the session reaches a terminal state.
func (c *Coordinator) Finalize() (sig *Signature, verified bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.expect("finalize", StatePartialsCollected); err != nil {
		return nil, false, err
	}

	partials := make([]*PartialSignature, 0, len(c.ids))
	for _, id := range c.ids {
		partials = append(partials, c.partials[id])
	}

	sig, err = FinalizeSignatureLagrange(c.curve, partials, c.nonce)
	if err != nil {
		c.audit.OnError(c.event(AuditEventError, ReasonProtocolError).WithError(err).Build())
		return nil, false, err
	}
	c.signature = sig
	c.transition(StateFinalized)

	verified = sig.Verify(c.curve, c.message, c.publicKey)
	builder := c.event(AuditEventSessionFinalized, ReasonSigningRequest)
	if verified {
		c.transition(StateVerified)
	} else {
		c.transition(StateRejected)
		builder = builder.WithError(fmt.Errorf("signature failed verification"))
	}
	c.audit.OnSessionFinalized(builder.BuildSessionFinalized(c.state, sig.R, time.Since(c.started)))

	return sig, verified, nil
}

// Signature returns the final signature once the session is terminal.
func (c *Coordinator) Signature() (*Signature, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.signature, c.signature != nil
}

// Signer is one participant's local view of a signing session. It holds at
// most one live nonce; committing again discards the previous one.
type Signer struct {
	curve       Curve
	participant *Participant

	mu    sync.Mutex
	nonce *NonceState
}

// NewSigner wraps participant for signing
func NewSigner(curve Curve, participant *Participant) *Signer {
	return &Signer{curve: curve, participant: participant}
}

// ID returns the participant id
func (s *Signer) ID() ParticipantID {
	return s.participant.ID
}

// Commit draws a fresh nonce and returns (id, R_i) for round one.
func (s *Signer) Commit(rng io.Reader) (PublicShare, error) {
	nonce, err := NewNonce(s.curve, rng)
	if err != nil {
		return PublicShare{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.nonce != nil {
		s.nonce.Discard()
	}
	s.nonce = nonce
	return PublicShare{ID: s.participant.ID, Point: nonce.Point()}, nil
}

// Sign answers challenge c with the committed nonce. A second call without
// a new Commit fails with ErrNonceReused.
func (s *Signer) Sign(c Scalar) (*PartialSignature, error) {
	s.mu.Lock()
	nonce := s.nonce
	s.mu.Unlock()

	if nonce == nil {
		return nil, ErrInvalidState.
			WithContext("participant", uint64(s.participant.ID)).
			WithDetails("no nonce committed")
	}
	return nonce.Sign(s.participant, c)
}

// RunSigningSession runs both protocol rounds in-process. Nonces are drawn
// from rng in signer order so a deterministic rng gives reproducible
// output; partial signatures are computed concurrently.
func RunSigningSession(
	ctx context.Context,
	curve Curve,
	rng io.Reader,
	signers []*Signer,
	publicKey Point,
	msg []byte,
	threshold int,
	opts ...CoordinatorOption,
) (*Signature, bool, error) {
	ids := make([]ParticipantID, len(signers))
	for i, s := range signers {
		ids[i] = s.ID()
	}

	coordinator, err := NewCoordinator(curve, publicKey, msg, ids, threshold, opts...)
	if err != nil {
		return nil, false, err
	}

	// round one
	for _, s := range signers {
		commitment, err := s.Commit(rng)
		if err != nil {
			return nil, false, fmt.Errorf("signer %d commit: %w", s.ID(), err)
		}
		if err := coordinator.AddNoncePoint(commitment.ID, commitment.Point); err != nil {
			return nil, false, err
		}
	}
	if _, err := coordinator.AggregateNonce(); err != nil {
		return nil, false, err
	}
	challenge, err := coordinator.ComputeChallenge()
	if err != nil {
		return nil, false, err
	}

	// round two
	partials := make(chan *PartialSignature, len(signers))
	pool, gctx := errgroup.WithContext(ctx)
	for _, s := range signers {
		s := s
		pool.Go(func() error {
			p, err := s.Sign(challenge)
			if err != nil {
				return fmt.Errorf("signer %d sign: %w", s.ID(), err)
			}
			select {
			case partials <- p:
				return nil
			case <-gctx.Done():
				return gctx.Err()
			}
		})
	}
	pool.Go(func() error {
		return coordinator.CollectPartials(gctx, partials)
	})
	if err := pool.Wait(); err != nil {
		return nil, false, err
	}

	return coordinator.Finalize()
}
