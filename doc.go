// Package shamy implements dealer-based threshold Schnorr signatures.
//
// A trusted dealer splits a secret key among n participants with Shamir
// secret sharing and publishes Feldman commitments to the sharing
// polynomial. Any t participants can then produce a Schnorr signature that
// verifies under the group public key, without the key or the aggregated
// nonce secret ever existing in one place.
//
// # Key Generation
//
// [ShamirKeygen] returns every participant's share x_i and public share
// X_i = G·x_i, the group key X and the commitments C_j = G·a_j. Each
// participant checks its share with [VerifyShare].
//
// # Threshold Signing
//
// With an agreed signer set S of at least t ids:
//
//  1. Each signer draws a fresh nonce r_i and publishes R_i = G·r_i.
//  2. The coordinator aggregates R = Σ λ_i·R_i with [AggregateNonce] and
//     computes c = H(R || X || m) with [ComputeChallenge].
//  3. Each signer returns s_i = r_i + c·x_i ([PartialSign] or
//     [NonceState.Sign], which refuses a second use of the same nonce).
//  4. The coordinator interpolates s = Σ λ_i·s_i with
//     [FinalizeSignatureLagrange] over the same set S.
//
// [Coordinator] pins S for the whole session and enforces the order of
// these steps; [RunSigningSession] runs both rounds in-process.
//
// # Example
//
//	curve := shamy.NewSecp256k1Curve()
//	out, _ := shamy.ShamirKeygen(curve, rand.Reader, 3, 2)
//	p1, _ := out.Participant(1)
//	p3, _ := out.Participant(3)
//	signers := []*shamy.Signer{shamy.NewSigner(curve, p1), shamy.NewSigner(curve, p3)}
//	sig, ok, err := shamy.RunSigningSession(ctx, curve, rand.Reader,
//		signers, out.PublicKey, msg, out.Threshold)
//
// Supported groups are secp256k1, edwards25519 and Baby Jubjub.
package shamy
