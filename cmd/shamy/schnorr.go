package main

import (
	"crypto/rand"
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/canopy-network/shamy"
)

func newSchnorrCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schnorr",
		Short: "threshold schnorr signing steps",
		Args:  NoExtraArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(
		newSignCmd(a),
		newVerifyCmd(a),
		newCombineCmd(a),
		newChallengeCmd(a),
		newNonceCmd(a),
	)
	return cmd
}

func newSignCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sign",
		Short: "compute a partial signature s_i = r_i + c·x_i",
		Args:  NoExtraArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSettings(a.settings, "challenge", "share", "id", "nonce"); err != nil {
				return err
			}
			return runSign(cmd.OutOrStdout(), a.curve,
				a.settings.GetString("challenge"),
				a.settings.GetString("share"),
				a.settings.GetString("id"),
				a.settings.GetString("nonce"),
			)
		},
	}
	cmd.Flags().StringP("challenge", "c", "", "challenge c (hex)")
	cmd.Flags().StringP("share", "s", "", "secret share x_i (hex)")
	cmd.Flags().StringP("id", "i", "", "participant id")
	cmd.Flags().StringP("nonce", "n", "", "secret nonce r_i (hex)")
	return cmd
}

func newVerifyCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "verify a signature (R, s) against a public key",
		Args:  NoExtraArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSettings(a.settings, "message", "signature", "public-key", "nonce"); err != nil {
				return err
			}
			return runVerify(cmd.OutOrStdout(), a.curve,
				a.settings.GetString("message"),
				a.settings.GetString("signature"),
				a.settings.GetString("public-key"),
				a.settings.GetString("nonce"),
			)
		},
	}
	cmd.Flags().StringP("message", "m", "", "signed message")
	cmd.Flags().StringP("signature", "s", "", "signature scalar s (hex)")
	cmd.Flags().StringP("public-key", "p", "", "group public key X (hex)")
	cmd.Flags().StringP("nonce", "n", "", "aggregated nonce R (hex)")
	return cmd
}

func newCombineCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "combine",
		Short: "interpolate partial signatures into s",
		Long: `interpolate partial signatures into s

ids and signatures are matched by position.

	shamy schnorr combine -i 1,3 -s <s_1>,<s_3> -n <R>
`,
		Args: NoExtraArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSettings(a.settings, "ids", "signatures", "nonce"); err != nil {
				return err
			}
			return runCombine(cmd.OutOrStdout(), a.curve,
				a.settings.GetStringSlice("ids"),
				a.settings.GetStringSlice("signatures"),
				a.settings.GetString("nonce"),
			)
		},
	}
	cmd.Flags().StringSliceP("ids", "i", nil, "participant ids")
	cmd.Flags().StringSliceP("signatures", "s", nil, "partial signatures s_i (hex)")
	cmd.Flags().StringP("nonce", "n", "", "aggregated nonce R (hex), checked for validity")
	return cmd
}

func newChallengeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "challenge",
		Short: "aggregate nonce points and compute the challenge c",
		Long: `aggregate nonce points and compute the challenge c

ids and nonces are matched by position. Prints the aggregated nonce R
and c = H(R || X || message).
`,
		Args: NoExtraArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireSettings(a.settings, "message", "ids", "nonces", "public-key"); err != nil {
				return err
			}
			return runChallenge(cmd.OutOrStdout(), a.curve,
				a.settings.GetString("message"),
				a.settings.GetStringSlice("ids"),
				a.settings.GetStringSlice("nonces"),
				a.settings.GetString("public-key"),
			)
		},
	}
	cmd.Flags().StringP("message", "m", "", "message to sign")
	cmd.Flags().StringSliceP("ids", "i", nil, "participant ids")
	cmd.Flags().StringSliceP("nonces", "n", nil, "nonce points R_i (hex)")
	cmd.Flags().StringP("public-key", "p", "", "group public key X (hex)")
	return cmd
}

func newNonceCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nonce",
		Short: "nonce utilities",
		Args:  NoExtraArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "generate",
		Short: "draw a fresh nonce r and its point R = G·r",
		Args:  NoExtraArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNonceGenerate(cmd.OutOrStdout(), a.curve, rand.Reader)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "verify NONCE",
		Short: "check that a nonce point decodes on the curve",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNonceVerify(cmd.OutOrStdout(), a.curve, args[0])
		},
	})
	return cmd
}

func runSign(w io.Writer, curve shamy.Curve, challengeHex, shareHex, idText, nonceHex string) error {
	id, err := shamy.ParseParticipantID(idText)
	if err != nil {
		return errors.Wrap(err, "parse id")
	}
	c, err := shamy.HexToScalar(curve, challengeHex)
	if err != nil {
		return errors.Wrap(err, "parse challenge")
	}
	share, err := shamy.HexToScalar(curve, shareHex)
	if err != nil {
		return errors.Wrap(err, "parse share")
	}
	r, err := shamy.HexToScalar(curve, nonceHex)
	if err != nil {
		share.Zeroize()
		return errors.Wrap(err, "parse nonce")
	}

	participant := shamy.NewParticipant(curve, id, share)
	partial := shamy.PartialSign(participant, r, c)
	participant.Zeroize()
	r.Zeroize()

	_, err = fmt.Fprintf(w, "Signature: %s\n", shamy.ScalarToHex(partial.S))
	return err
}

func runVerify(w io.Writer, curve shamy.Curve, message, sigHex, publicKeyHex, nonceHex string) error {
	s, err := shamy.HexToScalar(curve, sigHex)
	if err != nil {
		return errors.Wrap(err, "parse signature")
	}
	X, err := shamy.HexToPoint(curve, publicKeyHex)
	if err != nil {
		return errors.Wrap(err, "parse public key")
	}
	R, err := shamy.HexToPoint(curve, nonceHex)
	if err != nil {
		return errors.Wrap(err, "parse nonce")
	}

	sig := &shamy.Signature{R: R, S: s}
	if sig.Verify(curve, []byte(message), X) {
		_, err = fmt.Fprintln(w, "Signature is valid")
	} else {
		_, err = fmt.Fprintln(w, "Signature is invalid")
	}
	return err
}

func runCombine(w io.Writer, curve shamy.Curve, idTexts, sigHexes []string, nonceHex string) error {
	if len(idTexts) != len(sigHexes) {
		return errors.Wrapf(shamy.ErrDegenerateParticipantSet,
			"got %d ids but %d signatures", len(idTexts), len(sigHexes))
	}
	ids, err := parseIDs(idTexts)
	if err != nil {
		return err
	}
	R, err := shamy.HexToPoint(curve, nonceHex)
	if err != nil {
		return errors.Wrap(err, "parse nonce")
	}

	partials := make([]*shamy.PartialSignature, len(ids))
	for i, text := range sigHexes {
		s, err := shamy.HexToScalar(curve, text)
		if err != nil {
			return errors.Wrapf(err, "parse signature %d", i)
		}
		partials[i] = &shamy.PartialSignature{ID: ids[i], S: s}
	}

	sig, err := shamy.FinalizeSignatureLagrange(curve, partials, R)
	if err != nil {
		return errors.Wrap(err, "combine")
	}
	_, err = fmt.Fprintf(w, "Interpolated signature: %s\n", shamy.ScalarToHex(sig.S))
	return err
}

func runChallenge(w io.Writer, curve shamy.Curve, message string, idTexts, nonceHexes []string, publicKeyHex string) error {
	if len(idTexts) != len(nonceHexes) {
		return errors.Wrapf(shamy.ErrDegenerateParticipantSet,
			"got %d ids but %d nonces", len(idTexts), len(nonceHexes))
	}
	ids, err := parseIDs(idTexts)
	if err != nil {
		return err
	}
	points, err := shamy.HexToPoints(curve, nonceHexes)
	if err != nil {
		return errors.Wrap(err, "parse nonces")
	}
	X, err := shamy.HexToPoint(curve, publicKeyHex)
	if err != nil {
		return errors.Wrap(err, "parse public key")
	}

	nonces := make([]shamy.PublicShare, len(ids))
	for i := range ids {
		nonces[i] = shamy.PublicShare{ID: ids[i], Point: points[i]}
	}
	R, err := shamy.AggregateNonce(curve, nonces, ids)
	if err != nil {
		return errors.Wrap(err, "aggregate nonce")
	}
	c, err := shamy.ComputeChallenge(curve, R, X, []byte(message))
	if err != nil {
		return errors.Wrap(err, "compute challenge")
	}

	_, err = fmt.Fprintf(w, "Aggregated nonce R: %s\nChallenge: %s\n",
		shamy.PointToHex(R), shamy.ScalarToHex(c))
	return err
}

func runNonceGenerate(w io.Writer, curve shamy.Curve, rng io.Reader) error {
	r, err := shamy.GenerateNonce(curve, rng)
	if err != nil {
		return errors.Wrap(err, "generate nonce")
	}
	defer r.Zeroize()

	_, err = fmt.Fprintf(w, "r(nonce): %s\nR(G * r): %s\n",
		shamy.ScalarToHex(r), shamy.PointToHex(shamy.ComputeNoncePoint(curve, r)))
	return err
}

func runNonceVerify(w io.Writer, curve shamy.Curve, nonceHex string) error {
	if _, err := shamy.HexToPoint(curve, nonceHex); err != nil {
		return errors.Wrap(err, "nonce is invalid")
	}
	_, err := fmt.Fprintln(w, "Nonce is valid")
	return err
}

func parseIDs(texts []string) ([]shamy.ParticipantID, error) {
	ids := make([]shamy.ParticipantID, len(texts))
	for i, text := range texts {
		id, err := shamy.ParseParticipantID(text)
		if err != nil {
			return nil, errors.Wrapf(err, "parse id %d", i)
		}
		ids[i] = id
	}
	if err := shamy.ValidateParticipantSet(ids); err != nil {
		return nil, errors.Wrap(err, "participant ids")
	}
	return ids, nil
}
