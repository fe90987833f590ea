package main

import (
	"crypto/rand"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/canopy-network/shamy"
)

type keygenArgs struct {
	threshold int
	numShares int
	output    string
	seed      string
}

func newKeygenCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "deal a fresh t-of-n key",
		Long: `deal a fresh t-of-n key

prints every participant's share x_i and public share X_i, the group
public key X and the Feldman commitments.

	shamy keygen -t 2 -n 3
	shamy keygen -t 2 -n 3 -o shares.txt
`,
		Args: NoExtraArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeygen(cmd.OutOrStdout(), a.logger, a.curve, keygenArgs{
				threshold: a.settings.GetInt("threshold"),
				numShares: a.settings.GetInt("num-shares"),
				output:    a.settings.GetString("output"),
				seed:      a.settings.GetString("seed"),
			})
		},
	}

	cmd.Flags().IntP("threshold", "t", 2, "signers needed to produce a signature")
	cmd.Flags().IntP("num-shares", "n", 3, "number of shares to issue")
	cmd.Flags().StringP("output", "o", "", "also write the result to this file")
	cmd.Flags().String("seed", "", "hex seed for reproducible output, never use for real keys")
	return cmd
}

func runKeygen(w io.Writer, logger *zap.Logger, curve shamy.Curve, args keygenArgs) error {
	assessment := shamy.NewDefaultThresholdValidator().Assess(args.numShares, args.threshold)
	for _, msg := range assessment.Warnings {
		logger.Warn("threshold choice", zap.String("warning", msg))
	}
	for _, msg := range assessment.Recommendations {
		logger.Info("threshold choice", zap.String("recommendation", msg))
	}

	var rng io.Reader = rand.Reader
	if args.seed != "" {
		seed, err := parseSeed(args.seed)
		if err != nil {
			return err
		}
		reader := shamy.NewDeterministicReader(seed, []byte("shamy keygen"))
		defer reader.Zeroize()
		shamy.ZeroizeBytes(seed)
		rng = reader
		logger.Warn("using deterministic seed, output is reproducible")
	}

	start := time.Now()
	out, err := shamy.ShamirKeygen(curve, rng, args.numShares, args.threshold)
	if err != nil {
		return errors.Wrap(err, "keygen")
	}
	defer out.Zeroize()

	for _, p := range out.Participants {
		if !shamy.VerifyParticipant(curve, p, out.Commitments) {
			return errors.Errorf("share for participant %s failed commitment check", p.ID)
		}
	}

	if args.output != "" {
		fp, err := os.OpenFile(args.output, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
		if err != nil {
			return errors.Wrapf(err, "open output `%s`", args.output)
		}
		defer fp.Close()
		w = io.MultiWriter(w, fp)
	}

	if err := writeKeygen(w, out); err != nil {
		return errors.Wrap(err, "write keygen")
	}

	shamy.NewZapAuditHandler(logger).OnKeygen(
		shamy.NewAuditEventBuilder(shamy.AuditEventKeygen, shamy.ReasonDealerSetup).
			WithCurve(curve.Name()).
			WithThreshold(out.Threshold).
			WithMetadata("security_level", string(assessment.SecurityLevel)).
			BuildKeygen(out.PublicKey, len(out.Participants), time.Since(start)),
	)
	return nil
}

func writeKeygen(w io.Writer, out *shamy.KeygenOutput) error {
	for _, p := range out.Participants {
		if _, err := fmt.Fprintf(w, "[Participant ID:%s]\nx_i = %s\nX_i = %s\n\n",
			p.ID, shamy.ScalarToHex(p.Share), shamy.PointToHex(p.PublicShare)); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(w, "Public key X = %s\n", shamy.PointToHex(out.PublicKey)); err != nil {
		return err
	}
	for j, c := range out.Commitments {
		if _, err := fmt.Fprintf(w, "Commitment %d = %s\n", j, shamy.PointToHex(c)); err != nil {
			return err
		}
	}
	return nil
}
