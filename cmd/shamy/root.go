package main

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/canopy-network/shamy"
)

// app carries what every subcommand resolves once in PersistentPreRunE.
type app struct {
	settings *viper.Viper
	logger   *zap.Logger
	curve    shamy.Curve
}

func newRootCmd() *cobra.Command {
	a := &app{
		settings: newSettings(),
		logger:   zap.NewNop(),
	}

	root := &cobra.Command{
		Use:   "shamy",
		Short: "shamy",
		Long: `shamy is a dealer-based threshold Schnorr toolkit.

It splits a key into Shamir shares, issues Feldman commitments and
walks through the nonce, challenge, partial signature and combine
steps of a t-of-n signing session.

Supported curves: secp256k1, ed25519, babyjubjub.`,
		Args:              NoExtraArgs,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	root.PersistentFlags().String("curve", string(shamy.Secp256k1), "curve: secp256k1, ed25519 or babyjubjub")
	root.PersistentFlags().Bool("debug", false, "run in debug mode")
	root.PersistentFlags().String("config", "", "optional config file (yaml, json or toml)")

	root.AddCommand(newKeygenCmd(a))
	root.AddCommand(newSchnorrCmd(a))
	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if err := a.settings.BindPFlags(cmd.Flags()); err != nil {
		return errors.Wrap(err, "bind flags")
	}
	if err := loadConfigFile(a.settings, a.settings.GetString("config")); err != nil {
		return err
	}

	logger, err := newLogger(a.settings.GetBool("debug"))
	if err != nil {
		return err
	}
	a.logger = logger

	curve, err := curveFromSettings(a.settings)
	if err != nil {
		return errors.Wrap(err, "select curve")
	}
	a.curve = curve

	a.logger.Debug("settings loaded",
		zap.String("command", cmd.CommandPath()),
		zap.String("curve", curve.Name()),
	)
	return nil
}

// NoExtraArgs rejects positional arguments.
func NoExtraArgs(cmd *cobra.Command, args []string) error {
	if len(args) != 0 {
		return errors.Errorf("unknown args: %v", args)
	}
	return nil
}

// Execute runs the command tree against os.Args.
func Execute() error {
	return newRootCmd().Execute()
}
