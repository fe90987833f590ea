package main

import (
	"encoding/hex"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/canopy-network/shamy"
)

// EnvPrefix prefixes every environment override, e.g. SHAMY_CURVE.
const EnvPrefix = "SHAMY"

func newSettings() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// loadConfigFile merges a yaml/json/toml file into v. Flags still win.
func loadConfigFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return errors.Wrapf(err, "read config `%s`", path)
	}
	return nil
}

func newLogger(debug bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.DisableStacktrace = true
	cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	if debug {
		cfg.Level.SetLevel(zap.DebugLevel)
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, errors.Wrap(err, "build logger")
	}
	return logger.Named("shamy"), nil
}

func curveFromSettings(v *viper.Viper) (shamy.Curve, error) {
	name := strings.ToLower(strings.TrimSpace(v.GetString("curve")))
	if name == "" {
		name = string(shamy.Secp256k1)
	}
	return shamy.NewCurve(shamy.CurveType(name))
}

// requireSettings fails on the first key that has no value from flags,
// environment or config file.
func requireSettings(v *viper.Viper, keys ...string) error {
	for _, key := range keys {
		if !v.IsSet(key) || isEmptySetting(v.Get(key)) {
			return errors.Errorf("`--%s` cannot be empty", key)
		}
	}
	return nil
}

func isEmptySetting(value interface{}) bool {
	switch val := value.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case []string:
		return len(val) == 0
	}
	return false
}

func parseSeed(text string) ([]byte, error) {
	seed, err := hex.DecodeString(strings.TrimPrefix(text, "0x"))
	if err != nil {
		return nil, errors.Wrap(shamy.ErrInvalidHexEncoding.WithCause(err), "parse seed")
	}
	if len(seed) < 16 {
		return nil, errors.Errorf("seed must be at least 16 bytes, got %d", len(seed))
	}
	return seed, nil
}
