package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/canopy-network/shamy"
)

const testSeed = "000102030405060708090a0b0c0d0e0f"

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(new(bytes.Buffer))
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

// values returns, in order, the text after every line starting with prefix.
func values(out, prefix string) []string {
	var vals []string
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, prefix) {
			vals = append(vals, strings.TrimSpace(strings.TrimPrefix(line, prefix)))
		}
	}
	return vals
}

func TestCLISigningFlow(t *testing.T) {
	for _, curve := range []string{"secp256k1", "ed25519", "babyjubjub"} {
		t.Run(curve, func(t *testing.T) {
			msg := "hello threshold"

			var shares, publicKey []string
			t.Run("keygen", func(t *testing.T) {
				out, err := executeCommand(t, "--curve", curve, "keygen", "-t", "2", "-n", "3", "--seed", testSeed)
				require.NoError(t, err)
				shares = values(out, "x_i = ")
				publicKey = values(out, "Public key X = ")
				require.Len(t, shares, 3)
				require.Len(t, publicKey, 1)
				require.Len(t, values(out, "Commitment "), 2)
				require.Len(t, values(out, "[Participant ID:"), 3)
			})

			// participants 1 and 3 sign
			signers := []string{"1", "3"}
			nonces := make([]string, len(signers))
			noncePoints := make([]string, len(signers))
			t.Run("nonce generate", func(t *testing.T) {
				for i := range signers {
					out, err := executeCommand(t, "--curve", curve, "schnorr", "nonce", "generate")
					require.NoError(t, err)
					nonces[i] = values(out, "r(nonce): ")[0]
					noncePoints[i] = values(out, "R(G * r): ")[0]

					out, err = executeCommand(t, "--curve", curve, "schnorr", "nonce", "verify", noncePoints[i])
					require.NoError(t, err)
					require.Contains(t, out, "Nonce is valid")
				}
			})

			var R, challenge string
			t.Run("challenge", func(t *testing.T) {
				out, err := executeCommand(t, "--curve", curve, "schnorr", "challenge",
					"-m", msg,
					"-i", strings.Join(signers, ","),
					"-n", strings.Join(noncePoints, ","),
					"-p", publicKey[0])
				require.NoError(t, err)
				R = values(out, "Aggregated nonce R: ")[0]
				challenge = values(out, "Challenge: ")[0]
			})

			partials := make([]string, len(signers))
			t.Run("sign", func(t *testing.T) {
				shareOf := map[string]string{"1": shares[0], "3": shares[2]}
				for i, id := range signers {
					out, err := executeCommand(t, "--curve", curve, "schnorr", "sign",
						"-c", challenge, "-s", shareOf[id], "-i", id, "-n", nonces[i])
					require.NoError(t, err)
					partials[i] = values(out, "Signature: ")[0]
				}
			})

			var s string
			t.Run("combine", func(t *testing.T) {
				out, err := executeCommand(t, "--curve", curve, "schnorr", "combine",
					"--ids", strings.Join(signers, ","),
					"--signatures", strings.Join(partials, ","),
					"--nonce", R)
				require.NoError(t, err)
				s = values(out, "Interpolated signature: ")[0]
			})

			t.Run("verify", func(t *testing.T) {
				out, err := executeCommand(t, "--curve", curve, "schnorr", "verify",
					"-m", msg, "-s", s, "-p", publicKey[0], "-n", R)
				require.NoError(t, err)
				require.Contains(t, out, "Signature is valid")

				out, err = executeCommand(t, "--curve", curve, "schnorr", "verify",
					"-m", msg+"!", "-s", s, "-p", publicKey[0], "-n", R)
				require.NoError(t, err)
				require.Contains(t, out, "Signature is invalid")
			})
		})
	}
}

func TestCLIKeygenSeedAndOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shares.txt")

	first, err := executeCommand(t, "keygen", "-t", "2", "-n", "4", "--seed", testSeed, "-o", path)
	require.NoError(t, err)
	second, err := executeCommand(t, "keygen", "-t", "2", "-n", "4", "--seed", testSeed)
	require.NoError(t, err)
	require.Equal(t, first, second)

	written, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, first, string(written))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	third, err := executeCommand(t, "keygen", "-t", "2", "-n", "4")
	require.NoError(t, err)
	require.NotEqual(t, first, third)
}

func TestCLIKeygenOutputVerifies(t *testing.T) {
	out, err := executeCommand(t, "keygen", "-t", "3", "-n", "5", "--seed", testSeed)
	require.NoError(t, err)

	curve := shamy.NewSecp256k1Curve()

	// "Commitment j = <hex>"
	var raw []string
	for _, line := range values(out, "Commitment ") {
		raw = append(raw, strings.TrimSpace(line[strings.Index(line, "=")+1:]))
	}
	commitments, err := shamy.HexToPoints(curve, raw)
	require.NoError(t, err)
	require.Len(t, commitments, 3)

	for i, text := range values(out, "x_i = ") {
		share, err := shamy.HexToScalar(curve, text)
		require.NoError(t, err)
		require.True(t, shamy.VerifyShare(curve, shamy.ParticipantID(i+1), share, commitments))
	}
}

func TestCLIErrors(t *testing.T) {
	for _, tc := range []struct {
		name string
		args []string
	}{
		{"unknown curve", []string{"--curve", "p256", "keygen"}},
		{"threshold above n", []string{"keygen", "-t", "4", "-n", "3"}},
		{"threshold of one", []string{"keygen", "-t", "1", "-n", "3"}},
		{"short seed", []string{"keygen", "--seed", "00"}},
		{"extra args", []string{"keygen", "foo"}},
		{"missing flags", []string{"schnorr", "sign", "-c", "00"}},
		{"id zero", []string{"schnorr", "combine", "-i", "0,1", "-s", "01,02", "-n",
			"0279be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798"}},
		{"duplicate ids", []string{"schnorr", "combine", "-i", "1,1", "-s", "01,02", "-n",
			"0279be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798"}},
		{"length mismatch", []string{"schnorr", "challenge", "-m", "x", "-i", "1,2", "-n", "aa", "-p", "bb"}},
		{"bad nonce", []string{"schnorr", "nonce", "verify", "zz"}},
		{"off curve nonce", []string{"schnorr", "nonce", "verify", "02" + strings.Repeat("ff", 32)}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := executeCommand(t, tc.args...)
			require.Error(t, err)
		})
	}
}

func TestRunSignRejectsBadScalars(t *testing.T) {
	curve := shamy.NewSecp256k1Curve()
	good := strings.Repeat("00", 31) + "01"

	err := runSign(new(bytes.Buffer), curve, "abc", good, "1", good)
	require.ErrorIs(t, err, shamy.ErrInvalidHexEncoding)

	err = runSign(new(bytes.Buffer), curve, good, "0102", "1", good)
	require.ErrorIs(t, err, shamy.ErrInvalidScalarLength)

	err = runSign(new(bytes.Buffer), curve, good, good, "0", good)
	require.ErrorIs(t, err, shamy.ErrDegenerateParticipantSet)
}

func TestRunKeygenLogsAdvisories(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)

	err := runKeygen(new(bytes.Buffer), logger, shamy.NewEd25519Curve(), keygenArgs{
		threshold: 3,
		numShares: 3,
		seed:      testSeed,
	})
	require.NoError(t, err)

	require.NotZero(t, logs.FilterMessage("threshold choice").Len())
	require.Equal(t, 1, logs.FilterMessage("using deterministic seed, output is reproducible").Len())

	audit := logs.FilterMessage("keygen").All()
	require.Len(t, audit, 1)
	require.Equal(t, "ed25519", audit[0].ContextMap()["curve"])
}

func TestEnvOverridesCurve(t *testing.T) {
	t.Setenv("SHAMY_CURVE", "ed25519")

	out, err := executeCommand(t, "schnorr", "nonce", "generate")
	require.NoError(t, err)

	point := values(out, "R(G * r): ")[0]
	// ed25519 points are 32 bytes; secp256k1 compressed points are 33
	require.Len(t, point, 64)
}
