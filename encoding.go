package shamy

import (
	"encoding/hex"
	"strings"
)

// ScalarToHex encodes s as fixed-width big-endian hex.
func ScalarToHex(s Scalar) string {
	return hex.EncodeToString(s.Bytes())
}

// HexToScalar decodes a hex scalar. The decoded length must equal the
// curve's scalar width and the value must be canonical.
func HexToScalar(curve Curve, text string) (Scalar, error) {
	raw, err := decodeHex(text)
	if err != nil {
		return nil, err
	}
	defer ZeroizeBytes(raw)

	if len(raw) != curve.ScalarSize() {
		return nil, ErrInvalidScalarLength.
			WithContext("expected", curve.ScalarSize()).
			WithContext("length", len(raw))
	}
	return curve.ScalarFromBytes(raw)
}

// PointToHex encodes p in its compressed display form.
func PointToHex(p Point) string {
	return hex.EncodeToString(p.CompressedBytes())
}

// HexToPoint decodes a hex point in any encoding the curve accepts.
func HexToPoint(curve Curve, text string) (Point, error) {
	raw, err := decodeHex(text)
	if err != nil {
		return nil, err
	}
	return curve.PointFromBytes(raw)
}

// HexToPoints decodes every element of texts, stopping at the first failure.
func HexToPoints(curve Curve, texts []string) ([]Point, error) {
	points := make([]Point, 0, len(texts))
	for i, text := range texts {
		p, err := HexToPoint(curve, text)
		if err != nil {
			return nil, ErrInvalidPointEncoding.WithContext("index", i).WithCause(err)
		}
		points = append(points, p)
	}
	return points, nil
}

func decodeHex(text string) ([]byte, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(text), "0x"))
	if err != nil {
		return nil, ErrInvalidHexEncoding.WithCause(err)
	}
	return raw, nil
}
