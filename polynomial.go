package shamy

import (
	"fmt"
	"io"
)

// Polynomial is the dealer's secret-sharing polynomial of degree t-1.
// Coefficient 0 is the secret. It exists only for the duration of key
// generation and must be zeroized afterwards.
type Polynomial struct {
	curve        Curve
	coefficients []Scalar
}

// NewRandomPolynomial returns t coefficients: secret followed by t-1
// uniformly random scalars drawn from rng.
func NewRandomPolynomial(curve Curve, rng io.Reader, secret Scalar, t int) (*Polynomial, error) {
	if t < 1 {
		return nil, ErrInvalidThresholdParameters.WithContext("threshold", t)
	}

	coefficients := make([]Scalar, t)
	coefficients[0] = secret

	for i := 1; i < t; i++ {
		coeff, err := curve.ScalarRandom(rng)
		if err != nil {
			ZeroizeScalarSlice(coefficients[1:i])
			return nil, fmt.Errorf("failed to generate coefficient %d: %w", i, err)
		}
		coefficients[i] = coeff
	}

	return &Polynomial{
		curve:        curve,
		coefficients: coefficients,
	}, nil
}

// Evaluate evaluates the polynomial at the scalar form of id.
func (p *Polynomial) Evaluate(id ParticipantID) Scalar {
	return p.EvaluateAt(id.ToScalar(p.curve))
}

// EvaluateAt evaluates the polynomial at x using Horner's method.
func (p *Polynomial) EvaluateAt(x Scalar) Scalar {
	if len(p.coefficients) == 0 {
		return p.curve.ScalarZero()
	}

	// f(x) = a0 + x(a1 + x(a2 + ...))
	result := p.coefficients[len(p.coefficients)-1]
	for i := len(p.coefficients) - 2; i >= 0; i-- {
		result = result.Mul(x).Add(p.coefficients[i])
	}
	return result
}

// Commitments returns the Feldman commitment G·a_j for every coefficient.
func (p *Polynomial) Commitments() []Point {
	commitments := make([]Point, len(p.coefficients))
	for j, coeff := range p.coefficients {
		commitments[j] = CalculateCommitment(p.curve, coeff)
	}
	return commitments
}

// Degree returns the degree of the polynomial
func (p *Polynomial) Degree() int {
	return len(p.coefficients) - 1
}

// Zeroize clears every coefficient, the secret included.
func (p *Polynomial) Zeroize() {
	ZeroizeScalarSlice(p.coefficients)
	for i := range p.coefficients {
		p.coefficients[i] = nil
	}
	p.coefficients = nil
}
