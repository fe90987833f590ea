package shamy

import (
	"fmt"
	"math"
)

// MinThreshold is the smallest threshold accepted at key generation.
const MinThreshold = 2

// ValidateThresholdParameters enforces 2 <= t <= n.
func ValidateThresholdParameters(n, t int) error {
	if t < MinThreshold {
		return ErrInvalidThresholdParameters.
			WithContext("threshold", t).
			WithDetails(fmt.Sprintf("threshold %d is below the minimum of %d", t, MinThreshold))
	}
	if t > n {
		return ErrInvalidThresholdParameters.
			WithContext("threshold", t).
			WithContext("participants", n).
			WithDetails(fmt.Sprintf("threshold %d exceeds participant count %d", t, n))
	}
	return nil
}

// ValidateParticipantSet rejects empty sets, id 0 and duplicate ids.
func ValidateParticipantSet(ids []ParticipantID) error {
	if len(ids) == 0 {
		return ErrDegenerateParticipantSet.WithDetails("participant set is empty")
	}

	seen := make(map[ParticipantID]struct{}, len(ids))
	for _, id := range ids {
		if id == 0 {
			return ErrDegenerateParticipantSet.WithDetails("participant id 0 is reserved")
		}
		if _, ok := seen[id]; ok {
			return ErrDegenerateParticipantSet.
				WithContext("participant", uint64(id)).
				WithCause(ErrDuplicateParticipants)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// SecurityLevel represents the security level of threshold parameters
type SecurityLevel string

const (
	SecurityLevelLow    SecurityLevel = "low"
	SecurityLevelMedium SecurityLevel = "medium"
	SecurityLevelHigh   SecurityLevel = "high"
)

// DefaultByzantineRatio is the 2/3 ratio used for Byzantine fault tolerance.
const DefaultByzantineRatio = 2.0 / 3.0

// ValidationResult contains the result of an advisory parameter assessment
type ValidationResult struct {
	Valid                   bool          `json:"valid"`
	SecurityLevel           SecurityLevel `json:"security_level"`
	ByzantineFaultTolerance bool          `json:"byzantine_fault_tolerance"`
	Warnings                []string      `json:"warnings,omitempty"`
	Errors                  []string      `json:"errors,omitempty"`
	Recommendations         []string      `json:"recommendations,omitempty"`
}

// ThresholdValidator grades (n, t) choices beyond the hard 2 <= t <= n rule.
type ThresholdValidator struct {
	MaxParticipants     int     `json:"max_participants"`
	ByzantineRatio      float64 `json:"byzantine_ratio"`
	RecommendedMinRatio float64 `json:"recommended_min_ratio"`
	RecommendedMaxRatio float64 `json:"recommended_max_ratio"`
}

// NewDefaultThresholdValidator creates a validator with default parameters
func NewDefaultThresholdValidator() *ThresholdValidator {
	return &ThresholdValidator{
		MaxParticipants:     1000,
		ByzantineRatio:      DefaultByzantineRatio,
		RecommendedMinRatio: 0.51,
		RecommendedMaxRatio: 0.80,
	}
}

// Assess grades the parameters. Hard violations land in Errors and clear
// Valid; everything else is advisory.
func (tv *ThresholdValidator) Assess(n, t int) *ValidationResult {
	result := &ValidationResult{
		Valid:         true,
		SecurityLevel: SecurityLevelMedium,
	}

	if err := ValidateThresholdParameters(n, t); err != nil {
		result.Valid = false
		result.SecurityLevel = SecurityLevelLow
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	if n > tv.MaxParticipants {
		result.Valid = false
		result.SecurityLevel = SecurityLevelLow
		result.Errors = append(result.Errors, fmt.Sprintf("participant count exceeds maximum of %d", tv.MaxParticipants))
		return result
	}

	ratio := float64(t) / float64(n)

	if t >= int(math.Ceil(float64(n)*tv.ByzantineRatio)) {
		result.ByzantineFaultTolerance = true
		result.SecurityLevel = SecurityLevelHigh
	}

	if ratio < tv.RecommendedMinRatio {
		result.SecurityLevel = SecurityLevelLow
		result.Warnings = append(result.Warnings, "threshold ratio is below recommended minimum")
		result.Recommendations = append(result.Recommendations,
			fmt.Sprintf("consider increasing threshold to at least %d", int(math.Ceil(float64(n)*tv.RecommendedMinRatio))))
	} else if ratio > tv.RecommendedMaxRatio {
		result.Warnings = append(result.Warnings, "threshold ratio is high, may affect availability")
	}

	if t == n {
		result.Warnings = append(result.Warnings, "threshold equals participant count - no fault tolerance")
		result.Recommendations = append(result.Recommendations, "consider reducing threshold to allow for unavailable signers")
	}

	return result
}
