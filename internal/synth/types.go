package synth

import (
	"fmt"
	"strings"
)

// Variant is a structural edge case applied to generated plans.
type Variant string

const (
	// MissingNames omits BeamName from every beam.
	MissingNames Variant = "missing-names"
	// DeviceSequence stores positions only inside
	// BeamLimitingDevicePositionSequence.
	DeviceSequence Variant = "device-sequence"
	// Ion writes an RT Ion Plan (IonBeamSequence, IonControlPointSequence).
	Ion Variant = "ion"
	// NoFractionGroup drops FractionGroupSequence and puts BeamMeterset on
	// the beam itself.
	NoFractionGroup Variant = "no-fraction-group"
	// ZeroMU declares a zero meterset everywhere.
	ZeroMU Variant = "zero-mu"
	// NonPlan writes a CT-like dataset with no beams at all.
	NonPlan Variant = "non-plan"
)

// AllVariants returns all valid variants.
func AllVariants() []Variant {
	return []Variant{MissingNames, DeviceSequence, Ion, NoFractionGroup, ZeroMU, NonPlan}
}

// Corruption is damage applied to the encoded file.
type Corruption string

const (
	// Truncate cuts the file inside the beam sequence.
	Truncate Corruption = "truncate"
	// BadDecimal writes a non-numeric fraction group meterset.
	BadDecimal Corruption = "bad-decimal"
	// PrivateTags appends vendor private blocks after the RT modules.
	PrivateTags Corruption = "private-tags"
)

// AllCorruptions returns all valid corruption types.
func AllCorruptions() []Corruption {
	return []Corruption{Truncate, BadDecimal, PrivateTags}
}

// ParseVariants parses comma-separated variant names.
func ParseVariants(input string) ([]Variant, error) {
	return parseList(input, AllVariants(), "variant")
}

// ParseCorruptions parses comma-separated corruption names. The special
// value "all" enables every type.
func ParseCorruptions(input string) ([]Corruption, error) {
	if strings.TrimSpace(input) == "all" {
		return AllCorruptions(), nil
	}
	return parseList(input, AllCorruptions(), "corruption type")
}

func parseList[T ~string](input string, all []T, what string) ([]T, error) {
	if input == "" {
		return nil, nil
	}
	valid := make(map[T]bool, len(all))
	for _, v := range all {
		valid[v] = true
	}

	parts := strings.Split(input, ",")
	result := make([]T, 0, len(parts))
	seen := make(map[T]bool)
	for _, p := range parts {
		v := T(strings.TrimSpace(p))
		if !valid[v] {
			return nil, fmt.Errorf("unknown %s %q, valid: %v", what, p, all)
		}
		if !seen[v] {
			result = append(result, v)
			seen[v] = true
		}
	}
	return result, nil
}

func has[T comparable](list []T, v T) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
