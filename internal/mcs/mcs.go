// Package mcs computes the Modulation Complexity Score of an RT Plan
// (McNiven et al. 2010): aperture area variability times leaf sequence
// variability, weighted by monitor units over segments and beams.
package mcs

import (
	"fmt"
	"math"

	"github.com/mrsinham/planmcs/internal/plan"
)

// DefaultMaxLeafOpening is the assumed maximum opening of one leaf pair.
const DefaultMaxLeafOpening = 400.0

// muTolerance is the relative slack allowed before summed segment increments
// are reported as exceeding the beam MU.
const muTolerance = 1e-9

// Config holds the scoring constants.
type Config struct {
	MaxLeafOpening float64
}

// DefaultConfig returns the standard scoring constants.
func DefaultConfig() Config {
	return Config{MaxLeafOpening: DefaultMaxLeafOpening}
}

// BeamScore is the per-beam diagnostic of a score.
type BeamScore struct {
	Name string  `json:"name"`
	MCS  float64 `json:"mcs"`
	MU   float64 `json:"mu"`
	// Segments is the number of control points; Contributing counts those
	// with a positive incremental MU.
	Segments     int `json:"segments"`
	Contributing int `json:"contributing"`
}

// ScoreResult is the outcome of scoring one plan.
type ScoreResult struct {
	MCS        float64     `json:"mcs"`
	BeamScores []BeamScore `json:"beams"`
	Warnings   []string    `json:"warnings,omitempty"`
}

// Calculator scores plans with a fixed configuration. It holds no state
// between calls and is safe for concurrent use.
type Calculator struct {
	cfg Config
}

// NewCalculator returns a calculator. A non-positive MaxLeafOpening falls
// back to DefaultMaxLeafOpening.
func NewCalculator(cfg Config) *Calculator {
	if cfg.MaxLeafOpening <= 0 {
		cfg.MaxLeafOpening = DefaultMaxLeafOpening
	}
	return &Calculator{cfg: cfg}
}

// Score scores p with the default configuration.
func Score(p plan.Plan) ScoreResult {
	return NewCalculator(DefaultConfig()).Score(p)
}

// Score returns the MU-weighted mean of the beam scores. A plan whose total
// MU is zero scores 0 with a warning.
func (c *Calculator) Score(p plan.Plan) ScoreResult {
	var res ScoreResult
	var weighted, totalMU float64

	res.BeamScores = make([]BeamScore, 0, len(p.Beams))
	for _, b := range p.Beams {
		bs, warnings := c.scoreBeam(b)
		res.BeamScores = append(res.BeamScores, bs)
		res.Warnings = append(res.Warnings, warnings...)
		weighted += bs.MCS * b.MU
		totalMU += b.MU
	}

	if totalMU <= 0 {
		if len(p.Beams) == 0 {
			res.Warnings = append(res.Warnings, "plan has no beams; MCS set to 0")
		} else {
			res.Warnings = append(res.Warnings, "plan total MU is 0; MCS set to 0")
		}
		return res
	}
	res.MCS = weighted / totalMU
	return res
}

func (c *Calculator) scoreBeam(b plan.Beam) (BeamScore, []string) {
	bs := BeamScore{Name: b.Name, MU: b.MU, Segments: len(b.Segments)}
	var warnings []string

	if len(b.Segments) == 0 {
		return bs, nil
	}
	if b.MU <= 0 {
		return bs, []string{fmt.Sprintf("beam %q has no MU; beam MCS set to 0", b.Name)}
	}

	oddWarned := false
	var delivered float64
	for i, seg := range b.Segments {
		var prev *plan.Segment
		increment := seg.MUWeight
		if i > 0 {
			prev = &b.Segments[i-1]
			increment = seg.MUWeight - prev.MUWeight
		}
		if increment <= 0 || math.IsNaN(increment) {
			continue
		}
		if len(seg.LeafJawPositions)%2 != 0 && !oddWarned {
			warnings = append(warnings, fmt.Sprintf("beam %q: segment %d has an odd number of leaf/jaw positions (%d)",
				b.Name, i+1, len(seg.LeafJawPositions)))
			oddWarned = true
		}

		var prevPositions []float64
		if prev != nil {
			prevPositions = prev.LeafJawPositions
		}
		aav := AAV(seg.LeafJawPositions, c.cfg.MaxLeafOpening)
		lsv := LSV(seg.LeafJawPositions, prevPositions, prev != nil)

		bs.MCS += aav * lsv * (increment / b.MU)
		bs.Contributing++
		delivered += increment
	}
	// Scores are not clamped, so overshooting weights are only reported.
	if delivered > b.MU*(1+muTolerance) {
		warnings = append(warnings, fmt.Sprintf("beam %q: segment increments sum to %g MU, more than the beam MU %g; beam MCS may exceed 1",
			b.Name, delivered, b.MU))
	}
	return bs, warnings
}

// AAV is the aperture area variability of one segment: the summed opening of
// each leaf pair divided by pairs*maxOpening, clamped to [0, 1]. The first
// half of positions is the left bank and the second half the right bank;
// with an odd count the pairing uses len/2 pairs. No positions gives 1.
func AAV(positions []float64, maxOpening float64) float64 {
	n := len(positions) / 2
	if len(positions) == 0 || n == 0 {
		return 1.0
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += math.Abs(positions[i+n] - positions[i])
	}
	return clamp01(sum / (float64(n) * maxOpening))
}

// LSV is the leaf sequence variability between a segment and the previous
// one. Without a previous segment, with empty or differently sized position
// lists, or with identical shapes it is 1; otherwise it is the mean of
// (maxDiff - |d_i|) / maxDiff over all positions.
func LSV(current, previous []float64, hasPrevious bool) float64 {
	if !hasPrevious || len(current) == 0 || len(previous) == 0 || len(current) != len(previous) {
		return 1.0
	}
	var maxDiff float64
	for i := range current {
		maxDiff = math.Max(maxDiff, math.Abs(current[i]-previous[i]))
	}
	if maxDiff == 0 {
		return 1.0
	}
	var sum float64
	for i := range current {
		sum += (maxDiff - math.Abs(current[i]-previous[i])) / maxDiff
	}
	return clamp01(sum / float64(len(current)))
}

func clamp01(v float64) float64 {
	return math.Min(1.0, math.Max(0.0, v))
}
