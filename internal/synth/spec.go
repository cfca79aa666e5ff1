package synth

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"
)

// PlanSpec describes the content of one synthetic RT Plan.
type PlanSpec struct {
	PatientID   string
	PatientName string
	Label       string
	// UIDSeed makes the generated UIDs unique per plan and reproducible.
	UIDSeed string
	Beams   []BeamSpec
}

// BeamSpec describes one beam.
type BeamSpec struct {
	Name          string
	Number        int
	MU            float64
	ControlPoints []ControlPointSpec
}

// ControlPointSpec describes one control point. Weight is cumulative and
// expressed in MU so that the final weight equals the beam MU.
type ControlPointSpec struct {
	Weight    float64
	Positions []float64
}

// RandomOptions bounds the size of a random plan.
type RandomOptions struct {
	Beams         int
	ControlPoints int
	LeafPairs     int
}

func (o RandomOptions) withDefaults() RandomOptions {
	if o.Beams <= 0 {
		o.Beams = 5
	}
	if o.ControlPoints <= 0 {
		o.ControlPoints = 10
	}
	if o.LeafPairs <= 0 {
		o.LeafPairs = 60
	}
	return o
}

// RandomPlan builds a step-and-shoot style plan: each beam starts at weight
// 0, and leaves drift a little between consecutive control points.
func RandomPlan(rng *rand.Rand, index int, opts RandomOptions) PlanSpec {
	opts = opts.withDefaults()
	spec := PlanSpec{
		PatientID: fmt.Sprintf("RT%06d", rng.IntN(1000000)),
		Label:     fmt.Sprintf("IMRT_%d", index+1),
		UIDSeed:   fmt.Sprintf("plan_%d_%d", index, rng.Uint64()),
	}
	spec.PatientName = patientName(rng)

	gantry := 0
	for b := 0; b < opts.Beams; b++ {
		mu := round(50+rng.Float64()*150, 2)
		beam := BeamSpec{
			Name:   fmt.Sprintf("G%03d", gantry),
			Number: b + 1,
			MU:     mu,
		}
		gantry = (gantry + 360/opts.Beams) % 360

		positions := randomAperture(rng, opts.LeafPairs)
		for cp := 0; cp < opts.ControlPoints; cp++ {
			weight := 0.0
			if cp > 0 {
				weight = round(mu*float64(cp)/float64(opts.ControlPoints-1), 3)
			}
			if cp == opts.ControlPoints-1 {
				weight = mu
			}
			beam.ControlPoints = append(beam.ControlPoints, ControlPointSpec{
				Weight:    weight,
				Positions: append([]float64(nil), positions...),
			})
			positions = driftAperture(rng, positions)
		}
		spec.Beams = append(spec.Beams, beam)
	}
	return spec
}

// randomAperture returns left bank positions followed by right bank
// positions, in mm, with the right leaf never behind the left one.
func randomAperture(rng *rand.Rand, pairs int) []float64 {
	positions := make([]float64, 2*pairs)
	for i := 0; i < pairs; i++ {
		center := (rng.Float64() - 0.5) * 40
		half := rng.Float64() * 60
		positions[i] = round(center-half, 1)
		positions[i+pairs] = round(center+half, 1)
	}
	return positions
}

func driftAperture(rng *rand.Rand, positions []float64) []float64 {
	pairs := len(positions) / 2
	next := make([]float64, len(positions))
	for i := 0; i < pairs; i++ {
		left := positions[i] + (rng.Float64()-0.5)*10
		right := positions[i+pairs] + (rng.Float64()-0.5)*10
		if right < left {
			left, right = right, left
		}
		next[i] = round(math.Max(-200, left), 1)
		next[i+pairs] = round(math.Min(200, right), 1)
	}
	return next
}

// round keeps the given number of decimals and returns the float that the
// decimal text parses back to, so written and read values compare equal.
func round(v float64, decimals int) float64 {
	f, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'f', decimals, 64), 64)
	return f
}
