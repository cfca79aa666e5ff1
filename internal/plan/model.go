// Package plan extracts the beam and control point hierarchy of an RT Plan
// from a decoded attribute tree.
package plan

// NoBeamNumber marks a beam whose number is absent.
const NoBeamNumber = -1

// MUSource records where a beam's monitor units were read from.
type MUSource string

const (
	MUFromFractionGroup  MUSource = "fraction-group"
	MUFromBeamMeterset   MUSource = "beam-meterset"
	MUFromFinalCumWeight MUSource = "final-cumulative-weight"
	MUNone               MUSource = "none"
)

// BeamSource records which sequence the beam list came from.
type BeamSource string

const (
	SourceBeamSequence    BeamSource = "BeamSequence"
	SourceReferencedBeams BeamSource = "ReferencedBeamSequence"
	SourceIonBeamSequence BeamSource = "IonBeamSequence"
	SourceNone            BeamSource = ""
)

// Plan is the structured content of an RT Plan.
type Plan struct {
	Beams    []Beam
	Source   BeamSource
	Warnings []string
}

// Beam is one treatment beam.
type Beam struct {
	Name     string
	Number   int
	MU       float64
	MUSource MUSource
	Segments []Segment
}

// Segment is one control point of a beam.
type Segment struct {
	// MUWeight is the cumulative meterset weight at this control point.
	MUWeight float64
	// LeafJawPositions holds the left bank followed by the right bank.
	LeafJawPositions []float64
}

// TotalMU returns the sum of the beams' monitor units.
func (p Plan) TotalMU() float64 {
	var total float64
	for _, b := range p.Beams {
		total += b.MU
	}
	return total
}

// IsEmpty reports whether the plan has no beams, as for CT, MR or structure
// set files.
func (p Plan) IsEmpty() bool { return len(p.Beams) == 0 }
