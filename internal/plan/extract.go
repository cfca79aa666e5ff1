package plan

import (
	"fmt"

	"github.com/mrsinham/planmcs/internal/dicom"
)

// Extract builds a Plan from a decoded tree. It never fails: a tree without
// any beam sequence yields a plan with no beams, and missing fields fall back
// to their defaults. Every value is copied out of the tree.
func Extract(tree *dicom.Tree) Plan {
	var p Plan
	mu := Reconcile(tree)

	items, source := resolveBeams(tree)
	p.Source = source
	switch source {
	case SourceNone:
		p.Warnings = append(p.Warnings, "no BeamSequence, ReferencedBeamSequence or IonBeamSequence found")
		return p
	case SourceReferencedBeams:
		p.Warnings = append(p.Warnings, "beams found only as fraction group references; no control points available")
	}

	p.Beams = make([]Beam, 0, len(items))
	for i, item := range items {
		b, warnings := extractBeam(item, i, source, mu)
		p.Beams = append(p.Beams, b)
		p.Warnings = append(p.Warnings, warnings...)
	}
	return p
}

// resolveBeams picks the beam list: BeamSequence, then the referenced beams
// of the first fraction group, then IonBeamSequence.
func resolveBeams(tree *dicom.Tree) ([]*dicom.Tree, BeamSource) {
	if items := dicom.GetSequenceFirstMatch(tree, dicom.BeamSequence); len(items) > 0 {
		return items, SourceBeamSequence
	}
	if groups := dicom.GetSequenceFirstMatch(tree, dicom.FractionGroupSequence); len(groups) > 0 {
		if items := dicom.GetSequenceFirstMatch(groups[0], dicom.ReferencedBeamSequence); len(items) > 0 {
			return items, SourceReferencedBeams
		}
	}
	if items := dicom.GetSequenceFirstMatch(tree, dicom.IonBeamSequence); len(items) > 0 {
		return items, SourceIonBeamSequence
	}
	return nil, SourceNone
}

func extractBeam(item *dicom.Tree, index int, source BeamSource, reconciled map[int]float64) (Beam, []string) {
	var warnings []string

	b := Beam{
		Name:   dicom.GetString(item, dicom.BeamName, ""),
		Number: int(dicom.GetInt(item, dicom.BeamNumber, NoBeamNumber)),
	}
	if b.Name == "" {
		b.Name = fmt.Sprintf("Beam_%d", index+1)
	}
	if source == SourceReferencedBeams && b.Number == NoBeamNumber {
		b.Number = int(dicom.GetInt(item, dicom.ReferencedBeamNumber, NoBeamNumber))
	}

	b.MU, b.MUSource = beamMU(item, b.Number, reconciled)
	if b.MU < 0 {
		warnings = append(warnings, fmt.Sprintf("beam %q: negative MU %g treated as 0", b.Name, b.MU))
		b.MU = 0
	}
	if b.MUSource == MUNone {
		warnings = append(warnings, fmt.Sprintf("beam %q: no MU found", b.Name))
	}

	if source == SourceReferencedBeams {
		return b, warnings
	}

	cps := dicom.GetSequenceFirstMatch(item, dicom.ControlPointSequence, dicom.IonControlPointSequence)
	if len(cps) == 0 {
		warnings = append(warnings, fmt.Sprintf("beam %q: no control points", b.Name))
		return b, warnings
	}
	b.Segments = make([]Segment, 0, len(cps))
	for _, cp := range cps {
		b.Segments = append(b.Segments, Segment{
			MUWeight:         dicom.GetFloat(cp, dicom.CumulativeMetersetWeight, 0),
			LeafJawPositions: leafJawPositions(cp),
		})
	}
	return b, warnings
}

// beamMU applies the MU precedence: a positive fraction group value, then the
// beam's own BeamMeterset, then FinalCumulativeMetersetWeight.
func beamMU(item *dicom.Tree, number int, reconciled map[int]float64) (float64, MUSource) {
	if v, ok := reconciled[number]; ok && v > 0 {
		return v, MUFromFractionGroup
	}
	if item.Has(dicom.BeamMeterset) {
		return dicom.GetFloat(item, dicom.BeamMeterset, 0), MUFromBeamMeterset
	}
	if item.Has(dicom.FinalCumulativeMetersetWeight) {
		return dicom.GetFloat(item, dicom.FinalCumulativeMetersetWeight, 0), MUFromFinalCumWeight
	}
	return 0, MUNone
}

// leafJawPositions reads the flat LeafJawPositions array, falling back to the
// concatenation of the per-device arrays in BeamLimitingDevicePositionSequence.
func leafJawPositions(cp *dicom.Tree) []float64 {
	if positions := dicom.GetFloatArray(cp, dicom.LeafJawPositions); len(positions) > 0 {
		return positions
	}
	var all []float64
	for _, device := range dicom.GetSequenceFirstMatch(cp, dicom.BeamLimitingDevicePositionSequence) {
		all = append(all, dicom.GetFloatArray(device, dicom.LeafJawPositions)...)
	}
	return all
}
