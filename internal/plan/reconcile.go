package plan

import (
	"github.com/mrsinham/planmcs/internal/dicom"
)

// Reconcile maps beam number to the meterset declared in the fraction groups'
// referenced beam sequences. Fraction groups and items are walked in source
// order. Entries with no beam number or a meterset <= 0 are ignored, so a
// zero never hides a value read elsewhere; a later positive value for the
// same beam replaces an earlier one.
func Reconcile(tree *dicom.Tree) map[int]float64 {
	mu := make(map[int]float64)
	for _, fg := range sequenceItems(tree, dicom.FractionGroupSequence) {
		for _, ref := range sequenceItems(fg, dicom.ReferencedBeamSequence) {
			number := int(dicom.GetInt(ref, dicom.ReferencedBeamNumber, NoBeamNumber))
			meterset := dicom.GetFloat(ref, dicom.BeamMeterset, 0)
			if number == NoBeamNumber || meterset <= 0 {
				continue
			}
			mu[number] = meterset
		}
	}
	return mu
}

// sequenceItems returns the items of a sequence attribute, or nil.
func sequenceItems(tree *dicom.Tree, t dicom.Tag) []*dicom.Tree {
	return dicom.GetSequenceFirstMatch(tree, t)
}
