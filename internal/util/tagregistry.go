// Package util provides keyword lookup for the RT Plan attributes that the
// score command can print.
package util

import (
	"fmt"
	"strings"

	"github.com/suyashkumar/dicom/pkg/tag"

	"github.com/mrsinham/planmcs/internal/dicom"
)

// TagScope represents the level of the plan hierarchy that holds a tag.
type TagScope int

const (
	// ScopePlan indicates top-level attributes, one value per file.
	ScopePlan TagScope = iota
	// ScopeFractionGroup indicates attributes of FractionGroupSequence items.
	ScopeFractionGroup
	// ScopeReferencedBeam indicates attributes of ReferencedBeamSequence items.
	ScopeReferencedBeam
	// ScopeBeam indicates attributes of beam items.
	ScopeBeam
	// ScopeControlPoint indicates attributes of control point items.
	ScopeControlPoint
)

// String returns the string representation of a TagScope.
func (s TagScope) String() string {
	switch s {
	case ScopePlan:
		return "Plan"
	case ScopeFractionGroup:
		return "FractionGroup"
	case ScopeReferencedBeam:
		return "ReferencedBeam"
	case ScopeBeam:
		return "Beam"
	case ScopeControlPoint:
		return "ControlPoint"
	default:
		return "Unknown"
	}
}

// TagInfo contains information about a DICOM tag, including its scope.
type TagInfo struct {
	Name  string
	Tag   dicom.Tag
	Scope TagScope
}

// tagRegistry maps lowercase tag names to their TagInfo.
var tagRegistry = map[string]TagInfo{
	// Plan level tags
	"patientname":       {Name: "PatientName", Tag: dicom.PatientName, Scope: ScopePlan},
	"patientid":         {Name: "PatientID", Tag: dicom.PatientID, Scope: ScopePlan},
	"modality":          {Name: "Modality", Tag: dicom.Modality, Scope: ScopePlan},
	"sopclassuid":       {Name: "SOPClassUID", Tag: dicom.SOPClassUID, Scope: ScopePlan},
	"sopinstanceuid":    {Name: "SOPInstanceUID", Tag: dicom.SOPInstanceUID, Scope: ScopePlan},
	"studyinstanceuid":  {Name: "StudyInstanceUID", Tag: dicom.StudyInstanceUID, Scope: ScopePlan},
	"seriesinstanceuid": {Name: "SeriesInstanceUID", Tag: dicom.SeriesInstanceUID, Scope: ScopePlan},
	"transfersyntaxuid": {Name: "TransferSyntaxUID", Tag: dicom.TransferSyntaxUID, Scope: ScopePlan},
	"rtplanlabel":       {Name: "RTPlanLabel", Tag: dicom.RTPlanLabel, Scope: ScopePlan},

	// Fraction group tags
	"referencedbeamnumber": {Name: "ReferencedBeamNumber", Tag: dicom.ReferencedBeamNumber, Scope: ScopeReferencedBeam},
	"beammeterset":         {Name: "BeamMeterset", Tag: dicom.BeamMeterset, Scope: ScopeReferencedBeam},

	// Beam level tags
	"beamnumber":                    {Name: "BeamNumber", Tag: dicom.BeamNumber, Scope: ScopeBeam},
	"beamname":                      {Name: "BeamName", Tag: dicom.BeamName, Scope: ScopeBeam},
	"finalcumulativemetersetweight": {Name: "FinalCumulativeMetersetWeight", Tag: dicom.FinalCumulativeMetersetWeight, Scope: ScopeBeam},

	// Control point level tags
	"controlpointindex":        {Name: "ControlPointIndex", Tag: dicom.ControlPointIndex, Scope: ScopeControlPoint},
	"cumulativemetersetweight": {Name: "CumulativeMetersetWeight", Tag: dicom.CumulativeMetersetWeight, Scope: ScopeControlPoint},
	"leafjawpositions":         {Name: "LeafJawPositions", Tag: dicom.LeafJawPositions, Scope: ScopeControlPoint},
}

// GetTagByName returns TagInfo for a given tag name.
// The lookup is case-insensitive. Names outside the registry are looked up in
// the DICOM dictionary and treated as plan level. If the tag is still not
// found, an error is returned with a suggestion for the closest registry name
// (using Levenshtein distance).
func GetTagByName(name string) (TagInfo, error) {
	trimmed := strings.TrimSpace(name)
	normalizedName := strings.ToLower(trimmed)

	if info, ok := tagRegistry[normalizedName]; ok {
		return info, nil
	}

	if trimmed != "" {
		if info, err := tag.FindByName(trimmed); err == nil {
			return TagInfo{
				Name:  info.Name,
				Tag:   dicom.NewTag(info.Tag.Group, info.Tag.Element),
				Scope: ScopePlan,
			}, nil
		}
	}

	suggestion := findClosestTagName(normalizedName)
	if suggestion != "" {
		return TagInfo{}, fmt.Errorf("unknown tag %q, did you mean %q?", name, suggestion)
	}

	return TagInfo{}, fmt.Errorf("unknown tag %q", name)
}

// Values collects the text value of info's tag at every item of its scope,
// in file order. Items without the tag are skipped.
func Values(tree *dicom.Tree, info TagInfo) []string {
	var holders []*dicom.Tree
	switch info.Scope {
	case ScopePlan:
		holders = []*dicom.Tree{tree}
	case ScopeFractionGroup:
		holders = dicom.GetSequenceFirstMatch(tree, dicom.FractionGroupSequence)
	case ScopeReferencedBeam:
		for _, fg := range dicom.GetSequenceFirstMatch(tree, dicom.FractionGroupSequence) {
			holders = append(holders, dicom.GetSequenceFirstMatch(fg, dicom.ReferencedBeamSequence)...)
		}
	case ScopeBeam:
		holders = beams(tree)
	case ScopeControlPoint:
		for _, b := range beams(tree) {
			holders = append(holders, dicom.GetSequenceFirstMatch(b, dicom.ControlPointSequence, dicom.IonControlPointSequence)...)
		}
	}

	var out []string
	for _, h := range holders {
		if v := dicom.GetString(h, info.Tag, ""); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func beams(tree *dicom.Tree) []*dicom.Tree {
	return dicom.GetSequenceFirstMatch(tree, dicom.BeamSequence, dicom.IonBeamSequence)
}

// findClosestTagName finds the closest matching tag name using Levenshtein distance.
// Returns empty string if no close match is found (distance > 5).
func findClosestTagName(input string) string {
	const maxDistance = 5
	bestDistance := maxDistance + 1
	var bestMatch string

	for key, info := range tagRegistry {
		distance := levenshteinDistance(input, key)
		if distance < bestDistance || (distance == bestDistance && info.Name < bestMatch) {
			bestDistance = distance
			bestMatch = info.Name
		}
	}

	if bestDistance <= maxDistance {
		return bestMatch
	}
	return ""
}

// levenshteinDistance returns the minimum number of single-character edits
// needed to turn a into b.
func levenshteinDistance(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 0
			if a[i-1] != b[j-1] {
				cost = 1
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}
