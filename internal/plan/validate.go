package plan

import (
	"fmt"
	"strings"

	"github.com/mrsinham/planmcs/internal/dicom"
)

// Issue is a structural problem found in a decoded file.
type Issue struct {
	Message string
	// Critical issues make the processing status FAILED regardless of the
	// score.
	Critical bool
}

func (i Issue) String() string { return i.Message }

// SupportedModalities lists the modalities accepted for planning.
var SupportedModalities = []string{"RTPLAN", "CT", "MR", "RTSTRUCT"}

// Validate checks the identifying attributes of a file and, for RT Plans,
// the presence of the beam and fraction group sequences.
func Validate(tree *dicom.Tree) []Issue {
	var issues []Issue
	if tree.Len() == 0 {
		return []Issue{{Message: "no DICOM metadata found", Critical: true}}
	}

	missing := func(t dicom.Tag, name string, critical bool) {
		if strings.TrimSpace(dicom.GetString(tree, t, "")) == "" {
			issues = append(issues, Issue{Message: name + " not found", Critical: critical})
		}
	}

	missing(dicom.PatientID, "Patient ID", true)

	modality := strings.TrimSpace(dicom.GetString(tree, dicom.Modality, ""))
	switch {
	case modality == "":
		issues = append(issues, Issue{Message: "Modality not found"})
	case !isSupportedModality(modality):
		issues = append(issues, Issue{Message: fmt.Sprintf("unsupported modality for planning: %s", modality)})
	}

	missing(dicom.StudyInstanceUID, "Study Instance UID", false)
	missing(dicom.SeriesInstanceUID, "Series Instance UID", false)
	missing(dicom.SOPInstanceUID, "SOP Instance UID", false)
	missing(dicom.PatientName, "Patient Name", false)

	if modality == "RTPLAN" {
		if v, ok := tree.Get(dicom.BeamSequence); !ok || v.Kind != dicom.KindSequence {
			issues = append(issues, Issue{Message: "Beam Sequence not found (required for RTPLAN)"})
		}
		if v, ok := tree.Get(dicom.FractionGroupSequence); !ok || v.Kind != dicom.KindSequence {
			issues = append(issues, Issue{Message: "Fraction Group Sequence not found (required for RTPLAN)"})
		}
	}
	return issues
}

func isSupportedModality(m string) bool {
	for _, s := range SupportedModalities {
		if m == s {
			return true
		}
	}
	return false
}

// Status is the overall outcome of processing one file.
type Status int

const (
	StatusSuccess Status = iota
	StatusPartial
	StatusFailed
)

// String returns the upper-case name of the status.
func (s Status) String() string {
	switch s {
	case StatusPartial:
		return "PARTIAL"
	case StatusFailed:
		return "FAILED"
	default:
		return "SUCCESS"
	}
}

// MarshalText lets the status appear by name in JSON output.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ParseStatus parses a status name, case-insensitively.
func ParseStatus(s string) (Status, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "SUCCESS":
		return StatusSuccess, nil
	case "PARTIAL":
		return StatusPartial, nil
	case "FAILED":
		return StatusFailed, nil
	default:
		return StatusFailed, fmt.Errorf("invalid status: %s (valid: SUCCESS, PARTIAL, FAILED)", s)
	}
}

// DetermineStatus derives the status from the validation issues and the
// computed score: no issues is a success, a critical issue is a failure,
// and otherwise a positive score makes the result partial.
func DetermineStatus(issues []Issue, mcs float64) Status {
	if len(issues) == 0 {
		return StatusSuccess
	}
	for _, i := range issues {
		if i.Critical {
			return StatusFailed
		}
	}
	if mcs > 0 {
		return StatusPartial
	}
	return StatusFailed
}
