package tests

import (
	"strings"
	"testing"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"

	"github.com/mrsinham/planmcs/internal/synth"
)

// TestValidation_RequiredTags checks the identifying attributes of every
// generated plan.
func TestValidation_RequiredTags(t *testing.T) {
	plans, err := synth.Generate(synth.Options{NumPlans: 3, OutputDir: t.TempDir(), Seed: 17})
	if err != nil {
		t.Fatal(err)
	}

	required := []tag.Tag{
		tag.SOPClassUID,
		tag.SOPInstanceUID,
		tag.StudyInstanceUID,
		tag.SeriesInstanceUID,
		tag.PatientID,
		tag.PatientName,
		tag.Modality,
	}

	for _, p := range plans {
		ds, err := dicom.ParseFile(p.Path, nil)
		if err != nil {
			t.Fatalf("Failed to parse %s: %v", p.Path, err)
		}
		for _, rt := range required {
			elem := findElementByTag(ds, rt)
			if elem == nil {
				t.Errorf("%s: missing %v", p.Path, rt)
				continue
			}
			if vals, ok := elem.Value.GetValue().([]string); !ok || len(vals) == 0 || vals[0] == "" {
				t.Errorf("%s: empty %v", p.Path, rt)
			}
		}
	}
}

// TestValidation_UIDFormat checks that UIDs use the 2.25 form and fit the
// 64 character limit.
func TestValidation_UIDFormat(t *testing.T) {
	for _, name := range []string{"a", "plan_0_1", strings.Repeat("x", 200)} {
		uid := synth.UID(name)
		if !strings.HasPrefix(uid, "2.25.") {
			t.Errorf("UID(%q) = %s, want 2.25 prefix", name, uid)
		}
		if len(uid) > 64 {
			t.Errorf("UID(%q) has %d chars, max 64", name, len(uid))
		}
		if uid != synth.UID(name) {
			t.Errorf("UID(%q) is not deterministic", name)
		}
	}
}

// TestValidation_UIDUniqueness checks that plans never share instance UIDs.
func TestValidation_UIDUniqueness(t *testing.T) {
	plans, err := synth.Generate(synth.Options{NumPlans: 20, OutputDir: t.TempDir(), Seed: 3})
	if err != nil {
		t.Fatal(err)
	}

	seen := make(map[string]string)
	for _, p := range plans {
		if other, ok := seen[p.SOPInstanceUID]; ok {
			t.Errorf("%s and %s share SOP Instance UID %s", p.Path, other, p.SOPInstanceUID)
		}
		seen[p.SOPInstanceUID] = p.Path
	}
}
