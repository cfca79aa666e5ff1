package synth

import (
	"fmt"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
)

// mustNewPrivateElement creates a DICOM element with a private tag and explicit VR.
// This is required because dicom.NewElement fails on unregistered private tags.
func mustNewPrivateElement(t tag.Tag, rawVR string, data any) *dicom.Element {
	value, err := dicom.NewValue(data)
	if err != nil {
		panic(fmt.Sprintf("failed to create value for private element %v: %v", t, err))
	}
	return &dicom.Element{
		Tag:                    t,
		ValueRepresentation:    tag.GetVRKind(t, rawVR),
		RawValueRepresentation: rawVR,
		Value:                  value,
	}
}

// privateElements returns vendor private blocks of the kind treatment
// planning systems append after the RT modules: a creator per block, a
// multi-valued IS element and an opaque OB payload. Groups are above 300A so
// the dataset stays in ascending tag order.
func privateElements(spec PlanSpec) []*dicom.Element {
	counts := make([]string, 0, len(spec.Beams))
	for _, b := range spec.Beams {
		counts = append(counts, fmt.Sprintf("%d", len(b.ControlPoints)))
	}
	if len(counts) == 0 {
		counts = []string{"0"}
	}

	payload := []byte(fmt.Sprintf("%-16s", spec.Label))
	if len(payload)%2 != 0 {
		payload = append(payload, 0)
	}

	return []*dicom.Element{
		mustNewPrivateElement(tag.Tag{Group: 0x300B, Element: 0x0010}, "LO", []string{"PLANMCS_PRIVATE_01"}),
		mustNewPrivateElement(tag.Tag{Group: 0x300B, Element: 0x1002}, "IS", counts),
		mustNewPrivateElement(tag.Tag{Group: 0x3249, Element: 0x0010}, "LO", []string{"TPS VISION 3249"}),
		mustNewPrivateElement(tag.Tag{Group: 0x3249, Element: 0x1000}, "LO", []string{"TrueBeam"}),
		mustNewPrivateElement(tag.Tag{Group: 0x3249, Element: 0x1010}, "OB", payload),
	}
}
