package synth

import (
	"bytes"
	"fmt"
	"math/big"
	"strconv"

	"github.com/google/uuid"
	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"

	internaldicom "github.com/mrsinham/planmcs/internal/dicom"
)

const (
	explicitVRLittleEndian = "1.2.840.10008.1.2.1"
	rtPlanStorage          = "1.2.840.10008.5.1.4.1.1.481.5"
	rtIonPlanStorage       = "1.2.840.10008.5.1.4.1.1.481.8"
	ctImageStorage         = "1.2.840.10008.5.1.4.1.1.2"
	implementationClassUID = "1.2.826.0.1.3680043.8.498"
)

// mustNewElement creates a DICOM element, panicking on a dictionary or value
// mismatch, which is a programming error here.
func mustNewElement(t internaldicom.Tag, value any) *dicom.Element {
	elem, err := dicom.NewElement(libTag(t), value)
	if err != nil {
		panic(fmt.Sprintf("failed to create element %v: %v", t, err))
	}
	return elem
}

func libTag(t internaldicom.Tag) tag.Tag {
	return tag.Tag{Group: t.Group(), Element: t.Element()}
}

// formatDS renders a float as a DICOM decimal string (at most 16 chars).
func formatDS(f float64) string {
	return strconv.FormatFloat(f, 'g', 10, 64)
}

func formatDSList(fs []float64) []string {
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = formatDS(f)
	}
	return out
}

// UID derives a reproducible DICOM UID in the 2.25 (UUID) form from name.
func UID(name string) string {
	u := uuid.NewSHA1(uuid.NameSpaceOID, []byte(name))
	return "2.25." + new(big.Int).SetBytes(u[:]).String()
}

// sopClassFor returns the SOP class UID and modality written for variants.
func sopClassFor(variants []Variant) (string, string) {
	switch {
	case has(variants, NonPlan):
		return ctImageStorage, "CT"
	case has(variants, Ion):
		return rtIonPlanStorage, "RTPLAN"
	default:
		return rtPlanStorage, "RTPLAN"
	}
}

// BuildDataset turns a plan description into a DICOM dataset with the given
// variants and corruptions applied. The beam sequence follows every
// standard attribute so that a truncated file breaks inside the beam data.
func BuildDataset(spec PlanSpec, variants []Variant, corruptions []Corruption) dicom.Dataset {
	nonPlan := has(variants, NonPlan)
	sopClass, modality := sopClassFor(variants)
	sopInstanceUID := UID(spec.UIDSeed + "_sop")

	elements := []*dicom.Element{
		mustNewElement(internaldicom.NewTag(0x0002, 0x0001), []byte{0x00, 0x01}),
		mustNewElement(internaldicom.NewTag(0x0002, 0x0002), []string{sopClass}),
		mustNewElement(internaldicom.NewTag(0x0002, 0x0003), []string{sopInstanceUID}),
		mustNewElement(internaldicom.TransferSyntaxUID, []string{explicitVRLittleEndian}),
		mustNewElement(internaldicom.NewTag(0x0002, 0x0012), []string{implementationClassUID}),
		mustNewElement(internaldicom.SOPClassUID, []string{sopClass}),
		mustNewElement(internaldicom.SOPInstanceUID, []string{sopInstanceUID}),
		mustNewElement(internaldicom.Modality, []string{modality}),
		mustNewElement(internaldicom.PatientName, []string{spec.PatientName}),
		mustNewElement(internaldicom.PatientID, []string{spec.PatientID}),
		mustNewElement(internaldicom.StudyInstanceUID, []string{UID(spec.UIDSeed + "_study")}),
		mustNewElement(internaldicom.SeriesInstanceUID, []string{UID(spec.UIDSeed + "_series")}),
	}
	if nonPlan {
		return dicom.Dataset{Elements: elements}
	}

	elements = append(elements, mustNewElement(internaldicom.RTPlanLabel, []string{spec.Label}))
	if !has(variants, NoFractionGroup) {
		elements = append(elements, fractionGroupElement(spec, variants, corruptions))
	}
	elements = append(elements, beamSequenceElement(spec, variants))
	if has(corruptions, PrivateTags) {
		elements = append(elements, privateElements(spec)...)
	}

	return dicom.Dataset{Elements: elements}
}

func fractionGroupElement(spec PlanSpec, variants []Variant, corruptions []Corruption) *dicom.Element {
	refs := make([][]*dicom.Element, 0, len(spec.Beams))
	for _, b := range spec.Beams {
		meterset := formatDS(b.MU)
		if has(variants, ZeroMU) {
			meterset = "0"
		}
		if has(corruptions, BadDecimal) {
			meterset = "N/A"
		}
		refs = append(refs, []*dicom.Element{
			mustNewElement(internaldicom.BeamMeterset, []string{meterset}),
			mustNewElement(internaldicom.ReferencedBeamNumber, []string{strconv.Itoa(b.Number)}),
		})
	}
	fractionGroupNumber := internaldicom.NewTag(0x300A, 0x0071)
	numberOfBeams := internaldicom.NewTag(0x300A, 0x0080)
	group := []*dicom.Element{
		mustNewElement(fractionGroupNumber, []string{"1"}),
		mustNewElement(numberOfBeams, []string{strconv.Itoa(len(spec.Beams))}),
		mustNewElement(internaldicom.ReferencedBeamSequence, refs),
	}
	return mustNewElement(internaldicom.FractionGroupSequence, [][]*dicom.Element{group})
}

func beamSequenceElement(spec PlanSpec, variants []Variant) *dicom.Element {
	ion := has(variants, Ion)
	zeroMU := has(variants, ZeroMU)

	beamSeqTag, cpSeqTag := internaldicom.BeamSequence, internaldicom.ControlPointSequence
	if ion {
		beamSeqTag, cpSeqTag = internaldicom.IonBeamSequence, internaldicom.IonControlPointSequence
	}

	beams := make([][]*dicom.Element, 0, len(spec.Beams))
	for _, b := range spec.Beams {
		item := []*dicom.Element{
			mustNewElement(internaldicom.BeamNumber, []string{strconv.Itoa(b.Number)}),
		}
		if !has(variants, MissingNames) {
			item = append(item, mustNewElement(internaldicom.BeamName, []string{b.Name}))
		}
		if has(variants, NoFractionGroup) {
			mu := b.MU
			if zeroMU {
				mu = 0
			}
			item = append(item, mustNewElement(internaldicom.BeamMeterset, []string{formatDS(mu)}))
		}
		if !zeroMU {
			item = append(item, mustNewElement(internaldicom.FinalCumulativeMetersetWeight, []string{formatDS(b.MU)}))
		}

		cps := make([][]*dicom.Element, 0, len(b.ControlPoints))
		for i, cp := range b.ControlPoints {
			cpItem := []*dicom.Element{
				mustNewElement(internaldicom.ControlPointIndex, []string{strconv.Itoa(i)}),
				mustNewElement(internaldicom.CumulativeMetersetWeight, []string{formatDS(cp.Weight)}),
			}
			if has(variants, DeviceSequence) {
				device := []*dicom.Element{
					mustNewElement(internaldicom.RTBeamLimitingDeviceType, []string{"MLCX"}),
					mustNewElement(internaldicom.LeafJawPositions, formatDSList(cp.Positions)),
				}
				cpItem = append(cpItem, mustNewElement(internaldicom.BeamLimitingDevicePositionSequence, [][]*dicom.Element{device}))
			} else {
				cpItem = append(cpItem, mustNewElement(internaldicom.LeafJawPositions, formatDSList(cp.Positions)))
			}
			cps = append(cps, cpItem)
		}
		item = append(item, mustNewElement(cpSeqTag, cps))
		beams = append(beams, item)
	}
	return mustNewElement(beamSeqTag, beams)
}

// Encode writes a dataset to an in-memory DICOM file.
func Encode(ds dicom.Dataset) ([]byte, error) {
	var buf bytes.Buffer
	if err := dicom.Write(&buf, ds); err != nil {
		return nil, fmt.Errorf("write dataset: %w", err)
	}
	return buf.Bytes(), nil
}

// Bytes builds and encodes a plan, then applies byte-level corruptions.
func Bytes(spec PlanSpec, variants []Variant, corruptions []Corruption) ([]byte, error) {
	data, err := Encode(BuildDataset(spec, variants, corruptions))
	if err != nil {
		return nil, err
	}
	if has(corruptions, Truncate) {
		data = TruncateInBeams(data)
	}
	return data, nil
}
