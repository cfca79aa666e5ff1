package synth

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"

	internaldicom "github.com/mrsinham/planmcs/internal/dicom"
)

const (
	mediaStorageDirectoryStorage = "1.2.840.10008.1.3.10"
	recordsPerPlan               = 4
)

func mustNewDirElement(t tag.Tag, value any) *dicom.Element {
	elem, err := dicom.NewElement(t, value)
	if err != nil {
		panic(fmt.Sprintf("failed to create element %v: %v", t, err))
	}
	return elem
}

// directoryRecord returns the elements of one record with zero offsets;
// offsets are patched once the byte positions are known.
func directoryRecord(recordType string, extra ...*dicom.Element) []*dicom.Element {
	elements := []*dicom.Element{
		mustNewDirElement(tag.OffsetOfTheNextDirectoryRecord, []int{0}),
		mustNewDirElement(tag.RecordInUseFlag, []int{0xFFFF}),
		mustNewDirElement(tag.OffsetOfReferencedLowerLevelDirectoryEntity, []int{0}),
		mustNewDirElement(tag.DirectoryRecordType, []string{recordType}),
	}
	return append(elements, extra...)
}

// WriteDICOMDIR writes outputDir/DICOMDIR with a PATIENT, STUDY, SERIES and
// PLAN record for every plan. Files written with the NonPlan variant get an
// IMAGE record instead.
func WriteDICOMDIR(outputDir string, plans []GeneratedPlan) error {
	if len(plans) == 0 {
		return fmt.Errorf("no plans to index")
	}

	records := make([][]*dicom.Element, 0, recordsPerPlan*len(plans))
	for _, p := range plans {
		rel, err := filepath.Rel(outputDir, p.Path)
		if err != nil {
			return fmt.Errorf("relative path of %s: %w", p.Path, err)
		}
		leafType := "PLAN"
		if p.Modality != "RTPLAN" {
			leafType = "IMAGE"
		}

		records = append(records,
			directoryRecord("PATIENT",
				mustNewDirElement(tag.PatientName, []string{p.PatientName}),
				mustNewDirElement(tag.PatientID, []string{p.PatientID}),
			),
			directoryRecord("STUDY",
				mustNewDirElement(tag.StudyInstanceUID, []string{p.StudyInstanceUID}),
			),
			directoryRecord("SERIES",
				mustNewDirElement(tag.Modality, []string{p.Modality}),
				mustNewDirElement(tag.SeriesInstanceUID, []string{p.SeriesInstanceUID}),
			),
			directoryRecord(leafType,
				mustNewDirElement(tag.ReferencedFileID, splitFileID(rel)),
				mustNewDirElement(tag.ReferencedSOPClassUIDInFile, []string{p.SOPClassUID}),
				mustNewDirElement(tag.ReferencedSOPInstanceUIDInFile, []string{p.SOPInstanceUID}),
				mustNewDirElement(tag.ReferencedTransferSyntaxUIDInFile, []string{explicitVRLittleEndian}),
			),
		)
	}

	filesetID := filepath.Base(outputDir)
	if len(filesetID) > 16 {
		filesetID = filesetID[:16]
	}
	ds := dicom.Dataset{Elements: []*dicom.Element{
		mustNewElement(internaldicom.NewTag(0x0002, 0x0001), []byte{0x00, 0x01}),
		mustNewElement(internaldicom.NewTag(0x0002, 0x0002), []string{mediaStorageDirectoryStorage}),
		mustNewElement(internaldicom.NewTag(0x0002, 0x0003), []string{UID(outputDir + "_dicomdir")}),
		mustNewElement(internaldicom.TransferSyntaxUID, []string{explicitVRLittleEndian}),
		mustNewElement(internaldicom.NewTag(0x0002, 0x0012), []string{implementationClassUID}),
		mustNewDirElement(tag.FileSetID, []string{filesetID}),
		mustNewDirElement(tag.OffsetOfTheFirstDirectoryRecordOfTheRootDirectoryEntity, []int{0}),
		mustNewDirElement(tag.OffsetOfTheLastDirectoryRecordOfTheRootDirectoryEntity, []int{0}),
		mustNewDirElement(tag.FileSetConsistencyFlag, []int{0}),
		mustNewDirElement(tag.DirectoryRecordSequence, records),
	}}

	data, err := Encode(ds)
	if err != nil {
		return fmt.Errorf("encode DICOMDIR: %w", err)
	}
	if err := patchDirectoryOffsets(data, len(plans)); err != nil {
		return fmt.Errorf("update DICOMDIR offsets: %w", err)
	}
	return os.WriteFile(filepath.Join(outputDir, "DICOMDIR"), data, 0644)
}

// splitFileID turns a relative path into Referenced File ID components.
func splitFileID(rel string) []string {
	var parts []string
	for rel != "." && rel != "" && rel != string(filepath.Separator) {
		dir, file := filepath.Split(rel)
		parts = append([]string{file}, parts...)
		rel = filepath.Clean(dir)
	}
	return parts
}

// patchDirectoryOffsets fills the record offsets in an encoded DICOMDIR. Each
// plan owns four consecutive records; patients are chained at the root and
// every other record points down to the next one.
func patchDirectoryOffsets(data []byte, numPlans int) error {
	positions := findItemPositions(data)
	if len(positions) != recordsPerPlan*numPlans {
		return fmt.Errorf("found %d directory records, want %d", len(positions), recordsPerPlan*numPlans)
	}

	lastPatient := positions[recordsPerPlan*(numPlans-1)]
	if err := patchUL(data, 0, internaldicom.NewTag(0x0004, 0x1200), positions[0]); err != nil {
		return err
	}
	if err := patchUL(data, 0, internaldicom.NewTag(0x0004, 0x1202), lastPatient); err != nil {
		return err
	}

	nextRecord := internaldicom.NewTag(0x0004, 0x1400)
	lowerLevel := internaldicom.NewTag(0x0004, 0x1420)
	for i, pos := range positions {
		var next, lower uint32
		level := i % recordsPerPlan
		if level == 0 && i+recordsPerPlan < len(positions) {
			next = positions[i+recordsPerPlan]
		}
		if level < recordsPerPlan-1 {
			lower = positions[i+1]
		}
		if err := patchUL(data, int(pos), nextRecord, next); err != nil {
			return err
		}
		if err := patchUL(data, int(pos), lowerLevel, lower); err != nil {
			return err
		}
	}
	return nil
}

// findItemPositions returns the file offsets of every item tag (FFFE,E000)
// after the preamble. A DICOMDIR has no sequence besides the record one.
func findItemPositions(data []byte) []uint32 {
	itemTag := []byte{0xFE, 0xFF, 0x00, 0xE0}
	var positions []uint32
	for i := 132; i+4 <= len(data); {
		n := bytes.Index(data[i:], itemTag)
		if n < 0 {
			break
		}
		positions = append(positions, uint32(i+n))
		i += n + 4
	}
	return positions
}

// patchUL overwrites the value of the first explicit VR UL element with tag
// t found at or after start.
func patchUL(data []byte, start int, t internaldicom.Tag, value uint32) error {
	pos := findFirstTag(data[start:], t, "UL")
	if pos < 0 || start+pos+12 > len(data) {
		return fmt.Errorf("tag %s not found after offset %d", t, start)
	}
	binary.LittleEndian.PutUint32(data[start+pos+8:], value)
	return nil
}

// findFirstTag is findTag searching forward: the offset of the first
// occurrence of t followed by vr, or -1.
func findFirstTag(data []byte, t internaldicom.Tag, vr string) int {
	pattern := make([]byte, 6)
	binary.LittleEndian.PutUint16(pattern[0:2], t.Group())
	binary.LittleEndian.PutUint16(pattern[2:4], t.Element())
	copy(pattern[4:], vr)
	return bytes.Index(data, pattern)
}
