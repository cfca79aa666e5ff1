package synth

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"

	internaldicom "github.com/mrsinham/planmcs/internal/dicom"
)

func TestSplitFileID(t *testing.T) {
	tests := []struct {
		rel  string
		want []string
	}{
		{"RP0001.dcm", []string{"RP0001.dcm"}},
		{filepath.Join("PT0", "RP0001.dcm"), []string{"PT0", "RP0001.dcm"}},
		{filepath.Join("a", "b", "c"), []string{"a", "b", "c"}},
	}
	for _, tt := range tests {
		if got := splitFileID(tt.rel); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("splitFileID(%q) = %v, want %v", tt.rel, got, tt.want)
		}
	}
}

func TestWriteDICOMDIR(t *testing.T) {
	dir := t.TempDir()
	plans, err := Generate(Options{NumPlans: 2, OutputDir: dir, Seed: 1, DICOMDIR: true})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	path := filepath.Join(dir, "DICOMDIR")
	ds, err := dicom.ParseFile(path, nil)
	if err != nil {
		t.Fatalf("DICOMDIR does not parse: %v", err)
	}
	seq, err := ds.FindElementByTag(tag.DirectoryRecordSequence)
	if err != nil {
		t.Fatalf("no DirectoryRecordSequence: %v", err)
	}
	items := seq.Value.GetValue().([]*dicom.SequenceItemValue)
	if len(items) != recordsPerPlan*len(plans) {
		t.Fatalf("got %d records, want %d", len(items), recordsPerPlan*len(plans))
	}

	wantTypes := []string{"PATIENT", "STUDY", "SERIES", "PLAN"}
	for i, item := range items {
		elems := item.GetValue().([]*dicom.Element)
		var recordType string
		for _, e := range elems {
			if e.Tag == tag.DirectoryRecordType {
				recordType = e.Value.GetValue().([]string)[0]
			}
		}
		if recordType != wantTypes[i%recordsPerPlan] {
			t.Errorf("record %d type = %q, want %q", i, recordType, wantTypes[i%recordsPerPlan])
		}
	}
}

func TestWriteDICOMDIR_Offsets(t *testing.T) {
	dir := t.TempDir()
	if _, err := Generate(Options{NumPlans: 2, OutputDir: dir, Seed: 1, DICOMDIR: true}); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "DICOMDIR"))
	if err != nil {
		t.Fatal(err)
	}

	positions := findItemPositions(data)
	if len(positions) != 8 {
		t.Fatalf("found %d records, want 8", len(positions))
	}
	readUL := func(start int, tg internaldicom.Tag) uint32 {
		t.Helper()
		pos := findFirstTag(data[start:], tg, "UL")
		if pos < 0 {
			t.Fatalf("%s not found after %d", tg, start)
		}
		return binary.LittleEndian.Uint32(data[start+pos+8:])
	}

	if got := readUL(0, internaldicom.NewTag(0x0004, 0x1200)); got != positions[0] {
		t.Errorf("first root record = %d, want %d", got, positions[0])
	}
	if got := readUL(0, internaldicom.NewTag(0x0004, 0x1202)); got != positions[4] {
		t.Errorf("last root record = %d, want %d", got, positions[4])
	}

	next := internaldicom.NewTag(0x0004, 0x1400)
	lower := internaldicom.NewTag(0x0004, 0x1420)
	if got := readUL(int(positions[0]), next); got != positions[4] {
		t.Errorf("patient 1 next = %d, want %d", got, positions[4])
	}
	if got := readUL(int(positions[4]), next); got != 0 {
		t.Errorf("patient 2 next = %d, want 0", got)
	}
	for i := 0; i < 3; i++ {
		if got := readUL(int(positions[i]), lower); got != positions[i+1] {
			t.Errorf("record %d lower = %d, want %d", i, got, positions[i+1])
		}
	}
	if got := readUL(int(positions[3]), lower); got != 0 {
		t.Errorf("plan record lower = %d, want 0", got)
	}
}

func TestWriteDICOMDIR_NonPlan(t *testing.T) {
	dir := t.TempDir()
	plans, err := Generate(Options{NumPlans: 1, OutputDir: dir, Seed: 1, Variants: []Variant{NonPlan}})
	if err != nil {
		t.Fatal(err)
	}
	if err := WriteDICOMDIR(dir, plans); err != nil {
		t.Fatalf("WriteDICOMDIR() error = %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "DICOMDIR"))
	if err != nil {
		t.Fatal(err)
	}
	if findFirstTag(data, internaldicom.DirectoryRecordType, "CS") < 0 {
		t.Fatal("no record types written")
	}
	if !bytes.Contains(data, []byte("IMAGE")) {
		t.Error("non-plan file should get an IMAGE record")
	}
}

func TestWriteDICOMDIR_Empty(t *testing.T) {
	if err := WriteDICOMDIR(t.TempDir(), nil); err == nil {
		t.Error("expected an error with no plans")
	}
}
