package synth

import (
	"encoding/binary"
	"fmt"
	"os"

	internaldicom "github.com/mrsinham/planmcs/internal/dicom"
)

// findTag returns the offset of the last little-endian occurrence of t
// followed by the given VR, or -1.
func findTag(data []byte, t internaldicom.Tag, vr string) int {
	tagBytes := make([]byte, 4)
	binary.LittleEndian.PutUint16(tagBytes[0:2], t.Group())
	binary.LittleEndian.PutUint16(tagBytes[2:4], t.Element())

	for i := len(data) - 6; i >= 0; i-- {
		if data[i] == tagBytes[0] && data[i+1] == tagBytes[1] &&
			data[i+2] == tagBytes[2] && data[i+3] == tagBytes[3] &&
			string(data[i+4:i+6]) == vr {
			return i
		}
	}
	return -1
}

// TruncateInBeams cuts an encoded plan halfway through its beam sequence, so
// the decoder hits end of data inside a nested element. Files without a
// beam sequence lose their second half.
func TruncateInBeams(data []byte) []byte {
	start := findTag(data, internaldicom.BeamSequence, "SQ")
	if start < 0 {
		start = findTag(data, internaldicom.IonBeamSequence, "SQ")
	}
	if start < 0 {
		start = 0
	}
	cut := start + (len(data)-start)/2
	// Land on an odd offset so the cut never falls on an element boundary.
	if cut%2 == 0 {
		cut++
	}
	if cut >= len(data) {
		cut = len(data) - 1
	}
	return data[:cut]
}

// TruncateFile applies TruncateInBeams to a file on disk.
func TruncateFile(filePath string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("read file for truncation: %w", err)
	}
	return os.WriteFile(filePath, TruncateInBeams(data), 0600)
}
