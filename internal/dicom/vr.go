package dicom

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Value representations understood by the decoder. Anything not listed here
// is kept as a best-effort string.
const (
	vrSQ = "SQ"
	vrDS = "DS"
	vrIS = "IS"
)

// vrKinds maps a VR code to the semantic kind of a single-valued element.
// Multi-valued numeric elements always decode to KindFloatArray.
var vrKinds = map[string]Kind{
	"AE": KindStr, "AS": KindStr, "CS": KindStr, "DA": KindStr, "DT": KindStr,
	"LO": KindStr, "LT": KindStr, "PN": KindStr, "SH": KindStr, "ST": KindStr,
	"TM": KindStr, "UC": KindStr, "UI": KindStr, "UR": KindStr, "UT": KindStr,

	vrIS: KindInt, "SS": KindInt, "SL": KindInt, "SV": KindInt,
	"US": KindInt, "UL": KindInt, "UV": KindInt,

	vrDS: KindFloat, "FL": KindFloat, "FD": KindFloat,
	"OF": KindFloatArray, "OD": KindFloatArray,

	vrSQ: KindSequence,
}

// KindForVR returns the kind a VR decodes to and whether the VR is supported.
func KindForVR(vr string) (Kind, bool) {
	k, ok := vrKinds[strings.ToUpper(vr)]
	if !ok {
		return KindStr, false
	}
	return k, true
}

// trimValue strips the space and NUL padding used to reach even lengths.
func trimValue(s string) string {
	return strings.TrimRight(strings.TrimSpace(s), "\x00 ")
}

// stringsToValue converts the textual values of a string-encoded element.
// DS and IS arrive as text and are parsed into numbers here.
func stringsToValue(vr string, values []string) (Value, error) {
	kind, supported := KindForVR(vr)
	if !supported || kind == KindStr {
		trimmed := make([]string, len(values))
		for i, v := range values {
			trimmed[i] = trimValue(v)
		}
		return StrValue(strings.Join(trimmed, `\`)), nil
	}

	trimmed := make([]string, len(values))
	empty := 0
	for i, raw := range values {
		trimmed[i] = trimValue(raw)
		if trimmed[i] == "" {
			empty++
		}
	}
	if empty == len(values) {
		return numericValue(kind, []float64{}), nil
	}
	if empty > 0 {
		return Value{}, fmt.Errorf("%s has %d empty entries out of %d", vr, empty, len(values))
	}

	nums := make([]float64, 0, len(values))
	for _, v := range trimmed {
		f, err := parseNumberString(v)
		if err != nil {
			return Value{}, fmt.Errorf("invalid %s value %q", vr, v)
		}
		nums = append(nums, f)
	}
	return numericValue(kind, nums), nil
}

// parseNumberString parses DS and IS text. strconv.ParseFloat also accepts
// NaN, Inf and hex floats, none of which are legal decimal strings.
func parseNumberString(s string) (float64, error) {
	if strings.Trim(s, "0123456789+-.eE") != "" {
		return 0, fmt.Errorf("illegal character in %q", s)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%q is not finite", s)
	}
	return f, nil
}

// intsToValue converts binary integer elements (US, UL, SS, SL...).
func intsToValue(vr string, values []int) Value {
	kind, _ := KindForVR(vr)
	nums := make([]float64, len(values))
	for i, v := range values {
		nums[i] = float64(v)
	}
	if kind != KindInt && kind != KindFloat {
		kind = KindInt
	}
	return numericValue(kind, nums)
}

// floatsToValue converts binary float elements (FL, FD, OF, OD).
func floatsToValue(vr string, values []float64) Value {
	kind, _ := KindForVR(vr)
	if kind != KindFloatArray {
		kind = KindFloat
	}
	nums := make([]float64, len(values))
	copy(nums, values)
	return numericValue(kind, nums)
}

// numericValue collapses single values into Int or Float and keeps
// everything else (empty or multi-valued) as a float array.
func numericValue(kind Kind, nums []float64) Value {
	if len(nums) != 1 || kind == KindFloatArray {
		return FloatArrayValue(nums)
	}
	if kind == KindInt {
		return IntValue(int64(nums[0]))
	}
	return FloatValue(nums[0])
}

// bytesToText renders raw bytes as text when they look like text and as hex
// otherwise, so unsupported VRs stay probeable.
func bytesToText(b []byte) string {
	if utf8.Valid(b) {
		s := trimValue(string(b))
		printable := true
		for _, r := range s {
			if !unicode.IsPrint(r) {
				printable = false
				break
			}
		}
		if printable {
			return s
		}
	}
	const maxHex = 64
	if len(b) > maxHex {
		return fmt.Sprintf("%X...(%d bytes)", b[:maxHex], len(b))
	}
	return fmt.Sprintf("%X", b)
}
