package dicom

import (
	"strconv"
	"strings"
)

// GetString returns the attribute as text, or def when it is absent or is a
// sequence.
func GetString(tree *Tree, t Tag, def string) string {
	v, ok := tree.Get(t)
	if !ok {
		return def
	}
	switch v.Kind {
	case KindStr:
		return v.Str
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case KindFloatArray:
		parts := make([]string, len(v.Floats))
		for i, f := range v.Floats {
			parts[i] = strconv.FormatFloat(f, 'g', -1, 64)
		}
		return strings.Join(parts, `\`)
	default:
		return def
	}
}

// GetFloat returns the first numeric value of the attribute, or def.
func GetFloat(tree *Tree, t Tag, def float64) float64 {
	v, ok := tree.Get(t)
	if !ok {
		return def
	}
	switch v.Kind {
	case KindFloat:
		return v.Float
	case KindInt:
		return float64(v.Int)
	case KindFloatArray:
		if len(v.Floats) > 0 {
			return v.Floats[0]
		}
	case KindStr:
		if f, err := strconv.ParseFloat(trimValue(firstOf(v.Str)), 64); err == nil {
			return f
		}
	}
	return def
}

// GetInt returns the first numeric value of the attribute truncated to an
// integer, or def.
func GetInt(tree *Tree, t Tag, def int64) int64 {
	v, ok := tree.Get(t)
	if !ok {
		return def
	}
	switch v.Kind {
	case KindInt:
		return v.Int
	case KindFloat:
		return int64(v.Float)
	case KindFloatArray:
		if len(v.Floats) > 0 {
			return int64(v.Floats[0])
		}
	case KindStr:
		if i, err := strconv.ParseInt(trimValue(firstOf(v.Str)), 10, 64); err == nil {
			return i
		}
	}
	return def
}

// GetFloatArray returns a copy of the numeric values of the attribute. It is
// empty when the attribute is absent or not numeric.
func GetFloatArray(tree *Tree, t Tag) []float64 {
	v, ok := tree.Get(t)
	if !ok {
		return nil
	}
	switch v.Kind {
	case KindFloatArray:
		if len(v.Floats) == 0 {
			return nil
		}
		out := make([]float64, len(v.Floats))
		copy(out, v.Floats)
		return out
	case KindFloat:
		return []float64{v.Float}
	case KindInt:
		return []float64{float64(v.Int)}
	}
	return nil
}

// GetSequenceFirstMatch returns the items of the first candidate tag present
// in tree, trying candidates in the given order. It returns nil when none is
// present or when the first present one is empty.
func GetSequenceFirstMatch(tree *Tree, candidates ...Tag) []*Tree {
	for _, t := range candidates {
		v, ok := tree.Get(t)
		if !ok || v.Kind != KindSequence {
			continue
		}
		if len(v.Items) == 0 {
			return nil
		}
		return v.Items
	}
	return nil
}

// firstOf returns the first value of a backslash separated multi-value.
func firstOf(s string) string {
	if i := strings.IndexByte(s, '\\'); i >= 0 {
		return s[:i]
	}
	return s
}
