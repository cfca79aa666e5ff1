package dicom

import (
	"fmt"
	"sort"
)

// Tag identifies a data element as group<<16 | element.
type Tag uint32

// NewTag builds a Tag from its group and element numbers.
func NewTag(group, element uint16) Tag {
	return Tag(uint32(group)<<16 | uint32(element))
}

// Group returns the group number of the tag.
func (t Tag) Group() uint16 { return uint16(t >> 16) }

// Element returns the element number of the tag.
func (t Tag) Element() uint16 { return uint16(t) }

// String returns the tag in (GGGG,EEEE) form.
func (t Tag) String() string {
	return fmt.Sprintf("(%04X,%04X)", t.Group(), t.Element())
}

// Kind is the semantic type of a decoded value.
type Kind int

const (
	KindStr Kind = iota
	KindInt
	KindFloat
	KindFloatArray
	KindSequence
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindStr:
		return "Str"
	case KindInt:
		return "Int"
	case KindFloat:
		return "Float"
	case KindFloatArray:
		return "FloatArray"
	case KindSequence:
		return "Sequence"
	default:
		return "Unknown"
	}
}

// Value is a decoded attribute value. Only the field matching Kind is set.
type Value struct {
	Kind   Kind
	Str    string
	Int    int64
	Float  float64
	Floats []float64
	Items  []*Tree
}

// StrValue wraps a string.
func StrValue(s string) Value { return Value{Kind: KindStr, Str: s} }

// IntValue wraps an integer.
func IntValue(i int64) Value { return Value{Kind: KindInt, Int: i} }

// FloatValue wraps a single float.
func FloatValue(f float64) Value { return Value{Kind: KindFloat, Float: f} }

// FloatArrayValue wraps a multi-valued numeric attribute.
func FloatArrayValue(fs []float64) Value { return Value{Kind: KindFloatArray, Floats: fs} }

// SequenceValue wraps an ordered list of items.
func SequenceValue(items []*Tree) Value { return Value{Kind: KindSequence, Items: items} }

// Tree is one dataset (or sequence item): a set of attributes keyed by tag.
type Tree struct {
	attrs map[Tag]Value
}

// NewTree returns an empty tree.
func NewTree() *Tree {
	return &Tree{attrs: make(map[Tag]Value)}
}

// Set stores v under t, replacing any previous value.
func (tr *Tree) Set(t Tag, v Value) {
	if tr.attrs == nil {
		tr.attrs = make(map[Tag]Value)
	}
	tr.attrs[t] = v
}

// Get returns the value stored under t. It is safe on a nil tree.
func (tr *Tree) Get(t Tag) (Value, bool) {
	if tr == nil {
		return Value{}, false
	}
	v, ok := tr.attrs[t]
	return v, ok
}

// Has reports whether t is present.
func (tr *Tree) Has(t Tag) bool {
	_, ok := tr.Get(t)
	return ok
}

// Len returns the number of attributes.
func (tr *Tree) Len() int {
	if tr == nil {
		return 0
	}
	return len(tr.attrs)
}

// Tags returns the tags of the tree in ascending order.
func (tr *Tree) Tags() []Tag {
	if tr == nil {
		return nil
	}
	tags := make([]Tag, 0, len(tr.attrs))
	for t := range tr.attrs {
		tags = append(tags, t)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	return tags
}
