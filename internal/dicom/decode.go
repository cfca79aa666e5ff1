// Package dicom decodes DICOM datasets into an attribute tree and offers
// typed, default-on-absent lookups over it.
package dicom

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/suyashkumar/dicom"
)

const (
	preambleLength = 128
	magic          = "DICM"
)

var (
	// ErrEmptyInput is returned when there are no bytes to decode.
	ErrEmptyInput = errors.New("empty input")
	// ErrMissingPreamble is returned when the 128-byte preamble and DICM
	// marker are absent.
	ErrMissingPreamble = errors.New("missing DICM preamble")
)

// DecodeError reports a stream that could not be decoded at all: truncated
// data, lengths running past the buffer or an unreadable header.
type DecodeError struct {
	Op  string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode dicom: %s: %v", e.Op, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Decoded is the result of one Decode call.
type Decoded struct {
	Tree           *Tree
	TransferSyntax string
	// Warnings lists elements that were skipped because their value could
	// not be converted.
	Warnings []string
}

// Decode parses a complete DICOM file held in memory. Individual elements
// that cannot be converted are skipped and reported in Decoded.Warnings;
// only a broken stream structure returns an error, always a *DecodeError.
func Decode(data []byte) (*Decoded, error) {
	if len(data) == 0 {
		return nil, &DecodeError{Op: "read header", Err: ErrEmptyInput}
	}
	if len(data) < preambleLength+len(magic) || string(data[preambleLength:preambleLength+len(magic)]) != magic {
		return nil, &DecodeError{Op: "read header", Err: ErrMissingPreamble}
	}

	elems, err := parseElements(data)
	if err != nil {
		return nil, err
	}

	d := &decoder{}
	tree := d.convert(elems, "")

	out := &Decoded{Tree: tree, Warnings: d.warnings}
	if v, ok := tree.Get(TransferSyntaxUID); ok && v.Kind == KindStr && v.Str != "" {
		out.TransferSyntax = v.Str
	} else {
		out.Warnings = append(out.Warnings, "transfer syntax UID missing from file meta header")
	}
	// Always expose the transfer syntax as a plain string attribute, even
	// when the meta element decoded to something else.
	tree.Set(TransferSyntaxUID, StrValue(out.TransferSyntax))

	return out, nil
}

// parseElements reads every top-level element. dicom.Parse treats an EOF
// inside an element as a clean end of stream, so the parser is driven here
// and only ErrorEndOfDICOM ends the loop without an error.
func parseElements(data []byte) ([]*dicom.Element, error) {
	p, err := dicom.NewParser(bytes.NewReader(data), int64(len(data)), nil, dicom.SkipPixelData())
	if err != nil {
		return nil, &DecodeError{Op: "read header", Err: err}
	}
	meta := p.GetMetadata().Elements
	elems := make([]*dicom.Element, 0, len(meta)+32)
	elems = append(elems, meta...)
	for {
		elem, err := p.Next()
		if errors.Is(err, dicom.ErrorEndOfDICOM) {
			return elems, nil
		}
		if err != nil {
			return nil, &DecodeError{Op: "parse dataset", Err: err}
		}
		elems = append(elems, elem)
	}
}

// decoder accumulates warnings while converting one dataset.
type decoder struct {
	warnings []string
}

func (d *decoder) warnf(format string, args ...any) {
	d.warnings = append(d.warnings, fmt.Sprintf(format, args...))
}

// convert builds a tree from a flat element list. path locates nested items
// in warnings, e.g. "(300A,00B0)[1]".
func (d *decoder) convert(elems []*dicom.Element, path string) *Tree {
	tree := NewTree()
	for _, elem := range elems {
		if elem == nil {
			continue
		}
		t := NewTag(elem.Tag.Group, elem.Tag.Element)
		v, err := d.convertElement(elem, path+t.String())
		if err != nil {
			d.warnf("skipped element %s%s %s: %v", path, t, elem.RawValueRepresentation, err)
			continue
		}
		tree.Set(t, v)
	}
	return tree
}

func (d *decoder) convertElement(elem *dicom.Element, path string) (Value, error) {
	if elem.Value == nil {
		return Value{}, errors.New("no value")
	}
	vr := elem.RawValueRepresentation

	switch raw := elem.Value.GetValue().(type) {
	case []string:
		return stringsToValue(vr, raw)
	case []int:
		return intsToValue(vr, raw), nil
	case []float64:
		return floatsToValue(vr, raw), nil
	case []byte:
		return StrValue(bytesToText(raw)), nil
	case []*dicom.SequenceItemValue:
		items := make([]*Tree, 0, len(raw))
		for i, item := range raw {
			children, ok := item.GetValue().([]*dicom.Element)
			if !ok {
				return Value{}, fmt.Errorf("item %d is not a dataset", i+1)
			}
			items = append(items, d.convert(children, fmt.Sprintf("%s[%d]", path, i+1)))
		}
		return SequenceValue(items), nil
	case dicom.PixelDataInfo:
		return StrValue("[PixelData]"), nil
	default:
		if _, supported := KindForVR(vr); supported {
			return Value{}, fmt.Errorf("unexpected value type %T", raw)
		}
		return StrValue(trimValue(elem.Value.String())), nil
	}
}
