package dicom

import (
	"fmt"

	"github.com/suyashkumar/dicom/pkg/tag"
)

// SequenceMarker is the metadata value shown for sequence attributes.
const SequenceMarker = "[Sequence]"

// Keyword returns the dictionary keyword of t, or Tag_GGGGEEEE when the tag
// is private or unknown.
func Keyword(t Tag) string {
	info, err := tag.Find(tag.Tag{Group: t.Group(), Element: t.Element()})
	if err != nil || info.Name == "" {
		return fmt.Sprintf("Tag_%04X%04X", t.Group(), t.Element())
	}
	return info.Name
}

// Metadata flattens the top level of a tree into keyword -> value text.
// Sequences are shown as SequenceMarker and empty values are left out.
func Metadata(tree *Tree) map[string]string {
	out := make(map[string]string, tree.Len())
	for _, t := range tree.Tags() {
		v, _ := tree.Get(t)
		var s string
		if v.Kind == KindSequence {
			s = SequenceMarker
		} else {
			s = GetString(tree, t, "")
		}
		if s == "" {
			continue
		}
		out[Keyword(t)] = s
	}
	return out
}
