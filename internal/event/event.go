// Package event defines the grammar-level items the parser produces and
// the composer (on load) or serializer (on dump) consumes.
package event

import (
	"fmt"

	"github.com/halyard-yaml/halyard/internal/mark"
	"github.com/halyard-yaml/halyard/internal/token"
)

// Kind enumerates the event kinds the grammar can produce.
type Kind int8

const (
	NoEvent Kind = iota

	StreamStart
	StreamEnd
	DocumentStart
	DocumentEnd
	Alias
	Scalar
	SequenceStart
	SequenceEnd
	MappingStart
	MappingEnd
)

var kindNames = [...]string{
	NoEvent:       "none",
	StreamStart:   "stream start",
	StreamEnd:     "stream end",
	DocumentStart: "document start",
	DocumentEnd:   "document end",
	Alias:         "alias",
	Scalar:        "scalar",
	SequenceStart: "sequence start",
	SequenceEnd:   "sequence end",
	MappingStart:  "mapping start",
	MappingEnd:    "mapping end",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("event(%d)", k)
	}
	return kindNames[k]
}

// Event is an immutable record flowing between the parser and the
// composer (loading) or between the serializer and the emitter
// (dumping).
type Event struct {
	Kind       Kind
	Start, End mark.Mark

	Encoding string // for StreamStart

	Version       *token.Version // for DocumentStart
	TagDirectives []token.TagDirective

	Anchor string // for Scalar, SequenceStart, MappingStart, Alias
	Tag    string // for Scalar, SequenceStart, MappingStart
	Value  string // for Scalar

	// Implicit reports whether the tag may be omitted because the
	// resolver would infer it anyway (plain scalars, and document/
	// collection starts). Implicit2 additionally covers non-plain
	// scalars whose quoted form still resolves to the same tag.
	Implicit  bool
	Implicit2 bool

	ScalarStyle     token.ScalarStyle
	CollectionStyle token.CollectionStyle

	ExplicitDocument bool // DOCUMENT-START used "---" explicitly
}

func (e Event) String() string {
	return fmt.Sprintf("%s@%s", e.Kind, e.Start)
}
