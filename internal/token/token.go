// Package token defines the vocabulary the scanner emits and the parser
// consumes: the 21 token kinds, scalar/collection style enums, and the
// directive payloads a token may carry.
package token

import (
	"fmt"

	"github.com/halyard-yaml/halyard/internal/mark"
)

// Kind enumerates the token kinds the scanner can produce.
type Kind int

const (
	NoToken Kind = iota

	StreamStart
	StreamEnd

	VersionDirective
	TagDirective
	DocumentStart
	DocumentEnd

	BlockSequenceStart
	BlockMappingStart
	BlockEnd

	FlowSequenceStart
	FlowSequenceEnd
	FlowMappingStart
	FlowMappingEnd

	BlockEntry
	FlowEntry
	Key
	Value

	Alias
	Anchor
	Tag
	Scalar
)

var kindNames = [...]string{
	NoToken:            "no-token",
	StreamStart:        "stream-start",
	StreamEnd:          "stream-end",
	VersionDirective:   "version-directive",
	TagDirective:       "tag-directive",
	DocumentStart:      "document-start",
	DocumentEnd:        "document-end",
	BlockSequenceStart: "block-sequence-start",
	BlockMappingStart:  "block-mapping-start",
	BlockEnd:           "block-end",
	FlowSequenceStart:  "flow-sequence-start",
	FlowSequenceEnd:    "flow-sequence-end",
	FlowMappingStart:   "flow-mapping-start",
	FlowMappingEnd:     "flow-mapping-end",
	BlockEntry:         "block-entry",
	FlowEntry:          "flow-entry",
	Key:                "key",
	Value:              "value",
	Alias:              "alias",
	Anchor:             "anchor",
	Tag:                "tag",
	Scalar:             "scalar",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) || kindNames[k] == "" {
		return fmt.Sprintf("token(%d)", k)
	}
	return kindNames[k]
}

// ScalarStyle is the presentation style of a scalar token or event.
type ScalarStyle int8

const (
	NoScalarStyle ScalarStyle = iota
	Plain
	SingleQuoted
	DoubleQuoted
	Literal
	Folded
	InvalidScalarStyle
)

func (s ScalarStyle) String() string {
	switch s {
	case Plain:
		return "plain"
	case SingleQuoted:
		return "single-quoted"
	case DoubleQuoted:
		return "double-quoted"
	case Literal:
		return "literal"
	case Folded:
		return "folded"
	default:
		return "any"
	}
}

// CollectionStyle is the presentation style of a sequence or mapping.
type CollectionStyle int8

const (
	NoCollectionStyle CollectionStyle = iota
	Block
	Flow
	InvalidCollectionStyle
)

// Version is a parsed %YAML directive.
type Version struct {
	Major, Minor int8
}

// TagDirective is a parsed %TAG directive: handle "!foo!" maps to prefix.
type TagDirective struct {
	Handle string
	Prefix string
}

// Token is an immutable record produced by the scanner. Only the fields
// relevant to Kind are populated; the rest are zero.
type Token struct {
	Kind        Kind
	Start, End  mark.Mark
	Encoding    string // for StreamStart
	Value       string // alias/anchor/scalar value, or tag handle
	Suffix      string // tag suffix, for Tag
	Prefix      string // tag directive prefix, for TagDirective
	ScalarStyle ScalarStyle
	Version     Version // for VersionDirective
}

func (t Token) String() string {
	return fmt.Sprintf("%s@%s", t.Kind, t.Start)
}
