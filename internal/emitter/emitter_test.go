package emitter

import (
	"bytes"
	"testing"

	"github.com/halyard-yaml/halyard/internal/event"
	"github.com/halyard-yaml/halyard/internal/token"
)

func TestEmitScalarDocument(t *testing.T) {
	events := []event.Event{
		{Kind: event.StreamStart},
		{Kind: event.DocumentStart},
		{Kind: event.Scalar, Value: "hello", Implicit: true},
		{Kind: event.DocumentEnd},
		{Kind: event.StreamEnd},
	}
	var buf bytes.Buffer
	if err := New(&buf).EmitAll(events); err != nil {
		t.Fatalf("EmitAll() error = %v", err)
	}
	if got, want := buf.String(), "hello\n"; got != want {
		t.Fatalf("output = %q, want %q", got, want)
	}
}

func TestEmitBlockMapping(t *testing.T) {
	events := []event.Event{
		{Kind: event.StreamStart},
		{Kind: event.DocumentStart},
		{Kind: event.MappingStart, Implicit: true, CollectionStyle: token.Block},
		{Kind: event.Scalar, Value: "a", Implicit: true},
		{Kind: event.Scalar, Value: "1", Implicit: true},
		{Kind: event.MappingEnd},
		{Kind: event.DocumentEnd},
		{Kind: event.StreamEnd},
	}
	var buf bytes.Buffer
	if err := New(&buf).EmitAll(events); err != nil {
		t.Fatalf("EmitAll() error = %v", err)
	}
	if got, want := buf.String(), "a: 1\n"; got != want {
		t.Fatalf("output = %q, want %q", got, want)
	}
}

func TestEmitFlowSequence(t *testing.T) {
	events := []event.Event{
		{Kind: event.StreamStart},
		{Kind: event.DocumentStart},
		{Kind: event.SequenceStart, Implicit: true, CollectionStyle: token.Flow},
		{Kind: event.Scalar, Value: "1", Implicit: true},
		{Kind: event.Scalar, Value: "2", Implicit: true},
		{Kind: event.SequenceEnd},
		{Kind: event.DocumentEnd},
		{Kind: event.StreamEnd},
	}
	var buf bytes.Buffer
	if err := New(&buf).EmitAll(events); err != nil {
		t.Fatalf("EmitAll() error = %v", err)
	}
	if got, want := buf.String(), "[1, 2]\n"; got != want {
		t.Fatalf("output = %q, want %q", got, want)
	}
}

func TestEmitAnchorAndAlias(t *testing.T) {
	events := []event.Event{
		{Kind: event.StreamStart},
		{Kind: event.DocumentStart},
		{Kind: event.SequenceStart, Implicit: true, CollectionStyle: token.Flow},
		{Kind: event.Scalar, Value: "1", Anchor: "a", Implicit: true},
		{Kind: event.Alias, Anchor: "a"},
		{Kind: event.SequenceEnd},
		{Kind: event.DocumentEnd},
		{Kind: event.StreamEnd},
	}
	var buf bytes.Buffer
	if err := New(&buf).EmitAll(events); err != nil {
		t.Fatalf("EmitAll() error = %v", err)
	}
	if got, want := buf.String(), "[&a 1, *a]\n"; got != want {
		t.Fatalf("output = %q, want %q", got, want)
	}
}

func TestEmitDoubleQuotedEscapesControlChars(t *testing.T) {
	events := []event.Event{
		{Kind: event.StreamStart},
		{Kind: event.DocumentStart},
		{Kind: event.Scalar, Value: "a\x01b", ScalarStyle: token.DoubleQuoted},
		{Kind: event.DocumentEnd},
		{Kind: event.StreamEnd},
	}
	var buf bytes.Buffer
	if err := New(&buf).EmitAll(events); err != nil {
		t.Fatalf("EmitAll() error = %v", err)
	}
	if got, want := buf.String(), "\"a\\x01b\"\n"; got != want {
		t.Fatalf("output = %q, want %q", got, want)
	}
}
