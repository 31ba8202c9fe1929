package event

import "testing"

func TestKindString(t *testing.T) {
	if got, want := Scalar.String(), "scalar"; got != want {
		t.Fatalf("Scalar.String() = %q, want %q", got, want)
	}
	if got, want := Kind(-1).String(), "event(-1)"; got != want {
		t.Fatalf("Kind(-1).String() = %q, want %q", got, want)
	}
}

func TestEventString(t *testing.T) {
	ev := Event{Kind: MappingStart}
	if got, want := ev.String(), "mapping start@line 1, column 1"; got != want {
		t.Fatalf("Event.String() = %q, want %q", got, want)
	}
}
