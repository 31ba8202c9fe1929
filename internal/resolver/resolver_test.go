package resolver

import (
	"math"
	"testing"
)

func TestResolveImplicitBool(t *testing.T) {
	tag, v, err := Resolve("", "yes")
	if err != nil {
		t.Fatalf("Resolve error = %v", err)
	}
	if tag != BoolTag || v != true {
		t.Fatalf("Resolve(yes) = (%s, %v), want (%s, true)", tag, v, BoolTag)
	}
}

func TestResolveImplicitNull(t *testing.T) {
	tag, v, err := Resolve("", "~")
	if err != nil {
		t.Fatalf("Resolve error = %v", err)
	}
	if tag != NullTag || v != nil {
		t.Fatalf("Resolve(~) = (%s, %v), want (%s, nil)", tag, v, NullTag)
	}
}

func TestResolveImplicitInt(t *testing.T) {
	tag, v, err := Resolve("", "0x1A")
	if err != nil {
		t.Fatalf("Resolve error = %v", err)
	}
	if tag != IntTag || v != int64(26) {
		t.Fatalf("Resolve(0x1A) = (%s, %v), want (%s, 26)", tag, v, IntTag)
	}
}

func TestResolveSexagesimalInt(t *testing.T) {
	tag, v, err := Resolve("", "1:10:30")
	if err != nil {
		t.Fatalf("Resolve error = %v", err)
	}
	if tag != IntTag {
		t.Fatalf("tag = %s, want %s", tag, IntTag)
	}
	if want := int64(1*3600 + 10*60 + 30); v != want {
		t.Fatalf("value = %v, want %d", v, want)
	}
}

func TestResolveSexagesimalFloat(t *testing.T) {
	tag, v, err := Resolve("", "1:10:30.5")
	if err != nil {
		t.Fatalf("Resolve error = %v", err)
	}
	if tag != FloatTag {
		t.Fatalf("tag = %s, want %s", tag, FloatTag)
	}
	want := 1*3600.0 + 10*60.0 + 30.5
	if v != want {
		t.Fatalf("value = %v, want %v", v, want)
	}
}

func TestResolveImplicitFloatAndNaN(t *testing.T) {
	_, v, err := Resolve("", ".nan")
	if err != nil {
		t.Fatalf("Resolve error = %v", err)
	}
	f, ok := v.(float64)
	if !ok || !math.IsNaN(f) {
		t.Fatalf("value = %v, want NaN", v)
	}
}

func TestResolveImplicitString(t *testing.T) {
	tag, v, err := Resolve("", "hello")
	if err != nil {
		t.Fatalf("Resolve error = %v", err)
	}
	if tag != StrTag || v != "hello" {
		t.Fatalf("Resolve(hello) = (%s, %v), want (%s, hello)", tag, v, StrTag)
	}
}

func TestResolveExplicitBinary(t *testing.T) {
	tag, v, err := Resolve("!!binary", "aGVsbG8=")
	if err != nil {
		t.Fatalf("Resolve error = %v", err)
	}
	if tag != BinaryTag {
		t.Fatalf("tag = %s, want %s", tag, BinaryTag)
	}
	if got, want := string(v.([]byte)), "hello"; got != want {
		t.Fatalf("decoded = %q, want %q", got, want)
	}
}

func TestResolveExplicitBoolError(t *testing.T) {
	if _, _, err := Resolve("!!bool", "not-a-bool"); err == nil {
		t.Fatal("Resolve(!!bool, not-a-bool) = nil error, want an error")
	}
}

func TestShortAndLongTag(t *testing.T) {
	if got, want := ShortTag(IntTag), "!!int"; got != want {
		t.Fatalf("ShortTag(%s) = %q, want %q", IntTag, got, want)
	}
	if got, want := LongTag("!!int"), IntTag; got != want {
		t.Fatalf("LongTag(!!int) = %q, want %q", got, want)
	}
	if got, want := LongTag("!custom"), "!custom"; got != want {
		t.Fatalf("LongTag(!custom) = %q, want %q", got, want)
	}
}
