package reader

import "testing"

func TestPeekAndForwardASCII(t *testing.T) {
	r := NewBytes([]byte("abc\n"))
	if got := r.Peek(0); got != 'a' {
		t.Fatalf("Peek(0) = %q, want 'a'", got)
	}
	if got := r.Peek(1); got != 'b' {
		t.Fatalf("Peek(1) = %q, want 'b'", got)
	}
	r.Forward(1)
	if got := r.Peek(0); got != 'b' {
		t.Fatalf("after Forward(1), Peek(0) = %q, want 'b'", got)
	}
	if got := r.Mark().Column; got != 1 {
		t.Fatalf("Mark().Column = %d, want 1", got)
	}
}

func TestForwardTracksLineBreaks(t *testing.T) {
	r := NewBytes([]byte("ab\ncd"))
	r.Forward(3) // consumes "a", "b", "\n"
	m := r.Mark()
	if m.Line != 1 || m.Column != 0 {
		t.Fatalf("Mark() = %+v, want line 1 column 0", m)
	}
	if got := r.Peek(0); got != 'c' {
		t.Fatalf("Peek(0) after newline = %q, want 'c'", got)
	}
}

func TestPrefix(t *testing.T) {
	r := NewBytes([]byte("hello\n"))
	if got, want := r.Prefix(5), "hello"; got != want {
		t.Fatalf("Prefix(5) = %q, want %q", got, want)
	}
}

func TestEndOfStreamPeekIsNUL(t *testing.T) {
	r := NewBytes([]byte("a"))
	r.Forward(1)
	if got := r.Peek(0); got != 0 {
		t.Fatalf("Peek(0) at EOF = %q, want NUL", got)
	}
}

func TestUTF8BOMDetected(t *testing.T) {
	input := append([]byte{0xEF, 0xBB, 0xBF}, []byte("x\n")...)
	r := NewBytes(input)
	if got := r.Peek(0); got != 'x' {
		t.Fatalf("Peek(0) after BOM = %q, want 'x'", got)
	}
	if got := r.Encoding(); got != UTF8 {
		t.Fatalf("Encoding() = %v, want UTF8", got)
	}
}

func TestUTF16LEDecoding(t *testing.T) {
	// "hi\n" encoded little-endian, no BOM forces detection to UTF-8 so
	// prepend an explicit LE BOM.
	input := []byte{0xFF, 0xFE, 'h', 0, 'i', 0, '\n', 0}
	r := NewBytes(input)
	if got := r.Prefix(3); got != "hi\n" {
		t.Fatalf("Prefix(3) = %q, want %q", got, "hi\n")
	}
	if got := r.Encoding(); got != UTF16LE {
		t.Fatalf("Encoding() = %v, want UTF16LE", got)
	}
}

func TestRejectsControlCharacter(t *testing.T) {
	r := NewBytes([]byte("a\x01b"))
	r.Forward(1)
	if err := r.Err(); err == nil {
		t.Fatal("Err() = nil, want an error for a disallowed control character")
	}
}
