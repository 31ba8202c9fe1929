package halyard

import (
	"io"
	"os"

	"github.com/halyard-yaml/halyard/internal/emitter"
	"github.com/halyard-yaml/halyard/internal/token"
)

// DumperOptions holds a Dumper's output configuration, the way spec
// §6.2 describes it. Construct one with functional options and pass it
// to NewDumper, or build it directly for tests.
type DumperOptions struct {
	Canonical     bool
	Indent        int // 2..9, default 2
	Width         int // default 80; passed to the emitter, which does not wrap lines
	CRLF          bool
	ExplicitStart bool
	ExplicitEnd   bool
	YAMLVersion   string // e.g. "1.1"; major must be "1"
	TagDirectives []token.TagDirective

	resolver    Resolver
	representer *Representer
}

// DumperOption configures a Dumper.
type DumperOption func(*DumperOptions)

func WithCanonicalDump(v bool) DumperOption     { return func(o *DumperOptions) { o.Canonical = v } }
func WithDumperIndent(n int) DumperOption       { return func(o *DumperOptions) { o.Indent = n } }
func WithDumperWidth(n int) DumperOption        { return func(o *DumperOptions) { o.Width = n } }
func WithDumperCRLF(v bool) DumperOption        { return func(o *DumperOptions) { o.CRLF = v } }
func WithExplicitStart(v bool) DumperOption     { return func(o *DumperOptions) { o.ExplicitStart = v } }
func WithExplicitEnd(v bool) DumperOption       { return func(o *DumperOptions) { o.ExplicitEnd = v } }
func WithYAMLVersion(v string) DumperOption     { return func(o *DumperOptions) { o.YAMLVersion = v } }
func WithTagDirectives(tds []token.TagDirective) DumperOption {
	return func(o *DumperOptions) { o.TagDirectives = tds }
}
func WithDumperResolver(r Resolver) DumperOption {
	return func(o *DumperOptions) { o.resolver = r }
}
func WithRepresenter(r *Representer) DumperOption {
	return func(o *DumperOptions) { o.representer = r }
}

// Dumper is the output surface described in spec §6.2: render a Node
// tree (or a represented Go value) to a byte sink.
type Dumper struct {
	w    io.Writer
	opts DumperOptions
}

// NewDumper creates a Dumper writing to w.
func NewDumper(w io.Writer, opts ...DumperOption) *Dumper {
	o := DumperOptions{Indent: 2, Width: 80, resolver: NewDefaultResolver(), representer: NewRepresenter()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Dumper{w: w, opts: o}
}

// DumpFile creates (or truncates) path and returns a Dumper writing to it.
func DumpFile(path string, opts ...DumperOption) (*Dumper, *os.File, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return NewDumper(f, opts...), f, nil
}

// Dump renders a single node tree as one YAML document.
func (d *Dumper) Dump(root *Node) error {
	ser := NewSerializer(d.opts.resolver)
	events, err := ser.Events(root, d.opts)
	if err != nil {
		return &Error{Kind: RepresenterErrorKind, Problem: err.Error()}
	}
	em := emitter.New(d.w,
		emitter.WithCanonical(d.opts.Canonical),
		emitter.WithIndent(d.opts.Indent),
		emitter.WithWidth(d.opts.Width),
		emitter.WithCRLF(d.opts.CRLF),
	)
	if err := em.EmitAll(events); err != nil {
		return wrapError(EmitterErrorKind, err)
	}
	return nil
}

// DumpValue represents v with the Dumper's Representer and dumps the
// resulting node tree.
func (d *Dumper) DumpValue(v interface{}) error {
	n, err := d.opts.representer.Represent(v)
	if err != nil {
		return &Error{Kind: RepresenterErrorKind, Problem: err.Error()}
	}
	return d.Dump(n)
}

// DumpAll renders each of roots as its own YAML document, separated the
// way multiple documents in one stream are: every document after the
// first starts with an explicit "---".
func (d *Dumper) DumpAll(roots []*Node) error {
	for i, r := range roots {
		dd := d
		if i > 0 {
			next := *d
			next.opts.ExplicitStart = true
			dd = &next
		}
		if err := dd.Dump(r); err != nil {
			return err
		}
	}
	return nil
}
