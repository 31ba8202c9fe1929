package halyard

import (
	"io"
	"os"

	"github.com/halyard-yaml/halyard/internal/reader"
)

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithResolver swaps the Resolver a Loader uses to assign tags to
// untagged (or non-specifically tagged) nodes.
func WithResolver(r Resolver) LoaderOption {
	return func(l *Loader) { l.resolver = r }
}

// WithConstructor swaps the Constructor a Loader uses to build typed
// values from composed nodes.
func WithConstructor(c *Constructor) LoaderOption {
	return func(l *Loader) { l.constructor = c }
}

// Loader is the input surface described in spec §6.1: it reads one
// document (Load), every document (LoadAll), or lets the caller pull
// documents lazily one at a time (Next).
type Loader struct {
	resolver    Resolver
	constructor *Constructor

	composer *Composer
}

// NewLoader creates a Loader reading from r.
func NewLoader(r io.Reader, opts ...LoaderOption) *Loader {
	l := &Loader{resolver: NewDefaultResolver(), constructor: NewDefaultConstructor()}
	for _, opt := range opts {
		opt(l)
	}
	l.composer = newPipelineComposer(reader.New(r), l.resolver, l.constructor)
	return l
}

// NewLoaderBytes creates a Loader reading from an in-memory buffer.
func NewLoaderBytes(b []byte, opts ...LoaderOption) *Loader {
	l := &Loader{resolver: NewDefaultResolver(), constructor: NewDefaultConstructor()}
	for _, opt := range opts {
		opt(l)
	}
	l.composer = newPipelineComposer(reader.NewBytes(b), l.resolver, l.constructor)
	return l
}

// LoadFile opens path and returns a Loader over its contents.
func LoadFile(path string, opts ...LoaderOption) (*Loader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return NewLoaderBytes(data, opts...), nil
}

// Load composes and returns exactly one document. It is an error for
// the stream to contain zero or more than one document.
func (l *Loader) Load() (*Node, error) {
	n, err := l.composer.GetNode()
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, &Error{Kind: ComposerErrorKind, Problem: "document is empty"}
	}
	extra, err := l.composer.GetNode()
	if err != nil {
		return nil, err
	}
	if extra != nil {
		return nil, &Error{Kind: ComposerErrorKind, Problem: "expected a single document, found more than one"}
	}
	return n, nil
}

// LoadAll composes and returns every document in the stream.
func (l *Loader) LoadAll() ([]*Node, error) {
	return l.composer.GetNodeAll()
}

// Next pulls a single document lazily, returning (nil, nil) at end of
// stream, to support streaming iteration over a large multi-document
// input without holding every document in memory at once.
func (l *Loader) Next() (*Node, error) {
	return l.composer.GetNode()
}
