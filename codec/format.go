package codec

import (
	"bytes"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/go-json-experiment/json"
	"github.com/pelletier/go-toml/v2"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

// Format names an encoding.
type Format string

// Supported formats.
const (
	JSON    Format = "json"
	MsgPack Format = "msgpack"
	YAML    Format = "yaml"
	TOML    Format = "toml"
)

// Formats returns the supported formats.
func Formats() []Format { return []Format{JSON, MsgPack, YAML, TOML} }

// ParseFormat returns the format named s. It accepts "yml" and "mpk".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "json":
		return JSON, nil
	case "msgpack", "mpk":
		return MsgPack, nil
	case "yaml", "yml":
		return YAML, nil
	case "toml":
		return TOML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Marshal encodes v in format, using the writer registered for T if any.
func Marshal[T any](format Format, v T) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, format, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes data in format into a T, using the reader registered
// for T if any.
func Unmarshal[T any](format Format, data []byte) (T, error) {
	return Decode[T](bytes.NewReader(data), format)
}

// Encode writes v to w in format, using the writer registered for T if any.
func Encode[T any](w io.Writer, format Format, v T) error {
	gen, err := NewGenerator(w, format)
	if err != nil {
		return err
	}
	if wr, ok := WriterFor[T](); ok {
		err = wr.Write(v, gen, &Provider{Format: format})
	} else {
		err = gen.WriteObject(v)
	}
	if err != nil {
		return err
	}
	return gen.close()
}

// Decode reads a T from r in format, using the reader registered for T if
// any.
func Decode[T any](r io.Reader, format Format) (T, error) {
	var zero T
	p, err := NewParser(r, format)
	if err != nil {
		return zero, err
	}
	if rd, ok := ReaderFor[T](); ok {
		return rd.Read(p, &Context{Format: format})
	}
	var v T
	if err := p.ReadValueAs(&v); err != nil {
		return zero, err
	}
	return v, nil
}

// StreamGenerator is a Generator bound to an output stream.
type StreamGenerator struct {
	format Format
	out    *errWriter
	encode func(any) error
	flush  func() error
}

// NewGenerator returns a generator writing format to w.
func NewGenerator(w io.Writer, format Format) (*StreamGenerator, error) {
	g := &StreamGenerator{format: format, out: &errWriter{w: w}}
	switch format {
	case JSON:
		g.encode = func(v any) error { return json.MarshalWrite(g.out, v, json.Deterministic(true)) }
	case MsgPack:
		enc := msgpack.NewEncoder(g.out)
		enc.SetSortMapKeys(true)
		g.encode = enc.Encode
	case YAML:
		enc := yaml.NewEncoder(g.out)
		enc.SetIndent(2)
		g.encode = enc.Encode
		g.flush = enc.Close
	case TOML:
		g.encode = toml.NewEncoder(g.out).Encode
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	return g, nil
}

// WriteObject implements Generator.
func (g *StreamGenerator) WriteObject(v any) error {
	if err := g.encode(v); err != nil {
		if g.out.err != nil {
			return &IOError{Op: "write", Cause: g.out.err}
		}
		return &GenerationError{Format: g.format, Type: reflect.TypeOf(v), Cause: err}
	}
	return nil
}

func (g *StreamGenerator) close() error {
	if g.flush == nil {
		return nil
	}
	if err := g.flush(); err != nil {
		return &IOError{Op: "write", Cause: err}
	}
	return nil
}

// StreamParser is a Parser bound to an input stream.
type StreamParser struct {
	format Format
	in     *errReader
	decode func(any) error
}

// NewParser returns a parser reading format from r.
func NewParser(r io.Reader, format Format) (*StreamParser, error) {
	p := &StreamParser{format: format, in: &errReader{r: r}}
	switch format {
	case JSON:
		p.decode = func(v any) error { return json.UnmarshalRead(p.in, v) }
	case MsgPack:
		p.decode = msgpack.NewDecoder(p.in).Decode
	case YAML:
		p.decode = yaml.NewDecoder(p.in).Decode
	case TOML:
		p.decode = toml.NewDecoder(p.in).Decode
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	return p, nil
}

// ReadValueAs implements Parser.
func (p *StreamParser) ReadValueAs(v any) error {
	if err := p.decode(v); err != nil {
		if p.in.err != nil {
			return &IOError{Op: "read", Cause: p.in.err}
		}
		return &ProcessingError{Format: p.format, Type: reflect.TypeOf(v), Cause: err}
	}
	return nil
}

// errWriter records the first error of the underlying writer so stream
// failures can be told apart from encoding failures.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(b []byte) (int, error) {
	n, err := e.w.Write(b)
	if err != nil && e.err == nil {
		e.err = err
	}
	return n, err
}

type errReader struct {
	r   io.Reader
	err error
}

func (e *errReader) Read(b []byte) (int, error) {
	n, err := e.r.Read(b)
	if err != nil && err != io.EOF && e.err == nil {
		e.err = err
	}
	return n, err
}
