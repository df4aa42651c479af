//go:build amd64 || arm64

// Package json wraps the JSON library used for auxiliary output, selected per architecture.
package json

import (
	"bytes"
	"io"

	"github.com/bytedance/sonic"
	"github.com/bytedance/sonic/decoder"
)

var api = sonic.Config{
	EscapeHTML:       false,
	CompactMarshaler: true,
}.Froze()

// Decoder represents a JSON decoder that utilizes the high-performance Sonic decoder
type Decoder struct {
	dec *decoder.StreamDecoder
}

// NewDecoder creates a new JSON decoder that wraps the provided io.Reader
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{
		dec: decoder.NewStreamDecoder(r),
	}
}

// Decode decodes JSON data into the provided interface
func (d *Decoder) Decode(v any) error {
	return d.dec.Decode(v)
}

// Encoder represents a JSON encoder that utilizes the high-performance Sonic encoder
type Encoder struct {
	writer io.Writer
	buf    bytes.Buffer
	enc    sonic.Encoder
}

// NewEncoder creates a new JSON encoder that wraps the provided io.Writer
func NewEncoder(w io.Writer) *Encoder {
	e := &Encoder{
		writer: w,
	}
	e.enc = api.NewEncoder(&e.buf)
	e.enc.SetEscapeHTML(false)

	return e
}

// Encode encodes the provided interface into JSON format
// followed by a newline, so every call produces one line.
func (e *Encoder) Encode(v any) error {
	e.buf.Reset()
	if err := e.enc.Encode(v); err != nil {
		return err
	}

	e.buf.Truncate(len(bytes.TrimRight(e.buf.Bytes(), "\n")))
	e.buf.WriteByte('\n')

	_, err := e.writer.Write(e.buf.Bytes())
	return err
}

// Valid reports whether data is a valid JSON encoding
func Valid(data []byte) bool {
	return api.Valid(data)
}
