//go:build !amd64 && !arm64

// This file is used when building for architectures Sonic does not support, utilizing the go-json library

package json

import (
	"io"

	"github.com/goccy/go-json"
)

// Decoder represents a JSON decoder that uses go-json library
type Decoder struct {
	dec *json.Decoder
}

// NewDecoder creates a new JSON decoder that wraps the provided io.Reader
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{
		dec: json.NewDecoder(r),
	}
}

// Decode decodes JSON data into the provided interface
func (d *Decoder) Decode(v any) error {
	return d.dec.Decode(v)
}

// Encoder represents a JSON encoder that uses go-json library
type Encoder struct {
	enc *json.Encoder
}

// NewEncoder creates a new JSON encoder that wraps the provided io.Writer
func NewEncoder(w io.Writer) *Encoder {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	return &Encoder{
		enc: enc,
	}
}

// Encode encodes the provided interface into JSON format
// Note: go-json encoder automatically adds a newline after each encoding
func (e *Encoder) Encode(v any) error {
	return e.enc.Encode(v)
}

// Valid reports whether data is a valid JSON encoding
func Valid(data []byte) bool {
	return json.Valid(data)
}
