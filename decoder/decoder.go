// Package decoder scans JSON text and reports its contents as a sequence of
// events delivered to a Handler.
//
// The decoder does not build a tree and keeps no history of prior events. Strings
// without escape sequences are handed to the Handler as sub-slices of the input;
// strings with escapes are decoded into a scratch buffer owned by the Decoder and
// reused across calls.
package decoder

import (
	"errors"
	"fmt"
	"unicode"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/buger/jsonparser"
)

const DefaultMaxDepth = 200

// SyntaxError describes malformed input. Parse returns it after the Handler's
// OnError has been called with the same text.
type SyntaxError struct {
	// Offset is the byte offset in the input where the error was detected.
	Offset int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s at offset %d", e.Msg, e.Offset)
}

// Decoder parses JSON documents. A Decoder may be reused for any number of
// documents but must not be used by multiple goroutines at the same time.
type Decoder struct {
	maxDepth int
	scratch  []byte

	input []byte
	pos   int
	depth int
	h     Handler
}

// decoderOption holds the configuration options for a Decoder
type decoderOption struct {
	maxDepth int
	scratch  []byte
}

// Option configures a Decoder
type Option func(*decoderOption)

// WithMaxDepth sets the maximum nesting depth of lists and maps.
// The value must be positive, otherwise it will be ignored.
func WithMaxDepth(depth int) Option {
	return func(o *decoderOption) {
		if depth > 0 {
			o.maxDepth = depth
		}
	}
}

// WithScratch sets the buffer strings with escape sequences are decoded into.
// It grows when a decoded string does not fit.
func WithScratch(buf []byte) Option {
	return func(o *decoderOption) {
		o.scratch = buf[:0]
	}
}

func New(options ...Option) *Decoder {
	o := &decoderOption{
		maxDepth: DefaultMaxDepth,
	}
	for _, option := range options {
		option(o)
	}

	return &Decoder{
		maxDepth: o.maxDepth,
		scratch:  o.scratch,
	}
}

// Parse decodes input, which must hold exactly one JSON value surrounded by
// optional whitespace, and calls h for each entity in document order.
// On malformed input h.OnError is called once, no further events are delivered,
// and a *SyntaxError is returned.
func (d *Decoder) Parse(input []byte, h Handler) error {
	d.input = input
	d.pos = 0
	d.depth = 0
	d.h = h
	defer func() {
		d.input = nil
		d.h = nil
	}()

	d.skipWhitespace()
	err := d.parseValue()
	if err == nil {
		d.skipWhitespace()
		if d.pos < len(d.input) {
			err = d.errorf("unexpected character %q after top-level value", d.input[d.pos])
		}
	}
	if err != nil {
		var syntaxErr *SyntaxError
		if errors.As(err, &syntaxErr) {
			h.OnError(syntaxErr.Error())
		}
		return err
	}

	return nil
}

// Parse decodes input with a new Decoder using the default configuration.
func Parse(input []byte, h Handler) error {
	return New().Parse(input, h)
}

func ParseString(input string, h Handler) error {
	return New().Parse([]byte(input), h)
}

func (d *Decoder) errorf(format string, args ...any) error {
	return &SyntaxError{
		Offset: d.pos,
		Msg:    fmt.Sprintf(format, args...),
	}
}

func (d *Decoder) skipWhitespace() {
	for d.pos < len(d.input) {
		switch d.input[d.pos] {
		case ' ', '\t', '\r', '\n':
			d.pos++
		default:
			return
		}
	}
}

func (d *Decoder) parseValue() error {
	if d.pos >= len(d.input) {
		return d.errorf("unexpected end of input")
	}

	switch c := d.input[d.pos]; c {
	case '{':
		return d.parseMap()
	case '[':
		return d.parseList()
	case '"':
		s, err := d.parseString()
		if err != nil {
			return err
		}
		d.h.OnString(s)
		return nil
	case 't':
		if err := d.parseLiteral("true"); err != nil {
			return err
		}
		d.h.OnBool(true)
		return nil
	case 'f':
		if err := d.parseLiteral("false"); err != nil {
			return err
		}
		d.h.OnBool(false)
		return nil
	case 'n':
		if err := d.parseLiteral("null"); err != nil {
			return err
		}
		d.h.OnNull()
		return nil
	default:
		if c == '-' || isDigit(c) {
			return d.parseNumber()
		}
		return d.errorf("unexpected character %q", c)
	}
}

func (d *Decoder) parseLiteral(literal string) error {
	if len(d.input)-d.pos < len(literal) || string(d.input[d.pos:d.pos+len(literal)]) != literal {
		return d.errorf("invalid literal, expected %q", literal)
	}
	d.pos += len(literal)
	return nil
}

func (d *Decoder) enter() error {
	if d.depth >= d.maxDepth {
		return d.errorf("maximum nesting depth of %d exceeded", d.maxDepth)
	}
	d.depth++
	return nil
}

func (d *Decoder) parseList() error {
	if err := d.enter(); err != nil {
		return err
	}
	d.pos++
	d.h.OnListStart()

	d.skipWhitespace()
	if d.pos < len(d.input) && d.input[d.pos] == ']' {
		d.pos++
		d.depth--
		d.h.OnListEnd()
		return nil
	}

	for {
		d.skipWhitespace()
		if err := d.parseValue(); err != nil {
			return err
		}

		d.skipWhitespace()
		if d.pos >= len(d.input) {
			return d.errorf("unterminated list")
		}
		switch c := d.input[d.pos]; c {
		case ',':
			d.pos++
		case ']':
			d.pos++
			d.depth--
			d.h.OnListEnd()
			return nil
		default:
			return d.errorf("expected ',' or ']' after list element, found %q", c)
		}
	}
}

func (d *Decoder) parseMap() error {
	if err := d.enter(); err != nil {
		return err
	}
	d.pos++
	d.h.OnMapStart()

	d.skipWhitespace()
	if d.pos < len(d.input) && d.input[d.pos] == '}' {
		d.pos++
		d.depth--
		d.h.OnMapEnd()
		return nil
	}

	for {
		d.skipWhitespace()
		if d.pos >= len(d.input) {
			return d.errorf("unterminated map")
		}
		if c := d.input[d.pos]; c != '"' {
			return d.errorf("expected string map key, found %q", c)
		}
		key, err := d.parseString()
		if err != nil {
			return err
		}
		d.h.OnString(key)

		d.skipWhitespace()
		if d.pos >= len(d.input) {
			return d.errorf("unterminated map")
		}
		if c := d.input[d.pos]; c != ':' {
			return d.errorf("expected ':' after map key, found %q", c)
		}
		d.pos++

		d.skipWhitespace()
		if err := d.parseValue(); err != nil {
			return err
		}

		d.skipWhitespace()
		if d.pos >= len(d.input) {
			return d.errorf("unterminated map")
		}
		switch c := d.input[d.pos]; c {
		case ',':
			d.pos++
		case '}':
			d.pos++
			d.depth--
			d.h.OnMapEnd()
			return nil
		default:
			return d.errorf("expected ',' or '}' after map value, found %q", c)
		}
	}
}

// parseNumber scans -?digits(.digits)?([eE][+-]?digits)? and reports an integer
// unless a fraction or exponent is present or the value overflows int64.
func (d *Decoder) parseNumber() error {
	start := d.pos
	if d.input[d.pos] == '-' {
		d.pos++
	}
	if !d.skipDigits() {
		return d.errorf("invalid number, expected digit")
	}

	isFloat := false
	if d.pos < len(d.input) && d.input[d.pos] == '.' {
		isFloat = true
		d.pos++
		if !d.skipDigits() {
			return d.errorf("invalid number, expected digit after decimal point")
		}
	}
	if d.pos < len(d.input) && (d.input[d.pos] == 'e' || d.input[d.pos] == 'E') {
		isFloat = true
		d.pos++
		if d.pos < len(d.input) && (d.input[d.pos] == '+' || d.input[d.pos] == '-') {
			d.pos++
		}
		if !d.skipDigits() {
			return d.errorf("invalid number, expected digit in exponent")
		}
	}

	literal := d.input[start:d.pos]
	if !isFloat {
		v, err := jsonparser.ParseInt(literal)
		if err == nil {
			d.h.OnInt(v)
			return nil
		}
		if !errors.Is(err, jsonparser.OverflowIntegerError) {
			return &SyntaxError{Offset: start, Msg: fmt.Sprintf("invalid integer %q", literal)}
		}
	}

	f, err := jsonparser.ParseFloat(literal)
	if err != nil {
		return &SyntaxError{Offset: start, Msg: fmt.Sprintf("invalid number %q", literal)}
	}
	d.h.OnFloat(f)

	return nil
}

func (d *Decoder) skipDigits() bool {
	start := d.pos
	for d.pos < len(d.input) && isDigit(d.input[d.pos]) {
		d.pos++
	}
	return d.pos > start
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// parseString decodes the string starting at the opening quote. The result
// aliases either the input or the scratch buffer.
func (d *Decoder) parseString() ([]byte, error) {
	start := d.pos + 1
	i := start
	for ; i < len(d.input); i++ {
		c := d.input[i]
		if c == '"' {
			d.pos = i + 1
			return d.input[start:i], nil
		}
		if c == '\\' {
			break
		}
	}

	buf := append(d.scratch[:0], d.input[start:i]...)
	for i < len(d.input) {
		c := d.input[i]
		if c == '"' {
			d.pos = i + 1
			d.scratch = buf
			return buf, nil
		}
		if c != '\\' {
			buf = append(buf, c)
			i++
			continue
		}

		d.pos = i
		i++
		if i >= len(d.input) {
			break
		}
		switch esc := d.input[i]; esc {
		case '"', '\\', '/':
			buf = append(buf, esc)
		case 'b':
			buf = append(buf, '\b')
		case 'f':
			buf = append(buf, '\f')
		case 'n':
			buf = append(buf, '\n')
		case 'r':
			buf = append(buf, '\r')
		case 't':
			buf = append(buf, '\t')
		case 'u':
			r, ok := hex4(d.input[i+1:])
			if !ok {
				d.scratch = buf
				return nil, d.errorf("invalid \\u escape, expected four hex digits")
			}
			i += 4
			if utf16.IsSurrogate(r) {
				r = d.lowSurrogate(r, i+1)
				if r != unicode.ReplacementChar {
					i += 6
				}
			}
			buf = utf8.AppendRune(buf, r)
		default:
			d.scratch = buf
			return nil, d.errorf("invalid escape character %q", esc)
		}
		i++
	}

	d.scratch = buf
	d.pos = start - 1
	return nil, d.errorf("unterminated string")
}

// lowSurrogate combines the high surrogate high with a \uXXXX escape at
// input[at:]. It returns unicode.ReplacementChar when no valid pair is found,
// leaving the following escape to be decoded on its own.
func (d *Decoder) lowSurrogate(high rune, at int) rune {
	rest := d.input[min(at, len(d.input)):]
	if len(rest) < 6 || rest[0] != '\\' || rest[1] != 'u' {
		return unicode.ReplacementChar
	}
	low, ok := hex4(rest[2:])
	if !ok {
		return unicode.ReplacementChar
	}
	return utf16.DecodeRune(high, low)
}

func hex4(b []byte) (rune, bool) {
	if len(b) < 4 {
		return 0, false
	}

	var r rune
	for _, c := range b[:4] {
		switch {
		case c >= '0' && c <= '9':
			c -= '0'
		case c >= 'a' && c <= 'f':
			c = c - 'a' + 10
		case c >= 'A' && c <= 'F':
			c = c - 'A' + 10
		default:
			return 0, false
		}
		r = r<<4 | rune(c)
	}
	return r, true
}
