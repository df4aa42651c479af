// Package encoder writes JSON into a caller-supplied fixed-size buffer.
//
// The call sequence is the document shape: scalars are appended with the AddXxx
// methods, containers are opened with StartList/StartMap and closed with
// EndContainer, and EndEncoding closes whatever is still open and terminates the
// buffer. The Encoder never writes past len(buf) and does not allocate while
// encoding once its container stack has grown to the document's depth.
package encoder

import (
	"errors"
	"math"
	"strconv"
)

const (
	DefaultIndent      = 0
	DefaultFloatDigits = 15
	DefaultMaxDepth    = 200
)

var (
	ErrBufferFull    = errors.New("buffer full")
	ErrKeyExpected   = errors.New("map key must be a string")
	ErrNoContainer   = errors.New("no open container")
	ErrDanglingKey   = errors.New("map key has no value")
	ErrMaxDepth      = errors.New("maximum nesting depth exceeded")
	ErrInvalidNumber = errors.New("number is not representable in JSON")
	ErrFinished      = errors.New("encoding already finished")
	ErrInvalidRange  = errors.New("substring range out of bounds")
)

// frame is one open list or map.
type frame struct {
	isMap    bool
	children int
}

// Encoder is the encoding context for a single document.
// It must not be used from multiple goroutines at the same time.
type Encoder struct {
	buf []byte
	pos int

	stack            []frame
	expectingKey     bool
	firstInContainer bool
	firstInDocument  bool
	finished         bool

	// err is set once the buffer ran out; the output is incomplete from then on.
	err error

	indent      int
	floatDigits int
	maxDepth    int
}

// encoderOption holds the configuration options for an Encoder
type encoderOption struct {
	indent      int
	floatDigits int
	maxDepth    int
}

// Option configures an Encoder
type Option func(*encoderOption)

// WithIndent sets the number of spaces per nesting level.
// Zero produces compact output; negative values are ignored.
func WithIndent(spaces int) Option {
	return func(o *encoderOption) {
		if spaces >= 0 {
			o.indent = spaces
		}
	}
}

// WithFloatDigits sets the number of significant digits used for floats.
// The value must be positive, otherwise it will be ignored.
func WithFloatDigits(digits int) Option {
	return func(o *encoderOption) {
		if digits > 0 {
			o.floatDigits = digits
		}
	}
}

// WithMaxDepth sets the maximum number of simultaneously open containers.
// The value must be positive, otherwise it will be ignored.
func WithMaxDepth(depth int) Option {
	return func(o *encoderOption) {
		if depth > 0 {
			o.maxDepth = depth
		}
	}
}

// New creates an Encoder writing into buf[0:len(buf)].
func New(buf []byte, options ...Option) *Encoder {
	o := &encoderOption{
		indent:      DefaultIndent,
		floatDigits: DefaultFloatDigits,
		maxDepth:    DefaultMaxDepth,
	}
	for _, option := range options {
		option(o)
	}

	e := &Encoder{
		indent:      o.indent,
		floatDigits: o.floatDigits,
		maxDepth:    o.maxDepth,
		stack:       make([]frame, 0, min(o.maxDepth, 16)),
	}
	e.Reset(buf)

	return e
}

// Reset discards the current document and starts a new one in buf,
// keeping the configuration and the container stack storage.
func (e *Encoder) Reset(buf []byte) {
	e.buf = buf
	e.pos = 0
	e.stack = e.stack[:0]
	e.expectingKey = false
	e.firstInContainer = false
	e.firstInDocument = true
	e.finished = false
	e.err = nil
}

// Bytes returns the encoded output so far, without the terminator.
func (e *Encoder) Bytes() []byte {
	return e.buf[:e.pos]
}

// Len returns the number of bytes written so far.
func (e *Encoder) Len() int {
	return e.pos
}

// Depth returns the number of open containers.
func (e *Encoder) Depth() int {
	return len(e.stack)
}

// Err returns the error that poisoned the encoder, if any.
func (e *Encoder) Err() error {
	return e.err
}

// AddNull adds a null value.
func (e *Encoder) AddNull() error {
	if err := e.checkValue(); err != nil {
		return err
	}
	return addLiteral(e, "null")
}

func (e *Encoder) AddBool(value bool) error {
	if err := e.checkValue(); err != nil {
		return err
	}
	if value {
		return addLiteral(e, "true")
	}
	return addLiteral(e, "false")
}

func (e *Encoder) AddInt(value int64) error {
	if err := e.checkValue(); err != nil {
		return err
	}

	var tmp [20]byte
	return addLiteral(e, strconv.AppendInt(tmp[:0], value, 10))
}

// AddFloat adds value using significant-digits formatting.
// NaN and infinities are rejected with ErrInvalidNumber.
func (e *Encoder) AddFloat(value float64) error {
	if err := e.checkValue(); err != nil {
		return err
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return ErrInvalidNumber
	}

	var tmp [32]byte
	return addLiteral(e, strconv.AppendFloat(tmp[:0], value, 'g', e.floatDigits, 64))
}

// AddString adds a UTF-8 string. Do not include a byte order mark.
func (e *Encoder) AddString(s string) error {
	return addString(e, s)
}

// AddSubstring adds s[start:end] as a string.
// An inverted or out of range span fails with ErrInvalidRange.
func (e *Encoder) AddSubstring(s string, start, end int) error {
	if start < 0 || start > end || end > len(s) {
		return ErrInvalidRange
	}
	return addString(e, s[start:end])
}

// AddBytes adds b as a string. b is not retained.
func (e *Encoder) AddBytes(b []byte) error {
	return addString(e, b)
}

// StartList opens a list. Lists and maps cannot be map keys.
func (e *Encoder) StartList() error {
	return e.startContainer(false)
}

func (e *Encoder) StartMap() error {
	return e.startContainer(true)
}

// EndContainer closes the innermost open list or map.
func (e *Encoder) EndContainer() error {
	if err := e.check(); err != nil {
		return err
	}
	if len(e.stack) == 0 {
		return ErrNoContainer
	}

	top := e.stack[len(e.stack)-1]
	if top.isMap && !e.expectingKey {
		return ErrDanglingKey
	}

	e.stack = e.stack[:len(e.stack)-1]
	if err := e.writeIndentation(); err != nil {
		return err
	}

	closer := byte(']')
	if top.isMap {
		closer = '}'
	}
	if err := e.writeByte(closer); err != nil {
		return err
	}

	e.firstInContainer = false
	e.expectingKey = len(e.stack) > 0 && e.stack[len(e.stack)-1].isMap

	return nil
}

// EndEncoding closes all open containers and writes a single 0 byte after the
// output. It returns the length of the JSON text, not counting the terminator.
func (e *Encoder) EndEncoding() (int, error) {
	if err := e.check(); err != nil {
		return 0, err
	}

	for len(e.stack) > 0 {
		if err := e.EndContainer(); err != nil {
			return 0, err
		}
	}

	if err := e.reserve(1); err != nil {
		return 0, err
	}
	e.buf[e.pos] = 0
	e.finished = true

	return e.pos, nil
}

func (e *Encoder) check() error {
	if e.err != nil {
		return e.err
	}
	if e.finished {
		return ErrFinished
	}
	return nil
}

// checkValue validates a non-string value, which is never allowed as a map key.
func (e *Encoder) checkValue() error {
	if err := e.check(); err != nil {
		return err
	}
	if e.expectingKey {
		return ErrKeyExpected
	}
	return nil
}

func (e *Encoder) startContainer(isMap bool) error {
	if err := e.checkValue(); err != nil {
		return err
	}
	if len(e.stack) >= e.maxDepth {
		return ErrMaxDepth
	}

	if err := e.beginValue(); err != nil {
		return err
	}

	opener := byte('[')
	if isMap {
		opener = '{'
	}
	if err := e.writeByte(opener); err != nil {
		return err
	}

	e.stack = append(e.stack, frame{isMap: isMap})
	e.firstInContainer = true
	e.expectingKey = isMap

	return nil
}

func addLiteral[T ~string | ~[]byte](e *Encoder, literal T) error {
	if err := e.beginValue(); err != nil {
		return err
	}
	return write(e, literal)
}

// beginValue writes the separator and indentation that precede a new value
// and advances the key/value state of the enclosing container.
func (e *Encoder) beginValue() error {
	if e.firstInDocument {
		e.firstInDocument = false
		return nil
	}

	var top *frame
	if len(e.stack) > 0 {
		top = &e.stack[len(e.stack)-1]
		top.children++
	}
	inMap := top != nil && top.isMap
	isKey := e.expectingKey
	if inMap {
		e.expectingKey = !e.expectingKey
	}

	if e.firstInContainer {
		e.firstInContainer = false
		return e.writeIndentation()
	}

	if !inMap || isKey {
		if err := e.writeByte(','); err != nil {
			return err
		}
		return e.writeIndentation()
	}

	if err := e.writeByte(':'); err != nil {
		return err
	}
	if e.indent > 0 {
		return e.writeByte(' ')
	}
	return nil
}

func (e *Encoder) writeIndentation() error {
	if e.indent <= 0 {
		return nil
	}

	spaces := e.indent * len(e.stack)
	if err := e.reserve(spaces + 1); err != nil {
		return err
	}
	e.buf[e.pos] = '\n'
	e.pos++
	for i := 0; i < spaces; i++ {
		e.buf[e.pos+i] = ' '
	}
	e.pos += spaces

	return nil
}

// reserve fails and poisons the encoder when fewer than n bytes remain.
func (e *Encoder) reserve(n int) error {
	if n > len(e.buf)-e.pos {
		e.err = ErrBufferFull
		return e.err
	}
	return nil
}

func (e *Encoder) writeByte(c byte) error {
	if err := e.reserve(1); err != nil {
		return err
	}
	e.buf[e.pos] = c
	e.pos++
	return nil
}

func write[T ~string | ~[]byte](e *Encoder, b T) error {
	if err := e.reserve(len(b)); err != nil {
		return err
	}
	e.pos += copy(e.buf[e.pos:], b)
	return nil
}
