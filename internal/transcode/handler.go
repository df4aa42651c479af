package transcode

import (
	"bytes"
	"io"
	"math"
	"strconv"

	"github.com/mazrean/qjson/decoder"
	"github.com/mazrean/qjson/encoder"
	"github.com/mazrean/qjson/internal/pkg/json"
)

// rebuilder replays decode events as encoder calls.
// The first encoder error is kept and later events are ignored.
type rebuilder struct {
	enc *encoder.Encoder
	err error
}

var _ decoder.Handler = (*rebuilder)(nil)

func (r *rebuilder) record(err error) {
	if r.err == nil {
		r.err = err
	}
}

// OnError is a no-op, the syntax error is returned by Parse.
func (r *rebuilder) OnError(string) {}

func (r *rebuilder) OnNull() {
	if r.err == nil {
		r.record(r.enc.AddNull())
	}
}

func (r *rebuilder) OnBool(value bool) {
	if r.err == nil {
		r.record(r.enc.AddBool(value))
	}
}

func (r *rebuilder) OnInt(value int64) {
	if r.err == nil {
		r.record(r.enc.AddInt(value))
	}
}

func (r *rebuilder) OnFloat(value float64) {
	if r.err == nil {
		r.record(r.enc.AddFloat(value))
	}
}

func (r *rebuilder) OnString(value []byte) {
	if r.err == nil {
		r.record(r.enc.AddBytes(value))
	}
}

func (r *rebuilder) OnListStart() {
	if r.err == nil {
		r.record(r.enc.StartList())
	}
}

func (r *rebuilder) OnListEnd() {
	if r.err == nil {
		r.record(r.enc.EndContainer())
	}
}

func (r *rebuilder) OnMapStart() {
	if r.err == nil {
		r.record(r.enc.StartMap())
	}
}

func (r *rebuilder) OnMapEnd() {
	if r.err == nil {
		r.record(r.enc.EndContainer())
	}
}

// eventRecord is one line of the events output format
type eventRecord struct {
	Event string `json:"event"`
	Value any    `json:"value,omitempty"`
}

// floatValue keeps a fraction or an exponent in its JSON text so float events
// stay distinguishable from integer events
type floatValue float64

func (f floatValue) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, encoder.ErrInvalidNumber
	}

	b := strconv.AppendFloat(nil, v, 'g', -1, 64)
	if !bytes.ContainsAny(b, ".eE") {
		b = append(b, ".0"...)
	}
	return b, nil
}

// eventWriter writes every decode event as an eventRecord line
type eventWriter struct {
	enc *json.Encoder
	err error
}

var _ decoder.Handler = (*eventWriter)(nil)

func newEventWriter(w io.Writer) *eventWriter {
	return &eventWriter{
		enc: json.NewEncoder(w),
	}
}

func (e *eventWriter) write(kind decoder.Kind, value any) {
	if e.err != nil {
		return
	}
	e.err = e.enc.Encode(&eventRecord{
		Event: kind.String(),
		Value: value,
	})
}

func (e *eventWriter) OnError(msg string)    { e.write(decoder.KindError, msg) }
func (e *eventWriter) OnNull()               { e.write(decoder.KindNull, nil) }
func (e *eventWriter) OnBool(value bool)     { e.write(decoder.KindBool, value) }
func (e *eventWriter) OnInt(value int64)     { e.write(decoder.KindInt, value) }
func (e *eventWriter) OnFloat(value float64) { e.write(decoder.KindFloat, floatValue(value)) }
func (e *eventWriter) OnString(value []byte) { e.write(decoder.KindString, string(value)) }
func (e *eventWriter) OnListStart()          { e.write(decoder.KindListStart, nil) }
func (e *eventWriter) OnListEnd()            { e.write(decoder.KindListEnd, nil) }
func (e *eventWriter) OnMapStart()           { e.write(decoder.KindMapStart, nil) }
func (e *eventWriter) OnMapEnd()             { e.write(decoder.KindMapEnd, nil) }
