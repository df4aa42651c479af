package decoder

import (
	"fmt"
	"strconv"
)

// Kind identifies the variant of an Event.
type Kind uint8

const (
	KindError Kind = iota
	KindNull
	KindBool
	KindInt
	KindFloat
	KindString
	KindListStart
	KindListEnd
	KindMapStart
	KindMapEnd
)

var kindNames = [...]string{
	KindError:     "error",
	KindNull:      "null",
	KindBool:      "boolean",
	KindInt:       "integer",
	KindFloat:     "float",
	KindString:    "string",
	KindListStart: "list-start",
	KindListEnd:   "list-end",
	KindMapStart:  "map-start",
	KindMapEnd:    "map-end",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Event is an owned copy of one decode event.
// Str holds the string value for KindString and the message for KindError.
type Event struct {
	Kind  Kind
	Bool  bool
	Int   int64
	Float float64
	Str   string
}

func (e Event) String() string {
	switch e.Kind {
	case KindError, KindString:
		return fmt.Sprintf("%s(%q)", e.Kind, e.Str)
	case KindBool:
		return fmt.Sprintf("%s(%t)", e.Kind, e.Bool)
	case KindInt:
		return fmt.Sprintf("%s(%d)", e.Kind, e.Int)
	case KindFloat:
		return fmt.Sprintf("%s(%g)", e.Kind, e.Float)
	default:
		return e.Kind.String()
	}
}

// Recorder is a Handler that keeps every event it receives.
type Recorder struct {
	Events []Event
}

var _ Handler = (*Recorder)(nil)

func (r *Recorder) OnError(msg string) {
	r.Events = append(r.Events, Event{Kind: KindError, Str: msg})
}

func (r *Recorder) OnNull() {
	r.Events = append(r.Events, Event{Kind: KindNull})
}

func (r *Recorder) OnBool(value bool) {
	r.Events = append(r.Events, Event{Kind: KindBool, Bool: value})
}

func (r *Recorder) OnInt(value int64) {
	r.Events = append(r.Events, Event{Kind: KindInt, Int: value})
}

func (r *Recorder) OnFloat(value float64) {
	r.Events = append(r.Events, Event{Kind: KindFloat, Float: value})
}

func (r *Recorder) OnString(value []byte) {
	r.Events = append(r.Events, Event{Kind: KindString, Str: string(value)})
}

func (r *Recorder) OnListStart() {
	r.Events = append(r.Events, Event{Kind: KindListStart})
}

func (r *Recorder) OnListEnd() {
	r.Events = append(r.Events, Event{Kind: KindListEnd})
}

func (r *Recorder) OnMapStart() {
	r.Events = append(r.Events, Event{Kind: KindMapStart})
}

func (r *Recorder) OnMapEnd() {
	r.Events = append(r.Events, Event{Kind: KindMapEnd})
}

// Collect parses input and returns the events it produced. On failure the
// returned events end with the KindError event.
func Collect(input []byte, options ...Option) ([]Event, error) {
	var r Recorder
	err := New(options...).Parse(input, &r)
	return r.Events, err
}
