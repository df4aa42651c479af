package decoder

// Handler receives decode events in document order.
//
// The slice passed to OnString is only valid until OnString returns; copy it to
// keep it. Map keys are reported through OnString, each followed by the events of
// the corresponding value.
type Handler interface {
	OnError(msg string)
	OnNull()
	OnBool(value bool)
	OnInt(value int64)
	OnFloat(value float64)
	OnString(value []byte)
	OnListStart()
	OnListEnd()
	OnMapStart()
	OnMapEnd()
}

// HandlerFuncs is a Handler built from optional functions.
// Events whose function is nil are ignored.
type HandlerFuncs struct {
	Error     func(msg string)
	Null      func()
	Bool      func(value bool)
	Int       func(value int64)
	Float     func(value float64)
	String    func(value []byte)
	ListStart func()
	ListEnd   func()
	MapStart  func()
	MapEnd    func()
}

var _ Handler = HandlerFuncs{}

func (f HandlerFuncs) OnError(msg string) {
	if f.Error != nil {
		f.Error(msg)
	}
}

func (f HandlerFuncs) OnNull() {
	if f.Null != nil {
		f.Null()
	}
}

func (f HandlerFuncs) OnBool(value bool) {
	if f.Bool != nil {
		f.Bool(value)
	}
}

func (f HandlerFuncs) OnInt(value int64) {
	if f.Int != nil {
		f.Int(value)
	}
}

func (f HandlerFuncs) OnFloat(value float64) {
	if f.Float != nil {
		f.Float(value)
	}
}

func (f HandlerFuncs) OnString(value []byte) {
	if f.String != nil {
		f.String(value)
	}
}

func (f HandlerFuncs) OnListStart() {
	if f.ListStart != nil {
		f.ListStart()
	}
}

func (f HandlerFuncs) OnListEnd() {
	if f.ListEnd != nil {
		f.ListEnd()
	}
}

func (f HandlerFuncs) OnMapStart() {
	if f.MapStart != nil {
		f.MapStart()
	}
}

func (f HandlerFuncs) OnMapEnd() {
	if f.MapEnd != nil {
		f.MapEnd()
	}
}
