// Package transcode connects the decoder and the encoder: every input document
// is decoded into events which are either re-encoded into a fixed-size buffer or
// written out as one JSON object per event.
package transcode

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"sync"

	"github.com/mazrean/qjson/decoder"
	"github.com/mazrean/qjson/encoder"
	"github.com/mazrean/qjson/internal/metrics"
	myio "github.com/mazrean/qjson/internal/pkg/io"
	"github.com/mazrean/qjson/internal/pkg/log"

	"golang.org/x/sync/errgroup"
)

// Format selects what Run writes for each document.
type Format string

const (
	FormatJSON   Format = "json"   // re-encoded JSON text
	FormatEvents Format = "events" // one JSON object per decode event
)

const DefaultBufferSize = 64 << 10

// ErrDocumentsFailed is returned by Run when at least one document could not be transcoded.
var ErrDocumentsFailed = errors.New("documents failed")

var durationGauge = metrics.NewGauge("transcode_duration")

// Logger defines the interface for logging operations used by the Transcoder
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Errorf(format string, args ...any)
}

// Transcoder reads JSON documents and writes them back in the configured format
type Transcoder struct {
	logger      Logger
	indent      int
	floatDigits int
	maxDepth    int
	bufferSize  int
	format      Format
	lines       bool
	workers     int

	buffers  sync.Pool
	decoders sync.Pool
}

// transcodeOption holds the configuration options for a Transcoder instance
type transcodeOption struct {
	logger      Logger
	indent      int
	floatDigits int
	maxDepth    int
	bufferSize  int
	format      Format
	lines       bool
	workers     int
}

// Option defines a function type for configuring Transcoder instances
type Option func(*transcodeOption)

// WithLogger sets the logger instance for the Transcoder
func WithLogger(logger Logger) Option {
	return func(o *transcodeOption) {
		o.logger = logger
	}
}

// WithIndent sets the indentation of re-encoded JSON. Zero means compact output.
func WithIndent(spaces int) Option {
	return func(o *transcodeOption) {
		if spaces >= 0 {
			o.indent = spaces
		}
	}
}

// WithFloatDigits sets the significant digits of re-encoded floats
func WithFloatDigits(digits int) Option {
	return func(o *transcodeOption) {
		if digits > 0 {
			o.floatDigits = digits
		}
	}
}

// WithMaxDepth limits the nesting depth accepted by the decoder and the encoder
func WithMaxDepth(depth int) Option {
	return func(o *transcodeOption) {
		if depth > 0 {
			o.maxDepth = depth
		}
	}
}

// WithBufferSize sets the size of the fixed output buffer of each document.
// Documents whose output does not fit fail.
func WithBufferSize(size int) Option {
	return func(o *transcodeOption) {
		if size > 0 {
			o.bufferSize = size
		}
	}
}

// WithFormat sets the output format
func WithFormat(format Format) Option {
	return func(o *transcodeOption) {
		o.format = format
	}
}

// WithLines makes Run treat every input line as a separate document
func WithLines(lines bool) Option {
	return func(o *transcodeOption) {
		o.lines = lines
	}
}

// WithWorkers sets how many documents are transcoded concurrently.
// The size must be positive, otherwise it will be ignored.
func WithWorkers(workers int) Option {
	return func(o *transcodeOption) {
		if workers > 0 {
			o.workers = workers
		}
	}
}

// New creates a new Transcoder instance with the given options
func New(options ...Option) *Transcoder {
	o := &transcodeOption{
		logger:      log.NewLogger(log.Info),
		indent:      encoder.DefaultIndent,
		floatDigits: encoder.DefaultFloatDigits,
		maxDepth:    decoder.DefaultMaxDepth,
		bufferSize:  DefaultBufferSize,
		format:      FormatJSON,
		workers:     runtime.GOMAXPROCS(0),
	}
	for _, option := range options {
		option(o)
	}

	t := &Transcoder{
		logger:      o.logger,
		indent:      o.indent,
		floatDigits: o.floatDigits,
		maxDepth:    o.maxDepth,
		bufferSize:  o.bufferSize,
		format:      o.format,
		lines:       o.lines,
		workers:     o.workers,
	}
	t.buffers.New = func() any {
		buf := make([]byte, t.bufferSize)
		return &buf
	}
	t.decoders.New = func() any {
		return decoder.New(decoder.WithMaxDepth(t.maxDepth))
	}

	return t
}

// document is one unit of input, numbered in input order
type document struct {
	seq  int
	data []byte
}

// result is the output for one document
type result struct {
	seq int
	out []byte
	// buf is the pooled buffer backing out, if any
	buf *[]byte
	err error
}

// Run reads documents from r and writes the transcoded output to w in input order.
// A document that fails is logged and skipped; Run then returns ErrDocumentsFailed
// after processing the remaining input.
func (t *Transcoder) Run(ctx context.Context, w io.Writer, r io.Reader) (err error) {
	eg, ctx := errgroup.WithContext(ctx)
	resCh := make(chan *result, t.workers)

	var failed int
	eg.Go(func() error {
		var encodeErr error
		failed, encodeErr = t.encodeWorker(w, resCh)
		return encodeErr
	})

	err = t.decodeWorker(ctx, r, func(ctx context.Context, doc *document) error {
		res := t.transcode(doc)

		select {
		case resCh <- res:
		case <-ctx.Done():
			return ctx.Err()
		}

		return nil
	})
	// every handler has returned, nothing sends on resCh anymore
	close(resCh)

	if waitErr := eg.Wait(); waitErr != nil {
		if err == nil {
			err = waitErr
		} else {
			err = errors.Join(err, waitErr)
		}
	}
	if err != nil {
		return fmt.Errorf("transcode: %w", err)
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d", ErrDocumentsFailed, failed)
	}

	return nil
}

// decodeWorker splits the input into documents and calls handler for each of
// them on a bounded number of goroutines
func (t *Transcoder) decodeWorker(ctx context.Context, r io.Reader, handler func(context.Context, *document) error) (err error) {
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(t.workers)
	defer func() {
		deferErr := eg.Wait()
		if deferErr != nil {
			if err == nil {
				err = deferErr
			} else {
				err = errors.Join(err, deferErr)
			}
		}
	}()

	r = myio.NewSkipPrefixReader(r, myio.BOM)

	if !t.lines {
		data, readErr := io.ReadAll(r)
		if readErr != nil {
			err = fmt.Errorf("read input: %w", readErr)
			return
		}

		eg.Go(func() error {
			return handler(ctx, &document{seq: 0, data: data})
		})
		return
	}

	dr := myio.NewDelimReader(r, '\n')
	for seq := 0; ; seq++ {
		if err = ctx.Err(); err != nil {
			return
		}

		segment, nextErr := dr.Next()
		if nextErr != nil {
			if !errors.Is(nextErr, io.EOF) {
				err = fmt.Errorf("read line %d: %w", seq+1, nextErr)
			}
			return
		}

		doc := &document{seq: seq, data: bytes.Clone(segment)}
		eg.Go(func() error {
			return handler(ctx, doc)
		})
	}
}

// encodeWorker writes results in sequence order and returns the number of failed documents
func (t *Transcoder) encodeWorker(w io.Writer, ch <-chan *result) (int, error) {
	bw := bufio.NewWriter(w)
	pending := map[int]*result{}
	next := 0
	failed := 0

	for res := range ch {
		pending[res.seq] = res

		for {
			ready, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			next++

			if ready.err != nil {
				t.logger.Errorf("document %d: %v", ready.seq+1, ready.err)
				failed++
			}

			if len(ready.out) > 0 {
				if _, err := bw.Write(ready.out); err != nil {
					return failed, fmt.Errorf("write document %d: %w", ready.seq+1, err)
				}
				if t.format == FormatJSON {
					if err := bw.WriteByte('\n'); err != nil {
						return failed, fmt.Errorf("write document %d: %w", ready.seq+1, err)
					}
				}
			}

			if ready.buf != nil {
				t.buffers.Put(ready.buf)
			}
		}

		if err := bw.Flush(); err != nil {
			return failed, fmt.Errorf("flush output: %w", err)
		}
	}

	return failed, nil
}

func (t *Transcoder) transcode(doc *document) *result {
	res := &result{seq: doc.seq}

	durationGauge.Stopwatch(func() {
		dec := t.decoders.Get().(*decoder.Decoder)
		defer t.decoders.Put(dec)

		switch t.format {
		case FormatEvents:
			res.out, res.err = t.events(dec, doc.data)
		default:
			res.buf = t.buffers.Get().(*[]byte)
			res.out, res.err = t.reencode(dec, *res.buf, doc.data)
		}
	}, string(t.format))

	t.logger.Debugf("document %d: %d bytes in, %d bytes out", doc.seq+1, len(doc.data), len(res.out))

	return res
}

// reencode decodes data and encodes it again into buf
func (t *Transcoder) reencode(dec *decoder.Decoder, buf []byte, data []byte) ([]byte, error) {
	enc := encoder.New(buf,
		encoder.WithIndent(t.indent),
		encoder.WithFloatDigits(t.floatDigits),
		encoder.WithMaxDepth(t.maxDepth),
	)

	h := &rebuilder{enc: enc}
	if err := dec.Parse(data, h); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if h.err != nil {
		return nil, fmt.Errorf("encode: %w", h.err)
	}

	n, err := enc.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}

	return buf[:n], nil
}

// events decodes data and returns one JSON line per event. When decoding fails
// the lines up to and including the error event are returned with the error.
func (t *Transcoder) events(dec *decoder.Decoder, data []byte) ([]byte, error) {
	out := &bytes.Buffer{}
	h := newEventWriter(out)

	parseErr := dec.Parse(data, h)
	if h.err != nil {
		return nil, fmt.Errorf("write events: %w", h.err)
	}
	if parseErr != nil {
		return out.Bytes(), fmt.Errorf("decode: %w", parseErr)
	}

	return out.Bytes(), nil
}
