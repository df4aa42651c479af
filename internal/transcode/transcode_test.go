package transcode

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/mazrean/qjson/internal/pkg/json"
	"github.com/mazrean/qjson/internal/pkg/log"
)

func newTestTranscoder(t *testing.T, logs io.Writer, options ...Option) *Transcoder {
	t.Helper()

	return New(append([]Option{WithLogger(log.NewLoggerWithWriter(logs, log.Error))}, options...)...)
}

func TestTranscoder_Run(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		options  []Option
		input    string
		expected string
	}{
		{
			name:     "compact",
			input:    " {\"a\" : [1, 2.5, \"x\\n\", true, null], \"b\": {}}\n",
			expected: "{\"a\":[1,2.5,\"x\\n\",true,null],\"b\":{}}\n",
		},
		{
			name:     "escapes are normalized",
			input:    `["\u0041\/\ud83d\ude00"]`,
			expected: "[\"A/\U0001F600\"]\n",
		},
		{
			name:     "indent",
			options:  []Option{WithIndent(2)},
			input:    `{"a":1,"b":[true]}`,
			expected: "{\n  \"a\": 1,\n  \"b\": [\n    true\n  ]\n}\n",
		},
		{
			name:     "indent empty containers",
			options:  []Option{WithIndent(2)},
			input:    `{"a":[],"b":{}}`,
			expected: "{\n  \"a\": [\n  ],\n  \"b\": {\n  }\n}\n",
		},
		{
			name:     "float digits",
			options:  []Option{WithFloatDigits(3)},
			input:    `[3.14159]`,
			expected: "[3.14]\n",
		},
		{
			name:     "lines",
			options:  []Option{WithLines(true)},
			input:    "[1]\n\n  \n{\"a\":null}\n\"s\"",
			expected: "[1]\n{\"a\":null}\n\"s\"\n",
		},
		{
			name:     "byte order mark",
			input:    "\xEF\xBB\xBF[\"\xEF\xBB\xBF\"]",
			expected: "[\"\xEF\xBB\xBF\"]\n",
		},
		{
			name:     "empty input in lines mode",
			options:  []Option{WithLines(true)},
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			out := &bytes.Buffer{}
			err := newTestTranscoder(t, io.Discard, tt.options...).Run(context.Background(), out, strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if diff := cmp.Diff(tt.expected, out.String()); diff != "" {
				t.Errorf("output mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTranscoder_Run_order(t *testing.T) {
	t.Parallel()

	input := &strings.Builder{}
	expected := &strings.Builder{}
	for i := 0; i < 200; i++ {
		fmt.Fprintf(input, "[%d, {\"i\": %d}]\n", i, i)
		fmt.Fprintf(expected, "[%d,{\"i\":%d}]\n", i, i)
	}

	out := &bytes.Buffer{}
	err := newTestTranscoder(t, io.Discard, WithLines(true), WithWorkers(8)).Run(context.Background(), out, strings.NewReader(input.String()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if diff := cmp.Diff(expected.String(), out.String()); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestTranscoder_Run_failedDocuments(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		options  []Option
		input    string
		expected string
		logs     []string
	}{
		{
			name:     "syntax error",
			options:  []Option{WithLines(true), WithWorkers(2)},
			input:    "[1]\n[1,\n{\"a\":2}\n",
			expected: "[1]\n{\"a\":2}\n",
			logs:     []string{"document 2: decode: "},
		},
		{
			name:     "buffer too small",
			options:  []Option{WithBufferSize(7)},
			input:    `[1,2,3]`,
			expected: "",
			logs:     []string{"document 1: encode: "},
		},
		{
			name:     "too deep",
			options:  []Option{WithMaxDepth(2)},
			input:    `[[[1]]]`,
			expected: "",
			logs:     []string{"document 1: decode: "},
		},
		{
			name:     "trailing content",
			input:    `[1] [2]`,
			expected: "",
			logs:     []string{"document 1: decode: "},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			out := &bytes.Buffer{}
			logs := &bytes.Buffer{}
			err := newTestTranscoder(t, logs, tt.options...).Run(context.Background(), out, strings.NewReader(tt.input))
			if !errors.Is(err, ErrDocumentsFailed) {
				t.Fatalf("error = %v, want %v", err, ErrDocumentsFailed)
			}

			if diff := cmp.Diff(tt.expected, out.String()); diff != "" {
				t.Errorf("output mismatch (-want +got):\n%s", diff)
			}
			for _, expected := range tt.logs {
				if !strings.Contains(logs.String(), expected) {
					t.Errorf("logs do not contain %q:\n%s", expected, logs.String())
				}
			}
		})
	}
}

func TestTranscoder_Run_bufferExact(t *testing.T) {
	t.Parallel()

	// the output needs one extra byte for the terminator
	out := &bytes.Buffer{}
	err := newTestTranscoder(t, io.Discard, WithBufferSize(8)).Run(context.Background(), out, strings.NewReader(`[1,2,3]`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if diff := cmp.Diff("[1,2,3]\n", out.String()); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func decodeEvents(t *testing.T, data []byte) []eventRecord {
	t.Helper()

	var records []eventRecord
	dec := json.NewDecoder(bytes.NewReader(data))
	for {
		var record eventRecord
		err := dec.Decode(&record)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("decode event: %v", err)
		}
		records = append(records, record)
	}

	return records
}

func TestTranscoder_Run_events(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected []eventRecord
		wantErr  bool
	}{
		{
			name:  "document",
			input: `{"a":[1,-2.5,"s",false,null]}`,
			expected: []eventRecord{
				{Event: "map-start"},
				{Event: "string", Value: "a"},
				{Event: "list-start"},
				{Event: "integer", Value: float64(1)},
				{Event: "float", Value: -2.5},
				{Event: "string", Value: "s"},
				{Event: "boolean", Value: false},
				{Event: "null"},
				{Event: "list-end"},
				{Event: "map-end"},
			},
		},
		{
			name:  "error",
			input: `[1,`,
			expected: []eventRecord{
				{Event: "list-start"},
				{Event: "integer", Value: float64(1)},
				{Event: "error", Value: "unexpected end of input at offset 3"},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			out := &bytes.Buffer{}
			err := newTestTranscoder(t, io.Discard, WithFormat(FormatEvents)).Run(context.Background(), out, strings.NewReader(tt.input))
			if tt.wantErr {
				if !errors.Is(err, ErrDocumentsFailed) {
					t.Fatalf("error = %v, want %v", err, ErrDocumentsFailed)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if diff := cmp.Diff(tt.expected, decodeEvents(t, out.Bytes())); diff != "" {
				t.Errorf("events mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTranscoder_Run_eventsText(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	err := newTestTranscoder(t, io.Discard, WithFormat(FormatEvents)).Run(context.Background(), out, strings.NewReader(`[0.0, 2, 1e300, "<&>"]`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := `{"event":"list-start"}
{"event":"float","value":0.0}
{"event":"integer","value":2}
{"event":"float","value":1e+300}
{"event":"string","value":"<&>"}
{"event":"list-end"}
`
	if diff := cmp.Diff(expected, out.String()); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

var errWrite = errors.New("write failed")

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errWrite
}

func TestTranscoder_Run_writeError(t *testing.T) {
	t.Parallel()

	err := newTestTranscoder(t, io.Discard, WithLines(true)).Run(context.Background(), failingWriter{}, strings.NewReader("[1]\n[2]\n"))
	if !errors.Is(err, errWrite) {
		t.Fatalf("error = %v, want %v", err, errWrite)
	}
	if errors.Is(err, ErrDocumentsFailed) {
		t.Errorf("error = %v, should not be %v", err, ErrDocumentsFailed)
	}
}

func TestTranscoder_Run_canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := newTestTranscoder(t, io.Discard, WithLines(true)).Run(ctx, io.Discard, strings.NewReader("[1]\n[2]\n"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want %v", err, context.Canceled)
	}
}
