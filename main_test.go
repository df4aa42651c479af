package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/DataDog/zstd"
	"github.com/google/go-cmp/cmp"
	"github.com/mazrean/qjson/internal/config"
	mylog "github.com/mazrean/qjson/internal/pkg/log"
	"github.com/mazrean/qjson/internal/transcode"
)

func testConfig(file string) *config.Config {
	return &config.Config{
		File:        file,
		FloatDigits: 15,
		MaxDepth:    200,
		BufferSize:  1 << 10,
		Format:      "json",
		Workers:     2,
		LogLevel:    "silent",
	}
}

func writeInput(t *testing.T, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write input: %v", err)
	}

	return path
}

func TestRun(t *testing.T) {
	t.Parallel()

	input := "{\"a\": [1, 2]}\n[true, null]\n"
	compressed, err := zstd.Compress(nil, []byte(input))
	if err != nil {
		t.Fatalf("compress input: %v", err)
	}

	tests := []struct {
		name     string
		config   func(t *testing.T) *config.Config
		stdin    string
		expected string
		wantErr  error
	}{
		{
			name: "stdin",
			config: func(*testing.T) *config.Config {
				return testConfig("-")
			},
			stdin:    `{"a" : 1}`,
			expected: "{\"a\":1}\n",
		},
		{
			name: "file lines",
			config: func(t *testing.T) *config.Config {
				cfg := testConfig(writeInput(t, "in.jsonl", []byte(input)))
				cfg.Lines = true
				return cfg
			},
			expected: "{\"a\":[1,2]}\n[true,null]\n",
		},
		{
			name: "zstd file",
			config: func(t *testing.T) *config.Config {
				cfg := testConfig(writeInput(t, "in.jsonl.zst", compressed))
				cfg.Lines = true
				cfg.Zstd = true
				return cfg
			},
			expected: "{\"a\":[1,2]}\n[true,null]\n",
		},
		{
			name: "events",
			config: func(*testing.T) *config.Config {
				cfg := testConfig("-")
				cfg.Format = "events"
				return cfg
			},
			stdin:    `[]`,
			expected: "{\"event\":\"list-start\"}\n{\"event\":\"list-end\"}\n",
		},
		{
			name: "failed document",
			config: func(*testing.T) *config.Config {
				cfg := testConfig("-")
				cfg.Lines = true
				return cfg
			},
			stdin:    "[1]\n[\n",
			expected: "[1]\n",
			wantErr:  transcode.ErrDocumentsFailed,
		},
		{
			name: "missing file",
			config: func(t *testing.T) *config.Config {
				return testConfig(filepath.Join(t.TempDir(), "missing.json"))
			},
			wantErr: os.ErrNotExist,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			out := &bytes.Buffer{}
			logger := mylog.NewLoggerWithWriter(io.Discard, mylog.Silent)
			err := run(context.Background(), logger, tt.config(t), out, strings.NewReader(tt.stdin))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if diff := cmp.Diff(tt.expected, out.String()); diff != "" {
				t.Errorf("output mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
