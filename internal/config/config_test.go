package config

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

var testVersion = Version{Version: "test", Revision: "none"}

func defaultConfig() Config {
	return Config{
		File:        "-",
		Indent:      0,
		FloatDigits: 15,
		MaxDepth:    200,
		BufferSize:  65536,
		Format:      "json",
		Workers:     0,
		LogLevel:    "info",
	}
}

func load(args []string, configPaths ...string) (*Config, error) {
	return Load(testVersion, args, configPaths, kong.Writers(io.Discard, io.Discard))
}

func TestLoad(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		args     []string
		expected func(*Config)
	}{
		{
			name:     "defaults",
			expected: func(*Config) {},
		},
		{
			name: "flags",
			args: []string{"-i", "2", "--float-digits=6", "--max-depth=10", "--buffer-size=128", "--format=events", "--lines", "-w", "4", "-l", "debug", "in.json"},
			expected: func(c *Config) {
				c.File = "in.json"
				c.Indent = 2
				c.FloatDigits = 6
				c.MaxDepth = 10
				c.BufferSize = 128
				c.Format = "events"
				c.Lines = true
				c.Workers = 4
				c.LogLevel = "debug"
			},
		},
		{
			name: "zst suffix",
			args: []string{"in.json.zst"},
			expected: func(c *Config) {
				c.File = "in.json.zst"
				c.Zstd = true
			},
		},
		{
			name: "zstd flag",
			args: []string{"--zstd"},
			expected: func(c *Config) {
				c.Zstd = true
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			config, err := load(tt.args)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			expected := defaultConfig()
			tt.expected(&expected)
			if diff := cmp.Diff(&expected, config, cmpopts.IgnoreFields(Config{}, "Dev")); diff != "" {
				t.Errorf("config mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoad_invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
	}{
		{name: "unknown format", args: []string{"--format=xml"}},
		{name: "unknown log level", args: []string{"--log-level=trace"}},
		{name: "negative indent", args: []string{"--indent=-1"}},
		{name: "zero float digits", args: []string{"--float-digits=0"}},
		{name: "too many float digits", args: []string{"--float-digits=18"}},
		{name: "zero max depth", args: []string{"--max-depth=0"}},
		{name: "zero buffer size", args: []string{"--buffer-size=0"}},
		{name: "negative workers", args: []string{"--workers=-1"}},
		{name: "unknown flag", args: []string{"--pretty"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := load(tt.args); err == nil {
				t.Errorf("expected error for %v", tt.args)
			}
		})
	}
}

func TestLoad_configFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte(`{"indent": 4, "lines": true, "format": "events"}`), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	// flags take precedence over the file
	config, err := load([]string{"--format=json"}, filepath.Join(dir, "missing.json"), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := defaultConfig()
	expected.Indent = 4
	expected.Lines = true
	if diff := cmp.Diff(&expected, config, cmpopts.IgnoreFields(Config{}, "Dev")); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_env(t *testing.T) {
	t.Setenv("QJSON_INDENT", "3")
	t.Setenv("QJSON_WORKERS", "2")

	config, err := load(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := defaultConfig()
	expected.Indent = 3
	expected.Workers = 2
	if diff := cmp.Diff(&expected, config, cmpopts.IgnoreFields(Config{}, "Dev")); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}
