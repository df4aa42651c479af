package log

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		expected Level
		wantErr  bool
	}{
		{name: "silent", expected: Silent},
		{name: "error", expected: Error},
		{name: "warn", expected: Warn},
		{name: "info", expected: Info},
		{name: "debug", expected: Debug},
		{name: "verbose", expected: Info, wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			level, err := ParseLevel(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel() error = %v, wantErr %v", err, tt.wantErr)
			}
			if level != tt.expected {
				t.Errorf("ParseLevel() = %d, want %d", level, tt.expected)
			}
		})
	}
}

func TestLogger_level(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	logger := NewLoggerWithWriter(buf, Warn)

	logger.Debugf("debug %d", 1)
	logger.Infof("info %d", 2)
	logger.Warnf("warn %d", 3)
	logger.Errorf("error %d", 4)

	out := buf.String()
	for _, unexpected := range []string{"[DEBUG] debug 1", "[INFO] info 2"} {
		if strings.Contains(out, unexpected) {
			t.Errorf("output contains %q:\n%s", unexpected, out)
		}
	}
	for _, expected := range []string{"qjson: ", "[WARN] warn 3", "[ERROR] error 4"} {
		if !strings.Contains(out, expected) {
			t.Errorf("output does not contain %q:\n%s", expected, out)
		}
	}
}
