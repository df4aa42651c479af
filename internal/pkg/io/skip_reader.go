package io

import (
	"bytes"
	"errors"
	"io"
)

// BOM is the UTF-8 byte order mark
var BOM = []byte{0xEF, 0xBB, 0xBF}

// SkipPrefixReader is a wrapper that reads from the underlying io.Reader while skipping the given prefix.
// Only a prefix at the very start of the stream is dropped; the data is passed through unchanged otherwise.
type SkipPrefixReader struct {
	r       io.Reader
	prefix  []byte
	buf     []byte // head bytes that did not match the prefix
	checked bool
}

// NewSkipPrefixReader creates a new SkipPrefixReader from the given io.Reader and prefix to skip.
func NewSkipPrefixReader(r io.Reader, prefix []byte) *SkipPrefixReader {
	return &SkipPrefixReader{
		r:      r,
		prefix: prefix,
	}
}

func (spr *SkipPrefixReader) Read(p []byte) (int, error) {
	if !spr.checked {
		spr.checked = true

		head := make([]byte, len(spr.prefix))
		n, err := io.ReadFull(spr.r, head)
		if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
			return 0, err
		}
		if !bytes.Equal(head[:n], spr.prefix) {
			spr.buf = head[:n]
		}
	}

	if len(spr.buf) > 0 {
		n := copy(p, spr.buf)
		spr.buf = spr.buf[n:]
		return n, nil
	}

	return spr.r.Read(p)
}
