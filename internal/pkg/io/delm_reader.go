package io

import (
	"bufio"
	"bytes"
	"errors"
	"io"
)

// DelimReader splits a stream into segments separated by delim.
// Segments holding nothing but whitespace are skipped.
type DelimReader struct {
	r     *bufio.Reader
	delim byte
	buf   []byte
}

func NewDelimReader(r io.Reader, delim byte) *DelimReader {
	return &DelimReader{r: bufio.NewReader(r), delim: delim, buf: make([]byte, 0, 1024)}
}

// Next returns the next segment without its delimiter. The returned slice is
// only valid until the following call. io.EOF is returned once no segment is left.
func (d *DelimReader) Next() ([]byte, error) {
	for {
		segment, err := d.readSegment()
		if err != nil {
			return nil, err
		}

		if len(bytes.TrimSpace(segment)) > 0 {
			return segment, nil
		}
	}
}

func (d *DelimReader) readSegment() ([]byte, error) {
	d.buf = d.buf[:0]
	for {
		chunk, err := d.r.ReadSlice(d.delim)
		d.buf = append(d.buf, chunk...)
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		if err != nil {
			// the last segment may end without a delimiter
			if errors.Is(err, io.EOF) && len(d.buf) > 0 {
				return d.buf, nil
			}
			return nil, err
		}

		return d.buf[:len(d.buf)-1], nil
	}
}
