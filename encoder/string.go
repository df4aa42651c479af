package encoder

// escapeChar returns the letter following the backslash for bytes that must be
// escaped, or 0 when c is written as is.
func escapeChar(c byte) byte {
	switch c {
	case '\\':
		return '\\'
	case '"':
		return '"'
	case '\b':
		return 'b'
	case '\f':
		return 'f'
	case '\n':
		return 'n'
	case '\r':
		return 'r'
	case '\t':
		return 't'
	default:
		return 0
	}
}

// addString writes s as a quoted string. Runs of bytes that need no escaping
// are copied in one piece.
func addString[T ~string | ~[]byte](e *Encoder, s T) error {
	if err := e.check(); err != nil {
		return err
	}

	if err := e.beginValue(); err != nil {
		return err
	}
	if err := e.writeByte('"'); err != nil {
		return err
	}

	start := 0
	for i := 0; i < len(s); i++ {
		escaped := escapeChar(s[i])
		if escaped == 0 {
			continue
		}

		if err := write(e, s[start:i]); err != nil {
			return err
		}
		if err := e.reserve(2); err != nil {
			return err
		}
		e.buf[e.pos] = '\\'
		e.buf[e.pos+1] = escaped
		e.pos += 2
		start = i + 1
	}
	if err := write(e, s[start:]); err != nil {
		return err
	}

	return e.writeByte('"')
}
