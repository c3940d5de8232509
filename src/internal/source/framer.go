// FILE: hooklog/src/internal/source/framer.go
package source

import (
	"bytes"
	"errors"
)

var (
	errBufferLimit = errors.New("client buffer limit exceeded")
	errLineTooLong = errors.New("line exceeds maximum length without newline")
)

// lineFramer cuts one client's byte stream into newline-terminated lines.
// Line endings (\n or \r\n) are stripped and empty lines are dropped.
type lineFramer struct {
	pending   []byte
	maxLine   int
	maxBuffer int
}

func newLineFramer(maxLine, maxBuffer int) *lineFramer {
	return &lineFramer{maxLine: maxLine, maxBuffer: maxBuffer}
}

// feed appends data and returns every completed line. Complete lines over
// maxLine are skipped and counted. An error means the stream cannot be framed
// any further and the connection should be dropped; the tail is discarded.
func (f *lineFramer) feed(data []byte) (lines [][]byte, skipped int, err error) {
	if len(f.pending)+len(data) > f.maxBuffer {
		f.pending = nil
		return nil, 0, errBufferLimit
	}
	f.pending = append(f.pending, data...)

	rest := f.pending
	for {
		idx := bytes.IndexByte(rest, '\n')
		if idx < 0 {
			break
		}
		line := bytes.TrimRight(rest[:idx], "\r")
		rest = rest[idx+1:]

		switch {
		case len(line) == 0:
		case len(line) > f.maxLine:
			skipped++
		default:
			lines = append(lines, bytes.Clone(line))
		}
	}

	// Compact the unterminated tail to the front of the buffer
	f.pending = append(f.pending[:0], rest...)

	if len(f.pending) > f.maxLine {
		f.pending = nil
		return lines, skipped, errLineTooLong
	}
	return lines, skipped, nil
}

// flush returns the unterminated tail, if any, and empties the framer
func (f *lineFramer) flush() []byte {
	line := bytes.TrimRight(f.pending, "\r")
	f.pending = nil
	if len(line) == 0 {
		return nil
	}
	return line
}

// buffered reports the length of the unterminated tail
func (f *lineFramer) buffered() int {
	return len(f.pending)
}
