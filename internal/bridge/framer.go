package bridge

import (
	"bytes"
	"strings"
)

// maxPendingBytes caps the partial-line buffer. A peer streaming past the cap
// without ever sending a terminator has the oversized line dropped, tail
// included; complete lines are length-capped at parse time instead.
const maxPendingBytes = maxLineLen

// LineFramer turns an inbound byte stream into discrete, trimmed command
// lines. It tolerates multiple commands arriving in one read and a command
// split across reads: a partial trailing line stays buffered until a later
// chunk completes it. Blank lines are not commands and are skipped.
type LineFramer struct {
	buf []byte

	// skipToEOL discards input up to the next terminator after an oversized
	// partial line was dropped.
	skipToEOL bool
}

// Push appends a chunk to the framer's buffer and returns every complete
// line it now holds, in arrival order, with surrounding whitespace (including
// the \r of CRLF terminators) trimmed.
func (f *LineFramer) Push(chunk []byte) []string {
	if f.skipToEOL {
		i := bytes.IndexByte(chunk, '\n')
		if i < 0 {
			return nil
		}
		chunk = chunk[i+1:]
		f.skipToEOL = false
	}

	f.buf = append(f.buf, chunk...)

	var lines []string
	for {
		i := bytes.IndexByte(f.buf, '\n')
		if i < 0 {
			break
		}
		line := strings.TrimSpace(string(f.buf[:i]))
		f.buf = f.buf[i+1:]
		if line != "" {
			lines = append(lines, line)
		}
	}

	if len(f.buf) > maxPendingBytes {
		f.buf = nil
		f.skipToEOL = true
	}
	return lines
}
