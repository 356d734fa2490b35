package bridge

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFramerSingleLine(t *testing.T) {
	var f LineFramer
	assert.Equal(t, []string{"NICK alice"}, f.Push([]byte("NICK alice\n")))
}

func TestFramerMultipleLinesInOneChunk(t *testing.T) {
	var f LineFramer
	got := f.Push([]byte("NICK alice\nUSER alice 0 * :Alice\n"))
	assert.Equal(t, []string{"NICK alice", "USER alice 0 * :Alice"}, got)
}

func TestFramerPartialLineBuffered(t *testing.T) {
	var f LineFramer

	assert.Empty(t, f.Push([]byte("NICK al")))
	assert.Equal(t, []string{"NICK alice"}, f.Push([]byte("ice\n")))
}

func TestFramerSplitAcrossManyChunks(t *testing.T) {
	var f LineFramer

	var got []string
	for _, b := range []byte("PRIVMSG #srv.chan :hello\n") {
		got = append(got, f.Push([]byte{b})...)
	}
	assert.Equal(t, []string{"PRIVMSG #srv.chan :hello"}, got)
}

func TestFramerCRLFTrimmed(t *testing.T) {
	var f LineFramer
	assert.Equal(t, []string{"PING 1"}, f.Push([]byte("PING 1\r\n")))
}

func TestFramerSurroundingWhitespaceTrimmed(t *testing.T) {
	var f LineFramer
	assert.Equal(t, []string{"NICK alice"}, f.Push([]byte("  NICK alice  \n")))
}

func TestFramerBlankLinesSkipped(t *testing.T) {
	var f LineFramer
	got := f.Push([]byte("\n\r\nNICK alice\n\n"))
	assert.Equal(t, []string{"NICK alice"}, got)
}

func TestFramerTailCompletesLater(t *testing.T) {
	var f LineFramer

	got := f.Push([]byte("NICK alice\nUSER ali"))
	assert.Equal(t, []string{"NICK alice"}, got)

	got = f.Push([]byte("ce 0 * :Alice\nQUIT"))
	assert.Equal(t, []string{"USER alice 0 * :Alice"}, got)

	got = f.Push([]byte("\n"))
	assert.Equal(t, []string{"QUIT"}, got)
}

func TestFramerOversizedPartialLineDropped(t *testing.T) {
	var f LineFramer

	// A line streamed past the cap without a terminator is discarded,
	// including its tail once the newline finally arrives.
	flood := strings.Repeat("A", maxPendingBytes+100)
	assert.Empty(t, f.Push([]byte(flood)))
	assert.Empty(t, f.Push([]byte("tail of the flood\n")))

	// The framer recovers on the next well-formed command.
	assert.Equal(t, []string{"NICK alice"}, f.Push([]byte("NICK alice\n")))
}

func TestFramerOversizedCompleteLineStillReturned(t *testing.T) {
	var f LineFramer

	// Length capping of complete lines happens at parse time, not here.
	long := strings.Repeat("B", maxPendingBytes+100)
	got := f.Push([]byte(long + "\n"))
	assert.Equal(t, []string{long}, got)
}

func TestFramerBufferNeverExceedsCap(t *testing.T) {
	var f LineFramer

	for i := 0; i < 100; i++ {
		f.Push([]byte(strings.Repeat("C", 300)))
		assert.LessOrEqual(t, len(f.buf), maxPendingBytes)
	}
}

func TestFramerNothingDroppedOrDuplicated(t *testing.T) {
	var f LineFramer

	input := "a\nbb\nccc\ndddd\neeeee\n"
	var got []string
	for i := 0; i < len(input); i += 3 {
		end := i + 3
		if end > len(input) {
			end = len(input)
		}
		got = append(got, f.Push([]byte(input[i:end]))...)
	}
	assert.Equal(t, []string{"a", "bb", "ccc", "dddd", "eeeee"}, got)
}
