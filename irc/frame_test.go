package irc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrameReaderBasic(t *testing.T) {
	var r FrameReader
	frames := r.Feed([]byte("NICK alice\r\nUSER a 0 * :Alice\r\n"))
	assert.Equal(t, []string{"NICK alice", "USER a 0 * :Alice"}, frames)
}

func TestFrameReaderPartialTail(t *testing.T) {
	var r FrameReader
	frames := r.Feed([]byte("NICK al"))
	assert.Empty(t, frames)
	frames = r.Feed([]byte("ice\r\n"))
	assert.Equal(t, []string{"NICK alice"}, frames)
}

func TestFrameReaderBareLF(t *testing.T) {
	var r FrameReader
	frames := r.Feed([]byte("PING :x\n"))
	assert.Equal(t, []string{"PING :x"}, frames)
}

func TestFrameReaderEmptyFrameDropped(t *testing.T) {
	var r FrameReader
	frames := r.Feed([]byte("\r\nNICK alice\r\n"))
	assert.Equal(t, []string{"NICK alice"}, frames)
}

func TestFrameReaderNULDropped(t *testing.T) {
	var r FrameReader
	frames := r.Feed([]byte("NICK al\x00ice\r\nNICK bob\r\n"))
	assert.Equal(t, []string{"NICK bob"}, frames)
}

func TestFrameReaderOversizedDiscarded(t *testing.T) {
	var r FrameReader
	oversized := "PRIVMSG #x :" + strings.Repeat("a", MaxFrameLen+10)
	frames := r.Feed([]byte(oversized + "\r\nNICK alice\r\n"))
	assert.Equal(t, []string{"NICK alice"}, frames)
}

// Property #6: frame extraction is a left inverse of frame concatenation.
func TestFrameReaderLeftInverse(t *testing.T) {
	in := []string{"NICK alice", "USER a 0 * :Alice Doe", "JOIN #x,#y"}
	var r FrameReader
	got := r.Feed([]byte(strings.Join(in, "\r\n") + "\r\n"))
	assert.Equal(t, in, got)
}

func TestFrameReaderByteAtATime(t *testing.T) {
	in := []string{"NICK alice", "PING :tok"}
	raw := []byte(strings.Join(in, "\r\n") + "\r\n")
	var r FrameReader
	var got []string
	for _, b := range raw {
		got = append(got, r.Feed([]byte{b})...)
	}
	assert.Equal(t, in, got)
}
