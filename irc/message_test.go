package irc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseBasic(t *testing.T) {
	m := Parse("join #x,#y")
	assert.Equal(t, "JOIN", m.Command)
	assert.Equal(t, []string{"#x,#y"}, m.Params)
}

func TestParseTrailing(t *testing.T) {
	m := Parse("PRIVMSG #x :hello there friend")
	assert.Equal(t, "PRIVMSG", m.Command)
	assert.Equal(t, []string{"#x", "hello there friend"}, m.Params)
}

func TestParseEmpty(t *testing.T) {
	assert.Nil(t, Parse(""))
	assert.Nil(t, Parse("   "))
}

func TestParseTrailingNotLast(t *testing.T) {
	// original_source/Server.cpp honors ':' wherever first seen.
	m := Parse("KICK #x bob :go away now")
	assert.Equal(t, []string{"#x", "bob", "go away now"}, m.Params)
}

// Property #7: parser round-trip for frames of the form
// "verb args... :trailing".
func TestParseRoundTrip(t *testing.T) {
	cases := []struct {
		verb     string
		args     []string
		trailing string
	}{
		{"PRIVMSG", []string{"#x"}, "hello world"},
		{"KICK", []string{"#x", "bob"}, "bye now"},
		{"NICK", nil, "onlytrailing"},
	}
	for _, c := range cases {
		line := c.verb
		for _, a := range c.args {
			line += " " + a
		}
		line += " :" + c.trailing

		m := Parse(line)
		assert.Equal(t, c.verb, m.Command)
		want := append(append([]string{}, c.args...), c.trailing)
		assert.Equal(t, want, m.Params)
	}
}

func TestMessageStringRoundTrip(t *testing.T) {
	m := &Message{Prefix: "alice!a@host", Command: "PRIVMSG", Params: []string{"#x", "hi there"}}
	line := m.String()
	assert.Equal(t, ":alice!a@host PRIVMSG #x :hi there", line)

	reparsed := Parse(line[strings.IndexByte(line, ' ')+1:])
	assert.Equal(t, m.Command, reparsed.Command)
	assert.Equal(t, m.Params, reparsed.Params)
}

func TestHostmaskRoundTrip(t *testing.T) {
	nick, user, host := ParseHostmask("alice!a@example.com")
	assert.Equal(t, "alice", nick)
	assert.Equal(t, "a", user)
	assert.Equal(t, "example.com", host)
	assert.Equal(t, "alice!a@example.com", FormatHostmask(nick, user, host))
}
