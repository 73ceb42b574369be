// Package irc implements the wire-level pieces of the IRC protocol: frame
// extraction from a raw byte stream, tokenizing a frame into a command and
// its arguments, and formatting numeric replies. It has no notion of a
// client, a channel, or a socket — those live in package server.
package irc

import (
	"fmt"
	"strings"
)

// MaxFrameLen is the maximum length of a single frame including its
// terminator, per IRC §2.3.
const MaxFrameLen = 512

// Message is a parsed IRC line: an optional prefix (only ever set by the
// server when formatting a reply, never expected from a client), an
// uppercased command verb, and its positional arguments.
type Message struct {
	Prefix  string
	Command string
	Params  []string
}

// Parse tokenizes a single frame (terminator already stripped) into a
// Message. The first whitespace-delimited token becomes the uppercased
// command. Remaining tokens are split on whitespace, except that the first
// token beginning with ':' consumes the rest of the line verbatim (including
// embedded spaces) as one trailing parameter.
//
// original_source/Server.cpp honors ':' wherever it is first encountered
// rather than only as the last argument, so this parser does the same.
//
// Parse returns nil for a frame with no command token.
func Parse(line string) *Message {
	fields := splitFields(line)
	if len(fields) == 0 {
		return nil
	}
	return &Message{
		Command: strings.ToUpper(fields[0]),
		Params:  fields[1:],
	}
}

// splitFields splits line on runs of spaces, folding the first field that
// starts with ':' — and everything after it — into a single field.
func splitFields(line string) []string {
	var fields []string
	for {
		line = strings.TrimLeft(line, " ")
		if line == "" {
			return fields
		}
		if line[0] == ':' {
			return append(fields, line[1:])
		}
		idx := strings.IndexByte(line, ' ')
		if idx < 0 {
			return append(fields, line)
		}
		fields = append(fields, line[:idx])
		line = line[idx+1:]
	}
}

// String renders m back into wire form, without a trailing CRLF. The last
// parameter is colon-prefixed whenever it is empty, contains a space, or
// already begins with ':', so the rendered line re-parses to the same
// Params.
func (m *Message) String() string {
	var b strings.Builder
	if m.Prefix != "" {
		b.WriteByte(':')
		b.WriteString(m.Prefix)
		b.WriteByte(' ')
	}
	b.WriteString(m.Command)
	for i, p := range m.Params {
		b.WriteByte(' ')
		last := i == len(m.Params)-1
		if last && (p == "" || strings.Contains(p, " ") || strings.HasPrefix(p, ":")) {
			b.WriteByte(':')
		}
		b.WriteString(p)
	}
	return b.String()
}

// ParseHostmask splits a nick!user@host triple, tolerating any prefix
// missing.
func ParseHostmask(hostmask string) (nick, user, host string) {
	nickParts := strings.SplitN(hostmask, "!", 2)
	if len(nickParts) < 2 {
		nick = hostmask
		return
	}
	nick = nickParts[0]

	userHostParts := strings.SplitN(nickParts[1], "@", 2)
	if len(userHostParts) < 2 {
		user = nickParts[1]
		return
	}
	user, host = userHostParts[0], userHostParts[1]
	return
}

// FormatHostmask joins nick, user, and host into a nick!user@host triple.
func FormatHostmask(nick, user, host string) string {
	return fmt.Sprintf("%s!%s@%s", nick, user, host)
}
