package server

import (
	"github.com/google/uuid"
	"github.com/miravassor/irc/irc"
)

// Handle identifies a connected client for the lifetime of its session. It
// is the client's raw socket file descriptor, the same identity the event
// loop polls on.
type Handle int

// Client is one connected user session. The store is its sole owner;
// every other component holds a *Client only for the duration of one
// dispatch.
type Client struct {
	Handle Handle

	// SessionID is an opaque id for log correlation across the life of the
	// connection, independent of the wire Handle (which can be reused by
	// the kernel once closed).
	SessionID string

	Nick string
	User string
	Real string
	Host string

	PassOK     bool // true once a correct PASS has been seen, or none is required
	GotNick    bool
	GotUser    bool
	Registered bool

	Channels map[string]struct{}

	frame FrameBuffer
	out   [][]byte
	outSz int

	closing bool
}

// FrameBuffer is the subset of irc.FrameReader the client needs; defined
// here so tests can swap in a fake without importing irc.
type FrameBuffer interface {
	Feed(data []byte) []string
}

func newClient(h Handle) *Client {
	return &Client{
		Handle:    h,
		SessionID: uuid.NewString(),
		Channels:  make(map[string]struct{}),
		frame:     &irc.FrameReader{},
	}
}

// Hostmask renders nick!user@host for use as a message prefix.
func (c *Client) Hostmask() string {
	return irc.FormatHostmask(c.Nick, c.User, c.Host)
}

// Feed hands freshly read bytes to the client's frame reader and returns
// every complete frame they produced.
func (c *Client) Feed(data []byte) []string {
	return c.frame.Feed(data)
}

// Enqueue appends a formatted line (without CRLF) to the client's outbound
// queue. It is the only path by which a handler may produce output — the
// event loop is the sole writer to the socket.
func (c *Client) Enqueue(line string) {
	if c.closing {
		return
	}
	b := []byte(line + "\r\n")
	c.out = append(c.out, b)
	c.outSz += len(b)
}

// SendQueueSize returns the number of bytes currently queued for write.
func (c *Client) SendQueueSize() int { return c.outSz }

// HasOutbound reports whether the client has data waiting to be written.
func (c *Client) HasOutbound() bool { return len(c.out) > 0 }

// PeekOutbound returns the next queued buffer without removing it.
func (c *Client) PeekOutbound() []byte {
	if len(c.out) == 0 {
		return nil
	}
	return c.out[0]
}

// DropOutboundPrefix removes n written bytes from the front of the first
// queued buffer, discarding it entirely once fully written.
func (c *Client) DropOutboundPrefix(n int) {
	if len(c.out) == 0 {
		return
	}
	c.outSz -= n
	rem := c.out[0][n:]
	if len(rem) == 0 {
		c.out = c.out[1:]
		return
	}
	c.out[0] = rem
}

// RegistrationComplete is true once the client has a nick, user info, and
// (if required) a correct PASS, but has not yet been marked Registered.
func (c *Client) RegistrationComplete() bool {
	return c.GotNick && c.GotUser && c.PassOK
}
