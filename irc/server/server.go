package server

import "github.com/miravassor/irc/irc"

// DefaultSendQueueBound is the suggested soft bound on a client's outbound
// queue; a client whose queue would grow past it is dropped with
// "ERROR :SendQ exceeded" rather than allowed to grow unbounded.
const DefaultSendQueueBound = 64 * 1024

// Server owns the Store and the command dispatch table. It has no
// knowledge of sockets or polling — that is eventloop.go's job — so it can
// be exercised directly in tests without opening a single file descriptor.
type Server struct {
	store          *Store
	password       string
	motd           string
	sendQueueBound int
	handlers       map[string]HandlerFunc

	toClose []Handle
}

// NewServer returns a Server requiring password for new connections (empty
// disables the requirement). motd, if non-empty, is sent to every client
// on registration; sendQueueBound <= 0 falls back to
// DefaultSendQueueBound.
func NewServer(password, motd string, sendQueueBound int) *Server {
	if sendQueueBound <= 0 {
		sendQueueBound = DefaultSendQueueBound
	}
	return &Server{
		store:          NewStore(),
		password:       password,
		motd:           motd,
		sendQueueBound: sendQueueBound,
		handlers:       defaultHandlers(),
	}
}

// Accept registers a freshly accepted connection and returns its Client.
func (s *Server) Accept(h Handle) *Client {
	c, err := s.store.RegisterClient(h)
	if err != nil {
		return nil
	}
	c.PassOK = s.password == ""
	return c
}

// Feed hands raw bytes read from h's socket to its frame reader and
// dispatches every complete frame it yields, in order.
func (s *Server) Feed(h Handle, data []byte) {
	c := s.store.Client(h)
	if c == nil {
		return
	}
	for _, frame := range c.Feed(data) {
		if s.store.Client(h) == nil {
			return
		}
		s.Dispatch(h, frame)
	}
}

// Drop removes h from the store — cascading through every channel it was
// in — and returns the freed Client so the caller (the event loop) can
// close its socket. Safe to call more than once; the second call is a
// no-op and returns nil.
func (s *Server) Drop(h Handle) *Client {
	return s.store.DropClient(h)
}

// Close schedules h to be closed once the current dispatch returns. Used
// by QUIT and by transport-error paths (oversized send queue) where the
// handler itself must not tear down state it is still iterating over. Any
// further Enqueue on h's client is a no-op, so nothing grows its queue
// between now and the event loop's final flush-and-close pass.
func (s *Server) Close(h Handle) {
	if c := s.store.Client(h); c != nil {
		c.closing = true
	}
	s.toClose = append(s.toClose, h)
}

// TakeClosing drains and returns the set of handles scheduled for closure.
func (s *Server) TakeClosing() []Handle {
	out := s.toClose
	s.toClose = nil
	return out
}

// reply enqueues a numeric reply on h.
func (s *Server) reply(h Handle, code, target string, params ...string) {
	s.send(h, irc.Numeric(code, target, params...))
}

// send enqueues a raw, already-formatted line on h, if h still exists.
func (s *Server) send(h Handle, line string) {
	c := s.store.Client(h)
	if c == nil {
		return
	}
	c.Enqueue(line)
	if c.SendQueueSize() > s.sendQueueBound {
		c.Enqueue("ERROR :SendQ exceeded")
		s.Close(h)
	}
}

// broadcastChannel enqueues line on every member of ch, including the
// sender.
func (s *Server) broadcastChannel(ch *Channel, line string) {
	for member := range ch.Members {
		s.send(member, line)
	}
}

// broadcastChannelExcept enqueues line on every member of ch other than
// except.
func (s *Server) broadcastChannelExcept(ch *Channel, line string, except Handle) {
	for member := range ch.Members {
		if member == except {
			continue
		}
		s.send(member, line)
	}
}
