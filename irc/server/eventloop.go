package server

import (
	"fmt"
	"log"

	"golang.org/x/sys/unix"
)

// readBufSize is the scratch buffer size for a single recv.
const readBufSize = 512

// Loop is the single-threaded, readiness-polling event loop that owns
// every socket. It is driven from one goroutine; no handler it calls may
// block or spawn its own goroutine.
type Loop struct {
	srv      *Server
	listenFd int
	fds      []unix.PollFd
	scratch  [readBufSize]byte
}

// NewLoop creates a listening socket bound to port and returns a Loop ready
// to Run. The socket is created non-blocking, as every socket the loop
// polls must be.
func NewLoop(srv *Server, port int) (*Loop, error) {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM|unix.SOCK_NONBLOCK, 0)
	if err != nil {
		return nil, fmt.Errorf("socket: %w", err)
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("setsockopt: %w", err)
	}
	addr := &unix.SockaddrInet4{Port: port}
	if err := unix.Bind(fd, addr); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("bind: %w", err)
	}
	if err := unix.Listen(fd, 128); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("listen: %w", err)
	}

	return &Loop{
		srv:      srv,
		listenFd: fd,
		fds:      []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}},
	}, nil
}

// Port returns the listening socket's bound port, useful when NewLoop was
// called with port 0 to let the kernel pick one (as tests do).
func (l *Loop) Port() (int, error) {
	sa, err := unix.Getsockname(l.listenFd)
	if err != nil {
		return 0, err
	}
	sa4, ok := sa.(*unix.SockaddrInet4)
	if !ok {
		return 0, fmt.Errorf("unexpected sockaddr type %T", sa)
	}
	return sa4.Port, nil
}

// Run drives the loop until stop is closed. It never spawns a goroutine and
// suspends only inside unix.Poll.
func (l *Loop) Run(stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			l.shutdown()
			return
		default:
		}
		l.tick()
	}
}

// tick runs one iteration of the loop: mark write-interest, poll, service
// every ready descriptor, then reset readiness flags.
func (l *Loop) tick() {
	for i := range l.fds {
		if l.fds[i].Fd == int32(l.listenFd) {
			continue
		}
		h := Handle(l.fds[i].Fd)
		c := l.srv.store.Client(h)
		if c != nil && c.HasOutbound() {
			l.fds[i].Events = unix.POLLIN | unix.POLLOUT
		} else {
			l.fds[i].Events = unix.POLLIN
		}
	}

	n, err := unix.Poll(l.fds, 0)
	if err != nil && err != unix.EINTR {
		log.Printf("poll: %v", err)
		return
	}
	if n <= 0 {
		l.reapClosed()
		return
	}

	// Copy revents before mutating l.fds via accept/drop, which can
	// reorder or shrink the slice mid-iteration.
	ready := append([]unix.PollFd(nil), l.fds...)
	for _, pfd := range ready {
		if pfd.Revents == 0 {
			continue
		}
		if int(pfd.Fd) == l.listenFd {
			if pfd.Revents&unix.POLLIN != 0 {
				l.acceptOne()
			}
			continue
		}
		h := Handle(pfd.Fd)
		if pfd.Revents&unix.POLLIN != 0 {
			l.readable(h)
		}
		if pfd.Revents&(unix.POLLOUT) != 0 {
			l.writable(h)
		}
		if pfd.Revents&(unix.POLLHUP|unix.POLLERR|unix.POLLNVAL) != 0 {
			l.drop(h)
		}
	}

	l.reapClosed()
}

func (l *Loop) acceptOne() {
	fd, _, err := unix.Accept4(l.listenFd, unix.SOCK_NONBLOCK)
	if err != nil {
		if err != unix.EAGAIN {
			log.Printf("accept: %v", err)
		}
		return
	}
	h := Handle(fd)
	if l.srv.Accept(h) == nil {
		unix.Close(fd)
		return
	}
	l.fds = append(l.fds, unix.PollFd{Fd: int32(fd), Events: unix.POLLIN})
}

func (l *Loop) readable(h Handle) {
	n, err := unix.Read(int(h), l.scratch[:])
	if err != nil {
		if err == unix.EAGAIN {
			return
		}
		l.drop(h)
		return
	}
	if n == 0 {
		l.drop(h)
		return
	}
	l.srv.Feed(h, l.scratch[:n])
	l.applyClosing()
}

func (l *Loop) writable(h Handle) {
	c := l.srv.store.Client(h)
	if c == nil {
		return
	}
	for c.HasOutbound() {
		buf := c.PeekOutbound()
		n, err := unix.Write(int(h), buf)
		if err != nil {
			if err == unix.EAGAIN {
				return
			}
			l.drop(h)
			return
		}
		c.DropOutboundPrefix(n)
		if n < len(buf) {
			// short write: remaining bytes stay queued, write-interest
			// stays set for the next readiness notification.
			return
		}
	}
}

// applyClosing flushes any handles the dispatcher scheduled for closure
// during the frame(s) just fed, giving the outbound queue of any client
// still in the store one more writable pass, then removes the client from
// the store before the fd actually closes.
func (l *Loop) applyClosing() {
	for _, h := range l.srv.TakeClosing() {
		l.writable(h)
		l.srv.Drop(h)
		l.removeFd(h)
		unix.Close(int(h))
	}
}

func (l *Loop) reapClosed() {
	l.applyClosing()
}

// drop tears down a client whose socket failed or reached EOF: remove it
// from the store (cascading through channel membership) before closing the
// descriptor, so no other component ever observes a channel referencing a
// closed socket.
func (l *Loop) drop(h Handle) {
	l.srv.Drop(h)
	l.removeFd(h)
	unix.Close(int(h))
}

func (l *Loop) removeFd(h Handle) {
	for i, pfd := range l.fds {
		if pfd.Fd == int32(h) {
			l.fds = append(l.fds[:i], l.fds[i+1:]...)
			return
		}
	}
}

// shutdown flushes every client's outbound queue with a best effort write
// and closes every descriptor, including the listener.
func (l *Loop) shutdown() {
	for _, pfd := range l.fds {
		if int(pfd.Fd) == l.listenFd {
			continue
		}
		l.writable(Handle(pfd.Fd))
		unix.Close(int(pfd.Fd))
	}
	unix.Close(l.listenFd)
}
