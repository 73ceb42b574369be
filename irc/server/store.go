package server

import (
	"errors"
	"regexp"
)

// Errors returned by Store operations. Handlers convert SetNick's errors
// into a numeric reply on the offending client, and Server.Accept turns
// ErrHandleExists into a nil Client; nothing above the store propagates
// them further.
var (
	ErrHandleExists = errors.New("handle already registered")
	ErrNoSuchHandle = errors.New("no such handle")
	ErrNickInUse    = errors.New("nickname in use")
	ErrInvalidNick  = errors.New("erroneous nickname")
)

var nickPattern = regexp.MustCompile(`^[A-Za-z\[\]\\` + "`" + `_^{|}][A-Za-z0-9\[\]\\` + "`" + `_^{|}-]{0,15}$`)

// ValidNick reports whether nick matches IRC's nickname grammar: a letter
// or special character, followed by up to 15 letters, digits, specials, or
// hyphens.
func ValidNick(nick string) bool {
	return nickPattern.MatchString(nick)
}

// Store is the sole owner of every Client and Channel record. It holds no
// locks: the event loop drives it from a single goroutine, so every method
// here runs to completion between two dispatches without interleaving.
type Store struct {
	clients  map[Handle]*Client
	channels map[string]*Channel
	nicks    map[string]Handle
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{
		clients:  make(map[Handle]*Client),
		channels: make(map[string]*Channel),
		nicks:    make(map[string]Handle),
	}
}

// RegisterClient creates a fresh, unregistered Client for h.
func (s *Store) RegisterClient(h Handle) (*Client, error) {
	if _, ok := s.clients[h]; ok {
		return nil, ErrHandleExists
	}
	c := newClient(h)
	s.clients[h] = c
	return c, nil
}

// Client returns the client for h, or nil.
func (s *Store) Client(h Handle) *Client {
	return s.clients[h]
}

// FindClientByNick returns the client currently holding nick, or nil.
// Comparison is case-sensitive, matching original_source/Server.cpp's
// plain == comparison for nicknames.
func (s *Store) FindClientByNick(nick string) *Client {
	h, ok := s.nicks[nick]
	if !ok {
		return nil
	}
	return s.clients[h]
}

// SetNick attempts to rename the client at h to nick, enforcing the
// nickname grammar and server-wide uniqueness.
func (s *Store) SetNick(h Handle, nick string) error {
	if !ValidNick(nick) {
		return ErrInvalidNick
	}
	if owner, ok := s.nicks[nick]; ok && owner != h {
		return ErrNickInUse
	}
	c, ok := s.clients[h]
	if !ok {
		return ErrNoSuchHandle
	}
	if c.Nick != "" {
		delete(s.nicks, c.Nick)
	}
	c.Nick = nick
	c.GotNick = true
	s.nicks[nick] = h
	return nil
}

// DropClient removes the client at h from every channel it belongs to,
// deleting any channel that becomes empty as a result, then frees the
// client record. It is the only path by which a client disappears from the
// store, keeping membership bookkeeping and empty-channel cleanup
// transactional.
func (s *Store) DropClient(h Handle) *Client {
	c, ok := s.clients[h]
	if !ok {
		return nil
	}
	for name := range c.Channels {
		if ch, ok := s.channels[name]; ok {
			ch.RemoveMember(h)
			if ch.Empty() {
				delete(s.channels, name)
			}
		}
	}
	if c.Nick != "" {
		delete(s.nicks, c.Nick)
	}
	delete(s.clients, h)
	return c
}

// FindChannel returns the channel named name, or nil.
func (s *Store) FindChannel(name string) *Channel {
	return s.channels[name]
}

// FindOrCreateChannel returns the existing channel named name, or creates
// one with creator as its first member and operator, recording the
// membership on creator's side of the index too.
func (s *Store) FindOrCreateChannel(name string, creator Handle) (*Channel, bool) {
	if ch, ok := s.channels[name]; ok {
		return ch, false
	}
	ch := newChannel(name, creator)
	s.channels[name] = ch
	if c, ok := s.clients[creator]; ok {
		c.Channels[name] = struct{}{}
	}
	return ch, true
}

// JoinChannel records that h has joined ch, on both sides of the
// bidirectional index.
func (s *Store) JoinChannel(ch *Channel, h Handle) {
	ch.AddMember(h)
	if c, ok := s.clients[h]; ok {
		c.Channels[ch.Name] = struct{}{}
	}
}

// PartChannel removes h from ch on both sides of the index, deleting ch if
// it is now empty.
func (s *Store) PartChannel(ch *Channel, h Handle) {
	ch.RemoveMember(h)
	if c, ok := s.clients[h]; ok {
		delete(c.Channels, ch.Name)
	}
	if ch.Empty() {
		delete(s.channels, ch.Name)
	}
}

// Channels returns every live channel. Order is unspecified.
func (s *Store) Channels() []*Channel {
	out := make([]*Channel, 0, len(s.channels))
	for _, ch := range s.channels {
		out = append(out, ch)
	}
	return out
}
