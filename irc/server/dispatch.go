package server

import "github.com/miravassor/irc/irc"

// HandlerFunc is one command handler: it mutates the store through srv and
// queues whatever outbound messages the command produces. Handlers never
// return an error; every failure becomes a numeric reply enqueued on h.
type HandlerFunc func(srv *Server, h Handle, args []string)

// preRegistrationAllowed is the set of verbs the registered-only gate lets
// through before a client has completed registration.
var preRegistrationAllowed = map[string]bool{
	"PASS": true,
	"NICK": true,
	"USER": true,
	"QUIT": true,
	"PING": true,
	"CAP":  true,
}

func defaultHandlers() map[string]HandlerFunc {
	return map[string]HandlerFunc{
		"PASS":    handlePass,
		"NICK":    handleNick,
		"USER":    handleUser,
		"CAP":     handleCap,
		"PING":    handlePing,
		"QUIT":    handleQuit,
		"JOIN":    handleJoin,
		"PART":    handlePart,
		"PRIVMSG": handlePrivmsg,
		"NOTICE":  handlePrivmsg,
		"INVITE":  handleInvite,
		"KICK":    handleKick,
		"TOPIC":   handleTopic,
		"MODE":    handleMode,
		"NAMES":   handleNames,
		"LIST":    handleList,
	}
}

// Dispatch parses one frame and routes it to its handler, enforcing the
// registered-only gate first. A frame with no command token is a no-op.
func (s *Server) Dispatch(h Handle, line string) {
	msg := irc.Parse(line)
	if msg == nil {
		return
	}
	c := s.store.Client(h)
	if c == nil {
		return
	}

	if !c.Registered && !preRegistrationAllowed[msg.Command] {
		s.reply(h, irc.ErrNotRegistered, c.target(), "You have not registered")
		return
	}

	handler, ok := s.handlers[msg.Command]
	if !ok {
		s.reply(h, irc.ErrUnknownCommand, c.target(), msg.Command, "Unknown command")
		return
	}
	handler(s, h, msg.Params)
}

// target returns the nickname to use as a numeric reply's target, or "*"
// before one has been assigned, matching the convention every IRCd and
// original_source/Server.cpp follow.
func (c *Client) target() string {
	if c.Nick == "" {
		return "*"
	}
	return c.Nick
}
