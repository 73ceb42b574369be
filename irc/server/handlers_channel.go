package server

import (
	"strconv"
	"strings"

	"github.com/miravassor/irc/irc"
)

func isChannelName(name string) bool {
	return len(name) > 1 && (name[0] == '#' || name[0] == '&')
}

func handleJoin(s *Server, h Handle, args []string) {
	c := s.store.Client(h)
	if len(args) < 1 {
		s.reply(h, irc.ErrNeedMoreParams, c.target(), "JOIN", "Not enough parameters")
		return
	}
	names := strings.Split(args[0], ",")
	var keys []string
	if len(args) > 1 {
		keys = strings.Split(args[1], ",")
	}

	for i, name := range names {
		if !isChannelName(name) {
			s.reply(h, irc.ErrNoSuchChannel, c.target(), name, "No such channel")
			continue
		}
		var key string
		if i < len(keys) {
			key = keys[i]
		}
		s.joinOne(h, c, name, key)
	}
}

func (s *Server) joinOne(h Handle, c *Client, name, key string) {
	ch, created := s.store.FindOrCreateChannel(name, h)
	if created {
		// FindOrCreateChannel already made h the first member/operator.
		s.sendJoinBurst(h, c, ch)
		return
	}

	if ch.Modes&ModeInviteOnly != 0 && !ch.IsInvited(h) {
		s.reply(h, irc.ErrInviteOnlyChan, c.target(), name, "Cannot join channel (+i)")
		return
	}
	if ch.Modes&ModeKeySet != 0 && ch.Key != key {
		s.reply(h, irc.ErrBadChannelKey, c.target(), name, "Cannot join channel (+k)")
		return
	}
	if ch.Modes&ModeLimitSet != 0 && len(ch.Members) >= ch.Limit {
		s.reply(h, irc.ErrChannelIsFull, c.target(), name, "Cannot join channel (+l)")
		return
	}

	s.store.JoinChannel(ch, h)
	s.sendJoinBurst(h, c, ch)
}

// sendJoinBurst broadcasts JOIN to the whole channel (the joiner included)
// then sends the topic and names list to the joiner alone.
func (s *Server) sendJoinBurst(h Handle, c *Client, ch *Channel) {
	s.broadcastChannel(ch, irc.FromClient(c.Hostmask(), "JOIN", ch.Name))

	if ch.Topic != "" {
		s.reply(h, irc.RplTopic, c.target(), ch.Name, ch.Topic)
	} else {
		s.reply(h, irc.RplNoTopic, c.target(), ch.Name, "No topic is set")
	}
	s.sendNames(h, c, ch)
}

func (s *Server) sendNames(h Handle, c *Client, ch *Channel) {
	var b strings.Builder
	first := true
	for member := range ch.Members {
		mc := s.store.Client(member)
		if mc == nil {
			continue
		}
		if !first {
			b.WriteByte(' ')
		}
		first = false
		if ch.IsOperator(member) {
			b.WriteByte('@')
		}
		b.WriteString(mc.Nick)
	}
	s.reply(h, irc.RplNameReply, c.target(), "=", ch.Name, b.String())
	s.reply(h, irc.RplEndOfNames, c.target(), ch.Name, "End of /NAMES list")
}

func handlePart(s *Server, h Handle, args []string) {
	c := s.store.Client(h)
	if len(args) < 1 {
		s.reply(h, irc.ErrNeedMoreParams, c.target(), "PART", "Not enough parameters")
		return
	}
	reason := "Leaving"
	if len(args) > 1 {
		reason = args[1]
	}
	for _, name := range strings.Split(args[0], ",") {
		ch := s.store.FindChannel(name)
		if ch == nil || !ch.IsMember(h) {
			s.reply(h, irc.ErrNotOnChannel, c.target(), name, "You're not on that channel")
			continue
		}
		s.broadcastChannel(ch, irc.FromClient(c.Hostmask(), "PART", name, reason))
		s.store.PartChannel(ch, h)
	}
}

func handlePrivmsg(s *Server, h Handle, args []string) {
	c := s.store.Client(h)
	if len(args) < 1 {
		s.reply(h, irc.ErrNeedMoreParams, c.target(), "PRIVMSG", "Not enough parameters")
		return
	}
	if len(args) < 2 {
		s.reply(h, irc.ErrNeedMoreParams, c.target(), "PRIVMSG", "No text to send")
		return
	}
	text := args[1]
	for _, target := range strings.Split(args[0], ",") {
		if isChannelName(target) {
			ch := s.store.FindChannel(target)
			if ch == nil {
				s.reply(h, irc.ErrNoSuchChannel, c.target(), target, "No such channel")
				continue
			}
			if !ch.IsMember(h) {
				s.reply(h, irc.ErrCannotSendToChan, c.target(), target, "Cannot send to channel")
				continue
			}
			s.broadcastChannelExcept(ch, irc.FromClient(c.Hostmask(), "PRIVMSG", target, text), h)
			continue
		}
		dest := s.store.FindClientByNick(target)
		if dest == nil {
			s.reply(h, irc.ErrNoSuchNick, c.target(), target, "No such nick/channel")
			continue
		}
		s.send(dest.Handle, irc.FromClient(c.Hostmask(), "PRIVMSG", target, text))
	}
}

func handleInvite(s *Server, h Handle, args []string) {
	c := s.store.Client(h)
	if len(args) < 2 {
		s.reply(h, irc.ErrNeedMoreParams, c.target(), "INVITE", "Not enough parameters")
		return
	}
	nick, chanName := args[0], args[1]

	ch := s.store.FindChannel(chanName)
	if ch == nil || !ch.IsMember(h) {
		s.reply(h, irc.ErrNotOnChannel, c.target(), chanName, "You're not on that channel")
		return
	}
	if ch.Modes&ModeInviteOnly != 0 && !ch.IsOperator(h) {
		s.reply(h, irc.ErrChanOPrivsNeeded, c.target(), chanName, "You're not channel operator")
		return
	}
	target := s.store.FindClientByNick(nick)
	if target == nil {
		s.reply(h, irc.ErrNoSuchNick, c.target(), nick, "No such nick/channel")
		return
	}
	if ch.IsMember(target.Handle) {
		s.reply(h, irc.ErrUserOnChannel, c.target(), nick, chanName, "is already on channel")
		return
	}

	ch.Invited[target.Handle] = struct{}{}
	s.send(target.Handle, irc.FromClient(c.Hostmask(), "INVITE", nick)+" :"+chanName)
	s.reply(h, irc.RplInviting, c.target(), nick, chanName)
}

func handleKick(s *Server, h Handle, args []string) {
	c := s.store.Client(h)
	if len(args) < 2 {
		s.reply(h, irc.ErrNeedMoreParams, c.target(), "KICK", "Not enough parameters")
		return
	}
	chanName, nick := args[0], args[1]
	reason := "No reason"
	if len(args) > 2 {
		reason = args[2]
	}

	ch := s.store.FindChannel(chanName)
	if ch == nil || !ch.IsMember(h) {
		s.reply(h, irc.ErrNotOnChannel, c.target(), chanName, "You're not on that channel")
		return
	}
	if !ch.IsOperator(h) {
		s.reply(h, irc.ErrChanOPrivsNeeded, c.target(), chanName, "You're not channel operator")
		return
	}
	target := s.store.FindClientByNick(nick)
	if target == nil || !ch.IsMember(target.Handle) {
		s.reply(h, irc.ErrUserNotInChannel, c.target(), nick, chanName, "They aren't on that channel")
		return
	}

	s.broadcastChannel(ch, irc.FromClient(c.Hostmask(), "KICK", chanName, nick)+" :"+reason)
	s.store.PartChannel(ch, target.Handle)
}

func handleTopic(s *Server, h Handle, args []string) {
	c := s.store.Client(h)
	if len(args) < 1 {
		s.reply(h, irc.ErrNeedMoreParams, c.target(), "TOPIC", "Not enough parameters")
		return
	}
	chanName := args[0]
	ch := s.store.FindChannel(chanName)
	if ch == nil || !ch.IsMember(h) {
		s.reply(h, irc.ErrNotOnChannel, c.target(), chanName, "You're not on that channel")
		return
	}

	if len(args) < 2 {
		if ch.Topic != "" {
			s.reply(h, irc.RplTopic, c.target(), chanName, ch.Topic)
		} else {
			s.reply(h, irc.RplNoTopic, c.target(), chanName, "No topic is set")
		}
		return
	}

	if ch.Modes&ModeTopicRestricted != 0 && !ch.IsOperator(h) {
		s.reply(h, irc.ErrChanOPrivsNeeded, c.target(), chanName, "You're not channel operator")
		return
	}
	ch.Topic = args[1]
	s.broadcastChannel(ch, irc.FromClient(c.Hostmask(), "TOPIC", chanName, ch.Topic))
}

func handleNames(s *Server, h Handle, args []string) {
	c := s.store.Client(h)
	if len(args) < 1 {
		for _, ch := range s.store.Channels() {
			if ch.IsMember(h) {
				s.sendNames(h, c, ch)
			}
		}
		return
	}
	for _, name := range strings.Split(args[0], ",") {
		ch := s.store.FindChannel(name)
		if ch == nil {
			continue
		}
		s.sendNames(h, c, ch)
	}
}

func handleList(s *Server, h Handle, args []string) {
	c := s.store.Client(h)
	for _, ch := range s.store.Channels() {
		s.reply(h, irc.RplList, c.target(), ch.Name, strconv.Itoa(len(ch.Members)), ch.Topic)
	}
	s.reply(h, irc.RplListEnd, c.target(), "End of /LIST")
}

// handleMode parses and applies a modestring against a channel. It
// supports {i, t, k, l, o}, applying changes left-to-right and
// accumulating the effective delta into a single broadcast.
func handleMode(s *Server, h Handle, args []string) {
	c := s.store.Client(h)
	if len(args) < 1 {
		s.reply(h, irc.ErrNeedMoreParams, c.target(), "MODE", "Not enough parameters")
		return
	}
	chanName := args[0]
	ch := s.store.FindChannel(chanName)
	if ch == nil {
		s.reply(h, irc.ErrNoSuchChannel, c.target(), chanName, "No such channel")
		return
	}

	if len(args) < 2 {
		modes, params := ch.ModeString()
		reply := append([]string{chanName, modes}, params...)
		s.reply(h, irc.RplChannelModeIs, c.target(), reply...)
		return
	}

	if !ch.IsOperator(h) {
		s.reply(h, irc.ErrChanOPrivsNeeded, c.target(), chanName, "You're not channel operator")
		return
	}

	deltaModes, deltaParams := applyModeString(s, h, c, ch, args[1], args[2:])
	if deltaModes == "" {
		return
	}
	params := append([]string{chanName, deltaModes}, deltaParams...)
	s.broadcastChannel(ch, irc.FromClient(c.Hostmask(), "MODE", params...))
}

// applyModeString walks modestring left to right, applying each {i,t,k,l,o}
// change and consuming a parameter where the mode needs one. A mode that
// needs a parameter it doesn't have is silently skipped, matching common
// IRCd behavior.
func applyModeString(s *Server, h Handle, c *Client, ch *Channel, modestring string, params []string) (string, []string) {
	var deltaModes strings.Builder
	var deltaParams []string
	sign := byte('+')
	deltaSign := byte(0) // sign last written into deltaModes; 0 means none yet
	pi := 0

	next := func() (string, bool) {
		if pi >= len(params) {
			return "", false
		}
		p := params[pi]
		pi++
		return p, true
	}
	// apply records that mode char m took effect under the current sign,
	// writing the sign to deltaModes only when it differs from the last
	// char written (so "+it" renders as one run, not "+i+t").
	apply := func(m byte) {
		if deltaSign != sign {
			deltaModes.WriteByte(sign)
			deltaSign = sign
		}
		deltaModes.WriteByte(m)
	}

	for _, m := range modestring {
		switch m {
		case '+', '-':
			sign = byte(m)
			continue
		case 'i':
			if sign == '+' {
				ch.Modes |= ModeInviteOnly
			} else {
				ch.Modes &^= ModeInviteOnly
			}
			apply('i')
		case 't':
			if sign == '+' {
				ch.Modes |= ModeTopicRestricted
			} else {
				ch.Modes &^= ModeTopicRestricted
			}
			apply('t')
		case 'k':
			if sign == '+' {
				key, ok := next()
				if !ok {
					continue
				}
				ch.SetKey(key)
				apply('k')
				deltaParams = append(deltaParams, key)
			} else {
				ch.SetKey("")
				apply('k')
			}
		case 'l':
			if sign == '+' {
				raw, ok := next()
				if !ok {
					continue
				}
				n, err := strconv.Atoi(raw)
				if err != nil || n <= 0 {
					continue
				}
				ch.SetLimit(n)
				apply('l')
				deltaParams = append(deltaParams, raw)
			} else {
				ch.SetLimit(0)
				apply('l')
			}
		case 'o':
			nick, ok := next()
			if !ok {
				continue
			}
			target := s.store.FindClientByNick(nick)
			if target == nil || !ch.IsMember(target.Handle) {
				continue
			}
			if sign == '+' {
				ch.Operators[target.Handle] = struct{}{}
			} else {
				delete(ch.Operators, target.Handle)
			}
			apply('o')
			deltaParams = append(deltaParams, nick)
		default:
			s.reply(h, irc.ErrUnknownMode, c.target(), string(m), "is unknown mode char to me")
		}
	}

	return deltaModes.String(), deltaParams
}
