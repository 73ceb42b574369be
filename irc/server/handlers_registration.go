package server

import "github.com/miravassor/irc/irc"

func handlePass(s *Server, h Handle, args []string) {
	c := s.store.Client(h)
	if len(args) < 1 {
		s.reply(h, irc.ErrNeedMoreParams, c.target(), "PASS", "Not enough parameters")
		return
	}
	if s.password == "" || args[0] == s.password {
		c.PassOK = true
		return
	}
	s.reply(h, irc.ErrPasswdMismatch, c.target(), "Password incorrect")
}

func handleNick(s *Server, h Handle, args []string) {
	c := s.store.Client(h)
	if len(args) < 1 || args[0] == "" {
		s.reply(h, irc.ErrNoNicknameGiven, c.target(), "No nickname given")
		return
	}
	newNick := args[0]
	oldNick := c.Nick
	wasRegistered := c.Registered

	if err := s.store.SetNick(h, newNick); err != nil {
		switch err {
		case ErrNickInUse:
			s.reply(h, irc.ErrNicknameInUse, c.target(), newNick, "Nickname is already in use")
		default:
			s.reply(h, irc.ErrErroneusNickname, c.target(), newNick, "Erroneous nickname")
		}
		return
	}

	if wasRegistered {
		s.announceNickChange(c, oldNick, newNick)
		return
	}
	s.maybeCompleteRegistration(h, c)
}

func (s *Server) announceNickChange(c *Client, oldNick, newNick string) {
	oldMask := irc.FormatHostmask(oldNick, c.User, c.Host)
	line := irc.FromClient(oldMask, "NICK", newNick)
	seen := map[Handle]bool{c.Handle: true}
	s.send(c.Handle, line)
	for name := range c.Channels {
		ch := s.store.FindChannel(name)
		if ch == nil {
			continue
		}
		for member := range ch.Members {
			if seen[member] {
				continue
			}
			seen[member] = true
			s.send(member, line)
		}
	}
}

func handleUser(s *Server, h Handle, args []string) {
	c := s.store.Client(h)
	if len(args) < 4 {
		s.reply(h, irc.ErrNeedMoreParams, c.target(), "USER", "Not enough parameters")
		return
	}
	if c.Registered {
		return
	}
	c.User = args[0]
	c.Real = args[3]
	c.GotUser = true
	s.maybeCompleteRegistration(h, c)
}

// maybeCompleteRegistration transitions c to registered once it has a nick,
// user info, and (if the server requires one) a correct password, and
// sends the welcome burst exactly once.
func (s *Server) maybeCompleteRegistration(h Handle, c *Client) {
	if c.Registered || !c.GotNick || !c.GotUser {
		return
	}
	if s.password != "" && !c.PassOK {
		s.reply(h, irc.ErrPasswdMismatch, c.target(), "Password required")
		return
	}
	c.Registered = true
	for _, line := range irc.WelcomeBurst(c.Nick, c.Hostmask()) {
		s.send(h, line)
	}
	for _, line := range irc.MotdBurst(c.Nick, s.motd) {
		s.send(h, line)
	}
}

// handleCap accepts CAP as a documented no-op: capability negotiation
// itself is out of scope, but a client's registration sequence may
// legitimately send CAP LS / CAP END before NICK/USER, and the
// registered-only gate must let it through without error.
func handleCap(s *Server, h Handle, args []string) {
	if len(args) == 0 {
		return
	}
	switch args[0] {
	case "LS", "LIST":
		s.send(h, irc.FromServer("CAP", "*", "LS", ""))
	case "END":
		// nothing to do: no capabilities are ever negotiated.
	}
}

func handlePing(s *Server, h Handle, args []string) {
	c := s.store.Client(h)
	if len(args) < 1 {
		s.reply(h, irc.ErrNoOrigin, c.target(), "No origin specified")
		return
	}
	// Whatever token is given is echoed back, without checking it against
	// the server name.
	s.send(h, irc.FromServer("PONG", irc.ServerName, args[0]))
}

func handleQuit(s *Server, h Handle, args []string) {
	c := s.store.Client(h)
	if c == nil {
		return
	}
	reason := "Client Quit"
	if len(args) > 0 {
		reason = args[0]
	}
	quitLine := irc.FromClient(c.Hostmask(), "QUIT", reason)

	notified := make(map[Handle]bool)
	for name := range c.Channels {
		ch := s.store.FindChannel(name)
		if ch == nil {
			continue
		}
		for member := range ch.Members {
			if member == h || notified[member] {
				continue
			}
			notified[member] = true
			s.send(member, quitLine)
		}
	}

	s.store.DropClient(h)
	s.Close(h)
}
