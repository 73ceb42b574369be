package irc

import "fmt"

// ServerName defaults here but is overridden at startup from
// internal/config, so every numeric this package renders reflects the
// configured identity. ServerVersion is not read from config.
var (
	ServerName    = "42.IRC"
	ServerVersion = "0.1"
)

// Numeric reply codes, named the way other_examples/Travis-Britz-irc names
// them (RplXxx / ErrXxx).
const (
	RplWelcome       = "001"
	RplYourHost      = "002"
	RplCreated       = "003"
	RplMyInfo        = "004"
	RplList          = "322"
	RplListEnd       = "323"
	RplChannelModeIs = "324"
	RplNoTopic       = "331"
	RplTopic         = "332"
	RplInviting      = "341"
	RplNameReply     = "353"
	RplEndOfNames    = "366"
	RplMotdStart     = "375"
	RplMotd          = "372"
	RplEndOfMotd     = "376"

	ErrNoSuchNick       = "401"
	ErrNoSuchChannel    = "403"
	ErrCannotSendToChan = "404"
	ErrNoOrigin         = "409"
	ErrUnknownCommand   = "421"
	ErrNoMotd           = "422"
	ErrNoNicknameGiven  = "431"
	ErrErroneusNickname = "432"
	ErrNicknameInUse    = "433"
	ErrUserNotInChannel = "441"
	ErrNotOnChannel     = "442"
	ErrUserOnChannel    = "443"
	ErrNotRegistered    = "451"
	ErrNeedMoreParams   = "461"
	ErrPasswdMismatch   = "464"
	ErrChannelIsFull    = "471"
	ErrUnknownMode      = "472"
	ErrInviteOnlyChan   = "473"
	ErrBadChannelKey    = "475"
	ErrChanOPrivsNeeded = "482"
)

// Numeric builds a numeric reply line: ":<server> <code> <target> <params...>".
// The last parameter is colon-prefixed by Message.String's usual rule, so
// callers pass the trailing human-readable text as the final param.
func Numeric(code, target string, params ...string) string {
	m := &Message{
		Prefix:  ServerName,
		Command: code,
		Params:  append([]string{target}, params...),
	}
	return m.String()
}

// FromClient builds a message as if sent by a client, e.g. ":nick!user@host JOIN #chan".
func FromClient(hostmask, command string, params ...string) string {
	m := &Message{
		Prefix:  hostmask,
		Command: command,
		Params:  params,
	}
	return m.String()
}

// FromServer builds a message with the server as prefix, e.g. PING/PONG.
func FromServer(command string, params ...string) string {
	m := &Message{
		Prefix:  ServerName,
		Command: command,
		Params:  params,
	}
	return m.String()
}

// WelcomeBurst renders the 001–004 numerics sent once registration completes.
func WelcomeBurst(nick, hostmask string) []string {
	return []string{
		Numeric(RplWelcome, nick, fmt.Sprintf("Welcome to the Internet Relay Network %s", hostmask)),
		Numeric(RplYourHost, nick, fmt.Sprintf("Your host is %s, running version %s", ServerName, ServerVersion)),
		Numeric(RplCreated, nick, "This server was created today"),
		Numeric(RplMyInfo, nick, ServerName, ServerVersion, "o", "itkol"),
	}
}

// MotdBurst renders the message-of-the-day numerics that follow the welcome
// burst: 375/372.../376 when motd is set, or a bare 422 when it isn't.
func MotdBurst(nick, motd string) []string {
	if motd == "" {
		return []string{Numeric(ErrNoMotd, nick, "MOTD File is missing")}
	}
	lines := []string{Numeric(RplMotdStart, nick, fmt.Sprintf("- %s Message of the day -", ServerName))}
	lines = append(lines, Numeric(RplMotd, nick, "- "+motd))
	lines = append(lines, Numeric(RplEndOfMotd, nick, "End of MOTD command"))
	return lines
}
