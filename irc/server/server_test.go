package server_test

import (
	"bufio"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miravassor/irc/internal/wait"
	"github.com/miravassor/irc/irc/server"
)

// ircClient is a thin TCP test client in the style of
// presbrey-pkg/irc/irc_test.go's IRCClient helper.
type ircClient struct {
	t      *testing.T
	conn   net.Conn
	reader *bufio.Reader
}

func dial(t *testing.T, addr string) *ircClient {
	t.Helper()
	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return &ircClient{t: t, conn: conn, reader: bufio.NewReader(conn)}
}

// expectSilence asserts no further line arrives within d, used to confirm
// a client was not notified twice about the same event.
func (c *ircClient) expectSilence(d time.Duration) {
	c.t.Helper()
	c.conn.SetReadDeadline(time.Now().Add(d))
	defer c.conn.SetReadDeadline(time.Time{})
	line, err := c.reader.ReadString('\n')
	assert.Error(c.t, err, "unexpected line: %q", line)
}

func (c *ircClient) send(line string) {
	_, err := c.conn.Write([]byte(line + "\r\n"))
	require.NoError(c.t, err)
}

// expect reads lines until one contains want, failing the test if none
// arrives within the deadline.
func (c *ircClient) expect(want string) string {
	c.t.Helper()
	c.conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	defer c.conn.SetReadDeadline(time.Time{})
	for {
		line, err := c.reader.ReadString('\n')
		require.NoError(c.t, err, "waiting for %q", want)
		line = strings.TrimRight(line, "\r\n")
		if strings.Contains(line, want) {
			return line
		}
	}
}

// startServer boots a Loop on an ephemeral port and returns the dial
// address, stopping the loop when the test ends.
func startServer(t *testing.T, password string) string {
	t.Helper()
	srv := server.NewServer(password, "", 0)
	loop, err := server.NewLoop(srv, 0)
	require.NoError(t, err)

	port, err := loop.Port()
	require.NoError(t, err)
	addr := "127.0.0.1:" + strconv.Itoa(port)

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		loop.Run(stop)
		close(done)
	}()
	t.Cleanup(func() {
		close(stop)
		<-done
	})

	require.NoError(t, wait.ForTCP(addr, 2*time.Second))
	return addr
}

func register(t *testing.T, c *ircClient, password, nick, user string) {
	t.Helper()
	if password != "" {
		c.send("PASS " + password)
	}
	c.send("NICK " + nick)
	c.send("USER " + user + " 0 * :" + user)
	c.expect("001")
	c.expect("002")
	c.expect("003")
	c.expect("004")
}

// S1 — registration and join.
func TestRegistrationAndJoin(t *testing.T) {
	addr := startServer(t, "secret")
	a := dial(t, addr)
	register(t, a, "secret", "alice", "a")

	a.send("JOIN #x")
	assert.Contains(t, a.expect("JOIN"), ":alice!a@")
	assert.Contains(t, a.expect("331"), "No topic is set")
	assert.Contains(t, a.expect("353"), "@alice")
	a.expect("366")
}

// S2 — invite-only enforcement.
func TestInviteOnly(t *testing.T) {
	addr := startServer(t, "secret")
	a := dial(t, addr)
	register(t, a, "secret", "alice", "a")
	a.send("JOIN #x")
	a.expect("366")

	a.send("MODE #x +i")

	b := dial(t, addr)
	register(t, b, "secret", "bob", "b")
	b.send("JOIN #x")
	assert.Contains(t, b.expect("473"), "bob #x")

	a.send("INVITE bob #x")
	assert.Contains(t, a.expect("341"), "bob #x")
	assert.Contains(t, b.expect("INVITE"), "bob :#x")

	b.send("JOIN #x")
	assert.Contains(t, a.expect("JOIN"), ":bob!b@")
	assert.Contains(t, b.expect("JOIN"), ":bob!b@")
}

// S3 — key and limit: a correctly-keyed join past the limit is rejected
// with 471, not 475.
func TestKeyAndLimit(t *testing.T) {
	addr := startServer(t, "secret")
	a := dial(t, addr)
	register(t, a, "secret", "alice", "a")
	a.send("JOIN #x")
	a.expect("366")

	b := dial(t, addr)
	register(t, b, "secret", "bob", "b")
	b.send("JOIN #x")
	b.expect("366")
	a.expect("JOIN")

	a.send("MODE #x +kl hunter2 2")

	carol := dial(t, addr)
	register(t, carol, "secret", "carol", "c")
	carol.send("JOIN #x hunter2")
	assert.Contains(t, carol.expect("471"), "carol #x")
}

// S4 — kick.
func TestKick(t *testing.T) {
	addr := startServer(t, "secret")
	a := dial(t, addr)
	register(t, a, "secret", "alice", "a")
	a.send("JOIN #x")
	a.expect("366")

	b := dial(t, addr)
	register(t, b, "secret", "bob", "b")
	b.send("JOIN #x")
	b.expect("366")
	a.expect("JOIN")

	a.send("KICK #x bob :bye")
	assert.Contains(t, a.expect("KICK"), "#x bob :bye")
	assert.Contains(t, b.expect("KICK"), "#x bob :bye")
}

// S5 — ping.
func TestPing(t *testing.T) {
	addr := startServer(t, "secret")
	a := dial(t, addr)
	register(t, a, "secret", "alice", "a")

	a.send("PING :token42")
	assert.Contains(t, a.expect("PONG"), "token42")
}

// S6 — quit cascade: a member of two shared channels sees exactly one QUIT.
func TestQuitCascade(t *testing.T) {
	addr := startServer(t, "secret")
	a := dial(t, addr)
	register(t, a, "secret", "alice", "a")
	a.send("JOIN #x")
	a.expect("366")
	a.send("JOIN #y")
	a.expect("366")

	b := dial(t, addr)
	register(t, b, "secret", "bob", "b")
	b.send("JOIN #x")
	b.expect("366")
	a.expect("JOIN")
	b.send("JOIN #y")
	b.expect("366")
	a.expect("JOIN")

	a.send("QUIT :later")
	assert.Contains(t, b.expect("QUIT"), ":alice!a@")
	b.expectSilence(150 * time.Millisecond)
}
