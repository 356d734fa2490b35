package bridge

import (
	"bufio"
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startTestServer binds a real listener on an ephemeral loopback port.
func startTestServer(t *testing.T) (*Server, *fakeSender, string) {
	t.Helper()

	cfg := testConfig()
	cfg.Port = 0

	sender := &fakeSender{}
	srv := NewServer(cfg, seedDirectory(), NewRegistry(), sender)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(func() {
		cancel()
		srv.Wait()
	})

	require.NoError(t, srv.Start(ctx))
	return srv, sender, srv.listener.Addr().String()
}

// readLines reads n wire lines off the connection, failing on timeout.
func readLines(t *testing.T, conn net.Conn, n int) []string {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	scanner := bufio.NewScanner(conn)

	var lines []string
	for len(lines) < n && scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	require.Len(t, lines, n, "timed out waiting for %d lines, got %v", n, lines)
	return lines
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition never satisfied")
}

func TestServerEndToEndRegistrationAndRelay(t *testing.T) {
	srv, sender, addr := startTestServer(t)

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()

	// Registration split across writes, the way real clients behave.
	_, err = conn.Write([]byte("NICK me\r\n"))
	require.NoError(t, err)
	_, err = conn.Write([]byte("USER me 0 * :Real Name\r\n"))
	require.NoError(t, err)

	// 001, 003, then JOIN+353 for both seeded channels.
	lines := readLines(t, conn, 6)
	assert.Equal(t, ":localghost 001 me :You are connected to DIRCD", lines[0])
	assert.Equal(t, ":localghost 003 me :meh...", lines[1])
	assert.Equal(t, ":me!me_0@127.0.0.1 JOIN #Testy_Server.general", lines[2])
	assert.Equal(t, ":localghost 353 me = #Testy_Server.general :+alice bob @carol", lines[3])
	assert.Equal(t, ":me!me_0@127.0.0.1 JOIN #Testy_Server.dev", lines[4])
	assert.Equal(t, ":localghost 353 me = #Testy_Server.dev :+alice", lines[5])

	waitFor(t, func() bool { return srv.registry.Len() == 1 })

	// An outbound message reaches the platform by channel ID.
	_, err = conn.Write([]byte("PRIVMSG #Testy_Server.general :hello from irc\r\n"))
	require.NoError(t, err)

	waitFor(t, func() bool { return len(sender.channelCalls()) == 1 })
	assert.Equal(t,
		sendCall{Target: "chan-general", Text: "hello from irc"},
		sender.channelCalls()[0])

	// Disconnecting removes the session from the registry.
	conn.Close()
	waitFor(t, func() bool { return srv.registry.Len() == 0 })
}

func TestServerCommandSplitAcrossTCPWrites(t *testing.T) {
	_, sender, addr := startTestServer(t)

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte("NICK me\nUSER me 0 * :Real Name\n"))
	require.NoError(t, err)
	readLines(t, conn, 6)

	// One command dribbled out over three writes.
	for _, part := range []string{"PRIVMSG #Testy_Server", ".general :drib", "bled\n"} {
		_, err = conn.Write([]byte(part))
		require.NoError(t, err)
		time.Sleep(10 * time.Millisecond)
	}

	waitFor(t, func() bool { return len(sender.channelCalls()) == 1 })
	assert.Equal(t, "dribbled", sender.channelCalls()[0].Text)
}

func TestServerTwoClientsIndependentSessions(t *testing.T) {
	srv, _, addr := startTestServer(t)

	dial := func() net.Conn {
		c, err := net.Dial("tcp", addr)
		require.NoError(t, err)
		return c
	}

	a := dial()
	defer a.Close()
	b := dial()
	defer b.Close()

	_, err := a.Write([]byte("NICK dave\nUSER dave 0 * :Dave\n"))
	require.NoError(t, err)
	readLines(t, a, 6)

	_, err = b.Write([]byte("NICK dave\nUSER dave 0 * :Dave Too\n"))
	require.NoError(t, err)
	readLines(t, b, 6)

	waitFor(t, func() bool { return srv.registry.Len() == 2 })

	// Same nickname, distinct sessions: one hangup leaves the other alone.
	a.Close()
	waitFor(t, func() bool { return srv.registry.Len() == 1 })
}
