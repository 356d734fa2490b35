package bridge

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistrationNickThenUser(t *testing.T) {
	srv, _ := newTestServer(testConfig(), seedDirectory())
	s, conn := newTestSession()

	srv.handleUnregistered(s, []string{"NICK me"})
	assert.False(t, s.Registered())
	assert.Empty(t, conn.lines())

	srv.handleUnregistered(s, []string{"USER me 0 * :Real Name"})
	require.True(t, s.Registered())
	assert.Equal(t, 1, srv.registry.Len())

	lines := conn.lines()
	require.GreaterOrEqual(t, len(lines), 2)
	assert.Equal(t, ":localghost 001 me :You are connected to DIRCD", lines[0])
	assert.Equal(t, ":localghost 003 me :meh...", lines[1])
}

func TestRegistrationUserBeforeNick(t *testing.T) {
	srv, _ := newTestServer(testConfig(), seedDirectory())
	s, _ := newTestSession()

	srv.handleUnregistered(s, []string{"USER me 0 * :Real Name"})
	assert.False(t, s.Registered())

	srv.handleUnregistered(s, []string{"NICK me"})
	assert.True(t, s.Registered())
	assert.Equal(t, "me", s.Nickname())
}

func TestRegistrationWelcomeBurstJoinsAllChannels(t *testing.T) {
	srv, _ := newTestServer(testConfig(), seedDirectory())
	s, conn := newTestSession()

	srv.handleUnregistered(s, []string{"NICK me", "USER me 0 * :Real Name"})
	require.True(t, s.Registered())

	lines := conn.lines()
	joined := joinedChannels(lines)
	assert.Equal(t, []string{"#Testy_Server.general", "#Testy_Server.dev"}, joined)

	var roster string
	for _, l := range lines {
		if strings.Contains(l, " 353 ") && strings.Contains(l, "#Testy_Server.general") {
			roster = l
		}
	}
	assert.Equal(t, ":localghost 353 me = #Testy_Server.general :+alice bob @carol", roster)
}

func TestRegistrationAllowListFiltersJoins(t *testing.T) {
	cfg := testConfig()
	cfg.JoinChannels = []string{"general"}
	srv, _ := newTestServer(cfg, seedDirectory())
	s, conn := newTestSession()

	srv.handleUnregistered(s, []string{"NICK me", "USER me 0 * :Real Name"})

	assert.Equal(t, []string{"#Testy_Server.general"}, joinedChannels(conn.lines()))
}

func TestRegistrationJunkDraws451(t *testing.T) {
	srv, _ := newTestServer(testConfig(), seedDirectory())
	s, conn := newTestSession()

	srv.handleUnregistered(s, []string{"PRIVMSG #x :too early"})
	assert.False(t, s.Registered())
	assert.Equal(t, []string{":localghost 451 * :Please Identify first"}, conn.lines())
}

func TestRegistrationQueueDiscardedOnCompletion(t *testing.T) {
	srv, sender := newTestServer(testConfig(), seedDirectory())
	s, _ := newTestSession()

	// The PRIVMSG rides in the same chunk that completes the handshake; the
	// queue is discarded wholesale, so it must never reach the platform.
	srv.handleUnregistered(s, []string{
		"NICK me",
		"USER me 0 * :Real Name",
		"PRIVMSG #Testy_Server.general :swallowed",
	})

	require.True(t, s.Registered())
	assert.Nil(t, s.pending)
	assert.Empty(t, sender.channelCalls())
}

func TestRegistrationSplitAcrossChunksWithJunk(t *testing.T) {
	srv, _ := newTestServer(testConfig(), seedDirectory())
	s, _ := newTestSession()

	srv.handleUnregistered(s, []string{"CAP LS"})
	srv.handleUnregistered(s, []string{"NICK me"})
	assert.False(t, s.Registered())

	srv.handleUnregistered(s, []string{"USER me 0 * :Real Name"})
	assert.True(t, s.Registered())
}

func TestParseUserParams(t *testing.T) {
	tests := []struct {
		name     string
		params   []string
		username string
		realname string
		ok       bool
	}{
		{"classic", []string{"bob", "0", "*", "Bob Smith"}, "bob_0", "Bob Smith", true},
		{"minimal", []string{"bob", "host", "Bob"}, "bob", "Bob", true},
		{"too few", []string{"bob", "Bob"}, "", "", false},
		{"empty realname", []string{"bob", "0", "*", ""}, "", "", false},
		{"empty servername", []string{"bob", "", "Bob"}, "", "", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			username, realname, ok := parseUserParams(tc.params)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, tc.username, username)
				assert.Equal(t, tc.realname, realname)
			}
		})
	}
}

func TestChannelInBounds(t *testing.T) {
	assert.True(t, channelInBounds(nil, "Srv.anything"))
	assert.True(t, channelInBounds([]string{"general"}, "Srv.general"))
	assert.True(t, channelInBounds([]string{"Srv."}, "Srv.dev"))
	assert.False(t, channelInBounds([]string{"general"}, "Srv.dev"))
}

// joinedChannels extracts JOIN targets from a welcome burst.
func joinedChannels(lines []string) []string {
	var out []string
	for _, l := range lines {
		parts := strings.Split(l, " ")
		if len(parts) == 3 && parts[1] == "JOIN" {
			out = append(out, parts[2])
		}
	}
	return out
}
