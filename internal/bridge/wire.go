/*
Package bridge implements the IRC-facing protocol server: the TCP listener,
the registration handshake, the session registry, the post-registration
command router, and the inbound relay that projects platform events onto
IRC wire lines.

This file holds the numeric reply constants and the constructors for every
outbound line shape the bridge emits.
*/
package bridge

import (
	"fmt"
	"strings"

	"github.com/ergochat/irc-go/ircmsg"

	"dircd/internal/directory"
)

// Numeric replies used by the bridge.
const (
	RplWelcome       = "001"
	RplServerInfo    = "003"
	RplNamReply      = "353"
	ErrNotRegistered = "451"
)

// maxLineLen is the RFC 1459 line length cap applied to inbound parsing.
const maxLineLen = 512

// serialize renders a message as a \n-terminated wire line. The wire contract
// is bare-\n termination; ircmsg hardcodes CRLF, hence the terminator swap.
func serialize(msg ircmsg.Message) (string, error) {
	line, err := msg.Line()
	if err != nil {
		return "", err
	}
	return strings.TrimSuffix(line, "\r\n") + "\n", nil
}

// userPrefix renders the nick!user@host source form.
func userPrefix(nick, user, host string) string {
	return fmt.Sprintf("%s!%s@%s", nick, user, host)
}

// remotePrefix renders the source form for remote platform users, whose
// nickname stands in for all three hostmask positions.
func remotePrefix(nick string) string {
	return userPrefix(nick, nick, nick)
}

// numericMsg builds ":<host> <code> <target> :<text>".
func numericMsg(host, code, target, text string) ircmsg.Message {
	msg := ircmsg.MakeMessage(nil, host, code, target, text)
	msg.ForceTrailing()
	return msg
}

// notRegisteredMsg is the numeric 451 sent to sessions that issue commands
// before completing the handshake.
func notRegisteredMsg(host, text string) ircmsg.Message {
	return numericMsg(host, ErrNotRegistered, "*", text)
}

// privmsgFrom builds ":<from>!<from>@<from> PRIVMSG <target> :<text>".
func privmsgFrom(from, target, text string) ircmsg.Message {
	msg := ircmsg.MakeMessage(nil, remotePrefix(from), "PRIVMSG", target, text)
	msg.ForceTrailing()
	return msg
}

// noticeAllMsg builds ":<host> NOTICE * :<text>", the sole error-reporting
// line toward all connected IRC clients.
func noticeAllMsg(host, text string) ircmsg.Message {
	msg := ircmsg.MakeMessage(nil, host, "NOTICE", "*", text)
	msg.ForceTrailing()
	return msg
}

// noticeToMsg builds ":<host> NOTICE <nick> :<text>" for a single session.
func noticeToMsg(host, nick, text string) ircmsg.Message {
	msg := ircmsg.MakeMessage(nil, host, "NOTICE", nick, text)
	msg.ForceTrailing()
	return msg
}

// joinMsg builds ":<nick>!<user>@<host> JOIN #<channel>".
func joinMsg(nick, user, host, channelName string) ircmsg.Message {
	return ircmsg.MakeMessage(nil, userPrefix(nick, user, host), "JOIN", "#"+channelName)
}

// partMsg builds ":<nick>!<user>@<host> PART #<channel> :<reason>".
func partMsg(nick, user, host, channelName, reason string) ircmsg.Message {
	msg := ircmsg.MakeMessage(nil, userPrefix(nick, user, host), "PART", "#"+channelName, reason)
	msg.ForceTrailing()
	return msg
}

// modeMsg builds ":<host> MODE #<channel> {+|-}v <nick>".
func modeMsg(host, channelName string, voiced bool, nick string) ircmsg.Message {
	flag := "-v"
	if voiced {
		flag = "+v"
	}
	return ircmsg.MakeMessage(nil, host, "MODE", "#"+channelName, flag, nick)
}

// topicMsg builds ":<setBy>!<setBy>@<setBy> TOPIC #<channel> :<topic>".
func topicMsg(setBy, channelName, topic string) ircmsg.Message {
	msg := ircmsg.MakeMessage(nil, remotePrefix(setBy), "TOPIC", "#"+channelName, topic)
	msg.ForceTrailing()
	return msg
}

// namesMsg builds ":<host> 353 <nick> = #<channel> :<names>".
func namesMsg(host, nick, channelName, names string) ircmsg.Message {
	msg := ircmsg.MakeMessage(nil, host, RplNamReply, nick, "=", "#"+channelName, names)
	msg.ForceTrailing()
	return msg
}

// pingMsg builds "PING :<token>".
func pingMsg(token string) ircmsg.Message {
	msg := ircmsg.MakeMessage(nil, "", "PING", token)
	msg.ForceTrailing()
	return msg
}

// namesList renders a channel's user list for 353 output, prefixing each
// nickname with its mode marker. Sentinel placeholders render as nothing,
// so an empty channel yields an empty (but well-defined) list.
func namesList(users []*directory.User) string {
	parts := make([]string, 0, len(users))
	for _, u := range users {
		if u.Nickname == "" {
			continue
		}
		parts = append(parts, u.Mode+u.Nickname)
	}
	return strings.Join(parts, " ")
}
