/*
This file implements the NICK/USER registration handshake.

Pre-registration lines accumulate in the session's pending queue, and the
whole queue is re-evaluated from the top on every inbound chunk until both
halves of the handshake are satisfied. NICK and USER may arrive in either
order, split across reads, or interleaved with junk; junk draws a 451 and
nothing else.
*/
package bridge

import (
	"strings"

	"github.com/ergochat/irc-go/ircmsg"

	"dircd/internal/directory"
	"dircd/internal/pkg/errs"
)

// handleUnregistered queues new lines and re-scans the pending queue. Once
// both NICK and USER have been seen the queue is discarded wholesale, so any
// trailing commands that arrived in the same chunk are dropped; clients send
// their follow-ups after the welcome burst anyway.
func (srv *Server) handleUnregistered(s *Session, lines []string) {
	s.pending = append(s.pending, lines...)

	for _, raw := range s.pending {
		if s.nickOK && s.userOK {
			break
		}

		msg, err := ircmsg.ParseLineStrict(raw, true, maxLineLen)
		if err != nil {
			s.Send(notRegisteredMsg(srv.cfg.ServerHostname, errs.NewError(errs.ErrNotRegistered).Message))
			continue
		}

		switch msg.Command {
		case "NICK":
			if len(msg.Params) >= 1 && msg.Params[0] != "" {
				s.setNickname(msg.Params[0])
				s.nickOK = true
			}
		case "USER":
			if username, realname, ok := parseUserParams(msg.Params); ok {
				s.setUserInfo(username, realname)
				s.userOK = true
			}
		default:
			s.Send(notRegisteredMsg(srv.cfg.ServerHostname, errs.NewError(errs.ErrNotRegistered).Message))
		}
	}

	if s.nickOK && s.userOK {
		s.pending = nil
		srv.completeRegistration(s)
	}
}

// parseUserParams extracts username and realname from a USER command's
// parameters: the realname is the final parameter, the servername the one
// before it, and the username is every remaining parameter joined with "_".
// All three positions must be non-empty.
func parseUserParams(params []string) (username, realname string, ok bool) {
	if len(params) < 3 {
		return "", "", false
	}

	realname = params[len(params)-1]
	servername := params[len(params)-2]
	username = strings.Join(params[:len(params)-2], "_")

	if username == "" || servername == "" || realname == "" {
		return "", "", false
	}
	return username, realname, true
}

// completeRegistration marks the session registered, adds it to the registry,
// and emits the welcome burst: 001, 003, then a JOIN and a 353 roster for
// every directory channel the allow-list admits.
func (srv *Server) completeRegistration(s *Session) {
	s.setRegistered()
	srv.registry.Add(s)

	host := srv.cfg.ServerHostname
	nick := s.Nickname()

	s.Send(numericMsg(host, RplWelcome, nick, "You are connected to DIRCD"))
	s.Send(numericMsg(host, RplServerInfo, nick, "meh..."))

	for _, server := range srv.dir.Snapshot() {
		for _, ch := range server.Channels {
			if !srv.channelAllowed(ch.Name) {
				continue
			}
			s.Send(joinMsg(nick, s.Username(), s.Hostname(), ch.Name))
			s.Send(namesMsg(host, nick, ch.Name, namesList(ch.Users)))
		}
	}

	s.logger.Info().Str("nickname", nick).Msg("Session registered.")
}

// channelAllowed applies the channel allow-list: an empty list admits every
// channel, otherwise a qualified channel name is admitted when any configured
// entry is a substring of it.
func (srv *Server) channelAllowed(qualifiedName string) bool {
	return channelInBounds(srv.cfg.JoinChannels, qualifiedName)
}

// channelInBounds is the shared allow-list predicate, also used by the relay.
func channelInBounds(allow []string, qualifiedName string) bool {
	if len(allow) == 0 {
		return true
	}
	for _, entry := range allow {
		if strings.Contains(qualifiedName, entry) {
			return true
		}
	}
	return false
}

// splitChannelTarget strips the leading "#" from an IRC channel target and
// splits the remainder into its server and channel halves.
func splitChannelTarget(target string) (serverName, channelName string, ok bool) {
	return directory.SplitQualified(strings.TrimPrefix(target, "#"))
}
