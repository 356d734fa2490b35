/*
This file routes post-registration commands. PRIVMSG is the workhorse; NAMES
is reserved for a future roster refresh and everything else is ignored, since
classic clients emit plenty of commands the bridge has no use for.
*/
package bridge

import (
	"strings"

	"github.com/ergochat/irc-go/ircmsg"

	"dircd/internal/pkg/errs"
)

// dispatch parses one registered-session line and routes it. Unparseable
// lines are dropped; the platform mirror must never wobble because a client
// sent garbage.
func (srv *Server) dispatch(s *Session, raw string) {
	msg, err := ircmsg.ParseLineStrict(raw, true, maxLineLen)
	if err != nil {
		s.logger.Debug().Err(err).Msg("Dropping unparseable line.")
		return
	}

	switch msg.Command {
	case "PRIVMSG":
		srv.handlePrivmsg(s, msg)
	case "NAMES":
		// Roster refresh is not implemented yet; swallow it so clients that
		// poll NAMES don't trip the unknown-command path.
	case "PONG", "QUIT":
		// PONG needs no bookkeeping; QUIT is handled by the read loop noticing
		// the closed socket.
	default:
		s.logger.Debug().Str("command", msg.Command).Msg("Ignoring unsupported command.")
	}
}

// handlePrivmsg relays one client message out to the platform. A "#"-prefixed
// target is a qualified channel; anything else is treated as a remote user's
// nickname. Payloads containing embedded newlines become one delivery per
// line. Delivery failures surface as a NOTICE to the sender only.
func (srv *Server) handlePrivmsg(s *Session, msg ircmsg.Message) {
	if len(msg.Params) < 2 {
		return
	}
	target, text := msg.Params[0], msg.Params[1]

	if strings.HasPrefix(target, "#") {
		srv.relayToChannel(s, target, text)
		return
	}
	srv.relayToUser(s, target, text)
}

func (srv *Server) relayToChannel(s *Session, target, text string) {
	serverName, channelName, ok := splitChannelTarget(target)
	if !ok {
		s.logger.Debug().Str("target", target).Msg("Dropping message to unqualified channel target.")
		return
	}

	ch, found := srv.dir.FindChannel(serverName, channelName)
	if !found {
		// Unknown channels are silently dropped; clients routinely message
		// channels the bridge has already forgotten.
		s.logger.Debug().Str("target", target).Msg("Dropping message to unknown channel.")
		return
	}

	for _, line := range splitPayload(text) {
		if err := srv.sender.SendToChannel(srv.ctx, ch.ID, line); err != nil {
			deliveryFailures.Inc()
			s.logger.Warn().Err(err).Str("channel", ch.Name).Msg("Channel delivery failed.")
			s.Send(noticeToMsg(srv.cfg.ServerHostname, s.Nickname(),
				errs.NewError(errs.ErrChannelDeliveryFailed, target).Message))
			return
		}
		outboundRelayed.Inc()
	}
}

func (srv *Server) relayToUser(s *Session, target, text string) {
	user, found := srv.dir.FindUserByNickname(target)
	if !found {
		s.Send(noticeToMsg(srv.cfg.ServerHostname, s.Nickname(),
			errs.NewError(errs.ErrUserNotFound, target).Message))
		return
	}

	for _, line := range splitPayload(text) {
		if err := srv.sender.SendToUser(srv.ctx, user.Nickname, line); err != nil {
			deliveryFailures.Inc()
			s.logger.Warn().Err(err).Str("nickname", user.Nickname).Msg("Direct delivery failed.")
			s.Send(noticeToMsg(srv.cfg.ServerHostname, s.Nickname(),
				errs.NewError(errs.ErrUserDeliveryFailed, target).Message))
			return
		}
		outboundRelayed.Inc()
	}
}

// splitPayload breaks a message body on embedded newlines, dropping empty
// segments so pasted blocks don't produce blank deliveries.
func splitPayload(text string) []string {
	parts := strings.Split(text, "\n")
	out := parts[:0]
	for _, p := range parts {
		p = strings.TrimRight(p, "\r")
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
