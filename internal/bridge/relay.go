/*
This file implements the inbound relay: the platform.Events sink that projects
remote platform activity onto IRC wire lines for every registered session.
*/
package bridge

import (
	"strings"

	"github.com/rs/zerolog"

	"dircd/internal/configs"
	"dircd/internal/directory"
	"dircd/internal/pkg/logx"
)

// Relay receives platform events and fans them out to registered sessions.
// It also patches the directory for channel lifecycle events, keeping the
// mirror and the wire view in step.
type Relay struct {
	cfg      *configs.AppConfig
	dir      *directory.Directory
	registry *Registry
	logger   zerolog.Logger
}

// NewRelay constructs a Relay over the given directory and registry.
func NewRelay(cfg *configs.AppConfig, dir *directory.Directory, registry *Registry) *Relay {
	return &Relay{
		cfg:      cfg,
		dir:      dir,
		registry: registry,
		logger:   logx.Logger().With().Str("component", "relay").Logger(),
	}
}

// HandleChannelMessage relays a remote channel message to every session except
// the one whose nickname matches the author, suppressing echo loops. The
// allow-list applies here unless ignore_channel_bounds is set; an out-of-bounds
// message is dropped without error.
func (r *Relay) HandleChannelMessage(server, channel, fromUser, text string) {
	qualified := directory.QualifiedName(server, channel)

	if !r.cfg.IgnoreChannelBounds && !channelInBounds(r.cfg.JoinChannels, qualified) {
		r.logger.Debug().Str("channel", qualified).Msg("Dropping message outside channel bounds.")
		return
	}

	for _, line := range splitPayload(text) {
		r.registry.BroadcastExcept(fromUser, privmsgFrom(fromUser, "#"+qualified, line))
		inboundRelayed.Inc()
	}
}

// HandleDirectMessage relays a platform direct message to every session whose
// nickname differs from the author, addressed to each recipient's own nick so
// clients open a query window rather than a channel.
func (r *Relay) HandleDirectMessage(fromUser, text string) {
	lines := splitPayload(text)
	r.registry.ForEach(func(s *Session) {
		nick := s.Nickname()
		if nick == fromUser {
			return
		}
		for _, line := range lines {
			s.Send(privmsgFrom(fromUser, nick, line))
		}
	})
	// Same unit as the channel path: one count per relayed line, regardless
	// of how many sessions receive it.
	inboundRelayed.Add(float64(len(lines)))
}

// HandlePresenceChange applies a presence update to the directory and
// broadcasts a MODE line for every resulting voice transition.
func (r *Relay) HandlePresenceChange(userID, newState string) {
	for _, chg := range r.dir.UpdatePresence(userID, newState) {
		r.registry.Broadcast(modeMsg(r.cfg.ServerHostname, chg.Channel, chg.Voiced, chg.Nick))
	}
}

// HandleChannelCreate patches the directory and, when the allow-list admits
// the new channel, has every session join it. JOIN lines carry each session's
// own identity so clients actually open the channel window.
func (r *Relay) HandleChannelCreate(server, channel, channelID string) {
	r.dir.AddChannel(server, channel, channelID)

	qualified := directory.QualifiedName(server, channel)
	if !channelInBounds(r.cfg.JoinChannels, qualified) {
		return
	}

	ch, found := r.dir.FindChannel(server, channel)
	if !found {
		return
	}
	names := namesList(ch.Users)

	r.registry.ForEach(func(s *Session) {
		nick := s.Nickname()
		s.Send(joinMsg(nick, s.Username(), s.Hostname(), qualified))
		s.Send(namesMsg(r.cfg.ServerHostname, nick, qualified, names))
	})

	r.logger.Info().Str("channel", qualified).Msg("Channel created.")
}

// HandleChannelDelete patches the directory and has every session part the
// removed channel.
func (r *Relay) HandleChannelDelete(server, channel string) {
	r.dir.RemoveChannel(server, channel)

	qualified := directory.QualifiedName(server, channel)
	r.registry.ForEach(func(s *Session) {
		s.Send(partMsg(s.Nickname(), s.Username(), s.Hostname(), qualified, "Channel removed"))
	})

	r.logger.Info().Str("channel", qualified).Msg("Channel removed.")
}

// HandleTopicChange broadcasts a TOPIC line attributed to the remote user who
// set it.
func (r *Relay) HandleTopicChange(server, channel, topic, setBy string) {
	qualified := directory.QualifiedName(server, channel)
	r.registry.Broadcast(topicMsg(setBy, qualified, strings.TrimSpace(topic)))
}

// HandleNotice broadcasts an adapter-level condition as a server NOTICE.
func (r *Relay) HandleNotice(text string) {
	r.registry.Broadcast(noticeAllMsg(r.cfg.ServerHostname, text))
}
