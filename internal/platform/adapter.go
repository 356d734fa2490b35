/*
Package platform defines the boundary between the bridge core and the remote
chat platform, plus the gateway adapter that implements it.

The protocol server only ever talks to the Sender capability; the inbound
relay only ever receives calls shaped like the Events capability. Everything
about transport, authentication, and rate limiting lives behind these two
interfaces.
*/
package platform

import "context"

// Sender is the outbound delivery capability consumed by the command router.
type Sender interface {
	// SendToChannel delivers one line of text to the remote channel with the
	// given platform-assigned id.
	SendToChannel(ctx context.Context, channelID, text string) error

	// SendToUser delivers one line of text as a direct message to the remote
	// user with the given nickname.
	SendToUser(ctx context.Context, nickname, text string) error
}

// Events is the inbound event stream delivered by the platform adapter.
// The bridge's relay implements it; the adapter never calls IRC sessions
// directly.
type Events interface {
	// HandleChannelMessage is called for each message posted in a remote
	// channel. Server names arrive already sanitized.
	HandleChannelMessage(server, channel, fromUser, text string)

	// HandleDirectMessage is called for each direct message addressed to the
	// bridge account.
	HandleDirectMessage(fromUser, text string)

	// HandlePresenceChange is called when a remote user's presence state
	// changes (online, idle, dnd, invisible, offline).
	HandlePresenceChange(userID, newState string)

	// HandleChannelCreate is called when the platform creates a text channel.
	HandleChannelCreate(server, channel, channelID string)

	// HandleChannelDelete is called when the platform deletes a text channel.
	HandleChannelDelete(server, channel string)

	// HandleTopicChange is called when a remote channel topic changes.
	HandleTopicChange(server, channel, topic, setBy string)

	// HandleNotice reports adapter-level conditions (connection loss, rejected
	// sends) toward connected IRC clients.
	HandleNotice(text string)
}
