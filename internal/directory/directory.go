/*
Package directory maintains the in-memory mirror of the remote platform:
servers, their text channels, and the users present in each channel.

The directory is the single shared read-mostly structure of the bridge. It is
mutated only by platform events (snapshot at connect time, incremental patches
afterwards) and read by the protocol server for name resolution and NAMES
output. All access goes through one RWMutex; the data is a soft,
non-authoritative mirror, so latest-write-wins consistency is acceptable.
*/
package directory

import (
	"strings"
	"sync"
	"unicode"

	"github.com/rs/zerolog"

	"dircd/internal/pkg/logx"
)

// User modes projected onto IRC voice state.
const (
	// ModeOffline marks a user as offline/invisible. Rendered without a prefix.
	ModeOffline = ""

	// ModeVoice marks a user as present. Rendered as "+" in NAMES output.
	ModeVoice = "+"

	// ModeOperator marks a privileged user. Rendered as "@" in NAMES output.
	ModeOperator = "@"
)

// User is one remote platform member as seen inside a channel.
type User struct {
	// ID is the platform-assigned user identifier.
	ID string `json:"id"`

	// Nickname is the display identity matched against IRC NICK and PRIVMSG
	// targets. Collisions are unresolved ambiguity: first match wins.
	Nickname string `json:"nickname"`

	// Tag is the platform discriminator tag, informational only.
	Tag string `json:"tag"`

	// Mode encodes presence: "" offline/invisible, "+" present, "@" privileged.
	Mode string `json:"mode"`
}

// Channel is one remote text channel. Its Name is always qualified as
// "<servername>.<channelname>"; the dot is a structural invariant every parser
// and formatter relies on, so a bare channel name must never contain a dot.
type Channel struct {
	// ID is the platform-assigned channel identifier used for outbound sends.
	ID string `json:"id"`

	// Name is the qualified "<servername>.<channelname>" form, exposed to IRC
	// clients as "#<Name>".
	Name string `json:"name"`

	// Users are the members currently visible in the channel. An empty channel
	// still carries the sentinel placeholder so NAMES output is well defined.
	Users []*User `json:"users"`
}

// Server is one remote guild with its text channels.
type Server struct {
	// ID is the platform-assigned guild identifier, immutable for the session.
	ID string `json:"id"`

	// Name is the sanitized guild name. It may change on a server rename.
	Name string `json:"name"`

	// Channels are the guild's text channels in platform order.
	Channels []*Channel `json:"channels"`
}

// ModeChange describes one voice transition computed from a presence update,
// ready to be projected onto IRC as a MODE line.
type ModeChange struct {
	// Channel is the qualified channel name the transition applies to.
	Channel string

	// Nick is the affected user's nickname.
	Nick string

	// Voiced is true for a "+v" transition, false for "-v".
	Voiced bool
}

// SanitizeName rewrites a raw platform name into its IRC-safe form:
// whitespace becomes "_" and ":" becomes "|", since both collide with IRC
// channel and message delimiters.
func SanitizeName(raw string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case unicode.IsSpace(r):
			return '_'
		case r == ':':
			return '|'
		}
		return r
	}, raw)
}

// QualifiedName joins a sanitized server name and a bare channel name into the
// qualified "<servername>.<channelname>" form.
func QualifiedName(server, channel string) string {
	return server + "." + channel
}

// SplitQualified splits a qualified channel name at its structural dot.
// It reports ok=false when the name carries no dot at all.
func SplitQualified(name string) (server, channel string, ok bool) {
	parts := strings.SplitN(name, ".", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// placeholder returns the sentinel user kept in otherwise empty channels.
func placeholder() *User {
	return &User{ID: "0", Nickname: ""}
}

// Directory is the mutex-guarded mirror of remote servers. Iteration order is
// preserved everywhere (ordered slices, no maps) so NAMES output is stable.
type Directory struct {
	mu      sync.RWMutex
	servers []*Server
	logger  zerolog.Logger
}

// New constructs an empty Directory.
func New() *Directory {
	return &Directory{
		logger: logx.Logger().With().Str("component", "directory").Logger(),
	}
}

// Replace swaps in a full snapshot of the remote platform, as delivered by the
// gateway at connect time. Empty channels receive the sentinel placeholder.
func (d *Directory) Replace(servers []*Server) {
	for _, srv := range servers {
		for _, ch := range srv.Channels {
			if len(ch.Users) == 0 {
				ch.Users = []*User{placeholder()}
			}
		}
	}

	d.mu.Lock()
	d.servers = servers
	d.mu.Unlock()

	d.logger.Info().Int("servers", len(servers)).Msg("Directory snapshot replaced.")
}

// Snapshot returns a deep copy of the mirrored servers, safe to iterate or
// serialize without holding the directory lock.
func (d *Directory) Snapshot() []Server {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]Server, 0, len(d.servers))
	for _, srv := range d.servers {
		s := Server{ID: srv.ID, Name: srv.Name}
		for _, ch := range srv.Channels {
			c := &Channel{ID: ch.ID, Name: ch.Name}
			for _, u := range ch.Users {
				uc := *u
				c.Users = append(c.Users, &uc)
			}
			s.Channels = append(s.Channels, c)
		}
		out = append(out, s)
	}
	return out
}

// FindChannel resolves an exact (server, channel) pair to a channel copy.
// Matching is a linear scan; directory sizes are modest.
func (d *Directory) FindChannel(serverName, channelName string) (Channel, bool) {
	qualified := QualifiedName(serverName, channelName)

	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, srv := range d.servers {
		if srv.Name != serverName {
			continue
		}
		for _, ch := range srv.Channels {
			if ch.Name == qualified {
				c := Channel{ID: ch.ID, Name: ch.Name}
				for _, u := range ch.Users {
					uc := *u
					c.Users = append(c.Users, &uc)
				}
				return c, true
			}
		}
	}
	return Channel{}, false
}

// FindUserByNickname resolves a nickname to a user copy. The first match wins;
// nickname collisions across servers are unresolved ambiguity.
func (d *Directory) FindUserByNickname(nick string) (User, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, srv := range d.servers {
		for _, ch := range srv.Channels {
			for _, u := range ch.Users {
				if u.Nickname != "" && u.Nickname == nick {
					return *u, true
				}
			}
		}
	}
	return User{}, false
}

// AddChannel patches the mirror when the platform creates a channel. An
// unknown server name creates a new server entry so the mirror never rejects
// an event it cannot place.
func (d *Directory) AddChannel(serverName, channelName, channelID string) {
	qualified := QualifiedName(serverName, channelName)

	d.mu.Lock()
	defer d.mu.Unlock()

	for _, srv := range d.servers {
		if srv.Name != serverName {
			continue
		}
		for _, ch := range srv.Channels {
			if ch.Name == qualified {
				// Duplicate create event; latest write wins, nothing to do.
				return
			}
		}
		srv.Channels = append(srv.Channels, &Channel{
			ID:    channelID,
			Name:  qualified,
			Users: []*User{placeholder()},
		})
		return
	}

	d.servers = append(d.servers, &Server{
		Name: serverName,
		Channels: []*Channel{{
			ID:    channelID,
			Name:  qualified,
			Users: []*User{placeholder()},
		}},
	})
}

// RemoveChannel patches the mirror when the platform deletes a channel.
// Unknown names are ignored.
func (d *Directory) RemoveChannel(serverName, channelName string) {
	qualified := QualifiedName(serverName, channelName)

	d.mu.Lock()
	defer d.mu.Unlock()

	for _, srv := range d.servers {
		if srv.Name != serverName {
			continue
		}
		for i, ch := range srv.Channels {
			if ch.Name == qualified {
				srv.Channels = append(srv.Channels[:i], srv.Channels[i+1:]...)
				return
			}
		}
	}
}

// UpdatePresence applies a platform presence change to every channel containing
// the user and returns the voice transitions that warrant a MODE broadcast.
//
// Transition table: a voiced or privileged user going offline/invisible drops
// to no mode (-v); an unmoded user going online/idle/dnd gains voice (+v).
// Every other combination, including unknown states, is a no-op.
func (d *Directory) UpdatePresence(userID, newState string) []ModeChange {
	var present bool
	switch newState {
	case "online", "idle", "dnd":
		present = true
	case "offline", "invisible":
		present = false
	default:
		d.logger.Debug().Str("state", newState).Msg("Ignoring unknown presence state.")
		return nil
	}

	var changes []ModeChange

	d.mu.Lock()
	defer d.mu.Unlock()

	for _, srv := range d.servers {
		for _, ch := range srv.Channels {
			for _, u := range ch.Users {
				// The sentinel placeholder has no presence to track.
				if u.ID != userID || u.Nickname == "" {
					continue
				}
				switch {
				case !present && (u.Mode == ModeVoice || u.Mode == ModeOperator):
					u.Mode = ModeOffline
					changes = append(changes, ModeChange{Channel: ch.Name, Nick: u.Nickname, Voiced: false})
				case present && u.Mode == ModeOffline:
					u.Mode = ModeVoice
					changes = append(changes, ModeChange{Channel: ch.Name, Nick: u.Nickname, Voiced: true})
				}
			}
		}
	}

	return changes
}
