/*
Package platform defines the boundary between the bridge core and the remote
chat platform, plus the gateway adapter that implements it.

This file contains the Gateway: a websocket client that authenticates with the
configured token, keeps the connection alive with heartbeats, rebuilds the
directory from the connect-time snapshot, and pumps incremental events into
the bridge. Outbound message delivery goes over the platform's REST surface.
*/
package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"dircd/internal/configs"
	"dircd/internal/directory"
	"dircd/internal/pkg/errs"
	"dircd/internal/pkg/logx"
)

const (
	// heartbeatInterval is how often the gateway sends a keep-alive frame.
	heartbeatInterval = 40 * time.Second

	// restTimeout bounds each outbound REST delivery call.
	restTimeout = 10 * time.Second
)

// frame is the wire envelope exchanged with the gateway.
type frame struct {
	Op   string          `json:"op"`
	Type string          `json:"t,omitempty"`
	Data json.RawMessage `json:"d,omitempty"`
}

// Raw snapshot shapes as the gateway delivers them, before sanitization.
type rawUser struct {
	ID       string `json:"id"`
	Nickname string `json:"nickname"`
	Tag      string `json:"tag"`
	Status   string `json:"status"`
}

type rawChannel struct {
	ID    string    `json:"id"`
	Name  string    `json:"name"`
	Users []rawUser `json:"users"`
}

type rawServer struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Channels []rawChannel `json:"channels"`
}

type readyPayload struct {
	User    string      `json:"user"`
	Servers []rawServer `json:"servers"`
}

type messagePayload struct {
	Server  string `json:"server"`
	Channel string `json:"channel"`
	From    string `json:"from"`
	Text    string `json:"text"`
	Direct  bool   `json:"direct"`
}

type presencePayload struct {
	UserID string `json:"user_id"`
	Status string `json:"status"`
}

type channelPayload struct {
	Server    string `json:"server"`
	Channel   string `json:"channel"`
	ChannelID string `json:"channel_id"`
}

type topicPayload struct {
	Server  string `json:"server"`
	Channel string `json:"channel"`
	Topic   string `json:"topic"`
	SetBy   string `json:"set_by"`
}

// Gateway connects the bridge to the remote platform. It implements Sender
// over REST and feeds the Events capability from the websocket stream.
// Run may be called again after it returns; each call owns its connection
// and the goroutines serving it.
type Gateway struct {
	cfg    *configs.AppConfig
	dir    *directory.Directory
	events Events

	// heartbeatEvery is the keep-alive cadence, shortened in tests.
	heartbeatEvery time.Duration

	httpc  *http.Client
	logger zerolog.Logger
}

// NewGateway constructs a Gateway bound to the given directory and event sink.
func NewGateway(cfg *configs.AppConfig, dir *directory.Directory, events Events) *Gateway {
	return &Gateway{
		cfg:            cfg,
		dir:            dir,
		events:         events,
		heartbeatEvery: heartbeatInterval,
		httpc:          &http.Client{Timeout: restTimeout},
		logger:         logx.Logger().With().Str("component", "gateway").Logger(),
	}
}

// Run dials the gateway, identifies, and pumps events until the context is
// canceled or the connection drops. A dropped connection is reported to IRC
// sessions as a NOTICE and returned as an error; it never panics or exits.
func (g *Gateway) Run(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, g.cfg.GatewayURL, nil)
	if err != nil {
		return fmt.Errorf("failed to dial gateway %s: %w", g.cfg.GatewayURL, err)
	}
	defer conn.Close()

	// Goroutines spawned for this connection must die with it, not linger
	// into the next Run.
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := writeFrame(conn, frame{Op: "identify", Data: mustJSON(map[string]string{"token": g.cfg.Token})}); err != nil {
		return fmt.Errorf("failed to identify: %w", err)
	}

	g.logger.Info().Str("url", g.cfg.GatewayURL).Msg("Gateway connected, identify sent.")

	go g.heartbeatLoop(runCtx, conn)

	// Close the socket when this run ends so ReadMessage unblocks.
	go func() {
		<-runCtx.Done()
		conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			g.events.HandleNotice(errs.NewError(errs.ErrGatewayDisconnected).Message)
			return fmt.Errorf("gateway read failed: %w", err)
		}

		var f frame
		if err := json.Unmarshal(data, &f); err != nil {
			g.logger.Warn().Err(err).Msg("Gateway sent an unparseable frame.")
			continue
		}

		if f.Op == "event" {
			g.dispatch(f.Type, f.Data)
		}
	}
}

// heartbeatLoop sends keep-alive frames on its connection until the run ends.
func (g *Gateway) heartbeatLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(g.heartbeatEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := writeFrame(conn, frame{Op: "heartbeat"}); err != nil {
				g.logger.Warn().Err(err).Msg("Heartbeat write failed.")
				return
			}
		}
	}
}

// dispatch fans one gateway event out to the directory and the event sink.
func (g *Gateway) dispatch(eventType string, data json.RawMessage) {
	switch eventType {
	case "ready":
		var p readyPayload
		if err := json.Unmarshal(data, &p); err != nil {
			g.logger.Warn().Err(err).Msg("Bad ready payload.")
			return
		}
		g.dir.Replace(buildSnapshot(p.Servers))
		g.logger.Info().Str("user", p.User).Int("servers", len(p.Servers)).Msg("Logged in, directory rebuilt.")

	case "message":
		var p messagePayload
		if err := json.Unmarshal(data, &p); err != nil {
			g.logger.Warn().Err(err).Msg("Bad message payload.")
			return
		}
		if p.Direct {
			g.events.HandleDirectMessage(p.From, p.Text)
			return
		}
		g.events.HandleChannelMessage(directory.SanitizeName(p.Server), p.Channel, p.From, p.Text)

	case "presence":
		var p presencePayload
		if err := json.Unmarshal(data, &p); err != nil {
			g.logger.Warn().Err(err).Msg("Bad presence payload.")
			return
		}
		g.events.HandlePresenceChange(p.UserID, p.Status)

	case "channel_create":
		var p channelPayload
		if err := json.Unmarshal(data, &p); err != nil {
			g.logger.Warn().Err(err).Msg("Bad channel_create payload.")
			return
		}
		g.events.HandleChannelCreate(directory.SanitizeName(p.Server), p.Channel, p.ChannelID)

	case "channel_delete":
		var p channelPayload
		if err := json.Unmarshal(data, &p); err != nil {
			g.logger.Warn().Err(err).Msg("Bad channel_delete payload.")
			return
		}
		g.events.HandleChannelDelete(directory.SanitizeName(p.Server), p.Channel)

	case "topic":
		var p topicPayload
		if err := json.Unmarshal(data, &p); err != nil {
			g.logger.Warn().Err(err).Msg("Bad topic payload.")
			return
		}
		g.events.HandleTopicChange(directory.SanitizeName(p.Server), p.Channel, p.Topic, p.SetBy)

	default:
		g.logger.Debug().Str("type", eventType).Msg("Ignoring unknown gateway event.")
	}
}

// writeFrame serializes one frame onto a websocket connection. The identify
// frame goes out before the heartbeat goroutine starts, so the connection
// only ever has one writer at a time.
func writeFrame(conn *websocket.Conn, f frame) error {
	return conn.WriteJSON(f)
}

// SendToChannel implements Sender over the platform's REST surface.
func (g *Gateway) SendToChannel(ctx context.Context, channelID, text string) error {
	return g.post(ctx, fmt.Sprintf("%s/channels/%s/messages", g.cfg.APIURL, channelID), text)
}

// SendToUser implements Sender for direct messages.
func (g *Gateway) SendToUser(ctx context.Context, nickname, text string) error {
	return g.post(ctx, fmt.Sprintf("%s/users/%s/messages", g.cfg.APIURL, nickname), text)
}

// post delivers one message body to the given REST endpoint.
func (g *Gateway) post(ctx context.Context, url, text string) error {
	body, err := json.Marshal(map[string]string{"content": text})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bot "+g.cfg.Token)

	res, err := g.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("delivery request failed: %w", err)
	}
	defer res.Body.Close()
	io.Copy(io.Discard, res.Body)

	if res.StatusCode >= 300 {
		return fmt.Errorf("platform rejected send: %s", res.Status)
	}
	return nil
}

// buildSnapshot converts raw gateway servers into sanitized directory entries.
func buildSnapshot(raw []rawServer) []*directory.Server {
	servers := make([]*directory.Server, 0, len(raw))
	for _, rs := range raw {
		serverName := directory.SanitizeName(rs.Name)
		srv := &directory.Server{ID: rs.ID, Name: serverName}
		for _, rc := range rs.Channels {
			ch := &directory.Channel{
				ID:   rc.ID,
				Name: directory.QualifiedName(serverName, rc.Name),
			}
			for _, ru := range rc.Users {
				if ru.Nickname == "" {
					continue
				}
				mode := directory.ModeOffline
				switch ru.Status {
				case "online", "idle", "dnd":
					mode = directory.ModeVoice
				}
				ch.Users = append(ch.Users, &directory.User{
					ID:       ru.ID,
					Nickname: ru.Nickname,
					Tag:      ru.Tag,
					Mode:     mode,
				})
			}
			srv.Channels = append(srv.Channels, ch)
		}
		servers = append(servers, srv)
	}
	return servers
}

// mustJSON marshals a value known to be serializable.
func mustJSON(v any) json.RawMessage {
	data, _ := json.Marshal(v)
	return data
}
