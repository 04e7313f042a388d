// Package client speaks the bot API of the game server over a Socket.IO
// websocket and fans incoming game events out to listeners.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/mitchelldurbincs/GeneralsBot/internal/protocol"
)

var (
	ErrClosed      = errors.New("connection closed by server")
	ErrNoChatRoom  = errors.New("no game chat room")
	ErrNoHandshake = errors.New("server did not open the session")

	errGameFinished = errors.New("game finished")
)

const (
	defaultPingInterval = 25 * time.Second
	forceStartRetry     = time.Second
	writeTimeout        = 10 * time.Second
)

// Config holds the connection settings.
type Config struct {
	// ServerURL is the http(s) or ws(s) base URL of the server.
	ServerURL string
	// UserID identifies the bot account. A random id is used when empty.
	UserID string
	// ForceStartDelay is how long to wait in a custom lobby before voting to
	// force start.
	ForceStartDelay time.Duration
	// HandshakeTimeout bounds the websocket dial and the open packet.
	HandshakeTimeout time.Duration
}

// Client is one websocket session. Commands may be sent from any goroutine.
type Client struct {
	cfg       Config
	userID    string
	conn      *websocket.Conn
	writeMu   sync.Mutex
	listeners []Listener
	logger    zerolog.Logger

	pingInterval time.Duration
	customGame   string
	started      atomic.Bool
	over         atomic.Bool

	roomMu    sync.RWMutex
	chatRoom  string
	replayURL string
}

// SocketURL turns a server base URL into its Engine.IO v3 websocket endpoint.
func SocketURL(server string) (string, error) {
	u, err := url.Parse(server)
	if err != nil {
		return "", fmt.Errorf("parse server url: %w", err)
	}
	switch u.Scheme {
	case "https", "wss":
		u.Scheme = "wss"
	case "http", "ws":
		u.Scheme = "ws"
	default:
		return "", fmt.Errorf("unsupported server url scheme %q", u.Scheme)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/socket.io/"
	u.RawQuery = url.Values{"EIO": {"3"}, "transport": {"websocket"}}.Encode()
	return u.String(), nil
}

// Dial connects to the server and waits for the Engine.IO open packet.
func Dial(ctx context.Context, cfg Config, logger zerolog.Logger) (*Client, error) {
	endpoint, err := SocketURL(cfg.ServerURL)
	if err != nil {
		return nil, err
	}
	userID := cfg.UserID
	if userID == "" {
		userID = uuid.NewString()
	}
	logger = logger.With().Str("component", "client").Logger()

	dialer := *websocket.DefaultDialer
	if cfg.HandshakeTimeout > 0 {
		dialer.HandshakeTimeout = cfg.HandshakeTimeout
	}
	conn, _, err := dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", endpoint, err)
	}

	c := &Client{
		cfg:          cfg,
		userID:       userID,
		conn:         conn,
		logger:       logger,
		pingInterval: defaultPingInterval,
	}
	if err := c.awaitOpen(); err != nil {
		conn.Close()
		return nil, err
	}
	logger.Info().Str("url", endpoint).Dur("ping_interval", c.pingInterval).Msg("Connected to server")
	return c, nil
}

func (c *Client) awaitOpen() error {
	if c.cfg.HandshakeTimeout > 0 {
		c.conn.SetReadDeadline(time.Now().Add(c.cfg.HandshakeTimeout))
		defer c.conn.SetReadDeadline(time.Time{})
	}
	_, raw, err := c.conn.ReadMessage()
	if err != nil {
		return fmt.Errorf("read open packet: %w", err)
	}
	p, err := protocol.DecodePacket(raw)
	if err != nil {
		return fmt.Errorf("read open packet: %w", err)
	}
	if p.Type != protocol.PacketOpen {
		return fmt.Errorf("%w: got packet type %q", ErrNoHandshake, p.Type)
	}
	c.applyHandshake(p.Handshake)
	return nil
}

func (c *Client) applyHandshake(hs *protocol.Handshake) {
	if hs != nil && hs.PingInterval > 0 {
		c.pingInterval = time.Duration(hs.PingInterval) * time.Millisecond
	}
}

// UserID returns the id the client plays as.
func (c *Client) UserID() string { return c.userID }

// AddListener registers l. Listeners are called in registration order.
// It must not be called while Run is active.
func (c *Client) AddListener(l Listener) {
	c.listeners = append(c.listeners, l)
}

// Close closes the websocket.
func (c *Client) Close() error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	return c.conn.Close()
}

// Run reads and dispatches events until the game ends, the server closes the
// socket or ctx is cancelled. It returns nil once a game has finished.
func (c *Client) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		err := c.readLoop()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	})
	g.Go(func() error { return c.pingLoop(gctx) })
	if c.customGame != "" {
		g.Go(func() error { return c.forceStartLoop(gctx) })
	}
	g.Go(func() error {
		<-gctx.Done()
		// Unblocks the read loop.
		c.conn.Close()
		return nil
	})

	err := g.Wait()
	if errors.Is(err, errGameFinished) {
		return nil
	}
	return err
}

func (c *Client) pingLoop(ctx context.Context) error {
	ticker := time.NewTicker(c.pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := c.write(protocol.EncodePing()); err != nil {
				return fmt.Errorf("ping: %w", err)
			}
		}
	}
}

func (c *Client) forceStartLoop(ctx context.Context) error {
	timer := time.NewTimer(c.cfg.ForceStartDelay)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
		}
		if c.started.Load() {
			return nil
		}
		if err := c.SetForceStart(c.customGame, true); err != nil {
			return err
		}
		timer.Reset(forceStartRetry)
	}
}

func (c *Client) readLoop() error {
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return ErrClosed
			}
			return fmt.Errorf("read: %w", err)
		}
		p, err := protocol.DecodePacket(raw)
		if err != nil {
			c.logger.Warn().Err(err).Bytes("raw", raw).Msg("Skipping undecodable packet")
			continue
		}

		switch p.Type {
		case protocol.PacketOpen:
			c.applyHandshake(p.Handshake)
		case protocol.PacketPing:
			if err := c.write(protocol.EncodePong()); err != nil {
				return fmt.Errorf("pong: %w", err)
			}
		case protocol.PacketClose:
			return ErrClosed
		case protocol.PacketMessage:
			if err := c.handleMessage(p); err != nil {
				return err
			}
		}
	}
}

func (c *Client) handleMessage(p protocol.Packet) error {
	switch p.Message {
	case protocol.MessageConnect:
		c.logger.Debug().Msg("Socket.IO namespace connected")
		return nil
	case protocol.MessageDisconnect:
		return ErrClosed
	case protocol.MessageEvent:
		return c.dispatch(p)
	}
	return nil
}

func (c *Client) dispatch(p protocol.Packet) error {
	switch p.Event {
	case protocol.EventGameStart:
		var start protocol.GameStart
		if err := p.DecodeArg(0, &start); err != nil {
			c.logger.Error().Err(err).Msg("Bad game_start payload")
			return nil
		}
		c.roomMu.Lock()
		c.chatRoom, c.replayURL = start.ChatRoom, start.ReplayURL()
		c.roomMu.Unlock()
		c.started.Store(true)
		c.logger.Info().Str("replay_url", start.ReplayURL()).Msg("Game starting")
		for _, l := range c.listeners {
			l.OnGameStart(start)
		}

	case protocol.EventGameUpdate:
		if c.over.Load() {
			return nil
		}
		var update protocol.GameUpdate
		if err := p.DecodeArg(0, &update); err != nil {
			c.logger.Error().Err(err).Msg("Bad game_update payload")
			return nil
		}
		for _, l := range c.listeners {
			l.OnBoardUpdate(update)
		}

	case protocol.EventGameWon, protocol.EventGameLost:
		c.over.Store(true)
		won := p.Event == protocol.EventGameWon
		c.roomMu.RLock()
		replayURL := c.replayURL
		c.roomMu.RUnlock()
		for _, l := range c.listeners {
			l.OnGameOver(won, replayURL)
		}
		if err := c.LeaveGame(); err != nil {
			return err
		}
		return errGameFinished

	case protocol.EventChatMessage:
		var msg protocol.ChatMessage
		if err := p.DecodeArg(1, &msg); err != nil {
			c.logger.Warn().Err(err).Msg("Bad chat_message payload")
			return nil
		}
		_ = p.DecodeArg(0, &msg.Room)
		for _, l := range c.listeners {
			l.OnChat(msg)
		}

	case protocol.EventUsernameErr:
		var reason string
		_ = p.DecodeArg(0, &reason)
		if reason != "" {
			c.logger.Warn().Str("reason", reason).Msg("Failed to set username")
		} else {
			c.logger.Info().Msg("Username set")
		}

	default:
		c.logger.Debug().Str("event", p.Event).Msg("Ignoring event")
	}
	return nil
}

func (c *Client) write(frame []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteMessage(websocket.TextMessage, frame)
}

func (c *Client) emit(event string, args ...any) error {
	frame, err := protocol.EncodeEvent(event, args...)
	if err != nil {
		return err
	}
	if err := c.write(frame); err != nil {
		return fmt.Errorf("emit %s: %w", event, err)
	}
	return nil
}

// SetUsername names the bot account. Names of bot accounts start with [Bot].
func (c *Client) SetUsername(name string) error {
	return c.emit(protocol.EventSetUsername, c.userID, name)
}

// Join1v1 enters the 1v1 queue.
func (c *Client) Join1v1() error {
	return c.emit(protocol.EventJoin1v1, c.userID)
}

// JoinFFA enters the free-for-all queue.
func (c *Client) JoinFFA() error {
	return c.emit(protocol.EventJoinFFA, c.userID)
}

// JoinCustom joins a private lobby. Run votes to force start once the
// configured delay has passed, then again every second until the game starts.
func (c *Client) JoinCustom(gameID string) error {
	if err := c.emit(protocol.EventJoinPrivate, gameID, c.userID); err != nil {
		return err
	}
	c.customGame = gameID
	c.logger.Info().Str("game_id", gameID).Msg("Joined custom game")
	return nil
}

// SetForceStart votes to start a private lobby early.
func (c *Client) SetForceStart(gameID string, on bool) error {
	return c.emit(protocol.EventSetForceStart, gameID, on)
}

// Attack queues a move of the army on start to the adjacent cell end. A half
// move only moves half the army.
func (c *Client) Attack(start, end int, half bool) error {
	return c.emit(protocol.EventAttack, start, end, half)
}

// ClearMoves drops every queued move.
func (c *Client) ClearMoves() error {
	return c.emit(protocol.EventClearMoves)
}

// Chat sends msg to the current game's chat room.
func (c *Client) Chat(msg string) error {
	c.roomMu.RLock()
	room := c.chatRoom
	c.roomMu.RUnlock()
	if room == "" {
		return ErrNoChatRoom
	}
	return c.emit(protocol.EventChatMessage, room, msg)
}

// LeaveGame leaves the current game.
func (c *Client) LeaveGame() error {
	return c.emit(protocol.EventLeaveGame)
}
