package main

import (
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait         = 10 * time.Second
	pongWait          = 60 * time.Second
	pingPeriod        = (pongWait * 9) / 10
	maxMessageSize    = 4096
	sendBufSize       = 256
	maxMessagesPerSec = 50
	maxNameLen        = 16
)

// Client represents a WebSocket connection
type Client struct {
	hub        *Hub
	conn       *websocket.Conn
	send       chan []byte
	playerID   UUID
	sessionID  string
	remoteAddr string
	msgCount   int
	msgResetAt time.Time
	// Auth state
	accountID int64  // 0 = unauthenticated/guest
	username  string // "" = unauthenticated
}

// NewClient creates a new Client
func NewClient(hub *Hub, conn *websocket.Conn, remoteAddr string) *Client {
	return &Client{
		hub:        hub,
		conn:       conn,
		send:       make(chan []byte, sendBufSize),
		remoteAddr: remoteAddr,
	}
}

// ReadPump reads messages from the WebSocket connection
func (c *Client) ReadPump() {
	defer func() {
		c.hub.TrackDisconnect(c.remoteAddr)
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("ws error: %v", err)
			}
			break
		}

		// Rate limiting
		now := time.Now()
		if now.After(c.msgResetAt) {
			c.msgCount = 0
			c.msgResetAt = now.Add(time.Second)
		}
		c.msgCount++
		if c.msgCount > maxMessagesPerSec {
			log.Printf("rate limit exceeded for %s, disconnecting", c.remoteAddr)
			break
		}

		c.handleMessage(message)
	}
}

// WritePump writes messages to the WebSocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			// 0xFF prefix marks a binary frame (see SendBinary)
			var err error
			if len(message) > 0 && message[0] == 0xFF {
				err = c.conn.WriteMessage(websocket.BinaryMessage, message[1:])
			} else {
				err = c.conn.WriteMessage(websocket.TextMessage, message)
			}
			if err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendJSON sends a JSON message to the client
func (c *Client) SendJSON(msg interface{}) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("marshal error: %v", err)
		return
	}
	c.SendRaw(data)
}

// SendRaw sends pre-marshaled bytes as a text message to the client
func (c *Client) SendRaw(data []byte) {
	defer func() { recover() }()
	select {
	case c.send <- data:
	default:
		// Client too slow, drop message
	}
}

// SendBinary sends pre-marshaled bytes as a binary WebSocket message.
// Prefixes with 0xFF marker byte so WritePump can distinguish from text.
func (c *Client) SendBinary(data []byte) {
	defer func() { recover() }()
	msg := make([]byte, len(data)+1)
	msg[0] = 0xFF
	copy(msg[1:], data)
	select {
	case c.send <- msg:
	default:
	}
}

func (c *Client) sendError(msg string) {
	c.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Msg: msg}})
}

// handleMessage routes incoming messages (single-pass decode via InEnvelope)
func (c *Client) handleMessage(raw []byte) {
	var env InEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		log.Printf("unmarshal error: %v", err)
		return
	}

	switch env.T {
	case MsgList:
		c.handleList()
	case MsgCreate:
		c.handleCreate(env.D)
	case MsgJoin:
		c.handleJoin(env.D)
	case MsgLeave:
		c.handleLeave()
	case MsgStart:
		c.handleStart()
	case MsgInput:
		c.handleInput(env.D)
	case MsgKill:
		c.handleKill(env.D)
	case MsgReport:
		c.handleReport()
	case MsgVote:
		c.handleVote(env.D)
	case MsgTask:
		c.handleTask(env.D)
	case MsgRegister:
		c.handleRegister(env.D)
	case MsgLogin:
		c.handleLogin(env.D)
	case MsgAuth:
		c.handleAuth(env.D)
	}
}

// game returns the Game the client is currently in, or nil
func (c *Client) game() *Game {
	if c.sessionID == "" {
		return nil
	}
	sess := c.hub.sessions.GetSession(c.sessionID)
	if sess == nil {
		return nil
	}
	return sess.Game
}

// cleanName makes a display name usable: authenticated clients always play
// under their account name.
func (c *Client) cleanName(name string) string {
	if c.username != "" {
		return c.username
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = "Player"
	}
	if len(name) > maxNameLen {
		name = name[:maxNameLen]
	}
	return name
}

func (c *Client) handleList() {
	c.SendJSON(Envelope{T: MsgSessions, Data: c.hub.sessions.ListSessions()})
}

func (c *Client) handleCreate(d json.RawMessage) {
	var msg CreateMsg
	if err := json.Unmarshal(d, &msg); err != nil {
		return
	}
	if c.sessionID != "" {
		c.sendError("already in a session")
		return
	}

	sess := c.hub.sessions.CreateSession(strings.TrimSpace(msg.SessionName))
	if sess == nil {
		c.sendError("session limit reached")
		return
	}
	c.SendJSON(Envelope{T: MsgCreated, Data: SessionInfo{ID: sess.ID, Name: sess.Name}})
	c.joinSession(sess, msg.Name)
}

func (c *Client) handleJoin(d json.RawMessage) {
	var msg JoinMsg
	if err := json.Unmarshal(d, &msg); err != nil {
		return
	}
	if c.sessionID != "" {
		c.sendError("already in a session")
		return
	}

	sess := c.hub.sessions.GetSession(msg.SessionID)
	if sess == nil {
		c.sendError("no such session")
		return
	}
	c.joinSession(sess, msg.Name)
}

func (c *Client) joinSession(sess *Session, name string) {
	player, err := sess.Game.AddPlayer(c.cleanName(name))
	if err != nil {
		c.sendError(err.Error())
		return
	}
	c.playerID = player.UUID
	c.sessionID = sess.ID
	sess.Game.SetClient(player.UUID, c)

	c.SendJSON(Envelope{T: MsgWelcome, Data: WelcomeMsg{
		ID:        player.UUID.String(),
		Color:     player.Color.String(),
		SessionID: sess.ID,
	}})
}

func (c *Client) handleLeave() {
	if c.sessionID == "" {
		return
	}
	c.hub.sessions.RemovePlayer(c.sessionID, c.playerID)
	c.sessionID = ""
	c.playerID = UUID{}
}

func (c *Client) handleStart() {
	g := c.game()
	if g == nil {
		return
	}
	if err := g.HandleStart(c.playerID); err != nil {
		c.sendError(err.Error())
	}
}

func (c *Client) handleInput(d json.RawMessage) {
	var msg InputMsg
	if err := json.Unmarshal(d, &msg); err != nil {
		return
	}
	if g := c.game(); g != nil {
		g.HandleInput(c.playerID, msg)
	}
}

func (c *Client) handleKill(d json.RawMessage) {
	var msg KillMsg
	if err := json.Unmarshal(d, &msg); err != nil {
		return
	}
	g := c.game()
	if g == nil {
		return
	}
	target, err := ParseUUID(msg.Target)
	if err != nil {
		c.sendError(err.Error())
		return
	}
	if err := g.HandleKill(c.playerID, target); err != nil {
		c.sendError(err.Error())
	}
}

func (c *Client) handleReport() {
	g := c.game()
	if g == nil {
		return
	}
	if err := g.HandleReport(c.playerID); err != nil {
		c.sendError(err.Error())
	}
}

func (c *Client) handleVote(d json.RawMessage) {
	var msg VoteMsg
	if err := json.Unmarshal(d, &msg); err != nil {
		return
	}
	g := c.game()
	if g == nil {
		return
	}
	if err := g.HandleVote(c.playerID, msg.Target); err != nil {
		c.sendError(err.Error())
	}
}

func (c *Client) handleTask(d json.RawMessage) {
	var msg TaskMsg
	if err := json.Unmarshal(d, &msg); err != nil {
		return
	}
	g := c.game()
	if g == nil {
		return
	}
	if err := g.HandleTask(c.playerID, msg.Index); err != nil {
		c.sendError(err.Error())
	}
}

func (c *Client) handleRegister(d json.RawMessage) {
	var msg RegisterMsg
	if err := json.Unmarshal(d, &msg); err != nil {
		return
	}
	id, token, err := c.hub.auth.Register(msg.Username, msg.Password)
	if err != nil {
		c.sendError(err.Error())
		return
	}
	c.accountID = id
	c.username = strings.TrimSpace(msg.Username)
	c.hub.SetOnline(id, c)
	c.SendJSON(Envelope{T: MsgAuthOK, Data: AuthOKMsg{Username: c.username, Token: token}})
}

func (c *Client) handleLogin(d json.RawMessage) {
	var msg LoginMsg
	if err := json.Unmarshal(d, &msg); err != nil {
		return
	}
	id, token, err := c.hub.auth.Login(msg.Username, msg.Password, c.remoteAddr)
	if err != nil {
		c.sendError(err.Error())
		return
	}
	if c.hub.IsOnline(id) {
		c.sendError("account already connected")
		return
	}
	c.accountID = id
	c.username = strings.TrimSpace(msg.Username)
	c.hub.SetOnline(id, c)
	c.SendJSON(Envelope{T: MsgAuthOK, Data: AuthOKMsg{Username: c.username, Token: token}})
}

func (c *Client) handleAuth(d json.RawMessage) {
	var msg AuthMsg
	if err := json.Unmarshal(d, &msg); err != nil {
		return
	}
	id, username, err := c.hub.auth.ValidateToken(msg.Token)
	if err != nil {
		c.sendError("invalid token")
		return
	}
	if c.hub.IsOnline(id) {
		c.sendError("account already connected")
		return
	}
	c.accountID = id
	c.username = username
	c.hub.SetOnline(id, c)
	c.SendJSON(Envelope{T: MsgAuthOK, Data: AuthOKMsg{Username: username, Token: msg.Token}})
}
