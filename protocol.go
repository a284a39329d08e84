package main

import "encoding/json"

// Client -> Server message types
const (
	MsgJoin     = "join"
	MsgLeave    = "leave"
	MsgCreate   = "create" // create session
	MsgList     = "list"   // list sessions
	MsgStart    = "start"  // host starts the game from the lobby
	MsgInput    = "input"  // velocity update
	MsgKill     = "kill"   // impostor kill attempt
	MsgReport   = "report" // report a nearby body, starts the day
	MsgVote     = "vote"   // cast or change a ballot
	MsgTask     = "task"   // task completion attempt
	MsgRegister = "register"
	MsgLogin    = "login"
	MsgAuth     = "auth" // resume with a JWT
)

// Server -> Client message types
const (
	MsgState    = "state" // binary msgpack snapshot
	MsgWelcome  = "welcome"
	MsgSessions = "sessions"
	MsgCreated  = "created"
	MsgStarted  = "started" // per-player role and task assignment
	MsgDay      = "day"
	MsgNight    = "night"
	MsgOutcome  = "outcome"
	MsgError    = "error"
	MsgAuthOK   = "auth_ok"
)

// Envelope wraps all outgoing JSON messages with a type field
type Envelope struct {
	T    string      `json:"t"`
	Data interface{} `json:"d,omitempty"`
}

// InEnvelope is used for incoming messages — json.RawMessage avoids double-unmarshal
type InEnvelope struct {
	T string          `json:"t"`
	D json.RawMessage `json:"d,omitempty"`
}

// JoinMsg is sent when a player wants to join a session
type JoinMsg struct {
	Name      string `json:"name"`
	SessionID string `json:"sid"`
}

// CreateMsg is sent when a player wants to create a session
type CreateMsg struct {
	Name        string `json:"name"`
	SessionName string `json:"sname"`
}

// InputMsg carries the player's requested velocity, in map units per 16ms
// step. The host clamps its magnitude to the session speed setting before it
// reaches the simulation.
type InputMsg struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

// KillMsg names the victim of an impostor kill attempt
type KillMsg struct {
	Target string `json:"target"` // victim uuid, 32 hex chars
}

// VoteMsg casts a ballot; Target is a player uuid or "skip"
type VoteMsg struct {
	Target string `json:"target"`
}

// TaskMsg reports the player finished the task at the given index
type TaskMsg struct {
	Index int `json:"index"`
}

// RegisterMsg creates an account
type RegisterMsg struct {
	Username string `json:"u"`
	Password string `json:"p"`
}

// LoginMsg authenticates an account
type LoginMsg struct {
	Username string `json:"u"`
	Password string `json:"p"`
}

// AuthMsg resumes a previous login with a JWT
type AuthMsg struct {
	Token string `json:"token"`
}

// AuthOKMsg confirms register/login/auth and carries the token to keep
type AuthOKMsg struct {
	Username string `json:"u"`
	Token    string `json:"token"`
}

// WelcomeMsg is sent to a player when they join a session
type WelcomeMsg struct {
	ID        string `json:"id"` // the player's uuid
	Color     string `json:"color"`
	SessionID string `json:"sid"`
}

// StartedMsg is sent privately to each player when a round begins
type StartedMsg struct {
	Impostor bool       `json:"impostor"`
	Tasks    []TaskView `json:"tasks"`
}

// DayMsg announces the start of a day phase
type DayMsg struct {
	TimeRemainingMS int64 `json:"tr"`
}

// OutcomeMsg announces the end of the session
type OutcomeMsg struct {
	Winner string `json:"winner"` // "crew", "impostors", or "" for disconnected
}

// SessionInfo is used in the session list
type SessionInfo struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Players int    `json:"players"`
}

// ErrorMsg sends an error to the client
type ErrorMsg struct {
	Msg string `json:"msg"`
}

// TaskView is one task as broadcast to clients
type TaskView struct {
	X        float64 `json:"x" msgpack:"x"`
	Y        float64 `json:"y" msgpack:"y"`
	Finished bool    `json:"fin" msgpack:"fin"`
}

// PlayerView is one player as broadcast each snapshot. Roles are not
// included here; each player learns only their own via StartedMsg.
type PlayerView struct {
	ID    string     `msgpack:"id"`
	Name  string     `msgpack:"n"`
	Color string     `msgpack:"c"`
	X     float64    `msgpack:"x"`
	Y     float64    `msgpack:"y"`
	DX    float64    `msgpack:"dx"`
	DY    float64    `msgpack:"dy"`
	Dead  bool       `msgpack:"dead"`
	Tasks []TaskView `msgpack:"tasks"`
}

// BodyView is one unburied body as broadcast each snapshot
type BodyView struct {
	Color string  `msgpack:"c"`
	X     float64 `msgpack:"x"`
	Y     float64 `msgpack:"y"`
}

// StateMsg is the full snapshot, broadcast as binary msgpack
type StateMsg struct {
	Phase           string            `msgpack:"ph"`
	Winner          string            `msgpack:"w,omitempty"`
	TimeRemainingMS int64             `msgpack:"tr"`
	Players         []PlayerView      `msgpack:"p"`
	Bodies          []BodyView        `msgpack:"b"`
	Votes           map[string]string `msgpack:"v,omitempty"`
	Tick            uint64            `msgpack:"tick"`
}

// taskViews converts a task list for broadcast
func taskViews(tasks []Task) []TaskView {
	views := make([]TaskView, 0, len(tasks))
	for _, t := range tasks {
		views = append(views, TaskView{X: t.Position.X, Y: t.Position.Y, Finished: t.Finished})
	}
	return views
}

// snapshot builds a StateMsg from the current simulation state. Caller must
// hold the game lock.
func snapshot(gs *GameState, tick uint64) StateMsg {
	msg := StateMsg{
		Phase:   gs.Status.statusName(),
		Players: make([]PlayerView, 0, len(gs.Players)),
		Bodies:  make([]BodyView, 0, len(gs.Bodies)),
		Tick:    tick,
	}
	if won, ok := gs.Status.(Won); ok {
		msg.Winner = won.Winner.String()
	}
	if day, ok := gs.DayState(); ok {
		msg.TimeRemainingMS = day.TimeRemaining.Milliseconds()
		msg.Votes = make(map[string]string, len(day.Votes))
		for voter, target := range day.Votes {
			msg.Votes[voter.String()] = target.String()
		}
	}
	for _, uuid := range gs.sortedPlayerIDs() {
		p := gs.Players[uuid]
		msg.Players = append(msg.Players, PlayerView{
			ID:    p.UUID.String(),
			Name:  p.Name,
			Color: p.Color.String(),
			X:     p.Position.X,
			Y:     p.Position.Y,
			DX:    p.Speed.DX,
			DY:    p.Speed.DY,
			Dead:  p.Dead,
			Tasks: taskViews(p.Tasks),
		})
	}
	for _, b := range gs.Bodies {
		msg.Bodies = append(msg.Bodies, BodyView{Color: b.Color.String(), X: b.Position.X, Y: b.Position.Y})
	}
	return msg
}
